// Package executor orchestrates one strategy run: applicability, input
// validation, execution, and schedule expansion, all inside a failure
// boundary. Callers always get a StrategyResult back, never a raw error or a
// panic, so every failure mode stays representable as data.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"finplan/internal/domain"
	"finplan/internal/schedule"
	"finplan/internal/strategy"
)

// Service runs strategies from a registry. Now is injectable for tests.
type Service struct {
	Registry *strategy.Registry
	Log      *slog.Logger
	Now      func() time.Time
}

func New(reg *strategy.Registry, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{Registry: reg, Log: log, Now: time.Now}
}

// Run executes one strategy against a context. Inputs are merged over the
// context's own input map without mutating it.
func (s *Service) Run(ctx context.Context, strategyID string, ec *domain.ExecutionContext, inputs map[string]any) domain.StrategyResult {
	st, err := s.Registry.ByID(strategyID)
	if err != nil {
		return domain.Failed(strategyID, err.Error())
	}
	return s.run(ctx, st, ec, inputs)
}

func (s *Service) run(ctx context.Context, st strategy.Strategy, ec *domain.ExecutionContext, inputs map[string]any) (result domain.StrategyResult) {
	id := st.Definition().ID

	// The failure boundary: a panicking strategy becomes a failed result.
	defer func() {
		if r := recover(); r != nil {
			s.Log.Error("strategy panicked", "strategy", id, "panic", r)
			result = domain.Failed(id, fmt.Sprintf("strategy fault: %v", r))
		}
	}()

	merged := mergedContext(ec, st.Parameters(), inputs)

	if app := st.CanApply(merged); !app.Applicable {
		return domain.Failed(id, app.Reasons...)
	}
	if v := st.ValidateInputs(merged.Inputs); !v.Valid {
		return domain.Failed(id, fieldErrors(v)...)
	}

	res, err := st.Execute(ctx, merged)
	if err != nil {
		s.Log.Error("strategy execution failed", "strategy", id, "error", err)
		return domain.Failed(id, err.Error())
	}
	res.StrategyID = id

	expanded, err := s.expandSchedules(s.anchor(merged), res.GeneratedEvents)
	if err != nil {
		s.Log.Error("schedule expansion failed", "strategy", id, "error", err)
		return domain.Failed(id, err.Error())
	}
	res.GeneratedEvents = expanded
	return res
}

// mergedContext layers explicit inputs over the context's input map and
// fills parameter defaults, leaving the caller's context untouched.
func mergedContext(ec *domain.ExecutionContext, params []domain.Parameter, inputs map[string]any) *domain.ExecutionContext {
	merged := *ec
	merged.Inputs = make(map[string]any, len(ec.Inputs)+len(inputs))
	for _, p := range params {
		if p.Default != nil {
			merged.Inputs[p.Name] = p.Default
		}
	}
	for k, v := range ec.Inputs {
		merged.Inputs[k] = v
	}
	for k, v := range inputs {
		merged.Inputs[k] = v
	}
	return &merged
}

func fieldErrors(v domain.Validation) []string {
	out := make([]string, 0, len(v.Errors))
	for field, msg := range v.Errors {
		out = append(out, fmt.Sprintf("input %s: %s", field, msg))
	}
	// map order is random; stable warnings make results comparable
	sort.Strings(out)
	return out
}

// anchor is the date month offsets are computed against: the context's
// current year when set, the wall clock otherwise.
func (s *Service) anchor(ec *domain.ExecutionContext) time.Time {
	if ec.CurrentYear > 0 {
		return ec.Now()
	}
	return s.Now()
}

// expandSchedules replaces each schedule-carrying generated event with one
// concrete instance per scheduled date: a deep copy with a fresh id and a
// month offset recomputed against the anchor. Events without a schedule pass
// through unchanged.
func (s *Service) expandSchedules(anchor time.Time, events []domain.GeneratedEvent) ([]domain.GeneratedEvent, error) {
	var out []domain.GeneratedEvent
	for _, ge := range events {
		if ge.Event.Schedule == nil {
			out = append(out, ge)
			continue
		}
		dates, err := schedule.Expand(*ge.Event.Schedule)
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", ge.Event.Name, err)
		}
		for _, d := range dates {
			inst := ge
			inst.Event = cloneEvent(ge.Event)
			inst.Event.ID = uuid.New().String()
			inst.Event.Schedule = nil
			inst.Event.Frequency = domain.FrequencyOneTime
			inst.Event.MonthOffset = schedule.MonthOffset(anchor, d)
			out = append(out, inst)
		}
	}
	return out, nil
}

// cloneEvent deep-copies an event so expanded instances share nothing with
// the template.
func cloneEvent(ev domain.FinancialEvent) domain.FinancialEvent {
	out := ev
	if ev.Schedule != nil {
		sc := *ev.Schedule
		if ev.Schedule.EndDate != nil {
			end := *ev.Schedule.EndDate
			sc.EndDate = &end
		}
		if ev.Schedule.Custom != nil {
			cs := *ev.Schedule.Custom
			cs.Dates = append([]time.Time(nil), ev.Schedule.Custom.Dates...)
			if ev.Schedule.Custom.Until != nil {
				until := *ev.Schedule.Custom.Until
				cs.Until = &until
			}
			sc.Custom = &cs
		}
		out.Schedule = &sc
	}
	d := ev.Details
	if d.Income != nil {
		v := *d.Income
		out.Details.Income = &v
	}
	if d.Expense != nil {
		v := *d.Expense
		out.Details.Expense = &v
	}
	if d.Contribution != nil {
		v := *d.Contribution
		out.Details.Contribution = &v
	}
	if d.Withdrawal != nil {
		v := *d.Withdrawal
		v.Ordering = append([]domain.AccountType(nil), d.Withdrawal.Ordering...)
		out.Details.Withdrawal = &v
	}
	if d.Conversion != nil {
		v := *d.Conversion
		out.Details.Conversion = &v
	}
	if d.Allocation != nil {
		v := *d.Allocation
		out.Details.Allocation = &v
	}
	if d.Debt != nil {
		v := *d.Debt
		out.Details.Debt = &v
	}
	return out
}
