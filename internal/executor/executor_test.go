package executor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"finplan/internal/domain"
	"finplan/internal/strategy"
)

// stubStrategy lets each test script the phases independently.
type stubStrategy struct {
	id       string
	params   []domain.Parameter
	applies  domain.Applicability
	validate domain.Validation
	execute  func(ec *domain.ExecutionContext) (domain.StrategyResult, error)
}

func (s *stubStrategy) Definition() domain.StrategyDefinition {
	return domain.StrategyDefinition{ID: s.id, Name: s.id}
}
func (s *stubStrategy) Parameters() []domain.Parameter { return s.params }
func (s *stubStrategy) CanApply(*domain.ExecutionContext) domain.Applicability {
	return s.applies
}
func (s *stubStrategy) ValidateInputs(map[string]any) domain.Validation { return s.validate }
func (s *stubStrategy) Execute(_ context.Context, ec *domain.ExecutionContext) (domain.StrategyResult, error) {
	return s.execute(ec)
}
func (s *stubStrategy) EstimateImpact(context.Context, *domain.ExecutionContext) (domain.Impact, error) {
	return domain.Impact{}, nil
}

func okStub(id string) *stubStrategy {
	return &stubStrategy{
		id:       id,
		applies:  domain.Applicability{Applicable: true},
		validate: domain.Validation{Valid: true},
		execute: func(ec *domain.ExecutionContext) (domain.StrategyResult, error) {
			return domain.StrategyResult{Success: true, StrategyID: id}, nil
		},
	}
}

func newService(t *testing.T, strategies ...strategy.Strategy) *Service {
	t.Helper()
	reg := strategy.NewRegistry()
	for _, s := range strategies {
		reg.MustRegister(s)
	}
	svc := New(reg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.Now = func() time.Time { return time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func baseContext() *domain.ExecutionContext {
	return &domain.ExecutionContext{CurrentAge: 35, CurrentYear: 2025}
}

func TestRunUnknownStrategy(t *testing.T) {
	svc := newService(t, okStub("known"))
	res := svc.Run(context.Background(), "missing", baseContext(), nil)
	if res.Success {
		t.Fatalf("expected failure for unknown strategy")
	}
	if res.StrategyID != "missing" {
		t.Fatalf("strategy id = %q, want missing", res.StrategyID)
	}
	if len(res.Warnings) == 0 {
		t.Fatalf("expected a warning explaining the miss")
	}
}

func TestRunNotApplicable(t *testing.T) {
	st := okStub("s")
	st.applies = domain.Applicability{Applicable: false, Reasons: []string{"no income events"}}
	svc := newService(t, st)

	res := svc.Run(context.Background(), "s", baseContext(), nil)
	if res.Success {
		t.Fatalf("expected failed result")
	}
	if len(res.Warnings) != 1 || res.Warnings[0] != "no income events" {
		t.Fatalf("warnings = %v, want applicability reasons", res.Warnings)
	}
}

func TestRunValidationFailure(t *testing.T) {
	st := okStub("s")
	st.validate = domain.Validation{Valid: false, Errors: map[string]string{
		"monthly_budget": "required",
		"aaa":            "must be a number",
	}}
	svc := newService(t, st)

	res := svc.Run(context.Background(), "s", baseContext(), nil)
	if res.Success {
		t.Fatalf("expected failed result")
	}
	want := []string{"input aaa: must be a number", "input monthly_budget: required"}
	if len(res.Warnings) != 2 || res.Warnings[0] != want[0] || res.Warnings[1] != want[1] {
		t.Fatalf("warnings = %v, want %v", res.Warnings, want)
	}
}

func TestRunPanicContained(t *testing.T) {
	st := okStub("boom")
	st.execute = func(*domain.ExecutionContext) (domain.StrategyResult, error) {
		panic("nil map write")
	}
	svc := newService(t, st)

	res := svc.Run(context.Background(), "boom", baseContext(), nil)
	if res.Success {
		t.Fatalf("panic must surface as a failed result")
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v, want a single fault message", res.Warnings)
	}
}

func TestRunExecuteError(t *testing.T) {
	st := okStub("s")
	st.execute = func(*domain.ExecutionContext) (domain.StrategyResult, error) {
		return domain.StrategyResult{}, errors.New("projection unavailable")
	}
	svc := newService(t, st)

	res := svc.Run(context.Background(), "s", baseContext(), nil)
	if res.Success {
		t.Fatalf("expected failed result")
	}
	if res.Warnings[0] != "projection unavailable" {
		t.Fatalf("warnings = %v", res.Warnings)
	}
}

func TestRunDoesNotMutateContext(t *testing.T) {
	st := okStub("s")
	st.params = []domain.Parameter{{Name: "rate", Type: domain.ParamNumber, Default: 5.0}}
	var seen map[string]any
	st.execute = func(ec *domain.ExecutionContext) (domain.StrategyResult, error) {
		seen = ec.Inputs
		return domain.StrategyResult{Success: true}, nil
	}
	svc := newService(t, st)

	ec := baseContext()
	ec.Inputs = map[string]any{"base": 1.0}
	res := svc.Run(context.Background(), "s", ec, map[string]any{"extra": 2.0})
	if !res.Success {
		t.Fatalf("run failed: %v", res.Warnings)
	}
	if len(ec.Inputs) != 1 {
		t.Fatalf("caller inputs mutated: %v", ec.Inputs)
	}
	if seen["rate"] != 5.0 || seen["base"] != 1.0 || seen["extra"] != 2.0 {
		t.Fatalf("merged inputs = %v, want defaults layered under context and call inputs", seen)
	}
}

func TestRunInputPrecedence(t *testing.T) {
	st := okStub("s")
	st.params = []domain.Parameter{{Name: "rate", Type: domain.ParamNumber, Default: 5.0}}
	var seen map[string]any
	st.execute = func(ec *domain.ExecutionContext) (domain.StrategyResult, error) {
		seen = ec.Inputs
		return domain.StrategyResult{Success: true}, nil
	}
	svc := newService(t, st)

	ec := baseContext()
	ec.Inputs = map[string]any{"rate": 6.0}
	svc.Run(context.Background(), "s", ec, map[string]any{"rate": 7.0})
	if seen["rate"] != 7.0 {
		t.Fatalf("rate = %v, call inputs must win over context and defaults", seen["rate"])
	}
}

func TestRunExpandsSchedules(t *testing.T) {
	st := okStub("s")
	st.execute = func(ec *domain.ExecutionContext) (domain.StrategyResult, error) {
		start := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
		ev := domain.FinancialEvent{
			ID:     "template",
			Type:   domain.EventContribution,
			Name:   "monthly deposit",
			Amount: domain.MoneyFromInt(500),
			Schedule: &domain.ScheduleConfig{
				Frequency: domain.FrequencyMonthly,
				StartDate: start,
				EndDate:   &end,
			},
		}
		return domain.StrategyResult{
			Success:         true,
			GeneratedEvents: []domain.GeneratedEvent{{Event: ev, Reason: "deposit"}},
		}, nil
	}
	svc := newService(t, st)

	res := svc.Run(context.Background(), "s", baseContext(), nil)
	if !res.Success {
		t.Fatalf("run failed: %v", res.Warnings)
	}
	if len(res.GeneratedEvents) != 4 {
		t.Fatalf("got %d events, want 4 monthly instances Mar..Jun", len(res.GeneratedEvents))
	}
	seen := map[string]bool{}
	for i, ge := range res.GeneratedEvents {
		if ge.Event.Schedule != nil {
			t.Fatalf("instance %d still carries a schedule", i)
		}
		if ge.Event.Frequency != domain.FrequencyOneTime {
			t.Fatalf("instance %d frequency = %q", i, ge.Event.Frequency)
		}
		if ge.Event.ID == "template" || seen[ge.Event.ID] {
			t.Fatalf("instance %d must have a fresh unique id, got %q", i, ge.Event.ID)
		}
		seen[ge.Event.ID] = true
		if want := 2 + i; ge.Event.MonthOffset != want {
			t.Fatalf("instance %d month offset = %d, want %d", i, ge.Event.MonthOffset, want)
		}
		if ge.Reason != "deposit" {
			t.Fatalf("instance %d lost its reason", i)
		}
	}
}

func TestRunPassesThroughUnscheduledEvents(t *testing.T) {
	st := okStub("s")
	st.execute = func(ec *domain.ExecutionContext) (domain.StrategyResult, error) {
		ev := domain.FinancialEvent{ID: "one", Type: domain.EventWindfall, MonthOffset: 3}
		return domain.StrategyResult{
			Success:         true,
			GeneratedEvents: []domain.GeneratedEvent{{Event: ev}},
		}, nil
	}
	svc := newService(t, st)

	res := svc.Run(context.Background(), "s", baseContext(), nil)
	if len(res.GeneratedEvents) != 1 || res.GeneratedEvents[0].Event.ID != "one" {
		t.Fatalf("unscheduled event must pass through unchanged: %+v", res.GeneratedEvents)
	}
}

func TestRunBadScheduleFailsResult(t *testing.T) {
	st := okStub("s")
	st.execute = func(ec *domain.ExecutionContext) (domain.StrategyResult, error) {
		ev := domain.FinancialEvent{
			ID:       "bad",
			Schedule: &domain.ScheduleConfig{Frequency: domain.FrequencyCustom},
		}
		return domain.StrategyResult{
			Success:         true,
			GeneratedEvents: []domain.GeneratedEvent{{Event: ev}},
		}, nil
	}
	svc := newService(t, st)

	res := svc.Run(context.Background(), "s", baseContext(), nil)
	if res.Success {
		t.Fatalf("invalid schedule must fail the run")
	}
}
