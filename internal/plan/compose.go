package plan

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"finplan/internal/domain"
)

// Compose folds a strategy result into a base ledger and returns the merged
// ledger. The base slice is never mutated; every event in the output carries a
// fresh identity so composed plans never alias the inputs.
//
// Modifications are matched against the base on the original event id when it
// is set, then on the (strategy id, account tag) lineage key. A match on bare
// (name, type) is accepted as a last resort and logged, since untagged events
// cannot prove their lineage. A modification matching nothing is logged and
// dropped rather than failing the merge.
func Compose(base []domain.FinancialEvent, res domain.StrategyResult, log *slog.Logger) []domain.FinancialEvent {
	if log == nil {
		log = slog.Default()
	}

	out := make([]domain.FinancialEvent, len(base))
	copy(out, base)

	for _, mod := range res.ModifiedEvents {
		idx := matchModification(out, mod, log)
		if idx < 0 {
			log.Warn("modification matched no event, dropping",
				"strategy", res.StrategyID,
				"event", mod.Event.Name,
				"account_tag", mod.Event.Metadata.AccountTag)
			continue
		}
		out[idx] = mod.Event
	}

	for _, ge := range res.GeneratedEvents {
		out = append(out, ge.Event)
	}

	out = dedupe(out, log)
	for i := range out {
		out[i].ID = uuid.New().String()
	}
	return out
}

func matchModification(events []domain.FinancialEvent, mod domain.ModifiedEvent, log *slog.Logger) int {
	if mod.OriginalEventID != "" {
		for i, ev := range events {
			if ev.ID == mod.OriginalEventID {
				return i
			}
		}
	}
	key := mod.Event.Metadata
	if key.StrategyID != "" {
		for i, ev := range events {
			if ev.Metadata.StrategyID == key.StrategyID && ev.Metadata.AccountTag == key.AccountTag {
				return i
			}
		}
	}
	for i, ev := range events {
		if ev.Name == mod.Event.Name && ev.Type == mod.Event.Type {
			log.Warn("modification matched by name and type only, lineage key absent",
				"event", mod.Event.Name, "type", mod.Event.Type)
			return i
		}
	}
	return -1
}

// dedupe keeps the first occurrence of events that are indistinguishable in
// the ledger: same lineage key, type, name, month offset, and amount.
func dedupe(events []domain.FinancialEvent, log *slog.Logger) []domain.FinancialEvent {
	seen := make(map[string]bool, len(events))
	out := events[:0:0]
	for _, ev := range events {
		key := fmt.Sprintf("%s|%s|%s|%s|%d|%s",
			ev.Metadata.StrategyID, ev.Metadata.AccountTag, ev.Type, ev.Name, ev.MonthOffset, ev.Amount.String())
		if seen[key] {
			log.Debug("dropping duplicate event", "event", ev.Name, "month_offset", ev.MonthOffset)
			continue
		}
		seen[key] = true
		out = append(out, ev)
	}
	return out
}
