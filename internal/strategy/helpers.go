package strategy

import (
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finplan/internal/domain"
)

// Free helper functions shared by the concrete strategies. Deliberately not a
// base type: each strategy composes what it needs.

// Generated wraps a fresh event with its justification.
func Generated(ev domain.FinancialEvent, reason string, importance domain.Importance) domain.GeneratedEvent {
	return domain.GeneratedEvent{
		Event:            ev,
		Reason:           reason,
		IsEditable:       true,
		LinkedToStrategy: true,
		Importance:       importance,
	}
}

// NewEvent builds a strategy-marked ledger entry with a fresh id.
func NewEvent(t domain.EventType, name string, amount decimal.Decimal, strategyID, accountTag string) domain.FinancialEvent {
	return domain.FinancialEvent{
		ID:     uuid.New().String(),
		Type:   t,
		Name:   name,
		Amount: domain.NewMoney(amount),
		Metadata: domain.EventMetadata{
			StrategyID: strategyID,
			AccountTag: accountTag,
			Source:     "strategy",
		},
	}
}

// Recommend builds an advisory entry.
func Recommend(title, description string, importance domain.Importance) domain.Recommendation {
	return domain.Recommendation{Title: title, Description: description, Importance: importance}
}

// AmountChange records an amount update for a ModifiedEvent.
func AmountChange(old, new decimal.Decimal, rationale string) domain.FieldChange {
	return domain.FieldChange{
		Field:     "amount",
		Old:       old.String(),
		New:       new.String(),
		Rationale: rationale,
	}
}

// Modified supersedes a prior generated event with updated content.
func Modified(prior domain.FinancialEvent, updated domain.FinancialEvent, changes ...domain.FieldChange) domain.ModifiedEvent {
	return domain.ModifiedEvent{
		OriginalEventID: prior.ID,
		Event:           updated,
		Changes:         changes,
	}
}

// FutureValueMonthly is the future value of a level monthly contribution
// compounded monthly at a nominal annual rate. Projection math is an
// estimate, so it runs in floats and rounds at the end.
func FutureValueMonthly(monthly decimal.Decimal, annualRatePct float64, years int) decimal.Decimal {
	pmt, _ := monthly.Float64()
	n := float64(years * 12)
	if annualRatePct == 0 {
		return decimal.NewFromFloat(pmt * n).Round(2)
	}
	r := annualRatePct / 100 / 12
	fv := pmt * (math.Pow(1+r, n) - 1) / r
	return decimal.NewFromFloat(fv).Round(2)
}

// CompoundGrowth is the future value of a lump sum at a nominal annual rate.
func CompoundGrowth(principal decimal.Decimal, annualRatePct float64, years int) decimal.Decimal {
	p, _ := principal.Float64()
	fv := p * math.Pow(1+annualRatePct/100, float64(years))
	return decimal.NewFromFloat(fv).Round(2)
}

// PayoffMonths is the number of months to amortize a balance with a fixed
// monthly payment at a nominal annual rate. Returns 0 when the payment can
// never retire the balance.
func PayoffMonths(balance, payment decimal.Decimal, annualRatePct float64) int {
	b, _ := balance.Float64()
	p, _ := payment.Float64()
	if b <= 0 {
		return 0
	}
	if p <= 0 {
		return 0
	}
	r := annualRatePct / 100 / 12
	if r == 0 {
		return int(math.Ceil(b / p))
	}
	if p <= b*r {
		return 0
	}
	n := -math.Log(1-r*b/p) / math.Log(1+r)
	return int(math.Ceil(n))
}

// TotalInterest is the interest paid amortizing a balance at a fixed monthly
// payment, zero when the payment cannot retire the balance.
func TotalInterest(balance, payment decimal.Decimal, annualRatePct float64) decimal.Decimal {
	months := PayoffMonths(balance, payment, annualRatePct)
	if months == 0 {
		return decimal.Zero
	}
	paid := payment.Mul(decimal.NewFromInt(int64(months)))
	interest := paid.Sub(balance)
	if interest.IsNegative() {
		return decimal.Zero
	}
	return interest.Round(2)
}

// Input coercion: user inputs arrive as map[string]any from JSON, YAML, or
// CLI flags, so numbers show up as float64, int, or json.Number-ish strings.

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case decimal.Decimal:
		f, _ := v.Float64()
		return f, true
	default:
		return 0, false
	}
}

// FloatInput reads a numeric input, falling back to the parameter default.
func FloatInput(inputs map[string]any, name string, def float64) float64 {
	if raw, ok := inputs[name]; ok {
		if v, ok := toFloat(raw); ok {
			return v
		}
	}
	return def
}

// IntInput reads an integer input, falling back to the parameter default.
func IntInput(inputs map[string]any, name string, def int) int {
	return int(FloatInput(inputs, name, float64(def)))
}

// BoolInput reads a boolean input, falling back to the parameter default.
func BoolInput(inputs map[string]any, name string, def bool) bool {
	if raw, ok := inputs[name]; ok {
		if v, ok := raw.(bool); ok {
			return v
		}
	}
	return def
}

// StringInput reads a string input, falling back to the parameter default.
func StringInput(inputs map[string]any, name, def string) string {
	if raw, ok := inputs[name]; ok {
		if v, ok := raw.(string); ok && v != "" {
			return v
		}
	}
	return def
}
