package allocation

import "github.com/shopspring/decimal"

// Bucket is one priority slot in a waterfall. A nil Cap means uncapped; an
// uncapped eligible bucket absorbs all remaining budget.
type Bucket struct {
	Name     string
	Account  string
	Cap      *decimal.Decimal
	Eligible bool
}

// Allocated is the amount a waterfall pass assigned to one bucket.
type Allocated struct {
	Name    string
	Account string
	Amount  decimal.Decimal
}

// Plan is the outcome of a waterfall pass over an ordered bucket list.
type Plan struct {
	Buckets   []Allocated
	Total     decimal.Decimal
	Remaining decimal.Decimal
}

// Cap wraps an amount for use as a bucket cap literal.
func Cap(d decimal.Decimal) *decimal.Decimal { return &d }

// Waterfall distributes budget across buckets in priority order: each eligible
// bucket takes min(remaining, cap). Order encodes policy, so the result is
// deterministic given (budget, order, caps). A zero budget yields all-zero
// buckets; a zero cap is legal and simply takes nothing.
func Waterfall(budget decimal.Decimal, buckets []Bucket) Plan {
	remaining := budget
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	plan := Plan{Buckets: make([]Allocated, 0, len(buckets)), Total: decimal.Zero}
	for _, b := range buckets {
		amount := decimal.Zero
		if b.Eligible && remaining.IsPositive() {
			amount = remaining
			if b.Cap != nil && b.Cap.LessThan(amount) {
				amount = *b.Cap
			}
			if amount.IsNegative() {
				amount = decimal.Zero
			}
		}
		remaining = remaining.Sub(amount)
		plan.Total = plan.Total.Add(amount)
		plan.Buckets = append(plan.Buckets, Allocated{Name: b.Name, Account: b.Account, Amount: amount})
	}
	plan.Remaining = remaining
	return plan
}

// Get returns the amount allocated to the named bucket, zero if absent.
func (p Plan) Get(name string) decimal.Decimal {
	for _, a := range p.Buckets {
		if a.Name == name {
			return a.Amount
		}
	}
	return decimal.Zero
}
