package allocation_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"finplan/internal/allocation"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestWaterfallWorkedExample(t *testing.T) {
	plan := allocation.Waterfall(dec(3000), []allocation.Bucket{
		{Name: "match", Cap: allocation.Cap(dec(1833)), Eligible: true},
		{Name: "hsa", Cap: allocation.Cap(dec(542)), Eligible: true},
		{Name: "taxable", Eligible: true},
	})
	if got := plan.Get("match"); !got.Equal(dec(1833)) {
		t.Fatalf("match bucket: got %s, want 1833", got)
	}
	if got := plan.Get("hsa"); !got.Equal(dec(542)) {
		t.Fatalf("hsa bucket: got %s, want 542", got)
	}
	if got := plan.Get("taxable"); !got.Equal(dec(625)) {
		t.Fatalf("taxable bucket: got %s, want 625", got)
	}
	if !plan.Total.Equal(dec(3000)) {
		t.Fatalf("total: got %s, want 3000", plan.Total)
	}
	if !plan.Remaining.IsZero() {
		t.Fatalf("remaining: got %s, want 0", plan.Remaining)
	}
}

func TestWaterfallConservation(t *testing.T) {
	cases := []struct {
		budget  int64
		caps    []int64 // -1 means uncapped
		allElig bool
	}{
		{0, []int64{100, 200}, true},
		{50, []int64{100, 200}, true},
		{500, []int64{100, 200}, true},
		{500, []int64{100, 200, -1}, true},
		{1000, []int64{0, 300, -1}, true},
		{1000, []int64{0, 300}, true},
	}
	for ci, c := range cases {
		buckets := make([]allocation.Bucket, len(c.caps))
		capSum := decimal.Zero
		uncapped := false
		for i, cp := range c.caps {
			buckets[i] = allocation.Bucket{Name: "b", Eligible: c.allElig}
			if cp >= 0 {
				buckets[i].Cap = allocation.Cap(dec(cp))
				capSum = capSum.Add(dec(cp))
			} else {
				uncapped = true
			}
		}
		plan := allocation.Waterfall(dec(c.budget), buckets)
		want := dec(c.budget)
		if !uncapped && capSum.LessThan(want) {
			want = capSum
		}
		if !plan.Total.Equal(want) {
			t.Fatalf("case %d: total %s, want %s", ci, plan.Total, want)
		}
		for i, a := range plan.Buckets {
			if buckets[i].Cap != nil && a.Amount.GreaterThan(*buckets[i].Cap) {
				t.Fatalf("case %d: bucket %d over cap: %s > %s", ci, i, a.Amount, buckets[i].Cap)
			}
		}
		if plan.Total.GreaterThan(dec(c.budget)) {
			t.Fatalf("case %d: allocated %s exceeds budget %d", ci, plan.Total, c.budget)
		}
	}
}

func TestWaterfallSkipsIneligibleAndZeroCap(t *testing.T) {
	plan := allocation.Waterfall(dec(1000), []allocation.Bucket{
		{Name: "closed", Cap: allocation.Cap(dec(400)), Eligible: false},
		{Name: "zero", Cap: allocation.Cap(dec(0)), Eligible: true},
		{Name: "open", Cap: allocation.Cap(dec(600)), Eligible: true},
	})
	if !plan.Get("closed").IsZero() {
		t.Fatalf("ineligible bucket received %s", plan.Get("closed"))
	}
	if !plan.Get("zero").IsZero() {
		t.Fatalf("zero-cap bucket received %s", plan.Get("zero"))
	}
	if !plan.Get("open").Equal(dec(600)) {
		t.Fatalf("open bucket: got %s, want 600", plan.Get("open"))
	}
	if !plan.Remaining.Equal(dec(400)) {
		t.Fatalf("remaining: got %s, want 400", plan.Remaining)
	}
}

func TestWaterfallOrderSensitive(t *testing.T) {
	a := allocation.Bucket{Name: "a", Cap: allocation.Cap(dec(800)), Eligible: true}
	b := allocation.Bucket{Name: "b", Cap: allocation.Cap(dec(800)), Eligible: true}
	first := allocation.Waterfall(dec(1000), []allocation.Bucket{a, b})
	second := allocation.Waterfall(dec(1000), []allocation.Bucket{b, a})
	if !first.Get("a").Equal(dec(800)) || !first.Buckets[1].Amount.Equal(dec(200)) {
		t.Fatalf("a-first split wrong: %v", first.Buckets)
	}
	if !second.Buckets[0].Amount.Equal(dec(800)) || !second.Buckets[1].Amount.Equal(dec(200)) {
		t.Fatalf("b-first split wrong: %v", second.Buckets)
	}
}

func TestWaterfallNegativeBudgetTreatedAsZero(t *testing.T) {
	plan := allocation.Waterfall(dec(-100), []allocation.Bucket{
		{Name: "a", Cap: allocation.Cap(dec(50)), Eligible: true},
	})
	if !plan.Total.IsZero() {
		t.Fatalf("expected zero allocation, got %s", plan.Total)
	}
}
