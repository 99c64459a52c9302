package strategy

import (
	"context"
	"testing"
	"time"

	"finplan/internal/config"
	"finplan/internal/domain"
)

func debtContext(inputs map[string]any) *domain.ExecutionContext {
	return &domain.ExecutionContext{
		CurrentAge:  35,
		CurrentYear: 2025,
		Inputs:      inputs,
		Events: []domain.FinancialEvent{
			{
				ID:   "card",
				Type: domain.EventDebtBalance,
				Name: "credit card",
				Details: domain.EventDetails{Debt: &domain.DebtDetails{
					AnnualRatePct:  24,
					Balance:        domain.MoneyFromInt(10000),
					MinimumPayment: domain.MoneyFromInt(250),
				}},
			},
			{
				ID:   "car",
				Type: domain.EventDebtBalance,
				Name: "car loan",
				Details: domain.EventDetails{Debt: &domain.DebtDetails{
					AnnualRatePct:  6,
					Balance:        domain.MoneyFromInt(8000),
					MinimumPayment: domain.MoneyFromInt(300),
				}},
			},
		},
	}
}

func TestDebtPayoffAvalancheTargetsHighestRate(t *testing.T) {
	s := NewDebtPayoff(config.Default())
	res, err := s.Execute(context.Background(), debtContext(map[string]any{"extra_monthly": 250.0}))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(res.GeneratedEvents) != 1 {
		t.Fatalf("got %d events, want one payment stream", len(res.GeneratedEvents))
	}
	ev := res.GeneratedEvents[0].Event
	if ev.Metadata.AccountTag != "debt:credit card" {
		t.Fatalf("target tag = %q, want the 24%% card first", ev.Metadata.AccountTag)
	}
	if ev.Amount.String() != "500" {
		t.Fatalf("payment = %s, want minimum 250 plus extra 250", ev.Amount)
	}
	if ev.Type != domain.EventDebtPayment || ev.TargetAccount != domain.AccountDebt {
		t.Fatalf("event shape = %q/%q", ev.Type, ev.TargetAccount)
	}
}

func TestDebtPayoffSnowballTargetsSmallestBalance(t *testing.T) {
	s := NewDebtPayoff(config.Default())
	res, err := s.Execute(context.Background(), debtContext(map[string]any{
		"extra_monthly": 100.0,
		"method":        "snowball",
	}))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if tag := res.GeneratedEvents[0].Event.Metadata.AccountTag; tag != "debt:car loan" {
		t.Fatalf("target tag = %q, want the smaller car loan first", tag)
	}
}

func TestDebtPayoffScheduleSpansPayoff(t *testing.T) {
	s := NewDebtPayoff(config.Default())
	res, err := s.Execute(context.Background(), debtContext(map[string]any{"extra_monthly": 250.0}))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	// 10000 at 24% with a 500 payment amortizes in 26 months.
	sched := res.GeneratedEvents[0].Event.Schedule
	if sched == nil {
		t.Fatalf("payment stream has no schedule")
	}
	wantStart := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !sched.StartDate.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", sched.StartDate, wantStart)
	}
	if sched.EndDate == nil || !sched.EndDate.Equal(wantStart.AddDate(0, 25, 0)) {
		t.Fatalf("end = %v, want 26 monthly payments", sched.EndDate)
	}
}

func TestDebtPayoffWarnsWhenPaymentTooSmall(t *testing.T) {
	s := NewDebtPayoff(config.Default())
	ec := &domain.ExecutionContext{
		CurrentAge: 35, CurrentYear: 2025,
		Inputs: map[string]any{"extra_monthly": 10.0},
		Events: []domain.FinancialEvent{
			{
				ID: "card", Type: domain.EventDebtBalance, Name: "credit card",
				Details: domain.EventDetails{Debt: &domain.DebtDetails{
					AnnualRatePct:  24,
					Balance:        domain.MoneyFromInt(10000),
					MinimumPayment: domain.MoneyFromInt(100),
				}},
			},
		},
	}
	res, err := s.Execute(context.Background(), ec)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	// 110 against 200 of monthly interest never amortizes.
	if len(res.Warnings) == 0 {
		t.Fatalf("expected a warning for a payment below the interest accrual")
	}
	if res.GeneratedEvents[0].Event.Schedule != nil {
		t.Fatalf("unpayable stream must not carry an end-dated schedule")
	}
}

func TestDebtPayoffRecommendsRemainingDebts(t *testing.T) {
	s := NewDebtPayoff(config.Default())
	res, err := s.Execute(context.Background(), debtContext(map[string]any{"extra_monthly": 250.0}))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(res.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want one for the car loan", len(res.Recommendations))
	}
}

func TestDebtPayoffNotApplicableWithoutDebt(t *testing.T) {
	s := NewDebtPayoff(config.Default())
	if app := s.CanApply(&domain.ExecutionContext{CurrentAge: 35, CurrentYear: 2025}); app.Applicable {
		t.Fatalf("applicable without open debts")
	}
}

func TestDebtPayoffRerunModifiesOnExtraChange(t *testing.T) {
	s := NewDebtPayoff(config.Default())
	first, err := s.Execute(context.Background(), debtContext(map[string]any{"extra_monthly": 250.0}))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	ec := debtContext(map[string]any{"extra_monthly": 400.0})
	for _, ge := range first.GeneratedEvents {
		ec.Events = append(ec.Events, ge.Event)
	}
	second, err := s.Execute(context.Background(), ec)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second.GeneratedEvents) != 0 {
		t.Fatalf("re-run duplicated the payment stream")
	}
	if len(second.ModifiedEvents) != 1 {
		t.Fatalf("got %d modifications, want 1", len(second.ModifiedEvents))
	}
	if got := second.ModifiedEvents[0].Event.Amount.String(); got != "650" {
		t.Fatalf("updated payment = %s, want 650", got)
	}
}

func TestDebtPayoffImpactInterestSaved(t *testing.T) {
	s := NewDebtPayoff(config.Default())
	impact, err := s.EstimateImpact(context.Background(), debtContext(map[string]any{"extra_monthly": 250.0}))
	if err != nil {
		t.Fatalf("impact: %v", err)
	}
	if !impact.InterestSaved.IsPositive() {
		t.Fatalf("interest saved = %s, want positive", impact.InterestSaved)
	}
	if !impact.MonthlyCashflow.IsNegative() {
		t.Fatalf("cashflow = %s, want negative", impact.MonthlyCashflow)
	}
}
