package strategy

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"finplan/internal/config"
	"finplan/internal/domain"
)

const DebtPayoffID = "debt-payoff"

// DebtPayoff directs an extra monthly payment at one debt at a time:
// highest rate first (avalanche) or smallest balance first (snowball).
type DebtPayoff struct {
	cfg *config.Config
}

func NewDebtPayoff(cfg *config.Config) *DebtPayoff {
	return &DebtPayoff{cfg: cfg}
}

func (s *DebtPayoff) Definition() domain.StrategyDefinition {
	return domain.StrategyDefinition{
		ID:         DebtPayoffID,
		Name:       "Debt payoff",
		Category:   domain.CategoryDebt,
		Tier:       1,
		Difficulty: "beginner",
		Tags:       []string{"debt", "avalanche", "snowball"},
	}
}

func (s *DebtPayoff) Parameters() []domain.Parameter {
	return []domain.Parameter{
		{
			Name:     "extra_monthly",
			Type:     domain.ParamNumber,
			Label:    "Extra monthly payment",
			Required: true,
			Min:      domain.FloatPtr(0.01),
		},
		{
			Name:    "method",
			Type:    domain.ParamSelection,
			Label:   "Payoff ordering",
			Default: "avalanche",
			Options: []string{"avalanche", "snowball"},
		},
	}
}

type debt struct {
	event   domain.FinancialEvent
	details domain.DebtDetails
}

func openDebts(ec *domain.ExecutionContext) []debt {
	var out []debt
	for _, ev := range ec.EventsByType(domain.EventDebtBalance) {
		if ev.Details.Debt == nil || !ev.Details.Debt.Balance.IsPositive() {
			continue
		}
		out = append(out, debt{event: ev, details: *ev.Details.Debt})
	}
	return out
}

func (s *DebtPayoff) CanApply(ec *domain.ExecutionContext) domain.Applicability {
	debts := openDebts(ec)
	if len(debts) == 0 {
		return domain.Applicability{
			Applicable: false,
			Reasons:    []string{"plan has no open debt balances"},
		}
	}
	total := decimal.Zero
	for _, d := range debts {
		total = total.Add(d.details.Balance.Decimal)
	}
	return domain.Applicability{
		Applicable: true,
		Reasons:    []string{fmt.Sprintf("%d open debts totaling %s", len(debts), total)},
	}
}

func (s *DebtPayoff) ValidateInputs(inputs map[string]any) domain.Validation {
	return ValidateAgainst(s.Parameters(), inputs)
}

func orderDebts(debts []debt, method string) {
	sort.SliceStable(debts, func(i, j int) bool {
		if method == "snowball" {
			return debts[i].details.Balance.LessThan(debts[j].details.Balance.Decimal)
		}
		return debts[i].details.AnnualRatePct > debts[j].details.AnnualRatePct
	})
}

func (s *DebtPayoff) Execute(ctx context.Context, ec *domain.ExecutionContext) (domain.StrategyResult, error) {
	extra := decimal.NewFromFloat(FloatInput(ec.Inputs, "extra_monthly", 0))
	method := StringInput(ec.Inputs, "method", "avalanche")
	debts := openDebts(ec)
	orderDebts(debts, method)

	result := domain.StrategyResult{Success: true, StrategyID: DebtPayoffID}
	if len(debts) == 0 {
		result.Warnings = append(result.Warnings, "no open debt balances found")
		return result, nil
	}

	target := debts[0]
	payment := target.details.MinimumPayment.Add(extra)
	months := PayoffMonths(target.details.Balance.Decimal, payment, target.details.AnnualRatePct)
	tag := string(domain.AccountDebt) + ":" + target.event.Name

	prior := ec.EventsByStrategy(DebtPayoffID, tag)
	if len(prior) > 0 {
		if !prior[0].Amount.Equal(payment) {
			updated := prior[0]
			updated.Amount = domain.NewMoney(payment)
			result.ModifiedEvents = append(result.ModifiedEvents, Modified(prior[0], updated,
				AmountChange(prior[0].Amount.Decimal, payment, "extra payment amount changed")))
		}
	} else {
		ev := NewEvent(domain.EventDebtPayment,
			fmt.Sprintf("Accelerated payment: %s", target.event.Name),
			payment, DebtPayoffID, tag)
		ev.Frequency = domain.FrequencyMonthly
		ev.TargetAccount = domain.AccountDebt
		if months > 0 {
			start := ec.Now()
			end := start.AddDate(0, months-1, 0)
			ev.Schedule = &domain.ScheduleConfig{
				Frequency: domain.FrequencyMonthly,
				StartDate: start,
				EndDate:   &end,
			}
		}
		reason := fmt.Sprintf("%s method targets %q first", method, target.event.Name)
		result.GeneratedEvents = append(result.GeneratedEvents, Generated(ev, reason, domain.ImportanceCritical))
	}

	for _, d := range debts[1:] {
		result.Recommendations = append(result.Recommendations, Recommend(
			fmt.Sprintf("Next in line: %s", d.event.Name),
			fmt.Sprintf("Keep paying the minimum of %s; the extra payment rolls over once %q is retired.",
				d.details.MinimumPayment, target.event.Name),
			domain.ImportanceMedium))
	}
	if months == 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("payment of %s cannot retire %q at %.2f%% interest", payment, target.event.Name, target.details.AnnualRatePct))
	} else {
		payoff := ec.Now().AddDate(0, months, 0)
		result.NextSteps = append(result.NextSteps,
			fmt.Sprintf("%q is projected to be paid off around %s", target.event.Name, payoff.Format(monthYear)))
	}

	impact, err := s.EstimateImpact(ctx, ec)
	if err != nil {
		return domain.StrategyResult{}, err
	}
	result.EstimatedImpact = &impact
	return result, nil
}

const monthYear = "January 2006"

func (s *DebtPayoff) EstimateImpact(ctx context.Context, ec *domain.ExecutionContext) (domain.Impact, error) {
	extra := decimal.NewFromFloat(FloatInput(ec.Inputs, "extra_monthly", 0))
	method := StringInput(ec.Inputs, "method", "avalanche")
	debts := openDebts(ec)
	orderDebts(debts, method)
	if len(debts) == 0 {
		return domain.Impact{}, nil
	}
	target := debts[0]
	baseline := TotalInterest(target.details.Balance.Decimal, target.details.MinimumPayment.Decimal, target.details.AnnualRatePct)
	accelerated := TotalInterest(target.details.Balance.Decimal, target.details.MinimumPayment.Add(extra), target.details.AnnualRatePct)
	saved := baseline.Sub(accelerated)
	if saved.IsNegative() || baseline.IsZero() {
		saved = decimal.Zero
	}
	months := PayoffMonths(target.details.Balance.Decimal, target.details.MinimumPayment.Add(extra), target.details.AnnualRatePct)
	return domain.Impact{
		HorizonYears:    (months + 11) / 12,
		InterestSaved:   domain.NewMoney(saved),
		MonthlyCashflow: domain.NewMoney(extra.Neg()),
		Summary:         fmt.Sprintf("Extra %s per month saves about %s in interest on %q", extra, saved, target.event.Name),
	}, nil
}
