package strategy

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"finplan/internal/config"
	"finplan/internal/domain"
)

const EmergencyFundID = "emergency-fund"

const emergencyFundTag = "savings:emergency"

// EmergencyFund schedules monthly transfers into savings until the balance
// covers a target number of months of expenses.
type EmergencyFund struct {
	cfg *config.Config
}

func NewEmergencyFund(cfg *config.Config) *EmergencyFund {
	return &EmergencyFund{cfg: cfg}
}

func (s *EmergencyFund) Definition() domain.StrategyDefinition {
	return domain.StrategyDefinition{
		ID:         EmergencyFundID,
		Name:       "Emergency fund",
		Category:   domain.CategorySavings,
		Tier:       1,
		Difficulty: "beginner",
		Tags:       []string{"savings", "liquidity", "safety-net"},
	}
}

func (s *EmergencyFund) Parameters() []domain.Parameter {
	return []domain.Parameter{
		{
			Name:     "monthly_savings",
			Type:     domain.ParamNumber,
			Label:    "Monthly amount to set aside",
			Required: true,
			Min:      domain.FloatPtr(0.01),
		},
		{
			Name:    "target_months",
			Type:    domain.ParamNumber,
			Label:   "Months of expenses to cover",
			Default: float64(s.cfg.EmergencyFund.TargetMonths),
			Min:     domain.FloatPtr(1),
			Max:     domain.FloatPtr(24),
		},
		{
			Name:    "current_balance",
			Type:    domain.ParamNumber,
			Label:   "Emergency savings on hand",
			Default: 0.0,
			Min:     domain.FloatPtr(0),
		},
	}
}

func (s *EmergencyFund) target(ec *domain.ExecutionContext) (target, gap decimal.Decimal) {
	months := decimal.NewFromInt(int64(IntInput(ec.Inputs, "target_months", s.cfg.EmergencyFund.TargetMonths)))
	current := decimal.NewFromFloat(FloatInput(ec.Inputs, "current_balance", 0))
	target = ec.MonthlyExpenses().Mul(months)
	gap = target.Sub(current)
	if gap.IsNegative() {
		gap = decimal.Zero
	}
	return target, gap
}

func (s *EmergencyFund) CanApply(ec *domain.ExecutionContext) domain.Applicability {
	expenses := ec.MonthlyExpenses()
	if expenses.IsZero() {
		return domain.Applicability{
			Applicable: false,
			Reasons:    []string{"plan has no monthly expense events to size the fund against"},
		}
	}
	return domain.Applicability{
		Applicable: true,
		Reasons:    []string{fmt.Sprintf("monthly expenses of %s set the funding target", expenses)},
	}
}

func (s *EmergencyFund) ValidateInputs(inputs map[string]any) domain.Validation {
	return ValidateAgainst(s.Parameters(), inputs)
}

func (s *EmergencyFund) Execute(ctx context.Context, ec *domain.ExecutionContext) (domain.StrategyResult, error) {
	monthly := decimal.NewFromFloat(FloatInput(ec.Inputs, "monthly_savings", 0))
	target, gap := s.target(ec)

	result := domain.StrategyResult{Success: true, StrategyID: EmergencyFundID}
	if gap.IsZero() {
		result.Recommendations = append(result.Recommendations, Recommend(
			"Emergency fund is fully funded",
			fmt.Sprintf("Current savings already cover the %s target.", target),
			domain.ImportanceLow))
		return result, nil
	}
	if monthly.IsZero() {
		result.Warnings = append(result.Warnings, "monthly savings amount is zero; the fund will never reach its target")
		return result, nil
	}

	gapF, _ := gap.Float64()
	monthlyF, _ := monthly.Float64()
	monthsToFund := int(math.Ceil(gapF / monthlyF))

	prior := ec.EventsByStrategy(EmergencyFundID, emergencyFundTag)
	if len(prior) > 0 {
		if !prior[0].Amount.Equal(monthly) {
			updated := prior[0]
			updated.Amount = domain.NewMoney(monthly)
			result.ModifiedEvents = append(result.ModifiedEvents, Modified(prior[0], updated,
				AmountChange(prior[0].Amount.Decimal, monthly, "monthly savings amount changed")))
		}
	} else {
		ev := NewEvent(domain.EventTransfer, "Emergency fund transfer", monthly, EmergencyFundID, emergencyFundTag)
		ev.Frequency = domain.FrequencyMonthly
		ev.TargetAccount = domain.AccountSavings
		start := ec.Now()
		end := start.AddDate(0, monthsToFund-1, 0)
		ev.Schedule = &domain.ScheduleConfig{
			Frequency: domain.FrequencyMonthly,
			StartDate: start,
			EndDate:   &end,
		}
		reason := fmt.Sprintf("fills the %s gap to a %s safety net in %d months", gap, target, monthsToFund)
		result.GeneratedEvents = append(result.GeneratedEvents, Generated(ev, reason, domain.ImportanceHigh))
	}

	result.NextSteps = append(result.NextSteps, "Keep the fund in a liquid high-yield savings account")

	impact, err := s.EstimateImpact(ctx, ec)
	if err != nil {
		return domain.StrategyResult{}, err
	}
	result.EstimatedImpact = &impact
	return result, nil
}

func (s *EmergencyFund) EstimateImpact(ctx context.Context, ec *domain.ExecutionContext) (domain.Impact, error) {
	monthly := decimal.NewFromFloat(FloatInput(ec.Inputs, "monthly_savings", 0))
	_, gap := s.target(ec)
	months := 0
	if monthly.IsPositive() && gap.IsPositive() {
		gapF, _ := gap.Float64()
		monthlyF, _ := monthly.Float64()
		months = int(math.Ceil(gapF / monthlyF))
	}
	return domain.Impact{
		HorizonYears:    (months + 11) / 12,
		NetContribution: domain.NewMoney(gap),
		MonthlyCashflow: domain.NewMoney(monthly.Neg()),
		Summary:         fmt.Sprintf("Setting aside %s per month closes the %s gap in %d months", monthly, gap, months),
	}, nil
}
