package strategy

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"finplan/internal/allocation"
	"finplan/internal/config"
	"finplan/internal/domain"
	"finplan/internal/sim"
)

const ContributionWaterfallID = "contribution-waterfall"

// Bucket order encodes the contribution policy: employer match first (free
// money), then HSA (triple tax advantage), then Roth IRA, then the rest of
// the 401(k) cap, with taxable absorbing any overflow.
const (
	bucketMatch   = "401k-match"
	bucketHSA     = "hsa"
	bucketRothIRA = "roth-ira"
	bucketTopUp   = "401k-topup"
	bucketTaxable = "taxable"
)

// ContributionWaterfall allocates a monthly contribution budget across
// tax-advantaged account buckets in priority order.
type ContributionWaterfall struct {
	cfg *config.Config
	sim sim.Client
}

func NewContributionWaterfall(cfg *config.Config, client sim.Client) *ContributionWaterfall {
	return &ContributionWaterfall{cfg: cfg, sim: client}
}

func (s *ContributionWaterfall) Definition() domain.StrategyDefinition {
	return domain.StrategyDefinition{
		ID:         ContributionWaterfallID,
		Name:       "Contribution waterfall",
		Category:   domain.CategoryContribution,
		Tier:       1,
		Difficulty: "beginner",
		Tags:       []string{"401k", "hsa", "ira", "tax-advantaged"},
	}
}

func (s *ContributionWaterfall) Parameters() []domain.Parameter {
	return []domain.Parameter{
		{
			Name:     "monthly_budget",
			Type:     domain.ParamNumber,
			Label:    "Monthly contribution budget",
			Required: true,
			Min:      domain.FloatPtr(0),
		},
		{
			Name:    "employer_match_pct",
			Type:    domain.ParamPercentage,
			Label:   "Employer match rate",
			Default: 50.0,
			Min:     domain.FloatPtr(0),
			Max:     domain.FloatPtr(200),
		},
		{
			Name:    "match_limit_pct",
			Type:    domain.ParamPercentage,
			Label:   "Match limit as a share of salary",
			Default: 6.0,
			Min:     domain.FloatPtr(0),
			Max:     domain.FloatPtr(100),
		},
		{
			Name:    "include_hsa",
			Type:    domain.ParamBoolean,
			Label:   "Route contributions through an HSA",
			Default: true,
		},
	}
}

func (s *ContributionWaterfall) CanApply(ec *domain.ExecutionContext) domain.Applicability {
	income := ec.MonthlyIncome()
	if income.IsZero() {
		return domain.Applicability{
			Applicable: false,
			Reasons:    []string{"plan has no monthly income events to contribute from"},
		}
	}
	if ec.CurrentAge >= s.cfg.Horizon.RetirementAge {
		return domain.Applicability{
			Applicable: false,
			Reasons:    []string{fmt.Sprintf("current age %d is past the retirement age %d", ec.CurrentAge, s.cfg.Horizon.RetirementAge)},
		}
	}
	return domain.Applicability{
		Applicable: true,
		Reasons: []string{
			fmt.Sprintf("monthly income of %s available to contribute from", income),
			fmt.Sprintf("%d years of accumulation remain before retirement", s.cfg.Horizon.RetirementAge-ec.CurrentAge),
		},
	}
}

func (s *ContributionWaterfall) ValidateInputs(inputs map[string]any) domain.Validation {
	return ValidateAgainst(s.Parameters(), inputs)
}

func (s *ContributionWaterfall) buckets(ec *domain.ExecutionContext) []allocation.Bucket {
	year, age := ec.CurrentYear, ec.CurrentAge
	income := ec.MonthlyIncome()
	matchLimitPct := decimal.NewFromFloat(FloatInput(ec.Inputs, "match_limit_pct", 6.0))
	includeHSA := BoolInput(ec.Inputs, "include_hsa", true)

	monthly401k := s.cfg.Limit401k(year, age).DivRound(decimal.NewFromInt(12), 2)
	matchCap := income.Mul(matchLimitPct).DivRound(decimal.NewFromInt(100), 2)
	if monthly401k.LessThan(matchCap) {
		matchCap = monthly401k
	}
	topUpCap := monthly401k.Sub(matchCap)
	hsaCap := s.cfg.LimitHSA(year, age).DivRound(decimal.NewFromInt(12), 2)
	iraCap := s.cfg.LimitIRA(year, age).DivRound(decimal.NewFromInt(12), 2)

	return []allocation.Bucket{
		{Name: bucketMatch, Account: string(domain.AccountPretax401k), Cap: allocation.Cap(matchCap), Eligible: true},
		{Name: bucketHSA, Account: string(domain.AccountHSA), Cap: allocation.Cap(hsaCap), Eligible: includeHSA},
		{Name: bucketRothIRA, Account: string(domain.AccountRothIRA), Cap: allocation.Cap(iraCap), Eligible: true},
		{Name: bucketTopUp, Account: string(domain.AccountPretax401k), Cap: allocation.Cap(topUpCap), Eligible: true},
		{Name: bucketTaxable, Account: string(domain.AccountTaxable), Eligible: true},
	}
}

func (s *ContributionWaterfall) Execute(ctx context.Context, ec *domain.ExecutionContext) (domain.StrategyResult, error) {
	budget := decimal.NewFromFloat(FloatInput(ec.Inputs, "monthly_budget", 0))
	plan := allocation.Waterfall(budget, s.buckets(ec))

	result := domain.StrategyResult{Success: true, StrategyID: ContributionWaterfallID}
	for _, b := range plan.Buckets {
		prior := ec.EventsByStrategy(ContributionWaterfallID, b.Name)
		if b.Amount.IsZero() {
			// A bucket defunded by a smaller budget must retire its prior
			// event, not leave it in the plan at the old amount.
			if len(prior) > 0 && !prior[0].Amount.IsZero() {
				updated := prior[0]
				updated.Amount = domain.NewMoney(b.Amount)
				result.ModifiedEvents = append(result.ModifiedEvents, Modified(prior[0], updated,
					AmountChange(prior[0].Amount.Decimal, b.Amount, "bucket no longer funded at the new budget")))
			}
			continue
		}
		if len(prior) > 0 {
			if prior[0].Amount.Equal(b.Amount) {
				continue
			}
			updated := prior[0]
			updated.Amount = domain.NewMoney(b.Amount)
			result.ModifiedEvents = append(result.ModifiedEvents, Modified(prior[0], updated,
				AmountChange(prior[0].Amount.Decimal, b.Amount, "contribution budget changed")))
			continue
		}
		ev := NewEvent(domain.EventContribution,
			fmt.Sprintf("Monthly contribution: %s", b.Name),
			b.Amount, ContributionWaterfallID, b.Name)
		ev.Frequency = domain.FrequencyMonthly
		ev.TargetAccount = domain.AccountType(b.Account)
		if b.Name == bucketMatch {
			matchPct := FloatInput(ec.Inputs, "employer_match_pct", 50)
			ev.Details.Contribution = &domain.ContributionDetails{
				EmployerMatchPct: matchPct,
				MatchCap:         domain.NewMoney(b.Amount),
			}
		}
		result.GeneratedEvents = append(result.GeneratedEvents,
			Generated(ev, bucketReason(b.Name), bucketImportance(b.Name)))
	}

	if plan.Total.IsZero() {
		result.Warnings = append(result.Warnings, "contribution budget is zero; nothing to allocate")
	}
	if matched := plan.Get(bucketMatch); matched.IsPositive() {
		matchPct := FloatInput(ec.Inputs, "employer_match_pct", 50)
		free := matched.Mul(decimal.NewFromFloat(matchPct)).DivRound(decimal.NewFromInt(100), 2)
		result.Recommendations = append(result.Recommendations, Recommend(
			"Employer match captured",
			fmt.Sprintf("Contributing %s per month to the 401(k) earns roughly %s per month in employer match.", matched, free),
			domain.ImportanceHigh))
	}
	result.NextSteps = append(result.NextSteps,
		"Confirm payroll deductions match the allocated amounts",
		"Revisit the budget after any salary change")

	impact, err := s.EstimateImpact(ctx, ec)
	if err != nil {
		return domain.StrategyResult{}, err
	}
	result.EstimatedImpact = &impact
	result.Warnings = append(result.Warnings, impact.Warnings...)
	return result, nil
}

func (s *ContributionWaterfall) EstimateImpact(ctx context.Context, ec *domain.ExecutionContext) (domain.Impact, error) {
	budget := decimal.NewFromFloat(FloatInput(ec.Inputs, "monthly_budget", 0))
	plan := allocation.Waterfall(budget, s.buckets(ec))
	years := s.cfg.Horizon.RetirementAge - ec.CurrentAge
	if years < 0 {
		years = 0
	}
	impact := domain.Impact{
		HorizonYears:     years,
		NetContribution:  domain.NewMoney(plan.Total.Mul(decimal.NewFromInt(int64(years * 12)))),
		ProjectedBalance: domain.NewMoney(FutureValueMonthly(plan.Total, s.cfg.Growth.BlendedPct, years)),
		MonthlyCashflow:  domain.NewMoney(plan.Total.Neg()),
		Summary: fmt.Sprintf("Allocating %s per month across %d buckets through age %d",
			plan.Total, len(plan.Buckets), s.cfg.Horizon.RetirementAge),
	}
	if s.sim == nil {
		return impact, nil
	}
	resp, err := s.sim.Project(ctx, sim.Request{
		Seed:        ec.Sim.Seed,
		MonthsToRun: years * 12,
		Events:      ec.Events,
		Stochastic:  ec.Sim.Stochastic,
		MCPaths:     ec.Sim.MCPaths,
	})
	if err != nil {
		return domain.Impact{}, fmt.Errorf("projection engine: %w", err)
	}
	if !resp.Success {
		impact.Warnings = append(impact.Warnings, "projection engine declined the request; impact uses closed-form estimates")
	}
	for _, blocked := range resp.BlockedOutputs {
		impact.Warnings = append(impact.Warnings, fmt.Sprintf("projection output %q was blocked by the engine", blocked))
	}
	if resp.Success && resp.Deterministic != nil {
		impact.ProjectedBalance = resp.Deterministic.FinalBalance
	}
	return impact, nil
}

func bucketReason(name string) string {
	switch name {
	case bucketMatch:
		return "captures the full employer match before anything else"
	case bucketHSA:
		return "HSA contributions are deductible going in and tax-free for medical costs coming out"
	case bucketRothIRA:
		return "Roth IRA space is use-it-or-lose-it each calendar year"
	case bucketTopUp:
		return "fills the remaining 401(k) employee cap after the match"
	default:
		return "overflow above annual caps lands in the taxable account"
	}
}

func bucketImportance(name string) domain.Importance {
	switch name {
	case bucketMatch:
		return domain.ImportanceCritical
	case bucketHSA, bucketRothIRA:
		return domain.ImportanceHigh
	case bucketTopUp:
		return domain.ImportanceMedium
	default:
		return domain.ImportanceLow
	}
}
