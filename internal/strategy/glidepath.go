package strategy

import (
	"context"
	"fmt"

	"finplan/internal/allocation"
	"finplan/internal/config"
	"finplan/internal/domain"
)

const GlidePathID = "glide-path"

const glidePathTag = "portfolio"

// GlidePath emits a yearly target stock/bond mix that de-risks smoothly with
// age: one phase from now to retirement, a second from retirement to the end
// of the plan, joined continuously at the retirement boundary.
type GlidePath struct {
	cfg *config.Config
}

func NewGlidePath(cfg *config.Config) *GlidePath {
	return &GlidePath{cfg: cfg}
}

func (s *GlidePath) Definition() domain.StrategyDefinition {
	return domain.StrategyDefinition{
		ID:         GlidePathID,
		Name:       "Glide path allocation",
		Category:   domain.CategoryAllocation,
		Tier:       2,
		Difficulty: "intermediate",
		Tags:       []string{"asset-allocation", "retirement", "de-risking"},
	}
}

func (s *GlidePath) Parameters() []domain.Parameter {
	return []domain.Parameter{
		{
			Name:    "retirement_age",
			Type:    domain.ParamNumber,
			Label:   "Retirement age",
			Default: float64(s.cfg.Horizon.RetirementAge),
			Min:     domain.FloatPtr(30),
			Max:     domain.FloatPtr(80),
		},
		{
			Name:    "start_stock_pct",
			Type:    domain.ParamPercentage,
			Label:   "Stock weight today",
			Default: s.cfg.GlidePath.StartStockWeight * 100,
			Min:     domain.FloatPtr(0),
			Max:     domain.FloatPtr(100),
		},
		{
			Name:    "retirement_stock_pct",
			Type:    domain.ParamPercentage,
			Label:   "Stock weight at retirement",
			Default: s.cfg.GlidePath.EndStockWeight * 100,
			Min:     domain.FloatPtr(0),
			Max:     domain.FloatPtr(100),
		},
		{
			Name:    "final_stock_pct",
			Type:    domain.ParamPercentage,
			Label:   "Stock weight at end of plan",
			Default: s.cfg.GlidePath.FinalStockWeight * 100,
			Min:     domain.FloatPtr(0),
			Max:     domain.FloatPtr(100),
		},
		{
			Name:    "curve",
			Type:    domain.ParamSelection,
			Label:   "Glide curve shape",
			Default: s.cfg.GlidePath.Shape,
			Options: []string{"linear", "easeIn", "easeOut", "sCurve"},
		},
	}
}

func (s *GlidePath) CanApply(ec *domain.ExecutionContext) domain.Applicability {
	if ec.CurrentAge <= 0 {
		return domain.Applicability{
			Applicable: false,
			Reasons:    []string{"current age is required to position the glide path"},
		}
	}
	if ec.CurrentAge >= s.cfg.Horizon.EndAge {
		return domain.Applicability{
			Applicable: false,
			Reasons:    []string{fmt.Sprintf("current age %d is already past the plan horizon age %d", ec.CurrentAge, s.cfg.Horizon.EndAge)},
		}
	}
	return domain.Applicability{
		Applicable: true,
		Reasons: []string{
			fmt.Sprintf("a %d-year glide path fits between age %d and %d", s.cfg.Horizon.EndAge-ec.CurrentAge, ec.CurrentAge, s.cfg.Horizon.EndAge),
		},
	}
}

func (s *GlidePath) ValidateInputs(inputs map[string]any) domain.Validation {
	return ValidateAgainst(s.Parameters(), inputs)
}

// mixAt returns the target stock weight for an age, phase 1 easing from the
// start weight to the retirement weight, phase 2 from retirement to final.
// Phase 1 at progress 1 equals phase 2 at progress 0 by construction.
func (s *GlidePath) mixAt(age int, ec *domain.ExecutionContext) float64 {
	retireAge := IntInput(ec.Inputs, "retirement_age", s.cfg.Horizon.RetirementAge)
	start := FloatInput(ec.Inputs, "start_stock_pct", s.cfg.GlidePath.StartStockWeight*100) / 100
	atRetire := FloatInput(ec.Inputs, "retirement_stock_pct", s.cfg.GlidePath.EndStockWeight*100) / 100
	final := FloatInput(ec.Inputs, "final_stock_pct", s.cfg.GlidePath.FinalStockWeight*100) / 100
	shape := allocation.Curve(StringInput(ec.Inputs, "curve", s.cfg.GlidePath.Shape))

	if age <= retireAge {
		span := retireAge - ec.CurrentAge
		if span <= 0 {
			return atRetire
		}
		progress := float64(age-ec.CurrentAge) / float64(span)
		return allocation.Interpolate(start, atRetire, progress, shape)
	}
	span := s.cfg.Horizon.EndAge - retireAge
	if span <= 0 {
		return final
	}
	progress := float64(age-retireAge) / float64(span)
	return allocation.Interpolate(atRetire, final, progress, shape)
}

func (s *GlidePath) Execute(ctx context.Context, ec *domain.ExecutionContext) (domain.StrategyResult, error) {
	result := domain.StrategyResult{Success: true, StrategyID: GlidePathID}
	prior := ec.EventsByStrategy(GlidePathID, glidePathTag)
	priorByName := make(map[string]domain.FinancialEvent, len(prior))
	for _, ev := range prior {
		priorByName[ev.Name] = ev
	}

	for age := ec.CurrentAge; age <= s.cfg.Horizon.EndAge; age++ {
		stock := s.mixAt(age, ec)
		point := allocation.Point{
			Age:             age,
			Year:            ec.CurrentYear + (age - ec.CurrentAge),
			PrimaryWeight:   stock,
			SecondaryWeight: 1 - stock,
		}
		if err := allocation.CheckWeights(point); err != nil {
			return domain.StrategyResult{}, err
		}
		name := fmt.Sprintf("Target allocation at age %d", age)
		details := &domain.AllocationDetails{StockWeight: point.PrimaryWeight, BondWeight: point.SecondaryWeight}

		if old, ok := priorByName[name]; ok {
			if old.Details.Allocation != nil && old.Details.Allocation.StockWeight == details.StockWeight {
				continue
			}
			updated := old
			updated.Details.Allocation = details
			oldStock := 0.0
			if old.Details.Allocation != nil {
				oldStock = old.Details.Allocation.StockWeight
			}
			result.ModifiedEvents = append(result.ModifiedEvents, Modified(old, updated, domain.FieldChange{
				Field:     "details.allocation.stock_weight",
				Old:       fmt.Sprintf("%.4f", oldStock),
				New:       fmt.Sprintf("%.4f", details.StockWeight),
				Rationale: "glide path parameters changed",
			}))
			continue
		}

		ev := NewEvent(domain.EventAllocationSet, name, domain.MoneyFromInt(0).Decimal, GlidePathID, glidePathTag)
		ev.MonthOffset = (age - ec.CurrentAge) * 12
		ev.Details.Allocation = details
		reason := fmt.Sprintf("de-risking step: %.0f%% stocks / %.0f%% bonds", stock*100, (1-stock)*100)
		importance := domain.ImportanceLow
		if age == ec.CurrentAge || age == IntInput(ec.Inputs, "retirement_age", s.cfg.Horizon.RetirementAge) {
			importance = domain.ImportanceHigh
		}
		result.GeneratedEvents = append(result.GeneratedEvents, Generated(ev, reason, importance))
	}

	result.Recommendations = append(result.Recommendations, Recommend(
		"Rebalance on schedule",
		"Rebalance toward the target mix once a year or when drift exceeds five percentage points.",
		domain.ImportanceMedium))
	result.NextSteps = append(result.NextSteps, "Apply the current-year target mix to existing holdings")

	impact, err := s.EstimateImpact(ctx, ec)
	if err != nil {
		return domain.StrategyResult{}, err
	}
	result.EstimatedImpact = &impact
	return result, nil
}

func (s *GlidePath) EstimateImpact(ctx context.Context, ec *domain.ExecutionContext) (domain.Impact, error) {
	years := s.cfg.Horizon.EndAge - ec.CurrentAge
	if years < 0 {
		years = 0
	}
	startStock := s.mixAt(ec.CurrentAge, ec)
	endStock := s.mixAt(s.cfg.Horizon.EndAge, ec)
	return domain.Impact{
		HorizonYears: years,
		Summary: fmt.Sprintf("Stock weight glides from %.0f%% to %.0f%% over %d years",
			startStock*100, endStock*100, years),
	}, nil
}
