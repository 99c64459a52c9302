package domain

// Importance ranks a generated event or recommendation for display.
type Importance string

const (
	ImportanceCritical Importance = "critical"
	ImportanceHigh     Importance = "high"
	ImportanceMedium   Importance = "medium"
	ImportanceLow      Importance = "low"
)

// GeneratedEvent wraps a new ledger entry produced by a strategy run. Created
// fresh each execution and never mutated afterwards; a re-run supersedes it
// through a ModifiedEvent instead of editing it.
type GeneratedEvent struct {
	Event            FinancialEvent `json:"event" yaml:"event"`
	Reason           string         `json:"reason" yaml:"reason"`
	IsEditable       bool           `json:"is_editable" yaml:"is_editable"`
	LinkedToStrategy bool           `json:"linked_to_strategy" yaml:"linked_to_strategy"`
	Importance       Importance     `json:"importance" yaml:"importance"`
}

// FieldChange records one field-level update inside a ModifiedEvent.
type FieldChange struct {
	Field     string `json:"field" yaml:"field"`
	Old       string `json:"old" yaml:"old"`
	New       string `json:"new" yaml:"new"`
	Rationale string `json:"rationale,omitempty" yaml:"rationale,omitempty"`
}

// ModifiedEvent is an update to a pre-existing strategy-generated event,
// as opposed to a new one.
type ModifiedEvent struct {
	OriginalEventID string         `json:"original_event_id" yaml:"original_event_id"`
	Event           FinancialEvent `json:"event" yaml:"event"`
	Changes         []FieldChange  `json:"changes" yaml:"changes"`
}

// Recommendation is advisory output that does not map to a ledger entry.
type Recommendation struct {
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Importance  Importance `json:"importance" yaml:"importance"`
}

// Impact estimates the multi-year effect of applying a strategy.
type Impact struct {
	HorizonYears     int      `json:"horizon_years" yaml:"horizon_years"`
	NetContribution  Money    `json:"net_contribution" yaml:"net_contribution"`
	ProjectedBalance Money    `json:"projected_balance" yaml:"projected_balance"`
	InterestSaved    Money    `json:"interest_saved,omitempty" yaml:"interest_saved,omitempty"`
	MonthlyCashflow  Money    `json:"monthly_cashflow,omitempty" yaml:"monthly_cashflow,omitempty"`
	Summary          string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Warnings         []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// StrategyResult is the complete outcome of one strategy execution. All
// failure modes are representable here; callers never see a raw error from
// the execution pipeline.
type StrategyResult struct {
	Success         bool             `json:"success" yaml:"success"`
	StrategyID      string           `json:"strategy_id" yaml:"strategy_id"`
	GeneratedEvents []GeneratedEvent `json:"generated_events,omitempty" yaml:"generated_events,omitempty"`
	ModifiedEvents  []ModifiedEvent  `json:"modified_events,omitempty" yaml:"modified_events,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
	EstimatedImpact *Impact          `json:"estimated_impact,omitempty" yaml:"estimated_impact,omitempty"`
	Warnings        []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	NextSteps       []string         `json:"next_steps,omitempty" yaml:"next_steps,omitempty"`
}

// Failed builds a failed result carrying the given warnings.
func Failed(strategyID string, warnings ...string) StrategyResult {
	return StrategyResult{Success: false, StrategyID: strategyID, Warnings: warnings}
}

// Applicability is the outcome of a canApply check. Not applicable is a
// normal negative answer, not an error; Reasons explain either way.
type Applicability struct {
	Applicable bool     `json:"applicable" yaml:"applicable"`
	Reasons    []string `json:"reasons" yaml:"reasons"`
}

// Validation is the outcome of field-level input validation.
type Validation struct {
	Valid  bool              `json:"valid" yaml:"valid"`
	Errors map[string]string `json:"errors,omitempty" yaml:"errors,omitempty"`
}
