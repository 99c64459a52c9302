package domain

// Category groups strategies in the catalog.
type Category string

const (
	CategoryDebt         Category = "debt"
	CategoryContribution Category = "contribution"
	CategoryAllocation   Category = "allocation"
	CategoryWithdrawal   Category = "withdrawal"
	CategoryTax          Category = "tax"
	CategorySavings      Category = "savings"
)

// StrategyDefinition is the catalog identity of a strategy. Immutable once
// registered.
type StrategyDefinition struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Category   Category `json:"category" yaml:"category"`
	Tier       int      `json:"tier" yaml:"tier"`
	Difficulty string   `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Tags       []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// ParamType selects the generic form control a parameter renders as.
type ParamType string

const (
	ParamNumber     ParamType = "number"
	ParamPercentage ParamType = "percentage"
	ParamBoolean    ParamType = "boolean"
	ParamSelection  ParamType = "selection"
	ParamText       ParamType = "text"
)

// Parameter describes one user-supplied input to a strategy. The presentation
// layer renders this generically; no per-strategy UI code exists.
type Parameter struct {
	Name        string          `json:"name" yaml:"name"`
	Type        ParamType       `json:"type" yaml:"type"`
	Label       string          `json:"label" yaml:"label"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Default     any             `json:"default,omitempty" yaml:"default,omitempty"`
	Min         *float64        `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *float64        `json:"max,omitempty" yaml:"max,omitempty"`
	Step        *float64        `json:"step,omitempty" yaml:"step,omitempty"`
	Options     []string        `json:"options,omitempty" yaml:"options,omitempty"`
	Required    bool            `json:"required" yaml:"required"`
	Validate    func(any) error `json:"-" yaml:"-"`
}

// FloatPtr is a convenience for Min/Max/Step literals in parameter schemas.
func FloatPtr(v float64) *float64 { return &v }
