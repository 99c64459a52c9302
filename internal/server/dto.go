package server

import (
	"finplan/internal/domain"
	"finplan/internal/strategy"
)

// StrategyResponse is the catalog view of one strategy: its identity plus the
// parameter schema a client renders generically.
type StrategyResponse struct {
	Definition domain.StrategyDefinition `json:"definition"`
	Parameters []domain.Parameter        `json:"parameters"`
}

type StrategyListResponse struct {
	Strategies []StrategyResponse `json:"strategies"`
}

// ApplicabilityRequest carries the plan context a canApply check runs over.
type ApplicabilityRequest struct {
	Context domain.ExecutionContext `json:"context"`
	Inputs  map[string]any          `json:"inputs,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// RunRequest carries the plan context and user inputs for one execution.
type RunRequest struct {
	Context domain.ExecutionContext `json:"context"`
	Inputs  map[string]any          `json:"inputs,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// ComposeRequest merges a strategy result into an event ledger.
type ComposeRequest struct {
	Events []domain.FinancialEvent `json:"events"`
	Result domain.StrategyResult   `json:"result"`
}

type ComposeResponse struct {
	Events []domain.FinancialEvent `json:"events"`
}

func toStrategyResponse(s strategy.Strategy) StrategyResponse {
	params := s.Parameters()
	if params == nil {
		params = []domain.Parameter{}
	}
	return StrategyResponse{Definition: s.Definition(), Parameters: params}
}
