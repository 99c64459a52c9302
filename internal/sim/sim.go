// Package sim is the boundary to the external projection engine. The core
// never computes projections itself; strategies may ask a Client for impact
// numbers and must treat a non-success response as data, not as an error.
package sim

import (
	"context"

	"finplan/internal/domain"
)

// Request is the pure-function input contract of the projection engine.
type Request struct {
	Seed         int64                   `json:"seed"`
	MonthsToRun  int                     `json:"months_to_run"`
	InitialState map[string]domain.Money `json:"initial_state,omitempty"`
	Events       []domain.FinancialEvent `json:"events"`
	Stochastic   bool                    `json:"stochastic,omitempty"`
	MCPaths      int                     `json:"mc_paths,omitempty"`
}

// EngineMeta identifies the engine build that produced a response.
type EngineMeta struct {
	Version       string `json:"version"`
	SchemaVersion string `json:"schema_version"`
	InputsHash    string `json:"inputs_hash"`
}

// PathSummary condenses one projection output series.
type PathSummary struct {
	FinalBalance  domain.Money `json:"final_balance"`
	MinBalance    domain.Money `json:"min_balance"`
	DepletedMonth int          `json:"depleted_month,omitempty"`
}

// MCSummary condenses a Monte Carlo run.
type MCSummary struct {
	SuccessRate float64      `json:"success_rate"`
	P10         domain.Money `json:"p10"`
	P50         domain.Money `json:"p50"`
	P90         domain.Money `json:"p90"`
}

// Response is the engine's reply. BlockedOutputs lists series the engine
// refused to compute; callers must surface them, never hide them.
type Response struct {
	Success        bool         `json:"success"`
	MC             *MCSummary   `json:"mc,omitempty"`
	Deterministic  *PathSummary `json:"deterministic,omitempty"`
	BlockedOutputs []string     `json:"blocked_outputs,omitempty"`
	EngineMeta     EngineMeta   `json:"engine_meta"`
}

// Client is the injected handle to the projection engine.
type Client interface {
	Project(ctx context.Context, req Request) (Response, error)
}
