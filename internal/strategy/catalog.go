package strategy

import (
	"finplan/internal/config"
	"finplan/internal/sim"
)

// DefaultRegistry wires the built-in strategies against a config and an
// optional projection client. Called once at startup; the result is
// append-only from then on.
func DefaultRegistry(cfg *config.Config, client sim.Client) *Registry {
	r := NewRegistry()
	r.MustRegister(NewContributionWaterfall(cfg, client))
	r.MustRegister(NewGlidePath(cfg))
	r.MustRegister(NewDebtPayoff(cfg))
	r.MustRegister(NewEmergencyFund(cfg))
	return r
}
