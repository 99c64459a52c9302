package strategy

import (
	"errors"
	"fmt"

	"finplan/internal/domain"
)

// ErrNotFound is returned when a strategy id is absent from the catalog.
var ErrNotFound = errors.New("strategy not found")

// Registry is the append-only strategy catalog. It is populated once at
// startup and read concurrently without locking afterwards; nothing mutates
// it after registration. An explicit object rather than package state so
// tests can build their own.
type Registry struct {
	order []string
	byID  map[string]Strategy
}

// NewRegistry returns an empty catalog.
func NewRegistry() *Registry {
	return &Registry{byID: map[string]Strategy{}}
}

// Register adds a strategy, rejecting duplicate or empty ids.
func (r *Registry) Register(s Strategy) error {
	id := s.Definition().ID
	if id == "" {
		return fmt.Errorf("register strategy: empty id")
	}
	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("register strategy: duplicate id %q", id)
	}
	r.byID[id] = s
	r.order = append(r.order, id)
	return nil
}

// MustRegister is Register for startup wiring, where a duplicate is a
// programming error.
func (r *Registry) MustRegister(s Strategy) {
	if err := r.Register(s); err != nil {
		panic(err)
	}
}

// All returns strategies in registration order.
func (r *Registry) All() []Strategy {
	out := make([]Strategy, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// ByID looks a strategy up, returning ErrNotFound when absent.
func (r *Registry) ByID(id string) (Strategy, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// ByCategory filters the catalog, preserving registration order.
func (r *Registry) ByCategory(cat domain.Category) []Strategy {
	var out []Strategy
	for _, id := range r.order {
		if r.byID[id].Definition().Category == cat {
			out = append(out, r.byID[id])
		}
	}
	return out
}

// Candidate pairs a strategy with its applicability verdict for a context.
type Candidate struct {
	Strategy      Strategy
	Applicability domain.Applicability
}

// Applicable evaluates every strategy's canApply against the context and
// returns those that apply.
func (r *Registry) Applicable(ec *domain.ExecutionContext) []Candidate {
	var out []Candidate
	for _, id := range r.order {
		s := r.byID[id]
		a := s.CanApply(ec)
		if a.Applicable {
			out = append(out, Candidate{Strategy: s, Applicability: a})
		}
	}
	return out
}
