package strategy

import (
	"context"
	"errors"
	"testing"

	"finplan/internal/config"
	"finplan/internal/domain"
	"finplan/internal/sim"
)

type fakeStrategy struct {
	def     domain.StrategyDefinition
	applies bool
}

func (f *fakeStrategy) Definition() domain.StrategyDefinition { return f.def }
func (f *fakeStrategy) Parameters() []domain.Parameter        { return nil }
func (f *fakeStrategy) CanApply(*domain.ExecutionContext) domain.Applicability {
	return domain.Applicability{Applicable: f.applies}
}
func (f *fakeStrategy) ValidateInputs(map[string]any) domain.Validation {
	return domain.Validation{Valid: true}
}
func (f *fakeStrategy) Execute(context.Context, *domain.ExecutionContext) (domain.StrategyResult, error) {
	return domain.StrategyResult{Success: true}, nil
}
func (f *fakeStrategy) EstimateImpact(context.Context, *domain.ExecutionContext) (domain.Impact, error) {
	return domain.Impact{}, nil
}

func fake(id string, cat domain.Category, applies bool) *fakeStrategy {
	return &fakeStrategy{def: domain.StrategyDefinition{ID: id, Category: cat}, applies: applies}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(fake("a", domain.CategorySavings, true)); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(fake("a", domain.CategoryDebt, true)); err == nil {
		t.Fatalf("duplicate id accepted")
	}
	if err := r.Register(fake("", domain.CategoryDebt, true)); err == nil {
		t.Fatalf("empty id accepted")
	}
}

func TestRegistryByID(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(fake("a", domain.CategorySavings, true))

	if _, err := r.ByID("a"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	_, err := r.ByID("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRegistryPreservesOrder(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"c", "a", "b"} {
		r.MustRegister(fake(id, domain.CategorySavings, true))
	}
	all := r.All()
	if len(all) != 3 {
		t.Fatalf("got %d strategies", len(all))
	}
	for i, want := range []string{"c", "a", "b"} {
		if got := all[i].Definition().ID; got != want {
			t.Fatalf("position %d = %q, want %q", i, got, want)
		}
	}
}

func TestRegistryByCategory(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(fake("s1", domain.CategorySavings, true))
	r.MustRegister(fake("d1", domain.CategoryDebt, true))
	r.MustRegister(fake("s2", domain.CategorySavings, true))

	savings := r.ByCategory(domain.CategorySavings)
	if len(savings) != 2 || savings[0].Definition().ID != "s1" || savings[1].Definition().ID != "s2" {
		t.Fatalf("savings = %v", savings)
	}
}

func TestRegistryApplicable(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(fake("yes", domain.CategorySavings, true))
	r.MustRegister(fake("no", domain.CategoryDebt, false))

	got := r.Applicable(&domain.ExecutionContext{})
	if len(got) != 1 || got[0].Strategy.Definition().ID != "yes" {
		t.Fatalf("applicable = %v", got)
	}
}

func TestDefaultRegistryCatalog(t *testing.T) {
	r := DefaultRegistry(config.Default(), sim.Noop{})
	want := []string{ContributionWaterfallID, GlidePathID, DebtPayoffID, EmergencyFundID}
	all := r.All()
	if len(all) != len(want) {
		t.Fatalf("catalog has %d strategies, want %d", len(all), len(want))
	}
	for i, id := range want {
		if all[i].Definition().ID != id {
			t.Fatalf("position %d = %q, want %q", i, all[i].Definition().ID, id)
		}
	}
}
