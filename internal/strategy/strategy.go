// Package strategy holds the strategy contract, the catalog registry, and the
// concrete strategy implementations. A strategy is a pure function of
// (execution context, user inputs): it derives new scheduled events,
// recommendations, and impact estimates, and never mutates its inputs.
package strategy

import (
	"context"
	"fmt"

	"finplan/internal/domain"
)

// Strategy is the capability set every catalog entry implements.
type Strategy interface {
	// Definition returns the immutable catalog identity.
	Definition() domain.StrategyDefinition

	// Parameters returns the schema the presentation layer renders
	// generically. Pure, no side effects.
	Parameters() []domain.Parameter

	// CanApply is a pure predicate over the context. A false answer is a
	// normal negative result, not an error; Reasons explain either way.
	CanApply(ec *domain.ExecutionContext) domain.Applicability

	// ValidateInputs checks user inputs against the parameter schema. It
	// returns field-level errors and never panics.
	ValidateInputs(inputs map[string]any) domain.Validation

	// Execute derives the strategy's events and recommendations from the
	// context. Errors are converted to failed results at the executor
	// boundary; Execute itself should prefer returning them.
	Execute(ctx context.Context, ec *domain.ExecutionContext) (domain.StrategyResult, error)

	// EstimateImpact produces the same projection Execute would embed,
	// callable independently for what-if comparison.
	EstimateImpact(ctx context.Context, ec *domain.ExecutionContext) (domain.Impact, error)
}

// ValidateAgainst is the shared schema-driven input validation used by every
// strategy: required-ness, numeric range, enum membership, then the
// parameter's custom validator.
func ValidateAgainst(params []domain.Parameter, inputs map[string]any) domain.Validation {
	errs := map[string]string{}
	for _, p := range params {
		raw, present := inputs[p.Name]
		if !present || raw == nil {
			if p.Required && p.Default == nil {
				errs[p.Name] = "required"
			}
			continue
		}
		switch p.Type {
		case domain.ParamNumber, domain.ParamPercentage:
			v, ok := toFloat(raw)
			if !ok {
				errs[p.Name] = "must be a number"
				continue
			}
			if p.Min != nil && v < *p.Min {
				errs[p.Name] = fmt.Sprintf("must be at least %v", *p.Min)
				continue
			}
			if p.Max != nil && v > *p.Max {
				errs[p.Name] = fmt.Sprintf("must be at most %v", *p.Max)
				continue
			}
		case domain.ParamBoolean:
			if _, ok := raw.(bool); !ok {
				errs[p.Name] = "must be a boolean"
				continue
			}
		case domain.ParamSelection:
			s, ok := raw.(string)
			if !ok {
				errs[p.Name] = "must be a string"
				continue
			}
			if len(p.Options) > 0 && !contains(p.Options, s) {
				errs[p.Name] = fmt.Sprintf("must be one of %v", p.Options)
				continue
			}
		case domain.ParamText:
			if _, ok := raw.(string); !ok {
				errs[p.Name] = "must be a string"
				continue
			}
		}
		if p.Validate != nil {
			if err := p.Validate(raw); err != nil {
				errs[p.Name] = err.Error()
			}
		}
	}
	return domain.Validation{Valid: len(errs) == 0, Errors: errs}
}

func contains(opts []string, v string) bool {
	for _, o := range opts {
		if o == v {
			return true
		}
	}
	return false
}
