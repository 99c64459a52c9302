// Package plan holds the user's financial plan file and the composition logic
// that folds a strategy result back into the event ledger.
package plan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"finplan/internal/domain"
)

// Profile is the plan owner's anchor data. CurrentYear pins month offsets to
// calendar time.
type Profile struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	CurrentAge  int    `json:"current_age" yaml:"current_age"`
	CurrentYear int    `json:"current_year" yaml:"current_year"`
}

// Plan is the on-disk plan document: a profile plus the event ledger.
type Plan struct {
	Profile Profile                 `json:"profile" yaml:"profile"`
	Events  []domain.FinancialEvent `json:"events" yaml:"events"`
}

// Load reads a plan document from a YAML file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("load plan %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("load plan %s: %w", path, err)
	}
	return &p, nil
}

// Save writes the plan document as YAML.
func (p *Plan) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save plan %s: %w", path, err)
	}
	return nil
}

// Validate checks structural requirements of a loaded plan.
func (p *Plan) Validate() error {
	if p.Profile.CurrentYear <= 0 {
		return fmt.Errorf("profile current_year is required")
	}
	if p.Profile.CurrentAge < 0 {
		return fmt.Errorf("profile current_age must not be negative")
	}
	for i, ev := range p.Events {
		if ev.Type == "" {
			return fmt.Errorf("event %d: type is required", i)
		}
		if ev.Schedule != nil {
			if err := ev.Schedule.Validate(); err != nil {
				return fmt.Errorf("event %d (%s): %w", i, ev.Name, err)
			}
		}
	}
	return nil
}

// Context builds the execution snapshot strategies evaluate against.
func (p *Plan) Context() *domain.ExecutionContext {
	events := make([]domain.FinancialEvent, len(p.Events))
	copy(events, p.Events)
	return &domain.ExecutionContext{
		Events:      events,
		CurrentAge:  p.Profile.CurrentAge,
		CurrentYear: p.Profile.CurrentYear,
	}
}
