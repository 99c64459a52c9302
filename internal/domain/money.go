package domain

import (
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Money is a decimal amount. The wrapper exists so amounts round-trip through
// YAML plan files as plain scalars; arithmetic happens on the embedded
// decimal.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money { return Money{d} }
func MoneyFromInt(v int64) Money       { return Money{decimal.NewFromInt(v)} }
func MoneyFromFloat(v float64) Money   { return Money{decimal.NewFromFloat(v)} }

// MoneyFromString parses a decimal scalar, returning zero on failure.
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return Money{d}, nil
}

func (m Money) MarshalYAML() (any, error) {
	return m.Decimal.String(), nil
}

func (m *Money) UnmarshalYAML(value *yaml.Node) error {
	d, err := decimal.NewFromString(value.Value)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", value.Value, err)
	}
	m.Decimal = d
	return nil
}

// Schema renders Money as a decimal string in the generated OpenAPI.
func (m Money) Schema(r huma.Registry) *huma.Schema {
	return &huma.Schema{Type: "string", Pattern: `^-?\d+(\.\d+)?$`, Description: "decimal amount"}
}
