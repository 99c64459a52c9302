package config

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Horizon.RetirementAge != 65 {
		t.Fatalf("retirement age = %d, want default 65", cfg.Horizon.RetirementAge)
	}
}

func TestFromYAMLOverridesDefaults(t *testing.T) {
	doc := []byte("horizon:\n  years: 20\n  retirement_age: 60\n  end_age: 90\n")
	cfg, err := FromYAML(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Horizon.Years != 20 || cfg.Horizon.RetirementAge != 60 {
		t.Fatalf("horizon = %+v", cfg.Horizon)
	}
	// Untouched sections keep their defaults.
	if cfg.EmergencyFund.TargetMonths != 6 {
		t.Fatalf("target months = %d, want default 6", cfg.EmergencyFund.TargetMonths)
	}
}

func TestFromYAMLRejectsInvalid(t *testing.T) {
	cases := []string{
		"horizon:\n  years: 0\n",
		"horizon:\n  retirement_age: 96\n",
		"glide_path:\n  shape: zigzag\n",
		"glide_path:\n  start_stock_weight: 1.5\n",
		"emergency_fund:\n  target_months: 0\n",
	}
	for _, doc := range cases {
		if _, err := FromYAML([]byte(doc)); err == nil {
			t.Fatalf("accepted invalid config %q", doc)
		}
	}
}

func TestLimitsCatchUp(t *testing.T) {
	cfg := Default()
	cases := []struct {
		name string
		got  decimal.Decimal
		want int64
	}{
		{"401k under 50", cfg.Limit401k(2025, 35), 23500},
		{"401k at 50", cfg.Limit401k(2025, 50), 31000},
		{"ira at 50", cfg.LimitIRA(2025, 50), 8000},
		{"hsa at 50", cfg.LimitHSA(2025, 50), 4300},
		{"hsa at 55", cfg.LimitHSA(2025, 55), 5300},
	}
	for _, tc := range cases {
		if !tc.got.Equal(decimal.NewFromInt(tc.want)) {
			t.Fatalf("%s = %s, want %d", tc.name, tc.got, tc.want)
		}
	}
}

func TestLimitsFallbackYear(t *testing.T) {
	cfg := Default()
	if got := cfg.Limit401k(2032, 35); !got.Equal(decimal.NewFromInt(23500)) {
		t.Fatalf("fallback 401k = %s", got)
	}
	if got := cfg.LimitIRA(2032, 35); !got.Equal(decimal.NewFromInt(7000)) {
		t.Fatalf("fallback ira = %s", got)
	}
}
