package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"finplan/internal/domain"
)

// Config models finplan.yml: the contribution limit tables, growth
// assumptions, and glide-path defaults the strategies draw caps and rates
// from. Limit tables are illustrative inputs, not a tax-law source of truth.
type Config struct {
	Horizon struct {
		Years         int `yaml:"years"`
		RetirementAge int `yaml:"retirement_age"`
		EndAge        int `yaml:"end_age"`
	} `yaml:"horizon"`
	Limits struct {
		// Annual caps keyed by calendar year, falling back to Fallback when
		// the year is absent.
		Employee401k map[int]domain.Money `yaml:"employee_401k"`
		IRA          map[int]domain.Money `yaml:"ira"`
		HSA          map[int]domain.Money `yaml:"hsa"`
		Fallback     struct {
			Employee401k domain.Money `yaml:"employee_401k"`
			IRA          domain.Money `yaml:"ira"`
			HSA          domain.Money `yaml:"hsa"`
		} `yaml:"fallback"`
		CatchUpAge  int          `yaml:"catch_up_age"`
		CatchUp401k domain.Money `yaml:"catch_up_401k"`
		CatchUpIRA  domain.Money `yaml:"catch_up_ira"`
		CatchUpHSA  domain.Money `yaml:"catch_up_hsa"`
	} `yaml:"limits"`
	Growth struct {
		// Nominal annual return assumptions in percent.
		StockPct   float64 `yaml:"stock_pct"`
		BondPct    float64 `yaml:"bond_pct"`
		CashPct    float64 `yaml:"cash_pct"`
		BlendedPct float64 `yaml:"blended_pct"`
	} `yaml:"growth"`
	GlidePath struct {
		StartStockWeight float64 `yaml:"start_stock_weight"`
		EndStockWeight   float64 `yaml:"end_stock_weight"`
		FinalStockWeight float64 `yaml:"final_stock_weight"`
		Shape            string  `yaml:"shape"`
	} `yaml:"glide_path"`
	EmergencyFund struct {
		TargetMonths int `yaml:"target_months"`
	} `yaml:"emergency_fund"`
}

// Default returns the built-in configuration used when no file is supplied.
func Default() *Config {
	c := &Config{}
	c.Horizon.Years = 30
	c.Horizon.RetirementAge = 65
	c.Horizon.EndAge = 95
	c.Limits.Employee401k = map[int]domain.Money{
		2024: domain.MoneyFromInt(23000),
		2025: domain.MoneyFromInt(23500),
	}
	c.Limits.IRA = map[int]domain.Money{
		2024: domain.MoneyFromInt(7000),
		2025: domain.MoneyFromInt(7000),
	}
	c.Limits.HSA = map[int]domain.Money{
		2024: domain.MoneyFromInt(4150),
		2025: domain.MoneyFromInt(4300),
	}
	c.Limits.Fallback.Employee401k = domain.MoneyFromInt(23500)
	c.Limits.Fallback.IRA = domain.MoneyFromInt(7000)
	c.Limits.Fallback.HSA = domain.MoneyFromInt(4300)
	c.Limits.CatchUpAge = 50
	c.Limits.CatchUp401k = domain.MoneyFromInt(7500)
	c.Limits.CatchUpIRA = domain.MoneyFromInt(1000)
	c.Limits.CatchUpHSA = domain.MoneyFromInt(1000)
	c.Growth.StockPct = 7.0
	c.Growth.BondPct = 3.5
	c.Growth.CashPct = 1.5
	c.Growth.BlendedPct = 6.0
	c.GlidePath.StartStockWeight = 0.90
	c.GlidePath.EndStockWeight = 0.60
	c.GlidePath.FinalStockWeight = 0.30
	c.GlidePath.Shape = "sCurve"
	c.EmergencyFund.TargetMonths = 6
	return c
}

// Load reads config from path; a missing file falls back to Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML decodes and validates configuration bytes on top of the defaults.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Horizon.Years <= 0 {
		return fmt.Errorf("config.horizon.years must be positive")
	}
	if c.Horizon.RetirementAge <= 0 || c.Horizon.RetirementAge >= c.Horizon.EndAge {
		return fmt.Errorf("config.horizon.retirement_age must fall before end_age")
	}
	tables := map[string]map[int]domain.Money{
		"employee_401k": c.Limits.Employee401k,
		"ira":           c.Limits.IRA,
		"hsa":           c.Limits.HSA,
	}
	for name, table := range tables {
		for year, v := range table {
			if v.IsNegative() {
				return fmt.Errorf("config.limits.%s[%d] is negative", name, year)
			}
		}
	}
	if c.Limits.CatchUpAge <= 0 {
		return fmt.Errorf("config.limits.catch_up_age must be positive")
	}
	for _, w := range []float64{c.GlidePath.StartStockWeight, c.GlidePath.EndStockWeight, c.GlidePath.FinalStockWeight} {
		if w < 0 || w > 1 {
			return fmt.Errorf("config.glide_path weights must lie in [0, 1]")
		}
	}
	switch c.GlidePath.Shape {
	case "linear", "easeIn", "easeOut", "sCurve":
	default:
		return fmt.Errorf("config.glide_path.shape %q not recognized", c.GlidePath.Shape)
	}
	if c.EmergencyFund.TargetMonths <= 0 {
		return fmt.Errorf("config.emergency_fund.target_months must be positive")
	}
	return nil
}

// Limit401k resolves the employee 401(k) cap for a year and age, including
// the catch-up portion once eligible.
func (c *Config) Limit401k(year, age int) decimal.Decimal {
	base, ok := c.Limits.Employee401k[year]
	if !ok {
		base = c.Limits.Fallback.Employee401k
	}
	if age >= c.Limits.CatchUpAge {
		return base.Add(c.Limits.CatchUp401k.Decimal)
	}
	return base.Decimal
}

// LimitIRA resolves the IRA cap for a year and age.
func (c *Config) LimitIRA(year, age int) decimal.Decimal {
	base, ok := c.Limits.IRA[year]
	if !ok {
		base = c.Limits.Fallback.IRA
	}
	if age >= c.Limits.CatchUpAge {
		return base.Add(c.Limits.CatchUpIRA.Decimal)
	}
	return base.Decimal
}

// LimitHSA resolves the HSA cap for a year and age. HSA catch-up starts at
// 55 regardless of the retirement-account catch-up age.
func (c *Config) LimitHSA(year, age int) decimal.Decimal {
	base, ok := c.Limits.HSA[year]
	if !ok {
		base = c.Limits.Fallback.HSA
	}
	if age >= 55 {
		return base.Add(c.Limits.CatchUpHSA.Decimal)
	}
	return base.Decimal
}

// GlideShape converts the configured shape name for the allocation package.
func (c *Config) GlideShape() string { return c.GlidePath.Shape }
