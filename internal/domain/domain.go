package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType tags a FinancialEvent variant.
type EventType string

const (
	EventIncome           EventType = "income"
	EventSalary           EventType = "salary"
	EventBonus            EventType = "bonus"
	EventExpense          EventType = "expense"
	EventRecurringCost    EventType = "recurring_cost"
	EventContribution     EventType = "contribution"
	EventEmployerMatch    EventType = "employer_match"
	EventWithdrawal       EventType = "withdrawal"
	EventConversion       EventType = "conversion"
	EventAllocationSet    EventType = "allocation_set"
	EventTransfer         EventType = "transfer"
	EventDebtPayment      EventType = "debt_payment"
	EventDebtBalance      EventType = "debt_balance"
	EventWindfall         EventType = "windfall"
	EventPurchase         EventType = "purchase"
	EventSale             EventType = "sale"
	EventTaxPayment       EventType = "tax_payment"
	EventSocialSecurity   EventType = "social_security"
	EventPension          EventType = "pension"
	EventRebalance        EventType = "rebalance"
	EventSavingsDeposit   EventType = "savings_deposit"
	EventInsurancePremium EventType = "insurance_premium"
)

// Frequency describes how often an event repeats.
type Frequency string

const (
	FrequencyOneTime   Frequency = "one-time"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnually  Frequency = "annually"
	FrequencyCustom    Frequency = "custom"
)

// AccountType identifies the bucket an event targets.
type AccountType string

const (
	AccountPretax401k AccountType = "401k"
	AccountRothIRA    AccountType = "roth_ira"
	AccountHSA        AccountType = "hsa"
	AccountTaxable    AccountType = "taxable"
	AccountSavings    AccountType = "savings"
	AccountDebt       AccountType = "debt"
)

// EventMetadata marks lineage on strategy-generated events. StrategyID and
// AccountTag form the merge key: a strategy re-run matches its prior output
// on this pair.
type EventMetadata struct {
	StrategyID string `json:"strategy_id,omitempty" yaml:"strategy_id,omitempty"`
	AccountTag string `json:"account_tag,omitempty" yaml:"account_tag,omitempty"`
	Source     string `json:"source,omitempty" yaml:"source,omitempty"`
}

// FinancialEvent is one entry in a plan's event ledger. At most one of the
// Details pointers, the one matching Type, may be set.
type FinancialEvent struct {
	ID            string          `json:"id" yaml:"id"`
	Type          EventType       `json:"type" yaml:"type"`
	Name          string          `json:"name" yaml:"name"`
	MonthOffset   int             `json:"month_offset" yaml:"month_offset"`
	Amount        Money           `json:"amount" yaml:"amount"`
	Frequency     Frequency       `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	TargetAccount AccountType     `json:"target_account,omitempty" yaml:"target_account,omitempty"`
	Metadata      EventMetadata   `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Schedule      *ScheduleConfig `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	Details       EventDetails    `json:"details,omitempty" yaml:"details,omitempty"`
}

// EventDetails carries the variant-specific payload for an event. One pointer
// per variant family keeps the set closed while staying serializable.
type EventDetails struct {
	Income       *IncomeDetails       `json:"income,omitempty" yaml:"income,omitempty"`
	Expense      *ExpenseDetails      `json:"expense,omitempty" yaml:"expense,omitempty"`
	Contribution *ContributionDetails `json:"contribution,omitempty" yaml:"contribution,omitempty"`
	Withdrawal   *WithdrawalDetails   `json:"withdrawal,omitempty" yaml:"withdrawal,omitempty"`
	Conversion   *ConversionDetails   `json:"conversion,omitempty" yaml:"conversion,omitempty"`
	Allocation   *AllocationDetails   `json:"allocation,omitempty" yaml:"allocation,omitempty"`
	Debt         *DebtDetails         `json:"debt,omitempty" yaml:"debt,omitempty"`
}

type IncomeDetails struct {
	AnnualRaisePct float64 `json:"annual_raise_pct,omitempty" yaml:"annual_raise_pct,omitempty"`
	Taxable        bool    `json:"taxable" yaml:"taxable"`
}

type ExpenseDetails struct {
	Category     string  `json:"category,omitempty" yaml:"category,omitempty"`
	InflationPct float64 `json:"inflation_pct,omitempty" yaml:"inflation_pct,omitempty"`
	Essential    bool    `json:"essential,omitempty" yaml:"essential,omitempty"`
}

type ContributionDetails struct {
	EmployerMatchPct float64         `json:"employer_match_pct,omitempty" yaml:"employer_match_pct,omitempty"`
	MatchCap         Money           `json:"match_cap,omitempty" yaml:"match_cap,omitempty"`
	AnnualCap        Money           `json:"annual_cap,omitempty" yaml:"annual_cap,omitempty"`
}

type WithdrawalDetails struct {
	Ordering []AccountType `json:"ordering,omitempty" yaml:"ordering,omitempty"`
}

type ConversionDetails struct {
	FromAccount AccountType `json:"from_account" yaml:"from_account"`
	ToAccount   AccountType `json:"to_account" yaml:"to_account"`
}

type AllocationDetails struct {
	StockWeight float64 `json:"stock_weight" yaml:"stock_weight"`
	BondWeight  float64 `json:"bond_weight" yaml:"bond_weight"`
	CashWeight  float64 `json:"cash_weight,omitempty" yaml:"cash_weight,omitempty"`
}

type DebtDetails struct {
	AnnualRatePct  float64         `json:"annual_rate_pct" yaml:"annual_rate_pct"`
	Balance        Money           `json:"balance" yaml:"balance"`
	MinimumPayment Money           `json:"minimum_payment,omitempty" yaml:"minimum_payment,omitempty"`
}

// SimulationConfig is handed through to the external projection engine.
type SimulationConfig struct {
	Seed        int64 `json:"seed" yaml:"seed"`
	MonthsToRun int   `json:"months_to_run" yaml:"months_to_run"`
	MCPaths     int   `json:"mc_paths,omitempty" yaml:"mc_paths,omitempty"`
	Stochastic  bool  `json:"stochastic,omitempty" yaml:"stochastic,omitempty"`
}

// ExecutionContext is the read-only snapshot a strategy evaluates against.
// Strategies derive new events from it but never mutate it.
type ExecutionContext struct {
	Events      []FinancialEvent `json:"events" yaml:"events"`
	Inputs      map[string]any   `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	CurrentAge  int              `json:"current_age" yaml:"current_age"`
	CurrentYear int              `json:"current_year" yaml:"current_year"`
	Sim         SimulationConfig `json:"sim" yaml:"sim"`
}

// Now returns the first day of the context's current year, the anchor all
// month offsets are computed against.
func (ec *ExecutionContext) Now() time.Time {
	return time.Date(ec.CurrentYear, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// EventsByType filters the ledger by type tag.
func (ec *ExecutionContext) EventsByType(t EventType) []FinancialEvent {
	var out []FinancialEvent
	for _, ev := range ec.Events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// EventsByStrategy returns prior output of a strategy, optionally narrowed to
// one account tag. Re-run detection keys on this.
func (ec *ExecutionContext) EventsByStrategy(strategyID, accountTag string) []FinancialEvent {
	var out []FinancialEvent
	for _, ev := range ec.Events {
		if ev.Metadata.StrategyID != strategyID {
			continue
		}
		if accountTag != "" && ev.Metadata.AccountTag != accountTag {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// MonthlyIncome sums income-family ledger entries with a monthly frequency.
func (ec *ExecutionContext) MonthlyIncome() decimal.Decimal {
	total := decimal.Zero
	for _, ev := range ec.Events {
		switch ev.Type {
		case EventIncome, EventSalary:
			if ev.Frequency == FrequencyMonthly {
				total = total.Add(ev.Amount.Decimal)
			}
		}
	}
	return total
}

// MonthlyExpenses sums expense-family ledger entries with a monthly frequency.
func (ec *ExecutionContext) MonthlyExpenses() decimal.Decimal {
	total := decimal.Zero
	for _, ev := range ec.Events {
		switch ev.Type {
		case EventExpense, EventRecurringCost, EventInsurancePremium:
			if ev.Frequency == FrequencyMonthly {
				total = total.Add(ev.Amount.Decimal)
			}
		}
	}
	return total
}
