package domain

import (
	"fmt"
	"time"
)

// IntervalUnit is the step unit of a custom interval schedule.
type IntervalUnit string

const (
	UnitDays   IntervalUnit = "days"
	UnitWeeks  IntervalUnit = "weeks"
	UnitMonths IntervalUnit = "months"
	UnitYears  IntervalUnit = "years"
)

// CustomSchedule is either an explicit date set or an interval rule; Dates
// wins when both are present.
type CustomSchedule struct {
	Dates    []time.Time  `json:"dates,omitempty" yaml:"dates,omitempty"`
	Interval int          `json:"interval,omitempty" yaml:"interval,omitempty"`
	Unit     IntervalUnit `json:"unit,omitempty" yaml:"unit,omitempty"`
	Until    *time.Time   `json:"until,omitempty" yaml:"until,omitempty"`
}

// ScheduleConfig describes how an abstract event recurs in calendar time.
type ScheduleConfig struct {
	Frequency Frequency       `json:"frequency" yaml:"frequency"`
	StartDate time.Time       `json:"start_date" yaml:"start_date"`
	EndDate   *time.Time      `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Custom    *CustomSchedule `json:"custom,omitempty" yaml:"custom,omitempty"`
}

// Validate checks structural requirements before expansion.
func (sc ScheduleConfig) Validate() error {
	switch sc.Frequency {
	case FrequencyOneTime, FrequencyMonthly, FrequencyQuarterly, FrequencyAnnually:
	case FrequencyCustom:
		if sc.Custom == nil {
			return fmt.Errorf("custom schedule requires a custom block")
		}
		if len(sc.Custom.Dates) == 0 {
			if sc.Custom.Interval <= 0 {
				return fmt.Errorf("custom schedule interval must be positive")
			}
			switch sc.Custom.Unit {
			case UnitDays, UnitWeeks, UnitMonths, UnitYears:
			default:
				return fmt.Errorf("custom schedule unit %q not recognized", sc.Custom.Unit)
			}
		}
	default:
		return fmt.Errorf("frequency %q not recognized", sc.Frequency)
	}
	if sc.StartDate.IsZero() && (sc.Custom == nil || len(sc.Custom.Dates) == 0) {
		return fmt.Errorf("start date is required")
	}
	if sc.EndDate != nil && sc.EndDate.Before(sc.StartDate) {
		return fmt.Errorf("end date precedes start date")
	}
	return nil
}
