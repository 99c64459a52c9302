package schedule

import (
	"fmt"
	"sort"
	"time"

	"finplan/internal/domain"
)

// DefaultHorizonYears bounds open-ended recurrences.
const DefaultHorizonYears = 30

// Expand turns a recurrence description into a finite ascending sequence of
// concrete dates, inclusive of the start date. Open-ended frequencies stop at
// the default horizon.
func Expand(cfg domain.ScheduleConfig) ([]time.Time, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("expand schedule: %w", err)
	}
	switch cfg.Frequency {
	case domain.FrequencyOneTime:
		return []time.Time{cfg.StartDate}, nil
	case domain.FrequencyMonthly:
		return stepMonths(cfg.StartDate, end(cfg), 1), nil
	case domain.FrequencyQuarterly:
		return stepMonths(cfg.StartDate, end(cfg), 3), nil
	case domain.FrequencyAnnually:
		return stepMonths(cfg.StartDate, end(cfg), 12), nil
	case domain.FrequencyCustom:
		return expandCustom(cfg)
	}
	return nil, fmt.Errorf("expand schedule: frequency %q not recognized", cfg.Frequency)
}

func end(cfg domain.ScheduleConfig) time.Time {
	if cfg.EndDate != nil {
		return *cfg.EndDate
	}
	return cfg.StartDate.AddDate(DefaultHorizonYears, 0, 0)
}

func expandCustom(cfg domain.ScheduleConfig) ([]time.Time, error) {
	cs := cfg.Custom
	if len(cs.Dates) > 0 {
		out := make([]time.Time, len(cs.Dates))
		copy(out, cs.Dates)
		sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
		return out, nil
	}
	until := end(cfg)
	if cs.Until != nil {
		until = *cs.Until
	}
	if until.Before(cfg.StartDate) {
		return nil, fmt.Errorf("expand schedule: until precedes start date")
	}
	switch cs.Unit {
	case domain.UnitDays:
		return stepDays(cfg.StartDate, until, cs.Interval), nil
	case domain.UnitWeeks:
		return stepDays(cfg.StartDate, until, cs.Interval*7), nil
	case domain.UnitMonths:
		return stepMonths(cfg.StartDate, until, cs.Interval), nil
	case domain.UnitYears:
		return stepMonths(cfg.StartDate, until, cs.Interval*12), nil
	}
	return nil, fmt.Errorf("expand schedule: unit %q not recognized", cs.Unit)
}

func stepDays(start, until time.Time, days int) []time.Time {
	var out []time.Time
	for d := start; !d.After(until); d = d.AddDate(0, 0, days) {
		out = append(out, d)
	}
	return out
}

// stepMonths advances by whole months from the original start so a day-31
// anchor never drifts across short months.
func stepMonths(start, until time.Time, step int) []time.Time {
	var out []time.Time
	for i := 0; ; i++ {
		d := addMonths(start, i*step)
		if d.After(until) {
			return out
		}
		out = append(out, d)
	}
}

// addMonths is AddDate without normalization overflow: the day of month is
// clamped to the target month's length instead of rolling forward.
func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 + months
	ty := y + total/12
	tm := time.Month(total%12 + 1)
	if total < 0 {
		// Go integer division truncates toward zero
		ty = y + (total-11)/12
		tm = time.Month((total%12+12)%12 + 1)
	}
	if last := daysIn(ty, tm); d > last {
		d = last
	}
	h, min, sec := t.Clock()
	return time.Date(ty, tm, d, h, min, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthOffset is the whole-month distance from one date to another, ignoring
// day of month. Negative when to precedes from.
func MonthOffset(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}
