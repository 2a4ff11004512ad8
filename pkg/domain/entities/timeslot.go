package entities

import (
	"fmt"
	"math"
)

// SlotIndex is the flat zero-based position of a TimeSlot on the planning horizon
type SlotIndex int

// TimeSlot represents a (period, sub-period) pair, e.g. (month, business day). Both are 1-based.
type TimeSlot struct {
	Period    int `json:"period" yaml:"period"`
	SubPeriod int `json:"sub_period" yaml:"sub_period"`
}

// String renders the slot as P<period>.<sub-period>
func (s TimeSlot) String() string {
	return fmt.Sprintf("P%d.%d", s.Period, s.SubPeriod)
}

// Compare returns -1, 0 or 1 ordering slots chronologically
func (s TimeSlot) Compare(other TimeSlot) int {
	switch {
	case s.Period < other.Period:
		return -1
	case s.Period > other.Period:
		return 1
	case s.SubPeriod < other.SubPeriod:
		return -1
	case s.SubPeriod > other.SubPeriod:
		return 1
	default:
		return 0
	}
}

// Before reports whether s is strictly earlier than other
func (s TimeSlot) Before(other TimeSlot) bool {
	return s.Compare(other) < 0
}

// Calendar fixes the horizon shape: a number of periods, each split into the same sub-period count.
type Calendar struct {
	SubPeriodsPerPeriod int `json:"sub_periods_per_period" yaml:"sub_periods_per_period" mapstructure:"sub_periods_per_period"`
	Periods             int `json:"periods" yaml:"periods" mapstructure:"periods"`
}

// Business-calendar defaults: 21 working days a month over ten years.
const (
	DefaultSubPeriodsPerPeriod = 21
	DefaultPeriods             = 120
)

// NewCalendar creates a validated calendar
func NewCalendar(subPeriodsPerPeriod, periods int) (*Calendar, error) {
	c := &Calendar{SubPeriodsPerPeriod: subPeriodsPerPeriod, Periods: periods}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the calendar dimensions
func (c Calendar) Validate() error {
	if c.SubPeriodsPerPeriod <= 0 {
		return fmt.Errorf("sub-periods per period must be positive, got %d", c.SubPeriodsPerPeriod)
	}
	if c.Periods <= 0 {
		return fmt.Errorf("periods must be positive, got %d", c.Periods)
	}
	return nil
}

// Len is the number of slots on the horizon
func (c Calendar) Len() int {
	return c.SubPeriodsPerPeriod * c.Periods
}

// Contains reports whether idx lies on the horizon
func (c Calendar) Contains(idx SlotIndex) bool {
	return idx >= 0 && int(idx) < c.Len()
}

// Index linearizes a slot. The slot is not required to be inside the horizon.
func (c Calendar) Index(s TimeSlot) SlotIndex {
	return SlotIndex((s.Period-1)*c.SubPeriodsPerPeriod + (s.SubPeriod - 1))
}

// Slot splits a flat index back into (period, sub-period); sub-period is always in [1, S].
func (c Calendar) Slot(idx SlotIndex) TimeSlot {
	s := c.SubPeriodsPerPeriod
	i := int(idx)
	period := i / s
	sub := i % s
	if sub < 0 {
		sub += s
		period--
	}
	return TimeSlot{Period: period + 1, SubPeriod: sub + 1}
}

// Add shifts a slot by lead sub-periods, carrying into later periods as needed.
func (c Calendar) Add(s TimeSlot, lead int) TimeSlot {
	return c.Slot(c.Index(s) + SlotIndex(lead))
}

// ParseSlot validates a raw (period, sub-period) pair against the calendar
func (c Calendar) ParseSlot(period, subPeriod int) (TimeSlot, error) {
	if subPeriod < 1 || subPeriod > c.SubPeriodsPerPeriod {
		return TimeSlot{}, fmt.Errorf("sub-period must be in [1, %d], got %d", c.SubPeriodsPerPeriod, subPeriod)
	}
	if period < 1 || period > c.Periods {
		return TimeSlot{}, fmt.Errorf("period must be in [1, %d], got %d", c.Periods, period)
	}
	return TimeSlot{Period: period, SubPeriod: subPeriod}, nil
}

// BusinessDays converts a calendar-day duration to working days (five per seven), rounded.
func BusinessDays(calendarDays int) int {
	return int(math.Round(float64(calendarDays) * 5.0 / 7.0))
}
