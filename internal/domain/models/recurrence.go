// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Frequency is the repetition unit of a recurrence pattern.
type Frequency string

// Frequency constants for the supported repetition units.
const (
	// FrequencyDaily repeats every N days.
	FrequencyDaily Frequency = "daily"
	// FrequencyWeekly repeats on a set of weekdays every N weeks.
	FrequencyWeekly Frequency = "weekly"
	// FrequencyMonthly repeats on the anchor's day of month every N months.
	FrequencyMonthly Frequency = "monthly"
)

// Validation errors for recurrence patterns. Services wrap these in a
// validation DomainError so the violated rule survives in the error chain.
var (
	// ErrUnknownFrequency means the frequency is not daily, weekly or monthly.
	ErrUnknownFrequency = errors.New("unknown recurrence frequency")

	// ErrIntervalTooSmall means the interval is below 1.
	ErrIntervalTooSmall = errors.New("recurrence interval must be at least 1")

	// ErrWeeklyDaysRequired means a weekly pattern has no days of week.
	ErrWeeklyDaysRequired = errors.New("weekly recurrence must specify at least one day of week")

	// ErrDaysOfWeekNotAllowed means a non-weekly pattern carries days of week.
	ErrDaysOfWeekNotAllowed = errors.New("days of week are only valid for weekly recurrence")

	// ErrDuplicateDayOfWeek means the day set contains the same day twice.
	ErrDuplicateDayOfWeek = errors.New("days of week must not contain duplicates")

	// ErrInvalidDayOfWeek means a day is outside Sunday through Saturday.
	ErrInvalidDayOfWeek = errors.New("day of week must be between Sunday and Saturday")

	// ErrAmbiguousTermination means both an end date and a count are set.
	ErrAmbiguousTermination = errors.New("cannot specify both an end date and an occurrence count")

	// ErrCountTooSmall means the occurrence count is below 1.
	ErrCountTooSmall = errors.New("occurrence count must be at least 1")
)

// Termination describes how a recurrence pattern ends: never, on a final
// calendar date, or after a fixed number of occurrences. At most one of
// EndDate and Count may be set.
type Termination struct {
	EndDate *time.Time
	Count   *int
}

// NeverEnds returns the termination of an unbounded series.
func NeverEnds() Termination {
	return Termination{}
}

// EndsOn returns a termination whose final occurrence falls on or before the
// given date. The comparison is by calendar day, so the time of day of
// endDate does not matter.
func EndsOn(endDate time.Time) Termination {
	return Termination{EndDate: &endDate}
}

// EndsAfter returns a termination that stops the series after count
// occurrences, counted from the series anchor.
func EndsAfter(count int) Termination {
	return Termination{Count: &count}
}

// RecurrencePattern is the key-value store representation of how an event
// series repeats. Construct one with NewDailyPattern, NewWeeklyPattern or
// NewMonthlyPattern; values decoded from the wire must be checked with
// Validate before use.
type RecurrencePattern struct {
	Frequency  Frequency      `json:"frequency"`
	Interval   int            `json:"interval"`
	DaysOfWeek []time.Weekday `json:"days_of_week,omitempty"`
	EndDate    *time.Time     `json:"end_date,omitempty"`
	Count      int            `json:"count,omitempty"`
}

// NewDailyPattern builds a validated daily pattern repeating every interval days.
func NewDailyPattern(interval int, termination Termination) (*RecurrencePattern, error) {
	return newPattern(FrequencyDaily, interval, nil, termination)
}

// NewWeeklyPattern builds a validated weekly pattern repeating on the given
// days every interval weeks.
func NewWeeklyPattern(interval int, daysOfWeek []time.Weekday, termination Termination) (*RecurrencePattern, error) {
	return newPattern(FrequencyWeekly, interval, daysOfWeek, termination)
}

// NewMonthlyPattern builds a validated monthly pattern repeating every
// interval months on the anchor's day of month.
func NewMonthlyPattern(interval int, termination Termination) (*RecurrencePattern, error) {
	return newPattern(FrequencyMonthly, interval, nil, termination)
}

func newPattern(frequency Frequency, interval int, daysOfWeek []time.Weekday, termination Termination) (*RecurrencePattern, error) {
	pattern := &RecurrencePattern{
		Frequency:  frequency,
		Interval:   interval,
		DaysOfWeek: slices.Clone(daysOfWeek),
		EndDate:    termination.EndDate,
	}
	if termination.Count != nil {
		// An explicit count below 1 is rejected here because the stored zero
		// value doubles as "no count termination".
		if *termination.Count < 1 {
			return nil, fmt.Errorf("%w: got %d", ErrCountTooSmall, *termination.Count)
		}
		pattern.Count = *termination.Count
	}
	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	return pattern, nil
}

// Validate checks every invariant of the pattern and reports the first
// violated rule.
func (p *RecurrencePattern) Validate() error {
	switch p.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFrequency, p.Frequency)
	}

	if p.Interval < 1 {
		return fmt.Errorf("%w: got %d", ErrIntervalTooSmall, p.Interval)
	}

	if p.Frequency == FrequencyWeekly {
		if len(p.DaysOfWeek) == 0 {
			return ErrWeeklyDaysRequired
		}
		seen := make(map[time.Weekday]bool, len(p.DaysOfWeek))
		for _, day := range p.DaysOfWeek {
			if day < time.Sunday || day > time.Saturday {
				return fmt.Errorf("%w: got %d", ErrInvalidDayOfWeek, day)
			}
			if seen[day] {
				return fmt.Errorf("%w: %s", ErrDuplicateDayOfWeek, day)
			}
			seen[day] = true
		}
	} else if len(p.DaysOfWeek) > 0 {
		return ErrDaysOfWeekNotAllowed
	}

	if p.EndDate != nil && p.Count != 0 {
		return ErrAmbiguousTermination
	}
	// A zero count means the count termination is not in use.
	if p.Count < 0 {
		return fmt.Errorf("%w: got %d", ErrCountTooSmall, p.Count)
	}

	return nil
}

// IsUnbounded reports whether the pattern has no termination of its own.
func (p *RecurrencePattern) IsUnbounded() bool {
	return p.EndDate == nil && p.Count == 0
}

// SortedDaysOfWeek returns the day set in ascending order without modifying
// the pattern. Generation emits the days of a week block in this order.
func (p *RecurrencePattern) SortedDaysOfWeek() []time.Weekday {
	days := slices.Clone(p.DaysOfWeek)
	slices.Sort(days)
	return days
}

// Equal reports whether two patterns describe the same recurrence. The day
// set is compared as a set and the termination by variant and value.
func (p *RecurrencePattern) Equal(other *RecurrencePattern) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.Frequency != other.Frequency || p.Interval != other.Interval {
		return false
	}
	if !slices.Equal(p.SortedDaysOfWeek(), other.SortedDaysOfWeek()) {
		return false
	}
	if (p.EndDate == nil) != (other.EndDate == nil) {
		return false
	}
	if p.EndDate != nil && !p.EndDate.Equal(*other.EndDate) {
		return false
	}
	return p.Count == other.Count
}
