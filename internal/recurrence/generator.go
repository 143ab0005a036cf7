// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain/models"
)

// Generation errors. These indicate defects in the caller rather than bad
// user input: a pattern failing validation here escaped construction-time
// checks, and an inverted window is a caller bug. They are not meant to be
// surfaced as validation failures.
var (
	// ErrNilPattern means the generator was handed no pattern.
	ErrNilPattern = errors.New("recurrence pattern is nil")

	// ErrInvalidPattern wraps a pattern that escaped construction-time validation.
	ErrInvalidPattern = errors.New("invalid recurrence pattern")

	// ErrInvalidWindow means the window end precedes the window start.
	ErrInvalidWindow = errors.New("window end must not be before window start")

	// ErrSafetyCapRequired means unbounded generation was requested without a positive cap.
	ErrSafetyCapRequired = errors.New("safety cap must be at least 1")
)

// Generator computes the candidate occurrence dates of a recurrence pattern.
// Candidates carry the anchor's time of day in the anchor's location; they
// are produced in ascending order.
type Generator struct {
	calendar DateArithmetic
}

// NewGenerator creates a new Generator stepping with the given calendar. A
// nil calendar falls back to the standard Gregorian one.
func NewGenerator(calendar DateArithmetic) *Generator {
	if calendar == nil {
		calendar = NewStandardCalendar()
	}
	return &Generator{calendar: calendar}
}

// Generate produces the candidate dates of the series starting at the
// anchor, stopping at the first of: the pattern's occurrence count reached,
// the pattern's end date passed, or safetyCap candidates produced. The cap
// is required because the pattern may be open ended.
func (g *Generator) Generate(pattern *models.RecurrencePattern, anchor time.Time, safetyCap int) ([]time.Time, error) {
	if safetyCap < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrSafetyCapRequired, safetyCap)
	}
	if err := checkPattern(pattern); err != nil {
		return nil, err
	}

	c := &collector{
		emitFrom:   anchor,
		endDate:    pattern.EndDate,
		count:      pattern.Count,
		safetyCap:  safetyCap,
		candidates: []time.Time{},
	}
	g.walk(pattern, anchor, c)
	return c.candidates, nil
}

// GenerateWindow produces every candidate date falling inside the inclusive
// [windowStart, windowEnd] range. Stepping starts at the anchor so weekday
// and day-of-month alignment stay correct when the window begins mid cycle,
// and both termination kinds are enforced exactly as in Generate: a count
// termination is consumed by every candidate from the anchor onward,
// including candidates before the window start.
func (g *Generator) GenerateWindow(pattern *models.RecurrencePattern, anchor, windowStart, windowEnd time.Time) ([]time.Time, error) {
	if windowEnd.Before(windowStart) {
		return nil, fmt.Errorf("%w: [%s, %s]", ErrInvalidWindow,
			windowStart.Format(time.RFC3339), windowEnd.Format(time.RFC3339))
	}
	if err := checkPattern(pattern); err != nil {
		return nil, err
	}

	c := &collector{
		emitFrom:   windowStart,
		windowEnd:  &windowEnd,
		endDate:    pattern.EndDate,
		count:      pattern.Count,
		candidates: []time.Time{},
	}
	g.walk(pattern, anchor, c)
	return c.candidates, nil
}

func checkPattern(pattern *models.RecurrencePattern) error {
	if pattern == nil {
		return ErrNilPattern
	}
	if err := pattern.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}
	return nil
}

func (g *Generator) walk(pattern *models.RecurrencePattern, anchor time.Time, c *collector) {
	switch pattern.Frequency {
	case models.FrequencyDaily:
		g.walkDaily(pattern, anchor, c)
	case models.FrequencyWeekly:
		g.walkWeekly(pattern, anchor, c)
	case models.FrequencyMonthly:
		g.walkMonthly(pattern, anchor, c)
	}
}

// walkDaily emits the anchor and then steps by the interval in days.
func (g *Generator) walkDaily(pattern *models.RecurrencePattern, anchor time.Time, c *collector) {
	current := anchor
	for c.admit(current) {
		current = g.calendar.AddDays(current, pattern.Interval)
	}
}

// walkWeekly aligns to the Sunday of the anchor's week and emits one
// candidate per configured day of each week block, ascending within the
// block. Days of the anchor's own block that precede the anchor are not
// occurrences of the series and are dropped without affecting the count.
func (g *Generator) walkWeekly(pattern *models.RecurrencePattern, anchor time.Time, c *collector) {
	weekStart := g.calendar.StartOfWeek(anchor)
	days := pattern.SortedDaysOfWeek()

	for week := 0; ; week++ {
		blockStart := g.calendar.AddDays(weekStart, week*7*pattern.Interval)
		for _, day := range days {
			date := g.calendar.AddDays(blockStart, int(day))
			candidate := time.Date(date.Year(), date.Month(), date.Day(),
				anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), anchor.Location())
			if candidate.Before(anchor) {
				continue
			}
			if !c.admit(candidate) {
				return
			}
		}
	}
}

// walkMonthly steps by the interval in months, keeping the anchor's day of
// month as the target day. The clamp on short months is sticky: once
// February reduces day 31 to 28, every later month uses 28 rather than
// reverting to the original target.
func (g *Generator) walkMonthly(pattern *models.RecurrencePattern, anchor time.Time, c *collector) {
	year, month, targetDay := anchor.Date()
	current := anchor
	for c.admit(current) {
		m := int(month) + pattern.Interval
		for m > 12 {
			year++
			m -= 12
		}
		month = time.Month(m)
		if days := g.calendar.DaysInMonth(year, month); targetDay > days {
			targetDay = days
		}
		current = time.Date(year, month, targetDay,
			anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), anchor.Location())
	}
}

// collector applies the termination rules shared by every frequency to the
// ascending candidate stream and keeps the candidates inside the emission
// range.
type collector struct {
	// emitFrom is the earliest instant a candidate is kept (inclusive).
	emitFrom time.Time
	// windowEnd, when set, is the latest instant a kept candidate may have (inclusive).
	windowEnd *time.Time
	// endDate, when set, ends the series at the first candidate on a later calendar day.
	endDate *time.Time
	// count, when positive, is the total number of occurrences the series has
	// from its anchor, whether or not they fall inside the emission range.
	count int
	// safetyCap, when positive, stops generation after that many kept candidates.
	safetyCap int

	candidates []time.Time
	counted    int
}

// admit processes one candidate at or after the anchor and reports whether
// generation should continue. Candidates arrive ascending, so the first one
// past the effective end stops the walk entirely.
func (c *collector) admit(candidate time.Time) bool {
	if c.endDate != nil && dateAfter(candidate, *c.endDate) {
		return false
	}
	if c.windowEnd != nil && candidate.After(*c.windowEnd) {
		return false
	}

	c.counted++
	if !candidate.Before(c.emitFrom) {
		c.candidates = append(c.candidates, candidate)
	}

	if c.count > 0 && c.counted >= c.count {
		return false
	}
	if c.safetyCap > 0 && len(c.candidates) >= c.safetyCap {
		return false
	}
	return true
}

// dateAfter reports whether a falls on a later calendar day than b,
// comparing both in a's location.
func dateAfter(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay > by
	}
	if am != bm {
		return am > bm
	}
	return ad > bd
}
