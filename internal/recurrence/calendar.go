// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package recurrence generates the candidate occurrence dates of an event
// series from its recurrence pattern. It is a pure computation with no I/O:
// exception handling and payload assembly live in the service layer.
package recurrence

import "time"

// DateArithmetic is the calendar capability the generator steps with. It is
// injected so tests and callers with special calendar needs can substitute
// their own implementation instead of relying on ambient global state.
type DateArithmetic interface {
	// AddDays moves a time by a number of calendar days, keeping its wall clock.
	AddDays(t time.Time, days int) time.Time

	// StartOfWeek returns the Sunday beginning the week containing t, keeping
	// t's wall clock.
	StartOfWeek(t time.Time) time.Time

	// DaysInMonth returns the number of days in the given month.
	DaysInMonth(year int, month time.Month) int
}

// StandardCalendar implements DateArithmetic on the proleptic Gregorian
// calendar used by the time package.
type StandardCalendar struct{}

// NewStandardCalendar creates a new StandardCalendar.
func NewStandardCalendar() *StandardCalendar {
	return &StandardCalendar{}
}

// AddDays moves a time by a number of calendar days, keeping its wall clock.
func (c *StandardCalendar) AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// StartOfWeek returns the Sunday beginning the week containing t.
func (c *StandardCalendar) StartOfWeek(t time.Time) time.Time {
	return t.AddDate(0, 0, -int(t.Weekday()))
}

// DaysInMonth returns the number of days in the given month. Day zero of the
// following month normalizes to the last day of this one.
func (c *StandardCalendar) DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Compile-time interface check
var _ DateArithmetic = (*StandardCalendar)(nil)
