// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package ical converts event series to and from the iCalendar interchange
// formats: RRULE strings (RFC 5545 section 3.8.5.3) and full ICS feeds.
package ical

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain/models"
)

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

var timeWeekdays = map[int]time.Weekday{
	rrule.MO.Day(): time.Monday,
	rrule.TU.Day(): time.Tuesday,
	rrule.WE.Day(): time.Wednesday,
	rrule.TH.Day(): time.Thursday,
	rrule.FR.Day(): time.Friday,
	rrule.SA.Day(): time.Saturday,
	rrule.SU.Day(): time.Sunday,
}

// FromPattern serializes a recurrence pattern as an RFC 5545 RRULE value,
// e.g. "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE". The pattern must be valid.
func FromPattern(pattern *models.RecurrencePattern) (string, error) {
	if pattern == nil {
		return "", domain.NewValidationError("recurrence pattern is required", nil)
	}
	if err := pattern.Validate(); err != nil {
		return "", domain.NewValidationError("invalid recurrence pattern", err)
	}

	option := rrule.ROption{}
	// INTERVAL=1 is the RFC 5545 default and is left implicit.
	if pattern.Interval > 1 {
		option.Interval = pattern.Interval
	}

	switch pattern.Frequency {
	case models.FrequencyDaily:
		option.Freq = rrule.DAILY
	case models.FrequencyWeekly:
		option.Freq = rrule.WEEKLY
		// The expansion engine aligns weekly blocks on Sunday.
		option.Wkst = rrule.SU
		for _, day := range pattern.SortedDaysOfWeek() {
			option.Byweekday = append(option.Byweekday, rruleWeekdays[day])
		}
	case models.FrequencyMonthly:
		option.Freq = rrule.MONTHLY
	}

	if pattern.EndDate != nil {
		option.Until = pattern.EndDate.UTC()
	}
	if pattern.Count > 0 {
		option.Count = pattern.Count
	}

	rule, err := rrule.NewRRule(option)
	if err != nil {
		return "", domain.NewValidationError("failed to build recurrence rule", err)
	}

	return rule.OrigOptions.RRuleString(), nil
}

// ToPattern parses an RFC 5545 RRULE value into a recurrence pattern. RRULE
// features the expansion engine does not support (BYMONTHDAY, BYSETPOS,
// sub-daily frequencies, ordinal BYDAY, ...) are rejected with a validation
// error rather than silently dropped.
func ToPattern(value string) (*models.RecurrencePattern, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "RRULE:")
	if value == "" {
		return nil, domain.NewValidationError("recurrence rule is required", nil)
	}

	option, err := rrule.StrToROption(value)
	if err != nil {
		return nil, domain.NewValidationError("failed to parse recurrence rule", err)
	}

	if err := checkSupported(option); err != nil {
		return nil, err
	}

	interval := option.Interval
	if interval == 0 {
		interval = 1
	}

	termination := models.NeverEnds()
	if !option.Until.IsZero() && option.Count > 0 {
		return nil, domain.NewValidationError("recurrence rule cannot have both UNTIL and COUNT", models.ErrAmbiguousTermination)
	}
	if !option.Until.IsZero() {
		termination = models.EndsOn(option.Until)
	} else if option.Count > 0 {
		termination = models.EndsAfter(option.Count)
	}

	switch option.Freq {
	case rrule.DAILY:
		return models.NewDailyPattern(interval, termination)
	case rrule.WEEKLY:
		days := make([]time.Weekday, 0, len(option.Byweekday))
		for _, weekday := range option.Byweekday {
			days = append(days, timeWeekdays[weekday.Day()])
		}
		return models.NewWeeklyPattern(interval, days, termination)
	case rrule.MONTHLY:
		return models.NewMonthlyPattern(interval, termination)
	default:
		return nil, domain.NewValidationError(
			fmt.Sprintf("unsupported recurrence frequency in rule %q", value), nil)
	}
}

// checkSupported rejects RRULE parts that have no representation in the
// recurrence pattern model.
func checkSupported(option *rrule.ROption) error {
	switch {
	case len(option.Bysetpos) > 0:
		return domain.NewValidationError("BYSETPOS is not supported", nil)
	case len(option.Bymonth) > 0:
		return domain.NewValidationError("BYMONTH is not supported", nil)
	case len(option.Bymonthday) > 0:
		return domain.NewValidationError("BYMONTHDAY is not supported", nil)
	case len(option.Byyearday) > 0:
		return domain.NewValidationError("BYYEARDAY is not supported", nil)
	case len(option.Byweekno) > 0:
		return domain.NewValidationError("BYWEEKNO is not supported", nil)
	case len(option.Byhour) > 0 || len(option.Byminute) > 0 || len(option.Bysecond) > 0:
		return domain.NewValidationError("sub-daily BYxxx parts are not supported", nil)
	case len(option.Byeaster) > 0:
		return domain.NewValidationError("BYEASTER is not supported", nil)
	}

	for _, weekday := range option.Byweekday {
		if weekday.N() != 0 {
			return domain.NewValidationError("ordinal BYDAY values are not supported", nil)
		}
	}

	if option.Freq != rrule.WEEKLY && len(option.Byweekday) > 0 {
		return domain.NewValidationError("BYDAY is only supported with FREQ=WEEKLY", nil)
	}

	return nil
}
