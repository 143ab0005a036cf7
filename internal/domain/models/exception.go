// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"errors"
	"fmt"
	"time"
)

// ExceptionKind discriminates the three ways a single occurrence can deviate
// from its series.
type ExceptionKind string

// ExceptionKind constants.
const (
	// ExceptionKindSkip cancels the occurrence entirely.
	ExceptionKindSkip ExceptionKind = "skip"
	// ExceptionKindReschedule moves the occurrence to a new start time.
	ExceptionKindReschedule ExceptionKind = "reschedule"
	// ExceptionKindModify overrides part of the occurrence's payload.
	ExceptionKindModify ExceptionKind = "modify"
)

// Validation errors for occurrence exceptions.
var (
	// ErrExceptionTemplateRequired means the exception names no template.
	ErrExceptionTemplateRequired = errors.New("exception template UID is required")

	// ErrExceptionDateRequired means the exception has no original date.
	ErrExceptionDateRequired = errors.New("exception original date is required")

	// ErrUnknownExceptionKind means the kind is not skip, reschedule or modify.
	ErrUnknownExceptionKind = errors.New("unknown exception kind")

	// ErrRescheduleDetailsRequired means a reschedule exception has no new start.
	ErrRescheduleDetailsRequired = errors.New("reschedule exception requires a new start time")

	// ErrRescheduleDetailsNotAllowed means a non-reschedule exception carries reschedule details.
	ErrRescheduleDetailsNotAllowed = errors.New("reschedule details are only valid for reschedule exceptions")

	// ErrOverridesRequired means a modify exception overrides nothing.
	ErrOverridesRequired = errors.New("modify exception requires at least one override")

	// ErrOverridesNotAllowed means a non-modify exception carries overrides.
	ErrOverridesNotAllowed = errors.New("overrides are only valid for modify exceptions")
)

// OccurrenceException is the key-value store representation of a deviation
// of one occurrence from its series. It is keyed by template UID and the
// calendar day of the occurrence it targets: the engine matches OriginalDate
// against generated candidates by date, not by instant.
type OccurrenceException struct {
	UID          string               `json:"uid"`
	TemplateUID  string               `json:"template_uid"`
	OriginalDate time.Time            `json:"original_date"`
	Kind         ExceptionKind        `json:"kind"`
	Reschedule   *RescheduleDetails   `json:"reschedule,omitempty"`
	Overrides    *OccurrenceOverrides `json:"overrides,omitempty"`
	CreatedAt    *time.Time           `json:"created_at,omitempty"`
	UpdatedAt    *time.Time           `json:"updated_at,omitempty"`
}

// RescheduleDetails carries the replacement start time of a rescheduled
// occurrence. The occurrence keeps the duration of its template.
type RescheduleDetails struct {
	NewStart time.Time `json:"new_start"`
}

// OccurrenceOverrides lists the payload fields a modify exception replaces.
// Nil fields fall back to the template; a non-nil Participants slice replaces
// the whole participant list even when empty.
type OccurrenceOverrides struct {
	Title        *string       `json:"title,omitempty"`
	Description  *string       `json:"description,omitempty"`
	Participants []Participant `json:"participants,omitempty"`
	StartTime    *time.Time    `json:"start_time,omitempty"`
	EndTime      *time.Time    `json:"end_time,omitempty"`
}

// IsEmpty reports whether the overrides change nothing.
func (o *OccurrenceOverrides) IsEmpty() bool {
	if o == nil {
		return true
	}
	return o.Title == nil && o.Description == nil && o.Participants == nil &&
		o.StartTime == nil && o.EndTime == nil
}

// DateKey normalizes a time to the calendar-day key used to match exceptions
// against generated occurrence candidates.
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DateKey returns the calendar-day key of the occurrence this exception targets.
func (e *OccurrenceException) DateKey() string {
	return DateKey(e.OriginalDate)
}

// Validate checks that the exception's kind and payload are coherent.
func (e *OccurrenceException) Validate() error {
	if e.TemplateUID == "" {
		return ErrExceptionTemplateRequired
	}
	if e.OriginalDate.IsZero() {
		return ErrExceptionDateRequired
	}

	switch e.Kind {
	case ExceptionKindSkip:
		if e.Reschedule != nil {
			return ErrRescheduleDetailsNotAllowed
		}
		if e.Overrides != nil {
			return ErrOverridesNotAllowed
		}
	case ExceptionKindReschedule:
		if e.Reschedule == nil || e.Reschedule.NewStart.IsZero() {
			return ErrRescheduleDetailsRequired
		}
		if e.Overrides != nil {
			return ErrOverridesNotAllowed
		}
	case ExceptionKindModify:
		if e.Reschedule != nil {
			return ErrRescheduleDetailsNotAllowed
		}
		if e.Overrides.IsEmpty() {
			return ErrOverridesRequired
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownExceptionKind, e.Kind)
	}

	return nil
}

// Tags generates the search tags indexed for the exception.
func (e *OccurrenceException) Tags() []string {
	if e == nil {
		return nil
	}

	tags := []string{}

	if e.UID != "" {
		tags = append(tags,
			e.UID,
			"exception_uid:"+e.UID,
		)
	}
	if e.TemplateUID != "" {
		tags = append(tags, "template_uid:"+e.TemplateUID)
	}
	if !e.OriginalDate.IsZero() {
		tags = append(tags, "original_date:"+e.DateKey())
	}
	if e.Kind != "" {
		tags = append(tags, "kind:"+string(e.Kind))
	}

	return tags
}
