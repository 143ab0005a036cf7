// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"errors"
	"time"
)

// Validation errors for event templates.
var (
	// ErrTemplateTitleRequired means the template has no title.
	ErrTemplateTitleRequired = errors.New("event template title is required")

	// ErrAnchorStartRequired means the template has no anchor start time.
	ErrAnchorStartRequired = errors.New("anchor start time is required")

	// ErrAnchorEndNotAfterStart means the anchor end does not follow the anchor start.
	ErrAnchorEndNotAfterStart = errors.New("anchor end must be after anchor start")
)

// EventTemplate is the key-value store representation of an event series.
// AnchorStart and AnchorEnd define the first occurrence; their difference is
// the duration every occurrence keeps. Title, description and participants
// are payload the occurrence engine copies without interpreting. A nil
// Recurrence means the template describes a single, non-recurring event.
type EventTemplate struct {
	UID          string             `json:"uid"`
	ProjectUID   string             `json:"project_uid"`
	Title        string             `json:"title"`
	Description  string             `json:"description,omitempty"`
	AnchorStart  time.Time          `json:"anchor_start"`
	AnchorEnd    time.Time          `json:"anchor_end"`
	Participants []Participant      `json:"participants,omitempty"`
	Recurrence   *RecurrencePattern `json:"recurrence,omitempty"`
	CreatedAt    *time.Time         `json:"created_at,omitempty"`
	UpdatedAt    *time.Time         `json:"updated_at,omitempty"`
}

// Participant is an attendee of every occurrence of a series unless an
// exception overrides the list for a single occurrence.
type Participant struct {
	Email string `json:"email" msgpack:"email"`
	Name  string `json:"name,omitempty" msgpack:"name,omitempty"`
	Host  bool   `json:"host,omitempty" msgpack:"host,omitempty"`
}

// Duration returns the length every occurrence of the series inherits.
func (t *EventTemplate) Duration() time.Duration {
	return t.AnchorEnd.Sub(t.AnchorStart)
}

// IsRecurring reports whether the template expands into a series.
func (t *EventTemplate) IsRecurring() bool {
	return t.Recurrence != nil
}

// Validate checks the template's own invariants, including those of its
// recurrence pattern when one is set.
func (t *EventTemplate) Validate() error {
	if t.Title == "" {
		return ErrTemplateTitleRequired
	}
	if t.AnchorStart.IsZero() {
		return ErrAnchorStartRequired
	}
	if !t.AnchorEnd.After(t.AnchorStart) {
		return ErrAnchorEndNotAfterStart
	}
	if t.Recurrence != nil {
		return t.Recurrence.Validate()
	}
	return nil
}

// Tags generates the search tags indexed for the template.
func (t *EventTemplate) Tags() []string {
	if t == nil {
		return nil
	}

	tags := []string{}

	if t.UID != "" {
		tags = append(tags,
			t.UID,
			"template_uid:"+t.UID,
		)
	}
	if t.ProjectUID != "" {
		tags = append(tags, "project_uid:"+t.ProjectUID)
	}
	if t.Title != "" {
		tags = append(tags, "title:"+t.Title)
	}

	return tags
}
