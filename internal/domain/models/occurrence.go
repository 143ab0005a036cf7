// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"strconv"
	"time"
)

// Occurrence is a single concrete occurrence of an event series after
// exceptions have been applied. Occurrences are derived on demand and never
// stored; OccurrenceID stays stable across reschedules because it is taken
// from the slot the series originally generated.
type Occurrence struct {
	OccurrenceID  string        `json:"occurrence_id" msgpack:"occurrence_id"`
	TemplateUID   string        `json:"template_uid" msgpack:"template_uid"`
	Title         string        `json:"title,omitempty" msgpack:"title,omitempty"`
	Description   string        `json:"description,omitempty" msgpack:"description,omitempty"`
	Participants  []Participant `json:"participants,omitempty" msgpack:"participants,omitempty"`
	StartTime     time.Time     `json:"start_time" msgpack:"start_time"`
	EndTime       time.Time     `json:"end_time" msgpack:"end_time"`
	Rescheduled   bool          `json:"rescheduled,omitempty" msgpack:"rescheduled,omitempty"`
	OriginalStart *time.Time    `json:"original_start,omitempty" msgpack:"original_start,omitempty"`
	Modified      bool          `json:"modified,omitempty" msgpack:"modified,omitempty"`
}

// NewOccurrenceID derives the stable occurrence identifier from the start
// time the series generated for the slot.
func NewOccurrenceID(originalStart time.Time) string {
	return strconv.FormatInt(originalStart.Unix(), 10)
}
