// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linuxfoundation/lfx-v2-event-series-service/pkg/utils"
)

func TestOccurrenceException_Validate(t *testing.T) {
	originalDate := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	newStart := time.Date(2025, 3, 11, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		exception OccurrenceException
		wantErr   error
	}{
		{
			name: "valid skip",
			exception: OccurrenceException{
				TemplateUID:  "template-123",
				OriginalDate: originalDate,
				Kind:         ExceptionKindSkip,
			},
		},
		{
			name: "valid reschedule",
			exception: OccurrenceException{
				TemplateUID:  "template-123",
				OriginalDate: originalDate,
				Kind:         ExceptionKindReschedule,
				Reschedule:   &RescheduleDetails{NewStart: newStart},
			},
		},
		{
			name: "valid modify",
			exception: OccurrenceException{
				TemplateUID:  "template-123",
				OriginalDate: originalDate,
				Kind:         ExceptionKindModify,
				Overrides:    &OccurrenceOverrides{Title: utils.StringPtr("Special Edition")},
			},
		},
		{
			name: "missing template UID",
			exception: OccurrenceException{
				OriginalDate: originalDate,
				Kind:         ExceptionKindSkip,
			},
			wantErr: ErrExceptionTemplateRequired,
		},
		{
			name: "missing original date",
			exception: OccurrenceException{
				TemplateUID: "template-123",
				Kind:        ExceptionKindSkip,
			},
			wantErr: ErrExceptionDateRequired,
		},
		{
			name: "unknown kind",
			exception: OccurrenceException{
				TemplateUID:  "template-123",
				OriginalDate: originalDate,
				Kind:         ExceptionKind("cancel"),
			},
			wantErr: ErrUnknownExceptionKind,
		},
		{
			name: "skip with reschedule details",
			exception: OccurrenceException{
				TemplateUID:  "template-123",
				OriginalDate: originalDate,
				Kind:         ExceptionKindSkip,
				Reschedule:   &RescheduleDetails{NewStart: newStart},
			},
			wantErr: ErrRescheduleDetailsNotAllowed,
		},
		{
			name: "skip with overrides",
			exception: OccurrenceException{
				TemplateUID:  "template-123",
				OriginalDate: originalDate,
				Kind:         ExceptionKindSkip,
				Overrides:    &OccurrenceOverrides{Title: utils.StringPtr("x")},
			},
			wantErr: ErrOverridesNotAllowed,
		},
		{
			name: "reschedule without details",
			exception: OccurrenceException{
				TemplateUID:  "template-123",
				OriginalDate: originalDate,
				Kind:         ExceptionKindReschedule,
			},
			wantErr: ErrRescheduleDetailsRequired,
		},
		{
			name: "reschedule with zero new start",
			exception: OccurrenceException{
				TemplateUID:  "template-123",
				OriginalDate: originalDate,
				Kind:         ExceptionKindReschedule,
				Reschedule:   &RescheduleDetails{},
			},
			wantErr: ErrRescheduleDetailsRequired,
		},
		{
			name: "reschedule with overrides",
			exception: OccurrenceException{
				TemplateUID:  "template-123",
				OriginalDate: originalDate,
				Kind:         ExceptionKindReschedule,
				Reschedule:   &RescheduleDetails{NewStart: newStart},
				Overrides:    &OccurrenceOverrides{Title: utils.StringPtr("x")},
			},
			wantErr: ErrOverridesNotAllowed,
		},
		{
			name: "modify without overrides",
			exception: OccurrenceException{
				TemplateUID:  "template-123",
				OriginalDate: originalDate,
				Kind:         ExceptionKindModify,
			},
			wantErr: ErrOverridesRequired,
		},
		{
			name: "modify with empty overrides",
			exception: OccurrenceException{
				TemplateUID:  "template-123",
				OriginalDate: originalDate,
				Kind:         ExceptionKindModify,
				Overrides:    &OccurrenceOverrides{},
			},
			wantErr: ErrOverridesRequired,
		},
		{
			name: "modify with reschedule details",
			exception: OccurrenceException{
				TemplateUID:  "template-123",
				OriginalDate: originalDate,
				Kind:         ExceptionKindModify,
				Reschedule:   &RescheduleDetails{NewStart: newStart},
				Overrides:    &OccurrenceOverrides{Title: utils.StringPtr("x")},
			},
			wantErr: ErrRescheduleDetailsNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.exception.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDateKey(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{
			name:     "midnight",
			input:    time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			expected: "2025-03-10",
		},
		{
			name:     "time of day is ignored",
			input:    time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC),
			expected: "2025-03-10",
		},
		{
			name:     "single digit month and day are padded",
			input:    time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC),
			expected: "2025-01-02",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DateKey(tt.input))
		})
	}
}

func TestOccurrenceOverrides_IsEmpty(t *testing.T) {
	tests := []struct {
		name      string
		overrides *OccurrenceOverrides
		expected  bool
	}{
		{
			name:      "nil overrides",
			overrides: nil,
			expected:  true,
		},
		{
			name:      "zero value",
			overrides: &OccurrenceOverrides{},
			expected:  true,
		},
		{
			name:      "title set",
			overrides: &OccurrenceOverrides{Title: utils.StringPtr("x")},
			expected:  false,
		},
		{
			name:      "empty title still counts as override",
			overrides: &OccurrenceOverrides{Title: utils.StringPtr("")},
			expected:  false,
		},
		{
			name:      "empty participant list clears the list",
			overrides: &OccurrenceOverrides{Participants: []Participant{}},
			expected:  false,
		},
		{
			name:      "start time set",
			overrides: &OccurrenceOverrides{StartTime: utils.TimePtr(time.Now())},
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.overrides.IsEmpty())
		})
	}
}

func TestOccurrenceException_Tags(t *testing.T) {
	originalDate := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		exception *OccurrenceException
		expected  []string
	}{
		{
			name:      "nil exception returns nil",
			exception: nil,
			expected:  nil,
		},
		{
			name:      "empty exception returns empty slice",
			exception: &OccurrenceException{},
			expected:  []string{},
		},
		{
			name: "exception with all fields populated",
			exception: &OccurrenceException{
				UID:          "exception-123",
				TemplateUID:  "template-456",
				OriginalDate: originalDate,
				Kind:         ExceptionKindSkip,
			},
			expected: []string{
				"exception-123",
				"exception_uid:exception-123",
				"template_uid:template-456",
				"original_date:2025-03-10",
				"kind:skip",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.exception.Tags()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestOccurrenceException_JSONSerialization(t *testing.T) {
	exception := OccurrenceException{
		UID:          "exception-uid",
		TemplateUID:  "template-uid",
		OriginalDate: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Kind:         ExceptionKindModify,
		Overrides: &OccurrenceOverrides{
			Title:        utils.StringPtr("Special Edition"),
			Participants: []Participant{{Email: "speaker@example.org"}},
		},
	}

	data, err := json.Marshal(exception)
	if err != nil {
		t.Errorf("failed to marshal exception: %v", err)
	}

	var unmarshaled OccurrenceException
	err = json.Unmarshal(data, &unmarshaled)
	if err != nil {
		t.Errorf("failed to unmarshal exception: %v", err)
	}

	if unmarshaled.UID != exception.UID {
		t.Errorf("expected UID %q, got %q", exception.UID, unmarshaled.UID)
	}
	if unmarshaled.Kind != ExceptionKindModify {
		t.Errorf("expected Kind %q, got %q", ExceptionKindModify, unmarshaled.Kind)
	}
	if !unmarshaled.OriginalDate.Equal(exception.OriginalDate) {
		t.Errorf("expected OriginalDate %v, got %v", exception.OriginalDate, unmarshaled.OriginalDate)
	}
	if unmarshaled.Overrides == nil {
		t.Error("expected Overrides to not be nil")
	} else if utils.StringValue(unmarshaled.Overrides.Title) != "Special Edition" {
		t.Errorf("expected overridden title %q, got %q", "Special Edition", utils.StringValue(unmarshaled.Overrides.Title))
	}
	if unmarshaled.DateKey() != "2025-03-10" {
		t.Errorf("expected date key %q, got %q", "2025-03-10", unmarshaled.DateKey())
	}
}
