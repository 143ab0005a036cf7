// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventTemplate_Duration(t *testing.T) {
	template := EventTemplate{
		AnchorStart: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		AnchorEnd:   time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC),
	}

	assert.Equal(t, 90*time.Minute, template.Duration())
}

func TestEventTemplate_IsRecurring(t *testing.T) {
	single := EventTemplate{}
	assert.False(t, single.IsRecurring())

	recurring := EventTemplate{
		Recurrence: &RecurrencePattern{Frequency: FrequencyDaily, Interval: 1},
	}
	assert.True(t, recurring.IsRecurring())
}

func TestEventTemplate_Validate(t *testing.T) {
	anchorStart := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	anchorEnd := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		template EventTemplate
		wantErr  error
	}{
		{
			name: "valid single event",
			template: EventTemplate{
				Title:       "Maintainer Sync",
				AnchorStart: anchorStart,
				AnchorEnd:   anchorEnd,
			},
		},
		{
			name: "valid recurring event",
			template: EventTemplate{
				Title:       "Maintainer Sync",
				AnchorStart: anchorStart,
				AnchorEnd:   anchorEnd,
				Recurrence: &RecurrencePattern{
					Frequency:  FrequencyWeekly,
					Interval:   1,
					DaysOfWeek: []time.Weekday{time.Wednesday},
				},
			},
		},
		{
			name: "missing title",
			template: EventTemplate{
				AnchorStart: anchorStart,
				AnchorEnd:   anchorEnd,
			},
			wantErr: ErrTemplateTitleRequired,
		},
		{
			name: "missing anchor start",
			template: EventTemplate{
				Title:     "Maintainer Sync",
				AnchorEnd: anchorEnd,
			},
			wantErr: ErrAnchorStartRequired,
		},
		{
			name: "anchor end equals anchor start",
			template: EventTemplate{
				Title:       "Maintainer Sync",
				AnchorStart: anchorStart,
				AnchorEnd:   anchorStart,
			},
			wantErr: ErrAnchorEndNotAfterStart,
		},
		{
			name: "anchor end before anchor start",
			template: EventTemplate{
				Title:       "Maintainer Sync",
				AnchorStart: anchorEnd,
				AnchorEnd:   anchorStart,
			},
			wantErr: ErrAnchorEndNotAfterStart,
		},
		{
			name: "invalid recurrence surfaces its error",
			template: EventTemplate{
				Title:       "Maintainer Sync",
				AnchorStart: anchorStart,
				AnchorEnd:   anchorEnd,
				Recurrence: &RecurrencePattern{
					Frequency: FrequencyWeekly,
					Interval:  1,
				},
			},
			wantErr: ErrWeeklyDaysRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.template.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestEventTemplate_Tags(t *testing.T) {
	tests := []struct {
		name     string
		template *EventTemplate
		expected []string
	}{
		{
			name:     "nil template returns nil",
			template: nil,
			expected: nil,
		},
		{
			name:     "empty template returns empty slice",
			template: &EventTemplate{},
			expected: []string{},
		},
		{
			name: "template with UID only",
			template: &EventTemplate{
				UID: "template-123",
			},
			expected: []string{
				"template-123",
				"template_uid:template-123",
			},
		},
		{
			name: "template with ProjectUID only",
			template: &EventTemplate{
				ProjectUID: "project-456",
			},
			expected: []string{
				"project_uid:project-456",
			},
		},
		{
			name: "template with all fields populated",
			template: &EventTemplate{
				UID:        "template-123",
				ProjectUID: "project-456",
				Title:      "Weekly Standup",
			},
			expected: []string{
				"template-123",
				"template_uid:template-123",
				"project_uid:project-456",
				"title:Weekly Standup",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.template.Tags()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEventTemplate_JSONSerialization(t *testing.T) {
	now := time.Now().UTC()
	template := EventTemplate{
		UID:         "template-uid",
		ProjectUID:  "project-uid",
		Title:       "Community Call",
		Description: "Monthly community call",
		AnchorStart: time.Date(2025, 1, 15, 16, 0, 0, 0, time.UTC),
		AnchorEnd:   time.Date(2025, 1, 15, 17, 0, 0, 0, time.UTC),
		Participants: []Participant{
			{Email: "host@example.org", Name: "Host", Host: true},
			{Email: "guest@example.org"},
		},
		Recurrence: &RecurrencePattern{
			Frequency: FrequencyMonthly,
			Interval:  1,
			Count:     12,
		},
		CreatedAt: &now,
		UpdatedAt: &now,
	}

	data, err := json.Marshal(template)
	if err != nil {
		t.Errorf("failed to marshal template: %v", err)
	}

	var unmarshaled EventTemplate
	err = json.Unmarshal(data, &unmarshaled)
	if err != nil {
		t.Errorf("failed to unmarshal template: %v", err)
	}

	if unmarshaled.UID != template.UID {
		t.Errorf("expected UID %q, got %q", template.UID, unmarshaled.UID)
	}
	if unmarshaled.Title != template.Title {
		t.Errorf("expected Title %q, got %q", template.Title, unmarshaled.Title)
	}
	if !unmarshaled.AnchorStart.Equal(template.AnchorStart) {
		t.Errorf("expected AnchorStart %v, got %v", template.AnchorStart, unmarshaled.AnchorStart)
	}
	if len(unmarshaled.Participants) != 2 {
		t.Errorf("expected 2 participants, got %d", len(unmarshaled.Participants))
	}
	if unmarshaled.Recurrence == nil {
		t.Error("expected Recurrence to not be nil")
	} else if unmarshaled.Recurrence.Count != 12 {
		t.Errorf("expected Recurrence.Count 12, got %d", unmarshaled.Recurrence.Count)
	}
	if unmarshaled.Duration() != time.Hour {
		t.Errorf("expected duration %v, got %v", time.Hour, unmarshaled.Duration())
	}
}
