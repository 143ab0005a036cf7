// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package ical

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-event-series-service/pkg/utils"
)

// ProdID identifies generated feeds.
const ProdID = "-//Linux Foundation//LFX Event Series Service//EN"

// icalTimeLayout is the RFC 5545 UTC date-time format.
const icalTimeLayout = "20060102T150405Z"

// FeedGenerator renders event templates and materialized occurrences as ICS
// calendars.
type FeedGenerator struct{}

// NewFeedGenerator creates a new ICS feed generator.
func NewFeedGenerator() *FeedGenerator {
	return &FeedGenerator{}
}

// SeriesFeed renders a template and its exceptions as a single recurring
// VEVENT: the recurrence pattern becomes an RRULE, skipped occurrences become
// EXDATEs, and rescheduled or modified occurrences become RECURRENCE-ID
// override events.
func (g *FeedGenerator) SeriesFeed(template *models.EventTemplate, exceptions []*models.OccurrenceException) (string, error) {
	if template == nil {
		return "", domain.NewValidationError("event template is required", nil)
	}

	cal := ics.NewCalendar()
	cal.SetProductId(ProdID)
	cal.SetMethod(ics.MethodPublish)

	event := cal.AddEvent(template.UID)
	event.SetDtStampTime(time.Now().UTC())
	event.SetSummary(template.Title)
	if template.Description != "" {
		event.SetDescription(template.Description)
	}
	event.SetStartAt(template.AnchorStart.UTC())
	event.SetEndAt(template.AnchorEnd.UTC())
	event.SetStatus(ics.ObjectStatusConfirmed)
	g.setParticipants(event, template.Participants)

	if template.Recurrence != nil {
		rule, err := FromPattern(template.Recurrence)
		if err != nil {
			return "", err
		}
		event.AddRrule(rule)
	}

	for _, exception := range exceptions {
		// The exception targets the occurrence whose calendar day matches its
		// original date; the occurrence start keeps the anchor's time of day.
		originalStart := g.occurrenceStart(template, exception.OriginalDate)

		switch exception.Kind {
		case models.ExceptionKindSkip:
			event.AddExdate(originalStart.Format(icalTimeLayout))
		case models.ExceptionKindReschedule:
			if exception.Reschedule == nil {
				return "", domain.NewValidationError(
					fmt.Sprintf("reschedule exception %s has no new start", exception.UID), nil)
			}
			override := cal.AddEvent(template.UID)
			override.SetDtStampTime(time.Now().UTC())
			override.SetProperty(ics.ComponentPropertyRecurrenceId, originalStart.Format(icalTimeLayout))
			override.SetSummary(template.Title)
			if template.Description != "" {
				override.SetDescription(template.Description)
			}
			newStart := exception.Reschedule.NewStart.UTC()
			override.SetStartAt(newStart)
			override.SetEndAt(newStart.Add(template.Duration()))
			override.SetStatus(ics.ObjectStatusConfirmed)
			g.setParticipants(override, template.Participants)
		case models.ExceptionKindModify:
			if exception.Overrides == nil {
				return "", domain.NewValidationError(
					fmt.Sprintf("modify exception %s has no overrides", exception.UID), nil)
			}
			override := cal.AddEvent(template.UID)
			override.SetDtStampTime(time.Now().UTC())
			override.SetProperty(ics.ComponentPropertyRecurrenceId, originalStart.Format(icalTimeLayout))
			g.setModifiedEvent(override, template, exception.Overrides, originalStart)
		}
	}

	return cal.Serialize(), nil
}

// OccurrencesFeed renders already-materialized occurrences as a flat list of
// VEVENTs, one per occurrence, without any recurrence properties. This is the
// form consumed by calendar clients that do not expand RRULEs themselves.
func (g *FeedGenerator) OccurrencesFeed(template *models.EventTemplate, occurrences []models.Occurrence) (string, error) {
	if template == nil {
		return "", domain.NewValidationError("event template is required", nil)
	}

	cal := ics.NewCalendar()
	cal.SetProductId(ProdID)
	cal.SetMethod(ics.MethodPublish)

	for _, occurrence := range occurrences {
		event := cal.AddEvent(utils.OccurrenceRef(template.UID, occurrence.OccurrenceID))
		event.SetDtStampTime(time.Now().UTC())
		event.SetSummary(occurrence.Title)
		if occurrence.Description != "" {
			event.SetDescription(occurrence.Description)
		}
		event.SetStartAt(occurrence.StartTime.UTC())
		event.SetEndAt(occurrence.EndTime.UTC())
		event.SetStatus(ics.ObjectStatusConfirmed)
		g.setParticipants(event, occurrence.Participants)
	}

	return cal.Serialize(), nil
}

// occurrenceStart combines the exception's calendar day with the anchor's
// time of day.
func (g *FeedGenerator) occurrenceStart(template *models.EventTemplate, originalDate time.Time) time.Time {
	anchor := template.AnchorStart.UTC()
	date := originalDate.UTC()
	return time.Date(date.Year(), date.Month(), date.Day(),
		anchor.Hour(), anchor.Minute(), anchor.Second(), 0, time.UTC)
}

// setModifiedEvent fills an override event from a modify exception, falling
// back to the template for fields the overrides leave unset.
func (g *FeedGenerator) setModifiedEvent(event *ics.VEvent, template *models.EventTemplate, overrides *models.OccurrenceOverrides, originalStart time.Time) {
	title := template.Title
	if overrides.Title != nil {
		title = *overrides.Title
	}
	event.SetSummary(title)

	description := template.Description
	if overrides.Description != nil {
		description = *overrides.Description
	}
	if description != "" {
		event.SetDescription(description)
	}

	start := originalStart
	if overrides.StartTime != nil {
		start = overrides.StartTime.UTC()
	}
	// A modified start keeps the template duration unless the end is also
	// overridden.
	end := start.Add(template.Duration())
	if overrides.EndTime != nil {
		end = overrides.EndTime.UTC()
	}
	event.SetStartAt(start)
	event.SetEndAt(end)
	event.SetStatus(ics.ObjectStatusConfirmed)

	participants := template.Participants
	if overrides.Participants != nil {
		participants = overrides.Participants
	}
	g.setParticipants(event, participants)
}

// setParticipants adds the organizer and attendees to an event. The first
// host participant becomes the organizer.
func (g *FeedGenerator) setParticipants(event *ics.VEvent, participants []models.Participant) {
	organizerSet := false
	for _, participant := range participants {
		if participant.Host && !organizerSet {
			event.SetOrganizer(participant.Email, ics.WithCN(participant.Name))
			organizerSet = true
			continue
		}
		event.AddAttendee(participant.Email,
			ics.CalendarUserTypeIndividual,
			ics.ParticipationStatusNeedsAction,
			ics.ParticipationRoleReqParticipant,
			ics.WithCN(participant.Name),
		)
	}
}
