// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

// NATS subjects that the event series service sends messages about.
const (
	// IndexEventTemplateSubject is the subject for the event template indexing.
	// The subject is of the form: lfx.index.event_template
	IndexEventTemplateSubject = "lfx.index.event_template"

	// IndexOccurrenceExceptionSubject is the subject for the occurrence exception indexing.
	// The subject is of the form: lfx.index.occurrence_exception
	IndexOccurrenceExceptionSubject = "lfx.index.occurrence_exception"
)

// NATS wildcard subjects that the event series service handles messages about.
const (
	// EventSeriesAPIQueue is the queue name for the event series API.
	// The subject is of the form: lfx.event-series-api.queue
	EventSeriesAPIQueue = "lfx.event-series-api.queue"
)

// NATS specific subjects that the event series service handles messages about.
const (
	// EventSeriesGetTitleSubject is the subject for the series title lookup.
	// The subject is of the form: lfx.event-series-api.get_title
	EventSeriesGetTitleSubject = "lfx.event-series-api.get_title"

	// EventSeriesMaterializeSubject is the subject for materializing the
	// occurrences of a series inside a query window.
	// The subject is of the form: lfx.event-series-api.materialize
	EventSeriesMaterializeSubject = "lfx.event-series-api.materialize"

	// EventSeriesPreviewSubject is the subject for previewing the next
	// occurrences of a series.
	// The subject is of the form: lfx.event-series-api.preview
	EventSeriesPreviewSubject = "lfx.event-series-api.preview"

	// EventSeriesExportICSSubject is the subject for exporting a series as an
	// iCalendar document.
	// The subject is of the form: lfx.event-series-api.export_ics
	EventSeriesExportICSSubject = "lfx.event-series-api.export_ics"

	// TemplateDeletedSubject is the subject for template deletion events.
	// The subject is of the form: lfx.event-series-api.template_deleted
	TemplateDeletedSubject = "lfx.event-series-api.template_deleted"

	// TemplateUpdatedSubject is the subject for template update events.
	// The subject is of the form: lfx.event-series-api.template_updated
	TemplateUpdatedSubject = "lfx.event-series-api.template_updated"
)

// MessageAction is a type for the action of an event series message.
type MessageAction string

// MessageAction constants for the action of an event series message.
const (
	// ActionCreated is the action for a resource creation message.
	ActionCreated MessageAction = "created"
	// ActionUpdated is the action for a resource update message.
	ActionUpdated MessageAction = "updated"
	// ActionDeleted is the action for a resource deletion message.
	ActionDeleted MessageAction = "deleted"
)

// EventSeriesIndexerMessage is a NATS message schema for sending messages
// related to event template and exception CRUD operations.
type EventSeriesIndexerMessage struct {
	Action  MessageAction     `json:"action"`
	Headers map[string]string `json:"headers"`
	Data    any               `json:"data"`
	// Tags is a list of tags to be set on the indexed resource for search.
	Tags []string `json:"tags"`
}

// TemplateDeletedMessage is the schema for the message sent when an event
// template is deleted. It triggers cleanup of the exceptions that were
// anchored against the template's recurrence pattern.
type TemplateDeletedMessage struct {
	TemplateUID string `json:"template_uid"`
}

// TemplateUpdatedMessage is the schema for the message sent when an event
// template is updated. RecurrenceChanged tells consumers that previously
// materialized occurrences of the series are stale.
type TemplateUpdatedMessage struct {
	TemplateUID       string `json:"template_uid"`
	RecurrenceChanged bool   `json:"recurrence_changed"`
}
