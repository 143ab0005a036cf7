// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package handlers dispatches incoming NATS messages to the services.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/infrastructure/ical"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-event-series-service/pkg/constants"
)

// TemplateHandler handles event-series-related messages and events.
type TemplateHandler struct {
	templateService  *service.TemplateService
	exceptionService *service.ExceptionService
	feedGenerator    *ical.FeedGenerator
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(
	templateService *service.TemplateService,
	exceptionService *service.ExceptionService,
	feedGenerator *ical.FeedGenerator,
) *TemplateHandler {
	return &TemplateHandler{
		templateService:  templateService,
		exceptionService: exceptionService,
		feedGenerator:    feedGenerator,
	}
}

// HandlerReady checks if the handler's services are ready for use.
func (h *TemplateHandler) HandlerReady() bool {
	return h.templateService.ServiceReady() &&
		h.exceptionService.ServiceReady()
}

// HandleMessage implements domain.MessageHandler interface
func (h *TemplateHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	var response []byte
	var err error

	handlers := map[string]func(ctx context.Context, msg domain.Message) ([]byte, error){
		models.EventSeriesGetTitleSubject:    h.HandleTemplateGetTitle,
		models.EventSeriesMaterializeSubject: h.HandleMaterialize,
		models.EventSeriesPreviewSubject:     h.HandlePreview,
		models.EventSeriesExportICSSubject:   h.HandleExportICS,
		models.TemplateDeletedSubject:        h.HandleTemplateDeleted,
		models.TemplateUpdatedSubject:        h.HandleTemplateUpdated,
	}

	handler, ok := handlers[subject]
	if !ok {
		slog.WarnContext(ctx, "unknown subject")
		if msg.HasReply() {
			err = msg.Respond(nil)
			if err != nil {
				slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
			}
		}
		return
	}

	response, err = handler(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "error handling message",
			logging.ErrKey, err,
		)
		if msg.HasReply() {
			err = msg.Respond(nil)
			if err != nil {
				slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
			}
		}
		return
	}

	if msg.HasReply() {
		err = msg.Respond(response)
		if err != nil {
			slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
			return
		}
		slog.DebugContext(ctx, "responded to NATS message", "response", response)
	} else {
		slog.DebugContext(ctx, "handled NATS message (no reply expected)")
	}
}

// HandleTemplateGetTitle is the message handler for the series-get-title subject.
func (h *TemplateHandler) HandleTemplateGetTitle(ctx context.Context, msg domain.Message) ([]byte, error) {
	template, err := h.getTemplateFromMessage(ctx, msg)
	if err != nil {
		return nil, err
	}

	return []byte(template.Title), nil
}

// HandleMaterialize is the message handler for the materialize subject. It
// expands the requested series over the query window with the series'
// exceptions applied.
func (h *TemplateHandler) HandleMaterialize(ctx context.Context, msg domain.Message) ([]byte, error) {
	if !h.templateService.ServiceReady() || !h.exceptionService.ServiceReady() {
		slog.ErrorContext(ctx, "service not ready")
		return nil, fmt.Errorf("service not ready")
	}

	var request models.MaterializeRequest
	if err := msgpack.Unmarshal(msg.Data(), &request); err != nil {
		slog.ErrorContext(ctx, "error unmarshaling materialize request", logging.ErrKey, err)
		return nil, err
	}

	ctx = logging.AppendCtx(ctx, slog.String("template_uid", request.TemplateUID))

	if err := validateWindow(request.WindowStart, request.WindowEnd); err != nil {
		slog.WarnContext(ctx, "invalid materialize window", logging.ErrKey, err)
		return nil, err
	}

	template, err := h.templateService.GetTemplate(ctx, request.TemplateUID)
	if err != nil {
		slog.ErrorContext(ctx, "error getting event template", logging.ErrKey, err)
		return nil, err
	}

	exceptions, err := h.exceptionService.ListExceptions(ctx, request.TemplateUID)
	if err != nil {
		slog.ErrorContext(ctx, "error listing occurrence exceptions", logging.ErrKey, err)
		return nil, err
	}

	occurrences, err := h.templateService.OccurrenceService.MaterializeWindow(
		ctx, template, exceptions, request.WindowStart, request.WindowEnd)
	if err != nil {
		slog.ErrorContext(ctx, "error materializing occurrences", logging.ErrKey, err)
		return nil, err
	}

	response, err := msgpack.Marshal(models.MaterializeResponse{Occurrences: occurrences})
	if err != nil {
		slog.ErrorContext(ctx, "error marshaling materialize response", logging.ErrKey, err)
		return nil, err
	}

	return response, nil
}

// HandlePreview is the message handler for the preview subject. It expands the
// next occurrences of the requested series without applying exceptions.
func (h *TemplateHandler) HandlePreview(ctx context.Context, msg domain.Message) ([]byte, error) {
	if !h.templateService.ServiceReady() {
		slog.ErrorContext(ctx, "service not ready")
		return nil, fmt.Errorf("service not ready")
	}

	var request models.PreviewRequest
	if err := msgpack.Unmarshal(msg.Data(), &request); err != nil {
		slog.ErrorContext(ctx, "error unmarshaling preview request", logging.ErrKey, err)
		return nil, err
	}

	ctx = logging.AppendCtx(ctx, slog.String("template_uid", request.TemplateUID))

	template, err := h.templateService.GetTemplate(ctx, request.TemplateUID)
	if err != nil {
		slog.ErrorContext(ctx, "error getting event template", logging.ErrKey, err)
		return nil, err
	}

	var occurrences []models.Occurrence
	if request.From.IsZero() {
		occurrences, err = h.templateService.OccurrenceService.CalculateOccurrences(ctx, template, request.Limit)
	} else {
		occurrences, err = h.templateService.OccurrenceService.CalculateOccurrencesFromDate(ctx, template, request.From, request.Limit)
	}
	if err != nil {
		slog.ErrorContext(ctx, "error calculating occurrences", logging.ErrKey, err)
		return nil, err
	}

	response, err := msgpack.Marshal(models.PreviewResponse{Occurrences: occurrences})
	if err != nil {
		slog.ErrorContext(ctx, "error marshaling preview response", logging.ErrKey, err)
		return nil, err
	}

	return response, nil
}

// HandleExportICS is the message handler for the export-ics subject. It
// renders the series and its exceptions as an iCalendar document.
func (h *TemplateHandler) HandleExportICS(ctx context.Context, msg domain.Message) ([]byte, error) {
	template, err := h.getTemplateFromMessage(ctx, msg)
	if err != nil {
		return nil, err
	}

	exceptions, err := h.exceptionService.ListExceptions(ctx, template.UID)
	if err != nil {
		slog.ErrorContext(ctx, "error listing occurrence exceptions", logging.ErrKey, err)
		return nil, err
	}

	feed, err := h.feedGenerator.SeriesFeed(template, exceptions)
	if err != nil {
		slog.ErrorContext(ctx, "error generating iCalendar feed", logging.ErrKey, err)
		return nil, err
	}

	return []byte(feed), nil
}

// HandleTemplateDeleted is the message handler for the template-deleted
// subject. It cleans up all exceptions associated with the deleted template.
func (h *TemplateHandler) HandleTemplateDeleted(ctx context.Context, msg domain.Message) ([]byte, error) {
	if !h.exceptionService.ServiceReady() {
		slog.ErrorContext(ctx, "service not ready")
		return nil, fmt.Errorf("service not ready")
	}

	var payload models.TemplateDeletedMessage
	if err := json.Unmarshal(msg.Data(), &payload); err != nil {
		slog.ErrorContext(ctx, "error unmarshaling template deleted message", logging.ErrKey, err)
		return nil, err
	}
	if payload.TemplateUID == "" {
		slog.WarnContext(ctx, "invalid template deleted message: missing template UID")
		return nil, fmt.Errorf("template UID is required")
	}

	ctx = logging.AppendCtx(ctx, slog.String("template_uid", payload.TemplateUID))

	if err := h.exceptionService.DeleteTemplateExceptions(ctx, payload.TemplateUID); err != nil {
		slog.ErrorContext(ctx, "error deleting template exceptions", logging.ErrKey, err)
		return nil, err
	}

	slog.InfoContext(ctx, "cleaned up exceptions for deleted template")

	return []byte("success"), nil
}

// HandleTemplateUpdated is the message handler for the template-updated
// subject. A recurrence change orphans the template's exceptions, since their
// target dates no longer line up with the series, so they get removed.
func (h *TemplateHandler) HandleTemplateUpdated(ctx context.Context, msg domain.Message) ([]byte, error) {
	if !h.exceptionService.ServiceReady() {
		slog.ErrorContext(ctx, "service not ready")
		return nil, fmt.Errorf("service not ready")
	}

	var payload models.TemplateUpdatedMessage
	if err := json.Unmarshal(msg.Data(), &payload); err != nil {
		slog.ErrorContext(ctx, "error unmarshaling template updated message", logging.ErrKey, err)
		return nil, err
	}
	if payload.TemplateUID == "" {
		slog.WarnContext(ctx, "invalid template updated message: missing template UID")
		return nil, fmt.Errorf("template UID is required")
	}

	ctx = logging.AppendCtx(ctx, slog.String("template_uid", payload.TemplateUID))

	if !payload.RecurrenceChanged {
		slog.DebugContext(ctx, "recurrence unchanged, keeping exceptions")
		return []byte("success"), nil
	}

	if err := h.exceptionService.DeleteTemplateExceptions(ctx, payload.TemplateUID); err != nil {
		slog.ErrorContext(ctx, "error deleting template exceptions", logging.ErrKey, err)
		return nil, err
	}

	slog.InfoContext(ctx, "cleaned up exceptions after recurrence change")

	return []byte("success"), nil
}

// getTemplateFromMessage resolves a message whose payload is a bare template
// UID into the stored template.
func (h *TemplateHandler) getTemplateFromMessage(ctx context.Context, msg domain.Message) (*models.EventTemplate, error) {
	if !h.templateService.ServiceReady() {
		slog.ErrorContext(ctx, "service not ready")
		return nil, fmt.Errorf("service not ready")
	}

	templateUID := string(msg.Data())

	ctx = logging.AppendCtx(ctx, slog.String("template_uid", templateUID))

	// Validate that the template UID is a valid UUID.
	if _, err := uuid.Parse(templateUID); err != nil {
		slog.ErrorContext(ctx, "error parsing template UID", logging.ErrKey, err)
		return nil, err
	}

	template, err := h.templateService.GetTemplate(ctx, templateUID)
	if err != nil {
		slog.ErrorContext(ctx, "error getting event template from NATS KV", logging.ErrKey, err)
		return nil, err
	}

	return template, nil
}

// validateWindow checks the bounds of a materialization window.
func validateWindow(windowStart, windowEnd time.Time) error {
	if windowStart.IsZero() || windowEnd.IsZero() {
		return domain.NewValidationError("window start and end are required")
	}
	if windowEnd.Before(windowStart) {
		return domain.NewValidationError("window end must not be before window start")
	}
	if windowEnd.Sub(windowStart) > constants.MaxMaterializeWindowDays*24*time.Hour {
		return domain.NewValidationError(
			fmt.Sprintf("window must not span more than %d days", constants.MaxMaterializeWindowDays))
	}
	return nil
}
