// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-event-series-service/pkg/concurrent"
	"github.com/linuxfoundation/lfx-v2-event-series-service/pkg/utils"
)

// TemplateService implements the event template operations and owns the
// template lifecycle messages.
type TemplateService struct {
	TemplateRepository domain.TemplateRepository
	OccurrenceService  domain.OccurrenceService
	MessageBuilder     domain.MessageBuilder
	Config             ServiceConfig
}

// NewTemplateService creates a new TemplateService.
func NewTemplateService(
	templateRepository domain.TemplateRepository,
	occurrenceService domain.OccurrenceService,
	messageBuilder domain.MessageBuilder,
	config ServiceConfig,
) *TemplateService {
	return &TemplateService{
		TemplateRepository: templateRepository,
		OccurrenceService:  occurrenceService,
		MessageBuilder:     messageBuilder,
		Config:             config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *TemplateService) ServiceReady() bool {
	return s.TemplateRepository != nil &&
		s.OccurrenceService != nil &&
		s.MessageBuilder != nil
}

// ListTemplates fetches all event templates.
func (s *TemplateService) ListTemplates(ctx context.Context) ([]*models.EventTemplate, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	templates, err := s.TemplateRepository.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "returning event templates", "template_count", len(templates))

	return templates, nil
}

// GetTemplate fetches a single event template.
func (s *TemplateService) GetTemplate(ctx context.Context, templateUID string) (*models.EventTemplate, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	if templateUID == "" {
		return nil, domain.ErrValidationFailed
	}

	return s.TemplateRepository.Get(ctx, templateUID)
}

// GetTemplateWithRevision fetches a single event template along with its store revision.
func (s *TemplateService) GetTemplateWithRevision(ctx context.Context, templateUID string) (*models.EventTemplate, uint64, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, 0, domain.ErrServiceUnavailable
	}
	if templateUID == "" {
		return nil, 0, domain.ErrValidationFailed
	}

	return s.TemplateRepository.GetWithRevision(ctx, templateUID)
}

// CreateTemplate creates a new event template.
func (s *TemplateService) CreateTemplate(ctx context.Context, reqTemplate *models.EventTemplate) (*models.EventTemplate, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	if reqTemplate == nil {
		return nil, domain.ErrValidationFailed
	}
	if err := reqTemplate.Validate(); err != nil {
		slog.WarnContext(ctx, "invalid event template", logging.ErrKey, err)
		return nil, domain.NewValidationError("invalid event template", err)
	}

	reqTemplate.UID = uuid.New().String()
	now := time.Now().UTC()
	reqTemplate.CreatedAt = &now
	reqTemplate.UpdatedAt = &now

	ctx = logging.AppendCtx(ctx, slog.String("template_uid", reqTemplate.UID))

	if err := s.TemplateRepository.Create(ctx, reqTemplate); err != nil {
		slog.ErrorContext(ctx, "error creating event template", logging.ErrKey, err)
		return nil, err
	}

	// Use WorkerPool for concurrent NATS message sending
	pool := concurrent.NewWorkerPool(1)

	messages := []func() error{
		func() error {
			return s.MessageBuilder.SendIndexTemplate(ctx, models.ActionCreated, *reqTemplate)
		},
	}

	if err := pool.Run(ctx, messages...); err != nil {
		slog.ErrorContext(ctx, "error sending event template messages", logging.ErrKey, err)
		// The template is already stored; messaging failures must not undo the write.
	}

	slog.InfoContext(ctx, "created event template")

	return reqTemplate, nil
}

// UpdateTemplate updates an existing event template using optimistic
// concurrency control. A change to the recurrence pattern is announced so the
// template's exceptions can be invalidated.
func (s *TemplateService) UpdateTemplate(ctx context.Context, reqTemplate *models.EventTemplate, revision uint64) (*models.EventTemplate, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	if reqTemplate == nil || reqTemplate.UID == "" {
		return nil, domain.ErrValidationFailed
	}

	var err error
	if s.Config.SkipRevisionValidation {
		// If skipping the revision validation, we need to get the key revision from the store with a Get request.
		_, revision, err = s.TemplateRepository.GetWithRevision(ctx, reqTemplate.UID)
		if err != nil {
			if errors.Is(err, domain.ErrTemplateNotFound) || domain.GetErrorType(err) == domain.ErrorTypeNotFound {
				slog.WarnContext(ctx, "event template not found", logging.ErrKey, err)
				return nil, err
			}
			slog.ErrorContext(ctx, "error getting event template from store", logging.ErrKey, err)
			return nil, domain.ErrInternal
		}
	}

	ctx = logging.AppendCtx(ctx, slog.String("template_uid", reqTemplate.UID))
	ctx = logging.AppendCtx(ctx, slog.String("revision", strconv.FormatUint(revision, 10)))

	// Check that the template exists and keep the existing data the update may not change.
	existingTemplate, err := s.TemplateRepository.Get(ctx, reqTemplate.UID)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			slog.WarnContext(ctx, "event template not found", logging.ErrKey, err)
			return nil, err
		}
		slog.ErrorContext(ctx, "error checking if event template exists", logging.ErrKey, err)
		return nil, domain.ErrInternal
	}

	if err := reqTemplate.Validate(); err != nil {
		slog.WarnContext(ctx, "invalid event template", logging.ErrKey, err)
		return nil, domain.NewValidationError("invalid event template", err)
	}

	recurrenceChanged := !existingTemplate.Recurrence.Equal(reqTemplate.Recurrence)

	reqTemplate.CreatedAt = existingTemplate.CreatedAt
	reqTemplate.UpdatedAt = utils.TimePtr(time.Now().UTC())

	if err := s.TemplateRepository.Update(ctx, reqTemplate, revision); err != nil {
		slog.ErrorContext(ctx, "error updating event template", logging.ErrKey, err)
		return nil, err
	}

	// Use WorkerPool for concurrent NATS message sending
	pool := concurrent.NewWorkerPool(2)

	messages := []func() error{
		func() error {
			return s.MessageBuilder.SendIndexTemplate(ctx, models.ActionUpdated, *reqTemplate)
		},
		func() error {
			return s.MessageBuilder.SendTemplateUpdated(ctx, models.TemplateUpdatedMessage{
				TemplateUID:       reqTemplate.UID,
				RecurrenceChanged: recurrenceChanged,
			})
		},
	}

	if err := pool.Run(ctx, messages...); err != nil {
		slog.ErrorContext(ctx, "error sending event template messages", logging.ErrKey, err)
	}

	slog.InfoContext(ctx, "updated event template", "recurrence_changed", recurrenceChanged)

	return reqTemplate, nil
}

// DeleteTemplate deletes an event template using optimistic concurrency
// control and announces the deletion so the template's exceptions get cleaned up.
func (s *TemplateService) DeleteTemplate(ctx context.Context, templateUID string, revision uint64) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	if templateUID == "" {
		return domain.ErrValidationFailed
	}

	var err error
	if s.Config.SkipRevisionValidation {
		// If skipping the revision validation, we need to get the key revision from the store with a Get request.
		_, revision, err = s.TemplateRepository.GetWithRevision(ctx, templateUID)
		if err != nil {
			if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
				slog.WarnContext(ctx, "event template not found", logging.ErrKey, err)
				return err
			}
			slog.ErrorContext(ctx, "error getting event template from store", logging.ErrKey, err)
			return domain.ErrInternal
		}
	}

	ctx = logging.AppendCtx(ctx, slog.String("template_uid", templateUID))
	ctx = logging.AppendCtx(ctx, slog.String("revision", strconv.FormatUint(revision, 10)))

	if err := s.TemplateRepository.Delete(ctx, templateUID, revision); err != nil {
		slog.ErrorContext(ctx, "error deleting event template", logging.ErrKey, err)
		return err
	}

	// Use WorkerPool for concurrent NATS message sending
	pool := concurrent.NewWorkerPool(2)

	messages := []func() error{
		func() error {
			return s.MessageBuilder.SendDeleteIndexTemplate(ctx, templateUID)
		},
		func() error {
			return s.MessageBuilder.SendTemplateDeleted(ctx, models.TemplateDeletedMessage{
				TemplateUID: templateUID,
			})
		},
	}

	if err := pool.Run(ctx, messages...); err != nil {
		slog.ErrorContext(ctx, "error sending event template messages", logging.ErrKey, err)
	}

	slog.InfoContext(ctx, "deleted event template")

	return nil
}
