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

// ExceptionService implements the occurrence exception operations. An
// exception attaches to a template and targets a single occurrence day.
type ExceptionService struct {
	TemplateRepository  domain.TemplateRepository
	ExceptionRepository domain.ExceptionRepository
	OccurrenceService   domain.OccurrenceService
	MessageBuilder      domain.MessageBuilder
	Config              ServiceConfig
}

// NewExceptionService creates a new ExceptionService.
func NewExceptionService(
	templateRepository domain.TemplateRepository,
	exceptionRepository domain.ExceptionRepository,
	occurrenceService domain.OccurrenceService,
	messageBuilder domain.MessageBuilder,
	config ServiceConfig,
) *ExceptionService {
	return &ExceptionService{
		TemplateRepository:  templateRepository,
		ExceptionRepository: exceptionRepository,
		OccurrenceService:   occurrenceService,
		MessageBuilder:      messageBuilder,
		Config:              config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *ExceptionService) ServiceReady() bool {
	return s.TemplateRepository != nil &&
		s.ExceptionRepository != nil &&
		s.OccurrenceService != nil &&
		s.MessageBuilder != nil
}

// ListExceptions fetches all exceptions attached to a template.
func (s *ExceptionService) ListExceptions(ctx context.Context, templateUID string) ([]*models.OccurrenceException, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	if templateUID == "" {
		return nil, domain.ErrValidationFailed
	}

	return s.ExceptionRepository.ListByTemplate(ctx, templateUID)
}

// GetException fetches a single occurrence exception.
func (s *ExceptionService) GetException(ctx context.Context, exceptionUID string) (*models.OccurrenceException, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	if exceptionUID == "" {
		return nil, domain.ErrValidationFailed
	}

	return s.ExceptionRepository.Get(ctx, exceptionUID)
}

// GetExceptionWithRevision fetches a single occurrence exception along with its store revision.
func (s *ExceptionService) GetExceptionWithRevision(ctx context.Context, exceptionUID string) (*models.OccurrenceException, uint64, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, 0, domain.ErrServiceUnavailable
	}
	if exceptionUID == "" {
		return nil, 0, domain.ErrValidationFailed
	}

	return s.ExceptionRepository.GetWithRevision(ctx, exceptionUID)
}

// CreateException creates a new occurrence exception. The target date must
// hold a real occurrence of the series and must not already carry an
// exception.
func (s *ExceptionService) CreateException(ctx context.Context, reqException *models.OccurrenceException) (*models.OccurrenceException, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	if reqException == nil {
		return nil, domain.ErrValidationFailed
	}
	if err := reqException.Validate(); err != nil {
		slog.WarnContext(ctx, "invalid occurrence exception", logging.ErrKey, err)
		return nil, domain.NewValidationError("invalid occurrence exception", err)
	}

	ctx = logging.AppendCtx(ctx, slog.String("template_uid", reqException.TemplateUID))

	template, err := s.TemplateRepository.Get(ctx, reqException.TemplateUID)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			slog.WarnContext(ctx, "event template not found", logging.ErrKey, err)
			return nil, err
		}
		slog.ErrorContext(ctx, "error getting event template", logging.ErrKey, err)
		return nil, domain.ErrInternal
	}

	if err := s.validateTargetDate(ctx, template, reqException); err != nil {
		return nil, err
	}

	// At most one exception may exist per occurrence day.
	_, err = s.ExceptionRepository.GetByTemplateAndDate(ctx, reqException.TemplateUID, reqException.OriginalDate)
	if err == nil {
		slog.WarnContext(ctx, "exception already exists for date", "original_date", reqException.DateKey())
		return nil, domain.NewConflictError("an exception already exists for this occurrence date", nil)
	}
	if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
		slog.ErrorContext(ctx, "error checking for existing exception", logging.ErrKey, err)
		return nil, domain.ErrInternal
	}

	reqException.UID = uuid.New().String()
	now := time.Now().UTC()
	reqException.CreatedAt = &now
	reqException.UpdatedAt = &now

	ctx = logging.AppendCtx(ctx, slog.String("exception_uid", reqException.UID))

	if err := s.ExceptionRepository.Create(ctx, reqException); err != nil {
		slog.ErrorContext(ctx, "error creating occurrence exception", logging.ErrKey, err)
		return nil, err
	}

	if err := s.MessageBuilder.SendIndexException(ctx, models.ActionCreated, *reqException); err != nil {
		slog.ErrorContext(ctx, "error sending exception index message", logging.ErrKey, err)
	}

	slog.InfoContext(ctx, "created occurrence exception", "kind", reqException.Kind)

	return reqException, nil
}

// UpdateException updates an existing occurrence exception using optimistic
// concurrency control.
func (s *ExceptionService) UpdateException(ctx context.Context, reqException *models.OccurrenceException, revision uint64) (*models.OccurrenceException, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	if reqException == nil || reqException.UID == "" {
		return nil, domain.ErrValidationFailed
	}

	var err error
	if s.Config.SkipRevisionValidation {
		// If skipping the revision validation, we need to get the key revision from the store with a Get request.
		_, revision, err = s.ExceptionRepository.GetWithRevision(ctx, reqException.UID)
		if err != nil {
			if errors.Is(err, domain.ErrExceptionNotFound) || domain.GetErrorType(err) == domain.ErrorTypeNotFound {
				slog.WarnContext(ctx, "occurrence exception not found", logging.ErrKey, err)
				return nil, err
			}
			slog.ErrorContext(ctx, "error getting occurrence exception from store", logging.ErrKey, err)
			return nil, domain.ErrInternal
		}
	}

	ctx = logging.AppendCtx(ctx, slog.String("exception_uid", reqException.UID))
	ctx = logging.AppendCtx(ctx, slog.String("revision", strconv.FormatUint(revision, 10)))

	existingException, err := s.ExceptionRepository.Get(ctx, reqException.UID)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			slog.WarnContext(ctx, "occurrence exception not found", logging.ErrKey, err)
			return nil, err
		}
		slog.ErrorContext(ctx, "error checking if occurrence exception exists", logging.ErrKey, err)
		return nil, domain.ErrInternal
	}

	// The owning template of an exception never changes.
	reqException.TemplateUID = existingException.TemplateUID
	reqException.CreatedAt = existingException.CreatedAt
	reqException.UpdatedAt = utils.TimePtr(time.Now().UTC())

	if err := reqException.Validate(); err != nil {
		slog.WarnContext(ctx, "invalid occurrence exception", logging.ErrKey, err)
		return nil, domain.NewValidationError("invalid occurrence exception", err)
	}

	// A moved target date must still hold a real occurrence and must be free.
	if existingException.DateKey() != reqException.DateKey() {
		template, err := s.TemplateRepository.Get(ctx, reqException.TemplateUID)
		if err != nil {
			slog.ErrorContext(ctx, "error getting event template", logging.ErrKey, err)
			return nil, domain.ErrInternal
		}
		if err := s.validateTargetDate(ctx, template, reqException); err != nil {
			return nil, err
		}
		_, err = s.ExceptionRepository.GetByTemplateAndDate(ctx, reqException.TemplateUID, reqException.OriginalDate)
		if err == nil {
			return nil, domain.NewConflictError("an exception already exists for this occurrence date", nil)
		}
		if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
			slog.ErrorContext(ctx, "error checking for existing exception", logging.ErrKey, err)
			return nil, domain.ErrInternal
		}
	}

	if err := s.ExceptionRepository.Update(ctx, reqException, revision); err != nil {
		slog.ErrorContext(ctx, "error updating occurrence exception", logging.ErrKey, err)
		return nil, err
	}

	if err := s.MessageBuilder.SendIndexException(ctx, models.ActionUpdated, *reqException); err != nil {
		slog.ErrorContext(ctx, "error sending exception index message", logging.ErrKey, err)
	}

	slog.InfoContext(ctx, "updated occurrence exception", "kind", reqException.Kind)

	return reqException, nil
}

// DeleteException deletes an occurrence exception using optimistic
// concurrency control.
func (s *ExceptionService) DeleteException(ctx context.Context, exceptionUID string, revision uint64) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	if exceptionUID == "" {
		return domain.ErrValidationFailed
	}

	var err error
	if s.Config.SkipRevisionValidation {
		// If skipping the revision validation, we need to get the key revision from the store with a Get request.
		_, revision, err = s.ExceptionRepository.GetWithRevision(ctx, exceptionUID)
		if err != nil {
			if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
				slog.WarnContext(ctx, "occurrence exception not found", logging.ErrKey, err)
				return err
			}
			slog.ErrorContext(ctx, "error getting occurrence exception from store", logging.ErrKey, err)
			return domain.ErrInternal
		}
	}

	ctx = logging.AppendCtx(ctx, slog.String("exception_uid", exceptionUID))
	ctx = logging.AppendCtx(ctx, slog.String("revision", strconv.FormatUint(revision, 10)))

	if err := s.ExceptionRepository.Delete(ctx, exceptionUID, revision); err != nil {
		slog.ErrorContext(ctx, "error deleting occurrence exception", logging.ErrKey, err)
		return err
	}

	if err := s.MessageBuilder.SendDeleteIndexException(ctx, exceptionUID); err != nil {
		slog.ErrorContext(ctx, "error sending exception index message", logging.ErrKey, err)
	}

	slog.InfoContext(ctx, "deleted occurrence exception")

	return nil
}

// DeleteTemplateExceptions removes every exception attached to a template.
// Used when the template is deleted or its recurrence pattern changes, which
// orphans the exceptions' target dates.
func (s *ExceptionService) DeleteTemplateExceptions(ctx context.Context, templateUID string) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	if templateUID == "" {
		return domain.ErrValidationFailed
	}

	ctx = logging.AppendCtx(ctx, slog.String("template_uid", templateUID))

	exceptions, err := s.ExceptionRepository.ListByTemplate(ctx, templateUID)
	if err != nil {
		slog.ErrorContext(ctx, "error listing template exceptions", logging.ErrKey, err)
		return err
	}
	if len(exceptions) == 0 {
		return nil
	}

	// Use WorkerPool for concurrent deletion; one failed deletion must not
	// stop the cleanup of the others.
	pool := concurrent.NewWorkerPool(4)

	deletions := make([]func() error, 0, len(exceptions))
	for _, exception := range exceptions {
		exceptionUID := exception.UID
		deletions = append(deletions, func() error {
			_, revision, err := s.ExceptionRepository.GetWithRevision(ctx, exceptionUID)
			if err != nil {
				if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
					return nil
				}
				return err
			}
			if err := s.ExceptionRepository.Delete(ctx, exceptionUID, revision); err != nil {
				return err
			}
			return s.MessageBuilder.SendDeleteIndexException(ctx, exceptionUID)
		})
	}

	errs := pool.RunAll(ctx, deletions...)
	var joined []error
	for _, err := range errs {
		if err != nil {
			joined = append(joined, err)
		}
	}
	if len(joined) > 0 {
		slog.ErrorContext(ctx, "error deleting template exceptions",
			logging.ErrKey, errors.Join(joined...), "exception_count", len(exceptions))
		return domain.ErrInternal
	}

	slog.InfoContext(ctx, "deleted template exceptions", "exception_count", len(exceptions))

	return nil
}

// validateTargetDate checks that the exception's original date holds a real
// occurrence of the template's series.
func (s *ExceptionService) validateTargetDate(ctx context.Context, template *models.EventTemplate, exception *models.OccurrenceException) error {
	valid, err := s.OccurrenceService.ValidateOccurrenceDate(ctx, template, exception.OriginalDate)
	if err != nil {
		slog.ErrorContext(ctx, "error validating occurrence date", logging.ErrKey, err)
		return domain.ErrInternal
	}
	if !valid {
		slog.WarnContext(ctx, "no occurrence on target date", "original_date", exception.DateKey())
		return domain.NewValidationError("the series has no occurrence on the target date", nil)
	}
	return nil
}
