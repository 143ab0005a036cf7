// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/logging"
)

// NatsExceptionRepository is the NATS KV store repository for occurrence exceptions.
type NatsExceptionRepository struct {
	*NatsBaseRepository[models.OccurrenceException]
	keyBuilder *KeyBuilder
}

// NewNatsExceptionRepository creates a new NATS KV store repository for occurrence exceptions.
func NewNatsExceptionRepository(kvStore INatsKeyValue) *NatsExceptionRepository {
	return &NatsExceptionRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.OccurrenceException](kvStore, "occurrence exception"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

// Create stores a new occurrence exception, indexed by template and date.
func (r *NatsExceptionRepository) Create(ctx context.Context, exception *models.OccurrenceException) error {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixException, exception.UID)
	if err := r.NatsBaseRepository.Create(ctx, key, exception); err != nil {
		return err
	}

	r.createIndices(ctx, exception)
	return nil
}

// Get retrieves an occurrence exception by UID.
func (r *NatsExceptionRepository) Get(ctx context.Context, exceptionUID string) (*models.OccurrenceException, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixException, exceptionUID)
	return r.NatsBaseRepository.Get(ctx, key)
}

// GetWithRevision retrieves an occurrence exception by UID along with its revision.
func (r *NatsExceptionRepository) GetWithRevision(ctx context.Context, exceptionUID string) (*models.OccurrenceException, uint64, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixException, exceptionUID)
	return r.NatsBaseRepository.GetWithRevision(ctx, key)
}

// Update updates an occurrence exception using optimistic concurrency control.
func (r *NatsExceptionRepository) Update(ctx context.Context, exception *models.OccurrenceException, revision uint64) error {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixException, exception.UID)
	return r.NatsBaseRepository.Update(ctx, key, exception, revision)
}

// Delete removes an occurrence exception using optimistic concurrency control.
func (r *NatsExceptionRepository) Delete(ctx context.Context, exceptionUID string, revision uint64) error {
	// Fetch the exception first so the indices can be cleaned up.
	exception, err := r.Get(ctx, exceptionUID)
	if err != nil {
		return err
	}

	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixException, exceptionUID)
	if err := r.NatsBaseRepository.Delete(ctx, key, revision); err != nil {
		return err
	}

	r.deleteIndices(ctx, exception)
	return nil
}

// ListByTemplate lists all occurrence exceptions belonging to a template.
func (r *NatsExceptionRepository) ListByTemplate(ctx context.Context, templateUID string) ([]*models.OccurrenceException, error) {
	exceptions, err := r.ListEntitiesEncoded(ctx, KeyPrefixException+"/", r.keyBuilder)
	if err != nil {
		return nil, err
	}

	var matched []*models.OccurrenceException
	for _, exception := range exceptions {
		if exception.TemplateUID == templateUID {
			matched = append(matched, exception)
		}
	}

	return matched, nil
}

// GetByTemplateAndDate retrieves the exception attached to a template for a
// given calendar day, if any. At most one exception exists per day.
func (r *NatsExceptionRepository) GetByTemplateAndDate(ctx context.Context, templateUID string, date time.Time) (*models.OccurrenceException, error) {
	exceptions, err := r.ListByTemplate(ctx, templateUID)
	if err != nil {
		return nil, err
	}

	dateKey := models.DateKey(date)
	for _, exception := range exceptions {
		if exception.DateKey() == dateKey {
			return exception, nil
		}
	}

	return nil, domain.NewNotFoundError("no exception found for the given date", domain.ErrExceptionNotFound)
}

// createIndices creates the secondary index entries for an exception.
// Index failures are logged but do not fail the operation.
func (r *NatsExceptionRepository) createIndices(ctx context.Context, exception *models.OccurrenceException) {
	indexKey := r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexTemplate, exception.TemplateUID, exception.UID)
	if err := r.PutIndex(ctx, indexKey); err != nil {
		slog.WarnContext(ctx, "failed to create template index for exception",
			logging.ErrKey, err, "exception_uid", exception.UID, "template_uid", exception.TemplateUID)
	}

	dateKey := r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexDate, exception.DateKey(), exception.UID)
	if err := r.PutIndex(ctx, dateKey); err != nil {
		slog.WarnContext(ctx, "failed to create date index for exception",
			logging.ErrKey, err, "exception_uid", exception.UID, "original_date", exception.DateKey())
	}
}

// deleteIndices removes the secondary index entries for an exception.
func (r *NatsExceptionRepository) deleteIndices(ctx context.Context, exception *models.OccurrenceException) {
	indexKey := r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexTemplate, exception.TemplateUID, exception.UID)
	if err := r.DeleteIndex(ctx, indexKey); err != nil {
		slog.WarnContext(ctx, "failed to delete template index for exception",
			logging.ErrKey, err, "exception_uid", exception.UID, "template_uid", exception.TemplateUID)
	}

	dateKey := r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexDate, exception.DateKey(), exception.UID)
	if err := r.DeleteIndex(ctx, dateKey); err != nil {
		slog.WarnContext(ctx, "failed to delete date index for exception",
			logging.ErrKey, err, "exception_uid", exception.UID, "original_date", exception.DateKey())
	}
}
