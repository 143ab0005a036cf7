// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"time"

	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain/models"
)

// TemplateRepository defines the interface for event template storage operations.
// This interface can be implemented by different storage backends (NATS, PostgreSQL, etc.)
type TemplateRepository interface {
	Create(ctx context.Context, template *models.EventTemplate) error
	Exists(ctx context.Context, templateUID string) (bool, error)
	Get(ctx context.Context, templateUID string) (*models.EventTemplate, error)
	GetWithRevision(ctx context.Context, templateUID string) (*models.EventTemplate, uint64, error)
	Update(ctx context.Context, template *models.EventTemplate, revision uint64) error
	Delete(ctx context.Context, templateUID string, revision uint64) error
	ListAll(ctx context.Context) ([]*models.EventTemplate, error)
}

// ExceptionRepository defines the interface for occurrence exception storage
// operations. Exceptions are keyed by UID and indexed by their template so
// the overlay pass can fetch the whole set for a series in one call.
type ExceptionRepository interface {
	Create(ctx context.Context, exception *models.OccurrenceException) error
	Get(ctx context.Context, exceptionUID string) (*models.OccurrenceException, error)
	GetWithRevision(ctx context.Context, exceptionUID string) (*models.OccurrenceException, uint64, error)
	Update(ctx context.Context, exception *models.OccurrenceException, revision uint64) error
	Delete(ctx context.Context, exceptionUID string, revision uint64) error

	// ListByTemplate returns every exception anchored against the template.
	ListByTemplate(ctx context.Context, templateUID string) ([]*models.OccurrenceException, error)

	// GetByTemplateAndDate returns the exception targeting the calendar day of
	// date, if any. At most one exception exists per (template, day).
	GetByTemplateAndDate(ctx context.Context, templateUID string, date time.Time) (*models.OccurrenceException, error)
}
