// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"time"

	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain/models"
)

// OccurrenceService defines the interface for expanding an event template
// into concrete occurrences.
type OccurrenceService interface {
	// MaterializeWindow expands the template over the inclusive
	// [windowStart, windowEnd] range and applies the given exceptions,
	// returning the final occurrences sorted ascending by start time.
	MaterializeWindow(ctx context.Context, template *models.EventTemplate, exceptions []*models.OccurrenceException, windowStart, windowEnd time.Time) ([]models.Occurrence, error)

	// CalculateOccurrences expands occurrences starting from the template's
	// anchor start time. This is typically used when creating a template to
	// preview its future occurrences.
	CalculateOccurrences(ctx context.Context, template *models.EventTemplate, limit int) ([]models.Occurrence, error)

	// CalculateOccurrencesFromDate expands occurrences starting from a
	// specific instant, typically "now" when previewing an existing series.
	CalculateOccurrencesFromDate(ctx context.Context, template *models.EventTemplate, fromDate time.Time, limit int) ([]models.Occurrence, error)

	// SeriesEndDate returns the end time of the final occurrence of the
	// series, or nil when the series never ends.
	SeriesEndDate(ctx context.Context, template *models.EventTemplate) (*time.Time, error)

	// ValidateOccurrenceDate reports whether the calendar day of date holds a
	// real occurrence of the series. Used to validate exception targets.
	ValidateOccurrenceDate(ctx context.Context, template *models.EventTemplate, date time.Time) (bool, error)
}
