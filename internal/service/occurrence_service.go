// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/recurrence"
	"github.com/linuxfoundation/lfx-v2-event-series-service/pkg/constants"
)

// meterName is the instrumentation name for the service package.
const meterName = "github.com/linuxfoundation/lfx-v2-event-series-service/internal/service"

// OccurrenceService expands event templates into concrete occurrences and
// applies occurrence exceptions. It implements [domain.OccurrenceService].
type OccurrenceService struct {
	Generator *recurrence.Generator

	materializedCounter metric.Int64Counter
	windowHistogram     metric.Int64Histogram
}

// NewOccurrenceService creates a new OccurrenceService.
func NewOccurrenceService() *OccurrenceService {
	meter := otel.Meter(meterName)

	materializedCounter, err := meter.Int64Counter("occurrences.materialized",
		metric.WithDescription("Total occurrences materialized across all requests"))
	if err != nil {
		slog.Warn("failed to create occurrences counter", logging.ErrKey, err)
	}
	windowHistogram, err := meter.Int64Histogram("materialize.window.occurrences",
		metric.WithDescription("Occurrences produced per materialization window"))
	if err != nil {
		slog.Warn("failed to create window histogram", logging.ErrKey, err)
	}

	return &OccurrenceService{
		Generator:           recurrence.NewGenerator(nil),
		materializedCounter: materializedCounter,
		windowHistogram:     windowHistogram,
	}
}

// MaterializeWindow expands the template over the inclusive
// [windowStart, windowEnd] range and applies the given exceptions. The
// returned occurrences are sorted ascending by start time; a reschedule may
// move an occurrence out of (or into) generated order, so the overlay re-sorts.
func (s *OccurrenceService) MaterializeWindow(ctx context.Context, template *models.EventTemplate, exceptions []*models.OccurrenceException, windowStart, windowEnd time.Time) ([]models.Occurrence, error) {
	if template == nil {
		return nil, domain.NewValidationError("event template is required", nil)
	}
	if windowEnd.Before(windowStart) {
		return nil, domain.NewValidationError("window end must not be before window start", nil)
	}

	starts, err := s.candidateStarts(template, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	// Exceptions are keyed by the calendar day of the occurrence they target.
	exceptionsByDay := make(map[string]*models.OccurrenceException, len(exceptions))
	for _, exception := range exceptions {
		if exception == nil || exception.TemplateUID != template.UID {
			continue
		}
		exceptionsByDay[exception.DateKey()] = exception
	}

	occurrences := make([]models.Occurrence, 0, len(starts))
	for _, start := range starts {
		exception, ok := exceptionsByDay[models.DateKey(start)]
		if !ok {
			occurrences = append(occurrences, s.buildOccurrence(template, start))
			continue
		}

		switch exception.Kind {
		case models.ExceptionKindSkip:
			continue
		case models.ExceptionKindReschedule:
			occurrence, include := s.applyReschedule(template, start, exception, windowStart, windowEnd)
			if include {
				occurrences = append(occurrences, occurrence)
			}
		case models.ExceptionKindModify:
			occurrences = append(occurrences, s.applyModify(template, start, exception))
		}
	}

	sort.Slice(occurrences, func(i, j int) bool {
		return occurrences[i].StartTime.Before(occurrences[j].StartTime)
	})

	if s.materializedCounter != nil {
		s.materializedCounter.Add(ctx, int64(len(occurrences)))
	}
	if s.windowHistogram != nil {
		s.windowHistogram.Record(ctx, int64(len(occurrences)))
	}

	slog.DebugContext(ctx, "materialized occurrences",
		"template_uid", template.UID,
		"window_start", windowStart,
		"window_end", windowEnd,
		"occurrence_count", len(occurrences),
	)

	return occurrences, nil
}

// CalculateOccurrences calculates occurrences for a template starting from the
// template's anchor start time.
func (s *OccurrenceService) CalculateOccurrences(ctx context.Context, template *models.EventTemplate, limit int) ([]models.Occurrence, error) {
	if template == nil {
		return nil, domain.NewValidationError("event template is required", nil)
	}
	return s.CalculateOccurrencesFromDate(ctx, template, template.AnchorStart, limit)
}

// CalculateOccurrencesFromDate calculates occurrences for a template starting
// from a specific instant. The limit is clamped to the service's maximum.
func (s *OccurrenceService) CalculateOccurrencesFromDate(ctx context.Context, template *models.EventTemplate, fromDate time.Time, limit int) ([]models.Occurrence, error) {
	if template == nil {
		return nil, domain.NewValidationError("event template is required", nil)
	}
	if limit <= 0 {
		limit = constants.DefaultOccurrenceLimit
	}
	if limit > constants.MaxOccurrenceLimit {
		limit = constants.MaxOccurrenceLimit
	}

	if template.Recurrence == nil {
		if template.AnchorStart.Before(fromDate) {
			return []models.Occurrence{}, nil
		}
		return []models.Occurrence{s.buildOccurrence(template, template.AnchorStart)}, nil
	}

	starts, err := s.Generator.Generate(template.Recurrence, template.AnchorStart, constants.OccurrenceSafetyCap)
	if err != nil {
		return nil, domain.NewValidationError("failed to expand recurrence pattern", err)
	}

	occurrences := make([]models.Occurrence, 0, limit)
	for _, start := range starts {
		if start.Before(fromDate) {
			continue
		}
		occurrences = append(occurrences, s.buildOccurrence(template, start))
		if len(occurrences) >= limit {
			break
		}
	}

	return occurrences, nil
}

// SeriesEndDate returns the end time of the final occurrence of the series,
// or nil when the series never ends.
func (s *OccurrenceService) SeriesEndDate(ctx context.Context, template *models.EventTemplate) (*time.Time, error) {
	if template == nil {
		return nil, domain.NewValidationError("event template is required", nil)
	}

	if template.Recurrence == nil {
		end := template.AnchorEnd
		return &end, nil
	}
	if template.Recurrence.IsUnbounded() {
		return nil, nil
	}

	starts, err := s.Generator.Generate(template.Recurrence, template.AnchorStart, constants.OccurrenceSafetyCap)
	if err != nil {
		return nil, domain.NewValidationError("failed to expand recurrence pattern", err)
	}
	if len(starts) == 0 {
		return nil, nil
	}

	end := starts[len(starts)-1].Add(template.Duration())
	return &end, nil
}

// ValidateOccurrenceDate reports whether the calendar day of date holds a real
// occurrence of the series.
func (s *OccurrenceService) ValidateOccurrenceDate(ctx context.Context, template *models.EventTemplate, date time.Time) (bool, error) {
	if template == nil {
		return false, domain.NewValidationError("event template is required", nil)
	}

	if template.Recurrence == nil {
		return models.DateKey(template.AnchorStart) == models.DateKey(date), nil
	}

	// A one-day window aligned to the anchor's location covers every instant
	// of the target calendar day.
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, template.AnchorStart.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	starts, err := s.Generator.GenerateWindow(template.Recurrence, template.AnchorStart, dayStart, dayEnd)
	if err != nil {
		return false, domain.NewValidationError("failed to expand recurrence pattern", err)
	}

	return len(starts) > 0, nil
}

// candidateStarts produces the base occurrence start times inside the window
// before any exceptions are applied.
func (s *OccurrenceService) candidateStarts(template *models.EventTemplate, windowStart, windowEnd time.Time) ([]time.Time, error) {
	if template.Recurrence == nil {
		start := template.AnchorStart
		if start.Before(windowStart) || start.After(windowEnd) {
			return nil, nil
		}
		return []time.Time{start}, nil
	}

	starts, err := s.Generator.GenerateWindow(template.Recurrence, template.AnchorStart, windowStart, windowEnd)
	if err != nil {
		return nil, domain.NewValidationError("failed to expand recurrence pattern", err)
	}
	return starts, nil
}

// buildOccurrence creates an unmodified occurrence of the template at the
// given start time.
func (s *OccurrenceService) buildOccurrence(template *models.EventTemplate, start time.Time) models.Occurrence {
	return models.Occurrence{
		OccurrenceID: models.NewOccurrenceID(start),
		TemplateUID:  template.UID,
		Title:        template.Title,
		Description:  template.Description,
		Participants: template.Participants,
		StartTime:    start,
		EndTime:      start.Add(template.Duration()),
	}
}

// applyReschedule moves an occurrence to the exception's new start, keeping
// the template duration and the occurrence identity of the original start.
// The moved occurrence is included only when its new start falls inside the
// window.
func (s *OccurrenceService) applyReschedule(template *models.EventTemplate, originalStart time.Time, exception *models.OccurrenceException, windowStart, windowEnd time.Time) (models.Occurrence, bool) {
	if exception.Reschedule == nil {
		return models.Occurrence{}, false
	}

	newStart := exception.Reschedule.NewStart
	if newStart.Before(windowStart) || newStart.After(windowEnd) {
		return models.Occurrence{}, false
	}

	occurrence := s.buildOccurrence(template, originalStart)
	occurrence.StartTime = newStart
	occurrence.EndTime = newStart.Add(template.Duration())
	occurrence.Rescheduled = true
	occurrence.OriginalStart = &originalStart
	return occurrence, true
}

// applyModify overlays the exception's overrides on an occurrence. An
// overridden start keeps the template duration unless the end is also
// overridden.
func (s *OccurrenceService) applyModify(template *models.EventTemplate, originalStart time.Time, exception *models.OccurrenceException) models.Occurrence {
	occurrence := s.buildOccurrence(template, originalStart)
	occurrence.Modified = true

	overrides := exception.Overrides
	if overrides == nil {
		return occurrence
	}

	if overrides.Title != nil {
		occurrence.Title = *overrides.Title
	}
	if overrides.Description != nil {
		occurrence.Description = *overrides.Description
	}
	if overrides.Participants != nil {
		occurrence.Participants = overrides.Participants
	}
	if overrides.StartTime != nil {
		occurrence.StartTime = *overrides.StartTime
		occurrence.EndTime = overrides.StartTime.Add(template.Duration())
		occurrence.OriginalStart = &originalStart
	}
	if overrides.EndTime != nil {
		occurrence.EndTime = *overrides.EndTime
	}

	return occurrence
}

// Compile-time interface check
var _ domain.OccurrenceService = (*OccurrenceService)(nil)
