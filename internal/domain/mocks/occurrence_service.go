// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain/models"
)

// MockOccurrenceService implements OccurrenceService for testing
type MockOccurrenceService struct {
	mock.Mock
}

func (m *MockOccurrenceService) MaterializeWindow(ctx context.Context, template *models.EventTemplate, exceptions []*models.OccurrenceException, windowStart, windowEnd time.Time) ([]models.Occurrence, error) {
	args := m.Called(ctx, template, exceptions, windowStart, windowEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Occurrence), args.Error(1)
}

func (m *MockOccurrenceService) CalculateOccurrences(ctx context.Context, template *models.EventTemplate, limit int) ([]models.Occurrence, error) {
	args := m.Called(ctx, template, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Occurrence), args.Error(1)
}

func (m *MockOccurrenceService) CalculateOccurrencesFromDate(ctx context.Context, template *models.EventTemplate, fromDate time.Time, limit int) ([]models.Occurrence, error) {
	args := m.Called(ctx, template, fromDate, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Occurrence), args.Error(1)
}

func (m *MockOccurrenceService) SeriesEndDate(ctx context.Context, template *models.EventTemplate) (*time.Time, error) {
	args := m.Called(ctx, template)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockOccurrenceService) ValidateOccurrenceDate(ctx context.Context, template *models.EventTemplate, date time.Time) (bool, error) {
	args := m.Called(ctx, template, date)
	return args.Bool(0), args.Error(1)
}
