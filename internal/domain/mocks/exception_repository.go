// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain/models"
)

// MockExceptionRepository implements ExceptionRepository for testing
type MockExceptionRepository struct {
	mock.Mock
}

func (m *MockExceptionRepository) Create(ctx context.Context, exception *models.OccurrenceException) error {
	args := m.Called(ctx, exception)
	return args.Error(0)
}

func (m *MockExceptionRepository) Get(ctx context.Context, exceptionUID string) (*models.OccurrenceException, error) {
	args := m.Called(ctx, exceptionUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OccurrenceException), args.Error(1)
}

func (m *MockExceptionRepository) GetWithRevision(ctx context.Context, exceptionUID string) (*models.OccurrenceException, uint64, error) {
	args := m.Called(ctx, exceptionUID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.OccurrenceException), args.Get(1).(uint64), args.Error(2)
}

func (m *MockExceptionRepository) Update(ctx context.Context, exception *models.OccurrenceException, revision uint64) error {
	args := m.Called(ctx, exception, revision)
	return args.Error(0)
}

func (m *MockExceptionRepository) Delete(ctx context.Context, exceptionUID string, revision uint64) error {
	args := m.Called(ctx, exceptionUID, revision)
	return args.Error(0)
}

func (m *MockExceptionRepository) ListByTemplate(ctx context.Context, templateUID string) ([]*models.OccurrenceException, error) {
	args := m.Called(ctx, templateUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OccurrenceException), args.Error(1)
}

func (m *MockExceptionRepository) GetByTemplateAndDate(ctx context.Context, templateUID string, date time.Time) (*models.OccurrenceException, error) {
	args := m.Called(ctx, templateUID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OccurrenceException), args.Error(1)
}
