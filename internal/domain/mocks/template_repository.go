// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain/models"
)

// MockTemplateRepository implements TemplateRepository for testing
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) Create(ctx context.Context, template *models.EventTemplate) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) Exists(ctx context.Context, templateUID string) (bool, error) {
	args := m.Called(ctx, templateUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTemplateRepository) Get(ctx context.Context, templateUID string) (*models.EventTemplate, error) {
	args := m.Called(ctx, templateUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventTemplate), args.Error(1)
}

func (m *MockTemplateRepository) GetWithRevision(ctx context.Context, templateUID string) (*models.EventTemplate, uint64, error) {
	args := m.Called(ctx, templateUID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.EventTemplate), args.Get(1).(uint64), args.Error(2)
}

func (m *MockTemplateRepository) Update(ctx context.Context, template *models.EventTemplate, revision uint64) error {
	args := m.Called(ctx, template, revision)
	return args.Error(0)
}

func (m *MockTemplateRepository) Delete(ctx context.Context, templateUID string, revision uint64) error {
	args := m.Called(ctx, templateUID, revision)
	return args.Error(0)
}

func (m *MockTemplateRepository) ListAll(ctx context.Context) ([]*models.EventTemplate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.EventTemplate), args.Error(1)
}
