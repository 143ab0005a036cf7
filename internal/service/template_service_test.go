// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain/mocks"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain/models"
)

func newTestTemplateService() (*TemplateService, *mocks.MockTemplateRepository, *mocks.MockMessageBuilder) {
	templateRepository := &mocks.MockTemplateRepository{}
	messageBuilder := &mocks.MockMessageBuilder{}
	svc := NewTemplateService(templateRepository, NewOccurrenceService(), messageBuilder, ServiceConfig{})
	return svc, templateRepository, messageBuilder
}

func serviceTemplate(t *testing.T) *models.EventTemplate {
	pattern, err := models.NewWeeklyPattern(1, []time.Weekday{time.Monday}, models.NeverEnds())
	require.NoError(t, err)

	anchor := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	return &models.EventTemplate{
		ProjectUID:  "project-1",
		Title:       "Weekly Sync",
		AnchorStart: anchor,
		AnchorEnd:   anchor.Add(time.Hour),
		Recurrence:  pattern,
	}
}

func TestTemplateServiceServiceReady(t *testing.T) {
	svc, _, _ := newTestTemplateService()
	assert.True(t, svc.ServiceReady())

	svc.TemplateRepository = nil
	assert.False(t, svc.ServiceReady())
}

func TestCreateTemplate(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, templateRepository, messageBuilder := newTestTemplateService()

		templateRepository.On("Create", mock.Anything, mock.AnythingOfType("*models.EventTemplate")).Return(nil)
		messageBuilder.On("SendIndexTemplate", mock.Anything, models.ActionCreated, mock.AnythingOfType("models.EventTemplate")).Return(nil)

		created, err := svc.CreateTemplate(ctx, serviceTemplate(t))
		require.NoError(t, err)
		assert.NotEmpty(t, created.UID)
		require.NotNil(t, created.CreatedAt)
		require.NotNil(t, created.UpdatedAt)

		templateRepository.AssertExpectations(t)
		messageBuilder.AssertExpectations(t)
	})

	t.Run("validation failure", func(t *testing.T) {
		svc, _, _ := newTestTemplateService()

		template := serviceTemplate(t)
		template.Title = ""

		_, err := svc.CreateTemplate(ctx, template)
		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})

	t.Run("messaging failure does not undo the write", func(t *testing.T) {
		svc, templateRepository, messageBuilder := newTestTemplateService()

		templateRepository.On("Create", mock.Anything, mock.AnythingOfType("*models.EventTemplate")).Return(nil)
		messageBuilder.On("SendIndexTemplate", mock.Anything, models.ActionCreated, mock.AnythingOfType("models.EventTemplate")).
			Return(domain.NewUnavailableError("nats down", nil))

		created, err := svc.CreateTemplate(ctx, serviceTemplate(t))
		require.NoError(t, err)
		assert.NotEmpty(t, created.UID)
	})

	t.Run("repository failure", func(t *testing.T) {
		svc, templateRepository, _ := newTestTemplateService()

		templateRepository.On("Create", mock.Anything, mock.AnythingOfType("*models.EventTemplate")).
			Return(domain.NewInternalError("store write failed", nil))

		_, err := svc.CreateTemplate(ctx, serviceTemplate(t))
		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeInternal, domain.GetErrorType(err))
	})
}

func TestUpdateTemplate(t *testing.T) {
	ctx := context.Background()

	existing := func(t *testing.T) *models.EventTemplate {
		template := serviceTemplate(t)
		template.UID = "template-1"
		created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		template.CreatedAt = &created
		return template
	}

	t.Run("success preserves creation time", func(t *testing.T) {
		svc, templateRepository, messageBuilder := newTestTemplateService()

		existingTemplate := existing(t)
		templateRepository.On("Get", mock.Anything, "template-1").Return(existingTemplate, nil)
		templateRepository.On("Update", mock.Anything, mock.AnythingOfType("*models.EventTemplate"), uint64(7)).Return(nil)
		messageBuilder.On("SendIndexTemplate", mock.Anything, models.ActionUpdated, mock.AnythingOfType("models.EventTemplate")).Return(nil)
		messageBuilder.On("SendTemplateUpdated", mock.Anything, mock.MatchedBy(func(msg models.TemplateUpdatedMessage) bool {
			return msg.TemplateUID == "template-1" && !msg.RecurrenceChanged
		})).Return(nil)

		reqTemplate := serviceTemplate(t)
		reqTemplate.UID = "template-1"
		reqTemplate.Title = "Renamed Sync"

		updated, err := svc.UpdateTemplate(ctx, reqTemplate, 7)
		require.NoError(t, err)
		assert.Equal(t, existingTemplate.CreatedAt, updated.CreatedAt)
		require.NotNil(t, updated.UpdatedAt)

		messageBuilder.AssertExpectations(t)
	})

	t.Run("recurrence change is announced", func(t *testing.T) {
		svc, templateRepository, messageBuilder := newTestTemplateService()

		templateRepository.On("Get", mock.Anything, "template-1").Return(existing(t), nil)
		templateRepository.On("Update", mock.Anything, mock.AnythingOfType("*models.EventTemplate"), uint64(7)).Return(nil)
		messageBuilder.On("SendIndexTemplate", mock.Anything, models.ActionUpdated, mock.AnythingOfType("models.EventTemplate")).Return(nil)
		messageBuilder.On("SendTemplateUpdated", mock.Anything, mock.MatchedBy(func(msg models.TemplateUpdatedMessage) bool {
			return msg.RecurrenceChanged
		})).Return(nil)

		pattern, err := models.NewDailyPattern(1, models.NeverEnds())
		require.NoError(t, err)

		reqTemplate := serviceTemplate(t)
		reqTemplate.UID = "template-1"
		reqTemplate.Recurrence = pattern

		_, err = svc.UpdateTemplate(ctx, reqTemplate, 7)
		require.NoError(t, err)

		messageBuilder.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		svc, templateRepository, _ := newTestTemplateService()

		templateRepository.On("Get", mock.Anything, "template-1").
			Return(nil, domain.NewNotFoundError("event template not found", nil))

		reqTemplate := serviceTemplate(t)
		reqTemplate.UID = "template-1"

		_, err := svc.UpdateTemplate(ctx, reqTemplate, 7)
		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
	})

	t.Run("revision conflict", func(t *testing.T) {
		svc, templateRepository, _ := newTestTemplateService()

		templateRepository.On("Get", mock.Anything, "template-1").Return(existing(t), nil)
		templateRepository.On("Update", mock.Anything, mock.AnythingOfType("*models.EventTemplate"), uint64(7)).
			Return(domain.NewConflictError("event template revision mismatch", nil))

		reqTemplate := serviceTemplate(t)
		reqTemplate.UID = "template-1"

		_, err := svc.UpdateTemplate(ctx, reqTemplate, 7)
		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
	})

	t.Run("skip revision validation refetches the revision", func(t *testing.T) {
		svc, templateRepository, messageBuilder := newTestTemplateService()
		svc.Config.SkipRevisionValidation = true

		existingTemplate := existing(t)
		templateRepository.On("GetWithRevision", mock.Anything, "template-1").Return(existingTemplate, uint64(42), nil)
		templateRepository.On("Get", mock.Anything, "template-1").Return(existingTemplate, nil)
		templateRepository.On("Update", mock.Anything, mock.AnythingOfType("*models.EventTemplate"), uint64(42)).Return(nil)
		messageBuilder.On("SendIndexTemplate", mock.Anything, models.ActionUpdated, mock.AnythingOfType("models.EventTemplate")).Return(nil)
		messageBuilder.On("SendTemplateUpdated", mock.Anything, mock.AnythingOfType("models.TemplateUpdatedMessage")).Return(nil)

		reqTemplate := serviceTemplate(t)
		reqTemplate.UID = "template-1"

		// The caller's revision is ignored in favor of the store's.
		_, err := svc.UpdateTemplate(ctx, reqTemplate, 0)
		require.NoError(t, err)

		templateRepository.AssertExpectations(t)
	})
}

func TestDeleteTemplate(t *testing.T) {
	ctx := context.Background()

	t.Run("success announces the deletion", func(t *testing.T) {
		svc, templateRepository, messageBuilder := newTestTemplateService()

		templateRepository.On("Delete", mock.Anything, "template-1", uint64(7)).Return(nil)
		messageBuilder.On("SendDeleteIndexTemplate", mock.Anything, "template-1").Return(nil)
		messageBuilder.On("SendTemplateDeleted", mock.Anything, models.TemplateDeletedMessage{TemplateUID: "template-1"}).Return(nil)

		err := svc.DeleteTemplate(ctx, "template-1", 7)
		require.NoError(t, err)

		templateRepository.AssertExpectations(t)
		messageBuilder.AssertExpectations(t)
	})

	t.Run("empty UID", func(t *testing.T) {
		svc, _, _ := newTestTemplateService()
		err := svc.DeleteTemplate(ctx, "", 7)
		assert.ErrorIs(t, err, domain.ErrValidationFailed)
	})

	t.Run("skip revision validation refetches the revision", func(t *testing.T) {
		svc, templateRepository, messageBuilder := newTestTemplateService()
		svc.Config.SkipRevisionValidation = true

		template := serviceTemplate(t)
		template.UID = "template-1"
		templateRepository.On("GetWithRevision", mock.Anything, "template-1").Return(template, uint64(42), nil)
		templateRepository.On("Delete", mock.Anything, "template-1", uint64(42)).Return(nil)
		messageBuilder.On("SendDeleteIndexTemplate", mock.Anything, "template-1").Return(nil)
		messageBuilder.On("SendTemplateDeleted", mock.Anything, mock.AnythingOfType("models.TemplateDeletedMessage")).Return(nil)

		err := svc.DeleteTemplate(ctx, "template-1", 0)
		require.NoError(t, err)

		templateRepository.AssertExpectations(t)
	})
}

func TestGetTemplate(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, templateRepository, _ := newTestTemplateService()

		template := serviceTemplate(t)
		template.UID = "template-1"
		templateRepository.On("Get", mock.Anything, "template-1").Return(template, nil)

		got, err := svc.GetTemplate(ctx, "template-1")
		require.NoError(t, err)
		assert.Equal(t, "template-1", got.UID)
	})

	t.Run("empty UID", func(t *testing.T) {
		svc, _, _ := newTestTemplateService()
		_, err := svc.GetTemplate(ctx, "")
		assert.ErrorIs(t, err, domain.ErrValidationFailed)
	})

	t.Run("service not ready", func(t *testing.T) {
		svc, _, _ := newTestTemplateService()
		svc.MessageBuilder = nil
		_, err := svc.GetTemplate(ctx, "template-1")
		assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
	})
}

func TestListTemplates(t *testing.T) {
	ctx := context.Background()
	svc, templateRepository, _ := newTestTemplateService()

	first := serviceTemplate(t)
	first.UID = "template-1"
	second := serviceTemplate(t)
	second.UID = "template-2"

	templateRepository.On("ListAll", mock.Anything).Return([]*models.EventTemplate{first, second}, nil)

	templates, err := svc.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Len(t, templates, 2)
}
