// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain/models"
)

// Message represents a domain message interface
type Message interface {
	Subject() string
	Data() []byte
	Respond(data []byte) error
	HasReply() bool
}

// MessageHandler defines how the service handles incoming messages
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message)
	HandlerReady() bool
}

// TemplateIndexSender handles indexing operations for event templates.
type TemplateIndexSender interface {
	SendIndexTemplate(ctx context.Context, action models.MessageAction, data models.EventTemplate) error
	SendDeleteIndexTemplate(ctx context.Context, data string) error
}

// ExceptionIndexSender handles indexing operations for occurrence exceptions.
type ExceptionIndexSender interface {
	SendIndexException(ctx context.Context, action models.MessageAction, data models.OccurrenceException) error
	SendDeleteIndexException(ctx context.Context, data string) error
}

// TemplateEventSender handles event template lifecycle events.
type TemplateEventSender interface {
	SendTemplateDeleted(ctx context.Context, data models.TemplateDeletedMessage) error
	SendTemplateUpdated(ctx context.Context, data models.TemplateUpdatedMessage) error
}

// MessageBuilder is the main interface that composes all messaging capabilities.
type MessageBuilder interface {
	TemplateIndexSender
	ExceptionIndexSender
	TemplateEventSender
}
