// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package messaging publishes event series messages to the NATS server.
package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/go-viper/mapstructure/v2"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-event-series-service/pkg/constants"
)

// INatsConn is a NATS connection interface needed for the [MessageBuilder].
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// MessageBuilder is the builder for the message and sends it to the NATS server.
type MessageBuilder struct {
	NatsConn INatsConn
}

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
	}
}

// sendMessage sends the message to the NATS server.
func (m *MessageBuilder) sendMessage(ctx context.Context, subject string, data []byte) error {
	err := m.NatsConn.Publish(subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// sendIndexerMessage sends the message to the NATS server for the indexer.
func (m *MessageBuilder) sendIndexerMessage(ctx context.Context, subject string, action models.MessageAction, data []byte, tags []string) error {
	headers := make(map[string]string)
	if authorization, ok := ctx.Value(constants.AuthorizationContextID).(string); ok {
		headers[constants.AuthorizationHeader] = authorization
	} else {
		// Fallback for system-generated events that don't have user auth context.
		// This is just a dummy value so that the indexer service can still process
		// the message, given that it requires an authorization header.
		headers[constants.AuthorizationHeader] = "Bearer event-series-service"
	}
	if principal, ok := ctx.Value(constants.PrincipalContextID).(string); ok {
		headers[constants.XOnBehalfOfHeader] = principal
	}
	var payload any
	switch action {
	case models.ActionCreated, models.ActionUpdated:
		// The data should be a JSON object.
		var jsonData any
		if err := json.Unmarshal(data, &jsonData); err != nil {
			slog.ErrorContext(ctx, "error unmarshalling data into JSON", logging.ErrKey, err, "subject", subject)
			return err
		}

		// Decode the JSON data into a map[string]any since that is what the indexer expects.
		config := mapstructure.DecoderConfig{
			TagName: "json",
			Result:  &payload,
		}
		decoder, err := mapstructure.NewDecoder(&config)
		if err != nil {
			slog.ErrorContext(ctx, "error creating decoder", logging.ErrKey, err, "subject", subject)
			return err
		}
		err = decoder.Decode(jsonData)
		if err != nil {
			slog.ErrorContext(ctx, "error decoding data", logging.ErrKey, err, "subject", subject)
			return err
		}
	case models.ActionDeleted:
		// The data should just be a string of the UID being deleted.
		payload = string(data)
	}

	message := models.EventSeriesIndexerMessage{
		Action:  action,
		Headers: headers,
		Data:    payload,
		Tags:    tags,
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message into JSON", logging.ErrKey, err, "subject", subject)
		return err
	}

	slog.DebugContext(ctx, "constructed indexer message",
		"subject", subject,
		"action", action,
		"tags_count", len(tags),
	)

	return m.sendMessage(ctx, subject, messageBytes)
}

// setIndexerTags sets the tags for the indexer.
func (m *MessageBuilder) setIndexerTags(tags ...string) []string {
	return tags
}

// SendIndexTemplate sends the message to the NATS server for the event template indexing.
func (m *MessageBuilder) SendIndexTemplate(ctx context.Context, action models.MessageAction, data models.EventTemplate) error {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling data into JSON", logging.ErrKey, err)
		return err
	}

	tags := m.setIndexerTags(data.Tags()...)

	return m.sendIndexerMessage(ctx, models.IndexEventTemplateSubject, action, dataBytes, tags)
}

// SendDeleteIndexTemplate sends the message to the NATS server for the event template index deletion.
func (m *MessageBuilder) SendDeleteIndexTemplate(ctx context.Context, data string) error {
	return m.sendIndexerMessage(ctx, models.IndexEventTemplateSubject, models.ActionDeleted, []byte(data), nil)
}

// SendIndexException sends the message to the NATS server for the occurrence exception indexing.
func (m *MessageBuilder) SendIndexException(ctx context.Context, action models.MessageAction, data models.OccurrenceException) error {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling data into JSON", logging.ErrKey, err)
		return err
	}

	tags := m.setIndexerTags(data.Tags()...)

	return m.sendIndexerMessage(ctx, models.IndexOccurrenceExceptionSubject, action, dataBytes, tags)
}

// SendDeleteIndexException sends the message to the NATS server for the occurrence exception index deletion.
func (m *MessageBuilder) SendDeleteIndexException(ctx context.Context, data string) error {
	return m.sendIndexerMessage(ctx, models.IndexOccurrenceExceptionSubject, models.ActionDeleted, []byte(data), nil)
}

// SendTemplateDeleted sends a message about a template being deleted to trigger exception cleanup.
func (m *MessageBuilder) SendTemplateDeleted(ctx context.Context, data models.TemplateDeletedMessage) error {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling data into JSON", logging.ErrKey, err)
		return err
	}

	return m.sendMessage(ctx, models.TemplateDeletedSubject, dataBytes)
}

// SendTemplateUpdated sends a message about a template being updated so downstream
// consumers can react, e.g. invalidating exceptions when the recurrence changed.
func (m *MessageBuilder) SendTemplateUpdated(ctx context.Context, data models.TemplateUpdatedMessage) error {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling data into JSON", logging.ErrKey, err)
		return err
	}

	return m.sendMessage(ctx, models.TemplateUpdatedSubject, dataBytes)
}
