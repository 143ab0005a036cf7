// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-event-series-service/internal/domain"
)

// NATSMessage wraps a NATS message to implement [domain.Message].
type NATSMessage struct {
	msg *nats.Msg
}

// NewNATSMessage creates a new NATSMessage from a raw NATS message.
func NewNATSMessage(msg *nats.Msg) *NATSMessage {
	return &NATSMessage{msg: msg}
}

// Subject returns the subject the message was received on.
func (m *NATSMessage) Subject() string {
	return m.msg.Subject
}

// Data returns the message payload.
func (m *NATSMessage) Data() []byte {
	return m.msg.Data
}

// Respond replies to the message's reply subject.
func (m *NATSMessage) Respond(data []byte) error {
	return m.msg.Respond(data)
}

// HasReply reports whether the sender expects a response.
func (m *NATSMessage) HasReply() bool {
	return m.msg.Reply != ""
}

// Compile-time interface check
var _ domain.Message = (*NATSMessage)(nil)
