// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyBuilderEntityKey(t *testing.T) {
	kb := NewKeyBuilder("")

	tests := []struct {
		name       string
		entityType string
		uid        string
		expected   string
	}{
		{
			name:       "template key",
			entityType: KeyPrefixTemplate,
			uid:        "template-123",
			expected:   "template/template-123",
		},
		{
			name:       "exception key",
			entityType: KeyPrefixException,
			uid:        "exception-456",
			expected:   "exception/exception-456",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, kb.EntityKey(tc.entityType, tc.uid))
		})
	}
}

func TestKeyBuilderIndexKey(t *testing.T) {
	kb := NewKeyBuilder("")

	key := kb.IndexKey(KeyPrefixIndexTemplate, "template-123", "exception-456")
	assert.Equal(t, "index/template/template-123/exception-456", key)
}

func TestKeyBuilderWithPrefix(t *testing.T) {
	kb := NewKeyBuilder("v1")

	assert.Equal(t, "v1/template/abc", kb.EntityKey(KeyPrefixTemplate, "abc"))
	assert.Equal(t, "v1/index/date/2025-01-31/abc", kb.IndexKey(KeyPrefixIndexDate, "2025-01-31", "abc"))
}

func TestKeyBuilderEncodeDecodeRoundTrip(t *testing.T) {
	kb := NewKeyBuilder("")

	tests := []struct {
		name string
		key  string
	}{
		{
			name: "entity key",
			key:  "template/template-123",
		},
		{
			name: "index key with date segment",
			key:  "index/date/2025-01-31/exception-456",
		},
		{
			name: "segment with characters outside the NATS key charset",
			key:  "index/template/user@example.org/exception-456",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := kb.EncodeKey(tc.key)
			require.NoError(t, err)
			assert.NotContains(t, encoded, "/")

			decoded, err := kb.DecodeKey(encoded)
			require.NoError(t, err)
			assert.Equal(t, "/"+tc.key, decoded)
		})
	}
}

func TestKeyBuilderEncodeKeyPreservesWildcards(t *testing.T) {
	kb := NewKeyBuilder("")

	encoded, err := kb.EncodeKey("template/>")
	require.NoError(t, err)
	assert.Contains(t, encoded, ">")
}

func TestKeyBuilderDecodeKeyInvalid(t *testing.T) {
	kb := NewKeyBuilder("")

	_, err := kb.DecodeKey("not!base64???")
	assert.Error(t, err)
}
