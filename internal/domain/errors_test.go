// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "ErrTemplateNotFound",
			err:      ErrTemplateNotFound,
			expected: "event template not found",
		},
		{
			name:     "ErrExceptionNotFound",
			err:      ErrExceptionNotFound,
			expected: "occurrence exception not found",
		},
		{
			name:     "ErrInternal",
			err:      ErrInternal,
			expected: "internal error",
		},
		{
			name:     "ErrRevisionMismatch",
			err:      ErrRevisionMismatch,
			expected: "revision mismatch",
		},
		{
			name:     "ErrUnmarshal",
			err:      ErrUnmarshal,
			expected: "unmarshal error",
		},
		{
			name:     "ErrServiceUnavailable",
			err:      ErrServiceUnavailable,
			expected: "service unavailable",
		},
		{
			name:     "ErrValidationFailed",
			err:      ErrValidationFailed,
			expected: "validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("expected error message %q, got %q", tt.expected, tt.err.Error())
			}
		})
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	errorVars := []error{
		ErrTemplateNotFound,
		ErrExceptionNotFound,
		ErrInternal,
		ErrRevisionMismatch,
		ErrUnmarshal,
		ErrServiceUnavailable,
		ErrValidationFailed,
	}

	for i, err1 := range errorVars {
		for j, err2 := range errorVars {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("errors should be distinct: %v and %v are considered equal", err1, err2)
			}
		}
	}
}

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{
			name:     "validation error",
			err:      NewValidationError("bad input"),
			expected: ErrorTypeValidation,
		},
		{
			name:     "not found error",
			err:      ErrTemplateNotFound,
			expected: ErrorTypeNotFound,
		},
		{
			name:     "conflict error",
			err:      ErrRevisionMismatch,
			expected: ErrorTypeConflict,
		},
		{
			name:     "unavailable error",
			err:      ErrServiceUnavailable,
			expected: ErrorTypeUnavailable,
		},
		{
			name:     "wrapped domain error",
			err:      fmt.Errorf("saving template: %w", ErrRevisionMismatch),
			expected: ErrorTypeConflict,
		},
		{
			name:     "plain error falls back to internal",
			err:      errors.New("boom"),
			expected: ErrorTypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorType(tt.err); got != tt.expected {
				t.Errorf("expected error type %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewUnavailableError("NATS connection failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}

	expected := "NATS connection failed: connection refused"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestDomainErrorMessageWithoutCause(t *testing.T) {
	err := NewValidationError("recurrence pattern is invalid")
	if err.Error() != "recurrence pattern is invalid" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
