// Copyright 2025 AxonFlow
// SPDX-License-Identifier: BUSL-1.1

package base

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFoundError_Message(t *testing.T) {
	err := &NotFoundError{Namespace: "reports", Known: []string{"app_db", "billing"}}
	assert.Contains(t, err.Error(), `"reports"`)
	assert.Contains(t, err.Error(), "app_db, billing")

	empty := &NotFoundError{Namespace: "reports"}
	assert.Contains(t, empty.Error(), "no namespaces registered")
}

func TestAlreadyExistsError_Message(t *testing.T) {
	err := &AlreadyExistsError{Namespace: "billing"}
	assert.Contains(t, err.Error(), `"billing"`)
	assert.Contains(t, err.Error(), "replace")
}

func TestConfigurationError_ListsAllMissingFields(t *testing.T) {
	err := &ConfigurationError{
		Message:       "required connection fields are not set",
		MissingFields: []string{"POSTGRES_HOST", "POSTGRES_PASSWORD"},
	}
	assert.Contains(t, err.Error(), "POSTGRES_HOST, POSTGRES_PASSWORD")
}

func TestConnectionError_UnwrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewConnectionError("app_db", "InitAsync", "pre-ping failed", cause)

	assert.Contains(t, err.Error(), `"app_db"`)
	assert.Contains(t, err.Error(), "InitAsync")
	assert.Contains(t, err.Error(), "connection refused")
	require.ErrorIs(t, err, cause)

	bare := NewConnectionError("app_db", "InitAsync", "pre-ping failed", nil)
	assert.NotContains(t, bare.Error(), "cause:")
}

func TestIsManagerError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"not found", &NotFoundError{Namespace: "x"}, true},
		{"already exists", &AlreadyExistsError{Namespace: "x"}, true},
		{"configuration", &ConfigurationError{Message: "bad"}, true},
		{"connection", NewConnectionError("x", "op", "msg", nil), true},
		{"wrapped connection", fmt.Errorf("outer: %w", NewConnectionError("x", "op", "msg", nil)), true},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsManagerError(tt.err))
		})
	}
}
