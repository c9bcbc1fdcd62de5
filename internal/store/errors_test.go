package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"ErrNotFound", ErrNotFound, true},
		{"ErrTaskNotFound", ErrTaskNotFound, true},
		{"wrapped ErrUserNotFound", fmt.Errorf("failed to find user: %w", ErrUserNotFound), true},
		{"store error wrapping task not found", NewStoreError("task", "get", "missing", ErrTaskNotFound), true},
		{"version conflict", ErrVersionConflict, false},
		{"duplicate title", ErrDuplicateTitle, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"ErrDuplicate", ErrDuplicate, true},
		{"ErrDuplicateTitle", ErrDuplicateTitle, true},
		{"wrapped ErrUsernameExists", fmt.Errorf("create: %w", ErrUsernameExists), true},
		{"not found", ErrTaskNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDuplicateError(tt.err))
		})
	}
}

func TestEntityErrorsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrTaskNotFound, ErrUserNotFound))
	assert.False(t, errors.Is(ErrDuplicateTitle, ErrUsernameExists))
	assert.Equal(t, "entity not found: task", ErrTaskNotFound.Error())
	assert.Equal(t, "entity already exists: task title", ErrDuplicateTitle.Error())
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection reset")

	err := NewStoreError("task", "save", "write failed", cause)
	assert.Equal(t, "save operation on task failed: write failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewStoreError("user", "list", "no rows", nil)
	assert.Equal(t, "list operation on user failed: no rows", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
