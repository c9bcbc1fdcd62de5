package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
		message  string
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized, "Invalid token"},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized, "Token expired"},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound, "Task not found"},
		{
			"wrapped not found",
			fmt.Errorf("get: %w", store.ErrTaskNotFound),
			http.StatusNotFound,
			"Task not found",
		},
		{"version conflict", &service.ConflictError{}, http.StatusConflict, "Conflict detected"},
		{"duplicate title", store.ErrDuplicateTitle, http.StatusConflict, "Task title already exists"},
		{
			"domain validation",
			domain.NewValidationError("title", "cannot be empty"),
			http.StatusBadRequest,
			"Invalid title: cannot be empty",
		},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest, "Request body is required"},
		{
			"identity resolution",
			fmt.Errorf("%w: %v", service.ErrIdentityResolution, store.ErrUserNotFound),
			http.StatusInternalServerError,
			"An unexpected error occurred",
		},
		{"unknown", errors.New("connection reset by peer"), http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapErrorToStatusCode(tt.err))
			assert.Equal(t, tt.message, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestDuplicateTitleIsNotAVersionConflict(t *testing.T) {
	assert.False(t, errors.Is(store.ErrDuplicateTitle, store.ErrVersionConflict))
	assert.NotEqual(t, GetSafeErrorMessage(store.ErrDuplicateTitle), GetSafeErrorMessage(&service.ConflictError{}))
}

func TestGetSafeErrorMessageNil(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}

func TestSanitizeValidationError(t *testing.T) {
	err := shared.ValidateRequest(&UpdateTaskRequest{Title: "x"})
	assert.Equal(t, "Invalid version: required field", SanitizeValidationError(err))
	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("other")))
}
