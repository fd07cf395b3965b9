package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taskfolio/taskfolio-api/internal/api/shared"
	"github.com/taskfolio/taskfolio-api/internal/domain"
	"github.com/taskfolio/taskfolio-api/internal/service/auth"
	"github.com/taskfolio/taskfolio-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"account deactivated", domain.ErrAccountDeactivated, http.StatusUnauthorized},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"generic duplicate", store.ErrDuplicate, http.StatusBadRequest},
		{"validation", domain.ErrValidation, http.StatusBadRequest},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("%w: title is required", domain.ErrValidation), http.StatusBadRequest},
		{"unknown error", errors.New("disk on fire"), http.StatusInternalServerError},
		{"wrapped task not found", fmt.Errorf("query row: %w", store.ErrTaskNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, "an unexpected error occurred"},
		{"expired token", auth.ErrExpiredToken, "expired token"},
		{"invalid token", auth.ErrInvalidToken, "invalid token"},
		{"invalid credentials", auth.ErrInvalidCredentials, "invalid credentials"},
		{"account deactivated", domain.ErrAccountDeactivated, "account deactivated"},
		{"task not found", store.ErrTaskNotFound, "task not found"},
		{"email exists", store.ErrEmailExists, "email already registered"},
		{"generic duplicate", store.ErrDuplicate, "duplicate data"},
		{
			"validation keeps field detail",
			fmt.Errorf("%w: title is required, priority must be between 1 and 5", domain.ErrValidation),
			"title is required, priority must be between 1 and 5",
		},
		{"bare validation sentinel", domain.ErrValidation, "validation failed"},
		{"unknown error hides detail", errors.New("pq: connection refused to 10.0.0.5"), "an unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	t.Run("flattens multiple field errors into one message", func(t *testing.T) {
		err := shared.Validate.Struct(RegisterRequest{})
		msg := SanitizeValidationError(err)
		assert.Equal(t, "name is required, email is required, password is required", msg)
	})

	t.Run("reports tag-specific problems", func(t *testing.T) {
		err := shared.Validate.Struct(LoginRequest{Email: "a@example.com", Password: ""})
		msg := SanitizeValidationError(err)
		assert.Equal(t, "password is required", msg)
	})

	t.Run("non-validator error falls back to generic message", func(t *testing.T) {
		assert.Equal(t, "validation failed", SanitizeValidationError(errors.New("boom")))
	})
}
