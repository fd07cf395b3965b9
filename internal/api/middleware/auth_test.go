package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskfolio/taskfolio-api/internal/api/shared"
	"github.com/taskfolio/taskfolio-api/internal/mocks"
	"github.com/taskfolio/taskfolio-api/internal/service/auth"
)

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	validClaims := &auth.Claims{UserID: userID, Email: "user@example.com"}

	tests := []struct {
		name        string
		header      string
		claims      *auth.Claims
		validateErr error
		wantStatus  int
		wantMessage string
	}{
		{
			name:       "valid token",
			header:     "Bearer good-token",
			claims:     validClaims,
			wantStatus: http.StatusOK,
		},
		{
			name:        "missing header",
			header:      "",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "authorization header required",
		},
		{
			name:        "not a bearer token",
			header:      "Basic dXNlcjpwYXNz",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "invalid authorization format",
		},
		{
			name:        "missing token part",
			header:      "Bearer",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "invalid authorization format",
		},
		{
			name:        "expired token",
			header:      "Bearer expired-token",
			validateErr: auth.ErrExpiredToken,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "expired token",
		},
		{
			name:        "invalid token",
			header:      "Bearer bad-token",
			validateErr: auth.ErrInvalidToken,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "invalid token",
		},
		{
			name:        "wrapped expired token",
			header:      "Bearer expired-token",
			validateErr: fmt.Errorf("validate: %w", auth.ErrExpiredToken),
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "expired token",
		},
		{
			name:        "wrapped invalid token",
			header:      "Bearer bad-token",
			validateErr: fmt.Errorf("validate: %w", auth.ErrInvalidToken),
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "invalid token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jwtService := &mocks.MockJWTService{
				Claims:      tt.claims,
				ValidateErr: tt.validateErr,
			}
			authMiddleware := NewAuthMiddleware(jwtService)

			var gotIdentity shared.Identity
			var identityFound bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotIdentity, identityFound = shared.IdentityFrom(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()
			authMiddleware.Authenticate(next).ServeHTTP(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantStatus == http.StatusOK {
				require.True(t, identityFound)
				assert.Equal(t, userID, gotIdentity.UserID)
				assert.Equal(t, "user@example.com", gotIdentity.Email)
			} else {
				var envelope shared.Envelope
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
				assert.True(t, envelope.Error)
				assert.Equal(t, tt.wantMessage, envelope.Message)
			}
		})
	}
}

func TestAuthenticatePassesTokenThrough(t *testing.T) {
	t.Parallel()

	var gotToken string
	jwtService := &mocks.MockJWTService{
		ValidateTokenFn: func(ctx context.Context, tokenString string) (*auth.Claims, error) {
			gotToken = tokenString
			return &auth.Claims{UserID: uuid.New()}, nil
		},
	}
	authMiddleware := NewAuthMiddleware(jwtService)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer the-raw-token")
	recorder := httptest.NewRecorder()
	authMiddleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "the-raw-token", gotToken)
}
