package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskfolio/taskfolio-api/internal/config"
)

const testJWTSecret = "test-secret-that-is-at-least-32-chars"

func newTestJWTService(t *testing.T, timeFunc func() time.Time) *hmacJWTService {
	t.Helper()

	svc, err := NewJWTService(config.AuthConfig{
		JWTSecret:            testJWTSecret,
		TokenLifetimeMinutes: 7 * 24 * 60,
	})
	require.NoError(t, err)

	impl, ok := svc.(*hmacJWTService)
	require.True(t, ok)
	if timeFunc != nil {
		impl.timeFunc = timeFunc
	}
	return impl
}

func TestNewJWTServiceRejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{
		JWTSecret:            "too-short",
		TokenLifetimeMinutes: 60,
	})
	assert.Error(t, err)
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t, nil)
	ctx := context.Background()

	userID := uuid.New()
	email := "alice@example.com"

	token, err := svc.GenerateToken(ctx, userID, email)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, email, claims.Email)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)

	// Expiry lands roughly seven days out.
	lifetime := time.Until(claims.ExpiresAt)
	assert.InDelta(t, (7 * 24 * time.Hour).Seconds(), lifetime.Seconds(), 60)
}

func TestValidateTokenTamperedSignature(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t, nil)
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, uuid.New(), "bob@example.com")
	require.NoError(t, err)

	// Flip a byte in the signature segment.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = svc.ValidateToken(ctx, tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	issued := time.Now().Add(-8 * 24 * time.Hour)

	// Issue a token eight days in the past so its seven-day lifetime has
	// already elapsed.
	issuer := newTestJWTService(t, func() time.Time { return issued })
	token, err := issuer.GenerateToken(ctx, uuid.New(), "carol@example.com")
	require.NoError(t, err)

	verifier := newTestJWTService(t, nil)
	_, err = verifier.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenMalformed(t *testing.T) {
	t.Parallel()

	svc := newTestJWTService(t, nil)
	ctx := context.Background()

	for _, token := range []string{"", "not-a-jwt", "a.b", "a.b.c"} {
		_, err := svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestValidateTokenWrongKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	issuer := newTestJWTService(t, nil)
	token, err := issuer.GenerateToken(ctx, uuid.New(), "dave@example.com")
	require.NoError(t, err)

	other, err := NewJWTService(config.AuthConfig{
		JWTSecret:            "a-completely-different-32-char-key!!",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	_, err = other.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
