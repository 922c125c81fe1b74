package auth

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/studytrack-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            testSecret,
		TokenLifetime:        time.Hour,
		RefreshTokenLifetime: 7 * 24 * time.Hour,
		BCryptCost:           4,
	}
}

// fixedClock returns a time function and a setter to move it.
func fixedClock(start time.Time) (func() time.Time, func(time.Time)) {
	current := start
	return func() time.Time { return current }, func(t time.Time) { current = t }
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	short := testAuthConfig()
	short.JWTSecret = "too-short"
	_, err = NewJWTService(short)
	assert.Error(t, err)

	zero := testAuthConfig()
	zero.TokenLifetime = 0
	_, err = NewJWTService(zero)
	assert.Error(t, err)
}

func TestAccessToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	start := time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC)
	clock, setClock := fixedClock(start)

	svc, err := newHMACJWTService(testAuthConfig(), clock)
	require.NoError(t, err)

	token, err := svc.GenerateToken(ctx, 42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, tokenTypeAccess, claims.TokenType)
	assert.Equal(t, start.Add(time.Hour), claims.ExpiresAt.UTC())
	assert.NotEmpty(t, claims.ID)

	// inside the clock skew window
	setClock(start.Add(time.Hour + time.Minute))
	_, err = svc.ValidateToken(ctx, token)
	require.NoError(t, err)

	setClock(start.Add(2 * time.Hour))
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_Rejections(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, err := newHMACJWTService(testAuthConfig(), time.Now)
	require.NoError(t, err)

	other := testAuthConfig()
	other.JWTSecret = "another-secret-that-is-long-enough-too"
	otherSvc, err := newHMACJWTService(other, time.Now)
	require.NoError(t, err)

	forged, err := otherSvc.GenerateToken(ctx, 1)
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(ctx, 1)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"malformed", "not-a-token", ErrInvalidToken},
		{"empty", "", ErrInvalidToken},
		{"wrong signature", forged, ErrInvalidToken},
		{"refresh used as access", refresh, ErrWrongTokenType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(ctx, tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	start := time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC)
	clock, setClock := fixedClock(start)

	svc, err := newHMACJWTService(testAuthConfig(), clock)
	require.NoError(t, err)

	refresh, err := svc.GenerateRefreshToken(ctx, 7)
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(ctx, refresh)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, tokenTypeRefresh, claims.TokenType)

	access, err := svc.GenerateToken(ctx, 7)
	require.NoError(t, err)
	_, err = svc.ValidateRefreshToken(ctx, access)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = svc.ValidateRefreshToken(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	setClock(start.Add(8 * 24 * time.Hour))
	_, err = svc.ValidateRefreshToken(ctx, refresh)
	assert.ErrorIs(t, err, ErrExpiredRefreshToken)
}
