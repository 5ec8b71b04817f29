package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskman/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func newTestJWTService(t *testing.T, lifetimeMinutes int, now func() time.Time) *hmacJWTService {
	t.Helper()
	svc, err := NewJWTService(config.AuthConfig{
		JWTSecret:            testSecret,
		TokenLifetimeMinutes: lifetimeMinutes,
	})
	require.NoError(t, err)
	impl := svc.(*hmacJWTService)
	impl.timeFunc = now
	return impl
}

func TestNewJWTService_RejectsShortSecret(t *testing.T) {
	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short"})
	assert.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	ctx := context.Background()

	t.Run("with lifetime", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(t, 60, func() time.Time { return fixedTime })

		token, err := svc.GenerateToken(ctx, userID)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, userID.String(), claims.Subject)
		assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
		assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("without lifetime never expires", func(t *testing.T) {
		t.Parallel()
		now := fixedTime
		svc := newTestJWTService(t, 0, func() time.Time { return now })

		token, err := svc.GenerateToken(ctx, userID)
		require.NoError(t, err)

		now = fixedTime.Add(24 * 365 * time.Hour)
		claims, err := svc.ValidateToken(ctx, token)
		require.NoError(t, err)
		assert.True(t, claims.ExpiresAt.IsZero())
	})

	t.Run("tokens are unique", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(t, 0, func() time.Time { return fixedTime })

		first, err := svc.GenerateToken(ctx, userID)
		require.NoError(t, err)
		second, err := svc.GenerateToken(ctx, userID)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	ctx := context.Background()

	signer := newTestJWTService(t, 60, func() time.Time { return fixedTime })
	valid, err := signer.GenerateToken(ctx, userID)
	require.NoError(t, err)

	otherKey := &hmacJWTService{
		signingKey:    []byte("wrong-secret-that-is-long-enough-for-testing"),
		tokenLifetime: time.Hour,
		timeFunc:      func() time.Time { return fixedTime },
	}
	wrongSignature, err := otherKey.GenerateToken(ctx, userID)
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		IssuedAt: jwt.NewNumericDate(fixedTime),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		now     time.Time
		wantErr error
	}{
		{name: "valid", token: valid, now: fixedTime},
		{name: "within clock skew", token: valid, now: fixedTime.Add(61 * time.Minute)},
		{name: "expired", token: valid, now: fixedTime.Add(2 * time.Hour), wantErr: ErrExpiredToken},
		{name: "wrong signature", token: wrongSignature, now: fixedTime, wantErr: ErrInvalidToken},
		{name: "malformed", token: "not-a-token", now: fixedTime, wantErr: ErrInvalidToken},
		{name: "missing uid", token: noUser, now: fixedTime, wantErr: ErrInvalidToken},
		{name: "issued in the future", token: valid, now: fixedTime.Add(-time.Hour), wantErr: ErrTokenNotYetValid},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestJWTService(t, 60, func() time.Time { return tc.now })

			claims, err := svc.ValidateToken(ctx, tc.token)

			if tc.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, userID, claims.UserID)
				return
			}
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
