package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

func newTestService(t *testing.T, secret string, lifetime time.Duration, now time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newHMACJWTService(secret, lifetime, func() time.Time { return now })
	require.NoError(t, err)
	return svc
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60})
	assert.ErrorContains(t, err, "at least 32")

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 0})
	assert.ErrorContains(t, err, "lifetime")

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	lifetime := 60 * time.Minute
	userID := uuid.New()
	svc := newTestService(t, testSecret, lifetime, fixedTime)

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(lifetime).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	lifetime := 60 * time.Minute
	userID := uuid.New()

	sign := func(t *testing.T, claims jwt.Claims, method jwt.SigningMethod, key interface{}) string {
		t.Helper()
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name    string
		setup   func(t *testing.T) (*hmacJWTService, string)
		wantErr error
	}{
		{
			name: "valid token",
			setup: func(t *testing.T) (*hmacJWTService, string) {
				svc := newTestService(t, testSecret, lifetime, fixedTime)
				token, err := svc.GenerateToken(context.Background(), userID)
				require.NoError(t, err)
				return svc, token
			},
		},
		{
			name: "within clock skew after expiry",
			setup: func(t *testing.T) (*hmacJWTService, string) {
				gen := newTestService(t, testSecret, lifetime, fixedTime)
				token, err := gen.GenerateToken(context.Background(), userID)
				require.NoError(t, err)
				return newTestService(t, testSecret, lifetime, fixedTime.Add(lifetime+time.Minute)), token
			},
		},
		{
			name: "expired token",
			setup: func(t *testing.T) (*hmacJWTService, string) {
				gen := newTestService(t, testSecret, lifetime, fixedTime)
				token, err := gen.GenerateToken(context.Background(), userID)
				require.NoError(t, err)
				return newTestService(t, testSecret, lifetime, fixedTime.Add(lifetime+time.Hour)), token
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "not yet valid",
			setup: func(t *testing.T) (*hmacJWTService, string) {
				svc := newTestService(t, testSecret, lifetime, fixedTime)
				token := sign(t, jwtCustomClaims{
					UserID:    userID,
					TokenType: TokenTypeAccess,
					RegisteredClaims: jwt.RegisteredClaims{
						NotBefore: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(2 * time.Hour)),
					},
				}, jwt.SigningMethodHS256, []byte(testSecret))
				return svc, token
			},
			wantErr: ErrTokenNotYetValid,
		},
		{
			name: "invalid signature",
			setup: func(t *testing.T) (*hmacJWTService, string) {
				gen := newTestService(t, testSecret, lifetime, fixedTime)
				token, err := gen.GenerateToken(context.Background(), userID)
				require.NoError(t, err)
				return newTestService(t, wrongSecret, lifetime, fixedTime), token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "malformed token",
			setup: func(t *testing.T) (*hmacJWTService, string) {
				return newTestService(t, testSecret, lifetime, fixedTime), "this.is.not.a.valid.jwt.token"
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "empty token",
			setup: func(t *testing.T) (*hmacJWTService, string) {
				return newTestService(t, testSecret, lifetime, fixedTime), ""
			},
			wantErr: ErrMissingToken,
		},
		{
			name: "wrong signing method",
			setup: func(t *testing.T) (*hmacJWTService, string) {
				token := sign(t, jwtCustomClaims{
					UserID:    userID,
					TokenType: TokenTypeAccess,
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}, jwt.SigningMethodHS512, []byte(testSecret))
				return newTestService(t, testSecret, lifetime, fixedTime), token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "wrong token type",
			setup: func(t *testing.T) (*hmacJWTService, string) {
				token := sign(t, jwtCustomClaims{
					UserID:    userID,
					TokenType: "refresh",
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}, jwt.SigningMethodHS256, []byte(testSecret))
				return newTestService(t, testSecret, lifetime, fixedTime), token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "missing user id",
			setup: func(t *testing.T) (*hmacJWTService, string) {
				token := sign(t, jwtCustomClaims{
					TokenType: TokenTypeAccess,
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}, jwt.SigningMethodHS256, []byte(testSecret))
				return newTestService(t, testSecret, lifetime, fixedTime), token
			},
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, token := tt.setup(t)
			claims, err := svc.ValidateToken(context.Background(), token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}
