package auth

import (
	"context"
	"testing"
	"time"

	"github.com/auctionhouse/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 168 * time.Hour,
		Issuer:                 "auctionhouse-test",
		MaxRefreshCount:        2,
	})
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(GenerateTokenInput{
		UserID: userID,
		Name:   "Asha",
		Role:   "user",
	})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "Asha", claims.Name)
	assert.Equal(t, "user", claims.Role)
	assert.False(t, claims.IsAdmin())

	parsed, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestTokenTypeMismatch(t *testing.T) {
	svc := newTestService()
	pair, err := svc.GenerateTokenPair(GenerateTokenInput{UserID: uuid.New(), Name: "x", Role: "user"})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)

	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestValidateGarbageToken(t *testing.T) {
	svc := newTestService()
	_, err := svc.ValidateAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key",
		AccessTokenExpiration:  -time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "auctionhouse-test",
		MaxRefreshCount:        2,
	})
	pair, err := svc.GenerateTokenPair(GenerateTokenInput{UserID: uuid.New(), Name: "x", Role: "user"})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestRefreshTokenPair(t *testing.T) {
	svc := newTestService()
	pair, err := svc.GenerateTokenPair(GenerateTokenInput{UserID: uuid.New(), Name: "Asha", Role: "admin"})
	require.NoError(t, err)

	t.Run("rotates tokens and preserves role", func(t *testing.T) {
		newPair, err := svc.RefreshTokenPair(pair.RefreshToken, "Asha")
		require.NoError(t, err)
		assert.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)

		claims, err := svc.ValidateAccessToken(newPair.AccessToken)
		require.NoError(t, err)
		assert.True(t, claims.IsAdmin())
	})

	t.Run("enforces max refresh count", func(t *testing.T) {
		current := pair.RefreshToken
		for i := 0; i < 2; i++ {
			next, err := svc.RefreshTokenPair(current, "Asha")
			require.NoError(t, err)
			current = next.RefreshToken
		}
		_, err := svc.RefreshTokenPair(current, "Asha")
		assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
	})
}

func TestInMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	bl := NewInMemoryTokenBlacklist()

	t.Run("jti blacklisting", func(t *testing.T) {
		require.NoError(t, bl.AddToBlacklist(ctx, "jti-1", time.Minute))

		blacklisted, err := bl.IsBlacklisted(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, blacklisted)

		blacklisted, err = bl.IsBlacklisted(ctx, "jti-other")
		require.NoError(t, err)
		assert.False(t, blacklisted)
	})

	t.Run("user-wide invalidation", func(t *testing.T) {
		issuedBefore := time.Now().Add(-time.Second)
		require.NoError(t, bl.AddUserTokensToBlacklist(ctx, "user-1", time.Hour))

		invalid, err := bl.IsUserTokenInvalidated(ctx, "user-1", issuedBefore)
		require.NoError(t, err)
		assert.True(t, invalid)

		invalid, err = bl.IsUserTokenInvalidated(ctx, "user-1", time.Now().Add(time.Second))
		require.NoError(t, err)
		assert.False(t, invalid)

		invalid, err = bl.IsUserTokenInvalidated(ctx, "user-untouched", issuedBefore)
		require.NoError(t, err)
		assert.False(t, invalid)
	})
}
