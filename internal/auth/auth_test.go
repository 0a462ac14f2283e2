package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService("test-secret-key-at-least-32-chars-long", 15*time.Minute, 7*24*time.Hour)
}

// ============================================
// JWT Tests
// ============================================

func TestJWTService_IssueAndValidate(t *testing.T) {
	svc := newTestJWTService()

	pair, err := svc.IssueTokens("user-123", "avery@example.com", "customer")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "avery@example.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)

	userID, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestJWTService_ValidateAccessToken_Garbage(t *testing.T) {
	svc := newTestJWTService()

	_, err := svc.ValidateAccessToken("not-a-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateAccessToken_WrongSecret(t *testing.T) {
	svc := newTestJWTService()
	other := NewJWTService("another-secret-key-also-32-chars-xx", 15*time.Minute, time.Hour)

	pair, err := svc.IssueTokens("user-123", "avery@example.com", "customer")
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateAccessToken_Expired(t *testing.T) {
	svc := NewJWTService("test-secret-key-at-least-32-chars-long", -time.Minute, time.Hour)

	pair, err := svc.IssueTokens("user-123", "avery@example.com", "customer")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_RefreshTokenRejectedAsAccess(t *testing.T) {
	svc := newTestJWTService()

	pair, err := svc.IssueTokens("user-123", "avery@example.com", "customer")
	require.NoError(t, err)

	// A refresh token has no user claims, so UserID comes back empty
	claims, err := svc.ValidateAccessToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Empty(t, claims.UserID)
	assert.Equal(t, "user-123", claims.Subject)
}

// ============================================
// Password Tests
// ============================================

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.True(t, CheckPassword("correct horse battery", hash))
	assert.False(t, CheckPassword("wrong password", hash))
}

func TestHashPassword_TooShort(t *testing.T) {
	_, err := HashPassword("short")

	assert.ErrorIs(t, err, ErrPasswordTooShort)
}
