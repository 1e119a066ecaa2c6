package auth

import (
	"testing"
	"time"

	jwtstd "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahiraziiz/primetrade.ai/internal/domain/models"
)

func testUser() *models.User {
	return &models.User{
		ID:       "8d7f2d1c-5f6a-4b3e-9c2d-1a0b9c8d7e6f",
		Username: "alice",
		Role:     models.RoleUser,
	}
}

func TestGeneratePairRoundTrip(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	user := testUser()

	access, refresh, err := tm.GeneratePair(user)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	claims, err := tm.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, user.Role, claims.Role)
	assert.Equal(t, SubjectAccess, claims.Subject)

	claims, err = tm.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Empty(t, claims.Username)
	assert.Equal(t, SubjectRefresh, claims.Subject)
}

func TestValidateRejectsWrongKind(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	user := testUser()

	access, refresh, err := tm.GeneratePair(user)
	require.NoError(t, err)

	_, err = tm.ValidateAccessToken(refresh)
	assert.Error(t, err)

	_, err = tm.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	other := NewTokenManager("other-access", "other-refresh", time.Hour, 24*time.Hour)

	access, err := other.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = tm.ValidateAccessToken(access)
	assert.Error(t, err)
}

func TestValidateAccessToken(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{
			name:  "empty string",
			token: func(t *testing.T) string { return "" },
		},
		{
			name:  "malformed token",
			token: func(t *testing.T) string { return "not.a.jwt" },
		},
		{
			name: "expired token",
			token: func(t *testing.T) string {
				// NewTokenManager replaces non-positive expiries with the
				// defaults, so sign directly with a negative one
				token, err := tm.sign(tm.accessSecret, -time.Minute, &Claims{
					UserID:           "some-id",
					RegisteredClaims: jwtstd.RegisteredClaims{Subject: SubjectAccess},
				})
				assert.NoError(t, err)
				return token
			},
		},
		{
			name: "missing user id",
			token: func(t *testing.T) string {
				token, err := tm.sign(tm.accessSecret, time.Hour, &Claims{
					RegisteredClaims: jwtstd.RegisteredClaims{Subject: SubjectAccess},
				})
				assert.NoError(t, err)
				return token
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tm.ValidateAccessToken(tt.token(t))
			assert.Error(t, err)
		})
	}
}

func TestEmptySecretRefusesToSign(t *testing.T) {
	tm := NewTokenManager("", "", time.Hour, 24*time.Hour)

	_, err := tm.GenerateAccessToken(testUser())
	assert.Error(t, err)

	_, err = tm.GenerateRefreshToken(testUser())
	assert.Error(t, err)
}

func TestExpiryDefaults(t *testing.T) {
	tm := NewTokenManager("a", "r", 0, 0)
	assert.Equal(t, DefaultAccessTokenExpiry, tm.accessExpiry)
	assert.Equal(t, DefaultRefreshTokenExpiry, tm.refreshExpiry)
}
