// Package auth issues and validates the HS256 access/refresh token pair.
package auth

import (
	"time"

	jwtstd "github.com/golang-jwt/jwt/v5"

	apierrors "github.com/mahiraziiz/primetrade.ai/internal/domain/errors"
	"github.com/mahiraziiz/primetrade.ai/internal/domain/models"
)

const (
	DefaultAccessTokenExpiry  = time.Hour
	DefaultRefreshTokenExpiry = 7 * 24 * time.Hour

	SubjectAccess  = "access"
	SubjectRefresh = "refresh"
)

// Claims is the payload carried by both token kinds; refresh tokens
// only fill UserID.
type Claims struct {
	UserID   string `json:"uid"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	jwtstd.RegisteredClaims
}

// TokenManager signs and verifies the token pair with separate secrets
// so a leaked access secret cannot mint refresh tokens.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewTokenManager(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *TokenManager {
	if accessExpiry <= 0 {
		accessExpiry = DefaultAccessTokenExpiry
	}
	if refreshExpiry <= 0 {
		refreshExpiry = DefaultRefreshTokenExpiry
	}
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (tm *TokenManager) GenerateAccessToken(user *models.User) (string, error) {
	return tm.sign(tm.accessSecret, tm.accessExpiry, &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwtstd.RegisteredClaims{
			Subject: SubjectAccess,
		},
	})
}

func (tm *TokenManager) GenerateRefreshToken(user *models.User) (string, error) {
	return tm.sign(tm.refreshSecret, tm.refreshExpiry, &Claims{
		UserID: user.ID,
		RegisteredClaims: jwtstd.RegisteredClaims{
			Subject: SubjectRefresh,
		},
	})
}

// GeneratePair mints a matching access/refresh pair for the user.
func (tm *TokenManager) GeneratePair(user *models.User) (access, refresh string, err error) {
	access, err = tm.GenerateAccessToken(user)
	if err != nil {
		return "", "", err
	}
	refresh, err = tm.GenerateRefreshToken(user)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (tm *TokenManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	return tm.parse(tm.accessSecret, SubjectAccess, tokenString)
}

func (tm *TokenManager) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return tm.parse(tm.refreshSecret, SubjectRefresh, tokenString)
}

func (tm *TokenManager) sign(secret []byte, expiry time.Duration, claims *Claims) (string, error) {
	if len(secret) == 0 {
		return "", apierrors.ErrInternalServer
	}
	now := time.Now()
	claims.IssuedAt = jwtstd.NewNumericDate(now)
	claims.ExpiresAt = jwtstd.NewNumericDate(now.Add(expiry))

	token := jwtstd.NewWithClaims(jwtstd.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (tm *TokenManager) parse(secret []byte, subject, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwtstd.ParseWithClaims(tokenString, claims, func(t *jwtstd.Token) (any, error) {
		if _, ok := t.Method.(*jwtstd.SigningMethodHMAC); !ok {
			return nil, apierrors.ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apierrors.ErrInvalidToken
	}
	if claims.Subject != subject || claims.UserID == "" {
		return nil, apierrors.ErrInvalidToken
	}
	return claims, nil
}
