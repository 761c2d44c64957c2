package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/exobase-inc/exo-api/internal/domain"
)

const issuer = "exo-api"

// Scopes carried by platform tokens.
const (
	ScopeDeploymentUpdate = "deployment::update"
	ScopeLogWrite         = "log::write"
)

// UserClaims are the claims carried by end-user session tokens.
type UserClaims struct {
	UserID   domain.ID `json:"sub"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	jwt.RegisteredClaims
}

// PlatformClaims are the claims carried by machine tokens handed to
// the builder. They are scoped to one platform and a fixed set of
// operations.
type PlatformClaims struct {
	WorkspaceID domain.ID `json:"workspace_id"`
	PlatformID  domain.ID `json:"platform_id"`
	Scopes      []string  `json:"scopes"`
	jwt.RegisteredClaims
}

// HasScope reports whether the token grants the given scope.
func (c *PlatformClaims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// TokenManager issues and verifies the two token kinds the API
// accepts: user session tokens and platform-scoped machine tokens.
type TokenManager struct {
	secret           []byte
	userTokenTTL     time.Duration
	platformTokenTTL time.Duration
}

// NewTokenManager creates a token manager.
func NewTokenManager(secret string, userTTL, platformTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:           []byte(secret),
		userTokenTTL:     userTTL,
		platformTokenTTL: platformTTL,
	}
}

// IssueUserToken generates a session token for a user.
func (m *TokenManager) IssueUserToken(userID domain.ID, email, username string) (string, error) {
	now := time.Now()
	claims := UserClaims{
		UserID:   userID,
		Email:    email,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.userTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// IssuePlatformToken generates a machine token scoped to one platform.
// The builder uses it to report deployment progress back to the API.
func (m *TokenManager) IssuePlatformToken(workspaceID, platformID domain.ID, scopes []string) (string, error) {
	now := time.Now()
	claims := PlatformClaims{
		WorkspaceID: workspaceID,
		PlatformID:  platformID,
		Scopes:      scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(platformID),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.platformTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// VerifyUserToken validates a session token and returns its claims.
func (m *TokenManager) VerifyUserToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, m.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// VerifyPlatformToken validates a machine token and returns its
// claims. Scope checks are the caller's job.
func (m *TokenManager) VerifyPlatformToken(tokenString string) (*PlatformClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &PlatformClaims{}, m.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*PlatformClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

func (m *TokenManager) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return m.secret, nil
}
