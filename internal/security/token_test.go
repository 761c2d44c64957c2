package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exobase-inc/exo-api/internal/domain"
)

func newTestManager() *TokenManager {
	return NewTokenManager("test-secret", time.Hour, time.Hour)
}

func TestUserToken_RoundTrip(t *testing.T) {
	m := newTestManager()
	userID := domain.NewID(domain.KindUser)

	token, err := m.IssueUserToken(userID, "dev@example.com", "dev")
	require.NoError(t, err)

	claims, err := m.VerifyUserToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "dev@example.com", claims.Email)
	assert.Equal(t, "dev", claims.Username)
}

func TestUserToken_WrongSecretFails(t *testing.T) {
	token, err := newTestManager().IssueUserToken(domain.NewID(domain.KindUser), "dev@example.com", "dev")
	require.NoError(t, err)

	other := NewTokenManager("other-secret", time.Hour, time.Hour)
	_, err = other.VerifyUserToken(token)
	assert.Error(t, err)
}

func TestUserToken_ExpiredFails(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute, time.Hour)

	token, err := m.IssueUserToken(domain.NewID(domain.KindUser), "dev@example.com", "dev")
	require.NoError(t, err)

	_, err = m.VerifyUserToken(token)
	assert.Error(t, err)
}

func TestPlatformToken_RoundTrip(t *testing.T) {
	m := newTestManager()
	workspaceID := domain.NewID(domain.KindWorkspace)
	platformID := domain.NewID(domain.KindPlatform)

	token, err := m.IssuePlatformToken(workspaceID, platformID, []string{ScopeDeploymentUpdate})
	require.NoError(t, err)

	claims, err := m.VerifyPlatformToken(token)
	require.NoError(t, err)
	assert.Equal(t, workspaceID, claims.WorkspaceID)
	assert.Equal(t, platformID, claims.PlatformID)
	assert.True(t, claims.HasScope(ScopeDeploymentUpdate))
	assert.False(t, claims.HasScope(ScopeLogWrite))
}

func TestPlatformToken_GarbageFails(t *testing.T) {
	_, err := newTestManager().VerifyPlatformToken("not.a.token")
	assert.Error(t, err)
}
