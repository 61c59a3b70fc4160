package auth

import (
	"context"
	"testing"
	"time"

	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	return &models.User{
		ID:          12,
		CTUID:       "1337565",
		AccountType: &models.AccountType{User: true},
	}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour, 24*time.Hour)

	pair, err := m.Issue(testUser())
	require.NoError(t, err)

	claims, err := m.Parse(pair.Access, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(12), claims.UserID)
	assert.Equal(t, "1337565", claims.CTUID)
	assert.Equal(t, models.RoleAlumni, claims.Role)
	assert.NotEmpty(t, claims.ID)

	refresh, err := m.Parse(pair.Refresh, RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, refresh.ID)
	assert.True(t, pair.RefreshExpiresAt.After(pair.AccessExpiresAt))
}

func TestTokenManager_RejectsWrongKind(t *testing.T) {
	m := NewTokenManager("secret", time.Hour, time.Hour)
	pair, err := m.Issue(testUser())
	require.NoError(t, err)

	_, err = m.Parse(pair.Refresh, AccessToken)
	assert.ErrorIs(t, err, ErrWrongTokenKind)
}

func TestTokenManager_RejectsOtherSecret(t *testing.T) {
	pair, err := NewTokenManager("one", time.Hour, time.Hour).Issue(testUser())
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour, time.Hour).Parse(pair.Access, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute, time.Hour)
	issuedAt := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issuedAt }
	pair, err := m.Issue(testUser())
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(pair.Access, AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestMemoryRevoker(t *testing.T) {
	r := NewMemoryRevoker()
	ctx := context.Background()

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Hour))

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = r.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}
