package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginResponse() *models.LoginResponse {
	return &models.LoginResponse{
		Success: true,
		User:    &models.UserSummary{ID: 7, Name: "Ana Cruz", Role: models.RoleAlumni},
		Access:  "access-token",
		Refresh: "refresh-token",
	}
}

func TestSession_StartAndInvalidate(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Start(loginResponse()))

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, uint(7), s.UserID())
	assert.Equal(t, "access-token", s.AccessToken())

	calls := 0
	s.OnInvalidate(func() { calls++ })
	s.Invalidate()
	s.Invalidate()

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.AccessToken())
	assert.Empty(t, s.RefreshToken())
	_, ok := s.User()
	assert.False(t, ok)
	assert.Equal(t, 1, calls)
}

func TestSession_StartRejectsFailedLogin(t *testing.T) {
	s := NewSession()
	assert.ErrorIs(t, s.Start(&models.LoginResponse{Success: false, Message: "Invalid CTU ID or birthdate"}), ErrNoSession)
	assert.False(t, s.IsAuthenticated())
}

func TestSession_SetTokensKeepsRefreshWhenEmpty(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Start(loginResponse()))

	exp := time.Now().Add(time.Minute)
	s.SetTokens("new-access", "", exp)

	assert.Equal(t, "new-access", s.AccessToken())
	assert.Equal(t, "refresh-token", s.RefreshToken())
	assert.False(t, s.Expired(time.Now()))
	assert.True(t, s.Expired(exp))
}

func TestSession_ConcurrentAccess(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Start(loginResponse()))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.AccessToken()
			_, _ = s.User()
		}()
		go func() {
			defer wg.Done()
			s.UpdateUser(func(u *models.UserSummary) { u.ProfileBio = "bio" })
		}()
	}
	wg.Wait()

	u, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, "bio", u.ProfileBio)
}
