package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/maeshaii/backend-wny/internal/models"
)

var ErrNoSession = errors.New("not signed in")

// Session is the client-side identity shared by every view. It is the only
// place tokens and the signed-in user live.
type Session struct {
	mu           sync.RWMutex
	user         *models.UserSummary
	accessToken  string
	refreshToken string
	expiresAt    time.Time

	onInvalidate []func()
}

func NewSession() *Session {
	return &Session{}
}

// Start records a successful login.
func (s *Session) Start(resp *models.LoginResponse) error {
	if resp == nil || !resp.Success || resp.User == nil || resp.Access == "" {
		return ErrNoSession
	}
	user := *resp.User

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	s.accessToken = resp.Access
	s.refreshToken = resp.Refresh
	if resp.ExpiresAt != nil {
		s.expiresAt = *resp.ExpiresAt
	} else {
		s.expiresAt = time.Time{}
	}
	return nil
}

// SetTokens swaps in a refreshed pair without touching the user.
func (s *Session) SetTokens(access, refresh string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	s.accessToken = access
	if refresh != "" {
		s.refreshToken = refresh
	}
	s.expiresAt = expiresAt
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.accessToken != ""
}

// User returns a copy of the signed-in user.
func (s *Session) User() (models.UserSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.UserSummary{}, false
	}
	return *s.user, true
}

func (s *Session) UserID() uint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return 0
	}
	return s.user.ID
}

func (s *Session) Role() models.UserRole {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Expired reports whether the access token is past its expiry. A session
// without a known expiry never reports expired.
func (s *Session) Expired(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.expiresAt.IsZero() && !now.Before(s.expiresAt)
}

// UpdateUser patches the cached user after a profile change.
func (s *Session) UpdateUser(fn func(u *models.UserSummary)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != nil {
		fn(s.user)
	}
}

// OnInvalidate registers a hook run after Invalidate clears the session.
func (s *Session) OnInvalidate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onInvalidate = append(s.onInvalidate, fn)
}

// Invalidate clears identity and tokens. Hooks run outside the lock.
func (s *Session) Invalidate() {
	s.mu.Lock()
	wasActive := s.user != nil
	s.user = nil
	s.accessToken = ""
	s.refreshToken = ""
	s.expiresAt = time.Time{}
	hooks := append([]func(){}, s.onInvalidate...)
	s.mu.Unlock()

	if !wasActive {
		return
	}
	for _, fn := range hooks {
		fn()
	}
}
