package services

import (
	"context"
	"testing"
	"time"

	"github.com/maeshaii/backend-wny/internal/auth"
	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthFixture() (*MockRepository, *auth.TokenManager, *auth.MemoryRevoker, AuthService) {
	repo := NewMockRepository()
	tokens := auth.NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)
	revoker := auth.NewMemoryRevoker()
	return repo, tokens, revoker, NewAuthService(repo, tokens, revoker, testLogger(), validator.New())
}

func TestParseLoginBirthdate(t *testing.T) {
	want := time.Date(2000, 1, 15, 0, 0, 0, 0, time.UTC)

	got, err := ParseLoginBirthdate("01/15/2000")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = ParseLoginBirthdate(" 2000-01-15 ")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = ParseLoginBirthdate("15.01.2000")
	assert.ErrorIs(t, err, ErrInvalidBirthdateFormat)
}

func TestAuthService_Login(t *testing.T) {
	repo, tokens, _, service := newAuthFixture()
	birth := time.Date(2000, 1, 15, 0, 0, 0, 0, time.UTC)
	user := &models.User{ID: 7, CTUID: "1234567", FirstName: "Juan", LastName: "Dela Cruz", Password: "2000-01-15", Birthdate: &birth}
	repo.users.On("GetByCTUID", mock.Anything, "1234567").Return(user, nil)

	resp, err := service.Login(context.Background(), &models.LoginRequest{CTUID: " 1234567 ", Birthdate: "01/15/2000"})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Juan Dela Cruz", resp.User.Name)
	assert.Equal(t, models.RoleAlumni, resp.User.Role)
	require.NotEmpty(t, resp.Access)

	claims, err := tokens.Parse(resp.Access, auth.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
}

func TestAuthService_LoginFailures(t *testing.T) {
	repo, _, _, service := newAuthFixture()
	ctx := context.Background()
	user := &models.User{ID: 7, CTUID: "1234567", Password: "2000-01-15"}
	repo.users.On("GetByCTUID", mock.Anything, "1234567").Return(user, nil)
	repo.users.On("GetByCTUID", mock.Anything, "0000000").Return(nil, gorm.ErrRecordNotFound)

	_, err := service.Login(ctx, &models.LoginRequest{CTUID: "1234567"})
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = service.Login(ctx, &models.LoginRequest{CTUID: "1234567", Birthdate: "Jan 15"})
	assert.ErrorIs(t, err, ErrInvalidBirthdateFormat)

	_, err = service.Login(ctx, &models.LoginRequest{CTUID: "1234567", Birthdate: "2000-01-16"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(ctx, &models.LoginRequest{CTUID: "0000000", Birthdate: "2000-01-15"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.True(t, IsUnauthorized(err))
}

func TestAuthService_LoginFallsBackToBirthdate(t *testing.T) {
	repo, _, _, service := newAuthFixture()
	birth := time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)
	repo.users.On("GetByCTUID", mock.Anything, "1111111").Return(&models.User{ID: 3, CTUID: "1111111", Birthdate: &birth}, nil)

	resp, err := service.Login(context.Background(), &models.LoginRequest{CTUID: "1111111", Birthdate: "12/31/1999"})

	require.NoError(t, err)
	assert.Equal(t, uint(3), resp.User.ID)
}

func TestAuthService_RefreshRotatesToken(t *testing.T) {
	repo, tokens, revoker, service := newAuthFixture()
	ctx := context.Background()
	user := &models.User{ID: 7, CTUID: "1234567", FirstName: "Juan"}
	repo.users.On("GetByID", mock.Anything, uint(7)).Return(user, nil)

	pair, err := tokens.Issue(user)
	require.NoError(t, err)

	resp, err := service.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Access)

	old, err := tokens.Parse(pair.Refresh, auth.RefreshToken)
	require.NoError(t, err)
	revoked, err := revoker.IsRevoked(ctx, old.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = service.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_Logout(t *testing.T) {
	_, tokens, revoker, service := newAuthFixture()
	ctx := context.Background()
	user := &models.User{ID: 7, CTUID: "1234567"}

	pair, err := tokens.Issue(user)
	require.NoError(t, err)
	access, err := tokens.Parse(pair.Access, auth.AccessToken)
	require.NoError(t, err)

	require.NoError(t, service.Logout(ctx, access, pair.Refresh))

	revoked, _ := revoker.IsRevoked(ctx, access.ID)
	assert.True(t, revoked)
	refresh, err := tokens.Parse(pair.Refresh, auth.RefreshToken)
	require.NoError(t, err)
	revoked, _ = revoker.IsRevoked(ctx, refresh.ID)
	assert.True(t, revoked)

	assert.ErrorIs(t, service.Logout(ctx, nil, ""), ErrUnauthorized)
}
