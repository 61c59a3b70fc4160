package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maeshaii/backend-wny/internal/auth"
	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/repositories"
	"github.com/maeshaii/backend-wny/internal/validator"
)

type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.LoginResponse, error)
	Logout(ctx context.Context, access *auth.Claims, refreshToken string) error
	Me(ctx context.Context, userID uint) (*models.UserSummary, error)
}

// Birthdate layouts accepted as the login password, tried in order
var loginDateLayouts = []string{"01/02/2006", models.DateLayout}

type authService struct {
	repo      repositories.Repository
	tokens    *auth.TokenManager
	revoker   auth.Revoker
	logger    *slog.Logger
	svcLogger *ServiceLogger
	validator *validator.Validator
}

func NewAuthService(repo repositories.Repository, tokens *auth.TokenManager, revoker auth.Revoker, logger *slog.Logger, validator *validator.Validator) AuthService {
	return &authService{
		repo:      repo,
		tokens:    tokens,
		revoker:   revoker,
		logger:    logger,
		svcLogger: NewServiceLogger(logger, LogConfig{Service: "auth", Component: "login"}),
		validator: validator,
	}
}

// ParseLoginBirthdate accepts MM/DD/YYYY or YYYY-MM-DD.
func ParseLoginBirthdate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range loginDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidBirthdateFormat
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	start := time.Now()
	ctuID := strings.TrimSpace(req.CTUID)
	if ctuID == "" || strings.TrimSpace(req.Birthdate) == "" {
		return nil, ErrMissingCredentials
	}

	birthdate, err := ParseLoginBirthdate(req.Birthdate)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByCTUID(ctx, ctuID)
	if err != nil {
		if IsNotFound(err) {
			s.svcLogger.LogSecurityEvent(ctx, SecurityEvent{Type: SecurityEventLoginFailed, Username: ctuID, Description: "unknown account"})
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !matchesBirthdate(user, birthdate) {
		s.svcLogger.LogSecurityEvent(ctx, SecurityEvent{Type: SecurityEventLoginFailed, UserID: user.ID, Username: ctuID, Description: "birthdate mismatch"})
		return nil, ErrInvalidCredentials
	}

	resp, err := s.issue(user, "Login successful")
	s.svcLogger.LogOperation(ctx, "login", user.ID, user.ID, "user", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	s.svcLogger.LogSecurityEvent(ctx, SecurityEvent{Type: SecurityEventLoginSuccess, UserID: user.ID, Username: ctuID})
	return resp, nil
}

// Refresh rotates the pair: the presented refresh token is revoked once a
// new pair is issued.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.LoginResponse, error) {
	claims, err := s.tokens.Parse(refreshToken, auth.RefreshToken)
	if err != nil {
		s.svcLogger.LogSecurityEvent(ctx, SecurityEvent{Type: SecurityEventRefreshFailed, Description: err.Error()})
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token: %w", err)
	}
	if revoked {
		s.svcLogger.LogSecurityEvent(ctx, SecurityEvent{Type: SecurityEventRefreshFailed, UserID: claims.UserID, Username: claims.CTUID, Description: "revoked refresh token"})
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, auth.ErrTokenRevoked)
	}

	user, err := s.repo.User().GetByID(ctx, claims.UserID)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%w: account no longer exists", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	resp, err := s.issue(user, "Token refreshed")
	if err != nil {
		return nil, err
	}
	if err := s.revoker.Revoke(ctx, claims.ID, s.tokens.Remaining(claims)); err != nil {
		s.logger.Warn("Failed to revoke rotated refresh token", "user_id", user.ID, "error", err)
	}
	return resp, nil
}

// Logout revokes the access token and, when given, the refresh token.
func (s *authService) Logout(ctx context.Context, access *auth.Claims, refreshToken string) error {
	if access == nil {
		return ErrUnauthorized
	}
	if err := s.revoker.Revoke(ctx, access.ID, s.tokens.Remaining(access)); err != nil {
		return fmt.Errorf("failed to revoke access token: %w", err)
	}

	if refreshToken != "" {
		refresh, err := s.tokens.Parse(refreshToken, auth.RefreshToken)
		switch {
		case err == nil && refresh.UserID == access.UserID:
			if err := s.revoker.Revoke(ctx, refresh.ID, s.tokens.Remaining(refresh)); err != nil {
				return fmt.Errorf("failed to revoke refresh token: %w", err)
			}
		case err != nil && !errors.Is(err, auth.ErrTokenExpired):
			s.logger.Warn("Ignoring invalid refresh token on logout", "user_id", access.UserID, "error", err)
		}
	}

	s.svcLogger.LogSecurityEvent(ctx, SecurityEvent{Type: SecurityEventTokenRevoked, UserID: access.UserID, Username: access.CTUID})
	return nil
}

func (s *authService) Me(ctx context.Context, userID uint) (*models.UserSummary, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return SummaryFromUser(user), nil
}

func (s *authService) issue(user *models.User, message string) (*models.LoginResponse, error) {
	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	expires := pair.AccessExpiresAt
	return &models.LoginResponse{
		Success:   true,
		Message:   message,
		User:      SummaryFromUser(user),
		Access:    pair.Access,
		Refresh:   pair.Refresh,
		ExpiresAt: &expires,
	}, nil
}

// matchesBirthdate compares against the stored password first, then the
// birthdate column for accounts imported without one.
func matchesBirthdate(user *models.User, birthdate time.Time) bool {
	want := birthdate.Format(models.DateLayout)
	if stored := strings.TrimSpace(user.Password); stored != "" {
		if t, err := ParseLoginBirthdate(stored); err == nil {
			return t.Format(models.DateLayout) == want
		}
		return stored == want
	}
	return user.BirthdateString() == want
}

func SummaryFromUser(user *models.User) *models.UserSummary {
	summary := &models.UserSummary{
		ID:            user.ID,
		CTUID:         user.CTUID,
		Name:          user.ShortName(),
		Course:        user.Course,
		YearGraduated: user.YearGraduated,
		ProfileBio:    user.ProfileBio,
		ProfilePic:    user.ProfilePic,
		Role:          user.Role(),
	}
	if user.AccountType != nil {
		summary.AccountType = *user.AccountType
	}
	return summary
}
