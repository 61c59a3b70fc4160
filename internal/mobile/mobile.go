// Package mobile is the alumni-only companion app: a login screen and a
// read-only dashboard.
package mobile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode"

	"github.com/maeshaii/backend-wny/internal/auth"
	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/tracker"
	"github.com/maeshaii/backend-wny/internal/views"
	"github.com/maeshaii/backend-wny/pkg/client"
)

const (
	MsgAlumniOnly   = "Only alumni accounts can access the mobile app"
	MsgInvalidDate  = "Please enter a valid date"
	MsgLoadFailed   = "Failed to load user information"
	DefaultCourse   = "Bachelor of Science in IT"
	birthdateDigits = 8
)

var (
	ErrAlumniOnly  = errors.New("account is not an alumni account")
	ErrInvalidDate = errors.New("birthdate is not MM/DD/YYYY")
	ErrNotSignedIn = auth.ErrNoSession
)

// API is the slice of pkg/client the app uses.
type API interface {
	Login(ctx context.Context, ctuID, birthdate string) (*models.LoginResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.UserSummary, error)
	SubmissionStatus(ctx context.Context, userID uint) (*models.SubmissionStatus, error)
	NotificationCount(ctx context.Context, userID uint) (int64, error)
}

// FormatDateInput masks typed digits as MM/DD/YYYY.
func FormatDateInput(text string) string {
	digits := make([]rune, 0, birthdateDigits)
	for _, r := range text {
		if unicode.IsDigit(r) && len(digits) < birthdateDigits {
			digits = append(digits, r)
		}
	}
	s := string(digits)
	switch {
	case len(s) <= 2:
		return s
	case len(s) <= 4:
		return s[:2] + "/" + s[2:]
	default:
		return s[:2] + "/" + s[2:4] + "/" + s[4:]
	}
}

type App struct {
	api     API
	session *auth.Session
	logger  *slog.Logger
}

func NewApp(api API, session *auth.Session, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{api: api, session: session, logger: logger}
}

// Login takes the masked MM/DD/YYYY birthdate. Non-alumni accounts are signed
// out again immediately.
func (a *App) Login(ctx context.Context, ctuID, birthdate string) (*models.UserSummary, error) {
	ctuID = strings.TrimSpace(ctuID)
	birthdate = strings.TrimSpace(birthdate)
	if ctuID == "" || birthdate == "" {
		return nil, views.ErrMissingFields
	}
	if strings.Count(birthdate, "/") != 2 {
		return nil, ErrInvalidDate
	}
	apiDate := tracker.ToYYYYMMDD(birthdate)
	if apiDate == "" {
		return nil, ErrInvalidDate
	}

	resp, err := a.api.Login(ctx, ctuID, apiDate)
	if err != nil {
		return nil, err
	}
	if resp.User == nil || !resp.User.AccountType.User {
		a.logger.Warn("Non-alumni login rejected on mobile", "ctu_id", ctuID)
		if err := a.api.Logout(ctx); err != nil {
			a.logger.Warn("Failed to revoke rejected mobile session", "ctu_id", ctuID, "error", err)
		}
		a.session.Invalidate()
		return nil, ErrAlumniOnly
	}
	return resp.User, nil
}

func (a *App) Logout(ctx context.Context) error {
	return a.api.Logout(ctx)
}

// Dashboard is everything the home screen shows.
type Dashboard struct {
	Name          string
	Course        string
	YearGraduated *int
	ProfilePic    string
	HasSubmitted  bool
	SubmittedAt   string
	Notifications int64
}

// LoadDashboard reads the profile, tracker status and notification count.
// Any failure fails the whole screen.
func (a *App) LoadDashboard(ctx context.Context) (*Dashboard, error) {
	if !a.session.IsAuthenticated() {
		return nil, ErrNotSignedIn
	}
	user, err := a.api.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	status, err := a.api.SubmissionStatus(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracker status: %w", err)
	}
	count, err := a.api.NotificationCount(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}

	d := &Dashboard{
		Name:          user.Name,
		Course:        user.Course,
		YearGraduated: user.YearGraduated,
		ProfilePic:    user.ProfilePic,
		HasSubmitted:  status.HasSubmitted,
		Notifications: count,
	}
	if d.Course == "" {
		d.Course = DefaultCourse
	}
	if status.SubmittedAt != nil {
		d.SubmittedAt = status.SubmittedAt.Format(models.DateLayout)
	}
	return d, nil
}

// DashboardMessage maps a LoadDashboard error to the screen's error text.
func DashboardMessage(err error) string {
	if errors.Is(err, ErrNotSignedIn) || client.IsStatus(err, http.StatusUnauthorized) {
		return views.MsgSignedOut
	}
	return MsgLoadFailed
}

// Message maps app errors to the text shown under the form.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrAlumniOnly):
		return MsgAlumniOnly
	case errors.Is(err, ErrInvalidDate):
		return MsgInvalidDate
	}
	return views.LoginMessage(err)
}
