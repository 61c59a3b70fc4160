package views

import (
	"context"
	"net/http"
	"strings"

	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/pkg/client"
)

const (
	RouteDashboard       = "/dashboard"
	RouteAlumniDashboard = "/alumni/dashboard"
)

type LoginAPI interface {
	Login(ctx context.Context, ctuID, birthdate string) (*models.LoginResponse, error)
}

type Login struct {
	api LoginAPI
}

func NewLogin(api LoginAPI) *Login {
	return &Login{api: api}
}

// Submit signs in and returns the route to open next. The birthdate may be
// MM/DD/YYYY or YYYY-MM-DD; the server accepts both.
func (l *Login) Submit(ctx context.Context, ctuID, birthdate string) (string, error) {
	ctuID = strings.TrimSpace(ctuID)
	birthdate = strings.TrimSpace(birthdate)
	if ctuID == "" || birthdate == "" {
		return "", ErrMissingFields
	}
	resp, err := l.api.Login(ctx, ctuID, birthdate)
	if err != nil {
		return "", err
	}
	return HomeRoute(resp.User), nil
}

// HomeRoute picks the landing page by account type. Alumni get their own
// dashboard; admin, PESO and coordinator accounts share the staff one.
func HomeRoute(user *models.UserSummary) string {
	if user != nil && user.AccountType.User && !user.AccountType.Admin {
		return RouteAlumniDashboard
	}
	return RouteDashboard
}

// LoginMessage is Message with the login screen's wording for 400 and 401.
func LoginMessage(err error) string {
	switch {
	case client.IsStatus(err, http.StatusUnauthorized):
		return MsgInvalidLogin
	case client.IsStatus(err, http.StatusBadRequest):
		return MsgCheckInput
	}
	return Message(err)
}
