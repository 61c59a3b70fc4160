package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/maeshaii/backend-wny/internal/auth"
	"github.com/maeshaii/backend-wny/internal/models"
)

// Login signs in with the CTU ID and birthdate and starts the session.
func (c *Client) Login(ctx context.Context, ctuID, birthdate string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", nil,
		models.LoginRequest{CTUID: ctuID, Birthdate: birthdate}, &resp)
	if err != nil {
		return nil, err
	}
	if err := c.session.Start(&resp); err != nil {
		return nil, fmt.Errorf("login response carried no session: %w", err)
	}
	return &resp, nil
}

// Refresh trades the refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context) error {
	refresh := c.session.RefreshToken()
	if refresh == "" {
		return auth.ErrNoSession
	}
	var resp models.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/refresh", nil, models.RefreshRequest{RefreshToken: refresh}, &resp); err != nil {
		if IsStatus(err, http.StatusUnauthorized) {
			c.session.Invalidate()
		}
		return err
	}
	var expires time.Time
	if resp.ExpiresAt != nil {
		expires = *resp.ExpiresAt
	}
	c.session.SetTokens(resp.Access, resp.Refresh, expires)
	return nil
}

// Logout revokes both tokens server side. The local session is cleared even
// when the request fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.session.Invalidate()
	if !c.session.IsAuthenticated() {
		return nil
	}
	return c.doJSON(ctx, http.MethodPost, "/auth/logout", nil,
		models.RefreshRequest{RefreshToken: c.session.RefreshToken()}, nil)
}

func (c *Client) Me(ctx context.Context) (*models.UserSummary, error) {
	var user models.UserSummary
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
