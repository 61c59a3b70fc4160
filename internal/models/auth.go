package models

import "time"

// LoginRequest carries the CTU ID and the birthdate used as password.
type LoginRequest struct {
	CTUID     string `json:"acc_username"`
	Birthdate string `json:"acc_password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh" validate:"required"`
}

// UserSummary is the identity returned after login.
type UserSummary struct {
	ID            uint        `json:"id"`
	CTUID         string      `json:"ctu_id"`
	Name          string      `json:"name"`
	Course        string      `json:"course"`
	YearGraduated *int        `json:"year_graduated"`
	ProfileBio    string      `json:"profile_bio"`
	ProfilePic    string      `json:"profile_pic"`
	Role          UserRole    `json:"role"`
	AccountType   AccountType `json:"account_type"`
}

type LoginResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	User      *UserSummary `json:"user,omitempty"`
	Access    string       `json:"access,omitempty"`
	Refresh   string       `json:"refresh,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
}
