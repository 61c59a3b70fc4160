package views

import (
	"errors"
	"net/http"

	"github.com/maeshaii/backend-wny/internal/auth"
	"github.com/maeshaii/backend-wny/pkg/client"
)

const (
	MsgNetwork       = "Network error. Please check your connection and try again"
	MsgSignedOut     = "Your session has ended. Please log in again."
	MsgUnknown       = "Something went wrong. Please try again."
	MsgInvalidLogin  = "Invalid CTU ID or birthdate"
	MsgCheckInput    = "Please check your input format"
	MsgMissingFields = "Please fill in all fields"
)

var ErrMissingFields = errors.New("missing login fields")

// Message turns an error from a view-model into text for the user. Server
// messages are shown as sent.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrMissingFields) {
		return MsgMissingFields
	}
	if errors.Is(err, auth.ErrNoSession) {
		return MsgSignedOut
	}
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return MsgNetwork
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized:
		return MsgSignedOut
	case http.StatusBadRequest:
		return MsgCheckInput
	}
	return MsgUnknown
}
