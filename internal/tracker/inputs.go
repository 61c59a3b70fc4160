package tracker

import (
	"errors"
	"regexp"
	"strings"

	"github.com/maeshaii/backend-wny/internal/models"
)

type InputKind string

const (
	InputText  InputKind = "text"
	InputTel   InputKind = "tel"
	InputEmail InputKind = "email"
	InputDate  InputKind = "date"
	InputURL   InputKind = "url"
)

var (
	phonePattern = regexp.MustCompile(`^(09|\+639)\d{9}$|^\d{7}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	urlPattern   = regexp.MustCompile(`^https?://`)

	ErrInvalidPhone     = errors.New("Invalid Philippine phone/landline number.")
	ErrInvalidEmail     = errors.New("Invalid email address.")
	ErrBirthdayRequired = errors.New("Birthday required.")
	ErrInvalidURL       = errors.New("Invalid URL.")
)

// InputProps describes how a text question is rendered and checked.
type InputProps struct {
	Type        InputKind `json:"type"`
	Placeholder string    `json:"placeholder"`
	Pattern     string    `json:"pattern,omitempty"`
}

// Validate checks a single value. A nil error means the value is accepted.
func (p InputProps) Validate(value string) error {
	return p.Type.Validate(value)
}

func (k InputKind) Validate(value string) error {
	switch k {
	case InputTel:
		if !phonePattern.MatchString(value) {
			return ErrInvalidPhone
		}
	case InputEmail:
		if !emailPattern.MatchString(value) {
			return ErrInvalidEmail
		}
	case InputDate:
		if value == "" {
			return ErrBirthdayRequired
		}
	case InputURL:
		if !urlPattern.MatchString(value) {
			return ErrInvalidURL
		}
	}
	return nil
}

var socialKeywords = []string{"facebook", "twitter", "instagram", "linkedin", "social"}

// InputPropsFor derives input props from the question text.
func InputPropsFor(q models.Question) InputProps {
	text := strings.ToLower(q.Text)
	switch {
	case containsAny(text, "phone", "contact"):
		return InputProps{Type: InputTel, Placeholder: "e.g. 09123456789 or 1234567", Pattern: phonePattern.String()}
	case strings.Contains(text, "email"):
		return InputProps{Type: InputEmail, Placeholder: "e.g. user@email.com"}
	case containsAny(text, "birth", "bday"):
		return InputProps{Type: InputDate, Placeholder: "YYYY-MM-DD"}
	case containsAny(text, socialKeywords...):
		return InputProps{Type: InputURL, Placeholder: "https://socialmedia.com/yourprofile"}
	}
	return InputProps{Type: InputText}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
