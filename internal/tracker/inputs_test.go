package tracker

import (
	"testing"

	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestInputPropsFor(t *testing.T) {
	tests := []struct {
		text        string
		kind        InputKind
		placeholder string
	}{
		{"Contact Number", InputTel, "e.g. 09123456789 or 1234567"},
		{"Telephone", InputTel, "e.g. 09123456789 or 1234567"},
		{"Email Address", InputEmail, "e.g. user@email.com"},
		{"Birthday", InputDate, "YYYY-MM-DD"},
		{"LinkedIn profile", InputURL, "https://socialmedia.com/yourprofile"},
		{"Company name", InputText, ""},
	}
	for _, tt := range tests {
		props := InputPropsFor(models.Question{Text: tt.text, Type: models.QuestionText})
		assert.Equal(t, tt.kind, props.Type, tt.text)
		assert.Equal(t, tt.placeholder, props.Placeholder, tt.text)
	}
}

func TestInputKind_Validate(t *testing.T) {
	assert.NoError(t, InputTel.Validate("09123456789"))
	assert.NoError(t, InputTel.Validate("+639123456789"))
	assert.NoError(t, InputTel.Validate("1234567"))
	assert.ErrorIs(t, InputTel.Validate("12345"), ErrInvalidPhone)
	assert.ErrorIs(t, InputTel.Validate("08123456789"), ErrInvalidPhone)

	assert.NoError(t, InputEmail.Validate("ana@ctu.edu.ph"))
	assert.ErrorIs(t, InputEmail.Validate("ana@ctu"), ErrInvalidEmail)

	assert.NoError(t, InputDate.Validate("2003-12-04"))
	assert.ErrorIs(t, InputDate.Validate(""), ErrBirthdayRequired)

	assert.NoError(t, InputURL.Validate("https://facebook.com/ana"))
	assert.ErrorIs(t, InputURL.Validate("www.facebook.com/ana"), ErrInvalidURL)

	assert.NoError(t, InputText.Validate(""))
}

func TestInputErrorMessages(t *testing.T) {
	assert.Equal(t, "Invalid Philippine phone/landline number.", ErrInvalidPhone.Error())
	assert.Equal(t, "Invalid email address.", ErrInvalidEmail.Error())
	assert.Equal(t, "Birthday required.", ErrBirthdayRequired.Error())
	assert.Equal(t, "Invalid URL.", ErrInvalidURL.Error())
}
