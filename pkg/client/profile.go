package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/maeshaii/backend-wny/internal/models"
)

type bioPayload struct {
	Bio string `json:"profile_bio"`
}

// UpdateProfile sends the bio and picture in one multipart PUT. Nil values
// are left out.
func (c *Client) UpdateProfile(ctx context.Context, userID uint, bio *string, picture *Upload) (*models.ProfileView, error) {
	fields := map[string]string{}
	if bio != nil {
		fields["profile_bio"] = *bio
	}
	var view models.ProfileView
	err := c.doMultipart(ctx, http.MethodPut, fmt.Sprintf("/profile/%d", userID), fields,
		map[string]*Upload{"profile_pic": picture}, &view)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) Bio(ctx context.Context, userID uint) (string, error) {
	var out bioPayload
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/profile/%d/bio", userID), nil, nil, &out); err != nil {
		return "", err
	}
	return out.Bio, nil
}

func (c *Client) UpdateBio(ctx context.Context, userID uint, bio string) (string, error) {
	var out bioPayload
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/profile/%d/bio", userID), nil, bioPayload{Bio: bio}, &out); err != nil {
		return "", err
	}
	return out.Bio, nil
}

// UploadResume returns the public URL of the stored resume.
func (c *Client) UploadResume(ctx context.Context, userID uint, resume *Upload) (string, error) {
	var out struct {
		URL string `json:"resume_url"`
	}
	err := c.doMultipart(ctx, http.MethodPost, fmt.Sprintf("/profile/%d/resume", userID), nil,
		map[string]*Upload{"resume": resume}, &out)
	if err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) DeleteResume(ctx context.Context, userID uint) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/profile/%d/resume", userID), nil, nil, nil)
}

func (c *Client) DeletePicture(ctx context.Context, userID uint) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/profile/%d/picture", userID), nil, nil, nil)
}
