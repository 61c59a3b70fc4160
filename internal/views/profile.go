package views

import (
	"context"
	"fmt"

	"github.com/maeshaii/backend-wny/internal/auth"
	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/pkg/client"
)

type ProfileAPI interface {
	UpdateProfile(ctx context.Context, userID uint, bio *string, picture *client.Upload) (*models.ProfileView, error)
	Bio(ctx context.Context, userID uint) (string, error)
	UpdateBio(ctx context.Context, userID uint, bio string) (string, error)
	UploadResume(ctx context.Context, userID uint, resume *client.Upload) (string, error)
	DeleteResume(ctx context.Context, userID uint) error
	DeletePicture(ctx context.Context, userID uint) error
}

// Profile backs the edit-bio, picture and resume modals. Local state and the
// session's cached user change only after the server confirms.
type Profile struct {
	api     ProfileAPI
	session *auth.Session

	Bio        string
	PictureURL string
	ResumeURL  string
}

func NewProfile(api ProfileAPI, session *auth.Session) *Profile {
	p := &Profile{api: api, session: session}
	if user, ok := session.User(); ok {
		p.Bio = user.ProfileBio
		p.PictureURL = user.ProfilePic
	}
	return p
}

func (p *Profile) userID() (uint, error) {
	id := p.session.UserID()
	if id == 0 {
		return 0, auth.ErrNoSession
	}
	return id, nil
}

// UpdateProfile sends bio and picture together. Either may be nil.
func (p *Profile) UpdateProfile(ctx context.Context, bio *string, picture *client.Upload) error {
	id, err := p.userID()
	if err != nil {
		return err
	}
	view, err := p.api.UpdateProfile(ctx, id, bio, picture)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	p.Bio = view.Bio
	p.PictureURL = view.ProfilePic
	p.session.UpdateUser(func(u *models.UserSummary) {
		u.ProfileBio = view.Bio
		u.ProfilePic = view.ProfilePic
	})
	return nil
}

func (p *Profile) LoadBio(ctx context.Context) error {
	id, err := p.userID()
	if err != nil {
		return err
	}
	bio, err := p.api.Bio(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load bio: %w", err)
	}
	p.Bio = bio
	return nil
}

func (p *Profile) SaveBio(ctx context.Context, bio string) error {
	id, err := p.userID()
	if err != nil {
		return err
	}
	saved, err := p.api.UpdateBio(ctx, id, bio)
	if err != nil {
		return fmt.Errorf("failed to save bio: %w", err)
	}
	p.Bio = saved
	p.session.UpdateUser(func(u *models.UserSummary) { u.ProfileBio = saved })
	return nil
}

func (p *Profile) UploadResume(ctx context.Context, resume *client.Upload) error {
	id, err := p.userID()
	if err != nil {
		return err
	}
	url, err := p.api.UploadResume(ctx, id, resume)
	if err != nil {
		return fmt.Errorf("failed to upload resume: %w", err)
	}
	p.ResumeURL = url
	return nil
}

func (p *Profile) DeleteResume(ctx context.Context) error {
	id, err := p.userID()
	if err != nil {
		return err
	}
	if err := p.api.DeleteResume(ctx, id); err != nil {
		return fmt.Errorf("failed to delete resume: %w", err)
	}
	p.ResumeURL = ""
	return nil
}

func (p *Profile) DeletePicture(ctx context.Context) error {
	id, err := p.userID()
	if err != nil {
		return err
	}
	if err := p.api.DeletePicture(ctx, id); err != nil {
		return fmt.Errorf("failed to delete profile picture: %w", err)
	}
	p.PictureURL = ""
	p.session.UpdateUser(func(u *models.UserSummary) { u.ProfilePic = "" })
	return nil
}
