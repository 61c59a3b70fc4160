package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maeshaii/backend-wny/internal/events"
	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/repositories"
	"github.com/maeshaii/backend-wny/internal/storage"
)

const MaxResumeBytes int64 = 10 << 20

type ProfileService interface {
	UpdateProfile(ctx context.Context, userID uint, update *ProfileUpdate) (*models.ProfileView, error)
	GetBio(ctx context.Context, userID uint) (string, error)
	UpdateBio(ctx context.Context, userID uint, bio string) (string, error)
	UploadResume(ctx context.Context, userID uint, file *UploadedFile) (string, error)
	DeleteResume(ctx context.Context, userID uint) error
	DeletePicture(ctx context.Context, userID uint) error
}

// ProfileUpdate carries the optional parts of a profile PUT.
type ProfileUpdate struct {
	Bio     *string
	Picture *UploadedFile
}

type profileService struct {
	repo      repositories.Repository
	store     storage.FileStore
	publisher events.EventPublisher
	logger    *slog.Logger
	maxUpload int64
}

func NewProfileService(repo repositories.Repository, store storage.FileStore, publisher events.EventPublisher, logger *slog.Logger, maxUploadBytes int64) ProfileService {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &profileService{
		repo:      repo,
		store:     store,
		publisher: publisher,
		logger:    logger,
		maxUpload: maxUploadBytes,
	}
}

func (s *profileService) user(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

// UpdateProfile sets the bio and stores a downscaled profile picture.
func (s *profileService) UpdateProfile(ctx context.Context, userID uint, update *ProfileUpdate) (*models.ProfileView, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	changed := make([]string, 0, 2)
	oldPic := ""

	if update.Bio != nil {
		user.ProfileBio = *update.Bio
		fields["profile_bio"] = user.ProfileBio
		changed = append(changed, "profile_bio")
	}
	if update.Picture != nil {
		stored, err := s.savePicture(ctx, update.Picture)
		if err != nil {
			return nil, err
		}
		oldPic = user.ProfilePic
		user.ProfilePic = storage.MediaPath(stored.Path)
		fields["profile_pic"] = user.ProfilePic
		changed = append(changed, "profile_pic")
	}

	if len(fields) > 0 {
		if err := s.repo.User().UpdateFields(ctx, userID, fields); err != nil {
			if update.Picture != nil {
				_ = s.store.Delete(user.ProfilePic)
			}
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}
	if oldPic != "" {
		if err := s.store.Delete(oldPic); err != nil {
			s.logger.Warn("Failed to remove previous profile picture", "user_id", userID, "error", err)
		}
	}

	s.logger.Info("Profile updated", "user_id", userID, "fields", changed)
	s.publish(ctx, events.NewProfileUpdatedEvent(userID, changed, user.ProfilePic))

	return &models.ProfileView{
		ID:         user.ID,
		Name:       user.ShortName(),
		ProfilePic: s.store.URL(user.ProfilePic),
		Bio:        user.ProfileBio,
	}, nil
}

func (s *profileService) savePicture(ctx context.Context, file *UploadedFile) (*storage.StoredFile, error) {
	data, name, err := storage.Downscale(file.Content, file.Filename, storage.MaxImageSide)
	if err != nil {
		if errors.Is(err, storage.ErrNotImage) {
			return nil, fmt.Errorf("%w: Profile picture must be a JPG, PNG or GIF image", ErrUnsupportedFile)
		}
		return nil, fmt.Errorf("failed to process profile picture: %w", err)
	}
	stored, err := s.store.Save(ctx, storage.DirProfile, name, bytes.NewReader(data), s.maxUpload)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, fmt.Errorf("%w: Profile picture is too large", ErrFileTooLarge)
		}
		return nil, fmt.Errorf("failed to store profile picture: %w", err)
	}
	return stored, nil
}

func (s *profileService) GetBio(ctx context.Context, userID uint) (string, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.ProfileBio, nil
}

func (s *profileService) UpdateBio(ctx context.Context, userID uint, bio string) (string, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return "", err
	}
	if err := s.repo.User().UpdateFields(ctx, userID, map[string]interface{}{"profile_bio": bio}); err != nil {
		return "", fmt.Errorf("failed to update bio: %w", err)
	}
	s.publish(ctx, events.NewProfileUpdatedEvent(userID, []string{"profile_bio"}, ""))
	return bio, nil
}

// UploadResume stores the resume and returns its public URL.
func (s *profileService) UploadResume(ctx context.Context, userID uint, file *UploadedFile) (string, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return "", err
	}
	if file == nil || file.Content == nil {
		return "", fmt.Errorf("%w: No resume file uploaded", ErrValidationFailed)
	}
	if file.Size > MaxResumeBytes {
		return "", fmt.Errorf("%w: Resume file exceeds 10MB limit", ErrFileTooLarge)
	}

	stored, err := s.store.Save(ctx, storage.DirResumes, file.Filename, file.Content, MaxResumeBytes)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return "", fmt.Errorf("%w: Resume file exceeds 10MB limit", ErrFileTooLarge)
		}
		return "", fmt.Errorf("failed to store resume: %w", err)
	}

	path := storage.MediaPath(stored.Path)
	if err := s.repo.User().UpdateFields(ctx, userID, map[string]interface{}{"profile_resume": path}); err != nil {
		_ = s.store.Delete(stored.Path)
		return "", fmt.Errorf("failed to save resume: %w", err)
	}
	if user.ProfileResume != "" {
		if err := s.store.Delete(user.ProfileResume); err != nil {
			s.logger.Warn("Failed to remove previous resume", "user_id", userID, "error", err)
		}
	}

	s.logger.Info("Resume uploaded", "user_id", userID, "size", stored.Size)
	s.publish(ctx, events.NewProfileUpdatedEvent(userID, []string{"profile_resume"}, ""))
	return s.store.URL(path), nil
}

func (s *profileService) DeleteResume(ctx context.Context, userID uint) error {
	user, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if user.ProfileResume == "" {
		return fmt.Errorf("%w: No resume found", ErrValidationFailed)
	}
	if err := s.store.Delete(user.ProfileResume); err != nil {
		s.logger.Warn("Failed to remove resume file", "user_id", userID, "error", err)
	}
	if err := s.repo.User().UpdateFields(ctx, userID, map[string]interface{}{"profile_resume": ""}); err != nil {
		return fmt.Errorf("failed to clear resume: %w", err)
	}
	return nil
}

// DeletePicture succeeds when there is no picture to delete.
func (s *profileService) DeletePicture(ctx context.Context, userID uint) error {
	user, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if user.ProfilePic == "" {
		return nil
	}
	if err := s.store.Delete(user.ProfilePic); err != nil {
		s.logger.Warn("Failed to remove profile picture", "user_id", userID, "error", err)
	}
	if err := s.repo.User().UpdateFields(ctx, userID, map[string]interface{}{"profile_pic": ""}); err != nil {
		return fmt.Errorf("failed to clear profile picture: %w", err)
	}
	s.publish(ctx, events.NewProfileUpdatedEvent(userID, []string{"profile_pic"}, ""))
	return nil
}

func (s *profileService) publish(ctx context.Context, event *events.NotificationEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish profile event", "error", err)
	}
}
