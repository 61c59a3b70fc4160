package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/repositories"
	"github.com/maeshaii/backend-wny/internal/storage"
)

const searchResultLimit = 10

// AlumniService serves the alumni directory and the coordinator OJT views
type AlumniService interface {
	List(ctx context.Context, filters repositories.AlumniFilters) ([]models.AlumniListItem, error)
	Search(ctx context.Context, query string) ([]models.AlumniListItem, error)
	Years(ctx context.Context) ([]models.YearCount, error)

	OJTStatistics(ctx context.Context, year, course string) (*models.OJTStatistics, error)
	OJTByYear(ctx context.Context, year int) ([]models.OJTListItem, error)
	UpdateOJTStatus(ctx context.Context, userID uint, status models.OJTStatus) (*models.OJTStatusUpdate, error)
}

type alumniService struct {
	repo   repositories.Repository
	store  storage.FileStore
	logger *slog.Logger
	now    func() time.Time
}

func NewAlumniService(repo repositories.Repository, store storage.FileStore, logger *slog.Logger) AlumniService {
	return &alumniService{
		repo:   repo,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (s *alumniService) List(ctx context.Context, filters repositories.AlumniFilters) ([]models.AlumniListItem, error) {
	alumni, err := s.repo.User().ListAlumni(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list alumni: %w", err)
	}
	items := make([]models.AlumniListItem, 0, len(alumni))
	for _, u := range alumni {
		items = append(items, s.listItem(u))
	}
	return items, nil
}

// Search matches the full name, returning at most ten alumni.
func (s *alumniService) Search(ctx context.Context, query string) ([]models.AlumniListItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.AlumniListItem{}, nil
	}
	return s.List(ctx, repositories.AlumniFilters{Query: query, Limit: searchResultLimit})
}

func (s *alumniService) Years(ctx context.Context) ([]models.YearCount, error) {
	years, err := s.repo.User().CountAlumniByYear(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count alumni by year: %w", err)
	}
	if years == nil {
		years = []models.YearCount{}
	}
	return years, nil
}

func (s *alumniService) listItem(u *models.User) models.AlumniListItem {
	return models.AlumniListItem{
		ID:          u.ID,
		CTUID:       u.CTUID,
		Name:        u.FullName(),
		Course:      u.Course,
		Batch:       u.YearGraduated,
		Status:      u.UserStatus,
		Gender:      u.Gender,
		Birthdate:   u.BirthdateString(),
		Phone:       u.Phone,
		Address:     u.Address,
		CivilStatus: u.CivilStatus,
		SocialMedia: u.SocialMedia,
		ProfilePic:  s.pictureURL(u),
	}
}

func (s *alumniService) pictureURL(u *models.User) string {
	if u.ProfilePic == "" || s.store == nil {
		return ""
	}
	// t changes whenever the user row is updated
	return fmt.Sprintf("%s?t=%d", s.store.URL(u.ProfilePic), u.UpdatedAt.Unix())
}

// ===== OJT =====

// OJTStatistics reports status counts and rates for the trainees matching
// year and course, and record counts for every batch year.
func (s *alumniService) OJTStatistics(ctx context.Context, year, course string) (*models.OJTStatistics, error) {
	filters, err := alumniFilters(year, course)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.User().CountOJTByStatus(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to count OJT statuses: %w", err)
	}
	years, err := s.repo.User().CountOJTByYear(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count OJT records: %w", err)
	}

	stats := &models.OJTStatistics{StatusCounts: make(map[string]int, len(counts)), Years: years}
	if stats.Years == nil {
		stats.Years = []models.YearCount{}
	}
	for status, n := range counts {
		stats.StatusCounts[status] = n
		stats.TotalOJT += n
	}
	for _, y := range years {
		stats.TotalRecords += y.Count
	}
	stats.CompletionRate = *rate(counts[string(models.OJTCompleted)], stats.TotalOJT)
	stats.OngoingRate = *rate(counts[string(models.OJTOngoing)], stats.TotalOJT)
	stats.IncompleteRate = *rate(counts[string(models.OJTIncomplete)], stats.TotalOJT)
	return stats, nil
}

func (s *alumniService) UpdateOJTStatus(ctx context.Context, userID uint, status models.OJTStatus) (*models.OJTStatusUpdate, error) {
	if !status.Valid() {
		names := make([]string, len(models.OJTStatuses))
		for i, st := range models.OJTStatuses {
			names[i] = string(st)
		}
		return nil, fmt.Errorf("%w: Invalid status. Must be one of: %s", ErrValidationFailed, strings.Join(names, ", "))
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if user.AccountType == nil || !user.AccountType.OJT {
		return nil, ErrUserNotFound
	}

	if err := s.repo.User().UpdateFields(ctx, user.ID, map[string]interface{}{"ojtstatus": string(status)}); err != nil {
		return nil, fmt.Errorf("failed to update OJT status: %w", err)
	}
	s.logger.Info("OJT status updated", "user_id", user.ID, "from", user.OJTStatus, "to", status)

	return &models.OJTStatusUpdate{
		Success:   true,
		Message:   fmt.Sprintf("OJT status updated to %s", status),
		UserID:    user.ID,
		NewStatus: status,
	}, nil
}

func (s *alumniService) OJTByYear(ctx context.Context, year int) ([]models.OJTListItem, error) {
	trainees, err := s.repo.User().ListOJT(ctx, &year)
	if err != nil {
		return nil, fmt.Errorf("failed to list OJT records: %w", err)
	}

	now := s.now()
	items := make([]models.OJTListItem, 0, len(trainees))
	for _, u := range trainees {
		items = append(items, models.OJTListItem{
			ID:           u.ID,
			CTUID:        u.CTUID,
			FirstName:    u.FirstName,
			MiddleName:   u.MiddleName,
			LastName:     u.LastName,
			Gender:       u.Gender,
			Birthdate:    u.BirthdateString(),
			Age:          u.CalculatedAge(now),
			Phone:        u.Phone,
			Address:      u.Address,
			CivilStatus:  u.CivilStatus,
			SocialMedia:  u.SocialMedia,
			Course:       u.Course,
			OJTStartDate: formatDate(u.DateStarted),
			OJTEndDate:   formatDate(u.OJTEndDate),
			OJTStatus:    string(u.OJTStatus),
			BatchYear:    u.YearGraduated,
		})
	}
	return items, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(models.DateLayout)
}
