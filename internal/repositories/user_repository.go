package repositories

import (
	"context"

	"github.com/maeshaii/backend-wny/internal/models"
)

// UserRepository covers alumni, OJT and staff accounts
type UserRepository interface {
	// Basic read operations
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByCTUID(ctx context.Context, ctuID string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.User, error)
	GetByEmails(ctx context.Context, emails []string) ([]*models.User, error)
	ExistsByCTUID(ctx context.Context, ctuID string) (bool, error)

	// Write operations
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error

	// Alumni queries (account type user)
	ListAlumni(ctx context.Context, filters AlumniFilters) ([]*models.User, error)
	CountAlumniByYear(ctx context.Context) ([]models.YearCount, error)
	CountAlumniByStatus(ctx context.Context, filters AlumniFilters) (map[string]int, error)
	ListAlumniWithoutResponse(ctx context.Context) ([]*models.User, error)

	// OJT queries (account type ojt)
	ListOJT(ctx context.Context, year *int) ([]*models.User, error)
	CountOJTByYear(ctx context.Context) ([]models.YearCount, error)
	CountOJTByStatus(ctx context.Context, filters AlumniFilters) (map[string]int, error)

	GetAccountType(ctx context.Context, role models.UserRole) (*models.AccountType, error)
}
