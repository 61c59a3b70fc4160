package repositories

import (
	"context"

	"github.com/maeshaii/backend-wny/internal/models"
)

// TrackerRepository owns the tracker form definition and its responses
type TrackerRepository interface {
	// Form definition, categories come back in id order with nested questions
	ListCategories(ctx context.Context) ([]models.QuestionCategory, error)
	GetCategory(ctx context.Context, id uint) (*models.QuestionCategory, error)
	CreateCategory(ctx context.Context, category *models.QuestionCategory) error
	UpdateCategory(ctx context.Context, category *models.QuestionCategory) error
	DeleteCategory(ctx context.Context, id uint) error

	GetQuestion(ctx context.Context, id uint) (*models.Question, error)
	CreateQuestion(ctx context.Context, question *models.Question) error
	UpdateQuestion(ctx context.Context, question *models.Question) error
	DeleteQuestion(ctx context.Context, id uint) error

	GetForm(ctx context.Context) (*models.TrackerForm, error)
	UpdateForm(ctx context.Context, form *models.TrackerForm) error

	// Responses
	CreateResponse(ctx context.Context, response *models.TrackerResponse) error
	GetResponseByUser(ctx context.Context, userID uint) (*models.TrackerResponse, error)
	HasResponse(ctx context.Context, userID uint) (bool, error)
	ListResponses(ctx context.Context, filters ResponseFilters) ([]*models.TrackerResponse, error)

	// Uploaded files
	GetFile(ctx context.Context, id uint) (*models.TrackerFileUpload, error)
	GetFileStats(ctx context.Context) (*FileUploadStats, error)
}
