package postgres

import (
	"context"
	"fmt"

	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/repositories"
	"gorm.io/gorm"
)

type TrackerPostgreSQL struct {
	db *gorm.DB
}

func NewTrackerPostgreSQL(db *gorm.DB) repositories.TrackerRepository {
	return &TrackerPostgreSQL{db: db}
}

func orderQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("tracker_questions.id ASC")
}

// ===== FORM DEFINITION =====

func (t *TrackerPostgreSQL) ListCategories(ctx context.Context) ([]models.QuestionCategory, error) {
	var categories []models.QuestionCategory
	err := t.db.WithContext(ctx).
		Preload("Questions", orderQuestions).
		Order("sort_order ASC, id ASC").
		Find(&categories).Error
	return categories, err
}

func (t *TrackerPostgreSQL) GetCategory(ctx context.Context, id uint) (*models.QuestionCategory, error) {
	var category models.QuestionCategory
	if err := t.db.WithContext(ctx).Preload("Questions", orderQuestions).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (t *TrackerPostgreSQL) CreateCategory(ctx context.Context, category *models.QuestionCategory) error {
	return t.db.WithContext(ctx).Omit("Questions").Create(category).Error
}

func (t *TrackerPostgreSQL) UpdateCategory(ctx context.Context, category *models.QuestionCategory) error {
	result := t.db.WithContext(ctx).Model(category).
		Select("title", "description", "sort_order").
		Updates(category)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCategory removes the category and its questions.
func (t *TrackerPostgreSQL) DeleteCategory(ctx context.Context, id uint) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return fmt.Errorf("failed to delete category questions: %w", err)
		}
		result := tx.Delete(&models.QuestionCategory{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (t *TrackerPostgreSQL) GetQuestion(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := t.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (t *TrackerPostgreSQL) CreateQuestion(ctx context.Context, question *models.Question) error {
	return t.db.WithContext(ctx).Create(question).Error
}

func (t *TrackerPostgreSQL) UpdateQuestion(ctx context.Context, question *models.Question) error {
	result := t.db.WithContext(ctx).Model(question).
		Select("category_id", "text", "type", "options").
		Updates(question)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (t *TrackerPostgreSQL) DeleteQuestion(ctx context.Context, id uint) error {
	result := t.db.WithContext(ctx).Delete(&models.Question{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetForm returns the single form settings row, creating it on first use.
func (t *TrackerPostgreSQL) GetForm(ctx context.Context) (*models.TrackerForm, error) {
	var form models.TrackerForm
	err := t.db.WithContext(ctx).
		Attrs(models.TrackerForm{Title: models.DefaultTrackerFormTitle, AcceptingResponses: true}).
		Order("id ASC").
		FirstOrCreate(&form).Error
	if err != nil {
		return nil, err
	}
	return &form, nil
}

func (t *TrackerPostgreSQL) UpdateForm(ctx context.Context, form *models.TrackerForm) error {
	return t.db.WithContext(ctx).Model(form).
		Select("title", "accepting_responses").
		Updates(form).Error
}

// ===== RESPONSES =====

// CreateResponse inserts the response and its file rows in one transaction.
func (t *TrackerPostgreSQL) CreateResponse(ctx context.Context, response *models.TrackerResponse) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		files := response.Files
		response.Files = nil
		if err := tx.Omit("User").Create(response).Error; err != nil {
			return fmt.Errorf("failed to create response: %w", err)
		}
		for i := range files {
			files[i].ResponseID = response.ID
		}
		if len(files) > 0 {
			if err := tx.Create(&files).Error; err != nil {
				return fmt.Errorf("failed to record uploaded files: %w", err)
			}
		}
		response.Files = files
		return nil
	})
}

func (t *TrackerPostgreSQL) GetResponseByUser(ctx context.Context, userID uint) (*models.TrackerResponse, error) {
	var response models.TrackerResponse
	err := t.db.WithContext(ctx).
		Preload("Files").
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		First(&response).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (t *TrackerPostgreSQL) HasResponse(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := t.db.WithContext(ctx).Model(&models.TrackerResponse{}).Where("user_id = ?", userID).Count(&count).Error
	return count > 0, err
}

func (t *TrackerPostgreSQL) ListResponses(ctx context.Context, filters repositories.ResponseFilters) ([]*models.TrackerResponse, error) {
	var responses []*models.TrackerResponse
	query := t.db.WithContext(ctx).Model(&models.TrackerResponse{}).
		Preload("User").
		Preload("Files")

	if filters.BatchYear != nil {
		query = query.
			Joins("JOIN users ON users.id = tracker_responses.user_id").
			Where("users.year_graduated = ?", *filters.BatchYear)
	}
	if filters.UserID != nil {
		query = query.Where("tracker_responses.user_id = ?", *filters.UserID)
	}

	err := query.Order("tracker_responses.submitted_at DESC").Find(&responses).Error
	return responses, err
}

// ===== FILES =====

func (t *TrackerPostgreSQL) GetFile(ctx context.Context, id uint) (*models.TrackerFileUpload, error) {
	var file models.TrackerFileUpload
	if err := t.db.WithContext(ctx).First(&file, id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (t *TrackerPostgreSQL) GetFileStats(ctx context.Context) (*repositories.FileUploadStats, error) {
	db := t.db.WithContext(ctx)
	stats := &repositories.FileUploadStats{}

	var totals struct {
		TotalFiles int
		TotalSize  int64
	}
	if err := db.Model(&models.TrackerFileUpload{}).
		Select("COUNT(*) AS total_files, COALESCE(SUM(file_size), 0) AS total_size").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to count uploads: %w", err)
	}
	stats.TotalFiles = totals.TotalFiles
	stats.TotalSize = totals.TotalSize
	stats.TotalSizeMB = bytesToMB(totals.TotalSize)

	var uniqueUsers int64
	if err := db.Table("tracker_file_uploads").
		Joins("JOIN tracker_responses ON tracker_responses.id = tracker_file_uploads.response_id").
		Distinct("tracker_responses.user_id").
		Count(&uniqueUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count uploading users: %w", err)
	}
	stats.UniqueUsers = int(uniqueUsers)

	var byQuestion []repositories.FileQuestionStat
	if err := db.Model(&models.TrackerFileUpload{}).
		Select("question_id, COUNT(*) AS count, COALESCE(SUM(file_size), 0) AS total_size").
		Group("question_id").
		Order("question_id ASC").
		Scan(&byQuestion).Error; err != nil {
		return nil, fmt.Errorf("failed to group uploads: %w", err)
	}
	for i := range byQuestion {
		byQuestion[i].SizeMB = bytesToMB(byQuestion[i].TotalSize)
	}
	stats.ByQuestion = byQuestion

	return stats, nil
}
