package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maeshaii/backend-wny/internal/models"
)

var (
	ErrTitleRequired        = errors.New("category title is required")
	ErrQuestionTextRequired = errors.New("question text and type are required")
	ErrUnknownCategory      = errors.New("category is not loaded")
	ErrUnknownQuestion      = errors.New("question is not loaded")
)

// FormAPI is the backend surface the editor needs.
type FormAPI interface {
	ListCategories(ctx context.Context) ([]models.QuestionCategory, error)
	CreateCategory(ctx context.Context, in models.CategoryInput) (*models.QuestionCategory, error)
	UpdateCategory(ctx context.Context, id uint, in models.CategoryInput) (*models.QuestionCategory, error)
	DeleteCategory(ctx context.Context, id uint) error
	CreateQuestion(ctx context.Context, in models.QuestionInput) (*models.Question, error)
	UpdateQuestion(ctx context.Context, id uint, in models.QuestionInput) (*models.Question, error)
	DeleteQuestion(ctx context.Context, id uint) error
}

// Editor is the authoring view-model. The local category list is only
// changed after the backend confirms a mutation.
type Editor struct {
	api        FormAPI
	logger     *slog.Logger
	categories []models.QuestionCategory
}

func NewEditor(api FormAPI, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{api: api, logger: logger}
}

// LoadForm replaces the local list. On failure the form is left empty and
// the error is returned.
func (e *Editor) LoadForm(ctx context.Context) error {
	categories, err := e.api.ListCategories(ctx)
	if err != nil {
		e.categories = nil
		e.logger.Error("Failed to load tracker form", "error", err)
		return fmt.Errorf("failed to load questions: %w", err)
	}
	if categories == nil {
		categories = []models.QuestionCategory{}
	}
	e.categories = categories
	return nil
}

// Categories returns a copy of the loaded form.
func (e *Editor) Categories() []models.QuestionCategory {
	out := make([]models.QuestionCategory, len(e.categories))
	for i, c := range e.categories {
		c.Questions = append(make([]models.Question, 0, len(c.Questions)), c.Questions...)
		out[i] = c
	}
	return out
}

// Rules compiles the current form definition.
func (e *Editor) Rules() *RuleSet {
	return Compile(e.categories)
}

func (e *Editor) AddCategory(ctx context.Context, title, description string) (*models.QuestionCategory, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrTitleRequired
	}
	created, err := e.api.CreateCategory(ctx, models.CategoryInput{Title: title, Description: description})
	if err != nil {
		return nil, fmt.Errorf("failed to add category: %w", err)
	}
	if created.Questions == nil {
		created.Questions = []models.Question{}
	}
	e.categories = append(e.categories, *created)
	return created, nil
}

func (e *Editor) UpdateCategory(ctx context.Context, id uint, fields models.CategoryInput) (*models.QuestionCategory, error) {
	idx := e.categoryIndex(id)
	if idx < 0 {
		return nil, ErrUnknownCategory
	}
	if strings.TrimSpace(fields.Title) == "" {
		return nil, ErrTitleRequired
	}
	updated, err := e.api.UpdateCategory(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	cat := &e.categories[idx]
	cat.Title = updated.Title
	cat.Description = updated.Description
	cat.Order = updated.Order
	if updated.Questions != nil {
		cat.Questions = updated.Questions
	}
	return cat, nil
}

func (e *Editor) DeleteCategory(ctx context.Context, id uint) error {
	idx := e.categoryIndex(id)
	if idx < 0 {
		return ErrUnknownCategory
	}
	if err := e.api.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	e.categories = append(e.categories[:idx], e.categories[idx+1:]...)
	return nil
}

func (e *Editor) AddQuestion(ctx context.Context, categoryID uint, text string, qType models.QuestionType, options []string) (*models.Question, error) {
	idx := e.categoryIndex(categoryID)
	if idx < 0 {
		return nil, ErrUnknownCategory
	}
	if strings.TrimSpace(text) == "" || qType == "" {
		return nil, ErrQuestionTextRequired
	}

	in := models.QuestionInput{CategoryID: categoryID, Text: text, Type: qType, Options: options}
	in.Options = in.CleanOptions()

	created, err := e.api.CreateQuestion(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to add question: %w", err)
	}
	e.categories[idx].Questions = append(e.categories[idx].Questions, *created)
	return created, nil
}

func (e *Editor) UpdateQuestion(ctx context.Context, id uint, text string, qType models.QuestionType, options []string) (*models.Question, error) {
	ci, qi := e.questionIndex(id)
	if ci < 0 {
		return nil, ErrUnknownQuestion
	}

	in := models.QuestionInput{Text: text, Type: qType, Options: options}
	in.Options = in.CleanOptions()

	updated, err := e.api.UpdateQuestion(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	e.categories[ci].Questions[qi] = *updated
	return updated, nil
}

func (e *Editor) DeleteQuestion(ctx context.Context, id uint) error {
	ci, qi := e.questionIndex(id)
	if ci < 0 {
		return ErrUnknownQuestion
	}
	if err := e.api.DeleteQuestion(ctx, id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	qs := e.categories[ci].Questions
	e.categories[ci].Questions = append(qs[:qi], qs[qi+1:]...)
	return nil
}

func (e *Editor) categoryIndex(id uint) int {
	for i, c := range e.categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (e *Editor) questionIndex(id uint) (int, int) {
	for ci, c := range e.categories {
		for qi, q := range c.Questions {
			if q.ID == id {
				return ci, qi
			}
		}
	}
	return -1, -1
}
