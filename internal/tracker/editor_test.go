package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFormAPI struct {
	mock.Mock
}

func (m *MockFormAPI) ListCategories(ctx context.Context) ([]models.QuestionCategory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.QuestionCategory), args.Error(1)
}

func (m *MockFormAPI) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.QuestionCategory, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuestionCategory), args.Error(1)
}

func (m *MockFormAPI) UpdateCategory(ctx context.Context, id uint, in models.CategoryInput) (*models.QuestionCategory, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuestionCategory), args.Error(1)
}

func (m *MockFormAPI) DeleteCategory(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFormAPI) CreateQuestion(ctx context.Context, in models.QuestionInput) (*models.Question, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockFormAPI) UpdateQuestion(ctx context.Context, id uint, in models.QuestionInput) (*models.Question, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockFormAPI) DeleteQuestion(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func loadedEditor(t *testing.T) (*Editor, *MockFormAPI) {
	t.Helper()
	api := new(MockFormAPI)
	api.On("ListCategories", mock.Anything).Return(sampleForm(), nil).Once()
	e := NewEditor(api, nil)
	require.NoError(t, e.LoadForm(context.Background()))
	return e, api
}

func TestEditor_LoadFormFailureLeavesEmptyForm(t *testing.T) {
	e, api := loadedEditor(t)
	api.On("ListCategories", mock.Anything).Return(nil, errors.New("boom")).Once()

	err := e.LoadForm(context.Background())

	assert.ErrorContains(t, err, "failed to load questions")
	assert.Empty(t, e.Categories())
	api.AssertExpectations(t)
}

func TestEditor_AddCategory(t *testing.T) {
	e, api := loadedEditor(t)
	in := models.CategoryInput{Title: "PART VI: FEEDBACK", Description: "Optional"}
	api.On("CreateCategory", mock.Anything, in).Return(&models.QuestionCategory{ID: 77, Title: in.Title, Description: in.Description}, nil)

	created, err := e.AddCategory(context.Background(), in.Title, in.Description)

	require.NoError(t, err)
	assert.Equal(t, uint(77), created.ID)
	cats := e.Categories()
	assert.Len(t, cats, len(sampleForm())+1)
	assert.NotNil(t, cats[len(cats)-1].Questions)
}

func TestEditor_CategoriesKeepEmptyQuestionLists(t *testing.T) {
	api := new(MockFormAPI)
	api.On("ListCategories", mock.Anything).Return([]models.QuestionCategory{{ID: 9, Title: "Empty", Questions: []models.Question{}}}, nil)
	e := NewEditor(api, nil)
	require.NoError(t, e.LoadForm(context.Background()))

	data, err := json.Marshal(e.Categories())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"questions":[]`)
	assert.NotContains(t, string(data), `"questions":null`)
}

func TestEditor_FailedMutationsLeaveStateUnchanged(t *testing.T) {
	ctx := context.Background()
	e, api := loadedEditor(t)
	before := e.Categories()

	api.On("CreateCategory", mock.Anything, mock.Anything).Return(nil, errors.New("500"))
	api.On("UpdateCategory", mock.Anything, catGeneral, mock.Anything).Return(nil, errors.New("500"))
	api.On("DeleteCategory", mock.Anything, catGeneral).Return(errors.New("500"))
	api.On("CreateQuestion", mock.Anything, mock.Anything).Return(nil, errors.New("500"))
	api.On("UpdateQuestion", mock.Anything, qCourse, mock.Anything).Return(nil, errors.New("500"))
	api.On("DeleteQuestion", mock.Anything, qCourse).Return(errors.New("500"))

	_, err := e.AddCategory(ctx, "New", "")
	assert.Error(t, err)
	_, err = e.UpdateCategory(ctx, catGeneral, models.CategoryInput{Title: "Renamed"})
	assert.Error(t, err)
	assert.Error(t, e.DeleteCategory(ctx, catGeneral))
	_, err = e.AddQuestion(ctx, catGeneral, "New question", models.QuestionText, nil)
	assert.Error(t, err)
	_, err = e.UpdateQuestion(ctx, qCourse, "Program", models.QuestionText, nil)
	assert.Error(t, err)
	assert.Error(t, e.DeleteQuestion(ctx, qCourse))

	assert.Equal(t, before, e.Categories())
}

func TestEditor_RejectsUnknownIDsWithoutCallingAPI(t *testing.T) {
	ctx := context.Background()
	e, api := loadedEditor(t)

	assert.ErrorIs(t, e.DeleteCategory(ctx, 999), ErrUnknownCategory)
	_, err := e.AddQuestion(ctx, 999, "Text", models.QuestionText, nil)
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.ErrorIs(t, e.DeleteQuestion(ctx, 999), ErrUnknownQuestion)
	_, err = e.AddCategory(ctx, "  ", "")
	assert.ErrorIs(t, err, ErrTitleRequired)

	api.AssertNotCalled(t, "DeleteCategory", mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "CreateQuestion", mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "CreateCategory", mock.Anything, mock.Anything)
}

func TestEditor_AddQuestionCleansOptions(t *testing.T) {
	ctx := context.Background()
	e, api := loadedEditor(t)

	radio := models.QuestionInput{CategoryID: catGeneral, Text: "Sex", Type: models.QuestionRadio, Options: []string{"Male", "Female"}}
	api.On("CreateQuestion", mock.Anything, radio).
		Return(&models.Question{ID: 90, CategoryID: catGeneral, Text: "Sex", Type: models.QuestionRadio, Options: []string{"Male", "Female"}}, nil)

	text := models.QuestionInput{CategoryID: catGeneral, Text: "Nickname", Type: models.QuestionText, Options: []string{}}
	api.On("CreateQuestion", mock.Anything, text).
		Return(&models.Question{ID: 91, CategoryID: catGeneral, Text: "Nickname", Type: models.QuestionText}, nil)

	_, err := e.AddQuestion(ctx, catGeneral, "Sex", models.QuestionRadio, []string{"Male", "", "Female"})
	require.NoError(t, err)
	_, err = e.AddQuestion(ctx, catGeneral, "Nickname", models.QuestionText, []string{"ignored"})
	require.NoError(t, err)

	general := categoryByID(e.Categories(), catGeneral)
	assert.Equal(t, uint(91), general.Questions[len(general.Questions)-1].ID)
	api.AssertExpectations(t)
}

func TestEditor_DeleteQuestion(t *testing.T) {
	e, api := loadedEditor(t)
	api.On("DeleteQuestion", mock.Anything, qCourse).Return(nil)

	require.NoError(t, e.DeleteQuestion(context.Background(), qCourse))

	for _, qq := range categoryByID(e.Categories(), catGeneral).Questions {
		assert.NotEqual(t, qCourse, qq.ID)
	}
}
