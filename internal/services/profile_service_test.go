package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/maeshaii/backend-wny/internal/events"
	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/repositories"
	"github.com/maeshaii/backend-wny/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newProfileFixture(t *testing.T) (*MockRepository, storage.FileStore, *events.MockEventPublisher, ProfileService) {
	store, err := storage.NewLocalStore(t.TempDir(), "http://api.test")
	require.NoError(t, err)
	repo := NewMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	return repo, store, publisher, NewProfileService(repo, store, publisher, testLogger(), 0)
}

func TestProfileService_UpdateProfile(t *testing.T) {
	repo, _, publisher, service := newProfileFixture(t)
	user := &models.User{ID: 7, FirstName: "Ana", LastName: "Cruz"}
	repo.users.On("GetByID", mock.Anything, uint(7)).Return(user, nil)
	repo.users.On("UpdateFields", mock.Anything, uint(7), mock.MatchedBy(func(fields map[string]interface{}) bool {
		pic, _ := fields["profile_pic"].(string)
		return fields["profile_bio"] == "Hello" && strings.HasPrefix(pic, "/media/profile_pics/")
	})).Return(nil)

	bio := "Hello"
	view, err := service.UpdateProfile(context.Background(), 7, &ProfileUpdate{
		Bio:     &bio,
		Picture: &UploadedFile{Filename: "me.png", Content: bytes.NewReader(pngBytes(t, 40, 20))},
	})

	require.NoError(t, err)
	assert.Equal(t, "Ana Cruz", view.Name)
	assert.Equal(t, "Hello", view.Bio)
	assert.True(t, strings.HasPrefix(view.ProfilePic, "http://api.test/media/profile_pics/"))
	assert.Len(t, publisher.EventsOfType(events.EventProfileUpdated), 1)
	repo.users.AssertExpectations(t)
}

func TestProfileService_UpdateProfileRejectsNonImage(t *testing.T) {
	repo, _, _, service := newProfileFixture(t)
	repo.users.On("GetByID", mock.Anything, uint(7)).Return(&models.User{ID: 7}, nil)

	_, err := service.UpdateProfile(context.Background(), 7, &ProfileUpdate{
		Picture: &UploadedFile{Filename: "notes.txt", Content: strings.NewReader("plain text")},
	})

	assert.ErrorIs(t, err, ErrUnsupportedFile)
	repo.users.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestProfileService_Resume(t *testing.T) {
	repo, store, _, service := newProfileFixture(t)
	ctx := context.Background()
	user := &models.User{ID: 7}
	repo.users.On("GetByID", mock.Anything, uint(7)).Return(user, nil)
	repo.users.On("UpdateFields", mock.Anything, uint(7), mock.Anything).Return(nil)

	_, err := service.UploadResume(ctx, 7, nil)
	assert.True(t, IsValidation(err))

	_, err = service.UploadResume(ctx, 7, &UploadedFile{Filename: "cv.pdf", Size: MaxResumeBytes + 1, Content: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrFileTooLarge)

	url, err := service.UploadResume(ctx, 7, &UploadedFile{Filename: "cv.pdf", Size: 4, Content: strings.NewReader("%PDF")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://api.test/media/resumes/"))

	err = service.DeleteResume(ctx, 7)
	assert.True(t, IsValidation(err), "user record still has no resume")

	user.ProfileResume = strings.TrimPrefix(url, "http://api.test")
	require.NoError(t, service.DeleteResume(ctx, 7))
	_, err = store.Open(user.ProfileResume)
	assert.ErrorIs(t, err, storage.ErrNotExist)
}

func TestProfileService_DeletePictureWithoutPicture(t *testing.T) {
	repo, _, _, service := newProfileFixture(t)
	repo.users.On("GetByID", mock.Anything, uint(7)).Return(&models.User{ID: 7}, nil)

	require.NoError(t, service.DeletePicture(context.Background(), 7))
	repo.users.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestAlumniService_Search(t *testing.T) {
	repo := NewMockRepository()
	store, err := storage.NewLocalStore(t.TempDir(), "http://api.test")
	require.NoError(t, err)
	service := NewAlumniService(repo, store, testLogger())
	updated := time.Unix(1700000000, 0)

	results, err := service.Search(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, results)

	repo.users.On("ListAlumni", mock.Anything, repositories.AlumniFilters{Query: "cruz", Limit: 10}).
		Return([]*models.User{{ID: 1, FirstName: "Ana", LastName: "Cruz", ProfilePic: "/media/profile_pics/a.jpg", UpdatedAt: updated}}, nil)

	results, err = service.Search(context.Background(), "cruz")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "http://api.test/media/profile_pics/a.jpg?t=1700000000", results[0].ProfilePic)
}

func TestAlumniService_OJTStatistics(t *testing.T) {
	repo := NewMockRepository()
	service := NewAlumniService(repo, nil, testLogger())
	year := 2024
	repo.users.On("CountOJTByStatus", mock.Anything, repositories.AlumniFilters{YearGraduated: &year}).
		Return(map[string]int{"Completed": 6, "Ongoing": 4, "Incomplete": 2}, nil)
	repo.users.On("CountOJTByYear", mock.Anything).Return([]models.YearCount{{Year: 2024, Count: 12}, {Year: 2023, Count: 8}}, nil)

	stats, err := service.OJTStatistics(context.Background(), "2024", "ALL")

	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalOJT)
	assert.Equal(t, map[string]int{"Completed": 6, "Ongoing": 4, "Incomplete": 2}, stats.StatusCounts)
	assert.Equal(t, 50.0, stats.CompletionRate)
	assert.Equal(t, 33.33, stats.OngoingRate)
	assert.Equal(t, 16.67, stats.IncompleteRate)
	assert.Equal(t, 20, stats.TotalRecords)
	assert.Len(t, stats.Years, 2)
}

func TestAlumniService_OJTStatisticsWithoutTrainees(t *testing.T) {
	repo := NewMockRepository()
	service := NewAlumniService(repo, nil, testLogger())
	repo.users.On("CountOJTByStatus", mock.Anything, repositories.AlumniFilters{}).Return(map[string]int{}, nil)
	repo.users.On("CountOJTByYear", mock.Anything).Return(nil, nil)

	stats, err := service.OJTStatistics(context.Background(), "", "")

	require.NoError(t, err)
	assert.Zero(t, stats.TotalOJT)
	assert.Zero(t, stats.CompletionRate)
	assert.NotNil(t, stats.Years)

	_, err = service.OJTStatistics(context.Background(), "twenty", "")
	assert.True(t, IsValidation(err))
}

func TestAlumniService_UpdateOJTStatus(t *testing.T) {
	repo := NewMockRepository()
	service := NewAlumniService(repo, nil, testLogger())
	trainee := &models.User{ID: 31, AccountType: &models.AccountType{OJT: true}, OJTStatus: models.OJTOngoing}
	repo.users.On("GetByID", mock.Anything, uint(31)).Return(trainee, nil)
	repo.users.On("UpdateFields", mock.Anything, uint(31), map[string]interface{}{"ojtstatus": "Completed"}).Return(nil)

	result, err := service.UpdateOJTStatus(context.Background(), 31, models.OJTCompleted)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "OJT status updated to Completed", result.Message)
	assert.Equal(t, models.OJTCompleted, result.NewStatus)
	repo.users.AssertExpectations(t)
}

func TestAlumniService_UpdateOJTStatusRejectsUnknownStatus(t *testing.T) {
	repo := NewMockRepository()
	service := NewAlumniService(repo, nil, testLogger())

	_, err := service.UpdateOJTStatus(context.Background(), 31, models.OJTStatus("Paused"))

	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, err.Error(), "Invalid status. Must be one of: Ongoing, Completed, Incomplete")
	repo.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestAlumniService_UpdateOJTStatusOnlyForTrainees(t *testing.T) {
	repo := NewMockRepository()
	service := NewAlumniService(repo, nil, testLogger())
	repo.users.On("GetByID", mock.Anything, uint(7)).Return(&models.User{ID: 7, AccountType: &models.AccountType{User: true}}, nil)

	_, err := service.UpdateOJTStatus(context.Background(), 7, models.OJTCompleted)

	assert.ErrorIs(t, err, ErrUserNotFound)
	repo.users.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}
