package handlers

import (
	"context"
	"io"

	"github.com/maeshaii/backend-wny/internal/auth"
	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/repositories"
	"github.com/maeshaii/backend-wny/internal/services"
	"github.com/stretchr/testify/mock"
)

type mockServiceManager struct {
	auth         *MockAuthService
	tracker      *MockTrackerService
	statistics   *MockStatisticsService
	importExport *MockImportExportService
	notification *MockNotificationService
	profile      *MockProfileService
	alumni       *MockAlumniService
}

func newMockServiceManager() *mockServiceManager {
	return &mockServiceManager{
		auth:         &MockAuthService{},
		tracker:      &MockTrackerService{},
		statistics:   &MockStatisticsService{},
		importExport: &MockImportExportService{},
		notification: &MockNotificationService{},
		profile:      &MockProfileService{},
		alumni:       &MockAlumniService{},
	}
}

func (m *mockServiceManager) Auth() services.AuthService                 { return m.auth }
func (m *mockServiceManager) Tracker() services.TrackerService           { return m.tracker }
func (m *mockServiceManager) Statistics() services.StatisticsService     { return m.statistics }
func (m *mockServiceManager) ImportExport() services.ImportExportService { return m.importExport }
func (m *mockServiceManager) Notification() services.NotificationService { return m.notification }
func (m *mockServiceManager) Profile() services.ProfileService           { return m.profile }
func (m *mockServiceManager) Alumni() services.AlumniService             { return m.alumni }

// ===== AUTH =====

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.LoginResponse)
	return resp, args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*models.LoginResponse, error) {
	args := m.Called(ctx, refreshToken)
	resp, _ := args.Get(0).(*models.LoginResponse)
	return resp, args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, access *auth.Claims, refreshToken string) error {
	return m.Called(ctx, access, refreshToken).Error(0)
}

func (m *MockAuthService) Me(ctx context.Context, userID uint) (*models.UserSummary, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*models.UserSummary)
	return user, args.Error(1)
}

// ===== TRACKER =====

type MockTrackerService struct {
	mock.Mock
}

func (m *MockTrackerService) ListCategories(ctx context.Context) ([]models.QuestionCategory, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]models.QuestionCategory)
	return categories, args.Error(1)
}

func (m *MockTrackerService) CreateCategory(ctx context.Context, in *models.CategoryInput) (*models.QuestionCategory, error) {
	args := m.Called(ctx, in)
	category, _ := args.Get(0).(*models.QuestionCategory)
	return category, args.Error(1)
}

func (m *MockTrackerService) UpdateCategory(ctx context.Context, id uint, in *models.CategoryInput) (*models.QuestionCategory, error) {
	args := m.Called(ctx, id, in)
	category, _ := args.Get(0).(*models.QuestionCategory)
	return category, args.Error(1)
}

func (m *MockTrackerService) DeleteCategory(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTrackerService) CreateQuestion(ctx context.Context, in *models.QuestionInput) (*models.Question, error) {
	args := m.Called(ctx, in)
	question, _ := args.Get(0).(*models.Question)
	return question, args.Error(1)
}

func (m *MockTrackerService) UpdateQuestion(ctx context.Context, id uint, in *models.QuestionInput) (*models.Question, error) {
	args := m.Called(ctx, id, in)
	question, _ := args.Get(0).(*models.Question)
	return question, args.Error(1)
}

func (m *MockTrackerService) DeleteQuestion(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTrackerService) GetForm(ctx context.Context) (*models.TrackerForm, error) {
	args := m.Called(ctx)
	form, _ := args.Get(0).(*models.TrackerForm)
	return form, args.Error(1)
}

func (m *MockTrackerService) UpdateFormTitle(ctx context.Context, title string) (*models.TrackerForm, error) {
	args := m.Called(ctx, title)
	form, _ := args.Get(0).(*models.TrackerForm)
	return form, args.Error(1)
}

func (m *MockTrackerService) SetAcceptingResponses(ctx context.Context, accepting bool) (*models.TrackerForm, error) {
	args := m.Called(ctx, accepting)
	form, _ := args.Get(0).(*models.TrackerForm)
	return form, args.Error(1)
}

func (m *MockTrackerService) Submit(ctx context.Context, req *services.SubmitRequest) (*models.SubmitResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*models.SubmitResult)
	return result, args.Error(1)
}

func (m *MockTrackerService) ListResponses(ctx context.Context, batchYear *int) ([]models.ResponseView, error) {
	args := m.Called(ctx, batchYear)
	responses, _ := args.Get(0).([]models.ResponseView)
	return responses, args.Error(1)
}

func (m *MockTrackerService) ResponsesByUser(ctx context.Context, userID uint) ([]models.ResponseView, error) {
	args := m.Called(ctx, userID)
	responses, _ := args.Get(0).([]models.ResponseView)
	return responses, args.Error(1)
}

func (m *MockTrackerService) Status(ctx context.Context, userID uint) (*models.SubmissionStatus, error) {
	args := m.Called(ctx, userID)
	status, _ := args.Get(0).(*models.SubmissionStatus)
	return status, args.Error(1)
}

func (m *MockTrackerService) FileStats(ctx context.Context) (*repositories.FileUploadStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*repositories.FileUploadStats)
	return stats, args.Error(1)
}

func (m *MockTrackerService) OpenFile(ctx context.Context, id uint) (*models.TrackerFileUpload, io.ReadCloser, error) {
	args := m.Called(ctx, id)
	upload, _ := args.Get(0).(*models.TrackerFileUpload)
	content, _ := args.Get(1).(io.ReadCloser)
	return upload, content, args.Error(2)
}

// ===== STATISTICS =====

type MockStatisticsService struct {
	mock.Mock
}

func (m *MockStatisticsService) AlumniStatistics(ctx context.Context, year, course string) (*models.AlumniStatistics, error) {
	args := m.Called(ctx, year, course)
	stats, _ := args.Get(0).(*models.AlumniStatistics)
	return stats, args.Error(1)
}

func (m *MockStatisticsService) Statistics(ctx context.Context, year, course string, statsType models.StatsType) (*models.StatsSnapshot, error) {
	args := m.Called(ctx, year, course, statsType)
	snap, _ := args.Get(0).(*models.StatsSnapshot)
	return snap, args.Error(1)
}

func (m *MockStatisticsService) Generate(ctx context.Context, year, course string, statsType models.StatsType) (map[models.StatsType]*models.StatsSnapshot, error) {
	args := m.Called(ctx, year, course, statsType)
	snaps, _ := args.Get(0).(map[models.StatsType]*models.StatsSnapshot)
	return snaps, args.Error(1)
}

func (m *MockStatisticsService) DetailedAlumniData(ctx context.Context, year, course string) (*models.DetailedData, error) {
	args := m.Called(ctx, year, course)
	data, _ := args.Get(0).(*models.DetailedData)
	return data, args.Error(1)
}

func (m *MockStatisticsService) Export(ctx context.Context, year, course string, statsType models.StatsType, format services.ExportFormat) (*services.ExportFile, error) {
	args := m.Called(ctx, year, course, statsType, format)
	file, _ := args.Get(0).(*services.ExportFile)
	return file, args.Error(1)
}

// ===== IMPORT / EXPORT =====

type MockImportExportService struct {
	mock.Mock
}

func (m *MockImportExportService) ImportAlumni(ctx context.Context, req *services.ImportRequest) (*models.ImportSummary, error) {
	args := m.Called(ctx, req)
	summary, _ := args.Get(0).(*models.ImportSummary)
	return summary, args.Error(1)
}

func (m *MockImportExportService) ImportOJT(ctx context.Context, req *services.ImportRequest) (*models.ImportSummary, error) {
	args := m.Called(ctx, req)
	summary, _ := args.Get(0).(*models.ImportSummary)
	return summary, args.Error(1)
}

func (m *MockImportExportService) ListImports(ctx context.Context, kind models.ImportKind, limit int) ([]*models.ImportRecord, error) {
	args := m.Called(ctx, kind, limit)
	records, _ := args.Get(0).([]*models.ImportRecord)
	return records, args.Error(1)
}

func (m *MockImportExportService) AlumniTemplate(ctx context.Context) (*services.ExportFile, error) {
	args := m.Called(ctx)
	file, _ := args.Get(0).(*services.ExportFile)
	return file, args.Error(1)
}

func (m *MockImportExportService) ExportBatch(ctx context.Context, batchYear *int) (*services.ExportFile, error) {
	args := m.Called(ctx, batchYear)
	file, _ := args.Get(0).(*services.ExportFile)
	return file, args.Error(1)
}

// ===== NOTIFICATIONS =====

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) List(ctx context.Context, userID uint) ([]models.NotificationView, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]models.NotificationView)
	return items, args.Error(1)
}

func (m *MockNotificationService) Count(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationService) Delete(ctx context.Context, ids []uint, ownerID uint) (int64, error) {
	args := m.Called(ctx, ids, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationService) SendReminders(ctx context.Context, req *models.ReminderRequest) (*models.ReminderResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*models.ReminderResult)
	return result, args.Error(1)
}

func (m *MockNotificationService) RemindPending(ctx context.Context) (*models.ReminderResult, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).(*models.ReminderResult)
	return result, args.Error(1)
}

// ===== PROFILE =====

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) UpdateProfile(ctx context.Context, userID uint, update *services.ProfileUpdate) (*models.ProfileView, error) {
	args := m.Called(ctx, userID, update)
	view, _ := args.Get(0).(*models.ProfileView)
	return view, args.Error(1)
}

func (m *MockProfileService) GetBio(ctx context.Context, userID uint) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockProfileService) UpdateBio(ctx context.Context, userID uint, bio string) (string, error) {
	args := m.Called(ctx, userID, bio)
	return args.String(0), args.Error(1)
}

func (m *MockProfileService) UploadResume(ctx context.Context, userID uint, file *services.UploadedFile) (string, error) {
	args := m.Called(ctx, userID, file)
	return args.String(0), args.Error(1)
}

func (m *MockProfileService) DeleteResume(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockProfileService) DeletePicture(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

// ===== ALUMNI =====

type MockAlumniService struct {
	mock.Mock
}

func (m *MockAlumniService) List(ctx context.Context, filters repositories.AlumniFilters) ([]models.AlumniListItem, error) {
	args := m.Called(ctx, filters)
	items, _ := args.Get(0).([]models.AlumniListItem)
	return items, args.Error(1)
}

func (m *MockAlumniService) Search(ctx context.Context, query string) ([]models.AlumniListItem, error) {
	args := m.Called(ctx, query)
	items, _ := args.Get(0).([]models.AlumniListItem)
	return items, args.Error(1)
}

func (m *MockAlumniService) Years(ctx context.Context) ([]models.YearCount, error) {
	args := m.Called(ctx)
	years, _ := args.Get(0).([]models.YearCount)
	return years, args.Error(1)
}

func (m *MockAlumniService) OJTStatistics(ctx context.Context, year, course string) (*models.OJTStatistics, error) {
	args := m.Called(ctx, year, course)
	stats, _ := args.Get(0).(*models.OJTStatistics)
	return stats, args.Error(1)
}

func (m *MockAlumniService) UpdateOJTStatus(ctx context.Context, userID uint, status models.OJTStatus) (*models.OJTStatusUpdate, error) {
	args := m.Called(ctx, userID, status)
	result, _ := args.Get(0).(*models.OJTStatusUpdate)
	return result, args.Error(1)
}

func (m *MockAlumniService) OJTByYear(ctx context.Context, year int) ([]models.OJTListItem, error) {
	args := m.Called(ctx, year)
	items, _ := args.Get(0).([]models.OJTListItem)
	return items, args.Error(1)
}
