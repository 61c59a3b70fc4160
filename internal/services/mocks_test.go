package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/repositories"
	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockRepository wires the per-entity mocks behind the aggregate
type MockRepository struct {
	users         *MockUserRepository
	trackers      *MockTrackerRepository
	notifications *MockNotificationRepository
	imports       *MockImportRepository
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		users:         new(MockUserRepository),
		trackers:      new(MockTrackerRepository),
		notifications: new(MockNotificationRepository),
		imports:       new(MockImportRepository),
	}
}

func (m *MockRepository) User() repositories.UserRepository                 { return m.users }
func (m *MockRepository) Tracker() repositories.TrackerRepository           { return m.trackers }
func (m *MockRepository) Notification() repositories.NotificationRepository { return m.notifications }
func (m *MockRepository) Import() repositories.ImportRepository             { return m.imports }
func (m *MockRepository) Ping(ctx context.Context) error                    { return nil }

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByCTUID(ctx context.Context, ctuID string) (*models.User, error) {
	args := m.Called(ctx, ctuID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.User, error) {
	args := m.Called(ctx, ids)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) GetByEmails(ctx context.Context, emails []string) ([]*models.User, error) {
	args := m.Called(ctx, emails)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) ExistsByCTUID(ctx context.Context, ctuID string) (bool, error) {
	args := m.Called(ctx, ctuID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockUserRepository) ListAlumni(ctx context.Context, filters repositories.AlumniFilters) ([]*models.User, error) {
	args := m.Called(ctx, filters)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) CountAlumniByYear(ctx context.Context) ([]models.YearCount, error) {
	args := m.Called(ctx)
	years, _ := args.Get(0).([]models.YearCount)
	return years, args.Error(1)
}

func (m *MockUserRepository) CountAlumniByStatus(ctx context.Context, filters repositories.AlumniFilters) (map[string]int, error) {
	args := m.Called(ctx, filters)
	counts, _ := args.Get(0).(map[string]int)
	return counts, args.Error(1)
}

func (m *MockUserRepository) ListAlumniWithoutResponse(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) ListOJT(ctx context.Context, year *int) ([]*models.User, error) {
	args := m.Called(ctx, year)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) CountOJTByStatus(ctx context.Context, filters repositories.AlumniFilters) (map[string]int, error) {
	args := m.Called(ctx, filters)
	counts, _ := args.Get(0).(map[string]int)
	return counts, args.Error(1)
}

func (m *MockUserRepository) CountOJTByYear(ctx context.Context) ([]models.YearCount, error) {
	args := m.Called(ctx)
	years, _ := args.Get(0).([]models.YearCount)
	return years, args.Error(1)
}

func (m *MockUserRepository) GetAccountType(ctx context.Context, role models.UserRole) (*models.AccountType, error) {
	args := m.Called(ctx, role)
	at, _ := args.Get(0).(*models.AccountType)
	return at, args.Error(1)
}

// MockTrackerRepository is a mock implementation of TrackerRepository
type MockTrackerRepository struct {
	mock.Mock
}

func (m *MockTrackerRepository) ListCategories(ctx context.Context) ([]models.QuestionCategory, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]models.QuestionCategory)
	return categories, args.Error(1)
}

func (m *MockTrackerRepository) GetCategory(ctx context.Context, id uint) (*models.QuestionCategory, error) {
	args := m.Called(ctx, id)
	category, _ := args.Get(0).(*models.QuestionCategory)
	return category, args.Error(1)
}

func (m *MockTrackerRepository) CreateCategory(ctx context.Context, category *models.QuestionCategory) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockTrackerRepository) UpdateCategory(ctx context.Context, category *models.QuestionCategory) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockTrackerRepository) DeleteCategory(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTrackerRepository) GetQuestion(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	question, _ := args.Get(0).(*models.Question)
	return question, args.Error(1)
}

func (m *MockTrackerRepository) CreateQuestion(ctx context.Context, question *models.Question) error {
	return m.Called(ctx, question).Error(0)
}

func (m *MockTrackerRepository) UpdateQuestion(ctx context.Context, question *models.Question) error {
	return m.Called(ctx, question).Error(0)
}

func (m *MockTrackerRepository) DeleteQuestion(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTrackerRepository) GetForm(ctx context.Context) (*models.TrackerForm, error) {
	args := m.Called(ctx)
	form, _ := args.Get(0).(*models.TrackerForm)
	return form, args.Error(1)
}

func (m *MockTrackerRepository) UpdateForm(ctx context.Context, form *models.TrackerForm) error {
	return m.Called(ctx, form).Error(0)
}

func (m *MockTrackerRepository) CreateResponse(ctx context.Context, response *models.TrackerResponse) error {
	return m.Called(ctx, response).Error(0)
}

func (m *MockTrackerRepository) GetResponseByUser(ctx context.Context, userID uint) (*models.TrackerResponse, error) {
	args := m.Called(ctx, userID)
	response, _ := args.Get(0).(*models.TrackerResponse)
	return response, args.Error(1)
}

func (m *MockTrackerRepository) HasResponse(ctx context.Context, userID uint) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTrackerRepository) ListResponses(ctx context.Context, filters repositories.ResponseFilters) ([]*models.TrackerResponse, error) {
	args := m.Called(ctx, filters)
	responses, _ := args.Get(0).([]*models.TrackerResponse)
	return responses, args.Error(1)
}

func (m *MockTrackerRepository) GetFile(ctx context.Context, id uint) (*models.TrackerFileUpload, error) {
	args := m.Called(ctx, id)
	file, _ := args.Get(0).(*models.TrackerFileUpload)
	return file, args.Error(1)
}

func (m *MockTrackerRepository) GetFileStats(ctx context.Context) (*repositories.FileUploadStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*repositories.FileUploadStats)
	return stats, args.Error(1)
}

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return m.Called(ctx, notification).Error(0)
}

func (m *MockNotificationRepository) CreateBatch(ctx context.Context, notifications []*models.Notification) error {
	return m.Called(ctx, notifications).Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID uint, excludeTypes []string) ([]*models.Notification, error) {
	args := m.Called(ctx, userID, excludeTypes)
	notifications, _ := args.Get(0).([]*models.Notification)
	return notifications, args.Error(1)
}

func (m *MockNotificationRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) CountNotOwned(ctx context.Context, ids []uint, userID uint) (int64, error) {
	args := m.Called(ctx, ids, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) DeleteByIDs(ctx context.Context, ids []uint, userID uint) (int64, error) {
	args := m.Called(ctx, ids, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockImportRepository is a mock implementation of ImportRepository
type MockImportRepository struct {
	mock.Mock
}

func (m *MockImportRepository) Create(ctx context.Context, record *models.ImportRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockImportRepository) List(ctx context.Context, kind models.ImportKind, limit int) ([]*models.ImportRecord, error) {
	args := m.Called(ctx, kind, limit)
	records, _ := args.Get(0).([]*models.ImportRecord)
	return records, args.Error(1)
}

// MockCacheService is a mock implementation of cache.CacheService
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCacheService) Get(ctx context.Context, key string, dest interface{}) error {
	return m.Called(ctx, key, dest).Error(0)
}

func (m *MockCacheService) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCacheService) DeletePattern(ctx context.Context, pattern string) error {
	return m.Called(ctx, pattern).Error(0)
}
