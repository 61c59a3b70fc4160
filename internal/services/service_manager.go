package services

import (
	"log/slog"
	"time"

	"github.com/maeshaii/backend-wny/internal/auth"
	"github.com/maeshaii/backend-wny/internal/cache"
	"github.com/maeshaii/backend-wny/internal/events"
	"github.com/maeshaii/backend-wny/internal/repositories"
	"github.com/maeshaii/backend-wny/internal/storage"
	"github.com/maeshaii/backend-wny/internal/validator"
)

// ServiceManager hands out the services used by the HTTP handlers
type ServiceManager interface {
	Auth() AuthService
	Tracker() TrackerService
	Statistics() StatisticsService
	ImportExport() ImportExportService
	Notification() NotificationService
	Profile() ProfileService
	Alumni() AlumniService
}

// Dependencies are the shared infrastructure the services are built on.
type Dependencies struct {
	Repo      repositories.Repository
	Cache     cache.CacheService
	Store     storage.FileStore
	Publisher events.EventPublisher
	Mailer    Mailer
	Tokens    *auth.TokenManager
	Revoker   auth.Revoker
	Logger    *slog.Logger
	Validator *validator.Validator

	MaxUploadBytes int64
	StatsCacheTTL  time.Duration
	TrackerFormURL string
}

type serviceManager struct {
	auth         AuthService
	tracker      TrackerService
	statistics   StatisticsService
	importExport ImportExportService
	notification NotificationService
	profile      ProfileService
	alumni       AlumniService
}

func NewServiceManager(deps Dependencies) ServiceManager {
	return &serviceManager{
		auth:         NewAuthService(deps.Repo, deps.Tokens, deps.Revoker, deps.Logger, deps.Validator),
		tracker:      NewTrackerService(deps.Repo, deps.Store, deps.Cache, deps.Publisher, deps.Logger, deps.Validator, deps.MaxUploadBytes),
		statistics:   NewStatisticsService(deps.Repo, deps.Cache, deps.StatsCacheTTL, deps.Logger),
		importExport: NewImportExportService(deps.Repo, deps.Cache, deps.Publisher, deps.Logger),
		notification: NewNotificationService(deps.Repo, deps.Mailer, deps.Publisher, deps.TrackerFormURL, deps.Logger),
		profile:      NewProfileService(deps.Repo, deps.Store, deps.Publisher, deps.Logger, deps.MaxUploadBytes),
		alumni:       NewAlumniService(deps.Repo, deps.Store, deps.Logger),
	}
}

func (m *serviceManager) Auth() AuthService                 { return m.auth }
func (m *serviceManager) Tracker() TrackerService           { return m.tracker }
func (m *serviceManager) Statistics() StatisticsService     { return m.statistics }
func (m *serviceManager) ImportExport() ImportExportService { return m.importExport }
func (m *serviceManager) Notification() NotificationService { return m.notification }
func (m *serviceManager) Profile() ProfileService           { return m.profile }
func (m *serviceManager) Alumni() AlumniService             { return m.alumni }
