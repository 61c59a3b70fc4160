package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/maeshaii/backend-wny/internal/auth"
	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/services"
	"github.com/maeshaii/backend-wny/internal/storage"
	"github.com/maeshaii/backend-wny/internal/utils"
	"github.com/maeshaii/backend-wny/internal/validator"
)

// RouterConfig is the HTTP-level infrastructure the routes need besides
// the services.
type RouterConfig struct {
	Tokens       *auth.TokenManager
	Revoker      auth.Revoker
	LoginLimiter *auth.LoginLimiter
	UploadDir    string
}

type HandlerManager struct {
	authHandler         *AuthHandler
	trackerHandler      *TrackerHandler
	statisticsHandler   *StatisticsHandler
	alumniHandler       *AlumniHandler
	notificationHandler *NotificationHandler
	profileHandler      *ProfileHandler

	config RouterConfig
	logger *slog.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	config RouterConfig,
) *HandlerManager {
	return &HandlerManager{
		authHandler:         NewAuthHandler(serviceManager.Auth(), validator, logger),
		trackerHandler:      NewTrackerHandler(serviceManager.Tracker(), validator, logger),
		statisticsHandler:   NewStatisticsHandler(serviceManager.Statistics(), logger),
		alumniHandler:       NewAlumniHandler(serviceManager.Alumni(), serviceManager.ImportExport(), logger),
		notificationHandler: NewNotificationHandler(serviceManager.Notification(), logger),
		profileHandler:      NewProfileHandler(serviceManager.Profile(), logger),
		config:              config,
		logger:              logger.Slog(),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// Uploaded pictures, resumes and tracker files
	if hm.config.UploadDir != "" {
		router.Static(storage.MediaPrefix(), hm.config.UploadDir)
	}

	staff := auth.RequireRole(models.RoleAdmin, models.RolePESO)
	ojtStaff := auth.RequireRole(models.RoleAdmin, models.RoleCoordinator)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public auth routes
		public := v1.Group("/auth")
		{
			login := []gin.HandlerFunc{hm.authHandler.Login}
			if hm.config.LoginLimiter != nil {
				login = append([]gin.HandlerFunc{hm.config.LoginLimiter.Middleware()}, login...)
			}
			public.POST("/login", login...)
			public.POST("/refresh", hm.authHandler.Refresh)
		}

		protected := v1.Group("")
		protected.Use(auth.Middleware(hm.config.Tokens, hm.config.Revoker, hm.logger))
		{
			protected.POST("/auth/logout", hm.authHandler.Logout)
			protected.GET("/auth/me", hm.authHandler.Me)

			// Tracker form
			tracker := protected.Group("/tracker")
			{
				tracker.GET("/questions", hm.trackerHandler.ListQuestions)
				tracker.POST("/questions", staff, hm.trackerHandler.CreateQuestion)
				tracker.PUT("/questions/:id", staff, hm.trackerHandler.UpdateQuestion)
				tracker.DELETE("/questions/:id", staff, hm.trackerHandler.DeleteQuestion)
				tracker.POST("/categories", staff, hm.trackerHandler.CreateCategory)
				tracker.PUT("/categories/:id", staff, hm.trackerHandler.UpdateCategory)
				tracker.DELETE("/categories/:id", staff, hm.trackerHandler.DeleteCategory)

				tracker.GET("/form", hm.trackerHandler.GetForm)
				tracker.PUT("/form", staff, hm.trackerHandler.UpdateFormTitle)
				tracker.GET("/form/accepting", hm.trackerHandler.GetAccepting)
				tracker.PUT("/form/accepting", staff, hm.trackerHandler.SetAccepting)

				tracker.POST("/responses", hm.trackerHandler.SubmitResponse)
				tracker.GET("/responses", staff, hm.trackerHandler.ListResponses)
				tracker.GET("/responses/user/:user_id", hm.trackerHandler.UserResponses)
				tracker.GET("/status/:user_id", hm.trackerHandler.Status)

				tracker.GET("/files/stats", staff, hm.trackerHandler.FileStats)
				tracker.GET("/files/:id", staff, hm.trackerHandler.DownloadFile)
			}

			// Statistics and reports
			statistics := protected.Group("/statistics", staff)
			{
				statistics.GET("/alumni", hm.statisticsHandler.AlumniStatistics)
				statistics.GET("/generate", hm.statisticsHandler.Generate)
				statistics.GET("/detailed", hm.statisticsHandler.DetailedAlumniData)
				statistics.GET("/export", hm.statisticsHandler.Export)
			}

			// Alumni directory and batch imports
			alumni := protected.Group("/alumni", staff)
			{
				alumni.GET("", hm.alumniHandler.ListAlumni)
				alumni.GET("/search", hm.alumniHandler.SearchAlumni)
				alumni.GET("/years", hm.alumniHandler.Years)
				alumni.GET("/export", hm.alumniHandler.ExportBatch)
				alumni.POST("/import", hm.alumniHandler.ImportAlumni)
				alumni.GET("/import/template", hm.alumniHandler.Template)
			}
			protected.GET("/imports", staff, hm.alumniHandler.ListImports)

			// Coordinator OJT data
			ojt := protected.Group("/ojt", ojtStaff)
			{
				ojt.GET("", hm.alumniHandler.OJTByYear)
				ojt.POST("/import", hm.alumniHandler.ImportOJT)
				ojt.GET("/statistics", hm.alumniHandler.OJTStatistics)
				ojt.PUT("/:user_id/status", hm.alumniHandler.UpdateOJTStatus)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", hm.notificationHandler.List)
				notifications.GET("/count", hm.notificationHandler.Count)
				notifications.POST("/delete", hm.notificationHandler.Delete)
				notifications.POST("/reminders", staff, hm.notificationHandler.SendReminders)
			}

			// Profile
			profile := protected.Group("/profile/:user_id")
			{
				profile.PUT("", hm.profileHandler.UpdateProfile)
				profile.GET("/bio", hm.profileHandler.GetBio)
				profile.PUT("/bio", hm.profileHandler.UpdateBio)
				profile.POST("/resume", hm.profileHandler.UploadResume)
				profile.DELETE("/resume", hm.profileHandler.DeleteResume)
				profile.DELETE("/picture", hm.profileHandler.DeletePicture)
			}
		}
	}
}
