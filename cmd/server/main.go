package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maeshaii/backend-wny/internal/auth"
	"github.com/maeshaii/backend-wny/internal/cache"
	"github.com/maeshaii/backend-wny/internal/config"
	"github.com/maeshaii/backend-wny/internal/handlers"
	"github.com/maeshaii/backend-wny/internal/repositories/postgres"
	"github.com/maeshaii/backend-wny/internal/services"
	"github.com/maeshaii/backend-wny/internal/storage"
	"github.com/maeshaii/backend-wny/internal/utils"
	"github.com/maeshaii/backend-wny/internal/validator"
	"github.com/maeshaii/backend-wny/pkg"
)

const (
	shutdownTimeout      = 15 * time.Second
	limiterCleanupPeriod = 10 * time.Minute
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.NewLogger("development").LogError(err, "Failed to load configuration")
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)
	slogger := logger.Slog()

	if err := run(cfg, logger); err != nil {
		slogger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger utils.Logger) error {
	slogger := logger.Slog()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := pkg.Migrate(db); err != nil {
		return err
	}
	if err := pkg.Seed(ctx, db); err != nil {
		return err
	}

	// Redis backs the statistics cache and the token denylist
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	cacheService := cache.NewRedisCache(redisClient, slogger)

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			slogger.Error("Failed to close event publisher", "error", err)
		}
	}()

	store, err := storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		return err
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiration, cfg.RefreshTTL)
	revoker := auth.NewCacheRevoker(cacheService)
	limiter := auth.NewLoginLimiter(cfg.LoginRateLimit, cfg.LoginBurst)
	v := validator.New()

	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:      postgres.NewRepository(db),
		Cache:     cacheService,
		Store:     store,
		Publisher: publisher,
		Mailer:    services.NewMailer(cfg.Reminders.ResendAPIKey, cfg.Reminders.FromEmail, slogger),
		Tokens:    tokens,
		Revoker:   revoker,
		Logger:    slogger,
		Validator: v,

		MaxUploadBytes: cfg.MaxUploadBytes,
		StatsCacheTTL:  cfg.StatsCacheTTL,
		TrackerFormURL: cfg.Reminders.TrackerFormURL,
	})

	scheduler, err := services.StartReminderScheduler(cfg.Reminders.Cron, serviceManager.Notification(), slogger)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() { <-scheduler.Stop().Done() }()
	}

	go func() {
		ticker := time.NewTicker(limiterCleanupPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := limiter.Cleanup(limiterCleanupPeriod); removed > 0 {
					slogger.Debug("Pruned idle login limiters", "removed", removed)
				}
			}
		}
	}()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogger(logger))
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	handlers.NewHandlerManager(serviceManager, v, logger, handlers.RouterConfig{
		Tokens:       tokens,
		Revoker:      revoker,
		LoginLimiter: limiter,
		UploadDir:    cfg.UploadDir,
	}).SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slogger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slogger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
