package postgres

import (
	"context"
	"fmt"

	"github.com/maeshaii/backend-wny/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db           *gorm.DB
	user         repositories.UserRepository
	tracker      repositories.TrackerRepository
	notification repositories.NotificationRepository
	imports      repositories.ImportRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:           db,
		user:         NewUserPostgreSQL(db),
		tracker:      NewTrackerPostgreSQL(db),
		notification: NewNotificationPostgreSQL(db),
		imports:      NewImportPostgreSQL(db),
	}
}

func (r *repository) User() repositories.UserRepository                 { return r.user }
func (r *repository) Tracker() repositories.TrackerRepository           { return r.tracker }
func (r *repository) Notification() repositories.NotificationRepository { return r.notification }
func (r *repository) Import() repositories.ImportRepository             { return r.imports }

func (r *repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
