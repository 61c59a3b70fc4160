package pkg

import (
	"context"
	"errors"
	"fmt"

	"github.com/maeshaii/backend-wny/internal/config"
	"github.com/maeshaii/backend-wny/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.IsProduction() {
		logLevel = logger.Error
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.AccountType{},
		&models.User{},
		&models.QuestionCategory{},
		&models.Question{},
		&models.TrackerForm{},
		&models.TrackerResponse{},
		&models.TrackerFileUpload{},
		&models.Notification{},
		&models.ImportRecord{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Seed inserts the fixed account types and the tracker form row if missing.
func Seed(ctx context.Context, db *gorm.DB) error {
	accountTypes := []models.AccountType{
		{Admin: true},
		{PESO: true},
		{User: true},
		{Coordinator: true},
		{OJT: true},
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, at := range accountTypes {
			at := at
			if err := tx.Where(&at).FirstOrCreate(&at).Error; err != nil {
				return fmt.Errorf("failed to seed account type: %w", err)
			}
		}

		var form models.TrackerForm
		err := tx.First(&form).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			form = models.TrackerForm{Title: models.DefaultTrackerFormTitle, AcceptingResponses: true}
			return tx.Create(&form).Error
		}
		return err
	})
}
