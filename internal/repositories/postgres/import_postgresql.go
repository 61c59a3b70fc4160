package postgres

import (
	"context"

	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/repositories"
	"gorm.io/gorm"
)

type ImportPostgreSQL struct {
	db *gorm.DB
}

func NewImportPostgreSQL(db *gorm.DB) repositories.ImportRepository {
	return &ImportPostgreSQL{db: db}
}

func (i *ImportPostgreSQL) Create(ctx context.Context, record *models.ImportRecord) error {
	return i.db.WithContext(ctx).Create(record).Error
}

func (i *ImportPostgreSQL) List(ctx context.Context, kind models.ImportKind, limit int) ([]*models.ImportRecord, error) {
	var records []*models.ImportRecord
	query := i.db.WithContext(ctx).Where("kind = ?", kind).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&records).Error
	return records, err
}
