package repositories

import (
	"context"

	"github.com/maeshaii/backend-wny/internal/models"
)

// ImportRepository stores the audit trail of spreadsheet imports
type ImportRepository interface {
	Create(ctx context.Context, record *models.ImportRecord) error
	List(ctx context.Context, kind models.ImportKind, limit int) ([]*models.ImportRecord, error)
}
