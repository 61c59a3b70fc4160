package repositories

import (
	"context"

	"github.com/maeshaii/backend-wny/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateBatch(ctx context.Context, notifications []*models.Notification) error

	// ListByUser returns newest first, skipping the given notification types.
	ListByUser(ctx context.Context, userID uint, excludeTypes []string) ([]*models.Notification, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	// CountNotOwned counts the given notifications that belong to someone
	// other than userID.
	CountNotOwned(ctx context.Context, ids []uint, userID uint) (int64, error)
	// DeleteByIDs scopes the delete to userID unless it is zero.
	DeleteByIDs(ctx context.Context, ids []uint, userID uint) (int64, error)
}
