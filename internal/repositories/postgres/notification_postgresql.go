package postgres

import (
	"context"
	"strings"

	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/repositories"
	"gorm.io/gorm"
)

type NotificationPostgreSQL struct {
	db *gorm.DB
}

func NewNotificationPostgreSQL(db *gorm.DB) repositories.NotificationRepository {
	return &NotificationPostgreSQL{db: db}
}

func (n *NotificationPostgreSQL) Create(ctx context.Context, notification *models.Notification) error {
	return n.db.WithContext(ctx).Omit("User").Create(notification).Error
}

func (n *NotificationPostgreSQL) CreateBatch(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return n.db.WithContext(ctx).Omit("User").CreateInBatches(notifications, 100).Error
}

func (n *NotificationPostgreSQL) ListByUser(ctx context.Context, userID uint, excludeTypes []string) ([]*models.Notification, error) {
	var notifications []*models.Notification
	query := n.db.WithContext(ctx).Where("user_id = ?", userID)

	if len(excludeTypes) > 0 {
		lowered := make([]string, len(excludeTypes))
		for i, t := range excludeTypes {
			lowered[i] = strings.ToLower(t)
		}
		query = query.Where("LOWER(notif_type) NOT IN ?", lowered)
	}

	err := query.Order("notif_date DESC, id DESC").Find(&notifications).Error
	return notifications, err
}

func (n *NotificationPostgreSQL) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := n.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (n *NotificationPostgreSQL) CountNotOwned(ctx context.Context, ids []uint, userID uint) (int64, error) {
	var count int64
	if len(ids) == 0 {
		return 0, nil
	}
	err := n.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id IN ? AND user_id <> ?", ids, userID).
		Count(&count).Error
	return count, err
}

func (n *NotificationPostgreSQL) DeleteByIDs(ctx context.Context, ids []uint, userID uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := n.db.WithContext(ctx).Where("id IN ?", ids)
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}
	result := query.Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
