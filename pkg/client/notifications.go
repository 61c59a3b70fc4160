package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/maeshaii/backend-wny/internal/models"
)

type notificationsResponse struct {
	Notifications []models.NotificationView `json:"notifications"`
}

type deleteNotificationsRequest struct {
	IDs []uint `json:"notification_ids"`
}

type deleteNotificationsResponse struct {
	Success      bool  `json:"success"`
	DeletedCount int64 `json:"deleted_count"`
}

func userQuery(userID uint) url.Values {
	return url.Values{"user_id": []string{strconv.FormatUint(uint64(userID), 10)}}
}

func (c *Client) Notifications(ctx context.Context, userID uint) ([]models.NotificationView, error) {
	var resp notificationsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/notifications", userQuery(userID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

func (c *Client) NotificationCount(ctx context.Context, userID uint) (int64, error) {
	var resp struct {
		Count int64 `json:"count"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/notifications/count", userQuery(userID), nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// DeleteNotifications removes notifications by id and returns how many went.
func (c *Client) DeleteNotifications(ctx context.Context, ids []uint) (int64, error) {
	var resp deleteNotificationsResponse
	if err := c.doJSON(ctx, http.MethodPost, "/notifications/delete", nil, deleteNotificationsRequest{IDs: ids}, &resp); err != nil {
		return 0, err
	}
	return resp.DeletedCount, nil
}

func (c *Client) SendReminders(ctx context.Context, in models.ReminderRequest) (*models.ReminderResult, error) {
	var result models.ReminderResult
	if err := c.doJSON(ctx, http.MethodPost, "/notifications/reminders", nil, in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
