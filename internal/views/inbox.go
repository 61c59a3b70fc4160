package views

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maeshaii/backend-wny/internal/auth"
	"github.com/maeshaii/backend-wny/internal/models"
)

type NotificationAPI interface {
	Notifications(ctx context.Context, userID uint) ([]models.NotificationView, error)
	DeleteNotifications(ctx context.Context, ids []uint) (int64, error)
}

// Inbox is the notifications list of the signed-in user.
type Inbox struct {
	api     NotificationAPI
	session *auth.Session
	logger  *slog.Logger
	items   []models.NotificationView
}

func NewInbox(api NotificationAPI, session *auth.Session, logger *slog.Logger) *Inbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inbox{api: api, session: session, logger: logger}
}

// Load replaces the list with the server's, newest first. On failure the
// list is left empty.
func (in *Inbox) Load(ctx context.Context) error {
	if !in.session.IsAuthenticated() {
		in.items = nil
		return auth.ErrNoSession
	}
	items, err := in.api.Notifications(ctx, in.session.UserID())
	if err != nil {
		in.items = nil
		in.logger.Error("Failed to load notifications", "user_id", in.session.UserID(), "error", err)
		return fmt.Errorf("failed to load notifications: %w", err)
	}
	in.items = items
	return nil
}

func (in *Inbox) Items() []models.NotificationView {
	return append([]models.NotificationView(nil), in.items...)
}

func (in *Inbox) Len() int {
	return len(in.items)
}

// Delete removes the notifications server side and then drops them from the
// local list. Nothing changes locally if the request fails.
func (in *Inbox) Delete(ctx context.Context, ids ...uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	deleted, err := in.api.DeleteNotifications(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications: %w", err)
	}

	gone := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		gone[id] = struct{}{}
	}
	kept := in.items[:0]
	for _, n := range in.items {
		if _, ok := gone[n.ID]; !ok {
			kept = append(kept, n)
		}
	}
	in.items = kept
	return deleted, nil
}
