package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/maeshaii/backend-wny/internal/events"
	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/repositories"
)

// Reminder placeholders replaced per recipient
const (
	PlaceholderUserName    = "[User's Name]"
	PlaceholderTrackerLink = "[Tracker Form Link]"
)

// DefaultReminderMessage is used by the scheduled reminder job.
const DefaultReminderMessage = "Hello " + PlaceholderUserName + ", please take a few minutes to complete the alumni tracker form: " + PlaceholderTrackerLink

var profileLinkPattern = regexp.MustCompile(`/alumni/profile/(\d+)`)

// NotificationService handles the notification inbox and tracker reminders
type NotificationService interface {
	// Inbox
	List(ctx context.Context, userID uint) ([]models.NotificationView, error)
	Count(ctx context.Context, userID uint) (int64, error)
	// Delete removes notifications owned by ownerID. An ownerID of zero
	// deletes regardless of owner.
	Delete(ctx context.Context, ids []uint, ownerID uint) (int64, error)

	// Reminders
	SendReminders(ctx context.Context, req *models.ReminderRequest) (*models.ReminderResult, error)
	RemindPending(ctx context.Context) (*models.ReminderResult, error)
}

type notificationService struct {
	repo           repositories.Repository
	mailer         Mailer
	publisher      events.EventPublisher
	trackerFormURL string
	logger         *slog.Logger
	now            func() time.Time
}

func NewNotificationService(repo repositories.Repository, mailer Mailer, publisher events.EventPublisher, trackerFormURL string, logger *slog.Logger) NotificationService {
	if mailer == nil {
		mailer = disabledMailer{}
	}
	return &notificationService{
		repo:           repo,
		mailer:         mailer,
		publisher:      publisher,
		trackerFormURL: trackerFormURL,
		logger:         logger,
		now:            time.Now,
	}
}

// ===== INBOX =====

// List returns the inbox newest first. Accounts other than alumni never
// see tracker notifications.
func (s *notificationService) List(ctx context.Context, userID uint) ([]models.NotificationView, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	var exclude []string
	if user.Role() != models.RoleAlumni {
		exclude = []string{models.NotificationTypeTracker}
	}
	notifications, err := s.repo.Notification().ListByUser(ctx, userID, exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	views := make([]models.NotificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, NotificationViewOf(n))
	}
	return views, nil
}

// NotificationViewOf renders a notification for listing.
func NotificationViewOf(n *models.Notification) models.NotificationView {
	view := models.NotificationView{
		ID:      n.ID,
		Type:    n.Type,
		Subject: n.Subject,
		Content: n.Content,
		Date:    models.FormatTimestamp(n.Date),
	}
	if view.Subject == "" {
		view.Subject = models.DefaultReminderSubject
	}
	if link, id, ok := ExtractProfileLink(n.Content); ok {
		view.Link = link
		view.LinkUserID = &id
	}
	return view
}

// ExtractProfileLink finds the first /alumni/profile/<id> reference.
func ExtractProfileLink(content string) (string, uint, bool) {
	m := profileLinkPattern.FindStringSubmatch(content)
	if m == nil {
		return "", 0, false
	}
	id, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return fmt.Sprintf("/alumni/profile/%d", id), uint(id), true
}

func (s *notificationService) Count(ctx context.Context, userID uint) (int64, error) {
	count, err := s.repo.Notification().CountByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

func (s *notificationService) Delete(ctx context.Context, ids []uint, ownerID uint) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: No notification IDs provided", ErrValidationFailed)
	}
	if ownerID != 0 {
		foreign, err := s.repo.Notification().CountNotOwned(ctx, ids, ownerID)
		if err != nil {
			return 0, fmt.Errorf("failed to check notification owners: %w", err)
		}
		if foreign > 0 {
			s.logger.Warn("Rejected delete of foreign notifications", "user_id", ownerID, "foreign", foreign)
			return 0, NewPermissionError(ownerID, 0, "notification", "delete", "notifications belong to another user")
		}
	}
	deleted, err := s.repo.Notification().DeleteByIDs(ctx, ids, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications: %w", err)
	}
	s.logger.Info("Notifications deleted", "requested", len(ids), "deleted", deleted)
	return deleted, nil
}

// ===== REMINDERS =====

func (s *notificationService) SendReminders(ctx context.Context, req *models.ReminderRequest) (*models.ReminderResult, error) {
	if req == nil || (len(req.UserIDs) == 0 && len(req.Emails) == 0) || strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: Missing users or message", ErrValidationFailed)
	}

	var users []*models.User
	var err error
	if len(req.UserIDs) > 0 {
		users, err = s.repo.User().GetByIDs(ctx, req.UserIDs)
	} else {
		users, err = s.repo.User().GetByEmails(ctx, req.Emails)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recipients: %w", err)
	}

	return s.remind(ctx, users, req.Message, req.Subject, false), nil
}

// RemindPending reminds every alumnus without a tracker response.
func (s *notificationService) RemindPending(ctx context.Context) (*models.ReminderResult, error) {
	users, err := s.repo.User().ListAlumniWithoutResponse(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending alumni: %w", err)
	}
	return s.remind(ctx, users, DefaultReminderMessage, "", true), nil
}

func (s *notificationService) remind(ctx context.Context, users []*models.User, message, subject string, scheduled bool) *models.ReminderResult {
	if strings.TrimSpace(subject) == "" {
		subject = models.DefaultReminderSubject
	}
	now := s.now()

	sent := 0
	recipients := make([]uint, 0, len(users))
	for _, user := range users {
		content := PersonalizeReminder(message, user, s.trackerFormURL)
		notification := &models.Notification{
			UserID:  user.ID,
			Type:    models.NotificationTypeCCICT,
			Subject: subject,
			Content: content,
			Date:    now,
		}
		if err := s.repo.Notification().Create(ctx, notification); err != nil {
			s.logger.Warn("Failed to create reminder", "user_id", user.ID, "error", err)
			continue
		}
		sent++
		recipients = append(recipients, user.ID)

		if s.mailer.Enabled() && user.Email != "" {
			if err := s.mailer.Send(ctx, user.Email, subject, content); err != nil {
				s.logger.Warn("Failed to email reminder", "user_id", user.ID, "error", err)
			}
		}
	}

	s.logger.Info("Tracker reminders sent", "sent", sent, "total", len(users), "scheduled", scheduled)

	if s.publisher != nil && sent > 0 {
		event := events.NewTrackerReminderSentEvent(recipients, subject, sent, scheduled)
		if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
			s.logger.Warn("Failed to publish reminder event", "error", err)
		}
	}

	return &models.ReminderResult{Success: true, Sent: sent, Total: len(users)}
}

// PersonalizeReminder fills the name and tracker link placeholders.
func PersonalizeReminder(message string, user *models.User, trackerFormURL string) string {
	link := fmt.Sprintf("%s?user=%d", trackerFormURL, user.ID)
	if u, err := url.Parse(trackerFormURL); err == nil {
		q := u.Query()
		q.Set("user", strconv.FormatUint(uint64(user.ID), 10))
		u.RawQuery = q.Encode()
		link = u.String()
	}
	out := strings.ReplaceAll(message, PlaceholderUserName, user.ShortName())
	return strings.ReplaceAll(out, PlaceholderTrackerLink, link)
}
