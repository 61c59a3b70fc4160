package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const reminderJobTimeout = 5 * time.Minute

// StartReminderScheduler runs RemindPending on the given cron schedule. An empty
// schedule disables the job and returns nil. Stop the returned cron on shutdown.
func StartReminderScheduler(schedule string, notifications NotificationService, logger *slog.Logger) (*cron.Cron, error) {
	if schedule == "" {
		return nil, nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reminderJobTimeout)
		defer cancel()

		start := time.Now()
		result, err := notifications.RemindPending(ctx)
		if err != nil {
			logger.Error("Scheduled tracker reminders failed", "error", err)
			return
		}
		logger.Info("Scheduled tracker reminders finished",
			"sent", result.Sent,
			"total", result.Total,
			"duration", time.Since(start))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}

	c.Start()
	logger.Info("Tracker reminder job scheduled", "cron", schedule)
	return c, nil
}
