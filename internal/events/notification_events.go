package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	// Tracker events
	EventTrackerSubmitted    EventType = "tracker.submitted"
	EventTrackerReminderSent EventType = "tracker.reminder_sent"

	// Import events
	EventAlumniImported EventType = "alumni.imported"
	EventOJTImported    EventType = "ojt.imported"

	// Profile events
	EventProfileUpdated EventType = "profile.updated"
)

const (
	eventSource  = "wny-backend"
	eventVersion = "1.0"
)

// NotificationEvent is the envelope published for every domain event
type NotificationEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type TrackerSubmittedEvent struct {
	ResponseID    uint      `json:"response_id"`
	UserID        uint      `json:"user_id"`
	UserName      string    `json:"user_name"`
	UserStatus    string    `json:"user_status"`
	FilesUploaded int       `json:"files_uploaded"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

type TrackerReminderSentEvent struct {
	RecipientIDs []uint `json:"recipient_ids"`
	Subject      string `json:"subject"`
	Sent         int    `json:"sent"`
	Scheduled    bool   `json:"scheduled"`
}

type ImportCompletedEvent struct {
	ImportID     uint   `json:"import_id"`
	BatchYear    int    `json:"batch_year"`
	Course       string `json:"course"`
	ImportedBy   string `json:"imported_by"`
	CreatedCount int    `json:"created_count"`
	SkippedCount int    `json:"skipped_count"`
}

type ProfileUpdatedEvent struct {
	UserID     uint     `json:"user_id"`
	Fields     []string `json:"fields"`
	ProfilePic string   `json:"profile_pic,omitempty"`
}

func newEvent(eventType EventType, data interface{}) *NotificationEvent {
	return &NotificationEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewTrackerSubmittedEvent(responseID, userID uint, userName, userStatus string, files int, submittedAt time.Time) *NotificationEvent {
	return newEvent(EventTrackerSubmitted, TrackerSubmittedEvent{
		ResponseID:    responseID,
		UserID:        userID,
		UserName:      userName,
		UserStatus:    userStatus,
		FilesUploaded: files,
		SubmittedAt:   submittedAt,
	})
}

func NewTrackerReminderSentEvent(recipientIDs []uint, subject string, sent int, scheduled bool) *NotificationEvent {
	return newEvent(EventTrackerReminderSent, TrackerReminderSentEvent{
		RecipientIDs: recipientIDs,
		Subject:      subject,
		Sent:         sent,
		Scheduled:    scheduled,
	})
}

// NewImportCompletedEvent picks the alumni or OJT event type from ojt.
func NewImportCompletedEvent(ojt bool, payload ImportCompletedEvent) *NotificationEvent {
	eventType := EventAlumniImported
	if ojt {
		eventType = EventOJTImported
	}
	return newEvent(eventType, payload)
}

func NewProfileUpdatedEvent(userID uint, fields []string, profilePic string) *NotificationEvent {
	return newEvent(EventProfileUpdated, ProfileUpdatedEvent{
		UserID:     userID,
		Fields:     fields,
		ProfilePic: profilePic,
	})
}

func GenerateEventID() string {
	return uuid.NewString()
}
