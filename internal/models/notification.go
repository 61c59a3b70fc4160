package models

import "time"

const (
	// NotificationTypeCCICT is the sender used for tracker related messages.
	NotificationTypeCCICT   = "CCICT"
	NotificationTypeTracker = "tracker"

	DefaultReminderSubject = "Tracker Form Reminder"
	ThankYouSubject        = "Thank You for Completing the Tracker Form"
)

type Notification struct {
	ID      uint      `json:"id" gorm:"primaryKey"`
	UserID  uint      `json:"user_id" gorm:"not null;index"`
	Type    string    `json:"type" gorm:"column:notif_type;size:50;index"`
	Subject string    `json:"subject" gorm:"size:255"`
	Content string    `json:"content" gorm:"column:notifi_content;type:text"`
	Date    time.Time `json:"date" gorm:"column:notif_date;index"`

	User *User `json:"-" gorm:"foreignKey:UserID"`
}

func (Notification) TableName() string {
	return "notifications"
}

// NotificationView is a listed notification. Link fields are set when the
// content references an alumni profile.
type NotificationView struct {
	ID         uint   `json:"id"`
	Type       string `json:"type"`
	Subject    string `json:"subject"`
	Content    string `json:"content"`
	Date       string `json:"date"`
	Link       string `json:"link,omitempty"`
	LinkUserID *uint  `json:"link_user_id,omitempty"`
}

// ReminderRequest targets users by id, or by email when no ids are given.
type ReminderRequest struct {
	Emails  []string `json:"emails"`
	UserIDs []uint   `json:"user_ids"`
	Message string   `json:"message"`
	Subject string   `json:"subject"`
}

type ReminderResult struct {
	Success bool `json:"success"`
	Sent    int  `json:"sent"`
	Total   int  `json:"total"`
}
