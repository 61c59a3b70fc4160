package repositories

import (
	"context"
)

// ===== SHARED FILTER STRUCTS =====

// AlumniFilters narrows user listings. Nil or empty fields are not applied.
type AlumniFilters struct {
	YearGraduated *int   `json:"year_graduated"`
	Course        string `json:"course"`
	Query         string `json:"q"`
	Limit         int    `json:"limit"`
	Offset        int    `json:"offset"`
}

type ResponseFilters struct {
	BatchYear *int  `json:"batch_year"`
	UserID    *uint `json:"user_id"`
}

// ===== SHARED STATISTICS STRUCTS =====

type FileQuestionStat struct {
	QuestionID uint    `json:"question_id"`
	Count      int     `json:"count"`
	TotalSize  int64   `json:"total_size"`
	SizeMB     float64 `json:"total_size_mb"`
}

type FileUploadStats struct {
	TotalFiles  int                `json:"total_files"`
	TotalSize   int64              `json:"total_size"`
	TotalSizeMB float64            `json:"total_size_mb"`
	UniqueUsers int                `json:"unique_users"`
	ByQuestion  []FileQuestionStat `json:"files_by_question"`
}

// ===== AGGREGATE =====

// Repository groups the per-entity repositories behind one handle.
type Repository interface {
	User() UserRepository
	Tracker() TrackerRepository
	Notification() NotificationRepository
	Import() ImportRepository

	// Ping checks the underlying connection.
	Ping(ctx context.Context) error
}
