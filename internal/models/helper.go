package models

import "time"

const (
	// DateLayout is the canonical date format exchanged with clients.
	DateLayout = "2006-01-02"
	// TimestampLayout is used for upload and notification timestamps.
	TimestampLayout = "2006-01-02 15:04:05"
)

// FilterAll is the wildcard accepted for year and course filters.
const FilterAll = "ALL"

func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

func IntPtr(v int) *int {
	return &v
}

func TimePtr(t time.Time) *time.Time {
	return &t
}
