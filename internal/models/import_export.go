package models

import (
	"time"

	"gorm.io/datatypes"
)

type ImportStatus string

const (
	ImportCompleted ImportStatus = "Completed"
	ImportPartial   ImportStatus = "Partial"
	ImportFailed    ImportStatus = "Failed"
)

// ImportKind separates alumni batches from OJT batches in the audit table.
type ImportKind string

const (
	ImportKindAlumni ImportKind = "alumni"
	ImportKindOJT    ImportKind = "ojt"
)

type ImportRecord struct {
	ID              uint                        `json:"id" gorm:"primaryKey"`
	Kind            ImportKind                  `json:"kind" gorm:"size:20;index"`
	ImportedBy      string                      `json:"imported_by" gorm:"size:255"`
	BatchYear       int                         `json:"batch_year" gorm:"index"`
	Course          string                      `json:"course" gorm:"size:100"`
	FileName        string                      `json:"file_name" gorm:"size:255"`
	RecordsImported int                         `json:"records_imported"`
	Status          ImportStatus                `json:"status" gorm:"size:20;default:Completed"`
	Errors          datatypes.JSONSlice[string] `json:"errors" gorm:"type:jsonb"`
	CreatedAt       time.Time                   `json:"created_at"`
}

func (ImportRecord) TableName() string {
	return "import_records"
}

type ImportValidationError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value"`
	Code    string `json:"code"`
}

// ImportSummary is returned by alumni and OJT imports.
type ImportSummary struct {
	Success      bool     `json:"success"`
	Message      string   `json:"message"`
	CreatedCount int      `json:"created_count"`
	SkippedCount int      `json:"skipped_count"`
	Errors       []string `json:"errors"`
}
