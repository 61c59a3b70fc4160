package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionRadio    QuestionType = "radio"
	QuestionCheckbox QuestionType = "checkbox"
	QuestionMultiple QuestionType = "multiple"
	QuestionFile     QuestionType = "file"
)

// NeedsOptions reports whether the type renders a fixed option list.
func (t QuestionType) NeedsOptions() bool {
	return t == QuestionRadio || t == QuestionCheckbox || t == QuestionMultiple
}

func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionText, QuestionRadio, QuestionCheckbox, QuestionMultiple, QuestionFile:
		return true
	}
	return false
}

const DefaultTrackerFormTitle = "Alumni Tracker Form"

type QuestionCategory struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null;size:255"`
	Description string     `json:"description" gorm:"type:text"`
	Order       int        `json:"order" gorm:"column:sort_order;default:0"`
	Questions   []Question `json:"questions" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time  `json:"-"`
	UpdatedAt   time.Time  `json:"-"`
}

func (QuestionCategory) TableName() string {
	return "tracker_categories"
}

type Question struct {
	ID         uint                        `json:"id" gorm:"primaryKey"`
	CategoryID uint                        `json:"category_id" gorm:"not null;index"`
	Text       string                      `json:"text" gorm:"type:text;not null"`
	Type       QuestionType                `json:"type" gorm:"size:20;not null"`
	Options    datatypes.JSONSlice[string] `json:"options" gorm:"type:jsonb"`
	CreatedAt  time.Time                   `json:"-"`
	UpdatedAt  time.Time                   `json:"-"`
}

func (Question) TableName() string {
	return "tracker_questions"
}

type TrackerForm struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	Title              string    `json:"title" gorm:"size:255"`
	AcceptingResponses bool      `json:"accepting_responses" gorm:"default:true"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (TrackerForm) TableName() string {
	return "tracker_forms"
}

type TrackerResponse struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	UserID      uint              `json:"user_id" gorm:"not null;uniqueIndex"`
	Answers     datatypes.JSONMap `json:"answers" gorm:"type:jsonb"`
	SubmittedAt time.Time         `json:"submitted_at" gorm:"index"`

	User  *User               `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Files []TrackerFileUpload `json:"files,omitempty" gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE"`
}

func (TrackerResponse) TableName() string {
	return "tracker_responses"
}

type TrackerFileUpload struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	ResponseID       uint      `json:"response_id" gorm:"not null;index"`
	QuestionID       uint      `json:"question_id" gorm:"not null;index"`
	OriginalFilename string    `json:"original_filename" gorm:"size:255"`
	StoredPath       string    `json:"-" gorm:"size:500"`
	FileSize         int64     `json:"file_size"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

func (TrackerFileUpload) TableName() string {
	return "tracker_file_uploads"
}

// FileDescriptor replaces a file answer when responses are listed.
type FileDescriptor struct {
	Type       string `json:"type"`
	Filename   string `json:"filename"`
	FileURL    string `json:"file_url"`
	FileSize   int64  `json:"file_size"`
	UploadedAt string `json:"uploaded_at"`
}

// CategoryInput is the payload for creating or updating a category.
type CategoryInput struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	Order       *int   `json:"order,omitempty"`
}

// QuestionInput is the payload for creating or updating a question.
// CategoryID is ignored on update unless set.
type QuestionInput struct {
	CategoryID uint         `json:"category_id"`
	Text       string       `json:"text" validate:"required"`
	Type       QuestionType `json:"type" validate:"required,question_type"`
	Options    []string     `json:"options"`
}

// CleanOptions drops blank options, and all options for types that take none.
func (in QuestionInput) CleanOptions() []string {
	if !in.Type.NeedsOptions() {
		return []string{}
	}
	out := make([]string, 0, len(in.Options))
	for _, o := range in.Options {
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

// SubmitResult is returned after a tracker submission is stored.
type SubmitResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	UserID        uint   `json:"user_id"`
	FilesUploaded int    `json:"files_uploaded"`
}

// SubmissionStatus reports whether a user already answered the form.
type SubmissionStatus struct {
	HasSubmitted bool       `json:"has_submitted"`
	SubmittedAt  *time.Time `json:"submitted_at"`
}

// ResponseView is one listed response with file answers expanded.
type ResponseView struct {
	ID          uint                   `json:"id"`
	UserID      uint                   `json:"user_id"`
	Name        string                 `json:"name"`
	CTUID       string                 `json:"ctu_id"`
	Answers     map[string]interface{} `json:"answers"`
	SubmittedAt string                 `json:"submitted_at"`
}
