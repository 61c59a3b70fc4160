package services

import (
	"testing"
	"time"

	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/tracker"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmployment(t *testing.T) {
	assert.Equal(t, models.StatusEmployed, NormalizeEmployment(" Yes "))
	assert.Equal(t, models.StatusEmployed, NormalizeEmployment("Currently Employed"))
	assert.Equal(t, models.StatusUnemployed, NormalizeEmployment("NO"))
	assert.Equal(t, "self-employed", NormalizeEmployment("Self-Employed"))
}

func TestNormalizeYesNo(t *testing.T) {
	assert.Equal(t, "yes", NormalizeYesNo("TRUE"))
	assert.Equal(t, "no", NormalizeYesNo("0"))
	assert.Equal(t, "maybe", NormalizeYesNo(" Maybe"))
}

func TestProfileUpdates(t *testing.T) {
	categories := []models.QuestionCategory{
		{ID: 1, Title: "General", Questions: []models.Question{
			{ID: 1, Text: "Email", Type: models.QuestionText},
			{ID: 2, Text: "Course", Type: models.QuestionText},
			{ID: 3, Text: "Civil Status", Type: models.QuestionRadio},
		}},
		{ID: 2, Title: "Employment", Questions: []models.Question{
			{ID: 10, Text: "Are you presently employed?", Type: models.QuestionRadio},
			{ID: 11, Text: "Current position", Type: models.QuestionText},
			{ID: 12, Text: "Date started", Type: models.QuestionText},
			{ID: 13, Text: "Company address of your employer", Type: models.QuestionText},
			{ID: 14, Text: "Awards and recognition", Type: models.QuestionCheckbox},
			{ID: 15, Text: "Supporting document for awards", Type: models.QuestionFile},
		}},
		{ID: 3, Title: "Further Study", Questions: []models.Question{
			{ID: 20, Text: "Do you pursue further study?", Type: models.QuestionRadio},
		}},
	}
	answers := map[string]interface{}{
		"1":  "ana@example.com",
		"2":  "BSCS",
		"3":  "Married",
		"10": "No",
		"11": "Analyst",
		"12": "03/15/2023",
		"13": "Cebu IT Park",
		"14": []interface{}{"Dean's lister", "Best thesis"},
		"15": map[string]interface{}{"type": "file"},
		"20": "yes",
	}
	files := []models.TrackerFileUpload{{QuestionID: 15, StoredPath: "tracker_uploads/award.pdf"}}

	fields := profileUpdates(tracker.Compile(categories), questionIndex(categories), answers, files, nil)

	assert.Equal(t, map[string]interface{}{
		"email":                                  "ana@example.com",
		"civil_status":                           "Married",
		"user_status":                            models.StatusUnemployed,
		"position_current":                       "Analyst",
		"date_started":                           time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC),
		"awards_recognition_current":             "Dean's lister, Best thesis",
		"pursue_further_study":                   "yes",
		"supporting_document_awards_recognition": "/media/tracker_uploads/award.pdf",
	}, fields)
}

func TestProfileUpdatesDropsUnparseableDate(t *testing.T) {
	categories := []models.QuestionCategory{{ID: 1, Questions: []models.Question{
		{ID: 1, Text: "Date hired", Type: models.QuestionText},
	}}}

	fields := profileUpdates(tracker.Compile(categories), questionIndex(categories),
		map[string]interface{}{"1": "last summer"}, nil, nil)

	assert.Empty(t, fields)
}
