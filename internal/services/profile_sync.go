package services

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/storage"
	"github.com/maeshaii/backend-wny/internal/tracker"
)

// Answers that normalize the employment and further-study answers
var (
	employedAnswers   = map[string]bool{"yes": true, "employed": true, "presently employed": true, "currently employed": true}
	unemployedAnswers = map[string]bool{"no": true, "unemployed": true, "not employed": true}
	yesAnswers        = map[string]bool{"yes": true, "true": true, "1": true}
	noAnswers         = map[string]bool{"no": true, "false": true, "0": true}
)

// Question text keyword to users column, first match wins
var profileColumns = []struct {
	keywords []string
	column   string
}{
	{[]string{"company name", "name of company", "name of employer"}, "company_name_current"},
	{[]string{"position"}, "position_current"},
	{[]string{"sector"}, "sector_current"},
	{[]string{"employment duration", "how long"}, "employment_duration_current"},
	{[]string{"salary", "income"}, "salary_current"},
	{[]string{"award", "recognition"}, "awards_recognition_current"},
	{[]string{"reason"}, "unemployment_reason"},
	{[]string{"school name", "name of school"}, "school_name"},
	{[]string{"date started", "date hired", "start date"}, "date_started"},
}

// Contact fields the respondent may correct through the form
var contactColumns = map[tracker.UserField]string{
	tracker.FieldEmail:       "email",
	tracker.FieldPhone:       "phone_num",
	tracker.FieldAddress:     "address",
	tracker.FieldCivilStatus: "civil_status",
	tracker.FieldSocialMedia: "social_media",
}

// NormalizeEmployment maps the "presently employed" answer to a user status.
// Unrecognized answers are kept lowercased.
func NormalizeEmployment(answer string) string {
	v := strings.ToLower(strings.TrimSpace(answer))
	switch {
	case employedAnswers[v]:
		return models.StatusEmployed
	case unemployedAnswers[v]:
		return models.StatusUnemployed
	}
	return v
}

// NormalizeYesNo maps the further-study answer to yes or no.
func NormalizeYesNo(answer string) string {
	v := strings.ToLower(strings.TrimSpace(answer))
	switch {
	case yesAnswers[v]:
		return "yes"
	case noAnswers[v]:
		return "no"
	}
	return v
}

// profileUpdates derives the user columns to update from a submission.
func profileUpdates(rules *tracker.RuleSet, questions map[uint]models.Question, answers map[string]interface{}, files []models.TrackerFileUpload, store storage.FileStore) map[string]interface{} {
	fields := make(map[string]interface{})

	if id, ok := rules.EmploymentQuestion(); ok {
		if v := answerText(answers[strconv.FormatUint(uint64(id), 10)]); v != "" {
			fields["user_status"] = NormalizeEmployment(v)
		}
	}
	if id, ok := rules.FurtherStudyQuestion(); ok {
		if v := answerText(answers[strconv.FormatUint(uint64(id), 10)]); v != "" {
			fields["pursue_further_study"] = NormalizeYesNo(v)
		}
	}

	ids := make([]uint, 0, len(questions))
	for id := range questions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		q := questions[id]
		if q.Type == models.QuestionFile || rules.IsReadOnly(q) {
			continue
		}
		value := answerText(answers[strconv.FormatUint(uint64(id), 10)])
		if value == "" || value == noAnswer {
			continue
		}
		text := strings.ToLower(q.Text)
		if strings.Contains(text, "presently employed") || strings.Contains(text, "further study") ||
			strings.Contains(text, "high position") || strings.Contains(text, "key position") {
			continue
		}

		if column := matchProfileColumn(text); column != "" {
			setOnce(fields, column, profileValue(column, value))
			continue
		}
		if strings.Contains(text, "company") || strings.Contains(text, "employer") {
			continue
		}
		if field, ok := tracker.FieldForQuestion(q.Text); ok {
			if column, ok := contactColumns[field]; ok {
				setOnce(fields, column, value)
			}
		}
	}

	for _, f := range files {
		q, ok := questions[f.QuestionID]
		if !ok || !strings.Contains(strings.ToLower(q.Text), "supporting document") {
			continue
		}
		column := "supporting_document_current"
		if text := strings.ToLower(q.Text); strings.Contains(text, "award") || strings.Contains(text, "recognition") {
			column = "supporting_document_awards_recognition"
		}
		url := storage.MediaPath(f.StoredPath)
		if store != nil {
			url = store.URL(f.StoredPath)
		}
		setOnce(fields, column, url)
	}

	return fields
}

func matchProfileColumn(text string) string {
	if strings.Contains(text, "supporting document") {
		return ""
	}
	for _, pc := range profileColumns {
		for _, kw := range pc.keywords {
			if strings.Contains(text, kw) {
				return pc.column
			}
		}
	}
	return ""
}

// profileValue converts date columns; an unparseable date is dropped.
func profileValue(column, value string) interface{} {
	if column != "date_started" {
		return value
	}
	normalized := tracker.ToYYYYMMDD(value)
	t, err := time.Parse(models.DateLayout, normalized)
	if err != nil {
		return nil
	}
	return t
}

func setOnce(fields map[string]interface{}, column string, value interface{}) {
	if value == nil {
		return
	}
	if _, exists := fields[column]; !exists {
		fields[column] = value
	}
}
