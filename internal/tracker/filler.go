package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
	"strconv"

	"github.com/maeshaii/backend-wny/internal/models"
)

// SubmitAPI posts a built multipart submission.
type SubmitAPI interface {
	SubmitResponse(ctx context.Context, body io.Reader, contentType string) (*models.SubmitResult, error)
}

// Filler is the fill-out view-model for one respondent.
type Filler struct {
	categories []models.QuestionCategory
	rules      *RuleSet
	record     Record
	userID     uint
	answers    Answers
	api        SubmitAPI
}

func NewFiller(categories []models.QuestionCategory, record Record, userID uint, api SubmitAPI) *Filler {
	return &Filler{
		categories: categories,
		rules:      Compile(categories),
		record:     record,
		userID:     userID,
		answers:    make(Answers),
		api:        api,
	}
}

func (f *Filler) Rules() *RuleSet { return f.rules }

func (f *Filler) SetAnswer(questionID uint, v Value) {
	f.answers[questionID] = v
}

func (f *Filler) ClearAnswer(questionID uint) {
	delete(f.answers, questionID)
}

func (f *Filler) Answers() Answers {
	out := make(Answers, len(f.answers))
	for k, v := range f.answers {
		out[k] = v
	}
	return out
}

// VisibleCategories filters the form by the current answers.
func (f *Filler) VisibleCategories() []models.QuestionCategory {
	out := make([]models.QuestionCategory, 0, len(f.categories))
	for _, c := range f.categories {
		if f.rules.ShouldShowCategory(c, f.answers) {
			out = append(out, c)
		}
	}
	return out
}

func (f *Filler) PrefilledValue(q models.Question) Value {
	return f.rules.Prefill(q, f.answers, f.record)
}

func (f *Filler) InputProps(q models.Question) InputProps {
	return f.rules.InputFor(q)
}

// FieldError returns the message shown under a text field, or "".
func (f *Filler) FieldError(q models.Question, value string) string {
	if err := f.rules.InputFor(q).Validate(value); err != nil {
		return err.Error()
	}
	return ""
}

// Validate checks every non-empty text answer in the visible categories.
func (f *Filler) Validate() map[uint]error {
	errs := make(map[uint]error)
	for _, c := range f.VisibleCategories() {
		for _, q := range c.Questions {
			if q.Type != models.QuestionText {
				continue
			}
			v, ok := f.answers[q.ID]
			if !ok || v.Text == "" {
				continue
			}
			if err := f.rules.InputFor(q).Validate(v.Text); err != nil {
				errs[q.ID] = err
			}
		}
	}
	return errs
}

// Submission is a ready-to-send multipart body.
type Submission struct {
	Body        []byte
	ContentType string
	FileCount   int
}

// BuildSubmission encodes the answers. Each file answer becomes a
// file_<id> part and a {"type":"file"} entry in the answers JSON part.
func BuildSubmission(userID uint, answers Answers) (*Submission, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if userID != 0 {
		if err := w.WriteField("user_id", strconv.FormatUint(uint64(userID), 10)); err != nil {
			return nil, err
		}
	}

	ids := make([]uint, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	payload := make(map[string]interface{}, len(answers))
	files := 0
	for _, id := range ids {
		v := answers[id]
		key := strconv.FormatUint(uint64(id), 10)
		payload[key] = v.wire()
		if !v.IsFile() {
			continue
		}

		part, err := w.CreateFormFile("file_"+key, v.File.Name)
		if err != nil {
			return nil, err
		}
		if v.File.Content != nil {
			if _, err := io.Copy(part, v.File.Content); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", v.File.Name, err)
			}
		}
		files++
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if err := w.WriteField("answers", string(encoded)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return &Submission{Body: buf.Bytes(), ContentType: w.FormDataContentType(), FileCount: files}, nil
}

// Submit sends the draft once and returns the confirmation message.
func (f *Filler) Submit(ctx context.Context) (string, error) {
	sub, err := BuildSubmission(f.userID, f.answers)
	if err != nil {
		return "", fmt.Errorf("failed to build submission: %w", err)
	}

	result, err := f.api.SubmitResponse(ctx, bytes.NewReader(sub.Body), sub.ContentType)
	if err != nil {
		return "", fmt.Errorf("submission failed: %w", err)
	}
	if result == nil || !result.Success {
		msg := "Unknown error"
		if result != nil && result.Message != "" {
			msg = result.Message
		}
		return "", fmt.Errorf("submission rejected: %s", msg)
	}

	message := "Form submitted successfully!"
	if result.FilesUploaded > 0 {
		message += fmt.Sprintf(" and %d file(s) uploaded", result.FilesUploaded)
	}
	return message, nil
}
