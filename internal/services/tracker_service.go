package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/maeshaii/backend-wny/internal/cache"
	"github.com/maeshaii/backend-wny/internal/events"
	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/repositories"
	"github.com/maeshaii/backend-wny/internal/storage"
	"github.com/maeshaii/backend-wny/internal/tracker"
	"github.com/maeshaii/backend-wny/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultMaxUploadBytes int64 = 10 << 20
	noAnswer                    = "No answer"
)

var allowedUploadExts = []string{".pdf", ".doc", ".docx", ".jpg", ".jpeg", ".png", ".gif"}

type TrackerService interface {
	// Form definition
	ListCategories(ctx context.Context) ([]models.QuestionCategory, error)
	CreateCategory(ctx context.Context, in *models.CategoryInput) (*models.QuestionCategory, error)
	UpdateCategory(ctx context.Context, id uint, in *models.CategoryInput) (*models.QuestionCategory, error)
	DeleteCategory(ctx context.Context, id uint) error
	CreateQuestion(ctx context.Context, in *models.QuestionInput) (*models.Question, error)
	UpdateQuestion(ctx context.Context, id uint, in *models.QuestionInput) (*models.Question, error)
	DeleteQuestion(ctx context.Context, id uint) error

	// Form settings
	GetForm(ctx context.Context) (*models.TrackerForm, error)
	UpdateFormTitle(ctx context.Context, title string) (*models.TrackerForm, error)
	SetAcceptingResponses(ctx context.Context, accepting bool) (*models.TrackerForm, error)

	// Responses
	Submit(ctx context.Context, req *SubmitRequest) (*models.SubmitResult, error)
	ListResponses(ctx context.Context, batchYear *int) ([]models.ResponseView, error)
	ResponsesByUser(ctx context.Context, userID uint) ([]models.ResponseView, error)
	Status(ctx context.Context, userID uint) (*models.SubmissionStatus, error)

	// Uploaded files
	FileStats(ctx context.Context) (*repositories.FileUploadStats, error)
	OpenFile(ctx context.Context, id uint) (*models.TrackerFileUpload, io.ReadCloser, error)
}

// UploadedFile is one file_<qid> part of a submission.
type UploadedFile struct {
	QuestionID uint
	Filename   string
	Size       int64
	Content    io.Reader
}

type SubmitRequest struct {
	UserID  uint
	Answers map[string]interface{}
	Files   []UploadedFile
}

type trackerService struct {
	repo      repositories.Repository
	store     storage.FileStore
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *slog.Logger
	svcLogger *ServiceLogger
	validator *validator.Validator
	maxUpload int64
	now       func() time.Time
}

func NewTrackerService(
	repo repositories.Repository,
	store storage.FileStore,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	maxUploadBytes int64,
) TrackerService {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &trackerService{
		repo:      repo,
		store:     store,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		svcLogger: NewServiceLogger(logger, LogConfig{Service: "tracker", Component: "responses"}),
		validator: validator,
		maxUpload: maxUploadBytes,
		now:       time.Now,
	}
}

// ===== FORM DEFINITION =====

func (s *trackerService) ListCategories(ctx context.Context) ([]models.QuestionCategory, error) {
	categories, err := s.repo.Tracker().ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	for i := range categories {
		if categories[i].Questions == nil {
			categories[i].Questions = []models.Question{}
		}
	}
	return categories, nil
}

func (s *trackerService) CreateCategory(ctx context.Context, in *models.CategoryInput) (*models.QuestionCategory, error) {
	if err := s.validator.ValidateStruct(in); err != nil {
		return nil, err
	}

	category := &models.QuestionCategory{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Questions:   []models.Question{},
	}
	if in.Order != nil {
		category.Order = *in.Order
	} else {
		existing, err := s.repo.Tracker().ListCategories(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list categories: %w", err)
		}
		for _, c := range existing {
			if c.Order >= category.Order {
				category.Order = c.Order + 1
			}
		}
	}

	if err := s.repo.Tracker().CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	s.logger.Info("Tracker category created", "category_id", category.ID, "title", category.Title)
	return category, nil
}

func (s *trackerService) UpdateCategory(ctx context.Context, id uint, in *models.CategoryInput) (*models.QuestionCategory, error) {
	if err := s.validator.ValidateStruct(in); err != nil {
		return nil, err
	}

	category, err := s.repo.Tracker().GetCategory(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}
	category.Title = strings.TrimSpace(in.Title)
	category.Description = in.Description
	if in.Order != nil {
		category.Order = *in.Order
	}

	if err := s.repo.Tracker().UpdateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", notFound(err, ErrCategoryNotFound))
	}
	return category, nil
}

func (s *trackerService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.repo.Tracker().DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", notFound(err, ErrCategoryNotFound))
	}
	s.logger.Info("Tracker category deleted", "category_id", id)
	return nil
}

func (s *trackerService) CreateQuestion(ctx context.Context, in *models.QuestionInput) (*models.Question, error) {
	if err := s.validateQuestion(in); err != nil {
		return nil, err
	}
	if in.CategoryID == 0 {
		return nil, fieldError("category_id", "is required", in.CategoryID)
	}
	if _, err := s.repo.Tracker().GetCategory(ctx, in.CategoryID); err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}

	question := &models.Question{
		CategoryID: in.CategoryID,
		Text:       strings.TrimSpace(in.Text),
		Type:       in.Type,
		Options:    datatypes.JSONSlice[string](in.CleanOptions()),
	}
	if err := s.repo.Tracker().CreateQuestion(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return question, nil
}

func (s *trackerService) UpdateQuestion(ctx context.Context, id uint, in *models.QuestionInput) (*models.Question, error) {
	if err := s.validateQuestion(in); err != nil {
		return nil, err
	}

	question, err := s.repo.Tracker().GetQuestion(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrQuestionNotFound)
	}
	if in.CategoryID != 0 && in.CategoryID != question.CategoryID {
		if _, err := s.repo.Tracker().GetCategory(ctx, in.CategoryID); err != nil {
			return nil, notFound(err, ErrCategoryNotFound)
		}
		question.CategoryID = in.CategoryID
	}
	question.Text = strings.TrimSpace(in.Text)
	question.Type = in.Type
	question.Options = datatypes.JSONSlice[string](in.CleanOptions())

	if err := s.repo.Tracker().UpdateQuestion(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", notFound(err, ErrQuestionNotFound))
	}
	return question, nil
}

func (s *trackerService) DeleteQuestion(ctx context.Context, id uint) error {
	if err := s.repo.Tracker().DeleteQuestion(ctx, id); err != nil {
		return fmt.Errorf("failed to delete question: %w", notFound(err, ErrQuestionNotFound))
	}
	return nil
}

func (s *trackerService) validateQuestion(in *models.QuestionInput) error {
	if err := s.validator.ValidateStruct(in); err != nil {
		return err
	}
	if in.Type.NeedsOptions() && len(in.CleanOptions()) == 0 {
		return fieldError("options", "are required for radio, checkbox and multiple questions", in.Options)
	}
	return nil
}

// ===== FORM SETTINGS =====

func (s *trackerService) GetForm(ctx context.Context) (*models.TrackerForm, error) {
	form, err := s.repo.Tracker().GetForm(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tracker form: %w", err)
	}
	return form, nil
}

func (s *trackerService) UpdateFormTitle(ctx context.Context, title string) (*models.TrackerForm, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fieldError("title", "is required", title)
	}
	form, err := s.GetForm(ctx)
	if err != nil {
		return nil, err
	}
	form.Title = title
	if err := s.repo.Tracker().UpdateForm(ctx, form); err != nil {
		return nil, fmt.Errorf("failed to update tracker form: %w", err)
	}
	return form, nil
}

func (s *trackerService) SetAcceptingResponses(ctx context.Context, accepting bool) (*models.TrackerForm, error) {
	form, err := s.GetForm(ctx)
	if err != nil {
		return nil, err
	}
	form.AcceptingResponses = accepting
	if err := s.repo.Tracker().UpdateForm(ctx, form); err != nil {
		return nil, fmt.Errorf("failed to update tracker form: %w", err)
	}
	s.logger.Info("Tracker form availability changed", "accepting_responses", accepting)
	return form, nil
}

// ===== SUBMISSION =====

func (s *trackerService) Submit(ctx context.Context, req *SubmitRequest) (*models.SubmitResult, error) {
	start := time.Now()
	result, err := s.submit(ctx, req)
	s.svcLogger.LogOperation(ctx, "submit_tracker_response", req.UserID, 0, "tracker_response", time.Since(start), err)
	return result, err
}

func (s *trackerService) submit(ctx context.Context, req *SubmitRequest) (*models.SubmitResult, error) {
	if req.UserID == 0 || req.Answers == nil {
		return nil, fmt.Errorf("%w: Missing user_id or answers", ErrValidationFailed)
	}

	form, err := s.GetForm(ctx)
	if err != nil {
		return nil, err
	}
	if !form.AcceptingResponses {
		return nil, ErrFormClosed
	}

	user, err := s.repo.User().GetByID(ctx, req.UserID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	submitted, err := s.repo.Tracker().HasResponse(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing response: %w", err)
	}
	if submitted {
		return nil, ErrAlreadySubmitted
	}

	categories, err := s.repo.Tracker().ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	rules := tracker.Compile(categories)
	questions := questionIndex(categories)

	if err := validateAnswers(rules, questions, req.Answers); err != nil {
		return nil, err
	}
	if err := s.checkFiles(req); err != nil {
		return nil, err
	}

	uploads, err := s.storeFiles(ctx, req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	response := &models.TrackerResponse{
		UserID:      user.ID,
		Answers:     datatypes.JSONMap(req.Answers),
		SubmittedAt: now,
		Files:       uploads,
	}
	if err := s.repo.Tracker().CreateResponse(ctx, response); err != nil {
		s.discardFiles(uploads)
		// a concurrent submission won the unique user_id index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadySubmitted
		}
		return nil, fmt.Errorf("failed to save response: %w", err)
	}

	fields := profileUpdates(rules, questions, req.Answers, response.Files, s.store)
	if len(fields) > 0 {
		if err := s.repo.User().UpdateFields(ctx, user.ID, fields); err != nil {
			s.logger.Error("Failed to sync profile from tracker answers", "user_id", user.ID, "error", err)
		}
	}
	status := user.UserStatus
	if v, ok := fields["user_status"].(string); ok {
		status = v
	}

	s.notifyThankYou(ctx, user, now)
	s.invalidateStats(ctx)
	s.publish(ctx, events.NewTrackerSubmittedEvent(response.ID, user.ID, user.ShortName(), status, len(response.Files), now))

	s.logger.Info("Tracker response recorded",
		"user_id", user.ID,
		"response_id", response.ID,
		"files_uploaded", len(response.Files))

	return &models.SubmitResult{
		Success:       true,
		Message:       "Response recorded",
		UserID:        user.ID,
		FilesUploaded: len(response.Files),
	}, nil
}

// validateAnswers runs the input rules over every non-empty text answer.
func validateAnswers(rules *tracker.RuleSet, questions map[uint]models.Question, answers map[string]interface{}) error {
	var errs ValidationErrors
	ids := make([]uint, 0, len(answers))
	for key := range answers {
		if id, err := strconv.ParseUint(key, 10, 64); err == nil {
			ids = append(ids, uint(id))
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		q, ok := questions[id]
		if !ok || q.Type != models.QuestionText {
			continue
		}
		text, ok := answers[strconv.FormatUint(uint64(id), 10)].(string)
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}
		if err := rules.InputFor(q).Validate(strings.TrimSpace(text)); err != nil {
			errs = append(errs, *NewValidationError(fmt.Sprintf("answers.%d", id), err.Error(), text))
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *trackerService) checkFiles(req *SubmitRequest) error {
	for _, f := range req.Files {
		field := fmt.Sprintf("file_%d", f.QuestionID)
		if f.Size > s.maxUpload {
			return fmt.Errorf("%w: File %s is too large. Maximum size is %dMB.", ErrFileTooLarge, f.Filename, s.maxUpload>>20)
		}
		if !isAllowedUpload(f.Filename) {
			return fieldError(field, fmt.Sprintf("File type %s is not allowed. Allowed types: %s",
				strings.ToLower(filepath.Ext(f.Filename)), strings.Join(allowedUploadExts, ", ")), f.Filename)
		}
	}
	return nil
}

// storeFiles saves files whose answer is marked {"type":"file"}. Others are ignored.
func (s *trackerService) storeFiles(ctx context.Context, req *SubmitRequest) ([]models.TrackerFileUpload, error) {
	uploads := make([]models.TrackerFileUpload, 0, len(req.Files))
	for _, f := range req.Files {
		if !isFileAnswer(req.Answers[strconv.FormatUint(uint64(f.QuestionID), 10)]) {
			continue
		}
		stored, err := s.store.Save(ctx, storage.DirTracker, f.Filename, f.Content, s.maxUpload)
		if err != nil {
			s.discardFiles(uploads)
			if errors.Is(err, storage.ErrTooLarge) {
				return nil, fmt.Errorf("%w: File %s is too large.", ErrFileTooLarge, f.Filename)
			}
			return nil, fmt.Errorf("failed to store %s: %w", f.Filename, err)
		}
		uploads = append(uploads, models.TrackerFileUpload{
			QuestionID:       f.QuestionID,
			OriginalFilename: f.Filename,
			StoredPath:       stored.Path,
			FileSize:         stored.Size,
			UploadedAt:       s.now(),
		})
	}
	return uploads, nil
}

func (s *trackerService) discardFiles(uploads []models.TrackerFileUpload) {
	for _, u := range uploads {
		if err := s.store.Delete(u.StoredPath); err != nil {
			s.logger.Warn("Failed to remove orphaned upload", "path", u.StoredPath, "error", err)
		}
	}
}

func (s *trackerService) notifyThankYou(ctx context.Context, user *models.User, now time.Time) {
	notification := &models.Notification{
		UserID:  user.ID,
		Type:    models.NotificationTypeCCICT,
		Subject: models.ThankYouSubject,
		Content: fmt.Sprintf("Thank you %s %s for completing the alumni tracker form. Your response has been recorded successfully.",
			user.FirstName, user.LastName),
		Date: now,
	}
	if err := s.repo.Notification().Create(ctx, notification); err != nil {
		s.logger.Error("Failed to create thank-you notification", "user_id", user.ID, "error", err)
	}
}

func (s *trackerService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, cache.StatsPattern()); err != nil {
		s.logger.Warn("Failed to invalidate statistics cache", "error", err)
	}
}

func (s *trackerService) publish(ctx context.Context, event *events.NotificationEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", event.Type, "error", err)
	}
}

// ===== RESPONSE LISTING =====

// Profile labels filled from the user when the answer is missing
var basicFieldLabels = []struct {
	label string
	value func(u *models.User) string
}{
	{"First Name", func(u *models.User) string { return u.FirstName }},
	{"Middle Name", func(u *models.User) string { return u.MiddleName }},
	{"Last Name", func(u *models.User) string { return u.LastName }},
	{"Gender", func(u *models.User) string { return u.Gender }},
	{"Birthdate", func(u *models.User) string { return u.BirthdateString() }},
	{"Phone Number", func(u *models.User) string { return u.Phone }},
	{"Address", func(u *models.User) string { return u.Address }},
	{"Social Media", func(u *models.User) string { return u.SocialMedia }},
	{"Civil Status", func(u *models.User) string { return u.CivilStatus }},
	{"Age", func(u *models.User) string {
		if u.Age == nil {
			return ""
		}
		return strconv.Itoa(*u.Age)
	}},
	{"Email", func(u *models.User) string { return u.Email }},
	{"Program Name", func(u *models.User) string { return u.Program }},
	{"Status", func(u *models.User) string { return u.UserStatus }},
}

func (s *trackerService) ListResponses(ctx context.Context, batchYear *int) ([]models.ResponseView, error) {
	responses, err := s.repo.Tracker().ListResponses(ctx, repositories.ResponseFilters{BatchYear: batchYear})
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	views := make([]models.ResponseView, 0, len(responses))
	for _, r := range responses {
		views = append(views, s.responseView(r, r.User))
	}
	return views, nil
}

func (s *trackerService) ResponsesByUser(ctx context.Context, userID uint) ([]models.ResponseView, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	responses, err := s.repo.Tracker().ListResponses(ctx, repositories.ResponseFilters{UserID: &userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	views := make([]models.ResponseView, 0, len(responses))
	for _, r := range responses {
		views = append(views, s.responseView(r, user))
	}
	return views, nil
}

func (s *trackerService) responseView(r *models.TrackerResponse, user *models.User) models.ResponseView {
	answers := make(map[string]interface{}, len(r.Answers)+len(basicFieldLabels))
	for k, v := range r.Answers {
		answers[k] = v
	}

	for _, f := range r.Files {
		key := strconv.FormatUint(uint64(f.QuestionID), 10)
		if _, ok := answers[key]; !ok {
			continue
		}
		answers[key] = models.FileDescriptor{
			Type:       string(models.QuestionFile),
			Filename:   f.OriginalFilename,
			FileURL:    s.store.URL(f.StoredPath),
			FileSize:   f.FileSize,
			UploadedAt: models.FormatTimestamp(f.UploadedAt),
		}
	}

	view := models.ResponseView{
		ID:          r.ID,
		UserID:      r.UserID,
		Answers:     answers,
		SubmittedAt: models.FormatTimestamp(r.SubmittedAt),
	}
	if user == nil {
		return view
	}

	view.Name = user.ShortName()
	view.CTUID = user.CTUID
	for _, bf := range basicFieldLabels {
		if !isBlankAnswer(answers[bf.label]) {
			continue
		}
		if v := bf.value(user); v != "" {
			answers[bf.label] = v
		}
	}
	return view
}

func (s *trackerService) Status(ctx context.Context, userID uint) (*models.SubmissionStatus, error) {
	if _, err := s.repo.User().GetByID(ctx, userID); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	response, err := s.repo.Tracker().GetResponseByUser(ctx, userID)
	if err != nil {
		if IsNotFound(err) {
			return &models.SubmissionStatus{HasSubmitted: false}, nil
		}
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	submittedAt := response.SubmittedAt
	return &models.SubmissionStatus{HasSubmitted: true, SubmittedAt: &submittedAt}, nil
}

// ===== FILES =====

func (s *trackerService) FileStats(ctx context.Context) (*repositories.FileUploadStats, error) {
	stats, err := s.repo.Tracker().GetFileStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get file stats: %w", err)
	}
	if stats.ByQuestion == nil {
		stats.ByQuestion = []repositories.FileQuestionStat{}
	}
	return stats, nil
}

func (s *trackerService) OpenFile(ctx context.Context, id uint) (*models.TrackerFileUpload, io.ReadCloser, error) {
	file, err := s.repo.Tracker().GetFile(ctx, id)
	if err != nil {
		return nil, nil, notFound(err, ErrFileNotFound)
	}
	rc, err := s.store.Open(file.StoredPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, rc, nil
}

// ===== HELPERS =====

func questionIndex(categories []models.QuestionCategory) map[uint]models.Question {
	index := make(map[uint]models.Question)
	for _, c := range categories {
		for _, q := range c.Questions {
			index[q.ID] = q
		}
	}
	return index
}

func isAllowedUpload(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range allowedUploadExts {
		if ext == allowed {
			return true
		}
	}
	return false
}

func isFileAnswer(v interface{}) bool {
	m, ok := v.(map[string]interface{})
	return ok && m["type"] == string(models.QuestionFile)
}

func isBlankAnswer(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == "" || val == noAnswer
	}
	return false
}

// answerText flattens an answer for storage in a profile column. Lists are
// joined with ", " and file markers yield "".
func answerText(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := answerText(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(val, ", ")
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}
