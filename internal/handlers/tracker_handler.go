package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/services"
	"github.com/maeshaii/backend-wny/internal/utils"
	"github.com/maeshaii/backend-wny/internal/validator"
)

const fileFieldPrefix = "file_"

type TrackerHandler struct {
	BaseHandler
	service   services.TrackerService
	validator *validator.Validator
}

func NewTrackerHandler(service services.TrackerService, validator *validator.Validator, logger utils.Logger) *TrackerHandler {
	return &TrackerHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		validator:   validator,
	}
}

type formTitleRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

type acceptingRequest struct {
	AcceptingResponses *bool `json:"accepting_responses" validate:"required"`
}

type submitJSONRequest struct {
	UserID  uint                   `json:"user_id"`
	Answers map[string]interface{} `json:"answers"`
}

// ===== FORM DEFINITION =====

// ListQuestions returns every category with its ordered questions
// @Summary List tracker questions
// @Tags tracker
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /tracker/questions [get]
func (h *TrackerHandler) ListQuestions(c *gin.Context) {
	h.LogRequest(c, "Listing tracker questions")

	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "categories": categories})
}

// CreateCategory adds a question category
// @Summary Create category
// @Tags tracker
// @Accept json
// @Produce json
// @Param category body models.CategoryInput true "Category"
// @Success 201 {object} models.QuestionCategory
// @Failure 400 {object} ErrorResponse
// @Router /tracker/categories [post]
func (h *TrackerHandler) CreateCategory(c *gin.Context) {
	h.LogRequest(c, "Creating category")

	var in models.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	category, err := h.service.CreateCategory(c.Request.Context(), &in)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Category created", "category_id", category.ID)
	c.JSON(http.StatusCreated, category)
}

// UpdateCategory edits a category
// @Summary Update category
// @Tags tracker
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param category body models.CategoryInput true "Category"
// @Success 200 {object} models.QuestionCategory
// @Failure 404 {object} ErrorResponse
// @Router /tracker/categories/{id} [put]
func (h *TrackerHandler) UpdateCategory(c *gin.Context) {
	h.LogRequest(c, "Updating category")

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var in models.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	category, err := h.service.UpdateCategory(c.Request.Context(), id, &in)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category and its questions
// @Summary Delete category
// @Tags tracker
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} ErrorResponse
// @Router /tracker/categories/{id} [delete]
func (h *TrackerHandler) DeleteCategory(c *gin.Context) {
	h.LogRequest(c, "Deleting category")

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Category deleted", "category_id", id)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreateQuestion adds a question to a category
// @Summary Create question
// @Tags tracker
// @Accept json
// @Produce json
// @Param question body models.QuestionInput true "Question"
// @Success 201 {object} models.Question
// @Failure 400 {object} ErrorResponse
// @Router /tracker/questions [post]
func (h *TrackerHandler) CreateQuestion(c *gin.Context) {
	h.LogRequest(c, "Creating question")

	var in models.QuestionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	question, err := h.service.CreateQuestion(c.Request.Context(), &in)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Question created", "question_id", question.ID)
	c.JSON(http.StatusCreated, question)
}

// UpdateQuestion edits a question
// @Summary Update question
// @Tags tracker
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param question body models.QuestionInput true "Question"
// @Success 200 {object} models.Question
// @Failure 404 {object} ErrorResponse
// @Router /tracker/questions/{id} [put]
func (h *TrackerHandler) UpdateQuestion(c *gin.Context) {
	h.LogRequest(c, "Updating question")

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var in models.QuestionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	question, err := h.service.UpdateQuestion(c.Request.Context(), id, &in)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion removes a question
// @Summary Delete question
// @Tags tracker
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} map[string]bool
// @Router /tracker/questions/{id} [delete]
func (h *TrackerHandler) DeleteQuestion(c *gin.Context) {
	h.LogRequest(c, "Deleting question")

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.service.DeleteQuestion(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ===== FORM SETTINGS =====

// GetForm returns the form title and whether it accepts responses
// @Summary Get tracker form settings
// @Tags tracker
// @Produce json
// @Success 200 {object} models.TrackerForm
// @Router /tracker/form [get]
func (h *TrackerHandler) GetForm(c *gin.Context) {
	form, err := h.service.GetForm(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// UpdateFormTitle renames the form
// @Summary Update tracker form title
// @Tags tracker
// @Accept json
// @Produce json
// @Success 200 {object} models.TrackerForm
// @Router /tracker/form [put]
func (h *TrackerHandler) UpdateFormTitle(c *gin.Context) {
	h.LogRequest(c, "Updating form title")

	var req formTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	form, err := h.service.UpdateFormTitle(c.Request.Context(), req.Title)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// GetAccepting reports whether the form accepts responses
// @Summary Get accepting-responses flag
// @Tags tracker
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /tracker/form/accepting [get]
func (h *TrackerHandler) GetAccepting(c *gin.Context) {
	form, err := h.service.GetForm(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accepting_responses": form.AcceptingResponses})
}

// SetAccepting opens or closes the form
// @Summary Set accepting-responses flag
// @Tags tracker
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /tracker/form/accepting [put]
func (h *TrackerHandler) SetAccepting(c *gin.Context) {
	h.LogRequest(c, "Updating accepting responses")

	var req acceptingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	form, err := h.service.SetAcceptingResponses(c.Request.Context(), *req.AcceptingResponses)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Accepting responses changed", "accepting", form.AcceptingResponses)
	c.JSON(http.StatusOK, gin.H{"accepting_responses": form.AcceptingResponses})
}

// ===== RESPONSES =====

// SubmitResponse stores one alumnus's answers. Multipart bodies carry
// user_id, answers (JSON) and one file_<question id> part per upload;
// JSON bodies carry user_id and answers only.
// @Summary Submit tracker response
// @Tags tracker
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Success 201 {object} models.SubmitResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /tracker/responses [post]
func (h *TrackerHandler) SubmitResponse(c *gin.Context) {
	h.LogRequest(c, "Submitting tracker response")

	var (
		req     *services.SubmitRequest
		closers []io.Closer
		err     error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		req, closers, err = parseMultipartSubmission(c)
	} else {
		req, err = parseJSONSubmission(c)
	}
	defer func() {
		for _, cl := range closers {
			cl.Close()
		}
	}()
	if err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	if req.UserID != 0 && !h.authorizeUser(c, req.UserID) {
		return
	}

	result, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Tracker response submitted", "respondent_id", result.UserID, "files", result.FilesUploaded)
	c.JSON(http.StatusCreated, result)
}

func parseJSONSubmission(c *gin.Context) (*services.SubmitRequest, error) {
	var body submitJSONRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, err
	}
	return &services.SubmitRequest{UserID: body.UserID, Answers: body.Answers}, nil
}

func parseMultipartSubmission(c *gin.Context) (*services.SubmitRequest, []io.Closer, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	req := &services.SubmitRequest{}
	if raw := strings.TrimSpace(c.PostForm("user_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid user_id: %w", err)
		}
		req.UserID = uint(id)
	}
	if raw := c.PostForm("answers"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Answers); err != nil {
			return nil, nil, fmt.Errorf("invalid answers: %w", err)
		}
	}

	var closers []io.Closer
	for field, headers := range form.File {
		if !strings.HasPrefix(field, fileFieldPrefix) || len(headers) == 0 {
			continue
		}
		qid, err := strconv.ParseUint(strings.TrimPrefix(field, fileFieldPrefix), 10, 32)
		if err != nil {
			continue
		}
		header := headers[0]
		f, err := header.Open()
		if err != nil {
			for _, cl := range closers {
				cl.Close()
			}
			return nil, nil, fmt.Errorf("failed to open %s: %w", field, err)
		}
		closers = append(closers, f)
		req.Files = append(req.Files, services.UploadedFile{
			QuestionID: uint(qid),
			Filename:   header.Filename,
			Size:       header.Size,
			Content:    f,
		})
	}
	return req, closers, nil
}

// ListResponses returns every response, optionally for one batch year
// @Summary List tracker responses
// @Tags tracker
// @Produce json
// @Param batch_year query int false "Batch year"
// @Success 200 {object} map[string]interface{}
// @Router /tracker/responses [get]
func (h *TrackerHandler) ListResponses(c *gin.Context) {
	h.LogRequest(c, "Listing tracker responses")

	batchYear, ok := h.parseIntQueryPtr(c, "batch_year")
	if !ok {
		return
	}

	responses, err := h.service.ListResponses(c.Request.Context(), batchYear)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"responses": responses})
}

// UserResponses returns one user's responses
// @Summary List a user's tracker responses
// @Tags tracker
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /tracker/responses/user/{user_id} [get]
func (h *TrackerHandler) UserResponses(c *gin.Context) {
	userID := h.parseIDParam(c, "user_id")
	if userID == 0 || !h.authorizeUser(c, userID, models.RolePESO) {
		return
	}

	responses, err := h.service.ResponsesByUser(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"responses": responses})
}

// Status reports whether the user already submitted the form
// @Summary Submission status
// @Tags tracker
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} models.SubmissionStatus
// @Router /tracker/status/{user_id} [get]
func (h *TrackerHandler) Status(c *gin.Context) {
	userID := h.parseIDParam(c, "user_id")
	if userID == 0 || !h.authorizeUser(c, userID, models.RolePESO) {
		return
	}

	status, err := h.service.Status(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// ===== FILES =====

// FileStats summarises uploaded tracker files
// @Summary Uploaded file statistics
// @Tags tracker
// @Produce json
// @Success 200 {object} repositories.FileUploadStats
// @Router /tracker/files/stats [get]
func (h *TrackerHandler) FileStats(c *gin.Context) {
	stats, err := h.service.FileStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// DownloadFile streams one uploaded tracker file
// @Summary Download uploaded file
// @Tags tracker
// @Produce octet-stream
// @Param id path int true "File ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /tracker/files/{id} [get]
func (h *TrackerHandler) DownloadFile(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	upload, content, err := h.service.OpenFile(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer content.Close()

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(upload.OriginalFilename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, upload.FileSize, contentType, content, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, upload.OriginalFilename),
	})
}
