package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/repositories"
	"github.com/maeshaii/backend-wny/internal/services"
	"github.com/maeshaii/backend-wny/internal/utils"
)

const defaultImportHistory = 20

// AlumniHandler serves the alumni directory, batch imports and the
// coordinator OJT views.
type AlumniHandler struct {
	BaseHandler
	alumni       services.AlumniService
	importExport services.ImportExportService
}

func NewAlumniHandler(alumni services.AlumniService, importExport services.ImportExportService, logger utils.Logger) *AlumniHandler {
	return &AlumniHandler{
		BaseHandler:  NewBaseHandler(logger),
		alumni:       alumni,
		importExport: importExport,
	}
}

// ===== DIRECTORY =====

// ListAlumni lists alumni with optional filters
// @Summary List alumni
// @Tags alumni
// @Produce json
// @Param year query int false "Graduation year"
// @Param course query string false "Course"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Router /alumni [get]
func (h *AlumniHandler) ListAlumni(c *gin.Context) {
	h.LogRequest(c, "Listing alumni")

	year, ok := h.parseIntQueryPtr(c, "year")
	if !ok {
		return
	}
	limit, ok := h.parseIntQueryPtr(c, "limit")
	if !ok {
		return
	}
	offset, ok := h.parseIntQueryPtr(c, "offset")
	if !ok {
		return
	}

	filters := repositories.AlumniFilters{
		YearGraduated: year,
		Course:        strings.TrimSpace(c.Query("course")),
	}
	if limit != nil {
		filters.Limit = *limit
	}
	if offset != nil {
		filters.Offset = *offset
	}

	alumni, err := h.alumni.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alumni": alumni})
}

// SearchAlumni matches alumni by name
// @Summary Search alumni
// @Tags alumni
// @Produce json
// @Param q query string true "Name fragment"
// @Success 200 {object} map[string]interface{}
// @Router /alumni/search [get]
func (h *AlumniHandler) SearchAlumni(c *gin.Context) {
	alumni, err := h.alumni.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alumni": alumni})
}

// Years lists graduation years with alumni counts
// @Summary Alumni per graduation year
// @Tags alumni
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /alumni/years [get]
func (h *AlumniHandler) Years(c *gin.Context) {
	years, err := h.alumni.Years(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"years": years})
}

// ===== IMPORT / EXPORT =====

// readImport builds an ImportRequest from the multipart form. A missing
// file leaves Content nil for the service to reject.
func (h *AlumniHandler) readImport(c *gin.Context) (*services.ImportRequest, io.Closer, bool) {
	claims, ok := h.claims(c)
	if !ok {
		return nil, nil, false
	}

	header, file, err := openFormFile(c, "file")
	if err != nil {
		h.badRequest(c, "Invalid file upload", err)
		return nil, nil, false
	}

	req := &services.ImportRequest{
		BatchYear:  c.PostForm("batch_year"),
		Course:     c.PostForm("course"),
		ImportedBy: claims.CTUID,
	}
	if header == nil {
		return req, nil, true
	}
	req.Filename = header.Filename
	req.Content = file
	return req, file, true
}

// ImportAlumni imports one graduating batch from a spreadsheet
// @Summary Import alumni batch
// @Tags alumni
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Excel file (.xlsx or .xls)"
// @Param batch_year formData int true "Batch year"
// @Param course formData string true "Course"
// @Success 200 {object} models.ImportSummary
// @Failure 400 {object} ErrorResponse
// @Router /alumni/import [post]
func (h *AlumniHandler) ImportAlumni(c *gin.Context) {
	h.LogRequest(c, "Importing alumni")

	req, file, ok := h.readImport(c)
	if !ok {
		return
	}
	if file != nil {
		defer file.Close()
	}

	summary, err := h.importExport.ImportAlumni(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Alumni import finished", "created", summary.CreatedCount, "skipped", summary.SkippedCount)
	c.JSON(http.StatusOK, summary)
}

// ImportOJT imports a coordinator's OJT spreadsheet
// @Summary Import OJT batch
// @Tags ojt
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Excel file (.xlsx or .xls)"
// @Param batch_year formData int true "Batch year"
// @Param course formData string true "Course"
// @Param coordinator_username formData string false "Coordinator"
// @Success 200 {object} models.ImportSummary
// @Failure 400 {object} ErrorResponse
// @Router /ojt/import [post]
func (h *AlumniHandler) ImportOJT(c *gin.Context) {
	h.LogRequest(c, "Importing OJT data")

	req, file, ok := h.readImport(c)
	if !ok {
		return
	}
	if file != nil {
		defer file.Close()
	}
	if coordinator := strings.TrimSpace(c.PostForm("coordinator_username")); coordinator != "" {
		req.ImportedBy = coordinator
	}

	summary, err := h.importExport.ImportOJT(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "OJT import finished", "created", summary.CreatedCount, "skipped", summary.SkippedCount)
	c.JSON(http.StatusOK, summary)
}

// ListImports returns recent import runs
// @Summary Import history
// @Tags alumni
// @Produce json
// @Param kind query string false "alumni or ojt"
// @Param limit query int false "Max records"
// @Success 200 {object} map[string]interface{}
// @Router /imports [get]
func (h *AlumniHandler) ListImports(c *gin.Context) {
	limit := defaultImportHistory
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.badRequest(c, "Invalid limit", err)
			return
		}
		limit = n
	}

	kind := models.ImportKind(strings.ToLower(c.Query("kind")))
	if kind != "" && kind != models.ImportKindAlumni && kind != models.ImportKindOJT {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid kind", nil, "kind must be alumni or ojt")
		return
	}

	records, err := h.importExport.ListImports(c.Request.Context(), kind, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imports": records})
}

// Template downloads the blank alumni import workbook
// @Summary Alumni import template
// @Tags alumni
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /alumni/import/template [get]
func (h *AlumniHandler) Template(c *gin.Context) {
	file, err := h.importExport.AlumniTemplate(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	sendFile(c, file)
}

// ExportBatch downloads alumni with their tracker answers
// @Summary Export alumni batch
// @Tags alumni
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param batch_year query int false "Batch year"
// @Success 200 {file} file
// @Router /alumni/export [get]
func (h *AlumniHandler) ExportBatch(c *gin.Context) {
	h.LogRequest(c, "Exporting alumni batch")

	batchYear, ok := h.parseIntQueryPtr(c, "batch_year")
	if !ok {
		return
	}

	file, err := h.importExport.ExportBatch(c.Request.Context(), batchYear)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	sendFile(c, file)
}

// ===== OJT =====

// OJTStatistics summarises trainee progress and OJT records per batch
// @Summary OJT statistics
// @Tags ojt
// @Produce json
// @Param year query string false "Batch year or ALL"
// @Param course query string false "Course or ALL"
// @Success 200 {object} models.OJTStatistics
// @Failure 400 {object} ErrorResponse
// @Router /ojt/statistics [get]
func (h *AlumniHandler) OJTStatistics(c *gin.Context) {
	year, course := yearCourse(c)
	stats, err := h.alumni.OJTStatistics(c.Request.Context(), year, course)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// OJTByYear lists OJT students of one batch
// @Summary OJT students by year
// @Tags ojt
// @Produce json
// @Param year query int true "Batch year"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /ojt [get]
func (h *AlumniHandler) OJTByYear(c *gin.Context) {
	year, ok := h.parseIntQueryPtr(c, "year")
	if !ok {
		return
	}
	if year == nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid year", nil, "year is required")
		return
	}

	items, err := h.alumni.OJTByYear(c.Request.Context(), *year)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ojt_data": items})
}

// UpdateOJTStatus sets a trainee's OJT status
// @Summary Update OJT status
// @Tags ojt
// @Accept json
// @Produce json
// @Param user_id path int true "Trainee user ID"
// @Param request body models.OJTStatusRequest true "Ongoing, Completed or Incomplete"
// @Success 200 {object} models.OJTStatusUpdate
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /ojt/{user_id}/status [put]
func (h *AlumniHandler) UpdateOJTStatus(c *gin.Context) {
	h.LogRequest(c, "Updating OJT status")

	userID := h.parseIDParam(c, "user_id")
	if userID == 0 {
		return
	}

	var req models.OJTStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	result, err := h.alumni.UpdateOJTStatus(c.Request.Context(), userID, req.Status)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "OJT status updated", "trainee_id", userID, "status", result.NewStatus)
	c.JSON(http.StatusOK, result)
}
