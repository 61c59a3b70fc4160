package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/services"
	"github.com/maeshaii/backend-wny/internal/utils"
)

type StatisticsHandler struct {
	BaseHandler
	service services.StatisticsService
}

func NewStatisticsHandler(service services.StatisticsService, logger utils.Logger) *StatisticsHandler {
	return &StatisticsHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

func (h *StatisticsHandler) statsType(c *gin.Context) (models.StatsType, bool) {
	statsType, err := models.ParseStatsType(c.Query("type"))
	if err != nil {
		h.badRequest(c, "Invalid type", err)
		return "", false
	}
	return statsType, true
}

// AlumniStatistics returns the dashboard overview
// @Summary Alumni statistics overview
// @Tags statistics
// @Produce json
// @Param year query string false "Graduation year or ALL"
// @Param course query string false "Course or ALL"
// @Success 200 {object} models.AlumniStatistics
// @Router /statistics/alumni [get]
func (h *StatisticsHandler) AlumniStatistics(c *gin.Context) {
	h.LogRequest(c, "Getting alumni statistics")

	year, course := yearCourse(c)
	stats, err := h.service.AlumniStatistics(c.Request.Context(), year, course)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Generate returns one statistics snapshot
// @Summary Generate statistics
// @Description type is one of ALL, QPRO, CHED, SUC, AACUP
// @Tags statistics
// @Produce json
// @Param year query string false "Graduation year or ALL"
// @Param course query string false "Course or ALL"
// @Param type query string false "Statistics type"
// @Success 200 {object} models.StatsSnapshot
// @Failure 400 {object} ErrorResponse
// @Router /statistics/generate [get]
func (h *StatisticsHandler) Generate(c *gin.Context) {
	h.LogRequest(c, "Generating statistics")

	statsType, ok := h.statsType(c)
	if !ok {
		return
	}

	year, course := yearCourse(c)
	snapshot, err := h.service.Statistics(c.Request.Context(), year, course, statsType)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// DetailedAlumniData returns per-alumnus rows with tracker answers
// @Summary Detailed alumni data
// @Tags statistics
// @Produce json
// @Param year query string false "Graduation year or ALL"
// @Param course query string false "Course or ALL"
// @Success 200 {object} models.DetailedData
// @Router /statistics/detailed [get]
func (h *StatisticsHandler) DetailedAlumniData(c *gin.Context) {
	h.LogRequest(c, "Getting detailed alumni data")

	year, course := yearCourse(c)
	data, err := h.service.DetailedAlumniData(c.Request.Context(), year, course)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}

// Export downloads statistics as a workbook or PDF report
// @Summary Export statistics
// @Tags statistics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce application/pdf
// @Param year query string false "Graduation year or ALL"
// @Param course query string false "Course or ALL"
// @Param type query string false "Statistics type"
// @Param format query string false "xlsx (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Router /statistics/export [get]
func (h *StatisticsHandler) Export(c *gin.Context) {
	h.LogRequest(c, "Exporting statistics")

	statsType, ok := h.statsType(c)
	if !ok {
		return
	}

	format := services.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(services.ExportXLSX))))
	if format != services.ExportXLSX && format != services.ExportPDF {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid format", nil, "format must be xlsx or pdf")
		return
	}

	year, course := yearCourse(c)
	file, err := h.service.Export(c.Request.Context(), year, course, statsType, format)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Statistics exported", "filename", file.Filename, "bytes", len(file.Data))
	sendFile(c, file)
}
