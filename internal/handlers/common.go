package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/maeshaii/backend-wny/internal/auth"
	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/services"
	"github.com/maeshaii/backend-wny/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// log returns the request-scoped logger set by utils.RequestLogger, which
// already carries request_id, method and path.
func (h *BaseHandler) log(c *gin.Context) utils.Logger {
	if l := utils.GetLoggerFromContext(c, nil); l != nil {
		return l
	}
	return h.logger.With("method", c.Request.Method, "path", c.Request.URL.Path)
}

func (h *BaseHandler) contextFields(c *gin.Context, additionalFields []interface{}) []interface{} {
	fields := []interface{}{"user_id", h.extractUserID(c)}
	return append(fields, additionalFields...)
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := h.contextFields(c, additionalFields)
	fields = append(fields, "remote_addr", c.ClientIP())
	h.log(c).Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.log(c).LogError(err, message, h.contextFields(c, additionalFields)...)
}

func (h *BaseHandler) LogInfo(c *gin.Context, message string, additionalFields ...interface{}) {
	h.log(c).Info(message, h.contextFields(c, additionalFields)...)
}

func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.log(c).Warn(message, h.contextFields(c, additionalFields)...)
}

// Helper method to extract user ID from context
func (h *BaseHandler) extractUserID(c *gin.Context) interface{} {
	if claims, ok := auth.ClaimsFromContext(c); ok {
		return claims.UserID
	}
	return nil
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
		Code:    errorCode(statusCode),
	}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if err != nil && statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode, "error", err)
	}

	c.JSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response and logs it
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}, additionalFields ...interface{}) {
	fields := append([]interface{}{"status_code", statusCode}, additionalFields...)
	h.LogInfo(c, message, fields...)

	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

func (h *BaseHandler) badRequest(c *gin.Context, message string, err error) {
	var details interface{}
	if err != nil {
		details = err.Error()
	}
	h.RespondWithError(c, http.StatusBadRequest, message, err, details)
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusUnprocessableEntity:
		return "BUSINESS_RULE_VIOLATION"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	}
	if status >= http.StatusInternalServerError {
		return "INTERNAL_ERROR"
	}
	return ""
}

// errorMessage returns the text a service attached after the sentinel
// ("<sentinel>: <text>"), or fallback when there is none.
func errorMessage(err, sentinel error, fallback string) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.Index(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return fallback
}

// handleServiceError maps service errors to HTTP responses in one place.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validationErrors)
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		h.RespondWithError(c, http.StatusUnprocessableEntity, businessRuleError.Message, err, map[string]interface{}{
			"rule":    businessRuleError.Rule,
			"context": businessRuleError.Context,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		h.RespondWithError(c, http.StatusForbidden, "Access denied", err, map[string]interface{}{
			"resource": permissionError.Resource,
			"action":   permissionError.Action,
			"reason":   permissionError.Reason,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound):
		h.RespondWithError(c, http.StatusNotFound, services.ErrUserNotFound.Error(), err)
	case errors.Is(err, services.ErrCategoryNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Category not found", err)
	case errors.Is(err, services.ErrQuestionNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Question not found", err)
	case errors.Is(err, services.ErrResponseNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Response not found", err)
	case errors.Is(err, services.ErrFileNotFound):
		h.RespondWithError(c, http.StatusNotFound, "File not found", err)
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, "Resource not found", err)

	case errors.Is(err, services.ErrMissingCredentials):
		h.RespondWithError(c, http.StatusBadRequest, services.ErrMissingCredentials.Error(), err)
	case errors.Is(err, services.ErrInvalidBirthdateFormat):
		h.RespondWithError(c, http.StatusBadRequest, services.ErrInvalidBirthdateFormat.Error(), err)
	case errors.Is(err, services.ErrFileTooLarge):
		h.RespondWithError(c, http.StatusBadRequest, errorMessage(err, services.ErrFileTooLarge, "File size exceeds the allowed limit"), err)
	case errors.Is(err, services.ErrUnsupportedFile):
		h.RespondWithError(c, http.StatusBadRequest, errorMessage(err, services.ErrUnsupportedFile, "File type not allowed"), err)
	case errors.Is(err, services.ErrValidationFailed):
		h.RespondWithError(c, http.StatusBadRequest, errorMessage(err, services.ErrValidationFailed, "Validation failed"), err)
	case errors.Is(err, services.ErrAlreadySubmitted):
		h.RespondWithError(c, http.StatusBadRequest, services.ErrAlreadySubmitted.Error(), err)
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusBadRequest, "Resource conflict", err)

	case errors.Is(err, services.ErrFormClosed):
		h.RespondWithError(c, http.StatusForbidden, services.ErrFormClosed.Error(), err)
	case services.IsForbidden(err):
		h.RespondWithError(c, http.StatusForbidden, "You do not have permission to perform this action", err)

	case errors.Is(err, services.ErrInvalidCredentials):
		h.RespondWithError(c, http.StatusUnauthorized, services.ErrInvalidCredentials.Error(), err)
	case services.IsUnauthorized(err):
		h.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)

	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// ===== REQUEST HELPERS =====

func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		h.badRequest(c, "Invalid "+param, err)
		return 0
	}
	return uint(id)
}

// parseIntQueryPtr reads an optional integer query value. ok is false after
// a 400 has been written.
func (h *BaseHandler) parseIntQueryPtr(c *gin.Context, param string) (*int, bool) {
	raw := strings.TrimSpace(c.Query(param))
	if raw == "" {
		return nil, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		h.badRequest(c, "Invalid "+param, err)
		return nil, false
	}
	return &value, true
}

// claims returns the caller's token claims; the auth middleware guarantees
// them on every /api/v1 route except login and refresh.
func (h *BaseHandler) claims(c *gin.Context) (*auth.Claims, bool) {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		h.RespondWithError(c, http.StatusUnauthorized, "Authentication required", nil)
	}
	return claims, ok
}

// authorizeUser lets a user act on their own record. Admins, and any of the
// extra roles given, may act on anyone's.
func (h *BaseHandler) authorizeUser(c *gin.Context, userID uint, extra ...models.UserRole) bool {
	claims, ok := h.claims(c)
	if !ok {
		return false
	}
	if claims.UserID == userID || claims.Role == models.RoleAdmin {
		return true
	}
	for _, role := range extra {
		if claims.Role == role {
			return true
		}
	}
	h.RespondWithError(c, http.StatusForbidden, "You can only access your own records", nil)
	return false
}

// HealthCheck reports liveness.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "wherenayou-backend",
	})
}
