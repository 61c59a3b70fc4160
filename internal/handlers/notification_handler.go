package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/maeshaii/backend-wny/internal/services"
	"github.com/maeshaii/backend-wny/internal/utils"
)

type NotificationHandler struct {
	BaseHandler
	service services.NotificationService
}

func NewNotificationHandler(service services.NotificationService, logger utils.Logger) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

type deleteNotificationsRequest struct {
	NotificationIDs []uint `json:"notification_ids"`
}

// queryUserID reads ?user_id=, defaulting to the caller.
func (h *NotificationHandler) queryUserID(c *gin.Context) (uint, bool) {
	raw := c.Query("user_id")
	if raw == "" {
		claims, ok := h.claims(c)
		if !ok {
			return 0, false
		}
		return claims.UserID, true
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		h.badRequest(c, "Invalid user_id", err)
		return 0, false
	}
	if !h.authorizeUser(c, uint(id)) {
		return 0, false
	}
	return uint(id), true
}

// List returns a user's notifications, newest first
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Param user_id query int false "User ID (defaults to the caller)"
// @Success 200 {object} map[string]interface{}
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := h.queryUserID(c)
	if !ok {
		return
	}

	items, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

// Count returns how many notifications a user has
// @Summary Count notifications
// @Tags notifications
// @Produce json
// @Param user_id query int false "User ID (defaults to the caller)"
// @Success 200 {object} map[string]int64
// @Router /notifications/count [get]
func (h *NotificationHandler) Count(c *gin.Context) {
	userID, ok := h.queryUserID(c)
	if !ok {
		return
	}

	count, err := h.service.Count(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// Delete removes the caller's notifications by ID. Admins may delete any.
// @Summary Delete notifications
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body deleteNotificationsRequest true "Notification IDs"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /notifications/delete [post]
func (h *NotificationHandler) Delete(c *gin.Context) {
	h.LogRequest(c, "Deleting notifications")

	claims, ok := h.claims(c)
	if !ok {
		return
	}
	ownerID := claims.UserID
	if claims.Role == models.RoleAdmin {
		ownerID = 0
	}

	var req deleteNotificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	deleted, err := h.service.Delete(c.Request.Context(), req.NotificationIDs, ownerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deleted_count": deleted})
}

// SendReminders emails and notifies the given alumni
// @Summary Send tracker reminders
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body models.ReminderRequest true "Recipients and message"
// @Success 200 {object} models.ReminderResult
// @Failure 400 {object} ErrorResponse
// @Router /notifications/reminders [post]
func (h *NotificationHandler) SendReminders(c *gin.Context) {
	h.LogRequest(c, "Sending reminders")

	var req models.ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	result, err := h.service.SendReminders(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Reminders sent", "sent", result.Sent, "total", result.Total)
	c.JSON(http.StatusOK, result)
}
