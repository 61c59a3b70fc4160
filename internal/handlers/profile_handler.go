package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maeshaii/backend-wny/internal/services"
	"github.com/maeshaii/backend-wny/internal/utils"
)

type ProfileHandler struct {
	BaseHandler
	service services.ProfileService
}

func NewProfileHandler(service services.ProfileService, logger utils.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

type bioPayload struct {
	Bio string `json:"profile_bio"`
}

// ownUserID parses :user_id and checks the caller may act on it.
func (h *ProfileHandler) ownUserID(c *gin.Context) (uint, bool) {
	userID := h.parseIDParam(c, "user_id")
	if userID == 0 {
		return 0, false
	}
	return userID, h.authorizeUser(c, userID)
}

// UpdateProfile sets the bio and/or profile picture
// @Summary Update profile
// @Tags profile
// @Accept multipart/form-data
// @Produce json
// @Param user_id path int true "User ID"
// @Param profile_bio formData string false "Bio"
// @Param profile_pic formData file false "JPG, PNG or GIF"
// @Success 200 {object} models.ProfileView
// @Failure 400 {object} ErrorResponse
// @Router /profile/{user_id} [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	h.LogRequest(c, "Updating profile")

	userID, ok := h.ownUserID(c)
	if !ok {
		return
	}

	update := &services.ProfileUpdate{}
	if bio, present := c.GetPostForm("profile_bio"); present {
		update.Bio = &bio
	}

	header, file, err := openFormFile(c, "profile_pic")
	if err != nil {
		h.badRequest(c, "Invalid file upload", err)
		return
	}
	if header != nil {
		defer file.Close()
		update.Picture = &services.UploadedFile{
			Filename: header.Filename,
			Size:     header.Size,
			Content:  file,
		}
	}

	view, err := h.service.UpdateProfile(c.Request.Context(), userID, update)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Profile updated", "profile_id", userID, "picture", update.Picture != nil)
	c.JSON(http.StatusOK, view)
}

// GetBio returns the profile bio
// @Summary Get bio
// @Tags profile
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} bioPayload
// @Router /profile/{user_id}/bio [get]
func (h *ProfileHandler) GetBio(c *gin.Context) {
	userID := h.parseIDParam(c, "user_id")
	if userID == 0 {
		return
	}

	bio, err := h.service.GetBio(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bioPayload{Bio: bio})
}

// UpdateBio replaces the profile bio
// @Summary Update bio
// @Tags profile
// @Accept json
// @Produce json
// @Param user_id path int true "User ID"
// @Param request body bioPayload true "Bio"
// @Success 200 {object} bioPayload
// @Router /profile/{user_id}/bio [put]
func (h *ProfileHandler) UpdateBio(c *gin.Context) {
	userID, ok := h.ownUserID(c)
	if !ok {
		return
	}

	var req bioPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	bio, err := h.service.UpdateBio(c.Request.Context(), userID, req.Bio)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bioPayload{Bio: bio})
}

// UploadResume stores a resume file
// @Summary Upload resume
// @Tags profile
// @Accept multipart/form-data
// @Produce json
// @Param user_id path int true "User ID"
// @Param resume formData file true "Resume, at most 10MB"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Router /profile/{user_id}/resume [post]
func (h *ProfileHandler) UploadResume(c *gin.Context) {
	h.LogRequest(c, "Uploading resume")

	userID, ok := h.ownUserID(c)
	if !ok {
		return
	}

	header, file, err := openFormFile(c, "resume")
	if err != nil {
		h.badRequest(c, "Invalid file upload", err)
		return
	}

	var upload *services.UploadedFile
	if header != nil {
		defer file.Close()
		upload = &services.UploadedFile{
			Filename: header.Filename,
			Size:     header.Size,
			Content:  file,
		}
	}

	url, err := h.service.UploadResume(c.Request.Context(), userID, upload)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resume_url": url})
}

// DeleteResume removes the stored resume
// @Summary Delete resume
// @Tags profile
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} ErrorResponse
// @Router /profile/{user_id}/resume [delete]
func (h *ProfileHandler) DeleteResume(c *gin.Context) {
	userID, ok := h.ownUserID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteResume(c.Request.Context(), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeletePicture removes the profile picture
// @Summary Delete profile picture
// @Tags profile
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} map[string]bool
// @Router /profile/{user_id}/picture [delete]
func (h *ProfileHandler) DeletePicture(c *gin.Context) {
	userID, ok := h.ownUserID(c)
	if !ok {
		return
	}

	if err := h.service.DeletePicture(c.Request.Context(), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
