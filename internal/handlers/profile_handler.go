package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
)

type ProfileHandler struct {
	BaseHandler
	profileService services.ProfileService
}

func NewProfileHandler(profileService services.ProfileService, logger utils.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    NewBaseHandler(logger),
		profileService: profileService,
	}
}

// BecomeParticipant promotes the caller to a participant
// @Summary Create own participant profile
// @Description Returns the existing participant profile if the caller already has one.
// @Tags profiles
// @Produce json
// @Success 200 {object} models.Participant
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /profiles/participant [post]
func (h *ProfileHandler) BecomeParticipant(c *gin.Context) {
	identity, ok := h.currentIdentity(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Promoting to participant", "user_id", identity.UserID)

	participant, err := h.profileService.PromoteToParticipant(c.Request.Context(), identity)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, participant)
}

// PromoteInstructure promotes a user to an instructor
// @Summary Create instructor profile
// @Tags profiles
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} models.Instructure
// @Failure 404 {object} ErrorResponse
// @Router /profiles/instructure/{user_id} [post]
func (h *ProfileHandler) PromoteInstructure(c *gin.Context) {
	userID := c.Param("user_id")

	h.LogRequest(c, "Promoting to instructure", "user_id", userID)

	instructure, err := h.profileService.PromoteToInstructure(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, instructure)
}

// AssignRole sets a user's role
// @Summary Assign role
// @Description Changes the role only. Existing profiles are kept.
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param role body models.AssignRoleRequest true "Role"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id}/role [put]
func (h *ProfileHandler) AssignRole(c *gin.Context) {
	var req models.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   services.KindValidation,
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID := c.Param("id")
	h.LogRequest(c, "Assigning role", "user_id", userID, "role", req.RoleName)

	user, err := h.profileService.AssignRole(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
