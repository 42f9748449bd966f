package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
)

type EnrollmentHandler struct {
	BaseHandler
	enrollmentService services.EnrollmentService
}

func NewEnrollmentHandler(enrollmentService services.EnrollmentService, logger utils.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		enrollmentService: enrollmentService,
	}
}

// Enroll registers a participant into a class
// @Summary Enroll into a class
// @Description Registers the caller (or, for admins, the given participant) into a class.
// @Description Callers without a participant profile are promoted first.
// @Tags enrollments
// @Accept json
// @Produce json
// @Param enrollment body models.EnrollRequest true "Enrollment data"
// @Success 201 {object} models.EnrollResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req models.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   services.KindValidation,
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	identity, ok := h.currentIdentity(c)
	if !ok {
		return
	}

	// Only admins may enroll someone else
	if identity.Role != models.RoleAdmin || req.ParticipantID == nil {
		req.ParticipantID = nil
		req.Identity = &identity
	}

	h.LogRequest(c, "Enrolling into class", "class_id", req.ClassID, "user_id", identity.UserID)

	resp, err := h.enrollmentService.Enroll(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetRegistration returns a participant's registration in a class
// @Summary Get class registration
// @Tags enrollments
// @Produce json
// @Param id path uint true "Class ID"
// @Param participant_id path uint true "Participant ID"
// @Success 200 {object} models.CourseRegistration
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /classes/{id}/registrations/{participant_id} [get]
func (h *EnrollmentHandler) GetRegistration(c *gin.Context) {
	classID := h.parseIDParam(c, "id")
	if classID == 0 {
		return
	}
	participantID := h.parseIDParam(c, "participant_id")
	if participantID == 0 {
		return
	}

	reg, err := h.enrollmentService.GetRegistration(c.Request.Context(), participantID, classID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reg)
}
