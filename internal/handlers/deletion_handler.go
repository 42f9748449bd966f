package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
)

type DeletionHandler struct {
	BaseHandler
	deletionService services.DeletionService
}

func NewDeletionHandler(deletionService services.DeletionService, logger utils.Logger) *DeletionHandler {
	return &DeletionHandler{
		BaseHandler:     NewBaseHandler(logger),
		deletionService: deletionService,
	}
}

// DeleteUser removes a user and, when forced, everything that depends on it
// @Summary Delete user
// @Tags deletions
// @Produce json
// @Param id path string true "User ID"
// @Param force query bool false "Remove dependents"
// @Success 200 {object} models.DeleteResult
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/{id} [delete]
func (h *DeletionHandler) DeleteUser(c *gin.Context) {
	h.delete(c, models.TargetUser)
}

// DeleteParticipant removes a participant profile
// @Summary Delete participant
// @Tags deletions
// @Produce json
// @Param id path uint true "Participant ID"
// @Param force query bool false "Remove dependents"
// @Param delete_owner query bool false "Also delete the owning user when no other profile remains"
// @Success 200 {object} models.DeleteResult
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /participants/{id} [delete]
func (h *DeletionHandler) DeleteParticipant(c *gin.Context) {
	h.delete(c, models.TargetParticipant)
}

// DeleteInstructure removes an instructor profile
// @Summary Delete instructure
// @Tags deletions
// @Produce json
// @Param id path uint true "Instructure ID"
// @Param force query bool false "Remove dependents"
// @Param delete_owner query bool false "Also delete the owning user when no other profile remains"
// @Success 200 {object} models.DeleteResult
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /instructures/{id} [delete]
func (h *DeletionHandler) DeleteInstructure(c *gin.Context) {
	h.delete(c, models.TargetInstructure)
}

func (h *DeletionHandler) delete(c *gin.Context, kind models.DeletionTarget) {
	req := models.DeleteRequest{
		TargetKind:  kind,
		ID:          c.Param("id"),
		Force:       h.parseBoolQuery(c, "force"),
		DeleteOwner: h.parseBoolQuery(c, "delete_owner"),
	}

	h.LogRequest(c, "Deleting entity", "kind", kind, "id", req.ID, "force", req.Force)

	result, err := h.deletionService.Delete(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Dependencies returns a handler listing the dependents of kind
// @Summary List dependents
// @Description Counts the rows that would block a non-forced delete.
// @Tags deletions
// @Produce json
// @Param id path string true "Entity ID"
// @Success 200 {object} models.DependencyCounts
// @Failure 404 {object} ErrorResponse
// @Router /users/{id}/dependencies [get]
// @Router /participants/{id}/dependencies [get]
// @Router /instructures/{id}/dependencies [get]
func (h *DeletionHandler) Dependencies(kind models.DeletionTarget) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := h.deletionService.CheckDependencies(c.Request.Context(), kind, c.Param("id"))
		if err != nil {
			h.handleServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"target_kind": kind,
			"id":          c.Param("id"),
			"dependents":  counts,
			"total":       counts.Total(),
		})
	}
}
