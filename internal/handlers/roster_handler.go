package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type RosterHandler struct {
	BaseHandler
	rosterService services.RosterExportService
}

func NewRosterHandler(rosterService services.RosterExportService, logger utils.Logger) *RosterHandler {
	return &RosterHandler{
		BaseHandler:   NewBaseHandler(logger),
		rosterService: rosterService,
	}
}

// ExportRoster downloads a class roster
// @Summary Export class roster
// @Tags classes
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Class ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /classes/{id}/roster.xlsx [get]
func (h *RosterHandler) ExportRoster(c *gin.Context) {
	classID := h.parseIDParam(c, "id")
	if classID == 0 {
		return
	}

	h.LogRequest(c, "Exporting class roster", "class_id", classID)

	// Buffer so a failed export can still answer with a JSON error
	var buf bytes.Buffer
	if err := h.rosterService.ExportClassRoster(c.Request.Context(), classID, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="class-%d-roster.xlsx"`, classID))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
