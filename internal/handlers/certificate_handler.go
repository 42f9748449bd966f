package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
)

type CertificateHandler struct {
	BaseHandler
	certificateService services.CertificateService
}

func NewCertificateHandler(certificateService services.CertificateService, logger utils.Logger) *CertificateHandler {
	return &CertificateHandler{
		BaseHandler:        NewBaseHandler(logger),
		certificateService: certificateService,
	}
}

// IssueCertificate creates or updates a certificate
// @Summary Issue certificate
// @Description Issues the certificate for a participant or instructor and course.
// @Description Re-issuing updates the existing certificate in place.
// @Tags certificates
// @Accept json
// @Produce json
// @Param certificate body models.IssueCertificateRequest true "Certificate data"
// @Success 200 {object} models.Certificate
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /certificates [post]
func (h *CertificateHandler) IssueCertificate(c *gin.Context) {
	var req models.IssueCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   services.KindValidation,
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Issuing certificate", "subject_type", req.SubjectType, "subject_id", req.SubjectID, "course_id", req.CourseID)

	cert, err := h.certificateService.Issue(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, cert)
}
