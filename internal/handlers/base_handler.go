package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/SAP-F-2025/training-service/internal/validator"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error      string                  `json:"error,omitempty"`
	Message    string                  `json:"message"`
	Details    interface{}             `json:"details,omitempty"`
	Dependents models.DependencyCounts `json:"dependents,omitempty"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) log(c *gin.Context) utils.Logger {
	return utils.GetLogger(c, h.logger)
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	args = append(args, "method", c.Request.Method, "path", c.FullPath())
	h.log(c).Debug(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string) {
	h.log(c).Error(msg, "error", err, "path", c.FullPath())
}

func (h *BaseHandler) RespondWithError(c *gin.Context, status int, msg string, err error) {
	resp := ErrorResponse{Message: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(status, resp)
}

// parseIDParam reads a positive numeric path parameter. It writes a 400 and
// returns 0 when the value is malformed.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   services.KindValidation,
			Message: "Invalid " + name,
			Details: c.Param(name),
		})
		return 0
	}
	return uint(id)
}

// currentIdentity returns the caller resolved by the auth middleware, writing
// a 401 when it is missing.
func (h *BaseHandler) currentIdentity(c *gin.Context) (models.Identity, bool) {
	identity, err := GetIdentityFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
		return models.Identity{}, false
	}
	return identity, true
}

func (h *BaseHandler) parseBoolQuery(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.DefaultQuery(name, "false"))
	return err == nil && v
}

// statusForKind maps service error kinds to HTTP status codes.
var statusForKind = map[string]int{
	services.KindValidation:              http.StatusBadRequest,
	services.KindNotFound:                http.StatusNotFound,
	services.KindConflict:                http.StatusConflict,
	services.KindClassFull:               http.StatusConflict,
	services.KindDependencyExists:        http.StatusConflict,
	services.KindRegistrationClosed:      http.StatusUnprocessableEntity,
	services.KindDependencyCleanupFailed: http.StatusInternalServerError,
	services.KindStoreUnavailable:        http.StatusServiceUnavailable,
}

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	status, ok := statusForKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	resp := ErrorResponse{Error: kind, Message: err.Error()}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		resp.Message = "Validation failed"
		resp.Details = verrs
	}

	var depErr *services.DependencyError
	if errors.As(err, &depErr) {
		resp.Dependents = depErr.Dependents
	}

	var cleanupErr *services.CleanupError
	if errors.As(err, &cleanupErr) {
		resp.Details = gin.H{"step": cleanupErr.Step}
	}

	if status >= http.StatusInternalServerError {
		h.LogError(c, err, "Service error")
	}
	c.JSON(status, resp)
}
