package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
)

// healthChecker is the part of the service manager the health route needs.
type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HandlerManager struct {
	enrollmentHandler  *EnrollmentHandler
	certificateHandler *CertificateHandler
	profileHandler     *ProfileHandler
	deletionHandler    *DeletionHandler
	rosterHandler      *RosterHandler
	authMiddleware     *CasdoorAuthMiddleware

	health   healthChecker
	gatherer prometheus.Gatherer
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	authMiddleware *CasdoorAuthMiddleware,
	gatherer prometheus.Gatherer,
) *HandlerManager {
	return &HandlerManager{
		enrollmentHandler:  NewEnrollmentHandler(serviceManager.Enrollment(), logger),
		certificateHandler: NewCertificateHandler(serviceManager.Certificate(), logger),
		profileHandler:     NewProfileHandler(serviceManager.Profile(), logger),
		deletionHandler:    NewDeletionHandler(serviceManager.Deletion(), logger),
		rosterHandler:      NewRosterHandler(serviceManager.RosterExport(), logger),
		authMiddleware:     authMiddleware,
		health:             serviceManager,
		gatherer:           gatherer,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	staffOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructure)
	adminOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		v1.POST("/enrollments", hm.enrollmentHandler.Enroll)

		classes := v1.Group("/classes")
		{
			classes.GET("/:id/registrations/:participant_id", staffOnly, hm.enrollmentHandler.GetRegistration)
			classes.GET("/:id/roster.xlsx", staffOnly, hm.rosterHandler.ExportRoster)
		}

		v1.POST("/certificates", staffOnly, hm.certificateHandler.IssueCertificate)

		profiles := v1.Group("/profiles")
		{
			profiles.POST("/participant", hm.profileHandler.BecomeParticipant)
			profiles.POST("/instructure/:user_id", adminOnly, hm.profileHandler.PromoteInstructure)
		}

		// Destructive and role-changing routes - Admins only
		users := v1.Group("/users")
		users.Use(adminOnly)
		{
			users.PUT("/:id/role", hm.profileHandler.AssignRole)
			users.DELETE("/:id", hm.deletionHandler.DeleteUser)
			users.GET("/:id/dependencies", hm.deletionHandler.Dependencies(models.TargetUser))
		}

		participants := v1.Group("/participants")
		participants.Use(adminOnly)
		{
			participants.DELETE("/:id", hm.deletionHandler.DeleteParticipant)
			participants.GET("/:id/dependencies", hm.deletionHandler.Dependencies(models.TargetParticipant))
		}

		instructures := v1.Group("/instructures")
		instructures.Use(adminOnly)
		{
			instructures.DELETE("/:id", hm.deletionHandler.DeleteInstructure)
			instructures.GET("/:id/dependencies", hm.deletionHandler.Dependencies(models.TargetInstructure))
		}
	}

	router.GET("/health", hm.healthCheck)

	if hm.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(hm.gatherer, promhttp.HandlerOpts{})))
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := hm.health.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "training-service",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "training-service",
	})
}
