package services

import (
	"context"
	"io"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/training-service/internal/models"
)

// ===== SERVICE INTERFACES =====

type ProfileService interface {
	// Promotion operations. The Tx variants join the caller's transaction.
	PromoteToParticipant(ctx context.Context, identity models.Identity) (*models.Participant, error)
	PromoteToParticipantTx(ctx context.Context, tx *gorm.DB, identity models.Identity) (*models.Participant, error)
	PromoteToInstructure(ctx context.Context, userID string) (*models.Instructure, error)
	PromoteToInstructureTx(ctx context.Context, tx *gorm.DB, userID string) (*models.Instructure, error)

	// Role management
	AssignRole(ctx context.Context, userID string, req *models.AssignRoleRequest) (*models.User, error)
}

type EnrollmentService interface {
	Enroll(ctx context.Context, req *models.EnrollRequest) (*models.EnrollResponse, error)
	GetRegistration(ctx context.Context, participantID, classID uint) (*models.CourseRegistration, error)
}

type CertificateService interface {
	// Issue creates the certificate for a subject and course, or updates the
	// existing one in place.
	Issue(ctx context.Context, req *models.IssueCertificateRequest) (*models.Certificate, error)
}

type DeletionService interface {
	Delete(ctx context.Context, req *models.DeleteRequest) (*models.DeleteResult, error)
	CheckDependencies(ctx context.Context, kind models.DeletionTarget, id string) (models.DependencyCounts, error)
}

type RosterExportService interface {
	// ExportClassRoster writes the class roster as an xlsx workbook.
	ExportClassRoster(ctx context.Context, classID uint, w io.Writer) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Profile() ProfileService
	Enrollment() EnrollmentService
	Certificate() CertificateService
	Deletion() DeletionService
	RosterExport() RosterExportService
	Roles() *RoleRegistry

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
