package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates the entity stores of the training graph.
type Repository interface {
	// Identity and roles
	User() UserRepository
	Role() RoleRepository
	IdentityDirectory() IdentityDirectory

	// Profiles
	Participant() ParticipantRepository
	Instructure() InstructureRepository

	// Catalog
	Course() CourseRepository
	Class() ClassRepository
	TeachingAssignment() TeachingAssignmentRepository

	// Enrollment graph
	Registration() RegistrationRepository
	Payment() PaymentRepository
	Certification() CertificationRepository
	ValueReport() ValueReportRepository
	Certificate() CertificateRepository

	// WithTransaction runs fn inside one database transaction. Every
	// repository call made with tx joins it; a returned error rolls back.
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
