package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/training-service/internal/models"
)

// Every method takes an optional tx; a nil tx runs against the base
// connection in autocommit mode.

type RoleRepository interface {
	// EnsureByName inserts the role if absent and returns the stored row.
	// Concurrent callers converge on the same row.
	EnsureByName(ctx context.Context, tx *gorm.DB, name, description string) (*models.Role, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.Role, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Role, error)
}

type ParticipantRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Participant, error)
	// GetOldestByUser returns the earliest participant owned by the user.
	GetOldestByUser(ctx context.Context, tx *gorm.DB, userID string) (*models.Participant, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]models.Participant, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, error)
	Create(ctx context.Context, tx *gorm.DB, participant *models.Participant) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type InstructureRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Instructure, error)
	GetOldestByUser(ctx context.Context, tx *gorm.DB, userID string) (*models.Instructure, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]models.Instructure, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, error)
	Create(ctx context.Context, tx *gorm.DB, instructure *models.Instructure) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type CourseRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
}

type ClassRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Class, error)
	Create(ctx context.Context, tx *gorm.DB, class *models.Class) error
}

type TeachingAssignmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, assignment *models.TeachingAssignment) error
	CountByInstructure(ctx context.Context, tx *gorm.DB, instructureID uint) (int64, error)
	DeleteByInstructure(ctx context.Context, tx *gorm.DB, instructureID uint) (int64, error)
}

type RegistrationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, registration *models.CourseRegistration) error
	GetByParticipantAndClass(ctx context.Context, tx *gorm.DB, participantID, classID uint) (*models.CourseRegistration, error)
	ExistsByParticipantAndClass(ctx context.Context, tx *gorm.DB, participantID, classID uint) (bool, error)
	CountByClass(ctx context.Context, tx *gorm.DB, classID uint) (int64, error)
	CountByParticipant(ctx context.Context, tx *gorm.DB, participantID uint) (int64, error)
	IDsByParticipant(ctx context.Context, tx *gorm.DB, participantID uint) ([]uint, error)
	DeleteByParticipant(ctx context.Context, tx *gorm.DB, participantID uint) (int64, error)
	ListRosterByClass(ctx context.Context, tx *gorm.DB, classID uint) ([]models.RosterEntry, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error
	GetByRegistration(ctx context.Context, tx *gorm.DB, registrationID uint) (*models.Payment, error)
	DeleteByRegistrations(ctx context.Context, tx *gorm.DB, registrationIDs []uint) (int64, error)
}

type CertificationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, certification *models.Certification) error
	DeleteByRegistrations(ctx context.Context, tx *gorm.DB, registrationIDs []uint) (int64, error)
}

type ValueReportRepository interface {
	Create(ctx context.Context, tx *gorm.DB, report *models.ValueReport) error
	CountByInstructure(ctx context.Context, tx *gorm.DB, instructureID uint) (int64, error)
	DeleteByRegistrations(ctx context.Context, tx *gorm.DB, registrationIDs []uint) (int64, error)
	DeleteByInstructure(ctx context.Context, tx *gorm.DB, instructureID uint) (int64, error)
}

type CertificateRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Certificate, error)
	GetBySubjectAndCourse(ctx context.Context, tx *gorm.DB, subject models.SubjectType, subjectID, courseID uint) (*models.Certificate, error)
	// ExistsByNumber reports whether any certificate other than excludeID
	// carries number.
	ExistsByNumber(ctx context.Context, tx *gorm.DB, number string, excludeID *uint) (bool, error)
	CountBySubject(ctx context.Context, tx *gorm.DB, subject models.SubjectType, subjectID uint) (int64, error)
	Create(ctx context.Context, tx *gorm.DB, certificate *models.Certificate) error
	Update(ctx context.Context, tx *gorm.DB, certificate *models.Certificate) error
	DeleteBySubject(ctx context.Context, tx *gorm.DB, subject models.SubjectType, subjectID uint) (int64, error)
}
