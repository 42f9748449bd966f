package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
)

type RegistrationPostgreSQL struct {
	helpers *SharedHelpers
}

func NewRegistrationPostgreSQL(db *gorm.DB) repositories.RegistrationRepository {
	return &RegistrationPostgreSQL{helpers: NewSharedHelpers(db)}
}

// Create returns the raw driver error so callers can match the unique and
// quota constraints.
func (r *RegistrationPostgreSQL) Create(ctx context.Context, tx *gorm.DB, registration *models.CourseRegistration) error {
	if err := r.helpers.conn(ctx, tx).Create(registration).Error; err != nil {
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *RegistrationPostgreSQL) GetByParticipantAndClass(ctx context.Context, tx *gorm.DB, participantID, classID uint) (*models.CourseRegistration, error) {
	var registration models.CourseRegistration
	err := r.helpers.conn(ctx, tx).
		Where("participant_id = ? AND class_id = ?", participantID, classID).
		First(&registration).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return &registration, nil
}

func (r *RegistrationPostgreSQL) ExistsByParticipantAndClass(ctx context.Context, tx *gorm.DB, participantID, classID uint) (bool, error) {
	count, err := r.helpers.Count(ctx, tx, &models.CourseRegistration{},
		"participant_id = ? AND class_id = ?", participantID, classID)
	if err != nil {
		return false, fmt.Errorf("failed to check registration: %w", err)
	}
	return count > 0, nil
}

func (r *RegistrationPostgreSQL) CountByClass(ctx context.Context, tx *gorm.DB, classID uint) (int64, error) {
	count, err := r.helpers.Count(ctx, tx, &models.CourseRegistration{}, "class_id = ?", classID)
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations by class: %w", err)
	}
	return count, nil
}

func (r *RegistrationPostgreSQL) CountByParticipant(ctx context.Context, tx *gorm.DB, participantID uint) (int64, error) {
	count, err := r.helpers.Count(ctx, tx, &models.CourseRegistration{}, "participant_id = ?", participantID)
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations by participant: %w", err)
	}
	return count, nil
}

func (r *RegistrationPostgreSQL) IDsByParticipant(ctx context.Context, tx *gorm.DB, participantID uint) ([]uint, error) {
	var ids []uint
	err := r.helpers.conn(ctx, tx).
		Model(&models.CourseRegistration{}).
		Where("participant_id = ?", participantID).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list registration ids: %w", err)
	}
	return ids, nil
}

func (r *RegistrationPostgreSQL) DeleteByParticipant(ctx context.Context, tx *gorm.DB, participantID uint) (int64, error) {
	return r.helpers.Exec(ctx, tx, "delete registrations",
		`DELETE FROM course_registrations WHERE participant_id = ?`, participantID)
}

func (r *RegistrationPostgreSQL) ListRosterByClass(ctx context.Context, tx *gorm.DB, classID uint) ([]models.RosterEntry, error) {
	var entries []models.RosterEntry
	err := r.helpers.conn(ctx, tx).
		Table("course_registrations AS r").
		Select(`r.id AS registration_id,
			p.full_name AS participant_name,
			r.reg_status,
			r.payment_status,
			r.payment AS amount,
			COALESCE(pay.reference, '') AS payment_reference,
			r.registration_date`).
		Joins("JOIN participants p ON p.id = r.participant_id").
		Joins("LEFT JOIN payments pay ON pay.registration_id = r.id").
		Where("r.class_id = ?", classID).
		Order("r.registration_date ASC, r.id ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list class roster: %w", err)
	}
	return entries, nil
}

type PaymentPostgreSQL struct {
	helpers *SharedHelpers
}

func NewPaymentPostgreSQL(db *gorm.DB) repositories.PaymentRepository {
	return &PaymentPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (p *PaymentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error {
	if err := p.helpers.conn(ctx, tx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (p *PaymentPostgreSQL) GetByRegistration(ctx context.Context, tx *gorm.DB, registrationID uint) (*models.Payment, error) {
	var payment models.Payment
	err := p.helpers.conn(ctx, tx).
		Where("registration_id = ?", registrationID).
		Order("id ASC").
		First(&payment).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (p *PaymentPostgreSQL) DeleteByRegistrations(ctx context.Context, tx *gorm.DB, registrationIDs []uint) (int64, error) {
	if len(registrationIDs) == 0 {
		return 0, nil
	}
	return p.helpers.Exec(ctx, tx, "delete payments",
		`DELETE FROM payments WHERE registration_id IN ?`, registrationIDs)
}

type CertificationPostgreSQL struct {
	helpers *SharedHelpers
}

func NewCertificationPostgreSQL(db *gorm.DB) repositories.CertificationRepository {
	return &CertificationPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (c *CertificationPostgreSQL) Create(ctx context.Context, tx *gorm.DB, certification *models.Certification) error {
	if err := c.helpers.conn(ctx, tx).Create(certification).Error; err != nil {
		return fmt.Errorf("failed to create certification: %w", err)
	}
	return nil
}

func (c *CertificationPostgreSQL) DeleteByRegistrations(ctx context.Context, tx *gorm.DB, registrationIDs []uint) (int64, error) {
	if len(registrationIDs) == 0 {
		return 0, nil
	}
	return c.helpers.Exec(ctx, tx, "delete certifications",
		`DELETE FROM certifications WHERE registration_id IN ?`, registrationIDs)
}

type ValueReportPostgreSQL struct {
	helpers *SharedHelpers
}

func NewValueReportPostgreSQL(db *gorm.DB) repositories.ValueReportRepository {
	return &ValueReportPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (v *ValueReportPostgreSQL) Create(ctx context.Context, tx *gorm.DB, report *models.ValueReport) error {
	if err := v.helpers.conn(ctx, tx).Create(report).Error; err != nil {
		return fmt.Errorf("failed to create value report: %w", err)
	}
	return nil
}

func (v *ValueReportPostgreSQL) CountByInstructure(ctx context.Context, tx *gorm.DB, instructureID uint) (int64, error) {
	count, err := v.helpers.Count(ctx, tx, &models.ValueReport{}, "instructure_id = ?", instructureID)
	if err != nil {
		return 0, fmt.Errorf("failed to count value reports: %w", err)
	}
	return count, nil
}

func (v *ValueReportPostgreSQL) DeleteByRegistrations(ctx context.Context, tx *gorm.DB, registrationIDs []uint) (int64, error) {
	if len(registrationIDs) == 0 {
		return 0, nil
	}
	return v.helpers.Exec(ctx, tx, "delete value reports",
		`DELETE FROM value_reports WHERE registration_id IN ?`, registrationIDs)
}

func (v *ValueReportPostgreSQL) DeleteByInstructure(ctx context.Context, tx *gorm.DB, instructureID uint) (int64, error) {
	return v.helpers.Exec(ctx, tx, "delete value reports",
		`DELETE FROM value_reports WHERE instructure_id = ?`, instructureID)
}
