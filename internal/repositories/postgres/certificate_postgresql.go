package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
)

type CertificatePostgreSQL struct {
	helpers *SharedHelpers
}

func NewCertificatePostgreSQL(db *gorm.DB) repositories.CertificateRepository {
	return &CertificatePostgreSQL{helpers: NewSharedHelpers(db)}
}

func subjectColumn(subject models.SubjectType) (string, error) {
	switch subject {
	case models.SubjectParticipant:
		return "participant_id", nil
	case models.SubjectInstructure:
		return "instructure_id", nil
	}
	return "", fmt.Errorf("unknown certificate subject %q", subject)
}

func (c *CertificatePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Certificate, error) {
	var certificate models.Certificate
	if err := c.helpers.conn(ctx, tx).First(&certificate, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}
	return &certificate, nil
}

func (c *CertificatePostgreSQL) GetBySubjectAndCourse(ctx context.Context, tx *gorm.DB, subject models.SubjectType, subjectID, courseID uint) (*models.Certificate, error) {
	column, err := subjectColumn(subject)
	if err != nil {
		return nil, err
	}

	var certificate models.Certificate
	err = c.helpers.conn(ctx, tx).
		Where(column+" = ? AND course_id = ?", subjectID, courseID).
		First(&certificate).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}
	return &certificate, nil
}

func (c *CertificatePostgreSQL) ExistsByNumber(ctx context.Context, tx *gorm.DB, number string, excludeID *uint) (bool, error) {
	query := c.helpers.conn(ctx, tx).Model(&models.Certificate{}).Where("certificate_number = ?", number)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check certificate number: %w", err)
	}
	return count > 0, nil
}

func (c *CertificatePostgreSQL) CountBySubject(ctx context.Context, tx *gorm.DB, subject models.SubjectType, subjectID uint) (int64, error) {
	column, err := subjectColumn(subject)
	if err != nil {
		return 0, err
	}
	count, err := c.helpers.Count(ctx, tx, &models.Certificate{}, column+" = ?", subjectID)
	if err != nil {
		return 0, fmt.Errorf("failed to count certificates: %w", err)
	}
	return count, nil
}

func (c *CertificatePostgreSQL) Create(ctx context.Context, tx *gorm.DB, certificate *models.Certificate) error {
	if err := c.helpers.conn(ctx, tx).Create(certificate).Error; err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}
	return nil
}

func (c *CertificatePostgreSQL) Update(ctx context.Context, tx *gorm.DB, certificate *models.Certificate) error {
	err := c.helpers.conn(ctx, tx).
		Model(certificate).
		Select("certificate_number", "issue_date", "expiry_date", "status", "pdf_url", "drive_link", "updated_at").
		Updates(certificate).Error
	if err != nil {
		return fmt.Errorf("failed to update certificate: %w", err)
	}
	return nil
}

func (c *CertificatePostgreSQL) DeleteBySubject(ctx context.Context, tx *gorm.DB, subject models.SubjectType, subjectID uint) (int64, error) {
	column, err := subjectColumn(subject)
	if err != nil {
		return 0, err
	}
	return c.helpers.Exec(ctx, tx, "delete certificates",
		"DELETE FROM certificates WHERE "+column+" = ?", subjectID)
}
