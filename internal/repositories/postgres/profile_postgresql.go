package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
)

type ParticipantPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewParticipantPostgreSQL(db *gorm.DB) repositories.ParticipantRepository {
	return &ParticipantPostgreSQL{db: db, helpers: NewSharedHelpers(db)}
}

func (p *ParticipantPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Participant, error) {
	var participant models.Participant
	if err := p.helpers.conn(ctx, tx).First(&participant, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return &participant, nil
}

func (p *ParticipantPostgreSQL) GetOldestByUser(ctx context.Context, tx *gorm.DB, userID string) (*models.Participant, error) {
	var participant models.Participant
	err := p.helpers.conn(ctx, tx).
		Where("user_id = ?", userID).
		Order("id ASC").
		First(&participant).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get participant by user: %w", err)
	}
	return &participant, nil
}

func (p *ParticipantPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]models.Participant, error) {
	var participants []models.Participant
	err := p.helpers.conn(ctx, tx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&participants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list participants by user: %w", err)
	}
	return participants, nil
}

func (p *ParticipantPostgreSQL) CountByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, error) {
	count, err := p.helpers.Count(ctx, tx, &models.Participant{}, "user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants by user: %w", err)
	}
	return count, nil
}

func (p *ParticipantPostgreSQL) Create(ctx context.Context, tx *gorm.DB, participant *models.Participant) error {
	if err := p.helpers.conn(ctx, tx).Create(participant).Error; err != nil {
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (p *ParticipantPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := p.helpers.DeleteByID(ctx, tx, &models.Participant{}, id); err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	return nil
}

type InstructurePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewInstructurePostgreSQL(db *gorm.DB) repositories.InstructureRepository {
	return &InstructurePostgreSQL{db: db, helpers: NewSharedHelpers(db)}
}

func (i *InstructurePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Instructure, error) {
	var instructure models.Instructure
	if err := i.helpers.conn(ctx, tx).First(&instructure, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get instructure: %w", err)
	}
	return &instructure, nil
}

func (i *InstructurePostgreSQL) GetOldestByUser(ctx context.Context, tx *gorm.DB, userID string) (*models.Instructure, error) {
	var instructure models.Instructure
	err := i.helpers.conn(ctx, tx).
		Where("user_id = ?", userID).
		Order("id ASC").
		First(&instructure).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get instructure by user: %w", err)
	}
	return &instructure, nil
}

func (i *InstructurePostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]models.Instructure, error) {
	var instructures []models.Instructure
	err := i.helpers.conn(ctx, tx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&instructures).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list instructures by user: %w", err)
	}
	return instructures, nil
}

func (i *InstructurePostgreSQL) CountByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, error) {
	count, err := i.helpers.Count(ctx, tx, &models.Instructure{}, "user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count instructures by user: %w", err)
	}
	return count, nil
}

func (i *InstructurePostgreSQL) Create(ctx context.Context, tx *gorm.DB, instructure *models.Instructure) error {
	if err := i.helpers.conn(ctx, tx).Create(instructure).Error; err != nil {
		return fmt.Errorf("failed to create instructure: %w", err)
	}
	return nil
}

func (i *InstructurePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := i.helpers.DeleteByID(ctx, tx, &models.Instructure{}, id); err != nil {
		return fmt.Errorf("failed to delete instructure: %w", err)
	}
	return nil
}
