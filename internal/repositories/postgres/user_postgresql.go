package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/training-service/internal/cache"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
)

type UserPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.UserRepository {
	return &UserPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := u.helpers.conn(ctx, tx).First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := u.helpers.conn(ctx, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if err := u.helpers.conn(ctx, tx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	cache.InvalidateUserCache(ctx, u.cacheManager, user.ID)
	return nil
}

func (u *UserPostgreSQL) UpdateRole(ctx context.Context, tx *gorm.DB, userID string, roleID uint) error {
	result := u.helpers.conn(ctx, tx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("role_id", roleID)
	if result.Error != nil {
		return fmt.Errorf("failed to update user role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update user role: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

func (u *UserPostgreSQL) SetInstructureRef(ctx context.Context, tx *gorm.DB, userID string, instructureID *uint) error {
	result := u.helpers.conn(ctx, tx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("instructure_id", instructureID)
	if result.Error != nil {
		return fmt.Errorf("failed to set instructure reference: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to set instructure reference: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

func (u *UserPostgreSQL) CountByInstructure(ctx context.Context, tx *gorm.DB, instructureID uint) (int64, error) {
	count, err := u.helpers.Count(ctx, tx, &models.User{}, "instructure_id = ?", instructureID)
	if err != nil {
		return 0, fmt.Errorf("failed to count users by instructure: %w", err)
	}
	return count, nil
}

func (u *UserPostgreSQL) ReassignFromInstructure(ctx context.Context, tx *gorm.DB, instructureID, roleID uint) (int64, error) {
	return u.helpers.Exec(ctx, tx, "reassign users from instructure",
		`UPDATE users SET instructure_id = NULL, role_id = ?, updated_at = now() WHERE instructure_id = ?`,
		roleID, instructureID)
}

func (u *UserPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	if err := u.helpers.DeleteByID(ctx, tx, &models.User{}, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	cache.InvalidateUserCache(ctx, u.cacheManager, id)
	return nil
}
