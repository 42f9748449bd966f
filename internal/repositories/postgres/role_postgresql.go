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

type RolePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewRolePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.RoleRepository {
	return &RolePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

// EnsureByName relies on the unique name constraint: a losing concurrent
// insert becomes a no-op and the follow-up read sees the winner's row.
func (r *RolePostgreSQL) EnsureByName(ctx context.Context, tx *gorm.DB, name, description string) (*models.Role, error) {
	role := models.Role{Name: name}
	if description != "" {
		role.Description = &description
	}

	err := r.helpers.conn(ctx, tx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&role).Error
	if err != nil {
		return nil, fmt.Errorf("failed to ensure role %q: %w", name, err)
	}

	return r.GetByName(ctx, tx, name)
}

// GetByName serves autocommit reads from cache. Reads inside a transaction
// always hit the database so they observe uncommitted inserts.
func (r *RolePostgreSQL) GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.Role, error) {
	fetch := func() (interface{}, error) {
		var role models.Role
		if err := r.helpers.conn(ctx, tx).Where("name = ?", name).First(&role).Error; err != nil {
			return nil, fmt.Errorf("failed to get role %q: %w", name, err)
		}
		return &role, nil
	}

	if tx != nil {
		value, err := fetch()
		if err != nil {
			return nil, err
		}
		return value.(*models.Role), nil
	}

	var role models.Role
	if err := r.cacheManager.Role.CacheOrExecute(ctx, "name:"+name, &role, cache.RoleCacheConfig.TTL, fetch); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RolePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Role, error) {
	var role models.Role
	if err := r.helpers.conn(ctx, tx).First(&role, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return &role, nil
}
