package services

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
)

// RoleRegistry resolves role names to ids, creating missing roles on demand.
type RoleRegistry struct {
	roles  repositories.RoleRepository
	group  singleflight.Group
	logger *slog.Logger
}

func NewRoleRegistry(roles repositories.RoleRepository, logger *slog.Logger) *RoleRegistry {
	return &RoleRegistry{roles: roles, logger: logger}
}

// EnsureRole returns the id of the named role, inserting it if absent. With a
// non-nil tx the insert joins that transaction.
func (r *RoleRegistry) EnsureRole(ctx context.Context, tx *gorm.DB, name, description string) (uint, error) {
	if description == "" {
		description = models.DefaultRoles[name]
	}

	if tx != nil {
		return r.ensure(ctx, tx, name, description)
	}

	// Callers collapsed onto this flight share its result, so one caller's
	// cancellation must not fail the others.
	shared := context.WithoutCancel(ctx)
	v, err, _ := r.group.Do(name, func() (interface{}, error) {
		return r.ensure(shared, nil, name, description)
	})
	if err != nil {
		return 0, err
	}
	return v.(uint), nil
}

func (r *RoleRegistry) ensure(ctx context.Context, tx *gorm.DB, name, description string) (uint, error) {
	role, err := r.roles.GetByName(ctx, tx, name)
	if err == nil {
		return role.ID, nil
	}
	if !repositories.IsNotFoundError(err) {
		return 0, storeErr("get role", err)
	}

	role, err = r.roles.EnsureByName(ctx, tx, name, description)
	if err != nil {
		return 0, storeErr("ensure role", err)
	}

	r.logger.InfoContext(ctx, "Role ensured", "role", name, "role_id", role.ID)
	return role.ID, nil
}

// EnsureDefaultRoles creates the baseline role set. It runs once at startup.
func (r *RoleRegistry) EnsureDefaultRoles(ctx context.Context) error {
	names := make([]string, 0, len(models.DefaultRoles))
	for name := range models.DefaultRoles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := r.EnsureRole(ctx, nil, name, models.DefaultRoles[name]); err != nil {
			return err
		}
	}
	return nil
}
