package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// conn returns the transaction DB if provided, otherwise the default DB
func (h *SharedHelpers) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return h.db.WithContext(ctx)
}

// Count counts rows of model matching the condition
func (h *SharedHelpers) Count(ctx context.Context, tx *gorm.DB, model interface{}, query string, args ...interface{}) (int64, error) {
	var count int64
	err := h.conn(ctx, tx).Model(model).Where(query, args...).Count(&count).Error
	return count, err
}

// Exec runs a raw statement and returns the number of affected rows
func (h *SharedHelpers) Exec(ctx context.Context, tx *gorm.DB, op string, sql string, args ...interface{}) (int64, error) {
	result := h.conn(ctx, tx).Exec(sql, args...)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to %s: %w", op, result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteByID deletes one row by primary key and reports gorm.ErrRecordNotFound
// when nothing matched.
func (h *SharedHelpers) DeleteByID(ctx context.Context, tx *gorm.DB, model interface{}, id interface{}) error {
	result := h.conn(ctx, tx).Delete(model, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
