package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
)

type CoursePostgreSQL struct {
	helpers *SharedHelpers
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{helpers: NewSharedHelpers(db)}
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	var course models.Course
	if err := c.helpers.conn(ctx, tx).First(&course, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &course, nil
}

func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if err := c.helpers.conn(ctx, tx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

type ClassPostgreSQL struct {
	helpers *SharedHelpers
}

func NewClassPostgreSQL(db *gorm.DB) repositories.ClassRepository {
	return &ClassPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (c *ClassPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Class, error) {
	var class models.Class
	if err := c.helpers.conn(ctx, tx).First(&class, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get class: %w", err)
	}
	return &class, nil
}

func (c *ClassPostgreSQL) Create(ctx context.Context, tx *gorm.DB, class *models.Class) error {
	if err := c.helpers.conn(ctx, tx).Create(class).Error; err != nil {
		return fmt.Errorf("failed to create class: %w", err)
	}
	return nil
}

type TeachingAssignmentPostgreSQL struct {
	helpers *SharedHelpers
}

func NewTeachingAssignmentPostgreSQL(db *gorm.DB) repositories.TeachingAssignmentRepository {
	return &TeachingAssignmentPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (t *TeachingAssignmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, assignment *models.TeachingAssignment) error {
	if err := t.helpers.conn(ctx, tx).Create(assignment).Error; err != nil {
		return fmt.Errorf("failed to create teaching assignment: %w", err)
	}
	return nil
}

func (t *TeachingAssignmentPostgreSQL) CountByInstructure(ctx context.Context, tx *gorm.DB, instructureID uint) (int64, error) {
	count, err := t.helpers.Count(ctx, tx, &models.TeachingAssignment{}, "instructure_id = ?", instructureID)
	if err != nil {
		return 0, fmt.Errorf("failed to count teaching assignments: %w", err)
	}
	return count, nil
}

func (t *TeachingAssignmentPostgreSQL) DeleteByInstructure(ctx context.Context, tx *gorm.DB, instructureID uint) (int64, error) {
	return t.helpers.Exec(ctx, tx, "delete teaching assignments",
		`DELETE FROM teaching_assignments WHERE instructure_id = ?`, instructureID)
}
