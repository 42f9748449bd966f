package models

import "time"

type Course struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Code        string  `json:"code" gorm:"uniqueIndex;not null;size:50"`
	Title       string  `json:"title" gorm:"not null;size:200"`
	Description *string `json:"description" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Class struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	CourseID     uint       `json:"course_id" gorm:"not null;index"`
	Name         string     `json:"name" gorm:"not null;size:200"`
	Quota        int        `json:"quota" gorm:"not null"`
	Price        int64      `json:"price" gorm:"not null;default:0"`
	StartRegDate time.Time  `json:"start_reg_date" gorm:"not null"`
	EndRegDate   time.Time  `json:"end_reg_date" gorm:"not null"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Location     *string    `json:"location" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegistrationOpen reports whether now falls inside the inclusive
// registration window.
func (c *Class) RegistrationOpen(now time.Time) bool {
	return !now.Before(c.StartRegDate) && !now.After(c.EndRegDate)
}

type TeachingAssignment struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	ClassID       uint   `json:"class_id" gorm:"not null;uniqueIndex:uq_teaching_assignments_class_instructure"`
	InstructureID uint   `json:"instructure_id" gorm:"not null;uniqueIndex:uq_teaching_assignments_class_instructure;index"`
	Role          string `json:"role" gorm:"size:50;default:lead"`

	CreatedAt time.Time `json:"created_at"`
}

func (Course) TableName() string {
	return "courses"
}

func (Class) TableName() string {
	return "classes"
}

func (TeachingAssignment) TableName() string {
	return "teaching_assignments"
}
