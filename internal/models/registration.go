package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RegStatusPending   = "Pending"
	RegStatusConfirmed = "Confirmed"

	PaymentStatusUnpaid = "Unpaid"
	PaymentStatusPaid   = "Paid"
)

type CourseRegistration struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	ParticipantID    uint      `json:"participant_id" gorm:"not null;uniqueIndex:uq_course_registrations_participant_class"`
	ClassID          uint      `json:"class_id" gorm:"not null;uniqueIndex:uq_course_registrations_participant_class;index"`
	RegStatus        string    `json:"reg_status" gorm:"not null;size:20;default:Pending"`
	PaymentStatus    string    `json:"payment_status" gorm:"not null;size:20;default:Unpaid"`
	Payment          int64     `json:"payment" gorm:"not null;default:0"`
	RegistrationDate time.Time `json:"registration_date" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Payment struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	RegistrationID uint       `json:"registration_id" gorm:"not null;index"`
	Amount         int64      `json:"amount" gorm:"not null"`
	Method         *string    `json:"method" gorm:"size:30"`
	Status         string     `json:"status" gorm:"not null;size:20;default:Unpaid"`
	Reference      string     `json:"reference" gorm:"uniqueIndex;not null;size:64"`
	PaidAt         *time.Time `json:"paid_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Certification is the competency result recorded for a registration.
type Certification struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	RegistrationID uint       `json:"registration_id" gorm:"not null;index"`
	Status         string     `json:"status" gorm:"not null;size:30"`
	Score          *float64   `json:"score"`
	AssessedAt     *time.Time `json:"assessed_at"`

	CreatedAt time.Time `json:"created_at"`
}

type ValueReport struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	RegistrationID uint           `json:"registration_id" gorm:"not null;index"`
	InstructureID  uint           `json:"instructure_id" gorm:"not null;index"`
	Scores         datatypes.JSON `json:"scores" gorm:"type:jsonb"`
	Comment        *string        `json:"comment" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RosterEntry is one row of a class roster export.
type RosterEntry struct {
	RegistrationID   uint      `json:"registration_id"`
	ParticipantName  string    `json:"participant_name"`
	RegStatus        string    `json:"reg_status"`
	PaymentStatus    string    `json:"payment_status"`
	Amount           int64     `json:"amount"`
	PaymentReference string    `json:"payment_reference"`
	RegistrationDate time.Time `json:"registration_date"`
}

func (CourseRegistration) TableName() string {
	return "course_registrations"
}

func (Payment) TableName() string {
	return "payments"
}

func (Certification) TableName() string {
	return "certifications"
}

func (ValueReport) TableName() string {
	return "value_reports"
}
