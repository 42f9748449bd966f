package models

import "time"

type SubjectType string

const (
	SubjectParticipant SubjectType = "Participant"
	SubjectInstructure SubjectType = "Instructure"
)

const CertificateStatusValid = "Valid"

// Certificate belongs to exactly one of a participant or an instructor.
type Certificate struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	CertificateNumber string     `json:"certificate_number" gorm:"not null;size:32;uniqueIndex:uq_certificates_certificate_number"`
	ParticipantID     *uint      `json:"participant_id" gorm:"index"`
	InstructureID     *uint      `json:"instructure_id" gorm:"index"`
	CourseID          uint       `json:"course_id" gorm:"not null;index"`
	IssueDate         time.Time  `json:"issue_date" gorm:"not null"`
	ExpiryDate        *time.Time `json:"expiry_date"`
	Status            string     `json:"status" gorm:"not null;size:20;default:Valid"`
	PdfURL            *string    `json:"pdf_url" gorm:"size:500"`
	DriveLink         *string    `json:"drive_link" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Certificate) Subject() (SubjectType, uint) {
	if c.ParticipantID != nil {
		return SubjectParticipant, *c.ParticipantID
	}
	if c.InstructureID != nil {
		return SubjectInstructure, *c.InstructureID
	}
	return "", 0
}

func (Certificate) TableName() string {
	return "certificates"
}
