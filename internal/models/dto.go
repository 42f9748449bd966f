package models

import "time"

type EnrollRequest struct {
	ClassID uint `json:"class_id" validate:"required"`
	// Either an existing participant id or the caller's verified identity.
	ParticipantID *uint     `json:"participant_id" validate:"omitempty,min=1"`
	Identity      *Identity `json:"-"`
	PaymentMethod *string   `json:"payment_method" validate:"omitempty,payment_method"`
}

type EnrollResponse struct {
	RegistrationID   uint   `json:"registration_id"`
	ParticipantID    uint   `json:"participant_id"`
	PaymentReference string `json:"payment_reference"`
	Amount           int64  `json:"amount"`
}

// CertificateOverrides holds the fields a caller may set explicitly. Nil
// fields are left untouched on update and defaulted on create.
type CertificateOverrides struct {
	CertificateNumber *string    `json:"certificate_number" validate:"omitempty,numeric,min=4,max=32"`
	IssueDate         *time.Time `json:"issue_date"`
	ExpiryDate        *time.Time `json:"expiry_date"`
	Status            *string    `json:"status" validate:"omitempty,oneof=Valid Expired Revoked"`
	PdfURL            *string    `json:"pdf_url" validate:"omitempty,url,max=500"`
	DriveLink         *string    `json:"drive_link" validate:"omitempty,url,max=500"`
}

type IssueCertificateRequest struct {
	SubjectType SubjectType          `json:"subject_type" validate:"required,subject_type"`
	SubjectID   uint                 `json:"subject_id" validate:"required"`
	CourseID    uint                 `json:"course_id" validate:"required"`
	Overrides   CertificateOverrides `json:"overrides"`
}

type DeletionTarget string

const (
	TargetUser        DeletionTarget = "User"
	TargetParticipant DeletionTarget = "Participant"
	TargetInstructure DeletionTarget = "Instructure"
)

type DeleteRequest struct {
	TargetKind DeletionTarget
	// Participant and Instructure ids are numeric; user ids are opaque strings.
	ID          string
	Force       bool
	DeleteOwner bool
}

type AssignRoleRequest struct {
	RoleName string `json:"role_name" validate:"required,role_name"`
}

// DependencyCounts is the result of a dependency check, keyed by relation.
type DependencyCounts map[string]int64

func (d DependencyCounts) Total() int64 {
	var total int64
	for _, n := range d {
		total += n
	}
	return total
}

// CleanupStep records one relation handled during a deletion.
type CleanupStep struct {
	Name string `json:"name"`
	Rows int64  `json:"rows"`
}

type DeleteResult struct {
	TargetKind    DeletionTarget `json:"target_kind"`
	ID            string         `json:"id"`
	Forced        bool           `json:"forced"`
	Steps         []CleanupStep  `json:"steps"`
	OwnerDeleted  bool           `json:"owner_deleted"`
	OwnerRetained bool           `json:"owner_retained"`
}
