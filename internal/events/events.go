package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TypeCertificateIssued = "certificate.issued"
	TypeRegistrationAdded = "registration.created"
)

// Event is a notification emitted after a committed mutation.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

func NewEvent(eventType string, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// CertificateIssuedPayload is sent to the notification sender so it can
// mail the holder.
type CertificateIssuedPayload struct {
	CertificateID     uint       `json:"certificate_id"`
	CertificateNumber string     `json:"certificate_number"`
	SubjectType       string     `json:"subject_type"`
	SubjectID         uint       `json:"subject_id"`
	CourseID          uint       `json:"course_id"`
	IssueDate         time.Time  `json:"issue_date"`
	ExpiryDate        *time.Time `json:"expiry_date,omitempty"`
	Updated           bool       `json:"updated"`
}

type RegistrationCreatedPayload struct {
	RegistrationID   uint   `json:"registration_id"`
	ParticipantID    uint   `json:"participant_id"`
	ClassID          uint   `json:"class_id"`
	PaymentReference string `json:"payment_reference"`
	Amount           int64  `json:"amount"`
}

// EventPublisher delivers events to the notification sender.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
