package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/training-service/internal/events"
	"github.com/SAP-F-2025/training-service/internal/metrics"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/validator"
)

// paymentReferenceAttempts bounds how often an enrollment is replayed after
// its payment reference collided with an existing one.
const paymentReferenceAttempts = 3

var errPaymentReferenceTaken = errors.New("payment reference taken")

type enrollmentService struct {
	repo      repositories.Repository
	profiles  ProfileService
	publisher events.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewEnrollmentService(repo repositories.Repository, profiles ProfileService, publisher events.EventPublisher, m *metrics.Metrics, logger *slog.Logger, validator *validator.Validator) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		profiles:  profiles,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// Enroll registers a participant in a class and opens its payment record.
// Registration and payment are written in one transaction.
func (s *enrollmentService) Enroll(ctx context.Context, req *models.EnrollRequest) (resp *models.EnrollResponse, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("enroll", KindOf(err), start) }()

	if errs := s.validator.GetBusinessValidator().ValidateEnroll(req); len(errs) > 0 {
		return nil, validationErr(errs)
	}

	class, err := s.repo.Class().GetByID(ctx, nil, req.ClassID)
	if err != nil {
		return nil, lookupErr("Class", req.ClassID, err)
	}

	if !class.RegistrationOpen(s.now()) {
		return nil, fmt.Errorf("class %d accepts registrations from %s to %s: %w",
			class.ID, class.StartRegDate.Format(time.RFC3339), class.EndRegDate.Format(time.RFC3339), ErrRegistrationClosed)
	}

	for attempt := 1; attempt <= paymentReferenceAttempts; attempt++ {
		err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
			var txErr error
			resp, txErr = s.enrollTx(ctx, tx, class, req)
			return txErr
		})
		if !errors.Is(err, errPaymentReferenceTaken) {
			break
		}
		s.logger.WarnContext(ctx, "Payment reference collided, retrying",
			"class_id", class.ID,
			"attempt", attempt)
	}
	if err != nil {
		return nil, storeErr("enroll", err)
	}

	s.logger.InfoContext(ctx, "Participant enrolled",
		"registration_id", resp.RegistrationID,
		"participant_id", resp.ParticipantID,
		"class_id", class.ID)

	s.publish(ctx, events.NewEvent(events.TypeRegistrationAdded, events.RegistrationCreatedPayload{
		RegistrationID:   resp.RegistrationID,
		ParticipantID:    resp.ParticipantID,
		ClassID:          class.ID,
		PaymentReference: resp.PaymentReference,
		Amount:           resp.Amount,
	}))

	return resp, nil
}

// enrollTx writes the registration and its payment inside tx.
func (s *enrollmentService) enrollTx(ctx context.Context, tx *gorm.DB, class *models.Class, req *models.EnrollRequest) (*models.EnrollResponse, error) {
	participantID, err := s.resolveParticipant(ctx, tx, req)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.Registration().CountByClass(ctx, tx, class.ID)
	if err != nil {
		return nil, storeErr("count registrations", err)
	}
	if taken >= int64(class.Quota) {
		return nil, fmt.Errorf("class %d has %d of %d seats taken: %w", class.ID, taken, class.Quota, ErrClassFull)
	}

	exists, err := s.repo.Registration().ExistsByParticipantAndClass(ctx, tx, participantID, class.ID)
	if err != nil {
		return nil, storeErr("check registration", err)
	}
	if exists {
		return nil, &ConflictError{Message: fmt.Sprintf("participant %d is already registered for class %d", participantID, class.ID)}
	}

	registration := &models.CourseRegistration{
		ParticipantID:    participantID,
		ClassID:          class.ID,
		RegStatus:        models.RegStatusPending,
		PaymentStatus:    models.PaymentStatusUnpaid,
		Payment:          class.Price,
		RegistrationDate: s.now().UTC(),
	}
	if err := s.repo.Registration().Create(ctx, tx, registration); err != nil {
		return nil, translateRegistrationErr(err, participantID, class.ID)
	}

	payment := &models.Payment{
		RegistrationID: registration.ID,
		Amount:         class.Price,
		Method:         req.PaymentMethod,
		Status:         models.PaymentStatusUnpaid,
		Reference:      newPaymentReference(s.now()),
	}
	if err := s.repo.Payment().Create(ctx, tx, payment); err != nil {
		if repositories.IsConstraintViolation(err, repositories.ConstraintPaymentReference) {
			return nil, fmt.Errorf("payment reference %s: %w", payment.Reference, errPaymentReferenceTaken)
		}
		return nil, storeErr("create payment", err)
	}

	return &models.EnrollResponse{
		RegistrationID:   registration.ID,
		ParticipantID:    participantID,
		PaymentReference: payment.Reference,
		Amount:           payment.Amount,
	}, nil
}

func (s *enrollmentService) GetRegistration(ctx context.Context, participantID, classID uint) (*models.CourseRegistration, error) {
	registration, err := s.repo.Registration().GetByParticipantAndClass(ctx, nil, participantID, classID)
	if err != nil {
		return nil, lookupErr("Registration", fmt.Sprintf("%d/%d", participantID, classID), err)
	}
	return registration, nil
}

func (s *enrollmentService) resolveParticipant(ctx context.Context, tx *gorm.DB, req *models.EnrollRequest) (uint, error) {
	if req.ParticipantID != nil {
		participant, err := s.repo.Participant().GetByID(ctx, tx, *req.ParticipantID)
		if err != nil {
			return 0, lookupErr("Participant", *req.ParticipantID, err)
		}
		return participant.ID, nil
	}

	participant, err := s.profiles.PromoteToParticipantTx(ctx, tx, *req.Identity)
	if err != nil {
		return 0, err
	}
	return participant.ID, nil
}

func (s *enrollmentService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.IncrementEventsPublishFailed()
		s.logger.WarnContext(ctx, "Failed to publish event", "event_type", event.Type, "error", err)
	}
}

// translateRegistrationErr maps store guard violations raised by a racing
// insert onto the matching error kinds.
func translateRegistrationErr(err error, participantID, classID uint) error {
	switch name, _ := repositories.ConstraintViolation(err); name {
	case repositories.ConstraintRegistrationUnique:
		return &ConflictError{Message: fmt.Sprintf("participant %d is already registered for class %d", participantID, classID)}
	case repositories.ConstraintClassQuota:
		return fmt.Errorf("class %d is full: %w", classID, ErrClassFull)
	}
	return storeErr("create registration", err)
}

func newPaymentReference(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("PAY-%s-%s", now.UTC().Format("20060102"), strings.ToUpper(id))
}
