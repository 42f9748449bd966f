package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/training-service/internal/events"
	"github.com/SAP-F-2025/training-service/internal/metrics"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/validator"
)

// errIssueRace marks a certificate write that lost a race against a
// concurrent issue and can be retried from scratch.
var errIssueRace = errors.New("certificate issue raced")

type certificateService struct {
	repo      repositories.Repository
	minter    *IdentifierMinter
	publisher events.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewCertificateService(repo repositories.Repository, minter *IdentifierMinter, publisher events.EventPublisher, m *metrics.Metrics, logger *slog.Logger, validator *validator.Validator) CertificateService {
	return &certificateService{
		repo:      repo,
		minter:    minter,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// Issue creates the certificate for (subject, course) or merges the
// overrides into the existing one. Repeated calls converge on one row.
func (s *certificateService) Issue(ctx context.Context, req *models.IssueCertificateRequest) (certificate *models.Certificate, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("issue_certificate", KindOf(err), start) }()

	if errs := s.validator.GetBusinessValidator().ValidateIssueCertificate(req); len(errs) > 0 {
		return nil, validationErr(errs)
	}

	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	var updated bool
	attempts := s.minter.MaxAttempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
			var txErr error
			certificate, updated, txErr = s.issueTx(ctx, tx, req)
			return txErr
		})
		if !errors.Is(err, errIssueRace) {
			break
		}
		s.logger.WarnContext(ctx, "Certificate issue raced, retrying",
			"subject_type", req.SubjectType,
			"subject_id", req.SubjectID,
			"course_id", req.CourseID,
			"attempt", attempt)
	}
	if err != nil {
		return nil, storeErr("issue certificate", err)
	}

	s.logger.InfoContext(ctx, "Certificate issued",
		"certificate_id", certificate.ID,
		"subject_type", req.SubjectType,
		"subject_id", req.SubjectID,
		"course_id", req.CourseID,
		"updated", updated)

	s.publishIssued(ctx, req, certificate, updated)
	return certificate, nil
}

func (s *certificateService) checkReferences(ctx context.Context, req *models.IssueCertificateRequest) error {
	switch req.SubjectType {
	case models.SubjectParticipant:
		if _, err := s.repo.Participant().GetByID(ctx, nil, req.SubjectID); err != nil {
			return lookupErr("Participant", req.SubjectID, err)
		}
	case models.SubjectInstructure:
		if _, err := s.repo.Instructure().GetByID(ctx, nil, req.SubjectID); err != nil {
			return lookupErr("Instructure", req.SubjectID, err)
		}
	}

	if _, err := s.repo.Course().GetByID(ctx, nil, req.CourseID); err != nil {
		return lookupErr("Course", req.CourseID, err)
	}
	return nil
}

func (s *certificateService) issueTx(ctx context.Context, tx *gorm.DB, req *models.IssueCertificateRequest) (*models.Certificate, bool, error) {
	existing, err := s.repo.Certificate().GetBySubjectAndCourse(ctx, tx, req.SubjectType, req.SubjectID, req.CourseID)
	switch {
	case err == nil:
		certificate, err := s.update(ctx, tx, existing, req.Overrides)
		return certificate, true, err
	case repositories.IsNotFoundError(err):
		certificate, err := s.create(ctx, tx, req)
		return certificate, false, err
	default:
		return nil, false, storeErr("get certificate", err)
	}
}

func (s *certificateService) update(ctx context.Context, tx *gorm.DB, certificate *models.Certificate, o models.CertificateOverrides) (*models.Certificate, error) {
	if o.CertificateNumber != nil && *o.CertificateNumber != certificate.CertificateNumber {
		if err := s.ensureNumberFree(ctx, tx, *o.CertificateNumber, &certificate.ID); err != nil {
			return nil, err
		}
		certificate.CertificateNumber = *o.CertificateNumber
	}
	if o.IssueDate != nil {
		certificate.IssueDate = *o.IssueDate
	}
	if o.ExpiryDate != nil {
		certificate.ExpiryDate = o.ExpiryDate
	}
	if o.Status != nil {
		certificate.Status = *o.Status
	}
	if o.PdfURL != nil {
		certificate.PdfURL = o.PdfURL
	}
	if o.DriveLink != nil {
		certificate.DriveLink = o.DriveLink
	}

	if err := s.repo.Certificate().Update(ctx, tx, certificate); err != nil {
		if repositories.IsConstraintViolation(err, repositories.ConstraintCertificateNumber) {
			return nil, numberTaken(certificate.CertificateNumber)
		}
		return nil, storeErr("update certificate", err)
	}
	return certificate, nil
}

func (s *certificateService) create(ctx context.Context, tx *gorm.DB, req *models.IssueCertificateRequest) (*models.Certificate, error) {
	o := req.Overrides

	var number string
	if o.CertificateNumber != nil {
		if err := s.ensureNumberFree(ctx, tx, *o.CertificateNumber, nil); err != nil {
			return nil, err
		}
		number = *o.CertificateNumber
	} else {
		minted, err := s.minter.Generate(ctx, tx)
		if err != nil {
			return nil, err
		}
		number = minted
	}

	issueDate := s.now().UTC()
	if o.IssueDate != nil {
		issueDate = *o.IssueDate
	}
	expiryDate := issueDate.AddDate(1, 0, 0)
	if o.ExpiryDate != nil {
		expiryDate = *o.ExpiryDate
	}
	status := models.CertificateStatusValid
	if o.Status != nil {
		status = *o.Status
	}

	certificate := &models.Certificate{
		CertificateNumber: number,
		CourseID:          req.CourseID,
		IssueDate:         issueDate,
		ExpiryDate:        &expiryDate,
		Status:            status,
		PdfURL:            o.PdfURL,
		DriveLink:         o.DriveLink,
	}
	subjectID := req.SubjectID
	if req.SubjectType == models.SubjectParticipant {
		certificate.ParticipantID = &subjectID
	} else {
		certificate.InstructureID = &subjectID
	}

	if err := s.repo.Certificate().Create(ctx, tx, certificate); err != nil {
		name, _ := repositories.ConstraintViolation(err)
		switch {
		case name == repositories.ConstraintCertificateNumber && o.CertificateNumber != nil:
			return nil, numberTaken(number)
		case name == repositories.ConstraintCertificateNumber,
			name == repositories.ConstraintCertificateParticipant,
			name == repositories.ConstraintCertificateInstructure:
			return nil, fmt.Errorf("%s: %w", name, errIssueRace)
		}
		return nil, storeErr("create certificate", err)
	}
	return certificate, nil
}

func (s *certificateService) ensureNumberFree(ctx context.Context, tx *gorm.DB, number string, excludeID *uint) error {
	taken, err := s.repo.Certificate().ExistsByNumber(ctx, tx, number, excludeID)
	if err != nil {
		return storeErr("check certificate number", err)
	}
	if taken {
		return numberTaken(number)
	}
	return nil
}

func (s *certificateService) publishIssued(ctx context.Context, req *models.IssueCertificateRequest, certificate *models.Certificate, updated bool) {
	if s.publisher == nil {
		return
	}

	event := events.NewEvent(events.TypeCertificateIssued, events.CertificateIssuedPayload{
		CertificateID:     certificate.ID,
		CertificateNumber: certificate.CertificateNumber,
		SubjectType:       string(req.SubjectType),
		SubjectID:         req.SubjectID,
		CourseID:          req.CourseID,
		IssueDate:         certificate.IssueDate,
		ExpiryDate:        certificate.ExpiryDate,
		Updated:           updated,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.IncrementEventsPublishFailed()
		s.logger.WarnContext(ctx, "Failed to publish certificate event",
			"certificate_id", certificate.ID,
			"error", err)
	}
}

func numberTaken(number string) error {
	return &ConflictError{Message: fmt.Sprintf("certificate number %s is already in use", number)}
}
