package validator

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/training-service/internal/models"
)

var paymentMethods = map[string]bool{
	"bank_transfer": true,
	"credit_card":   true,
	"e_wallet":      true,
	"cash":          true,
}

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	bv := &BusinessValidator{validate: validator.New()}
	bv.registerBusinessRules()
	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func (bv *BusinessValidator) ValidateEnroll(req *models.EnrollRequest) ValidationErrors {
	errs := bv.Validate(req)

	if req.ParticipantID == nil && (req.Identity == nil || strings.TrimSpace(req.Identity.UserID) == "") {
		errs = append(errs, ValidationError{
			Field:   "participant_id",
			Message: "either a participant id or an authenticated identity is required",
			Rule:    "participant_or_identity",
		})
	}

	return errs
}

func (bv *BusinessValidator) ValidateIssueCertificate(req *models.IssueCertificateRequest) ValidationErrors {
	errs := bv.Validate(req)

	o := req.Overrides
	if o.IssueDate != nil && o.ExpiryDate != nil && o.ExpiryDate.Before(*o.IssueDate) {
		errs = append(errs, ValidationError{
			Field:   "expiry_date",
			Message: "must not be before issue_date",
			Value:   *o.ExpiryDate,
			Rule:    "after_issue_date",
		})
	}

	return errs
}

func (bv *BusinessValidator) ValidateDelete(req *models.DeleteRequest) ValidationErrors {
	var errs ValidationErrors

	switch req.TargetKind {
	case models.TargetUser:
		if strings.TrimSpace(req.ID) == "" {
			errs = append(errs, ValidationError{Field: "id", Message: "is required", Rule: "required"})
		}
	case models.TargetParticipant, models.TargetInstructure:
		if id, err := strconv.ParseUint(req.ID, 10, 64); err != nil || id == 0 {
			errs = append(errs, ValidationError{Field: "id", Message: "must be a positive integer", Value: req.ID, Rule: "numeric_id"})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "target_kind",
			Message: "must be one of: User Participant Instructure",
			Value:   req.TargetKind,
			Rule:    "oneof",
		})
	}

	if req.DeleteOwner && req.TargetKind != models.TargetParticipant {
		errs = append(errs, ValidationError{
			Field:   "delete_owner",
			Message: "only applies to participant deletion",
			Rule:    "participant_only",
		})
	}

	return errs
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("subject_type", func(fl validator.FieldLevel) bool {
		switch models.SubjectType(fl.Field().String()) {
		case models.SubjectParticipant, models.SubjectInstructure:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("role_name", func(fl validator.FieldLevel) bool {
		_, ok := models.DefaultRoles[fl.Field().String()]
		return ok
	})

	bv.validate.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return paymentMethods[strings.ToLower(fl.Field().String())]
	})
}
