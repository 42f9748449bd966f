package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
	pgFKViolation     = "23503"
)

// Constraint names the store uses as race arbiters.
const (
	ConstraintRegistrationUnique     = "uq_course_registrations_participant_class"
	ConstraintClassQuota             = "ck_course_registrations_quota"
	ConstraintCertificateNumber      = "uq_certificates_certificate_number"
	ConstraintCertificateParticipant = "uq_certificates_participant_course"
	ConstraintCertificateInstructure = "uq_certificates_instructure_course"
	ConstraintPaymentReference       = "uq_payments_reference"
)

var ErrUserNotProvisioned = errors.New("user not present in identity directory")

// IsNotFoundError reports whether err means the requested row does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrUserNotProvisioned)
}

// ConstraintViolation returns the constraint name of a unique or check
// violation carried by err, if any.
func ConstraintViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	switch pgErr.Code {
	case pgUniqueViolation, pgCheckViolation:
		return pgErr.ConstraintName, true
	}
	return "", false
}

// IsConstraintViolation reports whether err violates the named constraint.
func IsConstraintViolation(err error, constraint string) bool {
	name, ok := ConstraintViolation(err)
	return ok && name == constraint
}

// IsForeignKeyViolation reports whether err was raised because a row is
// still referenced.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgFKViolation
}
