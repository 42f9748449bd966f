package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrConflict                = errors.New("conflict")
	ErrRegistrationClosed      = errors.New("registration closed")
	ErrClassFull               = errors.New("class full")
	ErrDependencyExists        = errors.New("dependency exists")
	ErrDependencyCleanupFailed = errors.New("dependency cleanup failed")
	ErrValidationFailed        = errors.New("validation failed")
	ErrStoreUnavailable        = errors.New("store unavailable")
)

// Error kinds reported to callers and metrics.
const (
	KindNotFound                = "NotFound"
	KindConflict                = "Conflict"
	KindRegistrationClosed      = "RegistrationClosed"
	KindClassFull               = "ClassFull"
	KindDependencyExists        = "DependencyExists"
	KindDependencyCleanupFailed = "DependencyCleanupFailed"
	KindValidation              = "ValidationError"
	KindStoreUnavailable        = "StoreUnavailable"
)

// NotFoundError names the missing entity.
type NotFoundError struct {
	Resource string
	ID       interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func newNotFound(resource string, id interface{}) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError describes which uniqueness rule was hit.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// DependencyError carries the dependents that blocked a non-forced delete.
type DependencyError struct {
	Target     models.DeletionTarget
	ID         string
	Dependents models.DependencyCounts
}

func (e *DependencyError) Error() string {
	parts := make([]string, 0, len(e.Dependents))
	for name, n := range e.Dependents {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", name, n))
		}
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s %s has dependents: %s", e.Target, e.ID, strings.Join(parts, ", "))
}

func (e *DependencyError) Is(target error) bool { return target == ErrDependencyExists }

// CleanupError names the force-delete step that failed. The whole cleanup
// was rolled back.
type CleanupError struct {
	Step string
	Err  error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("cleanup step %q failed: %v", e.Step, e.Err)
}

func (e *CleanupError) Unwrap() error { return e.Err }

func (e *CleanupError) Is(target error) bool { return target == ErrDependencyCleanupFailed }

// StoreError wraps a transport or store failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

// KindOf maps err onto the closed error taxonomy.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidationFailed):
		return KindValidation
	case errors.Is(err, ErrDependencyCleanupFailed):
		return KindDependencyCleanupFailed
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrRegistrationClosed):
		return KindRegistrationClosed
	case errors.Is(err, ErrClassFull):
		return KindClassFull
	case errors.Is(err, ErrDependencyExists):
		return KindDependencyExists
	}
	return KindStoreUnavailable
}

func isClassified(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrConflict, ErrRegistrationClosed, ErrClassFull,
		ErrDependencyExists, ErrDependencyCleanupFailed, ErrValidationFailed, ErrStoreUnavailable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// storeErr wraps an unclassified repository error as StoreUnavailable and
// passes already classified errors through.
func storeErr(op string, err error) error {
	if err == nil || isClassified(err) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// lookupErr turns a missing row into NotFound and anything else into a
// store error.
func lookupErr(resource string, id interface{}, err error) error {
	if repositories.IsNotFoundError(err) {
		return newNotFound(resource, id)
	}
	return storeErr("get "+strings.ToLower(resource), err)
}

func validationErr(errs error) error {
	return fmt.Errorf("%w: %w", ErrValidationFailed, errs)
}
