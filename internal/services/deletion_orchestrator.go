package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/training-service/internal/metrics"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/validator"
)

// Dependency names reported by the dependency check.
const (
	depRegistrations       = "registrations"
	depCertificates        = "certificates"
	depTeachingAssignments = "teaching_assignments"
	depValueReports        = "value_reports"
	depReferencingUsers    = "referencing_users"
	depParticipants        = "participants"
	depInstructures        = "instructures"
)

// deletionOrchestrator removes users and profiles without leaving dangling
// references. The schema declares no cascading actions, so every dependent
// relation is cleaned explicitly, in dependency order, in one transaction.
type deletionOrchestrator struct {
	repo      repositories.Repository
	roles     *RoleRegistry
	metrics   *metrics.Metrics
	logger    *slog.Logger
	validator *validator.Validator
}

func NewDeletionOrchestrator(repo repositories.Repository, roles *RoleRegistry, m *metrics.Metrics, logger *slog.Logger, validator *validator.Validator) DeletionService {
	return &deletionOrchestrator{
		repo:      repo,
		roles:     roles,
		metrics:   m,
		logger:    logger,
		validator: validator,
	}
}

func (s *deletionOrchestrator) Delete(ctx context.Context, req *models.DeleteRequest) (result *models.DeleteResult, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("delete_"+string(req.TargetKind), KindOf(err), start) }()

	if errs := s.validator.GetBusinessValidator().ValidateDelete(req); len(errs) > 0 {
		return nil, validationErr(errs)
	}

	log := s.logger.With("target_kind", req.TargetKind, "target_id", req.ID, "force", req.Force)
	log.InfoContext(ctx, "Deletion requested")

	switch req.TargetKind {
	case models.TargetParticipant:
		result, err = s.deleteParticipant(ctx, req, log)
	case models.TargetInstructure:
		result, err = s.deleteInstructure(ctx, req, log)
	default:
		result, err = s.deleteUser(ctx, req, log)
	}
	if err != nil {
		return nil, err
	}

	for _, step := range result.Steps {
		s.metrics.AddCleanupRows(stepKind(step.Name), step.Rows)
	}
	log.InfoContext(ctx, "Deleted", "steps", len(result.Steps), "owner_deleted", result.OwnerDeleted)
	return result, nil
}

// CheckDependencies reports the dependents of a target without mutating.
func (s *deletionOrchestrator) CheckDependencies(ctx context.Context, kind models.DeletionTarget, id string) (models.DependencyCounts, error) {
	req := &models.DeleteRequest{TargetKind: kind, ID: id}
	if errs := s.validator.GetBusinessValidator().ValidateDelete(req); len(errs) > 0 {
		return nil, validationErr(errs)
	}

	switch kind {
	case models.TargetParticipant:
		pid := parseNumericID(id)
		if _, err := s.repo.Participant().GetByID(ctx, nil, pid); err != nil {
			return nil, lookupErr("Participant", pid, err)
		}
		return s.participantDependencies(ctx, pid)
	case models.TargetInstructure:
		iid := parseNumericID(id)
		if _, err := s.repo.Instructure().GetByID(ctx, nil, iid); err != nil {
			return nil, lookupErr("Instructure", iid, err)
		}
		return s.instructureDependencies(ctx, iid)
	default:
		if _, err := s.repo.User().GetByID(ctx, nil, id); err != nil {
			return nil, lookupErr("User", id, err)
		}
		return s.userDependencies(ctx, id)
	}
}

func (s *deletionOrchestrator) deleteParticipant(ctx context.Context, req *models.DeleteRequest, log *slog.Logger) (*models.DeleteResult, error) {
	id := parseNumericID(req.ID)
	participant, err := s.repo.Participant().GetByID(ctx, nil, id)
	if err != nil {
		return nil, lookupErr("Participant", id, err)
	}

	deps, err := s.participantDependencies(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate(ctx, req, deps, log); err != nil {
		return nil, err
	}

	result := &models.DeleteResult{TargetKind: req.TargetKind, ID: req.ID, Forced: req.Force}
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		run := s.newRunner(ctx, tx, req, result)
		if err := s.cleanParticipant(run, participant.ID); err != nil {
			return err
		}
		if req.DeleteOwner {
			return s.deleteOwner(run, participant.UserID, result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *deletionOrchestrator) deleteInstructure(ctx context.Context, req *models.DeleteRequest, log *slog.Logger) (*models.DeleteResult, error) {
	id := parseNumericID(req.ID)
	if _, err := s.repo.Instructure().GetByID(ctx, nil, id); err != nil {
		return nil, lookupErr("Instructure", id, err)
	}

	deps, err := s.instructureDependencies(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate(ctx, req, deps, log); err != nil {
		return nil, err
	}

	result := &models.DeleteResult{TargetKind: req.TargetKind, ID: req.ID, Forced: req.Force}
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.cleanInstructure(s.newRunner(ctx, tx, req, result), id)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *deletionOrchestrator) deleteUser(ctx context.Context, req *models.DeleteRequest, log *slog.Logger) (*models.DeleteResult, error) {
	user, err := s.repo.User().GetByID(ctx, nil, req.ID)
	if err != nil {
		return nil, lookupErr("User", req.ID, err)
	}

	deps, err := s.userDependencies(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.gate(ctx, req, deps, log); err != nil {
		return nil, err
	}

	result := &models.DeleteResult{TargetKind: req.TargetKind, ID: req.ID, Forced: req.Force}
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		run := s.newRunner(ctx, tx, req, result)

		participants, err := s.repo.Participant().ListByUser(ctx, tx, user.ID)
		if err != nil {
			return run.fail("list_participants", err)
		}
		for _, p := range participants {
			if err := s.cleanParticipant(run.scoped(fmt.Sprintf("participant:%d/", p.ID)), p.ID); err != nil {
				return err
			}
		}

		instructures, err := s.repo.Instructure().ListByUser(ctx, tx, user.ID)
		if err != nil {
			return run.fail("list_instructures", err)
		}
		for _, i := range instructures {
			if err := s.cleanInstructure(run.scoped(fmt.Sprintf("instructure:%d/", i.ID)), i.ID); err != nil {
				return err
			}
		}

		if user.InstructureID != nil {
			if err := run.step("clear_instructure_ref", func() (int64, error) {
				return 1, s.repo.User().SetInstructureRef(ctx, tx, user.ID, nil)
			}); err != nil {
				return err
			}
		}

		return run.step("user", func() (int64, error) {
			return 1, s.repo.User().Delete(ctx, tx, user.ID)
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// gate rejects a non-forced delete while dependents exist.
func (s *deletionOrchestrator) gate(ctx context.Context, req *models.DeleteRequest, deps models.DependencyCounts, log *slog.Logger) error {
	log.InfoContext(ctx, "Dependency check", "dependents", deps)

	if deps.Total() == 0 {
		log.InfoContext(ctx, "Cleared")
		return nil
	}
	if !req.Force {
		log.InfoContext(ctx, "Rejected")
		return &DependencyError{Target: req.TargetKind, ID: req.ID, Dependents: deps}
	}

	log.WarnContext(ctx, "Force cleanup")
	return nil
}

// cleanParticipant removes a participant and everything hanging off its
// registrations.
func (s *deletionOrchestrator) cleanParticipant(run *cleanupRunner, participantID uint) error {
	ctx, tx := run.ctx, run.tx

	registrationIDs, err := s.repo.Registration().IDsByParticipant(ctx, tx, participantID)
	if err != nil {
		return run.fail("list_registrations", err)
	}

	steps := []struct {
		name string
		fn   func() (int64, error)
	}{
		{"value_reports", func() (int64, error) {
			return s.repo.ValueReport().DeleteByRegistrations(ctx, tx, registrationIDs)
		}},
		{"payments", func() (int64, error) {
			return s.repo.Payment().DeleteByRegistrations(ctx, tx, registrationIDs)
		}},
		{"certifications", func() (int64, error) {
			return s.repo.Certification().DeleteByRegistrations(ctx, tx, registrationIDs)
		}},
		{"registrations", func() (int64, error) {
			return s.repo.Registration().DeleteByParticipant(ctx, tx, participantID)
		}},
		{"certificates", func() (int64, error) {
			return s.repo.Certificate().DeleteBySubject(ctx, tx, models.SubjectParticipant, participantID)
		}},
		{"participant", func() (int64, error) {
			return 1, s.repo.Participant().Delete(ctx, tx, participantID)
		}},
	}
	for _, st := range steps {
		if err := run.step(st.name, st.fn); err != nil {
			return err
		}
	}
	return nil
}

// cleanInstructure removes an instructor profile. Users pointing at it are
// kept and moved back to the unassigned role.
func (s *deletionOrchestrator) cleanInstructure(run *cleanupRunner, instructureID uint) error {
	ctx, tx := run.ctx, run.tx

	if err := run.step("teaching_assignments", func() (int64, error) {
		return s.repo.TeachingAssignment().DeleteByInstructure(ctx, tx, instructureID)
	}); err != nil {
		return err
	}
	if err := run.step("value_reports", func() (int64, error) {
		return s.repo.ValueReport().DeleteByInstructure(ctx, tx, instructureID)
	}); err != nil {
		return err
	}
	if err := run.step("certificates", func() (int64, error) {
		return s.repo.Certificate().DeleteBySubject(ctx, tx, models.SubjectInstructure, instructureID)
	}); err != nil {
		return err
	}
	if err := run.step("reassign_users", func() (int64, error) {
		roleID, err := s.roles.EnsureRole(ctx, tx, models.RoleUnassigned, "")
		if err != nil {
			return 0, err
		}
		return s.repo.User().ReassignFromInstructure(ctx, tx, instructureID, roleID)
	}); err != nil {
		return err
	}
	return run.step("instructure", func() (int64, error) {
		return 1, s.repo.Instructure().Delete(ctx, tx, instructureID)
	})
}

// deleteOwner removes the participant's owning user when it holds no other
// profile.
func (s *deletionOrchestrator) deleteOwner(run *cleanupRunner, userID string, result *models.DeleteResult) error {
	ctx, tx := run.ctx, run.tx

	var remaining int64
	if err := run.step("owner_profiles", func() (int64, error) {
		participants, err := s.repo.Participant().CountByUser(ctx, tx, userID)
		if err != nil {
			return 0, err
		}
		instructures, err := s.repo.Instructure().CountByUser(ctx, tx, userID)
		if err != nil {
			return 0, err
		}
		remaining = participants + instructures
		return 0, nil
	}); err != nil {
		return err
	}

	if remaining > 0 {
		result.OwnerRetained = true
		s.logger.InfoContext(ctx, "Owner retained, other profiles exist", "user_id", userID, "profiles", remaining)
		return nil
	}

	if err := run.step("owner", func() (int64, error) {
		return 1, s.repo.User().Delete(ctx, tx, userID)
	}); err != nil {
		return err
	}
	result.OwnerDeleted = true
	return nil
}

func (s *deletionOrchestrator) participantDependencies(ctx context.Context, id uint) (models.DependencyCounts, error) {
	registrations, err := s.repo.Registration().CountByParticipant(ctx, nil, id)
	if err != nil {
		return nil, storeErr("count registrations", err)
	}
	certificates, err := s.repo.Certificate().CountBySubject(ctx, nil, models.SubjectParticipant, id)
	if err != nil {
		return nil, storeErr("count certificates", err)
	}
	return models.DependencyCounts{
		depRegistrations: registrations,
		depCertificates:  certificates,
	}, nil
}

func (s *deletionOrchestrator) instructureDependencies(ctx context.Context, id uint) (models.DependencyCounts, error) {
	assignments, err := s.repo.TeachingAssignment().CountByInstructure(ctx, nil, id)
	if err != nil {
		return nil, storeErr("count teaching assignments", err)
	}
	reports, err := s.repo.ValueReport().CountByInstructure(ctx, nil, id)
	if err != nil {
		return nil, storeErr("count value reports", err)
	}
	users, err := s.repo.User().CountByInstructure(ctx, nil, id)
	if err != nil {
		return nil, storeErr("count referencing users", err)
	}
	certificates, err := s.repo.Certificate().CountBySubject(ctx, nil, models.SubjectInstructure, id)
	if err != nil {
		return nil, storeErr("count certificates", err)
	}
	return models.DependencyCounts{
		depTeachingAssignments: assignments,
		depValueReports:        reports,
		depReferencingUsers:    users,
		depCertificates:        certificates,
	}, nil
}

func (s *deletionOrchestrator) userDependencies(ctx context.Context, id string) (models.DependencyCounts, error) {
	participants, err := s.repo.Participant().CountByUser(ctx, nil, id)
	if err != nil {
		return nil, storeErr("count participants", err)
	}
	instructures, err := s.repo.Instructure().CountByUser(ctx, nil, id)
	if err != nil {
		return nil, storeErr("count instructures", err)
	}
	return models.DependencyCounts{
		depParticipants: participants,
		depInstructures: instructures,
	}, nil
}

// stepKind drops the per-profile prefix so metric labels stay bounded.
func stepKind(name string) string {
	return name[strings.LastIndexByte(name, '/')+1:]
}

func parseNumericID(id string) uint {
	n, _ := strconv.ParseUint(id, 10, 64)
	return uint(n)
}
