package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/training-service/internal/metrics"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/SAP-F-2025/training-service/internal/validator"
)

type profileService struct {
	repo      repositories.Repository
	roles     *RoleRegistry
	metrics   *metrics.Metrics
	logger    *slog.Logger
	validator *validator.Validator
}

func NewProfileService(repo repositories.Repository, roles *RoleRegistry, m *metrics.Metrics, logger *slog.Logger, validator *validator.Validator) ProfileService {
	return &profileService{
		repo:      repo,
		roles:     roles,
		metrics:   m,
		logger:    logger,
		validator: validator,
	}
}

func (s *profileService) PromoteToParticipant(ctx context.Context, identity models.Identity) (participant *models.Participant, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("promote_participant", KindOf(err), start) }()

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var txErr error
		participant, txErr = s.PromoteToParticipantTx(ctx, tx, identity)
		return txErr
	})
	if err != nil {
		return nil, storeErr("promote to participant", err)
	}
	return participant, nil
}

// PromoteToParticipantTx runs the promotion inside the caller's transaction.
func (s *profileService) PromoteToParticipantTx(ctx context.Context, tx *gorm.DB, identity models.Identity) (*models.Participant, error) {
	user, err := s.resolveUser(ctx, tx, identity)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Participant().GetOldestByUser(ctx, tx, user.ID)
	if err == nil {
		return existing, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, storeErr("get participant", err)
	}

	roleID, err := s.roles.EnsureRole(ctx, tx, models.RoleParticipant, "")
	if err != nil {
		return nil, err
	}

	participant := &models.Participant{
		UserID:   user.ID,
		FullName: displayName(user),
	}
	if err := s.repo.Participant().Create(ctx, tx, participant); err != nil {
		return nil, storeErr("create participant", err)
	}

	if err := s.updateRole(ctx, tx, user, roleID); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "User promoted to participant", "user_id", user.ID, "participant_id", participant.ID)
	return participant, nil
}

func (s *profileService) PromoteToInstructure(ctx context.Context, userID string) (instructure *models.Instructure, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("promote_instructure", KindOf(err), start) }()

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var txErr error
		instructure, txErr = s.PromoteToInstructureTx(ctx, tx, userID)
		return txErr
	})
	if err != nil {
		return nil, storeErr("promote to instructure", err)
	}
	return instructure, nil
}

// PromoteToInstructureTx creates a minimal instructor profile whose optional
// fields are completed later by the profile setup flow.
func (s *profileService) PromoteToInstructureTx(ctx context.Context, tx *gorm.DB, userID string) (*models.Instructure, error) {
	user, err := s.repo.User().GetByIDForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, lookupErr("User", userID, err)
	}

	instructure, err := s.repo.Instructure().GetOldestByUser(ctx, tx, user.ID)
	switch {
	case err == nil:
	case repositories.IsNotFoundError(err):
		instructure = &models.Instructure{
			UserID:   user.ID,
			FullName: displayName(user),
		}
		if err := s.repo.Instructure().Create(ctx, tx, instructure); err != nil {
			return nil, storeErr("create instructure", err)
		}
		s.logger.InfoContext(ctx, "User promoted to instructure", "user_id", user.ID, "instructure_id", instructure.ID)
	default:
		return nil, storeErr("get instructure", err)
	}

	if user.InstructureID == nil || *user.InstructureID != instructure.ID {
		if err := s.repo.User().SetInstructureRef(ctx, tx, user.ID, &instructure.ID); err != nil {
			return nil, storeErr("set instructure reference", err)
		}
	}

	roleID, err := s.roles.EnsureRole(ctx, tx, models.RoleInstructure, "")
	if err != nil {
		return nil, err
	}
	if err := s.updateRole(ctx, tx, user, roleID); err != nil {
		return nil, err
	}

	return instructure, nil
}

// AssignRole changes a user's role. Profiles are created on demand and never
// deleted by a role change.
func (s *profileService) AssignRole(ctx context.Context, userID string, req *models.AssignRoleRequest) (user *models.User, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("assign_role", KindOf(err), start) }()

	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, validationErr(errs)
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		switch req.RoleName {
		case models.RoleInstructure:
			if _, err := s.PromoteToInstructureTx(ctx, tx, userID); err != nil {
				return err
			}
		case models.RoleParticipant:
			if _, err := s.PromoteToParticipantTx(ctx, tx, models.Identity{UserID: userID}); err != nil {
				return err
			}
		}

		current, err := s.repo.User().GetByID(ctx, tx, userID)
		if err != nil {
			return lookupErr("User", userID, err)
		}
		roleID, err := s.roles.EnsureRole(ctx, tx, req.RoleName, "")
		if err != nil {
			return err
		}
		if err := s.updateRole(ctx, tx, current, roleID); err != nil {
			return err
		}
		user = current
		return nil
	})
	if err != nil {
		return nil, storeErr("assign role", err)
	}

	s.logger.InfoContext(ctx, "Role assigned", "user_id", userID, "role", req.RoleName)
	return user, nil
}

// resolveUser loads the local user for identity, provisioning it from the
// identity directory or the verified claims on first contact.
func (s *profileService) resolveUser(ctx context.Context, tx *gorm.DB, identity models.Identity) (*models.User, error) {
	user, err := s.repo.User().GetByIDForUpdate(ctx, tx, identity.UserID)
	if err == nil {
		return user, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, storeErr("get user", err)
	}

	var provisioned *models.User
	if dir := s.repo.IdentityDirectory(); dir != nil {
		provisioned, err = dir.Lookup(ctx, identity.UserID)
		if err != nil {
			return nil, lookupErr("User", identity.UserID, err)
		}
	} else if identity.Email != "" {
		provisioned = &models.User{
			ID:       identity.UserID,
			Email:    identity.Email,
			Username: utils.UsernameFromEmail(identity.Email),
		}
	} else {
		return nil, newNotFound("User", identity.UserID)
	}

	roleID, err := s.roles.EnsureRole(ctx, tx, models.RoleUnassigned, "")
	if err != nil {
		return nil, err
	}
	provisioned.RoleID = roleID

	if err := s.repo.User().Create(ctx, tx, provisioned); err != nil {
		if _, ok := repositories.ConstraintViolation(err); ok {
			return nil, &ConflictError{Message: "user email or username already registered"}
		}
		return nil, storeErr("create user", err)
	}

	s.logger.InfoContext(ctx, "User provisioned from identity", "user_id", provisioned.ID)
	return provisioned, nil
}

func (s *profileService) updateRole(ctx context.Context, tx *gorm.DB, user *models.User, roleID uint) error {
	if user.RoleID == roleID {
		return nil
	}
	if err := s.repo.User().UpdateRole(ctx, tx, user.ID, roleID); err != nil {
		return storeErr("update user role", err)
	}
	user.RoleID = roleID
	return nil
}

func displayName(user *models.User) string {
	if name := strings.TrimSpace(user.FullName); name != "" {
		return name
	}
	return utils.DeriveNameFromEmail(user.Email)
}
