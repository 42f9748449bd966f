package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/training-service/internal/cache"
	"github.com/SAP-F-2025/training-service/internal/events"
	"github.com/SAP-F-2025/training-service/internal/metrics"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// Certificate numbering
	CertificateNumberLength int
	MintMaxAttempts         int

	// Seed the default role rows during Initialize
	SeedDefaultRoles bool
}

// ServiceDependencies are the collaborators shared by every service.
type ServiceDependencies struct {
	Repo         repositories.Repository
	Reservations *cache.CacheHelper
	Publisher    events.EventPublisher
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
	Validator    *validator.Validator
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   ServiceDependencies
	config ServiceManagerConfig

	// Service instances
	roles        *RoleRegistry
	minter       *IdentifierMinter
	profile      ProfileService
	enrollment   EnrollmentService
	certificate  CertificateService
	deletion     DeletionService
	rosterExport RosterExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps ServiceDependencies, config ServiceManagerConfig) ServiceManager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Reservations == nil {
		deps.Reservations = cache.NewCacheHelper(nil, cache.ReservationCacheConfig.Prefix)
	}
	return &serviceManager{deps: deps, config: config}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(deps ServiceDependencies) ServiceManager {
	return NewServiceManager(deps, ServiceManagerConfig{
		CertificateNumberLength: DefaultCertificateNumberLength,
		MintMaxAttempts:         DefaultMintMaxAttempts,
		SeedDefaultRoles:        true,
	})
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.deps.Logger.Info("Initializing service manager")

	sm.initializeServices()

	if sm.config.SeedDefaultRoles {
		if err := sm.roles.EnsureDefaultRoles(ctx); err != nil {
			return fmt.Errorf("failed to seed default roles: %w", err)
		}
	}

	sm.initialized = true
	sm.deps.Logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices() {
	d := sm.deps

	var opts []MinterOption
	if sm.config.CertificateNumberLength > 0 {
		opts = append(opts, WithNumberLength(sm.config.CertificateNumberLength))
	}
	if sm.config.MintMaxAttempts > 0 {
		opts = append(opts, WithMaxAttempts(sm.config.MintMaxAttempts))
	}

	sm.roles = NewRoleRegistry(d.Repo.Role(), d.Logger)
	sm.minter = NewIdentifierMinter(d.Repo.Certificate(), d.Reservations, d.Metrics, d.Logger, opts...)

	sm.profile = NewProfileService(d.Repo, sm.roles, d.Metrics, d.Logger, d.Validator)
	sm.enrollment = NewEnrollmentService(d.Repo, sm.profile, d.Publisher, d.Metrics, d.Logger, d.Validator)
	sm.certificate = NewCertificateService(d.Repo, sm.minter, d.Publisher, d.Metrics, d.Logger, d.Validator)
	sm.deletion = NewDeletionOrchestrator(d.Repo, sm.roles, d.Metrics, d.Logger, d.Validator)
	sm.rosterExport = NewRosterExportService(d.Repo, d.Metrics, d.Logger)
}

func (sm *serviceManager) ready() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Service getters
func (sm *serviceManager) Profile() ProfileService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.profile
}

func (sm *serviceManager) Enrollment() EnrollmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.enrollment
}

func (sm *serviceManager) Certificate() CertificateService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.certificate
}

func (sm *serviceManager) Deletion() DeletionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.deletion
}

func (sm *serviceManager) RosterExport() RosterExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.rosterExport
}

func (sm *serviceManager) Roles() *RoleRegistry {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.roles
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")

	var errs []error
	if sm.deps.Publisher != nil {
		if err := sm.deps.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if err := sm.deps.Repo.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close repository: %w", err))
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down completed")

	return errors.Join(errs...)
}
