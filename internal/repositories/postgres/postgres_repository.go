package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/training-service/internal/cache"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/repositories/casdoor"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	user               repositories.UserRepository
	role               repositories.RoleRepository
	identityDirectory  repositories.IdentityDirectory
	participant        repositories.ParticipantRepository
	instructure        repositories.InstructureRepository
	course             repositories.CourseRepository
	class              repositories.ClassRepository
	teachingAssignment repositories.TeachingAssignmentRepository
	registration       repositories.RegistrationRepository
	payment            repositories.PaymentRepository
	certification      repositories.CertificationRepository
	valueReport        repositories.ValueReportRepository
	certificate        repositories.CertificateRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
	// Casdoor is optional; without an endpoint the identity directory is
	// disabled and unknown callers are reported as not found.
	CasdoorConfig casdoor.CasdoorConfig
}

// NewPostgreSQLRepository creates a new repository manager with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)

	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
	}

	repo.user = NewUserPostgreSQL(config.DB, cacheManager)
	repo.role = NewRolePostgreSQL(config.DB, cacheManager)
	repo.participant = NewParticipantPostgreSQL(config.DB)
	repo.instructure = NewInstructurePostgreSQL(config.DB)
	repo.course = NewCoursePostgreSQL(config.DB)
	repo.class = NewClassPostgreSQL(config.DB)
	repo.teachingAssignment = NewTeachingAssignmentPostgreSQL(config.DB)
	repo.registration = NewRegistrationPostgreSQL(config.DB)
	repo.payment = NewPaymentPostgreSQL(config.DB)
	repo.certification = NewCertificationPostgreSQL(config.DB)
	repo.valueReport = NewValueReportPostgreSQL(config.DB)
	repo.certificate = NewCertificatePostgreSQL(config.DB)

	if config.CasdoorConfig.Endpoint != "" {
		repo.identityDirectory = casdoor.NewIdentityDirectory(config.CasdoorConfig, cacheManager)
	}

	return repo
}

func (r *PostgreSQLRepository) User() repositories.UserRepository { return r.user }

func (r *PostgreSQLRepository) Role() repositories.RoleRepository { return r.role }

// IdentityDirectory may be nil when no identity provider is configured.
func (r *PostgreSQLRepository) IdentityDirectory() repositories.IdentityDirectory {
	return r.identityDirectory
}

func (r *PostgreSQLRepository) Participant() repositories.ParticipantRepository {
	return r.participant
}

func (r *PostgreSQLRepository) Instructure() repositories.InstructureRepository {
	return r.instructure
}

func (r *PostgreSQLRepository) Course() repositories.CourseRepository { return r.course }

func (r *PostgreSQLRepository) Class() repositories.ClassRepository { return r.class }

func (r *PostgreSQLRepository) TeachingAssignment() repositories.TeachingAssignmentRepository {
	return r.teachingAssignment
}

func (r *PostgreSQLRepository) Registration() repositories.RegistrationRepository {
	return r.registration
}

func (r *PostgreSQLRepository) Payment() repositories.PaymentRepository { return r.payment }

func (r *PostgreSQLRepository) Certification() repositories.CertificationRepository {
	return r.certification
}

func (r *PostgreSQLRepository) ValueReport() repositories.ValueReportRepository {
	return r.valueReport
}

func (r *PostgreSQLRepository) Certificate() repositories.CertificateRepository {
	return r.certificate
}

// WithTransaction executes a function within a database transaction
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	var errs []error

	sqlDB, err := r.db.DB()
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to get database instance: %w", err))
	} else if err := sqlDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	return errors.Join(errs...)
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize initializes all repositories and connections
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
