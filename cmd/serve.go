package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/training-service/internal/cache"
	"github.com/SAP-F-2025/training-service/internal/config"
	"github.com/SAP-F-2025/training-service/internal/events"
	"github.com/SAP-F-2025/training-service/internal/handlers"
	"github.com/SAP-F-2025/training-service/internal/metrics"
	"github.com/SAP-F-2025/training-service/internal/migrations"
	"github.com/SAP-F-2025/training-service/internal/repositories/casdoor"
	"github.com/SAP-F-2025/training-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/SAP-F-2025/training-service/internal/validator"
	"github.com/SAP-F-2025/training-service/pkg"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Bool("migrate", false, "apply pending migrations before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	slogLogger := newLogger(cfg)
	logger := utils.NewSlogLogger(slogLogger)

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		if err := migrations.Up(cfg.DatabaseURL, slogLogger); err != nil {
			return err
		}
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}

	// Redis is optional; without it caching and number reservations are off
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Failed to initialize Redis", "error", err)
			redisClient = nil
		}
	}

	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
		CasdoorConfig: casdoor.CasdoorConfig{
			Endpoint:         cfg.Casdoor.Endpoint,
			ClientID:         cfg.Casdoor.ClientID,
			ClientSecret:     cfg.Casdoor.ClientSecret,
			Certificate:      cfg.Casdoor.Cert,
			OrganizationName: cfg.Casdoor.Organization,
			ApplicationName:  cfg.Casdoor.Application,
		},
	})
	if err := repoManager.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}
	repo := repoManager.GetRepository()

	publisher, err := newPublisher(cfg, slogLogger)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	serviceManager := services.NewServiceManager(services.ServiceDependencies{
		Repo:         repo,
		Reservations: cache.NewCacheHelper(redisClient, cache.ReservationCacheConfig.Prefix),
		Publisher:    publisher,
		Metrics:      metrics.New(registry),
		Logger:       slogLogger,
		Validator:    validator.New(),
	}, services.ServiceManagerConfig{
		CertificateNumberLength: cfg.CertificateNumberLength,
		MintMaxAttempts:         cfg.CertificateNumberMaxAttempts,
		SeedDefaultRoles:        true,
	})
	if err := serviceManager.Initialize(cmd.Context()); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger)

	authMiddleware := handlers.NewCasdoorAuthMiddleware(cfg.Casdoor, repo.User(), repo.Role())
	handlers.NewHandlerManager(serviceManager, logger, authMiddleware, registry).SetupRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Shutting down server...")
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server failed", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var errs []error
	if err := server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	// Closes the publisher, the database pool and Redis
	if err := serviceManager.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("service shutdown: %w", err))
	}

	logger.Info("Server exited")
	return errors.Join(errs...)
}

// newPublisher uses Kafka when brokers are configured and an in-process
// channel otherwise.
func newPublisher(cfg *config.Config, logger *slog.Logger) (events.EventPublisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Warn("KAFKA_BROKERS not set, notifications stay in process")
		return events.NewInMemoryPublisher(cfg.NotificationTopic, logger), nil
	}

	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.NotificationTopic, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return publisher, nil
}
