package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/training-service/internal/cache"
	"github.com/SAP-F-2025/training-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/pkg"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Seed the default roles",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cfg)

		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return err
		}

		redisClient, err := pkg.NewRedisClient(cfg)
		if err != nil {
			return err
		}

		repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{DB: db, RedisClient: redisClient})
		if err := repoManager.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize repositories: %w", err)
		}
		defer repoManager.Shutdown(context.Background())

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		// Role ids are cached by name; a reseeded database may have new ids
		cache.SafeInvalidatePattern(ctx, cache.NewCacheManager(redisClient).Role, "*")

		registry := services.NewRoleRegistry(repoManager.GetRepository().Role(), logger)
		if err := registry.EnsureDefaultRoles(ctx); err != nil {
			return fmt.Errorf("failed to seed roles: %w", err)
		}

		logger.Info("Default roles ensured")
		return nil
	},
}
