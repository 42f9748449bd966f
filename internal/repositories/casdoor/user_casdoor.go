package casdoor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/SAP-F-2025/training-service/internal/cache"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
)

// CasdoorConfig holds the configuration for Casdoor connection
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

// userSource is the subset of the Casdoor client the directory needs.
type userSource interface {
	GetUserByUserId(userID string) (*casdoorsdk.User, error)
}

// IdentityDirectory resolves identity-provider accounts into local user
// records. Results are cached in Redis.
type IdentityDirectory struct {
	source userSource
	cache  *cache.CacheHelper
}

func NewIdentityDirectory(config CasdoorConfig, cacheManager *cache.CacheManager) repositories.IdentityDirectory {
	client := casdoorsdk.NewClient(
		config.Endpoint,
		config.ClientID,
		config.ClientSecret,
		config.Certificate,
		config.OrganizationName,
		config.ApplicationName,
	)

	return newIdentityDirectory(client, cacheManager.User)
}

func newIdentityDirectory(source userSource, helper *cache.CacheHelper) *IdentityDirectory {
	return &IdentityDirectory{source: source, cache: helper}
}

// Lookup returns the provider account as an unsaved local user. RoleID is
// left zero for the caller to fill in.
func (d *IdentityDirectory) Lookup(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := d.cache.CacheOrExecute(ctx, "id:"+userID, &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		casdoorUser, err := d.source.GetUserByUserId(userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user from Casdoor: %w", err)
		}
		if casdoorUser == nil {
			return nil, fmt.Errorf("user %s: %w", userID, repositories.ErrUserNotProvisioned)
		}
		return convertCasdoorUser(userID, casdoorUser), nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// convertCasdoorUser converts Casdoor user to internal model
func convertCasdoorUser(userID string, casdoorUser *casdoorsdk.User) *models.User {
	username := casdoorUser.Name
	if username == "" {
		username = strings.Split(casdoorUser.Email, "@")[0]
	}

	var createdAt time.Time
	if casdoorUser.CreatedTime != "" {
		createdAt, _ = time.Parse(time.RFC3339, casdoorUser.CreatedTime)
	}

	return &models.User{
		ID:        userID,
		Email:     casdoorUser.Email,
		Username:  username,
		FullName:  casdoorUser.DisplayName,
		CreatedAt: createdAt,
	}
}
