package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/training-service/internal/config"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
)

const identityContextKey = "identity"

// TokenParser verifies a bearer token and returns its claims.
type TokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// CasdoorAuthMiddleware turns a Casdoor bearer token into a verified Identity.
type CasdoorAuthMiddleware struct {
	parser TokenParser
	users  repositories.UserRepository
	roles  repositories.RoleRepository
}

// NewCasdoorAuthMiddleware creates a new Casdoor authentication middleware
func NewCasdoorAuthMiddleware(cfg config.CasdoorConfig, users repositories.UserRepository, roles repositories.RoleRepository) *CasdoorAuthMiddleware {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
	return NewAuthMiddleware(client, users, roles)
}

// NewAuthMiddleware builds the middleware over any token parser.
func NewAuthMiddleware(parser TokenParser, users repositories.UserRepository, roles repositories.RoleRepository) *CasdoorAuthMiddleware {
	return &CasdoorAuthMiddleware{parser: parser, users: users, roles: roles}
}

// AuthMiddleware returns a Gin middleware function for Casdoor authentication
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "unauthorized",
				Message: "authorization header missing",
			})
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "unauthorized",
				Message: "invalid authorization header format",
			})
			return
		}

		claims, err := cam.parser.ParseJwtToken(tokenParts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "unauthorized",
				Message: fmt.Sprintf("invalid token: %v", err),
			})
			return
		}

		identity, err := cam.identityFromClaims(c.Request.Context(), claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "unauthorized",
				Message: fmt.Sprintf("failed to extract user info: %v", err),
			})
			return
		}

		c.Set(identityContextKey, identity)
		c.Set("user_id", identity.UserID)
		c.Set("user_role", identity.Role)
		c.Next()
	}
}

// RequireRoleMiddleware checks if user has required role. Admins pass every
// check.
func (cam *CasdoorAuthMiddleware) RequireRoleMiddleware(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := GetIdentityFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: err.Error(),
			})
			return
		}

		if identity.Role == models.RoleAdmin {
			c.Next()
			return
		}
		for _, role := range requiredRoles {
			if identity.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles),
		})
	}
}

// identityFromClaims prefers the role stored locally and falls back to the
// Casdoor account type for callers without a local user yet.
func (cam *CasdoorAuthMiddleware) identityFromClaims(ctx context.Context, claims *casdoorsdk.Claims) (models.Identity, error) {
	if claims.Id == "" {
		return models.Identity{}, fmt.Errorf("invalid user ID in token")
	}

	identity := models.Identity{
		UserID: claims.Id,
		Email:  claims.User.Email,
		Role:   mapCasdoorRole(claims.User.Type, claims.User.IsAdmin),
	}

	user, err := cam.users.GetByID(ctx, nil, identity.UserID)
	switch {
	case err == nil:
		role, err := cam.roles.GetByID(ctx, nil, user.RoleID)
		if err != nil {
			return models.Identity{}, err
		}
		identity.Role = role.Name
		if identity.Email == "" {
			identity.Email = user.Email
		}
	case !repositories.IsNotFoundError(err):
		return models.Identity{}, err
	}

	return identity, nil
}

// mapCasdoorRole maps Casdoor user type to internal role
func mapCasdoorRole(casdoorType string, isAdmin bool) string {
	if isAdmin {
		return models.RoleAdmin
	}
	switch strings.ToLower(casdoorType) {
	case "admin", "administrator":
		return models.RoleAdmin
	case "teacher", "instructor", "instructure":
		return models.RoleInstructure
	case "student", "learner", "participant":
		return models.RoleParticipant
	default:
		return models.RoleUnassigned
	}
}

// GetIdentityFromContext extracts the verified identity from Gin context
func GetIdentityFromContext(c *gin.Context) (models.Identity, error) {
	v, exists := c.Get(identityContextKey)
	if !exists {
		return models.Identity{}, fmt.Errorf("identity not found in context")
	}

	identity, ok := v.(models.Identity)
	if !ok {
		return models.Identity{}, fmt.Errorf("invalid identity type in context")
	}

	return identity, nil
}
