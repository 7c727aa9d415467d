package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/config"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUserNameKey = "user_name"
	CtxUserRoleKey = "user_role"
	// CtxFarmIDKey holds the farm from the token; nil for admins.
	CtxFarmIDKey = "farm_id"
	// CtxScopeFarmIDKey holds the :farmId of the request once
	// RequireFarmAccess accepted it.
	CtxScopeFarmIDKey = "scope_farm_id"
)

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing Authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization must be 'Bearer <token>'")
		}

		claims, err := ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserNameKey, claims.Name)
		c.Locals(CtxUserRoleKey, claims.Role)
		c.Locals(CtxFarmIDKey, claims.FarmID)

		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "role missing from token")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "not allowed")
	}
}

// FarmExists reports whether a farm with the given id exists.
type FarmExists func(ctx context.Context, farmID uint) (bool, error)

func GormFarmExists(db *gorm.DB) FarmExists {
	return func(ctx context.Context, farmID uint) (bool, error) {
		var count int64
		err := db.WithContext(ctx).Model(&models.Farm{}).Where("id = ?", farmID).Count(&count).Error
		return count > 0, err
	}
}

// RequireFarmAccess guards routes carrying :farmId. Admins reach every
// farm; farm managers only the farm in their token.
func RequireFarmAccess(exists FarmExists) fiber.Handler {
	return func(c *fiber.Ctx) error {
		farmID, err := utils.ParamUint(c, "farmId")
		if err != nil {
			return err
		}

		switch Role(c) {
		case models.RoleAdmin:
		case models.RoleFarmManager:
			own, _ := c.Locals(CtxFarmIDKey).(*uint)
			if own == nil || *own != farmID {
				return fiber.NewError(fiber.StatusForbidden, "no access to this farm")
			}
		default:
			return fiber.NewError(fiber.StatusForbidden, "not allowed")
		}

		ok, err := exists(c.UserContext(), farmID)
		if err != nil {
			return fmt.Errorf("look up farm %d: %w", farmID, err)
		}
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "farm not found")
		}

		c.Locals(CtxScopeFarmIDKey, farmID)
		return c.Next()
	}
}

func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(CtxUserIDKey).(uint)
	return id
}

func UserName(c *fiber.Ctx) string {
	name, _ := c.Locals(CtxUserNameKey).(string)
	return name
}

func Role(c *fiber.Ctx) models.UserRole {
	role, _ := c.Locals(CtxUserRoleKey).(models.UserRole)
	return role
}

// ScopedFarmID returns the farm accepted by RequireFarmAccess.
func ScopedFarmID(c *fiber.Ctx) uint {
	id, _ := c.Locals(CtxScopeFarmIDKey).(uint)
	return id
}
