package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/dto"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/expense"
)

type roleResolver interface {
	Resolve(ctx context.Context, id entity.Identity) (entity.Role, error)
}

type permissionChecker interface {
	Allowed(role entity.Role, obj, act string) (bool, error)
}

// ResolveRole looks the role up once per request (no cache) and stores the
// role and its expense scope in locals. Use after AuthMiddleware or ScreenGuard.
func ResolveRole(resolver roleResolver, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := GetIdentity(c)
		role, err := resolver.Resolve(c.UserContext(), id)
		if err != nil {
			log.Error().Err(err).Str("user_id", id.ID).Msg("resolve role")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "PROFILE_UNAVAILABLE",
				Message: "Could not load your profile. Please try again.",
			})
		}
		c.Locals(LocalRole, role)
		c.Locals(LocalScope, expense.ScopeFor(role, id.ID))
		return c.Next()
	}
}

// GetRole role resolved for this request; RoleUnknown before ResolveRole.
func GetRole(c *fiber.Ctx) entity.Role {
	r, _ := c.Locals(LocalRole).(entity.Role)
	return r
}

// GetScope expense scope of this request; empty before ResolveRole.
func GetScope(c *fiber.Ctx) expense.QuerySpec {
	s, _ := c.Locals(LocalScope).(expense.QuerySpec)
	return s
}

// RequireScope answers 403 ACCESS_DENIED when the role grants no expense scope.
// The store is never queried for an empty scope.
func RequireScope() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetScope(c).Empty() {
			return accessDenied(c)
		}
		return c.Next()
	}
}

// RequirePermission checks role/resource/action against the permission table.
func RequirePermission(checker permissionChecker, obj, act string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, err := checker.Allowed(GetRole(c), obj, act)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "permission check failed"})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "You do not have permission to access this resource",
				Details: fiber.Map{"required": obj + ":" + act},
			})
		}
		return c.Next()
	}
}

func accessDenied(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
		Code:    "ACCESS_DENIED",
		Message: "Your account has no access to expense records.",
	})
}
