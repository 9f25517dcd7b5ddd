package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/dto"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain/entity"
	"github.com/Howzley/EEIRS-14-SP2025/pkg/jwt"
)

// Fiber locals keys.
const (
	LocalUserID = "user_id"
	LocalEmail  = "email"
	LocalRole   = "role"
	LocalScope  = "scope"
)

// SessionConfig how sessions are verified and carried in cookies.
type SessionConfig struct {
	Secret       string
	CookieName   string
	CookieSecure bool
	TTL          time.Duration
}

// sessionToken bearer token first, then the session cookie.
func sessionToken(c *fiber.Ctx, cookieName string) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookieName == "" {
		return ""
	}
	return c.Cookies(cookieName)
}

// authenticate verifies the session and stores the identity in locals.
func authenticate(c *fiber.Ctx, cfg SessionConfig) bool {
	token := sessionToken(c, cfg.CookieName)
	if token == "" {
		return false
	}
	userID, email, err := jwt.Parse(cfg.Secret, token)
	if err != nil || userID == "" {
		return false
	}
	c.Locals(LocalUserID, userID)
	c.Locals(LocalEmail, email)
	return true
}

// AuthMiddleware guards the JSON API: no valid session -> 401.
func AuthMiddleware(cfg SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sessionToken(c, cfg.CookieName) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "authentication required"})
		}
		if !authenticate(c, cfg) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "invalid or expired session"})
		}
		return c.Next()
	}
}

// ScreenGuard guards navigation screens. Without a valid session the client
// is sent to /login and nothing after the guard runs; an expired session is
// treated exactly like a logged-out one.
func ScreenGuard(cfg SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !authenticate(c, cfg) {
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

// GetUserID user id of the session (after AuthMiddleware or ScreenGuard).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetEmail email of the session.
func GetEmail(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalEmail).(string)
	return s
}

// GetIdentity identity of the session.
func GetIdentity(c *fiber.Ctx) entity.Identity {
	return entity.Identity{ID: GetUserID(c), Email: GetEmail(c)}
}

func setSessionCookie(c *fiber.Ctx, cfg SessionConfig, token string, expires time.Time) {
	if cfg.CookieName == "" {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func clearSessionCookie(c *fiber.Ctx, cfg SessionConfig) {
	if cfg.CookieName == "" {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
