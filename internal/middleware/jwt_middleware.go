package middleware

import (
	"strings"

	"tokoadmin/internal/tokens"

	"github.com/gofiber/fiber/v2"
)

// TokenValidator verifies a bearer token.
type TokenValidator interface {
	ValidateToken(tokenString string) (tokens.Claims, error)
}

const (
	localUserID    = "user_id"
	localUserEmail = "user_email"
)

// AuthRequired is a Fiber middleware to check for a valid JWT token. The token
// is read from "Authorization: Bearer <token>" or from the x-auth-token header.
func AuthRequired(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "No token, authorization denied",
			})
		}

		claims, err := validator.ValidateToken(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Token is not valid",
			})
		}

		// Store claims in Fiber context for subsequent handlers
		c.Locals(localUserID, claims.UserID)
		c.Locals(localUserEmail, claims.Email)

		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return strings.TrimSpace(c.Get("x-auth-token"))
}

// UserID returns the id stored by AuthRequired.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(localUserID).(uint)
	return id, ok && id > 0
}
