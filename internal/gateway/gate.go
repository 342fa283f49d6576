package gateway

import (
	"tokoadmin/internal/tokens"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TokenParser verifies a session token.
type TokenParser interface {
	Parse(tokenString string) (tokens.Claims, error)
}

const localClaims = "gateway.claims"

// RequireLogin lets a request through only when the session holds a token
// that still verifies. Browsers are sent to /login otherwise, API routes
// included.
func RequireLogin(parser TokenParser, lg *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state := StateOf(c)
		if state.Token == "" {
			state.AddFlash(FlashError, "Please log in first")
			return c.Redirect("/login")
		}

		claims, err := parser.Parse(state.Token)
		if err != nil {
			lg.Infow("session token rejected", "path", c.Path(), "error", err)
			state.SignOut()
			state.AddFlash(FlashError, "Your session has expired, please log in again")
			return c.Redirect("/login")
		}
		c.Locals(localClaims, claims)
		return c.Next()
	}
}
