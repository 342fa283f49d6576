package gateway

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

const (
	stateKey      = "state"
	localState    = "gateway.state"
	localDestroy  = "gateway.destroy"
	defaultCookie = "toko_session"
)

// SessionConfig configures the session store.
type SessionConfig struct {
	Cookie string
	TTL    time.Duration
	// Storage defaults to fiber's in-memory storage when nil.
	Storage fiber.Storage
}

// NewSessionStore builds the cookie keyed session store.
func NewSessionStore(cfg SessionConfig) *session.Store {
	if cfg.Cookie == "" {
		cfg.Cookie = defaultCookie
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return session.New(session.Config{
		Expiration:     cfg.TTL,
		Storage:        cfg.Storage,
		KeyLookup:      "cookie:" + cfg.Cookie,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		KeyGenerator:   utils.UUIDv4,
	})
}

// Sessions loads the State of the request before the handler runs and saves it
// afterwards, unless the handler asked for the session to be destroyed.
func Sessions(store *session.Store, lg *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			lg.Errorw("failed to load session", "error", err)
			return fiber.ErrInternalServerError
		}

		state := NewState()
		if raw, ok := sess.Get(stateKey).(string); ok && raw != "" {
			if err := json.Unmarshal([]byte(raw), state); err != nil {
				lg.Warnw("dropping undecodable session state", "session", sess.ID(), "error", err)
				state = NewState()
			}
		}
		c.Locals(localState, state)

		handlerErr := c.Next()

		if destroy, _ := c.Locals(localDestroy).(bool); destroy {
			if err := sess.Destroy(); err != nil {
				lg.Errorw("failed to destroy session", "session", sess.ID(), "error", err)
			}
			return handlerErr
		}

		encoded, err := json.Marshal(state)
		if err != nil {
			lg.Errorw("failed to encode session state", "error", err)
			return handlerErr
		}
		sess.Set(stateKey, string(encoded))
		if err := sess.Save(); err != nil {
			lg.Errorw("failed to save session", "error", err)
		}
		return handlerErr
	}
}

// StateOf returns the session state of the request. Outside of Sessions it
// returns a throwaway state.
func StateOf(c *fiber.Ctx) *State {
	if s, ok := c.Locals(localState).(*State); ok {
		return s
	}
	return NewState()
}

// DestroySession discards the session once the handler returns.
func DestroySession(c *fiber.Ctx) {
	c.Locals(localDestroy, true)
}
