package gateway

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/proxy"
	"go.uber.org/zap"
)

// Forward relays the request to target and the backend's response back
// unmodified. With stripAPI the leading /api of the path is removed. Query
// strings are kept. There is no retry.
func Forward(target string, stripAPI bool, timeout time.Duration, lg *zap.SugaredLogger) fiber.Handler {
	target = strings.TrimRight(target, "/")
	return func(c *fiber.Ctx) error {
		path := c.OriginalURL()
		if stripAPI {
			path = strings.TrimPrefix(path, "/api")
		}

		url := target + path
		if err := proxy.DoTimeout(c, url, timeout); err != nil {
			lg.Errorw("proxy request failed", "method", c.Method(), "url", url, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Service unavailable",
			})
		}
		return nil
	}
}
