// Package app assembles the fiber application of each process.
package app

import (
	"context"
	"errors"
	"time"

	"tokoadmin/internal/apperrors"
	"tokoadmin/internal/config"
	"tokoadmin/internal/database"
	"tokoadmin/internal/gateway"
	"tokoadmin/internal/handlers"
	"tokoadmin/internal/repositories"
	"tokoadmin/internal/services"
	"tokoadmin/internal/tokens"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

// Deps are the resources a backend service app is built from. Publisher may
// be nil, which disables event publishing.
type Deps struct {
	Config    config.Config
	Logger    *zap.SugaredLogger
	DB        *gorm.DB
	Publisher services.EventPublisher
}

// NewAuthApp serves /api/auth.
func NewAuthApp(deps Deps) *fiber.App {
	cfg := deps.Config
	app := newApp("Auth", cfg, deps.Logger)
	mountHealth(app, "auth", deps.DB)
	app.Get("/", rootText("Auth service is running"))

	signer := tokens.NewSigner(cfg.JWTSecret, cfg.JWTTTL)
	authService := services.NewAuthService(repositories.NewGORMUserRepository(deps.DB), signer)
	handlers.NewAuthHandler(authService, deps.Logger, cfg.Development()).RegisterRoutes(app.Group("/api"))
	return app
}

// NewProductApp serves /products.
func NewProductApp(deps Deps) *fiber.App {
	cfg := deps.Config
	app := newApp("Products", cfg, deps.Logger)
	mountHealth(app, "products", deps.DB)
	app.Get("/", rootText("Product service is running"))

	productService := services.NewProductService(repositories.NewGORMProductRepository(deps.DB), deps.Publisher, deps.Logger)
	handlers.NewProductHandler(productService, deps.Logger, cfg.Development()).RegisterRoutes(app)
	return app
}

// NewShippingApp serves /shipping. The returned service handles the events
// the process consumes.
func NewShippingApp(deps Deps) (*fiber.App, *services.ShippingService) {
	cfg := deps.Config
	app := newApp("Shipping", cfg, deps.Logger)
	mountHealth(app, "shipping", deps.DB)
	app.Get("/", rootText("Shipping service is running"))

	shippingService := services.NewShippingService(repositories.NewGORMShipmentRepository(deps.DB), deps.Publisher, deps.Logger)
	handlers.NewShippingHandler(shippingService, deps.Logger, cfg.Development()).RegisterRoutes(app)
	return app, shippingService
}

// NewGatewayApp serves the dashboards and the /api proxies. storage holds the
// sessions; nil keeps them in memory.
func NewGatewayApp(cfg config.Config, lg *zap.SugaredLogger, storage fiber.Storage) (*fiber.App, error) {
	app := newApp("Gateway", cfg, lg)
	mountHealth(app, "gateway", nil)

	err := gateway.Mount(app, gateway.Options{
		Backend: gateway.NewHTTPBackend(gateway.BackendConfig{
			ProductsURL: cfg.ProductsAPI,
			ShippingURL: cfg.ShippingAPI,
			AuthURL:     cfg.AuthAPI,
			Timeout:     cfg.UpstreamTimeout,
		}),
		Tokens: tokens.NewSigner(cfg.JWTSecret, cfg.JWTTTL),
		Store: gateway.NewSessionStore(gateway.SessionConfig{
			Cookie:  cfg.SessionCookie,
			TTL:     cfg.SessionTTL,
			Storage: storage,
		}),
		Logger:       lg,
		ProductsURL:  cfg.ProductsAPI,
		ShippingURL:  cfg.ShippingAPI,
		AuthURL:      cfg.AuthAPI,
		ProxyTimeout: cfg.UpstreamTimeout,
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

func newApp(name string, cfg config.Config, lg *zap.SugaredLogger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               name,
		DisableStartupMessage: !cfg.Development(),
		ErrorHandler:          errorHandler(lg),
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	return app
}

// errorHandler answers whatever a handler returned without responding.
func errorHandler(lg *zap.SugaredLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		status := apperrors.HTTPStatus(err)
		if status >= fiber.StatusInternalServerError {
			lg.Errorw("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
		}
		return c.Status(status).JSON(fiber.Map{"error": apperrors.Message(err)})
	}
}

// mountHealth registers /health. A nil db reports the process alone.
func mountHealth(app *fiber.App, service string, db *gorm.DB) {
	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status":  "healthy",
			"service": service,
			"time":    time.Now().Format(time.RFC3339),
		}
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
			defer cancel()
			if err := database.Ping(ctx, db); err != nil {
				body["status"] = "unhealthy"
				body["database"] = "unreachable"
				return c.Status(fiber.StatusServiceUnavailable).JSON(body)
			}
			body["database"] = "connected"
		}
		return c.JSON(body)
	})
}

func rootText(text string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendString(text)
	}
}
