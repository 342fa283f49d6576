package gateway

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

// Options wires the gateway onto an app.
type Options struct {
	Backend Backend
	Tokens  TokenParser
	Store   *session.Store
	Views   *Views
	Logger  *zap.SugaredLogger

	ProductsURL  string
	ShippingURL  string
	AuthURL      string
	ProxyTimeout time.Duration
}

// Mount registers the session middleware, the /api proxies and the pages.
//
// /api/auth is forwarded with its path intact, /api/products and
// /api/shipping lose the /api prefix. Only /api/shipping needs a login.
func Mount(app *fiber.App, opts Options) error {
	if opts.Backend == nil || opts.Tokens == nil || opts.Store == nil {
		return errors.New("gateway: backend, tokens and session store are required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Views == nil {
		views, err := LoadViews()
		if err != nil {
			return err
		}
		opts.Views = views
	}
	if opts.ProxyTimeout <= 0 {
		opts.ProxyTimeout = 10 * time.Second
	}

	lg := opts.Logger
	gate := RequireLogin(opts.Tokens, lg)

	app.Use(Sessions(opts.Store, lg))

	app.All("/api/products", Forward(opts.ProductsURL, true, opts.ProxyTimeout, lg))
	app.All("/api/products/*", Forward(opts.ProductsURL, true, opts.ProxyTimeout, lg))
	app.All("/api/auth/*", Forward(opts.AuthURL, false, opts.ProxyTimeout, lg))
	app.All("/api/shipping", gate, Forward(opts.ShippingURL, true, opts.ProxyTimeout, lg))
	app.All("/api/shipping/*", gate, Forward(opts.ShippingURL, true, opts.ProxyTimeout, lg))

	NewDashboard(opts.Backend, opts.Views, lg).RegisterRoutes(app, gate)
	return nil
}
