package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tokoadmin/internal/apperrors"
	"tokoadmin/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AuthResponse is the body of a successful register or login.
type AuthResponse struct {
	Token string          `json:"token"`
	User  models.UserView `json:"user"`
}

// ProductForm is sent to the product service. Price stays text and is
// validated there.
type ProductForm struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

type ShipmentForm struct {
	ProductID uint   `json:"product_id"`
	Address   string `json:"address"`
	Status    string `json:"status,omitempty"`
}

// Backend is the contract of the three backend services as used by the
// dashboard pages. Failed calls return *apperrors.Error of KindUpstream.
type Backend interface {
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Register(ctx context.Context, name, email, password string) (*AuthResponse, error)
	UpdateProfile(ctx context.Context, token, name, email, password string) (*models.UserView, error)

	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, form ProductForm) error
	UpdateProduct(ctx context.Context, id uint, form ProductForm) error
	DeleteProduct(ctx context.Context, id uint) error

	ListShipments(ctx context.Context) ([]models.Shipment, error)
	GetShipment(ctx context.Context, id uint) (*models.Shipment, error)
	CreateShipment(ctx context.Context, form ShipmentForm) error
	UpdateShipmentStatus(ctx context.Context, id uint, status string) error
}

// BackendConfig holds the base URLs of the services.
type BackendConfig struct {
	ProductsURL string
	ShippingURL string
	AuthURL     string
	Timeout     time.Duration
}

// HTTPBackend calls the services over HTTP with fiber's client.
type HTTPBackend struct {
	cfg BackendConfig
}

func NewHTTPBackend(cfg BackendConfig) *HTTPBackend {
	cfg.ProductsURL = strings.TrimRight(cfg.ProductsURL, "/")
	cfg.ShippingURL = strings.TrimRight(cfg.ShippingURL, "/")
	cfg.AuthURL = strings.TrimRight(cfg.AuthURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &HTTPBackend{cfg: cfg}
}

func (b *HTTPBackend) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	a := fiber.Post(b.cfg.AuthURL + "/api/auth/login").JSON(fiber.Map{"email": email, "password": password})
	if err := b.do(ctx, a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *HTTPBackend) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	a := fiber.Post(b.cfg.AuthURL + "/api/auth/register").JSON(fiber.Map{"name": name, "email": email, "password": password})
	if err := b.do(ctx, a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *HTTPBackend) UpdateProfile(ctx context.Context, token, name, email, password string) (*models.UserView, error) {
	var out struct {
		User models.UserView `json:"user"`
	}
	a := fiber.Put(b.cfg.AuthURL+"/api/auth/profile").
		Set(fiber.HeaderAuthorization, "Bearer "+token).
		JSON(fiber.Map{"name": name, "email": email, "password": password})
	if err := b.do(ctx, a, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (b *HTTPBackend) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := b.do(ctx, fiber.Get(b.cfg.ProductsURL+"/products"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *HTTPBackend) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var out models.Product
	if err := b.do(ctx, fiber.Get(fmt.Sprintf("%s/products/%d", b.cfg.ProductsURL, id)), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *HTTPBackend) CreateProduct(ctx context.Context, form ProductForm) error {
	return b.do(ctx, fiber.Post(b.cfg.ProductsURL+"/products").JSON(form), nil)
}

func (b *HTTPBackend) UpdateProduct(ctx context.Context, id uint, form ProductForm) error {
	return b.do(ctx, fiber.Put(fmt.Sprintf("%s/products/%d", b.cfg.ProductsURL, id)).JSON(form), nil)
}

func (b *HTTPBackend) DeleteProduct(ctx context.Context, id uint) error {
	return b.do(ctx, fiber.Delete(fmt.Sprintf("%s/products/%d", b.cfg.ProductsURL, id)), nil)
}

func (b *HTTPBackend) ListShipments(ctx context.Context) ([]models.Shipment, error) {
	var out []models.Shipment
	if err := b.do(ctx, fiber.Get(b.cfg.ShippingURL+"/shipping"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *HTTPBackend) GetShipment(ctx context.Context, id uint) (*models.Shipment, error) {
	var out models.Shipment
	if err := b.do(ctx, fiber.Get(fmt.Sprintf("%s/shipping/%d", b.cfg.ShippingURL, id)), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *HTTPBackend) CreateShipment(ctx context.Context, form ShipmentForm) error {
	return b.do(ctx, fiber.Post(b.cfg.ShippingURL+"/shipping").JSON(form), nil)
}

func (b *HTTPBackend) UpdateShipmentStatus(ctx context.Context, id uint, status string) error {
	a := fiber.Put(fmt.Sprintf("%s/shipping/%d/status", b.cfg.ShippingURL, id)).JSON(fiber.Map{"status": status})
	return b.do(ctx, a, nil)
}

// do sends the request within the configured timeout, shortened to the
// deadline of ctx, and decodes a 2xx body into out.
func (b *HTTPBackend) do(ctx context.Context, a *fiber.Agent, out interface{}) error {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(a)
		return apperrors.Upstream(0, "Service unavailable", err)
	}
	timeout := b.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < timeout {
			timeout = d
		}
	}

	code, body, errs := a.Timeout(timeout).Bytes()
	if len(errs) > 0 {
		return apperrors.Upstream(0, "Service unavailable", errors.Join(errs...))
	}
	if code < http.StatusOK || code >= http.StatusMultipleChoices {
		return apperrors.Upstream(code, upstreamMessage(code, body), nil)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.Upstream(http.StatusBadGateway, "Invalid response from service", err)
	}
	return nil
}

// upstreamMessage extracts the error text of a backend body. The product and
// shipping services use "error", the auth service "message".
func upstreamMessage(code int, body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return http.StatusText(code)
}
