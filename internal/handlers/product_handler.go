package handlers

import (
	"encoding/json"
	"strings"

	"tokoadmin/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	resp    responder
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, lg *zap.SugaredLogger, dev bool) *ProductHandler {
	return &ProductHandler{
		service: service,
		resp:    responder{key: "error", lg: lg, dev: dev},
	}
}

// RegisterRoutes registers the product routes under router.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// ProductRequest is the body of create and update. price may be a JSON number
// or a numeric string.
type ProductRequest struct {
	Name        string          `json:"name" validate:"max=255"`
	Price       json.RawMessage `json:"price"`
	Description string          `json:"description"`
}

func (r ProductRequest) input() services.ProductInput {
	return services.ProductInput{
		Name:        r.Name,
		Price:       rawText(r.Price),
		Description: r.Description,
	}
}

// rawText unquotes a JSON string and returns other literals verbatim.
func rawText(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return trimmed
}

func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return h.resp.fail(c, err, "Failed to get products", nil)
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := idParam(c, "Invalid product ID")
	if err != nil {
		return h.resp.fail(c, err, "", nil)
	}
	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return h.resp.fail(c, err, "Failed to get product", nil)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := parseBody(c, &req); err != nil {
		return h.resp.fail(c, err, "", nil)
	}

	product, err := h.service.CreateProduct(c.UserContext(), req.input())
	if err != nil {
		return h.resp.fail(c, err, "Failed to create product", nil)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Product created successfully",
		"id":          product.ID,
		"name":        product.Name,
		"price":       product.Price,
		"description": product.Description,
	})
}

// HandleUpdateProduct overwrites name, price and description.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := idParam(c, "Invalid product ID")
	if err != nil {
		return h.resp.fail(c, err, "", nil)
	}
	var req ProductRequest
	if err := parseBody(c, &req); err != nil {
		return h.resp.fail(c, err, "", nil)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, req.input())
	if err != nil {
		return h.resp.fail(c, err, "Failed to update product", nil)
	}
	return c.JSON(fiber.Map{
		"message":     "Product updated successfully",
		"id":          product.ID,
		"name":        product.Name,
		"price":       product.Price,
		"description": product.Description,
	})
}

// HandleDeleteProduct deletes a product and the shipments referencing it.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := idParam(c, "Invalid product ID")
	if err != nil {
		return h.resp.fail(c, err, "", nil)
	}

	res, err := h.service.DeleteProduct(c.UserContext(), id)
	if err != nil {
		return h.resp.fail(c, err, "Failed to delete product", fiber.Map{"id": id})
	}
	return c.JSON(fiber.Map{
		"success":          true,
		"message":          "Product deleted successfully",
		"id":               id,
		"affectedRows":     res.Products,
		"deletedShipments": res.Shipments,
	})
}
