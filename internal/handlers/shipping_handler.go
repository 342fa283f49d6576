package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"tokoadmin/internal/apperrors"
	"tokoadmin/internal/models"
	"tokoadmin/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ShippingHandler handles HTTP requests for shipments.
type ShippingHandler struct {
	service *services.ShippingService
	resp    responder
}

// NewShippingHandler creates a new ShippingHandler.
func NewShippingHandler(service *services.ShippingService, lg *zap.SugaredLogger, dev bool) *ShippingHandler {
	return &ShippingHandler{
		service: service,
		resp:    responder{key: "error", lg: lg, dev: dev},
	}
}

// RegisterRoutes registers the shipping routes under router.
func (h *ShippingHandler) RegisterRoutes(router fiber.Router) {
	shippingRoutes := router.Group("/shipping")
	shippingRoutes.Get("/", h.HandleGetShipments)
	shippingRoutes.Get("/:id", h.HandleGetShipmentByID)
	shippingRoutes.Post("/", h.HandleCreateShipment)
	shippingRoutes.Put("/:id/status", h.HandleUpdateShipmentStatus)
}

// ShipmentRequest is the body of a new shipment. product_id may be a JSON
// number or a numeric string.
type ShipmentRequest struct {
	ProductID json.RawMessage `json:"product_id"`
	Address   string          `json:"address"`
	Status    string          `json:"status"`
}

// productID returns 0 when product_id is absent.
func (r ShipmentRequest) productID() (uint, error) {
	text := rawText(r.ProductID)
	if text == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, apperrors.Validation("Product ID must be a positive integer")
	}
	return uint(id), nil
}

// StatusRequest is the body of a status change.
type StatusRequest struct {
	Status string `json:"status"`
}

// failStatus adds the accepted statuses to an invalid status error.
func (h *ShippingHandler) failStatus(c *fiber.Ctx, err error, fallback string) error {
	if errors.Is(err, services.ErrInvalidStatus) {
		return h.resp.fail(c, err, fallback, fiber.Map{"valid_statuses": models.StatusStrings()})
	}
	return h.resp.fail(c, err, fallback, nil)
}

func (h *ShippingHandler) HandleGetShipments(c *fiber.Ctx) error {
	shipments, err := h.service.GetAllShipments(c.UserContext())
	if err != nil {
		return h.resp.fail(c, err, "Failed to get shipments", nil)
	}
	return c.JSON(shipments)
}

func (h *ShippingHandler) HandleGetShipmentByID(c *fiber.Ctx) error {
	id, err := idParam(c, "Invalid shipment ID")
	if err != nil {
		return h.resp.fail(c, err, "", nil)
	}
	shipment, err := h.service.GetShipmentByID(c.UserContext(), id)
	if err != nil {
		return h.resp.fail(c, err, "Failed to get shipment", nil)
	}
	return c.JSON(shipment)
}

// HandleCreateShipment creates a shipment, pending unless a status is given.
func (h *ShippingHandler) HandleCreateShipment(c *fiber.Ctx) error {
	var req ShipmentRequest
	if err := parseBody(c, &req); err != nil {
		return h.resp.fail(c, err, "", nil)
	}

	productID, err := req.productID()
	if err != nil {
		return h.resp.fail(c, err, "", nil)
	}

	shipment, err := h.service.CreateShipment(c.UserContext(), services.ShipmentInput{
		ProductID: productID,
		Address:   req.Address,
		Status:    req.Status,
	})
	if err != nil {
		return h.failStatus(c, err, "Failed to create shipment")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Shipment created successfully",
		"id":      shipment.ID,
	})
}

// HandleUpdateShipmentStatus changes the status and returns the updated row.
func (h *ShippingHandler) HandleUpdateShipmentStatus(c *fiber.Ctx) error {
	id, err := idParam(c, "Invalid shipment ID")
	if err != nil {
		return h.resp.fail(c, err, "", nil)
	}
	var req StatusRequest
	if err := parseBody(c, &req); err != nil {
		return h.resp.fail(c, err, "", nil)
	}

	shipment, err := h.service.UpdateShipmentStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return h.failStatus(c, err, "Failed to update shipment status")
	}
	return c.JSON(fiber.Map{
		"message": "Shipment status updated successfully",
		"data":    shipment,
	})
}
