package handler

import (
	"go-commerce-core/internal/repository"
	"go-commerce-core/internal/service"

	"github.com/MonkyMars/gecho"
	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	service service.OrderService
	logger  *gecho.Logger
}

func NewOrderHandler(s service.OrderService, logger *gecho.Logger) *OrderHandler {
	return &OrderHandler{service: s, logger: logger}
}

// CreateOrder turns the caller's cart into an order.
// POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req service.DeliveryDetails
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.service.CreateOrder(c.UserContext(), userID, req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Order created", "data": order})
}

// GetOrders
// GET /api/v1/orders?filter=active|completed|all
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	orders, err := h.service.ListOrders(c.UserContext(), userID, repository.OrderFilter(c.Query("filter", "all")))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(orders)
}

// GetOrder
// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}
	order, err := h.service.GetOrder(c.UserContext(), userID, orderID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(order)
}

// CancelOrder
// POST /api/v1/orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}
	order, err := h.service.CancelOrder(c.UserContext(), userID, orderID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"message": "Order cancelled", "data": order})
}
