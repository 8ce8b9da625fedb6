package handler

import (
	"go-commerce-core/internal/model"
	"go-commerce-core/internal/repository"
	"go-commerce-core/internal/service"

	"github.com/MonkyMars/gecho"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AdminHandler serves the staff-only order and status endpoints.
type AdminHandler struct {
	orders      service.OrderService
	statuses    service.StatusService
	assignments service.AssignmentService
	logger      *gecho.Logger
}

func NewAdminHandler(orders service.OrderService, statuses service.StatusService, assignments service.AssignmentService, logger *gecho.Logger) *AdminHandler {
	return &AdminHandler{orders: orders, statuses: statuses, assignments: assignments, logger: logger}
}

type updateStatusRequest struct {
	StatusID uint `json:"status_id"`
}

type updatePaymentRequest struct {
	PaymentStatus model.PaymentStatus `json:"payment_status"`
}

type assignRequest struct {
	ManagerID uuid.UUID `json:"manager_id"`
}

type reorderRequest struct {
	IDs []uint `json:"ids"`
}

// GET /api/v1/admin/orders?filter=active|completed|all
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.orders.ListAllOrders(c.UserContext(), repository.OrderFilter(c.Query("filter", "all")))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(orders)
}

// GET /api/v1/admin/orders/:id
func (h *AdminHandler) GetOrder(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}
	order, err := h.orders.GetAnyOrder(c.UserContext(), orderID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(order)
}

// PUT /api/v1/admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.orders.UpdateOrderStatus(c.UserContext(), orderID, req.StatusID, getUserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"message": "Order status updated", "data": order})
}

// PUT /api/v1/admin/orders/:id/payment
func (h *AdminHandler) UpdatePaymentStatus(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}
	var req updatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.orders.UpdatePaymentStatus(c.UserContext(), orderID, req.PaymentStatus, getUserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"message": "Payment status updated", "data": order})
}

// PUT /api/v1/admin/orders/:id/manager
func (h *AdminHandler) AssignManager(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req assignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	assignment, err := h.assignments.Transfer(c.UserContext(), orderID, req.ManagerID, actor)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"message": "Manager assigned", "data": assignment})
}

// POST /api/v1/admin/orders/:id/accept
func (h *AdminHandler) AcceptOrder(c *fiber.Ctx) error {
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	assignment, err := h.assignments.Accept(c.UserContext(), orderID, actor)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"message": "Order accepted", "data": assignment})
}

// GET /api/v1/admin/managers
func (h *AdminHandler) ListManagers(c *fiber.Ctx) error {
	managers, err := h.assignments.ListManagers(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(managers)
}

// GET /api/v1/admin/order-statuses
func (h *AdminHandler) ListStatuses(c *fiber.Ctx) error {
	statuses, err := h.statuses.ListStatuses(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(statuses)
}

// POST /api/v1/admin/order-statuses
func (h *AdminHandler) CreateStatus(c *fiber.Ctx) error {
	var req service.CreateStatusInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	status, err := h.statuses.CreateStatus(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Order status created", "data": status})
}

// PUT /api/v1/admin/order-statuses/order
func (h *AdminHandler) ReorderStatuses(c *fiber.Ctx) error {
	var req reorderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	statuses, err := h.statuses.ReorderStatuses(c.UserContext(), req.IDs)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(statuses)
}
