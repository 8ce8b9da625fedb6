package handler

import (
	"strconv"

	"go-commerce-core/internal/service"

	"github.com/MonkyMars/gecho"
	"github.com/gofiber/fiber/v2"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	logger  *gecho.Logger
}

func NewAvailabilityHandler(s service.AvailabilityService, logger *gecho.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{service: s, logger: logger}
}

// Classify
// GET /api/v1/availability?quantity=3&supplier_id=7
func (h *AvailabilityHandler) Classify(c *fiber.Ctx) error {
	quantity, err := strconv.Atoi(c.Query("quantity"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid quantity"})
	}

	var supplierID *uint
	if raw := c.Query("supplier_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid supplier ID"})
		}
		id := uint(v)
		supplierID = &id
	}

	rule, err := h.service.Classify(c.UserContext(), quantity, supplierID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if rule == nil {
		return c.JSON(fiber.Map{"matched": false})
	}
	return c.JSON(fiber.Map{"matched": true, "label": rule.Label, "color": rule.Color, "rule_id": rule.ID})
}

// GET /api/v1/admin/availability-rules
func (h *AvailabilityHandler) ListRules(c *fiber.Ctx) error {
	rules, err := h.service.ListRules(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(rules)
}

// POST /api/v1/admin/availability-rules
func (h *AvailabilityHandler) CreateRule(c *fiber.Ctx) error {
	var req service.CreateRuleInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	rule, err := h.service.CreateRule(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Rule created", "data": rule})
}

// DELETE /api/v1/admin/availability-rules/:id
func (h *AvailabilityHandler) DeleteRule(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid rule ID"})
	}
	if err := h.service.DeleteRule(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(204)
}
