package handler

import (
	"go-commerce-core/internal/service"

	"github.com/MonkyMars/gecho"
	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	service service.ProductService
	logger  *gecho.Logger
}

func NewProductHandler(s service.ProductService, logger *gecho.Logger) *ProductHandler {
	return &ProductHandler{service: s, logger: logger}
}

// CreateDraft
// POST /api/v1/admin/products/drafts
func (h *ProductHandler) CreateDraft(c *fiber.Ctx) error {
	product, err := h.service.CreateDraft(c.UserContext(), getUserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Draft created", "data": product})
}

// Finalize
// POST /api/v1/admin/products/:id/finalize
func (h *ProductHandler) Finalize(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req service.FinalizeInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.service.Finalize(c.UserContext(), id, req, getUserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"message": "Product finalized", "data": product})
}

// DeleteDraft
// DELETE /api/v1/admin/products/drafts/:id
func (h *ProductHandler) DeleteDraft(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	if err := h.service.DeleteDraft(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(204)
}

// GetProduct returns drafts too, so it is mounted under the staff group.
// GET /api/v1/admin/products/:id
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(product)
}
