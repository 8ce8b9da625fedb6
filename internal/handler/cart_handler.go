package handler

import (
	"go-commerce-core/internal/service"

	"github.com/MonkyMars/gecho"
	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	service service.CartService
	logger  *gecho.Logger
}

func NewCartHandler(s service.CartService, logger *gecho.Logger) *CartHandler {
	return &CartHandler{service: s, logger: logger}
}

type addLineRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart
// GET /api/v1/cart
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	snapshot, err := h.service.Snapshot(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(snapshot)
}

// AddLine
// POST /api/v1/cart/lines
func (h *CartHandler) AddLine(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req addLineRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	line, err := h.service.AddLine(c.UserContext(), userID, req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Added to cart", "data": line})
}

// SetLineQuantity
// PUT /api/v1/cart/lines/:id
func (h *CartHandler) SetLineQuantity(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	lineID, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid line ID"})
	}
	var req setQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	line, err := h.service.SetLineQuantity(c.UserContext(), userID, lineID, req.Quantity)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"message": "Cart updated", "data": line})
}

// RemoveLine
// DELETE /api/v1/cart/lines/:id
func (h *CartHandler) RemoveLine(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	lineID, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid line ID"})
	}
	if err := h.service.RemoveLine(c.UserContext(), userID, lineID); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(204)
}

// Clear
// DELETE /api/v1/cart
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Clear(c.UserContext(), userID); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(204)
}
