package handler

import (
	"strconv"

	"go-commerce-core/internal/service"

	"github.com/MonkyMars/gecho"
	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
	logger  *gecho.Logger
}

func NewDashboardHandler(s service.DashboardService, logger *gecho.Logger) *DashboardHandler {
	return &DashboardHandler{service: s, logger: logger}
}

// GetOrderVolume returns daily order counts and amounts for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetOrderVolume(c *fiber.Ctx) error {
	daysStr := c.Query("days", "7")
	days, err := strconv.Atoi(daysStr)
	if err != nil || days <= 0 {
		days = 7
	}

	data, err := h.service.GetOrderVolume(c.UserContext(), days)
	if err != nil {
		h.logger.Error("Failed to fetch order volume", gecho.Field("error", err))
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch order volume"})
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetOrderStats returns overview statistics
func (h *DashboardHandler) GetOrderStats(c *fiber.Ctx) error {
	stats, err := h.service.GetOrderStats(c.UserContext())
	if err != nil {
		h.logger.Error("Failed to fetch order stats", gecho.Field("error", err))
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch order stats"})
	}

	return c.JSON(stats)
}
