package handler

import (
	"strconv"

	"go-commerce-core/internal/apperr"
	"go-commerce-core/internal/middleware"

	"github.com/MonkyMars/gecho"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation:        fiber.StatusBadRequest,
	apperr.KindNotFound:          fiber.StatusNotFound,
	apperr.KindInvalidState:      fiber.StatusConflict,
	apperr.KindAlreadyFinal:      fiber.StatusConflict,
	apperr.KindEmptyCart:         fiber.StatusUnprocessableEntity,
	apperr.KindUnavailable:       fiber.StatusUnprocessableEntity,
	apperr.KindInsufficientStock: fiber.StatusUnprocessableEntity,
	apperr.KindConfiguration:     fiber.StatusInternalServerError,
	apperr.KindConflict:          fiber.StatusConflict,
}

// respondError writes err as JSON. Business errors carry their message;
// configuration, conflict and unexpected errors are logged and answered
// with a generic message.
func respondError(c *fiber.Ctx, logger *gecho.Logger, err error) error {
	kind := apperr.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = fiber.StatusInternalServerError
	}

	switch kind {
	case apperr.KindConfiguration:
		logger.Error("Configuration error", gecho.Field("error", err), gecho.Field("path", c.Path()))
		return c.Status(status).JSON(fiber.Map{"error": "Service is misconfigured, please contact support", "code": kind})
	case apperr.KindConflict:
		logger.Error("Conflict", gecho.Field("error", err), gecho.Field("path", c.Path()))
		return c.Status(status).JSON(fiber.Map{"error": "Request conflicted with a concurrent change, please retry", "code": kind})
	case apperr.KindInternal:
		logger.Error("Unexpected error", gecho.Field("error", err), gecho.Field("path", c.Path()))
		return c.Status(status).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error(), "code": kind})
}

// Helper untuk ambil User Info dari JWT Context (set by auth middleware)
func getUserID(c *fiber.Ctx) string {
	userID := c.Locals("user_id")
	if userID == nil {
		return "system"
	}
	return userID.(string)
}

func currentUser(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Missing user")
	}
	return id, nil
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 64)
	return uint(v), err
}
