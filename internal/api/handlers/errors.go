package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/patternlog/backend/internal/analysis"
	"github.com/patternlog/backend/internal/interaction"
	"github.com/patternlog/backend/internal/storage/sqlite"
	"github.com/patternlog/backend/internal/topic"
)

// statusFor maps domain errors onto HTTP status codes. Anything it does not
// recognise is a generation failure when upstream is set, and a server
// error otherwise.
func statusFor(err error, upstream bool) int {
	switch {
	case errors.Is(err, interaction.ErrValidation), errors.Is(err, topic.ErrInvalidTopicCount):
		return fiber.StatusBadRequest
	case analysis.IsNotEnoughData(err):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, sqlite.ErrStorage):
		return fiber.StatusInternalServerError
	case upstream:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}
