package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/patternlog/backend/internal/query"
	"github.com/patternlog/backend/pkg/logger"
)

type Asker interface {
	Ask(ctx context.Context, question string) (*query.Exchange, error)
}

type QueryHandler struct {
	asker Asker
}

func NewQueryHandler(asker Asker) *QueryHandler {
	return &QueryHandler{
		asker: asker,
	}
}

func (h *QueryHandler) HandleAsk(c *fiber.Ctx) error {
	var req struct {
		Question string `json:"question"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Debug("Failed to parse request body", zap.Error(err))
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}

	ex, err := h.asker.Ask(c.UserContext(), req.Question)
	if err != nil {
		status := statusFor(err, true)
		if status == fiber.StatusBadRequest {
			return errorResponse(c, status, err.Error())
		}
		logger.Error("Failed to answer question", zap.Error(err))
		return errorResponse(c, status, "failed to answer question")
	}

	return c.JSON(fiber.Map{
		"request_id":  ex.RequestID,
		"interaction": ex.Interaction,
		"answer":      ex.Interaction.Answer,
		"cached":      ex.Cached,
		"latency_ms":  ex.LatencyMS,
	})
}
