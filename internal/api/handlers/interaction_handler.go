package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/patternlog/backend/internal/storage/models"
	"github.com/patternlog/backend/pkg/logger"
)

type InteractionStore interface {
	Append(ctx context.Context, question, answer string) (*models.Interaction, error)
	ListAll(ctx context.Context) ([]models.Interaction, error)
}

type InteractionHandler struct {
	store InteractionStore
}

func NewInteractionHandler(store InteractionStore) *InteractionHandler {
	return &InteractionHandler{
		store: store,
	}
}

func (h *InteractionHandler) Append(c *fiber.Ctx) error {
	var req struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Debug("Failed to parse request body", zap.Error(err))
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}

	in, err := h.store.Append(c.UserContext(), req.Question, req.Answer)
	if err != nil {
		status := statusFor(err, false)
		if status >= fiber.StatusInternalServerError {
			logger.Error("Failed to append interaction", zap.Error(err))
			return errorResponse(c, status, "failed to store interaction")
		}
		return errorResponse(c, status, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(in)
}

func (h *InteractionHandler) List(c *fiber.Ctx) error {
	interactions, err := h.store.ListAll(c.UserContext())
	if err != nil {
		logger.Error("Failed to list interactions", zap.Error(err))
		return errorResponse(c, statusFor(err, false), "failed to list interactions")
	}

	return c.JSON(fiber.Map{
		"interactions": interactions,
		"count":        len(interactions),
	})
}
