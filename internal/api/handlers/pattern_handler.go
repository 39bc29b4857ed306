package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/patternlog/backend/internal/analysis"
	"github.com/patternlog/backend/pkg/logger"
)

type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Report, error)
}

type PatternHandler struct {
	analyzer Analyzer
}

func NewPatternHandler(analyzer Analyzer) *PatternHandler {
	return &PatternHandler{
		analyzer: analyzer,
	}
}

// Discover handles GET /patterns?topics=&seed=&k=. Omitted parameters fall
// back to the configured defaults.
func (h *PatternHandler) Discover(c *fiber.Ctx) error {
	req := analysis.Request{Trigger: "api"}

	var err error
	if req.NumTopics, err = intQuery(c, "topics"); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "topics must be an integer")
	}
	if req.TopTerms, err = intQuery(c, "k"); err != nil || req.TopTerms < 0 {
		return errorResponse(c, fiber.StatusBadRequest, "k must be a non-negative integer")
	}
	if raw := c.Query("seed"); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "seed must be an integer")
		}
		req.Seed = &seed
	}
	if c.Query("topics") != "" && req.NumTopics < 1 {
		return errorResponse(c, fiber.StatusBadRequest, "topics must be positive")
	}

	rep, err := h.analyzer.Analyze(c.UserContext(), req)
	if err != nil {
		status := statusFor(err, false)
		if status < fiber.StatusInternalServerError {
			return errorResponse(c, status, err.Error())
		}
		logger.Error("Pattern discovery failed", zap.Error(err))
		return errorResponse(c, status, "pattern discovery failed")
	}

	return c.JSON(rep)
}

func intQuery(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
