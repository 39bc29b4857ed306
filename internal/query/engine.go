// Package query answers a question through the answer generator and logs
// the exchange.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/patternlog/backend/internal/interaction"
	"github.com/patternlog/backend/internal/metrics"
	"github.com/patternlog/backend/internal/storage/models"
	"github.com/patternlog/backend/pkg/logger"
	"github.com/patternlog/backend/pkg/utils"
)

// ErrNoAnswer is returned when the generator produced only whitespace.
var ErrNoAnswer = errors.New("no answer was produced")

// Generator turns a prompt into answer text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Appender interface {
	Append(ctx context.Context, question, answer string) (*models.Interaction, error)
}

// AnswerCache is optional; a nil cache disables lookups.
type AnswerCache interface {
	GetAnswer(ctx context.Context, questionHash string) (string, bool, error)
	SetAnswer(ctx context.Context, questionHash, answer string) error
}

type Engine struct {
	store     Appender
	generator Generator
	cache     AnswerCache
}

type Exchange struct {
	RequestID   string              `json:"request_id"`
	Interaction *models.Interaction `json:"interaction"`
	Cached      bool                `json:"cached"`
	LatencyMS   int                 `json:"latency_ms"`
}

func NewEngine(store Appender, generator Generator, cache AnswerCache) *Engine {
	return &Engine{
		store:     store,
		generator: generator,
		cache:     cache,
	}
}

// Ask generates an answer for question and appends the pair. Nothing is
// stored when generation fails or yields no text.
func (e *Engine) Ask(ctx context.Context, question string) (*Exchange, error) {
	startTime := time.Now()
	requestID := uuid.New().String()

	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question must not be empty", interaction.ErrValidation)
	}

	logger.Info("Processing question",
		zap.String("request_id", requestID),
		zap.Int("question_length", len(question)),
	)

	answer, cached := e.lookup(ctx, question)
	if !cached {
		var err error
		answer, err = e.generate(ctx, question)
		if err != nil {
			logger.Warn("Answer generation failed",
				zap.String("request_id", requestID),
				zap.Error(err),
			)
			return nil, err
		}
		e.remember(ctx, question, answer)
	}

	in, err := e.store.Append(ctx, question, answer)
	if err != nil {
		return nil, fmt.Errorf("failed to log interaction: %w", err)
	}

	latency := int(time.Since(startTime).Milliseconds())
	logger.Info("Question answered",
		zap.String("request_id", requestID),
		zap.Int64("interaction_id", in.ID),
		zap.Bool("cached", cached),
		zap.Int("latency_ms", latency),
	)

	return &Exchange{
		RequestID:   requestID,
		Interaction: in,
		Cached:      cached,
		LatencyMS:   latency,
	}, nil
}

func (e *Engine) generate(ctx context.Context, question string) (string, error) {
	start := time.Now()
	answer, err := e.generator.Generate(ctx, question)
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GenerationTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		metrics.GenerationTotal.WithLabelValues("empty").Inc()
		return "", ErrNoAnswer
	}

	metrics.GenerationTotal.WithLabelValues("ok").Inc()
	return answer, nil
}

func (e *Engine) lookup(ctx context.Context, question string) (string, bool) {
	if e.cache == nil {
		return "", false
	}
	answer, ok, err := e.cache.GetAnswer(ctx, utils.QuestionKey(question))
	if err != nil {
		logger.Warn("Answer cache lookup failed", zap.Error(err))
		return "", false
	}
	if !ok || strings.TrimSpace(answer) == "" {
		return "", false
	}
	return answer, true
}

func (e *Engine) remember(ctx context.Context, question, answer string) {
	if e.cache == nil {
		return
	}
	if err := e.cache.SetAnswer(ctx, utils.QuestionKey(question), answer); err != nil {
		logger.Warn("Failed to cache answer", zap.Error(err))
	}
}
