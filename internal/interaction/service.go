// Package interaction is the append-only log of question/answer exchanges.
package interaction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/patternlog/backend/internal/metrics"
	"github.com/patternlog/backend/internal/storage/models"
	"github.com/patternlog/backend/pkg/logger"
)

// ErrValidation is returned for a blank question or answer.
var ErrValidation = errors.New("validation failed")

// Repository is the durable backing of the log.
type Repository interface {
	InsertInteraction(ctx context.Context, in *models.Interaction) error
	ListInteractions(ctx context.Context) ([]models.Interaction, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Append validates and stores a new exchange. Nothing is written when
// validation fails.
func (s *Service) Append(ctx context.Context, question, answer string) (*models.Interaction, error) {
	if strings.TrimSpace(question) == "" {
		metrics.InteractionsAppended.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: question must not be empty", ErrValidation)
	}
	if strings.TrimSpace(answer) == "" {
		metrics.InteractionsAppended.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: answer must not be empty", ErrValidation)
	}

	in := &models.Interaction{Question: question, Answer: answer}
	if err := s.repo.InsertInteraction(ctx, in); err != nil {
		metrics.InteractionsAppended.WithLabelValues("error").Inc()
		logger.Error("Failed to append interaction", zap.Error(err))
		return nil, err
	}

	metrics.InteractionsAppended.WithLabelValues("ok").Inc()
	logger.Info("Interaction appended", zap.Int64("interaction_id", in.ID))
	return in, nil
}

// ListAll returns every interaction ordered by id ascending; never nil.
func (s *Service) ListAll(ctx context.Context) ([]models.Interaction, error) {
	interactions, err := s.repo.ListInteractions(ctx)
	if err != nil {
		return nil, err
	}
	if interactions == nil {
		interactions = []models.Interaction{}
	}
	return interactions, nil
}
