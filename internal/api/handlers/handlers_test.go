package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patternlog/backend/internal/analysis"
	"github.com/patternlog/backend/internal/corpus"
	"github.com/patternlog/backend/internal/interaction"
	"github.com/patternlog/backend/internal/query"
	"github.com/patternlog/backend/internal/storage/models"
	"github.com/patternlog/backend/internal/storage/sqlite"
	"github.com/patternlog/backend/internal/topic"
)

type memoryStore struct {
	interactions []models.Interaction
	err          error
}

func (m *memoryStore) Append(ctx context.Context, question, answer string) (*models.Interaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return nil, fmt.Errorf("%w: blank field", interaction.ErrValidation)
	}
	in := models.Interaction{
		ID:        int64(len(m.interactions) + 1),
		Question:  question,
		Answer:    answer,
		Timestamp: time.UnixMilli(1_700_000_000_000),
	}
	m.interactions = append(m.interactions, in)
	return &in, nil
}

func (m *memoryStore) ListAll(ctx context.Context) ([]models.Interaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]models.Interaction{}, m.interactions...), nil
}

type stubAsker struct {
	answer string
	err    error
}

func (s *stubAsker) Ask(ctx context.Context, question string) (*query.Exchange, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question must not be empty", interaction.ErrValidation)
	}
	if s.err != nil {
		return nil, s.err
	}
	return &query.Exchange{
		RequestID:   "req-1",
		Interaction: &models.Interaction{ID: 1, Question: question, Answer: s.answer},
	}, nil
}

type stubAnalyzer struct {
	report *analysis.Report
	err    error
	last   analysis.Request
}

func (s *stubAnalyzer) Analyze(ctx context.Context, req analysis.Request) (*analysis.Report, error) {
	s.last = req
	return s.report, s.err
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestInteractionHandler(t *testing.T) {
	store := &memoryStore{}
	h := NewInteractionHandler(store)
	app := fiber.New()
	app.Post("/interactions", h.Append)
	app.Get("/interactions", h.List)

	status, body := do(t, app, "POST", "/interactions", `{"question":"what is go","answer":"a language"}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, float64(1), body["id"])

	status, _ = do(t, app, "POST", "/interactions", `{"question":"  ","answer":"x"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, "POST", "/interactions", `{"question":`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = do(t, app, "GET", "/interactions", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])
}

func TestInteractionHandlerStorageFailure(t *testing.T) {
	store := &memoryStore{err: fmt.Errorf("%w: disk full", sqlite.ErrStorage)}
	h := NewInteractionHandler(store)
	app := fiber.New()
	app.Post("/interactions", h.Append)
	app.Get("/interactions", h.List)

	status, body := do(t, app, "POST", "/interactions", `{"question":"q","answer":"a"}`)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "failed to store interaction", body["error"])

	status, _ = do(t, app, "GET", "/interactions", "")
	assert.Equal(t, fiber.StatusInternalServerError, status)
}

func TestQueryHandler(t *testing.T) {
	tests := []struct {
		name       string
		asker      *stubAsker
		body       string
		wantStatus int
	}{
		{"answered", &stubAsker{answer: "a language"}, `{"question":"what is go"}`, fiber.StatusOK},
		{"blank", &stubAsker{answer: "x"}, `{"question":" "}`, fiber.StatusBadRequest},
		{"no answer", &stubAsker{err: query.ErrNoAnswer}, `{"question":"q"}`, fiber.StatusBadGateway},
		{"upstream", &stubAsker{err: errors.New("connection refused")}, `{"question":"q"}`, fiber.StatusBadGateway},
		{"storage", &stubAsker{err: fmt.Errorf("failed to log interaction: %w", sqlite.ErrStorage)}, `{"question":"q"}`, fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Post("/ask", NewQueryHandler(tt.asker).HandleAsk)

			status, body := do(t, app, "POST", "/ask", tt.body)
			assert.Equal(t, tt.wantStatus, status)
			if status == fiber.StatusOK {
				assert.Equal(t, "a language", body["answer"])
				assert.Equal(t, "req-1", body["request_id"])
			}
		})
	}
}

func TestPatternHandler(t *testing.T) {
	analyzer := &stubAnalyzer{report: &analysis.Report{
		Documents: 6,
		Lines:     []string{"Pattern 1: go, rust"},
	}}
	app := fiber.New()
	app.Get("/patterns", NewPatternHandler(analyzer).Discover)

	status, body := do(t, app, "GET", "/patterns?topics=2&seed=7&k=3", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(6), body["documents"])
	assert.Equal(t, 2, analyzer.last.NumTopics)
	assert.Equal(t, 3, analyzer.last.TopTerms)
	require.NotNil(t, analyzer.last.Seed)
	assert.Equal(t, int64(7), *analyzer.last.Seed)
	assert.Equal(t, "api", analyzer.last.Trigger)

	status, _ = do(t, app, "GET", "/patterns", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Zero(t, analyzer.last.NumTopics)
	assert.Nil(t, analyzer.last.Seed)

	for _, target := range []string{"/patterns?topics=x", "/patterns?topics=0", "/patterns?seed=abc", "/patterns?k=-1"} {
		status, _ = do(t, app, "GET", target, "")
		assert.Equal(t, fiber.StatusBadRequest, status, target)
	}
}

func TestPatternHandlerErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"empty log", corpus.ErrEmptyCorpus, fiber.StatusUnprocessableEntity},
		{"too few documents", fmt.Errorf("%w: 2 documents", topic.ErrInsufficientData), fiber.StatusUnprocessableEntity},
		{"bad topic count", topic.ErrInvalidTopicCount, fiber.StatusBadRequest},
		{"storage", fmt.Errorf("%w: locked", sqlite.ErrStorage), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/patterns", NewPatternHandler(&stubAnalyzer{err: tt.err}).Discover)

			status, _ := do(t, app, "GET", "/patterns", "")
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}
