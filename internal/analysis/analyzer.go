// Package analysis runs the store -> corpus -> topics -> report pipeline.
package analysis

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/patternlog/backend/internal/corpus"
	"github.com/patternlog/backend/internal/metrics"
	"github.com/patternlog/backend/internal/report"
	"github.com/patternlog/backend/internal/storage/models"
	"github.com/patternlog/backend/internal/topic"
	"github.com/patternlog/backend/pkg/logger"
)

// Lister supplies the full interaction log.
type Lister interface {
	ListAll(ctx context.Context) ([]models.Interaction, error)
}

type Defaults struct {
	NumTopics int
	Seed      int64
	TopTerms  int
}

type Analyzer struct {
	source   Lister
	builder  *corpus.Builder
	engine   *topic.Engine
	defaults Defaults
}

func NewAnalyzer(source Lister, builder *corpus.Builder, engine *topic.Engine, defaults Defaults) *Analyzer {
	return &Analyzer{
		source:   source,
		builder:  builder,
		engine:   engine,
		defaults: defaults,
	}
}

// Request overrides the configured defaults; zero fields keep them.
type Request struct {
	NumTopics int
	Seed      *int64
	TopTerms  int
	Trigger   string
}

type Report struct {
	Documents      int              `json:"documents"`
	VocabularySize int              `json:"vocabulary_size"`
	NumTopics      int              `json:"num_topics"`
	Seed           int64            `json:"seed"`
	Patterns       []report.Pattern `json:"patterns"`
	Lines          []string         `json:"lines"`
	// DominantPatterns maps interaction id to its 1-based dominant pattern.
	DominantPatterns map[int64]int `json:"dominant_patterns"`
	LatencyMS        int           `json:"latency_ms"`
}

// IsNotEnoughData reports whether err means the log is too small to analyze.
func IsNotEnoughData(err error) bool {
	return errors.Is(err, corpus.ErrEmptyCorpus) || errors.Is(err, topic.ErrInsufficientData)
}

func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()

	numTopics := req.NumTopics
	if numTopics == 0 {
		numTopics = a.defaults.NumTopics
	}
	seed := a.defaults.Seed
	if req.Seed != nil {
		seed = *req.Seed
	}
	topTerms := req.TopTerms
	if topTerms == 0 {
		topTerms = a.defaults.TopTerms
	}
	trigger := req.Trigger
	if trigger == "" {
		trigger = "manual"
	}

	rep, err := a.run(ctx, numTopics, seed, topTerms)
	status := "ok"
	switch {
	case err == nil:
	case IsNotEnoughData(err):
		status = "insufficient_data"
	default:
		status = "error"
	}
	metrics.AnalysisTotal.WithLabelValues(status, trigger).Inc()
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		logger.Warn("Analysis did not complete",
			zap.String("trigger", trigger),
			zap.String("status", status),
			zap.Error(err),
		)
		return nil, err
	}

	rep.LatencyMS = int(time.Since(start).Milliseconds())
	logger.Info("Analysis completed",
		zap.String("trigger", trigger),
		zap.Int("documents", rep.Documents),
		zap.Int("vocabulary_size", rep.VocabularySize),
		zap.Int("num_topics", numTopics),
		zap.Int64("seed", seed),
		zap.Int("latency_ms", rep.LatencyMS),
	)
	return rep, nil
}

func (a *Analyzer) run(ctx context.Context, numTopics int, seed int64, topTerms int) (*Report, error) {
	interactions, err := a.source.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	c, err := a.builder.Build(interactions)
	if err != nil {
		return nil, err
	}
	metrics.CorpusDocuments.Set(float64(c.NumDocuments()))
	metrics.CorpusVocabularySize.Set(float64(c.VocabularySize()))

	fit, err := a.engine.Fit(c, numTopics, seed)
	if err != nil {
		return nil, err
	}

	dominant := make(map[int64]int, c.NumDocuments())
	for d, id := range c.DocumentIDs() {
		dominant[id] = fit.DominantTopic(d) + 1
	}

	return &Report{
		Documents:        c.NumDocuments(),
		VocabularySize:   c.VocabularySize(),
		NumTopics:        numTopics,
		Seed:             seed,
		Patterns:         report.Summaries(fit.Topics, topTerms),
		Lines:            report.FormatTopics(fit.Topics, topTerms),
		DominantPatterns: dominant,
	}, nil
}
