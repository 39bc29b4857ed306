// Package app assembles the services shared by the API server and the shell.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/patternlog/backend/internal/analysis"
	"github.com/patternlog/backend/internal/cache/redis"
	"github.com/patternlog/backend/internal/corpus"
	"github.com/patternlog/backend/internal/interaction"
	"github.com/patternlog/backend/internal/llm"
	"github.com/patternlog/backend/internal/query"
	"github.com/patternlog/backend/internal/storage/sqlite"
	"github.com/patternlog/backend/internal/topic"
	"github.com/patternlog/backend/pkg/config"
	"github.com/patternlog/backend/pkg/logger"
)

type App struct {
	Store        *sqlite.Client
	Cache        *redis.Client
	Interactions *interaction.Service
	Engine       *query.Engine
	Analyzer     *analysis.Analyzer
}

// New opens the store, connects optional services and wires the pipeline.
// A redis failure is logged and the cache left out.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if dir := filepath.Dir(cfg.SQLite.Path); dir != "." && cfg.SQLite.Path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	store, err := sqlite.NewClient(cfg.SQLite.Path, time.Duration(cfg.SQLite.BusyTimeoutMs)*time.Millisecond)
	if err != nil {
		return nil, err
	}
	if err := store.InitSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}

	a := &App{Store: store}
	a.Interactions = interaction.NewService(store)

	generator := llm.NewClient(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
	})

	var cache query.AnswerCache
	if cfg.Redis.Enabled {
		c, err := redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.AnswerTTLSec)*time.Second,
		)
		if err != nil {
			logger.Warn("Answer cache unavailable, continuing without it", zap.Error(err))
		} else {
			a.Cache = c
			cache = c
		}
	}
	a.Engine = query.NewEngine(a.Interactions, generator, cache)

	tokenizer, err := corpus.NewTokenizer(cfg.Analysis.Tokenizer)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Analyzer = analysis.NewAnalyzer(
		a.Interactions,
		corpus.NewBuilder(tokenizer),
		topic.NewEngine(topic.Config{
			MaxIter:          cfg.Analysis.MaxIter,
			MaxDocUpdateIter: cfg.Analysis.MaxDocUpdateIter,
			MeanChangeTol:    cfg.Analysis.MeanChangeTol,
		}),
		analysis.Defaults{
			NumTopics: cfg.Analysis.NumTopics,
			Seed:      cfg.Analysis.Seed,
			TopTerms:  cfg.Analysis.TopTerms,
		},
	)

	return a, nil
}

func (a *App) Close() {
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
	if err := a.Store.Close(); err != nil {
		logger.Warn("Failed to close store", zap.Error(err))
	}
}
