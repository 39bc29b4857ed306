// Package scheduler runs pattern analysis on a cron schedule.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/patternlog/backend/internal/analysis"
	"github.com/patternlog/backend/pkg/logger"
)

type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Report, error)
}

type Scheduler struct {
	cron     *cron.Cron
	ctx      context.Context
	cancel   context.CancelFunc
	analyzer Analyzer
	schedule string
}

// New returns a scheduler for the given standard five-field cron expression.
func New(analyzer Analyzer, schedule string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		ctx:      ctx,
		cancel:   cancel,
		analyzer: analyzer,
		schedule: schedule,
	}
}

// Start registers the analysis job. An empty schedule disables it.
func (s *Scheduler) Start() error {
	if s.schedule == "" {
		logger.Info("Scheduled analysis disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce(s.ctx) }); err != nil {
		return err
	}

	s.cron.Start()
	logger.Info("Scheduler started", zap.String("schedule", s.schedule))
	return nil
}

// RunOnce performs one scheduled analysis and logs the discovered patterns.
func (s *Scheduler) RunOnce(ctx context.Context) {
	rep, err := s.analyzer.Analyze(ctx, analysis.Request{Trigger: "scheduled"})
	if err != nil {
		if analysis.IsNotEnoughData(err) {
			logger.Info("Scheduled analysis skipped, not enough interactions")
			return
		}
		logger.Error("Scheduled analysis failed", zap.Error(err))
		return
	}

	logger.Info("Scheduled analysis discovered patterns",
		zap.Int("documents", rep.Documents),
		zap.Strings("patterns", rep.Lines),
	)
}

func (s *Scheduler) Stop() {
	stopped := s.cron.Stop()
	<-stopped.Done()
	s.cancel()
	logger.Info("Scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
