package scheduler

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patternlog/backend/internal/analysis"
	"github.com/patternlog/backend/internal/corpus"
)

type recordingAnalyzer struct {
	mu       sync.Mutex
	requests []analysis.Request
	err      error
}

func (r *recordingAnalyzer) Analyze(ctx context.Context, req analysis.Request) (*analysis.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	if r.err != nil {
		return nil, r.err
	}
	return &analysis.Report{Lines: []string{"Pattern 1: go"}}, nil
}

func TestStartWithoutScheduleIsDisabled(t *testing.T) {
	s := New(&recordingAnalyzer{}, "")
	require.NoError(t, s.Start())
	assert.False(t, s.IsRunning())
	s.Stop()
}

func TestStartRejectsBadExpression(t *testing.T) {
	s := New(&recordingAnalyzer{}, "every tuesday")
	assert.Error(t, s.Start())
	assert.False(t, s.IsRunning())
}

func TestStartRegistersJob(t *testing.T) {
	s := New(&recordingAnalyzer{}, "*/5 * * * *")
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	s.Stop()
}

func TestRunOnceUsesScheduledTrigger(t *testing.T) {
	a := &recordingAnalyzer{}
	s := New(a, "@hourly")
	s.RunOnce(context.Background())

	a.err = corpus.ErrEmptyCorpus
	s.RunOnce(context.Background())

	require.Len(t, a.requests, 2)
	for _, req := range a.requests {
		assert.Equal(t, "scheduled", req.Trigger)
	}
}
