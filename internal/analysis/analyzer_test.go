package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patternlog/backend/internal/corpus"
	"github.com/patternlog/backend/internal/storage/models"
	"github.com/patternlog/backend/internal/topic"
)

type staticLister struct {
	interactions []models.Interaction
	err          error
}

func (s staticLister) ListAll(context.Context) ([]models.Interaction, error) {
	return s.interactions, s.err
}

func newAnalyzer(l Lister) *Analyzer {
	return NewAnalyzer(l, corpus.NewBuilder(nil), topic.NewEngine(topic.DefaultConfig()), Defaults{
		NumTopics: 5,
		Seed:      42,
		TopTerms:  10,
	})
}

var sample = []models.Interaction{
	{ID: 1, Question: "what is rust", Answer: "a language"},
	{ID: 2, Question: "what is go", Answer: "a language"},
	{ID: 3, Question: "what is a cat", Answer: "an animal"},
}

func TestAnalyze_EmptyLog(t *testing.T) {
	_, err := newAnalyzer(staticLister{}).Analyze(context.Background(), Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, corpus.ErrEmptyCorpus)
	assert.True(t, IsNotEnoughData(err))
}

func TestAnalyze_DefaultTopicsExceedDocuments(t *testing.T) {
	_, err := newAnalyzer(staticLister{interactions: sample}).Analyze(context.Background(), Request{})
	assert.ErrorIs(t, err, topic.ErrInsufficientData)
	assert.True(t, IsNotEnoughData(err))
}

func TestAnalyze_Report(t *testing.T) {
	seed := int64(42)
	rep, err := newAnalyzer(staticLister{interactions: sample}).Analyze(context.Background(), Request{
		NumTopics: 2,
		Seed:      &seed,
		TopTerms:  3,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, rep.Documents)
	assert.Equal(t, 9, rep.VocabularySize)
	assert.Equal(t, 2, rep.NumTopics)
	assert.Equal(t, int64(42), rep.Seed)
	require.Len(t, rep.Lines, 2)
	assert.Regexp(t, `^Pattern 1: \w+, \w+, \w+$`, rep.Lines[0])
	require.Len(t, rep.Patterns, 2)
	assert.Len(t, rep.Patterns[1].Terms, 3)

	require.Len(t, rep.DominantPatterns, 3)
	for _, p := range rep.DominantPatterns {
		assert.Contains(t, []int{1, 2}, p)
	}
}

func TestAnalyze_Reproducible(t *testing.T) {
	a := newAnalyzer(staticLister{interactions: sample})
	first, err := a.Analyze(context.Background(), Request{NumTopics: 2})
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), Request{NumTopics: 2})
	require.NoError(t, err)
	assert.Equal(t, first.Patterns, second.Patterns)
}

func TestAnalyze_StorageErrorIsNotNotEnoughData(t *testing.T) {
	boom := errors.New("disk gone")
	_, err := newAnalyzer(staticLister{err: boom}).Analyze(context.Background(), Request{})
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsNotEnoughData(err))
}
