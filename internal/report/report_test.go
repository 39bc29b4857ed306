package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patternlog/backend/internal/topic"
)

func sampleTopics() []topic.Topic {
	vocab := []string{"animal", "cat", "go", "language"}
	return []topic.Topic{
		topic.NewTopic(0, vocab, []float64{0.1, 0.2, 3, 2}),
		topic.NewTopic(1, vocab, []float64{4, 1, 1, 0.5}),
	}
}

func TestFormatTopics(t *testing.T) {
	got := FormatTopics(sampleTopics(), 2)
	assert.Equal(t, []string{
		"Pattern 1: go, language",
		"Pattern 2: animal, cat",
	}, got)
}

func TestFormatTopicsDoesNotMutate(t *testing.T) {
	topics := sampleTopics()
	before := append([]float64(nil), topics[0].Weights...)
	FormatTopics(topics, 4)
	assert.Equal(t, before, topics[0].Weights)
}

func TestFormatTopicsEmpty(t *testing.T) {
	assert.Empty(t, FormatTopics(nil, 3))
}

func TestSummaries(t *testing.T) {
	got := Summaries(sampleTopics(), 1)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Pattern)
	assert.Equal(t, []string{"go"}, got[0].Terms)
	assert.Equal(t, []topic.TermWeight{{Term: "animal", Weight: 4}}, got[1].Weights)
}
