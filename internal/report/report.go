// Package report renders discovered topics for people.
package report

import (
	"fmt"
	"strings"

	"github.com/patternlog/backend/internal/topic"
)

// FormatTopics returns one "Pattern N: t1, t2, ..." line per topic with the
// k heaviest terms, heaviest first.
func FormatTopics(topics []topic.Topic, k int) []string {
	lines := make([]string, len(topics))
	for i, t := range topics {
		lines[i] = fmt.Sprintf("Pattern %d: %s", i+1, strings.Join(t.TopTerms(k), ", "))
	}
	return lines
}

// Pattern is the serializable summary of one topic.
type Pattern struct {
	Pattern int                `json:"pattern"`
	Terms   []string           `json:"terms"`
	Weights []topic.TermWeight `json:"weights"`
}

func Summaries(topics []topic.Topic, k int) []Pattern {
	out := make([]Pattern, len(topics))
	for i, t := range topics {
		top := t.TopTermWeights(k)
		terms := make([]string, len(top))
		for j, tw := range top {
			terms[j] = tw.Term
		}
		out[i] = Pattern{Pattern: i + 1, Terms: terms, Weights: top}
	}
	return out
}
