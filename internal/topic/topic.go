package topic

import "sort"

// Topic is one latent topic: a non-negative weight per vocabulary term.
// Weights are only comparable within the same topic.
type Topic struct {
	Index      int
	Weights    []float64
	vocabulary []string
}

// NewTopic binds weights to the vocabulary they were fitted against.
func NewTopic(index int, vocabulary []string, weights []float64) Topic {
	return Topic{Index: index, Weights: weights, vocabulary: vocabulary}
}

func (t Topic) Vocabulary() []string { return t.vocabulary }

type TermWeight struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// TopTermWeights returns the min(k, |vocabulary|) heaviest terms, heaviest
// first. Equal weights keep vocabulary order.
func (t Topic) TopTermWeights(k int) []TermWeight {
	if k <= 0 {
		return []TermWeight{}
	}
	n := len(t.vocabulary)
	if len(t.Weights) < n {
		n = len(t.Weights)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		wa, wb := t.Weights[order[a]], t.Weights[order[b]]
		if wa != wb {
			return wa > wb
		}
		return order[a] < order[b]
	})

	if k > n {
		k = n
	}
	out := make([]TermWeight, k)
	for i := 0; i < k; i++ {
		out[i] = TermWeight{Term: t.vocabulary[order[i]], Weight: t.Weights[order[i]]}
	}
	return out
}

// TopTerms returns the terms of TopTermWeights.
func (t Topic) TopTerms(k int) []string {
	top := t.TopTermWeights(k)
	terms := make([]string, len(top))
	for i, tw := range top {
		terms[i] = tw.Term
	}
	return terms
}

func TopTerms(t Topic, k int) []string {
	return t.TopTerms(k)
}
