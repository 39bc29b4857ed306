// Package corpus turns stored interactions into a bag-of-words document-term
// matrix.
package corpus

import (
	"errors"
	"fmt"
	"sort"

	"github.com/patternlog/backend/internal/storage/models"
)

// ErrEmptyCorpus is returned when there are no interactions to build from.
var ErrEmptyCorpus = errors.New("no interactions to analyze")

// Corpus is a vocabulary plus the raw term counts of each document. Column j
// of every row counts vocabulary[j].
type Corpus struct {
	vocabulary []string
	index      map[string]int
	counts     [][]int
	docIDs     []int64
}

func (c *Corpus) Vocabulary() []string { return c.vocabulary }

// Counts returns the document-term matrix, one row per input interaction.
func (c *Corpus) Counts() [][]int { return c.counts }

func (c *Corpus) NumDocuments() int { return len(c.counts) }

func (c *Corpus) VocabularySize() int { return len(c.vocabulary) }

// DocumentIDs returns the interaction id behind each matrix row.
func (c *Corpus) DocumentIDs() []int64 { return c.docIDs }

// Index returns the column of term.
func (c *Corpus) Index(term string) (int, bool) {
	i, ok := c.index[term]
	return i, ok
}

// Count returns how often term occurs in document doc.
func (c *Corpus) Count(doc int, term string) int {
	j, ok := c.index[term]
	if !ok || doc < 0 || doc >= len(c.counts) {
		return 0
	}
	return c.counts[doc][j]
}

type Builder struct {
	tokenizer Tokenizer
}

func NewBuilder(tokenizer Tokenizer) *Builder {
	if tokenizer == nil {
		tokenizer = NewWordTokenizer()
	}
	return &Builder{tokenizer: tokenizer}
}

// Build tokenizes question and answer separately, so no term can span the
// boundary between them, and counts terms per interaction. The vocabulary
// is sorted, which makes the matrix identical for identical input.
func (b *Builder) Build(interactions []models.Interaction) (*Corpus, error) {
	if len(interactions) == 0 {
		return nil, ErrEmptyCorpus
	}

	docs := make([][]string, len(interactions))
	docIDs := make([]int64, len(interactions))
	seen := make(map[string]struct{})
	for i, in := range interactions {
		q, err := b.tokenizer.Tokenize(in.Question)
		if err != nil {
			return nil, fmt.Errorf("failed to tokenize question of interaction %d: %w", in.ID, err)
		}
		a, err := b.tokenizer.Tokenize(in.Answer)
		if err != nil {
			return nil, fmt.Errorf("failed to tokenize answer of interaction %d: %w", in.ID, err)
		}
		tokens := append(q, a...)
		for _, tok := range tokens {
			seen[tok] = struct{}{}
		}
		docs[i] = tokens
		docIDs[i] = in.ID
	}

	vocabulary := make([]string, 0, len(seen))
	for term := range seen {
		vocabulary = append(vocabulary, term)
	}
	sort.Strings(vocabulary)

	index := make(map[string]int, len(vocabulary))
	for i, term := range vocabulary {
		index[term] = i
	}

	counts := make([][]int, len(docs))
	for i, tokens := range docs {
		row := make([]int, len(vocabulary))
		for _, tok := range tokens {
			row[index[tok]]++
		}
		counts[i] = row
	}

	return &Corpus{
		vocabulary: vocabulary,
		index:      index,
		counts:     counts,
		docIDs:     docIDs,
	}, nil
}

// New assembles a corpus directly from a vocabulary and matching count
// rows. Every row must have one column per vocabulary term.
func New(vocabulary []string, counts [][]int) (*Corpus, error) {
	index := make(map[string]int, len(vocabulary))
	for i, term := range vocabulary {
		if _, dup := index[term]; dup {
			return nil, fmt.Errorf("duplicate vocabulary term %q", term)
		}
		index[term] = i
	}
	for i, row := range counts {
		if len(row) != len(vocabulary) {
			return nil, fmt.Errorf("row %d has %d columns, vocabulary has %d terms", i, len(row), len(vocabulary))
		}
		for j, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("negative count at row %d column %d", i, j)
			}
		}
	}
	return &Corpus{
		vocabulary: vocabulary,
		index:      index,
		counts:     counts,
		docIDs:     make([]int64, len(counts)),
	}, nil
}
