package corpus

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"
)

// Tokenizer splits text into lowercase terms.
type Tokenizer interface {
	Name() string
	Tokenize(text string) ([]string, error)
}

var termPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// WordTokenizer treats every maximal run of letters and digits as a term.
// Punctuation and whitespace only separate; there is no stemming and no
// stop-word list.
type WordTokenizer struct{}

func NewWordTokenizer() *WordTokenizer { return &WordTokenizer{} }

func (WordTokenizer) Name() string { return "word" }

func (WordTokenizer) Tokenize(text string) ([]string, error) {
	return termPattern.FindAllString(strings.ToLower(text), -1), nil
}

// ProseTokenizer segments with prose's treebank tokenizer first and then
// applies the same letter/digit run policy to each token, so contractions
// split the way prose splits them ("don't" -> "do", "n", "t").
type ProseTokenizer struct{}

func NewProseTokenizer() *ProseTokenizer { return &ProseTokenizer{} }

func (ProseTokenizer) Name() string { return "prose" }

func (ProseTokenizer) Tokenize(text string) ([]string, error) {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize with prose: %w", err)
	}

	var terms []string
	for _, tok := range doc.Tokens() {
		terms = append(terms, termPattern.FindAllString(strings.ToLower(tok.Text), -1)...)
	}
	return terms, nil
}

// NewTokenizer resolves a configured tokenizer name.
func NewTokenizer(name string) (Tokenizer, error) {
	switch name {
	case "word", "":
		return NewWordTokenizer(), nil
	case "prose":
		return NewProseTokenizer(), nil
	default:
		return nil, fmt.Errorf("unknown tokenizer: %s", name)
	}
}
