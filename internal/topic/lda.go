// Package topic fits Latent Dirichlet Allocation over a corpus with batch
// variational Bayes and exposes each topic's term weights.
package topic

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/patternlog/backend/internal/corpus"
)

var (
	// ErrInsufficientData is returned when the corpus has no terms or fewer
	// documents than requested topics.
	ErrInsufficientData  = errors.New("insufficient data for topic discovery")
	ErrInvalidTopicCount = errors.New("number of topics must be positive")
)

// Variational parameters start from Gamma(100, 1/100) draws.
const gammaShape = 100.0

var machineEpsilon = math.Nextafter(1, 2) - 1

type Config struct {
	MaxIter          int
	MaxDocUpdateIter int
	MeanChangeTol    float64
	// DocTopicPrior and TopicWordPrior default to 1/numTopics when zero.
	DocTopicPrior  float64
	TopicWordPrior float64
}

func DefaultConfig() Config {
	return Config{
		MaxIter:          10,
		MaxDocUpdateIter: 100,
		MeanChangeTol:    1e-3,
	}
}

// Engine holds only configuration; every fit works on its own state.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = def.MaxIter
	}
	if cfg.MaxDocUpdateIter <= 0 {
		cfg.MaxDocUpdateIter = def.MaxDocUpdateIter
	}
	if cfg.MeanChangeTol <= 0 {
		cfg.MeanChangeTol = def.MeanChangeTol
	}
	return &Engine{cfg: cfg}
}

// Fit is the outcome of one model fit.
type Fit struct {
	Topics []Topic
	// DocumentTopics holds each document's normalized topic mixture, rows
	// aligned with the corpus matrix.
	DocumentTopics [][]float64
}

// DominantTopic returns the most probable topic of document doc.
func (f *Fit) DominantTopic(doc int) int {
	row := f.DocumentTopics[doc]
	return floats.MaxIdx(row)
}

// Discover fits numTopics topics and returns them in model index order.
func (e *Engine) Discover(c *corpus.Corpus, numTopics int, seed int64) ([]Topic, error) {
	fit, err := e.Fit(c, numTopics, seed)
	if err != nil {
		return nil, err
	}
	return fit.Topics, nil
}

type document struct {
	ids  []int
	cnts []float64
}

// Fit runs batch variational Bayes. The seed drives every random draw, so
// identical arguments give identical weights.
func (e *Engine) Fit(c *corpus.Corpus, numTopics int, seed int64) (*Fit, error) {
	if numTopics <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopicCount, numTopics)
	}
	if c == nil || c.VocabularySize() == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary", ErrInsufficientData)
	}
	if c.NumDocuments() < numTopics {
		return nil, fmt.Errorf("%w: %d documents for %d topics", ErrInsufficientData, c.NumDocuments(), numTopics)
	}

	alpha := e.cfg.DocTopicPrior
	if alpha <= 0 {
		alpha = 1 / float64(numTopics)
	}
	eta := e.cfg.TopicWordPrior
	if eta <= 0 {
		eta = 1 / float64(numTopics)
	}

	numTerms := c.VocabularySize()
	docs := sparseRows(c.Counts())

	draw := distuv.Gamma{Alpha: gammaShape, Beta: gammaShape, Src: rand.NewSource(uint64(seed))}

	lambda := newMatrix(numTopics, numTerms)
	for k := range lambda {
		for w := range lambda[k] {
			lambda[k][w] = draw.Rand()
		}
	}
	expElogBeta := newMatrix(numTopics, numTerms)
	for k := range lambda {
		expDirichletExpectation(lambda[k], expElogBeta[k])
	}

	docTopic := newMatrix(len(docs), numTopics)
	sstats := newMatrix(numTopics, numTerms)
	for iter := 0; iter < e.cfg.MaxIter; iter++ {
		for k := range sstats {
			for w := range sstats[k] {
				sstats[k][w] = 0
			}
		}

		for d, doc := range docs {
			e.inferDocument(doc, docTopic[d], expElogBeta, alpha, &draw, sstats)
		}

		for k := range lambda {
			for w := range lambda[k] {
				lambda[k][w] = eta + sstats[k][w]*expElogBeta[k][w]
			}
			expDirichletExpectation(lambda[k], expElogBeta[k])
		}
	}

	vocabulary := c.Vocabulary()
	topics := make([]Topic, numTopics)
	for k := range lambda {
		topics[k] = Topic{Index: k, Weights: lambda[k], vocabulary: vocabulary}
	}

	for _, row := range docTopic {
		floats.Scale(1/floats.Sum(row), row)
	}

	return &Fit{Topics: topics, DocumentTopics: docTopic}, nil
}

// inferDocument runs coordinate ascent on one document's topic parameter
// theta and adds its contribution to sstats.
func (e *Engine) inferDocument(doc document, theta []float64, expElogBeta [][]float64, alpha float64, draw *distuv.Gamma, sstats [][]float64) {
	numTopics := len(theta)
	for k := range theta {
		theta[k] = draw.Rand()
	}
	expElogTheta := make([]float64, numTopics)
	expDirichletExpectation(theta, expElogTheta)

	last := make([]float64, numTopics)
	normPhi := make([]float64, len(doc.ids))
	for it := 0; it < e.cfg.MaxDocUpdateIter; it++ {
		copy(last, theta)
		computeNormPhi(doc, expElogTheta, expElogBeta, normPhi)

		for k := range theta {
			var s float64
			for j, w := range doc.ids {
				s += doc.cnts[j] / normPhi[j] * expElogBeta[k][w]
			}
			theta[k] = expElogTheta[k]*s + alpha
		}
		expDirichletExpectation(theta, expElogTheta)

		if meanAbsChange(last, theta) < e.cfg.MeanChangeTol {
			break
		}
	}

	computeNormPhi(doc, expElogTheta, expElogBeta, normPhi)
	for k := range sstats {
		for j, w := range doc.ids {
			sstats[k][w] += expElogTheta[k] * doc.cnts[j] / normPhi[j]
		}
	}
}

func computeNormPhi(doc document, expElogTheta []float64, expElogBeta [][]float64, out []float64) {
	for j, w := range doc.ids {
		var s float64
		for k, t := range expElogTheta {
			s += t * expElogBeta[k][w]
		}
		out[j] = s + machineEpsilon
	}
}

// expDirichletExpectation writes exp(E[log x]) for x ~ Dirichlet(alpha).
func expDirichletExpectation(alpha, out []float64) {
	psiSum := mathext.Digamma(floats.Sum(alpha))
	for i, a := range alpha {
		out[i] = math.Exp(mathext.Digamma(a) - psiSum)
	}
}

func meanAbsChange(a, b []float64) float64 {
	return floats.Distance(a, b, 1) / float64(len(a))
}

func sparseRows(counts [][]int) []document {
	docs := make([]document, len(counts))
	for d, row := range counts {
		for w, n := range row {
			if n > 0 {
				docs[d].ids = append(docs[d].ids, w)
				docs[d].cnts = append(docs[d].cnts, float64(n))
			}
		}
	}
	return docs
}

func newMatrix(rows, cols int) [][]float64 {
	backing := make([]float64, rows*cols)
	m := make([][]float64, rows)
	for i := range m {
		m[i] = backing[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return m
}
