package metrics

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	InteractionsAppended = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patternlog_interactions_appended_total",
			Help: "Append attempts on the interaction log",
		},
		[]string{"status"},
	)

	InteractionsStored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "patternlog_interactions_stored",
			Help: "Interactions present in the store at the last count",
		},
	)

	GenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "patternlog_answer_generation_duration_seconds",
			Help:    "Answer generation latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	GenerationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patternlog_answer_generation_total",
			Help: "Answer generation attempts",
		},
		[]string{"status"},
	)

	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "patternlog_analysis_duration_seconds",
			Help:    "Topic discovery run duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	AnalysisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patternlog_analysis_total",
			Help: "Topic discovery runs",
		},
		[]string{"status", "trigger"},
	)

	CorpusVocabularySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "patternlog_corpus_vocabulary_size",
			Help: "Vocabulary size of the last built corpus",
		},
	)

	CorpusDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "patternlog_corpus_documents",
			Help: "Documents in the last built corpus",
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patternlog_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patternlog_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(InteractionsAppended)
		prometheus.MustRegister(InteractionsStored)
		prometheus.MustRegister(GenerationDuration)
		prometheus.MustRegister(GenerationTotal)
		prometheus.MustRegister(AnalysisDuration)
		prometheus.MustRegister(AnalysisTotal)
		prometheus.MustRegister(CorpusVocabularySize)
		prometheus.MustRegister(CorpusDocuments)
		prometheus.MustRegister(CacheHits)
		prometheus.MustRegister(CacheMisses)
	})
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
