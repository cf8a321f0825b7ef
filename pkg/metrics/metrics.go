package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RetrievalTotal counts retrievals by the strategy that produced the result
	RetrievalTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biomeai_retrieval_total",
		Help: "Chunk retrievals by mode (vector, positional, empty)",
	}, []string{"mode"})

	// StageTransitions counts committed stage changes, including open_qa self loops
	StageTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biomeai_stage_transitions_total",
		Help: "Committed stage transitions",
	}, []string{"from", "to"})

	// TokensTotal tracks model tokens by direction
	TokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biomeai_tokens_total",
		Help: "Model tokens consumed by direction (input, output, embedding)",
	}, []string{"direction"})

	CostUSDTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "biomeai_cost_usd_total",
		Help: "Accumulated model cost in USD",
	})

	// IngestionsTotal counts ingestion attempts by result
	IngestionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biomeai_ingestions_total",
		Help: "Report ingestions by result",
	}, []string{"result"})

	IngestionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "biomeai_ingestion_duration_seconds",
		Help:    "Report ingestion duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 250ms to ~2min
	})

	// GenerationErrors counts failed model calls by conversation action
	GenerationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biomeai_generation_errors_total",
		Help: "Failed generation calls by action",
	}, []string{"action"})
)

// RecordUsage adds one exchange worth of tokens and cost.
func RecordUsage(inputTokens, outputTokens int, costUsd float64) {
	TokensTotal.WithLabelValues("input").Add(float64(inputTokens))
	TokensTotal.WithLabelValues("output").Add(float64(outputTokens))
	CostUSDTotal.Add(costUsd)
}
