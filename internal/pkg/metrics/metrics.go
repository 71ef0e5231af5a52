package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	essaysScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "essay_scoring_requests_total",
			Help: "Essay scoring requests by outcome (ok or fallback)",
		},
		[]string{"outcome"},
	)

	referencesRetrieved = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "essay_scoring_references_retrieved",
			Help:    "Reference essays retrieved per scoring request",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 10},
		},
	)

	ingestedDocuments = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "essay_ingestion_documents_total",
			Help: "Reference essays upserted into the vector store",
		},
	)

	skippedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "essay_ingestion_skipped_rows_total",
			Help: "CSV rows skipped during ingestion by reason",
		},
		[]string{"reason"},
	)

	storedDocuments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vector_store_documents",
			Help: "Documents currently held by the vector store",
		},
	)

	routingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_requests_total",
			Help: "Routing agent requests by variant and outcome",
		},
		[]string{"variant", "outcome"},
	)

	toolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_tool_calls_total",
			Help: "Tool calls issued by the routing model by tool and outcome",
		},
		[]string{"tool", "outcome"},
	)

	llmBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_breaker_transitions_total",
			Help: "Circuit breaker state transitions around the LLM provider",
		},
		[]string{"to"},
	)
)

func RecordScoring(outcome string, references int) {
	essaysScored.WithLabelValues(outcome).Inc()
	referencesRetrieved.Observe(float64(references))
}

func RecordIngested(n int) {
	ingestedDocuments.Add(float64(n))
}

func RecordSkippedRow(reason string) {
	skippedRows.WithLabelValues(reason).Inc()
}

func SetStoredDocuments(n int) {
	storedDocuments.Set(float64(n))
}

func RecordRouting(variant, outcome string) {
	routingRequests.WithLabelValues(variant, outcome).Inc()
}

func RecordToolCall(tool, outcome string) {
	toolCalls.WithLabelValues(tool, outcome).Inc()
}

func RecordBreakerTransition(to string) {
	llmBreakerTransitions.WithLabelValues(to).Inc()
}
