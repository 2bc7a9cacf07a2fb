// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordvec_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wordvec_query_duration_seconds",
			Help:    "Duration of vocabulary queries",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"operation"},
	)

	VocabularySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "wordvec_vocabulary_size",
			Help: "Number of tokens in the loaded vocabulary",
		},
	)

	UnknownTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordvec_unknown_tokens_total",
			Help: "Tokens requested that are not in the vocabulary",
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal, QueryDuration, VocabularySize, UnknownTokensTotal)
}

// ObserveQuery records the time elapsed since start for operation.
func ObserveQuery(operation string, start time.Time) {
	QueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
