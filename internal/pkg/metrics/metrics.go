package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DBQueryDuration measures database calls by query name and result (ok|error).
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accounts_db_query_duration_seconds",
			Help:    "Database query latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query", "result"},
	)

	// ObjectStoreDuration measures S3 calls by operation and result (ok|error).
	ObjectStoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accounts_object_store_duration_seconds",
			Help:    "Object storage operation latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "result"},
	)

	// Verifications counts confirmation attempts by outcome.
	Verifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_verifications_total",
			Help: "Email verification attempts by outcome",
		},
		[]string{"outcome"},
	)

	// MailSends counts verification emails by provider and result.
	MailSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_mail_sends_total",
			Help: "Verification emails handed to a provider",
		},
		[]string{"provider", "result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accounts_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Result maps an error to the result label.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveDB records a database call that started at start.
func ObserveDB(query string, start time.Time, err error) {
	DBQueryDuration.WithLabelValues(query, Result(err)).Observe(time.Since(start).Seconds())
}

// ObserveObjectStore records an S3 call that started at start.
func ObserveObjectStore(op string, start time.Time, err error) {
	ObjectStoreDuration.WithLabelValues(op, Result(err)).Observe(time.Since(start).Seconds())
}
