// Package metrics provides Prometheus metrics for article-ingest.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "article_ingest"

// Ingest outcomes used as the "outcome" label.
const (
	OutcomeStaged          = "staged"
	OutcomeInvalid         = "invalid"
	OutcomeBadRequest      = "bad_request"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeForbidden       = "forbidden"
	OutcomeStorageError    = "storage_error"
)

var (
	// IngestRequestsTotal counts ingest requests by outcome.
	IngestRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of ingest requests by outcome",
		},
		[]string{"outcome"},
	)

	// StageDuration measures the staging commit.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of staging commits in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	// TermsPerArticle observes how many term candidates each article produced.
	TermsPerArticle = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "terms_per_article",
			Help:      "Distribution of staged term candidates per article",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)

	// AuthCacheTotal counts identity cache lookups.
	AuthCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_cache_total",
			Help:      "Identity cache lookups by result",
		},
		[]string{"result"},
	)

	// ReportForwardTotal counts remote log forwarding attempts.
	ReportForwardTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_forward_total",
			Help:      "Remote log forwarding attempts by status",
		},
		[]string{"status"},
	)

	// EventPublishTotal counts staged-event publications.
	EventPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_total",
			Help:      "Staged event publications by status",
		},
		[]string{"status"},
	)
)

// RecordIngest records the outcome of one ingest request.
func RecordIngest(outcome string) {
	IngestRequestsTotal.WithLabelValues(outcome).Inc()
}

// RecordStage records a staging commit.
func RecordStage(status string, duration float64, terms int) {
	StageDuration.WithLabelValues(status).Observe(duration)
	if status == "success" {
		TermsPerArticle.Observe(float64(terms))
	}
}

// RecordAuthCache records a cache hit or miss.
func RecordAuthCache(hit bool) {
	if hit {
		AuthCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	AuthCacheTotal.WithLabelValues("miss").Inc()
}

// RecordReportForward records a forwarding attempt.
func RecordReportForward(status string) {
	ReportForwardTotal.WithLabelValues(status).Inc()
}

// RecordEventPublish records a staged-event publication.
func RecordEventPublish(status string) {
	EventPublishTotal.WithLabelValues(status).Inc()
}
