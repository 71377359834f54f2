package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "match_advisor"

var (
	Analyses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of AI-assisted analyses by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	Fallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Total number of fallback results generated instead of parsed AI output",
		},
		[]string{"kind", "reason"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Duration of external text generation calls in seconds",
		},
		[]string{"kind"},
	)

	Scores = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compatibility_score",
			Help:      "Distribution of deterministic compatibility scores",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"scorer"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route and status",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
		},
		[]string{"route"},
	)
)

// Outcome labels for Analyses.
const (
	OutcomeParsed      = "parsed"
	OutcomeFallback    = "fallback"
	OutcomeUnavailable = "unavailable"
)
