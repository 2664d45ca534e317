// Package metrics defines the Prometheus collectors for the match engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AdmissionTransitions counts admission state changes by outcome:
	// requested, approved, waitlisted, declined, canceled, promoted.
	AdmissionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matchday",
		Name:      "admission_transitions_total",
		Help:      "Admission state transitions by outcome.",
	}, []string{"outcome"})

	// TeamGenerations counts team generation attempts by result.
	TeamGenerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matchday",
		Name:      "team_generations_total",
		Help:      "Team generation attempts by result.",
	}, []string{"result"})

	// PaymentReconciliations counts settlement recomputations.
	PaymentReconciliations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "matchday",
		Name:      "payment_reconciliations_total",
		Help:      "Payment ledger reconciliations.",
	})

	// HTTPDuration observes request latency by route and status.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "matchday",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "status"})
)
