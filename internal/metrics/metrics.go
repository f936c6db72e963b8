// Package metrics defines the Prometheus instruments of the match service.
//
// All instruments register against the Registerer passed to New, so tests can
// use a private registry and the server can use the default one.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "muzz"

// Metrics groups the counters and histograms updated by the core.
type Metrics struct {
	// SwipesTotal counts recorded swipes. Labels: direction, super_like.
	SwipesTotal *prometheus.CounterVec

	// SwipeRejectionsTotal counts rejected swipes. Labels: kind.
	SwipeRejectionsTotal *prometheus.CounterVec

	// MatchesCreatedTotal counts newly created matches.
	MatchesCreatedTotal prometheus.Counter

	// MatchesDeletedTotal counts removed matches. Labels: reason (undo, unmatch, block).
	MatchesDeletedTotal *prometheus.CounterVec

	// DiscoveryRequestsTotal counts discovery requests. Labels: mode (all, guardians).
	DiscoveryRequestsTotal *prometheus.CounterVec

	// DiscoveryCandidates observes the candidate count after filtering.
	DiscoveryCandidates prometheus.Histogram

	// EventPublishFailuresTotal counts match events that could not be queued.
	EventPublishFailuresTotal *prometheus.CounterVec

	// GuardianMessagesTotal counts guardian-involved message decisions.
	// Labels: outcome (allowed, denied).
	GuardianMessagesTotal *prometheus.CounterVec
}

// New creates and registers all instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SwipesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swipe",
			Name:      "recorded_total",
			Help:      "Swipes recorded, by direction and super-like flag.",
		}, []string{"direction", "super_like"}),
		SwipeRejectionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swipe",
			Name:      "rejected_total",
			Help:      "Swipes rejected, by error kind.",
		}, []string{"kind"}),
		MatchesCreatedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "match",
			Name:      "created_total",
			Help:      "Matches created by reciprocal right swipes.",
		}),
		MatchesDeletedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "match",
			Name:      "deleted_total",
			Help:      "Matches deleted, by reason.",
		}, []string{"reason"}),
		DiscoveryRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "requests_total",
			Help:      "Discovery requests, by mode.",
		}, []string{"mode"}),
		DiscoveryCandidates: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "candidates",
			Help:      "Candidates left after filtering, per request.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		}),
		EventPublishFailuresTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "publish_failures_total",
			Help:      "Match events that failed to publish, by event type.",
		}, []string{"type"}),
		GuardianMessagesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "guardian",
			Name:      "messages_total",
			Help:      "Guardian-involved message authorizations, by outcome.",
		}, []string{"outcome"}),
	}
}

// NewNop returns instruments bound to a throwaway registry.
func NewNop() *Metrics { return New(prometheus.NewRegistry()) }
