// Package metrics holds the registry's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dqa_mutations_total",
		Help: "Collection mutations by operation",
	}, []string{"op"})

	SyncOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dqa_sync_total",
		Help: "Outbound sync attempts by outcome",
	}, []string{"outcome"})

	PendingUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dqa_pending_updates_total",
		Help: "Pending updates produced by reconciliation, by kind",
	}, []string{"kind"})

	AppliedUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dqa_applied_updates_total",
		Help: "Updates merged into the collection, by kind",
	}, []string{"kind"})

	VerifyResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dqa_verify_results_total",
		Help: "Verification results by status",
	}, []string{"status"})

	CollectionSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dqa_standards",
		Help: "Current number of standards in the collection",
	})

	VerifyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dqa_verify_run_duration_seconds",
		Help:    "Duration of full verification runs",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
