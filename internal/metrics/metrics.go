// Package metrics registers the reconcile-duration and requeue-count
// series the manager's metrics endpoint exposes, following the
// controller-runtime convention of registering custom collectors
// against its own global Registry rather than the default process
// registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	ReconcileDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "pgdataplane_reconcile_duration_seconds",
		Help: "Duration of Database reconcile calls by outcome.",
	}, []string{"outcome"})

	RequeueTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pgdataplane_requeue_total",
		Help: "Count of requeue actions returned by the Database reconciler, by kind.",
	}, []string{"kind"})
)

func init() {
	metrics.Registry.MustRegister(ReconcileDuration, RequeueTotal)
}
