package nodefs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	operations   *prometheus.CounterVec
	errors       *prometheus.CounterVec
	pollWatchers prometheus.Gauge
	openStreams  prometheus.Gauge
}

// newMetrics registers the collectors on reg. A nil reg keeps them
// unregistered; they still count, which tests rely on.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nodefs",
			Name:      "operations_total",
			Help:      "Provider calls made by nodefs operations.",
		}, []string{"op"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nodefs",
			Name:      "operation_errors_total",
			Help:      "Failed provider calls, by error code.",
		}, []string{"op", "code"}),
		pollWatchers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "nodefs",
			Name:      "poll_watchers",
			Help:      "Paths with an active watchFile poll timer.",
		}),
		openStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "nodefs",
			Name:      "open_streams",
			Help:      "Read and write streams that have not closed yet.",
		}),
	}
}
