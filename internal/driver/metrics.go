package driver

import (
	"github.com/prometheus/client_golang/prometheus"

	"eventdriver/pkg/types"
)

const (
	outcomeOK             = "ok"
	outcomeError          = "error"
	outcomePanic          = "panic"
	outcomeNotImplemented = "not_implemented"
)

var (
	dispatchEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eventdriver",
			Subsystem: "dispatch",
			Name:      "events_total",
			Help:      "Total number of events dispatched",
		},
		[]string{"kind"},
	)

	dispatchDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eventdriver",
			Subsystem: "dispatch",
			Name:      "deliveries_total",
			Help:      "Per-client handler invocations by outcome",
		},
		[]string{"kind", "outcome"},
	)

	dispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "eventdriver",
			Subsystem: "dispatch",
			Name:      "duration_seconds",
			Help:      "Duration of a full fan-out in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(dispatchEvents, dispatchDeliveries, dispatchDuration)
}

func observeDelivery(kind types.Kind, outcome string) {
	dispatchDeliveries.WithLabelValues(string(kind), outcome).Inc()
}

// outcomeFor buckets a handler error for the deliveries counter.
func outcomeFor(err error) string {
	switch {
	case IsPanic(err):
		return outcomePanic
	case IsNotImplemented(err):
		return outcomeNotImplemented
	default:
		return outcomeError
	}
}
