// Package metrics exposes the core's Prometheus instrumentation, in the
// same registration style as the teacher's pkg/scheduler/metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const subsystem = "marathon_core"

var (
	MatchAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "match_attempts_total",
			Help:      "Number of times the resource matcher was invoked, by factory branch (app, pod, reservation, reserve-create).",
		},
		[]string{"kind"},
	)
	MatchSuccesses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "match_successes_total",
			Help:      "Number of resource matcher invocations that produced a ResourceMatch.",
		},
		[]string{"kind"},
	)
	ReservationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "reservations_created_total",
			Help:      "Number of ReserveAndCreateVolumes operations emitted.",
		},
	)
	ReservationsGarbageCollected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "reservations_garbage_collected_total",
			Help:      "Number of Reserved tasks destroyed after their timeout elapsed.",
		},
	)
	InstanceOpLatency = prometheus.NewSummary(
		prometheus.SummaryOpts{
			Subsystem: subsystem,
			Name:      "build_instance_op_latency_microseconds",
			Help:      "Latency in microseconds of a single BuildInstanceOp call.",
		},
	)
)

var registerMetrics sync.Once

// Register registers every metric exactly once, safe to call from
// multiple goroutines/tests.
func Register() {
	registerMetrics.Do(func() {
		prometheus.MustRegister(MatchAttempts)
		prometheus.MustRegister(MatchSuccesses)
		prometheus.MustRegister(ReservationsCreated)
		prometheus.MustRegister(ReservationsGarbageCollected)
		prometheus.MustRegister(InstanceOpLatency)
	})
}
