package syncer

import "github.com/prometheus/client_golang/prometheus"

var (
	drainCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spotter",
		Subsystem: "sync",
		Name:      "drain_passes_total",
		Help:      "Drain passes grouped by outcome (completed, cancelled, skipped).",
	}, []string{"outcome"})

	replayCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spotter",
		Subsystem: "sync",
		Name:      "replayed_mutations_total",
		Help:      "Queued mutations replayed against the remote service, by type and result.",
	}, []string{"type", "result"})

	queueDepthGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "spotter",
		Subsystem: "sync",
		Name:      "queue_depth",
		Help:      "Mutations still waiting for remote confirmation after the last pass.",
	})
)

func init() {
	prometheus.MustRegister(drainCounter, replayCounter, queueDepthGauge)
}

func recordReplay(t string, ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	replayCounter.WithLabelValues(t, result).Inc()
}
