package resttimer

import "github.com/prometheus/client_golang/prometheus"

var expiryCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "spotter",
	Subsystem: "rest_timer",
	Name:      "expiries_total",
	Help:      "Rest countdowns that reached zero, by whether the engine saw it live or on recovery.",
}, []string{"source"})

func init() {
	prometheus.MustRegister(expiryCounter)
}

func recordExpiry(live bool) {
	source := "recovered"
	if live {
		source = "live"
	}
	expiryCounter.WithLabelValues(source).Inc()
}
