package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pdfsplit"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	DocumentOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "document_operations_total", Help: "Document service operations by operation and outcome."},
		[]string{"op", "outcome"},
	)
	FixtureLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "fixture_lookups_total", Help: "Fixture table lookups served over HTTP by result."},
		[]string{"result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(DocumentOps)
	reg.MustRegister(FixtureLookups)
}
