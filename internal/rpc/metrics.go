package rpc

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rpcCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gaia_rpc_calls_total",
			Help: "Total number of JSON-RPC calls by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	rpcCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gaia_rpc_call_duration_seconds",
			Help:    "JSON-RPC method duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func observeCall(method, outcome string, d time.Duration) {
	rpcCallsTotal.WithLabelValues(method, outcome).Inc()
	rpcCallDuration.WithLabelValues(method).Observe(d.Seconds())
}

// outcome is the error kind in lower case, e.g. "not_found".
func outcome(e *Error) string {
	if e == nil || e.Data == nil {
		return "internal_server_error"
	}
	return strings.ToLower(e.Data.Code)
}
