// Package metrics provides Prometheus metrics for the DirectLine bridge.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels for metrics.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

const namespace = "directline_bridge"

var (
	// Registry holds every bridge collector plus the Go runtime collectors.
	Registry = prometheus.NewRegistry()

	// TokenRefreshTotal counts token acquisition attempts per source.
	TokenRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "refresh_total",
			Help:      "Total number of token acquisition attempts",
		},
		[]string{"source", "result"},
	)

	// TokenExpiryTimestamp records the expiry of the latest published token.
	TokenExpiryTimestamp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "expiry_timestamp_seconds",
			Help:      "Unix time at which the latest published token expires",
		},
		[]string{"source"},
	)

	// RelayRequestsTotal counts calls made to the conversation relay.
	RelayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "requests_total",
			Help:      "Total number of conversation relay calls",
		},
		[]string{"channel", "operation", "result"},
	)

	// SessionsGauge tracks the number of stored conversation sessions.
	SessionsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Number of conversation sessions held in memory",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		TokenRefreshTotal,
		TokenExpiryTimestamp,
		RelayRequestsTotal,
		SessionsGauge,
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Result maps an error to a result label.
func Result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
