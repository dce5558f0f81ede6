package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const RPCClientSubsystem = "rpc_client"

type RPCClientMetricer interface {
	RecordRPCClientRequest(method string) func(err error)
}

// RPCClientMetrics tracks the requests a command makes to its RPC endpoint.
// It is meant to be embedded into the metrics struct of a service.
type RPCClientMetrics struct {
	clientRequestsTotal          *prometheus.CounterVec
	clientRequestDurationSeconds *prometheus.HistogramVec
	clientResponsesTotal         *prometheus.CounterVec
}

var _ RPCClientMetricer = (*RPCClientMetrics)(nil)

// MakeRPCClientMetrics creates the client metrics under the fully qualified namespace ns.
func MakeRPCClientMetrics(ns string, factory Factory) RPCClientMetrics {
	return RPCClientMetrics{
		clientRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: RPCClientSubsystem,
			Name:      "requests_total",
			Help:      "Total RPC requests initiated",
		}, []string{
			"method",
		}),
		clientRequestDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: RPCClientSubsystem,
			Name:      "request_duration_seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			Help:      "Histogram of RPC client request durations",
		}, []string{
			"method",
		}),
		clientResponsesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: RPCClientSubsystem,
			Name:      "responses_total",
			Help:      "Total RPC request responses received",
		}, []string{
			"method",
			"error",
		}),
	}
}

// RecordRPCClientRequest counts a request to method and returns a callback
// that records its duration and outcome.
func (m *RPCClientMetrics) RecordRPCClientRequest(method string) func(err error) {
	m.clientRequestsTotal.WithLabelValues(method).Inc()
	timer := prometheus.NewTimer(m.clientRequestDurationSeconds.WithLabelValues(method))
	return func(err error) {
		timer.ObserveDuration()
		errStr := "<nil>"
		if err != nil {
			errStr = "error"
		}
		m.clientResponsesTotal.WithLabelValues(method, errStr).Inc()
	}
}

type NoopRPCClientMetrics struct{}

func (NoopRPCClientMetrics) RecordRPCClientRequest(string) func(err error) {
	return func(err error) {}
}
