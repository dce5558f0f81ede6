package metrics

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mantlenetworkio/op-create2/op-create2/create2"
	opmetrics "github.com/mantlenetworkio/op-create2/op-service/metrics"
	txmetrics "github.com/mantlenetworkio/op-create2/op-service/txmgr/metrics"
)

const Namespace = "op_create2"

type Metrics struct {
	ns       string
	registry *prometheus.Registry
	factory  opmetrics.Factory

	txmetrics.TxMetrics
	opmetrics.RPCClientMetrics

	deployments        *prometheus.CounterVec
	deploymentDuration *prometheus.HistogramVec
	predictions        *prometheus.CounterVec

	info prometheus.GaugeVec
	up   prometheus.Gauge
}

var _ Metricer = (*Metrics)(nil)

func NewMetrics(procName string) *Metrics {
	return newMetrics(procName, opmetrics.NewRegistry())
}

func newMetrics(procName string, registry *prometheus.Registry) *Metrics {
	if procName == "" {
		procName = "default"
	}
	ns := Namespace + "_" + procName

	factory := opmetrics.With(registry)
	return &Metrics{
		ns:       ns,
		registry: registry,
		factory:  factory,

		info: *factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "info",
			Help:      "Pseudo-metric tracking version and config info",
		}, []string{
			"version",
		}),
		up: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "up",
			Help:      "1 if op-create2 has finished starting up",
		}),

		TxMetrics:        txmetrics.MakeTxMetrics(ns, factory),
		RPCClientMetrics: opmetrics.MakeRPCClientMetrics(ns, factory),

		deployments: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "deployments_total",
			Help:      "Count of deployment attempts by outcome",
		}, []string{"factory", "outcome"}),

		deploymentDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "deployment_duration_seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			Help:      "Duration from building the init code to the verified deployment",
		}, []string{"factory"}),

		predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "predictions_total",
			Help:      "Count of predicted addresses",
		}, []string{"factory"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Document() []opmetrics.DocumentedMetric {
	return m.factory.Document()
}

// RecordInfo sets a pseudo-metric that contains versioning and config info.
func (m *Metrics) RecordInfo(version string) {
	m.info.WithLabelValues(version).Set(1)
}

// RecordUp sets the up metric to 1.
func (m *Metrics) RecordUp() {
	m.up.Set(1)
}

func (m *Metrics) RecordDeployment(factory common.Address) (onDone func(err error)) {
	label := create2.Canonical(factory)
	timer := prometheus.NewTimer(m.deploymentDuration.WithLabelValues(label))
	return func(err error) {
		timer.ObserveDuration()
		m.deployments.WithLabelValues(label, create2.Outcome(err)).Inc()
	}
}

func (m *Metrics) RecordPredictions(factory common.Address, n int) {
	m.predictions.WithLabelValues(create2.Canonical(factory)).Add(float64(n))
}
