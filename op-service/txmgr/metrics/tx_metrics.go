package metrics

import (
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mantlenetworkio/op-create2/op-service/metrics"
)

type TxMetricer interface {
	RecordNonce(nonce uint64)
	RecordGasUsed(gasUsed uint64)
	RecordTxConfirmationLatency(latency int64)
	TxConfirmed(receipt *types.Receipt)
	TxPublished(errString string)
	RecordBaseFee(baseFee *big.Int)
	RecordTipCap(tipCap *big.Int)
	RPCError()
}

type TxMetrics struct {
	currentNonce   prometheus.Gauge
	txGasUsed      prometheus.Gauge
	txConfirmedTxs *prometheus.CounterVec
	confirmLatency prometheus.Histogram
	publishEvent   *prometheus.CounterVec
	baseFee        prometheus.Gauge
	tipCap         prometheus.Gauge
	rpcError       prometheus.Counter
}

var _ TxMetricer = (*TxMetrics)(nil)

func receiptStatusString(receipt *types.Receipt) string {
	switch receipt.Status {
	case types.ReceiptStatusSuccessful:
		return "success"
	case types.ReceiptStatusFailed:
		return "failed"
	default:
		return "unknown_status"
	}
}

const TxMetricsSubsystem = "txmgr"

func MakeTxMetrics(ns string, factory metrics.Factory) TxMetrics {
	return TxMetrics{
		currentNonce: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "current_nonce",
			Help:      "Current nonce of the from address",
			Subsystem: TxMetricsSubsystem,
		}),
		txGasUsed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "tx_gas_used",
			Help:      "Gas used by the most recently confirmed transaction",
			Subsystem: TxMetricsSubsystem,
		}),
		txConfirmedTxs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "confirmed_txs_total",
			Help:      "Count of confirmed transactions, labelled by receipt status",
			Subsystem: TxMetricsSubsystem,
		}, []string{"status"}),
		confirmLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "tx_confirmed_latency_ms",
			Help:      "Latency of a confirmed transaction in milliseconds",
			Subsystem: TxMetricsSubsystem,
			Buckets:   append([]float64{10, 100, 500, 1000}, prometheus.ExponentialBuckets(2000, 2, 8)...),
		}),
		publishEvent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "publish_total",
			Help:      "Count of transaction publish attempts, labelled by error",
			Subsystem: TxMetricsSubsystem,
		}, []string{"error"}),
		baseFee: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "basefee_wei",
			Help:      "Latest base fee (in Wei)",
			Subsystem: TxMetricsSubsystem,
		}),
		tipCap: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "tipcap_wei",
			Help:      "Latest tip cap (in Wei)",
			Subsystem: TxMetricsSubsystem,
		}),
		rpcError: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "rpc_error_count",
			Help:      "Temporary: Count of RPC errors (like timeouts) that have occurred",
			Subsystem: TxMetricsSubsystem,
		}),
	}
}

func (t *TxMetrics) RecordNonce(nonce uint64) {
	t.currentNonce.Set(float64(nonce))
}

func (t *TxMetrics) RecordGasUsed(gasUsed uint64) {
	t.txGasUsed.Set(float64(gasUsed))
}

func (t *TxMetrics) RecordTxConfirmationLatency(latency int64) {
	t.confirmLatency.Observe(float64(latency))
}

// TxConfirmed records the receipt of a confirmed transaction.
func (t *TxMetrics) TxConfirmed(receipt *types.Receipt) {
	t.txConfirmedTxs.WithLabelValues(receiptStatusString(receipt)).Inc()
	t.RecordGasUsed(receipt.GasUsed)
}

func (t *TxMetrics) TxPublished(errString string) {
	if errString == "" {
		errString = "<nil>"
	}
	t.publishEvent.WithLabelValues(errString).Inc()
}

func (t *TxMetrics) RecordBaseFee(baseFee *big.Int) {
	bff, _ := baseFee.Float64()
	t.baseFee.Set(bff)
}

func (t *TxMetrics) RecordTipCap(tipCap *big.Int) {
	tcf, _ := tipCap.Float64()
	t.tipCap.Set(tcf)
}

func (t *TxMetrics) RPCError() {
	t.rpcError.Inc()
}
