package metrics

import (
	"github.com/ethereum/go-ethereum/common"

	opmetrics "github.com/mantlenetworkio/op-create2/op-service/metrics"
	txmetrics "github.com/mantlenetworkio/op-create2/op-service/txmgr/metrics"
)

type NoopMetrics struct {
	*txmetrics.NoopTxMetrics
	opmetrics.NoopRPCClientMetrics
}

var NoopMetricer Metricer = NoopMetrics{NoopTxMetrics: &txmetrics.NoopTxMetrics{}}

func (n NoopMetrics) RecordInfo(version string) {}

func (n NoopMetrics) RecordUp() {}

func (n NoopMetrics) RecordDeployment(common.Address) (onDone func(err error)) {
	return func(err error) {}
}

func (n NoopMetrics) RecordPredictions(common.Address, int) {}
