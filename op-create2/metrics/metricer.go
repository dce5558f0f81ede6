package metrics

import (
	"github.com/ethereum/go-ethereum/common"

	opmetrics "github.com/mantlenetworkio/op-create2/op-service/metrics"
	txmetrics "github.com/mantlenetworkio/op-create2/op-service/txmgr/metrics"
)

type Metricer interface {
	RecordInfo(version string)
	RecordUp()

	RecordDeployment(factory common.Address) (onDone func(err error))
	RecordPredictions(factory common.Address, n int)

	txmetrics.TxMetricer
	opmetrics.RPCClientMetricer
}
