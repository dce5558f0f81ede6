package testutils

import (
	"crypto/ecdsa"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"

	opcrypto "github.com/mantlenetworkio/op-create2/op-service/crypto"
	"github.com/mantlenetworkio/op-create2/op-service/txmgr"
	txmetrics "github.com/mantlenetworkio/op-create2/op-service/txmgr/metrics"
)

// FastTxParams polls quickly, for chains that mine on send.
var FastTxParams = txmgr.DefaultFlagValues{
	NumConfirmations:     1,
	NetworkTimeout:       5 * time.Second,
	TxSendTimeout:        30 * time.Second,
	ReceiptQueryInterval: 10 * time.Millisecond,
}

// NewSimulatedTxManager returns a tx manager sending from key through the
// simulated client. The manager is not closed, since that closes the chain.
func NewSimulatedTxManager(t *testing.T, l log.Logger, client *SimulatedEthClient, key *ecdsa.PrivateKey, m txmetrics.TxMetricer) *txmgr.SimpleTxManager {
	mgr, err := txmgr.NewSimpleTxManagerFromConfig("test", l, m, &txmgr.Config{
		Backend:              client,
		ChainID:              SimulatedChainID,
		NetworkTimeout:       FastTxParams.NetworkTimeout,
		TxSendTimeout:        FastTxParams.TxSendTimeout,
		ReceiptQueryInterval: FastTxParams.ReceiptQueryInterval,
		NumConfirmations:     FastTxParams.NumConfirmations,
		Signer:               opcrypto.PrivateKeySignerFn(key, SimulatedChainID),
		From:                 crypto.PubkeyToAddress(key.PublicKey),
		GasPriceEstimatorFn:  txmgr.DefaultGasPriceEstimatorFn,
	})
	require.NoError(t, err)
	return mgr
}
