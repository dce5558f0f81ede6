package txmgr

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/op-create2/op-service/txmgr/metrics"
)

// TxManager sends transactions and waits for them to be confirmed.
type TxManager interface {
	// Send signs and publishes the candidate, then blocks until its receipt
	// has the configured number of confirmations. A reverted transaction is
	// not an error: the receipt is returned with a failed status.
	Send(ctx context.Context, candidate TxCandidate) (*types.Receipt, error)

	// From returns the sending address of the transactions.
	From() common.Address

	ChainID() *big.Int

	Close()
}

// ETHBackend is the set of methods the transaction manager uses to interact
// with the chain. ethclient.Client and the simulated backend client satisfy it.
type ETHBackend interface {
	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// TxCandidate is a transaction that has not been signed or priced yet.
type TxCandidate struct {
	TxData []byte
	// To is nil for contract creations.
	To *common.Address
	// GasLimit is estimated when zero.
	GasLimit uint64
	Value    *big.Int
}

// SimpleTxManager is an implementation of TxManager that sends one
// EIP-1559 transaction per candidate, without fee bumping.
type SimpleTxManager struct {
	cfg     *Config
	name    string
	backend ETHBackend
	l       log.Logger
	metr    metrics.TxMetricer

	nonceLock sync.Mutex
	closed    bool
}

var _ TxManager = (*SimpleTxManager)(nil)

// NewSimpleTxManager dials the configured RPC and initializes a new SimpleTxManager.
func NewSimpleTxManager(name string, l log.Logger, m metrics.TxMetricer, cfg CLIConfig) (*SimpleTxManager, error) {
	conf, err := NewConfig(cfg, l)
	if err != nil {
		return nil, err
	}
	return NewSimpleTxManagerFromConfig(name, l, m, conf)
}

func NewSimpleTxManagerFromConfig(name string, l log.Logger, m metrics.TxMetricer, conf *Config) (*SimpleTxManager, error) {
	if err := conf.Check(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if m == nil {
		m = &metrics.NoopTxMetrics{}
	}
	return &SimpleTxManager{
		cfg:     conf,
		name:    name,
		backend: conf.Backend,
		l:       l.New("service", name),
		metr:    m,
	}, nil
}

func (m *SimpleTxManager) From() common.Address {
	return m.cfg.From
}

func (m *SimpleTxManager) ChainID() *big.Int {
	return new(big.Int).Set(m.cfg.ChainID)
}

// Backend returns the chain backend the manager sends through.
func (m *SimpleTxManager) Backend() ETHBackend {
	return m.backend
}

// Close closes the backend connection if the backend supports it.
func (m *SimpleTxManager) Close() {
	m.nonceLock.Lock()
	defer m.nonceLock.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	if c, ok := m.backend.(interface{ Close() }); ok {
		c.Close()
	}
}

func (m *SimpleTxManager) Send(ctx context.Context, candidate TxCandidate) (*types.Receipt, error) {
	if m.cfg.TxSendTimeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.TxSendTimeout)
		defer cancel()
	}

	tx, err := m.signAndPublish(ctx, candidate)
	if err != nil {
		return nil, err
	}
	return m.waitForConfirmation(ctx, tx)
}

// signAndPublish holds the nonce lock from nonce lookup until the tx is in
// the mempool, so concurrent sends get consecutive nonces.
func (m *SimpleTxManager) signAndPublish(ctx context.Context, candidate TxCandidate) (*types.Transaction, error) {
	m.nonceLock.Lock()
	defer m.nonceLock.Unlock()
	if m.closed {
		return nil, errors.New("transaction manager is closed")
	}

	tx, err := m.craftTx(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to create the tx: %w", err)
	}

	l := m.l.New("tx", tx.Hash(), "nonce", tx.Nonce())
	cCtx, cancel := context.WithTimeout(ctx, m.cfg.NetworkTimeout)
	defer cancel()
	if err := m.backend.SendTransaction(cCtx, tx); err != nil {
		l.Warn("Failed to publish transaction", "err", err)
		m.metr.TxPublished("send_error")
		m.metr.RPCError()
		return nil, fmt.Errorf("failed to publish tx %s: %w", tx.Hash(), err)
	}
	m.metr.TxPublished("")
	l.Info("Transaction successfully published", "gasTipCap", tx.GasTipCap(), "gasFeeCap", tx.GasFeeCap(), "gasLimit", tx.Gas())
	return tx, nil
}

// craftTx creates the signed transaction. It queries the chain for the current
// fee market conditions as well as for the nonce.
func (m *SimpleTxManager) craftTx(ctx context.Context, candidate TxCandidate) (*types.Transaction, error) {
	cCtx, cancel := context.WithTimeout(ctx, m.cfg.NetworkTimeout)
	defer cancel()
	gasTipCap, baseFee, err := m.cfg.GasPriceEstimatorFn(cCtx, m.backend)
	if err != nil {
		m.metr.RPCError()
		return nil, fmt.Errorf("failed to get gas price info: %w", err)
	}
	m.metr.RecordBaseFee(baseFee)
	m.metr.RecordTipCap(gasTipCap)
	gasFeeCap := calcGasFeeCap(baseFee, gasTipCap)

	cCtx, cancel = context.WithTimeout(ctx, m.cfg.NetworkTimeout)
	defer cancel()
	nonce, err := m.backend.PendingNonceAt(cCtx, m.cfg.From)
	if err != nil {
		m.metr.RPCError()
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	m.metr.RecordNonce(nonce)

	value := candidate.Value
	if value == nil {
		value = new(big.Int)
	}

	gasLimit := candidate.GasLimit
	if gasLimit == 0 {
		cCtx, cancel = context.WithTimeout(ctx, m.cfg.NetworkTimeout)
		defer cancel()
		gas, err := m.backend.EstimateGas(cCtx, ethereum.CallMsg{
			From:      m.cfg.From,
			To:        candidate.To,
			GasTipCap: gasTipCap,
			GasFeeCap: gasFeeCap,
			Data:      candidate.TxData,
			Value:     value,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to estimate gas: %w", err)
		}
		gasLimit = gas
	}

	txMessage := &types.DynamicFeeTx{
		ChainID:   m.cfg.ChainID,
		Nonce:     nonce,
		GasTipCap: gasTipCap,
		GasFeeCap: gasFeeCap,
		Gas:       gasLimit,
		To:        candidate.To,
		Value:     value,
		Data:      candidate.TxData,
	}

	cCtx, cancel = context.WithTimeout(ctx, m.cfg.NetworkTimeout)
	defer cancel()
	return m.cfg.Signer(cCtx, m.cfg.From, types.NewTx(txMessage))
}

// waitForConfirmation polls for the receipt of tx until it has
// NumConfirmations confirmations or ctx is done.
func (m *SimpleTxManager) waitForConfirmation(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	txHash := tx.Hash()
	sendTime := time.Now()
	l := m.l.New("tx", txHash)

	ticker := time.NewTicker(m.cfg.ReceiptQueryInterval)
	defer ticker.Stop()
	for {
		if receipt := m.queryReceipt(ctx, txHash); receipt != nil {
			m.metr.RecordTxConfirmationLatency(time.Since(sendTime).Milliseconds())
			m.metr.TxConfirmed(receipt)
			l.Info("Transaction confirmed", "block", receipt.BlockNumber, "status", receipt.Status, "gasUsed", receipt.GasUsed)
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("aborted waiting for receipt of tx %s: %w", txHash, ctx.Err())
		case <-ticker.C:
		}
	}
}

// queryReceipt returns the receipt once it is deep enough, nil if it is not
// available or not confirmed yet.
func (m *SimpleTxManager) queryReceipt(ctx context.Context, txHash common.Hash) *types.Receipt {
	cCtx, cancel := context.WithTimeout(ctx, m.cfg.NetworkTimeout)
	defer cancel()
	receipt, err := m.backend.TransactionReceipt(cCtx, txHash)
	if errors.Is(err, ethereum.NotFound) {
		m.l.Trace("Transaction not yet mined", "tx", txHash)
		return nil
	} else if err != nil {
		m.metr.RPCError()
		m.l.Info("Receipt retrieval failed", "tx", txHash, "err", err)
		return nil
	} else if receipt == nil {
		m.metr.RPCError()
		m.l.Warn("Receipt and error are both nil", "tx", txHash)
		return nil
	}

	cCtx, cancel = context.WithTimeout(ctx, m.cfg.NetworkTimeout)
	defer cancel()
	tipHeight, err := m.backend.BlockNumber(cCtx)
	if err != nil {
		m.metr.RPCError()
		m.l.Error("Unable to fetch block number", "err", err)
		return nil
	}

	txHeight := receipt.BlockNumber.Uint64()
	m.l.Debug("Transaction mined, checking confirmations", "tx", txHash,
		"block", txHeight, "tip", tipHeight, "numConfirmations", m.cfg.NumConfirmations)
	if txHeight+m.cfg.NumConfirmations <= tipHeight+1 {
		return receipt
	}
	return nil
}
