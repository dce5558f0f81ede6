package dial

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	opmetrics "github.com/mantlenetworkio/op-create2/op-service/metrics"
)

// InstrumentedClient wraps an ethclient.Client and records every request
// the transaction manager and the deployer make through it.
type InstrumentedClient struct {
	*ethclient.Client
	m opmetrics.RPCClientMetricer
}

func NewInstrumentedClient(c *ethclient.Client, m opmetrics.RPCClientMetricer) *InstrumentedClient {
	if m == nil {
		m = opmetrics.NoopRPCClientMetrics{}
	}
	return &InstrumentedClient{Client: c, m: m}
}

func record[T any](m opmetrics.RPCClientMetricer, method string, fn func() (T, error)) (T, error) {
	done := m.RecordRPCClientRequest(method)
	v, err := fn()
	done(err)
	return v, err
}

func (c *InstrumentedClient) ChainID(ctx context.Context) (*big.Int, error) {
	return record(c.m, "eth_chainId", func() (*big.Int, error) {
		return c.Client.ChainID(ctx)
	})
}

func (c *InstrumentedClient) BlockNumber(ctx context.Context) (uint64, error) {
	return record(c.m, "eth_blockNumber", func() (uint64, error) {
		return c.Client.BlockNumber(ctx)
	})
}

func (c *InstrumentedClient) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return record(c.m, "eth_getBlockByNumber", func() (*types.Header, error) {
		return c.Client.HeaderByNumber(ctx, number)
	})
}

func (c *InstrumentedClient) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return record(c.m, "eth_maxPriorityFeePerGas", func() (*big.Int, error) {
		return c.Client.SuggestGasTipCap(ctx)
	})
}

func (c *InstrumentedClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return record(c.m, "eth_getTransactionCount", func() (uint64, error) {
		return c.Client.PendingNonceAt(ctx, account)
	})
}

func (c *InstrumentedClient) NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error) {
	return record(c.m, "eth_getTransactionCount", func() (uint64, error) {
		return c.Client.NonceAt(ctx, account, blockNumber)
	})
}

func (c *InstrumentedClient) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	return record(c.m, "eth_getBalance", func() (*big.Int, error) {
		return c.Client.BalanceAt(ctx, account, blockNumber)
	})
}

func (c *InstrumentedClient) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	return record(c.m, "eth_getCode", func() ([]byte, error) {
		return c.Client.CodeAt(ctx, account, blockNumber)
	})
}

func (c *InstrumentedClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return record(c.m, "eth_call", func() ([]byte, error) {
		return c.Client.CallContract(ctx, msg, blockNumber)
	})
}

func (c *InstrumentedClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return record(c.m, "eth_estimateGas", func() (uint64, error) {
		return c.Client.EstimateGas(ctx, msg)
	})
}

func (c *InstrumentedClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	_, err := record(c.m, "eth_sendRawTransaction", func() (struct{}, error) {
		return struct{}{}, c.Client.SendTransaction(ctx, tx)
	})
	return err
}

func (c *InstrumentedClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return record(c.m, "eth_getTransactionReceipt", func() (*types.Receipt, error) {
		return c.Client.TransactionReceipt(ctx, txHash)
	})
}
