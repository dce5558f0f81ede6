package testutils

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"

	"github.com/mantlenetworkio/op-create2/op-service/eth"
)

// SimulatedChainID is the chain ID of the in-memory simulated backend.
var SimulatedChainID = big.NewInt(1337)

// SimulatedEthClient is an in-memory chain with one pre-funded account. By
// default every accepted transaction is mined into its own block right away.
type SimulatedEthClient struct {
	defaultAccountKey  *ecdsa.PrivateKey
	defaultAccountAddr common.Address
	backend            *simulated.Backend
	autoCommit         bool
	simulated.Client
}

type SimulatedEthClientConfig struct {
	GenesisAccountsBalances map[common.Address]*big.Int
	BlockGasLimit           uint64
	AutoCommit              bool
}

func defaultSimulatedEthClientConfig() *SimulatedEthClientConfig {
	return &SimulatedEthClientConfig{
		GenesisAccountsBalances: map[common.Address]*big.Int{},
		BlockGasLimit:           30_000_000,
		AutoCommit:              true,
	}
}

func WithAccountBalance(address common.Address, balance *big.Int) func(*SimulatedEthClientConfig) {
	return func(c *SimulatedEthClientConfig) {
		c.GenesisAccountsBalances[address] = balance
	}
}

func WithBlockGasLimit(limit uint64) func(*SimulatedEthClientConfig) {
	return func(c *SimulatedEthClientConfig) {
		c.BlockGasLimit = limit
	}
}

// WithManualCommit disables mining on send; blocks are produced by Commit only.
func WithManualCommit() func(*SimulatedEthClientConfig) {
	return func(c *SimulatedEthClientConfig) {
		c.AutoCommit = false
	}
}

func NewSimulatedEthClient(opts ...func(*SimulatedEthClientConfig)) *SimulatedEthClient {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	from := crypto.PubkeyToAddress(privateKey.PublicKey)

	cfg := defaultSimulatedEthClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	genesisAlloc := types.GenesisAlloc{
		from: {
			Balance: eth.HundredEther.ToBig(),
		},
	}
	for addr, balance := range cfg.GenesisAccountsBalances {
		genesisAlloc[addr] = types.Account{
			Balance: balance,
		}
	}

	backend := simulated.NewBackend(genesisAlloc, simulated.WithBlockGasLimit(cfg.BlockGasLimit))
	return &SimulatedEthClient{
		defaultAccountKey:  privateKey,
		defaultAccountAddr: from,
		backend:            backend,
		autoCommit:         cfg.AutoCommit,
		Client:             backend.Client(),
	}
}

// PrivateKey returns the hex key of the pre-funded account, without 0x prefix.
func (c *SimulatedEthClient) PrivateKey() string {
	return hex.EncodeToString(crypto.FromECDSA(c.defaultAccountKey))
}

func (c *SimulatedEthClient) Key() *ecdsa.PrivateKey {
	return c.defaultAccountKey
}

func (c *SimulatedEthClient) Address() common.Address {
	return c.defaultAccountAddr
}

func (c *SimulatedEthClient) Commit() common.Hash {
	return c.backend.Commit()
}

func (c *SimulatedEthClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := c.Client.SendTransaction(ctx, tx); err != nil {
		return err
	}
	if c.autoCommit {
		c.backend.Commit()
	}
	return nil
}

func (c *SimulatedEthClient) Close() {
	_ = c.backend.Close()
}
