// Package bootstrap puts a CREATE2 factory on chains that do not have one yet.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/op-create2/op-create2/create2"
	opcrypto "github.com/mantlenetworkio/op-create2/op-service/crypto"
	"github.com/mantlenetworkio/op-create2/op-service/eth"
	"github.com/mantlenetworkio/op-create2/op-service/txmgr"
	txmetrics "github.com/mantlenetworkio/op-create2/op-service/txmgr/metrics"
)

// ErrBootstrapNonceUsed is returned when the bootstrap account already sent a
// transaction, so its nonce 0 creation can no longer produce the factory.
var ErrBootstrapNonceUsed = errors.New("bootstrap account nonce is not 0")

// DefaultFundingAmount is what the bootstrap account is topped up to before it
// deploys the factory.
var DefaultFundingAmount = eth.OneEther

// Backend is the chain access the canonical bootstrap needs. ethclient.Client
// satisfies it.
type Backend interface {
	txmgr.ETHBackend
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

type Config struct {
	Backend Backend

	// Funder tops up the bootstrap account when set.
	Funder        txmgr.TxManager
	FundingAmount eth.ETH

	// TxParams configures the transaction manager of the bootstrap account.
	TxParams txmgr.DefaultFlagValues
	Metrics  txmetrics.TxMetricer
	Logger   log.Logger
}

func (c *Config) Check() error {
	if c.Backend == nil {
		return errors.New("must provide the Backend")
	}
	if c.Logger == nil {
		return errors.New("must provide the Logger")
	}
	return nil
}

// DeployFactory deploys a new factory from the account of txMgr, and returns
// its address. The address depends on the sender and its nonce, so the result
// has to be passed on to create2.WithFactory.
func DeployFactory(ctx context.Context, lgr log.Logger, txMgr txmgr.TxManager) (common.Address, error) {
	lgr = lgr.New("from", txMgr.From())
	lgr.Info("Deploying CREATE2 factory")
	rec, err := txMgr.Send(ctx, txmgr.TxCandidate{TxData: create2.FactoryBytecode})
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to send factory deployment: %w", err)
	}
	if rec.Status != types.ReceiptStatusSuccessful {
		return common.Address{}, fmt.Errorf("factory deployment tx %s reverted", rec.TxHash)
	}
	lgr.Info("Deployed CREATE2 factory", "factory", rec.ContractAddress, "tx", rec.TxHash)
	return rec.ContractAddress, nil
}

// DeployCanonicalFactory deploys the factory from the bootstrap key, which
// puts it at create2.FactoryAddress. It returns right away when the factory
// is already there.
func DeployCanonicalFactory(ctx context.Context, cfg Config) (common.Address, error) {
	if err := cfg.Check(); err != nil {
		return common.Address{}, fmt.Errorf("invalid bootstrap config: %w", err)
	}
	if cfg.FundingAmount.IsZero() {
		cfg.FundingAmount = DefaultFundingAmount
	}
	if cfg.TxParams == (txmgr.DefaultFlagValues{}) {
		cfg.TxParams = txmgr.DefaultDeployerFlagValues
	}
	lgr := cfg.Logger.New("factory", create2.FactoryAddress, "bootstrap", create2.BootstrapAddress)

	deployed, err := create2.IsDeployed(ctx, cfg.Backend, create2.FactoryAddress)
	if err != nil {
		return common.Address{}, err
	}
	if deployed {
		lgr.Info("CREATE2 factory already deployed")
		return create2.FactoryAddress, nil
	}

	nonce, err := cfg.Backend.NonceAt(ctx, create2.BootstrapAddress, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to get bootstrap nonce: %w", err)
	}
	if nonce != 0 {
		return common.Address{}, fmt.Errorf("%w: nonce %d", ErrBootstrapNonceUsed, nonce)
	}

	if cfg.Funder != nil {
		if err := fund(ctx, lgr, cfg); err != nil {
			return common.Address{}, err
		}
	}

	bootstrapMgr, err := newBootstrapTxManager(ctx, cfg)
	if err != nil {
		return common.Address{}, err
	}
	addr, err := DeployFactory(ctx, lgr, bootstrapMgr)
	if err != nil {
		return common.Address{}, err
	}
	if addr != create2.FactoryAddress {
		return common.Address{}, &create2.AddressMismatchError{
			Factory:  create2.BootstrapAddress,
			Expected: create2.FactoryAddress,
			Actual:   addr,
		}
	}
	return addr, nil
}

func fund(ctx context.Context, lgr log.Logger, cfg Config) error {
	bal, err := cfg.Backend.BalanceAt(ctx, create2.BootstrapAddress, nil)
	if err != nil {
		return fmt.Errorf("failed to get bootstrap balance: %w", err)
	}
	balance := eth.WeiBig(bal)
	if !balance.Lt(cfg.FundingAmount) {
		return nil
	}
	topUp := cfg.FundingAmount.Sub(balance)
	lgr.Info("Funding bootstrap account", "funder", cfg.Funder.From(), "balance", balance, "amount", topUp)
	to := create2.BootstrapAddress
	rec, err := cfg.Funder.Send(ctx, txmgr.TxCandidate{
		To:       &to,
		Value:    topUp.ToBig(),
		GasLimit: 21_000,
	})
	if err != nil {
		return fmt.Errorf("failed to fund bootstrap account: %w", err)
	}
	if rec.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("funding tx %s reverted", rec.TxHash)
	}
	return nil
}

// newBootstrapTxManager returns a tx manager sending from the bootstrap key.
// It shares the backend of cfg and must not be closed.
func newBootstrapTxManager(ctx context.Context, cfg Config) (*txmgr.SimpleTxManager, error) {
	key, err := opcrypto.ParsePrivateKey(create2.BootstrapKeyHex)
	if err != nil {
		return nil, err
	}
	cCtx, cancel := context.WithTimeout(ctx, cfg.TxParams.NetworkTimeout)
	defer cancel()
	chainID, err := cfg.Backend.ChainID(cCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	return txmgr.NewSimpleTxManagerFromConfig("bootstrap", cfg.Logger, cfg.Metrics, &txmgr.Config{
		Backend:              cfg.Backend,
		ChainID:              chainID,
		NetworkTimeout:       cfg.TxParams.NetworkTimeout,
		TxSendTimeout:        cfg.TxParams.TxSendTimeout,
		ReceiptQueryInterval: cfg.TxParams.ReceiptQueryInterval,
		NumConfirmations:     cfg.TxParams.NumConfirmations,
		Signer:               opcrypto.PrivateKeySignerFn(key, chainID),
		From:                 create2.BootstrapAddress,
		GasPriceEstimatorFn:  txmgr.DefaultGasPriceEstimatorFn,
	})
}
