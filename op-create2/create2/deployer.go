package create2

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/mantlenetworkio/op-create2/op-service/txmgr"
)

// CodeReader reads deployed contract code. ethclient.Client satisfies it.
type CodeReader interface {
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

// Metricer records deployment attempts.
type Metricer interface {
	RecordDeployment(factory common.Address) (onDone func(err error))
}

type noopMetrics struct{}

func (noopMetrics) RecordDeployment(common.Address) func(error) { return func(error) {} }

type DeployRequest struct {
	Salt             *uint256.Int
	Bytecode         []byte
	ConstructorTypes []string
	ConstructorArgs  []any
}

// InitCode returns the bytecode with the encoded constructor arguments appended.
func (r DeployRequest) InitCode() ([]byte, error) {
	return BuildInitCode(r.ConstructorTypes, r.ConstructorArgs, r.Bytecode)
}

type DeploymentResult struct {
	TxHash  common.Hash    `json:"txHash"`
	Address common.Address `json:"address"`
	Receipt *types.Receipt `json:"receipt"`
}

// Deployer deploys contracts through a CREATE2 factory and verifies each
// deployment landed at the locally predicted address.
type Deployer struct {
	log     log.Logger
	m       Metricer
	txMgr   txmgr.TxManager
	factory common.Address
	code    CodeReader
}

type Option func(d *Deployer)

// WithFactory overrides the factory address used for both prediction and submission.
func WithFactory(addr common.Address) Option {
	return func(d *Deployer) {
		d.factory = addr
	}
}

// WithCodeReader enables the occupancy check before sending and the code
// check after the deployment.
func WithCodeReader(r CodeReader) Option {
	return func(d *Deployer) {
		d.code = r
	}
}

func NewDeployer(logger log.Logger, m Metricer, txMgr txmgr.TxManager, opts ...Option) *Deployer {
	if m == nil {
		m = noopMetrics{}
	}
	d := &Deployer{
		log:     logger,
		m:       m,
		txMgr:   txMgr,
		factory: FactoryAddress,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.New("factory", d.factory)
	return d
}

func (d *Deployer) Factory() common.Address {
	return d.factory
}

// PredictAddress returns the address Deploy would deploy req to.
func (d *Deployer) PredictAddress(req DeployRequest) (common.Address, error) {
	initCode, err := req.InitCode()
	if err != nil {
		return common.Address{}, err
	}
	return PredictAddress(d.factory, req.Salt, initCode), nil
}

func (d *Deployer) Deploy(ctx context.Context, req DeployRequest) (result *DeploymentResult, err error) {
	onDone := d.m.RecordDeployment(d.factory)
	defer func() {
		onDone(err)
	}()

	initCode, err := req.InitCode()
	if err != nil {
		d.log.Warn("Failed to build init code", "salt", SaltHex(req.Salt), "err", err)
		return nil, err
	}
	codeHash := crypto.Keccak256Hash(initCode)
	expected := PredictAddressFromHash(d.factory, req.Salt, codeHash)
	logger := d.log.New("salt", SaltHex(req.Salt), "initCodeHash", codeHash, "predicted", expected)

	if d.code != nil {
		deployed, err := IsDeployed(ctx, d.code, expected)
		if err != nil {
			logger.Error("Failed to check predicted address", "err", err)
			return nil, err
		}
		if deployed {
			logger.Warn("Contract already deployed at predicted address")
			return nil, fmt.Errorf("%w: %s", ErrAlreadyDeployed, Canonical(expected))
		}
	}

	calldata, err := PackDeploy(initCode, req.Salt)
	if err != nil {
		return nil, &EncodingError{Index: -1, Err: err}
	}

	factory := d.factory
	logger.Info("Sending deployment tx", "from", d.txMgr.From(), "initCodeSize", len(initCode))
	rec, err := d.txMgr.Send(ctx, txmgr.TxCandidate{
		TxData: calldata,
		To:     &factory,
	})
	if err != nil {
		logger.Error("Failed to send deployment tx", "err", err)
		return nil, fmt.Errorf("failed to send deployment tx: %w", err)
	}
	logger = logger.New("tx", rec.TxHash, "block", rec.BlockNumber)

	if rec.Status == types.ReceiptStatusFailed {
		logger.Error("Deployment tx reverted")
		return nil, &RevertedError{Factory: d.factory, Salt: req.Salt, TxHash: rec.TxHash}
	}

	event, err := ParseDeployedEvent(d.factory, rec.Logs)
	if err != nil {
		logger.Error("Deployed event not found in receipt", "logs", len(rec.Logs), "err", err)
		return nil, &NoEventFoundError{Factory: d.factory, TxHash: rec.TxHash, Logs: len(rec.Logs), Err: err}
	}

	if event.Addr != expected {
		logger.Error("Deployed address does not match prediction", "actual", event.Addr)
		return nil, &AddressMismatchError{
			Factory:      d.factory,
			Salt:         req.Salt,
			InitCodeHash: codeHash,
			Expected:     expected,
			Actual:       event.Addr,
			TxHash:       rec.TxHash,
		}
	}

	if d.code != nil {
		deployed, err := IsDeployed(ctx, d.code, event.Addr)
		if err != nil {
			logger.Error("Failed to check deployed code", "err", err)
			return nil, err
		}
		if !deployed {
			logger.Error("No code at deployed address")
			return nil, fmt.Errorf("%w: %s", ErrNoCode, Canonical(event.Addr))
		}
	}

	logger.Info("Contract deployed", "address", event.Addr, "gasUsed", rec.GasUsed)
	return &DeploymentResult{
		TxHash:  rec.TxHash,
		Address: event.Addr,
		Receipt: rec,
	}, nil
}

// IsDeployed reports whether addr has code at the latest block.
func IsDeployed(ctx context.Context, reader CodeReader, addr common.Address) (bool, error) {
	code, err := reader.CodeAt(ctx, addr, nil)
	if err != nil {
		return false, fmt.Errorf("failed to get code at %s: %w", Canonical(addr), err)
	}
	return len(code) > 0, nil
}

// Outcome classifies a Deploy error into a short label.
func Outcome(err error) string {
	var (
		encErr      *EncodingError
		noEventErr  *NoEventFoundError
		mismatchErr *AddressMismatchError
		revertErr   *RevertedError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &encErr):
		return "encoding"
	case errors.As(err, &mismatchErr):
		return "mismatch"
	case errors.As(err, &noEventErr):
		return "no_event"
	case errors.As(err, &revertErr):
		return "reverted"
	case errors.Is(err, ErrAlreadyDeployed):
		return "already_deployed"
	case errors.Is(err, ErrNoCode):
		return "no_code"
	default:
		return "error"
	}
}
