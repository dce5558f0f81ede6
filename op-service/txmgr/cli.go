package txmgr

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	opservice "github.com/mantlenetworkio/op-create2/op-service"
	opcrypto "github.com/mantlenetworkio/op-create2/op-service/crypto"
)

const (
	RPCURLFlagName = "rpc-url"
	// Key Management Flags
	MnemonicFlagName   = "mnemonic"
	HDPathFlagName     = "hd-path"
	PrivateKeyFlagName = "private-key"
	// TxMgr Flags
	NumConfirmationsFlagName     = "num-confirmations"
	NetworkTimeoutFlagName       = "network-timeout"
	TxSendTimeoutFlagName        = "txmgr.send-timeout"
	ReceiptQueryIntervalFlagName = "txmgr.receipt-query-interval"
)

type DefaultFlagValues struct {
	NumConfirmations     uint64
	NetworkTimeout       time.Duration
	TxSendTimeout        time.Duration
	ReceiptQueryInterval time.Duration
}

var DefaultDeployerFlagValues = DefaultFlagValues{
	NumConfirmations:     uint64(1),
	NetworkTimeout:       10 * time.Second,
	TxSendTimeout:        5 * time.Minute,
	ReceiptQueryInterval: 2 * time.Second,
}

func CLIFlags(envPrefix string) []cli.Flag {
	return CLIFlagsWithDefaults(envPrefix, DefaultDeployerFlagValues)
}

func CLIFlagsWithDefaults(envPrefix string, defaults DefaultFlagValues) []cli.Flag {
	prefixEnvVars := func(name string) []string {
		return opservice.PrefixEnvVar(envPrefix, name)
	}
	return []cli.Flag{
		&cli.StringFlag{
			Name:    RPCURLFlagName,
			Usage:   "HTTP or websocket URL of the chain's RPC endpoint",
			EnvVars: prefixEnvVars("RPC_URL"),
		},
		&cli.StringFlag{
			Name:    MnemonicFlagName,
			Usage:   "The mnemonic used to derive the deployer wallet",
			EnvVars: prefixEnvVars("MNEMONIC"),
		},
		&cli.StringFlag{
			Name:    HDPathFlagName,
			Usage:   "The HD path used to derive the deployer wallet from the mnemonic. The mnemonic flag must also be set.",
			EnvVars: prefixEnvVars("HD_PATH"),
		},
		&cli.StringFlag{
			Name:    PrivateKeyFlagName,
			Usage:   "The private key of the deployer. Must not be used with mnemonic.",
			EnvVars: prefixEnvVars("PRIVATE_KEY"),
		},
		&cli.Uint64Flag{
			Name:    NumConfirmationsFlagName,
			Usage:   "Number of confirmations which we will wait after sending a transaction",
			Value:   defaults.NumConfirmations,
			EnvVars: prefixEnvVars("NUM_CONFIRMATIONS"),
		},
		&cli.DurationFlag{
			Name:    NetworkTimeoutFlagName,
			Usage:   "Timeout for all network operations",
			Value:   defaults.NetworkTimeout,
			EnvVars: prefixEnvVars("NETWORK_TIMEOUT"),
		},
		&cli.DurationFlag{
			Name:    TxSendTimeoutFlagName,
			Usage:   "Timeout for sending a transaction and waiting for its confirmations. 0 waits indefinitely.",
			Value:   defaults.TxSendTimeout,
			EnvVars: prefixEnvVars("TXMGR_TX_SEND_TIMEOUT"),
		},
		&cli.DurationFlag{
			Name:    ReceiptQueryIntervalFlagName,
			Usage:   "Frequency to poll for receipts",
			Value:   defaults.ReceiptQueryInterval,
			EnvVars: prefixEnvVars("TXMGR_RECEIPT_QUERY_INTERVAL"),
		},
	}
}

type CLIConfig struct {
	RPCURL               string
	Mnemonic             string
	HDPath               string
	PrivateKey           string
	NumConfirmations     uint64
	NetworkTimeout       time.Duration
	TxSendTimeout        time.Duration
	ReceiptQueryInterval time.Duration
}

func NewCLIConfig(rpcURL string, defaults DefaultFlagValues) CLIConfig {
	return CLIConfig{
		RPCURL:               rpcURL,
		NumConfirmations:     defaults.NumConfirmations,
		NetworkTimeout:       defaults.NetworkTimeout,
		TxSendTimeout:        defaults.TxSendTimeout,
		ReceiptQueryInterval: defaults.ReceiptQueryInterval,
	}
}

func (m CLIConfig) Check() error {
	if m.RPCURL == "" {
		return errors.New("must provide an RPC URL")
	}
	if m.NumConfirmations == 0 {
		return errors.New("NumConfirmations must not be 0")
	}
	if m.NetworkTimeout == 0 {
		return errors.New("must provide NetworkTimeout")
	}
	if m.ReceiptQueryInterval == 0 {
		return errors.New("must provide ReceiptQueryInterval")
	}
	if m.PrivateKey != "" && m.Mnemonic != "" {
		return errors.New("can only provide one of: [private key, mnemonic]")
	}
	if m.PrivateKey == "" && m.Mnemonic == "" {
		return errors.New("must provide a private key or a mnemonic")
	}
	if m.Mnemonic != "" && m.HDPath == "" {
		return errors.New("must provide an HD path with the mnemonic")
	}
	return nil
}

func ReadCLIConfig(ctx *cli.Context) CLIConfig {
	return CLIConfig{
		RPCURL:               ctx.String(RPCURLFlagName),
		Mnemonic:             ctx.String(MnemonicFlagName),
		HDPath:               ctx.String(HDPathFlagName),
		PrivateKey:           ctx.String(PrivateKeyFlagName),
		NumConfirmations:     ctx.Uint64(NumConfirmationsFlagName),
		NetworkTimeout:       ctx.Duration(NetworkTimeoutFlagName),
		TxSendTimeout:        ctx.Duration(TxSendTimeoutFlagName),
		ReceiptQueryInterval: ctx.Duration(ReceiptQueryIntervalFlagName),
	}
}

// NewConfig dials the RPC endpoint and loads the signer described by cfg.
func NewConfig(cfg CLIConfig, l log.Logger) (*Config, error) {
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.NetworkTimeout)
	defer cancel()
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("could not dial eth client: %w", err)
	}

	return NewConfigWithBackend(cfg, client, l)
}

// NewConfigWithBackend is NewConfig with an already connected backend.
func NewConfigWithBackend(cfg CLIConfig, backend ETHBackend, l log.Logger) (*Config, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.NetworkTimeout)
	defer cancel()
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not fetch chain ID: %w", err)
	}

	signerFactory, from, err := opcrypto.SignerFactoryFromConfig(l, cfg.PrivateKey, cfg.Mnemonic, cfg.HDPath)
	if err != nil {
		return nil, fmt.Errorf("could not init signer: %w", err)
	}

	return &Config{
		Backend:              backend,
		ChainID:              chainID,
		NetworkTimeout:       cfg.NetworkTimeout,
		TxSendTimeout:        cfg.TxSendTimeout,
		ReceiptQueryInterval: cfg.ReceiptQueryInterval,
		NumConfirmations:     cfg.NumConfirmations,
		Signer:               signerFactory(chainID),
		From:                 from,
		GasPriceEstimatorFn:  DefaultGasPriceEstimatorFn,
	}, nil
}

// Config houses parameters for altering the behavior of a SimpleTxManager.
type Config struct {
	Backend ETHBackend

	ChainID *big.Int

	// NetworkTimeout is the allowed duration for a single network request.
	NetworkTimeout time.Duration

	// TxSendTimeout is how long to wait for a transaction to be confirmed.
	// Zero means no limit beyond the caller's context.
	TxSendTimeout time.Duration

	// ReceiptQueryInterval is the interval at which the tx manager will
	// query the backend to check for confirmations after a tx at a
	// specific gas price has been published.
	ReceiptQueryInterval time.Duration

	// NumConfirmations specifies how many blocks are need to consider a
	// transaction confirmed.
	NumConfirmations uint64

	Signer opcrypto.SignerFn
	From   common.Address

	GasPriceEstimatorFn GasPriceEstimatorFn
}

func (m *Config) Check() error {
	if m.Backend == nil {
		return errors.New("must provide the Backend")
	}
	if m.NumConfirmations == 0 {
		return errors.New("NumConfirmations must not be 0")
	}
	if m.NetworkTimeout == 0 {
		return errors.New("must provide NetworkTimeout")
	}
	if m.ReceiptQueryInterval == 0 {
		return errors.New("must provide ReceiptQueryInterval")
	}
	if m.Signer == nil {
		return errors.New("must provide the Signer")
	}
	if m.ChainID == nil {
		return errors.New("must provide the ChainID")
	}
	if m.GasPriceEstimatorFn == nil {
		return errors.New("must provide the GasPriceEstimatorFn")
	}
	return nil
}
