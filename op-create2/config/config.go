package config

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-multierror"

	"github.com/mantlenetworkio/op-create2/op-create2/create2"
	oplog "github.com/mantlenetworkio/op-create2/op-service/log"
	opmetrics "github.com/mantlenetworkio/op-create2/op-service/metrics"
	"github.com/mantlenetworkio/op-create2/op-service/txmgr"
)

type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
)

func (f OutputFormat) Check() error {
	switch f {
	case FormatJSON, FormatTable:
		return nil
	}
	return fmt.Errorf("unknown output format %q", f)
}

type Config struct {
	Version string

	LogConfig     oplog.CLIConfig
	MetricsConfig opmetrics.CLIConfig
	TxMgrConfig   txmgr.CLIConfig

	Manifest Manifest
	Format   OutputFormat
	Outfile  string
}

// FactoryAddress returns the factory of the manifest, or the canonical factory.
func (c *Config) FactoryAddress() (common.Address, error) {
	if c.Manifest.Factory == "" {
		return create2.FactoryAddress, nil
	}
	if !common.IsHexAddress(c.Manifest.Factory) {
		return common.Address{}, fmt.Errorf("invalid factory address %q", c.Manifest.Factory)
	}
	return common.HexToAddress(c.Manifest.Factory), nil
}

// Check validates everything the offline commands need.
func (c *Config) Check() error {
	var result *multierror.Error
	result = multierror.Append(result, c.MetricsConfig.Check())
	result = multierror.Append(result, c.Format.Check())
	if _, err := c.FactoryAddress(); err != nil {
		result = multierror.Append(result, err)
	}
	if len(c.Manifest.Deployments) == 0 {
		result = multierror.Append(result, errors.New("no deployments configured"))
	}
	for i := range c.Manifest.Deployments {
		d := &c.Manifest.Deployments[i]
		if err := d.Check(); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", d.Label(i), err))
		}
	}
	return result.ErrorOrNil()
}

// CheckDeploy additionally validates the transaction settings.
func (c *Config) CheckDeploy() error {
	var result *multierror.Error
	result = multierror.Append(result, c.Check())
	result = multierror.Append(result, c.TxMgrConfig.Check())
	return result.ErrorOrNil()
}

func DefaultCLIConfig() *Config {
	return &Config{
		Version:       "dev",
		LogConfig:     oplog.DefaultCLIConfig(),
		MetricsConfig: opmetrics.DefaultCLIConfig(),
		TxMgrConfig:   txmgr.NewCLIConfig("", txmgr.DefaultDeployerFlagValues),
		Format:        FormatJSON,
		Outfile:       "-",
	}
}
