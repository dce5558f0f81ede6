package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/op-create2/op-create2/config"
	"github.com/mantlenetworkio/op-create2/op-create2/create2"
	"github.com/mantlenetworkio/op-create2/op-create2/flags"
	"github.com/mantlenetworkio/op-create2/op-service/ctxinterrupt"
	"github.com/mantlenetworkio/op-create2/op-service/ioutil"
	"github.com/mantlenetworkio/op-create2/op-service/txmgr"
)

const (
	StatusDeployed = "deployed"
	StatusExisting = "existing"
)

type DeployedContract struct {
	Name    string         `json:"name"`
	Salt    string         `json:"salt"`
	Address common.Address `json:"address"`
	Status  string         `json:"status"`
	TxHash  *common.Hash   `json:"txHash,omitempty"`
	Block   uint64         `json:"block,omitempty"`
	GasUsed uint64         `json:"gasUsed,omitempty"`
}

var deployedHeader = []string{"Name", "Address", "Status", "Tx", "Gas Used"}

func (c DeployedContract) row() []string {
	status := color.New(color.FgGreen).SprintFunc()
	if c.Status == StatusExisting {
		status = color.New(color.FgYellow).SprintFunc()
	}
	var tx, gas string
	if c.TxHash != nil {
		tx = c.TxHash.Hex()
		gas = strconv.FormatUint(c.GasUsed, 10)
	}
	return []string{c.Name, create2.Canonical(c.Address), status(c.Status), tx, gas}
}

// ContractDeployer is the part of create2.Deployer that DeployAll uses.
type ContractDeployer interface {
	Deploy(ctx context.Context, req create2.DeployRequest) (*create2.DeploymentResult, error)
	PredictAddress(req create2.DeployRequest) (common.Address, error)
}

// DeployAll deploys the deployments one after the other, in order. With
// skipExisting, deployments that already have code at their address are
// reported as existing instead of failing the run. On error the contracts
// deployed so far are returned with it.
func DeployAll(ctx context.Context, lgr log.Logger, d ContractDeployer, deployments []config.Deployment, skipExisting bool, progress ioutil.Progressor) ([]DeployedContract, error) {
	if progress == nil {
		progress = ioutil.NoopProgressor()
	}
	total := int64(len(deployments))
	out := make([]DeployedContract, 0, len(deployments))
	for i := range deployments {
		dep := &deployments[i]
		name := dep.Label(i)
		req, err := dep.Request()
		if err != nil {
			return out, fmt.Errorf("%s: %w", name, err)
		}
		salt := "0x" + create2.SaltHex(req.Salt)

		res, err := d.Deploy(ctx, req)
		switch {
		case err == nil:
			txHash := res.TxHash
			contract := DeployedContract{
				Name:    name,
				Salt:    salt,
				Address: res.Address,
				Status:  StatusDeployed,
				TxHash:  &txHash,
			}
			if res.Receipt != nil {
				contract.GasUsed = res.Receipt.GasUsed
				if res.Receipt.BlockNumber != nil {
					contract.Block = res.Receipt.BlockNumber.Uint64()
				}
			}
			out = append(out, contract)
		case skipExisting && errors.Is(err, create2.ErrAlreadyDeployed):
			addr, err := d.PredictAddress(req)
			if err != nil {
				return out, fmt.Errorf("%s: %w", name, err)
			}
			lgr.Info("Skipping existing deployment", "name", name, "address", addr)
			out = append(out, DeployedContract{
				Name:    name,
				Salt:    salt,
				Address: addr,
				Status:  StatusExisting,
			})
		default:
			return out, fmt.Errorf("%s: %w", name, err)
		}
		progress(int64(i+1), total)
	}
	return out, nil
}

func deployAction(version string) cli.ActionFunc {
	return func(cliCtx *cli.Context) error {
		e, err := newEnv(cliCtx, version)
		if err != nil {
			return err
		}
		if err := e.cfg.CheckDeploy(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		factory, err := e.cfg.FactoryAddress()
		if err != nil {
			return err
		}

		ctx, cancel := ctxinterrupt.WithCancelOnInterrupt(cliCtx.Context)
		defer cancel()

		client, err := e.dial(ctx)
		if err != nil {
			return err
		}
		txCfg, err := txmgr.NewConfigWithBackend(e.cfg.TxMgrConfig, client, e.log)
		if err != nil {
			client.Close()
			return err
		}
		txMgr, err := txmgr.NewSimpleTxManagerFromConfig("deployer", e.log, e.m, txCfg)
		if err != nil {
			client.Close()
			return err
		}
		defer txMgr.Close()

		deployer := create2.NewDeployer(e.log, e.m, txMgr,
			create2.WithFactory(factory),
			create2.WithCodeReader(client),
		)
		e.log.Info("Deploying contracts", "count", len(e.cfg.Manifest.Deployments), "from", txMgr.From(), "chainID", txMgr.ChainID())
		deployed, deployErr := DeployAll(ctx, e.log, deployer, e.cfg.Manifest.Deployments,
			cliCtx.Bool(flags.SkipExistingFlag.Name), e.progressor("deploying"))
		if len(deployed) > 0 {
			if err := writeOutput(e, deployedHeader, deployed); err != nil {
				e.log.Error("Failed to write output", "err", err)
			}
		}
		e.pushMetrics(cliCtx.Context)
		return deployErr
	}
}
