package commands

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/op-create2/op-create2/bootstrap"
	"github.com/mantlenetworkio/op-create2/op-create2/create2"
	"github.com/mantlenetworkio/op-create2/op-service/cliutil"
	"github.com/mantlenetworkio/op-create2/op-service/ctxinterrupt"
	"github.com/mantlenetworkio/op-create2/op-service/eth"
	"github.com/mantlenetworkio/op-create2/op-service/txmgr"
)

type FactoryDeployment struct {
	Factory   common.Address `json:"factory"`
	Canonical bool           `json:"canonical"`
}

var factoryHeader = []string{"Factory", "Canonical"}

func (f FactoryDeployment) row() []string {
	return []string{create2.Canonical(f.Factory), fmt.Sprint(f.Canonical)}
}

type canonicalOptions struct {
	FunderPrivateKey string  `cli:"funder-private-key"`
	FundingAmount    eth.ETH `cli:"funding-amount"`
}

func bootstrapCanonicalAction(version string) cli.ActionFunc {
	return func(cliCtx *cli.Context) error {
		e, err := newEnv(cliCtx, version)
		if err != nil {
			return err
		}
		opts := canonicalOptions{FundingAmount: bootstrap.DefaultFundingAmount}
		if err := cliutil.PopulateStruct(&opts, cliCtx); err != nil {
			return fmt.Errorf("invalid bootstrap options: %w", err)
		}

		ctx, cancel := ctxinterrupt.WithCancelOnInterrupt(cliCtx.Context)
		defer cancel()
		client, err := e.dial(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		txParams := txmgr.DefaultFlagValues{
			NumConfirmations:     e.cfg.TxMgrConfig.NumConfirmations,
			NetworkTimeout:       e.cfg.TxMgrConfig.NetworkTimeout,
			TxSendTimeout:        e.cfg.TxMgrConfig.TxSendTimeout,
			ReceiptQueryInterval: e.cfg.TxMgrConfig.ReceiptQueryInterval,
		}

		// The funder shares the client, which is closed above.
		var funder txmgr.TxManager
		if opts.FunderPrivateKey != "" {
			funderCfg := e.cfg.TxMgrConfig
			funderCfg.PrivateKey = opts.FunderPrivateKey
			funderCfg.Mnemonic = ""
			funderCfg.HDPath = ""
			txCfg, err := txmgr.NewConfigWithBackend(funderCfg, client, e.log)
			if err != nil {
				return err
			}
			funder, err = txmgr.NewSimpleTxManagerFromConfig("funder", e.log, e.m, txCfg)
			if err != nil {
				return err
			}
		}

		addr, err := bootstrap.DeployCanonicalFactory(ctx, bootstrap.Config{
			Backend:       client,
			Funder:        funder,
			FundingAmount: opts.FundingAmount,
			TxParams:      txParams,
			Metrics:       e.m,
			Logger:        e.log,
		})
		if err != nil {
			return err
		}
		if err := writeSingle(e, factoryHeader, FactoryDeployment{Factory: addr, Canonical: true}); err != nil {
			return err
		}
		e.pushMetrics(cliCtx.Context)
		return nil
	}
}

func bootstrapFreshAction(version string) cli.ActionFunc {
	return func(cliCtx *cli.Context) error {
		e, err := newEnv(cliCtx, version)
		if err != nil {
			return err
		}
		if err := e.cfg.TxMgrConfig.Check(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
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
		txMgr, err := txmgr.NewSimpleTxManagerFromConfig("bootstrap", e.log, e.m, txCfg)
		if err != nil {
			client.Close()
			return err
		}
		defer txMgr.Close()

		addr, err := bootstrap.DeployFactory(ctx, e.log, txMgr)
		if err != nil {
			return err
		}
		out := FactoryDeployment{Factory: addr, Canonical: addr == create2.FactoryAddress}
		if err := writeSingle(e, factoryHeader, out); err != nil {
			return err
		}
		e.pushMetrics(cliCtx.Context)
		return nil
	}
}
