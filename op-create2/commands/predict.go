package commands

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/mantlenetworkio/op-create2/op-create2/config"
	"github.com/mantlenetworkio/op-create2/op-create2/create2"
)

type Prediction struct {
	Name         string         `json:"name"`
	Factory      common.Address `json:"factory"`
	Salt         string         `json:"salt"`
	InitCodeHash common.Hash    `json:"initCodeHash"`
	Address      common.Address `json:"address"`
}

var predictionHeader = []string{"Name", "Address", "Salt", "Init Code Hash"}

func (p Prediction) row() []string {
	return []string{p.Name, create2.Canonical(p.Address), p.Salt, p.InitCodeHash.Hex()}
}

// Predict computes the address of every deployment. Results keep the order
// of the deployments.
func Predict(ctx context.Context, factory common.Address, deployments []config.Deployment) ([]Prediction, error) {
	out := make([]Prediction, len(deployments))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range deployments {
		d := &deployments[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			req, err := d.Request()
			if err != nil {
				return fmt.Errorf("%s: %w", d.Label(i), err)
			}
			initCode, err := req.InitCode()
			if err != nil {
				return fmt.Errorf("%s: %w", d.Label(i), err)
			}
			codeHash := crypto.Keccak256Hash(initCode)
			out[i] = Prediction{
				Name:         d.Label(i),
				Factory:      factory,
				Salt:         "0x" + create2.SaltHex(req.Salt),
				InitCodeHash: codeHash,
				Address:      create2.PredictAddressFromHash(factory, req.Salt, codeHash),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func predictAction(version string) cli.ActionFunc {
	return func(cliCtx *cli.Context) error {
		e, err := newEnv(cliCtx, version)
		if err != nil {
			return err
		}
		if err := e.cfg.Check(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		factory, err := e.cfg.FactoryAddress()
		if err != nil {
			return err
		}

		predictions, err := Predict(cliCtx.Context, factory, e.cfg.Manifest.Deployments)
		if err != nil {
			return err
		}
		e.m.RecordPredictions(factory, len(predictions))
		for _, p := range predictions {
			e.log.Debug("Predicted address", "name", p.Name, "salt", p.Salt, "initCodeHash", p.InitCodeHash, "address", p.Address)
		}
		if err := writeOutput(e, predictionHeader, predictions); err != nil {
			return err
		}
		e.pushMetrics(cliCtx.Context)
		return nil
	}
}
