package commands

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/mantlenetworkio/op-create2/op-create2/create2"
	"github.com/mantlenetworkio/op-create2/op-create2/flags"
	"github.com/mantlenetworkio/op-create2/op-service/ctxinterrupt"
)

const maxConcurrentCodeReads = 8

type DeploymentStatus struct {
	Name     string         `json:"name,omitempty"`
	Address  common.Address `json:"address"`
	Deployed bool           `json:"deployed"`
}

var statusHeader = []string{"Name", "Address", "Deployed"}

func (s DeploymentStatus) row() []string {
	deployed := color.New(color.FgRed).Sprint("no")
	if s.Deployed {
		deployed = color.New(color.FgGreen).Sprint("yes")
	}
	return []string{s.Name, create2.Canonical(s.Address), deployed}
}

// CheckDeployed fills in the Deployed field of every target.
func CheckDeployed(ctx context.Context, reader create2.CodeReader, targets []DeploymentStatus) ([]DeploymentStatus, error) {
	out := make([]DeploymentStatus, len(targets))
	copy(out, targets)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentCodeReads)
	for i := range out {
		g.Go(func() error {
			deployed, err := create2.IsDeployed(ctx, reader, out[i].Address)
			if err != nil {
				return err
			}
			out[i].Deployed = deployed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// statusTargets returns the addresses given with --address, or the predicted
// addresses of the configured deployments.
func statusTargets(cliCtx *cli.Context, e *env) ([]DeploymentStatus, error) {
	if cliCtx.IsSet(flags.AddressFlag.Name) {
		var targets []DeploymentStatus
		for _, s := range cliCtx.StringSlice(flags.AddressFlag.Name) {
			if !common.IsHexAddress(s) {
				return nil, fmt.Errorf("invalid address %q", s)
			}
			targets = append(targets, DeploymentStatus{Address: common.HexToAddress(s)})
		}
		return targets, nil
	}

	if err := e.cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	factory, err := e.cfg.FactoryAddress()
	if err != nil {
		return nil, err
	}
	predictions, err := Predict(cliCtx.Context, factory, e.cfg.Manifest.Deployments)
	if err != nil {
		return nil, err
	}
	e.m.RecordPredictions(factory, len(predictions))
	targets := make([]DeploymentStatus, len(predictions))
	for i, p := range predictions {
		targets[i] = DeploymentStatus{Name: p.Name, Address: p.Address}
	}
	return targets, nil
}

func isDeployedAction(version string) cli.ActionFunc {
	return func(cliCtx *cli.Context) error {
		e, err := newEnv(cliCtx, version)
		if err != nil {
			return err
		}
		targets, err := statusTargets(cliCtx, e)
		if err != nil {
			return err
		}

		ctx, cancel := ctxinterrupt.WithCancelOnInterrupt(cliCtx.Context)
		defer cancel()

		client, err := e.dial(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		statuses, err := CheckDeployed(ctx, client, targets)
		if err != nil {
			return err
		}
		if err := writeOutput(e, statusHeader, statuses); err != nil {
			return err
		}
		e.pushMetrics(cliCtx.Context)

		if cliCtx.Bool(flags.FailOnMissingFlag.Name) {
			for _, s := range statuses {
				if !s.Deployed {
					return cli.Exit(fmt.Sprintf("no code at %s", create2.Canonical(s.Address)), 1)
				}
			}
		}
		return nil
	}
}
