// Package commands implements the op-create2 subcommands.
package commands

import (
	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/op-create2/op-create2/flags"
	"github.com/mantlenetworkio/op-create2/op-service/cliapp"
)

func withFlags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return cliapp.ProtectFlags(out)
}

// New returns the subcommands of the op-create2 app.
func New(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:        "predict",
			Usage:       "Predicts the CREATE2 address of contracts",
			Description: "Computes the address each deployment lands at when deployed through the factory. Does not connect to a chain.",
			Flags:       withFlags(flags.DeploymentFlags, flags.OutputFlags),
			Action:      predictAction(version),
		},
		{
			Name:   "deploy",
			Usage:  "Deploys contracts through the CREATE2 factory",
			Flags:  withFlags(flags.DeploymentFlags, flags.OutputFlags, flags.TxFlags, []cli.Flag{flags.SkipExistingFlag}),
			Action: deployAction(version),
		},
		{
			Name:   "is-deployed",
			Usage:  "Checks whether contracts have code on chain",
			Flags:  withFlags(flags.DeploymentFlags, flags.OutputFlags, flags.TxFlags, []cli.Flag{flags.AddressFlag, flags.FailOnMissingFlag}),
			Action: isDeployedAction(version),
		},
		{
			Name:  "bootstrap",
			Usage: "Deploys the CREATE2 factory itself, for development chains",
			Subcommands: []*cli.Command{
				{
					Name:   "canonical",
					Usage:  "Deploys the factory from the bootstrap key, at the canonical address",
					Flags:  withFlags(flags.OutputFlags, flags.TxFlags, flags.BootstrapFlags),
					Action: bootstrapCanonicalAction(version),
				},
				{
					Name:   "fresh",
					Usage:  "Deploys a new factory from the configured key",
					Flags:  withFlags(flags.OutputFlags, flags.TxFlags),
					Action: bootstrapFreshAction(version),
				},
			},
		},
	}
}
