package main

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/op-create2/op-create2/commands"
	"github.com/mantlenetworkio/op-create2/op-create2/create2"
	"github.com/mantlenetworkio/op-create2/op-create2/flags"
	"github.com/mantlenetworkio/op-create2/op-create2/metrics"
	opservice "github.com/mantlenetworkio/op-create2/op-service"
	"github.com/mantlenetworkio/op-create2/op-service/cliapp"
	"github.com/mantlenetworkio/op-create2/op-service/ctxinterrupt"
	oplog "github.com/mantlenetworkio/op-create2/op-service/log"
	"github.com/mantlenetworkio/op-create2/op-service/metrics/doc"
)

var (
	Version   = "v0.0.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	ctx := ctxinterrupt.WithSignalWaiterMain(context.Background())
	err := run(ctx, os.Stdout, os.Stderr, os.Args)
	if err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func run(ctx context.Context, w io.Writer, ew io.Writer, args []string) error {
	oplog.SetupDefaults()

	app := cli.NewApp()
	app.Writer = w
	app.ErrWriter = ew
	app.Flags = cliapp.ProtectFlags(flags.Flags)
	app.Version = opservice.FormatVersion(Version, GitCommit, GitDate, "")
	app.Name = "op-create2"
	app.Usage = "Predict and deploy contracts at deterministic CREATE2 addresses."
	app.Description = "Deploys contracts through the CREATE2 factory at " + create2.FactoryAddress.Hex() + ".\n" +
		" Addresses depend only on the factory, the salt and the init code."
	// Constructor arguments may contain commas, e.g. JSON arrays.
	app.DisableSliceFlagSeparator = true
	app.Commands = append(commands.New(app.Version), &cli.Command{
		Name:        "doc",
		Subcommands: doc.NewSubcommands(metrics.NewMetrics("default")),
	})
	return app.RunContext(ctx, args)
}
