package cliapp

import (
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	oplog "github.com/mantlenetworkio/op-create2/op-service/log"
)

func TestProtectFlags(t *testing.T) {
	orig := oplog.CLIFlags("TEST")
	run := func(args ...string) oplog.CLIConfig {
		var cfg oplog.CLIConfig
		app := cli.NewApp()
		app.Flags = ProtectFlags(orig)
		app.Action = func(ctx *cli.Context) error {
			cfg = oplog.ReadCLIConfig(ctx)
			return nil
		}
		require.NoError(t, app.Run(append([]string{"test"}, args...)))
		return cfg
	}

	require.Equal(t, log.LevelDebug, run("--log.level=debug").Level)
	require.Equal(t, log.LevelInfo, run().Level, "first run must not leak into the shared flags")
}

func TestProtectFlagsRejectsUnknown(t *testing.T) {
	require.Panics(t, func() {
		ProtectFlags([]cli.Flag{&cli.Float64Flag{Name: "ratio"}})
	})
}
