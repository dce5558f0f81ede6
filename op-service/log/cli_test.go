package log

import (
	"bytes"
	"encoding/json"
	"flag"
	"log/slog"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runFlags(t *testing.T, args ...string) CLIConfig {
	var cfg CLIConfig
	app := cli.NewApp()
	app.Flags = CLIFlags("OP_CREATE2")
	app.Action = func(ctx *cli.Context) error {
		cfg = ReadCLIConfig(ctx)
		return nil
	}
	require.NoError(t, app.Run(append([]string{"test"}, args...)))
	return cfg
}

func TestReadCLIConfigDefaults(t *testing.T) {
	cfg := runFlags(t)
	require.Equal(t, log.LevelInfo, cfg.Level)
	require.Equal(t, FormatText, cfg.Format)
}

func TestReadCLIConfigFlags(t *testing.T) {
	cfg := runFlags(t, "--log.level=debug", "--log.format=jsonms", "--log.color")
	require.Equal(t, log.LevelDebug, cfg.Level)
	require.Equal(t, FormatJSONMs, cfg.Format)
	require.True(t, cfg.Color)
}

func TestInvalidFlagValues(t *testing.T) {
	require.Error(t, NewFormatFlagValue(FormatText).Set("yaml"))
	require.Error(t, NewLevelFlagValue(log.LevelInfo).Set("loud"))

	var _ flag.Value = NewLevelFlagValue(log.LevelInfo)
	var _ flag.Value = NewFormatFlagValue(FormatText)
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in  string
		lvl slog.Level
	}{
		{in: "trace", lvl: log.LevelTrace},
		{in: "debug", lvl: log.LevelDebug},
		{in: "DBUG", lvl: log.LevelDebug},
		{in: "info", lvl: log.LevelInfo},
		{in: "Warn", lvl: log.LevelWarn},
		{in: "error", lvl: log.LevelError},
		{in: "eror", lvl: log.LevelError},
		{in: "crit", lvl: log.LevelCrit},
		{in: " info ", lvl: log.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			lvl, err := LevelFromString(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.lvl, lvl)
		})
	}

	_, err := LevelFromString("")
	require.Error(t, err)

	fv := NewLevelFlagValue(log.LevelInfo)
	require.NoError(t, fv.Set("crit"))
	require.Equal(t, log.LevelCrit, fv.Level())
}

func TestNewLoggerFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, CLIConfig{Level: log.LevelWarn, Format: FormatLogFmt})
	logger.Info("hidden")
	logger.Warn("shown", "salt", 1)
	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "shown")
}

func TestJSONMsHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLogger(JSONMsHandlerWithLevel(&buf, slog.LevelInfo))
	logger.Info("deployed", "salt", uint256.NewInt(7), "value", big.NewInt(42), "nilInt", (*big.Int)(nil))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "info", rec["lvl"])
	require.Equal(t, "7", rec["salt"])
	require.Equal(t, "42", rec["value"])
	require.Equal(t, "<nil>", rec["nilInt"])
	require.Contains(t, rec, "t")
}

func TestLogfmtMsHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLogger(LogfmtMsHandler(&buf))
	logger.Debug("predicted", "salt", uint256.NewInt(1))
	line := buf.String()
	require.True(t, strings.HasPrefix(line, "t="))
	require.Contains(t, line, "lvl=debug")
	require.Contains(t, line, "salt=1")
}
