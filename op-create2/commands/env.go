package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/op-create2/op-create2/config"
	"github.com/mantlenetworkio/op-create2/op-create2/flags"
	"github.com/mantlenetworkio/op-create2/op-create2/metrics"
	"github.com/mantlenetworkio/op-create2/op-service/dial"
	"github.com/mantlenetworkio/op-create2/op-service/ioutil"
	"github.com/mantlenetworkio/op-create2/op-service/jsonutil"
	oplog "github.com/mantlenetworkio/op-create2/op-service/log"
	opmetrics "github.com/mantlenetworkio/op-create2/op-service/metrics"
	"github.com/mantlenetworkio/op-create2/op-service/txmgr"
)

// env is what every command sets up before it does any work.
type env struct {
	cfg *config.Config
	log log.Logger
	m   *metrics.Metrics

	stdout io.Writer
	stderr io.Writer
}

func newEnv(cliCtx *cli.Context, version string) (*env, error) {
	cfg, err := flags.ConfigFromCLI(cliCtx, version)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	l := oplog.NewLogger(oplog.AppErr(cliCtx), cfg.LogConfig)
	oplog.SetGlobalLogHandler(l.Handler())

	m := metrics.NewMetrics("default")
	m.RecordInfo(version)
	m.RecordUp()

	return &env{
		cfg:    cfg,
		log:    l,
		m:      m,
		stdout: cliCtx.App.Writer,
		stderr: oplog.AppErr(cliCtx),
	}, nil
}

func (e *env) dial(ctx context.Context) (*dial.InstrumentedClient, error) {
	if e.cfg.TxMgrConfig.RPCURL == "" {
		return nil, fmt.Errorf("flag %s is required", txmgr.RPCURLFlagName)
	}
	c, err := dial.DialEthClientWithTimeout(ctx, dial.DefaultDialTimeout, e.log, e.cfg.TxMgrConfig.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RPC: %w", err)
	}
	return dial.NewInstrumentedClient(c, e.m), nil
}

// progressor draws a bar when stderr is a terminal and logs otherwise.
func (e *env) progressor(description string) ioutil.Progressor {
	if f, ok := e.stderr.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return ioutil.BarProgressor(e.stderr, description)
	}
	return ioutil.NewLogProgressor(e.log, description).Progressor
}

func (e *env) pushMetrics(ctx context.Context) {
	if err := opmetrics.Push(ctx, e.cfg.MetricsConfig, e.m.Registry()); err != nil {
		e.log.Warn("Failed to push metrics", "err", err)
	}
}

// row is one line of table output.
type row interface {
	row() []string
}

func writeOutput[X row](e *env, header []string, items []X) error {
	return write(e, items, header, items)
}

func writeSingle[X row](e *env, header []string, item X) error {
	return write(e, item, header, []X{item})
}

// write encodes value as JSON, or renders the rows of items as a table.
func write[X row](e *env, value any, header []string, items []X) error {
	target := ioutil.ToStdOutOrFile(e.stdout, e.cfg.Outfile)
	if e.cfg.Format != config.FormatTable {
		return jsonutil.WriteJSON(value, target)
	}
	out, err := target()
	if err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}
	renderTable(out, header, items)
	return out.Close()
}

func renderTable[X row](w io.Writer, header []string, items []X) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	for _, item := range items {
		table.Append(item.row())
	}
	table.Render()
}
