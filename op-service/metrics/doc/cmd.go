package doc

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/op-create2/op-service/metrics"
)

var FormatFlag = &cli.StringFlag{
	Name:  "format",
	Value: "markdown",
	Usage: "Output format (json|markdown)",
}

type DocumentedMetrics interface {
	Document() []metrics.DocumentedMetric
}

func NewSubcommands(m DocumentedMetrics) cli.Commands {
	return cli.Commands{
		{
			Name:  "metrics",
			Usage: "Dumps a list of supported metrics to stdout",
			Flags: []cli.Flag{FormatFlag},
			Action: func(ctx *cli.Context) error {
				supportedMetrics := m.Document()
				format := ctx.String(FormatFlag.Name)

				switch format {
				case "markdown":
					return renderMarkdown(ctx.App.Writer, supportedMetrics)
				case "json":
					enc := json.NewEncoder(ctx.App.Writer)
					enc.SetIndent("", "  ")
					return enc.Encode(supportedMetrics)
				default:
					return fmt.Errorf("invalid format: %s", format)
				}
			},
		},
	}
}

func renderMarkdown(w io.Writer, supportedMetrics []metrics.DocumentedMetric) error {
	table := tablewriter.NewWriter(w)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Metric", "Description", "Labels", "Type"})
	var data [][]string
	for _, metric := range supportedMetrics {
		labels := strings.Join(metric.Labels, ",")
		data = append(data, []string{metric.Name, metric.Help, labels, metric.Type})
	}
	table.AppendBulk(data)
	table.Render()
	return nil
}
