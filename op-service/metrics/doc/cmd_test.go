package doc

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/op-create2/op-service/metrics"
)

func testFactory() metrics.Factory {
	f := metrics.With(metrics.NewRegistry())
	f.NewCounterVec(prometheus.CounterOpts{
		Namespace: "test",
		Name:      "things_total",
		Help:      "Count of things",
	}, []string{"kind", "outcome"})
	f.NewGauge(prometheus.GaugeOpts{
		Namespace: "test",
		Name:      "up",
		Help:      "1 if up",
	})
	return f
}

func runDoc(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	app := cli.NewApp()
	app.Writer = &out
	app.Commands = []*cli.Command{{
		Name:        "doc",
		Subcommands: NewSubcommands(testFactory()),
	}}
	err := app.Run(append([]string{"app", "doc", "metrics"}, args...))
	return out.String(), err
}

func TestMarkdown(t *testing.T) {
	out, err := runDoc(t)
	require.NoError(t, err)
	require.Contains(t, out, "METRIC")
	require.Contains(t, out, "test_things_total")
	require.Contains(t, out, "kind,outcome")
	require.Contains(t, out, "gauge")
}

func TestJSON(t *testing.T) {
	out, err := runDoc(t, "--format", "json")
	require.NoError(t, err)
	var documented []metrics.DocumentedMetric
	require.NoError(t, json.Unmarshal([]byte(out), &documented))
	require.Len(t, documented, 2)
	require.Equal(t, "test_things_total", documented[0].Name)
	require.Equal(t, []string{"kind", "outcome"}, documented[0].Labels)
}

func TestInvalidFormat(t *testing.T) {
	_, err := runDoc(t, "--format", "yaml")
	require.ErrorContains(t, err, "invalid format")
}
