package metrics

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/urfave/cli/v2"

	opservice "github.com/mantlenetworkio/op-create2/op-service"
)

const (
	PushGatewayFlagName = "metrics.pushgateway"
	PushJobFlagName     = "metrics.push-job"

	defaultPushJob = "op-create2"
)

func CLIFlags(envPrefix string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    PushGatewayFlagName,
			Usage:   "Prometheus Pushgateway URL to push metrics to when the command finishes. Disabled if empty.",
			EnvVars: opservice.PrefixEnvVar(envPrefix, "METRICS_PUSHGATEWAY"),
		},
		&cli.StringFlag{
			Name:    PushJobFlagName,
			Usage:   "Job name used when pushing metrics",
			Value:   defaultPushJob,
			EnvVars: opservice.PrefixEnvVar(envPrefix, "METRICS_PUSH_JOB"),
		},
	}
}

type CLIConfig struct {
	PushGateway string
	PushJob     string
}

func DefaultCLIConfig() CLIConfig {
	return CLIConfig{
		PushJob: defaultPushJob,
	}
}

func (m CLIConfig) Enabled() bool {
	return m.PushGateway != ""
}

func (m CLIConfig) Check() error {
	if !m.Enabled() {
		return nil
	}
	u, err := url.Parse(m.PushGateway)
	if err != nil {
		return fmt.Errorf("invalid pushgateway url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("pushgateway url must be http(s), got %q", m.PushGateway)
	}
	if m.PushJob == "" {
		return errors.New("push job name must not be empty")
	}
	return nil
}

func ReadCLIConfig(ctx *cli.Context) CLIConfig {
	return CLIConfig{
		PushGateway: ctx.String(PushGatewayFlagName),
		PushJob:     ctx.String(PushJobFlagName),
	}
}
