package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends all metrics gathered from registry to the configured
// Pushgateway. It is a no-op when pushing is disabled.
func Push(ctx context.Context, cfg CLIConfig, registry *prometheus.Registry) error {
	if !cfg.Enabled() {
		return nil
	}
	if err := push.New(cfg.PushGateway, cfg.PushJob).Gatherer(registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", cfg.PushGateway, err)
	}
	return nil
}
