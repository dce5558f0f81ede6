package dial

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
)

// DefaultDialTimeout is a default timeout for dialing a client.
const DefaultDialTimeout = 1 * time.Minute

const (
	defaultRetryCount = 5
	defaultRetryTime  = 2 * time.Second
)

// DialEthClientWithTimeout attempts to dial the L1 provider using the provided
// URL. If the dial doesn't complete within defaultDialTimeout seconds, this
// method will return an error.
func DialEthClientWithTimeout(ctx context.Context, timeout time.Duration, log log.Logger, url string) (*ethclient.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c, err := dialRPCClientWithBackoff(ctx, log, url, defaultRetryCount, defaultRetryTime)
	if err != nil {
		return nil, err
	}
	return ethclient.NewClient(c), nil
}

// Dials a JSON-RPC endpoint repeatedly, with a fixed backoff, until a client connection is established.
func dialRPCClientWithBackoff(ctx context.Context, log log.Logger, addr string, attempts int, backoff time.Duration) (*rpc.Client, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		c, err := rpc.DialContext(ctx, addr)
		if err == nil {
			return c, nil
		}
		lastErr = err
		log.Warn("failed to dial address, but may connect later", "addr", addr, "attempt", i+1, "err", err)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("aborted dialing %s: %w", addr, ctx.Err())
		case <-time.After(backoff):
		}
	}
	return nil, fmt.Errorf("failed to dial %s after %d attempts: %w", addr, attempts, lastErr)
}
