// Package ctxinterrupt ties context cancellation to process interrupts.
package ctxinterrupt

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var signals = []os.Signal{os.Interrupt, syscall.SIGTERM}

type waiterKey struct{}

// waiter fans out a single interrupt to every context derived from it.
type waiter struct {
	once sync.Once
	done chan struct{}
}

func (w *waiter) start() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)
	go func() {
		<-ch
		signal.Stop(ch)
		close(w.done)
	}()
}

// WithSignalWaiterMain installs a process-wide interrupt waiter on ctx. Call
// it once from main.
func WithSignalWaiterMain(ctx context.Context) context.Context {
	w := &waiter{done: make(chan struct{})}
	w.once.Do(w.start)
	return context.WithValue(ctx, waiterKey{}, w)
}

// WithCancelOnInterrupt returns a context that is cancelled when the process
// is interrupted, or when the parent is done. Without a waiter on ctx it
// listens for signals itself.
func WithCancelOnInterrupt(ctx context.Context) (context.Context, context.CancelFunc) {
	w, ok := ctx.Value(waiterKey{}).(*waiter)
	if !ok {
		return signal.NotifyContext(ctx, signals...)
	}
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-w.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
