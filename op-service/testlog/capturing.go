package testlog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

// CapturedRecord is a log record with the attributes of its logger context.
type CapturedRecord struct {
	slog.Record
	Attrs []slog.Attr
}

// AttrValue returns the value of the named attribute, or nil.
func (r *CapturedRecord) AttrValue(name string) any {
	for _, a := range r.Attrs {
		if a.Key == name {
			return a.Value.Any()
		}
	}
	var found any
	r.Record.Attrs(func(a slog.Attr) bool {
		if a.Key == name {
			found = a.Value.Any()
			return false
		}
		return true
	})
	return found
}

func (r *CapturedRecord) HasAttr(name, value string) bool {
	v := r.AttrValue(name)
	return v != nil && fmt.Sprint(v) == value
}

type captureStore struct {
	mu   sync.Mutex
	logs []*CapturedRecord
}

// CapturingHandler records every log record and passes it on to the wrapped handler.
type CapturingHandler struct {
	handler slog.Handler
	store   *captureStore
	attrs   []slog.Attr
}

func NewCapturingHandler(h slog.Handler) *CapturingHandler {
	return &CapturingHandler{handler: h, store: new(captureStore)}
}

func (c *CapturingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return c.handler.Enabled(ctx, level)
}

func (c *CapturingHandler) Handle(ctx context.Context, r slog.Record) error {
	c.store.mu.Lock()
	c.store.logs = append(c.store.logs, &CapturedRecord{Record: r.Clone(), Attrs: c.attrs})
	c.store.mu.Unlock()
	return c.handler.Handle(ctx, r)
}

func (c *CapturingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CapturingHandler{
		handler: c.handler.WithAttrs(attrs),
		store:   c.store,
		attrs:   append(append([]slog.Attr{}, c.attrs...), attrs...),
	}
}

func (c *CapturingHandler) WithGroup(name string) slog.Handler {
	return &CapturingHandler{handler: c.handler.WithGroup(name), store: c.store, attrs: c.attrs}
}

// Logs returns a snapshot of the records captured so far.
func (c *CapturingHandler) Logs() []*CapturedRecord {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return append([]*CapturedRecord(nil), c.store.logs...)
}

func (c *CapturingHandler) Clear() {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.store.logs = nil
}

// LogFilter matches captured records.
type LogFilter func(r *CapturedRecord) bool

func NewLevelFilter(level slog.Level) LogFilter {
	return func(r *CapturedRecord) bool {
		return r.Level == level
	}
}

func NewMessageContainsFilter(msg string) LogFilter {
	return func(r *CapturedRecord) bool {
		return strings.Contains(r.Message, msg)
	}
}

func NewAttributesFilter(key, value string) LogFilter {
	return func(r *CapturedRecord) bool {
		return r.HasAttr(key, value)
	}
}

// FindLog returns the first captured record matching all filters, or nil.
func (c *CapturingHandler) FindLog(filters ...LogFilter) *CapturedRecord {
	for _, r := range c.Logs() {
		if matchesAll(r, filters) {
			return r
		}
	}
	return nil
}

func (c *CapturingHandler) FindLogs(filters ...LogFilter) []*CapturedRecord {
	var out []*CapturedRecord
	for _, r := range c.Logs() {
		if matchesAll(r, filters) {
			out = append(out, r)
		}
	}
	return out
}

func matchesAll(r *CapturedRecord, filters []LogFilter) bool {
	for _, f := range filters {
		if !f(r) {
			return false
		}
	}
	return true
}

// CaptureLogger returns a test logger that also records everything it logs.
func CaptureLogger(t Testing, level slog.Level) (log.Logger, *CapturingHandler) {
	var capt *CapturingHandler
	logger := LoggerWithHandlerMod(t, level, func(h slog.Handler) slog.Handler {
		capt = NewCapturingHandler(h)
		return capt
	})
	return logger, capt
}
