// Package testlog routes log output of code under test to the test log.
package testlog

import (
	"bytes"
	"log/slog"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

var useColorInTestLog = os.Getenv("OP_TESTLOG_DISABLE_COLOR") != "true"

// Testing is the subset of testing.TB the loggers use.
type Testing interface {
	Logf(format string, args ...any)
	Helper()
	Name() string
	Cleanup(func())
}

// HandlerMod wraps a handler, e.g. to capture or filter records.
type HandlerMod func(slog.Handler) slog.Handler

// Logger returns a logger which logs to the unit test log of t.
func Logger(t Testing, level slog.Level) log.Logger {
	return LoggerWithHandlerMod(t, level)
}

func LoggerWithHandlerMod(t Testing, level slog.Level, mods ...HandlerMod) log.Logger {
	w := &testWriter{t: t}
	t.Cleanup(w.done)
	var h slog.Handler = log.NewTerminalHandlerWithLevel(w, level, useColorInTestLog)
	for _, mod := range mods {
		h = mod(h)
	}
	return log.NewLogger(h)
}

// testWriter forwards every complete line to t.Logf. Lines written after the
// test finished are dropped, since t.Logf panics at that point.
type testWriter struct {
	t        Testing
	mu       sync.Mutex
	buf      bytes.Buffer
	finished bool
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.finished {
		return len(p), nil
	}
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// incomplete line, keep it for the next write
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		w.t.Logf("%s", line[:len(line)-1])
	}
	return len(p), nil
}

func (w *testWriter) done() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if rest := w.buf.String(); rest != "" {
		w.t.Logf("%s", rest)
		w.buf.Reset()
	}
	w.finished = true
}
