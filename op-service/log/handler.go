package log

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/big"
	"reflect"
	"time"

	"github.com/holiman/uint256"

	elog "github.com/ethereum/go-ethereum/log"
)

const (
	timeFormatMs                 = "2006-01-02T15:04:05.000-0700"
	levelMaxVerbosity slog.Level = math.MinInt
)

type leveler struct{ minLevel slog.Level }

func (l *leveler) Level() slog.Level {
	return l.minLevel
}

// JSONMsHandler logs JSON with millisecond timestamps under the "t" key.
func JSONMsHandler(wr io.Writer) slog.Handler {
	return JSONMsHandlerWithLevel(wr, levelMaxVerbosity)
}

func JSONMsHandlerWithLevel(wr io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: msReplacer{logfmt: false}.replace,
		Level:       &leveler{level},
	})
}

// LogfmtMsHandler logs logfmt with millisecond timestamps under the "t" key.
func LogfmtMsHandler(wr io.Writer) slog.Handler {
	return LogfmtMsHandlerWithLevel(wr, levelMaxVerbosity)
}

func LogfmtMsHandlerWithLevel(wr io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: msReplacer{logfmt: true}.replace,
		Level:       &leveler{level},
	})
}

type msReplacer struct {
	logfmt bool
}

func (r msReplacer) replace(_ []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		if attr.Value.Kind() != slog.KindTime {
			break
		}
		if r.logfmt {
			return slog.String("t", attr.Value.Time().Format(timeFormatMs))
		}
		return slog.Attr{Key: "t", Value: attr.Value}
	case slog.LevelKey:
		if l, ok := attr.Value.Any().(slog.Level); ok {
			return slog.Any("lvl", elog.LevelString(l))
		}
	}

	switch v := attr.Value.Any().(type) {
	case time.Time:
		if r.logfmt {
			attr.Value = slog.StringValue(v.Format(timeFormatMs))
		}
	case *big.Int:
		attr.Value = slog.StringValue(nilSafe(v == nil, v))
	case *uint256.Int:
		if v == nil {
			attr.Value = slog.StringValue("<nil>")
		} else {
			attr.Value = slog.StringValue(v.Dec())
		}
	case fmt.Stringer:
		isNil := v == nil || (reflect.ValueOf(v).Kind() == reflect.Pointer && reflect.ValueOf(v).IsNil())
		attr.Value = slog.StringValue(nilSafe(isNil, v))
	}
	return attr
}

func nilSafe(isNil bool, v fmt.Stringer) string {
	if isNil {
		return "<nil>"
	}
	return v.String()
}
