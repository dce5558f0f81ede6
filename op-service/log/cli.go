package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/ethereum/go-ethereum/log"

	opservice "github.com/mantlenetworkio/op-create2/op-service"
)

const (
	LevelFlagName  = "log.level"
	FormatFlagName = "log.format"
	ColorFlagName  = "log.color"
)

// CLIFlags creates flag definitions for the logging utils.
func CLIFlags(envPrefix string) []cli.Flag {
	return []cli.Flag{
		&cli.GenericFlag{
			Name:    LevelFlagName,
			Usage:   "The lowest log level that will be output",
			Value:   NewLevelFlagValue(log.LevelInfo),
			EnvVars: opservice.PrefixEnvVar(envPrefix, "LOG_LEVEL"),
		},
		&cli.GenericFlag{
			Name:    FormatFlagName,
			Usage:   "Format the log output. Supported formats: 'text', 'terminal', 'logfmt', 'logfmtms', 'json', 'jsonms'",
			Value:   NewFormatFlagValue(FormatText),
			EnvVars: opservice.PrefixEnvVar(envPrefix, "LOG_FORMAT"),
		},
		&cli.BoolFlag{
			Name:    ColorFlagName,
			Usage:   "Color the log output if in terminal mode",
			EnvVars: opservice.PrefixEnvVar(envPrefix, "LOG_COLOR"),
		},
	}
}

// LevelFlagValue is a cli.Generic holding a log level.
type LevelFlagValue slog.Level

func NewLevelFlagValue(lvl slog.Level) *LevelFlagValue {
	return (*LevelFlagValue)(&lvl)
}

func (fv *LevelFlagValue) Set(value string) error {
	lvl, err := LevelFromString(value)
	if err != nil {
		return err
	}
	*fv = LevelFlagValue(lvl)
	return nil
}

// LevelFromString parses a log level name. Besides the slog names it accepts
// "trace" and "crit", and the short forms geth prints in terminal output.
func LevelFromString(lvlString string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(lvlString)) {
	case "trace", "trce":
		return log.LevelTrace, nil
	case "dbug":
		return log.LevelDebug, nil
	case "eror":
		return log.LevelError, nil
	case "crit":
		return log.LevelCrit, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(lvlString))); err != nil {
		return 0, fmt.Errorf("unknown level: %q", lvlString)
	}
	return lvl, nil
}

func (fv LevelFlagValue) String() string {
	return slog.Level(fv).String()
}

func (fv LevelFlagValue) Level() slog.Level {
	return slog.Level(fv)
}

// Clone returns an independent copy, so flag definitions can be reused across apps.
func (fv LevelFlagValue) Clone() any {
	return NewLevelFlagValue(slog.Level(fv))
}

type FormatType string

const (
	FormatText     FormatType = "text"
	FormatTerminal FormatType = "terminal"
	FormatLogFmt   FormatType = "logfmt"
	FormatLogFmtMs FormatType = "logfmtms"
	FormatJSON     FormatType = "json"
	FormatJSONMs   FormatType = "jsonms"
)

var formatTypes = []FormatType{FormatText, FormatTerminal, FormatLogFmt, FormatLogFmtMs, FormatJSON, FormatJSONMs}

// NewHandler creates a slog handler for the format, filtering below lvl.
func (ft FormatType) NewHandler(wr io.Writer, lvl slog.Level, color bool) slog.Handler {
	switch ft {
	case FormatJSON:
		return log.JSONHandlerWithLevel(wr, lvl)
	case FormatJSONMs:
		return JSONMsHandlerWithLevel(wr, lvl)
	case FormatLogFmt:
		return log.LogfmtHandlerWithLevel(wr, lvl)
	case FormatLogFmtMs:
		return LogfmtMsHandlerWithLevel(wr, lvl)
	case FormatTerminal:
		return log.NewTerminalHandlerWithLevel(wr, lvl, color)
	default:
		return log.NewTerminalHandlerWithLevel(wr, lvl, false)
	}
}

// FormatFlagValue is a cli.Generic holding a log format.
type FormatFlagValue FormatType

func NewFormatFlagValue(fmtType FormatType) *FormatFlagValue {
	return (*FormatFlagValue)(&fmtType)
}

func (fv *FormatFlagValue) Set(value string) error {
	for _, ft := range formatTypes {
		if string(ft) == value {
			*fv = FormatFlagValue(ft)
			return nil
		}
	}
	return fmt.Errorf("unrecognized log-format: %q", value)
}

func (fv FormatFlagValue) String() string {
	return string(fv)
}

func (fv FormatFlagValue) FormatType() FormatType {
	return FormatType(fv)
}

func (fv FormatFlagValue) Clone() any {
	return NewFormatFlagValue(FormatType(fv))
}

type CLIConfig struct {
	Level  slog.Level
	Color  bool
	Format FormatType
}

// DefaultCLIConfig returns the default config, with colors enabled when
// stderr is a terminal.
func DefaultCLIConfig() CLIConfig {
	return CLIConfig{
		Level:  log.LevelInfo,
		Format: FormatText,
		Color:  isTerminal(os.Stderr),
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ReadCLIConfig reads the logging config from the command line context.
func ReadCLIConfig(ctx *cli.Context) CLIConfig {
	cfg := DefaultCLIConfig()
	if lvl, ok := ctx.Generic(LevelFlagName).(*LevelFlagValue); ok && lvl != nil {
		cfg.Level = lvl.Level()
	}
	if ft, ok := ctx.Generic(FormatFlagName).(*FormatFlagValue); ok && ft != nil {
		cfg.Format = ft.FormatType()
	}
	if ctx.IsSet(ColorFlagName) {
		cfg.Color = ctx.Bool(ColorFlagName)
	}
	return cfg
}

// NewLogger creates a logger writing to wr as configured.
func NewLogger(wr io.Writer, cfg CLIConfig) log.Logger {
	return log.NewLogger(cfg.Format.NewHandler(wr, cfg.Level, cfg.Color))
}

// AppErr returns the writer that diagnostics of the app go to. Command
// results are written to the app's regular writer, so logs stay out of them.
func AppErr(ctx *cli.Context) io.Writer {
	if ctx == nil || ctx.App == nil || ctx.App.ErrWriter == nil {
		return os.Stderr
	}
	return ctx.App.ErrWriter
}

// SetGlobalLogHandler sets the log handler of the geth root logger.
func SetGlobalLogHandler(h slog.Handler) {
	log.SetDefault(log.NewLogger(h))
}

// SetupDefaults routes the root logger to stderr, until a command configures logging.
func SetupDefaults() {
	SetGlobalLogHandler(log.NewTerminalHandlerWithLevel(os.Stderr, log.LevelInfo, isTerminal(os.Stderr)))
}
