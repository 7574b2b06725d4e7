// Package logger provides diagnostic logging on stderr using zerolog.
// Stdout is reserved for line protocol, so nothing here ever writes to it.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"

	defaultTimeFormat = "2006-01-02 15:04:05"
)

// Config selects the level and output format. Debug overrides Level.
type Config struct {
	Level      string `mapstructure:"log_level"`
	Debug      bool   `mapstructure:"debug"`
	Format     string `mapstructure:"log_format"`
	TimeFormat string `mapstructure:"log_time_format"`
}

// Logger is the subset of zerolog used by the orchestrator components
type Logger interface {
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
	WithComponent(component string) Logger
}

type zeroLogger struct {
	zl zerolog.Logger
}

// New builds a Logger writing to w
func New(config Config, w io.Writer) (Logger, error) {
	level := zerolog.InfoLevel

	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(config.Level)
		if err != nil {
			return nil, err
		}
	}

	timeFormat := config.TimeFormat
	if timeFormat == "" {
		timeFormat = defaultTimeFormat
	}

	output := w
	if config.Format != FormatJSON {
		output = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: timeFormat}
	}

	zl := zerolog.New(output).Level(level).With().Timestamp().Logger()

	return &zeroLogger{zl: zl}, nil
}

// Init builds a stderr Logger and installs it as the global zerolog logger
func Init(config Config) (Logger, error) {
	l, err := New(config, os.Stderr)
	if err != nil {
		return nil, err
	}

	log.Logger = l.(*zeroLogger).zl

	return l, nil
}

func (l *zeroLogger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *zeroLogger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *zeroLogger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *zeroLogger) Error() *zerolog.Event { return l.zl.Error() }

func (l *zeroLogger) WithComponent(component string) Logger {
	return &zeroLogger{zl: l.zl.With().Str("component", component).Logger()}
}

// NewTestLogger creates a no-op logger for testing that discards all output
func NewTestLogger() Logger {
	return &zeroLogger{zl: zerolog.New(io.Discard).Level(zerolog.Disabled)}
}
