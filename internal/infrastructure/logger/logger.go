package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var current atomic.Pointer[zerolog.Logger]

// GetLogger returns the process logger. Before New runs it is an info level
// console logger, which is what tests and early startup code see.
func GetLogger() zerolog.Logger {
	if log := current.Load(); log != nil {
		return *log
	}
	fallback := build(consoleWriter(os.Stdout), zerolog.InfoLevel)
	current.CompareAndSwap(nil, &fallback)
	return *current.Load()
}

// New builds the logger for level and format ("json" or "console") and
// installs it as the process logger.
func New(level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level %q: %w", level, err)
	}

	var out io.Writer
	switch strings.ToLower(format) {
	case "json":
		out = os.Stdout
	case "console", "":
		out = consoleWriter(os.Stdout)
	default:
		return zerolog.Logger{}, fmt.Errorf("unsupported log format %q", format)
	}

	zerolog.SetGlobalLevel(lvl)
	log := build(out, lvl)
	current.Store(&log)
	return log, nil
}

func build(out io.Writer, lvl zerolog.Level) zerolog.Logger {
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "proposal-api").Logger()
}

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
}
