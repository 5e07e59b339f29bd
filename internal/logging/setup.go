// Package logging builds the slog handlers used across hostbridge.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options selects a handler.
type Options struct {
	// Level is trace, debug, info, warn or error. Unknown levels mean info.
	Level string
	// Format is text (charmbracelet/log) or json.
	Format string
	// Output is stdout, stderr or a file path; empty means stderr.
	Output string
}

// NewHandler builds a handler from opts.
func NewHandler(opts Options) (slog.Handler, error) {
	output := opts.Output
	if output == "" {
		output = "stderr"
	}
	writer, err := CreateWriter(output)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(opts.Format) {
	case "", FormatText:
		return SetupHandlerText(opts.Level, writer), nil
	case FormatJSON:
		return SetupHandlerJSON(opts.Level, writer), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
}

// SetupHandlerText configures a text handler writing to writer.
func SetupHandlerText(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stderr
	}

	reportCaller := false
	reportTimestamp := false
	lvl := log.InfoLevel
	switch strings.ToLower(logLevel) {
	case "trace":
		reportCaller = true
		reportTimestamp = true
		lvl = log.DebugLevel
	case "debug":
		reportTimestamp = true
		lvl = log.DebugLevel
	case "warn", "warning":
		lvl = log.WarnLevel
	case "error":
		lvl = log.ErrorLevel
	}

	return log.NewWithOptions(writer, log.Options{
		ReportTimestamp: reportTimestamp,
		ReportCaller:    reportCaller,
		Level:           lvl,
	})
}

// SetupHandlerJSON configures a JSON handler writing to writer.
func SetupHandlerJSON(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stdout
	}

	level, addSource := ParseLevel(logLevel)
	return slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
	})
}

// ParseLevel maps a level name to a slog level; trace is debug with source locations.
func ParseLevel(logLevel string) (level slog.Level, addSource bool) {
	switch strings.ToLower(logLevel) {
	case "trace":
		return slog.LevelDebug, true
	case "debug":
		return slog.LevelDebug, false
	case "warn", "warning":
		return slog.LevelWarn, false
	case "error":
		return slog.LevelError, false
	default:
		return slog.LevelInfo, false
	}
}

// SetupLogger installs a handler built from opts as the slog default.
func SetupLogger(opts Options) (*slog.Logger, error) {
	handler, err := NewHandler(opts)
	if err != nil {
		return nil, err
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}
