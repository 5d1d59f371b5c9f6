// Package logging builds the zerolog logger shared by the CLI and server.
package logging

import (
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/pallet-manifest/internal/config"
)

// New creates a logger writing to out. verbose forces debug level.
// Logs go to stderr in the CLI so that command output on stdout stays clean.
func New(cfg config.LoggingConfig, verbose bool, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}

	var output io.Writer = out
	if !strings.EqualFold(cfg.Format, "json") {
		output = zerolog.ConsoleWriter{Out: out, NoColor: cfg.NoColor, TimeFormat: "15:04:05"}
	}

	return zerolog.New(output).Level(level).With().Timestamp().Str("service", "manifest").Logger()
}
