// Package logging configures the process-wide zerolog logger used by
// cmd/mrpkernel. The planning kernel itself never imports this
// package; it accepts an optional *zerolog.Logger* via
// mrp.WithLogger so it stays silent and pure by default.
package logging

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init installs the global logger with a console writer over
// os.Stderr, auto-detecting color support, and sets the global level
// from verbose.
func Init(verbose bool) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	isTerminal := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	console := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal,
	}

	log.Logger = zerolog.New(console).With().Timestamp().Logger()
}

// Logger returns the process-wide logger installed by Init.
func Logger() zerolog.Logger {
	return log.Logger
}
