// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/loog-project/instrux/internal/config"
)

// Setup is the logger used before the configuration is loaded.
var Setup = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().
	Timestamp().
	Logger()

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
}

// New builds a logger writing to w according to cfg.
func New(cfg config.Log, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.Format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(level), nil
}

// Configure replaces the global logger.
func Configure(cfg config.Log, w io.Writer) error {
	logger, err := New(cfg, w)
	if err != nil {
		return err
	}
	log.Logger = logger
	return nil
}

// Silence discards all global log output, e.g. while a TUI owns the terminal.
func Silence() {
	log.Logger = zerolog.Nop()
}
