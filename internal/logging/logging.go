// Package logging configures the process-wide zerolog logger.
//
// Everything is written to stderr: stdout carries the MCP protocol stream
// and must never receive log output.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvLevel names the environment variable holding the log level.
const EnvLevel = "SHAPE_MCP_LOG_LEVEL"

// ParseLevel maps a level name (debug, info, warn, error, disabled) to a
// zerolog level. An empty name is info.
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	if name == "warning" {
		name = "warn"
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return lvl, nil
}

// Setup points the global logger at w (stderr when nil) with a console
// writer and sets the global level. noColor disables ANSI colors, which is
// what you want when w is a file.
func Setup(level string, w io.Writer, noColor bool) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	if w == nil {
		w = os.Stderr
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, NoColor: noColor})
	return nil
}

// SetupFromEnv is Setup with the level read from SHAPE_MCP_LOG_LEVEL.
func SetupFromEnv() error {
	return Setup(os.Getenv(EnvLevel), os.Stderr, false)
}

// Component returns a child of the global logger tagged with the component
// name.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
