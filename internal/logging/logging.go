// Package logging configures the global zerolog logger and hands out
// component-scoped loggers.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global logger with the given level and format.
// If w is nil, os.Stderr is used. Format is "text" or "json".
func Init(level, format string, w ...io.Writer) error {
	var writer io.Writer = os.Stderr
	if len(w) > 0 && w[0] != nil {
		writer = w[0]
	}

	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	switch format {
	case "json":
	default:
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339, NoColor: true}
	}

	log.Logger = zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
	return nil
}

// ParseLevel maps a level name to a zerolog level. Empty means info.
func ParseLevel(level string) (zerolog.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("logging: unknown level %q", level)
	}
	return lvl, nil
}

// New returns a logger with a "component" field for module-scoped logging.
func New(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
