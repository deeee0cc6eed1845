// Package logging configures the logrus standard logger for sitepatch.
package logging

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// Setup points the standard logger at w with the given level and format
// ("text" or "json").
func Setup(w io.Writer, level, format string) error {
	ll, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	switch format {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("unsupported log format %q", format)
	}

	log.SetOutput(w)
	log.SetLevel(ll)
	return nil
}
