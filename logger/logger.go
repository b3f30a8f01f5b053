// Package logger configures the process-wide logrus logger.
package logger

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Setup sets the level and formatter of the standard logrus logger. Production emits JSON;
// everything else gets human readable text. An unknown level falls back to info.
func Setup(level, environment string) {
	log.SetOutput(os.Stdout)

	if environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp: true,
		})
	}

	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.SetLevel(log.InfoLevel)
		log.WithField("level", level).Warn("Unknown log level, using info")
		return
	}
	log.SetLevel(parsed)
}
