// Package logging initializes the shared logrus logger.
package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds a configured logger.
// JSON format for machine ingestion in deployed environments, colorized text
// for development. Invalid levels fall back to info. Logs go to stderr;
// stdout is reserved for the outcome stream.
func New(level, format string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		log.SetLevel(logrus.InfoLevel)
		log.Warnf("invalid log level %q, defaulting to info", level)
	} else {
		log.SetLevel(parsed)
	}

	switch strings.ToLower(format) {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	default:
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601
		})
	}

	return log
}
