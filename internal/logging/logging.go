package logging

import (
	"github.com/sirupsen/logrus"
)

// New builds a JSON-formatted logger at the given level. An unknown level
// falls back to info rather than failing startup.
func New(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	return logger
}
