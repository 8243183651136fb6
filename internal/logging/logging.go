package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"streamaccts/internal/config"
)

// New builds the process logger from the Log config group. Unknown levels
// fall back to info, any format other than "text" renders JSON.
func New(cfg config.Log) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if strings.EqualFold(cfg.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.WithField("level", cfg.Level).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
