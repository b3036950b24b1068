// Package logger builds the application's logrus logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to out. level and format come from the
// config file; LOG_LEVEL and LOG_FORMAT override them when set. Unknown
// levels fall back to info, unknown formats to text.
func New(level, format string, out io.Writer) *logrus.Logger {
	log := logrus.New()

	if env, ok := os.LookupEnv("LOG_LEVEL"); ok {
		level = env
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if env, ok := os.LookupEnv("LOG_FORMAT"); ok {
		format = env
	}
	if strings.ToLower(format) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    true,
			DisableColors:    out != os.Stdout && out != os.Stderr,
			QuoteEmptyFields: true,
		})
	}

	log.SetOutput(out)
	return log
}
