// internal/pkg/logger/logger.go
package logger

import (
	"io"
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
	"github.com/your-org/fitness-inventory/internal/config"
)

// New builds the application logger from the logging configuration.
// When LOG_FILE is set entries go to stdout and to a rotated file.
func New(cfg *config.Config) *logrus.Logger {
	var out io.Writer = os.Stdout
	if fileOut := FileWriter(cfg); fileOut != nil {
		out = io.MultiWriter(os.Stdout, fileOut)
	}
	return NewWithOutput(cfg, out)
}

// FileWriter returns the rotating file sink, or nil when file logging is off
func FileWriter(cfg *config.Config) io.WriteCloser {
	if cfg.Logging.File == "" {
		return nil
	}
	return &lumberjack.Logger{
		Filename:   cfg.Logging.File,
		MaxSize:    cfg.Logging.FileMaxSizeMB,
		MaxBackups: cfg.Logging.FileMaxBackups,
		MaxAge:     cfg.Logging.FileMaxAgeDays,
		Compress:   true,
	}
}

// NewWithOutput builds the application logger writing to out
func NewWithOutput(cfg *config.Config, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	// Set log format based on config
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	// Set log level
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

// Discard returns a logger that drops every entry, used where no logger was wired
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
