package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/craftlist/craftlist/internal/setup/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the main and database loggers for a component.
// When a log directory is configured, each component gets a timestamped
// session file alongside console output; otherwise logs go to stderr only.
func New(cfg *config.Debug, component string) (*zap.Logger, *zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), level),
	}

	if cfg.LogDir != "" {
		sessionDir := filepath.Join(cfg.LogDir, component)
		if err := os.MkdirAll(sessionDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		logPath := filepath.Join(sessionDir, time.Now().UTC().Format("2006-01-02_15-04-05")+".log")

		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}

		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.Lock(logFile), level))
	}

	main := zap.New(zapcore.NewTee(cores...), zap.AddCaller())

	// Database queries are noisy; the dedicated logger stays at the
	// configured level but carries its own name for filtering.
	dbLogger := main.Named("database")

	return main, dbLogger, nil
}
