package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new zap logger. If logDir is non-empty a timestamped log
// file is created there and receives a copy of all output.
func New(development bool, logDir string) (*zap.Logger, error) {
	var cfg zap.Config

	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		name := fmt.Sprintf("run_%s.log", time.Now().Format("20060102_150405"))
		cfg.OutputPaths = append(cfg.OutputPaths, filepath.Join(logDir, name))
	}

	return cfg.Build()
}

// Must creates a logger or panics.
func Must(development bool, logDir string) *zap.Logger {
	log, err := New(development, logDir)
	if err != nil {
		panic(err)
	}
	return log
}
