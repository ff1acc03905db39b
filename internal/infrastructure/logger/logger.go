// Package logger builds the application zap logger from configuration.
package logger

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/asakaida/datastore/internal/infrastructure/config"
)

// New builds a logger. Development mode writes console output to stdout;
// otherwise the production JSON encoder is used.
func New(cfg *config.LogConfig) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.OutputPaths = []string{"stdout"}
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = level

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
