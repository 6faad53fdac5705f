package logger

import (
	"go.uber.org/zap"
)

// New builds the process logger at the configured verbosity. Components
// derive their own named loggers from it.
func New(verbosity string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(verbosity)
	if err != nil {
		return nil, err
	}
	config.Level = level
	return config.Build()
}
