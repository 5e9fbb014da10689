package cmd

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// buildLogger constructs the run's *zap.Logger per --verbose/--log-json:
// Info level by default, Debug under --verbose; console encoding by
// default, JSON under --log-json for CI consumption.
func buildLogger(verbose, logJSON bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	if logJSON {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true

	return cfg.Build()
}
