// Package logging holds the process-wide structured logger. Initialized
// once at startup; detectors never log (they stay side-effect free), only
// the orchestration layer does.
package logging

import (
	"go.uber.org/zap"
)

var logger *zap.SugaredLogger = zap.NewNop().Sugar()

// Init configures the global logger. Debug switches to the development
// config with full output; otherwise only warnings and errors surface so
// report output stays clean.
func Init(debug bool) error {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.Encoding = "console"

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	logger = l.Sugar()
	return nil
}

// L returns the process logger
func L() *zap.SugaredLogger {
	return logger
}
