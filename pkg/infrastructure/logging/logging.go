// Package logging builds the process logger: a logr.Logger backed by zap.
package logging

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels passed to logr's V
const (
	DEBUG = 1
	TRACE = 2
)

// NewLogger returns a logger that emits V(n) lines for n ≤ verbosity.
// Development mode switches to zap's human-readable console encoder.
func NewLogger(verbosity int, development bool) (logr.Logger, error) {
	if verbosity < 0 {
		return logr.Discard(), fmt.Errorf("verbosity cannot be negative, got %d", verbosity)
	}
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))
	cfg.DisableStacktrace = !development

	z, err := cfg.Build()
	if err != nil {
		return logr.Discard(), fmt.Errorf("failed to build zap logger: %w", err)
	}
	return zapr.NewLogger(z), nil
}
