package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Package-level leveled logger backed by zap.
// - Debugf/Infof/Warnf/Errorf/Fatalf printf-style helpers and Init(level)
// - L() exposes the structured logger for call sites that want fields

var (
	mu    sync.RWMutex
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	base  = zap.New(newCore(zapcore.Lock(os.Stdout)))
	sugar = base.Sugar()
)

func newCore(w zapcore.WriteSyncer) zapcore.Core {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), w, level)
}

// replaceCore swaps the output core; it returns a func restoring the previous one.
func replaceCore(core zapcore.Core) func() {
	mu.Lock()
	defer mu.Unlock()
	prev := base
	base = zap.New(core)
	sugar = base.Sugar()
	return func() {
		mu.Lock()
		defer mu.Unlock()
		base = prev
		sugar = base.Sugar()
	}
}

func parseLevel(l string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Unknown values fall back to info.
func Init(l string) {
	level.SetLevel(parseLevel(l))
}

// L returns the structured logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func s() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Debugf(format string, v ...interface{}) { s().Debugf(format, v...) }
func Infof(format string, v ...interface{})  { s().Infof(format, v...) }
func Warnf(format string, v ...interface{})  { s().Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { s().Errorf(format, v...) }
func Fatalf(format string, v ...interface{}) { s().Fatalf(format, v...) }

func Warn(v string) { s().Warn(v) }

// Sync flushes buffered entries; call before exit.
func Sync() error { return L().Sync() }

// LevelString returns the current level as text.
func LevelString() string {
	return level.Level().String()
}
