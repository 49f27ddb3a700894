package logx

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int8

const (
	LevelDebug Level = iota - 1
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu     sync.RWMutex
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger = build(false)
)

func build(development bool) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = level

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// Configure swaps the encoder for the given environment
func Configure(env string) {
	mu.Lock()
	defer mu.Unlock()
	_ = logger.Sync()
	logger = build(env == "development" || env == "dev")
}

func SetLevel(l Level) {
	level.SetLevel(zapcore.Level(l))
}

// ParseLevel maps a LOG_LEVEL value, defaulting to info
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// With returns a logger carrying structured key/value pairs
func With(keysAndValues ...any) *zap.SugaredLogger {
	return get().With(keysAndValues...)
}

func Sync() { _ = get().Sync() }

func Debug(args ...any)                 { get().Debug(args...) }
func Debugf(format string, args ...any) { get().Debugf(format, args...) }
func Info(args ...any)                  { get().Info(args...) }
func Infof(format string, args ...any)  { get().Infof(format, args...) }
func Warn(args ...any)                  { get().Warn(args...) }
func Warnf(format string, args ...any)  { get().Warnf(format, args...) }
func Error(args ...any)                 { get().Error(args...) }
func Errorf(format string, args ...any) { get().Errorf(format, args...) }
func Fatal(args ...any)                 { get().Fatal(args...) }
func Fatalf(format string, args ...any) { get().Fatalf(format, args...) }
