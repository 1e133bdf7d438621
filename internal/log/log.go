package log

import (
	"log/slog"
	"os"
	"sync"
)

// Package log is a thin key-value logging facade over log/slog so call sites
// stay short: log.Info("msg", "key", val), log.Error("msg", err, "key", val).

var (
	mu      sync.RWMutex
	logger  = newLogger(slog.LevelInfo)
	current = slog.LevelInfo
)

func newLogger(level slog.Level) *slog.Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

// SetLevel adjusts the minimum level. Valid values: "debug", "info", "warn",
// "error"; anything else keeps info.
func SetLevel(level string) {
	mu.Lock()
	defer mu.Unlock()
	current = ParseLevel(level)
	logger = newLogger(current)
}

// ParseLevel converts a level string to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debug(msg string, kv ...any) {
	get().Debug(msg, kv...)
}

func Info(msg string, kv ...any) {
	get().Info(msg, kv...)
}

func Warn(msg string, kv ...any) {
	get().Warn(msg, kv...)
}

// Error logs msg at error level with err prepended to the key-value pairs.
func Error(msg string, err error, kv ...any) {
	extended := append([]any{"err", err}, kv...)
	get().Error(msg, extended...)
}
