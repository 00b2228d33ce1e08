package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// L is the process-wide logger. InitLogger must run before anything logs
// through it.
var L *slog.Logger

type contextKey string

const loggerKey contextKey = "logger"

// InitLogger sets up the global JSON logger at the given level. Called once
// at startup, right after config loading.
func InitLogger(logLevelStr string) {
	level, ok := parseLevel(logLevelStr)
	if !ok {
		level = slog.LevelInfo
		// L is not up yet, so this warning goes through the stock logger.
		slog.Warn("Unknown LOG_LEVEL, defaulting to info", "configuredLevel", logLevelStr)
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	L = slog.New(handler)

	// Route log.Default() and top-level slog calls through the same handler.
	slog.SetDefault(L)
	L.Info("Logger initialized", "level", level.String())
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// FromContext returns the request-scoped logger when one was attached, or
// the global logger otherwise.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return L
}

// ToContext attaches a logger to the context for downstream handlers.
func ToContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}
