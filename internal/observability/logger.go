package observability

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

type ctxKey string

const ctxKeyRequestID ctxKey = "request_id"

// process-wide logger, JSON to stdout. Level comes from
// AGROPLOT_LOG_LEVEL (debug|info|warn|error), defaulting to info.
var logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
	Level: levelFromEnv(),
}))

func Logger() *slog.Logger {
	return logger
}

// WithComponent returns a logger tagged with the emitting component.
func WithComponent(name string) *slog.Logger {
	return logger.With("component", name)
}

// WithRequestID stores a request_id in the context so handlers and
// services share one correlation id per request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// LoggerFromContext adds request_id if present.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	reqID, _ := ctx.Value(ctxKeyRequestID).(string)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("AGROPLOT_LOG_LEVEL")) {
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
