// Package logger wraps slog with the handful of structured log shapes the
// services emit.
package logger

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

type Logger struct {
	*slog.Logger
}

// New builds the process logger. Development gets human-readable text at
// debug level; everything else gets JSON at info.
func New(env string) *Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	var handler slog.Handler
	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// HTTPRequest logs a completed HTTP request with timing.
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// SideEffect logs the outcome of a dispatched side effect. Side-effect
// failures are never surfaced to callers, so this log line is the only
// place they become visible.
func (l *Logger) SideEffect(effect string, leadID string, duration time.Duration, err error) {
	if err == nil {
		l.Info("side_effect",
			slog.String("effect", effect),
			slog.String("lead_id", leadID),
			slog.Float64("duration_ms", float64(duration.Milliseconds())),
		)
		return
	}
	l.Warn("side_effect_failed",
		slog.String("effect", effect),
		slog.String("lead_id", leadID),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs a rejected request from a rate-limited client.
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
