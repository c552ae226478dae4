package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
)

const serviceName = "article-ingest"

// Init initializes a JSON logger on stdout, also exporting through OTel when enabled.
func Init(enableOTel bool) *slog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))

	var handler slog.Handler
	if enableOTel {
		handler = NewMultiHandler(os.Stdout, level)
	} else {
		handler = newLocalHandler(os.Stdout, level)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	GlobalContext = NewContextLogger(logger)

	return logger
}

// NewLocal returns a JSON logger writing only to w. Its records never enter
// the OTel log pipeline, even after Init(true).
func NewLocal(w io.Writer) *slog.Logger {
	return slog.New(newLocalHandler(w, parseLevel(os.Getenv("LOG_LEVEL"))))
}

func newLocalHandler(w io.Writer, level slog.Level) slog.Handler {
	return NewTraceContextHandler(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MultiHandler sends each record to every enabled handler.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler writes JSON to w and bridges records into the global OTel LoggerProvider.
func NewMultiHandler(w io.Writer, level slog.Level) *MultiHandler {
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	otelHandler := &levelFilter{
		level: level,
		inner: otelslog.NewHandler(serviceName, otelslog.WithLoggerProvider(global.GetLoggerProvider())),
	}
	return &MultiHandler{
		handlers: []slog.Handler{NewTraceContextHandler(jsonHandler), otelHandler},
	}
}

func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle ignores individual handler errors so one failing sink does not hide the others.
func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			_ = handler.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: next}
}

func (h *MultiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return &MultiHandler{handlers: next}
}

// levelFilter applies the configured minimum level to a handler that has none.
type levelFilter struct {
	level slog.Level
	inner slog.Handler
}

func (f *levelFilter) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= f.level && f.inner.Enabled(ctx, level)
}

func (f *levelFilter) Handle(ctx context.Context, r slog.Record) error {
	return f.inner.Handle(ctx, r)
}

func (f *levelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelFilter{level: f.level, inner: f.inner.WithAttrs(attrs)}
}

func (f *levelFilter) WithGroup(name string) slog.Handler {
	return &levelFilter{level: f.level, inner: f.inner.WithGroup(name)}
}
