package logger

import (
	"context"
	"log/slog"
)

type contextKey string

// Business context keys.
const (
	RequestIDKey     contextKey = "memlib.request.id"
	ArticleIDKey     contextKey = "memlib.article.id"
	IngestStageKey   contextKey = "memlib.ingest.stage"
	CallerSubjectKey contextKey = "memlib.caller.subject"
)

var businessKeys = []contextKey{RequestIDKey, ArticleIDKey, IngestStageKey, CallerSubjectKey}

// GlobalContext is set by Init.
var GlobalContext *ContextLogger

// ContextLogger decorates log records with business identifiers carried in the context.
type ContextLogger struct {
	logger *slog.Logger
}

// NewContextLogger wraps logger.
func NewContextLogger(logger *slog.Logger) *ContextLogger {
	return &ContextLogger{logger: logger}
}

// WithContext returns a logger carrying every business key present in ctx.
func (cl *ContextLogger) WithContext(ctx context.Context) *slog.Logger {
	var fields []any
	for _, key := range businessKeys {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			fields = append(fields, string(key), v)
		}
	}
	if len(fields) == 0 {
		return cl.logger
	}
	return cl.logger.With(fields...)
}

// FromContext returns a context-decorated logger using GlobalContext, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if GlobalContext == nil {
		return NewContextLogger(slog.Default()).WithContext(ctx)
	}
	return GlobalContext.WithContext(ctx)
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func WithArticleID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ArticleIDKey, id)
}

func WithIngestStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, IngestStageKey, stage)
}

func WithCallerSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, CallerSubjectKey, subject)
}
