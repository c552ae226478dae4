// Package reporting writes structured error events to the local log and
// forwards them to the central log aggregator on a best-effort basis.
package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/tetuya0525/article-ingest-service/internal/domain"
	"github.com/tetuya0525/article-ingest-service/metrics"
)

// Severity of a reported event.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

const redacted = "[REDACTED]"

var sensitiveKeys = []string{"authorization", "token", "secret", "password", "credential", "cookie"}

// Record is one reported event as delivered to a RemoteSink.
type Record struct {
	Time     time.Time
	Severity Severity
	Message  string
	Fields   map[string]any
}

// RemoteSink delivers records to the log aggregator.
type RemoteSink interface {
	Post(ctx context.Context, rec Record) error
}

// Options configures a Reporter.
type Options struct {
	// ForwardTimeout bounds each remote delivery.
	ForwardTimeout time.Duration
	// MaxPayloadBytes caps the encoded size of any single field value.
	MaxPayloadBytes int
}

// Reporter fans events out to the local log and an optional remote sink.
type Reporter struct {
	local  *slog.Logger
	remote RemoteSink
	opts   Options
	now    func() time.Time
	wg     sync.WaitGroup
}

// New creates a Reporter. remote may be nil.
func New(local *slog.Logger, remote RemoteSink, opts Options) *Reporter {
	if local == nil {
		local = slog.Default()
	}
	if opts.ForwardTimeout <= 0 {
		opts.ForwardTimeout = 2 * time.Second
	}
	if opts.MaxPayloadBytes <= 0 {
		opts.MaxPayloadBytes = 16 * 1024
	}
	return &Reporter{local: local, remote: remote, opts: opts, now: time.Now}
}

// Report logs the event locally and forwards it in the background.
// It never fails and never waits for the aggregator.
func (r *Reporter) Report(ctx context.Context, severity Severity, message string, fields map[string]any) {
	rec := Record{
		Time:     r.now().UTC(),
		Severity: severity,
		Message:  message,
		Fields:   r.sanitize(fields),
	}

	r.local.LogAttrs(ctx, levelFor(severity), message, recordAttrs(rec)...)

	if r.remote == nil {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opts.ForwardTimeout)
		defer cancel()

		if err := r.remote.Post(fctx, rec); err != nil {
			metrics.RecordReportForward("error")
			r.local.WarnContext(ctx, "failed to forward log record",
				"error", fmt.Errorf("%w: %w", domain.ErrReporting, err),
				"original_message", message,
			)
			return
		}
		metrics.RecordReportForward("success")
	}()
}

// Close waits for in-flight forwards or until ctx is done.
func (r *Reporter) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reporter) sanitize(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if isSensitiveKey(k) {
			out[k] = redacted
			continue
		}
		out[k] = truncate(redactValue(v), r.opts.MaxPayloadBytes)
	}
	return out
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func redactValue(v any) any {
	switch val := v.(type) {
	case string:
		if len(val) >= 7 && strings.EqualFold(val[:7], "bearer ") {
			return redacted
		}
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if isSensitiveKey(k) {
				out[k] = redacted
				continue
			}
			out[k] = redactValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = redactValue(inner)
		}
		return out
	case error:
		return val.Error()
	default:
		return val
	}
}

func truncate(v any, limit int) any {
	if s, ok := v.(string); ok {
		if len(s) > limit {
			return cut(s, limit) + "...(truncated)"
		}
		return s
	}
	switch v.(type) {
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		if len(b) > limit {
			return cut(string(b), limit) + "...(truncated)"
		}
	}
	return v
}

// cut shortens s to at most limit bytes without splitting a rune.
func cut(s string, limit int) string {
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

func levelFor(s Severity) slog.Level {
	switch s {
	case SeverityError:
		return slog.LevelError
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func recordAttrs(rec Record) []slog.Attr {
	keys := make([]string, 0, len(rec.Fields))
	for k := range rec.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys)+1)
	attrs = append(attrs, slog.String("severity", string(rec.Severity)))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, rec.Fields[k]))
	}
	return attrs
}
