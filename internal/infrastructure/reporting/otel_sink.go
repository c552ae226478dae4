package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
)

const instrumentationName = "github.com/tetuya0525/article-ingest-service/reporting"

// flusher is implemented by the SDK LoggerProvider.
type flusher interface {
	ForceFlush(ctx context.Context) error
}

// OTelSink forwards records to the log aggregator through the OpenTelemetry
// logs pipeline (OTLP/HTTP exporter configured in utils/otel).
type OTelSink struct {
	logger   otellog.Logger
	provider otellog.LoggerProvider
	// FlushOnError pushes ERROR records out immediately instead of waiting
	// for the next batch.
	FlushOnError bool
}

// NewOTelSink creates a sink on provider, or on the global provider when nil.
func NewOTelSink(provider otellog.LoggerProvider) *OTelSink {
	if provider == nil {
		provider = global.GetLoggerProvider()
	}
	return &OTelSink{
		logger:   provider.Logger(instrumentationName),
		provider: provider,
	}
}

// Post emits rec as an OTel log record.
func (s *OTelSink) Post(ctx context.Context, rec Record) error {
	var r otellog.Record
	r.SetTimestamp(rec.Time)
	r.SetObservedTimestamp(rec.Time)
	r.SetSeverity(otelSeverity(rec.Severity))
	r.SetSeverityText(string(rec.Severity))
	r.SetBody(otellog.StringValue(rec.Message))
	r.AddAttributes(toKeyValues(rec.Fields)...)

	s.logger.Emit(ctx, r)

	if s.FlushOnError && rec.Severity == SeverityError {
		if f, ok := s.provider.(flusher); ok {
			if err := f.ForceFlush(ctx); err != nil {
				return fmt.Errorf("flush log exporter: %w", err)
			}
		}
	}
	return ctx.Err()
}

func otelSeverity(s Severity) otellog.Severity {
	switch s {
	case SeverityError:
		return otellog.SeverityError
	case SeverityWarning:
		return otellog.SeverityWarn
	default:
		return otellog.SeverityInfo
	}
}

func toKeyValues(fields map[string]any) []otellog.KeyValue {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kvs := make([]otellog.KeyValue, 0, len(keys))
	for _, k := range keys {
		kvs = append(kvs, otellog.KeyValue{Key: k, Value: toValue(fields[k])})
	}
	return kvs
}

func toValue(v any) otellog.Value {
	switch val := v.(type) {
	case string:
		return otellog.StringValue(val)
	case bool:
		return otellog.BoolValue(val)
	case int:
		return otellog.IntValue(val)
	case int64:
		return otellog.Int64Value(val)
	case float64:
		return otellog.Float64Value(val)
	case nil:
		return otellog.Value{}
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return otellog.StringValue(fmt.Sprintf("%v", val))
		}
		return otellog.StringValue(string(b))
	}
}
