package utils

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "app-wallet"

// TraceExternalService starts a span around a call to an external provider (SMS, Verify, ledger)
func TraceExternalService(ctx context.Context, serviceName, operation string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, serviceName+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.operation", operation),
		))
}

// AddTimingToSpan adds the time elapsed since startTime to span
func AddTimingToSpan(span trace.Span, startTime time.Time) {
	span.SetAttributes(attribute.Int64("duration_ms", time.Since(startTime).Milliseconds()))
}

// RecordErrorInSpan marks span as failed and attaches extra attributes
func RecordErrorInSpan(span trace.Span, err error, attrs map[string]interface{}) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	for k, v := range attrs {
		AddSpanAttribute(span, k, v)
	}
}

// AddSpanAttribute adds a single attribute to a span
func AddSpanAttribute(span trace.Span, key string, value interface{}) {
	switch val := value.(type) {
	case string:
		span.SetAttributes(attribute.String(key, val))
	case int:
		span.SetAttributes(attribute.Int(key, val))
	case int64:
		span.SetAttributes(attribute.Int64(key, val))
	case bool:
		span.SetAttributes(attribute.Bool(key, val))
	case float64:
		span.SetAttributes(attribute.Float64(key, val))
	default:
		span.SetAttributes(attribute.String(key, "unknown_type"))
	}
}
