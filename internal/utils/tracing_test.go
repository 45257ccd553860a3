package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestTraceExternalService(t *testing.T) {
	ctx, span := TraceExternalService(context.Background(), "twilio", "create_message")
	defer span.End()

	assert.NotNil(t, ctx)
	assert.Equal(t, span, trace.SpanFromContext(ctx))
}

func TestSpanHelpers(t *testing.T) {
	_, span := TraceExternalService(context.Background(), "postgres", "transfer_funds")
	defer span.End()

	assert.NotPanics(t, func() {
		AddTimingToSpan(span, time.Now().Add(-time.Second))
		RecordErrorInSpan(span, errors.New("boom"), map[string]interface{}{
			"string": "v",
			"int":    1,
			"bool":   true,
			"other":  struct{}{},
		})
		AddSpanAttribute(span, "int64", int64(2))
		AddSpanAttribute(span, "float", 1.5)
	})
}
