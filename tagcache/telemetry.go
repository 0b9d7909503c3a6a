package tagcache

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// tracerName identifies this instrumentation scope.
const tracerName = "github.com/jonwraymond/tagcache"

func noopTracer() trace.Tracer {
	return tracenoop.NewTracerProvider().Tracer(tracerName)
}

func (c *Cache) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// recordErr marks the span failed and passes the error through.
func (c *Cache) recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
