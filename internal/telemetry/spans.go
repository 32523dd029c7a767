package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TraceRanking starts a span around a search or recommend request
func TraceRanking(ctx context.Context, mode string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer("cadence.ranking").Start(ctx, "ranking."+mode,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(append([]attribute.KeyValue{attribute.String("ranking.mode", mode)}, attrs...)...),
	)
}

// TraceStorage starts a client span for an object storage call
func TraceStorage(ctx context.Context, operation, bucket, key string) (context.Context, trace.Span) {
	return otel.Tracer("cadence.storage").Start(ctx, "s3."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("s3.operation", operation),
			attribute.String("s3.bucket", bucket),
			attribute.String("s3.key", key),
		),
	)
}

// RecordError marks the span failed. A nil error leaves the span untouched.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
