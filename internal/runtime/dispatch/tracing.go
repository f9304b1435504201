package dispatch

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/drblury/pageflow/dispatch"

func startPublishSpan(ctx context.Context, source, destination string) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return otel.Tracer(tracerName).Start(ctx, "PublishPageView",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.destination.name", destination),
			attribute.String("pageflow.source", source),
		),
	)
}

func endPublishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// injectTraceContext writes the span context of ctx into md so the consumer
// side can continue the trace.
func injectTraceContext(ctx context.Context, md message.Metadata) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(md))
}
