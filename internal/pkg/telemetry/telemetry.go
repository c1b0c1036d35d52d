// Package telemetry provides tracing for operations.
//
// The CLI runs with a noop tracer by default, tests use NewForTest
// and assert the recorded spans.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/bluecarto/geoloader"

type Telemetry interface {
	Tracer() Tracer
}

type Tracer interface {
	Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, Span)
}

func NewNop() Telemetry {
	return New(noop.NewTracerProvider())
}

func New(provider trace.TracerProvider) Telemetry {
	return &telemetry{tracer: &tracer{tracer: provider.Tracer(instrumentationName)}}
}

type telemetry struct {
	tracer Tracer
}

func (t *telemetry) Tracer() Tracer {
	return t.tracer
}

type tracer struct {
	tracer trace.Tracer
}

func (t *tracer) Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, Span) {
	ctx, s := t.tracer.Start(ctx, spanName, opts...)
	return ctx, &span{span: s}
}
