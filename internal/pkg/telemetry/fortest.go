package telemetry

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// ForTest records finished spans, so tests can assert them.
type ForTest struct {
	Telemetry
	exporter *tracetest.InMemoryExporter
}

func NewForTest() *ForTest {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	return &ForTest{Telemetry: New(provider), exporter: exporter}
}

func (t *ForTest) Spans() tracetest.SpanStubs {
	return t.exporter.GetSpans()
}

func (t *ForTest) SpanNames() []string {
	var names []string
	for _, s := range t.Spans() {
		names = append(names, s.Name)
	}
	return names
}
