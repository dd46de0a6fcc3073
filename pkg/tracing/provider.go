package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Ramsey-B/clover/pkg/tracing/exporters"
)

// Setup builds an SDK tracer provider backed by the given OTLP config,
// registers it globally and wires the package tracer. The returned shutdown
// func flushes pending spans. An empty endpoint gets a no-op exporter: spans
// and trace ids still exist for log correlation, nothing is shipped.
func Setup(ctx context.Context, serviceName string, cfg exporters.OTLPConfig) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter = exporters.NewNoopExporter()
	if cfg.Endpoint != "" {
		var err error
		exporter, err = exporters.NewOTLPExporter(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	SetTracer(tp.Tracer(serviceName))

	return tp.Shutdown, nil
}
