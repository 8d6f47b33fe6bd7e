// Package tracing installs the OpenTelemetry tracer provider the HTTP
// middleware starts request spans from. Span and trace ids reach the logs
// through internal/log.ContextHandler.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const ServiceName = "auth-service"

// Setup registers a provider and the W3C trace-context propagator as the
// process globals, so an upstream traceparent header continues its trace.
// The returned func flushes and stops the provider.
func Setup(env string) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", ServiceName),
			attribute.String("deployment.environment", env),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown
}
