package observability

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func newTracerProvider(opts Options) (*sdktrace.TracerProvider, error) {
	res := resource.NewSchemaless(attribute.String("service.name", opts.ServiceName))
	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	if opts.JaegerEndpoint != "" {
		exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(opts.JaegerEndpoint)))
		if err != nil {
			return sdktrace.NewTracerProvider(tpOpts...), err
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exp))
	}
	if opts.SpanProcessor != nil {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(opts.SpanProcessor))
	}

	return sdktrace.NewTracerProvider(tpOpts...), nil
}
