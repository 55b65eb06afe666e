// Package telemetry configures OpenTelemetry tracing for the Lambda
// handlers, exporting spans to X-Ray over UDP.
package telemetry

import (
	"context"
	"fmt"
	"os"

	"github.com/aws-observability/aws-otel-go/exporters/xrayudp"
	lambdadetector "go.opentelemetry.io/contrib/detectors/aws/lambda"
	"go.opentelemetry.io/contrib/propagators/aws/xray"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// NewTracerProvider builds a tracer provider wired for Lambda: X-Ray UDP
// exporter, Lambda resource detection, X-Ray propagation. The provider is
// installed globally before returning.
func NewTracerProvider(ctx context.Context) (*sdktrace.TracerProvider, error) {
	res, err := buildResource(ctx)
	if err != nil {
		return nil, err
	}

	exp, err := xrayudp.NewSpanExporter(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot create xray udp exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exp)),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(xray.Propagator{})

	return tp, nil
}

func buildResource(ctx context.Context) (*resource.Resource, error) {
	detected, err := lambdadetector.NewResourceDetector().Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot detect lambda resource: %w", err)
	}

	serviceName := os.Getenv("AWS_LAMBDA_FUNCTION_NAME")
	if serviceName == "" {
		serviceName = "cloudwatch-toolkit"
	}

	merged, err := resource.Merge(detected, resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return nil, fmt.Errorf("cannot merge otel resources: %w", err)
	}

	return merged, nil
}
