package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// SetupOTelSDK bootstraps the OpenTelemetry pipeline, exporting to endpoint over OTLP gRPC.
//
// With an empty endpoint nothing is installed and the global no-op providers stay in place.
// If it does not return an error, make sure to call shutdown for proper cleanup.
// forceFlush exports everything buffered so far and leaves the providers running.
func SetupOTelSDK(ctx context.Context, serviceName, endpoint string) (shutdown, forceFlush func(context.Context) error, err error) {
	var shutdownFuncs []func(context.Context) error
	var flushFuncs []func(context.Context) error

	// shutdown calls cleanup functions registered via shutdownFuncs.
	// The errors from the calls are joined.
	// Each registered cleanup will be invoked once.
	shutdown = func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		shutdownFuncs = nil
		flushFuncs = nil
		return err
	}

	forceFlush = func(ctx context.Context) error {
		var err error
		for _, fn := range flushFuncs {
			err = errors.Join(err, fn(ctx))
		}
		return err
	}

	if endpoint == "" {
		return shutdown, forceFlush, nil
	}

	// handleErr calls shutdown for cleanup and makes sure that all errors are returned.
	handleErr := func(inErr error) {
		err = errors.Join(inErr, shutdown(ctx))
	}

	res, err := newResource(serviceName)
	if err != nil {
		return shutdown, forceFlush, err
	}

	otel.SetTextMapPropagator(propagation.TraceContext{})

	meterProvider, err := newMeterProvider(ctx, res, endpoint)
	if err != nil {
		handleErr(err)
		return shutdown, forceFlush, err
	}
	shutdownFuncs = append(shutdownFuncs, meterProvider.Shutdown)
	flushFuncs = append(flushFuncs, meterProvider.ForceFlush)
	otel.SetMeterProvider(meterProvider)

	tracerProvider, err := newTracerProvider(ctx, res, endpoint)
	if err != nil {
		handleErr(err)
		return shutdown, forceFlush, err
	}
	shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)
	flushFuncs = append(flushFuncs, tracerProvider.ForceFlush)
	otel.SetTracerProvider(tracerProvider)

	return shutdown, forceFlush, err
}

func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			resource.Default().SchemaURL(),
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

func newMeterProvider(ctx context.Context, res *resource.Resource, endpoint string) (*metric.MeterProvider, error) {
	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithInsecure(),
		otlpmetricgrpc.WithEndpointURL(endpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	meterProvider := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(metricExporter)),
		metric.WithResource(res),
	)
	return meterProvider, nil
}

func newTracerProvider(ctx context.Context, res *resource.Resource, endpoint string) (*sdktrace.TracerProvider, error) {
	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithEndpointURL(endpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	return tracerProvider, nil
}
