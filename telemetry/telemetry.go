// Package telemetry initializes OpenTelemetry tracing and metrics.
// Spans and metrics are exported to rotated files in the profile directory.
// An OTEL collector can still pick them up through the SDK.
package telemetry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/hivespace/hivechat/config"
)

const (
	serviceName  = "hivechat"
	traceFile    = "hivechat_traces.log"
	metricsFile  = "hivechat_metrics.log"
	instrumentor = "github.com/hivespace/hivechat"
)

// Init installs the global tracer and meter providers and returns a tracer,
// a meter and a cleanup func that flushes and closes the export files.
// When telemetry is disabled the globals are left as no-ops.
func Init(ctx context.Context, dir string, cfg config.TelemetryConfig, version string, log logrus.FieldLogger) (trace.Tracer, metric.Meter, func(), error) {
	if !cfg.Enabled {
		return otel.Tracer(instrumentor), otel.Meter(instrumentor), func() {}, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}

	traceOut := &lumberjack.Logger{
		Filename:   filepath.Join(dir, traceFile),
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	traceExporter, err := stdouttrace.New(
		stdouttrace.WithWriter(traceOut),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	metricsOut := &lumberjack.Logger{
		Filename:   filepath.Join(dir, metricsFile),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	metricExporter, err := stdoutmetric.New(
		stdoutmetric.WithWriter(metricsOut),
		stdoutmetric.WithPrettyPrint(),
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}
	interval := time.Duration(cfg.MetricsIntervalSecs) * time.Second
	if interval <= 0 {
		interval = 10 * time.Second
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(interval)),
		),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.WithError(err).Error("failed to shutdown tracer provider")
		}
		if err := mp.Shutdown(ctx); err != nil {
			log.WithError(err).Error("failed to shutdown meter provider")
		}
		if err := traceOut.Close(); err != nil {
			log.WithError(err).Error("failed to close trace file")
		}
		if err := metricsOut.Close(); err != nil {
			log.WithError(err).Error("failed to close metrics file")
		}
	}

	log.WithField("dir", dir).Info("telemetry enabled")
	return tp.Tracer(instrumentor), mp.Meter(instrumentor), cleanup, nil
}
