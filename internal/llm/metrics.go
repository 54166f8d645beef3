package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/scout/internal/llm"

// Metrics holds chat call instrumentation.
type Metrics struct {
	meter    metric.Meter
	logger   *zap.Logger
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

// NewMetrics creates a Metrics instance for chat calls.
func NewMetrics(logger *zap.Logger) *Metrics {
	m := &Metrics{
		meter:  otel.Meter(instrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.duration, err = m.meter.Float64Histogram(
		"scout.llm.chat_duration_seconds",
		metric.WithDescription("Duration of LLM chat requests in seconds, labeled by provider"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0, 300.0),
	)
	if err != nil {
		m.logger.Warn("failed to create duration histogram", zap.Error(err))
	}

	m.errors, err = m.meter.Int64Counter(
		"scout.llm.chat_errors_total",
		metric.WithDescription("Total classified chat failures by provider and error kind"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.logger.Warn("failed to create errors counter", zap.Error(err))
	}
}

// RecordChat records one chat call outcome.
func (m *Metrics) RecordChat(ctx context.Context, provider string, duration time.Duration, cerr *Error) {
	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
	}

	if m.duration != nil {
		m.duration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	}

	if cerr != nil && m.errors != nil {
		errAttrs := append(attrs, attribute.String("kind", string(cerr.Kind)))
		m.errors.Add(ctx, 1, metric.WithAttributes(errAttrs...))
	}
}
