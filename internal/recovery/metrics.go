package recovery

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/renderguard/renderguard/internal/recovery"

// Metrics holds the engine's OpenTelemetry instruments. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	failures   metric.Int64Counter
	retries    metric.Int64Counter
	fallbacks  metric.Int64Counter
	recoveries metric.Int64Counter
}

// NewMetrics creates the engine metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	failures, err := meter.Int64Counter(
		"engine.failure.total",
		metric.WithDescription("Component failures handled by the coordinator"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	retries, err := meter.Int64Counter(
		"engine.retry.total",
		metric.WithDescription("Retry attempts executed, by strategy and outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	fallbacks, err := meter.Int64Counter(
		"engine.fallback.total",
		metric.WithDescription("Fallback representations synthesized"),
		metric.WithUnit("{fallback}"),
	)
	if err != nil {
		return nil, err
	}

	recoveries, err := meter.Int64Counter(
		"engine.recovery.total",
		metric.WithDescription("Components recovered by the system recovery pass"),
		metric.WithUnit("{component}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		failures:   failures,
		retries:    retries,
		fallbacks:  fallbacks,
		recoveries: recoveries,
	}, nil
}

func (m *Metrics) recordFailure(domain, classification string) {
	if m == nil {
		return
	}
	m.failures.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("engine.domain", domain),
		attribute.String("engine.classification", classification),
	))
}

func (m *Metrics) recordRetry(domain string, strategy StrategyKind, success bool) {
	if m == nil {
		return
	}
	m.retries.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("engine.domain", domain),
		attribute.String("engine.strategy", string(strategy)),
		attribute.Bool("engine.success", success),
	))
}

func (m *Metrics) recordFallback(domain, tier string) {
	if m == nil {
		return
	}
	m.fallbacks.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("engine.domain", domain),
		attribute.String("engine.tier", tier),
	))
}

func (m *Metrics) recordRecovery(domain string, recovered int) {
	if m == nil {
		return
	}
	m.recoveries.Add(context.Background(), int64(recovered), metric.WithAttributes(
		attribute.String("engine.domain", domain),
	))
}
