package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AuthMetrics records the outcome and latency of authentication service operations.
//
// operation is one of "register", "login", "authenticate" or "identity_get". outcome is
// "success" or a low-cardinality failure class such as "invalid_credential" or
// "expired_token"; it never carries a subject or a token.
type AuthMetrics interface {
	RecordOperation(ctx context.Context, operation, outcome string, duration time.Duration)
}

type authMetrics struct {
	operations metric.Int64Counter
	latency    metric.Float64Histogram
}

// NewAuthMetrics creates "<namespace>_auth_operations_total" and
// "<namespace>_auth_operation_duration_seconds".
func NewAuthMetrics(meterProvider metric.MeterProvider, namespace string) (AuthMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operations, err := meter.Int64Counter(
		fmt.Sprintf("%s_auth_operations_total", namespace),
		metric.WithDescription("Total number of authentication service operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth operation counter: %w", err)
	}

	// Credential hashing dominates register and login, so buckets reach well past a second.
	latency, err := meter.Float64Histogram(
		fmt.Sprintf("%s_auth_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of authentication service operations in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth duration histogram: %w", err)
	}

	return &authMetrics{operations: operations, latency: latency}, nil
}

func (a *authMetrics) RecordOperation(ctx context.Context, operation, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	a.operations.Add(ctx, 1, attrs)
	a.latency.Record(ctx, duration.Seconds(), attrs)
}

// NoOpAuthMetrics discards every observation.
type NoOpAuthMetrics struct{}

// NewNoOpAuthMetrics is used when metrics are disabled.
func NewNoOpAuthMetrics() AuthMetrics {
	return &NoOpAuthMetrics{}
}

func (n *NoOpAuthMetrics) RecordOperation(ctx context.Context, operation, outcome string, duration time.Duration) {
}
