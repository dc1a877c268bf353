package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DecisionMetrics records route authorization outcomes.
type DecisionMetrics interface {
	// RecordDecision counts one decision. outcome is "allow" or "deny"; reason names the
	// denial kind ("unauthenticated", "forbidden", "no_route_match") and is empty on allow.
	RecordDecision(ctx context.Context, outcome, reason string)
}

type decisionMetrics struct {
	decisionCounter metric.Int64Counter
}

// NewDecisionMetrics creates a DecisionMetrics backed by an OpenTelemetry counter named
// "<namespace>_authorization_decisions_total".
func NewDecisionMetrics(meterProvider metric.MeterProvider, namespace string) (DecisionMetrics, error) {
	meter := meterProvider.Meter(namespace)

	decisionCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_authorization_decisions_total", namespace),
		metric.WithDescription("Total number of route authorization decisions"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create decision counter: %w", err)
	}

	return &decisionMetrics{decisionCounter: decisionCounter}, nil
}

// RecordDecision increments the decision counter with outcome and reason labels.
func (d *decisionMetrics) RecordDecision(ctx context.Context, outcome, reason string) {
	d.decisionCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("outcome", outcome),
			attribute.String("reason", reason),
		),
	)
}

// NoOpDecisionMetrics discards decisions when metrics are disabled.
type NoOpDecisionMetrics struct{}

// NewNoOpDecisionMetrics creates a no-op DecisionMetrics implementation.
func NewNoOpDecisionMetrics() DecisionMetrics {
	return &NoOpDecisionMetrics{}
}

// RecordDecision does nothing.
func (n *NoOpDecisionMetrics) RecordDecision(ctx context.Context, outcome, reason string) {}
