package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecisionMetrics_Integration(t *testing.T) {
	provider, err := NewProvider("decision_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	dm, err := NewDecisionMetrics(provider.MeterProvider(), "decision_test")
	require.NoError(t, err)

	ctx := context.Background()
	dm.RecordDecision(ctx, "allow", "")
	dm.RecordDecision(ctx, "allow", "")
	dm.RecordDecision(ctx, "deny", "forbidden")
	dm.RecordDecision(ctx, "deny", "unauthenticated")

	output := scrape(t, provider)

	assertMetricLine(t, output, `decision_test_authorization_decisions_total`, `outcome="allow"`, `2`)
	assertMetricLine(t, output, `decision_test_authorization_decisions_total`,
		`outcome="deny".*reason="forbidden"`, `1`)
	assertMetricLine(t, output, `decision_test_authorization_decisions_total`,
		`outcome="deny".*reason="unauthenticated"`, `1`)
}

func TestNoOpDecisionMetrics(t *testing.T) {
	dm := NewNoOpDecisionMetrics()
	assert.NotPanics(t, func() {
		dm.RecordDecision(context.Background(), "deny", "no_route_match")
	})
}
