package profile

import (
	"context"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type meters struct {
	results   metric.Int64Counter
	freshness metric.Int64Counter
}

func newMeters(ctx context.Context) (*meters, error) {
	meter := otel.Meter(
		"profile-session/profile",
		metric.WithInstrumentationVersion(otel.Version()),
	)

	results, err := meter.Int64Counter(
		"profile.operation_count",
		metric.WithDescription("Completed repository operations by outcome"),
		metric.WithUnit("operation"),
	)
	if err != nil {
		return nil, oops.In("Profile Repository").
			WithContext(ctx).
			Wrapf(err, "creating operation_count meter")
	}

	freshness, err := meter.Int64Counter(
		"profile.refresh_freshness",
		metric.WithDescription("Profile refreshes by cache freshness"),
		metric.WithUnit("refresh"),
	)
	if err != nil {
		return nil, oops.In("Profile Repository").
			WithContext(ctx).
			Wrapf(err, "creating refresh_freshness meter")
	}

	return &meters{results: results, freshness: freshness}, nil
}

func (m *meters) recordResult(ctx context.Context, kind Kind, res Result) {
	outcome := "success"
	if !res.Success {
		outcome = "failure"
	}

	m.results.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", kind.String()),
		attribute.String("outcome", outcome),
	))
}

func (m *meters) recordFreshness(ctx context.Context, f Freshness) {
	m.freshness.Add(ctx, 1, metric.WithAttributes(attribute.String("freshness", f.String())))
}
