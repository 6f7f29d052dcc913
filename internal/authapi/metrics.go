package authapi

import (
	"context"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type meters struct {
	counter metric.Int64Counter
	hist    metric.Int64Histogram
}

func newMeters(ctx context.Context) (*meters, error) {
	meter := otel.Meter(
		"profile-session/authapi",
		metric.WithInstrumentationVersion(otel.Version()),
	)

	counter, err := meter.Int64Counter(
		"account_api.request_count",
		metric.WithDescription("Outgoing account service request count"),
		metric.WithUnit("request"),
	)
	if err != nil {
		return nil, oops.In("Account API Client").
			WithContext(ctx).
			Wrapf(err, "creating request_count meter")
	}

	hist, err := meter.Int64Histogram(
		"account_api.duration",
		metric.WithDescription("Outgoing account service request duration"),
		metric.WithUnit("milliseconds"),
	)
	if err != nil {
		return nil, oops.In("Account API Client").
			WithContext(ctx).
			Wrapf(err, "creating duration meter")
	}

	return &meters{counter: counter, hist: hist}, nil
}

func (m *meters) record(ctx context.Context, method, path string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}

	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
		attribute.String("outcome", outcome),
	)
	m.counter.Add(ctx, 1, attrs)
	m.hist.Record(ctx, time.Since(start).Milliseconds(), attrs)
}
