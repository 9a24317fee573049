package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricReposDiscovered = "gitpulse.repositories.discovered"
	metricReposExtracted  = "gitpulse.repositories.extracted"
	metricReposSkipped    = "gitpulse.repositories.skipped"
	metricCommitsTotal    = "gitpulse.commits.total"
	metricExtractDuration = "gitpulse.extract.duration.seconds"

	attrOutcome = "outcome"
)

// ScanMetrics holds the instruments of the discovery and extraction pipeline.
type ScanMetrics struct {
	discovered      metric.Int64Counter
	extracted       metric.Int64Counter
	skipped         metric.Int64Counter
	commits         metric.Int64Counter
	extractDuration metric.Float64Histogram
}

// NewScanMetrics creates scan instruments from the given meter.
func NewScanMetrics(mt metric.Meter) (*ScanMetrics, error) {
	discovered, err := mt.Int64Counter(metricReposDiscovered,
		metric.WithDescription("Repositories found by discovery"),
		metric.WithUnit("{repository}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricReposDiscovered, err)
	}

	extracted, err := mt.Int64Counter(metricReposExtracted,
		metric.WithDescription("Repositories whose activity was extracted"),
		metric.WithUnit("{repository}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricReposExtracted, err)
	}

	skipped, err := mt.Int64Counter(metricReposSkipped,
		metric.WithDescription("Repositories that could not be opened"),
		metric.WithUnit("{repository}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricReposSkipped, err)
	}

	commits, err := mt.Int64Counter(metricCommitsTotal,
		metric.WithDescription("Commits found inside the window"),
		metric.WithUnit("{commit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommitsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricExtractDuration,
		metric.WithDescription("Per-repository extraction duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricExtractDuration, err)
	}

	return &ScanMetrics{
		discovered:      discovered,
		extracted:       extracted,
		skipped:         skipped,
		commits:         commits,
		extractDuration: duration,
	}, nil
}

// RecordDiscovered adds n discovered repositories. Safe on a nil receiver.
func (sm *ScanMetrics) RecordDiscovered(ctx context.Context, n int) {
	if sm == nil {
		return
	}

	sm.discovered.Add(ctx, int64(n))
}

// RecordExtraction records one extraction attempt. Safe on a nil receiver.
func (sm *ScanMetrics) RecordExtraction(ctx context.Context, elapsed time.Duration, commits int, ok bool) {
	if sm == nil {
		return
	}

	outcome := "ok"

	if ok {
		sm.extracted.Add(ctx, 1)
		sm.commits.Add(ctx, int64(commits))
	} else {
		outcome = "skipped"

		sm.skipped.Add(ctx, 1)
	}

	sm.extractDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String(attrOutcome, outcome)))
}
