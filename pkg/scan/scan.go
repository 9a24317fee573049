// Package scan runs the discover, extract and aggregate pipeline shared by the
// dashboard command and the MCP server.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/gitpulse/pkg/activity"
	"github.com/Sumatoshi-tech/gitpulse/pkg/aggregate"
	"github.com/Sumatoshi-tech/gitpulse/pkg/discovery"
	"github.com/Sumatoshi-tech/gitpulse/pkg/observability"
)

// ErrNoRepositories is returned when no scan root contains a repository.
var ErrNoRepositories = errors.New("no git repositories found")

// Request describes one pipeline run.
type Request struct {
	Roots    []string
	Days     int
	MaxRepos int
	Exclude  []string
	Workers  int
}

// Result holds every stage's output.
type Result struct {
	// Repositories lists discovered roots in discovery order.
	Repositories []string

	// Records holds one record per repository that opened, in discovery order.
	Records []*activity.Record

	Report aggregate.Report
}

// Progress is told about pipeline stages. Either field may be nil.
type Progress struct {
	Scanning   func(root string)
	Discovered func(count int)
}

// Scanner wires the pipeline stages together.
type Scanner struct {
	extractor *activity.Extractor
	validate  discovery.Validator
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *observability.ScanMetrics
	progress  Progress
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithExtractor replaces the default libgit2 extractor.
func WithExtractor(extractor *activity.Extractor) Option {
	return func(s *Scanner) { s.extractor = extractor }
}

// WithValidator replaces the repository check used during discovery.
func WithValidator(validate discovery.Validator) Option {
	return func(s *Scanner) { s.validate = validate }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) { s.logger = logger }
}

// WithTracer sets the tracer for pipeline spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Scanner) { s.tracer = tracer }
}

// WithMetrics sets the scan metric instruments.
func WithMetrics(metrics *observability.ScanMetrics) Option {
	return func(s *Scanner) { s.metrics = metrics }
}

// WithProgress sets the stage callbacks.
func WithProgress(progress Progress) Option {
	return func(s *Scanner) { s.progress = progress }
}

// New creates a Scanner. Without WithExtractor, an extractor sharing the
// scanner's logger, tracer and metrics is built.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		logger: slog.New(slog.DiscardHandler),
		tracer: nooptrace.NewTracerProvider().Tracer(""),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.extractor == nil {
		extractorOpts := []activity.Option{
			activity.WithLogger(s.logger),
			activity.WithTracer(s.tracer),
		}

		if s.metrics != nil {
			extractorOpts = append(extractorOpts, activity.WithRecorder(s.metrics))
		}

		s.extractor = activity.NewExtractor(extractorOpts...)
	}

	return s
}

// Run discovers repositories under req.Roots, extracts their activity and
// aggregates it. ErrNoRepositories is returned when discovery finds nothing;
// per-repository failures only shrink Records.
func (s *Scanner) Run(ctx context.Context, req Request) (Result, error) {
	repos, err := s.discover(ctx, req)
	if err != nil {
		return Result{Repositories: repos}, err
	}

	if len(repos) == 0 {
		return Result{}, ErrNoRepositories
	}

	records, err := s.extractor.ExtractAll(ctx, repos, req.Days, req.Workers)
	if err != nil {
		return Result{Repositories: repos, Records: records}, fmt.Errorf("extract activity: %w", err)
	}

	if skipped := len(repos) - len(records); skipped > 0 {
		s.logger.InfoContext(ctx, "repositories skipped", "count", skipped)
	}

	_, span := s.tracer.Start(ctx, "gitpulse.aggregate",
		trace.WithAttributes(attribute.Int("records", len(records))))
	rep := aggregate.Aggregate(records)
	span.SetAttributes(attribute.Int("commits", rep.Summary.TotalCommits))
	span.End()

	return Result{Repositories: repos, Records: records, Report: rep}, nil
}

func (s *Scanner) discover(ctx context.Context, req Request) ([]string, error) {
	opts := discovery.Options{
		Exclude:  discovery.NewExcludeRules(req.Exclude),
		MaxCount: req.MaxRepos,
		Validate: s.validate,
		Logger:   s.logger,
		Tracer:   s.tracer,
	}

	if s.progress.Scanning != nil {
		for _, root := range req.Roots {
			s.progress.Scanning(root)
		}
	}

	repos, err := discovery.DiscoverAll(ctx, req.Roots, opts)
	if err != nil {
		return repos, fmt.Errorf("discover repositories: %w", err)
	}

	s.metrics.RecordDiscovered(ctx, len(repos))

	if s.progress.Discovered != nil {
		s.progress.Discovered(len(repos))
	}

	s.logger.DebugContext(ctx, "discovery finished", "roots", len(req.Roots), "repositories", len(repos))

	return repos, nil
}
