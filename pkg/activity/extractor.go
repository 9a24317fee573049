package activity

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// Recorder receives one observation per extraction attempt.
type Recorder interface {
	RecordExtraction(ctx context.Context, elapsed time.Duration, commits int, ok bool)
}

// Extractor turns a repository root into a Record.
type Extractor struct {
	open     Opener
	logger   *slog.Logger
	tracer   trace.Tracer
	recorder Recorder
	now      func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithOpener replaces the libgit2-backed Source.
func WithOpener(open Opener) Option {
	return func(e *Extractor) { e.open = open }
}

// WithLogger sets the logger used for per-repository soft failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// WithTracer wraps every extraction in a span.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Extractor) { e.tracer = tracer }
}

// WithRecorder sets the metrics sink.
func WithRecorder(recorder Recorder) Option {
	return func(e *Extractor) { e.recorder = recorder }
}

// WithClock overrides time.Now for computing the window cutoff.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// NewExtractor creates an Extractor reading repositories through libgit2.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		open:   OpenGit,
		logger: slog.New(slog.DiscardHandler),
		tracer: nooptrace.NewTracerProvider().Tracer(""),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Cutoff returns the oldest commit time included in a window of days ending at now.
func Cutoff(now time.Time, days int) time.Time {
	return now.Local().AddDate(0, 0, -days)
}

// Extract builds the Record of the repository at path for the last days days.
//
// A path that does not open as a repository returns ErrNotRepository.
// Failures while walking history or diffing the latest commit are logged and
// leave the affected fields at what was gathered so far. The only other error
// is context cancellation.
func (e *Extractor) Extract(ctx context.Context, path string, days int) (*Record, error) {
	ctx, span := e.tracer.Start(ctx, "gitpulse.extract",
		trace.WithAttributes(attribute.String("repo.path", path), attribute.Int("window.days", days)))
	defer span.End()

	started := time.Now()

	record, err := e.extract(ctx, path, days)

	ok := err == nil
	commits := 0

	if ok {
		commits = record.TotalCommits
		span.SetAttributes(attribute.Int("commits", commits))
	} else {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	if e.recorder != nil {
		e.recorder.RecordExtraction(ctx, time.Since(started), commits, ok)
	}

	return record, err
}

func (e *Extractor) extract(ctx context.Context, path string, days int) (*Record, error) {
	src, err := e.open(path)
	if err != nil {
		e.logger.DebugContext(ctx, "skipping repository", "path", path, "error", err)

		return nil, err
	}
	defer src.Close()

	record := newRecord(filepath.Base(path), path)
	cutoff := Cutoff(e.now(), days)

	walkErr := src.Walk(ctx, cutoff, func(c Commit) error {
		if c.When.Before(cutoff) {
			return nil
		}

		record.TotalCommits++
		record.Daily[DateKey(c.When)]++

		if len(record.Commits) < RecentCommitLimit {
			c.When = c.When.Local().Truncate(time.Second)
			record.Commits = append(record.Commits, c)
		}

		return nil
	})
	if isCanceled(walkErr) {
		return nil, walkErr
	}

	if walkErr != nil {
		e.logger.DebugContext(ctx, "history walk failed", "path", path, "error", walkErr)
	}

	if record.TotalCommits == 0 {
		return record, nil
	}

	change, err := src.HeadChange(ctx)
	if isCanceled(err) {
		return nil, err
	}

	if err != nil {
		e.logger.DebugContext(ctx, "latest commit diff failed", "path", path, "error", err)
	}

	record.FilesChanged = len(change.Files)
	record.Insertions, record.Deletions = ParseDiffStat(change.Summary)

	if len(change.Files) > 0 {
		record.Languages = DetectLanguages(change.Files)
	}

	return record, nil
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
