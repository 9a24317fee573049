package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/gitpulse/pkg/gitlib"
)

// MarkerName is the directory (or, for worktrees and submodules, file) that
// marks a repository root.
const MarkerName = ".git"

// Validator reports whether a candidate directory is a usable repository.
type Validator func(path string) bool

// Options configures a discovery run.
type Options struct {
	// Exclude drops candidates whose path has a matching segment.
	Exclude ExcludeRules

	// MaxCount stops the walk once this many repositories were accepted.
	// Zero or negative means no limit.
	MaxCount int

	// Validate confirms a candidate opens as a repository. Nil uses libgit2.
	Validate Validator

	// Logger receives debug records for skipped candidates. Nil discards.
	Logger *slog.Logger

	// Tracer wraps each root walk in a span. Nil disables tracing.
	Tracer trace.Tracer
}

func (o Options) validator() Validator {
	if o.Validate != nil {
		return o.Validate
	}

	return gitlib.IsRepository
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}

	return slog.New(slog.DiscardHandler)
}

func (o Options) tracer() trace.Tracer {
	if o.Tracer != nil {
		return o.Tracer
	}

	return nooptrace.NewTracerProvider().Tracer("")
}

// Discover walks root and returns the absolute, symlink-resolved paths of valid repositories in
// walk order, at most opts.MaxCount of them. A missing root yields no
// repositories and no error. Unreadable subdirectories are skipped. The only
// error returned is context cancellation.
func Discover(ctx context.Context, root string, opts Options) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		opts.logger().DebugContext(ctx, "cannot resolve scan root", "root", root, "error", err)

		return nil, nil
	}

	// WalkDir does not descend into a symlinked root, so walk its target.
	resolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		opts.logger().DebugContext(ctx, "scan root unavailable", "root", absRoot, "error", err)

		return nil, nil
	}

	absRoot = resolved

	ctx, span := opts.tracer().Start(ctx, "gitpulse.discover",
		trace.WithAttributes(attribute.String("scan.root", absRoot)))
	defer span.End()

	info, err := os.Stat(absRoot)
	if err != nil || !info.IsDir() {
		opts.logger().DebugContext(ctx, "scan root unavailable", "root", absRoot, "error", err)

		return nil, nil
	}

	w := &walker{
		ctx:      ctx,
		opts:     opts,
		validate: opts.validator(),
		logger:   opts.logger(),
	}

	err = filepath.WalkDir(absRoot, w.visit)
	if err != nil {
		return w.found, fmt.Errorf("walk %s: %w", absRoot, err)
	}

	span.SetAttributes(attribute.Int("repositories.found", len(w.found)))

	return w.found, nil
}

// DiscoverAll runs Discover over each root in order with a shared MaxCount
// budget. A repository reachable from several roots is reported once.
func DiscoverAll(ctx context.Context, roots []string, opts Options) ([]string, error) {
	var found []string

	seen := make(map[string]struct{})

	for _, root := range roots {
		rootOpts := opts
		if opts.MaxCount > 0 {
			remaining := opts.MaxCount - len(found)
			if remaining <= 0 {
				break
			}

			rootOpts.MaxCount = remaining
		}

		repos, err := Discover(ctx, root, rootOpts)

		for _, repo := range repos {
			if _, dup := seen[repo]; dup {
				continue
			}

			seen[repo] = struct{}{}
			found = append(found, repo)
		}

		if err != nil {
			return found, err
		}
	}

	return found, nil
}

type walker struct {
	ctx      context.Context
	opts     Options
	validate Validator
	logger   *slog.Logger
	found    []string
}

func (w *walker) visit(path string, entry fs.DirEntry, walkErr error) error {
	ctxErr := w.ctx.Err()
	if ctxErr != nil {
		return ctxErr
	}

	if walkErr != nil {
		w.logger.DebugContext(w.ctx, "skipping unreadable path", "path", path, "error", walkErr)

		if entry != nil && entry.IsDir() {
			return filepath.SkipDir
		}

		return nil
	}

	if entry.Name() == MarkerName {
		w.consider(filepath.Dir(path))

		if w.opts.MaxCount > 0 && len(w.found) >= w.opts.MaxCount {
			return filepath.SkipAll
		}

		if entry.IsDir() {
			return filepath.SkipDir
		}

		return nil
	}

	// Every candidate below an excluded directory carries the excluded
	// segment too, so the subtree can be pruned.
	if entry.IsDir() && w.opts.Exclude.Excludes(path) {
		return filepath.SkipDir
	}

	return nil
}

func (w *walker) consider(candidate string) {
	if w.opts.Exclude.Excludes(candidate) {
		w.logger.DebugContext(w.ctx, "candidate excluded", "path", candidate)

		return
	}

	if !w.validate(candidate) {
		w.logger.DebugContext(w.ctx, "candidate is not a repository", "path", candidate)

		return
	}

	w.found = append(w.found, candidate)
}
