package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/gitpulse/pkg/gitlib"
)

// ErrNotRepository is returned when a path cannot be opened as a repository.
var ErrNotRepository = errors.New("not a git repository")

// Change describes the latest commit against its first parent.
type Change struct {
	Files   []string // Paths of every file-level diff entry.
	Summary string   // git --stat summary line, empty for root commits.
}

// Source is the read-only version-control view the Extractor consumes.
type Source interface {
	// Walk calls fn for every commit reachable from HEAD, newest first, and
	// stops at the first commit older than since. Commit.Hash is already
	// shortened to ShortHashLen characters.
	Walk(ctx context.Context, since time.Time, fn func(Commit) error) error

	// HeadChange diffs the HEAD commit against its first parent. A root
	// commit yields a zero Change and no error.
	HeadChange(ctx context.Context) (Change, error)

	// Close releases the underlying repository.
	Close()
}

// Opener opens a Source for a repository root.
type Opener func(path string) (Source, error)

type gitSource struct {
	repo *gitlib.Repository
}

// OpenGit opens the repository at path through libgit2.
func OpenGit(path string) (Source, error) {
	repo, err := gitlib.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotRepository, err)
	}

	return &gitSource{repo: repo}, nil
}

func (s *gitSource) Walk(ctx context.Context, since time.Time, fn func(Commit) error) error {
	iter, err := s.repo.Log(&gitlib.LogOptions{Since: &since})
	if err != nil {
		return err
	}
	defer iter.Close()

	return iter.ForEach(func(c *gitlib.Commit) error {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			return ctxErr
		}

		return fn(Commit{
			Hash:    c.Hash().Short(ShortHashLen),
			Message: strings.TrimSpace(c.Message()),
			Author:  c.Author().String(),
			When:    c.Committer().When.Local(),
		})
	})
}

func (s *gitSource) HeadChange(ctx context.Context) (Change, error) {
	head, err := s.repo.HeadCommit()
	if err != nil {
		return Change{}, err
	}
	defer head.Free()

	diff, err := head.DiffParent()
	if errors.Is(err, gitlib.ErrParentNotFound) {
		return Change{}, nil
	}

	if err != nil {
		return Change{}, err
	}
	defer diff.Free()

	ctxErr := ctx.Err()
	if ctxErr != nil {
		return Change{}, ctxErr
	}

	files, err := diff.Paths()
	if err != nil {
		return Change{}, err
	}

	stats, err := diff.Stats()
	if err != nil {
		return Change{Files: files}, err
	}
	defer stats.Free()

	summary, err := stats.Summary()
	if err != nil {
		return Change{Files: files}, err
	}

	return Change{Files: files, Summary: summary}, nil
}

func (s *gitSource) Close() {
	s.repo.Free()
}
