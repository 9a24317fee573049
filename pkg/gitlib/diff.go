package gitlib

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// statsWidth is the column width handed to libgit2 when formatting stats.
const statsWidth = 80

// Diff wraps a libgit2 diff.
type Diff struct {
	diff *git2go.Diff
}

// NumDeltas returns the number of file-level entries in the diff.
func (d *Diff) NumDeltas() (int, error) {
	numDeltas, err := d.diff.NumDeltas()
	if err != nil {
		return 0, fmt.Errorf("get num deltas: %w", err)
	}

	return numDeltas, nil
}

// Delta returns the delta at the given index.
func (d *Diff) Delta(index int) (DiffDelta, error) {
	delta, err := d.diff.Delta(index)
	if err != nil {
		return DiffDelta{}, fmt.Errorf("get delta: %w", err)
	}

	return DiffDelta{
		Status:  delta.Status,
		OldFile: DiffFile{Path: delta.OldFile.Path},
		NewFile: DiffFile{Path: delta.NewFile.Path},
	}, nil
}

// Paths returns the path of every changed file, preferring the new path so
// renames and additions report where the file ended up.
func (d *Diff) Paths() ([]string, error) {
	n, err := d.NumDeltas()
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, n)

	for i := range n {
		delta, deltaErr := d.Delta(i)
		if deltaErr != nil {
			return paths, deltaErr
		}

		path := delta.NewFile.Path
		if delta.Status == git2go.DeltaDeleted || path == "" {
			path = delta.OldFile.Path
		}

		paths = append(paths, path)
	}

	return paths, nil
}

// Stats returns the diff stats.
func (d *Diff) Stats() (*DiffStats, error) {
	stats, err := d.diff.Stats()
	if err != nil {
		return nil, fmt.Errorf("get diff stats: %w", err)
	}

	return &DiffStats{stats: stats}, nil
}

// Free releases the diff resources.
func (d *Diff) Free() {
	if d.diff == nil {
		return
	}

	// Free errors are not actionable during cleanup.
	_ = d.diff.Free()
	d.diff = nil
}

// DiffDelta represents a file change in a diff.
type DiffDelta struct {
	Status  git2go.Delta
	OldFile DiffFile
	NewFile DiffFile
}

// DiffFile represents a file in a diff delta.
type DiffFile struct {
	Path string
}

// DiffStats wraps libgit2 diff stats.
type DiffStats struct {
	stats *git2go.DiffStats
}

// Summary returns the one-line textual summary git prints after --stat,
// e.g. " 2 files changed, 10 insertions(+), 3 deletions(-)".
func (s *DiffStats) Summary() (string, error) {
	text, err := s.stats.String(git2go.DiffStatsShort, statsWidth)
	if err != nil {
		return "", fmt.Errorf("format diff stats: %w", err)
	}

	return text, nil
}

// Free releases the stats resources.
func (s *DiffStats) Free() {
	if s.stats == nil {
		return
	}

	_ = s.stats.Free()
	s.stats = nil
}
