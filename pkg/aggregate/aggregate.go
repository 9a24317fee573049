// Package aggregate merges per-repository activity into one report.
package aggregate

import (
	"cmp"
	"slices"
	"time"

	"github.com/Sumatoshi-tech/gitpulse/pkg/activity"
)

// Summary holds the global counters of a scan.
type Summary struct {
	Repositories       int // Repositories scanned.
	ActiveRepositories int // Repositories with at least one commit.
	TotalCommits       int
	FilesChanged       int
	Insertions         int
	Deletions          int
}

// Histogram maps an activity.DateLayout day to the commit count across all
// repositories. Only days with commits are present.
type Histogram map[string]int

// FeedEntry is a commit annotated with the repository it belongs to.
type FeedEntry struct {
	Repository string
	activity.Commit
}

// Report is the merged view of many records.
type Report struct {
	Summary   Summary
	Histogram Histogram
	// Feed holds every sampled commit, newest first.
	Feed []FeedEntry
	// Ranking holds the records ordered by TotalCommits, highest first.
	Ranking []*activity.Record
}

// Aggregate merges records. Nil records are ignored. Sorts are stable, so
// ties keep input order.
func Aggregate(records []*activity.Record) Report {
	acc := newAccumulator()

	for _, record := range records {
		if record != nil {
			acc.add(record)
		}
	}

	return acc.report()
}

type accumulator struct {
	summary   Summary
	histogram Histogram
	feed      []FeedEntry
	ranking   []*activity.Record
}

func newAccumulator() *accumulator {
	return &accumulator{histogram: Histogram{}}
}

func (a *accumulator) add(record *activity.Record) {
	a.summary.Repositories++

	if record.Active() {
		a.summary.ActiveRepositories++
	}

	a.summary.TotalCommits += record.TotalCommits
	a.summary.FilesChanged += record.FilesChanged
	a.summary.Insertions += record.Insertions
	a.summary.Deletions += record.Deletions

	for day, n := range record.Daily {
		a.histogram[day] += n
	}

	for _, c := range record.Commits {
		a.feed = append(a.feed, FeedEntry{Repository: record.Name, Commit: c})
	}

	a.ranking = append(a.ranking, record)
}

func (a *accumulator) report() Report {
	feed := slices.Clone(a.feed)
	slices.SortStableFunc(feed, func(x, y FeedEntry) int {
		return y.When.Compare(x.When)
	})

	ranking := slices.Clone(a.ranking)
	slices.SortStableFunc(ranking, func(x, y *activity.Record) int {
		return cmp.Compare(y.TotalCommits, x.TotalCommits)
	})

	if feed == nil {
		feed = []FeedEntry{}
	}

	if ranking == nil {
		ranking = []*activity.Record{}
	}

	return Report{
		Summary:   a.summary,
		Histogram: a.histogram,
		Feed:      feed,
		Ranking:   ranking,
	}
}

// Active returns the ranked records that have at least one commit.
func (r Report) Active() []*activity.Record {
	active := make([]*activity.Record, 0, len(r.Ranking))

	for _, record := range r.Ranking {
		if record.Active() {
			active = append(active, record)
		}
	}

	return active
}

// Day is one entry of a gap-filled window.
type Day struct {
	Key     string
	Commits int
}

// Window returns the last days calendar days ending at end, oldest first,
// with days absent from the histogram filled with zero.
func (h Histogram) Window(end time.Time, days int) []Day {
	if days <= 0 {
		return nil
	}

	end = end.Local()
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.Local)
	window := make([]Day, 0, days)

	for i := days - 1; i >= 0; i-- {
		day := last.AddDate(0, 0, -i)
		key := day.Format(activity.DateLayout)
		window = append(window, Day{Key: key, Commits: h[key]})
	}

	return window
}
