// Package report converts aggregated activity into an exportable document
// and back.
package report

import (
	"time"

	"github.com/Sumatoshi-tech/gitpulse/pkg/activity"
	"github.com/Sumatoshi-tech/gitpulse/pkg/aggregate"
)

// Document is the exported form of a scan.
type Document struct {
	Metadata      Metadata       `json:"metadata"       yaml:"metadata"`
	Summary       Summary        `json:"summary"        yaml:"summary"`
	DailyActivity map[string]int `json:"daily_activity" yaml:"daily_activity"`
	Repositories  []Repository   `json:"repositories"   yaml:"repositories"`
}

// Metadata describes how a document was produced.
type Metadata struct {
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Days        int       `json:"days"         yaml:"days"`
	Version     string    `json:"version"      yaml:"version"`
	ScanRoots   []string  `json:"scan_roots"   yaml:"scan_roots"`
}

// Summary mirrors aggregate.Summary with stable field names.
type Summary struct {
	TotalRepositories  int `json:"total_repositories"  yaml:"total_repositories"`
	ActiveRepositories int `json:"active_repositories" yaml:"active_repositories"`
	TotalCommits       int `json:"total_commits"       yaml:"total_commits"`
	FilesChanged       int `json:"files_changed"       yaml:"files_changed"`
	Insertions         int `json:"insertions"          yaml:"insertions"`
	Deletions          int `json:"deletions"           yaml:"deletions"`
}

// Repository is one repository of the export. Change counts describe the
// latest commit only.
type Repository struct {
	Name          string         `json:"name"           yaml:"name"`
	Path          string         `json:"path"           yaml:"path"`
	TotalCommits  int            `json:"total_commits"  yaml:"total_commits"`
	FilesChanged  int            `json:"files_changed"  yaml:"files_changed"`
	Insertions    int            `json:"insertions"     yaml:"insertions"`
	Deletions     int            `json:"deletions"      yaml:"deletions"`
	Languages     map[string]int `json:"languages"      yaml:"languages"`
	DailyCommits  map[string]int `json:"daily_commits"  yaml:"daily_commits"`
	RecentCommits []Commit       `json:"recent_commits" yaml:"recent_commits"`
}

// Commit is one sampled commit.
type Commit struct {
	Hash    string    `json:"hash"    yaml:"hash"`
	Message string    `json:"message" yaml:"message"`
	Author  string    `json:"author"  yaml:"author"`
	Date    time.Time `json:"date"    yaml:"date"`
}

// Build converts an aggregated report into a Document. Repositories follow
// the report ranking, most commits first.
func Build(rep aggregate.Report, meta Metadata) Document {
	doc := Document{
		Metadata:      meta,
		Summary:       summaryFrom(rep.Summary),
		DailyActivity: make(map[string]int, len(rep.Histogram)),
		Repositories:  make([]Repository, 0, len(rep.Ranking)),
	}

	if doc.Metadata.ScanRoots == nil {
		doc.Metadata.ScanRoots = []string{}
	}

	for day, n := range rep.Histogram {
		doc.DailyActivity[day] = n
	}

	for _, record := range rep.Ranking {
		doc.Repositories = append(doc.Repositories, repositoryFrom(record))
	}

	return doc
}

func summaryFrom(s aggregate.Summary) Summary {
	return Summary{
		TotalRepositories:  s.Repositories,
		ActiveRepositories: s.ActiveRepositories,
		TotalCommits:       s.TotalCommits,
		FilesChanged:       s.FilesChanged,
		Insertions:         s.Insertions,
		Deletions:          s.Deletions,
	}
}

func repositoryFrom(record *activity.Record) Repository {
	repo := Repository{
		Name:          record.Name,
		Path:          record.Path,
		TotalCommits:  record.TotalCommits,
		FilesChanged:  record.FilesChanged,
		Insertions:    record.Insertions,
		Deletions:     record.Deletions,
		Languages:     copyCounts(record.Languages),
		DailyCommits:  copyCounts(record.Daily),
		RecentCommits: make([]Commit, 0, len(record.Commits)),
	}

	for _, c := range record.Commits {
		repo.RecentCommits = append(repo.RecentCommits, Commit{
			Hash:    c.Hash,
			Message: c.Message,
			Author:  c.Author,
			Date:    c.When,
		})
	}

	return repo
}

// Records rebuilds the activity records a document was built from, so a
// saved report can be aggregated and rendered again.
func (d Document) Records() []*activity.Record {
	records := make([]*activity.Record, 0, len(d.Repositories))

	for _, repo := range d.Repositories {
		record := &activity.Record{
			Name:         repo.Name,
			Path:         repo.Path,
			TotalCommits: repo.TotalCommits,
			FilesChanged: repo.FilesChanged,
			Insertions:   repo.Insertions,
			Deletions:    repo.Deletions,
			Languages:    copyCounts(repo.Languages),
			Daily:        copyCounts(repo.DailyCommits),
			Commits:      make([]activity.Commit, 0, len(repo.RecentCommits)),
		}

		for _, c := range repo.RecentCommits {
			record.Commits = append(record.Commits, activity.Commit{
				Hash:    c.Hash,
				Message: c.Message,
				Author:  c.Author,
				When:    c.Date.Local(),
			})
		}

		records = append(records, record)
	}

	return records
}

func copyCounts(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}

	return dst
}
