// Package activity extracts recent commit activity from a single repository.
package activity

import (
	"strings"
	"time"
)

const (
	// ShortHashLen is the number of hex characters kept from a commit hash.
	ShortHashLen = 8

	// RecentCommitLimit caps the commit sample embedded in a Record.
	RecentCommitLimit = 10

	// DateLayout is the calendar-day key used by daily histograms.
	DateLayout = "2006-01-02"
)

// Commit is one commit inside the activity window.
type Commit struct {
	Hash    string    // Short hash, ShortHashLen characters.
	Message string    // Full message with surrounding whitespace trimmed.
	Author  string    // "Name <email>".
	When    time.Time // Committer time in local time, second precision.
}

// Subject returns the first line of the message.
func (c Commit) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")

	return strings.TrimSpace(subject)
}

// Record is the activity of one repository over the lookback window.
type Record struct {
	Name string
	Path string

	// TotalCommits counts every commit in the window, not just Commits.
	TotalCommits int

	// FilesChanged, Insertions and Deletions describe the latest commit only,
	// diffed against its first parent. They are zero for root commits.
	FilesChanged int
	Insertions   int
	Deletions    int

	// Languages counts the files of the latest commit per detected language.
	Languages map[string]int

	// Commits holds at most RecentCommitLimit commits, newest first.
	Commits []Commit

	// Daily maps a DateLayout day to its commit count. Only days with
	// commits are present.
	Daily map[string]int
}

// Active reports whether the repository had at least one commit in the window.
func (r *Record) Active() bool {
	return r != nil && r.TotalCommits > 0
}

// DateKey returns the local calendar day of t in DateLayout.
func DateKey(t time.Time) string {
	return t.Local().Format(DateLayout)
}

func newRecord(name, path string) *Record {
	return &Record{
		Name:      name,
		Path:      path,
		Languages: map[string]int{},
		Commits:   []Commit{},
		Daily:     map[string]int{},
	}
}
