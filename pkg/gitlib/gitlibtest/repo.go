// Package gitlibtest builds throwaway git repositories for tests.
package gitlibtest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/stretchr/testify/require"
)

// Default identity used for fixture commits.
const (
	DefaultName  = "Test User"
	DefaultEmail = "test@example.com"
)

// Repo is a git repository on disk with helpers to write files and commit them.
type Repo struct {
	t      testing.TB
	Path   string
	native *git2go.Repository
}

// Init creates an empty repository in a fresh temporary directory.
func Init(t testing.TB) *Repo {
	t.Helper()

	return InitAt(t, t.TempDir())
}

// InitAt creates an empty repository at dir, creating dir when missing.
func InitAt(t testing.TB, dir string) *Repo {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0o755))

	repo, err := git2go.InitRepository(dir, false)
	require.NoError(t, err)

	t.Cleanup(repo.Free)

	return &Repo{t: t, Path: dir, native: repo}
}

// WriteFile creates or overwrites a file in the working directory.
func (r *Repo) WriteFile(name, content string) {
	r.t.Helper()

	path := filepath.Join(r.Path, name)

	require.NoError(r.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(r.t, os.WriteFile(path, []byte(content), 0o644))
}

// RemoveFile deletes a file from the working directory.
func (r *Repo) RemoveFile(name string) {
	r.t.Helper()

	require.NoError(r.t, os.Remove(filepath.Join(r.Path, name)))
}

// Commit stages the whole working tree and commits it at time.Now().
func (r *Repo) Commit(message string) string {
	r.t.Helper()

	return r.CommitAt(message, time.Now())
}

// CommitAt stages the whole working tree and commits it with both author and
// committer time set to when. It returns the full hex hash.
func (r *Repo) CommitAt(message string, when time.Time) string {
	r.t.Helper()

	index, err := r.native.Index()
	require.NoError(r.t, err)

	defer index.Free()

	require.NoError(r.t, index.AddAll([]string{"*"}, git2go.IndexAddDefault, nil))
	require.NoError(r.t, index.UpdateAll([]string{"*"}, nil))
	require.NoError(r.t, index.Write())

	treeID, err := index.WriteTree()
	require.NoError(r.t, err)

	tree, err := r.native.LookupTree(treeID)
	require.NoError(r.t, err)

	defer tree.Free()

	sig := &git2go.Signature{
		Name:  DefaultName,
		Email: DefaultEmail,
		When:  when,
	}

	var parents []*git2go.Commit

	head, err := r.native.Head()
	if err == nil {
		headCommit, lookupErr := r.native.LookupCommit(head.Target())
		require.NoError(r.t, lookupErr)

		defer headCommit.Free()

		parents = append(parents, headCommit)

		head.Free()
	}

	oid, err := r.native.CreateCommit("HEAD", sig, sig, message, tree, parents...)
	require.NoError(r.t, err)

	return oid.String()
}
