package gitlib_test

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitpulse/pkg/gitlib"
	"github.com/Sumatoshi-tech/gitpulse/pkg/gitlib/gitlibtest"
)

func collectMessages(t *testing.T, iter *gitlib.CommitIter) []string {
	t.Helper()

	var messages []string

	err := iter.ForEach(func(c *gitlib.Commit) error {
		messages = append(messages, c.Message())

		return nil
	})
	require.NoError(t, err)

	return messages
}

func TestOpenRepository(t *testing.T) {
	t.Parallel()

	fixture := gitlibtest.Init(t)
	fixture.WriteFile("test.txt", "content")
	fixture.Commit("initial")

	repo, err := gitlib.OpenRepository(fixture.Path)
	require.NoError(t, err)

	defer repo.Free()

	assert.True(t, gitlib.IsRepository(fixture.Path))
}

func TestOpenRepositoryNotFound(t *testing.T) {
	t.Parallel()

	repo, err := gitlib.OpenRepository("/nonexistent/path/to/repo")

	assert.Nil(t, repo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open repository")
	assert.False(t, gitlib.IsRepository(t.TempDir()))
}

func TestRepositoryHead(t *testing.T) {
	t.Parallel()

	fixture := gitlibtest.Init(t)
	fixture.WriteFile("test.txt", "hello")
	expected := fixture.Commit("initial")

	repo, err := gitlib.OpenRepository(fixture.Path)
	require.NoError(t, err)

	defer repo.Free()

	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, expected, head.String())
	assert.Equal(t, expected[:8], head.Short(8))
}

func TestRepositoryHeadEmpty(t *testing.T) {
	t.Parallel()

	fixture := gitlibtest.Init(t)

	repo, err := gitlib.OpenRepository(fixture.Path)
	require.NoError(t, err)

	defer repo.Free()

	_, err = repo.Head()
	require.Error(t, err)

	_, err = repo.Log(nil)
	require.Error(t, err)
}

func TestLogNewestFirst(t *testing.T) {
	t.Parallel()

	base := time.Now().Add(-72 * time.Hour).Truncate(time.Second)

	fixture := gitlibtest.Init(t)
	fixture.WriteFile("a.txt", "1")
	fixture.CommitAt("first", base)
	fixture.WriteFile("a.txt", "2")
	fixture.CommitAt("second", base.Add(time.Hour))
	fixture.WriteFile("a.txt", "3")
	fixture.CommitAt("third", base.Add(2*time.Hour))

	repo, err := gitlib.OpenRepository(fixture.Path)
	require.NoError(t, err)

	defer repo.Free()

	iter, err := repo.Log(&gitlib.LogOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"third", "second", "first"}, collectMessages(t, iter))
}

func TestLogSinceStopsAtOlderCommit(t *testing.T) {
	t.Parallel()

	now := time.Now().Truncate(time.Second)

	fixture := gitlibtest.Init(t)
	fixture.WriteFile("a.txt", "old")
	fixture.CommitAt("old", now.Add(-10*24*time.Hour))
	fixture.WriteFile("a.txt", "recent")
	fixture.CommitAt("recent", now.Add(-time.Hour))

	repo, err := gitlib.OpenRepository(fixture.Path)
	require.NoError(t, err)

	defer repo.Free()

	since := now.Add(-24 * time.Hour)

	iter, err := repo.Log(&gitlib.LogOptions{Since: &since})
	require.NoError(t, err)

	assert.Equal(t, []string{"recent"}, collectMessages(t, iter))
}

func TestCommitIterCloseAfterExhaustion(t *testing.T) {
	t.Parallel()

	fixture := gitlibtest.Init(t)
	fixture.WriteFile("1.txt", "1")
	fixture.Commit("first")

	repo, err := gitlib.OpenRepository(fixture.Path)
	require.NoError(t, err)

	defer repo.Free()

	iter, err := repo.Log(nil)
	require.NoError(t, err)

	for {
		commit, nextErr := iter.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}

		require.NoError(t, nextErr)
		commit.Free()
	}

	iter.Close()
	iter.Close()

	_, err = iter.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestCommitSignatures(t *testing.T) {
	t.Parallel()

	when := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)

	fixture := gitlibtest.Init(t)
	fixture.WriteFile("a.txt", "x")
	fixture.CommitAt("subject\n\nbody", when)

	repo, err := gitlib.OpenRepository(fixture.Path)
	require.NoError(t, err)

	defer repo.Free()

	commit, err := repo.HeadCommit()
	require.NoError(t, err)

	defer commit.Free()

	assert.Equal(t, "Test User <test@example.com>", commit.Author().String())
	assert.True(t, when.Equal(commit.Committer().When))
	assert.Contains(t, commit.Message(), "subject")
	assert.Equal(t, 0, commit.NumParents())
}

func TestDiffParentRootCommit(t *testing.T) {
	t.Parallel()

	fixture := gitlibtest.Init(t)
	fixture.WriteFile("a.txt", "x")
	fixture.Commit("root")

	repo, err := gitlib.OpenRepository(fixture.Path)
	require.NoError(t, err)

	defer repo.Free()

	commit, err := repo.HeadCommit()
	require.NoError(t, err)

	defer commit.Free()

	diff, err := commit.DiffParent()
	assert.Nil(t, diff)
	require.ErrorIs(t, err, gitlib.ErrParentNotFound)
}

func TestDiffParentStats(t *testing.T) {
	t.Parallel()

	fixture := gitlibtest.Init(t)
	fixture.WriteFile("keep.txt", "one\ntwo\nthree\n")
	fixture.WriteFile("gone.txt", "bye\n")
	fixture.Commit("root")

	fixture.WriteFile("keep.txt", "one\nTWO\nthree\nfour\n")
	fixture.RemoveFile("gone.txt")
	fixture.WriteFile("new.go", "package x\n")
	fixture.Commit("change")

	repo, err := gitlib.OpenRepository(fixture.Path)
	require.NoError(t, err)

	defer repo.Free()

	commit, err := repo.HeadCommit()
	require.NoError(t, err)

	defer commit.Free()

	diff, err := commit.DiffParent()
	require.NoError(t, err)

	defer diff.Free()

	n, err := diff.NumDeltas()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	paths, err := diff.Paths()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"keep.txt", "gone.txt", "new.go"}, paths)

	stats, err := diff.Stats()
	require.NoError(t, err)

	defer stats.Free()

	summary, err := stats.Summary()
	require.NoError(t, err)
	assert.Contains(t, summary, "3 files changed")
	assert.Contains(t, summary, "3 insertions(+)")
	assert.Contains(t, summary, "2 deletions(-)")
}
