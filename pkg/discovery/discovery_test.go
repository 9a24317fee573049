package discovery_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitpulse/pkg/discovery"
	"github.com/Sumatoshi-tech/gitpulse/pkg/gitlib/gitlibtest"
)

// fakeRepo creates a bare .git marker directory; it only passes a permissive validator.
func fakeRepo(t *testing.T, parts ...string) string {
	t.Helper()

	dir := filepath.Join(parts...)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, discovery.MarkerName), 0o750))

	return dir
}

func acceptAll(string) bool { return true }

// tempRoot returns a symlink-free temp directory, since Discover reports
// resolved paths.
func tempRoot(t *testing.T) string {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	return root
}

func sorted(paths []string) []string {
	out := append([]string(nil), paths...)
	sort.Strings(out)

	return out
}

func TestDiscover_FindsRealRepositories(t *testing.T) {
	t.Parallel()

	root := tempRoot(t)

	first := gitlibtest.InitAt(t, filepath.Join(root, "alpha"))
	first.WriteFile("README.md", "alpha\n")
	first.Commit("init alpha")

	second := gitlibtest.InitAt(t, filepath.Join(root, "nested", "deep", "beta"))
	second.WriteFile("README.md", "beta\n")
	second.Commit("init beta")

	// Marker without a real repository behind it is skipped silently.
	fakeRepo(t, root, "broken")

	got, err := discovery.Discover(context.Background(), root, discovery.Options{})
	require.NoError(t, err)

	assert.Equal(t, sorted([]string{first.Path, second.Path}), sorted(got))
}

func TestDiscover_Exclusion(t *testing.T) {
	t.Parallel()

	root := tempRoot(t)
	keep := fakeRepo(t, root, "work", "proj")
	fakeRepo(t, root, "work", "node_modules", "dep")
	fakeRepo(t, root, "envs", "venv-old", "tool")

	got, err := discovery.Discover(context.Background(), root, discovery.Options{
		Exclude:  discovery.NewExcludeRules([]string{"node_modules", "venv"}),
		Validate: acceptAll,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{keep}, got)
}

func TestDiscover_MaxCount(t *testing.T) {
	t.Parallel()

	root := tempRoot(t)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		fakeRepo(t, root, name)
	}

	for _, limit := range []int{1, 3, 5, 10} {
		got, err := discovery.Discover(context.Background(), root, discovery.Options{
			MaxCount: limit,
			Validate: acceptAll,
		})
		require.NoError(t, err)
		assert.Len(t, got, min(limit, 5))
	}
}

func TestDiscover_NonexistentRoot(t *testing.T) {
	t.Parallel()

	got, err := discovery.Discover(context.Background(),
		filepath.Join(t.TempDir(), "missing"), discovery.Options{Validate: acceptAll})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDiscover_RootIsFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	got, err := discovery.Discover(context.Background(), file, discovery.Options{Validate: acceptAll})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDiscover_RootIsRepository(t *testing.T) {
	t.Parallel()

	root := fakeRepo(t, tempRoot(t), "self")

	got, err := discovery.Discover(context.Background(), root, discovery.Options{Validate: acceptAll})
	require.NoError(t, err)
	assert.Equal(t, []string{root}, got)
}

func TestDiscover_SymlinkedRoot(t *testing.T) {
	t.Parallel()

	base := tempRoot(t)
	target := filepath.Join(base, "real")
	proj := fakeRepo(t, target, "proj")

	link := filepath.Join(base, "link")
	require.NoError(t, os.Symlink(target, link))

	viaReal, err := discovery.Discover(context.Background(), target, discovery.Options{Validate: acceptAll})
	require.NoError(t, err)

	viaLink, err := discovery.Discover(context.Background(), link, discovery.Options{Validate: acceptAll})
	require.NoError(t, err)

	assert.Equal(t, []string{proj}, viaReal)
	assert.Equal(t, viaReal, viaLink)
}

func TestDiscover_SymlinkedRootExclusionUsesTarget(t *testing.T) {
	t.Parallel()

	base := tempRoot(t)
	target := filepath.Join(base, "data")
	proj := fakeRepo(t, target, "proj")

	link := filepath.Join(base, "vendor-link")
	require.NoError(t, os.Symlink(target, link))

	got, err := discovery.Discover(context.Background(), link, discovery.Options{
		Exclude:  discovery.NewExcludeRules([]string{"vendor"}),
		Validate: acceptAll,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{proj}, got)
}

func TestDiscover_DanglingSymlinkRoot(t *testing.T) {
	t.Parallel()

	base := tempRoot(t)
	link := filepath.Join(base, "dangling")
	require.NoError(t, os.Symlink(filepath.Join(base, "gone"), link))

	got, err := discovery.Discover(context.Background(), link, discovery.Options{Validate: acceptAll})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDiscover_GitFileMarker(t *testing.T) {
	t.Parallel()

	root := tempRoot(t)
	worktree := filepath.Join(root, "worktree")
	require.NoError(t, os.MkdirAll(worktree, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(worktree, ".git"), []byte("gitdir: /elsewhere\n"), 0o600))

	got, err := discovery.Discover(context.Background(), root, discovery.Options{Validate: acceptAll})
	require.NoError(t, err)
	assert.Equal(t, []string{worktree}, got)
}

func TestDiscover_ValidatorRejects(t *testing.T) {
	t.Parallel()

	root := tempRoot(t)
	good := fakeRepo(t, root, "good")
	fakeRepo(t, root, "bad")

	got, err := discovery.Discover(context.Background(), root, discovery.Options{
		Validate: func(path string) bool { return path == good },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{good}, got)
}

func TestDiscover_Canceled(t *testing.T) {
	t.Parallel()

	root := tempRoot(t)
	fakeRepo(t, root, "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := discovery.Discover(ctx, root, discovery.Options{Validate: acceptAll})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiscoverAll_SharedBudgetAndDedup(t *testing.T) {
	t.Parallel()

	base := tempRoot(t)
	rootA := filepath.Join(base, "a")
	rootB := filepath.Join(base, "b")

	fakeRepo(t, rootA, "one")
	fakeRepo(t, rootA, "two")
	fakeRepo(t, rootB, "three")
	fakeRepo(t, rootB, "four")

	got, err := discovery.DiscoverAll(context.Background(),
		[]string{rootA, rootA, rootB}, discovery.Options{Validate: acceptAll})
	require.NoError(t, err)
	assert.Len(t, got, 4)

	limited, err := discovery.DiscoverAll(context.Background(),
		[]string{rootA, rootB}, discovery.Options{MaxCount: 3, Validate: acceptAll})
	require.NoError(t, err)
	assert.Len(t, limited, 3)
}

func TestDiscoverAll_NoRoots(t *testing.T) {
	t.Parallel()

	got, err := discovery.DiscoverAll(context.Background(), nil, discovery.Options{})
	require.NoError(t, err)
	assert.Empty(t, got)
}
