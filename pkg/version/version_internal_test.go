package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetVersion(t *testing.T) {
	t.Helper()

	prevVersion, prevCommit, prevDate := Version, Commit, Date

	Version, Commit, Date = "dev", unknown, unknown

	t.Cleanup(func() {
		Version, Commit, Date = prevVersion, prevCommit, prevDate
	})
}

func TestApply_FromBuildInfo(t *testing.T) {
	resetVersion(t)

	apply(&debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	})

	assert.Equal(t, "v1.2.3", Version)
	assert.Equal(t, "0123456789ab", Commit)
	assert.Equal(t, "2026-01-02T03:04:05Z", Date)
	assert.Equal(t, "v1.2.3 (commit: 0123456789ab, built: 2026-01-02T03:04:05Z)", String())
}

func TestApply_LdflagsWin(t *testing.T) {
	resetVersion(t)

	Version, Commit = "v9.9.9", "abc"

	apply(&debug.BuildInfo{
		Main:     debug.Module{Version: "v1.0.0"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffff"}},
	})

	assert.Equal(t, "v9.9.9", Version)
	assert.Equal(t, "abc", Commit)
	assert.Equal(t, unknown, Date)
}

func TestApply_DevelIgnored(t *testing.T) {
	resetVersion(t)

	apply(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})

	assert.Equal(t, "dev", Version)
}
