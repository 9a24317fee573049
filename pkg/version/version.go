// Package version carries the build metadata of the gitpulse binary.
package version

import (
	"runtime/debug"
)

const unknown = "unknown"

// Set with -ldflags "-X github.com/Sumatoshi-tech/gitpulse/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = unknown
	Date    = unknown
)

// InitBinaryVersion fills fields left unset by ldflags from the embedded
// build info, so `go install` builds still report a module version and
// VCS revision.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == unknown && setting.Value != "" {
				Commit = shorten(setting.Value)
			}
		case "vcs.time":
			if Date == unknown && setting.Value != "" {
				Date = setting.Value
			}
		}
	}
}

func shorten(rev string) string {
	const shortRev = 12

	if len(rev) > shortRev {
		return rev[:shortRev]
	}

	return rev
}

// String formats the metadata the way the version command prints it.
func String() string {
	return Version + " (commit: " + Commit + ", built: " + Date + ")"
}
