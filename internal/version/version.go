// Package version reports the build version of the dlpc350 tools.
//
// Release builds stamp both values:
//
//	go build -ldflags "-X github.com/lightcrafter/dlpc350/internal/version.Version=v0.4.0 \
//	    -X github.com/lightcrafter/dlpc350/internal/version.Commit=3f2a9c1"
//
// Other builds derive them from the VCS stamp in the binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

var (
	Version = ""
	Commit  = ""
)

const shortHash = 7

func init() {
	if info, ok := debug.ReadBuildInfo(); ok && (Version == "" || Commit == "") {
		fromSettings(info.Settings)
	}
	if Version == "" {
		Version = "dev-" + time.Now().Format("20060102-150405")
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromSettings fills whichever of Version and Commit is still empty. Build
// info carries no tags, so the version is dated by the commit.
func fromSettings(settings []debug.BuildSetting) {
	vcs := make(map[string]string, len(settings))
	for _, s := range settings {
		vcs[s.Key] = s.Value
	}

	if rev := vcs["vcs.revision"]; Commit == "" && rev != "" {
		if len(rev) > shortHash {
			rev = rev[:shortHash]
		}
		if vcs["vcs.modified"] == "true" {
			rev += "-dirty"
		}
		Commit = rev
	}
	if Version == "" {
		if t, err := time.Parse(time.RFC3339, vcs["vcs.time"]); err == nil {
			Version = "dev-" + t.UTC().Format("20060102")
		}
	}
}

// Full is the line printed by the version subcommands
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// UserAgent identifies the host tools to bridges and in captures
func UserAgent() string {
	return fmt.Sprintf("dlpc350/%s (%s; %s/%s)", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
