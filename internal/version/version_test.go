package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFull(t *testing.T) {
	if Version == "" || Commit == "" {
		t.Fatalf("Version = %q, Commit = %q, want both populated", Version, Commit)
	}
	if got := Full(); !strings.Contains(got, Version) || !strings.Contains(got, "commit: "+Commit) {
		t.Errorf("Full() = %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent(); !strings.HasPrefix(got, "dlpc350/"+Version) {
		t.Errorf("UserAgent() = %q, want prefix dlpc350/%s", got, Version)
	}
}

func TestFromSettings(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	defer func() { Version, Commit = oldVersion, oldCommit }()

	tests := []struct {
		name        string
		settings    []debug.BuildSetting
		wantVersion string
		wantCommit  string
	}{
		{
			name: "clean tree",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "3f2a9c1d8e7b"},
				{Key: "vcs.time", Value: "2026-03-14T09:26:53Z"},
				{Key: "vcs.modified", Value: "false"},
			},
			wantVersion: "dev-20260314",
			wantCommit:  "3f2a9c1",
		},
		{
			name: "dirty tree",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc"},
				{Key: "vcs.modified", Value: "true"},
			},
			wantCommit: "abc-dirty",
		},
		{name: "no vcs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit = "", ""
			fromSettings(tt.settings)
			if Version != tt.wantVersion || Commit != tt.wantCommit {
				t.Errorf("Version, Commit = %q, %q, want %q, %q", Version, Commit, tt.wantVersion, tt.wantCommit)
			}
		})
	}
}

func TestFromSettingsKeepsStamped(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	defer func() { Version, Commit = oldVersion, oldCommit }()

	Version, Commit = "v0.4.0", "release"
	fromSettings([]debug.BuildSetting{{Key: "vcs.revision", Value: "3f2a9c1d8e7b"}})
	if Version != "v0.4.0" || Commit != "release" {
		t.Errorf("stamped values overwritten: %q, %q", Version, Commit)
	}
}
