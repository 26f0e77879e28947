package version

import (
	"runtime/debug"
	"testing"
)

func TestFromBuildInfoFillsDefaults(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-03-14T09:30:00Z"},
		},
	}

	version, commit, date := fromBuildInfo(info, "dev", "none", "unknown")
	if version != "v0.3.1" || commit != "0123456789ab" || date != "2026-03-14T09:30:00Z" {
		t.Fatalf("fromBuildInfo = %q, %q, %q", version, commit, date)
	}
}

func TestFromBuildInfoKeepsLinkerValues(t *testing.T) {
	info := &debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}},
	}

	version, commit, date := fromBuildInfo(info, "1.0.0", "deadbeef", "today")
	if version != "1.0.0" || commit != "deadbeef" || date != "today" {
		t.Fatalf("fromBuildInfo = %q, %q, %q", version, commit, date)
	}
}
