package version

import (
	"runtime/debug"
	"testing"
)

func TestResolveFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		GoVersion: "go1.26.0",
		Main:      debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}
	info := resolve(func() (*debug.BuildInfo, bool) { return bi, true })

	if info.Version != "v1.2.3" {
		t.Fatalf("version: got %q", info.Version)
	}
	if info.Commit != "0123456789abcdef0123" {
		t.Fatalf("commit: got %q", info.Commit)
	}
	if info.BuildTime != "2026-01-02T03:04:05Z" {
		t.Fatalf("build time: got %q", info.BuildTime)
	}
	if info.GoVersion != "go1.26.0" {
		t.Fatalf("go version: got %q", info.GoVersion)
	}
}

func TestResolveDevelFallsBackToBuildTime(t *testing.T) {
	bi := &debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.time", Value: "2026-05-06T07:08:09Z"}},
	}
	info := resolve(func() (*debug.BuildInfo, bool) { return bi, true })
	if info.Version != "2026-05-06T07:08:09Z" {
		t.Fatalf("expected build time as version, got %q", info.Version)
	}
}

func TestResolveWithoutBuildInfo(t *testing.T) {
	info := resolve(func() (*debug.BuildInfo, bool) { return nil, false })
	if info.Version == "" {
		t.Fatal("expected a generated version")
	}
}

func TestShortCommit(t *testing.T) {
	t.Parallel()
	if got := shortCommit("0123456789abcdef"); got != "0123456789ab" {
		t.Fatalf("got %q", got)
	}
	if got := shortCommit("abc"); got != "abc" {
		t.Fatalf("got %q", got)
	}
}
