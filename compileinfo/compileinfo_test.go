package compileinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	info := fromBuildInfo(&debug.BuildInfo{
		GoVersion: "go1.21.0",
		Path:      "github.com/carbocation/cytometry/cmd/cytoplot",
		Main:      debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2022-06-01T00:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	})

	if info.Commit != "abc123" || !info.Modified || info.Version != "(devel)" {
		t.Fatalf("Unexpected build info %+v", info)
	}
	if s := info.String(); !strings.Contains(s, "abc123") || !strings.Contains(s, "modified") {
		t.Fatalf("Expected the commit and modification note in %q", s)
	}
	if f := info.Fields(); f["commit"] != "abc123" {
		t.Fatalf("Expected the commit in the log fields, got %v", f)
	}
}

func TestEmpty(t *testing.T) {
	if s := (CompileInfo{}).String(); !strings.HasPrefix(s, "No build information") {
		t.Fatalf("Unexpected description of missing build info: %q", s)
	}
}
