package buildinfo_test

import (
	"strings"
	"testing"

	"github.com/gotcl/gotcl/pkg/buildinfo"
	"github.com/gotcl/gotcl/pkg/prog/progtest"
)

func TestVersion(t *testing.T) {
	out := progtest.Run(t, &buildinfo.Program{}, "-version")
	want := buildinfo.Version + buildinfo.VersionSuffix + "\n"
	if out.Exit != 0 || out.Stdout != want {
		t.Errorf("got exit %d stdout %q, want 0 %q", out.Exit, out.Stdout, want)
	}
}

func TestBuildInfo(t *testing.T) {
	out := progtest.Run(t, &buildinfo.Program{}, "-buildinfo")
	if !strings.Contains(out.Stdout, "Version:") || !strings.Contains(out.Stdout, "Go version:") {
		t.Errorf("got stdout %q, want version and go version", out.Stdout)
	}
}

func TestBuildInfo_JSON(t *testing.T) {
	out := progtest.Run(t, &buildinfo.Program{}, "-buildinfo", "-buildinfo-json")
	if !strings.Contains(out.Stdout, `"version"`) {
		t.Errorf("got stdout %q, want JSON with version", out.Stdout)
	}
}
