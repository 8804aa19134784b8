package shell_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gotcl/gotcl/pkg/must"
	"github.com/gotcl/gotcl/pkg/prog/progtest"
	"github.com/gotcl/gotcl/pkg/shell"
	"github.com/gotcl/gotcl/pkg/testutil"
)

func run(t *testing.T, args ...string) progtest.Output {
	t.Helper()
	return progtest.Run(t, &shell.Program{}, args...)
}

func TestScript_CodeInArg(t *testing.T) {
	out := run(t, "-c", "puts hello")
	if out.Exit != 0 || out.Stdout != "hello\n" {
		t.Errorf("got exit %d stdout %q, want 0 %q", out.Exit, out.Stdout, "hello\n")
	}
}

func TestScript_File(t *testing.T) {
	dir := testutil.InTempDir(t)
	path := filepath.Join(dir, "a.tcl")
	must.OK(os.WriteFile(path, []byte("puts [expr {6 * 7}]\n"), 0o600))

	out := run(t, path)
	if out.Exit != 0 || out.Stdout != "42\n" {
		t.Errorf("got exit %d stdout %q, want 0 %q", out.Exit, out.Stdout, "42\n")
	}
}

func TestScript_Args(t *testing.T) {
	out := run(t, "-c", `puts "$argc [lindex $argv 1]"`, "foo", "bar")
	if out.Stdout != "2 bar\n" {
		t.Errorf("got stdout %q, want %q", out.Stdout, "2 bar\n")
	}
}

func TestScript_MissingFile(t *testing.T) {
	out := run(t, filepath.Join(testutil.InTempDir(t), "nope.tcl"))
	if out.Exit != 2 || !strings.Contains(out.Stderr, "cannot read script") {
		t.Errorf("got exit %d stderr %q, want 2 and read error", out.Exit, out.Stderr)
	}
}

func TestScript_Error(t *testing.T) {
	out := run(t, "-c", "error boom")
	if out.Exit != 1 || !strings.Contains(out.Stderr, "boom") {
		t.Errorf("got exit %d stderr %q, want 1 and message", out.Exit, out.Stderr)
	}
	if !strings.Contains(out.Stderr, "while executing") {
		t.Errorf("stderr %q does not contain the error trace", out.Stderr)
	}
}

func TestCompileOnly(t *testing.T) {
	out := run(t, "-compileonly", "-c", "puts hi")
	if out.Exit != 0 || out.Stdout != "" {
		t.Errorf("got exit %d stdout %q, want 0 and no output", out.Exit, out.Stdout)
	}

	out = run(t, "-compileonly", "-c", "puts {unclosed")
	if out.Exit != 2 {
		t.Errorf("got exit %d, want 2", out.Exit)
	}
}

func TestCompileOnly_JSON(t *testing.T) {
	out := run(t, "-compileonly", "-json", "-c", "puts {unclosed")
	if out.Exit != 2 || !strings.Contains(out.Stdout, `"message"`) {
		t.Errorf("got exit %d stdout %q, want 2 and JSON error", out.Exit, out.Stdout)
	}

	out = run(t, "-compileonly", "-json", "-c", "puts hi")
	if out.Exit != 0 || strings.TrimSpace(out.Stdout) != "[]" {
		t.Errorf("got exit %d stdout %q, want 0 and empty array", out.Exit, out.Stdout)
	}
}

func TestStdinIsScript(t *testing.T) {
	out := progtest.RunWithStdin(t, &shell.Program{}, "puts [string toupper ok]\n")
	if out.Exit != 0 || out.Stdout != "OK\n" {
		t.Errorf("got exit %d stdout %q, want 0 %q", out.Exit, out.Stdout, "OK\n")
	}
}
