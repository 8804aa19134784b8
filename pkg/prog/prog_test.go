package prog_test

import (
	"os"
	"strings"
	"testing"

	"github.com/gotcl/gotcl/pkg/prog"
	"github.com/gotcl/gotcl/pkg/prog/progtest"
)

type testProgram struct {
	shouldRun bool
	writeOut  string
	returnErr error
}

func (p testProgram) RegisterFlags(*prog.FlagSet) {}

func (p testProgram) Run(fds [3]*os.File, args []string) error {
	if !p.shouldRun {
		return prog.ErrNextProgram
	}
	if p.writeOut != "" {
		fds[1].WriteString(p.writeOut)
	}
	return p.returnErr
}

func TestRun(t *testing.T) {
	out := progtest.Run(t, testProgram{shouldRun: true, writeOut: "hello\n"})
	if out.Exit != 0 || out.Stdout != "hello\n" {
		t.Errorf("got exit %d stdout %q, want 0 %q", out.Exit, out.Stdout, "hello\n")
	}
}

func TestRun_BadFlag(t *testing.T) {
	out := progtest.Run(t, testProgram{shouldRun: true}, "-bad-flag")
	if out.Exit != 2 || !strings.Contains(out.Stderr, "Usage: gotcl") {
		t.Errorf("got exit %d stderr %q, want 2 and usage", out.Exit, out.Stderr)
	}
}

func TestRun_Help(t *testing.T) {
	out := progtest.Run(t, testProgram{shouldRun: true}, "-help")
	if out.Exit != 0 || !strings.Contains(out.Stdout, "Usage: gotcl") {
		t.Errorf("got exit %d stdout %q, want 0 and usage", out.Exit, out.Stdout)
	}
}

func TestRun_BadUsage(t *testing.T) {
	out := progtest.Run(t, testProgram{shouldRun: true, returnErr: prog.BadUsage("lorem")})
	if out.Exit != 2 || !strings.Contains(out.Stderr, "lorem") {
		t.Errorf("got exit %d stderr %q, want 2 and message", out.Exit, out.Stderr)
	}
}

func TestRun_Exit(t *testing.T) {
	out := progtest.Run(t, testProgram{shouldRun: true, returnErr: prog.Exit(3)})
	if out.Exit != 3 || out.Stderr != "" {
		t.Errorf("got exit %d stderr %q, want 3 and no message", out.Exit, out.Stderr)
	}
}

func TestComposite(t *testing.T) {
	out := progtest.Run(t, prog.Composite(
		testProgram{shouldRun: false},
		testProgram{shouldRun: true, writeOut: "second\n"}))
	if out.Stdout != "second\n" {
		t.Errorf("got stdout %q, want %q", out.Stdout, "second\n")
	}
}

func TestComposite_NoSuitableProgram(t *testing.T) {
	out := progtest.Run(t, prog.Composite(
		testProgram{shouldRun: false}, testProgram{shouldRun: false}))
	if out.Exit != 2 || !strings.Contains(out.Stderr, "no suitable subprogram") {
		t.Errorf("got exit %d stderr %q, want 2 and internal error", out.Exit, out.Stderr)
	}
}
