// Package progtest contains utilities for testing subprograms.
package progtest

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/gotcl/gotcl/pkg/must"
	"github.com/gotcl/gotcl/pkg/prog"
)

// Output captures what a program run produced.
type Output struct {
	Exit   int
	Stdout string
	Stderr string
}

// Run runs the program with the given arguments (excluding the program name)
// and an empty stdin, capturing stdout and stderr.
func Run(t *testing.T, p prog.Program, args ...string) Output {
	t.Helper()
	return RunWithStdin(t, p, "", args...)
}

// RunWithStdin is like Run, but with the given stdin content.
func RunWithStdin(t *testing.T, p prog.Program, stdin string, args ...string) Output {
	t.Helper()
	r0, w0 := must.OK2(os.Pipe())
	r1, w1 := must.OK2(os.Pipe())
	r2, w2 := must.OK2(os.Pipe())

	go func() {
		io.Copy(w0, strings.NewReader(stdin))
		w0.Close()
	}()
	outc := drain(r1)
	errc := drain(r2)

	exit := prog.Run([3]*os.File{r0, w1, w2}, append([]string{"gotcl"}, args...), p)
	w1.Close()
	w2.Close()
	r0.Close()
	return Output{Exit: exit, Stdout: <-outc, Stderr: <-errc}
}

func drain(r *os.File) <-chan string {
	c := make(chan string, 1)
	go func() {
		b, _ := io.ReadAll(r)
		r.Close()
		c <- string(b)
	}()
	return c
}
