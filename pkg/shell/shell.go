// Package shell is the entry point for the terminal interface: script
// execution and the interactive prompt.
package shell

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/gotcl/gotcl/pkg/eval"
	"github.com/gotcl/gotcl/pkg/prog"
	"github.com/gotcl/gotcl/pkg/vals"
)

// Program is the shell subprogram. It always runs, so it should be the last
// program in a composite.
type Program struct {
	codeInArg   bool
	compileOnly bool
	noRc        bool
	rc          string
	db          string
	json        bool
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.codeInArg, "c", false, "take first argument as code to execute")
	fs.BoolVar(&p.compileOnly, "compileonly", false, "parse and compile, but do not execute")
	fs.BoolVar(&p.noRc, "norc", false, "run without sourcing the rc file")
	fs.StringVar(&p.rc, "rc", "", "path to the rc file")
	fs.StringVar(&p.db, "db", "", "path to the command history database")
	fs.BoolVar(&p.json, "json", false, "show -compileonly output in JSON")
}

func (p *Program) Run(fds [3]*os.File, args []string) error {
	if len(args) > 0 {
		exit := script(fds, args, &scriptCfg{
			Cmd: p.codeInArg, CompileOnly: p.compileOnly, JSON: p.json})
		return prog.Exit(exit)
	}
	if p.codeInArg {
		return prog.BadUsage("-c requires an argument")
	}

	if !isATTY(fds[0]) {
		// Stdin is a pipe or file; run it as a script.
		code, err := io.ReadAll(fds[0])
		if err != nil {
			fmt.Fprintln(fds[2], "cannot read stdin:", err)
			return prog.Exit(2)
		}
		in := eval.NewInterp()
		in.Stdout, in.Stderr = fds[1], fds[2]
		return prog.Exit(evalInTerm(in, fds, string(code)))
	}

	interact(fds, &interactCfg{
		RC: p.rcPath(fds[2]), DB: p.dbPath(fds[2])})
	return nil
}

func (p *Program) rcPath(stderr *os.File) string {
	if p.noRc {
		return ""
	}
	if p.rc != "" {
		return p.rc
	}
	rc, err := RCPath()
	if err != nil {
		fmt.Fprintln(stderr, "Warning:", err)
		return ""
	}
	return rc
}

func (p *Program) dbPath(stderr *os.File) string {
	if p.db != "" {
		return p.db
	}
	db, err := DBPath()
	if err != nil {
		fmt.Fprintln(stderr, "Warning:", err)
		fmt.Fprintln(stderr, "History will not be persisted.")
		return ""
	}
	return db
}

func isATTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// evalInTerm evaluates code in the interpreter and reports any error to
// stderr, including the accumulated error trace. It returns the exit status.
func evalInTerm(in *eval.Interp, fds [3]*os.File, code string) int {
	_, c := in.Eval(code)
	if c == eval.CodeOK {
		return 0
	}
	showError(fds[2], in, c)
	return 1
}

func showError(w io.Writer, in *eval.Interp, c eval.Code) {
	opts := in.ReturnOptions(c)
	defer opts.Release()
	if info, ok, _ := vals.DictGet(opts, "-errorinfo"); ok {
		fmt.Fprintln(w, info.String())
	} else {
		fmt.Fprintln(w, in.Result().String())
	}
}
