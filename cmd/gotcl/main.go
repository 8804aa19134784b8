// Gotcl is a command-language interpreter: a bytecode-compiling, trampolined
// implementation of a Tcl-style language, with an interactive shell and a
// language server.
package main

import (
	"os"

	"github.com/gotcl/gotcl/pkg/buildinfo"
	"github.com/gotcl/gotcl/pkg/lsp"
	"github.com/gotcl/gotcl/pkg/prog"
	"github.com/gotcl/gotcl/pkg/shell"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(
			&buildinfo.Program{}, &lsp.Program{}, &shell.Program{})))
}
