// Package prog provides the entry point to gotcl. Its subprograms are the
// interactive shell, script execution and the language server; the main
// function composes them and dispatches on flags.
package prog

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

// FlagSet wraps a [flag.FlagSet] so subprograms can register the flags they
// consume.
type FlagSet struct {
	*flag.FlagSet
}

// Program represents a subprogram.
type Program interface {
	// RegisterFlags registers the flags the subprogram cares about.
	RegisterFlags(fs *FlagSet)
	// Run runs the subprogram. It returns ErrNextProgram if the subprogram
	// decides, from the parsed flags, that it should not run.
	Run(fds [3]*os.File, args []string) error
}

// ErrNextProgram may be returned by Program.Run to signal that the next
// program in a composite should run instead.
var ErrNextProgram = errors.New("internal error: no suitable subprogram")

// Run parses command-line flags and runs the program. It returns the exit
// status of the process.
func Run(fds [3]*os.File, args []string, p Program) int {
	fs := flag.NewFlagSet("gotcl", flag.ContinueOnError)
	// Error and usage are printed explicitly below.
	fs.SetOutput(io.Discard)
	var help bool
	fs.BoolVar(&help, "help", false, "show usage help and quit")
	p.RegisterFlags(&FlagSet{fs})

	err := fs.Parse(args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			// -h is not defined; Parse reports it as ErrHelp. Print the
			// same message as for any other undefined flag.
			fmt.Fprintln(fds[2], "flag provided but not defined: -h")
		} else {
			fmt.Fprintln(fds[2], err)
		}
		usage(fds[2], fs)
		return 2
	}

	if help {
		usage(fds[1], fs)
		return 0
	}

	err = p.Run(fds, fs.Args())
	if err == nil {
		return 0
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(fds[2], msg)
	}
	switch err := err.(type) {
	case badUsageError:
		usage(fds[2], fs)
	case exitError:
		return err.exit
	}
	return 2
}

func usage(out io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(out, "Usage: gotcl [flags] [script]")
	fmt.Fprintln(out, "Supported flags:")
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// Composite returns a Program that tries each of the given programs,
// terminating at the first one that doesn't return ErrNextProgram.
func Composite(programs ...Program) Program {
	return compositeProgram(programs)
}

type compositeProgram []Program

func (cp compositeProgram) RegisterFlags(fs *FlagSet) {
	for _, p := range cp {
		p.RegisterFlags(fs)
	}
}

func (cp compositeProgram) Run(fds [3]*os.File, args []string) error {
	for _, p := range cp {
		err := p.Run(fds, args)
		if err != ErrNextProgram {
			return err
		}
	}
	return ErrNextProgram
}

// BadUsage returns a special error that may be returned by Program.Run. It
// causes the main function to print the message, the usage information, and
// exit with 2.
func BadUsage(msg string) error { return badUsageError{msg} }

type badUsageError struct{ msg string }

func (e badUsageError) Error() string { return e.msg }

// Exit returns a special error that may be returned by Program.Run. It causes
// the main function to exit with the given status without printing any error
// message. Exit(0) returns nil.
func Exit(exit int) error {
	if exit == 0 {
		return nil
	}
	return exitError{exit}
}

type exitError struct{ exit int }

func (e exitError) Error() string { return "" }
