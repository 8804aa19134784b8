// Package eval implements the interpreter core: the bytecode compiler, the
// non-recursive execution engine, and the built-in commands.
//
// Scripts are parsed by pkg/parse, lowered to a linear instruction stream by
// the compiler (compiler.go and the compile_*.go specializers), and run on a
// stack machine (vm.go). Procedure calls and other script-evaluating
// operations do not recurse on the host stack: they suspend the running
// bytecode, schedule tasks on an explicit trampoline, and are resumed with
// the completion code of the nested work (trampoline.go).
package eval

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gotcl/gotcl/pkg/parse"
	"github.com/gotcl/gotcl/pkg/vals"
)

// Command is a registered command: a runtime invoker plus an optional
// compile-time specializer.
type Command struct {
	Name string
	// Fn is the runtime invoker. args[0] is the command name. It sets the
	// interpreter result and returns a completion code. An invoker that
	// schedules trampoline tasks returns codePending.
	Fn func(in *Interp, args []*vals.Val) Code
	// Compile, when non-nil, may lower an invocation of this command to
	// inline bytecode.
	Compile Specializer
	// Proc is set for script-defined procedures.
	Proc *ProcDef
}

// ProcDef is a script-defined procedure.
type ProcDef struct {
	Name    string
	Formals []Formal
	Body    *vals.Val
}

// Formal is one formal parameter, with an optional default.
type Formal struct {
	Name    string
	Default *vals.Val
	// Args marks the trailing catch-all parameter.
	Args bool
}

// Interp is one interpreter instance: a command table, a call-frame stack,
// and the current result and return options. It is single-threaded.
type Interp struct {
	commands map[string]*Command
	frames   []*Frame

	result *vals.Val
	// Pending return protocol: the code and remaining level of an in-flight
	// [return -code C -level L].
	returnCode  Code
	returnLevel int
	// Error state: the -errorcode classification, accumulated -errorinfo,
	// and whether the current error has already been seeded into errorInfo.
	// errLine is the line of the command the error was last logged at,
	// within its compiled unit.
	errorCode *vals.Val
	errorInfo string
	errLogged bool
	errLine   int

	tasks []task

	Stdout io.Writer
	Stderr io.Writer

	// Limit is a cooperative resource limit: when it returns non-nil, catch
	// is disabled and evaluation unwinds with the error.
	Limit    func() error
	limitHit bool
}

// Frame is one call frame: named variables, plus an indexed local slot cache
// for compiled procedure bodies.
type Frame struct {
	vars   map[string]*Var
	locals []*Var
	proc   *CompiledProc
	// name and callSrc identify the frame for errorinfo and [info level].
	name    string
	callSrc string
}

// NewInterp creates an interpreter with the built-in command set and a global
// frame.
func NewInterp() *Interp {
	in := &Interp{
		commands: make(map[string]*Command),
		result:   vals.NewString(""),
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
	in.frames = []*Frame{{vars: make(map[string]*Var), name: "global"}}
	registerBuiltins(in)
	return in
}

// RegisterCommand registers a command, replacing any existing one of the same
// name.
func (in *Interp) RegisterCommand(cmd *Command) {
	in.commands[cmd.Name] = cmd
}

// Lookup returns the command with the given name, or nil.
func (in *Interp) Lookup(name string) *Command { return in.commands[name] }

// CommandNames returns the names of all registered commands.
func (in *Interp) CommandNames() []string {
	names := make([]string, 0, len(in.commands))
	for name := range in.commands {
		names = append(names, name)
	}
	return names
}

// globalFrame returns the bottom frame.
func (in *Interp) globalFrame() *Frame { return in.frames[0] }

// frame returns the current (topmost) frame.
func (in *Interp) frame() *Frame { return in.frames[len(in.frames)-1] }

// Level returns the current call depth; 0 is the global level.
func (in *Interp) Level() int { return len(in.frames) - 1 }

// frameAt returns the frame at an absolute level, 0 being global.
func (in *Interp) frameAt(level int) *Frame { return in.frames[level] }

func (in *Interp) pushFrame(f *Frame) {
	if f.vars == nil {
		f.vars = make(map[string]*Var)
	}
	in.frames = append(in.frames, f)
}

func (in *Interp) popFrame() {
	f := in.frames[len(in.frames)-1]
	in.frames = in.frames[:len(in.frames)-1]
	for _, v := range f.vars {
		v.free()
	}
}

// Result returns the current result value, borrowed from the interpreter.
func (in *Interp) Result() *vals.Val { return in.result }

// SetResult replaces the current result, taking ownership of one reference.
func (in *Interp) SetResult(v *vals.Val) {
	if in.result == v {
		return
	}
	in.result.Release()
	in.result = v
}

// SetResultString replaces the current result with a string value.
func (in *Interp) SetResultString(s string) { in.SetResult(vals.NewString(s)) }

// ResetResult sets the result to the empty string.
func (in *Interp) ResetResult() { in.SetResultString("") }

// Errorf sets the result to a formatted message, resets the error state and
// returns CodeError. The -errorcode defaults to NONE.
func (in *Interp) Errorf(format string, args ...any) Code {
	in.SetResultString(fmt.Sprintf(format, args...))
	in.setErrorCode(vals.NewString("NONE"))
	in.errLogged = false
	return CodeError
}

// Error reports a Go error as a script error.
func (in *Interp) Error(err error) Code { return in.Errorf("%s", err.Error()) }

// WrongNumArgs reports the standard wrong-argument-count error.
func (in *Interp) WrongNumArgs(usage string) Code {
	return in.Errorf(`wrong # args: should be "%s"`, usage)
}

func (in *Interp) setErrorCode(v *vals.Val) {
	if in.errorCode != nil {
		in.errorCode.Release()
	}
	in.errorCode = v
}

// SetErrorCode sets the -errorcode classification for the current error.
func (in *Interp) SetErrorCode(v *vals.Val) { in.setErrorCode(v) }

// logError accumulates -errorinfo context for an error propagating through
// the command whose source text is src and line within its compiled unit.
func (in *Interp) logError(src string, line int) {
	in.errLine = line
	src = summarizeSrc(src)
	if !in.errLogged {
		in.errorInfo = in.result.String() + "\n    while executing\n\"" + src + "\""
		in.errLogged = true
	} else {
		in.errorInfo += "\n    invoked from within\n\"" + src + "\""
	}
}

// logErrorFrame adds a procedure-frame fragment to -errorinfo. The line is
// that of the failing command in the procedure's body, recorded by the last
// logError in that frame.
func (in *Interp) logErrorFrame(name string) {
	if in.errLogged {
		in.errorInfo += fmt.Sprintf("\n    (procedure %q line %d)", name, in.errLine)
	}
}

func summarizeSrc(src string) string {
	src = strings.TrimSpace(src)
	if i := strings.IndexByte(src, '\n'); i >= 0 {
		src = src[:i] + "..."
	}
	if len(src) > 150 {
		src = src[:150] + "..."
	}
	return src
}

// ReturnOptions builds the return options dict for a completion code: -code
// and -level always, -errorinfo and -errorcode for errors.
func (in *Interp) ReturnOptions(code Code) *vals.Val {
	d := vals.NewDict()
	level := 0
	c := code
	if code == CodeReturn {
		level, c = in.returnLevel, in.returnCode
	}
	vals.DictSet(d, "-code", vals.NewInt(int64(c)))
	vals.DictSet(d, "-level", vals.NewInt(int64(level)))
	if c == CodeError {
		ec := in.errorCode
		if ec == nil {
			ec = vals.NewString("NONE")
			in.errorCode = ec
		}
		vals.DictSet(d, "-errorcode", ec.Retain())
		info := in.errorInfo
		if info == "" {
			info = in.result.String()
		}
		vals.DictSet(d, "-errorinfo", vals.NewString(info))
	}
	return d
}

// checkLimit enforces the cooperative resource limit. Once exceeded, catch is
// disabled and every task short-circuits.
func (in *Interp) checkLimit() Code {
	if in.Limit == nil {
		return CodeOK
	}
	if err := in.Limit(); err != nil {
		in.limitHit = true
		return in.Error(err)
	}
	return CodeOK
}

// catchDisabled reports whether catch handling is suppressed (resource limit
// exceeded).
func (in *Interp) catchDisabled() bool { return in.limitHit }

// Eval evaluates a script at the top level, returning the result string and
// the completion code. A pending [return] that unwinds past the outermost
// script resolves at this boundary.
func (in *Interp) Eval(script string) (string, Code) {
	v := vals.NewString(script)
	defer v.Release()
	code := in.evalValue(v)
	switch code {
	case CodeReturn:
		in.returnLevel--
		if in.returnLevel <= 0 {
			code = in.returnCode
		}
	case CodeBreak:
		code = in.Errorf(`invoked "break" outside of a loop`)
	case CodeContinue:
		code = in.Errorf(`invoked "continue" outside of a loop`)
	}
	return in.result.String(), code
}

// Check parses and compiles a script without running it. It returns the
// parse or compile error, or nil. Parse errors are reported here even
// though compilation would defer them to run time.
func (in *Interp) Check(name, src string) error {
	if err := parse.ParseScript(parse.Source{Name: name, Code: src}).Err(); err != nil {
		return err
	}
	proc, err := compileScript(in, name, src, false, nil)
	if err != nil {
		return err
	}
	proc.free()
	return nil
}

// evalValue compiles and runs a script value, driving the trampoline to
// completion.
func (in *Interp) evalValue(v *vals.Val) Code {
	proc, err := compiledFor(v, in)
	if err != nil {
		return in.Error(err)
	}
	st := newExecState(in, proc, in.frame())
	in.push(&execTask{st: st})
	return in.run()
}

// EvalNested evaluates a script value from inside a running command,
// using a nested trampoline. The recursion this costs is one host frame per
// textual nesting level, not per user-script call depth.
func (in *Interp) EvalNested(v *vals.Val) Code { return in.evalValue(v) }

// exprEnv adapts the interpreter to the expression evaluator's environment
// interface.
type exprEnv struct{ in *Interp }

func (e exprEnv) GetVar(name, index string) (string, error) {
	v, code := e.in.GetVar(name, index)
	if code != CodeOK {
		return "", fmt.Errorf("%s", e.in.result.String())
	}
	return v.String(), nil
}

func (e exprEnv) EvalScript(script string) (string, error) {
	v := vals.NewString(script)
	defer v.Release()
	if code := e.in.EvalNested(v); code != CodeOK {
		return "", fmt.Errorf("%s", e.in.result.String())
	}
	return e.in.result.String(), nil
}

// ParseResultError converts a parse error into a script error, positioning it
// with the parse result's error range.
func (in *Interp) parseError(kind parse.ErrKind) Code {
	return in.Errorf("%s", kind.String())
}
