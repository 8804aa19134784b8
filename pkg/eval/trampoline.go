package eval

import (
	"strings"

	"github.com/gotcl/gotcl/pkg/vals"
)

// The trampoline makes script evaluation non-recursive in host-stack terms.
// A command that evaluates user script does not call back into the engine;
// it pushes tasks and returns codePending. The driver loop pops tasks in
// LIFO order, delivering each task's completion code to the one beneath it.
//
// Two task shapes exist: an execTask runs (or resumes) compiled bytecode,
// and a funcTask is a deferred callback receiving the completion code of the
// work scheduled above it.
type task interface{}

type execTask struct{ st *execState }

type funcTask func(in *Interp, code Code) Code

func (in *Interp) push(t task) { in.tasks = append(in.tasks, t) }

func (in *Interp) popTask() {
	in.tasks = in.tasks[:len(in.tasks)-1]
}

// run drives the trampoline until the task stack returns to its depth at
// entry, and returns the completion code of the last task.
func (in *Interp) run() Code {
	return in.runUntil(len(in.tasks) - 1)
}

func (in *Interp) runUntil(base int) Code {
	code := CodeOK
	for len(in.tasks) > base {
		switch t := in.tasks[len(in.tasks)-1].(type) {
		case *execTask:
			code = t.st.run(code)
			if code == codePending {
				// The state suspended and scheduled tasks above itself; it
				// will be resumed with their completion code.
				code = CodeOK
				continue
			}
			in.popTask()
		case funcTask:
			in.popTask()
			code = t(in, code)
		}
	}
	return code
}

// callProc schedules a call to a script-defined procedure: the compiled body
// runs as its own task, with a cleanup callback beneath it that pops the
// frame and resolves the return protocol. Always returns codePending.
func (in *Interp) callProc(cmd *Command, args []*vals.Val) Code {
	p := cmd.Proc
	formalNames := make([]string, len(p.Formals))
	for i, f := range p.Formals {
		formalNames[i] = f.Name
	}
	proc, err := compiledProcBody(p.Body, in, p.Name, formalNames)
	if err != nil {
		return in.Error(err)
	}
	frame := &Frame{
		vars:    make(map[string]*Var),
		locals:  make([]*Var, proc.NumLocals()),
		proc:    proc,
		name:    p.Name,
		callSrc: joinWords(args),
	}
	if code := bindFormals(in, frame, p, args[1:]); code != CodeOK {
		for _, v := range frame.vars {
			v.free()
		}
		return code
	}
	in.pushFrame(frame)
	name := p.Name
	in.push(funcTask(func(in *Interp, code Code) Code {
		return in.procReturn(name, code)
	}))
	in.push(&execTask{st: newExecState(in, proc, frame)})
	return codePending
}

// bindFormals binds call arguments to the procedure's formal parameters in
// frame, applying defaults and collecting the trailing args catch-all.
func bindFormals(in *Interp, frame *Frame, p *ProcDef, args []*vals.Val) Code {
	i := 0
	for fi, f := range p.Formals {
		if f.Args && fi == len(p.Formals)-1 {
			rest := make([]*vals.Val, 0, len(args)-i)
			for ; i < len(args); i++ {
				rest = append(rest, args[i].Retain())
			}
			frame.vars[f.Name] = &Var{scalar: vals.NewList(rest...)}
			return CodeOK
		}
		switch {
		case i < len(args):
			frame.vars[f.Name] = &Var{scalar: args[i].Retain()}
			i++
		case f.Default != nil:
			frame.vars[f.Name] = &Var{scalar: f.Default.Retain()}
		default:
			return in.WrongNumArgs(procUsage(p))
		}
	}
	if i < len(args) {
		return in.WrongNumArgs(procUsage(p))
	}
	return CodeOK
}

// procUsage formats the wrong-#-args usage string for a procedure.
func procUsage(p *ProcDef) string {
	parts := []string{p.Name}
	for i, f := range p.Formals {
		switch {
		case f.Args && i == len(p.Formals)-1:
			parts = append(parts, "?arg ...?")
		case f.Default != nil:
			parts = append(parts, "?"+f.Name+"?")
		default:
			parts = append(parts, f.Name)
		}
	}
	return strings.Join(parts, " ")
}

// procReturn resolves a procedure's completion: the frame is popped, a
// pending [return] decrements its level, errors collect a stack-frame
// fragment, and loop codes escaping the procedure become errors.
func (in *Interp) procReturn(name string, code Code) Code {
	in.popFrame()
	if code == CodeReturn {
		in.returnLevel--
		if in.returnLevel <= 0 {
			code = in.returnCode
			if code == CodeError {
				// A [return -code error] materializes as a fresh error at
				// the call site.
				in.errLogged = false
			}
		}
	}
	switch code {
	case CodeError:
		in.logErrorFrame(name)
	case CodeBreak:
		code = in.Errorf(`invoked "break" outside of a loop`)
	case CodeContinue:
		code = in.Errorf(`invoked "continue" outside of a loop`)
	}
	return code
}

// joinWords renders an argument vector for [info level] and errorinfo.
func joinWords(args []*vals.Val) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, " ")
}
