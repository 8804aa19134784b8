package eval

import (
	"fmt"
	"sort"

	"github.com/gotcl/gotcl/pkg/parse"
	"github.com/gotcl/gotcl/pkg/vals"
)

func registerInfoCmds(in *Interp) {
	register(in, "info", infoCmd)
	register(in, "puts", putsCmd)
}

func infoCmd(in *Interp, args []*vals.Val) Code {
	if len(args) < 2 {
		return in.WrongNumArgs("info subcommand ?arg ...?")
	}
	switch args[1].String() {
	case "complete":
		if len(args) != 3 {
			return in.WrongNumArgs("info complete command")
		}
		return doneBool(in, parse.IsComplete(args[2].String()))
	case "exists":
		if len(args) != 3 {
			return in.WrongNumArgs("info exists varName")
		}
		name, index := splitIndexedName(args[2].String())
		return doneBool(in, in.VarExists(name, index))
	case "level":
		if len(args) == 2 {
			return doneInt(in, int64(in.Level()))
		}
		if len(args) != 3 {
			return in.WrongNumArgs("info level ?number?")
		}
		n, err := vals.Int(args[2])
		if err != nil {
			return in.Error(err)
		}
		level := int(n)
		if level <= 0 {
			level += in.Level()
		}
		if level <= 0 || level > in.Level() {
			return in.Errorf("bad level %q", args[2].String())
		}
		f := in.frameAt(level)
		return doneStr(in, f.callSrc)
	case "commands", "procs":
		pattern := "*"
		if len(args) == 3 {
			pattern = args[2].String()
		} else if len(args) > 3 {
			return in.WrongNumArgs("info " + args[1].String() + " ?pattern?")
		}
		procsOnly := args[1].String() == "procs"
		var names []string
		for _, name := range in.CommandNames() {
			if procsOnly && in.Lookup(name).Proc == nil {
				continue
			}
			if globMatch(pattern, name, false) {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		return doneStr(in, vals.JoinList(names))
	case "body":
		if len(args) != 3 {
			return in.WrongNumArgs("info body procname")
		}
		cmd := in.Lookup(args[2].String())
		if cmd == nil || cmd.Proc == nil {
			return in.Errorf("%q isn't a procedure", args[2].String())
		}
		return done(in, cmd.Proc.Body.Retain())
	case "args":
		if len(args) != 3 {
			return in.WrongNumArgs("info args procname")
		}
		cmd := in.Lookup(args[2].String())
		if cmd == nil || cmd.Proc == nil {
			return in.Errorf("%q isn't a procedure", args[2].String())
		}
		names := make([]string, len(cmd.Proc.Formals))
		for i, f := range cmd.Proc.Formals {
			names[i] = f.Name
		}
		return doneStr(in, vals.JoinList(names))
	}
	return in.Errorf("unknown or ambiguous subcommand %q", args[1].String())
}

func putsCmd(in *Interp, args []*vals.Val) Code {
	rest := args[1:]
	newline := true
	if len(rest) > 0 && rest[0].String() == "-nonewline" {
		newline = false
		rest = rest[1:]
	}
	w := in.Stdout
	if len(rest) == 2 {
		switch rest[0].String() {
		case "stdout":
		case "stderr":
			w = in.Stderr
		default:
			return in.Errorf("can not find channel named %q", rest[0].String())
		}
		rest = rest[1:]
	}
	if len(rest) != 1 {
		return in.WrongNumArgs("puts ?-nonewline? ?channelId? string")
	}
	if newline {
		fmt.Fprintln(w, rest[0].String())
	} else {
		fmt.Fprint(w, rest[0].String())
	}
	return doneStr(in, "")
}
