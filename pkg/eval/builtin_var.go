package eval

import (
	"strconv"
	"strings"

	"github.com/gotcl/gotcl/pkg/vals"
)

func registerVarCmds(in *Interp) {
	register(in, "set", setCmd)
	register(in, "unset", unsetCmd)
	register(in, "incr", incrCmd)
	register(in, "append", appendCmd)
	register(in, "lappend", lappendCmd)
	register(in, "global", globalCmd)
	register(in, "upvar", upvarCmd)
	register(in, "uplevel", uplevelCmd)
	register(in, "array", arrayCmd)
}

func setCmd(in *Interp, args []*vals.Val) Code {
	if len(args) != 2 && len(args) != 3 {
		return in.WrongNumArgs("set varName ?newValue?")
	}
	name, index := splitIndexedName(args[1].String())
	if len(args) == 2 {
		v, code := in.GetVar(name, index)
		if code != CodeOK {
			return code
		}
		return done(in, v.Retain())
	}
	v, code := in.SetVar(name, index, args[2].Retain())
	if code != CodeOK {
		return code
	}
	return done(in, v.Retain())
}

func unsetCmd(in *Interp, args []*vals.Val) Code {
	i := 1
	complain := true
	if i < len(args) && args[i].String() == "-nocomplain" {
		complain = false
		i++
	}
	for ; i < len(args); i++ {
		name, index := splitIndexedName(args[i].String())
		if code := in.UnsetVar(name, index); code != CodeOK && complain {
			return code
		}
	}
	return doneStr(in, "")
}

func incrCmd(in *Interp, args []*vals.Val) Code {
	if len(args) != 2 && len(args) != 3 {
		return in.WrongNumArgs("incr varName ?increment?")
	}
	by := int64(1)
	if len(args) == 3 {
		n, err := vals.Int(args[2])
		if err != nil {
			return in.Error(err)
		}
		by = n
	}
	v, code := in.incrVar(args[1].String(), by)
	if code != CodeOK {
		return code
	}
	return done(in, v.Retain())
}

func appendCmd(in *Interp, args []*vals.Val) Code {
	if len(args) < 2 {
		return in.WrongNumArgs("append varName ?value ...?")
	}
	name, index := splitIndexedName(args[1].String())
	var sb strings.Builder
	if in.VarExists(name, index) {
		v, code := in.GetVar(name, index)
		if code != CodeOK {
			return code
		}
		sb.WriteString(v.String())
	}
	for _, a := range args[2:] {
		sb.WriteString(a.String())
	}
	v, code := in.SetVar(name, index, vals.NewString(sb.String()))
	if code != CodeOK {
		return code
	}
	return done(in, v.Retain())
}

func lappendCmd(in *Interp, args []*vals.Val) Code {
	if len(args) < 2 {
		return in.WrongNumArgs("lappend varName ?value ...?")
	}
	name, index := splitIndexedName(args[1].String())
	var elems []*vals.Val
	if in.VarExists(name, index) {
		cur, code := in.GetVar(name, index)
		if code != CodeOK {
			return code
		}
		cs, err := vals.ListElems(cur)
		if err != nil {
			return in.Error(err)
		}
		elems = make([]*vals.Val, 0, len(cs)+len(args)-2)
		for _, e := range cs {
			elems = append(elems, e.Retain())
		}
	}
	for _, a := range args[2:] {
		elems = append(elems, a.Retain())
	}
	v, code := in.SetVar(name, index, vals.NewList(elems...))
	if code != CodeOK {
		return code
	}
	return done(in, v.Retain())
}

func globalCmd(in *Interp, args []*vals.Val) Code {
	if in.Level() == 0 {
		return doneStr(in, "")
	}
	for _, a := range args[1:] {
		_, base := splitVarName(a.String())
		if code := in.linkVar(in.globalFrame(), base, base); code != CodeOK {
			return code
		}
	}
	return doneStr(in, "")
}

// parseLevel resolves a frame-level word: "#N" is absolute, a plain integer
// is relative to the current frame. ok is false when the word is not a level
// at all.
func (in *Interp) parseLevel(s string) (level int, ok bool, code Code) {
	if strings.HasPrefix(s, "#") {
		n, err := strconv.Atoi(s[1:])
		if err != nil || n < 0 || n > in.Level() {
			return 0, true, in.Errorf("bad level %q", s)
		}
		return n, true, CodeOK
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, CodeOK
	}
	level = in.Level() - n
	if n < 0 || level < 0 {
		return 0, true, in.Errorf("bad level %q", s)
	}
	return level, true, CodeOK
}

func upvarCmd(in *Interp, args []*vals.Val) Code {
	if len(args) < 3 {
		return in.WrongNumArgs("upvar ?level? otherVar localVar ?otherVar localVar ...?")
	}
	level := in.Level() - 1
	rest := args[1:]
	if lv, isLevel, code := in.parseLevel(rest[0].String()); isLevel {
		if code != CodeOK {
			return code
		}
		level = lv
		rest = rest[1:]
	}
	if len(rest) == 0 || len(rest)%2 != 0 {
		return in.WrongNumArgs("upvar ?level? otherVar localVar ?otherVar localVar ...?")
	}
	if level < 0 {
		return in.Errorf(`bad level "1"`)
	}
	f := in.frameAt(level)
	for i := 0; i < len(rest); i += 2 {
		if code := in.linkVar(f, rest[i].String(), rest[i+1].String()); code != CodeOK {
			return code
		}
	}
	return doneStr(in, "")
}

func uplevelCmd(in *Interp, args []*vals.Val) Code {
	if len(args) < 2 {
		return in.WrongNumArgs("uplevel ?level? arg ?arg ...?")
	}
	level := in.Level() - 1
	rest := args[1:]
	if lv, isLevel, code := in.parseLevel(rest[0].String()); isLevel {
		if code != CodeOK {
			return code
		}
		level = lv
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return in.WrongNumArgs("uplevel ?level? arg ?arg ...?")
	}
	if level < 0 {
		return in.Errorf(`bad level "1"`)
	}
	var script *vals.Val
	if len(rest) == 1 {
		script = rest[0].Retain()
	} else {
		script = vals.NewString(joinWords(rest))
	}
	defer script.Release()

	// Evaluate with the frame stack truncated to the target level. The slice
	// is copied so that frames pushed during evaluation cannot overwrite the
	// saved tail.
	saved := in.frames
	in.frames = append([]*Frame{}, in.frames[:level+1]...)
	code := in.EvalNested(script)
	in.frames = saved
	return code
}

func arrayCmd(in *Interp, args []*vals.Val) Code {
	if len(args) < 3 {
		return in.WrongNumArgs("array subcommand arrayName ?arg ...?")
	}
	sub := args[1].String()
	name := args[2].String()
	cell := in.resolveVar(name, false)
	isArray := cell != nil && cell.arr != nil
	switch sub {
	case "exists":
		return doneBool(in, isArray)
	case "size":
		if !isArray {
			return doneInt(in, 0)
		}
		return doneInt(in, int64(len(cell.arr)))
	case "names":
		var names []string
		if isArray {
			pattern := "*"
			if len(args) == 4 {
				pattern = args[3].String()
			}
			for k := range cell.arr {
				if globMatch(pattern, k, false) {
					names = append(names, k)
				}
			}
		}
		return doneStr(in, vals.JoinList(names))
	case "get":
		var parts []string
		if isArray {
			for k, v := range cell.arr {
				parts = append(parts, k, v.String())
			}
		}
		return doneStr(in, vals.JoinList(parts))
	case "set":
		if len(args) != 4 {
			return in.WrongNumArgs("array set arrayName list")
		}
		pairs, err := vals.SplitList(args[3].String())
		if err != nil {
			return in.Error(err)
		}
		if len(pairs)%2 != 0 {
			return in.Errorf("list must have an even number of elements")
		}
		for i := 0; i < len(pairs); i += 2 {
			if _, code := in.SetVar(name, pairs[i], vals.NewString(pairs[i+1])); code != CodeOK {
				return code
			}
		}
		return doneStr(in, "")
	case "unset":
		if isArray {
			return in.UnsetVar(name, "")
		}
		return doneStr(in, "")
	}
	return in.Errorf("unknown or ambiguous subcommand %q: must be exists, get, names, set, size, or unset", sub)
}
