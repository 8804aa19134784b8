package eval

import (
	"os"

	"github.com/gotcl/gotcl/pkg/expr"
	"github.com/gotcl/gotcl/pkg/vals"
)

func registerFlowCmds(in *Interp) {
	register(in, "if", ifCmd)
	register(in, "while", whileCmd)
	register(in, "for", forCmd)
	register(in, "foreach", foreachCmd)
	register(in, "switch", switchCmd)
	register(in, "catch", catchCmd)
	register(in, "try", tryCmd)
	register(in, "return", returnCmd)
	register(in, "error", errorCmd)
	register(in, "break", breakCmd)
	register(in, "continue", continueCmd)
	register(in, "eval", evalCmd)
	register(in, "expr", exprCmd)
	register(in, "subst", substCmd)
	register(in, "source", sourceCmd)
}

// The runtime forms of the control commands back the specializers: they run
// when an invocation is too dynamic to lower, or when the command name was
// produced by substitution.

func evalCond(in *Interp, cond *vals.Val) (bool, Code) {
	b, err := expr.EvalBool(cond, exprEnv{in})
	if err != nil {
		return false, in.Error(err)
	}
	return b, CodeOK
}

func ifCmd(in *Interp, args []*vals.Val) Code {
	i := 1
	for {
		if i+1 >= len(args) {
			return in.WrongNumArgs("if expr1 body1 ?elseif expr2 body2 ...? ?else bodyN?")
		}
		cond := args[i]
		i++
		if args[i].String() == "then" {
			i++
		}
		if i >= len(args) {
			return in.WrongNumArgs("if expr1 body1 ?elseif expr2 body2 ...? ?else bodyN?")
		}
		b, code := evalCond(in, cond)
		if code != CodeOK {
			return code
		}
		if b {
			return in.EvalNested(args[i])
		}
		i++
		if i >= len(args) {
			return doneStr(in, "")
		}
		switch args[i].String() {
		case "elseif":
			i++
			continue
		case "else":
			i++
			if i+1 != len(args) {
				return in.WrongNumArgs("if expr1 body1 ?elseif expr2 body2 ...? ?else bodyN?")
			}
			return in.EvalNested(args[i])
		default:
			// An implicit else branch.
			if i+1 != len(args) {
				return in.WrongNumArgs("if expr1 body1 ?elseif expr2 body2 ...? ?else bodyN?")
			}
			return in.EvalNested(args[i])
		}
	}
}

// loopBody runs one loop body and folds break/continue into the loop
// protocol: done is set on break, and any other non-OK code propagates.
func loopBody(in *Interp, body *vals.Val) (stop bool, code Code) {
	if code := in.checkLimit(); code != CodeOK {
		return true, code
	}
	switch code := in.EvalNested(body); code {
	case CodeOK, CodeContinue:
		return false, CodeOK
	case CodeBreak:
		return true, CodeOK
	default:
		return true, code
	}
}

func whileCmd(in *Interp, args []*vals.Val) Code {
	if len(args) != 3 {
		return in.WrongNumArgs("while test command")
	}
	for {
		b, code := evalCond(in, args[1])
		if code != CodeOK {
			return code
		}
		if !b {
			return doneStr(in, "")
		}
		if stop, code := loopBody(in, args[2]); stop {
			if code != CodeOK {
				return code
			}
			return doneStr(in, "")
		}
	}
}

func forCmd(in *Interp, args []*vals.Val) Code {
	if len(args) != 5 {
		return in.WrongNumArgs("for start test next command")
	}
	if code := in.EvalNested(args[1]); code != CodeOK {
		return code
	}
	for {
		b, code := evalCond(in, args[2])
		if code != CodeOK {
			return code
		}
		if !b {
			return doneStr(in, "")
		}
		if stop, code := loopBody(in, args[4]); stop {
			if code != CodeOK {
				return code
			}
			return doneStr(in, "")
		}
		if code := in.EvalNested(args[3]); code != CodeOK {
			return code
		}
	}
}

func foreachCmd(in *Interp, args []*vals.Val) Code {
	if len(args) < 4 || len(args)%2 != 0 {
		return in.WrongNumArgs("foreach varList list ?varList list ...? command")
	}
	body := args[len(args)-1]
	var varLists [][]string
	var lists [][]*vals.Val
	total := 0
	for i := 1; i < len(args)-1; i += 2 {
		names, err := vals.SplitList(args[i].String())
		if err != nil {
			return in.Error(err)
		}
		if len(names) == 0 {
			return in.Errorf("foreach varlist is empty")
		}
		elems, err := vals.ListElems(args[i+1])
		if err != nil {
			return in.Error(err)
		}
		varLists = append(varLists, names)
		lists = append(lists, elems)
		if n := (len(elems) + len(names) - 1) / len(names); n > total {
			total = n
		}
	}
	for iter := 0; iter < total; iter++ {
		for j, names := range varLists {
			for k, name := range names {
				idx := iter*len(names) + k
				var val *vals.Val
				if idx < len(lists[j]) {
					val = lists[j][idx].Retain()
				} else {
					val = vals.NewString("")
				}
				if _, code := in.SetVarByName(name, val); code != CodeOK {
					return code
				}
			}
		}
		if stop, code := loopBody(in, body); stop {
			if code != CodeOK {
				return code
			}
			break
		}
	}
	return doneStr(in, "")
}

func switchCmd(in *Interp, args []*vals.Val) Code {
	mode := matchExact
	i := 1
	for ; i < len(args); i++ {
		opt := args[i].String()
		if len(opt) == 0 || opt[0] != '-' {
			break
		}
		if opt == "--" {
			i++
			break
		}
		switch opt {
		case "-exact":
			mode = mode&matchNocase | matchExact
		case "-glob":
			mode = mode&matchNocase | matchGlob
		case "-regexp":
			mode = mode&matchNocase | matchRe
		case "-nocase":
			mode |= matchNocase
		default:
			return in.Errorf("bad option %q: must be -exact, -glob, -regexp, -nocase, or --", opt)
		}
	}
	if i >= len(args) {
		return in.WrongNumArgs("switch ?options? string pattern body ?pattern body ...?")
	}
	str := args[i].String()
	i++

	var parts []string
	if len(args) == i+1 {
		elems, err := vals.SplitList(args[i].String())
		if err != nil {
			return in.Error(err)
		}
		parts = elems
	} else {
		for ; i < len(args); i++ {
			parts = append(parts, args[i].String())
		}
	}
	if len(parts) == 0 || len(parts)%2 != 0 {
		return in.Errorf("extra switch pattern with no body")
	}

	matchedAt := -1
	for j := 0; j < len(parts); j += 2 {
		if parts[j] == "default" && j+2 >= len(parts) {
			matchedAt = j
			break
		}
		m, err := matchString(mode, parts[j], str)
		if err != nil {
			return in.Error(err)
		}
		if m {
			matchedAt = j
			break
		}
	}
	if matchedAt < 0 {
		return doneStr(in, "")
	}
	for parts[matchedAt+1] == "-" {
		matchedAt += 2
		if matchedAt >= len(parts) {
			return in.Errorf("no body specified for pattern %q", parts[matchedAt-2])
		}
	}
	body := vals.NewString(parts[matchedAt+1])
	defer body.Release()
	return in.EvalNested(body)
}

func catchCmd(in *Interp, args []*vals.Val) Code {
	if len(args) < 2 || len(args) > 4 {
		return in.WrongNumArgs("catch script ?resultVarName? ?optionVarName?")
	}
	code := in.EvalNested(args[1])
	if in.catchDisabled() {
		return code
	}
	opts := in.ReturnOptions(code)
	if code == CodeBreak || code == CodeContinue {
		in.ResetResult()
	}
	if len(args) >= 3 {
		if _, c := in.SetVarByName(args[2].String(), in.result.Retain()); c != CodeOK {
			opts.Release()
			return c
		}
	}
	if len(args) == 4 {
		if _, c := in.SetVarByName(args[3].String(), opts.Retain()); c != CodeOK {
			opts.Release()
			return c
		}
	}
	opts.Release()
	if code == CodeReturn {
		// The pending return protocol is consumed by the catch.
		in.returnLevel = 0
	}
	in.errLogged = false
	return doneInt(in, int64(code))
}

func returnCmd(in *Interp, args []*vals.Val) Code {
	code := CodeOK
	level := 1
	i := 1
	for ; i+1 < len(args); i += 2 {
		opt := args[i].String()
		if len(opt) == 0 || opt[0] != '-' {
			break
		}
		val := args[i+1]
		switch opt {
		case "-code":
			c, ok := ParseCode(val.String())
			if !ok {
				return in.Errorf("bad completion code %q: must be ok, error, return, break, continue, or an integer", val.String())
			}
			code = c
		case "-level":
			n, err := vals.Int(val)
			if err != nil || n < 0 {
				return in.Errorf("bad -level value: expected non-negative integer but got %q", val.String())
			}
			level = int(n)
		case "-errorcode":
			in.setErrorCode(val.Retain())
		case "-errorinfo":
			in.errorInfo = val.String()
			in.errLogged = true
		default:
			return in.Errorf("bad option %q: must be -code, -errorcode, -errorinfo, or -level", opt)
		}
	}
	switch len(args) - i {
	case 0:
		in.ResetResult()
	case 1:
		in.SetResult(args[i].Retain())
	default:
		return in.WrongNumArgs("return ?-option value ...? ?result?")
	}
	if level == 0 {
		if code == CodeError {
			in.errLogged = false
		}
		return code
	}
	in.returnCode, in.returnLevel = code, level
	return CodeReturn
}

func errorCmd(in *Interp, args []*vals.Val) Code {
	if len(args) < 2 || len(args) > 4 {
		return in.WrongNumArgs("error message ?errorInfo? ?errorCode?")
	}
	in.SetResult(args[1].Retain())
	in.setErrorCode(vals.NewString("NONE"))
	in.errLogged = false
	if len(args) >= 3 && args[2].String() != "" {
		in.errorInfo = args[2].String()
		in.errLogged = true
	}
	if len(args) == 4 {
		in.setErrorCode(args[3].Retain())
	}
	return CodeError
}

func breakCmd(in *Interp, args []*vals.Val) Code {
	if len(args) != 1 {
		return in.WrongNumArgs("break")
	}
	in.ResetResult()
	return CodeBreak
}

func continueCmd(in *Interp, args []*vals.Val) Code {
	if len(args) != 1 {
		return in.WrongNumArgs("continue")
	}
	in.ResetResult()
	return CodeContinue
}

func evalCmd(in *Interp, args []*vals.Val) Code {
	if len(args) < 2 {
		return in.WrongNumArgs("eval arg ?arg ...?")
	}
	var script *vals.Val
	if len(args) == 2 {
		// A single argument evaluates directly, preserving its compiled form.
		script = args[1].Retain()
	} else {
		script = vals.NewString(joinWords(args[1:]))
	}
	defer script.Release()
	return in.EvalNested(script)
}

func exprCmd(in *Interp, args []*vals.Val) Code {
	if len(args) < 2 {
		return in.WrongNumArgs("expr arg ?arg ...?")
	}
	var res *vals.Val
	var err error
	if len(args) == 2 {
		// The single-argument form caches the parsed expression on the value.
		res, err = expr.EvalVal(args[1], exprEnv{in})
	} else {
		res, err = expr.Eval(joinWords(args[1:]), exprEnv{in})
	}
	if err != nil {
		return in.Error(err)
	}
	return done(in, res)
}

func sourceCmd(in *Interp, args []*vals.Val) Code {
	if len(args) != 2 {
		return in.WrongNumArgs("source fileName")
	}
	data, err := os.ReadFile(args[1].String())
	if err != nil {
		return in.Errorf("couldn't read file %q: %s", args[1].String(), err)
	}
	script := vals.NewString(string(data))
	defer script.Release()
	code := in.EvalNested(script)
	if code == CodeReturn {
		in.returnLevel--
		if in.returnLevel <= 0 {
			code = in.returnCode
		}
	}
	return code
}

// tryHandler is one on/trap clause of [try].
type tryHandler struct {
	// trap holds the -errorcode prefix for trap clauses; code is the matched
	// completion for on clauses.
	isTrap  bool
	code    Code
	trap    []string
	varList []string
	body    string
	fall    bool
}

func tryCmd(in *Interp, args []*vals.Val) Code {
	if len(args) < 2 {
		return in.WrongNumArgs("try body ?handler ...? ?finally script?")
	}
	body := args[1]
	var handlers []tryHandler
	var finally *vals.Val
	i := 2
	for i < len(args) {
		switch args[i].String() {
		case "on", "trap":
			if i+3 >= len(args) {
				return in.Errorf("wrong # args to on clause of try")
			}
			h := tryHandler{isTrap: args[i].String() == "trap"}
			if h.isTrap {
				elems, err := vals.SplitList(args[i+1].String())
				if err != nil {
					return in.Error(err)
				}
				h.trap = elems
			} else {
				c, ok := ParseCode(args[i+1].String())
				if !ok {
					return in.Errorf("bad completion code %q: must be ok, error, return, break, continue, or an integer", args[i+1].String())
				}
				h.code = c
			}
			vl, err := vals.SplitList(args[i+2].String())
			if err != nil {
				return in.Error(err)
			}
			h.varList = vl
			h.body = args[i+3].String()
			h.fall = h.body == "-"
			handlers = append(handlers, h)
			i += 4
		case "finally":
			if i+2 != len(args) {
				return in.Errorf("finally clause must be last in try")
			}
			finally = args[i+1]
			i += 2
		default:
			return in.Errorf(`bad handler %q: must be on, trap, or finally`, args[i].String())
		}
	}
	if len(handlers) > 0 && handlers[len(handlers)-1].fall {
		return in.Errorf("last non-finally clause must not have a body of \"-\"")
	}

	code := in.EvalNested(body)
	result := in.result.Retain()
	opts := in.ReturnOptions(code)

	if code != CodeOK {
		for hi := range handlers {
			if !tryMatches(in, &handlers[hi], code) {
				continue
			}
			for handlers[hi].fall {
				hi++
			}
			h := &handlers[hi]
			if len(h.varList) >= 1 {
				in.SetVarByName(h.varList[0], result.Retain())
			}
			if len(h.varList) >= 2 {
				in.SetVarByName(h.varList[1], opts.Retain())
			}
			in.errLogged = false
			hb := vals.NewString(h.body)
			hcode := in.EvalNested(hb)
			hb.Release()
			result.Release()
			opts.Release()
			result = in.result.Retain()
			code = hcode
			opts = in.ReturnOptions(code)
			break
		}
	}

	if finally != nil {
		if fcode := in.EvalNested(finally); fcode != CodeOK {
			result.Release()
			opts.Release()
			return fcode
		}
	}
	in.SetResult(result)
	opts.Release()
	return code
}

// tryMatches reports whether a handler catches the given completion.
func tryMatches(in *Interp, h *tryHandler, code Code) bool {
	if !h.isTrap {
		return h.code == code
	}
	if code != CodeError {
		return false
	}
	ec := ""
	if in.errorCode != nil {
		ec = in.errorCode.String()
	}
	elems, err := vals.SplitList(ec)
	if err != nil || len(elems) < len(h.trap) {
		return false
	}
	for i, want := range h.trap {
		if elems[i] != want {
			return false
		}
	}
	return true
}

// substCmd implements [subst]; the scanner lives in subst.go.
func substCmd(in *Interp, args []*vals.Val) Code {
	flags := substAll
	i := 1
	for ; i < len(args)-1; i++ {
		switch args[i].String() {
		case "-nobackslashes":
			flags &^= substBackslashes
		case "-nocommands":
			flags &^= substCommands
		case "-novariables":
			flags &^= substVariables
		default:
			return in.Errorf("bad switch %q: must be -nobackslashes, -nocommands, or -novariables", args[i].String())
		}
	}
	if i != len(args)-1 {
		return in.WrongNumArgs("subst ?-nobackslashes? ?-nocommands? ?-novariables? string")
	}
	return substString(in, args[i].String(), flags)
}
