package eval

import "github.com/gotcl/gotcl/pkg/vals"

// registerBuiltins installs the built-in command set.
func registerBuiltins(in *Interp) {
	registerVarCmds(in)
	registerFlowCmds(in)
	registerProcCmds(in)
	registerListCmds(in)
	registerStringCmds(in)
	registerDictCmds(in)
	registerInfoCmds(in)
	registerFileCmds(in)
	registerEncodingCmds(in)
}

func register(in *Interp, name string, fn func(*Interp, []*vals.Val) Code) {
	in.RegisterCommand(&Command{Name: name, Fn: fn})
}

// done sets the result, taking ownership, and completes with OK.
func done(in *Interp, v *vals.Val) Code {
	in.SetResult(v)
	return CodeOK
}

func doneStr(in *Interp, s string) Code {
	in.SetResultString(s)
	return CodeOK
}

func doneBool(in *Interp, b bool) Code { return done(in, vals.NewBool(b)) }

func doneInt(in *Interp, n int64) Code { return done(in, vals.NewInt(n)) }
