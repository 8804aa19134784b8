package eval

import "github.com/gotcl/gotcl/pkg/vals"

func registerProcCmds(in *Interp) {
	register(in, "proc", procCmd)
	register(in, "rename", renameCmd)
}

func procCmd(in *Interp, args []*vals.Val) Code {
	if len(args) != 4 {
		return in.WrongNumArgs("proc name args body")
	}
	name := args[1].String()
	specs, err := vals.SplitList(args[2].String())
	if err != nil {
		return in.Error(err)
	}
	formals := make([]Formal, 0, len(specs))
	for i, spec := range specs {
		parts, err := vals.SplitList(spec)
		if err != nil {
			return in.Error(err)
		}
		switch len(parts) {
		case 1:
			f := Formal{Name: parts[0]}
			if parts[0] == "args" && i == len(specs)-1 {
				f.Args = true
			}
			formals = append(formals, f)
		case 2:
			formals = append(formals, Formal{Name: parts[0], Default: vals.NewString(parts[1])})
		default:
			return in.Errorf("too many fields in argument specifier %q", spec)
		}
	}
	if old := in.Lookup(name); old != nil && old.Proc != nil {
		old.Proc.Body.Release()
	}
	in.RegisterCommand(&Command{
		Name: name,
		Proc: &ProcDef{Name: name, Formals: formals, Body: args[3].Retain()},
	})
	return doneStr(in, "")
}

func renameCmd(in *Interp, args []*vals.Val) Code {
	if len(args) != 3 {
		return in.WrongNumArgs("rename oldName newName")
	}
	oldName, newName := args[1].String(), args[2].String()
	cmd := in.Lookup(oldName)
	if cmd == nil {
		return in.Errorf(`can't rename %q: command doesn't exist`, oldName)
	}
	if newName == "" {
		delete(in.commands, oldName)
		return doneStr(in, "")
	}
	if in.Lookup(newName) != nil {
		return in.Errorf(`can't rename to %q: command already exists`, newName)
	}
	delete(in.commands, oldName)
	cmd.Name = newName
	in.commands[newName] = cmd
	return doneStr(in, "")
}
