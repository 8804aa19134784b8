package eval

import "github.com/gotcl/gotcl/pkg/vals"

func registerDictCmds(in *Interp) {
	register(in, "dict", dictCmd)
}

func dictCmd(in *Interp, args []*vals.Val) Code {
	if len(args) < 2 {
		return in.WrongNumArgs("dict subcommand ?arg ...?")
	}
	switch args[1].String() {
	case "create":
		if len(args)%2 != 0 {
			return in.WrongNumArgs("dict create ?key value ...?")
		}
		d := vals.NewDict()
		for i := 2; i < len(args); i += 2 {
			if err := vals.DictSet(d, args[i].String(), args[i+1].Retain()); err != nil {
				d.Release()
				return in.Error(err)
			}
		}
		return done(in, d)
	case "get":
		if len(args) < 3 {
			return in.WrongNumArgs("dict get dictionary ?key ...?")
		}
		v := args[2].Retain()
		for _, key := range args[3:] {
			e, ok, err := vals.DictGet(v, key.String())
			if err != nil {
				v.Release()
				return in.Error(err)
			}
			if !ok {
				v.Release()
				return in.Errorf("key %q not known in dictionary", key.String())
			}
			e.Retain()
			v.Release()
			v = e
		}
		return done(in, v)
	case "set":
		if len(args) < 5 {
			return in.WrongNumArgs("dict set dictVarName key ?key ...? value")
		}
		name := args[2].String()
		var cur *vals.Val
		if in.VarExists(name, "") {
			v, code := in.GetVarByName(name)
			if code != CodeOK {
				return code
			}
			cur = v.Retain()
		} else {
			cur = vals.NewDict()
		}
		nv, err := dictSetPath(cur, args[3:len(args)-1], args[len(args)-1])
		cur.Release()
		if err != nil {
			return in.Error(err)
		}
		v, code := in.SetVarByName(name, nv)
		if code != CodeOK {
			return code
		}
		return done(in, v.Retain())
	case "unset":
		if len(args) != 4 {
			return in.WrongNumArgs("dict unset dictVarName key")
		}
		name := args[2].String()
		cur, code := in.GetVarByName(name)
		if code != CodeOK {
			return code
		}
		keys, err := vals.DictKeys(cur)
		if err != nil {
			return in.Error(err)
		}
		drop := args[3].String()
		d := vals.NewDict()
		for _, k := range keys {
			if k == drop {
				continue
			}
			e, _, err := vals.DictGet(cur, k)
			if err != nil {
				d.Release()
				return in.Error(err)
			}
			vals.DictSet(d, k, e.Retain())
		}
		v, code := in.SetVarByName(name, d)
		if code != CodeOK {
			return code
		}
		return done(in, v.Retain())
	case "exists":
		if len(args) < 4 {
			return in.WrongNumArgs("dict exists dictionary key ?key ...?")
		}
		v := args[2].Retain()
		for _, key := range args[3:] {
			e, ok, err := vals.DictGet(v, key.String())
			if err != nil || !ok {
				v.Release()
				return doneBool(in, false)
			}
			e.Retain()
			v.Release()
			v = e
		}
		v.Release()
		return doneBool(in, true)
	case "keys":
		if len(args) != 3 && len(args) != 4 {
			return in.WrongNumArgs("dict keys dictionary ?globPattern?")
		}
		keys, err := vals.DictKeys(args[2])
		if err != nil {
			return in.Error(err)
		}
		if len(args) == 4 {
			pattern := args[3].String()
			filtered := keys[:0]
			for _, k := range keys {
				if globMatch(pattern, k, false) {
					filtered = append(filtered, k)
				}
			}
			keys = filtered
		}
		return doneStr(in, vals.JoinList(keys))
	case "size":
		if len(args) != 3 {
			return in.WrongNumArgs("dict size dictionary")
		}
		n, err := vals.DictSize(args[2])
		if err != nil {
			return in.Error(err)
		}
		return doneInt(in, int64(n))
	}
	return in.Errorf("unknown or ambiguous subcommand %q: must be create, exists, get, keys, set, size, or unset", args[1].String())
}

// dictSetPath returns a copy of dict with the value at the key path replaced,
// creating intermediate dictionaries as needed. The input dict is not
// mutated.
func dictSetPath(dict *vals.Val, keys []*vals.Val, value *vals.Val) (*vals.Val, error) {
	d := dict.Dup()
	key := keys[0].String()
	if len(keys) == 1 {
		if err := vals.DictSet(d, key, value.Retain()); err != nil {
			d.Release()
			return nil, err
		}
		return d, nil
	}
	sub, ok, err := vals.DictGet(d, key)
	if err != nil {
		d.Release()
		return nil, err
	}
	var inner *vals.Val
	if ok {
		inner, err = dictSetPath(sub, keys[1:], value)
	} else {
		empty := vals.NewDict()
		inner, err = dictSetPath(empty, keys[1:], value)
		empty.Release()
	}
	if err != nil {
		d.Release()
		return nil, err
	}
	if err := vals.DictSet(d, key, inner); err != nil {
		d.Release()
		return nil, err
	}
	return d, nil
}
