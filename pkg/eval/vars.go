package eval

import (
	"strings"

	"github.com/gotcl/gotcl/pkg/vals"
)

// Var is one variable cell: a scalar value, an array, or a link created by
// upvar/global. A cell is at most one of the three at a time.
type Var struct {
	scalar *vals.Val
	arr    map[string]*vals.Val
	link   *Var
}

// target follows upvar links to the cell that holds the data.
func (v *Var) target() *Var {
	for v.link != nil {
		v = v.link
	}
	return v
}

func (v *Var) free() {
	if v.scalar != nil {
		v.scalar.Release()
		v.scalar = nil
	}
	for _, e := range v.arr {
		e.Release()
	}
	v.arr = nil
}

// defined reports whether the cell holds data.
func (v *Var) defined() bool {
	v = v.target()
	return v.scalar != nil || v.arr != nil
}

// splitVarName splits a ::-qualified name into its scope prefix and base
// name. Only the global :: prefix is meaningful.
func splitVarName(name string) (global bool, base string) {
	if strings.HasPrefix(name, "::") {
		return true, name[2:]
	}
	return false, name
}

// resolveVar finds the cell for name in the current frame (or the global
// frame for ::-qualified names), creating it when create is set.
func (in *Interp) resolveVar(name string, create bool) *Var {
	global, base := splitVarName(name)
	f := in.frame()
	if global {
		f = in.globalFrame()
	}
	if v, ok := f.vars[base]; ok {
		return v.target()
	}
	if !create {
		return nil
	}
	v := &Var{}
	f.vars[base] = v
	return v
}

// GetVar reads a variable; index is the array element key, or "" for a
// scalar. The returned value is borrowed.
func (in *Interp) GetVar(name, index string) (*vals.Val, Code) {
	v := in.resolveVar(name, false)
	if v == nil || !v.defined() {
		return nil, in.Errorf(`can't read "%s": no such variable`, fullName(name, index))
	}
	if index == "" {
		if v.scalar == nil {
			return nil, in.Errorf(`can't read "%s": variable is array`, name)
		}
		return v.scalar, CodeOK
	}
	if v.arr == nil {
		return nil, in.Errorf(`can't read "%s": variable isn't array`, fullName(name, index))
	}
	e, ok := v.arr[index]
	if !ok {
		return nil, in.Errorf(`can't read "%s": no such element in array`, fullName(name, index))
	}
	return e, CodeOK
}

// SetVar writes a variable, taking ownership of one reference to val. The
// stored value is returned, borrowed.
func (in *Interp) SetVar(name, index string, val *vals.Val) (*vals.Val, Code) {
	v := in.resolveVar(name, true)
	if index == "" {
		if v.arr != nil {
			val.Release()
			return nil, in.Errorf(`can't set "%s": variable is array`, name)
		}
		if v.scalar != nil {
			v.scalar.Release()
		}
		v.scalar = val
		return val, CodeOK
	}
	if v.scalar != nil {
		val.Release()
		return nil, in.Errorf(`can't set "%s": variable isn't array`, fullName(name, index))
	}
	if v.arr == nil {
		v.arr = make(map[string]*vals.Val)
	}
	if old, ok := v.arr[index]; ok {
		old.Release()
	}
	v.arr[index] = val
	return val, CodeOK
}

// UnsetVar removes a variable or one array element.
func (in *Interp) UnsetVar(name, index string) Code {
	global, base := splitVarName(name)
	f := in.frame()
	if global {
		f = in.globalFrame()
	}
	v, ok := f.vars[base]
	if !ok || !v.defined() {
		return in.Errorf(`can't unset "%s": no such variable`, fullName(name, index))
	}
	t := v.target()
	if index != "" {
		if t.arr == nil {
			return in.Errorf(`can't unset "%s": no such element in array`, fullName(name, index))
		}
		e, ok := t.arr[index]
		if !ok {
			return in.Errorf(`can't unset "%s": no such element in array`, fullName(name, index))
		}
		e.Release()
		delete(t.arr, index)
		return CodeOK
	}
	t.free()
	if v.link == nil {
		delete(f.vars, base)
	}
	return CodeOK
}

// VarExists reports whether a variable (or array element) is defined.
func (in *Interp) VarExists(name, index string) bool {
	v := in.resolveVar(name, false)
	if v == nil || !v.defined() {
		return false
	}
	if index == "" {
		return true
	}
	if v.arr == nil {
		return false
	}
	_, ok := v.arr[index]
	return ok
}

// linkVar makes localName in the current frame a link to the cell named
// otherName in frame f.
func (in *Interp) linkVar(f *Frame, otherName, localName string) Code {
	_, otherBase := splitVarName(otherName)
	target, ok := f.vars[otherBase]
	if !ok {
		target = &Var{}
		f.vars[otherBase] = target
	}
	cur := in.frame()
	if existing, ok := cur.vars[localName]; ok && existing.defined() {
		return in.Errorf(`variable "%s" already exists`, localName)
	}
	cur.vars[localName] = &Var{link: target.target()}
	return CodeOK
}

// fullName formats a possibly-indexed variable name for error messages.
func fullName(name, index string) string {
	if index == "" {
		return name
	}
	return name + "(" + index + ")"
}

// splitIndexedName splits "name(index)" into name and index; names without a
// well-formed index suffix are returned whole.
func splitIndexedName(s string) (name, index string) {
	if strings.HasSuffix(s, ")") {
		if i := strings.IndexByte(s, '('); i >= 0 {
			return s[:i], s[i+1 : len(s)-1]
		}
	}
	return s, ""
}

// GetVarByName reads a variable given a possibly-indexed name.
func (in *Interp) GetVarByName(s string) (*vals.Val, Code) {
	name, index := splitIndexedName(s)
	return in.GetVar(name, index)
}

// SetVarByName writes a variable given a possibly-indexed name.
func (in *Interp) SetVarByName(s string, val *vals.Val) (*vals.Val, Code) {
	name, index := splitIndexedName(s)
	return in.SetVar(name, index, val)
}

// localVar returns the frame's indexed local slot, creating the cell and its
// named alias on first use.
func (f *Frame) localVar(i int, name string) *Var {
	if f.locals[i] == nil {
		if v, ok := f.vars[name]; ok {
			f.locals[i] = v
		} else {
			v := &Var{}
			f.vars[name] = v
			f.locals[i] = v
		}
	}
	return f.locals[i].target()
}
