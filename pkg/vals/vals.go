// Package vals implements the value model of gotcl.
//
// A value is a reference-counted cell carrying an optional canonical string
// form and an optional typed internal representation selected from a registry
// of kinds. Values are born typeless with only a string form (or with only a
// typed form), acquire a typed form lazily on first type-sensitive use, and
// shed the typed form whenever the string form is mutated. A value whose
// reference count is greater than one is logically immutable; mutation
// requires copy-on-write via [Unshare].
//
// All operations are defined for a single interpreter thread.
package vals

import "fmt"

// Val is a tagged, reference-counted value cell.
type Val struct {
	refCount int
	str      string
	hasStr   bool
	kind     *Kind
	rep      any
}

// Kind describes a typed internal representation.
type Kind struct {
	// Name identifies the kind, e.g. "int" or "list".
	Name string
	// Parse converts v's string form into a rep. It must not mutate v.
	Parse func(v *Val) (any, error)
	// UpdateString regenerates the canonical string form from a rep. It must
	// be deterministic and round-trip with Parse. A nil UpdateString means
	// the string form cannot be regenerated for this kind.
	UpdateString func(rep any) string
	// Dup duplicates a rep for copy-on-write. A nil Dup means the rep is
	// immutable and may be shared between cells. A Dup that returns nil makes
	// the clone string-only; kinds whose reps index into the owning cell's
	// string storage use this to avoid copying the rep.
	Dup func(rep any) any
	// Free releases resources held by a rep. May be nil.
	Free func(rep any)
}

var kindRegistry = map[string]*Kind{}

// RegisterKind adds a kind to the process-wide registry, for lookup by name.
// It panics on duplicate names.
func RegisterKind(k *Kind) *Kind {
	if _, ok := kindRegistry[k.Name]; ok {
		panic("duplicate value kind " + k.Name)
	}
	kindRegistry[k.Name] = k
	return k
}

// KindByName looks up a registered kind, returning nil if there is none.
func KindByName(name string) *Kind { return kindRegistry[name] }

// NewString creates a typeless value with the given string form and a
// reference count of 1.
func NewString(s string) *Val {
	return &Val{refCount: 1, str: s, hasStr: true}
}

// NewWithRep creates a value with a typed rep, no string form, and a
// reference count of 1.
func NewWithRep(k *Kind, rep any) *Val {
	return &Val{refCount: 1, kind: k, rep: rep}
}

// Retain increments the reference count and returns v.
func (v *Val) Retain() *Val {
	v.refCount++
	return v
}

// Release decrements the reference count, freeing the typed rep when the
// count drops to zero.
func (v *Val) Release() {
	v.refCount--
	if v.refCount <= 0 {
		v.freeRep()
	}
}

// RefCount returns the current reference count.
func (v *Val) RefCount() int { return v.refCount }

// Shared reports whether the value has more than one reference and is
// therefore logically immutable.
func (v *Val) Shared() bool { return v.refCount > 1 }

// Kind returns the value's current kind, or nil if the value is typeless.
func (v *Val) Kind() *Kind { return v.kind }

// String returns the canonical string form, regenerating it from the typed
// rep on demand. It panics if the value has neither form, or if the kind
// cannot regenerate a string; both indicate interpreter bugs.
func (v *Val) String() string {
	if v.hasStr {
		return v.str
	}
	if v.kind == nil {
		panic("value has neither string form nor typed rep")
	}
	if v.kind.UpdateString == nil {
		panic(fmt.Sprintf("value of kind %q has no string representation", v.kind.Name))
	}
	v.str = v.kind.UpdateString(v.rep)
	v.hasStr = true
	return v.str
}

// HasString reports whether the string form is currently materialized.
func (v *Val) HasString() bool { return v.hasStr }

// Rep returns the typed rep for the given kind, converting via the kind's
// parser if necessary. Conversion invalidates any previous typed rep. The
// error, if any, is a [ConversionError].
func (v *Val) Rep(k *Kind) (any, error) {
	if v.kind == k {
		return v.rep, nil
	}
	rep, err := k.Parse(v)
	if err != nil {
		return nil, err
	}
	// Materialize the string form before discarding the old rep; it is the
	// only bridge between the two reps.
	if v.kind != nil {
		_ = v.String()
	}
	v.freeRep()
	v.kind, v.rep = k, rep
	return rep, nil
}

// RepOrNil returns the typed rep if the value already has the given kind, and
// nil otherwise. It never converts.
func (v *Val) RepOrNil(k *Kind) any {
	if v.kind == k {
		return v.rep
	}
	return nil
}

// SetRep replaces the typed rep, keeping the current string form intact.
// It panics if the value is shared.
func (v *Val) SetRep(k *Kind, rep any) {
	if v.Shared() {
		panic("SetRep called on shared value")
	}
	_ = v.String()
	v.freeRep()
	v.kind, v.rep = k, rep
}

// ConvertRep replaces the typed rep while preserving the abstract value.
// Unlike SetRep it is permitted on shared values: type conversion does not
// change the value a cell denotes, only its cached form. The string form is
// materialized first, as the bridge between the two reps.
func (v *Val) ConvertRep(k *Kind, rep any) {
	_ = v.String()
	v.freeRep()
	v.kind, v.rep = k, rep
}

// SetString mutates the string form, shedding any typed rep. It fails if the
// value is shared.
func (v *Val) SetString(s string) error {
	if v.Shared() {
		return fmt.Errorf("cannot mutate shared value")
	}
	v.freeRep()
	v.str, v.hasStr = s, true
	return nil
}

// InvalidateRep sheds the typed rep, leaving only the string form. It panics
// if the value has no string form.
func (v *Val) InvalidateRep() {
	_ = v.String()
	v.freeRep()
}

func (v *Val) freeRep() {
	if v.kind != nil && v.kind.Free != nil {
		v.kind.Free(v.rep)
	}
	v.kind, v.rep = nil, nil
}

// Dup returns a fresh, unshared copy of v with a reference count of 1. The
// typed rep is duplicated via the kind's Dup hook when present, and shared
// otherwise.
func (v *Val) Dup() *Val {
	nv := &Val{refCount: 1, str: v.str, hasStr: v.hasStr}
	if v.kind != nil {
		nv.kind = v.kind
		if v.kind.Dup != nil {
			nv.rep = v.kind.Dup(v.rep)
			if nv.rep == nil {
				// The hook dropped the rep; the clone is string-only.
				nv.kind = nil
				if !nv.hasStr {
					nv.str, nv.hasStr = v.String(), true
				}
			}
		} else {
			nv.rep = v.rep
		}
	}
	if !nv.hasStr && nv.kind == nil {
		nv.hasStr = true
	}
	return nv
}

// Unshare returns v itself if it is unshared, or a duplicate otherwise. The
// caller owns the result; when a duplicate is made, v's count is unchanged.
func Unshare(v *Val) *Val {
	if v.Shared() {
		return v.Dup()
	}
	return v
}

// ConversionError is returned when a value's string form does not parse as
// the requested kind.
type ConversionError struct {
	Kind string
	Text string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("expected %s but got %q", e.Kind, e.Text)
}
