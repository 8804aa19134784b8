package vals

import "fmt"

// dictRep is the rep of DictKind: key/value pairs in insertion order, plus an
// index from key string to pair position.
type dictRep struct {
	keys  []*Val
	vals  []*Val
	index map[string]int
}

// DictKind caches a dictionary rep. The string form is a list with an even
// number of elements.
var DictKind = RegisterKind(&Kind{
	Name: "dict",
	Parse: func(v *Val) (any, error) {
		fields, err := SplitList(v.String())
		if err != nil {
			return nil, err
		}
		if len(fields)%2 != 0 {
			return nil, fmt.Errorf("missing value to go with key")
		}
		d := newDictRep()
		for i := 0; i < len(fields); i += 2 {
			d.set(NewString(fields[i]), NewString(fields[i+1]))
		}
		return d, nil
	},
	UpdateString: func(rep any) string {
		d := rep.(*dictRep)
		fields := make([]string, 0, 2*len(d.keys))
		for i := range d.keys {
			fields = append(fields, d.keys[i].String(), d.vals[i].String())
		}
		return JoinList(fields)
	},
	Dup: func(rep any) any {
		d := rep.(*dictRep)
		nd := newDictRep()
		for i := range d.keys {
			nd.set(d.keys[i].Retain(), d.vals[i].Retain())
		}
		return nd
	},
	Free: func(rep any) {
		d := rep.(*dictRep)
		for i := range d.keys {
			d.keys[i].Release()
			d.vals[i].Release()
		}
	},
})

func newDictRep() *dictRep {
	return &dictRep{index: make(map[string]int)}
}

// set takes ownership of one reference to key and val each.
func (d *dictRep) set(key, val *Val) {
	if i, ok := d.index[key.String()]; ok {
		key.Release()
		d.vals[i].Release()
		d.vals[i] = val
		return
	}
	d.index[key.String()] = len(d.keys)
	d.keys = append(d.keys, key)
	d.vals = append(d.vals, val)
}

// NewDict creates an empty dict value.
func NewDict() *Val {
	return NewWithRep(DictKind, newDictRep())
}

func dictOf(v *Val) (*dictRep, error) {
	rep, err := v.Rep(DictKind)
	if err != nil {
		return nil, err
	}
	return rep.(*dictRep), nil
}

// DictGet looks up a key, converting v to a dict first. The returned value is
// borrowed from the dict.
func DictGet(v *Val, key string) (*Val, bool, error) {
	d, err := dictOf(v)
	if err != nil {
		return nil, false, err
	}
	if i, ok := d.index[key]; ok {
		return d.vals[i], true, nil
	}
	return nil, false, nil
}

// DictSet sets a key on an unshared dict value, taking ownership of one
// reference to val. It panics if v is shared.
func DictSet(v *Val, key string, val *Val) error {
	if v.Shared() {
		panic("DictSet called on shared value")
	}
	d, err := dictOf(v)
	if err != nil {
		return err
	}
	d.set(NewString(key), val)
	// The rep changed; the old string form is stale.
	v.dropStr()
	return nil
}

// DictKeys returns the keys in insertion order, as strings.
func DictKeys(v *Val) ([]string, error) {
	d, err := dictOf(v)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(d.keys))
	for i, k := range d.keys {
		keys[i] = k.String()
	}
	return keys, nil
}

// DictSize returns the number of entries.
func DictSize(v *Val) (int, error) {
	d, err := dictOf(v)
	if err != nil {
		return 0, err
	}
	return len(d.keys), nil
}

// dropStr invalidates the string form after a rep mutation.
func (v *Val) dropStr() {
	v.str, v.hasStr = "", false
}
