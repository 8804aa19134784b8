package eval

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gotcl/gotcl/pkg/vals"
)

func registerListCmds(in *Interp) {
	register(in, "list", listCmd)
	register(in, "llength", llengthCmd)
	register(in, "lindex", lindexCmd)
	register(in, "lrange", lrangeCmd)
	register(in, "lset", lsetCmd)
	register(in, "lsearch", lsearchCmd)
	register(in, "lsort", lsortCmd)
	register(in, "concat", concatCmd)
	register(in, "join", joinCmd)
	register(in, "split", splitCmd)
}

func listCmd(in *Interp, args []*vals.Val) Code {
	elems := make([]*vals.Val, len(args)-1)
	for i, a := range args[1:] {
		elems[i] = a.Retain()
	}
	return done(in, vals.NewList(elems...))
}

func llengthCmd(in *Interp, args []*vals.Val) Code {
	if len(args) != 2 {
		return in.WrongNumArgs("llength list")
	}
	elems, err := vals.ListElems(args[1])
	if err != nil {
		return in.Error(err)
	}
	return doneInt(in, int64(len(elems)))
}

// parseIndex resolves a list index word: an integer, "end", or "end-N".
// Out-of-range indices are legal and clamped by the callers.
func parseIndex(s string, length int) (int, error) {
	if s == "end" {
		return length - 1, nil
	}
	if strings.HasPrefix(s, "end-") || strings.HasPrefix(s, "end+") {
		n, err := strconv.Atoi(s[3:])
		if err != nil {
			return 0, errBadIndex(s)
		}
		return length - 1 + n, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errBadIndex(s)
	}
	return n, nil
}

type badIndexError string

func (e badIndexError) Error() string {
	return `bad index "` + string(e) + `": must be integer or end?-integer?`
}

func errBadIndex(s string) error { return badIndexError(s) }

func lindexCmd(in *Interp, args []*vals.Val) Code {
	if len(args) < 2 {
		return in.WrongNumArgs("lindex list ?index ...?")
	}
	v := args[1].Retain()
	for _, idxArg := range args[2:] {
		elems, err := vals.ListElems(v)
		if err != nil {
			v.Release()
			return in.Error(err)
		}
		i, err := parseIndex(idxArg.String(), len(elems))
		if err != nil {
			v.Release()
			return in.Error(err)
		}
		var next *vals.Val
		if i < 0 || i >= len(elems) {
			next = vals.NewString("")
		} else {
			next = elems[i].Retain()
		}
		v.Release()
		v = next
	}
	return done(in, v)
}

func lrangeCmd(in *Interp, args []*vals.Val) Code {
	if len(args) != 4 {
		return in.WrongNumArgs("lrange list first last")
	}
	elems, err := vals.ListElems(args[1])
	if err != nil {
		return in.Error(err)
	}
	first, err := parseIndex(args[2].String(), len(elems))
	if err != nil {
		return in.Error(err)
	}
	last, err := parseIndex(args[3].String(), len(elems))
	if err != nil {
		return in.Error(err)
	}
	if first < 0 {
		first = 0
	}
	if last >= len(elems) {
		last = len(elems) - 1
	}
	if first > last {
		return doneStr(in, "")
	}
	out := make([]*vals.Val, 0, last-first+1)
	for _, e := range elems[first : last+1] {
		out = append(out, e.Retain())
	}
	return done(in, vals.NewList(out...))
}

func lsetCmd(in *Interp, args []*vals.Val) Code {
	if len(args) < 3 {
		return in.WrongNumArgs("lset listVar ?index ...? value")
	}
	name := args[1].String()
	cur, code := in.GetVarByName(name)
	if code != CodeOK {
		return code
	}
	indices := args[2 : len(args)-1]
	newVal, err := lsetSub(cur, indices, args[len(args)-1])
	if err != nil {
		return in.Error(err)
	}
	v, code := in.SetVarByName(name, newVal)
	if code != CodeOK {
		return code
	}
	return done(in, v.Retain())
}

// lsetSub rebuilds list along one index path with the leaf replaced. The
// original lists are left untouched; sharing is preserved everywhere off the
// path.
func lsetSub(list *vals.Val, indices []*vals.Val, value *vals.Val) (*vals.Val, error) {
	if len(indices) == 0 {
		return value.Retain(), nil
	}
	elems, err := vals.ListElems(list)
	if err != nil {
		return nil, err
	}
	i, err := parseIndex(indices[0].String(), len(elems))
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(elems) {
		return nil, errBadIndex(indices[0].String())
	}
	sub, err := lsetSub(elems[i], indices[1:], value)
	if err != nil {
		return nil, err
	}
	out := make([]*vals.Val, len(elems))
	for j, e := range elems {
		if j == i {
			out[j] = sub
		} else {
			out[j] = e.Retain()
		}
	}
	return vals.NewList(out...), nil
}

func lsearchCmd(in *Interp, args []*vals.Val) Code {
	mode := matchGlob
	i := 1
	for ; i < len(args); i++ {
		switch args[i].String() {
		case "-exact":
			mode = matchExact
		case "-glob":
			mode = matchGlob
		case "-regexp":
			mode = matchRe
		case "-nocase":
			mode |= matchNocase
		default:
			goto scan
		}
	}
scan:
	if i+2 != len(args) {
		return in.WrongNumArgs("lsearch ?options? list pattern")
	}
	elems, err := vals.ListElems(args[i])
	if err != nil {
		return in.Error(err)
	}
	pattern := args[i+1].String()
	for j, e := range elems {
		m, err := matchString(mode, pattern, e.String())
		if err != nil {
			return in.Error(err)
		}
		if m {
			return doneInt(in, int64(j))
		}
	}
	return doneInt(in, -1)
}

func lsortCmd(in *Interp, args []*vals.Val) Code {
	if len(args) < 2 {
		return in.WrongNumArgs("lsort ?options? list")
	}
	integer, decreasing, unique := false, false, false
	i := 1
	for ; i < len(args)-1; i++ {
		switch args[i].String() {
		case "-integer":
			integer = true
		case "-decreasing":
			decreasing = true
		case "-increasing":
			decreasing = false
		case "-unique":
			unique = true
		case "-ascii":
		default:
			return in.Errorf("bad option %q to lsort", args[i].String())
		}
	}
	elems, err := vals.ListElems(args[i])
	if err != nil {
		return in.Error(err)
	}
	items := make([]string, len(elems))
	for j, e := range elems {
		items[j] = e.String()
	}
	var sortErr error
	less := func(a, b string) bool {
		if integer {
			na, err1 := strconv.ParseInt(a, 0, 64)
			nb, err2 := strconv.ParseInt(b, 0, 64)
			if err1 != nil && sortErr == nil {
				sortErr = errNotInt(a)
			}
			if err2 != nil && sortErr == nil {
				sortErr = errNotInt(b)
			}
			return na < nb
		}
		return a < b
	}
	sort.SliceStable(items, func(a, b int) bool {
		if decreasing {
			return less(items[b], items[a])
		}
		return less(items[a], items[b])
	})
	if sortErr != nil {
		return in.Error(sortErr)
	}
	if unique {
		out := items[:0]
		for j, s := range items {
			if j == 0 || s != items[j-1] {
				out = append(out, s)
			}
		}
		items = out
	}
	return doneStr(in, vals.JoinList(items))
}

type notIntError string

func (e notIntError) Error() string { return `expected integer but got "` + string(e) + `"` }

func errNotInt(s string) error { return notIntError(s) }

func concatCmd(in *Interp, args []*vals.Val) Code {
	var parts []string
	for _, a := range args[1:] {
		s := strings.TrimSpace(a.String())
		if s != "" {
			parts = append(parts, s)
		}
	}
	return doneStr(in, strings.Join(parts, " "))
}

func joinCmd(in *Interp, args []*vals.Val) Code {
	if len(args) != 2 && len(args) != 3 {
		return in.WrongNumArgs("join list ?joinString?")
	}
	sep := " "
	if len(args) == 3 {
		sep = args[2].String()
	}
	elems, err := vals.ListElems(args[1])
	if err != nil {
		return in.Error(err)
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = e.String()
	}
	return doneStr(in, strings.Join(parts, sep))
}

func splitCmd(in *Interp, args []*vals.Val) Code {
	if len(args) != 2 && len(args) != 3 {
		return in.WrongNumArgs("split string ?splitChars?")
	}
	s := args[1].String()
	chars := " \t\n\r"
	if len(args) == 3 {
		chars = args[2].String()
	}
	var fields []string
	if chars == "" {
		for _, r := range s {
			fields = append(fields, string(r))
		}
	} else {
		// Adjacent separators produce empty fields.
		fields = splitKeepEmpty(s, chars)
	}
	return doneStr(in, vals.JoinList(fields))
}

func splitKeepEmpty(s, chars string) []string {
	fields := []string{}
	start := 0
	for i, r := range s {
		if strings.ContainsRune(chars, r) {
			fields = append(fields, s[start:i])
			start = i + len(string(r))
		}
	}
	return append(fields, s[start:])
}
