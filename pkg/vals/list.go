package vals

import (
	"fmt"
	"strings"
)

// ListKind caches a []*Val rep. The list owns one reference to each element.
var ListKind = RegisterKind(&Kind{
	Name: "list",
	Parse: func(v *Val) (any, error) {
		fields, err := SplitList(v.String())
		if err != nil {
			return nil, err
		}
		elems := make([]*Val, len(fields))
		for i, f := range fields {
			elems[i] = NewString(f)
		}
		return elems, nil
	},
	UpdateString: func(rep any) string {
		elems := rep.([]*Val)
		fields := make([]string, len(elems))
		for i, e := range elems {
			fields[i] = e.String()
		}
		return JoinList(fields)
	},
	Dup: func(rep any) any {
		elems := rep.([]*Val)
		dup := make([]*Val, len(elems))
		for i, e := range elems {
			dup[i] = e.Retain()
		}
		return dup
	},
	Free: func(rep any) {
		for _, e := range rep.([]*Val) {
			e.Release()
		}
	},
})

// NewList creates a list value from the given elements, taking ownership of
// one reference to each.
func NewList(elems ...*Val) *Val {
	return NewWithRep(ListKind, elems)
}

// ListElems converts a value to a list and returns its elements. The returned
// slice is owned by the value and must not be mutated.
func ListElems(v *Val) ([]*Val, error) {
	rep, err := v.Rep(ListKind)
	if err != nil {
		return nil, err
	}
	return rep.([]*Val), nil
}

const listWhitespace = " \t\n\v\f\r"

func isListSpace(c byte) bool { return strings.IndexByte(listWhitespace, c) >= 0 }

// SplitList parses a string as a list, returning its elements as strings.
func SplitList(s string) ([]string, error) {
	elems := []string{}
	i := 0
	for {
		for i < len(s) && isListSpace(s[i]) {
			i++
		}
		if i == len(s) {
			return elems, nil
		}
		elem, next, err := parseListElement(s, i)
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		i = next
	}
}

// parseListElement parses one element starting at i, returning the element
// text and the offset just past it.
func parseListElement(s string, i int) (string, int, error) {
	switch s[i] {
	case '{':
		return parseBracedElement(s, i)
	case '"':
		return parseQuotedElement(s, i)
	default:
		return parseBareElement(s, i)
	}
}

func parseBracedElement(s string, i int) (string, int, error) {
	depth := 1
	j := i + 1
	for j < len(s) {
		switch s[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				elem := s[i+1 : j]
				j++
				if j < len(s) && !isListSpace(s[j]) {
					return "", 0, fmt.Errorf(
						"list element in braces followed by %q instead of space", rest(s, j))
				}
				return elem, j, nil
			}
		case '\\':
			// A backslash inside braces is literal, but still escapes the
			// next character for the purposes of brace counting.
			j++
		}
		j++
	}
	return "", 0, fmt.Errorf("unmatched open brace in list")
}

func parseQuotedElement(s string, i int) (string, int, error) {
	var sb strings.Builder
	j := i + 1
	for j < len(s) {
		switch s[j] {
		case '"':
			j++
			if j < len(s) && !isListSpace(s[j]) {
				return "", 0, fmt.Errorf(
					"list element in quotes followed by %q instead of space", rest(s, j))
			}
			return sb.String(), j, nil
		case '\\':
			r, n := ParseBackslash(s[j:])
			sb.WriteRune(r)
			j += n
		default:
			sb.WriteByte(s[j])
			j++
		}
	}
	return "", 0, fmt.Errorf("unmatched open quote in list")
}

func parseBareElement(s string, i int) (string, int, error) {
	var sb strings.Builder
	j := i
	for j < len(s) && !isListSpace(s[j]) {
		if s[j] == '\\' {
			r, n := ParseBackslash(s[j:])
			sb.WriteRune(r)
			j += n
		} else {
			sb.WriteByte(s[j])
			j++
		}
	}
	return sb.String(), j, nil
}

func rest(s string, i int) string {
	end := i
	for end < len(s) && !isListSpace(s[end]) {
		end++
	}
	return s[i:end]
}

// JoinList formats elements as a list string such that SplitList recovers
// them exactly.
func JoinList(elems []string) string {
	quoted := make([]string, len(elems))
	for i, e := range elems {
		quoted[i] = QuoteElement(e)
	}
	return strings.Join(quoted, " ")
}

const listSpecial = " \t\n\v\f\r{}[]$\";\\"

// QuoteElement quotes a single string for inclusion in a list. Plain strings
// are returned as-is; strings with special characters are brace-quoted when
// their braces are balanced and they contain no backslash, and
// backslash-quoted otherwise.
func QuoteElement(s string) string {
	if s == "" {
		return "{}"
	}
	if !strings.ContainsAny(s, listSpecial) && s[0] != '#' {
		return s
	}
	if bracesBalanced(s) && !strings.Contains(s, "\\") {
		return "{" + s + "}"
	}
	return backslashQuote(s)
}

func bracesBalanced(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

var backslashQuoted = map[byte]string{
	' ': `\ `, '\t': `\t`, '\n': `\n`, '\v': `\v`, '\f': `\f`, '\r': `\r`,
	'{': `\{`, '}': `\}`, '[': `\[`, ']': `\]`,
	'$': `\$`, '"': `\"`, ';': `\;`, '\\': `\\`,
}

func backslashQuote(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if q, ok := backslashQuoted[s[i]]; ok {
			sb.WriteString(q)
		} else if i == 0 && s[i] == '#' {
			sb.WriteString(`\#`)
		} else {
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}
