package eval

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gotcl/gotcl/pkg/vals"
)

func registerStringCmds(in *Interp) {
	register(in, "string", stringCmd)
	register(in, "format", formatCmd)
}

func stringCmd(in *Interp, args []*vals.Val) Code {
	if len(args) < 3 {
		return in.WrongNumArgs("string subcommand string ?arg ...?")
	}
	sub := args[1].String()
	s := args[2].String()
	rest := args[3:]
	switch sub {
	case "length":
		return doneInt(in, int64(utf8.RuneCountInString(s)))
	case "index":
		if len(rest) != 1 {
			return in.WrongNumArgs("string index string charIndex")
		}
		runes := []rune(s)
		i, err := parseIndex(rest[0].String(), len(runes))
		if err != nil {
			return in.Error(err)
		}
		if i < 0 || i >= len(runes) {
			return doneStr(in, "")
		}
		return doneStr(in, string(runes[i]))
	case "range":
		if len(rest) != 2 {
			return in.WrongNumArgs("string range string first last")
		}
		runes := []rune(s)
		first, err := parseIndex(rest[0].String(), len(runes))
		if err != nil {
			return in.Error(err)
		}
		last, err := parseIndex(rest[1].String(), len(runes))
		if err != nil {
			return in.Error(err)
		}
		if first < 0 {
			first = 0
		}
		if last >= len(runes) {
			last = len(runes) - 1
		}
		if first > last {
			return doneStr(in, "")
		}
		return doneStr(in, string(runes[first:last+1]))
	case "compare", "equal":
		nocase := false
		length := -1
		for len(rest) > 1 {
			switch rest[0].String() {
			case "-nocase":
				nocase = true
				rest = rest[1:]
			case "-length":
				if len(rest) < 2 {
					return in.WrongNumArgs("string " + sub + " ?-nocase? ?-length length? string1 string2")
				}
				n, err := vals.Int(rest[1])
				if err != nil {
					return in.Error(err)
				}
				length = int(n)
				rest = rest[2:]
			default:
				goto compare
			}
		}
	compare:
		if len(rest) != 1 {
			return in.WrongNumArgs("string " + sub + " ?-nocase? ?-length length? string1 string2")
		}
		a, b := s, rest[0].String()
		if length >= 0 {
			a, b = truncRunes(a, length), truncRunes(b, length)
		}
		if nocase {
			a, b = strings.ToLower(a), strings.ToLower(b)
		}
		if sub == "equal" {
			return doneBool(in, a == b)
		}
		return doneInt(in, int64(strings.Compare(a, b)))
	case "match":
		nocase := false
		if len(rest) == 2 && s == "-nocase" {
			nocase = true
			s = rest[0].String()
			rest = rest[1:]
		}
		if len(rest) != 1 {
			return in.WrongNumArgs("string match ?-nocase? pattern string")
		}
		return doneBool(in, globMatch(s, rest[0].String(), nocase))
	case "tolower":
		return doneStr(in, strings.ToLower(s))
	case "toupper":
		return doneStr(in, strings.ToUpper(s))
	case "totitle":
		return doneStr(in, totitle(s))
	case "trim", "trimleft", "trimright":
		cutset := " \t\n\r\v\f"
		if len(rest) == 1 {
			cutset = rest[0].String()
		} else if len(rest) > 1 {
			return in.WrongNumArgs("string " + sub + " string ?chars?")
		}
		switch sub {
		case "trim":
			return doneStr(in, strings.Trim(s, cutset))
		case "trimleft":
			return doneStr(in, strings.TrimLeft(s, cutset))
		default:
			return doneStr(in, strings.TrimRight(s, cutset))
		}
	case "repeat":
		if len(rest) != 1 {
			return in.WrongNumArgs("string repeat string count")
		}
		n, err := vals.Int(rest[0])
		if err != nil {
			return in.Error(err)
		}
		if n <= 0 {
			return doneStr(in, "")
		}
		return doneStr(in, strings.Repeat(s, int(n)))
	case "first":
		if len(rest) != 1 {
			return in.WrongNumArgs("string first needleString haystackString")
		}
		return doneInt(in, int64(strings.Index(rest[0].String(), s)))
	case "last":
		if len(rest) != 1 {
			return in.WrongNumArgs("string last needleString haystackString")
		}
		return doneInt(in, int64(strings.LastIndex(rest[0].String(), s)))
	case "is":
		return stringIs(in, s, rest)
	}
	return in.Errorf("unknown or ambiguous subcommand %q", sub)
}

func truncRunes(s string, n int) string {
	runes := []rune(s)
	if n < len(runes) {
		return string(runes[:n])
	}
	return s
}

// stringIs implements the character-class tests used by scripts to validate
// input before conversion.
func stringIs(in *Interp, class string, rest []*vals.Val) Code {
	if len(rest) != 1 {
		return in.WrongNumArgs("string is class string")
	}
	s := rest[0].String()
	switch class {
	case "integer":
		_, err := strconv.ParseInt(s, 0, 64)
		return doneBool(in, err == nil)
	case "double":
		if _, err := strconv.ParseInt(s, 0, 64); err == nil {
			return doneBool(in, true)
		}
		_, err := strconv.ParseFloat(s, 64)
		return doneBool(in, err == nil)
	case "boolean":
		_, err := vals.ParseBool(s)
		return doneBool(in, err == nil)
	case "true":
		b, err := vals.ParseBool(s)
		return doneBool(in, err == nil && b)
	case "false":
		b, err := vals.ParseBool(s)
		return doneBool(in, err == nil && !b)
	}
	return in.Errorf("unknown class %q", class)
}

// formatCmd implements a subset of [format]: the d, i, u, x, X, o, b, c, s,
// f, e, g and % conversions with flags, width and precision.
func formatCmd(in *Interp, args []*vals.Val) Code {
	if len(args) < 2 {
		return in.WrongNumArgs("format formatString ?arg ...?")
	}
	out, err := formatString(args[1].String(), args[2:])
	if err != nil {
		return in.Error(err)
	}
	return doneStr(in, out)
}

func formatString(format string, args []*vals.Val) (string, error) {
	var sb strings.Builder
	arg := 0
	next := func() (*vals.Val, error) {
		if arg >= len(args) {
			return nil, fmt.Errorf("not enough arguments for all format specifiers")
		}
		v := args[arg]
		arg++
		return v, nil
	}
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			sb.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(format) && strings.IndexByte("-+ 0#123456789.*", format[j]) >= 0 {
			if format[j] == '*' {
				return "", fmt.Errorf("cannot mix \"%%\" and \"%%*\" specifiers")
			}
			j++
		}
		if j >= len(format) {
			return "", fmt.Errorf("format string ended in middle of field specifier")
		}
		spec := format[i : j+1]
		verb := format[j]
		i = j
		switch verb {
		case '%':
			sb.WriteByte('%')
		case 'd', 'i', 'u', 'x', 'X', 'o', 'b':
			v, err := next()
			if err != nil {
				return "", err
			}
			n, err := vals.Int(v)
			if err != nil {
				return "", err
			}
			goVerb := verb
			if verb == 'i' || verb == 'u' {
				goVerb = 'd'
			}
			fmt.Fprintf(&sb, spec[:len(spec)-1]+string(goVerb), n)
		case 'c':
			v, err := next()
			if err != nil {
				return "", err
			}
			n, err := vals.Int(v)
			if err != nil {
				return "", err
			}
			sb.WriteRune(rune(n))
		case 's':
			v, err := next()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&sb, spec, v.String())
		case 'f', 'e', 'E', 'g', 'G':
			v, err := next()
			if err != nil {
				return "", err
			}
			f, err := strconv.ParseFloat(v.String(), 64)
			if err != nil {
				return "", fmt.Errorf("expected floating-point number but got %q", v.String())
			}
			fmt.Fprintf(&sb, spec, f)
		default:
			return "", fmt.Errorf("bad field specifier %q", string(verb))
		}
	}
	return sb.String(), nil
}
