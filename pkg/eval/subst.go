package eval

import (
	"strings"

	"github.com/gotcl/gotcl/pkg/parse"
	"github.com/gotcl/gotcl/pkg/vals"
)

// Substitution classes for [subst].
const (
	substBackslashes = 1 << iota
	substCommands
	substVariables

	substAll = substBackslashes | substCommands | substVariables
)

// substString performs backslash, command and variable substitution on s,
// honoring the class flags. A break completion inside a substitution stops
// the scan with the result so far; a continue skips that substitution's
// result.
func substString(in *Interp, s string, flags int) Code {
	var sb strings.Builder
	i := 0
	for i < len(s) {
		switch c := s[i]; {
		case c == '\\' && flags&substBackslashes != 0:
			r, n := vals.ParseBackslash(s[i:])
			sb.WriteRune(r)
			i += n
		case c == '[' && flags&substCommands != 0:
			end, ok := scanBracketed(s, i)
			if !ok {
				return in.Errorf("missing close-bracket")
			}
			script := vals.NewString(s[i+1 : end])
			code := in.EvalNested(script)
			script.Release()
			switch code {
			case CodeOK:
				sb.WriteString(in.result.String())
			case CodeBreak:
				return doneStr(in, sb.String())
			case CodeContinue:
			case CodeReturn:
				sb.WriteString(in.result.String())
				in.returnLevel = 0
			default:
				return code
			}
			i = end + 1
		case c == '$' && flags&substVariables != 0:
			r := parse.ParseVarName("subst", s, i)
			if r.ErrKind != parse.OK {
				return in.parseError(r.ErrKind)
			}
			tok := r.Tokens[0]
			if tok.Components == 0 {
				sb.WriteByte('$')
				i++
				break
			}
			name := r.Tokens[1].Text(s)
			index := ""
			if tok.Components > 1 {
				// The index may itself contain substitutions.
				v, code := substIndex(in, r, flags)
				if code != CodeOK {
					return code
				}
				index = v
			}
			v, code := in.GetVar(name, index)
			if code != CodeOK {
				return code
			}
			sb.WriteString(v.String())
			i = tok.To
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return doneStr(in, sb.String())
}

// substIndex renders the index tokens of an array reference parsed by
// ParseVarName, applying the same substitution classes.
func substIndex(in *Interp, r *parse.Result, flags int) (string, Code) {
	var sb strings.Builder
	idx := 2
	for idx < len(r.Tokens) {
		tok := r.Tokens[idx]
		switch tok.Kind {
		case parse.Text:
			sb.WriteString(tok.Text(r.Src))
		case parse.Backslash:
			ch, _ := vals.ParseBackslash(tok.Text(r.Src))
			sb.WriteRune(ch)
		case parse.Command:
			inner := tok.Text(r.Src)
			script := vals.NewString(inner[1 : len(inner)-1])
			code := in.EvalNested(script)
			script.Release()
			if code != CodeOK {
				return "", code
			}
			sb.WriteString(in.result.String())
		case parse.Variable:
			name := r.Tokens[idx+1].Text(r.Src)
			v, code := in.GetVar(name, "")
			if code != CodeOK {
				return "", code
			}
			sb.WriteString(v.String())
		}
		idx += 1 + tok.Components
	}
	return sb.String(), CodeOK
}

// scanBracketed finds the matching close bracket for the open bracket at i,
// skipping nested brackets and backslash escapes.
func scanBracketed(s string, i int) (int, bool) {
	depth := 0
	for ; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
