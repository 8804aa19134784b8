package eval

import (
	"strings"

	"github.com/gotcl/gotcl/pkg/parse"
	"github.com/gotcl/gotcl/pkg/vals"
)

func init() {
	registerSpecializer("subst", compileSubst)
}

// compileSubst lowers [subst ?flags? string] when the string is literal and
// every substitution in it resolves without running a script: plain text,
// backslash escapes (folded at compile time) and variable references with
// literal indexes. Command substitution and dynamic indexes defer to the
// runtime scanner.
func compileSubst(c *compiler, r *parse.Result) status {
	if r.Words < 2 {
		return statusDefer
	}
	flags := substAll
	for w := 1; w < r.Words-1; w++ {
		f, ok := literalWord(r, w)
		if !ok {
			return statusDefer
		}
		switch f {
		case "-nobackslashes":
			flags &^= substBackslashes
		case "-nocommands":
			flags &^= substCommands
		case "-novariables":
			flags &^= substVariables
		default:
			return statusDefer
		}
	}
	s, ok := literalWord(r, r.Words-1)
	if !ok {
		return statusDefer
	}

	pushes := 0
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			c.emitPushString(text.String())
			text.Reset()
			pushes++
		}
	}
	i := 0
	for i < len(s) {
		switch ch := s[i]; {
		case ch == '\\' && flags&substBackslashes != 0:
			esc, n := vals.ParseBackslash(s[i:])
			text.WriteRune(esc)
			i += n
		case ch == '[' && flags&substCommands != 0:
			return statusDefer
		case ch == '$' && flags&substVariables != 0:
			vr := parse.ParseVarName(c.proc.name, s, i)
			if vr.ErrKind != parse.OK {
				return statusDefer
			}
			tok := vr.Tokens[0]
			if tok.Components == 0 {
				text.WriteByte('$')
				i++
				break
			}
			name := vr.Tokens[1].Text(s)
			if tok.Components == 1 {
				flush()
				if li, ok := c.localSlot(name); ok {
					c.emitLocal(opLoadScalar1, opLoadScalar4, li)
					c.adjust(1)
				} else {
					c.emitPushString(name)
					c.emit(opLoadStk)
				}
				pushes++
				i = tok.To
				break
			}
			index, ok := literalIndex(vr, s)
			if !ok {
				return statusDefer
			}
			flush()
			if li, ok := c.localSlot(name); ok {
				c.emitPushString(index)
				c.emitImm1(opLoadArray1, li)
			} else {
				c.emitPushString(name)
				c.emitPushString(index)
				c.emit(opLoadArrayStk)
				c.adjust(-1)
			}
			pushes++
			i = tok.To
		default:
			text.WriteByte(ch)
			i++
		}
	}
	flush()
	switch {
	case pushes == 0:
		c.emitPushString("")
	case pushes > 1:
		c.emitImm1(opConcat1, pushes)
		c.adjust(1 - pushes)
	}
	return statusOK
}

// literalIndex renders the index tokens of a parsed array reference when they
// are all literal.
func literalIndex(r *parse.Result, src string) (string, bool) {
	var sb strings.Builder
	idx := 2
	for idx < len(r.Tokens) {
		tok := r.Tokens[idx]
		switch tok.Kind {
		case parse.Text:
			sb.WriteString(tok.Text(src))
		case parse.Backslash:
			ch, _ := vals.ParseBackslash(tok.Text(src))
			sb.WriteRune(ch)
		default:
			return "", false
		}
		idx += 1 + tok.Components
	}
	return sb.String(), true
}
