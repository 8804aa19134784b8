// Package parse implements the gotcl parser.
//
// The parser produces a flat token array rather than a pointer-based tree:
// each word token records the number of component tokens that follow it, so
// traversal can skip subtrees in O(1). Commands are parsed one at a time;
// [ParseScript] drives [ParseCommand] over a whole source.
package parse

import (
	"strings"

	"github.com/gotcl/gotcl/pkg/diag"
	"github.com/gotcl/gotcl/pkg/vals"
)

// Result is the outcome of parsing one command.
type Result struct {
	// Name and Src identify the source; token ranges are offsets into Src.
	Name string
	Src  string
	// Comment is the span of the leading comment, if any.
	Comment diag.Ranging
	// Command is the span from the first word to the terminator.
	Command diag.Ranging
	// Tokens is the flat token array.
	Tokens []Token
	// Words is the number of top-level word tokens.
	Words int
	// WordLines has, per word, the 1-based logical source line the word
	// begins on.
	WordLines []int
	// Continuations has, per word, the byte offsets of line continuations
	// within the word.
	Continuations [][]int
	// Incomplete is set when the input appears to be a prefix of a longer
	// well-formed script.
	Incomplete bool
	// ErrKind and ErrRange describe the parse error, if any.
	ErrKind  ErrKind
	ErrRange diag.Ranging
	// Term is the offset of the terminating character; len(Src) at EOF.
	// TermChar is that character: '\n', ';', ']', or 0 at EOF.
	Term     int
	TermChar byte
}

// Err returns the parse error as a *diag.Error, or nil.
func (r *Result) Err() error {
	if r.ErrKind == OK {
		return nil
	}
	return &diag.Error{
		Type:    "parse error",
		Message: r.ErrKind.String(),
		Context: *diag.NewContext(r.Name, r.Src, r.ErrRange),
	}
}

// ParseCommand parses a single command starting at ofs, skipping leading
// white space and comments. When nested is true the command is inside
// brackets, and an unquoted ']' terminates it.
func ParseCommand(name, src string, ofs int, nested bool) *Result {
	p := &parser{name: name, src: src, pos: ofs,
		r: &Result{Name: name, Src: src, Term: len(src)}}
	p.parseCommand(nested)
	return p.r
}

// ParseBraces parses a braced word starting at ofs, which must point at the
// open brace.
func ParseBraces(name, src string, ofs int) *Result {
	p := &parser{name: name, src: src, pos: ofs,
		r: &Result{Name: name, Src: src, Term: len(src)}}
	p.parseWord(false, false)
	return p.r
}

// ParseQuoted parses a double-quoted word starting at ofs, which must point
// at the open quote.
func ParseQuoted(name, src string, ofs int) *Result {
	return ParseBraces(name, src, ofs)
}

// ParseVarName parses a variable reference starting at ofs, which must point
// at the dollar sign.
func ParseVarName(name, src string, ofs int) *Result {
	p := &parser{name: name, src: src, pos: ofs,
		r: &Result{Name: name, Src: src, Term: len(src)}}
	p.parseVarRef()
	return p.r
}

// ParseBackslash decodes the backslash escape at ofs and returns the decoded
// codepoint along with the number of bytes consumed.
func ParseBackslash(src string, ofs int) (rune, int) {
	return vals.ParseBackslash(src[ofs:])
}

// parser maintains the mutable state of parsing one command.
type parser struct {
	name string
	src  string
	pos  int
	r    *Result
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) hasPrefix(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

// fail records a parse error. Errors at the very end of the input also mark
// the result incomplete, for interactive front-ends.
func (p *parser) fail(kind ErrKind, r diag.Ranging, incomplete bool) {
	if p.r.ErrKind != OK {
		return
	}
	p.r.ErrKind = kind
	p.r.ErrRange = r
	if incomplete {
		p.r.Incomplete = true
	}
}

func (p *parser) line(ofs int) int {
	return strings.Count(p.src[:ofs], "\n") + 1
}

func isCommandTerm(c byte) bool { return c == '\n' || c == ';' }

func isWordSep(c byte) bool { return c == ' ' || c == '\t' }

// isWordEnd reports whether c ends a bare word.
func isWordEnd(c byte, nested bool) bool {
	return isWordSep(c) || isCommandTerm(c) || c == '\r' || (nested && c == ']')
}

func (p *parser) parseCommand(nested bool) {
	p.skipWhite(true)
	p.r.Command.From = p.pos
	for {
		if p.eof() {
			p.r.Term, p.r.TermChar = len(p.src), 0
			break
		}
		c := p.peek()
		if isCommandTerm(c) || (nested && c == ']') {
			p.r.Term, p.r.TermChar = p.pos, c
			break
		}
		p.parseWord(nested, true)
		if p.r.ErrKind != OK {
			break
		}
		p.skipWhite(false)
	}
	p.r.Command.To = p.pos
}

// skipWhite skips spaces, tabs and line continuations. When leading is true
// it also consumes comments, recording the span of the first one.
func (p *parser) skipWhite(leading bool) {
	for {
		switch {
		case !p.eof() && (isWordSep(p.peek()) || p.peek() == '\r' && !leading):
			p.pos++
		case vals.IsBackslashNewline(p.src[p.pos:]):
			_, n := vals.ParseBackslash(p.src[p.pos:])
			p.pos += n
		case leading && !p.eof() && (p.peek() == '\n' || p.peek() == '\r'):
			p.pos++
		case leading && p.peek() == '#':
			from := p.pos
			for !p.eof() && p.peek() != '\n' {
				if vals.IsBackslashNewline(p.src[p.pos:]) {
					p.pos += 2
				} else {
					p.pos++
				}
			}
			if p.r.Comment.To == 0 {
				p.r.Comment = diag.Ranging{From: from, To: p.pos}
			}
		default:
			return
		}
	}
}

// parseWord parses one word. When top is true the word is a top-level word
// of the command and is recorded in Words/WordLines/Continuations.
func (p *parser) parseWord(nested, top bool) {
	start := p.pos
	expand := false
	if p.hasPrefix("{*}") && start+3 < len(p.src) && !isWordEnd(p.src[start+3], nested) {
		expand = true
		p.pos += 3
	}

	if expand && p.peek() == '{' {
		if p.parseExpandBraced(start, top) {
			return
		}
		// Fall through to a runtime expansion word.
	}

	tokIdx := len(p.r.Tokens)
	p.r.Tokens = append(p.r.Tokens, Token{Ranging: diag.Ranging{From: start}})
	var conts []int

	switch {
	case p.peek() == '{':
		p.parseBracedContent(nested, &conts)
	case p.peek() == '"':
		p.parseQuotedContent(nested, &conts)
	default:
		p.parseBareContent(nested, &conts)
	}

	if p.r.ErrKind != OK {
		p.r.Tokens = p.r.Tokens[:tokIdx]
		return
	}
	if len(p.r.Tokens) == tokIdx+1 {
		// Empty {} or "" word: give it a zero-width literal component.
		p.r.Tokens = append(p.r.Tokens,
			Token{Kind: Text, Ranging: diag.PointRanging(p.pos - 1)})
	}

	tok := &p.r.Tokens[tokIdx]
	tok.To = p.pos
	tok.Components = len(p.r.Tokens) - tokIdx - 1
	switch {
	case expand:
		tok.Kind = ExpandWord
	case tok.Components == 1 && p.r.Tokens[tokIdx+1].Kind == Text:
		tok.Kind = SimpleWord
	default:
		tok.Kind = Word
	}
	if top {
		p.addWord(start, conts)
	}
}

func (p *parser) addWord(start int, conts []int) {
	p.r.Words++
	p.r.WordLines = append(p.r.WordLines, p.line(start))
	p.r.Continuations = append(p.r.Continuations, conts)
}

// parseExpandBraced handles {*}{...} where the braced content is a literal
// list of bare elements: the word is split at parse time into one SimpleWord
// per element, with spans pointing into the original source. Returns false
// when the content is not splittable at parse time.
func (p *parser) parseExpandBraced(start int, top bool) bool {
	save := p.pos
	contentFrom, contentTo, ok := p.scanBraceRange()
	if !ok {
		// Let parseBracedContent rediscover and report the error.
		p.pos = save
		return false
	}
	content := p.src[contentFrom:contentTo]
	if strings.ContainsAny(content, "\\{}\"") {
		p.pos = save
		return false
	}
	i := 0
	for i < len(content) {
		for i < len(content) && isListSpace(content[i]) {
			i++
		}
		if i == len(content) {
			break
		}
		es := i
		for i < len(content) && !isListSpace(content[i]) {
			i++
		}
		from, to := contentFrom+es, contentFrom+i
		p.r.Tokens = append(p.r.Tokens,
			Token{Kind: SimpleWord, Ranging: diag.Ranging{From: from, To: to}, Components: 1},
			Token{Kind: Text, Ranging: diag.Ranging{From: from, To: to}})
		if top {
			p.addWord(from, nil)
		}
	}
	return true
}

func isListSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\v' || c == '\f' || c == '\r'
}

// scanBraceRange scans a balanced braced span at p.pos, returning the content
// range (brace-exclusive) and advancing past the close brace.
func (p *parser) scanBraceRange() (int, int, bool) {
	depth := 1
	i := p.pos + 1
	from := i
	for i < len(p.src) {
		switch p.src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				p.pos = i + 1
				return from, i, true
			}
		case '\\':
			i++
		}
		i++
	}
	return 0, 0, false
}

// parseBracedContent parses {...} at p.pos. No substitutions are performed
// within braces; only line continuations produce Backslash tokens.
func (p *parser) parseBracedContent(nested bool, conts *[]int) {
	open := p.pos
	p.pos++
	depth := 1
	textFrom := p.pos
	flush := func(to int) {
		if to > textFrom {
			p.r.Tokens = append(p.r.Tokens,
				Token{Kind: Text, Ranging: diag.Ranging{From: textFrom, To: to}})
		}
	}
	for !p.eof() {
		switch c := p.peek(); c {
		case '{':
			depth++
			p.pos++
		case '}':
			depth--
			p.pos++
			if depth == 0 {
				flush(p.pos - 1)
				if !p.eof() && !isWordEnd(p.peek(), nested) {
					p.fail(BraceExtra, diag.Ranging{From: p.pos, To: p.pos + 1}, false)
				}
				return
			}
		case '\\':
			if vals.IsBackslashNewline(p.src[p.pos:]) {
				flush(p.pos)
				*conts = append(*conts, p.pos)
				_, n := vals.ParseBackslash(p.src[p.pos:])
				p.r.Tokens = append(p.r.Tokens,
					Token{Kind: Backslash, Ranging: diag.Ranging{From: p.pos, To: p.pos + n}})
				p.pos += n
				textFrom = p.pos
			} else {
				// The backslash stays literal inside braces, but still
				// shields the next character from brace counting.
				p.pos += 2
				if p.pos > len(p.src) {
					p.pos = len(p.src)
				}
			}
		default:
			p.pos++
		}
	}
	p.fail(MissingBrace, diag.Ranging{From: open, To: open + 1}, true)
}

// parseQuotedContent parses "..." at p.pos, performing substitutions.
func (p *parser) parseQuotedContent(nested bool, conts *[]int) {
	open := p.pos
	p.pos++
	closed := p.parseTokens(func(c byte) bool { return c == '"' }, conts)
	if p.r.ErrKind != OK {
		return
	}
	if !closed {
		p.fail(MissingQuote, diag.Ranging{From: open, To: open + 1}, true)
		return
	}
	p.pos++ // close quote
	if !p.eof() && !isWordEnd(p.peek(), nested) {
		p.fail(QuoteExtra, diag.Ranging{From: p.pos, To: p.pos + 1}, false)
	}
}

// parseBareContent parses an unquoted word at p.pos, performing
// substitutions up to the next word separator or command terminator.
func (p *parser) parseBareContent(nested bool, conts *[]int) {
	p.parseTokens(func(c byte) bool { return isWordEnd(c, nested) }, conts)
}

// parseTokens parses substitution tokens until stop reports a terminator or
// the input ends. It returns whether it stopped at a terminator. A line
// continuation inside a bare word also stops the scan (it acts as a word
// separator); inside quotes the caller's stop function never matches it and
// it becomes a Backslash token.
func (p *parser) parseTokens(stop func(byte) bool, conts *[]int) bool {
	textFrom := p.pos
	flush := func() {
		if p.pos > textFrom {
			p.r.Tokens = append(p.r.Tokens,
				Token{Kind: Text, Ranging: diag.Ranging{From: textFrom, To: p.pos}})
		}
	}
	for !p.eof() {
		c := p.peek()
		if stop(c) {
			flush()
			return true
		}
		switch c {
		case '[':
			flush()
			p.parseCommandSubst()
			if p.r.ErrKind != OK {
				return false
			}
			textFrom = p.pos
		case '$':
			flush()
			p.parseVarRef()
			if p.r.ErrKind != OK {
				return false
			}
			textFrom = p.pos
		case '\\':
			if vals.IsBackslashNewline(p.src[p.pos:]) {
				if stop(' ') {
					// Bare word: the continuation separates words.
					flush()
					return true
				}
				*conts = append(*conts, p.pos)
			}
			flush()
			_, n := vals.ParseBackslash(p.src[p.pos:])
			p.r.Tokens = append(p.r.Tokens,
				Token{Kind: Backslash, Ranging: diag.Ranging{From: p.pos, To: p.pos + n}})
			p.pos += n
			textFrom = p.pos
		default:
			p.pos++
		}
	}
	flush()
	return false
}

// parseCommandSubst parses [script] at p.pos into a single Command token.
// The nested script is parsed for validity; evaluation re-parses it.
func (p *parser) parseCommandSubst() {
	from := p.pos
	p.pos++
	for {
		res := ParseCommand(p.name, p.src, p.pos, true)
		if res.ErrKind != OK {
			p.fail(res.ErrKind, res.ErrRange, res.Incomplete)
			return
		}
		p.pos = res.Term
		switch res.TermChar {
		case ']':
			p.pos++
			p.r.Tokens = append(p.r.Tokens,
				Token{Kind: Command, Ranging: diag.Ranging{From: from, To: p.pos}})
			return
		case 0:
			p.fail(MissingBracket, diag.Ranging{From: from, To: from + 1}, true)
			return
		default:
			p.pos++ // newline or semicolon between nested commands
		}
	}
}

func isVarNameChar(c byte) bool {
	return c == '_' || c == ':' ||
		'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

// parseVarRef parses a $name, $name(index) or ${name} reference at p.pos.
// A lone dollar that starts no valid reference becomes a Text token.
func (p *parser) parseVarRef() {
	from := p.pos
	p.pos++
	if p.peek() == '{' {
		braceFrom := p.pos
		p.pos++
		nameFrom := p.pos
		for !p.eof() && p.peek() != '}' {
			p.pos++
		}
		if p.eof() {
			p.fail(MissingVarBrace, diag.Ranging{From: braceFrom, To: braceFrom + 1}, true)
			return
		}
		nameTo := p.pos
		p.pos++
		p.r.Tokens = append(p.r.Tokens,
			Token{Kind: Variable, Ranging: diag.Ranging{From: from, To: p.pos}, Components: 1},
			Token{Kind: Text, Ranging: diag.Ranging{From: nameFrom, To: nameTo}})
		return
	}

	nameFrom := p.pos
	for !p.eof() && isVarNameChar(p.peek()) {
		p.pos++
	}
	if p.pos == nameFrom {
		// Not a variable reference after all.
		p.r.Tokens = append(p.r.Tokens,
			Token{Kind: Text, Ranging: diag.Ranging{From: from, To: p.pos}})
		return
	}
	nameTo := p.pos

	if p.peek() == '(' {
		tokIdx := len(p.r.Tokens)
		p.r.Tokens = append(p.r.Tokens,
			Token{Kind: Variable, Ranging: diag.Ranging{From: from}},
			Token{Kind: Text, Ranging: diag.Ranging{From: nameFrom, To: nameTo}})
		parenFrom := p.pos
		p.pos++
		var conts []int
		closed := p.parseTokens(func(c byte) bool { return c == ')' }, &conts)
		if p.r.ErrKind != OK {
			return
		}
		if !closed {
			p.fail(MissingParen, diag.Ranging{From: parenFrom, To: parenFrom + 1}, true)
			return
		}
		p.pos++ // close paren
		tok := &p.r.Tokens[tokIdx]
		tok.To = p.pos
		tok.Components = len(p.r.Tokens) - tokIdx - 1
		return
	}

	p.r.Tokens = append(p.r.Tokens,
		Token{Kind: Variable, Ranging: diag.Ranging{From: from, To: p.pos}, Components: 1},
		Token{Kind: Text, Ranging: diag.Ranging{From: nameFrom, To: nameTo}})
}
