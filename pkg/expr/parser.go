package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gotcl/gotcl/pkg/vals"
)

type tokenKind int

const (
	tkEOF tokenKind = iota
	tkNumber
	tkString
	tkVar
	tkScript
	tkOp
	tkLParen
	tkRParen
	tkComma
	tkFunc
)

type token struct {
	kind tokenKind
	text string
	// set for tkNumber
	num value
	// set for tkVar
	name, index string
}

type exprParser struct {
	src string
	pos int
	tok token
}

func (p *exprParser) syntaxError(detail string) error {
	return fmt.Errorf("syntax error in expression %q: %s", p.src, detail)
}

func (p *exprParser) rest() string { return p.src[p.pos:] }

// next scans the next token into p.tok.
func (p *exprParser) next() error {
	for p.pos < len(p.src) && isExprSpace(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == len(p.src) {
		p.tok = token{kind: tkEOF}
		return nil
	}
	c := p.src[p.pos]
	switch {
	case c >= '0' && c <= '9' || c == '.' && p.pos+1 < len(p.src) && isDigit(p.src[p.pos+1]):
		return p.scanNumber()
	case c == '$':
		return p.scanVar()
	case c == '[':
		return p.scanScript()
	case c == '"':
		return p.scanQuoted()
	case c == '{':
		return p.scanBraced()
	case c == '(':
		p.pos++
		p.tok = token{kind: tkLParen}
		return nil
	case c == ')':
		p.pos++
		p.tok = token{kind: tkRParen}
		return nil
	case c == ',':
		p.pos++
		p.tok = token{kind: tkComma}
		return nil
	case isAlpha(c):
		return p.scanBareword()
	default:
		return p.scanOperator()
	}
}

func isExprSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool     { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func (p *exprParser) scanNumber() error {
	start := p.pos
	// Accept a generous span and let strconv decide; covers hex, octal and
	// binary prefixes as well as floats with exponents.
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if isDigit(c) || isAlpha(c) || c == '.' {
			p.pos++
			continue
		}
		if (c == '+' || c == '-') && p.pos > start {
			prev := p.src[p.pos-1]
			if prev == 'e' || prev == 'E' || prev == 'p' || prev == 'P' {
				p.pos++
				continue
			}
		}
		break
	}
	text := p.src[start:p.pos]
	if i, err := strconv.ParseInt(text, 0, 64); err == nil {
		p.tok = token{kind: tkNumber, text: text, num: intVal(i)}
		return nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		p.tok = token{kind: tkNumber, text: text, num: floatVal(f)}
		return nil
	}
	return fmt.Errorf("malformed number in expression %q: %q", p.src, text)
}

func (p *exprParser) scanVar() error {
	p.pos++ // consume $
	if p.pos < len(p.src) && p.src[p.pos] == '{' {
		end := strings.IndexByte(p.rest(), '}')
		if end < 0 {
			return p.syntaxError("missing close-brace for variable name")
		}
		name := p.src[p.pos+1 : p.pos+end]
		p.pos += end + 1
		p.tok = token{kind: tkVar, name: name}
		return nil
	}
	start := p.pos
	for p.pos < len(p.src) && isVarNameChar(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return p.syntaxError("invalid variable reference")
	}
	name := p.src[start:p.pos]
	if p.pos < len(p.src) && p.src[p.pos] == '(' {
		end := strings.IndexByte(p.rest(), ')')
		if end < 0 {
			return p.syntaxError("missing )")
		}
		index := p.src[p.pos+1 : p.pos+end]
		p.pos += end + 1
		p.tok = token{kind: tkVar, name: name, index: index}
		return nil
	}
	p.tok = token{kind: tkVar, name: name}
	return nil
}

func isVarNameChar(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == ':'
}

func (p *exprParser) scanScript() error {
	start := p.pos
	depth := 0
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '\\':
			p.pos++
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				p.pos++
				p.tok = token{kind: tkScript, text: p.src[start+1 : p.pos-1]}
				return nil
			}
		}
		p.pos++
	}
	return p.syntaxError("missing close-bracket")
}

func (p *exprParser) scanQuoted() error {
	p.pos++ // consume "
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '"' {
			p.pos++
			p.tok = token{kind: tkString, text: sb.String()}
			return nil
		}
		if c == '\\' {
			r, n := vals.ParseBackslash(p.rest())
			sb.WriteRune(r)
			p.pos += n
			continue
		}
		r, n := utf8.DecodeRuneInString(p.rest())
		sb.WriteRune(r)
		p.pos += n
	}
	return p.syntaxError(`missing "`)
}

func (p *exprParser) scanBraced() error {
	start := p.pos
	depth := 0
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '\\':
			p.pos++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				p.pos++
				p.tok = token{kind: tkString, text: p.src[start+1 : p.pos-1]}
				return nil
			}
		}
		p.pos++
	}
	return p.syntaxError("missing close-brace")
}

func (p *exprParser) scanBareword() error {
	start := p.pos
	for p.pos < len(p.src) && (isAlpha(p.src[p.pos]) || isDigit(p.src[p.pos])) {
		p.pos++
	}
	word := p.src[start:p.pos]
	switch word {
	case "eq", "ne", "in", "ni":
		p.tok = token{kind: tkOp, text: word}
		return nil
	case "true", "false", "yes", "no", "on", "off":
		p.tok = token{kind: tkString, text: word}
		return nil
	}
	// A bareword followed by ( is a function call.
	rest := p.pos
	for rest < len(p.src) && isExprSpace(p.src[rest]) {
		rest++
	}
	if rest < len(p.src) && p.src[rest] == '(' {
		p.tok = token{kind: tkFunc, text: word}
		return nil
	}
	return p.syntaxError("unexpected bareword " + strconv.Quote(word))
}

var operators = []string{
	"**", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||",
	"+", "-", "*", "/", "%", "<", ">", "!", "~", "&", "^", "|", "?", ":",
}

func (p *exprParser) scanOperator() error {
	for _, op := range operators {
		if strings.HasPrefix(p.rest(), op) {
			p.pos += len(op)
			p.tok = token{kind: tkOp, text: op}
			return nil
		}
	}
	r, _ := utf8.DecodeRuneInString(p.rest())
	return p.syntaxError("unexpected character " + strconv.QuoteRune(r))
}

// Binding powers for binary operators. Higher binds tighter.
var binaryPrec = map[string]int{
	"||": 1, "&&": 2,
	"|": 3, "^": 4, "&": 5,
	"==": 6, "!=": 6, "eq": 6, "ne": 6, "in": 6, "ni": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7,
	"<<": 8, ">>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
	"**": 11,
}

func (p *exprParser) parseExpr(minPrec int) (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		if p.tok.kind == tkOp && p.tok.text == "?" && minPrec == 0 {
			if err := p.next(); err != nil {
				return nil, err
			}
			then, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			if p.tok.kind != tkOp || p.tok.text != ":" {
				return nil, p.syntaxError("expected : in conditional")
			}
			if err := p.next(); err != nil {
				return nil, err
			}
			alt, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			left = ternNode{cond: left, then: then, alt: alt}
			continue
		}
		if p.tok.kind != tkOp {
			return left, nil
		}
		prec, ok := binaryPrec[p.tok.text]
		if !ok || prec < minPrec {
			return left, nil
		}
		op := p.tok.text
		if err := p.next(); err != nil {
			return nil, err
		}
		// ** is right-associative; everything else is left-associative.
		nextPrec := prec + 1
		if op == "**" {
			nextPrec = prec
		}
		right, err := p.parseExpr(nextPrec)
		if err != nil {
			return nil, err
		}
		left = binNode{op: op, l: left, r: right}
	}
}

func (p *exprParser) parseUnary() (node, error) {
	switch p.tok.kind {
	case tkOp:
		op := p.tok.text
		if op != "-" && op != "+" && op != "!" && op != "~" {
			return nil, p.syntaxError("unexpected operator " + strconv.Quote(op))
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: op, arg: arg}, nil
	case tkNumber:
		n := litNode{v: p.tok.num}
		return n, p.next()
	case tkString:
		n := litNode{v: strVal(p.tok.text)}
		return n, p.next()
	case tkVar:
		n := varNode{name: p.tok.name, index: p.tok.index}
		return n, p.next()
	case tkScript:
		n := cmdNode{script: p.tok.text}
		return n, p.next()
	case tkLParen:
		if err := p.next(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tkRParen {
			return nil, p.syntaxError("missing )")
		}
		return inner, p.next()
	case tkFunc:
		return p.parseCall()
	case tkEOF:
		return nil, p.syntaxError("unexpected end of expression")
	}
	return nil, p.syntaxError("unexpected token")
}

func (p *exprParser) parseCall() (node, error) {
	name := p.tok.text
	if _, ok := mathFuncs[name]; !ok {
		return nil, p.syntaxError("unknown function " + strconv.Quote(name))
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.tok.kind != tkLParen {
		return nil, p.syntaxError("expected ( after function name")
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	var args []node
	if p.tok.kind != tkRParen {
		for {
			arg, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.tok.kind != tkComma {
				break
			}
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if p.tok.kind != tkRParen {
		return nil, p.syntaxError("missing ) in function call")
	}
	return funcNode{name: name, args: args}, p.next()
}

type funcNode struct {
	name string
	args []node
}

type mathFunc struct {
	arity int
	apply func(args []value) (value, error)
}

var mathFuncs = map[string]mathFunc{
	"abs": {1, func(a []value) (value, error) {
		v := a[0]
		if v.typ == tInt {
			if v.i < 0 {
				return intVal(-v.i), nil
			}
			return v, nil
		}
		return floatVal(math.Abs(v.asFloat())), nil
	}},
	"int": {1, func(a []value) (value, error) {
		return intVal(int64(a[0].asFloat())), nil
	}},
	"double": {1, func(a []value) (value, error) {
		return floatVal(a[0].asFloat()), nil
	}},
	"round": {1, func(a []value) (value, error) {
		return intVal(int64(math.Round(a[0].asFloat()))), nil
	}},
	"sqrt": {1, func(a []value) (value, error) {
		return floatVal(math.Sqrt(a[0].asFloat())), nil
	}},
	"pow": {2, func(a []value) (value, error) {
		return floatVal(math.Pow(a[0].asFloat(), a[1].asFloat())), nil
	}},
	"fmod": {2, func(a []value) (value, error) {
		return floatVal(math.Mod(a[0].asFloat(), a[1].asFloat())), nil
	}},
	"max": {2, func(a []value) (value, error) {
		if cmpNum(a[0], a[1]) >= 0 {
			return a[0], nil
		}
		return a[1], nil
	}},
	"min": {2, func(a []value) (value, error) {
		if cmpNum(a[0], a[1]) <= 0 {
			return a[0], nil
		}
		return a[1], nil
	}},
}

func cmpNum(a, b value) int {
	af, bf := a.asFloat(), b.asFloat()
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	}
	return 0
}

func (n funcNode) eval(env Env) (value, error) {
	f := mathFuncs[n.name]
	if len(n.args) != f.arity {
		return value{}, fmt.Errorf("wrong # args for math function %q", n.name)
	}
	args := make([]value, len(n.args))
	for i, a := range n.args {
		v, err := a.eval(env)
		if err != nil {
			return value{}, err
		}
		v = v.numeric()
		if v.typ == tString {
			return value{}, nonNumeric(v)
		}
		args[i] = v
	}
	return f.apply(args)
}
