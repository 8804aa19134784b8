// Package expr implements the expression sub-language used by expr-valued
// arguments of commands like if, while, and for.
//
// Expressions are parsed into a small AST by a Pratt-style parser and
// evaluated against an environment that supplies variable values and nested
// command evaluation. Parsed expressions are cached on values via ExprKind,
// so a braced loop condition is parsed once and evaluated many times.
package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gotcl/gotcl/pkg/vals"
)

// Env supplies the dynamic parts of expression evaluation.
type Env interface {
	// GetVar returns the value of a variable; index is the array index, or
	// "" for a scalar.
	GetVar(name, index string) (string, error)
	// EvalScript evaluates a nested [script] substitution.
	EvalScript(script string) (string, error)
}

// ExprKind caches a parsed expression AST on a value.
var ExprKind = vals.RegisterKind(&vals.Kind{
	Name: "expr",
	Parse: func(v *vals.Val) (any, error) {
		return Parse(v.String())
	},
	// The string form is the expression source itself, which is always
	// retained, so no UpdateString is needed in practice; parsing never
	// discards it.
	UpdateString: nil,
})

// EvalVal evaluates a value as an expression, caching the parsed form.
func EvalVal(v *vals.Val, env Env) (*vals.Val, error) {
	rep, err := v.Rep(ExprKind)
	if err != nil {
		return nil, err
	}
	res, err := rep.(node).eval(env)
	if err != nil {
		return nil, err
	}
	return res.toVal(), nil
}

// Eval evaluates an expression string.
func Eval(src string, env Env) (*vals.Val, error) {
	n, err := Parse(src)
	if err != nil {
		return nil, err
	}
	res, err := n.eval(env)
	if err != nil {
		return nil, err
	}
	return res.toVal(), nil
}

// EvalBool evaluates a value as a boolean expression.
func EvalBool(v *vals.Val, env Env) (bool, error) {
	rep, err := v.Rep(ExprKind)
	if err != nil {
		return false, err
	}
	res, err := rep.(node).eval(env)
	if err != nil {
		return false, err
	}
	return res.truth()
}

// Parse parses an expression, returning its AST.
func Parse(src string) (node, error) {
	p := &exprParser{src: src}
	if err := p.next(); err != nil {
		return nil, err
	}
	n, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tkEOF {
		return nil, p.syntaxError("unexpected " + strconv.Quote(p.tok.text))
	}
	return n, nil
}

// value is an evaluated expression operand: int64, float64 or string.
type value struct {
	i   int64
	f   float64
	s   string
	typ valType
}

type valType int

const (
	tInt valType = iota
	tFloat
	tString
)

func intVal(i int64) value     { return value{i: i, typ: tInt} }
func floatVal(f float64) value { return value{f: f, typ: tFloat} }
func strVal(s string) value    { return value{s: s, typ: tString} }
func boolVal(b bool) value {
	if b {
		return intVal(1)
	}
	return intVal(0)
}

func (v value) toVal() *vals.Val {
	switch v.typ {
	case tInt:
		return vals.NewInt(v.i)
	case tFloat:
		return vals.NewWithRep(vals.DoubleKind, v.f)
	default:
		return vals.NewString(v.s)
	}
}

func (v value) text() string {
	switch v.typ {
	case tInt:
		return strconv.FormatInt(v.i, 10)
	case tFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		return v.s
	}
}

func (v value) truth() (bool, error) {
	switch v.typ {
	case tInt:
		return v.i != 0, nil
	case tFloat:
		return v.f != 0, nil
	default:
		return vals.ParseBool(v.s)
	}
}

// numeric tries to interpret a string operand as a number.
func (v value) numeric() value {
	if v.typ != tString {
		return v
	}
	s := strings.TrimSpace(v.s)
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return intVal(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return floatVal(f)
	}
	return v
}

// node is an expression AST node.
type node interface {
	eval(env Env) (value, error)
}

type litNode struct{ v value }

func (n litNode) eval(Env) (value, error) { return n.v, nil }

type varNode struct{ name, index string }

func (n varNode) eval(env Env) (value, error) {
	s, err := env.GetVar(n.name, n.index)
	if err != nil {
		return value{}, err
	}
	return strVal(s).numeric(), nil
}

type cmdNode struct{ script string }

func (n cmdNode) eval(env Env) (value, error) {
	s, err := env.EvalScript(n.script)
	if err != nil {
		return value{}, err
	}
	return strVal(s).numeric(), nil
}

type unaryNode struct {
	op  string
	arg node
}

func (n unaryNode) eval(env Env) (value, error) {
	v, err := n.arg.eval(env)
	if err != nil {
		return value{}, err
	}
	switch n.op {
	case "!":
		b, err := v.truth()
		if err != nil {
			return value{}, err
		}
		return boolVal(!b), nil
	case "-", "+", "~":
		v = v.numeric()
		switch v.typ {
		case tInt:
			switch n.op {
			case "-":
				return intVal(-v.i), nil
			case "~":
				return intVal(^v.i), nil
			}
			return v, nil
		case tFloat:
			if n.op == "~" {
				return value{}, fmt.Errorf("can't use floating-point value as operand of %q", n.op)
			}
			if n.op == "-" {
				return floatVal(-v.f), nil
			}
			return v, nil
		}
		return value{}, nonNumeric(v)
	}
	return value{}, fmt.Errorf("unknown unary operator %q", n.op)
}

type binNode struct {
	op   string
	l, r node
}

type ternNode struct{ cond, then, alt node }

func (n ternNode) eval(env Env) (value, error) {
	c, err := n.cond.eval(env)
	if err != nil {
		return value{}, err
	}
	b, err := c.truth()
	if err != nil {
		return value{}, err
	}
	if b {
		return n.then.eval(env)
	}
	return n.alt.eval(env)
}

func nonNumeric(v value) error {
	return fmt.Errorf("can't use non-numeric string %q as operand", v.text())
}

func (n binNode) eval(env Env) (value, error) {
	// Short-circuit operators evaluate the right side lazily.
	if n.op == "&&" || n.op == "||" {
		l, err := n.l.eval(env)
		if err != nil {
			return value{}, err
		}
		lb, err := l.truth()
		if err != nil {
			return value{}, err
		}
		if (n.op == "&&" && !lb) || (n.op == "||" && lb) {
			return boolVal(lb), nil
		}
		r, err := n.r.eval(env)
		if err != nil {
			return value{}, err
		}
		rb, err := r.truth()
		if err != nil {
			return value{}, err
		}
		return boolVal(rb), nil
	}

	l, err := n.l.eval(env)
	if err != nil {
		return value{}, err
	}
	r, err := n.r.eval(env)
	if err != nil {
		return value{}, err
	}

	switch n.op {
	case "eq":
		return boolVal(l.text() == r.text()), nil
	case "ne":
		return boolVal(l.text() != r.text()), nil
	case "in", "ni":
		elems, err := vals.SplitList(r.text())
		if err != nil {
			return value{}, err
		}
		found := false
		for _, e := range elems {
			if e == l.text() {
				found = true
				break
			}
		}
		return boolVal(found == (n.op == "in")), nil
	}

	ln, rn := l.numeric(), r.numeric()
	if ln.typ == tString || rn.typ == tString {
		return n.evalString(l.text(), r.text())
	}
	if ln.typ == tInt && rn.typ == tInt {
		return n.evalInt(ln.i, rn.i)
	}
	return n.evalFloat(ln.asFloat(), rn.asFloat())
}

func (v value) asFloat() float64 {
	if v.typ == tInt {
		return float64(v.i)
	}
	return v.f
}

func (n binNode) evalString(l, r string) (value, error) {
	switch n.op {
	case "<":
		return boolVal(l < r), nil
	case ">":
		return boolVal(l > r), nil
	case "<=":
		return boolVal(l <= r), nil
	case ">=":
		return boolVal(l >= r), nil
	case "==":
		return boolVal(l == r), nil
	case "!=":
		return boolVal(l != r), nil
	}
	return value{}, nonNumeric(strVal(l).numeric().numericOr(strVal(r)))
}

// numericOr returns the receiver if it is a plain string, and other
// otherwise; used to pick the offending operand for error messages.
func (v value) numericOr(other value) value {
	if v.typ == tString {
		return v
	}
	return other
}

func (n binNode) evalInt(l, r int64) (value, error) {
	switch n.op {
	case "+":
		return intVal(l + r), nil
	case "-":
		return intVal(l - r), nil
	case "*":
		return intVal(l * r), nil
	case "/":
		if r == 0 {
			return value{}, fmt.Errorf("divide by zero")
		}
		// Tcl divides with the floor, not truncation.
		q := l / r
		if (l%r != 0) && ((l < 0) != (r < 0)) {
			q--
		}
		return intVal(q), nil
	case "%":
		if r == 0 {
			return value{}, fmt.Errorf("divide by zero")
		}
		m := l % r
		if m != 0 && ((l < 0) != (r < 0)) {
			m += r
		}
		return intVal(m), nil
	case "**":
		return intVal(ipow(l, r)), nil
	case "<<":
		return intVal(l << uint(r)), nil
	case ">>":
		return intVal(l >> uint(r)), nil
	case "&":
		return intVal(l & r), nil
	case "^":
		return intVal(l ^ r), nil
	case "|":
		return intVal(l | r), nil
	case "<":
		return boolVal(l < r), nil
	case ">":
		return boolVal(l > r), nil
	case "<=":
		return boolVal(l <= r), nil
	case ">=":
		return boolVal(l >= r), nil
	case "==":
		return boolVal(l == r), nil
	case "!=":
		return boolVal(l != r), nil
	}
	return value{}, fmt.Errorf("unknown operator %q", n.op)
}

func ipow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	var result int64 = 1
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func (n binNode) evalFloat(l, r float64) (value, error) {
	switch n.op {
	case "+":
		return floatVal(l + r), nil
	case "-":
		return floatVal(l - r), nil
	case "*":
		return floatVal(l * r), nil
	case "/":
		if r == 0 {
			return value{}, fmt.Errorf("divide by zero")
		}
		return floatVal(l / r), nil
	case "<":
		return boolVal(l < r), nil
	case ">":
		return boolVal(l > r), nil
	case "<=":
		return boolVal(l <= r), nil
	case ">=":
		return boolVal(l >= r), nil
	case "==":
		return boolVal(l == r), nil
	case "!=":
		return boolVal(l != r), nil
	}
	return value{}, fmt.Errorf("can't use floating-point value as operand of %q", n.op)
}
