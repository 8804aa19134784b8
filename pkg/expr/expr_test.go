package expr

import (
	"fmt"
	"testing"

	"github.com/gotcl/gotcl/pkg/tt"
	"github.com/gotcl/gotcl/pkg/vals"
)

// testEnv resolves variables from a map and evaluates nested scripts by
// looking them up in another map, which is enough for expression tests.
type testEnv struct {
	vars    map[string]string
	scripts map[string]string
}

func (e testEnv) GetVar(name, index string) (string, error) {
	key := name
	if index != "" {
		key = name + "(" + index + ")"
	}
	if v, ok := e.vars[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("can't read %q: no such variable", key)
}

func (e testEnv) EvalScript(script string) (string, error) {
	if v, ok := e.scripts[script]; ok {
		return v, nil
	}
	return "", fmt.Errorf("invalid command name %q", script)
}

var env = testEnv{
	vars:    map[string]string{"x": "5", "y": "2.5", "s": "abc", "a(i)": "7"},
	scripts: map[string]string{"llength $l": "3"},
}

func eval(src string) (string, error) {
	v, err := Eval(src, env)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func evalOK(src string) string {
	s, err := eval(src)
	if err != nil {
		return "error: " + err.Error()
	}
	return s
}

func TestEval(t *testing.T) {
	tt.Test(t, tt.Fn("eval", evalOK), tt.Table{
		// Arithmetic and precedence.
		tt.Args("1 + 2 * 3").Rets("7"),
		tt.Args("(1 + 2) * 3").Rets("9"),
		tt.Args("2 ** 3 ** 2").Rets("512"),
		tt.Args("7 / 2").Rets("3"),
		tt.Args("-7 / 2").Rets("-4"),
		tt.Args("-7 % 2").Rets("1"),
		tt.Args("7.0 / 2").Rets("3.5"),
		tt.Args("1 << 4").Rets("16"),
		tt.Args("0xff & 0x0f").Rets("15"),
		tt.Args("-3").Rets("-3"),
		tt.Args("~0").Rets("-1"),

		// Comparison and logic.
		tt.Args("1 < 2").Rets("1"),
		tt.Args("2 <= 1").Rets("0"),
		tt.Args("1 == 1.0").Rets("1"),
		tt.Args(`"abc" eq "abc"`).Rets("1"),
		tt.Args(`"abc" < "abd"`).Rets("1"),
		tt.Args(`"b" in "a b c"`).Rets("1"),
		tt.Args(`"d" ni "a b c"`).Rets("1"),
		tt.Args("1 && 0").Rets("0"),
		tt.Args("0 || 2").Rets("1"),
		tt.Args("!0").Rets("1"),
		tt.Args("1 ? 10 : 20").Rets("10"),
		tt.Args("0 ? 10 : 20").Rets("20"),

		// Variables and command substitution.
		tt.Args("$x + 1").Rets("6"),
		tt.Args("$y * 2").Rets("5"),
		tt.Args("$a(i) - 7").Rets("0"),
		tt.Args("[llength $l] == 3").Rets("1"),
		tt.Args(`$s eq "abc"`).Rets("1"),

		// Booleans and braces.
		tt.Args("true && on").Rets("1"),
		tt.Args("{a b} eq {a b}").Rets("1"),

		// Math functions.
		tt.Args("abs(-4)").Rets("4"),
		tt.Args("int(3.9)").Rets("3"),
		tt.Args("max(2, 5)").Rets("5"),
		tt.Args("round(2.5)").Rets("3"),
	})
}

func TestEvalErrors(t *testing.T) {
	for _, src := range []string{
		"1 +",
		"1 ++++",
		"(1 + 2",
		`$s + 1`,
		"1 / 0",
		"1 % 0",
		"nosuchfunc(1)",
		"$nosuchvar + 1",
		"08q + 1",
	} {
		if _, err := eval(src); err == nil {
			t.Errorf("Eval(%q) succeeded, want error", src)
		}
	}
}

func TestShortCircuit(t *testing.T) {
	// The right side of && is not evaluated when the left is false; $bogus
	// would error otherwise.
	got, err := eval("0 && $bogus")
	if err != nil || got != "0" {
		t.Errorf("0 && $bogus = %q, %v; want 0, nil", got, err)
	}
	got, err = eval("1 || $bogus")
	if err != nil || got != "1" {
		t.Errorf("1 || $bogus = %q, %v; want 1, nil", got, err)
	}
}

func TestExprCaching(t *testing.T) {
	v := vals.NewString("$x + 1")
	if _, err := EvalVal(v, env); err != nil {
		t.Fatal(err)
	}
	if v.RepOrNil(ExprKind) == nil {
		t.Error("parsed expression not cached on the value")
	}
	// A cached expression still sees fresh variable values.
	env2 := testEnv{vars: map[string]string{"x": "10"}}
	res, err := EvalVal(v, env2)
	if err != nil {
		t.Fatal(err)
	}
	if res.String() != "11" {
		t.Errorf("cached expr with new env = %q, want 11", res.String())
	}
	v.Release()
}

func TestEvalBool(t *testing.T) {
	tt.Test(t, tt.Fn("EvalBool", func(src string) (bool, error) {
		return EvalBool(vals.NewString(src), env)
	}), tt.Table{
		tt.Args("$x < 10").Rets(true, nil),
		tt.Args("$x > 10").Rets(false, nil),
		tt.Args("yes").Rets(true, nil),
		tt.Args("off").Rets(false, nil),
	})
}
