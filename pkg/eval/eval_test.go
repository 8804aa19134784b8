package eval

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/gotcl/gotcl/pkg/must"
	"github.com/gotcl/gotcl/pkg/testutil"
	"github.com/gotcl/gotcl/pkg/tt"
)

// run evaluates a script in a fresh interpreter and returns the result and
// the completion code.
func run(script string) (string, int) {
	in := NewInterp()
	s, code := in.Eval(script)
	return s, int(code)
}

func TestEvalBasics(t *testing.T) {
	tt.Test(t, tt.Fn("Eval", run), tt.Table{
		tt.Args("").Rets("", 0),
		tt.Args("set a 5").Rets("5", 0),
		tt.Args("set a 5; set a").Rets("5", 0),
		tt.Args("set a 5; incr a").Rets("6", 0),
		tt.Args("incr fresh 5").Rets("5", 0),
		tt.Args("set a hello; set b $a").Rets("hello", 0),
		tt.Args(`set a 1; set b 2; set c "$a-$b"`).Rets("1-2", 0),
		tt.Args("set x(i) 3; set x(i)").Rets("3", 0),
		tt.Args("set k i; set x($k) 7; set x($k)").Rets("7", 0),
		tt.Args("unset nope").Rets(`can't unset "nope": no such variable`, 1),
		tt.Args("set a 1; unset a; info exists a").Rets("0", 0),
		tt.Args("append s ab; append s cd; set s").Rets("abcd", 0),
		tt.Args("lappend l a; lappend l b c; set l").Rets("a b c", 0),
		// Command and variable substitution nest.
		tt.Args("set a [expr {2 + 3}]").Rets("5", 0),
		tt.Args("list a [list b c] d").Rets("a {b c} d", 0),
	})
}

func TestEvalProcs(t *testing.T) {
	tt.Test(t, tt.Fn("Eval", run), tt.Table{
		tt.Args(`
			proc f {} {
				set a 5
				incr a
				return $a
			}
			f
		`).Rets("6", 0),
		tt.Args(`proc greet {{who world}} { return "hi $who" }; greet`).Rets("hi world", 0),
		tt.Args(`proc greet {{who world}} { return "hi $who" }; greet tcl`).Rets("hi tcl", 0),
		tt.Args(`proc sum args { set s 0; foreach n $args {incr s $n}; set s }; sum 1 2 3`).Rets("6", 0),
		tt.Args(`proc f {a} {}; f`).Rets(`wrong # args: should be "f a"`, 1),
		tt.Args(`proc f {a} {}; f 1 2`).Rets(`wrong # args: should be "f a"`, 1),
		tt.Args("nosuch").Rets(`invalid command name "nosuch"`, 1),
		tt.Args(`proc f {} {return -code error boom}; list [catch {f} m] $m`).Rets("1 boom", 0),
		tt.Args(`proc f {} {return 1}; rename f g; g`).Rets("1", 0),
		// A proc result propagates through nested calls.
		tt.Args(`
			proc inner {} { return deep }
			proc outer {} { inner }
			outer
		`).Rets("deep", 0),
	})
}

func TestEvalControlFlow(t *testing.T) {
	tt.Test(t, tt.Fn("Eval", run), tt.Table{
		tt.Args("if 1 {expr 10} else {expr 20}").Rets("10", 0),
		tt.Args("if 0 {expr 10} else {expr 20}").Rets("20", 0),
		tt.Args("if 0 {expr 10}").Rets("", 0),
		tt.Args("set x 3; if {$x > 2} {format a} elseif {$x > 1} {format b} else {format c}").Rets("a", 0),
		tt.Args("set x 2; if {$x > 2} {format a} elseif {$x > 1} {format b} else {format c}").Rets("b", 0),
		tt.Args("set x 0; if {$x > 2} {format a} elseif {$x > 1} {format b} else {format c}").Rets("c", 0),
		tt.Args("if 1 then {expr 1}").Rets("1", 0),
		// Truncated invocations reach the runtime argument check.
		tt.Args("if").Rets(
			`wrong # args: should be "if expr1 body1 ?elseif expr2 body2 ...? ?else bodyN?"`, 1),
		tt.Args("if 0 {set x 1} elseif").Rets(
			`wrong # args: should be "if expr1 body1 ?elseif expr2 body2 ...? ?else bodyN?"`, 1),
		// Expressions reject barewords; branch bodies must quote them.
		tt.Args("if 1 {expr oops}").Rets(
			`syntax error in expression "oops": unexpected bareword "oops"`, 1),

		tt.Args("set i 0; while {$i < 5} {incr i}; set i").Rets("5", 0),
		tt.Args("while 0 {set x 1}").Rets("", 0),
		tt.Args("set i 0; while 1 {incr i; if {$i == 3} break}; set i").Rets("3", 0),

		tt.Args("set s 0; for {set i 1} {$i <= 4} {incr i} {incr s $i}; set s").Rets("10", 0),
		tt.Args("for {} 0 {} {}").Rets("", 0),
		tt.Args(`
			set s 0
			for {set i 0} {$i < 10} {incr i} {
				if {$i == 3} continue
				if {$i > 5} break
				incr s $i
			}
			set s
		`).Rets("12", 0),

		tt.Args("set s {}; foreach x {a b c} {append s $x}; set s").Rets("abc", 0),
		tt.Args(`
			set out {}
			foreach {a b} {1 2 3 4 5} {
				append out "$a-$b "
			}
			string trim $out
		`).Rets("1-2 3-4 5-", 0),
		tt.Args("set s {}; foreach x {1 2} y {a b} {append s $x$y}; set s").Rets("1a2b", 0),
		tt.Args("foreach x {} {set y 1}").Rets("", 0),
	})
}

func TestEvalSwitch(t *testing.T) {
	tt.Test(t, tt.Fn("Eval", run), tt.Table{
		tt.Args("switch b {a {expr 1} b {expr 2} default {expr 3}}").Rets("2", 0),
		tt.Args("switch z {a {expr 1} b {expr 2} default {expr 3}}").Rets("3", 0),
		tt.Args("switch z {a {expr 1} b {expr 2}}").Rets("", 0),
		tt.Args("switch b {a - b {expr 10} default {expr 20}}").Rets("10", 0),
		tt.Args("switch -glob ab {a* {expr 1} default {expr 0}}").Rets("1", 0),
		tt.Args("switch -regexp ab {^a {expr 1} default {expr 0}}").Rets("1", 0),
		tt.Args("switch -nocase B {b {expr 1} default {expr 0}}").Rets("1", 0),
		tt.Args("switch -exact -- -x {-x {expr 1} default {expr 0}}").Rets("1", 0),
		tt.Args("set v b; switch $v {a {expr 1} b {expr 2}}").Rets("2", 0),
		tt.Args("switch x {a -}").Rets(`no body specified for pattern "a"`, 1),
		// The first of two identical patterns wins.
		tt.Args("switch b {b {format 1} b {format 2}}").Rets("1", 0),
		tt.Args("set v b; switch $v {b {format 1} b {format 2} default {format 3}}").Rets("1", 0),
	})
}

func TestEvalCatch(t *testing.T) {
	tt.Test(t, tt.Fn("Eval", run), tt.Table{
		tt.Args("list [catch {error boom} msg] $msg").Rets("1 boom", 0),
		tt.Args("catch {expr {1 + 2}} r; set r").Rets("3", 0),
		tt.Args("list [catch {set x 1}]").Rets("0", 0),
		tt.Args("list [catch {break} m] $m").Rets("3 {}", 0),
		tt.Args("list [catch {continue} m] $m").Rets("4 {}", 0),
		tt.Args("catch {error boom} m o; dict get $o -code").Rets("1", 0),
		tt.Args("catch {set x} m o; dict get $o -errorcode").Rets("NONE", 0),
		tt.Args(`proc f {} {return val}; list [catch {f} m] $m`).Rets("0 val", 0),
		// A catch inside the erroring proc takes precedence.
		tt.Args(`
			proc f {} {
				if {[catch {error inner} m]} {
					return "caught $m"
				}
				return unreached
			}
			f
		`).Rets("caught inner", 0),
		tt.Args("list [catch {error msg info code} m] $m").Rets("1 msg", 0),
		tt.Args("catch {error msg info code} m o; dict get $o -errorcode").Rets("code", 0),
		// Dynamic invocation falls back to the runtime command.
		tt.Args("set c catch; $c {error boom} msg; set msg").Rets("boom", 0),
	})
}

func TestEvalTry(t *testing.T) {
	tt.Test(t, tt.Fn("Eval", run), tt.Table{
		tt.Args(`
			set done 0
			catch {try {error fail} finally {set done 1}} msg
			list $msg $done
		`).Rets("fail 1", 0),
		tt.Args("try {expr 7}").Rets("7", 0),
		tt.Args("try {error boom} on error {m} {set m}").Rets("boom", 0),
		tt.Args("try {error boom} on error {m o} {dict get $o -code}").Rets("1", 0),
		tt.Args("try {break} on break {} {format stopped}").Rets("stopped", 0),
		tt.Args(`
			proc risky {} { error {bad input} {} {APP INPUT} }
			try {risky} trap {APP} {m} {set m}
		`).Rets("bad input", 0),
		tt.Args("set fin {}; list [try {format ok} finally {set fin ran}] $fin").Rets("ok ran", 0),
		tt.Args("try {error a} on break {} {format b} on error {m} {set m}").Rets("a", 0),
		// A fall-through clause selects the next handler's body.
		tt.Args("try {break} on break {} - on continue {} {format caught}").Rets("caught", 0),
		// The finally script runs even when a handler raises, and the
		// handler's error wins.
		tt.Args(`
			set fin 0
			catch {try {error a} on error {} {error b} finally {set fin 1}} m
			list $m $fin
		`).Rets("b 1", 0),
		// An unmatched code re-raises after the finally script.
		tt.Args(`
			set fin 0
			catch {try {error a} on break {} {} finally {set fin 1}} m
			list $m $fin
		`).Rets("a 1", 0),
		// A break escaping a try still terminates the enclosing loop.
		tt.Args("set s {}; foreach x {1 2 3} {append s $x; try {if {$x >= 2} break}}; set s").Rets("12", 0),
	})
}

func TestEvalReturnProtocol(t *testing.T) {
	tt.Test(t, tt.Fn("Eval", run), tt.Table{
		tt.Args("break").Rets(`invoked "break" outside of a loop`, 1),
		tt.Args("continue").Rets(`invoked "continue" outside of a loop`, 1),
		tt.Args(`proc f {} {break}; list [catch {f} m] $m`).Rets(`1 {invoked "break" outside of a loop}`, 0),
		// return -level 2 unwinds through the intermediate proc.
		tt.Args(`
			proc inner {} { return -level 2 far }
			proc outer {} { inner; return near }
			outer
		`).Rets("far", 0),
		// A top-level return resolves at the Eval boundary.
		tt.Args("return xyz").Rets("xyz", 0),
		tt.Args("list [catch {return v} m] $m").Rets("2 v", 0),
	})
}

func TestEvalUpvarGlobalUplevel(t *testing.T) {
	tt.Test(t, tt.Fn("Eval", run), tt.Table{
		tt.Args(`
			proc double {name} { upvar $name x; set x [expr {$x * 2}] }
			set v 7
			double v
			set v
		`).Rets("14", 0),
		tt.Args(`
			set g 1
			proc bump {} { global g; incr g }
			bump; bump
			set g
		`).Rets("3", 0),
		tt.Args(`
			proc setvar {} { uplevel {set u 9} }
			setvar
			set u
		`).Rets("9", 0),
		tt.Args(`
			proc level2 {} { uplevel #0 {set top 1} }
			proc level1 {} { level2 }
			level1
			set top
		`).Rets("1", 0),
	})
}

func TestEvalExpansion(t *testing.T) {
	tt.Test(t, tt.Fn("Eval", run), tt.Table{
		tt.Args("set l {1 2 3}; list a {*}$l b").Rets("a 1 2 3 b", 0),
		tt.Args("set l {}; list {*}$l").Rets("", 0),
		tt.Args("set parts {set q 5}; {*}$parts; set q").Rets("5", 0),
	})
}

func TestEvalLists(t *testing.T) {
	tt.Test(t, tt.Fn("Eval", run), tt.Table{
		tt.Args("llength {a b c}").Rets("3", 0),
		tt.Args("lindex {a b c} 1").Rets("b", 0),
		tt.Args("lindex {a b c} end").Rets("c", 0),
		tt.Args("lindex {a b c} end-1").Rets("b", 0),
		tt.Args("lindex {a {b c} d} 1 0").Rets("b", 0),
		tt.Args("lindex {a b c} 5").Rets("", 0),
		tt.Args("lrange {a b c d} 1 2").Rets("b c", 0),
		tt.Args("lrange {a b c d} 2 end").Rets("c d", 0),
		tt.Args("set l {a b c}; lset l 1 X; set l").Rets("a X c", 0),
		tt.Args("set l {a {b c}}; lset l 1 0 X; set l").Rets("a {X c}", 0),
		tt.Args("lsearch {a b c} b").Rets("1", 0),
		tt.Args("lsearch {a b c} z").Rets("-1", 0),
		tt.Args("lsearch -glob {foo bar baz} b*").Rets("1", 0),
		tt.Args("lsort {b c a}").Rets("a b c", 0),
		tt.Args("lsort -integer {10 2 33}").Rets("2 10 33", 0),
		tt.Args("lsort -decreasing {a c b}").Rets("c b a", 0),
		tt.Args("lsort -unique {b a b}").Rets("a b", 0),
		tt.Args("concat {a b} {} {c}").Rets("a b c", 0),
		tt.Args("join {a b c} -").Rets("a-b-c", 0),
		tt.Args("split a,b,,c ,").Rets("a b {} c", 0),
		tt.Args("split abc {}").Rets("a b c", 0),
	})
}

func TestEvalStrings(t *testing.T) {
	tt.Test(t, tt.Fn("Eval", run), tt.Table{
		tt.Args("string length hello").Rets("5", 0),
		tt.Args("string index hello 1").Rets("e", 0),
		tt.Args("string index hello end").Rets("o", 0),
		tt.Args("string range hello 1 3").Rets("ell", 0),
		tt.Args("string toupper abc").Rets("ABC", 0),
		tt.Args("string tolower ABC").Rets("abc", 0),
		tt.Args("string totitle hELLO").Rets("Hello", 0),
		tt.Args("string trim {  x  }").Rets("x", 0),
		tt.Args("string trimleft xxabc x").Rets("abc", 0),
		tt.Args("string repeat ab 3").Rets("ababab", 0),
		tt.Args("string match a* abc").Rets("1", 0),
		tt.Args("string match -nocase A* abc").Rets("1", 0),
		tt.Args("string match {[a-c]x} bx").Rets("1", 0),
		tt.Args("string equal a a").Rets("1", 0),
		tt.Args("string compare a b").Rets("-1", 0),
		tt.Args("string first ll hello").Rets("2", 0),
		tt.Args("string is integer 12").Rets("1", 0),
		tt.Args("string is integer 1.5").Rets("0", 0),
		tt.Args(`format %05d-%s 42 x`).Rets("00042-x", 0),
		tt.Args(`format %.2f 3.14159`).Rets("3.14", 0),
		tt.Args(`format %x 255`).Rets("ff", 0),
		tt.Args(`format %c 65`).Rets("A", 0),
	})
}

func TestEvalDicts(t *testing.T) {
	tt.Test(t, tt.Fn("Eval", run), tt.Table{
		tt.Args("dict create a 1 b 2").Rets("a 1 b 2", 0),
		tt.Args("dict get {a 1 b 2} b").Rets("2", 0),
		tt.Args("dict get {a {x 1}} a x").Rets("1", 0),
		tt.Args("set d {}; dict set d x y; dict get $d x").Rets("y", 0),
		tt.Args("set d {}; dict set d a b c; dict get $d a b").Rets("c", 0),
		tt.Args("dict exists {a 1} a").Rets("1", 0),
		tt.Args("dict exists {a 1} b").Rets("0", 0),
		tt.Args("dict keys {a 1 b 2}").Rets("a b", 0),
		tt.Args("dict keys {aa 1 ab 2 b 3} a*").Rets("aa ab", 0),
		tt.Args("dict size {a 1 b 2}").Rets("2", 0),
		tt.Args("set d {a 1 b 2}; dict unset d a; set d").Rets("b 2", 0),
		tt.Args("dict get {a 1} z").Rets(`key "z" not known in dictionary`, 1),
	})
}

func TestEvalArrays(t *testing.T) {
	tt.Test(t, tt.Fn("Eval", run), tt.Table{
		tt.Args("array set a {x 1 y 2}; array size a").Rets("2", 0),
		tt.Args("array set a {x 1 y 2}; lsort [array names a]").Rets("x y", 0),
		tt.Args("array set a {x 1 y 2}; set a(x)").Rets("1", 0),
		tt.Args("set a(k) v; array exists a").Rets("1", 0),
		tt.Args("set s 1; array exists s").Rets("0", 0),
		tt.Args("array set a {x 1}; array unset a; array exists a").Rets("0", 0),
		tt.Args("set a(x) 1; unset a(x); info exists a(x)").Rets("0", 0),
	})
}

func TestEvalInfo(t *testing.T) {
	tt.Test(t, tt.Fn("Eval", run), tt.Table{
		tt.Args("info complete {set a 1}").Rets("1", 0),
		tt.Args("info complete {set a [llength}").Rets("0", 0),
		tt.Args("info exists nope").Rets("0", 0),
		tt.Args("set yes 1; info exists yes").Rets("1", 0),
		tt.Args("info level").Rets("0", 0),
		tt.Args("proc f {} {info level}; f").Rets("1", 0),
		tt.Args("proc f {a {b 2} args} {}; info args f").Rets("a b args", 0),
		tt.Args("proc f {} {return x}; info body f").Rets("return x", 0),
		tt.Args("info procs zzz*").Rets("", 0),
	})
}

func TestEvalSubst(t *testing.T) {
	tt.Test(t, tt.Fn("Eval", run), tt.Table{
		tt.Args(`set x 5; subst {x=$x}`).Rets("x=5", 0),
		tt.Args(`subst {a [expr {1 + 1}] b}`).Rets("a 2 b", 0),
		tt.Args(`subst {a\tb}`).Rets("a\tb", 0),
		tt.Args(`set x 5; subst -novariables {$x [expr 1]}`).Rets("$x 1", 0),
		tt.Args(`set x 5; subst -nocommands {$x [expr 1]}`).Rets("5 [expr 1]", 0),
		tt.Args(`subst -nobackslashes {a\tb}`).Rets(`a\tb`, 0),
		tt.Args(`set a(k) 7; subst {v=$a(k)!}`).Rets("v=7!", 0),
		tt.Args(`subst {$}`).Rets("$", 0),
		tt.Args(`subst {$nope}`).Rets(`can't read "nope": no such variable`, 1),
	})
}

func TestEvalExprCmd(t *testing.T) {
	tt.Test(t, tt.Fn("Eval", run), tt.Table{
		tt.Args("expr {3 ** 2}").Rets("9", 0),
		tt.Args("expr 1 + 2").Rets("3", 0),
		tt.Args("set x 4; expr {$x * $x}").Rets("16", 0),
		tt.Args("expr {[llength {a b}] + 1}").Rets("3", 0),
		tt.Args("eval set a 3").Rets("3", 0),
		tt.Args("eval {set a 4; incr a}").Rets("5", 0),
	})
}

func TestEvalPaths(t *testing.T) {
	tt.Test(t, tt.Fn("Eval", run), tt.Table{
		tt.Args("file join /tmp foo bar").Rets("/tmp/foo/bar", 0),
		tt.Args("file dirname [file join /tmp foo]").Rets("/tmp", 0),
		tt.Args("file dirname [file join /tmp foo bar]").Rets("/tmp/foo", 0),
		tt.Args("file tail [file join /tmp foo bar]").Rets("bar", 0),
		tt.Args("file join a /b c").Rets("/b/c", 0),
		tt.Args("file split /tmp/foo").Rets("/ tmp foo", 0),
		tt.Args("file extension a/b.txt").Rets(".txt", 0),
		tt.Args("file rootname a/b.txt").Rets("a/b", 0),
		tt.Args("file pathtype /x").Rets("absolute", 0),
		tt.Args("file pathtype x/y").Rets("relative", 0),
		tt.Args("file separator").Rets("/", 0),
	})
}

func TestEvalEncoding(t *testing.T) {
	tt.Test(t, tt.Fn("Eval", run), tt.Table{
		tt.Args("encoding system").Rets("utf-8", 0),
		tt.Args("encoding convertto iso8859-1 héllo").Rets("h\xe9llo", 0),
		tt.Args("encoding convertfrom iso8859-1 h\xe9llo").Rets("héllo", 0),
		tt.Args("encoding convertto héllo").Rets("héllo", 0),
		tt.Args("encoding convertto no-such x").Rets(`unknown encoding "no-such"`, 1),
		tt.Args("expr {[lsearch [encoding names] utf-8] >= 0}").Rets("1", 0),
	})
}

// TestEvalDeepRecursion exercises the trampoline: the call depth is far
// beyond what host-stack recursion per script call could survive.
func TestEvalDeepRecursion(t *testing.T) {
	in := NewInterp()
	res, code := in.Eval(`
		proc count {n} {
			if {$n == 0} { return done }
			count [expr {$n - 1}]
		}
		count 20000
	`)
	if code != CodeOK || res != "done" {
		t.Errorf("deep recursion: got (%q, %v), want (%q, ok)", res, code, "done")
	}
}

func TestEvalErrorInfo(t *testing.T) {
	in := NewInterp()
	_, code := in.Eval(`
		proc f {} { error boom }
		f
	`)
	if code != CodeError {
		t.Fatalf("got code %v, want error", code)
	}
	if !strings.Contains(in.errorInfo, "while executing") {
		t.Errorf("errorinfo missing trace:\n%s", in.errorInfo)
	}
	if !strings.Contains(in.errorInfo, "boom") {
		t.Errorf("errorinfo missing message:\n%s", in.errorInfo)
	}
}

func TestEvalErrorInfoProcLine(t *testing.T) {
	in := NewInterp()
	_, code := in.Eval(`
		proc f {} {
			set a 1
			error boom
		}
		f
	`)
	if code != CodeError {
		t.Fatalf("got code %v, want error", code)
	}
	// The frame fragment carries the line of the failing command within the
	// procedure body, not the body's first line.
	if !strings.Contains(in.errorInfo, `(procedure "f" line 3)`) {
		t.Errorf("errorinfo missing frame line:\n%s", in.errorInfo)
	}
}

func TestEvalFileStat(t *testing.T) {
	testutil.InTempDir(t)
	must.OK(os.WriteFile("f", []byte("data"), 0o600))
	in := NewInterp()

	res, code := in.Eval("file atime f")
	if code != CodeOK {
		t.Fatalf("file atime: %s", res)
	}
	if n, err := strconv.ParseInt(res, 10, 64); err != nil || n <= 0 {
		t.Errorf("file atime = %q, want a positive timestamp", res)
	}

	res, code = in.Eval("file stat f s; list $s(size) $s(uid) $s(gid)")
	if code != CodeOK {
		t.Fatalf("file stat: %s", res)
	}
	want := fmt.Sprintf("4 %d %d", os.Getuid(), os.Getgid())
	if res != want {
		t.Errorf("stat fields = %q, want %q", res, want)
	}
}

func TestEvalResourceLimit(t *testing.T) {
	in := NewInterp()
	calls := 0
	in.Limit = func() error {
		calls++
		if calls > 100 {
			return errLimit
		}
		return nil
	}
	_, code := in.Eval(`while 1 { catch { set x 1 } }`)
	if code != CodeError {
		t.Errorf("got code %v, want error after limit", code)
	}
}

type limitError struct{}

func (limitError) Error() string { return "resource limit exceeded" }

var errLimit = limitError{}
