package parse

import (
	"strings"
	"testing"

	"github.com/gotcl/gotcl/pkg/tt"
)

// tokens renders the token array of the first command of src in a compact
// form: one "Kind(text)" per token, components indented by nothing but
// following their word per the flat layout.
func tokens(src string) string {
	r := ParseCommand("[test]", src, 0, false)
	if r.ErrKind != OK {
		return "error: " + r.ErrKind.String()
	}
	parts := make([]string, len(r.Tokens))
	for i, t := range r.Tokens {
		parts[i] = t.Kind.String() + "(" + t.Text(src) + ")"
	}
	return strings.Join(parts, " ")
}

func TestParseCommandTokens(t *testing.T) {
	tt.Test(t, tt.Fn("tokens", tokens), tt.Table{
		tt.Args("set x 5").Rets(
			"SimpleWord(set) Text(set) SimpleWord(x) Text(x) SimpleWord(5) Text(5)"),
		tt.Args("set {a b} 5").Rets(
			"SimpleWord(set) Text(set) SimpleWord({a b}) Text(a b) SimpleWord(5) Text(5)"),
		tt.Args(`puts "hi there"`).Rets(
			`SimpleWord(puts) Text(puts) SimpleWord("hi there") Text(hi there)`),
		tt.Args(`puts a$x`).Rets(
			"SimpleWord(puts) Text(puts) Word(a$x) Text(a) Variable($x) Text(x)"),
		tt.Args(`puts ${a b}`).Rets(
			"SimpleWord(puts) Text(puts) Word(${a b}) Variable(${a b}) Text(a b)"),
		tt.Args(`puts $a(i$j)`).Rets(
			"SimpleWord(puts) Text(puts) Word($a(i$j)) Variable($a(i$j)) Text(a) Text(i) Variable($j) Text(j)"),
		tt.Args(`puts [x 1]`).Rets(
			"SimpleWord(puts) Text(puts) Word([x 1]) Command([x 1])"),
		tt.Args(`puts a\tb`).Rets(
			`SimpleWord(puts) Text(puts) Word(a\tb) Text(a) Backslash(\t) Text(b)`),
		// A lone $ is a literal, so the word stays simple.
		tt.Args(`puts $`).Rets(
			"SimpleWord(puts) Text(puts) SimpleWord($) Text($)"),
		tt.Args("x {}").Rets(
			"SimpleWord(x) Text(x) SimpleWord({}) Text()"),
		tt.Args(`{*}{a b c}`).Rets(
			"SimpleWord(a) Text(a) SimpleWord(b) Text(b) SimpleWord(c) Text(c)"),
		tt.Args(`{*}$x`).Rets(
			"ExpandWord({*}$x) Variable($x) Text(x)"),
		tt.Args(`{*}{a {b c}}`).Rets(
			"ExpandWord({*}{a {b c}}) Text(a {b c})"),
	})
}

func TestParseErrors(t *testing.T) {
	tt.Test(t, tt.Fn("tokens", tokens), tt.Table{
		tt.Args("puts {a").Rets("error: missing close-brace"),
		tt.Args(`puts "a`).Rets(`error: missing "`),
		tt.Args("puts [a").Rets("error: missing close-bracket"),
		tt.Args("puts $a(").Rets("error: missing )"),
		tt.Args("puts ${a").Rets("error: missing close-brace for variable name"),
		tt.Args(`puts "a"b`).Rets("error: extra characters after close-quote"),
		tt.Args("puts {a}b").Rets("error: extra characters after close-brace"),
	})
}

func TestIncomplete(t *testing.T) {
	tt.Test(t, tt.Fn("IsComplete", IsComplete), tt.Table{
		tt.Args("set x 5").Rets(true),
		tt.Args("set x {").Rets(false),
		tt.Args("set x [foo").Rets(false),
		tt.Args(`set x "abc`).Rets(false),
		tt.Args("if {1} {\n").Rets(false),
		tt.Args("set x {}").Rets(true),
		// A non-incompleteness parse error is still complete.
		tt.Args(`set x "a"b`).Rets(true),
	})
}

func TestParseScript(t *testing.T) {
	sc := ParseScript(Source{Name: "t", Code: "set x 5; incr x\nset y $x\n"})
	if sc.ErrKind != OK {
		t.Fatalf("ParseScript error: %v", sc.ErrKind)
	}
	if len(sc.Commands) != 3 {
		t.Fatalf("got %d commands, want 3", len(sc.Commands))
	}
	if w := sc.Commands[1].Words; w != 2 {
		t.Errorf("second command has %d words, want 2", w)
	}
}

func TestEmptyScript(t *testing.T) {
	for _, code := range []string{"", "   ", "\n\n", "# just a comment\n", ";;"} {
		sc := ParseScript(Source{Name: "t", Code: code})
		if sc.ErrKind != OK || len(sc.Commands) != 0 {
			t.Errorf("ParseScript(%q) -> %d commands, err %v; want none",
				code, len(sc.Commands), sc.ErrKind)
		}
	}
}

func TestComment(t *testing.T) {
	r := ParseCommand("t", "# leading\nset x 5", 0, false)
	if got := r.Src[r.Comment.From:r.Comment.To]; got != "# leading" {
		t.Errorf("comment span %q, want %q", got, "# leading")
	}
	if r.Words != 3 {
		t.Errorf("got %d words, want 3", r.Words)
	}
}

func TestWordLines(t *testing.T) {
	r := ParseCommand("t", "set \\\n  x \\\n  5", 0, false)
	if r.ErrKind != OK {
		t.Fatalf("parse error: %v", r.ErrKind)
	}
	if len(r.WordLines) != 3 {
		t.Fatalf("got %d word lines, want 3", len(r.WordLines))
	}
	want := []int{1, 2, 3}
	for i, line := range r.WordLines {
		if line != want[i] {
			t.Errorf("word %d on line %d, want %d", i, line, want[i])
		}
	}
}

func TestContinuationOffsets(t *testing.T) {
	src := "puts \"a\\\nb\""
	r := ParseCommand("t", src, 0, false)
	if r.ErrKind != OK {
		t.Fatalf("parse error: %v", r.ErrKind)
	}
	if len(r.Continuations) != 2 || len(r.Continuations[1]) != 1 {
		t.Fatalf("continuations = %v, want one in second word", r.Continuations)
	}
	if off := r.Continuations[1][0]; src[off] != '\\' {
		t.Errorf("continuation offset %d points at %q", off, src[off])
	}
}

func TestNestedCommandTerminators(t *testing.T) {
	// Semicolons and newlines inside brackets do not terminate the outer
	// command.
	r := ParseCommand("t", "set x [a; b\nc]", 0, false)
	if r.ErrKind != OK {
		t.Fatalf("parse error: %v", r.ErrKind)
	}
	if r.Words != 3 {
		t.Errorf("got %d words, want 3", r.Words)
	}
}

func TestNoTokensPastFailure(t *testing.T) {
	r := ParseCommand("t", "set x {oops", 0, false)
	if r.ErrKind != MissingBrace {
		t.Fatalf("ErrKind = %v, want MissingBrace", r.ErrKind)
	}
	if r.Words != 2 {
		t.Errorf("got %d words, want the 2 before the failure", r.Words)
	}
	for _, tok := range r.Tokens {
		if tok.From >= 6 {
			t.Errorf("token %v past the point of failure", tok)
		}
	}
}

func TestWordIdxTraversal(t *testing.T) {
	r := ParseCommand("t", "a b$c d", 0, false)
	if idx := r.WordIdx(2); r.Tokens[idx].Text(r.Src) != "d" {
		t.Errorf("WordIdx(2) -> token %q, want d", r.Tokens[idx].Text(r.Src))
	}
}
