package vals

import (
	"testing"

	"github.com/gotcl/gotcl/pkg/tt"
)

func TestSplitList(t *testing.T) {
	tt.Test(t, tt.Fn("SplitList", func(s string) ([]string, bool) {
		elems, err := SplitList(s)
		return elems, err == nil
	}), tt.Table{
		tt.Args("").Rets([]string{}, true),
		tt.Args("a b c").Rets([]string{"a", "b", "c"}, true),
		tt.Args("  a\tb\nc  ").Rets([]string{"a", "b", "c"}, true),
		tt.Args("a {b c} d").Rets([]string{"a", "b c", "d"}, true),
		tt.Args("{a {b c}}").Rets([]string{"a {b c}"}, true),
		tt.Args(`a "b c" d`).Rets([]string{"a", "b c", "d"}, true),
		tt.Args(`a\ b c`).Rets([]string{"a b", "c"}, true),
		tt.Args(`\n`).Rets([]string{"\n"}, true),
		tt.Args("{}").Rets([]string{""}, true),
		tt.Args("{unclosed").Rets(tt.Any, false),
		tt.Args(`"unclosed`).Rets(tt.Any, false),
		tt.Args("{a}b").Rets(tt.Any, false),
	})
}

func TestJoinListRoundTrip(t *testing.T) {
	tests := [][]string{
		{},
		{"a", "b"},
		{"a b", "c"},
		{""},
		{"{", "}"},
		{`back\slash`},
		{"#comment", "a;b", `$x`, `[cmd]`, `"q"`},
		{"nested {brace} pair"},
	}
	for _, elems := range tests {
		joined := JoinList(elems)
		split, err := SplitList(joined)
		if err != nil {
			t.Errorf("SplitList(JoinList(%q) = %q) -> error %v", elems, joined, err)
			continue
		}
		if len(split) != len(elems) {
			t.Errorf("round trip of %q via %q -> %q", elems, joined, split)
			continue
		}
		for i := range elems {
			if split[i] != elems[i] {
				t.Errorf("round trip of %q via %q -> %q", elems, joined, split)
				break
			}
		}
	}
}

func TestQuoteElement(t *testing.T) {
	tt.Test(t, tt.Fn("QuoteElement", QuoteElement), tt.Table{
		tt.Args("abc").Rets("abc"),
		tt.Args("").Rets("{}"),
		tt.Args("a b").Rets("{a b}"),
		tt.Args("{").Rets(`\{`),
	})
}

func TestListKind(t *testing.T) {
	v := NewString("1 {2 3} 4")
	elems, err := ListElems(v)
	if err != nil {
		t.Fatalf("ListElems: %v", err)
	}
	if len(elems) != 3 || elems[1].String() != "2 3" {
		t.Errorf("ListElems -> %d elems, second %q", len(elems), elems[1].String())
	}
	// Regeneration from the rep is canonical.
	lv := NewList(NewString("a b"), NewString(""))
	if got := lv.String(); got != "{a b} {}" {
		t.Errorf("list string -> %q, want {a b} {}", got)
	}
}

func TestParseBackslash(t *testing.T) {
	tt.Test(t, tt.Fn("ParseBackslash", func(s string) (rune, int) {
		return ParseBackslash(s)
	}), tt.Table{
		tt.Args(`\n`).Rets('\n', 2),
		tt.Args(`\t`).Rets('\t', 2),
		tt.Args(`\x41`).Rets('A', 4),
		tt.Args(`\x4g`).Rets(rune(4), 3),
		tt.Args(`\é`).Rets('é', 3),
		tt.Args(`\101`).Rets('A', 4),
		tt.Args(`\7`).Rets(rune(7), 2),
		tt.Args(`\z`).Rets('z', 2),
		tt.Args("\\\n   x").Rets(' ', 5),
		tt.Args(`\`).Rets('\\', 1),
	})
}
