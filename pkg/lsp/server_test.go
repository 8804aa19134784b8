package lsp

import (
	"testing"

	lsp "github.com/sourcegraph/go-lsp"
)

func TestDiagnostics(t *testing.T) {
	if ds := diagnostics("file:///a", "set x 1\n"); len(ds) != 0 {
		t.Errorf("diagnostics on good code -> %v, want none", ds)
	}

	ds := diagnostics("file:///a", "set x {\n")
	if len(ds) != 1 {
		t.Fatalf("diagnostics on bad code -> %v, want one", ds)
	}
	if ds[0].Severity != lsp.Error || ds[0].Source != "parse" {
		t.Errorf("diagnostic = %+v, want parse error severity", ds[0])
	}
}

func TestWordStart(t *testing.T) {
	tests := []struct {
		s    string
		dot  int
		want int
	}{
		{"set", 3, 0},
		{"set x", 5, 4},
		{"if {a} [cm", 10, 8},
		{"", 0, 0},
	}
	for _, test := range tests {
		if got := wordStart(test.s, test.dot); got != test.want {
			t.Errorf("wordStart(%q, %d) = %d, want %d", test.s, test.dot, got, test.want)
		}
	}
}

func TestPositionConversion(t *testing.T) {
	s := "ab\ncde\nf"
	for _, test := range []struct {
		idx int
		pos lsp.Position
	}{
		{0, lsp.Position{Line: 0, Character: 0}},
		{2, lsp.Position{Line: 0, Character: 2}},
		{3, lsp.Position{Line: 1, Character: 0}},
		{6, lsp.Position{Line: 1, Character: 3}},
		{7, lsp.Position{Line: 2, Character: 0}},
		{8, lsp.Position{Line: 2, Character: 1}},
	} {
		if got := lspPositionFromIdx(s, test.idx); got != test.pos {
			t.Errorf("lspPositionFromIdx(%d) = %v, want %v", test.idx, got, test.pos)
		}
		if got := lspPositionToIdx(s, test.pos); got != test.idx {
			t.Errorf("lspPositionToIdx(%v) = %v, want %v", test.pos, got, test.idx)
		}
	}
}
