package diag

import (
	"strings"
	"testing"
)

func TestContextShow(t *testing.T) {
	tests := []struct {
		name    string
		context *Context
		want    string
	}{
		{
			"single line culprit",
			NewContext("[test]", "echo bad", Ranging{5, 8}),
			"[test], line 1: echo bad",
		},
		{
			"multi line culprit",
			NewContext("[test]", "echo bad1\necho bad2\n", Ranging{5, 19}),
			"[test], line 1-2: echo bad1\n  echo bad2",
		},
		{
			"empty culprit",
			NewContext("[test]", "echo x", Ranging{5, 5}),
			"[test], line 1: echo ^x",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := test.context.Show("  ")
			if got != test.want {
				t.Errorf("Show -> %q, want %q", got, test.want)
			}
		})
	}
}

func TestContextShowBadPosition(t *testing.T) {
	c := NewContext("[test]", "echo", Ranging{-1, -1})
	if got := c.Show(""); !strings.Contains(got, "unknown position") {
		t.Errorf("Show -> %q, want unknown position message", got)
	}
	c = NewContext("[test]", "echo", Ranging{3, 100})
	if got := c.Show(""); !strings.Contains(got, "invalid position") {
		t.Errorf("Show -> %q, want invalid position message", got)
	}
}

func TestErrorShow(t *testing.T) {
	e := &Error{
		Type:    "parse error",
		Message: "missing close brace",
		Context: *NewContext("t.tcl", "proc f {", Ranging{7, 8}),
	}
	if got := e.Error(); !strings.Contains(got, "missing close brace") {
		t.Errorf("Error -> %q, want message included", got)
	}
	if got := e.Show(""); !strings.HasPrefix(got, "parse error: missing close brace\n") {
		t.Errorf("Show -> %q, want header line", got)
	}
}
