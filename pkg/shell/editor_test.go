package shell

import (
	"testing"

	"github.com/gotcl/gotcl/pkg/store"
)

func TestHistory_Persistence(t *testing.T) {
	st := store.MustTempStore(t)

	h := newHistory(st)
	if h.Len() != 0 {
		t.Errorf("fresh history has %d lines, want 0", h.Len())
	}
	h.Write("set x 1")
	h.Write("set x 1") // consecutive duplicate, not recorded
	h.Write("incr x")
	if h.Len() != 2 {
		t.Errorf("history has %d lines, want 2", h.Len())
	}

	// A new history over the same store sees the persisted lines.
	h2 := newHistory(st)
	if h2.Len() != 2 {
		t.Fatalf("reloaded history has %d lines, want 2", h2.Len())
	}
	if line, err := h2.GetLine(1); line != "incr x" || err != nil {
		t.Errorf("GetLine(1) -> (%q, %v), want (%q, nil)", line, err, "incr x")
	}
	if _, err := h2.GetLine(5); err == nil {
		t.Errorf("GetLine(5) succeeded, want error")
	}
}

func TestHistory_NoStore(t *testing.T) {
	h := newHistory(nil)
	h.Write("puts hi")
	if h.Len() != 1 {
		t.Errorf("history has %d lines, want 1", h.Len())
	}
}
