package store

import (
	"testing"
)

var cmds = []string{"echo foo", "put bar", "echo foobar", "put lorem"}

func TestCmdHistory(t *testing.T) {
	s := MustTempStore(t)

	startSeq, err := s.NextCmdSeq()
	if err != nil || startSeq != 1 {
		t.Errorf("NextCmdSeq -> (%v, %v), want (1, nil)", startSeq, err)
	}
	for i, cmd := range cmds {
		seq, err := s.AddCmd(cmd)
		if err != nil || seq != i+1 {
			t.Errorf("AddCmd(%q) -> (%v, %v), want (%v, nil)", cmd, seq, err, i+1)
		}
	}

	if cmd, err := s.Cmd(2); cmd != "put bar" || err != nil {
		t.Errorf("Cmd(2) -> (%q, %v), want (%q, nil)", cmd, err, "put bar")
	}
	if _, err := s.Cmd(100); err != ErrNoMatchingCmd {
		t.Errorf("Cmd(100) -> error %v, want ErrNoMatchingCmd", err)
	}

	got, err := s.CmdsWithSeq(2, 4)
	want := []Cmd{{"put bar", 2}, {"echo foobar", 3}}
	if err != nil || len(got) != len(want) {
		t.Fatalf("CmdsWithSeq(2, 4) -> (%v, %v), want (%v, nil)", got, err, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("CmdsWithSeq(2, 4)[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if cmd, err := s.NextCmd(2, "echo"); err != nil || cmd != (Cmd{"echo foobar", 3}) {
		t.Errorf("NextCmd(2, echo) -> (%v, %v)", cmd, err)
	}
	if cmd, err := s.PrevCmd(4, "echo"); err != nil || cmd != (Cmd{"echo foobar", 3}) {
		t.Errorf("PrevCmd(4, echo) -> (%v, %v)", cmd, err)
	}
	if cmd, err := s.PrevCmd(100, "put"); err != nil || cmd != (Cmd{"put lorem", 4}) {
		t.Errorf("PrevCmd(100, put) -> (%v, %v)", cmd, err)
	}
	if _, err := s.NextCmd(1, "nope"); err != ErrNoMatchingCmd {
		t.Errorf("NextCmd(1, nope) -> error %v, want ErrNoMatchingCmd", err)
	}

	if err := s.DelCmd(3); err != nil {
		t.Errorf("DelCmd(3) -> %v, want nil", err)
	}
	if _, err := s.Cmd(3); err != ErrNoMatchingCmd {
		t.Errorf("Cmd(3) after DelCmd -> error %v, want ErrNoMatchingCmd", err)
	}
}
