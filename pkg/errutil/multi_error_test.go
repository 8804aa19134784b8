package errutil

import (
	"errors"
	"testing"
)

var (
	err1 = errors.New("error 1")
	err2 = errors.New("error 2")
)

func TestMulti(t *testing.T) {
	if err := Multi(); err != nil {
		t.Errorf("Multi() -> %v, want nil", err)
	}
	if err := Multi(nil, nil); err != nil {
		t.Errorf("Multi(nil, nil) -> %v, want nil", err)
	}
	if err := Multi(nil, err1); err != err1 {
		t.Errorf("Multi(nil, err1) -> %v, want err1", err)
	}
	want := "multiple errors: error 1; error 2"
	if err := Multi(err1, err2); err.Error() != want {
		t.Errorf("Multi(err1, err2) -> %q, want %q", err.Error(), want)
	}
	// Nested multi errors flatten.
	if got := Multi(Multi(err1, err2), err1).Error(); got != want+"; error 1" {
		t.Errorf("nested Multi -> %q", got)
	}
}
