package tt

import (
	"fmt"
	"strings"
	"testing"
)

// testT records calls to its Errorf method.
type testT []string

func (t *testT) Helper() {}

func (t *testT) Errorf(format string, args ...any) {
	*t = append(*t, fmt.Sprintf(format, args...))
}

func add(x, y int) int { return x + y }

func TestPass(t *testing.T) {
	var mockT testT
	Test(&mockT, Fn("add", add), Table{
		Args(1, 2).Rets(3),
		Args(-1, 1).Rets(0),
	})
	if len(mockT) != 0 {
		t.Errorf("Test errors out for passing tests: %v", mockT)
	}
}

func TestFail(t *testing.T) {
	var mockT testT
	Test(&mockT, Fn("add", add), Table{
		Args(1, 2).Rets(4),
	})
	if len(mockT) != 1 {
		t.Fatalf("Test should report 1 error, got %d", len(mockT))
	}
	if !strings.Contains(mockT[0], "add(1, 2) -> 3, want 4") {
		t.Errorf("Test error message %q not as expected", mockT[0])
	}
}

func TestAnyMatcher(t *testing.T) {
	var mockT testT
	Test(&mockT, Fn("add", add), Table{
		Args(1, 2).Rets(Any),
	})
	if len(mockT) != 0 {
		t.Errorf("Any matcher does not match: %v", mockT)
	}
}
