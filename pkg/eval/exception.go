package eval

import "strconv"

// Code is a completion code. Codes other than CodeOK and CodeError unwind
// until an exception range, a catch, or a call-frame return absorbs them;
// user-defined codes are integers >= 5.
type Code int

// The standard completion codes.
const (
	CodeOK Code = iota
	CodeError
	CodeReturn
	CodeBreak
	CodeContinue
)

// codePending is returned by a task that has suspended itself and scheduled
// further tasks; it never escapes the trampoline.
const codePending Code = -1

var codeNames = [...]string{"ok", "error", "return", "break", "continue"}

func (c Code) String() string {
	if c >= 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}
	return strconv.Itoa(int(c))
}

// ParseCode interprets a -code argument: a standard code name or an integer.
func ParseCode(s string) (Code, bool) {
	for i, name := range codeNames {
		if s == name {
			return Code(i), true
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Code(n), true
	}
	return 0, false
}
