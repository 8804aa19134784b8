package parse

import "github.com/gotcl/gotcl/pkg/diag"

// Source describes a piece of source code.
type Source struct {
	Name string
	Code string
}

// Script is the result of parsing a whole source: one Result per command,
// in order. Parsing stops at the first command with a parse error.
type Script struct {
	Source
	Commands   []*Result
	Incomplete bool
	ErrKind    ErrKind
	ErrRange   diag.Ranging
}

// Err returns the script's parse error as a *diag.Error, or nil.
func (s *Script) Err() error {
	if s.ErrKind == OK {
		return nil
	}
	return &diag.Error{
		Type:    "parse error",
		Message: s.ErrKind.String(),
		Context: *diag.NewContext(s.Name, s.Code, s.ErrRange),
	}
}

// ParseScript parses src as a sequence of commands separated by newlines or
// semicolons.
func ParseScript(src Source) *Script {
	sc := &Script{Source: src}
	ofs := 0
	for {
		r := ParseCommand(src.Name, src.Code, ofs, false)
		if r.Words > 0 || r.ErrKind != OK {
			sc.Commands = append(sc.Commands, r)
		}
		if r.ErrKind != OK {
			sc.ErrKind, sc.ErrRange, sc.Incomplete = r.ErrKind, r.ErrRange, r.Incomplete
			return sc
		}
		if r.TermChar == 0 {
			return sc
		}
		ofs = r.Term + 1
	}
}

// IsComplete reports whether src does not end in the middle of an open
// brace, bracket or quote. Scripts with other parse errors are complete.
func IsComplete(src string) bool {
	sc := ParseScript(Source{Name: "[complete check]", Code: src})
	return !sc.Incomplete
}

// WordIdx returns the index in r.Tokens of the i-th top-level word token.
func (r *Result) WordIdx(i int) int {
	idx := 0
	for w := 0; w < i; w++ {
		idx += 1 + r.Tokens[idx].Components
	}
	return idx
}

// EachWord calls f with the token index of each top-level word.
func (r *Result) EachWord(f func(idx int)) {
	idx := 0
	for w := 0; w < r.Words; w++ {
		f(idx)
		idx += 1 + r.Tokens[idx].Components
	}
}

// SimpleText returns the literal text of the word token at idx, if the word
// is simple.
func (r *Result) SimpleText(idx int) (string, bool) {
	if r.Tokens[idx].Kind != SimpleWord {
		return "", false
	}
	t := r.Tokens[idx+1]
	return r.Src[t.From:t.To], true
}
