package parse

import "github.com/gotcl/gotcl/pkg/diag"

// TokenKind classifies a token.
type TokenKind int

// Possible values for TokenKind.
const (
	// BadToken is the zero value and never appears in a valid parse.
	BadToken TokenKind = iota
	// SimpleWord is a word consisting of a single literal Text component.
	SimpleWord
	// Word is a composed word; its components follow.
	Word
	// ExpandWord is a word with the {*} prefix whose expansion must happen at
	// evaluation time.
	ExpandWord
	// Text is a literal range of source.
	Text
	// Backslash is a backslash escape, including line continuations.
	Backslash
	// Command is a nested script substitution, [script] inclusive of the
	// brackets.
	Command
	// Variable is a scalar or array variable reference; its components are
	// the name and, for array references, the index tokens.
	Variable
)

var tokenKindNames = [...]string{
	"BadToken", "SimpleWord", "Word", "ExpandWord", "Text", "Backslash",
	"Command", "Variable",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "TokenKind(?)"
}

// Token is a tagged span into source text. Components is the number of
// dependent sub-tokens that follow this token in the flat token array; a
// traversal skips a subtree by advancing 1+Components tokens.
type Token struct {
	Kind TokenKind
	diag.Ranging
	Components int
}

// Text returns the source text the token covers.
func (t Token) Text(src string) string { return src[t.From:t.To] }

// ErrKind classifies parse errors.
type ErrKind int

// Possible values for ErrKind.
const (
	OK ErrKind = iota
	MissingBrace
	MissingBracket
	MissingQuote
	MissingParen
	MissingVarBrace
	QuoteExtra
	BraceExtra
	ExprSyntax
	BadNumber
)

var errKindMessages = [...]string{
	"",
	"missing close-brace",
	"missing close-bracket",
	"missing \"",
	"missing )",
	"missing close-brace for variable name",
	"extra characters after close-quote",
	"extra characters after close-brace",
	"syntax error in expression",
	"malformed number in expression",
}

func (k ErrKind) String() string {
	if int(k) < len(errKindMessages) {
		return errKindMessages[k]
	}
	return "parse error"
}
