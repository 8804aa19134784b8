// Package diag contains building blocks for diagnostics: byte ranges into
// source code, source contexts, and errors that carry both.
package diag

import "fmt"

// Error represents an error with a source context.
type Error struct {
	Type    string
	Message string
	Context Context
}

// Error returns a plain text representation of the error.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %d-%d in %s: %s",
		e.Type, e.Context.From, e.Context.To, e.Context.Name, e.Message)
}

// Range returns the range of the error.
func (e *Error) Range() Ranging {
	return e.Context.Range()
}

// Show renders the error with its source context.
func (e *Error) Show(indent string) string {
	return e.Type + ": " + e.Message + "\n" + indent + "  " + e.Context.Show(indent+"  ")
}
