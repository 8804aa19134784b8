package vals

// ParseBackslash decodes a backslash escape at the start of s, which must
// begin with a backslash. It returns the decoded codepoint and the number of
// bytes consumed. The rules are shared between the script parser and the
// list syntax:
//
//	\a \b \f \n \r \t \v   the usual control characters
//	\xHH                   up to two hex digits
//	\uHHHH                 up to four hex digits
//	\ooo                   one to three octal digits
//	\<newline><spaces>     a single space (line continuation)
//	\<any>                 the character itself
//
// A lone trailing backslash decodes to itself.
func ParseBackslash(s string) (rune, int) {
	if len(s) < 2 {
		return '\\', len(s)
	}
	switch c := s[1]; c {
	case 'a':
		return '\a', 2
	case 'b':
		return '\b', 2
	case 'f':
		return '\f', 2
	case 'n':
		return '\n', 2
	case 'r':
		return '\r', 2
	case 't':
		return '\t', 2
	case 'v':
		return '\v', 2
	case 'x':
		r, n := scanHex(s[2:], 2)
		if n == 0 {
			return 'x', 2
		}
		return r, 2 + n
	case 'u':
		r, n := scanHex(s[2:], 4)
		if n == 0 {
			return 'u', 2
		}
		return r, 2 + n
	case '\n':
		return ' ', 2 + skipInlineSpace(s[2:])
	case '\r':
		n := 2
		if len(s) > 2 && s[2] == '\n' {
			n = 3
		}
		return ' ', n + skipInlineSpace(s[n:])
	case '0', '1', '2', '3', '4', '5', '6', '7':
		var r rune
		n := 1
		for n < len(s) && n < 4 && s[n] >= '0' && s[n] <= '7' {
			r = r*8 + rune(s[n]-'0')
			n++
		}
		return r, n
	default:
		// The escaped character may be multi-byte.
		for _, r := range s[1:] {
			return r, 1 + len(string(r))
		}
		return '\\', 1
	}
}

// IsBackslashNewline reports whether s starts with a line continuation.
func IsBackslashNewline(s string) bool {
	return len(s) >= 2 && s[0] == '\\' &&
		(s[1] == '\n' || (s[1] == '\r' && len(s) >= 3 && s[2] == '\n'))
}

func scanHex(s string, max int) (rune, int) {
	var r rune
	n := 0
	for n < len(s) && n < max {
		d, ok := hexDigit(s[n])
		if !ok {
			break
		}
		r = r*16 + d
		n++
	}
	return r, n
}

func hexDigit(c byte) (rune, bool) {
	switch {
	case '0' <= c && c <= '9':
		return rune(c - '0'), true
	case 'a' <= c && c <= 'f':
		return rune(c-'a') + 10, true
	case 'A' <= c && c <= 'F':
		return rune(c-'A') + 10, true
	default:
		return 0, false
	}
}

func skipInlineSpace(s string) int {
	n := 0
	for n < len(s) && (s[n] == ' ' || s[n] == '\t') {
		n++
	}
	return n
}
