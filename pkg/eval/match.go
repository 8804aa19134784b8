package eval

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// globMatch implements the glob-style matching of [string match] and
// [switch -glob]: * matches any sequence, ? any single character, [...] a
// character set with ranges, and backslash escapes the next character.
func globMatch(pattern, s string, nocase bool) bool {
	if nocase {
		pattern = strings.ToLower(pattern)
		s = strings.ToLower(s)
	}
	return globMatchFold(pattern, s)
}

func globMatchFold(pattern, s string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			pattern = strings.TrimLeft(pattern, "*")
			if pattern == "" {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if globMatchFold(pattern, s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if s == "" {
				return false
			}
			_, n := utf8.DecodeRuneInString(s)
			pattern, s = pattern[1:], s[n:]
		case '[':
			if s == "" {
				return false
			}
			r, n := utf8.DecodeRuneInString(s)
			rest, ok := matchSet(pattern[1:], r)
			if !ok {
				return false
			}
			pattern, s = rest, s[n:]
		case '\\':
			if len(pattern) == 1 {
				return s == "\\"
			}
			if s == "" || s[0] != pattern[1] {
				return false
			}
			pattern, s = pattern[2:], s[1:]
		default:
			if s == "" {
				return false
			}
			pr, pn := utf8.DecodeRuneInString(pattern)
			sr, sn := utf8.DecodeRuneInString(s)
			if pr != sr {
				return false
			}
			pattern, s = pattern[pn:], s[sn:]
		}
	}
	return s == ""
}

// matchSet matches r against a [...] set, returning the rest of the pattern
// past the closing bracket.
func matchSet(pattern string, r rune) (rest string, ok bool) {
	matched := false
	first := true
	for {
		if pattern == "" {
			return "", false
		}
		if pattern[0] == ']' && !first {
			return pattern[1:], matched
		}
		first = false
		lo, n := utf8.DecodeRuneInString(pattern)
		pattern = pattern[n:]
		hi := lo
		if len(pattern) >= 2 && pattern[0] == '-' && pattern[1] != ']' {
			hi, n = utf8.DecodeRuneInString(pattern[1:])
			pattern = pattern[1+n:]
		}
		if lo <= r && r <= hi {
			matched = true
		}
	}
}

// reMatch applies a regular expression, optionally case-insensitively.
func reMatch(pattern, s string, nocase bool) (bool, error) {
	if nocase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(s), nil
}

// totitle capitalizes the first character and lowercases the rest.
func totitle(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[n:])
}
