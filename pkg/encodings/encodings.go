// Package encodings maps encoding names to character encodings, backed by
// the IANA index.
package encodings

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// System is the encoding used for interchange with the OS.
const System = "utf-8"

// aliases maps conventional Tcl spellings to the IANA names the index
// resolves. The iso8859-* forms drop the hyphen IANA requires.
var aliases = map[string]string{
	"ascii": "us-ascii",
	"cp866": "ibm866",
}

func init() {
	for _, n := range []string{
		"1", "2", "3", "4", "5", "6", "7", "8", "9", "10",
		"13", "14", "15", "16",
	} {
		aliases["iso8859-"+n] = "iso-8859-" + n
	}
}

// names are the encodings advertised by Names.
var names = []string{
	"ascii",
	"big5",
	"cp866",
	"euc-jp",
	"euc-kr",
	"gb2312",
	"iso8859-1", "iso8859-2", "iso8859-3", "iso8859-4", "iso8859-5",
	"iso8859-6", "iso8859-7", "iso8859-8", "iso8859-9", "iso8859-10",
	"iso8859-13", "iso8859-14", "iso8859-15", "iso8859-16",
	"koi8-r",
	"koi8-u",
	"macintosh",
	"shift_jis",
	"utf-8",
	"utf-16",
	"windows-1250", "windows-1251", "windows-1252", "windows-1253",
	"windows-1254", "windows-1255", "windows-1256", "windows-1257",
	"windows-1258",
}

// Lookup resolves an encoding name. Lookup is case-insensitive and accepts
// the conventional Tcl spellings as well as any name or alias known to the
// IANA index.
func Lookup(name string) (encoding.Encoding, error) {
	lower := strings.ToLower(name)
	if iana, ok := aliases[lower]; ok {
		lower = iana
	}
	e, err := ianaindex.IANA.Encoding(lower)
	if err != nil || e == nil {
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
	return e, nil
}

// Names returns the names of the supported encodings.
func Names() []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, err := Lookup(name); err == nil {
			out = append(out, name)
		}
	}
	return out
}

// Decode converts data in the named encoding to UTF-8.
func Decode(name, data string) (string, error) {
	e, err := Lookup(name)
	if err != nil {
		return "", err
	}
	return e.NewDecoder().String(data)
}

// Encode converts a UTF-8 string to the named encoding.
func Encode(name, s string) (string, error) {
	e, err := Lookup(name)
	if err != nil {
		return "", err
	}
	return e.NewEncoder().String(s)
}
