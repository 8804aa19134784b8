package encodings

import (
	"testing"
)

func TestLookup(t *testing.T) {
	for _, name := range []string{"utf-8", "iso8859-1", "ascii", "UTF-8"} {
		if _, err := Lookup(name); err != nil {
			t.Errorf("Lookup(%q) -> error %v", name, err)
		}
	}
	if _, err := Lookup("no-such-encoding"); err == nil {
		t.Errorf("Lookup(no-such-encoding) succeeded, want error")
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) == 0 {
		t.Fatal("Names() is empty")
	}
	seen := false
	for _, name := range names {
		if name == "utf-8" {
			seen = true
		}
	}
	if !seen {
		t.Errorf("Names() = %v, missing utf-8", names)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		enc     string
		text    string
		encoded string
	}{
		{"utf-8", "héllo", "héllo"},
		{"iso8859-1", "héllo", "h\xe9llo"},
		{"ascii", "hello", "hello"},
	}
	for _, test := range tests {
		got, err := Encode(test.enc, test.text)
		if err != nil || got != test.encoded {
			t.Errorf("Encode(%q, %q) -> (%q, %v), want (%q, nil)",
				test.enc, test.text, got, err, test.encoded)
		}
		back, err := Decode(test.enc, test.encoded)
		if err != nil || back != test.text {
			t.Errorf("Decode(%q, %q) -> (%q, %v), want (%q, nil)",
				test.enc, test.encoded, back, err, test.text)
		}
	}
}
