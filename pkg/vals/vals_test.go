package vals

import "testing"

func TestRefCount(t *testing.T) {
	v := NewString("abc")
	if v.RefCount() != 1 {
		t.Errorf("fresh value has refcount %d, want 1", v.RefCount())
	}
	if v.Shared() {
		t.Errorf("fresh value is shared")
	}
	v.Retain()
	if !v.Shared() {
		t.Errorf("retained value is not shared")
	}
	v.Release()
	if v.Shared() {
		t.Errorf("released value is still shared")
	}
	// release(acquire(v)) is observably a no-op.
	if got := v.String(); got != "abc" {
		t.Errorf("String -> %q after retain/release, want abc", got)
	}
}

func TestLazyConversion(t *testing.T) {
	v := NewString(" 42 ")
	if v.Kind() != nil {
		t.Errorf("fresh value has kind %v, want nil", v.Kind())
	}
	n, err := Int(v)
	if err != nil || n != 42 {
		t.Errorf("Int -> (%d, %v), want (42, nil)", n, err)
	}
	if v.Kind() != IntKind {
		t.Errorf("value kind after Int is %v, want IntKind", v.Kind())
	}
	// The string form is untouched by conversion.
	if got := v.String(); got != " 42 " {
		t.Errorf("String -> %q after conversion, want \" 42 \"", got)
	}
}

func TestConversionError(t *testing.T) {
	v := NewString("spam")
	_, err := Int(v)
	if err == nil {
		t.Fatalf("Int on non-integer succeeds")
	}
	if got := err.Error(); got != `expected integer but got "spam"` {
		t.Errorf("error message %q not as expected", got)
	}
	if v.Kind() != nil {
		t.Errorf("failed conversion left kind %v", v.Kind())
	}
}

func TestStringRegeneration(t *testing.T) {
	v := NewInt(7)
	if v.HasString() {
		t.Errorf("NewInt has a string form")
	}
	if got := v.String(); got != "7" {
		t.Errorf("String -> %q, want 7", got)
	}
	if !v.HasString() {
		t.Errorf("String did not materialize the string form")
	}
}

func TestSetStringShedsRep(t *testing.T) {
	v := NewInt(7)
	_ = v.String()
	if err := v.SetString("8"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	if v.Kind() != nil {
		t.Errorf("SetString did not shed the typed rep")
	}
	if n, _ := Int(v); n != 8 {
		t.Errorf("Int -> %d after SetString, want 8", n)
	}
}

func TestSetStringSharedFails(t *testing.T) {
	v := NewString("x")
	v.Retain()
	defer v.Release()
	if err := v.SetString("y"); err == nil {
		t.Errorf("SetString on shared value succeeds")
	}
}

func TestUnshare(t *testing.T) {
	v := NewString("5")
	if Unshare(v) != v {
		t.Errorf("Unshare copies an unshared value")
	}
	v.Retain()
	dup := Unshare(v)
	if dup == v {
		t.Errorf("Unshare returns the shared value itself")
	}
	if dup.Shared() {
		t.Errorf("Unshare result is shared")
	}
	if dup.String() != "5" {
		t.Errorf("Unshare result has string %q, want 5", dup.String())
	}
}

func TestBoolWords(t *testing.T) {
	for s, want := range map[string]bool{
		"1": true, "0": false, "true": true, "False": false,
		"yes": true, "no": false, "on": true, "off": false, "42": true,
	} {
		got, err := ParseBool(s)
		if err != nil || got != want {
			t.Errorf("ParseBool(%q) -> (%v, %v), want (%v, nil)", s, got, err, want)
		}
	}
	if _, err := ParseBool("maybe"); err == nil {
		t.Errorf("ParseBool(maybe) succeeds")
	}
}

func TestRoundTrip(t *testing.T) {
	// parse(get_string(v)) == get_rep(v) for values with both forms.
	v := NewInt(-19)
	s := v.String()
	v2 := NewString(s)
	n, err := Int(v2)
	if err != nil || n != -19 {
		t.Errorf("round trip: Int(%q) -> (%d, %v), want (-19, nil)", s, n, err)
	}
}
