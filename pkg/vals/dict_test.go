package vals

import "testing"

func TestDictParse(t *testing.T) {
	v := NewString("-code 1 -level 0")
	got, ok, err := DictGet(v, "-code")
	if err != nil || !ok || got.String() != "1" {
		t.Errorf("DictGet -code -> (%v, %v, %v), want (1, true, nil)", got, ok, err)
	}
	_, ok, err = DictGet(v, "-missing")
	if err != nil || ok {
		t.Errorf("DictGet -missing -> ok=%v err=%v, want absent", ok, err)
	}
}

func TestDictOddLength(t *testing.T) {
	v := NewString("a b c")
	if _, _, err := DictGet(v, "a"); err == nil {
		t.Errorf("DictGet on odd-length list succeeds")
	}
}

func TestDictSetOrder(t *testing.T) {
	v := NewDict()
	must := func(err error) {
		if err != nil {
			t.Fatalf("DictSet: %v", err)
		}
	}
	must(DictSet(v, "b", NewString("2")))
	must(DictSet(v, "a", NewString("1")))
	must(DictSet(v, "b", NewString("3")))
	keys, err := DictKeys(v)
	if err != nil || len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Errorf("DictKeys -> (%v, %v), want ([b a], nil)", keys, err)
	}
	if got := v.String(); got != "b 3 a 1" {
		t.Errorf("dict string -> %q, want \"b 3 a 1\"", got)
	}
	if n, _ := DictSize(v); n != 2 {
		t.Errorf("DictSize -> %d, want 2", n)
	}
}
