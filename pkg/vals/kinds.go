package vals

import (
	"strconv"
	"strings"
)

// IntKind caches an int64 rep. Parsing accepts the usual integer syntax:
// optional sign, decimal, or a 0x/0o/0b prefix.
var IntKind = RegisterKind(&Kind{
	Name: "int",
	Parse: func(v *Val) (any, error) {
		s := strings.TrimSpace(v.String())
		n, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return nil, &ConversionError{"integer", v.String()}
		}
		return n, nil
	},
	UpdateString: func(rep any) string {
		return strconv.FormatInt(rep.(int64), 10)
	},
})

// DoubleKind caches a float64 rep.
var DoubleKind = RegisterKind(&Kind{
	Name: "double",
	Parse: func(v *Val) (any, error) {
		s := strings.TrimSpace(v.String())
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, &ConversionError{"floating-point number", v.String()}
		}
		return f, nil
	},
	UpdateString: func(rep any) string {
		return strconv.FormatFloat(rep.(float64), 'g', -1, 64)
	},
})

// BoolKind caches a bool rep. In addition to the boolean words, any string
// that parses as a number is accepted, with zero being false.
var BoolKind = RegisterKind(&Kind{
	Name: "bool",
	Parse: func(v *Val) (any, error) {
		b, err := ParseBool(v.String())
		if err != nil {
			return nil, err
		}
		return b, nil
	},
	UpdateString: func(rep any) string {
		if rep.(bool) {
			return "1"
		}
		return "0"
	},
})

// ParseBool interprets a string as a boolean: the words true/false, yes/no,
// on/off (case-insensitive), or any numeric string with zero being false.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	if n, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64); err == nil {
		return n != 0, nil
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return f != 0, nil
	}
	return false, &ConversionError{"boolean value", s}
}

// NewInt creates a value with an int rep and no string form.
func NewInt(n int64) *Val { return NewWithRep(IntKind, n) }

// NewBool creates a value with a bool rep and no string form.
func NewBool(b bool) *Val { return NewWithRep(BoolKind, b) }

// Int converts a value to int64.
func Int(v *Val) (int64, error) {
	rep, err := v.Rep(IntKind)
	if err != nil {
		return 0, err
	}
	return rep.(int64), nil
}

// Bool converts a value to bool.
func Bool(v *Val) (bool, error) {
	rep, err := v.Rep(BoolKind)
	if err != nil {
		return false, err
	}
	return rep.(bool), nil
}
