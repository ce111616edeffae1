package tabular

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a single typed cell: an int64, a float64 or a string.
// The zero Value is the empty string.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

// IntValue returns a Value holding n.
func IntValue(n int64) Value { return Value{kind: KindInt, i: n} }

// FloatValue returns a Value holding f.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// StringValue returns a Value holding s.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// Int returns the integer payload and whether v is an integer.
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }

// Float returns the float payload and whether v is a float.
// Integers are not widened here; use AsFloat for numeric coercion.
func (v Value) Float() (float64, bool) { return v.f, v.kind == KindFloat }

// AsFloat coerces v to float64. Integers widen, floats pass through and
// strings go through the same strict decimal parse the parser uses.
func (v Value) AsFloat() (float64, error) {
	switch v.kind {
	case KindInt:
		return float64(v.i), nil
	case KindFloat:
		return v.f, nil
	default:
		f, ok := parseDecimal(v.s)
		if !ok {
			return 0, fmt.Errorf("invalid number %q", v.s)
		}
		return f, nil
	}
}

// String renders v as text. Integers use base 10 and floats the shortest
// representation that round-trips, so "12.50" in a file reads back as "12.5".
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		return v.s
	}
}

// Interface returns the payload as int64, float64 or string.
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	default:
		return v.s
	}
}

// MarshalJSON encodes numbers as JSON numbers and strings as JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}
