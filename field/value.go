package field

import (
	"encoding/json"
	"strconv"
)

// Value is a parsed field value. A null value renders as the empty string,
// which downstream consumers rely upon; it is distinct from a field that is
// absent from a record altogether.
type Value struct {
	Type  Type
	Null  bool
	Str   string
	Int   int64
	Float float64
}

// Null returns the null value of type t.
func Null(t Type) Value { return Value{Type: t, Null: true} }

func String(s string) Value { return Value{Type: TypeString, Str: s} }
func Int(i int64) Value     { return Value{Type: TypeInt, Int: i} }
func Float(f float64) Value { return Value{Type: TypeFloat, Float: f} }

func (v Value) String() string {
	if v.Null {
		return ""
	}

	switch v.Type {
	case TypeInt:
		return strconv.FormatInt(v.Int, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	}

	return v.Str
}

// AsFloat returns the value as a float64. The boolean is false for null and
// string values.
func (v Value) AsFloat() (float64, bool) {
	if v.Null {
		return 0, false
	}

	switch v.Type {
	case TypeInt:
		return float64(v.Int), true
	case TypeFloat:
		return v.Float, true
	}

	return 0, false
}

// MarshalJSON writes numbers as JSON numbers and nulls as "".
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Null {
		return []byte(`""`), nil
	}

	switch v.Type {
	case TypeInt, TypeFloat:
		return []byte(v.String()), nil
	}

	return json.Marshal(v.Str)
}
