package eval

import (
	"encoding/json"
	"math"
	"strconv"
)

// Value is the result of evaluating an expression: a number or a boolean.
// Comparison chains produce booleans; everything else produces numbers.
// Booleans take part in arithmetic as 1 and 0.
type Value struct {
	num     float64
	boolean bool
}

// Number wraps a float64.
func Number(n float64) Value { return Value{num: n} }

// Bool wraps a boolean.
func Bool(b bool) Value {
	v := Value{boolean: true}
	if b {
		v.num = 1
	}
	return v
}

// IsBool reports whether the value is a boolean.
func (v Value) IsBool() bool { return v.boolean }

// Num returns the numeric value; booleans coerce to 1 or 0.
func (v Value) Num() float64 { return v.num }

// Bool returns the value as a boolean; numbers are true when non-zero.
func (v Value) Bool() bool { return v.num != 0 }

func (v Value) String() string {
	if v.boolean {
		return strconv.FormatBool(v.num != 0)
	}
	return strconv.FormatFloat(v.num, 'g', -1, 64)
}

// MarshalJSON encodes booleans as JSON booleans and numbers as JSON
// numbers. Non-finite values have no JSON number form and encode as the
// strings "Infinity", "-Infinity" and "NaN".
func (v Value) MarshalJSON() ([]byte, error) {
	if v.boolean {
		return json.Marshal(v.num != 0)
	}
	switch {
	case math.IsInf(v.num, 1):
		return json.Marshal("Infinity")
	case math.IsInf(v.num, -1):
		return json.Marshal("-Infinity")
	case math.IsNaN(v.num):
		return json.Marshal("NaN")
	}
	return json.Marshal(v.num)
}
