package exercises

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindBoolean
	KindNaN
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	case KindNaN:
		return "NaN"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a loosely typed input: a number, a string, a boolean, null or
// not-a-number. The zero Value is null.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// NaN returns the not-a-number value.
func NaN() Value { return Value{kind: KindNaN, num: math.NaN()} }

// Number wraps f. A NaN argument produces the NaN variant.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return NaN()
	}
	return Value{kind: KindNumber, num: f}
}

// String wraps s.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool wraps b.
func Bool(b bool) Value { return Value{kind: KindBoolean, b: b} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// Float returns the numeric payload. ok is false for non-numeric values.
func (v Value) Float() (f float64, ok bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindNaN:
		return math.NaN(), true
	}
	return 0, false
}

// Text returns the string payload. ok is false unless v is a string.
func (v Value) Text() (s string, ok bool) {
	return v.str, v.kind == KindString
}

// Boolean returns the boolean payload. ok is false unless v is a boolean.
func (v Value) Boolean() (b bool, ok bool) {
	return v.b, v.kind == KindBoolean
}

// IsNumeric reports whether v has number type. NaN counts as a number.
func (v Value) IsNumeric() bool {
	return v.kind == KindNumber || v.kind == KindNaN
}

// TypeOf returns the dynamic type name of v: "number", "string", "boolean",
// or "object" for null.
func (v Value) TypeOf() string {
	switch v.kind {
	case KindNumber, KindNaN:
		return "number"
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	default:
		return "object"
	}
}

// Native returns the payload as a plain Go value: float64, string, bool or
// nil for null.
func (v Value) Native() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindNaN:
		return math.NaN()
	case KindString:
		return v.str
	case KindBoolean:
		return v.b
	default:
		return nil
	}
}

// Equal reports whether v and o hold the same variant and payload.
// Two NaN values are equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	case KindBoolean:
		return v.b == o.b
	}
	return true
}

// String renders v the way a console would print it.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return formatNumber(v.num)
	case KindString:
		return v.str
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindNaN:
		return "NaN"
	default:
		return "null"
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		return exponent(f)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// exponent writes f the way a console does: "1e+21", "1.5e-7", with no
// zero padding in the exponent.
func exponent(f float64) string {
	mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	return mant + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
}

// IsTruthy reports whether v coerces to true: null, NaN, 0, the empty string
// and false are falsy, everything else is truthy.
func IsTruthy(v Value) bool {
	switch v.kind {
	case KindNumber:
		return v.num != 0
	case KindString:
		return v.str != ""
	case KindBoolean:
		return v.b
	default:
		return false
	}
}

// ParseValue turns a command-line literal into a Value. "null", "NaN",
// "true" and "false" are keywords, decimal numbers become numbers and any
// other text is kept as a string. Quoted text is always a string.
func ParseValue(s string) Value {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return String(s[1 : len(s)-1])
	}
	switch s {
	case "null", "undefined":
		return Null()
	case "NaN":
		return NaN()
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if isSpelledNumber(s) || strings.ContainsAny(s, "xXpP_") {
		return String(s)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Number(f)
	}
	return String(s)
}

// isSpelledNumber reports whether s is an infinity or NaN spelling that
// strconv.ParseFloat would accept. Only the keywords above produce those.
func isSpelledNumber(s string) bool {
	l := strings.ToLower(strings.TrimLeft(s, "+-"))
	return strings.HasPrefix(l, "inf") || l == "nan"
}

// MarshalJSON encodes numbers, strings, booleans and null natively. NaN has
// no JSON form and is written as the string "NaN".
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsInf(v.num, 0) {
			return json.Marshal(formatNumber(v.num))
		}
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	case KindBoolean:
		return json.Marshal(v.b)
	case KindNaN:
		return json.Marshal("NaN")
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a JSON scalar. Arrays and objects are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	val, err := FromNative(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// FromNative converts a decoded JSON scalar or Go primitive into a Value.
func FromNative(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint:
		return Number(float64(t)), nil
	case uint32:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrArgument, err)
		}
		return Number(f), nil
	default:
		return Value{}, fmt.Errorf("%w: unsupported value of type %T", ErrArgument, x)
	}
}
