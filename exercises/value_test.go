package exercises

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestIsTruthy(t *testing.T) {
	testCases := []struct {
		name  string
		value Value
		want  bool
	}{
		{"zero", Number(0), false},
		{"negative zero", Number(math.Copysign(0, -1)), false},
		{"one", Number(1), true},
		{"negative", Number(-1), true},
		{"empty string", String(""), false},
		{"string", String("hello"), true},
		{"string zero", String("0"), true},
		{"false", Bool(false), false},
		{"true", Bool(true), true},
		{"null", Null(), false},
		{"zero value", Value{}, false},
		{"NaN", NaN(), false},
		{"NaN via Number", Number(math.NaN()), false},
		{"infinity", Number(math.Inf(-1)), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTruthy(tc.value); got != tc.want {
				t.Errorf("IsTruthy(%v) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

func TestTypeOf(t *testing.T) {
	testCases := []struct {
		value Value
		want  string
	}{
		{String("Sammy"), "string"},
		{Number(30), "number"},
		{Bool(true), "boolean"},
		{Null(), "object"},
		{NaN(), "number"},
	}

	for _, tc := range testCases {
		if got := tc.value.TypeOf(); got != tc.want {
			t.Errorf("TypeOf(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestValueString(t *testing.T) {
	testCases := []struct {
		value Value
		want  string
	}{
		{Number(10), "10"},
		{Number(-9), "-9"},
		{Number(0.3), "0.3"},
		{Number(1e20), "100000000000000000000"},
		{Number(1e21), "1e+21"},
		{Number(-1.5e25), "-1.5e+25"},
		{Number(0.000001), "0.000001"},
		{Number(1e-7), "1e-7"},
		{Number(1.5e-7), "1.5e-7"},
		{Number(math.Inf(1)), "Infinity"},
		{NaN(), "NaN"},
		{Null(), "null"},
		{Bool(false), "false"},
		{String("hello"), "hello"},
	}

	for _, tc := range testCases {
		if got := tc.value.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestParseValue(t *testing.T) {
	testCases := []struct {
		in   string
		want Value
	}{
		{"15", Number(15)},
		{"-9", Number(-9)},
		{"0.5", Number(0.5)},
		{"1e3", Number(1000)},
		{"Hello", String("Hello")},
		{`"15"`, String("15")},
		{"'true'", String("true")},
		{"true", Bool(true)},
		{"false", Bool(false)},
		{"null", Null()},
		{"NaN", NaN()},
		{"nan", String("nan")},
		{"Inf", String("Inf")},
		{"0x10", String("0x10")},
		{"", String("")},
	}

	for _, tc := range testCases {
		if got := ParseValue(tc.in); !got.Equal(tc.want) {
			t.Errorf("ParseValue(%q) = %v (%s), want %v (%s)", tc.in, got, got.Kind(), tc.want, tc.want.Kind())
		}
	}
}

func TestValueJSON(t *testing.T) {
	var got []Value
	if err := json.Unmarshal([]byte(`[1, 0, "hello", false, null]`), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []Value{Number(1), Number(0), String("hello"), Bool(false), Null()}
	if len(got) != len(want) {
		t.Fatalf("decoded %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("value %d = %v, want %v", i, got[i], want[i])
		}
	}

	b, err := json.Marshal([]Value{Number(2), NaN(), Null()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `[2,"NaN",null]` {
		t.Errorf("marshal = %s", b)
	}

	var v Value
	if err := json.Unmarshal([]byte(`{"a": 1}`), &v); !errors.Is(err, ErrArgument) {
		t.Errorf("object should be rejected with ErrArgument, got %v", err)
	}
}

func TestNative(t *testing.T) {
	testCases := []struct {
		name  string
		value Value
		want  any
	}{
		{"number", Number(2.5), 2.5},
		{"string", String("x"), "x"},
		{"bool", Bool(true), true},
		{"null", Null(), nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.value.Native(); got != tc.want {
				t.Errorf("Native() = %v, want %v", got, tc.want)
			}
		})
	}

	if f, ok := NaN().Native().(float64); !ok || !math.IsNaN(f) {
		t.Errorf("NaN().Native() = %v, want NaN", NaN().Native())
	}
}
