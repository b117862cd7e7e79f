package exercises

import (
	"math"
	"testing"
)

func TestFizzBuzz(t *testing.T) {
	testCases := []struct {
		name  string
		input Value
		want  Value
	}{
		{"multiple of 15", Number(15), String("FizzBuzz")},
		{"multiple of 5", Number(5), String("Buzz")},
		{"multiple of 3", Number(3), String("Fizz")},
		{"neither", Number(2), Number(2)},
		{"zero is a multiple of 15", Number(0), String("FizzBuzz")},
		{"negative multiple of 15", Number(-45), String("FizzBuzz")},
		{"large multiple of 3", Number(99), String("Fizz")},
		{"fraction", Number(7.5), Number(7.5)},
		{"string", String("Hello"), String("not a number")},
		{"numeric string", String("15"), String("not a number")},
		{"boolean", Bool(true), String("not a number")},
		{"null", Null(), String("not a number")},
		{"NaN is a number", NaN(), NaN()},
		{"infinity", Number(math.Inf(1)), Number(math.Inf(1))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := FizzBuzz(tc.input)
			if !got.Equal(tc.want) {
				t.Errorf("FizzBuzz(%v) = %v (%s), want %v (%s)", tc.input, got, got.Kind(), tc.want, tc.want.Kind())
			}
		})
	}
}

// TestFizzBuzzPriority checks that every multiple of 15 is reported as
// FizzBuzz rather than Fizz or Buzz.
func TestFizzBuzzPriority(t *testing.T) {
	for n := -150; n <= 150; n += 15 {
		got := FizzBuzz(Number(float64(n)))
		if s, _ := got.Text(); s != LabelFizzBuzz {
			t.Errorf("FizzBuzz(%d) = %v, want FizzBuzz", n, got)
		}
	}
}
