package exercises

import "math"

const (
	LabelFizz     = "Fizz"
	LabelBuzz     = "Buzz"
	LabelFizzBuzz = "FizzBuzz"

	// NotANumber is what FizzBuzz returns for non-numeric input.
	NotANumber = "not a number"
)

// FizzBuzz classifies v. Non-numeric input yields the string "not a number";
// that is a normal result, not an error. Multiples of 15 yield "FizzBuzz",
// then multiples of 3 "Fizz", then multiples of 5 "Buzz". Anything else,
// including NaN and fractional numbers, is returned unchanged.
func FizzBuzz(v Value) Value {
	if !v.IsNumeric() {
		return String(NotANumber)
	}
	n, _ := v.Float()

	// 15 must be tested first; it is also a multiple of 3 and 5.
	switch {
	case divisible(n, 15):
		return String(LabelFizzBuzz)
	case divisible(n, 3):
		return String(LabelFizz)
	case divisible(n, 5):
		return String(LabelBuzz)
	}
	return v
}

// divisible uses the float remainder, so NaN and infinities never divide.
func divisible(n, d float64) bool {
	return math.Mod(n, d) == 0
}
