package exercises

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInvoke(t *testing.T) {
	testCases := []struct {
		name string
		op   string
		args []Value
		want string
	}{
		{"max", "findMax", []Value{Number(10), Number(-9)}, "10"},
		{"landscape", "isLandscape", []Value{Number(40), Number(10)}, "true"},
		{"fizzbuzz", "fizzBuzz", []Value{Number(15)}, "FizzBuzz"},
		{"fizzbuzz passthrough", "fizzBuzz", []Value{Number(2)}, "2"},
		{"fizzbuzz string", "fizzBuzz", []Value{String("Hello")}, "not a number"},
		{"speed", "checkSpeed", []Value{Number(92)}, "Points --> 4"},
		{"truthy", "countTruthy", []Value{Number(1), Number(0), String("hello"), Bool(false), NaN()}, "2"},
		{"grade", "calculateGrade", []Value{Number(80), Number(80), Number(50)}, "C"},
		{"stars", "showStars", []Value{Number(3)}, "*\n**\n***"},
		{"typeof", "typeOf", []Value{Null()}, "object"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Invoke(tc.op, tc.args)
			if err != nil {
				t.Fatalf("Invoke(%s) failed: %v", tc.op, err)
			}
			if s := FormatResult(got); s != tc.want {
				t.Errorf("Invoke(%s) = %q, want %q", tc.op, s, tc.want)
			}
		})
	}
}

func TestInvokeErrors(t *testing.T) {
	testCases := []struct {
		name string
		op   string
		args []Value
		want error
	}{
		{"unknown", "nope", nil, ErrUnknownOperation},
		{"too few", "findMax", []Value{Number(1)}, ErrArity},
		{"too many", "fizzBuzz", []Value{Number(1), Number(2)}, ErrArity},
		{"string speed", "checkSpeed", []Value{String("fast")}, ErrArgument},
		{"fractional rows", "showStars", []Value{Number(2.5)}, ErrArgument},
		{"too many rows", "showStars", []Value{Number(MaxStarRows + 1)}, ErrArgument},
		{"no scores", "calculateGrade", nil, ErrNoScores},
		{"bool score", "calculateGrade", []Value{Bool(true)}, ErrArgument},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Invoke(tc.op, tc.args)
			if !errors.Is(err, tc.want) {
				t.Errorf("Invoke(%s) error = %v, want %v", tc.op, err, tc.want)
			}
		})
	}
}

func TestOperationsOrder(t *testing.T) {
	var names []string
	for _, op := range Operations() {
		names = append(names, op.Name)
	}
	want := []string{"findMax", "isLandscape", "fizzBuzz", "checkSpeed", "countTruthy", "calculateGrade", "showStars", "typeOf"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("Operations() mismatch (-want +got):\n%s", diff)
	}
}

func TestDemoSteps(t *testing.T) {
	var lines []string
	for _, step := range DemoSteps() {
		res, err := step.Run()
		if err != nil {
			t.Fatalf("%s failed: %v", step, err)
		}
		lines = append(lines, FormatResult(res))
	}

	want := []string{
		"10", "true",
		"FizzBuzz", "Buzz", "Fizz", "2", "not a number",
		"Ok", "Ok", "Points --> 1", "Points --> 4", "License suspended", "License suspended",
		"2", "C",
		"*\n**\n***\n****\n*****",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("demo output mismatch (-want +got):\n%s", diff)
	}
}

func TestStepString(t *testing.T) {
	steps := DemoSteps()
	if got := steps[0].String(); got != "findMax(10, -9)" {
		t.Errorf("String() = %q", got)
	}
	if got := steps[6].String(); got != `fizzBuzz("Hello")` {
		t.Errorf("String() = %q", got)
	}
	if got := steps[13].String(); !strings.HasPrefix(got, "countTruthy([1, 0") {
		t.Errorf("String() = %q", got)
	}
}

// TestInvokeIsPure runs every demonstration step twice and compares output.
func TestInvokeIsPure(t *testing.T) {
	for _, step := range DemoSteps() {
		a, errA := step.Run()
		b, errB := step.Run()
		if (errA == nil) != (errB == nil) || FormatResult(a) != FormatResult(b) {
			t.Errorf("%s is not deterministic: %v/%v vs %v/%v", step, a, errA, b, errB)
		}
	}
}
