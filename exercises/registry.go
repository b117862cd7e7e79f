package exercises

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxStarRows bounds showStars when it is invoked by name and the rows are
// materialised.
const MaxStarRows = 500

// Operation describes an exercise that can be invoked by name.
type Operation struct {
	Name string

	// Arity is the exact argument count, or the minimum when Variadic.
	Arity    int
	Variadic bool
	Usage    string

	call func(args []Value) (any, error)
}

var operations = []Operation{
	{
		Name: "findMax", Arity: 2, Usage: "findMax(a, b) returns the larger number",
		call: func(args []Value) (any, error) {
			a, err := numberArg("findMax", 0, args)
			if err != nil {
				return nil, err
			}
			b, err := numberArg("findMax", 1, args)
			if err != nil {
				return nil, err
			}
			return FindMax(a, b), nil
		},
	},
	{
		Name: "isLandscape", Arity: 2, Usage: "isLandscape(width, height) reports width > height",
		call: func(args []Value) (any, error) {
			w, err := numberArg("isLandscape", 0, args)
			if err != nil {
				return nil, err
			}
			h, err := numberArg("isLandscape", 1, args)
			if err != nil {
				return nil, err
			}
			return IsLandscape(w, h), nil
		},
	},
	{
		Name: "fizzBuzz", Arity: 1, Usage: "fizzBuzz(value) classifies multiples of 3 and 5",
		call: func(args []Value) (any, error) {
			return FizzBuzz(args[0]), nil
		},
	},
	{
		Name: "checkSpeed", Arity: 1, Usage: "checkSpeed(speed) converts a speed into penalty points",
		call: func(args []Value) (any, error) {
			speed, err := numberArg("checkSpeed", 0, args)
			if err != nil {
				return nil, err
			}
			return CheckSpeed(speed), nil
		},
	},
	{
		Name: "countTruthy", Arity: 0, Variadic: true, Usage: "countTruthy(values...) counts truthy values",
		call: func(args []Value) (any, error) {
			return CountTruthy(args), nil
		},
	},
	{
		Name: "calculateGrade", Arity: 0, Variadic: true, Usage: "calculateGrade(scores...) maps the mean score to a letter",
		call: func(args []Value) (any, error) {
			scores := make([]float64, len(args))
			for i := range args {
				s, err := numberArg("calculateGrade", i, args)
				if err != nil {
					return nil, err
				}
				scores[i] = s
			}
			return CalculateGrade(scores)
		},
	},
	{
		Name: "showStars", Arity: 1, Usage: "showStars(rows) draws a triangle of stars",
		call: func(args []Value) (any, error) {
			n, err := numberArg("showStars", 0, args)
			if err != nil {
				return nil, err
			}
			if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
				return nil, fmt.Errorf("%w: showStars rows must be a whole number, got %v", ErrArgument, n)
			}
			if n > MaxStarRows {
				return nil, fmt.Errorf("%w: showStars rows %v exceeds %d", ErrArgument, n, MaxStarRows)
			}
			return StarRows(int(n)), nil
		},
	},
	{
		Name: "typeOf", Arity: 1, Usage: "typeOf(value) returns the dynamic type name",
		call: func(args []Value) (any, error) {
			return args[0].TypeOf(), nil
		},
	},
}

func numberArg(op string, i int, args []Value) (float64, error) {
	f, ok := args[i].Float()
	if !ok {
		return 0, fmt.Errorf("%w: %s argument %d must be a number, got %s", ErrArgument, op, i+1, args[i].TypeOf())
	}
	return f, nil
}

// Operations lists every invocable exercise in demonstration order.
func Operations() []Operation {
	out := make([]Operation, len(operations))
	copy(out, operations)
	return out
}

// Lookup finds an operation by name.
func Lookup(name string) (Operation, bool) {
	for _, op := range operations {
		if op.Name == name {
			return op, true
		}
	}
	return Operation{}, false
}

// Invoke runs the named exercise with args and returns its result.
func Invoke(name string, args []Value) (any, error) {
	op, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	if op.Variadic {
		if len(args) < op.Arity {
			return nil, fmt.Errorf("%w: %s wants at least %d, got %d", ErrArity, name, op.Arity, len(args))
		}
	} else if len(args) != op.Arity {
		return nil, fmt.Errorf("%w: %s wants %d, got %d", ErrArity, name, op.Arity, len(args))
	}
	return op.call(args)
}

// FormatResult renders an Invoke result as a single console line.
func FormatResult(result any) string {
	switch r := result.(type) {
	case Value:
		return r.String()
	case float64:
		return formatNumber(r)
	case int:
		return strconv.Itoa(r)
	case bool:
		return strconv.FormatBool(r)
	case string:
		return r
	case Grade:
		return string(r)
	case []string:
		return strings.Join(r, "\n")
	default:
		return fmt.Sprint(r)
	}
}

// Step is one demonstration call.
type Step struct {
	Op   string
	Args []Value
}

func (s Step) String() string {
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		if a.Kind() == KindString {
			parts[i] = strconv.Quote(a.str)
			continue
		}
		parts[i] = a.String()
	}
	if op, ok := Lookup(s.Op); ok && op.Variadic {
		return s.Op + "([" + strings.Join(parts, ", ") + "])"
	}
	return s.Op + "(" + strings.Join(parts, ", ") + ")"
}

// Run invokes the step.
func (s Step) Run() (any, error) {
	return Invoke(s.Op, s.Args)
}

// DemoSteps returns the literal demonstration calls in the order they are
// printed.
func DemoSteps() []Step {
	return []Step{
		{"findMax", []Value{Number(10), Number(-9)}},
		{"isLandscape", []Value{Number(40), Number(10)}},
		{"fizzBuzz", []Value{Number(15)}},
		{"fizzBuzz", []Value{Number(5)}},
		{"fizzBuzz", []Value{Number(3)}},
		{"fizzBuzz", []Value{Number(2)}},
		{"fizzBuzz", []Value{String("Hello")}},
		{"checkSpeed", []Value{Number(10)}},
		{"checkSpeed", []Value{Number(73)}},
		{"checkSpeed", []Value{Number(75)}},
		{"checkSpeed", []Value{Number(92)}},
		{"checkSpeed", []Value{Number(130)}},
		{"checkSpeed", []Value{Number(180)}},
		{"countTruthy", []Value{Number(1), Number(0), String("hello"), Bool(false), NaN()}},
		{"calculateGrade", []Value{Number(80), Number(80), Number(50)}},
		{"showStars", []Value{Number(5)}},
	}
}
