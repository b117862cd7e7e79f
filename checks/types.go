package checks

import "time"

// Check is a named CEL expression asserting a property of the exercises,
// such as `fizzBuzz(15) == "FizzBuzz"`.
type Check struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Expression string    `json:"expression" yaml:"expression"`
	Active     bool      `json:"active" yaml:"active"`
	CreatedAt  time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt  time.Time `json:"updatedAt" yaml:"-"`
}

// EvaluationResult is the outcome of evaluating one check.
type EvaluationResult struct {
	CheckID   string
	CheckName string

	// Passed is true only when the expression evaluated to boolean true.
	Passed bool

	// Output is the native form of the evaluated value.
	Output any
	Error  error
	Trace  any // CEL evaluation state, when tracked
}
