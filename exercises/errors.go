package exercises

import "errors"

var (
	// ErrNoScores is returned when a grade is requested for no scores.
	ErrNoScores = errors.New("no scores to average")

	// ErrAverageOutOfRange is returned when the mean falls outside 0..100.
	ErrAverageOutOfRange = errors.New("average out of range 0..100")

	// ErrUnknownOperation is returned by Invoke for an unregistered name.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrArity is returned by Invoke when the argument count is wrong.
	ErrArity = errors.New("wrong number of arguments")

	// ErrArgument is returned when an argument has the wrong type.
	ErrArgument = errors.New("invalid argument")
)
