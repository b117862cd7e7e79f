// Package exercises holds a handful of small, pure practice functions:
// max of two numbers, a landscape check, FizzBuzz, a speed-limit point
// calculator, a truthy counter, a grade calculator and a star pattern.
//
// Functions that accept loosely typed input take a Value, a tagged variant
// over number, string, boolean, null and NaN, together with an explicit
// truthiness table (IsTruthy) in place of implicit conversion.
//
// Every function is safe for concurrent use and returns the same output for
// the same input.
package exercises
