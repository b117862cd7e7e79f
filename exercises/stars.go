package exercises

import (
	"iter"
	"slices"
	"strings"
)

// Star is the glyph ShowStars repeats.
const Star = "*"

// ShowStars yields n rows; row i (1-based) holds i stars. Nothing is yielded
// when n <= 0.
func ShowStars(n int) iter.Seq[string] {
	return func(yield func(string) bool) {
		for row := 1; row <= n; row++ {
			if !yield(strings.Repeat(Star, row)) {
				return
			}
		}
	}
}

// StarRows collects ShowStars(n).
func StarRows(n int) []string {
	rows := slices.Collect(ShowStars(n))
	if rows == nil {
		return []string{}
	}
	return rows
}
