package exercises

// FindMax returns the larger of a and b. On a tie the second operand is
// returned.
func FindMax(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// IsLandscape reports whether a rectangle is wider than it is tall. A square
// is not landscape.
func IsLandscape(width, height float64) bool {
	return width > height
}
