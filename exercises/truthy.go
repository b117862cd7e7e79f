package exercises

// CountTruthy returns how many of values are truthy under IsTruthy.
func CountTruthy(values []Value) int {
	count := 0
	for _, v := range values {
		if IsTruthy(v) {
			count++
		}
	}
	return count
}
