package exercises

import "testing"

func TestCountTruthy(t *testing.T) {
	testCases := []struct {
		name   string
		values []Value
		want   int
	}{
		{"empty", nil, 0},
		{"mixed", []Value{Number(1), Number(0), String("hello"), Bool(false), NaN()}, 2},
		{"all falsy", []Value{Null(), NaN(), Number(0), String(""), Bool(false)}, 0},
		{"all truthy", []Value{Number(7), String("x"), Bool(true)}, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CountTruthy(tc.values); got != tc.want {
				t.Errorf("CountTruthy() = %d, want %d", got, tc.want)
			}
		})
	}
}
