package exercises

import "fmt"

// Grade is a letter grade.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// breakpoints are checked in ascending order; the first upper bound that
// holds the average wins.
var breakpoints = []struct {
	max   float64
	grade Grade
}{
	{59, GradeF},
	{69, GradeD},
	{79, GradeC},
	{89, GradeB},
	{100, GradeA},
}

// Average returns the arithmetic mean of scores.
func Average(scores []float64) (float64, error) {
	if len(scores) == 0 {
		return 0, ErrNoScores
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores)), nil
}

// CalculateGrade averages scores and maps the mean to a letter grade.
// It returns ErrNoScores for an empty slice and ErrAverageOutOfRange when
// the mean is below 0 or above 100.
func CalculateGrade(scores []float64) (Grade, error) {
	avg, err := Average(scores)
	if err != nil {
		return "", err
	}
	if avg < 0 {
		return "", fmt.Errorf("%w: %v", ErrAverageOutOfRange, avg)
	}
	for _, bp := range breakpoints {
		if avg <= bp.max {
			return bp.grade, nil
		}
	}
	// above 100, or NaN from a NaN score
	return "", fmt.Errorf("%w: %v", ErrAverageOutOfRange, avg)
}
