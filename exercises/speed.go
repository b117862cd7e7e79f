package exercises

import "math"

const (
	// SpeedLimit is the limit speeds are checked against.
	SpeedLimit = 70

	// KmPerPoint is how far over the limit one penalty point costs.
	KmPerPoint = 5

	// SuspensionPoints is the point count at which the licence is suspended.
	SuspensionPoints = 12
)

const (
	SpeedOk        = "Ok"
	SpeedSuspended = "License suspended"
)

func points(speed float64) float64 {
	return math.Floor(speed/KmPerPoint - float64(SpeedLimit)/KmPerPoint)
}

// SpeedPoints returns floor(speed/5 - limit/5). It is zero or negative for
// speeds under the limit plus one step. Out of range results saturate at
// math.MaxInt or math.MinInt and NaN gives 0.
func SpeedPoints(speed float64) int {
	p := points(speed)
	switch {
	case math.IsNaN(p):
		return 0
	case p >= math.MaxInt:
		return math.MaxInt
	case p <= math.MinInt:
		return math.MinInt
	}
	return int(p)
}

// CheckSpeed classifies speed as "Ok", "Points --> N" or
// "License suspended". A NaN speed matches neither bound and is reported as
// "Points --> NaN".
func CheckSpeed(speed float64) string {
	p := points(speed)
	switch {
	case p <= 0:
		return SpeedOk
	case p >= SuspensionPoints:
		return SpeedSuspended
	default:
		return "Points --> " + formatNumber(p)
	}
}
