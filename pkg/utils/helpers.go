package utils

import (
	"cmp"
	"math"
)

// Clamp limits a value between min and max
func Clamp[T cmp.Ordered](value, min, max T) T {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// SafeRatio divides num by den, returning false instead of Inf or NaN when den is zero
func SafeRatio(num, den float64) (float64, bool) {
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

// Abs returns the absolute value of an int
func Abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// RoundTo rounds a float to specified decimal places
func RoundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
