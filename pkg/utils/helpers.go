package utils

import (
	"math"
	"strconv"
)

// RoundHalfAwayFromZero rounds to the nearest integer, halves away from zero
func RoundHalfAwayFromZero(value float64) int {
	return int(math.Round(value))
}

// RoundTo rounds a float to specified decimal places
func RoundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

// FormatDecimal prints a reading with at most the given decimal places
// and no trailing zeros (3.60 -> "3.6", 4.0 -> "4")
func FormatDecimal(value float64, places int) string {
	return strconv.FormatFloat(RoundTo(value, places), 'f', -1, 64)
}

// Clamp limits a value between min and max
func Clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
