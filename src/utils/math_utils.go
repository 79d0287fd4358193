package utils

import (
	"fmt"
	"math"
)

// RoundFloat rounds a float64 to a specified number of decimal places.
func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// Rate returns count/total as a percentage, 0 when the denominator is 0.
func Rate(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// FormatRate renders count/total as a one-decimal percentage string.
// A zero denominator yields the literal "0", never NaN.
func FormatRate(count, total int) string {
	if total == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", Rate(count, total))
}
