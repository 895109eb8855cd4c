package service

import "math"

// RoundingPrecision is the scale applied to values reported in history stats.
const RoundingPrecision = 100

// round rounds a float64 value to two decimal places using the package RoundingPrecision constant.
// Stats are rounded for display only; stored snapshot values are already rounded
// to cents when they are recorded.
//
// The rounding uses the standard "round half away from zero" approach via math.Round.
//
// Example:
//
//	round(123.456789)  // returns 123.46
//	round(-33.3333)    // returns -33.33
//	round(1.994)       // returns 1.99
func round(value float64) float64 {
	return math.Round(value*RoundingPrecision) / RoundingPrecision
}
