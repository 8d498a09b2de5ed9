package models

import "math"

// Conversion factors shared by the provider adapters. Providers that report
// only one unit system get the other derived with these helpers.

func CToF(c float64) float64 {
	return c*9/5 + 32
}

// MsToKmh converts meters per second to kilometers per hour.
func MsToKmh(ms float64) float64 {
	return ms * 3.6
}

// MsToMph converts meters per second to miles per hour.
func MsToMph(ms float64) float64 {
	return ms * 2.237
}

// HpaToInHg converts hectopascals to inches of mercury.
func HpaToInHg(hpa float64) float64 {
	return hpa * 0.02953
}

// MmToIn converts millimeters to inches.
func MmToIn(mm float64) float64 {
	return mm * 0.0393701
}

// KmToMiles converts kilometers to miles.
func KmToMiles(km float64) float64 {
	return km * 0.621371
}

// Round1 rounds to one decimal place, half away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

var compassPoints = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// WindDirection maps degrees to a 16-point compass string.
func WindDirection(degrees float64) string {
	idx := int(math.Round(degrees/22.5)) % 16
	if idx < 0 {
		idx += 16
	}
	return compassPoints[idx]
}
