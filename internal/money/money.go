// Package money holds the rounding helpers shared by the quoting and ledger
// engines. All monetary intermediates are rounded to cents immediately so
// binary floating point drift cannot compound across lines.
package money

import "math"

// IVARate is the Mexican value-added tax rate applied throughout.
const IVARate = 0.16

// Round2 rounds to 2 decimals, half away from zero.
func Round2(n float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return math.Round(n*100) / 100
}

// Pct converts a user-facing percentage (e.g. 15) into a rate (0.15).
func Pct(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return p / 100
}

// IsValidAmount reports whether v can be used as a monetary override:
// finite and non-negative.
func IsValidAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
