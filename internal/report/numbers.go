// Package report turns token, market and audit data into the
// human-readable text blocks of the conversation report. Everything here
// is pure: no I/O, no clock, deterministic field ordering.
package report

import (
	"math"
	"strconv"
	"strings"
)

// Unknown is rendered wherever a numeric input is missing.
const Unknown = "Unknown"

// Abbrev renders a number at human scale: thousands and above collapse to
// a K/M/B/T suffix, and the mantissa is rounded to sig significant digits
// (1,234,567 at 3 digits renders "1.23M").
func Abbrev(v float64, sig int) string {
	if sig < 1 {
		sig = 1
	}
	neg := ""
	if v < 0 {
		neg = "-"
		v = -v
	}

	suffix := ""
	switch {
	case v >= 1e12:
		v, suffix = v/1e12, "T"
	case v >= 1e9:
		v, suffix = v/1e9, "B"
	case v >= 1e6:
		v, suffix = v/1e6, "M"
	case v >= 1e3:
		v, suffix = v/1e3, "K"
	}

	return neg + formatSig(v, sig) + suffix
}

// AbbrevPtr renders a nullable number, mapping nil to Unknown.
func AbbrevPtr(v *float64, sig int) string {
	if v == nil {
		return Unknown
	}
	return Abbrev(*v, sig)
}

// formatSig formats x with sig significant digits in plain decimal
// notation, trimming trailing zeros.
func formatSig(x float64, sig int) string {
	if x == 0 {
		return "0"
	}

	decimals := sig - 1 - int(math.Floor(math.Log10(x)))
	if decimals < 0 {
		decimals = 0
	}
	s := strconv.FormatFloat(x, 'f', decimals, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}
