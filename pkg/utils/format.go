// Package utils provides common formatting and ticker helpers for researchdesk.
package utils

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// FormatUSD formats a number as US dollars with thousands separators
// ($1,234,567.89).
func FormatUSD(amount float64) string {
	negative := amount < 0
	fixed := decimal.NewFromFloat(math.Abs(amount)).StringFixed(2)

	intPart, decPart, _ := strings.Cut(fixed, ".")
	formatted := groupThousands(intPart) + "." + decPart

	if negative {
		return "-$" + formatted
	}
	return "$" + formatted
}

// FormatCompact formats a dollar amount in compact notation.
// e.g., 2.5e12 → "$2.50T", 3.1e9 → "$3.10B", 4.5e6 → "$4.50M"
func FormatCompact(amount float64) string {
	prefix := "$"
	if amount < 0 {
		prefix = "-$"
	}
	a := math.Abs(amount)

	switch {
	case a >= 1e12:
		return fmt.Sprintf("%s%.2fT", prefix, a/1e12)
	case a >= 1e9:
		return fmt.Sprintf("%s%.2fB", prefix, a/1e9)
	case a >= 1e6:
		return fmt.Sprintf("%s%.2fM", prefix, a/1e6)
	case a >= 1e3:
		return fmt.Sprintf("%s%.2fK", prefix, a/1e3)
	default:
		return fmt.Sprintf("%s%.2f", prefix, a)
	}
}

// ToBillions converts a raw number to billions.
func ToBillions(amount float64) float64 {
	return amount / 1e9
}

// FormatPct formats a percentage value with sign and suffix.
// e.g., 2.45 → "+2.45%", -1.23 → "-1.23%"
func FormatPct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// OrNA formats v with the given verb, or returns "N/A" when v is zero.
func OrNA(format string, v float64) string {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	return fmt.Sprintf(format, v)
}

// Truncate shortens s to at most n runes. It never splits a UTF-8 sequence.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// groupThousands inserts commas every three digits from the right.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
