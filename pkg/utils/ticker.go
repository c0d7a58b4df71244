package utils

import (
	"strings"
)

// Common ticker aliases. Share classes use Yahoo's dash form (BRK-B).
var tickerAliases = map[string]string{
	"GOOGLE":    "GOOGL",
	"ALPHABET":  "GOOGL",
	"FACEBOOK":  "META",
	"FB":        "META",
	"MICROSOFT": "MSFT",
	"APPLE":     "AAPL",
	"AMAZON":    "AMZN",
	"NVIDIA":    "NVDA",
	"TESLA":     "TSLA",
	"NETFLIX":   "NFLX",
	"BERKSHIRE": "BRK-B",
}

// NormalizeTicker normalizes a user-supplied ticker into Yahoo form.
// It trims whitespace and a leading "$", upper-cases, resolves aliases and
// converts share-class dots to dashes (BRK.B → BRK-B).
func NormalizeTicker(ticker string) string {
	t := strings.TrimSpace(ticker)
	t = strings.TrimPrefix(t, "$")
	t = strings.ToUpper(t)

	if alias, ok := tickerAliases[t]; ok {
		return alias
	}

	// Exchange suffixes (.L, .TO, .NS) are kept; single-letter class suffixes
	// on US tickers become dashes.
	if i := strings.LastIndex(t, "."); i > 0 && len(t)-i == 2 && isUSClass(t[i+1:]) {
		t = t[:i] + "-" + t[i+1:]
	}
	return t
}

// ValidTicker reports whether a normalized ticker only contains characters
// Yahoo accepts in a symbol.
func ValidTicker(ticker string) bool {
	if ticker == "" || len(ticker) > 15 {
		return false
	}
	for _, r := range ticker {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '^', r == '=':
		default:
			return false
		}
	}
	return true
}

// NormalizeTickers normalizes a list, dropping blanks and duplicates while
// keeping the first-seen order.
func NormalizeTickers(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, raw := range tickers {
		t := NormalizeTicker(raw)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func isUSClass(s string) bool {
	return s == "A" || s == "B" || s == "C"
}
