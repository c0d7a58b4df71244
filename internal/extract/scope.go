package extract

import (
	"regexp"
	"strings"
)

var (
	execSummaryStart = regexp.MustCompile(`(?i)EXECUTIVE SUMMARY`)
	section2Start    = regexp.MustCompile(`(?i)##\s+SECTION\s+2`)
)

// ExecutiveSummary returns the block from "EXECUTIVE SUMMARY" up to the
// "## SECTION 2" heading (or the end of the text). Text without an
// executive summary is returned whole.
func ExecutiveSummary(text string) string {
	loc := execSummaryStart.FindStringIndex(text)
	if loc == nil {
		return text
	}
	rest := text[loc[0]:]
	if end := section2Start.FindStringIndex(rest); end != nil {
		return rest[:end[0]]
	}
	return rest
}

// execOnly returns the executive summary block, or "" when there is none.
func execOnly(text string) string {
	if execSummaryStart.MatchString(text) {
		return ExecutiveSummary(text)
	}
	return ""
}

// inSummary scopes a pattern to the executive summary.
func inSummary(pattern string) Matcher {
	return Scoped(ExecutiveSummary, Regex(pattern))
}

// upperContains reports whether s contains every keyword, ignoring case.
func upperContains(s string, keywords ...string) bool {
	upper := strings.ToUpper(s)
	for _, k := range keywords {
		if !strings.Contains(upper, k) {
			return false
		}
	}
	return true
}
