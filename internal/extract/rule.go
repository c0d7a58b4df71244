// Package extract recovers structured fields from the free-text reports the
// analyst stages produce. Every field is an ordered chain of rules, strict
// patterns first; the first rule that both matches and converts wins. A miss
// leaves the field nil. Nothing here returns an error or panics on odd input.
package extract

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Matcher finds a candidate in text and returns its captures. Patterns
// without groups yield the whole match as the single capture.
type Matcher func(text string) ([]string, bool)

// Rule pairs a matcher with the conversion of its captures.
type Rule[T any] struct {
	Match   Matcher
	Convert func(groups []string) (T, bool)
}

// First runs the rules in order and returns the first converted value.
func First[T any](text string, rules []Rule[T]) (T, bool) {
	for _, r := range rules {
		groups, ok := r.Match(text)
		if !ok {
			continue
		}
		if v, ok := r.Convert(groups); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Ptr is First with the result as a pointer; nil on a miss.
func Ptr[T any](text string, rules []Rule[T]) *T {
	v, ok := First(text, rules)
	if !ok {
		return nil
	}
	return &v
}

// ── Matchers ──

// Regex matches the first occurrence of a pattern anywhere in the text.
// Patterns are case-insensitive unless they set their own flags.
func Regex(pattern string) Matcher {
	re := compile(pattern)
	return func(text string) ([]string, bool) {
		return submatch(re, text)
	}
}

// Line returns a matcher over individual lines: the first line whose
// upper-cased form passes gate and matches pattern. An empty pattern yields
// the line itself.
func Line(gate func(upper string) bool, pattern string) Matcher {
	var re *regexp.Regexp
	if pattern != "" {
		re = compile(pattern)
	}
	return func(text string) ([]string, bool) {
		for _, line := range strings.Split(text, "\n") {
			if !gate(strings.ToUpper(line)) {
				continue
			}
			if re == nil {
				return []string{line}, true
			}
			if groups, ok := submatch(re, line); ok {
				return groups, true
			}
		}
		return nil, false
	}
}

// Scoped narrows the text with scope before applying m.
func Scoped(scope func(string) string, m Matcher) Matcher {
	return func(text string) ([]string, bool) {
		return m(scope(text))
	}
}

func compile(pattern string) *regexp.Regexp {
	if !strings.HasPrefix(pattern, "(?") {
		pattern = "(?i)" + pattern
	}
	return regexp.MustCompile(pattern)
}

func submatch(re *regexp.Regexp, text string) ([]string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	if len(m) == 1 {
		return m, true
	}
	return m[1:], true
}

// ── Gates ──

// has builds a gate that requires every keyword.
func has(keywords ...string) func(string) bool {
	return func(upper string) bool {
		for _, k := range keywords {
			if !strings.Contains(upper, k) {
				return false
			}
		}
		return true
	}
}

// anyOf builds a gate that passes when one of the gates passes.
func anyOf(gates ...func(string) bool) func(string) bool {
	return func(upper string) bool {
		for _, g := range gates {
			if g(upper) {
				return true
			}
		}
		return false
	}
}

// allOf builds a gate that passes when every gate passes.
func allOf(gates ...func(string) bool) func(string) bool {
	return func(upper string) bool {
		for _, g := range gates {
			if !g(upper) {
				return false
			}
		}
		return true
	}
}

// notHeading rejects markdown headings, whose section numbers read like
// counts.
func notHeading(upper string) bool {
	return !strings.HasPrefix(strings.TrimSpace(upper), "#")
}

// ── Converters ──

// Int parses the first capture as an integer.
func Int(groups []string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(groups[0]))
	return n, err == nil
}

// IntIn parses the first capture and requires lo <= n <= hi.
func IntIn(lo, hi int) func([]string) (int, bool) {
	return func(groups []string) (int, bool) {
		n, ok := Int(groups)
		return n, ok && n >= lo && n <= hi
	}
}

// Float parses the first capture as a number, ignoring thousands
// separators and a leading plus sign.
func Float(groups []string) (float64, bool) {
	return parseNumber(groups[0])
}

// Scaled parses the first capture and multiplies it by factor.
func Scaled(factor float64) func([]string) (float64, bool) {
	return func(groups []string) (float64, bool) {
		f, ok := Float(groups)
		return f * factor, ok
	}
}

// Midpoint averages the first two captures. A missing second capture
// falls back to the first.
func Midpoint(groups []string) (float64, bool) {
	lo, ok := parseNumber(groups[0])
	if !ok {
		return 0, false
	}
	if len(groups) < 2 || groups[1] == "" {
		return lo, true
	}
	hi, ok := parseNumber(groups[1])
	if !ok {
		return 0, false
	}
	return (lo + hi) / 2, true
}

// Nth parses capture i.
func Nth(i int) func([]string) (float64, bool) {
	return func(groups []string) (float64, bool) {
		if i >= len(groups) {
			return 0, false
		}
		return parseNumber(groups[i])
	}
}

// Const ignores the captures and yields v.
func Const[T any](v T) func([]string) (T, bool) {
	return func([]string) (T, bool) { return v, true }
}

// Pair parses the first two captures as a low/high range.
func Pair(groups []string) ([2]float64, bool) {
	if len(groups) < 2 {
		return [2]float64{}, false
	}
	lo, ok1 := parseNumber(groups[0])
	hi, ok2 := parseNumber(groups[1])
	return [2]float64{lo, hi}, ok1 && ok2
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// Labels is an ordered keyword → canonical label table. Lookup returns the
// label of the first keyword contained in the upper-cased candidate.
type Labels []struct{ Keyword, Label string }

// Lookup finds the label for s.
func (l Labels) Lookup(s string) (string, bool) {
	upper := strings.ToUpper(s)
	for _, e := range l {
		if strings.Contains(upper, e.Keyword) {
			return e.Label, true
		}
	}
	return "", false
}

// Convert maps the first capture through the table.
func (l Labels) Convert(groups []string) (string, bool) {
	return l.Lookup(groups[0])
}

// Gate passes lines containing any keyword of the table.
func (l Labels) Gate(upper string) bool {
	_, ok := l.Lookup(upper)
	return ok
}

// ── Inspection ──

// MissingFields lists the JSON names of nil pointer fields in a summary
// struct. Used for debug logging of parse misses.
func MissingFields(summary any) []string {
	v := reflect.Indirect(reflect.ValueOf(summary))
	if v.Kind() != reflect.Struct {
		return nil
	}
	var missing []string
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() != reflect.Ptr || !f.IsNil() {
			continue
		}
		name := strings.Split(t.Field(i).Tag.Get("json"), ",")[0]
		if name == "" {
			name = t.Field(i).Name
		}
		missing = append(missing, name)
	}
	return missing
}
