package extract

import (
	"strings"

	"github.com/seenimoa/researchdesk/pkg/models"
)

const cioRecs = `(STRONG GROWTH BUY|GROWTH BUY|STRONG BUY|BUY|HOLD|REDUCE|SELL)\b`

// signalRecommendation is the last resort for the final call: a colored
// signal and a label anywhere in the executive summary.
func signalRecommendation(text string) ([]string, bool) {
	summary := execOnly(text)
	if summary == "" {
		return nil, false
	}
	for _, c := range []struct{ signal, label string }{
		{"🟢", "STRONG BUY"},
		{"🟢", "BUY"},
		{"🟡", "HOLD"},
		{"🟠", "REDUCE"},
		{"🔴", "SELL"},
	} {
		if strings.Contains(summary, c.signal) && upperContains(summary, c.label) {
			return []string{c.label}, true
		}
	}
	return nil, false
}

func upper(groups []string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(groups[0]))
	return s, s != ""
}

// composite keeps 0-100 values and lifts 0-10 values onto that scale.
func composite(groups []string) (float64, bool) {
	f, ok := Float(groups)
	if !ok || f < 0 {
		return 0, false
	}
	if f <= 10 {
		f *= 10
	}
	return f, f <= 100
}

var decisionRules = struct {
	rec                                []Rule[string]
	conviction                         []Rule[int]
	bullProb, baseProb, bearProb       []Rule[int]
	position, expected, score          []Rule[float64]
	fairValue, upside, ratio           []Rule[float64]
	bull, base, bear, stopLoss, target []Rule[float64]
	entry                              []Rule[[2]float64]
}{
	rec: []Rule[string]{
		{inSummary(`\|[^|]*Final\s+Recommendation[^|]*\|[^|A-Za-z]*` + cioRecs), upper},
		{inSummary(bold + `Final Recommendation` + bold + `:\s*` + signal + `\s*` + bold + cioRecs), upper},
		{Regex(bold + `Rating` + bold + `:\s*` + signal + `\s*` + bold + cioRecs), upper},
		{signalRecommendation, upper},
	},
	conviction: []Rule[int]{
		{inSummary(`\|\s*Conviction\s*(?:Level)?\s*\|\s*` + bold + `(\d+)/10`), IntIn(0, 10)},
		{inSummary(`\*\*Conviction(?:\s+Level)?\*\*\s*:\s*` + bold + `(\d+)/10`), IntIn(0, 10)},
		{inSummary(`Conviction(?:\s+Level)?\s*:\s*` + bold + `(\d+)/10`), IntIn(0, 10)},
		{Regex(`Conviction(?:\s+Level)?` + bold + `\s*:\s*` + bold + `(\d+)/10`), IntIn(0, 10)},
	},
	position: []Rule[float64]{
		{inSummary(`\|[^|]*Position\s+Size[^|]*\|[^|0-9]*` + decimal + `[^|]*%`), Float},
		{inSummary(bold + `(?:Recommended Position(?:\s+Size)?|Position Size|FINAL POSITION)` + bold + `:\s*` + bold + decimal + `%`), Float},
		{Regex(bold + `(?:Recommended Position(?:\s+Size)?|Position Size|FINAL POSITION)` + bold + `:\s*` + bold + decimal + `%`), Float},
	},
	expected: []Rule[float64]{
		{inSummary(bold + `Expected (?:3-Year|3Y) Return` + bold + `:\s*` + bold + `\+?` + decimal + `%?\s*to\s*\+?` + decimal + `%`), Midpoint},
		{Regex(bold + `Expected (?:3-Year|3Y) Return` + bold + `:\s*` + bold + `\+?` + decimal + `%?\s*to\s*\+?` + decimal + `%`), Midpoint},
		{Regex(bold + `Expected (?:3-Year|3Y) Return` + bold + `:\s*` + bold + signed + `%`), Float},
		{inSummary(`\|[^|]*Expected\s+(?:3-Year|3Y)\s+Return[^|]*\|[^|0-9+-]*` + signed + `%`), Float},
	},
	score: []Rule[float64]{
		{Regex(bold + `COMPOSITE SCORE` + bold + `:\s*` + bold + decimal + `/10\b`), Scaled(10)},
		{inSummary(`\|[^|]*Composite\s+(?:Quality\s+)?Score[^|]*\|[^|0-9]*` + decimal + `/100`), Float},
		{inSummary(`\|[^|]*Composite\s+(?:Quality\s+)?Score[^|]*\|[^|0-9]*` + decimal + `/10\b`), Scaled(10)},
		{Regex(`Composite\s+(?:Quality\s+)?Score` + bold + `:\s*` + bold + decimal + `/100`), Float},
		{Regex(`(?:Weighted Composite|Integrated Score)` + bold + `:\s*` + bold + decimal + `/10\b`), Scaled(10)},
		{Regex(`(?im)^\s*` + bold + `Composite` + bold + `:\s*` + bold + decimal), composite},
	},
	fairValue: []Rule[float64]{
		{inSummary(`\|[^|]*CIO\s+Fair\s+Value[^|]*\|[^|$]*\$` + money + `(?:\s*(?:-|–|to)\s*\$` + money + `)?`), Midpoint},
		{Regex(`(?:CIO Fair Value|Fair Value Range|Fair Value Estimate)` + bold + `:\s*` + bold + `\$` + money + `\s*(?:-|–|to)\s*\$` + money), Midpoint},
		{Regex(`(?:CIO Fair Value|Fair Value)` + bold + `:\s*` + bold + `\$` + money), Float},
		{Regex(`fair value\s+(?:around|near|at|of)\s+\$` + money), Float},
	},
	upside: []Rule[float64]{
		{inSummary(`\|[^|]*Upside\s+to\s+Fair\s+Value[^|]*\|[^|0-9+-]*` + signed + `%`), Float},
		{Regex(`Upside(?:\s+to\s+Fair\s+Value)?` + bold + `:\s*` + bold + signed + `%`), Float},
	},
	bull: []Rule[float64]{
		{Regex(`(?is)Bull Case.*?(?:Total Return|Return):\s*` + bold + signed + `%`), Float},
	},
	base: []Rule[float64]{
		{Regex(`(?is)Base Case.*?(?:Total Return|Return):\s*` + bold + signed + `%`), Float},
	},
	bear: []Rule[float64]{
		{Regex(`(?is)Bear Case.*?(?:Total Return|Return):\s*` + bold + signed + `%`), Float},
	},
	bullProb: []Rule[int]{
		{Regex(`Bull Case` + bold + `\s*\((\d+)%`), IntIn(0, 100)},
		{Regex(`Bull Case[^\n]*?Probability` + bold + `:\s*(\d+)%`), IntIn(0, 100)},
	},
	baseProb: []Rule[int]{
		{Regex(`Base Case` + bold + `\s*\((\d+)%`), IntIn(0, 100)},
		{Regex(`Base Case[^\n]*?Probability` + bold + `:\s*(\d+)%`), IntIn(0, 100)},
	},
	bearProb: []Rule[int]{
		{Regex(`Bear Case` + bold + `\s*\((\d+)%`), IntIn(0, 100)},
		{Regex(`Bear Case[^\n]*?Probability` + bold + `:\s*(\d+)%`), IntIn(0, 100)},
	},
	ratio: []Rule[float64]{
		{Regex(`Upside/Downside Ratio` + bold + `:\s*` + bold + decimal + `:1`), Float},
	},
	entry: []Rule[[2]float64]{
		{Regex(`(?:Target )?Entry(?:\s+Price)?\s+(?:Range|Zone)` + bold + `:\s*` + bold + `\$` + money + `\s*(?:-|–|to)\s*\$` + money), Pair},
		{Regex(`(?:enter|buy)\s+(?:at|between)\s+\$` + money + `\s+(?:and|to|or)\s+\$` + money), Pair},
		{Regex(`accumulate\s+(?:at|near)\s+\$` + money + `\s*(?:-|–|to)\s*\$` + money), Pair},
	},
	stopLoss: []Rule[float64]{
		{Regex(`(?:Stop Loss|Stop)` + bold + `:\s*` + bold + `\$` + money), Float},
		{Regex(`stop(?:\s+loss)?\s+(?:at|below)\s+\$` + money), Float},
		{Regex(`exit\s+if\s+(?:price\s+)?falls\s+below\s+\$` + money), Float},
	},
	target: []Rule[float64]{
		{Regex(`(?:Target Price|Price Target|12-Month Target|Target)` + bold + `:\s*` + bold + `\$` + money), Float},
		{Regex(`target(?:\s+of)?\s+\$` + money + `\s*(?:-|–|to)\s*\$` + money), Nth(1)},
		{Regex(`reach\s+\$` + money), Float},
	},
}

// Decision parses the CIO synthesis. The recommendation falls back to
// models.NoRecommendation.
func Decision(text string) models.Decision {
	r := decisionRules
	d := models.Decision{
		Recommendation:      models.NoRecommendation,
		Conviction:          Ptr(text, r.conviction),
		PositionSize:        Ptr(text, r.position),
		ExpectedReturn3Y:    Ptr(text, r.expected),
		CompositeScore:      Ptr(text, r.score),
		FairValue:           Ptr(text, r.fairValue),
		Upside:              Ptr(text, r.upside),
		BullReturn:          Ptr(text, r.bull),
		BaseReturn:          Ptr(text, r.base),
		BearReturn:          Ptr(text, r.bear),
		BullProbability:     Ptr(text, r.bullProb),
		BaseProbability:     Ptr(text, r.baseProb),
		BearProbability:     Ptr(text, r.bearProb),
		UpsideDownsideRatio: Ptr(text, r.ratio),
		StopLoss:            Ptr(text, r.stopLoss),
		TargetPrice:         Ptr(text, r.target),
	}
	if rec, ok := First(text, r.rec); ok {
		d.Recommendation = rec
	}
	if e, ok := First(text, r.entry); ok {
		d.EntryLow, d.EntryHigh = &e[0], &e[1]
	}
	return d
}
