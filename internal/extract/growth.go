package extract

import "github.com/seenimoa/researchdesk/pkg/models"

var growthTableLabels = Labels{
	{"STRONG GROWTH BUY", "STRONG GROWTH BUY"},
	{"STRONG BUY", "STRONG GROWTH BUY"},
	{"GROWTH BUY", "GROWTH BUY"},
	{"BUY", "GROWTH BUY"},
	{"CAUTION", "CAUTION"},
	{"AVOID", "AVOID"},
	{"HOLD", "HOLD"},
}

var growthPlainLabels = Labels{
	{"STRONG GROWTH BUY", "STRONG GROWTH BUY"},
	{"GROWTH BUY", "GROWTH BUY"},
	{"🟡 HOLD", "HOLD"},
	{"HOLD/SELECTIVE BUY", "HOLD"},
	{"CAUTION", "CAUTION"},
	{"AVOID", "AVOID"},
}

var growthRules = struct {
	historical, market, sustainability, conviction []Rule[int]
	rec                                            []Rule[string]
	position, expected, bull, base, bear           []Rule[float64]
}{
	historical: []Rule[int]{
		{Line(has("HISTORICAL GROWTH QUALITY", "/"), `(\d+)/10`), IntIn(0, 10)},
		{Line(has("|", "HISTORICAL", "GROWTH"), `(\d+)/10`), IntIn(0, 10)},
	},
	market: []Rule[int]{
		{Line(anyOf(has("MARKET SPACE SCORE"), has("MARKET SPACE", "/")), `(\d+)/10`), IntIn(0, 10)},
	},
	sustainability: []Rule[int]{
		{Line(anyOf(has("GROWTH SUSTAINABILITY"), has("SUSTAINABILITY SCORE")), `(\d+)/10`), IntIn(0, 10)},
	},
	rec: []Rule[string]{
		{Line(allOf(has("|", "RECOMMENDATION"), growthTableLabels.Gate), ""), growthTableLabels.Convert},
		{Regex(`RECOMMENDATION` + bold + `[:\s]+` + signal + `\s*` + bold + `(STRONG GROWTH BUY|GROWTH BUY|HOLD|CAUTION|AVOID)\b`), growthTableLabels.Convert},
		{Line(growthPlainLabels.Gate, ""), growthPlainLabels.Convert},
	},
	conviction: []Rule[int]{
		{Line(has("CONVICTION"), `CONVICTION(?:\s+LEVEL)?` + bold + `[:\s|]+` + bold + `(\d+)/10`), IntIn(0, 10)},
	},
	position: []Rule[float64]{
		{Line(anyOf(has("POSITION SIZE", "%"), has("PORTFOLIO WEIGHT", "%")), decimal+`(?:\s*-\s*\d+(?:\.\d+)?)?%`), Float},
		{Line(has("YOUR RECOMMENDATION:", "%"), decimal+`%`), Float},
	},
	expected: []Rule[float64]{
		{Line(anyOf(has("EXPECTED", "5", "RETURN"), has("5Y RETURN")), signed+`%`), Float},
	},
	bull: []Rule[float64]{
		{Line(anyOf(has("BULL", "CASE"), has("BULL", "RETURN")), signed+`%`), Float},
		{Regex(`(?is)Bull Case.*?Total Return:\s*` + signed + `%`), Float},
	},
	base: []Rule[float64]{
		{Line(anyOf(has("BASE", "CASE"), has("BASE", "RETURN")), signed+`%`), Float},
		{Regex(`(?is)Base Case.*?Total Return:\s*` + signed + `%`), Float},
	},
	bear: []Rule[float64]{
		{Line(anyOf(has("BEAR", "CASE"), has("BEAR", "RETURN")), signed+`%`), Float},
		{Regex(`(?is)Bear Case.*?Total Return:\s*` + signed + `%`), Float},
	},
}

// Growth parses the growth analyst report.
func Growth(text string) models.GrowthSummary {
	r := growthRules
	return models.GrowthSummary{
		HistoricalQuality: Ptr(text, r.historical),
		MarketSpace:       Ptr(text, r.market),
		Sustainability:    Ptr(text, r.sustainability),
		Recommendation:    Ptr(text, r.rec),
		Conviction:        Ptr(text, r.conviction),
		PositionSize:      Ptr(text, r.position),
		ExpectedReturn5Y:  Ptr(text, r.expected),
		BullCase:          Ptr(text, r.bull),
		BaseCase:          Ptr(text, r.base),
		BearCase:          Ptr(text, r.bear),
	}
}
