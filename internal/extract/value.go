package extract

import "github.com/seenimoa/researchdesk/pkg/models"

const (
	valueRecs = `(STRONG BUY|BUY|HOLD|REDUCE|SELL|AVOID)\b`
	decimal   = `(\d+(?:\.\d+)?)`
	signed    = `([+-]?\d+(?:\.\d+)?)`
	money     = `(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`
	bold      = `\*?\*?`
	signal    = `(?:🟢|🟡|🟠|🔴)?`
)

var valueRecLabels = Labels{
	{"STRONG BUY", "STRONG BUY"},
	{"BUY", "BUY"},
	{"HOLD", "HOLD"},
	{"REDUCE", "REDUCE"},
	{"AVOID", "REDUCE"},
	{"SELL", "SELL"},
}

var moatLabels = Labels{
	{"STRONG", "Strong"},
	{"MEDIUM", "Medium"},
	{"MODERATE", "Medium"},
	{"WEAK", "Weak"},
	{"NONE", "None"},
}

var valueRules = struct {
	quality, conviction []Rule[int]
	moat, rec           []Rule[string]
	mos, iv, price      []Rule[float64]
}{
	quality: []Rule[int]{
		{Regex(`(?is)FINANCIAL QUALITY ASSESSMENT.*?\((\d+)/10`), IntIn(0, 10)},
		{Regex(`TOTAL FINANCIAL QUALITY SCORE[:\s]+` + bold + `(\d+)/10`), IntIn(0, 10)},
		{Regex(`\|\s*Financial Quality Score\s*\|\s*` + bold + `(\d+)/10`), IntIn(0, 10)},
		{Regex(`Quality Score[:\s]+` + bold + `(\d+)/10`), IntIn(0, 10)},
		{Regex(`\*\*Quality Score\*\*[:\s]+(\d+)/10`), IntIn(0, 10)},
	},
	moat: []Rule[string]{
		{Regex(`\|\s*Moat(?:\s+Rating)?\s*\|\s*` + bold + `(STRONG|MEDIUM|MODERATE|WEAK|NONE)`), moatLabels.Convert},
		{Regex(`MOAT(?:\s+RATING)?[:\s]+` + bold + `(STRONG|MEDIUM|MODERATE|WEAK|NONE)`), moatLabels.Convert},
		{Regex(`\*\*Moat(?:\s+Rating)?\*\*[:\s]+` + bold + `(STRONG|MEDIUM|MODERATE|WEAK|NONE)`), moatLabels.Convert},
	},
	rec: []Rule[string]{
		{Regex(`\|\s*Recommendation\s*\|\s*` + signal + `\s*` + bold + valueRecs), valueRecLabels.Convert},
		{Regex(`\*\*Recommendation\*\*[:\s]+` + signal + `\s*` + bold + valueRecs), valueRecLabels.Convert},
		{Regex(`RECOMMENDATION[:\s]+` + bold + valueRecs), valueRecLabels.Convert},
		{Regex(`🟢\s*\*\*(STRONG BUY|BUY)\*\*`), valueRecLabels.Convert},
		{Regex(`🟡\s*\*\*(HOLD)\*\*`), valueRecLabels.Convert},
		{Regex(`🟠\s*\*\*(REDUCE)\*\*`), valueRecLabels.Convert},
		{Regex(`🔴\s*\*\*(SELL|AVOID)\*\*`), valueRecLabels.Convert},
	},
	conviction: []Rule[int]{
		{Regex(`\|\s*Conviction(?:\s+Level)?\s*\|\s*` + bold + `(\d+)/10`), IntIn(0, 10)},
		{Regex(`CONVICTION(?:\s+LEVEL)?[:\s]+` + bold + `(\d+)/10`), IntIn(0, 10)},
		{Regex(`\*\*Conviction(?:\s+Level)?\*\*[:\s]+` + bold + `(\d+)/10`), IntIn(0, 10)},
	},
	mos: []Rule[float64]{
		{Regex(`\|\s*Margin of Safety\s*\|\s*` + bold + signed + `%`), Float},
		{Regex(`MARGIN OF SAFETY[:\s]+` + bold + signed + `%`), Float},
		{Regex(`\*\*Margin of Safety\*\*[:\s]+` + bold + signed + `%`), Float},
	},
	iv: []Rule[float64]{
		{Regex(`\|\s*Intrinsic Value\s*\|\s*` + bold + `\$` + money), Float},
		{Regex(`INTRINSIC VALUE[:\s]+` + bold + `\$` + money), Float},
		{Regex(`\*\*Intrinsic Value\*\*[:\s]+` + bold + `\$` + money), Float},
		{Regex(`Fair Value[:\s]+` + bold + `\$` + money), Float},
	},
	price: []Rule[float64]{
		{Regex(`\|\s*Current Price\s*\|\s*` + bold + `\$` + money), Float},
		{Regex(`CURRENT PRICE[:\s]+` + bold + `\$` + money), Float},
		{Regex(`\*\*Current Price\*\*[:\s]+` + bold + `\$` + money), Float},
	},
}

// Value parses the value analyst report.
func Value(text string) models.ValueSummary {
	r := valueRules
	return models.ValueSummary{
		QualityScore:   Ptr(text, r.quality),
		Moat:           Ptr(text, r.moat),
		Recommendation: Ptr(text, r.rec),
		Conviction:     Ptr(text, r.conviction),
		MarginOfSafety: Ptr(text, r.mos),
		IntrinsicValue: Ptr(text, r.iv),
		CurrentPrice:   Ptr(text, r.price),
	}
}
