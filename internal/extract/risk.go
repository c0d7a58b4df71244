package extract

import (
	"strings"

	"github.com/seenimoa/researchdesk/pkg/models"
)

const (
	ratingExtreme  = "EXTREME RISK / AVOID"
	ratingHigh     = "HIGH RISK"
	ratingModerate = "MODERATE RISK"
	ratingLow      = "LOW RISK"
)

var riskRatingLabels = Labels{
	{"EXTREME", ratingExtreme},
	{"AVOID", ratingExtreme},
	{"HIGH RISK", ratingHigh},
	{"MODERATE", ratingModerate},
	{"MEDIUM", ratingModerate},
	{"LOW RISK", ratingLow},
}

var riskSignalLabels = Labels{
	{"🟢 LOW RISK", ratingLow},
	{"🟡 MODERATE RISK", ratingModerate},
	{"🟠 HIGH RISK", ratingHigh},
	{"🔴 EXTREME RISK", ratingExtreme},
}

var riskRecLabels = Labels{
	{"REDUCE", "REDUCE"},
	{"AVOID", "REDUCE"},
	{"SELL", "SELL"},
	{"BUY", "BUY"},
	{"HOLD", "HOLD"},
}

const riskLevel = `\b(LOW|MEDIUM|MODERATE|HIGH)\b`

// level title-cases a LOW/MEDIUM/MODERATE/HIGH capture.
func level(groups []string) (string, bool) {
	s := strings.ToLower(groups[0])
	if s == "" {
		return "", false
	}
	return strings.ToUpper(s[:1]) + s[1:], true
}

// overallScore normalizes "65/100" and "6.5/10" to a 0-10 score.
func overallScore(groups []string) (float64, bool) {
	f, ok := Float(groups)
	if !ok {
		return 0, false
	}
	if len(groups) > 1 && groups[1] == "100" {
		f /= 10
	}
	return f, f >= 0 && f <= 10
}

var riskRules = struct {
	flags, businessModel []Rule[int]
	mgmt, valuation      []Rule[string]
	rating, rec          []Rule[string]
	overall, maxPosition []Rule[float64]
	bearDownside, ratio  []Rule[float64]
}{
	flags: []Rule[int]{
		{Regex(`TOTAL FINANCIAL RED FLAGS` + bold + `:\s*` + bold + `(\d+)`), IntIn(0, 20)},
		{Regex(`\|\s*(?:Total\s+)?(?:Financial\s+)?Red Flags?[^|]*\|\s*` + bold + `(\d+)`), IntIn(0, 20)},
		{Line(allOf(has("RED FLAG"), notHeading), `(\d+)\s+(?:FINANCIAL\s+)?RED FLAGS?`), IntIn(0, 20)},
		{Line(allOf(has("RED FLAG"), notHeading), `RED FLAGS?[^\d\n]{0,20}?(\d+)`), IntIn(0, 20)},
	},
	businessModel: []Rule[int]{
		{Line(has("BUSINESS MODEL RISK", "/50"), `(\d+)/50`), IntIn(0, 50)},
	},
	mgmt: []Rule[string]{
		{Line(anyOf(has("MANAGEMENT", "RISK"), has("MANAGEMENT", "GOVERNANCE")), riskLevel), level},
	},
	valuation: []Rule[string]{
		{Line(has("VALUATION RISK"), riskLevel), level},
	},
	overall: []Rule[float64]{
		{Line(anyOf(has("OVERALL RISK SCORE"), has("OVERALL RISK", "/")), decimal+`/(100|10)\b`), overallScore},
	},
	rating: []Rule[string]{
		{Line(allOf(has("|", "RISK RATING"), riskRatingLabels.Gate), ""), riskRatingLabels.Convert},
		{Regex(`RISK RATING` + bold + `[:\s]+` + signal + `\s*` + bold + `(EXTREME RISK|HIGH RISK|MODERATE RISK|LOW RISK)`), riskRatingLabels.Convert},
		{Line(riskSignalLabels.Gate, ""), riskSignalLabels.Convert},
		{Line(has("LOW RISK", "RISK SCORE 0-4"), ""), Const(ratingLow)},
		{Line(has("MODERATE RISK", "RISK SCORE 5-6"), ""), Const(ratingModerate)},
		{Line(has("HIGH RISK", "RISK SCORE 7-8"), ""), Const(ratingHigh)},
		{Line(has("EXTREME"), ""), Const(ratingExtreme)},
	},
	maxPosition: []Rule[float64]{
		{Line(anyOf(has("POSITION SIZE", "%"), has("PORTFOLIO WEIGHT", "%")), decimal+`%`), Float},
	},
	bearDownside: []Rule[float64]{
		{Line(anyOf(has("BEAR CASE"), has("DOWNSIDE")), `(-\d+(?:\.\d+)?)%`), Float},
	},
	ratio: []Rule[float64]{
		{Regex(`Upside/Downside Ratio` + bold + `:\s*` + bold + decimal + `:1`), Float},
		{Line(anyOf(has("UPSIDE/DOWNSIDE"), has("UPSIDE-DOWNSIDE")), decimal+`:1`), Float},
	},
	rec: []Rule[string]{
		{Line(allOf(has("|", "RECOMMENDATION"), riskRecLabels.Gate), ""), riskRecLabels.Convert},
		{Regex(`RECOMMENDATION` + bold + `[:\s]+` + signal + `\s*` + bold + `(STRONG BUY|BUY|HOLD|REDUCE|SELL|AVOID)\b`), riskRecLabels.Convert},
	},
}

// Risk parses the risk analyst report.
func Risk(text string) models.RiskSummary {
	r := riskRules
	return models.RiskSummary{
		RedFlagsCount:       Ptr(text, r.flags),
		BusinessModelRisk:   Ptr(text, r.businessModel),
		ManagementRisk:      Ptr(text, r.mgmt),
		ValuationRisk:       Ptr(text, r.valuation),
		OverallRiskScore:    Ptr(text, r.overall),
		RiskRating:          Ptr(text, r.rating),
		MaxPositionSize:     Ptr(text, r.maxPosition),
		BearCaseDownside:    Ptr(text, r.bearDownside),
		UpsideDownsideRatio: Ptr(text, r.ratio),
		Recommendation:      Ptr(text, r.rec),
	}
}
