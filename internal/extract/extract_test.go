package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/researchdesk/pkg/models"
)

func TestFirstFallsThroughFailedConversion(t *testing.T) {
	rules := []Rule[int]{
		{Regex(`Score: (\w+)`), Int},
		{Regex(`Score \((\d+)\)`), Int},
	}
	v, ok := First("Score: high. Score (7)", rules)
	require.True(t, ok)
	assert.Equal(t, 7, v)

	_, ok = First("nothing here", rules)
	assert.False(t, ok)
	assert.Nil(t, Ptr("nothing here", rules))
}

func TestLineMatcherSkipsGatedLinesWithoutMatch(t *testing.T) {
	text := "Market space is large\nMARKET SPACE SCORE: pending\nMarket Space Score: 8/10"
	m := Line(has("MARKET SPACE SCORE"), `(\d+)/10`)
	groups, ok := m(text)
	require.True(t, ok)
	assert.Equal(t, []string{"8"}, groups)
}

func TestExecutiveSummaryScope(t *testing.T) {
	text := "# CIO\n## EXECUTIVE SUMMARY\nFinal Recommendation: HOLD\n## SECTION 2: DETAIL\nFinal Recommendation: BUY"
	s := ExecutiveSummary(text)
	assert.Contains(t, s, "HOLD")
	assert.NotContains(t, s, "BUY")

	assert.Equal(t, "no summary", ExecutiveSummary("no summary"))
	assert.Empty(t, execOnly("no summary"))
}

func TestNumberParsing(t *testing.T) {
	f, ok := Float([]string{"1,250.50"})
	require.True(t, ok)
	assert.Equal(t, 1250.5, f)

	f, ok = Float([]string{"+12.5"})
	require.True(t, ok)
	assert.Equal(t, 12.5, f)

	_, ok = Float([]string{"abc"})
	assert.False(t, ok)

	f, ok = Midpoint([]string{"200", "250"})
	require.True(t, ok)
	assert.Equal(t, 225.0, f)

	f, ok = Midpoint([]string{"200", ""})
	require.True(t, ok)
	assert.Equal(t, 200.0, f)
}

func TestMissingFields(t *testing.T) {
	score := 7
	missing := MissingFields(models.ValueSummary{QualityScore: &score})
	assert.NotContains(t, missing, "quality_score")
	assert.Contains(t, missing, "recommendation")
	assert.Len(t, missing, 6)
	assert.Nil(t, MissingFields(42))
}

// ── Value ──

func TestValueRecommendationTableRow(t *testing.T) {
	s := Value("| Recommendation | BUY |")
	require.NotNil(t, s.Recommendation)
	assert.Equal(t, "BUY", *s.Recommendation)
}

func TestValueRecommendationBold(t *testing.T) {
	s := Value("**Recommendation**: STRONG BUY")
	require.NotNil(t, s.Recommendation)
	assert.Equal(t, "STRONG BUY", *s.Recommendation)
}

func TestValueRecommendationNormalization(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"RECOMMENDATION: **AVOID**", "REDUCE"},
		{"Our call: 🟡 **HOLD**", "HOLD"},
		{"🔴 **SELL**", "SELL"},
		{"| Recommendation | 🟢 **STRONG BUY** |", "STRONG BUY"},
	}
	for _, tt := range tests {
		s := Value(tt.text)
		require.NotNil(t, s.Recommendation, tt.text)
		assert.Equal(t, tt.want, *s.Recommendation, tt.text)
	}
}

func TestValueRecommendationIgnoresProse(t *testing.T) {
	report := "## 6. RECOMMENDATION\n" +
		"The recommendation holds only if margins recover; we stay at **RECOMMENDATION**: BUY"
	s := Value(report)
	require.NotNil(t, s.Recommendation)
	assert.Equal(t, "BUY", *s.Recommendation)

	s = Value("The recommendation buyers should weigh is a wait-and-see stance.")
	assert.Nil(t, s.Recommendation)
}

func TestValueMissingFieldsAreNil(t *testing.T) {
	s := Value("The company makes widgets. No scores were given.")
	assert.Nil(t, s.QualityScore)
	assert.Nil(t, s.Moat)
	assert.Nil(t, s.Recommendation)
	assert.Nil(t, s.Conviction)
	assert.Nil(t, s.MarginOfSafety)
	assert.Nil(t, s.IntrinsicValue)
	assert.Nil(t, s.CurrentPrice)

	assert.NotPanics(t, func() { Value("") })
}

func TestValueFullReport(t *testing.T) {
	report := `## SECTION 1: FINANCIAL QUALITY ASSESSMENT (8/10 Score)
Revenue has compounded steadily.

| Metric | Value |
|---|---|
| Moat | STRONG |
| Intrinsic Value | $1,250.50 |
| Current Price | $980.00 |
| Margin of Safety | 21.6% |

**Conviction Level**: 7/10
**Recommendation**: 🟢 **BUY**`

	s := Value(report)
	require.NotNil(t, s.QualityScore)
	assert.Equal(t, 8, *s.QualityScore)
	require.NotNil(t, s.Moat)
	assert.Equal(t, "Strong", *s.Moat)
	require.NotNil(t, s.IntrinsicValue)
	assert.Equal(t, 1250.5, *s.IntrinsicValue)
	require.NotNil(t, s.CurrentPrice)
	assert.Equal(t, 980.0, *s.CurrentPrice)
	require.NotNil(t, s.MarginOfSafety)
	assert.Equal(t, 21.6, *s.MarginOfSafety)
	require.NotNil(t, s.Conviction)
	assert.Equal(t, 7, *s.Conviction)
	require.NotNil(t, s.Recommendation)
	assert.Equal(t, "BUY", *s.Recommendation)
}

func TestValueNegativeMarginOfSafety(t *testing.T) {
	s := Value("MARGIN OF SAFETY: -12.5%\nMoat: Moderate")
	require.NotNil(t, s.MarginOfSafety)
	assert.Equal(t, -12.5, *s.MarginOfSafety)
	require.NotNil(t, s.Moat)
	assert.Equal(t, "Medium", *s.Moat)
}

// ── Growth ──

func TestGrowthTableReport(t *testing.T) {
	report := `## HISTORICAL GROWTH QUALITY (7/10)
| Dimension | Score |
|---|---|
| Market Space Score | 8/10 |
| Growth Sustainability | 6/10 |
| Recommendation | HOLD | Conviction: 6/10 |
| Position Size | 3-5% |
| Expected 5-Year Return | +85% |
| Bull Case | +150% |
| Base Case | +80% |
| Bear Case | -25% |`

	s := Growth(report)
	require.NotNil(t, s.HistoricalQuality)
	assert.Equal(t, 7, *s.HistoricalQuality)
	require.NotNil(t, s.MarketSpace)
	assert.Equal(t, 8, *s.MarketSpace)
	require.NotNil(t, s.Sustainability)
	assert.Equal(t, 6, *s.Sustainability)
	require.NotNil(t, s.Recommendation)
	assert.Equal(t, "HOLD", *s.Recommendation)
	require.NotNil(t, s.Conviction)
	assert.Equal(t, 6, *s.Conviction)
	require.NotNil(t, s.PositionSize)
	assert.Equal(t, 3.0, *s.PositionSize)
	require.NotNil(t, s.ExpectedReturn5Y)
	assert.Equal(t, 85.0, *s.ExpectedReturn5Y)
	require.NotNil(t, s.BullCase)
	assert.Equal(t, 150.0, *s.BullCase)
	require.NotNil(t, s.BaseCase)
	assert.Equal(t, 80.0, *s.BaseCase)
	require.NotNil(t, s.BearCase)
	assert.Equal(t, -25.0, *s.BearCase)
}

func TestGrowthRecommendationLabels(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"| Recommendation | STRONG BUY |", "STRONG GROWTH BUY"},
		{"| Final Recommendation | 🟢 BUY |", "GROWTH BUY"},
		{"🟢 STRONG GROWTH BUY", "STRONG GROWTH BUY"},
		{"Verdict: HOLD/SELECTIVE BUY", "HOLD"},
		{"🟠 CAUTION - growth is decelerating", "CAUTION"},
	}
	for _, tt := range tests {
		s := Growth(tt.text)
		require.NotNil(t, s.Recommendation, tt.text)
		assert.Equal(t, tt.want, *s.Recommendation, tt.text)
	}
}

func TestGrowthTableHeaderIsSkipped(t *testing.T) {
	s := Growth("| Recommendation | Rationale |\n| Recommendation | AVOID |")
	require.NotNil(t, s.Recommendation)
	assert.Equal(t, "AVOID", *s.Recommendation)
}

func TestGrowthMultilineScenarioFallback(t *testing.T) {
	report := "### Bull Scenario\nRevenue doubles.\n### Bear Scenario\nMargins compress.\n" +
		"Bull Case narrative\nassumes share gains.\nTotal Return: +140%"
	s := Growth(report)
	require.NotNil(t, s.BullCase)
	assert.Equal(t, 140.0, *s.BullCase)
	assert.Nil(t, s.BearCase)
}

// ── Risk ──

func TestRiskTableReport(t *testing.T) {
	report := `| Metric | Value |
|---|---|
| Total Red Flags | 3 |
| Business Model Risk | 18/50 |
| Management & Governance Risk | LOW |
| Valuation Risk | HIGH |
| Overall Risk Score | 45/100 |
| Risk Rating | 🟡 MODERATE RISK |
| Max Position Size | 5% |
| Bear Case Downside | -35% |
| Upside/Downside Ratio | 2.5:1 |
| Recommendation | HOLD |`

	s := Risk(report)
	require.NotNil(t, s.RedFlagsCount)
	assert.Equal(t, 3, *s.RedFlagsCount)
	require.NotNil(t, s.BusinessModelRisk)
	assert.Equal(t, 18, *s.BusinessModelRisk)
	require.NotNil(t, s.ManagementRisk)
	assert.Equal(t, "Low", *s.ManagementRisk)
	require.NotNil(t, s.ValuationRisk)
	assert.Equal(t, "High", *s.ValuationRisk)
	require.NotNil(t, s.OverallRiskScore)
	assert.Equal(t, 4.5, *s.OverallRiskScore)
	require.NotNil(t, s.RiskRating)
	assert.Equal(t, "MODERATE RISK", *s.RiskRating)
	require.NotNil(t, s.MaxPositionSize)
	assert.Equal(t, 5.0, *s.MaxPositionSize)
	require.NotNil(t, s.BearCaseDownside)
	assert.Equal(t, -35.0, *s.BearCaseDownside)
	require.NotNil(t, s.UpsideDownsideRatio)
	assert.Equal(t, 2.5, *s.UpsideDownsideRatio)
	require.NotNil(t, s.Recommendation)
	assert.Equal(t, "HOLD", *s.Recommendation)
}

func TestRiskPlainTextReport(t *testing.T) {
	report := `TOTAL FINANCIAL RED FLAGS: 0
OVERALL RISK SCORE: 7.5/10
RISK RATING: 🟠 HIGH RISK
Upside/Downside Ratio: 1.2:1
Recommendation: AVOID`

	s := Risk(report)
	require.NotNil(t, s.RedFlagsCount)
	assert.Equal(t, 0, *s.RedFlagsCount)
	require.NotNil(t, s.OverallRiskScore)
	assert.Equal(t, 7.5, *s.OverallRiskScore)
	require.NotNil(t, s.RiskRating)
	assert.Equal(t, "HIGH RISK", *s.RiskRating)
	require.NotNil(t, s.UpsideDownsideRatio)
	assert.Equal(t, 1.2, *s.UpsideDownsideRatio)
	require.NotNil(t, s.Recommendation)
	assert.Equal(t, "REDUCE", *s.Recommendation)
}

func TestRiskRedFlagsSkipsHeadings(t *testing.T) {
	report := "## 1. FINANCIAL RED FLAGS DETECTION\n" +
		"Receivables grew faster than revenue.\n" +
		"We count 4 red flags in total."
	s := Risk(report)
	require.NotNil(t, s.RedFlagsCount)
	assert.Equal(t, 4, *s.RedFlagsCount)

	s = Risk("Red flags identified: 2 (both minor)")
	require.NotNil(t, s.RedFlagsCount)
	assert.Equal(t, 2, *s.RedFlagsCount)

	s = Risk("## 1. FINANCIAL RED FLAGS DETECTION\nNothing stood out.")
	assert.Nil(t, s.RedFlagsCount)
}

func TestRiskRecommendationIgnoresProse(t *testing.T) {
	s := Risk("The recommendation holds only if leverage falls.")
	assert.Nil(t, s.Recommendation)

	s = Risk("**Recommendation**: 🟠 REDUCE")
	require.NotNil(t, s.Recommendation)
	assert.Equal(t, "REDUCE", *s.Recommendation)
}

func TestRiskExtremeRating(t *testing.T) {
	s := Risk("Given the leverage this is EXTREME territory.")
	require.NotNil(t, s.RiskRating)
	assert.Equal(t, "EXTREME RISK / AVOID", *s.RiskRating)
}

func TestRiskMissingFieldsAreNil(t *testing.T) {
	s := Risk("A short note with no structure.")
	assert.Len(t, MissingFields(s), 10)
}

// ── Decision ──

const cioReport = `# CIO SYNTHESIS: ACME
## EXECUTIVE SUMMARY
| Metric | Value |
|---|---|
| Final Recommendation | 🟢 **STRONG BUY** |
| Conviction Level | 8/10 |
| Position Size | 5-7% |
| Expected 3Y Return | +45% |
| Composite Score | 78/100 |
| CIO Fair Value | $225.50 |
| Upside to Fair Value | 15.2% |

## SECTION 2: INTEGRATED VIEW
Final Recommendation: SELL (this line is outside the summary)

## SECTION 4: SCENARIO ANALYSIS
**Bull Case (30% probability)**
Total Return: +90%
**Base Case (50% probability)**
Total Return: +40%
**Bear Case (20% probability)**
Total Return: -30%
Upside/Downside Ratio: 3.0:1

## SECTION 6: EXECUTION PLAN
Entry Price Range: $180 - $195
Stop Loss: $150
12-Month Target: $1,240.00`

func TestDecisionFullReport(t *testing.T) {
	d := Decision(cioReport)
	assert.Equal(t, "STRONG BUY", d.Recommendation)

	require.NotNil(t, d.Conviction)
	assert.Equal(t, 8, *d.Conviction)
	require.NotNil(t, d.PositionSize)
	assert.Equal(t, 5.0, *d.PositionSize)
	require.NotNil(t, d.ExpectedReturn3Y)
	assert.Equal(t, 45.0, *d.ExpectedReturn3Y)
	require.NotNil(t, d.CompositeScore)
	assert.Equal(t, 78.0, *d.CompositeScore)
	require.NotNil(t, d.FairValue)
	assert.Equal(t, 225.5, *d.FairValue)
	require.NotNil(t, d.Upside)
	assert.Equal(t, 15.2, *d.Upside)

	require.NotNil(t, d.BullReturn)
	assert.Equal(t, 90.0, *d.BullReturn)
	require.NotNil(t, d.BaseReturn)
	assert.Equal(t, 40.0, *d.BaseReturn)
	require.NotNil(t, d.BearReturn)
	assert.Equal(t, -30.0, *d.BearReturn)
	require.NotNil(t, d.BullProbability)
	assert.Equal(t, 30, *d.BullProbability)
	require.NotNil(t, d.BaseProbability)
	assert.Equal(t, 50, *d.BaseProbability)
	require.NotNil(t, d.BearProbability)
	assert.Equal(t, 20, *d.BearProbability)
	require.NotNil(t, d.UpsideDownsideRatio)
	assert.Equal(t, 3.0, *d.UpsideDownsideRatio)

	require.NotNil(t, d.EntryLow)
	require.NotNil(t, d.EntryHigh)
	assert.Equal(t, 180.0, *d.EntryLow)
	assert.Equal(t, 195.0, *d.EntryHigh)
	require.NotNil(t, d.StopLoss)
	assert.Equal(t, 150.0, *d.StopLoss)
	require.NotNil(t, d.TargetPrice)
	assert.Equal(t, 1240.0, *d.TargetPrice)
}

func TestDecisionDefaultsToNA(t *testing.T) {
	d := Decision("The committee could not reach a view.")
	assert.Equal(t, models.NoRecommendation, d.Recommendation)
	assert.Nil(t, d.Conviction)
	assert.Nil(t, d.CompositeScore)
	assert.Nil(t, d.EntryLow)
	assert.Nil(t, d.EntryHigh)
	assert.NotPanics(t, func() { Decision("") })
}

func TestDecisionPlainTextVariants(t *testing.T) {
	text := `## EXECUTIVE SUMMARY
**Final Recommendation**: 🟡 **HOLD**
Conviction: 5/10
Recommended Position Size: 2.5%
Expected 3-Year Return: +25% to +40%
COMPOSITE SCORE: 6.4/10
Fair Value Range: $1,100 - $1,300`

	d := Decision(text)
	assert.Equal(t, "HOLD", d.Recommendation)
	require.NotNil(t, d.Conviction)
	assert.Equal(t, 5, *d.Conviction)
	require.NotNil(t, d.PositionSize)
	assert.Equal(t, 2.5, *d.PositionSize)
	require.NotNil(t, d.ExpectedReturn3Y)
	assert.Equal(t, 32.5, *d.ExpectedReturn3Y)
	require.NotNil(t, d.CompositeScore)
	assert.InDelta(t, 64.0, *d.CompositeScore, 1e-9)
	require.NotNil(t, d.FairValue)
	assert.Equal(t, 1200.0, *d.FairValue)
}

func TestDecisionCompositeScales(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"Composite Score: 72/100", 72},
		{"Weighted Composite: 7.5/10", 75},
		{"Composite: 8.2", 82},
		{"Composite: 81", 81},
	}
	for _, tt := range tests {
		d := Decision(tt.text)
		require.NotNil(t, d.CompositeScore, tt.text)
		assert.InDelta(t, tt.want, *d.CompositeScore, 1e-9, tt.text)
	}
}

func TestDecisionRecommendationFallbacks(t *testing.T) {
	d := Decision("## SECTION 5: FINAL CALL\n**Rating**: 🔴 **SELL**")
	assert.Equal(t, "SELL", d.Recommendation)

	d = Decision("## EXECUTIVE SUMMARY\nWe lean 🟠 and would REDUCE exposure.")
	assert.Equal(t, "REDUCE", d.Recommendation)
}

func TestDecisionPriceFallbacks(t *testing.T) {
	text := "We would accumulate near $95 - $100 and exit if price falls below $80. " +
		"Shares could reach $140 within a year."
	d := Decision(text)
	require.NotNil(t, d.EntryLow)
	assert.Equal(t, 95.0, *d.EntryLow)
	assert.Equal(t, 100.0, *d.EntryHigh)
	require.NotNil(t, d.StopLoss)
	assert.Equal(t, 80.0, *d.StopLoss)
	require.NotNil(t, d.TargetPrice)
	assert.Equal(t, 140.0, *d.TargetPrice)
}
