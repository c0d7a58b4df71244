package briefing

import (
	"fmt"
	"strings"

	"github.com/seenimoa/researchdesk/pkg/models"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

const (
	challengeLen   = 2000
	riskNewsTitles = 15
)

var (
	doubleRule = strings.Repeat("═", 79)
	thinRule   = strings.Repeat("─", 79)
)

func writeCompanyOverview(b *strings.Builder, d *models.CompanyData) {
	b.WriteString("## COMPANY OVERVIEW\n")
	fmt.Fprintf(b, "**Company**: %s (%s)\n", d.DisplayName(), d.Ticker)
	fmt.Fprintf(b, "**Sector**: %s\n", orNA(d.Profile.Sector))
	fmt.Fprintf(b, "**Industry**: %s\n", orNA(d.Profile.Industry))
	fmt.Fprintf(b, "**Market Cap**: $%.2fB\n", utils.ToBillions(d.Market.MarketCap))
	fmt.Fprintf(b, "**Current Price**: $%.2f\n", d.Market.CurrentPrice)
	fmt.Fprintf(b, "**Shares Outstanding**: %.2fB\n\n", utils.ToBillions(d.Market.SharesOutstanding))
}

// Value is the context for the value analyst. valuation is the
// deterministic cross-check report computed before any stage ran.
func Value(d *models.CompanyData, business, valuation string) string {
	var b strings.Builder
	writeCompanyOverview(&b, d)
	fmt.Fprintf(&b, "## BUSINESS UNDERSTANDING\n\n%s\n\n", business)

	b.WriteString("## FINANCIAL DATA\n")
	writeStatements(&b, d.Statements)

	b.WriteString("## QUALITY INDICATORS\n\n")
	writeFlags(&b, d.RedFlags)
	fmt.Fprintf(&b, "FCF / Net Income: %.1f%%\n", d.RedFlags.FCFToNetIncome*100)
	fmt.Fprintf(&b, "Goodwill / Assets: %.1f%%\n", d.RedFlags.GoodwillPct)
	fmt.Fprintf(&b, "Interest Coverage: %sx\n\n", utils.OrNA("%.1f", d.RedFlags.InterestCoverage))

	m := d.Metrics
	b.WriteString("## CALCULATED METRICS\n\n")
	fmt.Fprintf(&b, "**Growth**: Revenue CAGR %.1f%%, Earnings CAGR %.1f%%, FCF CAGR %.1f%%\n",
		m.Growth.RevenueCAGR*100, m.Growth.EarningsCAGR*100, m.Growth.FCFCAGR*100)
	fmt.Fprintf(&b, "**Profitability**: Gross %.1f%%, Operating %.1f%%, Net %.1f%%, FCF %.1f%%\n",
		m.Profitability.AvgGrossMargin, m.Profitability.AvgOpMargin, m.Profitability.AvgNetMargin, m.Profitability.AvgFCFMargin)
	fmt.Fprintf(&b, "**Returns**: ROE %.1f%%, ROA %.1f%%, ROIC %.1f%%\n",
		m.Returns.AvgROE, m.Returns.AvgROA, m.Returns.AvgROIC)
	fmt.Fprintf(&b, "**Leverage**: Debt/Equity %.2f, Current Ratio %.2f, Net Debt $%.2fB\n",
		m.Leverage.DebtToEquity, m.Leverage.CurrentRatio, utils.ToBillions(m.Leverage.NetDebt))
	fmt.Fprintf(&b, "**Efficiency**: Asset Turnover %.2f, Inventory Turnover %.2f, DSO %.0f days\n\n",
		m.Efficiency.AssetTurnover, m.Efficiency.InventoryTurnover, m.Efficiency.DSO)

	v := d.Valuation
	b.WriteString("## CURRENT VALUATION MULTIPLES\n\n")
	fmt.Fprintf(&b, "- Trailing P/E: %s\n", utils.OrNA("%.2f", v.TrailingPE))
	fmt.Fprintf(&b, "- Forward P/E: %s\n", utils.OrNA("%.2f", v.ForwardPE))
	fmt.Fprintf(&b, "- Price/Sales: %s\n", utils.OrNA("%.2f", v.PriceToSales))
	fmt.Fprintf(&b, "- Price/Book: %s\n", utils.OrNA("%.2f", v.PriceToBook))
	fmt.Fprintf(&b, "- Enterprise Value: $%.2fB\n", utils.ToBillions(v.EnterpriseValue))
	fmt.Fprintf(&b, "- EV/Revenue: %s\n", utils.OrNA("%.2f", v.EVToRevenue))
	fmt.Fprintf(&b, "- EV/EBITDA: %s\n\n", utils.OrNA("%.2f", v.EVToEBITDA))

	if valuation != "" {
		b.WriteString(valuation)
		b.WriteString("\n")
	}
	return b.String()
}

// Growth is the context for the growth analyst.
func Growth(d *models.CompanyData, business string) string {
	var b strings.Builder
	writeCompanyOverview(&b, d)
	fmt.Fprintf(&b, "## BUSINESS CONTEXT\n\n%s\n\n", business)

	b.WriteString("## GROWTH DATA\n\n### REVENUE & EARNINGS (5-Year Trend)\n")
	for _, r := range firstN(d.Statements.Income) {
		fmt.Fprintf(&b, "%s: Revenue $%.2fB, Net Income $%.2fB\n",
			r.Year, utils.ToBillions(r.Revenue), utils.ToBillions(r.NetIncome))
	}

	b.WriteString("\n### MARGIN TRENDS\n")
	for _, y := range firstN(d.Metrics.Profitability.ByYear) {
		fmt.Fprintf(&b, "%s: Gross %.1f%%, Operating %.1f%%, Net %.1f%%\n", y.Year, y.GrossMargin, y.OpMargin, y.NetMargin)
	}

	g := d.Metrics.Growth
	b.WriteString("\n### GROWTH RATES (CAGR)\n")
	fmt.Fprintf(&b, "- Revenue CAGR: %.1f%%\n", g.RevenueCAGR*100)
	fmt.Fprintf(&b, "- Earnings CAGR: %.1f%%\n", g.EarningsCAGR*100)
	fmt.Fprintf(&b, "- FCF CAGR: %.1f%%\n", g.FCFCAGR*100)

	b.WriteString("\n### FREE CASH FLOW TREND\n")
	for _, r := range firstN(d.Statements.CashFlow) {
		fmt.Fprintf(&b, "%s: FCF $%.2fB, CapEx $%.2fB\n", r.Year, utils.ToBillions(r.FreeCashFlow), utils.ToBillions(r.CapEx))
	}

	b.WriteString("\n### RETURNS ON CAPITAL\n")
	for _, y := range firstN(d.Metrics.Returns.ByYear) {
		fmt.Fprintf(&b, "%s: ROE %.1f%%, ROIC %.1f%%\n", y.Year, y.ROE, y.ROIC)
	}
	return b.String()
}

// Risk is the context for the risk analyst. The value and growth reports
// are included, shortened, so they can be challenged.
func Risk(d *models.CompanyData, business, value, growth string) string {
	var b strings.Builder
	writeCompanyOverview(&b, d)
	fmt.Fprintf(&b, "## BUSINESS CONTEXT\n\n%s\n\n", business)

	b.WriteString("## RISK DATA\n\n### BALANCE SHEET METRICS (5-Year)\n")
	for _, r := range firstN(d.Statements.Balance) {
		fmt.Fprintf(&b, "%s: Cash $%.1fB, Debt $%.1fB, Equity $%.1fB, A/R $%.1fB, Inv $%.1fB\n",
			r.Year, utils.ToBillions(r.Cash), utils.ToBillions(r.TotalDebt), utils.ToBillions(r.TotalEquity),
			utils.ToBillions(r.AccountsReceivable), utils.ToBillions(r.Inventory))
	}

	b.WriteString("\n### FCF vs NET INCOME COMPARISON\n")
	inc := firstN(d.Statements.Income)
	cf := firstN(d.Statements.CashFlow)
	for i := 0; i < len(inc) && i < len(cf); i++ {
		ratio := "N/A"
		if inc[i].NetIncome > 0 {
			ratio = fmt.Sprintf("%.0f%%", cf[i].FreeCashFlow/inc[i].NetIncome*100)
		}
		fmt.Fprintf(&b, "%s: NI $%.1fB, FCF $%.1fB, FCF/NI Ratio: %s\n",
			inc[i].Year, utils.ToBillions(inc[i].NetIncome), utils.ToBillions(cf[i].FreeCashFlow), ratio)
	}

	b.WriteString("\n### PRE-IDENTIFIED RED FLAGS\n")
	writeFlags(&b, d.RedFlags)

	fmt.Fprintf(&b, "\n%s\nRECENT NEWS (Risk Identification)\n%s\n", lightRule, lightRule)
	if len(d.News) == 0 {
		b.WriteString("No recent news available.\n")
	}
	for i, a := range d.News {
		if i == riskNewsTitles {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, a.Title)
	}

	writeChallenge(&b, "VALUE HUNTER ANALYSIS (To Challenge)", "Value Hunter", value)
	writeChallenge(&b, "GROWTH ANALYZER ANALYSIS (To Challenge)", "Growth Analyzer", growth)
	return b.String()
}

func writeChallenge(b *strings.Builder, heading, name, report string) {
	fmt.Fprintf(b, "\n%s\n%s\n%s\n", heavyRule, heading, heavyRule)
	b.WriteString(utils.Truncate(report, challengeLen))
	if len([]rune(report)) > challengeLen {
		fmt.Fprintf(b, "\n\n[... rest of %s analysis ...]", name)
	}
	b.WriteString("\n")
}

// Analyses are the parsed analyst reports the CIO synthesizes.
type Analyses struct {
	Value  models.ValueAnalysis
	Growth models.GrowthAnalysis
	Risk   models.RiskAnalysis
}

// CIO is the context for the chief investment officer.
func CIO(d *models.CompanyData, business string, a Analyses) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n%sCIO SYNTHESIS CONTEXT\n%s\n\n", doubleRule, strings.Repeat(" ", 25), doubleRule)

	section := func(title string) { fmt.Fprintf(&b, "\n%s:\n%s\n", title, thinRule) }

	section("COMPANY INFORMATION")
	fmt.Fprintf(&b, "Company: %s (%s)\n", d.DisplayName(), d.Ticker)
	fmt.Fprintf(&b, "Sector: %s\n", orNA(d.Profile.Sector))
	fmt.Fprintf(&b, "Industry: %s\n", orNA(d.Profile.Industry))
	fmt.Fprintf(&b, "Current Price: $%.2f\n\n", d.Market.CurrentPrice)

	section("BUSINESS UNDERSTANDING SUMMARY")
	b.WriteString(utils.Truncate(business, challengeLen))
	b.WriteString("\n[... Full business analysis provided separately ...]\n\n")

	vs := a.Value.Summary
	section("VALUE HUNTER ANALYSIS SUMMARY")
	fmt.Fprintf(&b, "Quality Score: %s/10\n", intOrNA(vs.QualityScore))
	fmt.Fprintf(&b, "Moat: %s\n", strOrNA(vs.Moat))
	fmt.Fprintf(&b, "Intrinsic Value: $%.2f\n", floatOrZero(vs.IntrinsicValue))
	fmt.Fprintf(&b, "Margin of Safety: %.1f%%\n", floatOrZero(vs.MarginOfSafety))
	fmt.Fprintf(&b, "Recommendation: %s\n", strOrNA(vs.Recommendation))
	fmt.Fprintf(&b, "Conviction: %s/10\n", intOrNA(vs.Conviction))
	b.WriteString("\n[... Full Value Hunter analysis provided separately ...]\n\n")

	gs := a.Growth.Summary
	section("GROWTH ANALYZER ANALYSIS SUMMARY")
	fmt.Fprintf(&b, "Historical Quality: %s/10\n", intOrNA(gs.HistoricalQuality))
	fmt.Fprintf(&b, "Market Space: %s/10\n", intOrNA(gs.MarketSpace))
	fmt.Fprintf(&b, "Sustainability: %s/10\n", intOrNA(gs.Sustainability))
	fmt.Fprintf(&b, "Recommendation: %s\n", strOrNA(gs.Recommendation))
	fmt.Fprintf(&b, "Position Size: %.1f%%\n", floatOrZero(gs.PositionSize))
	fmt.Fprintf(&b, "Expected 5Y Return: %.1f%%\n", floatOrZero(gs.ExpectedReturn5Y))
	b.WriteString("\nScenarios:\n")
	fmt.Fprintf(&b, "- Bull Case: %+.0f%%\n", floatOrZero(gs.BullCase))
	fmt.Fprintf(&b, "- Base Case: %+.0f%%\n", floatOrZero(gs.BaseCase))
	fmt.Fprintf(&b, "- Bear Case: %+.0f%%\n", floatOrZero(gs.BearCase))
	b.WriteString("\n[... Full Growth Analyzer analysis provided separately ...]\n\n")

	rs := a.Risk.Summary
	section("RISK EXAMINER ANALYSIS SUMMARY")
	fmt.Fprintf(&b, "Overall Risk Score: %s/10\n", floatOrNA("%.1f", rs.OverallRiskScore))
	fmt.Fprintf(&b, "Risk Rating: %s\n", strOrNA(rs.RiskRating))
	fmt.Fprintf(&b, "Financial Red Flags: %s\n", intOrNA(rs.RedFlagsCount))
	fmt.Fprintf(&b, "Business Model Risk: %s/50\n", intOrNA(rs.BusinessModelRisk))
	fmt.Fprintf(&b, "Management Risk: %s\n", strOrNA(rs.ManagementRisk))
	fmt.Fprintf(&b, "Valuation Risk: %s\n", strOrNA(rs.ValuationRisk))
	fmt.Fprintf(&b, "Max Position Size: %.2f%%\n", floatOrZero(rs.MaxPositionSize))
	fmt.Fprintf(&b, "Bear Case Downside: %+.1f%%\n", floatOrZero(rs.BearCaseDownside))
	b.WriteString("\n[... Full Risk Examiner analysis provided separately ...]\n\n")

	section("KEY FINANCIAL METRICS (5-Year Summary)")
	writeMetricsTable(&b, d)

	fmt.Fprintf(&b, "\n\n%s\n%sFULL ANALYST REPORTS (For Reference)\n%s\n", doubleRule, strings.Repeat(" ", 20), doubleRule)
	for _, r := range []struct{ title, text string }{
		{"VALUE HUNTER FULL REPORT", a.Value.Content},
		{"GROWTH ANALYZER FULL REPORT", a.Growth.Content},
		{"RISK EXAMINER FULL REPORT", a.Risk.Content},
	} {
		section(r.title)
		b.WriteString(r.text)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "\n%s\n%sEND OF CONTEXT\n%s\n\n", doubleRule, strings.Repeat(" ", 32), doubleRule)
	b.WriteString("Now synthesize these three perspectives and make your final investment decision.")
	return b.String()
}

func writeMetricsTable(b *strings.Builder, d *models.CompanyData) {
	inc := firstN(d.Statements.Income)
	if len(inc) == 0 {
		b.WriteString("No financial history available.\n")
		return
	}
	fmt.Fprintf(b, "\n%-25s ", "Metric")
	for _, r := range inc {
		fmt.Fprintf(b, "%12s ", r.Year)
	}
	b.WriteString("\n" + strings.Repeat("─", 90) + "\n")

	margins := byYear(d.Metrics.Profitability.ByYear, func(y models.YearMargins) string { return y.Year })
	returns := byYear(d.Metrics.Returns.ByYear, func(y models.YearReturns) string { return y.Year })
	cf := byYear(d.Statements.CashFlow, func(r models.CashFlowRecord) string { return r.Year })

	line := func(label string, value func(i int, year string) (float64, bool), suffix string) {
		fmt.Fprintf(b, "%-25s ", label)
		for i, r := range inc {
			if v, ok := value(i, r.Year); ok {
				fmt.Fprintf(b, "%11.2f%s ", v, suffix)
			} else {
				fmt.Fprintf(b, "%12s ", "N/A")
			}
		}
		b.WriteString("\n")
	}
	line("Revenue ($B)", func(i int, _ string) (float64, bool) { return utils.ToBillions(inc[i].Revenue), true }, "")
	line("Revenue Growth", func(i int, _ string) (float64, bool) {
		if i+1 >= len(d.Statements.Income) || d.Statements.Income[i+1].Revenue == 0 {
			return 0, false
		}
		prev := d.Statements.Income[i+1].Revenue
		return (inc[i].Revenue - prev) / prev * 100, true
	}, "%")
	margin := func(pick func(models.YearMargins) float64) func(int, string) (float64, bool) {
		return func(_ int, y string) (float64, bool) {
			m, ok := margins[y]
			return pick(m), ok
		}
	}
	ret := func(pick func(models.YearReturns) float64) func(int, string) (float64, bool) {
		return func(_ int, y string) (float64, bool) {
			r, ok := returns[y]
			return pick(r), ok
		}
	}
	line("Gross Margin", margin(func(m models.YearMargins) float64 { return m.GrossMargin }), "%")
	line("Operating Margin", margin(func(m models.YearMargins) float64 { return m.OpMargin }), "%")
	line("Net Margin", margin(func(m models.YearMargins) float64 { return m.NetMargin }), "%")
	line("FCF ($B)", func(_ int, y string) (float64, bool) {
		c, ok := cf[y]
		return utils.ToBillions(c.FreeCashFlow), ok
	}, "")
	line("ROE", ret(func(r models.YearReturns) float64 { return r.ROE }), "%")
	line("ROIC", ret(func(r models.YearReturns) float64 { return r.ROIC }), "%")
}

func byYear[T any](xs []T, year func(T) string) map[string]T {
	m := make(map[string]T, len(xs))
	for _, x := range xs {
		m[year(x)] = x
	}
	return m
}

func intOrNA(p *int) string {
	if p == nil {
		return "N/A"
	}
	return fmt.Sprint(*p)
}

func floatOrNA(format string, p *float64) string {
	if p == nil {
		return "N/A"
	}
	return fmt.Sprintf(format, *p)
}

func floatOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func strOrNA(p *string) string {
	if p == nil || *p == "" {
		return "N/A"
	}
	return *p
}
