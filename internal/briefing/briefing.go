// Package briefing turns collected company data and earlier stage reports
// into the plain-text contexts each analyst stage reads. Missing values are
// rendered as 0 or "N/A"; nothing here returns an error.
package briefing

import (
	"fmt"
	"strings"

	"github.com/seenimoa/researchdesk/pkg/models"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

const (
	maxYears        = 5
	maxNewsArticles = 30
	newsSnippetLen  = 200
)

var (
	heavyRule = strings.Repeat("=", 80)
	lightRule = strings.Repeat("-", 80)
)

// StagePrompt wraps stage instructions around its data context.
func StagePrompt(instructions, context string) string {
	return instructions + "\n\n=====\nDATA FOR YOUR ANALYSIS:\n=====\n\n" + context + "\n\n=====\nBEGIN YOUR ANALYSIS:"
}

// FormatForLLM renders the complete collected data set: profile, market
// snapshot, five years of statements, derived metrics, red flags and news.
func FormatForLLM(d *models.CompanyData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\nCOMPREHENSIVE FINANCIAL DATA - %s\n%s\n\n", heavyRule, d.Ticker, heavyRule)
	writeOverview(&b, d)
	writeMarket(&b, d.Market)
	writeStatements(&b, d.Statements)
	writeMetrics(&b, d.Metrics)
	writeQuality(&b, d.RedFlags)
	writeNews(&b, d.News)
	return b.String()
}

func writeOverview(b *strings.Builder, d *models.CompanyData) {
	p := d.Profile
	fmt.Fprintf(b, "\n## COMPANY OVERVIEW\n%s\n", lightRule)
	fmt.Fprintf(b, "Name:        %s\n", orNA(p.Name))
	fmt.Fprintf(b, "Ticker:      %s\n", d.Ticker)
	fmt.Fprintf(b, "Sector:      %s\n", orNA(p.Sector))
	fmt.Fprintf(b, "Industry:    %s\n", orNA(p.Industry))
	fmt.Fprintf(b, "Employees:   %s\n", groupInt(p.Employees))
	fmt.Fprintf(b, "Location:    %s, %s\n", orNA(p.City), orNA(p.Country))
	fmt.Fprintf(b, "\nDescription:\n%s\n\n", orNA(p.Description))
}

func writeMarket(b *strings.Builder, m models.MarketData) {
	fmt.Fprintf(b, "\n## CURRENT MARKET DATA\n%s\n", lightRule)
	fmt.Fprintf(b, "Current Price:       $%.2f\n", m.CurrentPrice)
	fmt.Fprintf(b, "Market Cap:          %s\n", utils.FormatCompact(m.MarketCap))
	fmt.Fprintf(b, "Shares Outstanding:  %s\n", groupInt(int(m.SharesOutstanding)))
	fmt.Fprintf(b, "Beta:                %.2f\n", m.Beta)
	fmt.Fprintf(b, "52-Week High:        $%.2f\n", m.WeekHigh52)
	fmt.Fprintf(b, "52-Week Low:         $%.2f\n", m.WeekLow52)
	fmt.Fprintf(b, "YTD Return:          %.2f%%\n\n", m.YTDReturn)
}

// row is one labelled line of a statement table.
type row struct {
	label string
	value func(i int) float64
}

func writeTable(b *strings.Builder, years []string, rows []row) {
	if len(years) == 0 {
		b.WriteString("\nNo data available\n")
		return
	}
	fmt.Fprintf(b, "\n%-12s", "Year")
	for _, y := range years {
		fmt.Fprintf(b, "%-15s", y)
	}
	b.WriteString("\n" + lightRule + "\n")
	for _, r := range rows {
		fmt.Fprintf(b, "%-12s", r.label)
		for i := range years {
			fmt.Fprintf(b, "$%13.1fB", utils.ToBillions(r.value(i)))
		}
		b.WriteString("\n")
	}
}

func writeStatements(b *strings.Builder, s models.Statements) {
	fmt.Fprintf(b, "\n## FINANCIAL STATEMENTS (5-YEAR HISTORY)\n%s\n", lightRule)

	inc := firstN(s.Income)
	b.WriteString("\n### Income Statement (Annual, Most Recent First)\n")
	writeTable(b, years(inc, func(r models.IncomeRecord) string { return r.Year }), []row{
		{"Revenue", func(i int) float64 { return inc[i].Revenue }},
		{"Gross Profit", func(i int) float64 { return inc[i].GrossProfit }},
		{"Op Income", func(i int) float64 { return inc[i].OperatingIncome }},
		{"Net Income", func(i int) float64 { return inc[i].NetIncome }},
		{"R&D", func(i int) float64 { return inc[i].RDExpense }},
	})

	bal := firstN(s.Balance)
	b.WriteString("\n### Balance Sheet (Annual, Most Recent First)\n")
	writeTable(b, years(bal, func(r models.BalanceRecord) string { return r.Year }), []row{
		{"Total Assets", func(i int) float64 { return bal[i].TotalAssets }},
		{"Cash", func(i int) float64 { return bal[i].Cash }},
		{"Total Debt", func(i int) float64 { return bal[i].TotalDebt }},
		{"Equity", func(i int) float64 { return bal[i].TotalEquity }},
		{"Goodwill", func(i int) float64 { return bal[i].Goodwill }},
	})

	cf := firstN(s.CashFlow)
	b.WriteString("\n### Cash Flow (Annual, Most Recent First)\n")
	writeTable(b, years(cf, func(r models.CashFlowRecord) string { return r.Year }), []row{
		{"Operating CF", func(i int) float64 { return cf[i].OperatingCashFlow }},
		{"CapEx", func(i int) float64 { return cf[i].CapEx }},
		{"Free CF", func(i int) float64 { return cf[i].FreeCashFlow }},
		{"Dividends", func(i int) float64 { return cf[i].DividendsPaid }},
		{"Buybacks", func(i int) float64 { return cf[i].StockBuybacks }},
	})
	b.WriteString("\n")
}

func writeMetrics(b *strings.Builder, m models.Metrics) {
	fmt.Fprintf(b, "\n## KEY METRICS & TRENDS (5-YEAR)\n%s\n", lightRule)
	b.WriteString("\n### Growth (CAGR)\n")
	fmt.Fprintf(b, "Revenue CAGR:     %.1f%%\n", m.Growth.RevenueCAGR*100)
	fmt.Fprintf(b, "Earnings CAGR:    %.1f%%\n", m.Growth.EarningsCAGR*100)
	fmt.Fprintf(b, "FCF CAGR:         %.1f%%\n", m.Growth.FCFCAGR*100)

	p := m.Profitability
	b.WriteString("\n### Profitability (5-Year Average)\n")
	fmt.Fprintf(b, "Gross Margin:     %.1f%%\n", p.AvgGrossMargin)
	fmt.Fprintf(b, "Operating Margin: %.1f%%\n", p.AvgOpMargin)
	fmt.Fprintf(b, "Net Margin:       %.1f%%\n", p.AvgNetMargin)
	fmt.Fprintf(b, "FCF Margin:       %.1f%%\n", p.AvgFCFMargin)

	r := m.Returns
	b.WriteString("\n### Returns (5-Year Average)\n")
	fmt.Fprintf(b, "ROE:              %.1f%%\n", r.AvgROE)
	fmt.Fprintf(b, "ROA:              %.1f%%\n", r.AvgROA)
	fmt.Fprintf(b, "ROIC:             %.1f%%\n", r.AvgROIC)

	b.WriteString("\n### Leverage & Efficiency (Latest)\n")
	fmt.Fprintf(b, "Debt/Equity:      %.2f\n", m.Leverage.DebtToEquity)
	fmt.Fprintf(b, "Current Ratio:    %.2f\n", m.Leverage.CurrentRatio)
	fmt.Fprintf(b, "Asset Turnover:   %.2f\n", m.Efficiency.AssetTurnover)
	fmt.Fprintf(b, "DSO:              %.0f days\n\n", m.Efficiency.DSO)
}

func writeQuality(b *strings.Builder, r models.RedFlagReport) {
	fmt.Fprintf(b, "\n## QUALITY INDICATORS & RED FLAGS\n%s\n", lightRule)
	writeFlags(b, r)
	fmt.Fprintf(b, "\nFCF / Net Income:     %.1f%%\n", r.FCFToNetIncome*100)
	fmt.Fprintf(b, "Goodwill / Assets:    %.1f%%\n", r.GoodwillPct)
	fmt.Fprintf(b, "Interest Coverage:    %sx\n\n", utils.OrNA("%.1f", r.InterestCoverage))
}

func writeFlags(b *strings.Builder, r models.RedFlagReport) {
	fmt.Fprintf(b, "Red Flags Detected: %d\n", len(r.Flags))
	if len(r.Flags) == 0 {
		b.WriteString("✅ No significant red flags detected\n")
		return
	}
	for _, f := range r.Flags {
		fmt.Fprintf(b, "  [%s] %s: %s\n", f.Severity, f.Kind, f.Detail)
	}
}

func writeNews(b *strings.Builder, news []models.NewsArticle) {
	if len(news) == 0 {
		fmt.Fprintf(b, "\n## NO NEWS AVAILABLE\n%s\n", lightRule)
		return
	}
	fmt.Fprintf(b, "\n## RECENT NEWS & EVENTS (%d articles)\n%s\n", len(news), lightRule)
	for i, a := range news {
		if i == maxNewsArticles {
			break
		}
		fmt.Fprintf(b, "\n[%d] %s\n", i+1, a.Title)
		fmt.Fprintf(b, "    Date: %s\n", a.DateString())
		fmt.Fprintf(b, "    Source: %s\n", orNA(a.Source))
		if a.Snippet != "" {
			fmt.Fprintf(b, "    %s...\n", utils.Truncate(a.Snippet, newsSnippetLen))
		}
	}
	b.WriteString("\n")
}

func firstN[T any](xs []T) []T {
	if len(xs) > maxYears {
		return xs[:maxYears]
	}
	return xs
}

func years[T any](xs []T, year func(T) string) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = year(x)
	}
	return out
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// groupInt renders n with thousands separators.
func groupInt(n int) string {
	return strings.TrimSuffix(strings.TrimPrefix(utils.FormatUSD(float64(n)), "$"), ".00")
}
