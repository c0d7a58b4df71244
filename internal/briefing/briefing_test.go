package briefing

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/researchdesk/pkg/models"
)

func sampleData() *models.CompanyData {
	return &models.CompanyData{
		Ticker: "AAPL",
		Profile: models.CompanyProfile{
			Name:      "Apple Inc.",
			Sector:    "Technology",
			Industry:  "Consumer Electronics",
			Employees: 164000,
			City:      "Cupertino",
			Country:   "United States",
		},
		Market: models.MarketData{
			CurrentPrice:      226.5,
			MarketCap:         3.4e12,
			SharesOutstanding: 15.1e9,
			Beta:              1.2,
		},
		Valuation: models.Valuation{TrailingPE: 32},
		Statements: models.Statements{
			Income: []models.IncomeRecord{
				{Year: "2024", Revenue: 394.33e9, GrossProfit: 180e9, NetIncome: 100e9},
				{Year: "2023", Revenue: 383.29e9, GrossProfit: 170e9, NetIncome: 97e9},
			},
			Balance: []models.BalanceRecord{
				{Year: "2024", Cash: 30e9, TotalDebt: 100e9, TotalEquity: 60e9},
			},
			CashFlow: []models.CashFlowRecord{
				{Year: "2024", FreeCashFlow: 110e9, CapEx: -10e9},
				{Year: "2023", FreeCashFlow: 99e9, CapEx: -11e9},
			},
		},
		Metrics: models.Metrics{
			Profitability: models.Profitability{ByYear: []models.YearMargins{
				{Year: "2024", GrossMargin: 45.6, OpMargin: 30.1, NetMargin: 25.4},
			}},
		},
		News: []models.NewsArticle{
			{Title: "Apple beats estimates", Source: "Reuters", Snippet: "Revenue rose.", PublishedAt: time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)},
			{Title: "Apple unveils new chip", Snippet: "M5 announced."},
		},
	}
}

func TestStagePrompt(t *testing.T) {
	got := StagePrompt("Do the thing.", "DATA")
	assert.Equal(t, "Do the thing.\n\n=====\nDATA FOR YOUR ANALYSIS:\n=====\n\nDATA\n\n=====\nBEGIN YOUR ANALYSIS:", got)
}

func TestFormatForLLM(t *testing.T) {
	out := FormatForLLM(sampleData())

	for _, want := range []string{
		"COMPREHENSIVE FINANCIAL DATA - AAPL",
		"## COMPANY OVERVIEW",
		"Name:        Apple Inc.",
		"Employees:   164,000",
		"Location:    Cupertino, United States",
		"Current Price:       $226.50",
		"Market Cap:          $3.40T",
		"Revenue     $        394.3B",
		"Gross Profit$        180.0B",
		"## QUALITY INDICATORS & RED FLAGS",
		"Red Flags Detected: 0",
		"✅ No significant red flags detected",
		"## RECENT NEWS & EVENTS (2 articles)",
		"[1] Apple beats estimates",
		"    Date: 2024-11-01",
		"    Source: N/A",
	} {
		assert.Contains(t, out, want)
	}
}

func TestFormatForLLMRedFlags(t *testing.T) {
	d := sampleData()
	d.RedFlags.Flags = []models.RedFlag{{Kind: "FCF_QUALITY", Severity: models.SeverityHigh, Detail: "FCF below 50% of net income"}}
	out := FormatForLLM(d)
	assert.Contains(t, out, "Red Flags Detected: 1")
	assert.Contains(t, out, "[HIGH] FCF_QUALITY: FCF below 50% of net income")
	assert.NotContains(t, out, "No significant red flags")
}

func TestFormatForLLMEmptyData(t *testing.T) {
	out := FormatForLLM(&models.CompanyData{Ticker: "ZZZ"})
	assert.Contains(t, out, "Name:        N/A")
	assert.Contains(t, out, "No data available")
	assert.Contains(t, out, "## NO NEWS AVAILABLE")
	assert.Contains(t, out, "Interest Coverage:    N/Ax")
}

func TestFormatForLLMNewsLimits(t *testing.T) {
	d := &models.CompanyData{Ticker: "X"}
	for i := 1; i <= 35; i++ {
		d.News = append(d.News, models.NewsArticle{Title: fmt.Sprintf("story %d", i), Snippet: strings.Repeat("x", 250)})
	}
	out := FormatForLLM(d)
	assert.Contains(t, out, "(35 articles)")
	assert.Contains(t, out, "[30] story 30")
	assert.NotContains(t, out, "[31]")
	assert.Contains(t, out, strings.Repeat("x", 200)+"...")
	assert.NotContains(t, out, strings.Repeat("x", 201))
}

func TestKeyEvents(t *testing.T) {
	assert.Equal(t, NoNews, KeyEvents(nil))

	out := KeyEvents([]models.NewsArticle{{Title: "Big deal", Source: "WSJ", Snippet: strings.Repeat("y", 400)}})
	assert.Contains(t, out, "[Article 1]\nTitle: Big deal\nDate: N/A\nSource: WSJ\n")
	assert.Contains(t, out, "Summary: "+strings.Repeat("y", 300)+"...")
	assert.NotContains(t, out, strings.Repeat("y", 301))
}

func TestEventsInput(t *testing.T) {
	out := EventsInput(sampleData())
	assert.True(t, strings.HasPrefix(out, "Company: Apple Inc. (AAPL)\n\nNEWS ARTICLES (2 articles):\n"))
	assert.Contains(t, out, "[Article 2]")
	assert.True(t, strings.HasSuffix(out, "Extract the material events following the framework provided."))
}

func TestBusinessInput(t *testing.T) {
	out := BusinessInput(sampleData())
	assert.True(t, strings.HasPrefix(out, "Company: Apple Inc. (AAPL)\nSector: Technology\nIndustry: Consumer Electronics\n\n"))
	assert.Contains(t, out, "COMPREHENSIVE FINANCIAL DATA - AAPL")
	assert.True(t, strings.HasSuffix(out, "provide your business analysis."))
}

func TestBusiness(t *testing.T) {
	out := Business(sampleData(), "Sells phones.", "[2024-11-01] Earnings beat")
	assert.Contains(t, out, "BUSINESS CONTEXT & KEY EVENTS")
	assert.Contains(t, out, "## BUSINESS UNDERSTANDING\n\nSells phones.\n\n")
	assert.Contains(t, out, "## KEY RECENT EVENTS\n\n[2024-11-01] Earnings beat\n\n")
	assert.True(t, strings.HasSuffix(out, heavyRule))
}

func TestValue(t *testing.T) {
	out := Value(sampleData(), "CTX", "DETERMINISTIC VALUATION CROSS-CHECK\n")
	assert.Contains(t, out, "**Company**: Apple Inc. (AAPL)")
	assert.Contains(t, out, "**Market Cap**: $3400.00B")
	assert.Contains(t, out, "## BUSINESS UNDERSTANDING\n\nCTX")
	assert.Contains(t, out, "- Trailing P/E: 32.00")
	assert.Contains(t, out, "- Forward P/E: N/A")
	assert.Contains(t, out, "DETERMINISTIC VALUATION CROSS-CHECK")
}

func TestGrowth(t *testing.T) {
	out := Growth(sampleData(), "CTX")
	assert.Contains(t, out, "2024: Revenue $394.33B, Net Income $100.00B")
	assert.Contains(t, out, "2024: Gross 45.6%, Operating 30.1%, Net 25.4%")
	assert.Contains(t, out, "2023: FCF $99.00B, CapEx $-11.00B")
}

func TestRisk(t *testing.T) {
	d := sampleData()
	d.News = nil
	for i := 1; i <= 20; i++ {
		d.News = append(d.News, models.NewsArticle{Title: fmt.Sprintf("headline %d", i)})
	}
	long := strings.Repeat("v", 2500)
	out := Risk(d, "CTX", long, "short growth view")

	assert.Contains(t, out, "2024: Cash $30.0B, Debt $100.0B, Equity $60.0B, A/R $0.0B, Inv $0.0B")
	assert.Contains(t, out, "2024: NI $100.0B, FCF $110.0B, FCF/NI Ratio: 110%")
	assert.Contains(t, out, "15. headline 15")
	assert.NotContains(t, out, "16. headline")
	assert.Contains(t, out, strings.Repeat("v", 2000)+"\n\n[... rest of Value Hunter analysis ...]")
	assert.NotContains(t, out, strings.Repeat("v", 2001))
	assert.Contains(t, out, "short growth view")
	assert.NotContains(t, out, "rest of Growth Analyzer")
}

func TestCIO(t *testing.T) {
	quality, conviction := 8, 7
	risk := 5.5
	rating := "MODERATE"
	a := Analyses{
		Value:  models.ValueAnalysis{StageReport: models.StageReport{Content: "VALUE REPORT"}, Summary: models.ValueSummary{QualityScore: &quality, Conviction: &conviction}},
		Growth: models.GrowthAnalysis{StageReport: models.StageReport{Content: "GROWTH REPORT"}},
		Risk:   models.RiskAnalysis{StageReport: models.StageReport{Content: "RISK REPORT"}, Summary: models.RiskSummary{OverallRiskScore: &risk, RiskRating: &rating}},
	}
	out := CIO(sampleData(), "BUSINESS", a)

	assert.Contains(t, out, "CIO SYNTHESIS CONTEXT")
	assert.Contains(t, out, "Company: Apple Inc. (AAPL)")
	assert.Contains(t, out, "Quality Score: 8/10")
	assert.Contains(t, out, "Conviction: 7/10")
	assert.Contains(t, out, "Historical Quality: N/A/10")
	assert.Contains(t, out, "Overall Risk Score: 5.5/10")
	assert.Contains(t, out, "Risk Rating: MODERATE")
	assert.Contains(t, out, "Management Risk: N/A")

	for _, report := range []string{"VALUE REPORT", "GROWTH REPORT", "RISK REPORT"} {
		assert.Contains(t, out, report)
	}
	require.True(t, strings.HasSuffix(out, "make your final investment decision."))

	// Revenue growth for the oldest year has no prior year to compare with.
	var growthLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Revenue Growth") {
			growthLine = line
		}
	}
	assert.Contains(t, growthLine, "2.88%")
	assert.Contains(t, growthLine, "N/A")
}
