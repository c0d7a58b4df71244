package datasource

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/seenimoa/researchdesk/pkg/models"
)

type fakeMarket struct {
	data *models.CompanyData
	err  error
	got  string
}

func (f *fakeMarket) Company(_ context.Context, ticker string) (*models.CompanyData, error) {
	f.got = ticker
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

type fakeNews struct {
	articles []models.NewsArticle
	err      error
}

func (f *fakeNews) ForTicker(context.Context, string) ([]models.NewsArticle, error) {
	return f.articles, f.err
}

func sampleCompany() *models.CompanyData {
	return &models.CompanyData{
		Ticker:  "MSFT",
		Profile: models.CompanyProfile{Name: "Microsoft"},
		Market:  models.MarketData{CurrentPrice: 400},
		Valuation: models.Valuation{
			TrailingPE:  32,
			TrailingEPS: 12.5,
		},
		Statements: models.Statements{
			Income: []models.IncomeRecord{
				{Year: "2024", Revenue: 245, OperatingIncome: 109, NetIncome: 88, InterestExpense: 3},
				{Year: "2023", Revenue: 212, OperatingIncome: 88, NetIncome: 72, InterestExpense: 2},
			},
			Balance: []models.BalanceRecord{
				{Year: "2024", TotalAssets: 512, CurrentAssets: 159, CurrentLiabilities: 125, TotalEquity: 268, TotalDebt: 60},
				{Year: "2023", TotalAssets: 411, CurrentAssets: 184, CurrentLiabilities: 104, TotalEquity: 206, TotalDebt: 59},
			},
			CashFlow: []models.CashFlowRecord{
				{Year: "2024", OperatingCashFlow: 118, CapEx: -44, FreeCashFlow: 74},
			},
		},
	}
}

func TestCollect(t *testing.T) {
	market := &fakeMarket{data: sampleCompany()}
	news := &fakeNews{articles: []models.NewsArticle{{Title: "Cloud growth"}}}

	data, err := NewCollector(market, news).Collect(context.Background(), " msft ")
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if market.got != "MSFT" {
		t.Errorf("market called with %q, want normalized MSFT", market.got)
	}
	if len(data.News) != 1 {
		t.Errorf("news = %d, want 1", len(data.News))
	}
	if data.Metrics.Growth.RevenueCAGR <= 0 {
		t.Errorf("metrics not computed: %+v", data.Metrics.Growth)
	}
	if data.RedFlags.InterestCoverage == 0 {
		t.Errorf("red flags not computed: %+v", data.RedFlags)
	}
	if len(data.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", data.Warnings)
	}
	if market.data.News != nil {
		t.Error("Collect must not mutate the source's shared value")
	}
}

func TestCollectNewsFailureIsWarning(t *testing.T) {
	market := &fakeMarket{data: sampleCompany()}
	news := &fakeNews{err: errors.New("feed down")}

	data, err := NewCollector(market, news).Collect(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if len(data.Warnings) != 1 || !strings.Contains(data.Warnings[0], "feed down") {
		t.Fatalf("warnings = %v", data.Warnings)
	}
}

func TestCollectMarketFailureIsFatal(t *testing.T) {
	market := &fakeMarket{err: ErrTickerNotFound}
	_, err := NewCollector(market, nil).Collect(context.Background(), "MSFT")
	if !errors.Is(err, ErrTickerNotFound) {
		t.Fatalf("err = %v, want ErrTickerNotFound", err)
	}
}

func TestCollectInvalidTicker(t *testing.T) {
	market := &fakeMarket{data: sampleCompany()}
	_, err := NewCollector(market, nil).Collect(context.Background(), "NOT A TICKER!")
	if !errors.Is(err, ErrInvalidTicker) {
		t.Fatalf("err = %v, want ErrInvalidTicker", err)
	}
	if market.got != "" {
		t.Error("market source should not be called for an invalid ticker")
	}
}

func TestQualityWarnings(t *testing.T) {
	tests := []struct {
		name string
		edit func(*models.CompanyData)
		want string
	}{
		{"missing price", func(d *models.CompanyData) { d.Market.CurrentPrice = 0 }, "Current price unavailable"},
		{"missing PE", func(d *models.CompanyData) { d.Valuation.TrailingPE = 0 }, "P/E ratio not reported"},
		{"low PE", func(d *models.CompanyData) { d.Valuation.TrailingPE = 2; d.Valuation.TrailingEPS = 200 }, "Unusually low P/E"},
		{"high PE", func(d *models.CompanyData) { d.Valuation.TrailingPE = 250; d.Valuation.TrailingEPS = 1.6 }, "Unusually high P/E"},
		{"PE mismatch", func(d *models.CompanyData) { d.Valuation.TrailingPE = 20 }, "P/E mismatch"},
		{"no statements", func(d *models.CompanyData) { d.Statements = models.Statements{} }, "No financial statements available"},
		{"no cash flow", func(d *models.CompanyData) { d.Statements.CashFlow = nil }, "Cash flow statement unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := sampleCompany()
			tt.edit(d)
			got := strings.Join(QualityWarnings(d), "; ")
			if !strings.Contains(got, tt.want) {
				t.Errorf("warnings %q missing %q", got, tt.want)
			}
		})
	}

	if w := QualityWarnings(sampleCompany()); len(w) != 0 {
		t.Errorf("clean data produced warnings: %v", w)
	}
}
