package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	finance "github.com/piquette/finance-go"
)

// 2024-09-28 and 2023-09-30 fiscal year ends.
const yahooSummaryJSON = `{"quoteSummary":{"result":[{
 "assetProfile":{"sector":"Technology","industry":"Consumer Electronics","longBusinessSummary":"Designs phones.","website":"https://apple.com","fullTimeEmployees":161000,"country":"United States","city":"Cupertino"},
 "price":{"symbol":"AAPL","longName":"Apple Inc.","shortName":"Apple","exchangeName":"NasdaqGS","currency":"USD","marketState":"REGULAR","regularMarketPrice":{"raw":225.0},"marketCap":{"raw":3400000000000}},
 "summaryDetail":{"trailingPE":{"raw":34.2},"forwardPE":{"raw":29.1},"beta":{"raw":1.24},"fiftyTwoWeekHigh":{"raw":237.2},"fiftyTwoWeekLow":{"raw":164.1}},
 "defaultKeyStatistics":{"sharesOutstanding":{"raw":15100000000},"trailingEps":{"raw":6.58},"forwardEps":{"raw":7.4},"52WeekChange":{"raw":0.2}},
 "financialData":{"currentPrice":{"raw":226.5},"profitMargins":{"raw":0.24},"returnOnEquity":{"raw":1.6}},
 "incomeStatementHistory":{"incomeStatementHistory":[
  {"endDate":{"raw":1727481600},"totalRevenue":{"raw":391000},"grossProfit":{"raw":180000},"operatingIncome":{"raw":123000},"ebit":{"raw":123000},"interestExpense":{"raw":-3000},"netIncome":{"raw":94000}},
  {"endDate":{"raw":1696032000},"totalRevenue":{"raw":383000},"grossProfit":{"raw":169000},"operatingIncome":{"raw":114000},"netIncome":{"raw":97000}}]},
 "balanceSheetHistory":{"balanceSheetStatements":[
  {"endDate":{"raw":1727481600},"totalAssets":{"raw":365000},"longTermDebt":{"raw":86000},"shortLongTermDebt":{"raw":10000},"totalStockholderEquity":{"raw":57000}}]},
 "cashflowStatementHistory":{"cashflowStatements":[
  {"endDate":{"raw":1727481600},"totalCashFromOperatingActivities":{"raw":118000},"capitalExpenditures":{"raw":-9000},"depreciation":{"raw":11000},"dividendsPaid":{"raw":-15000},"repurchaseOfStock":{"raw":-95000}}]}
}],"error":null}}`

const yahooChartJSON = `{"chart":{"result":[{"timestamp":[1,2,3,4],
 "indicators":{"quote":[{"high":[101,null,130,121],"low":[95,null,110,115],"close":[100,null,120,118]}]}}],"error":null}}`

func newYahooServer(t *testing.T, chart string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch {
		case strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/AAPL"):
			if !strings.Contains(r.URL.Query().Get("modules"), "cashflowStatementHistory") {
				t.Errorf("modules missing statements: %s", r.URL.RawQuery)
			}
			w.Write([]byte(yahooSummaryJSON))
		case strings.HasPrefix(r.URL.Path, "/v8/finance/chart/AAPL"):
			if chart == "" {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			w.Write([]byte(chart))
		default:
			w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found for ticker symbol"}}}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestYahooCompany(t *testing.T) {
	srv, _ := newYahooServer(t, yahooChartJSON)
	y := NewYahoo(WithYahooBaseURL(srv.URL), WithYahooRate(0), WithQuoteFunc(func(string) (*finance.Quote, error) {
		t.Fatal("quote fallback should not be used when the chart has prices")
		return nil, nil
	}))

	data, err := y.Company(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("Company() error: %v", err)
	}

	if data.Ticker != "AAPL" || data.Profile.Name != "Apple Inc." || data.Profile.Sector != "Technology" {
		t.Errorf("profile = %+v", data.Profile)
	}
	if data.Market.CurrentPrice != 118 {
		t.Errorf("CurrentPrice = %v, want last chart close 118", data.Market.CurrentPrice)
	}
	if data.Market.WeekHigh52 != 130 || data.Market.WeekLow52 != 95 {
		t.Errorf("52w range = %v-%v, want 95-130", data.Market.WeekLow52, data.Market.WeekHigh52)
	}
	if data.Market.YTDReturn != 18 {
		t.Errorf("YTDReturn = %v, want 18", data.Market.YTDReturn)
	}
	if data.Valuation.TrailingPE != 34.2 || data.Valuation.TrailingEPS != 6.58 {
		t.Errorf("valuation = %+v", data.Valuation)
	}

	if len(data.Statements.Income) != 2 {
		t.Fatalf("income years = %d, want 2", len(data.Statements.Income))
	}
	inc := data.Statements.Income[0]
	if inc.Year != "2024" || data.Statements.Income[1].Year != "2023" {
		t.Errorf("years = %s, %s", inc.Year, data.Statements.Income[1].Year)
	}
	if inc.InterestExpense != 3000 {
		t.Errorf("InterestExpense = %v, want positive 3000", inc.InterestExpense)
	}
	if inc.EBITDA != 134000 {
		t.Errorf("EBITDA = %v, want ebit + depreciation 134000", inc.EBITDA)
	}
	if got := data.Statements.Income[1].EBITDA; got != 114000 {
		t.Errorf("EBITDA without ebit = %v, want operating income 114000", got)
	}

	bs := data.Statements.Balance[0]
	if bs.TotalDebt != 96000 {
		t.Errorf("TotalDebt = %v, want 96000", bs.TotalDebt)
	}

	cf := data.Statements.CashFlow[0]
	if cf.FreeCashFlow != 109000 {
		t.Errorf("FreeCashFlow = %v, want 109000", cf.FreeCashFlow)
	}
	if cf.DividendsPaid != 15000 || cf.StockBuybacks != 95000 {
		t.Errorf("dividends/buybacks = %v/%v", cf.DividendsPaid, cf.StockBuybacks)
	}
}

func TestYahooCompanyCached(t *testing.T) {
	srv, calls := newYahooServer(t, yahooChartJSON)
	y := NewYahoo(WithYahooBaseURL(srv.URL), WithYahooRate(0), WithYahooCacheTTL(time.Minute))

	for i := 0; i < 3; i++ {
		if _, err := y.Company(context.Background(), "AAPL"); err != nil {
			t.Fatalf("Company() #%d error: %v", i, err)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("server calls = %d, want 2 (summary + chart once)", got)
	}
}

func TestYahooCompanyChartFailureFallsBack(t *testing.T) {
	srv, _ := newYahooServer(t, "")
	y := NewYahoo(WithYahooBaseURL(srv.URL), WithYahooRate(0), WithQuoteFunc(func(string) (*finance.Quote, error) {
		return nil, errors.New("offline")
	}))

	data, err := y.Company(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Company() error: %v", err)
	}
	if data.Market.CurrentPrice != 226.5 {
		t.Errorf("CurrentPrice = %v, want financialData price 226.5", data.Market.CurrentPrice)
	}
	if data.Market.WeekHigh52 != 237.2 {
		t.Errorf("WeekHigh52 = %v, want summaryDetail value", data.Market.WeekHigh52)
	}
}

func TestYahooCompanyNotFound(t *testing.T) {
	srv, _ := newYahooServer(t, yahooChartJSON)
	y := NewYahoo(WithYahooBaseURL(srv.URL), WithYahooRate(0))

	_, err := y.Company(context.Background(), "ZZZZ")
	if !errors.Is(err, ErrTickerNotFound) {
		t.Fatalf("err = %v, want ErrTickerNotFound", err)
	}
}

func TestYahooCompanyHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	y := NewYahoo(WithYahooBaseURL(srv.URL), WithYahooRate(0))
	_, err := y.Company(context.Background(), "AAPL")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}

func TestSummarizeBarsEmpty(t *testing.T) {
	if _, ok := summarizeBars(yfChartResult{}); ok {
		t.Fatal("expected no summary for empty result")
	}
}

func TestFiscalYear(t *testing.T) {
	if got := fiscalYear(yfVal{Raw: 1727481600}); got != "2024" {
		t.Errorf("fiscalYear = %q, want 2024", got)
	}
	if got := fiscalYear(yfVal{}); got != "N/A" {
		t.Errorf("fiscalYear(zero) = %q, want N/A", got)
	}
}
