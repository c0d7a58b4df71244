package models

import "time"

// CompanyProfile holds descriptive company metadata.
type CompanyProfile struct {
	Ticker      string `json:"ticker"`
	Name        string `json:"name"`
	Sector      string `json:"sector"`
	Industry    string `json:"industry"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Employees   int    `json:"employees"`
	Country     string `json:"country"`
	City        string `json:"city"`
	Exchange    string `json:"exchange"`
	Currency    string `json:"currency"`
}

// MarketData holds the latest market snapshot for a ticker.
type MarketData struct {
	CurrentPrice      float64 `json:"current_price"`
	MarketCap         float64 `json:"market_cap"`
	SharesOutstanding float64 `json:"shares_outstanding"`
	Beta              float64 `json:"beta"`
	WeekHigh52        float64 `json:"week_52_high"`
	WeekLow52         float64 `json:"week_52_low"`
	YTDReturn         float64 `json:"ytd_return"`
	MarketState       string  `json:"market_state,omitempty"`
}

// Valuation holds the provider-reported valuation multiples and
// profitability ratios. Zero means "not reported".
type Valuation struct {
	TrailingPE      float64 `json:"trailing_pe"`
	ForwardPE       float64 `json:"forward_pe"`
	TrailingEPS     float64 `json:"trailing_eps"`
	ForwardEPS      float64 `json:"forward_eps"`
	PEGRatio        float64 `json:"peg_ratio"`
	PriceToBook     float64 `json:"price_to_book"`
	PriceToSales    float64 `json:"price_to_sales"`
	EnterpriseValue float64 `json:"enterprise_value"`
	EVToRevenue     float64 `json:"ev_to_revenue"`
	EVToEBITDA      float64 `json:"ev_to_ebitda"`
	ProfitMargin    float64 `json:"profit_margin"`
	OperatingMargin float64 `json:"operating_margin"`
	ROA             float64 `json:"roa"`
	ROE             float64 `json:"roe"`
}

// CompanyData is everything the collector gathers for one ticker.
// It is built once and read by every stage.
type CompanyData struct {
	Ticker     string         `json:"ticker"`
	Profile    CompanyProfile `json:"profile"`
	Market     MarketData     `json:"market"`
	Valuation  Valuation      `json:"valuation"`
	Statements Statements     `json:"statements"`
	Metrics    Metrics        `json:"metrics"`
	RedFlags   RedFlagReport  `json:"red_flags"`
	News       []NewsArticle  `json:"news"`
	Warnings   []string       `json:"warnings,omitempty"`
	FetchedAt  time.Time      `json:"fetched_at"`
}

// DisplayName returns the company name, falling back to the ticker.
func (c *CompanyData) DisplayName() string {
	if c.Profile.Name != "" {
		return c.Profile.Name
	}
	return c.Ticker
}

// LatestFCF returns the most recent free cash flow, or 0 when unknown.
func (c *CompanyData) LatestFCF() float64 {
	if len(c.Statements.CashFlow) == 0 {
		return 0
	}
	return c.Statements.CashFlow[0].FreeCashFlow
}
