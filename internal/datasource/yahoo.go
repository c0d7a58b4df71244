package datasource

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"
	"github.com/phuslu/log"
	"golang.org/x/time/rate"

	"github.com/seenimoa/researchdesk/pkg/models"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

// DefaultYahooBaseURL is the Yahoo Finance API host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// summaryModules are the quoteSummary modules requested for one company.
var summaryModules = []string{
	"assetProfile",
	"price",
	"summaryDetail",
	"defaultKeyStatistics",
	"financialData",
	"incomeStatementHistory",
	"balanceSheetHistory",
	"cashflowStatementHistory",
}

// QuoteFunc fetches a live quote. The default is finance-go's quote.Get.
type QuoteFunc func(symbol string) (*finance.Quote, error)

// Yahoo fetches company fundamentals from the Yahoo Finance quoteSummary
// and chart endpoints.
type Yahoo struct {
	baseURL string
	client  *http.Client
	cache   *Cache[*models.CompanyData]
	limiter *rate.Limiter
	quote   QuoteFunc
}

// YahooOption configures the Yahoo source.
type YahooOption func(*Yahoo)

// WithYahooBaseURL points the source at a different host.
func WithYahooBaseURL(u string) YahooOption {
	return func(y *Yahoo) { y.baseURL = strings.TrimRight(u, "/") }
}

// WithYahooClient sets the HTTP client.
func WithYahooClient(c *http.Client) YahooOption {
	return func(y *Yahoo) { y.client = c }
}

// WithYahooCacheTTL sets how long company data is cached.
func WithYahooCacheTTL(ttl time.Duration) YahooOption {
	return func(y *Yahoo) { y.cache = NewCache[*models.CompanyData](ttl) }
}

// WithYahooRate limits requests per second.
func WithYahooRate(perSecond float64) YahooOption {
	return func(y *Yahoo) { y.limiter = newLimiter(perSecond) }
}

// WithQuoteFunc replaces the live quote fallback.
func WithQuoteFunc(fn QuoteFunc) YahooOption {
	return func(y *Yahoo) { y.quote = fn }
}

// NewYahoo creates a Yahoo Finance source.
func NewYahoo(opts ...YahooOption) *Yahoo {
	y := &Yahoo{
		baseURL: DefaultYahooBaseURL,
		client:  NewHTTPClient(30 * time.Second),
		cache:   NewCache[*models.CompanyData](5 * time.Minute),
		limiter: newLimiter(2),
		quote:   quote.Get,
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// Name returns the data source name.
func (y *Yahoo) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance API types ---

type yfVal struct {
	Raw float64 `json:"raw"`
	Fmt string  `json:"fmt"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yfSummaryResponse struct {
	QuoteSummary struct {
		Result []yfSummaryResult `json:"result"`
		Error  *yfError          `json:"error"`
	} `json:"quoteSummary"`
}

type yfSummaryResult struct {
	AssetProfile  *yfAssetProfile  `json:"assetProfile"`
	Price         *yfPrice         `json:"price"`
	SummaryDetail *yfSummaryDetail `json:"summaryDetail"`
	KeyStats      *yfKeyStats      `json:"defaultKeyStatistics"`
	FinancialData *yfFinancialData `json:"financialData"`
	Income        *struct {
		Statements []yfIncome `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistory"`
	Balance *struct {
		Statements []yfBalance `json:"balanceSheetStatements"`
	} `json:"balanceSheetHistory"`
	CashFlow *struct {
		Statements []yfCashFlow `json:"cashflowStatements"`
	} `json:"cashflowStatementHistory"`
}

type yfAssetProfile struct {
	Sector              string `json:"sector"`
	Industry            string `json:"industry"`
	LongBusinessSummary string `json:"longBusinessSummary"`
	Website             string `json:"website"`
	FullTimeEmployees   int    `json:"fullTimeEmployees"`
	Country             string `json:"country"`
	City                string `json:"city"`
}

type yfPrice struct {
	Symbol             string `json:"symbol"`
	LongName           string `json:"longName"`
	ShortName          string `json:"shortName"`
	ExchangeName       string `json:"exchangeName"`
	Currency           string `json:"currency"`
	MarketState        string `json:"marketState"`
	RegularMarketPrice yfVal  `json:"regularMarketPrice"`
	MarketCap          yfVal  `json:"marketCap"`
}

type yfSummaryDetail struct {
	TrailingPE       yfVal `json:"trailingPE"`
	ForwardPE        yfVal `json:"forwardPE"`
	Beta             yfVal `json:"beta"`
	FiftyTwoWeekHigh yfVal `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow  yfVal `json:"fiftyTwoWeekLow"`
	PriceToSales     yfVal `json:"priceToSalesTrailing12Months"`
	MarketCap        yfVal `json:"marketCap"`
}

type yfKeyStats struct {
	SharesOutstanding   yfVal `json:"sharesOutstanding"`
	TrailingEps         yfVal `json:"trailingEps"`
	ForwardEps          yfVal `json:"forwardEps"`
	PegRatio            yfVal `json:"pegRatio"`
	PriceToBook         yfVal `json:"priceToBook"`
	EnterpriseValue     yfVal `json:"enterpriseValue"`
	EnterpriseToRevenue yfVal `json:"enterpriseToRevenue"`
	EnterpriseToEbitda  yfVal `json:"enterpriseToEbitda"`
	FiftyTwoWeekChange  yfVal `json:"52WeekChange"`
}

type yfFinancialData struct {
	CurrentPrice     yfVal `json:"currentPrice"`
	ProfitMargins    yfVal `json:"profitMargins"`
	OperatingMargins yfVal `json:"operatingMargins"`
	ReturnOnAssets   yfVal `json:"returnOnAssets"`
	ReturnOnEquity   yfVal `json:"returnOnEquity"`
}

type yfIncome struct {
	EndDate                      yfVal `json:"endDate"`
	TotalRevenue                 yfVal `json:"totalRevenue"`
	CostOfRevenue                yfVal `json:"costOfRevenue"`
	GrossProfit                  yfVal `json:"grossProfit"`
	TotalOperatingExpenses       yfVal `json:"totalOperatingExpenses"`
	OperatingIncome              yfVal `json:"operatingIncome"`
	Ebit                         yfVal `json:"ebit"`
	InterestExpense              yfVal `json:"interestExpense"`
	NetIncome                    yfVal `json:"netIncome"`
	ResearchDevelopment          yfVal `json:"researchDevelopment"`
	SellingGeneralAdministrative yfVal `json:"sellingGeneralAdministrative"`
}

type yfBalance struct {
	EndDate                 yfVal `json:"endDate"`
	TotalAssets             yfVal `json:"totalAssets"`
	TotalCurrentAssets      yfVal `json:"totalCurrentAssets"`
	Cash                    yfVal `json:"cash"`
	NetReceivables          yfVal `json:"netReceivables"`
	Inventory               yfVal `json:"inventory"`
	TotalLiab               yfVal `json:"totalLiab"`
	TotalCurrentLiabilities yfVal `json:"totalCurrentLiabilities"`
	LongTermDebt            yfVal `json:"longTermDebt"`
	ShortLongTermDebt       yfVal `json:"shortLongTermDebt"`
	TotalStockholderEquity  yfVal `json:"totalStockholderEquity"`
	RetainedEarnings        yfVal `json:"retainedEarnings"`
	GoodWill                yfVal `json:"goodWill"`
}

type yfCashFlow struct {
	EndDate                               yfVal `json:"endDate"`
	TotalCashFromOperatingActivities      yfVal `json:"totalCashFromOperatingActivities"`
	TotalCashflowsFromInvestingActivities yfVal `json:"totalCashflowsFromInvestingActivities"`
	TotalCashFromFinancingActivities      yfVal `json:"totalCashFromFinancingActivities"`
	CapitalExpenditures                   yfVal `json:"capitalExpenditures"`
	Depreciation                          yfVal `json:"depreciation"`
	DividendsPaid                         yfVal `json:"dividendsPaid"`
	RepurchaseOfStock                     yfVal `json:"repurchaseOfStock"`
}

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			High  []*float64 `json:"high"`
			Low   []*float64 `json:"low"`
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

// priceRange is the one-year price summary derived from daily bars.
type priceRange struct {
	Last, High, Low, First float64
}

// --- Public methods ---

// Company fetches profile, market data, valuation multiples and up to
// four years of annual statements. Statement modules may come back empty;
// only a missing quote and profile is an error.
func (y *Yahoo) Company(ctx context.Context, ticker string) (*models.CompanyData, error) {
	symbol := utils.NormalizeTicker(ticker)

	cacheKey := "company:" + symbol
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached, nil
	}

	var resp yfSummaryResponse
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		y.baseURL, url.PathEscape(symbol), strings.Join(summaryModules, ","))
	if err := y.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("yahoo quoteSummary %s: %w", symbol, err)
	}
	if e := resp.QuoteSummary.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
		}
		return nil, fmt.Errorf("yahoo quoteSummary %s: %s", symbol, e.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}

	r := resp.QuoteSummary.Result[0]
	if r.Price == nil && r.AssetProfile == nil {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}

	data := &models.CompanyData{
		Ticker:    symbol,
		Profile:   buildProfile(symbol, r),
		Market:    buildMarket(r),
		Valuation: buildValuation(r),
		FetchedAt: time.Now(),
	}
	if r.Income != nil {
		data.Statements.Income = buildIncome(r.Income.Statements, r.CashFlow)
	}
	if r.Balance != nil {
		data.Statements.Balance = buildBalance(r.Balance.Statements)
	}
	if r.CashFlow != nil {
		data.Statements.CashFlow = buildCashFlow(r.CashFlow.Statements)
	}

	// Daily bars give the most recent close and the realised 52-week range.
	if pr, err := y.priceHistory(ctx, symbol); err != nil {
		log.Warn().Err(err).Str("ticker", symbol).Msg("price history unavailable")
	} else {
		data.Market.CurrentPrice = pr.Last
		data.Market.WeekHigh52 = pr.High
		data.Market.WeekLow52 = pr.Low
		if pr.First > 0 {
			data.Market.YTDReturn = (pr.Last - pr.First) / pr.First * 100
		}
	}

	if data.Market.CurrentPrice == 0 && y.quote != nil {
		if q, err := y.quote(symbol); err != nil {
			log.Warn().Err(err).Str("ticker", symbol).Msg("live quote fallback failed")
		} else if q != nil {
			data.Market.CurrentPrice = q.RegularMarketPrice
			if data.Market.MarketState == "" {
				data.Market.MarketState = string(q.MarketState)
			}
			if data.Profile.Name == "" {
				data.Profile.Name = q.ShortName
			}
		}
	}

	y.cache.Set(cacheKey, data)
	return data, nil
}

// priceHistory summarizes one year of daily closes.
func (y *Yahoo) priceHistory(ctx context.Context, symbol string) (priceRange, error) {
	var resp yfChartResponse
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=1y&interval=1d", y.baseURL, url.PathEscape(symbol))
	if err := y.getJSON(ctx, endpoint, &resp); err != nil {
		return priceRange{}, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return priceRange{}, fmt.Errorf("yahoo chart %s: %s", symbol, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return priceRange{}, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}
	pr, ok := summarizeBars(resp.Chart.Result[0])
	if !ok {
		return priceRange{}, fmt.Errorf("yahoo chart %s: no closing prices", symbol)
	}
	return pr, nil
}

func (y *Yahoo) getJSON(ctx context.Context, endpoint string, out any) error {
	return fetchJSON(ctx, y.client, y.limiter, endpoint, out)
}

// --- Helpers ---

func summarizeBars(result yfChartResult) (priceRange, bool) {
	if len(result.Indicators.Quote) == 0 {
		return priceRange{}, false
	}
	q := result.Indicators.Quote[0]

	pr := priceRange{Low: math.MaxFloat64}
	found := false
	for i := range q.Close {
		if q.Close[i] == nil {
			continue
		}
		c := *q.Close[i]
		if !found {
			pr.First = c
			found = true
		}
		pr.Last = c

		high, low := c, c
		if i < len(q.High) && q.High[i] != nil {
			high = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			low = *q.Low[i]
		}
		pr.High = math.Max(pr.High, high)
		pr.Low = math.Min(pr.Low, low)
	}
	if !found {
		return priceRange{}, false
	}
	return pr, true
}

func buildProfile(symbol string, r yfSummaryResult) models.CompanyProfile {
	p := models.CompanyProfile{Ticker: symbol}
	if a := r.AssetProfile; a != nil {
		p.Sector = a.Sector
		p.Industry = a.Industry
		p.Description = a.LongBusinessSummary
		p.Website = a.Website
		p.Employees = a.FullTimeEmployees
		p.Country = a.Country
		p.City = a.City
	}
	if pr := r.Price; pr != nil {
		p.Name = coalesce(pr.LongName, pr.ShortName)
		p.Exchange = pr.ExchangeName
		p.Currency = pr.Currency
	}
	return p
}

func buildMarket(r yfSummaryResult) models.MarketData {
	var m models.MarketData
	if pr := r.Price; pr != nil {
		m.CurrentPrice = pr.RegularMarketPrice.Raw
		m.MarketCap = pr.MarketCap.Raw
		m.MarketState = pr.MarketState
	}
	if fd := r.FinancialData; fd != nil && fd.CurrentPrice.Raw > 0 {
		m.CurrentPrice = fd.CurrentPrice.Raw
	}
	if sd := r.SummaryDetail; sd != nil {
		m.Beta = sd.Beta.Raw
		m.WeekHigh52 = sd.FiftyTwoWeekHigh.Raw
		m.WeekLow52 = sd.FiftyTwoWeekLow.Raw
		if m.MarketCap == 0 {
			m.MarketCap = sd.MarketCap.Raw
		}
	}
	if ks := r.KeyStats; ks != nil {
		m.SharesOutstanding = ks.SharesOutstanding.Raw
		m.YTDReturn = ks.FiftyTwoWeekChange.Raw * 100
	}
	if m.Beta == 0 {
		m.Beta = 1.0
	}
	return m
}

func buildValuation(r yfSummaryResult) models.Valuation {
	var v models.Valuation
	if sd := r.SummaryDetail; sd != nil {
		v.TrailingPE = sd.TrailingPE.Raw
		v.ForwardPE = sd.ForwardPE.Raw
		v.PriceToSales = sd.PriceToSales.Raw
	}
	if ks := r.KeyStats; ks != nil {
		v.TrailingEPS = ks.TrailingEps.Raw
		v.ForwardEPS = ks.ForwardEps.Raw
		v.PEGRatio = ks.PegRatio.Raw
		v.PriceToBook = ks.PriceToBook.Raw
		v.EnterpriseValue = ks.EnterpriseValue.Raw
		v.EVToRevenue = ks.EnterpriseToRevenue.Raw
		v.EVToEBITDA = ks.EnterpriseToEbitda.Raw
	}
	if fd := r.FinancialData; fd != nil {
		v.ProfitMargin = fd.ProfitMargins.Raw
		v.OperatingMargin = fd.OperatingMargins.Raw
		v.ROA = fd.ReturnOnAssets.Raw
		v.ROE = fd.ReturnOnEquity.Raw
	}
	return v
}

func fiscalYear(v yfVal) string {
	if v.Raw == 0 {
		return "N/A"
	}
	return time.Unix(int64(v.Raw), 0).UTC().Format("2006")
}

// buildIncome converts income statements. EBITDA adds the same year's
// depreciation from the cash flow statement to EBIT.
func buildIncome(rows []yfIncome, cf *struct {
	Statements []yfCashFlow `json:"cashflowStatements"`
}) []models.IncomeRecord {
	depreciation := make(map[string]float64)
	if cf != nil {
		for _, c := range cf.Statements {
			depreciation[fiscalYear(c.EndDate)] = c.Depreciation.Raw
		}
	}

	out := make([]models.IncomeRecord, 0, len(rows))
	for _, s := range rows {
		year := fiscalYear(s.EndDate)
		ebit := s.Ebit.Raw
		if ebit == 0 {
			ebit = s.OperatingIncome.Raw
		}
		out = append(out, models.IncomeRecord{
			Year:              year,
			Revenue:           s.TotalRevenue.Raw,
			CostOfRevenue:     s.CostOfRevenue.Raw,
			GrossProfit:       s.GrossProfit.Raw,
			OperatingExpenses: s.TotalOperatingExpenses.Raw,
			OperatingIncome:   s.OperatingIncome.Raw,
			InterestExpense:   math.Abs(s.InterestExpense.Raw),
			NetIncome:         s.NetIncome.Raw,
			RDExpense:         s.ResearchDevelopment.Raw,
			SGAExpense:        s.SellingGeneralAdministrative.Raw,
			EBITDA:            ebit + depreciation[year],
		})
	}
	return out
}

func buildBalance(rows []yfBalance) []models.BalanceRecord {
	out := make([]models.BalanceRecord, 0, len(rows))
	for _, s := range rows {
		out = append(out, models.BalanceRecord{
			Year:               fiscalYear(s.EndDate),
			TotalAssets:        s.TotalAssets.Raw,
			CurrentAssets:      s.TotalCurrentAssets.Raw,
			Cash:               s.Cash.Raw,
			AccountsReceivable: s.NetReceivables.Raw,
			Inventory:          s.Inventory.Raw,
			TotalLiabilities:   s.TotalLiab.Raw,
			CurrentLiabilities: s.TotalCurrentLiabilities.Raw,
			LongTermDebt:       s.LongTermDebt.Raw,
			TotalDebt:          s.LongTermDebt.Raw + s.ShortLongTermDebt.Raw,
			TotalEquity:        s.TotalStockholderEquity.Raw,
			RetainedEarnings:   s.RetainedEarnings.Raw,
			Goodwill:           s.GoodWill.Raw,
		})
	}
	return out
}

func buildCashFlow(rows []yfCashFlow) []models.CashFlowRecord {
	out := make([]models.CashFlowRecord, 0, len(rows))
	for _, s := range rows {
		ocf := s.TotalCashFromOperatingActivities.Raw
		capex := s.CapitalExpenditures.Raw
		out = append(out, models.CashFlowRecord{
			Year:              fiscalYear(s.EndDate),
			OperatingCashFlow: ocf,
			InvestingCashFlow: s.TotalCashflowsFromInvestingActivities.Raw,
			FinancingCashFlow: s.TotalCashFromFinancingActivities.Raw,
			CapEx:             capex,
			FreeCashFlow:      ocf - math.Abs(capex),
			DividendsPaid:     math.Abs(s.DividendsPaid.Raw),
			StockBuybacks:     math.Abs(s.RepurchaseOfStock.Raw),
		})
	}
	return out
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
