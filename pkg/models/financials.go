package models

// IncomeRecord is one fiscal year of income statement line items.
// Amounts are in reporting currency units (not millions).
type IncomeRecord struct {
	Year              string  `json:"year"` // e.g., "2024"
	Revenue           float64 `json:"revenue"`
	CostOfRevenue     float64 `json:"cost_of_revenue"`
	GrossProfit       float64 `json:"gross_profit"`
	OperatingExpenses float64 `json:"operating_expenses"`
	OperatingIncome   float64 `json:"operating_income"`
	InterestExpense   float64 `json:"interest_expense"` // always stored as a positive number
	NetIncome         float64 `json:"net_income"`
	RDExpense         float64 `json:"rd_expense"`
	SGAExpense        float64 `json:"sga_expense"`
	EBITDA            float64 `json:"ebitda"`
}

// BalanceRecord is one fiscal year of balance sheet line items.
type BalanceRecord struct {
	Year               string  `json:"year"`
	TotalAssets        float64 `json:"total_assets"`
	CurrentAssets      float64 `json:"current_assets"`
	Cash               float64 `json:"cash"`
	AccountsReceivable float64 `json:"accounts_receivable"`
	Inventory          float64 `json:"inventory"`
	TotalLiabilities   float64 `json:"total_liabilities"`
	CurrentLiabilities float64 `json:"current_liabilities"`
	LongTermDebt       float64 `json:"long_term_debt"`
	TotalDebt          float64 `json:"total_debt"`
	TotalEquity        float64 `json:"total_equity"`
	RetainedEarnings   float64 `json:"retained_earnings"`
	Goodwill           float64 `json:"goodwill"`
}

// CashFlowRecord is one fiscal year of cash flow statement line items.
type CashFlowRecord struct {
	Year              string  `json:"year"`
	OperatingCashFlow float64 `json:"operating_cash_flow"`
	InvestingCashFlow float64 `json:"investing_cash_flow"`
	FinancingCashFlow float64 `json:"financing_cash_flow"`
	CapEx             float64 `json:"capex"`
	FreeCashFlow      float64 `json:"free_cash_flow"` // OCF - |CapEx|
	DividendsPaid     float64 `json:"dividends_paid"`
	StockBuybacks     float64 `json:"stock_buybacks"`
}

// Statements groups the annual statements, most recent year first.
type Statements struct {
	Income   []IncomeRecord   `json:"income"`
	Balance  []BalanceRecord  `json:"balance"`
	CashFlow []CashFlowRecord `json:"cash_flow"`
}

// Empty reports whether no statement data was collected at all.
func (s Statements) Empty() bool {
	return len(s.Income) == 0 && len(s.Balance) == 0 && len(s.CashFlow) == 0
}

// GrowthMetrics holds compound annual growth rates as decimals (0.15 = 15%).
type GrowthMetrics struct {
	RevenueCAGR  float64 `json:"revenue_cagr"`
	EarningsCAGR float64 `json:"earnings_cagr"`
	FCFCAGR      float64 `json:"fcf_cagr"`
}

// YearMargins is one year of margin percentages.
type YearMargins struct {
	Year        string  `json:"year"`
	GrossMargin float64 `json:"gross_margin"`
	OpMargin    float64 `json:"operating_margin"`
	NetMargin   float64 `json:"net_margin"`
	FCFMargin   float64 `json:"fcf_margin"`
}

// Profitability holds per-year margins and their averages (percent).
type Profitability struct {
	ByYear         []YearMargins `json:"by_year"`
	AvgGrossMargin float64       `json:"avg_gross_margin"`
	AvgOpMargin    float64       `json:"avg_operating_margin"`
	AvgNetMargin   float64       `json:"avg_net_margin"`
	AvgFCFMargin   float64       `json:"avg_fcf_margin"`
}

// YearReturns is one year of return ratios (percent).
type YearReturns struct {
	Year string  `json:"year"`
	ROE  float64 `json:"roe"`
	ROA  float64 `json:"roa"`
	ROIC float64 `json:"roic"`
}

// Returns holds return ratios by year and their averages.
type Returns struct {
	ByYear  []YearReturns `json:"by_year"`
	AvgROE  float64       `json:"avg_roe"`
	AvgROA  float64       `json:"avg_roa"`
	AvgROIC float64       `json:"avg_roic"`
}

// Leverage holds the latest balance sheet leverage ratios.
type Leverage struct {
	DebtToEquity float64 `json:"debt_to_equity"`
	CurrentRatio float64 `json:"current_ratio"`
	NetDebt      float64 `json:"net_debt"`
}

// Efficiency holds the latest efficiency ratios.
type Efficiency struct {
	AssetTurnover     float64 `json:"asset_turnover"`
	InventoryTurnover float64 `json:"inventory_turnover"`
	DSO               float64 `json:"dso"` // days sales outstanding
}

// Metrics aggregates all derived metrics computed from the statements.
type Metrics struct {
	Growth        GrowthMetrics `json:"growth"`
	Profitability Profitability `json:"profitability"`
	Returns       Returns       `json:"returns"`
	Leverage      Leverage      `json:"leverage"`
	Efficiency    Efficiency    `json:"efficiency"`
}

// Severity grades a red flag.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
)

// RedFlag is one accounting quality warning found in the statements.
type RedFlag struct {
	Kind     string   `json:"kind"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
}

// RedFlagReport is the outcome of the quality checks.
type RedFlagReport struct {
	Flags            []RedFlag `json:"flags"`
	FCFToNetIncome   float64   `json:"fcf_to_ni_ratio"`
	GoodwillPct      float64   `json:"goodwill_pct"`
	InterestCoverage float64   `json:"interest_coverage"`
}

// HighCount returns the number of HIGH severity flags.
func (r RedFlagReport) HighCount() int {
	n := 0
	for _, f := range r.Flags {
		if f.Severity == SeverityHigh {
			n++
		}
	}
	return n
}
