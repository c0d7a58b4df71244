package fundamental

import (
	"math"

	"github.com/seenimoa/researchdesk/pkg/models"
)

// CAGR computes the compound annual growth rate of a most-recent-first
// series. Zero and NaN entries are dropped; fewer than two remaining values
// yields 0. Negative starting values are handled as turnarounds. The result
// is clamped to [-1.0, 2.0].
func CAGR(values []float64) float64 {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0) {
			clean = append(clean, v)
		}
	}
	if len(clean) < 2 {
		return 0
	}

	start := clean[len(clean)-1] // oldest
	end := clean[0]              // most recent
	n := float64(len(clean) - 1)

	var cagr float64
	switch {
	case start > 0 && end > 0:
		cagr = math.Pow(end/start, 1/n) - 1
	case start > 0 && end < 0:
		// Profitable to loss-making: treat as a total loss.
		cagr = -1
	case start < 0 && end > 0:
		cagr = math.Min((end-start)/math.Abs(start)/n, 2.0)
	case start < 0 && end < 0:
		cagr = -(math.Pow(math.Abs(start)/math.Abs(end), 1/n) - 1)
	}
	return clamp(cagr, -1.0, 2.0)
}

// ComputeMetrics derives growth, profitability, returns, leverage and
// efficiency metrics from annual statements (most recent first).
func ComputeMetrics(s models.Statements) models.Metrics {
	return models.Metrics{
		Growth:        computeGrowth(s),
		Profitability: computeProfitability(s),
		Returns:       computeReturns(s),
		Leverage:      computeLeverage(s),
		Efficiency:    computeEfficiency(s),
	}
}

func computeGrowth(s models.Statements) models.GrowthMetrics {
	var revenue, earnings, fcf []float64
	for _, inc := range s.Income {
		if inc.Revenue > 0 {
			revenue = append(revenue, inc.Revenue)
		}
		earnings = append(earnings, inc.NetIncome)
	}
	for _, cf := range s.CashFlow {
		fcf = append(fcf, cf.FreeCashFlow)
	}
	return models.GrowthMetrics{
		RevenueCAGR:  CAGR(revenue),
		EarningsCAGR: CAGR(earnings),
		FCFCAGR:      CAGR(fcf),
	}
}

func computeProfitability(s models.Statements) models.Profitability {
	var p models.Profitability
	var gross, op, net, fcfm []float64

	for i, inc := range s.Income {
		if inc.Revenue <= 0 {
			continue
		}
		ym := models.YearMargins{
			Year:        inc.Year,
			GrossMargin: inc.GrossProfit / inc.Revenue * 100,
			OpMargin:    inc.OperatingIncome / inc.Revenue * 100,
			NetMargin:   inc.NetIncome / inc.Revenue * 100,
		}
		if cf, ok := cashFlowFor(s, inc.Year, i); ok {
			ym.FCFMargin = cf.FreeCashFlow / inc.Revenue * 100
			fcfm = append(fcfm, ym.FCFMargin)
		}
		p.ByYear = append(p.ByYear, ym)
		gross = append(gross, ym.GrossMargin)
		op = append(op, ym.OpMargin)
		net = append(net, ym.NetMargin)
	}

	p.AvgGrossMargin = mean(gross)
	p.AvgOpMargin = mean(op)
	p.AvgNetMargin = mean(net)
	p.AvgFCFMargin = mean(fcfm)
	return p
}

func computeReturns(s models.Statements) models.Returns {
	var r models.Returns
	var roe, roa, roic []float64

	for i, inc := range s.Income {
		bs, ok := balanceFor(s, inc.Year, i)
		if !ok {
			continue
		}
		yr := models.YearReturns{Year: inc.Year}
		if bs.TotalEquity > 0 {
			yr.ROE = inc.NetIncome / bs.TotalEquity * 100
			roe = append(roe, yr.ROE)
		}
		if bs.TotalAssets > 0 {
			yr.ROA = inc.NetIncome / bs.TotalAssets * 100
			roa = append(roa, yr.ROA)
		}
		if invested := bs.TotalAssets - bs.CurrentLiabilities; invested > 0 {
			yr.ROIC = inc.OperatingIncome / invested * 100
			roic = append(roic, yr.ROIC)
		}
		r.ByYear = append(r.ByYear, yr)
	}

	r.AvgROE = mean(roe)
	r.AvgROA = mean(roa)
	r.AvgROIC = mean(roic)
	return r
}

func computeLeverage(s models.Statements) models.Leverage {
	var l models.Leverage
	if len(s.Balance) == 0 {
		return l
	}
	bs := s.Balance[0]
	if bs.TotalEquity > 0 {
		l.DebtToEquity = bs.TotalDebt / bs.TotalEquity
	}
	if bs.CurrentLiabilities > 0 {
		l.CurrentRatio = bs.CurrentAssets / bs.CurrentLiabilities
	}
	l.NetDebt = bs.TotalDebt - bs.Cash
	return l
}

func computeEfficiency(s models.Statements) models.Efficiency {
	var e models.Efficiency
	if len(s.Balance) == 0 || len(s.Income) == 0 {
		return e
	}
	bs, inc := s.Balance[0], s.Income[0]
	if bs.TotalAssets > 0 {
		e.AssetTurnover = inc.Revenue / bs.TotalAssets
	}
	if bs.Inventory > 0 {
		e.InventoryTurnover = inc.CostOfRevenue / bs.Inventory
	}
	if inc.Revenue > 0 {
		e.DSO = bs.AccountsReceivable / inc.Revenue * 365
	}
	return e
}

// cashFlowFor finds the cash flow record for a year, falling back to the
// same position when years are missing.
func cashFlowFor(s models.Statements, year string, idx int) (models.CashFlowRecord, bool) {
	for _, cf := range s.CashFlow {
		if year != "" && cf.Year == year {
			return cf, true
		}
	}
	if year == "" && idx < len(s.CashFlow) {
		return s.CashFlow[idx], true
	}
	return models.CashFlowRecord{}, false
}

func balanceFor(s models.Statements, year string, idx int) (models.BalanceRecord, bool) {
	for _, bs := range s.Balance {
		if year != "" && bs.Year == year {
			return bs, true
		}
	}
	if year == "" && idx < len(s.Balance) {
		return s.Balance[idx], true
	}
	return models.BalanceRecord{}, false
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// growthBetween returns the percentage change from prev to cur, or false
// when prev is not positive.
func growthBetween(cur, prev float64) (float64, bool) {
	if prev <= 0 {
		return 0, false
	}
	return (cur - prev) / prev * 100, true
}
