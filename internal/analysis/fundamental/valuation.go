package fundamental

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrNonPositiveFCF marks a DCF that could not be computed because the
// starting free cash flow is zero or negative.
var ErrNonPositiveFCF = errors.New("FCF must be positive for DCF calculation")

// Fallbacks applied to degenerate DCF inputs.
const (
	fallbackGrowthRate    = 0.10
	minDiscountSpread     = 0.05
	defaultDiscountRate   = 0.10
	defaultTerminalGrowth = 0.03
	defaultHighGrowthYrs  = 5
)

// DCFParams holds parameters for a two-stage DCF valuation.
type DCFParams struct {
	FreeCashFlow      float64 // most recent annual FCF
	GrowthRate        float64 // stage 1 annual growth (decimal, e.g., 0.15)
	DiscountRate      float64 // WACC / required return (decimal)
	TerminalGrowth    float64 // perpetual growth after stage 1
	HighGrowthYears   int     // length of stage 1
	SharesOutstanding float64 // 0 = unknown, no per-share value
}

// DCFResult is the outcome of a DCF run. When Err is set nothing else is
// meaningful.
type DCFResult struct {
	Err                       error     `json:"-"`
	ErrorText                 string    `json:"error,omitempty"`
	PerShare                  *float64  `json:"intrinsic_value_per_share"`
	TotalPresentValue         float64   `json:"total_present_value"`
	Stage1Value               float64   `json:"stage1_value"`
	TerminalValuePV           float64   `json:"terminal_value"`
	TerminalValueUndiscounted float64   `json:"terminal_value_undiscounted"`
	ProjectedFCF              []float64 `json:"projected_fcf"`
	CurrentFCF                float64   `json:"current_fcf"`
	GrowthRate                float64   `json:"growth_rate"`
	DiscountRate              float64   `json:"discount_rate"`
	TerminalGrowth            float64   `json:"terminal_growth_rate"`
	HighGrowthYears           int       `json:"high_growth_years"`
	Adjustments               []string  `json:"adjustments,omitempty"` // inputs that were replaced
}

// DCF performs a two-stage discounted cash flow valuation.
//
// Stage 1 discounts fcf·(1+g)^y for y = 1..n. Stage 2 is a Gordon growth
// terminal value on fcf·(1+g)^(n+1), discounted back n years.
func DCF(p DCFParams) DCFResult {
	if p.FreeCashFlow <= 0 {
		return DCFResult{Err: ErrNonPositiveFCF, ErrorText: ErrNonPositiveFCF.Error(), CurrentFCF: p.FreeCashFlow}
	}
	if p.DiscountRate == 0 {
		p.DiscountRate = defaultDiscountRate
	}
	if p.TerminalGrowth == 0 {
		p.TerminalGrowth = defaultTerminalGrowth
	}
	if p.HighGrowthYears <= 0 {
		p.HighGrowthYears = defaultHighGrowthYrs
	}

	res := DCFResult{CurrentFCF: p.FreeCashFlow, HighGrowthYears: p.HighGrowthYears}

	if p.GrowthRate <= 0 || p.GrowthRate > 1.0 {
		res.Adjustments = append(res.Adjustments,
			fmt.Sprintf("growth rate %.1f%% unrealistic, using %.0f%%", p.GrowthRate*100, fallbackGrowthRate*100))
		p.GrowthRate = fallbackGrowthRate
	}
	if p.DiscountRate <= p.TerminalGrowth {
		adjusted := p.TerminalGrowth + minDiscountSpread
		res.Adjustments = append(res.Adjustments,
			fmt.Sprintf("discount rate %.1f%% not above terminal growth, using %.1f%%", p.DiscountRate*100, adjusted*100))
		p.DiscountRate = adjusted
	}

	// Stage 1: high growth period.
	res.ProjectedFCF = make([]float64, 0, p.HighGrowthYears)
	for year := 1; year <= p.HighGrowthYears; year++ {
		fcfYear := p.FreeCashFlow * math.Pow(1+p.GrowthRate, float64(year))
		res.ProjectedFCF = append(res.ProjectedFCF, fcfYear)
		res.Stage1Value += fcfYear / math.Pow(1+p.DiscountRate, float64(year))
	}

	// Stage 2: terminal value.
	fcfTerminal := p.FreeCashFlow * math.Pow(1+p.GrowthRate, float64(p.HighGrowthYears+1))
	res.TerminalValueUndiscounted = fcfTerminal / (p.DiscountRate - p.TerminalGrowth)
	res.TerminalValuePV = res.TerminalValueUndiscounted / math.Pow(1+p.DiscountRate, float64(p.HighGrowthYears))

	res.TotalPresentValue = res.Stage1Value + res.TerminalValuePV
	if p.SharesOutstanding > 0 {
		perShare := res.TotalPresentValue / p.SharesOutstanding
		res.PerShare = &perShare
	}

	res.GrowthRate = p.GrowthRate
	res.DiscountRate = p.DiscountRate
	res.TerminalGrowth = p.TerminalGrowth
	return res
}

// MOSResult is a margin-of-safety assessment.
type MOSResult struct {
	Computable     bool    `json:"computable"`
	MarginOfSafety float64 `json:"margin_of_safety"` // percent
	IntrinsicValue float64 `json:"intrinsic_value"`
	CurrentPrice   float64 `json:"current_price"`
	PriceToValue   float64 `json:"price_to_value"`
	Verdict        string  `json:"verdict"`
	Assessment     string  `json:"assessment"`
}

// MarginOfSafety computes (IV - P) / IV × 100 and grades it.
func MarginOfSafety(intrinsicValue, currentPrice float64) MOSResult {
	if intrinsicValue <= 0 {
		return MOSResult{Assessment: "Cannot calculate - invalid intrinsic value"}
	}

	mos := (intrinsicValue - currentPrice) / intrinsicValue * 100
	r := MOSResult{
		Computable:     true,
		MarginOfSafety: mos,
		IntrinsicValue: intrinsicValue,
		CurrentPrice:   currentPrice,
		PriceToValue:   currentPrice / intrinsicValue,
	}

	switch {
	case mos > 25:
		r.Verdict, r.Assessment = "STRONG BUY", "🟢 STRONG BUY - Significant undervaluation"
	case mos > 10:
		r.Verdict, r.Assessment = "BUY", "🟡 BUY - Moderate undervaluation"
	case mos > -10:
		r.Verdict, r.Assessment = "FAIR", "⚪ FAIR - Roughly fairly valued"
	case mos > -25:
		r.Verdict, r.Assessment = "CAUTION", "🟠 CAUTION - Moderately overvalued"
	default:
		r.Verdict, r.Assessment = "AVOID", "🔴 AVOID - Significantly overvalued"
	}
	return r
}

// CompanyStage adjusts how much of historical growth is expected to persist.
type CompanyStage string

const (
	StageStartup   CompanyStage = "startup"
	StageGrowth    CompanyStage = "growth"
	StageMature    CompanyStage = "mature"
	StageDeclining CompanyStage = "declining"
)

var stageMultipliers = map[CompanyStage]float64{
	StageStartup:   1.2,
	StageGrowth:    1.0,
	StageMature:    0.8,
	StageDeclining: 0.5,
}

// GrowthEstimate is the output of DynamicGrowthRate.
type GrowthEstimate struct {
	GrowthRate    float64 `json:"growth_rate"`
	HistoricalAvg float64 `json:"historical_avg"`
	StageAdjusted float64 `json:"stage_adjusted"`
	SizeCap       float64 `json:"size_cap"`
	Reasoning     string  `json:"reasoning"`
}

// DynamicGrowthRate blends historical CAGRs (FCF weighted heaviest), applies
// a company-stage multiplier and caps the result by market-cap size.
func DynamicGrowthRate(revenueCAGR, earningsCAGR, fcfCAGR, marketCap float64, stage CompanyStage) GrowthEstimate {
	histAvg := revenueCAGR*0.3 + earningsCAGR*0.3 + fcfCAGR*0.4

	mult, ok := stageMultipliers[stage]
	if !ok {
		mult = 1.0
	}
	stageAdj := histAvg * mult

	capB := marketCap / 1e9
	var sizeCap float64
	switch {
	case capB > 500:
		sizeCap = 0.10
	case capB > 200:
		sizeCap = 0.12
	case capB > 50:
		sizeCap = 0.15
	case capB > 10:
		sizeCap = 0.20
	default:
		sizeCap = 0.30
	}

	final := clamp(math.Min(stageAdj, sizeCap), 0, 0.30)

	return GrowthEstimate{
		GrowthRate:    final,
		HistoricalAvg: histAvg,
		StageAdjusted: stageAdj,
		SizeCap:       sizeCap,
		Reasoning: fmt.Sprintf("Historical avg: %.1f%%, Stage (%s): %.1f%%, Size constraint ($%.1fB): %.1f%%, Final: %.1f%%",
			histAvg*100, stage, stageAdj*100, capB, sizeCap*100, final*100),
	}
}

// WACCParams holds the inputs for DynamicWACC. Zero values take defaults.
type WACCParams struct {
	RiskFreeRate      float64 // default 4.5%
	Beta              float64 // default 1.0
	MarketCap         float64
	DebtToEquity      float64
	EquityRiskPremium float64 // default 6.5%
}

// WACCEstimate is the discount rate breakdown.
type WACCEstimate struct {
	WACC          float64 `json:"wacc"`
	CostOfEquity  float64 `json:"cost_of_equity"`
	RiskFreeRate  float64 `json:"risk_free_rate"`
	Beta          float64 `json:"beta"`
	EquityPremium float64 `json:"equity_risk_premium"`
	SizePremium   float64 `json:"size_premium"`
	RiskPremium   float64 `json:"risk_premium"`
	Breakdown     string  `json:"breakdown"`
}

// DynamicWACC estimates the discount rate with CAPM plus size and leverage
// premiums. Financing is treated as all-equity.
func DynamicWACC(p WACCParams) WACCEstimate {
	if p.RiskFreeRate == 0 {
		p.RiskFreeRate = 0.045
	}
	if p.Beta == 0 {
		p.Beta = 1.0
	}
	if p.EquityRiskPremium == 0 {
		p.EquityRiskPremium = 0.065
	}

	capB := p.MarketCap / 1e9
	var size float64
	switch {
	case capB < 2:
		size = 0.035
	case capB < 10:
		size = 0.025
	case capB < 50:
		size = 0.015
	case capB < 200:
		size = 0.008
	}

	var lev float64
	switch {
	case p.DebtToEquity > 2.0:
		lev = 0.025
	case p.DebtToEquity > 1.0:
		lev = 0.015
	case p.DebtToEquity > 0.5:
		lev = 0.008
	}

	coe := p.RiskFreeRate + p.Beta*p.EquityRiskPremium + size + lev
	return WACCEstimate{
		WACC:          coe,
		CostOfEquity:  coe,
		RiskFreeRate:  p.RiskFreeRate,
		Beta:          p.Beta,
		EquityPremium: p.EquityRiskPremium,
		SizePremium:   size,
		RiskPremium:   lev,
		Breakdown: fmt.Sprintf("WACC = %.1f%% (RF) + %.2f × %.1f%% (ERP) + %.1f%% (Size) + %.1f%% (Risk) = %.1f%%",
			p.RiskFreeRate*100, p.Beta, p.EquityRiskPremium*100, size*100, lev*100, coe*100),
	}
}

// MultipleValuation is a justified-multiple intrinsic value estimate.
type MultipleValuation struct {
	IntrinsicValue float64 `json:"intrinsic_value_per_share"`
	Multiple       float64 `json:"justified_multiple"`
	Base           float64 `json:"base_multiple"`
	QualityFactor  float64 `json:"quality_multiplier"`
	PerShare       float64 `json:"per_share_input"` // EPS or FCF per share used
	Reasoning      string  `json:"reasoning"`
}

// PEValuation values a share at a justified P/E derived from growth and
// quality. Forward EPS is preferred when positive.
func PEValuation(trailingEPS, forwardEPS float64, qualityScore int, growthRate float64) MultipleValuation {
	base := tieredMultiple(growthRate*100, 28, 20, 15, 12)
	q := qualityMultiplier(qualityScore)
	eps := trailingEPS
	if forwardEPS > 0 {
		eps = forwardEPS
	}
	pe := base * q
	return MultipleValuation{
		IntrinsicValue: pe * eps,
		Multiple:       pe,
		Base:           base,
		QualityFactor:  q,
		PerShare:       eps,
		Reasoning: fmt.Sprintf("Growth %.1f%% + Quality %d/10 → Justified P/E %.1fx × EPS $%.2f",
			growthRate*100, qualityScore, pe, eps),
	}
}

// PFCFValuation values a share at a justified P/FCF multiple.
func PFCFValuation(fcfPerShare float64, qualityScore int, growthRate float64) MultipleValuation {
	base := tieredMultiple(growthRate*100, 30, 22, 16, 12)
	q := qualityMultiplier(qualityScore)
	m := base * q
	return MultipleValuation{
		IntrinsicValue: m * fcfPerShare,
		Multiple:       m,
		Base:           base,
		QualityFactor:  q,
		PerShare:       fcfPerShare,
		Reasoning: fmt.Sprintf("Growth %.1f%% + Quality %d/10 → Justified P/FCF %.1fx × FCF $%.2f",
			growthRate*100, qualityScore, m, fcfPerShare),
	}
}

// tieredMultiple picks a base multiple by growth percentage bands
// (>15, >10, >5, else).
func tieredMultiple(growthPct, high, mid, low, floor float64) float64 {
	switch {
	case growthPct > 15:
		return high
	case growthPct > 10:
		return mid
	case growthPct > 5:
		return low
	default:
		return floor
	}
}

func qualityMultiplier(score int) float64 {
	switch {
	case score >= 8:
		return 1.0
	case score >= 6:
		return 0.85
	case score >= 4:
		return 0.70
	default:
		return 0.55
	}
}

// DCFReport formats a DCF result (and optional MOS) as plain text for the
// value analyst's context.
func DCFReport(r DCFResult, currentPrice float64) string {
	var b strings.Builder
	sep := strings.Repeat("=", 80)

	if r.Err != nil {
		b.WriteString("\nDCF VALUATION - ERROR\n---------------------\n")
		fmt.Fprintf(&b, "⚠️  %s\n\nDCF calculation could not be completed.\n", r.Err)
		return b.String()
	}

	fmt.Fprintf(&b, "\n%s\nDISCOUNTED CASH FLOW (DCF) VALUATION\n%s\n\n", sep, sep)
	b.WriteString("📊 INTRINSIC VALUE CALCULATION:\n\n")
	fmt.Fprintf(&b, "Total Enterprise Value: $%.0f\n", r.TotalPresentValue)
	if r.PerShare != nil {
		fmt.Fprintf(&b, "Intrinsic Value Per Share: $%.2f\n", *r.PerShare)
	}

	b.WriteString("\nBREAKDOWN:\n")
	fmt.Fprintf(&b, "- Stage 1 Value (High Growth): $%.0f\n", r.Stage1Value)
	fmt.Fprintf(&b, "- Stage 2 Value (Terminal): $%.0f\n", r.TerminalValuePV)

	b.WriteString("\nASSUMPTIONS USED:\n")
	fmt.Fprintf(&b, "- Current FCF: $%.0f\n", r.CurrentFCF)
	fmt.Fprintf(&b, "- High Growth Period: %d years\n", r.HighGrowthYears)
	fmt.Fprintf(&b, "- Growth Rate (Stage 1): %.1f%%\n", r.GrowthRate*100)
	fmt.Fprintf(&b, "- Discount Rate (WACC): %.1f%%\n", r.DiscountRate*100)
	fmt.Fprintf(&b, "- Terminal Growth Rate: %.1f%%\n", r.TerminalGrowth*100)
	for _, adj := range r.Adjustments {
		fmt.Fprintf(&b, "- Adjusted: %s\n", adj)
	}

	if currentPrice > 0 && r.PerShare != nil {
		mos := MarginOfSafety(*r.PerShare, currentPrice)
		if mos.Computable {
			fmt.Fprintf(&b, "\n%s\nMARGIN OF SAFETY ANALYSIS\n%s\n\n", sep, sep)
			fmt.Fprintf(&b, "Current Market Price: $%.2f\n", currentPrice)
			fmt.Fprintf(&b, "DCF Intrinsic Value: $%.2f\n\n", *r.PerShare)
			fmt.Fprintf(&b, "Margin of Safety: %.1f%%\n", mos.MarginOfSafety)
			fmt.Fprintf(&b, "Price/Value Ratio: %.2fx\n\n", mos.PriceToValue)
			fmt.Fprintf(&b, "%s\n", mos.Assessment)
			verdict := "OVERVALUED ✗"
			if mos.MarginOfSafety > 0 {
				verdict = "UNDERVALUED ✓"
			}
			fmt.Fprintf(&b, "\nCurrent Assessment: %s\n", verdict)
			fmt.Fprintf(&b, "Potential Upside/Downside: %+.1f%%\n", mos.MarginOfSafety)
		}
	}
	return b.String()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
