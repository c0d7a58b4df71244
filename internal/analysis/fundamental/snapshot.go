package fundamental

import (
	"fmt"
	"strings"

	"github.com/seenimoa/researchdesk/pkg/models"
)

// QualityScore grades financial quality 0-10 from computed metrics. It is a
// deterministic stand-in for the value analyst's score, used before any
// model has run.
func QualityScore(m models.Metrics, flags models.RedFlagReport) int {
	score := 0.0

	// Returns on capital (max 3).
	switch roic := m.Returns.AvgROIC; {
	case roic > 20:
		score += 3
	case roic > 12:
		score += 2
	case roic > 6:
		score++
	}

	// Margins (max 3).
	switch op := m.Profitability.AvgOpMargin; {
	case op > 25:
		score += 3
	case op > 15:
		score += 2
	case op > 5:
		score++
	}

	// Growth (max 2).
	switch g := m.Growth.RevenueCAGR; {
	case g > 0.10:
		score += 2
	case g > 0.03:
		score++
	}

	// Balance sheet (max 2).
	if m.Leverage.DebtToEquity < 1.0 {
		score++
	}
	if m.Leverage.CurrentRatio >= 1.2 {
		score++
	}

	score -= float64(flags.HighCount())
	return int(clamp(score, 0, 10))
}

// InferStage classifies the company's life-cycle stage from its growth.
func InferStage(g models.GrowthMetrics) CompanyStage {
	switch {
	case g.RevenueCAGR > 0.30 && g.EarningsCAGR <= 0:
		return StageStartup
	case g.RevenueCAGR > 0.12:
		return StageGrowth
	case g.RevenueCAGR >= 0:
		return StageMature
	default:
		return StageDeclining
	}
}

// Valuation bundles the deterministic valuation cross-checks for a company.
type Valuation struct {
	Quality CompanyQuality
	Growth  GrowthEstimate
	WACC    WACCEstimate
	DCF     DCFResult
	MOS     MOSResult
	PE      *MultipleValuation
	PFCF    *MultipleValuation
	Price   float64
}

// CompanyQuality is the inferred quality score and life-cycle stage.
type CompanyQuality struct {
	Score int
	Stage CompanyStage
}

// Value runs the growth estimate, WACC, DCF, margin of safety and multiple
// valuations against collected company data.
func Value(data *models.CompanyData) Valuation {
	m := data.Metrics
	v := Valuation{
		Quality: CompanyQuality{
			Score: QualityScore(m, data.RedFlags),
			Stage: InferStage(m.Growth),
		},
		Price: data.Market.CurrentPrice,
	}

	v.Growth = DynamicGrowthRate(m.Growth.RevenueCAGR, m.Growth.EarningsCAGR, m.Growth.FCFCAGR,
		data.Market.MarketCap, v.Quality.Stage)
	v.WACC = DynamicWACC(WACCParams{
		Beta:         data.Market.Beta,
		MarketCap:    data.Market.MarketCap,
		DebtToEquity: m.Leverage.DebtToEquity,
	})

	fcf := latestFCF(data.Statements)
	v.DCF = DCF(DCFParams{
		FreeCashFlow:      fcf,
		GrowthRate:        v.Growth.GrowthRate,
		DiscountRate:      v.WACC.WACC,
		TerminalGrowth:    defaultTerminalGrowth,
		HighGrowthYears:   defaultHighGrowthYrs,
		SharesOutstanding: data.Market.SharesOutstanding,
	})
	if v.DCF.PerShare != nil {
		v.MOS = MarginOfSafety(*v.DCF.PerShare, v.Price)
	}

	if data.Valuation.TrailingEPS != 0 || data.Valuation.ForwardEPS != 0 {
		pe := PEValuation(data.Valuation.TrailingEPS, data.Valuation.ForwardEPS, v.Quality.Score, v.Growth.GrowthRate)
		v.PE = &pe
	}
	if fcf > 0 && data.Market.SharesOutstanding > 0 {
		pfcf := PFCFValuation(fcf/data.Market.SharesOutstanding, v.Quality.Score, v.Growth.GrowthRate)
		v.PFCF = &pfcf
	}
	return v
}

// Snapshot reduces a Valuation to the block stored on the analysis result.
func (v Valuation) Snapshot() models.ValuationSnapshot {
	s := models.ValuationSnapshot{
		GrowthRate:   v.Growth.GrowthRate,
		DiscountRate: v.WACC.WACC,
		DCFPerShare:  v.DCF.PerShare,
	}
	if v.DCF.Err != nil {
		s.Note = v.DCF.ErrorText
	}
	if v.MOS.Computable {
		mos := v.MOS.MarginOfSafety
		s.MarginOfSafety = &mos
		s.Assessment = v.MOS.Verdict
	}
	if v.PE != nil {
		s.PEValue = v.PE.IntrinsicValue
	}
	if v.PFCF != nil {
		s.PFCFValue = v.PFCF.IntrinsicValue
	}
	return s
}

// Report renders the valuation as plain text for the value analyst.
func (v Valuation) Report() string {
	var b strings.Builder
	b.WriteString("DETERMINISTIC VALUATION CROSS-CHECK\n")
	fmt.Fprintf(&b, "Inferred quality score: %d/10 (stage: %s)\n", v.Quality.Score, v.Quality.Stage)
	fmt.Fprintf(&b, "Growth estimate: %s\n", v.Growth.Reasoning)
	fmt.Fprintf(&b, "Discount rate: %s\n", v.WACC.Breakdown)
	b.WriteString(DCFReport(v.DCF, v.Price))

	b.WriteString("\nMULTIPLE-BASED VALUATION:\n")
	if v.PE != nil {
		fmt.Fprintf(&b, "- P/E method: $%.2f per share (%s)\n", v.PE.IntrinsicValue, v.PE.Reasoning)
	} else {
		b.WriteString("- P/E method: EPS data not available\n")
	}
	if v.PFCF != nil {
		fmt.Fprintf(&b, "- P/FCF method: $%.2f per share (%s)\n", v.PFCF.IntrinsicValue, v.PFCF.Reasoning)
	} else {
		b.WriteString("- P/FCF method: FCF or share count not available\n")
	}
	return b.String()
}

// latestFCF returns the most recent free cash flow, deriving it from
// operating cash flow and capex when the reported figure is zero.
func latestFCF(s models.Statements) float64 {
	if len(s.CashFlow) == 0 {
		return 0
	}
	cf := s.CashFlow[0]
	if cf.FreeCashFlow != 0 {
		return cf.FreeCashFlow
	}
	if cf.OperatingCashFlow != 0 && cf.CapEx != 0 {
		capex := cf.CapEx
		if capex < 0 {
			capex = -capex
		}
		return cf.OperatingCashFlow - capex
	}
	return 0
}
