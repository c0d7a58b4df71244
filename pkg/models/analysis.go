package models

import (
	"strings"
	"time"
)

// Stage identifies one LLM-backed step of the research pipeline.
type Stage string

const (
	StageBusiness Stage = "business_analyst"
	StageValue    Stage = "value_analyst"
	StageGrowth   Stage = "growth_analyst"
	StageRisk     Stage = "risk_analyst"
	StageCIO      Stage = "chief_investment_officer"

	// StageEvents extracts material events from news. It feeds the business
	// context and is not one of the five reported stages.
	StageEvents Stage = "events_analyst"
)

// Stages returns all stages in pipeline order.
func Stages() []Stage {
	return []Stage{StageBusiness, StageValue, StageGrowth, StageRisk, StageCIO}
}

// Title returns the human-readable analyst title for the stage.
func (s Stage) Title() string {
	switch s {
	case StageBusiness:
		return "Business Analyst"
	case StageValue:
		return "Value Analyst"
	case StageGrowth:
		return "Growth Analyst"
	case StageRisk:
		return "Risk Analyst"
	case StageCIO:
		return "Chief Investment Officer"
	case StageEvents:
		return "Events Analyst"
	default:
		return string(s)
	}
}

// StageReport is the verbatim free-text output of one stage.
type StageReport struct {
	Stage       Stage         `json:"stage"`
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Content     string        `json:"full_analysis"`
	Failed      bool          `json:"failed"` // Content is an inline error string
	Tokens      int           `json:"tokens,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// ValueSummary holds the fields recovered from the value analyst report.
// Nil means the field could not be found in the text.
type ValueSummary struct {
	QualityScore   *int     `json:"quality_score"`
	Moat           *string  `json:"moat"`
	Recommendation *string  `json:"recommendation"`
	Conviction     *int     `json:"conviction"`
	MarginOfSafety *float64 `json:"margin_of_safety"`
	IntrinsicValue *float64 `json:"intrinsic_value"`
	CurrentPrice   *float64 `json:"current_price"`
}

// GrowthSummary holds the fields recovered from the growth analyst report.
type GrowthSummary struct {
	HistoricalQuality *int     `json:"historical_quality"`
	MarketSpace       *int     `json:"market_space"`
	Sustainability    *int     `json:"sustainability"`
	Recommendation    *string  `json:"recommendation"`
	Conviction        *int     `json:"conviction"`
	PositionSize      *float64 `json:"position_size"`
	ExpectedReturn5Y  *float64 `json:"expected_return_5y"`
	BullCase          *float64 `json:"bull_case"`
	BaseCase          *float64 `json:"base_case"`
	BearCase          *float64 `json:"bear_case"`
}

// RiskSummary holds the fields recovered from the risk analyst report.
type RiskSummary struct {
	RedFlagsCount       *int     `json:"red_flags_count"`
	BusinessModelRisk   *int     `json:"business_model_risk"` // out of 50
	ManagementRisk      *string  `json:"management_risk"`
	ValuationRisk       *string  `json:"valuation_risk"`
	OverallRiskScore    *float64 `json:"overall_risk_score"` // out of 10
	RiskRating          *string  `json:"risk_rating"`
	MaxPositionSize     *float64 `json:"max_position_size"`
	BearCaseDownside    *float64 `json:"bear_case_downside"`
	UpsideDownsideRatio *float64 `json:"upside_downside_ratio"`
	Recommendation      *string  `json:"recommendation"`
}

// NoRecommendation is the placeholder used when the CIO report carries no
// recognizable final recommendation.
const NoRecommendation = "N/A"

// Decision is the final record recovered from the CIO synthesis.
type Decision struct {
	Recommendation      string   `json:"recommendation"`
	Conviction          *int     `json:"conviction"`
	PositionSize        *float64 `json:"position_size"`
	ExpectedReturn3Y    *float64 `json:"expected_return_3y"`
	CompositeScore      *float64 `json:"composite_score"` // 0-100
	FairValue           *float64 `json:"fair_value"`
	Upside              *float64 `json:"upside"`
	BullReturn          *float64 `json:"bull_return"`
	BaseReturn          *float64 `json:"base_return"`
	BearReturn          *float64 `json:"bear_return"`
	BullProbability     *int     `json:"bull_probability"`
	BaseProbability     *int     `json:"base_probability"`
	BearProbability     *int     `json:"bear_probability"`
	UpsideDownsideRatio *float64 `json:"upside_downside_ratio"`
	EntryLow            *float64 `json:"entry_low"`
	EntryHigh           *float64 `json:"entry_high"`
	StopLoss            *float64 `json:"stop_loss"`
	TargetPrice         *float64 `json:"target_price"`
}

// ValueAnalysis pairs the value report with its parsed summary.
type ValueAnalysis struct {
	StageReport
	Summary ValueSummary `json:"summary"`
}

// GrowthAnalysis pairs the growth report with its parsed summary.
type GrowthAnalysis struct {
	StageReport
	Summary GrowthSummary `json:"summary"`
}

// RiskAnalysis pairs the risk report with its parsed summary.
type RiskAnalysis struct {
	StageReport
	Summary RiskSummary `json:"summary"`
}

// CIOSynthesis pairs the CIO report with the extracted decision.
type CIOSynthesis struct {
	StageReport
	Decision Decision `json:"decision"`
}

// ValuationSnapshot is the deterministic valuation cross-check computed
// before the LLM stages run.
type ValuationSnapshot struct {
	GrowthRate     float64  `json:"growth_rate"`
	DiscountRate   float64  `json:"discount_rate"`
	DCFPerShare    *float64 `json:"dcf_per_share"`
	MarginOfSafety *float64 `json:"margin_of_safety"`
	Assessment     string   `json:"assessment"`
	PEValue        float64  `json:"pe_value"`
	PFCFValue      float64  `json:"pfcf_value"`
	Note           string   `json:"note,omitempty"`
}

// AnalysisResult is the complete output of one pipeline run for one ticker.
type AnalysisResult struct {
	RunID      string             `json:"run_id"`
	Ticker     string             `json:"ticker"`
	Timestamp  time.Time          `json:"timestamp"`
	Model      string             `json:"model"`
	Company    CompanyProfile     `json:"company_info"`
	Market     MarketData         `json:"market_data"`
	Valuation  *ValuationSnapshot `json:"valuation,omitempty"`
	Business   StageReport        `json:"business_analysis"`
	KeyEvents  string             `json:"key_events"`
	Value      ValueAnalysis      `json:"value_analysis"`
	Growth     GrowthAnalysis     `json:"growth_analysis"`
	Risk       RiskAnalysis       `json:"risk_analysis"`
	CIO        CIOSynthesis       `json:"cio_synthesis"`
	Warnings   []string           `json:"warnings,omitempty"`
	Duration   time.Duration      `json:"duration"`
	Error      string             `json:"error,omitempty"` // set when the ticker could not be analyzed at all
	OutputFile string             `json:"output_file,omitempty"`
}

// FailedStages returns the stages whose report is an inline error.
func (r *AnalysisResult) FailedStages() []Stage {
	var failed []Stage
	for _, rep := range []StageReport{r.Business, r.Value.StageReport, r.Growth.StageReport, r.Risk.StageReport, r.CIO.StageReport} {
		if rep.Failed {
			failed = append(failed, rep.Stage)
		}
	}
	return failed
}

// AnalystAgreement counts how many of the value, growth and risk
// recommendations lean the same way as the CIO recommendation.
func (r *AnalysisResult) AnalystAgreement() int {
	final := Direction(r.CIO.Decision.Recommendation)
	n := 0
	for _, rec := range []*string{r.Value.Summary.Recommendation, r.Growth.Summary.Recommendation, r.Risk.Summary.Recommendation} {
		if rec != nil && Direction(*rec) == final {
			n++
		}
	}
	return n
}

// Direction maps a recommendation label to +1 (buy side), 0 (hold) or -1
// (sell side).
func Direction(rec string) int {
	r := strings.ToUpper(rec)
	switch {
	case strings.Contains(r, "BUY"):
		return 1
	case strings.Contains(r, "SELL"), strings.Contains(r, "REDUCE"), strings.Contains(r, "AVOID"), strings.Contains(r, "CAUTION"):
		return -1
	default:
		return 0
	}
}
