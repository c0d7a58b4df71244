package fundamental

import (
	"sort"

	"github.com/seenimoa/researchdesk/pkg/models"
)

// PeerEntry is one analyzed ticker in a side-by-side comparison.
type PeerEntry struct {
	Ticker         string   `json:"ticker"`
	Name           string   `json:"name"`
	Recommendation string   `json:"recommendation"`
	Conviction     int      `json:"conviction"`
	Composite      float64  `json:"composite_score"`
	PositionSize   *float64 `json:"position_size"`
	Upside         *float64 `json:"upside"`
	RiskScore      *float64 `json:"risk_score"`
	QualityScore   *int     `json:"quality_score"`
	Price          float64  `json:"price"`
	Failed         bool     `json:"failed"`
	Rank           int      `json:"rank"`
}

// PeerComparison holds the ranked entries and a one-line summary.
type PeerComparison struct {
	Entries []PeerEntry `json:"entries"`
	Summary string      `json:"summary"`
}

// ComparePeers ranks analysis results by composite score, then conviction.
// Results that could not be analyzed sort last.
func ComparePeers(results []*models.AnalysisResult) PeerComparison {
	all := make([]PeerEntry, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		all = append(all, peerEntry(r))
	}

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Failed != b.Failed {
			return !a.Failed
		}
		if a.Composite != b.Composite {
			return a.Composite > b.Composite
		}
		return a.Conviction > b.Conviction
	})

	for i := range all {
		all[i].Rank = i + 1
	}

	return PeerComparison{Entries: all, Summary: buildPeerSummary(all)}
}

func peerEntry(r *models.AnalysisResult) PeerEntry {
	d := r.CIO.Decision
	e := PeerEntry{
		Ticker:         r.Ticker,
		Name:           r.Company.Name,
		Recommendation: d.Recommendation,
		PositionSize:   d.PositionSize,
		Upside:         d.Upside,
		RiskScore:      r.Risk.Summary.OverallRiskScore,
		QualityScore:   r.Value.Summary.QualityScore,
		Price:          r.Market.CurrentPrice,
		Failed:         r.Error != "",
	}
	if e.Recommendation == "" {
		e.Recommendation = models.NoRecommendation
	}
	if d.Conviction != nil {
		e.Conviction = *d.Conviction
	}
	if d.CompositeScore != nil {
		e.Composite = *d.CompositeScore
	}
	return e
}

// --- helpers ---

func buildPeerSummary(entries []PeerEntry) string {
	if len(entries) == 0 {
		return "No tickers to compare"
	}
	top := entries[0]
	if top.Failed {
		return "No ticker could be analyzed"
	}
	buys := 0
	for _, e := range entries {
		if models.Direction(e.Recommendation) > 0 {
			buys++
		}
	}
	switch {
	case buys == 0:
		return top.Ticker + " ranks first, but no ticker earned a buy rating"
	case models.Direction(top.Recommendation) > 0:
		return top.Ticker + " ranks first with a " + top.Recommendation + " rating"
	default:
		return top.Ticker + " ranks first on composite score"
	}
}
