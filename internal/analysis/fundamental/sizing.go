package fundamental

import (
	"math"

	"github.com/seenimoa/researchdesk/pkg/utils"
)

// Composite score weights. Risk is inverted (10 - risk) before weighting.
const (
	valueWeight  = 0.30
	growthWeight = 0.35
	riskWeight   = 0.35

	basePosition = 5.0
	maxPosition  = 8.0
)

// CompositeScore blends the value quality, growth quality and risk scores
// (all 0-10) into a 0-10 composite, rounded to two places.
func CompositeScore(valueQuality, growthQuality, riskScore float64) float64 {
	composite := valueQuality*valueWeight +
		growthQuality*growthWeight +
		(10-riskScore)*riskWeight
	return utils.Round2(composite)
}

// PositionSize returns the recommended portfolio weight in percent.
// Starting from a 5% base it scales by conviction, by (1 - risk/20) and by
// upside/40 capped at 1.2x, then clamps to [0, 8].
func PositionSize(conviction int, riskScore, upsidePct float64) float64 {
	pos := basePosition
	pos *= float64(conviction) / 10
	pos *= 1 - riskScore/20
	pos *= math.Min(upsidePct/40, 1.2)
	return utils.Round2(clamp(pos, 0, maxPosition))
}

// RiskAdjustedPosition returns the maximum position size allowed by the
// risk profile. A nil ratio skips the risk/reward adjustment.
func RiskAdjustedPosition(riskScore float64, redFlags int, upsideDownside *float64) float64 {
	var size float64
	switch {
	case riskScore <= 4:
		size = 8.0
	case riskScore <= 6:
		size = 5.0
	case riskScore <= 8:
		size = 2.0
	default:
		size = 0
	}

	switch {
	case redFlags >= 6:
		size *= 0.5
	case redFlags >= 3:
		size *= 0.75
	}

	if upsideDownside != nil {
		switch {
		case *upsideDownside < 1.5:
			size *= 0.5
		case *upsideDownside < 2.0:
			size *= 0.75
		}
	}
	return clamp(size, 0, maxPosition)
}

// Scenarios holds bull/base/bear probabilities as fractions summing to 1.
type Scenarios struct {
	Bull float64 `json:"bull"`
	Base float64 `json:"base"`
	Bear float64 `json:"bear"`
}

// ScenarioProbabilities weights the growth scenarios by the average of the
// historical quality and sustainability scores (0-10).
func ScenarioProbabilities(qualityScore, sustainabilityScore int) Scenarios {
	avg := float64(qualityScore+sustainabilityScore) / 2
	switch {
	case avg >= 8:
		return Scenarios{Bull: 0.35, Base: 0.55, Bear: 0.10}
	case avg >= 6:
		return Scenarios{Bull: 0.30, Base: 0.55, Bear: 0.15}
	case avg >= 4:
		return Scenarios{Bull: 0.25, Base: 0.50, Bear: 0.25}
	default:
		return Scenarios{Bull: 0.20, Base: 0.45, Bear: 0.35}
	}
}

// ExpectedReturn is the probability-weighted return of the three scenarios.
func (s Scenarios) ExpectedReturn(bull, base, bear float64) float64 {
	return utils.Round2(s.Bull*bull + s.Base*base + s.Bear*bear)
}
