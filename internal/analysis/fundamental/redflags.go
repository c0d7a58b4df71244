package fundamental

import (
	"fmt"

	"github.com/seenimoa/researchdesk/pkg/models"
)

// Thresholds for the accounting quality checks.
const (
	minARGrowthPct        = 5.0
	minInventoryGrowthPct = 10.0
	minFCFToNI            = 0.8
	maxGoodwillPct        = 30.0
	minInterestCoverage   = 3.0
	minCurrentRatio       = 1.0
)

// DetectRedFlags runs the accounting quality checks over the two most recent
// years of statements.
func DetectRedFlags(s models.Statements) models.RedFlagReport {
	var r models.RedFlagReport

	if len(s.Income) >= 2 && len(s.Balance) >= 2 {
		revGrowth, revOK := growthBetween(s.Income[0].Revenue, s.Income[1].Revenue)

		// Receivables growing faster than revenue.
		if arGrowth, ok := growthBetween(s.Balance[0].AccountsReceivable, s.Balance[1].AccountsReceivable); ok && revOK {
			if arGrowth > revGrowth && arGrowth > minARGrowthPct {
				r.Flags = append(r.Flags, models.RedFlag{
					Kind:     "receivables",
					Severity: models.SeverityMedium,
					Detail:   fmt.Sprintf("AR growing faster than revenue (%.1f%% vs %.1f%%)", arGrowth, revGrowth),
				})
			}
		}

		// Inventory building up.
		if invGrowth, ok := growthBetween(s.Balance[0].Inventory, s.Balance[1].Inventory); ok && revOK {
			if invGrowth > revGrowth && invGrowth > minInventoryGrowthPct {
				r.Flags = append(r.Flags, models.RedFlag{
					Kind:     "inventory",
					Severity: models.SeverityMedium,
					Detail:   fmt.Sprintf("Inventory growing faster than revenue (%.1f%% vs %.1f%%)", invGrowth, revGrowth),
				})
			}
		}
	}

	// Cash conversion.
	if len(s.Income) > 0 && len(s.CashFlow) > 0 {
		ni := s.Income[0].NetIncome
		fcf := s.CashFlow[0].FreeCashFlow
		if ni > 0 {
			r.FCFToNetIncome = fcf / ni
			if fcf < minFCFToNI*ni {
				r.Flags = append(r.Flags, models.RedFlag{
					Kind:     "cash_conversion",
					Severity: models.SeverityHigh,
					Detail:   fmt.Sprintf("FCF only %.0f%% of net income", r.FCFToNetIncome*100),
				})
			}
		}
	}

	if len(s.Balance) > 0 {
		bs := s.Balance[0]

		if bs.TotalAssets > 0 {
			r.GoodwillPct = bs.Goodwill / bs.TotalAssets * 100
			if r.GoodwillPct > maxGoodwillPct {
				r.Flags = append(r.Flags, models.RedFlag{
					Kind:     "goodwill",
					Severity: models.SeverityHigh,
					Detail:   fmt.Sprintf("Goodwill is %.1f%% of total assets", r.GoodwillPct),
				})
			}
		}

		if bs.CurrentLiabilities > 0 {
			if cr := bs.CurrentAssets / bs.CurrentLiabilities; cr < minCurrentRatio {
				r.Flags = append(r.Flags, models.RedFlag{
					Kind:     "liquidity",
					Severity: models.SeverityHigh,
					Detail:   fmt.Sprintf("Current ratio below 1.0 (%.2f)", cr),
				})
			}
		}
	}

	// Debt service.
	if len(s.Income) > 0 {
		inc := s.Income[0]
		if inc.InterestExpense > 0 {
			r.InterestCoverage = inc.OperatingIncome / inc.InterestExpense
			if r.InterestCoverage < minInterestCoverage {
				r.Flags = append(r.Flags, models.RedFlag{
					Kind:     "interest_coverage",
					Severity: models.SeverityHigh,
					Detail:   fmt.Sprintf("Interest coverage only %.1fx", r.InterestCoverage),
				})
			}
		}
	}

	return r
}
