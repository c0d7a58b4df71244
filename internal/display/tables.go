package display

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/seenimoa/researchdesk/internal/analysis/fundamental"
	"github.com/seenimoa/researchdesk/internal/config"
	"github.com/seenimoa/researchdesk/internal/tracker"
	"github.com/seenimoa/researchdesk/pkg/models"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

var (
	tableHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6")).Padding(0, 1)
	tableCell   = lipgloss.NewStyle().Padding(0, 1)
	tableBorder = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// newTable returns a bordered table with the shared header and cell styles.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorder).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeader
			}
			return tableCell
		}).
		Headers(headers...)
}

// Comparison prints the ranked side-by-side table for several analyses.
func Comparison(w io.Writer, results []*models.AnalysisResult) {
	cmp := fundamental.ComparePeers(results)

	fmt.Fprintln(w)
	Header(w, "COMPARISON")
	t := newTable("#", "Ticker", "Recommendation", "Conviction", "Position", "Score", "3Y Return", "Risk")
	byTicker := make(map[string]*models.AnalysisResult, len(results))
	for _, r := range results {
		if r != nil {
			byTicker[r.Ticker] = r
		}
	}
	for _, e := range cmp.Entries {
		if e.Failed {
			t.Row(fmt.Sprint(e.Rank), e.Ticker, "FAILED", "-", "-", "-", "-", "-")
			continue
		}
		ret := "N/A"
		if r, ok := byTicker[e.Ticker]; ok {
			ret = floatOrNA("%+.1f%%", r.CIO.Decision.ExpectedReturn3Y)
		}
		t.Row(
			fmt.Sprint(e.Rank),
			e.Ticker,
			utils.Truncate(e.Recommendation, 14),
			fmt.Sprintf("%d/10", e.Conviction),
			floatOrNA("%.1f%%", e.PositionSize),
			fmt.Sprintf("%.1f", e.Composite),
			ret,
			floatOrNA("%.1f/10", e.RiskScore),
		)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, mutedStyle.Render(cmp.Summary))
}

// Valuation prints the deterministic valuation used by the dcf command.
func Valuation(w io.Writer, data *models.CompanyData, v fundamental.Valuation) {
	fmt.Fprintln(w)
	Header(w, fmt.Sprintf("DCF VALUATION: %s (%s)", data.DisplayName(), data.Ticker))
	field(w, "Current Price", utils.OrNA("$%.2f", data.Market.CurrentPrice))
	field(w, "Market Cap", utils.FormatCompact(data.Market.MarketCap))
	field(w, "Quality Score", fmt.Sprintf("%d/10 (%s)", v.Quality.Score, v.Quality.Stage))

	Section(w, "ASSUMPTIONS")
	fmt.Fprintf(w, "  Growth: %s\n", v.Growth.Reasoning)
	fmt.Fprintf(w, "  %s\n", v.WACC.Breakdown)

	if v.DCF.Err != nil {
		Section(w, "DCF")
		Warning(w, v.DCF.ErrorText)
	} else {
		Section(w, "PROJECTED FREE CASH FLOW")
		t := newTable("Year", "FCF")
		for i, fcf := range v.DCF.ProjectedFCF {
			t.Row(fmt.Sprintf("Year %d", i+1), utils.FormatCompact(fcf))
		}
		fmt.Fprintln(w, t.Render())

		field(w, "Stage 1 Value", utils.FormatCompact(v.DCF.Stage1Value))
		field(w, "Terminal Value (PV)", utils.FormatCompact(v.DCF.TerminalValuePV))
		field(w, "Total Present Value", utils.FormatCompact(v.DCF.TotalPresentValue))
		field(w, "Per Share", floatOrNA("$%.2f", v.DCF.PerShare))
		for _, adj := range v.DCF.Adjustments {
			Warning(w, adj)
		}
	}

	if v.MOS.Computable {
		Section(w, "MARGIN OF SAFETY")
		field(w, "Margin of Safety", fmt.Sprintf("%.1f%%", v.MOS.MarginOfSafety))
		field(w, "Price/Value", fmt.Sprintf("%.2fx", v.MOS.PriceToValue))
		fmt.Fprintf(w, "  %s\n", v.MOS.Assessment)
	}

	Section(w, "MULTIPLES")
	if v.PE != nil {
		field(w, "P/E Value", fmt.Sprintf("$%.2f", v.PE.IntrinsicValue))
		fmt.Fprintf(w, "  %s\n", mutedStyle.Render(v.PE.Reasoning))
	} else {
		field(w, "P/E Value", "N/A")
	}
	if v.PFCF != nil {
		field(w, "P/FCF Value", fmt.Sprintf("$%.2f", v.PFCF.IntrinsicValue))
		fmt.Fprintf(w, "  %s\n", mutedStyle.Render(v.PFCF.Reasoning))
	} else {
		field(w, "P/FCF Value", "N/A")
	}
	for _, msg := range data.Warnings {
		Warning(w, msg)
	}
}

// Decisions prints logged decisions as a table.
func Decisions(w io.Writer, entries []tracker.Entry) {
	if len(entries) == 0 {
		Info(w, "No decisions found.")
		return
	}
	t := newTable("Date", "Ticker", "Recommendation", "Conviction", "Price", "Fair Value", "Model")
	for _, e := range entries {
		t.Row(
			e.Date,
			e.Ticker,
			e.Recommendation,
			intOrNA(e.Conviction),
			floatOrNA("$%.2f", e.CurrentPrice),
			floatOrNA("$%.2f", e.FairValue),
			e.Model,
		)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d decision(s)", len(entries))))
}

// Models prints the model registry, marking the current model.
func Models(w io.Writer, list []config.ModelInfo, current string) {
	t := newTable("", "Model", "Provider", "RPM", "RPD", "Description")
	for _, m := range list {
		mark := ""
		if m.Name == current {
			mark = "*"
		}
		t.Row(mark, m.Name, string(m.Provider), limit(m.RPM), limit(m.RPD), m.Description)
	}
	fmt.Fprintln(w, t.Render())
}

// Keys prints the API key status for each provider.
func Keys(w io.Writer, statuses []config.KeyStatus) {
	t := newTable("Key", "Status", "Source", "Value")
	for _, s := range statuses {
		status := errorStyle.Render("missing")
		if s.IsSet {
			status = successStyle.Render("set")
		}
		t.Row(s.Name, status, string(s.Source), s.Masked)
	}
	fmt.Fprintln(w, t.Render())
}

func limit(n int) string {
	if n == 0 {
		return "unlimited"
	}
	return fmt.Sprint(n)
}
