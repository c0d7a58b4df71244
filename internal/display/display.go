// Package display renders analysis results, comparisons and the decision
// log for the terminal.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/seenimoa/researchdesk/pkg/models"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

const width = 80

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Align(lipgloss.Center).
			Padding(0, 2).
			Width(width - 2)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Width(22)

	valueStyle = lipgloss.NewStyle().Bold(true)

	buyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	sellStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	holdStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)

	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	rule     = strings.Repeat("═", width)
	thinRule = strings.Repeat("─", width)
)

// ── Messages ──

// Header prints a boxed, centered title.
func Header(w io.Writer, text string) {
	fmt.Fprintln(w, headerStyle.Render(text))
}

// Section prints a section title between thin rules.
func Section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n  %s\n%s\n", thinRule, sectionStyle.Render(title), thinRule)
}

// Error prints an error line.
func Error(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render("❌ ERROR: "+msg))
}

// Warning prints a warning line.
func Warning(w io.Writer, msg string) {
	fmt.Fprintln(w, warningStyle.Render("⚠️  WARNING: "+msg))
}

// Success prints a success line.
func Success(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render("✅ "+msg))
}

// Info prints an informational line.
func Info(w io.Writer, msg string) {
	fmt.Fprintln(w, "ℹ️  "+msg)
}

// ── Results ──

// Summary prints the executive summary of one analysis.
func Summary(w io.Writer, res *models.AnalysisResult) {
	if res.Error != "" {
		Error(w, fmt.Sprintf("%s: %s", res.Ticker, res.Error))
		return
	}
	d := res.CIO.Decision

	fmt.Fprintln(w)
	Header(w, "EXECUTIVE SUMMARY")
	field(w, "Company", orNA(res.Company.Name))
	field(w, "Ticker", res.Ticker)
	field(w, "Current Price", utils.OrNA("$%.2f", res.Market.CurrentPrice))
	field(w, "Sector", orNA(res.Company.Sector))
	field(w, "Model", res.Model)

	Section(w, "FINAL INVESTMENT DECISION")
	field(w, "Recommendation", Recommendation(d.Recommendation))
	field(w, "Conviction", intOrNA(d.Conviction)+"/10")
	field(w, "Position Size", floatOrNA("%.2f%%", d.PositionSize))
	field(w, "Composite Score", floatOrNA("%.1f/100", d.CompositeScore))
	if d.FairValue != nil {
		field(w, "CIO Fair Value", fmt.Sprintf("$%.2f", *d.FairValue))
		field(w, "Upside", floatOrNA("%.1f%%", d.Upside))
	}
	field(w, "Expected 3Y Return", floatOrNA("%.1f%%", d.ExpectedReturn3Y))
	if d.EntryLow != nil && d.EntryHigh != nil {
		field(w, "Entry Range", fmt.Sprintf("$%.2f - $%.2f", *d.EntryLow, *d.EntryHigh))
	}
	if d.StopLoss != nil {
		field(w, "Stop Loss", fmt.Sprintf("$%.2f", *d.StopLoss))
	}
	if d.TargetPrice != nil {
		field(w, "Target Price", fmt.Sprintf("$%.2f", *d.TargetPrice))
	}
	if v := res.Valuation; v != nil && v.DCFPerShare != nil {
		field(w, "DCF Cross-Check", fmt.Sprintf("$%.2f (%s)", *v.DCFPerShare, orNA(v.Assessment)))
	}
	field(w, "Analyst Agreement", fmt.Sprintf("%d/3", res.AnalystAgreement()))

	Section(w, "ANALYST VIEWS")
	v, g, r := res.Value.Summary, res.Growth.Summary, res.Risk.Summary
	field(w, "Value", fmt.Sprintf("%s · quality %s/10 · moat %s",
		Recommendation(strOrNA(v.Recommendation)), intOrNA(v.QualityScore), strOrNA(v.Moat)))
	field(w, "Growth", fmt.Sprintf("%s · bull %s · base %s · bear %s",
		Recommendation(strOrNA(g.Recommendation)),
		floatOrNA("%+.0f%%", g.BullCase), floatOrNA("%+.0f%%", g.BaseCase), floatOrNA("%+.0f%%", g.BearCase)))
	field(w, "Risk", fmt.Sprintf("%s · score %s/10 · red flags %s",
		strOrNA(r.RiskRating), floatOrNA("%.1f", r.OverallRiskScore), intOrNA(r.RedFlagsCount)))

	for _, s := range res.FailedStages() {
		Warning(w, s.Title()+" stage failed")
	}
	for _, msg := range res.Warnings {
		Warning(w, msg)
	}
	fmt.Fprintln(w, rule)
}

// Full prints every stage report verbatim.
func Full(w io.Writer, res *models.AnalysisResult) {
	fmt.Fprintf(w, "\n%s\n📊 FULL ANALYSIS REPORTS: %s\n%s\n", rule, res.Ticker, rule)
	for _, s := range []struct {
		title string
		body  string
	}{
		{"1️⃣  BUSINESS UNDERSTANDING", res.Business.Content},
		{"📰 KEY EVENTS", res.KeyEvents},
		{"2️⃣  VALUE HUNTER ANALYSIS", res.Value.Content},
		{"3️⃣  GROWTH ANALYZER REPORT", res.Growth.Content},
		{"4️⃣  RISK EXAMINER REPORT", res.Risk.Content},
		{"5️⃣  CIO FINAL SYNTHESIS", res.CIO.Content},
	} {
		if s.body == "" {
			continue
		}
		fmt.Fprintf(w, "\n%s\n%s\n%s\n\n%s\n", rule, sectionStyle.Render(s.title), rule, s.body)
	}
	fmt.Fprintf(w, "\n%s\n✅ Full Analysis Complete\n%s\n", rule, rule)
}

// Recommendation colors a recommendation by direction.
func Recommendation(rec string) string {
	switch {
	case rec == "" || rec == models.NoRecommendation:
		return mutedStyle.Render(models.NoRecommendation)
	case models.Direction(rec) > 0:
		return buyStyle.Render(rec)
	case models.Direction(rec) < 0:
		return sellStyle.Render(rec)
	default:
		return holdStyle.Render(rec)
	}
}

// --- helpers ---

func field(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func strOrNA(p *string) string {
	if p == nil {
		return "N/A"
	}
	return orNA(*p)
}

func intOrNA(p *int) string {
	if p == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *p)
}

func floatOrNA(format string, p *float64) string {
	if p == nil {
		return "N/A"
	}
	return fmt.Sprintf(format, *p)
}
