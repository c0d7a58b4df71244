// Package report renders analysis results to JSON, plain text and HTML and
// saves them under the output directory.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phuslu/log"

	"github.com/seenimoa/researchdesk/pkg/models"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Formats
// ════════════════════════════════════════════════════════════════════

// Format specifies the output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "txt"
	FormatHTML Format = "html"
)

// ErrUnknownFormat is returned for a format name other than json, txt or html.
var ErrUnknownFormat = errors.New("report: unknown format")

// ParseFormat maps a user-supplied name to a Format. "text" is accepted as
// an alias for txt.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "txt", "text":
		return FormatText, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Filename is the output file name for a result: TICKER_YYYYmmdd_HHMMSS.ext.
func Filename(ticker string, t time.Time, f Format) string {
	return fmt.Sprintf("%s_%s.%s", strings.ToUpper(ticker), utils.FileTimestamp(t), f)
}

// ════════════════════════════════════════════════════════════════════
// Writer
// ════════════════════════════════════════════════════════════════════

// Writer saves rendered results into a directory.
type Writer struct {
	dir string
}

// NewWriter returns a writer rooted at dir. The directory is created on the
// first save.
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "output"
	}
	return &Writer{dir: dir}
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// Save renders res in format f, writes it and records the path on
// res.OutputFile.
func (w *Writer) Save(res *models.AnalysisResult, f Format) (string, error) {
	if res == nil {
		return "", errors.New("report: nil result")
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(w.dir, Filename(res.Ticker, res.Timestamp, f))
	res.OutputFile = path

	body, err := Render(res, f)
	if err != nil {
		res.OutputFile = ""
		return "", err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		res.OutputFile = ""
		return "", fmt.Errorf("write report: %w", err)
	}
	log.Info().Str("ticker", res.Ticker).Str("format", string(f)).Str("path", path).Msg("report saved")
	return path, nil
}

// Render produces the bytes of res in format f.
func Render(res *models.AnalysisResult, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return JSON(res)
	case FormatText:
		return []byte(Text(res)), nil
	case FormatHTML:
		html, err := HTML(res)
		if err != nil {
			return nil, err
		}
		return []byte(html), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// JSON is the complete result, indented.
func JSON(res *models.AnalysisResult) ([]byte, error) {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return b, nil
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

// Text renders the executive summary, the full CIO synthesis and then each
// analyst report.
func Text(res *models.AnalysisResult) string {
	var sb strings.Builder
	line := strings.Repeat("=", 80)
	thinLine := strings.Repeat("-", 80)
	d := res.CIO.Decision

	fmt.Fprintf(&sb, "Investment Analysis Report: %s\n", res.Ticker)
	fmt.Fprintf(&sb, "Generated: %s\n", res.Timestamp.Format("2006-01-02T15:04:05"))
	if name := res.Company.Name; name != "" {
		fmt.Fprintf(&sb, "Company: %s\n", name)
	}
	if res.Model != "" {
		fmt.Fprintf(&sb, "Model: %s\n", res.Model)
	}
	sb.WriteString(line + "\n\n")

	sb.WriteString("EXECUTIVE SUMMARY\n")
	sb.WriteString(thinLine + "\n")
	fmt.Fprintf(&sb, "Recommendation: %s\n", orNA(d.Recommendation))
	fmt.Fprintf(&sb, "Conviction: %s/10\n", intOrNA(d.Conviction))
	fmt.Fprintf(&sb, "Position Size: %s\n", floatOrNA("%.2f%%", d.PositionSize))
	if d.ExpectedReturn3Y != nil {
		fmt.Fprintf(&sb, "Expected 3-Year Return: %+.0f%%\n", *d.ExpectedReturn3Y)
	}
	if d.CompositeScore != nil {
		fmt.Fprintf(&sb, "Composite Score: %.1f/100\n", *d.CompositeScore)
	}
	if d.TargetPrice != nil || d.StopLoss != nil {
		fmt.Fprintf(&sb, "Target Price: %s | Stop Loss: %s\n", floatOrNA("$%.2f", d.TargetPrice), floatOrNA("$%.2f", d.StopLoss))
	}
	if v := res.Valuation; v != nil && v.DCFPerShare != nil {
		fmt.Fprintf(&sb, "DCF Value: $%.2f | Margin of Safety: %s (%s)\n",
			*v.DCFPerShare, floatOrNA("%.1f%%", v.MarginOfSafety), v.Assessment)
	}
	fmt.Fprintf(&sb, "Analyst Agreement: %d/3\n", res.AnalystAgreement())
	if failed := res.FailedStages(); len(failed) > 0 {
		names := make([]string, len(failed))
		for i, s := range failed {
			names[i] = s.Title()
		}
		fmt.Fprintf(&sb, "Failed Stages: %s\n", strings.Join(names, ", "))
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(&sb, "Warning: %s\n", w)
	}

	sb.WriteString("\nANALYST SUMMARIES\n")
	sb.WriteString(thinLine + "\n")
	v, g, r := res.Value.Summary, res.Growth.Summary, res.Risk.Summary
	fmt.Fprintf(&sb, "Value:  %s (conviction %s/10), quality %s/10, moat %s, MOS %s\n",
		strOrNA(v.Recommendation), intOrNA(v.Conviction), intOrNA(v.QualityScore), strOrNA(v.Moat),
		floatOrNA("%.1f%%", v.MarginOfSafety))
	fmt.Fprintf(&sb, "Growth: %s (conviction %s/10), bull %s, base %s, bear %s\n",
		strOrNA(g.Recommendation), intOrNA(g.Conviction),
		floatOrNA("%+.0f%%", g.BullCase), floatOrNA("%+.0f%%", g.BaseCase), floatOrNA("%+.0f%%", g.BearCase))
	fmt.Fprintf(&sb, "Risk:   %s, overall %s/10, red flags %s, max position %s\n",
		strOrNA(r.RiskRating), floatOrNA("%.1f", r.OverallRiskScore), intOrNA(r.RedFlagsCount),
		floatOrNA("%.1f%%", r.MaxPositionSize))

	sb.WriteString("\nFULL CIO SYNTHESIS\n")
	sb.WriteString(line + "\n")
	sb.WriteString(res.CIO.Content)
	sb.WriteString("\n")

	for _, s := range []struct {
		title string
		body  string
	}{
		{"BUSINESS ANALYSIS", res.Business.Content},
		{"KEY EVENTS", res.KeyEvents},
		{"VALUE ANALYSIS", res.Value.Content},
		{"GROWTH ANALYSIS", res.Growth.Content},
		{"RISK ANALYSIS", res.Risk.Content},
	} {
		if s.body == "" {
			continue
		}
		fmt.Fprintf(&sb, "\n%s\n%s\n%s\n", s.title, line, s.body)
	}
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Utility
// ════════════════════════════════════════════════════════════════════

// ReportTimestamp returns the current Eastern time formatted for report
// headers.
func ReportTimestamp() string {
	return utils.NowET().Format("02 Jan 2006, 03:04 PM MST")
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
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
