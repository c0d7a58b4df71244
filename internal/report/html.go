package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/seenimoa/researchdesk/pkg/models"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	page     = template.Must(template.New("report").Parse(htmlTemplate))
)

// htmlData is the template model for HTML reports.
type htmlData struct {
	Title       string
	Ticker      string
	CompanyName string
	Sector      string
	Industry    string
	Model       string
	GeneratedAt string
	Duration    string

	Price          string
	MarketCap      string
	PE             string
	FairValue      string
	MarginOfSafety string

	Recommendation string
	RecClass       string
	Conviction     string
	PositionSize   string
	ExpectedReturn string
	Agreement      int
	EntryRange     string
	TargetPrice    string
	StopLoss       string
	UpDown         string

	Gauge         template.HTML
	ScenarioChart template.HTML
	Warnings      []string
	Sections      []htmlSection
}

type htmlSection struct {
	ID     string
	Title  string
	Body   template.HTML
	Failed bool
}

// HTML renders res as a standalone page. Stage reports are rendered from
// markdown; raw HTML in them is not passed through.
func HTML(res *models.AnalysisResult) (string, error) {
	d := res.CIO.Decision
	data := htmlData{
		Title:          fmt.Sprintf("%s Investment Analysis", res.Ticker),
		Ticker:         res.Ticker,
		CompanyName:    res.Company.Name,
		Sector:         orNA(res.Company.Sector),
		Industry:       orNA(res.Company.Industry),
		Model:          res.Model,
		GeneratedAt:    res.Timestamp.Format("02 Jan 2006, 15:04"),
		Duration:       FormatDuration(res.Duration),
		Price:          utils.OrNA("$%.2f", res.Market.CurrentPrice),
		MarketCap:      utils.FormatCompact(res.Market.MarketCap),
		PE:             "N/A",
		FairValue:      "N/A",
		MarginOfSafety: "N/A",
		Recommendation: orNA(d.Recommendation),
		RecClass:       recommendationClass(d.Recommendation),
		Conviction:     intOrNA(d.Conviction),
		PositionSize:   floatOrNA("%.2f%%", d.PositionSize),
		ExpectedReturn: floatOrNA("%+.0f%%", d.ExpectedReturn3Y),
		Agreement:      res.AnalystAgreement(),
		EntryRange:     entryRange(d),
		TargetPrice:    floatOrNA("$%.2f", d.TargetPrice),
		StopLoss:       floatOrNA("$%.2f", d.StopLoss),
		UpDown:         floatOrNA("%.1f:1", d.UpsideDownsideRatio),
		Warnings:       res.Warnings,
	}
	if v := res.Valuation; v != nil {
		data.PE = utils.OrNA("%.1f", v.PEValue)
		data.FairValue = floatOrNA("$%.2f", v.DCFPerShare)
		data.MarginOfSafety = floatOrNA("%.1f%%", v.MarginOfSafety)
	}
	if d.CompositeScore != nil {
		data.Gauge = template.HTML(GaugeChart(*d.CompositeScore, "Composite Score", 200))
	}
	if bars := scenarioBars(res); len(bars) > 0 {
		cfg := DefaultChartConfig()
		cfg.Title = "Scenario Returns"
		cfg.Height = 60 + 40*len(bars)
		data.ScenarioChart = template.HTML(HorizontalBarChart(bars, cfg))
	}

	for _, s := range []struct {
		id, title string
		rep       models.StageReport
	}{
		{"cio", "CIO Synthesis", res.CIO.StageReport},
		{"business", "Business Analysis", res.Business},
		{"events", "Key Events", models.StageReport{Content: res.KeyEvents}},
		{"value", "Value Analysis", res.Value.StageReport},
		{"growth", "Growth Analysis", res.Growth.StageReport},
		{"risk", "Risk Analysis", res.Risk.StageReport},
	} {
		if strings.TrimSpace(s.rep.Content) == "" {
			continue
		}
		body, err := renderMarkdown(s.rep.Content)
		if err != nil {
			return "", fmt.Errorf("render %s: %w", s.id, err)
		}
		data.Sections = append(data.Sections, htmlSection{ID: s.id, Title: s.title, Body: body, Failed: s.rep.Failed})
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// renderMarkdown converts a stage report to HTML and marks recommendation
// cells in its tables so they pick up the buy/sell colors.
func renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return "", err
	}
	doc.Find("table").AddClass("report-table")
	doc.Find("td").Each(func(_ int, td *goquery.Selection) {
		text := strings.TrimSpace(td.Text())
		if !isRecommendation(text) {
			return
		}
		switch models.Direction(text) {
		case 1:
			td.AddClass("positive")
		case -1:
			td.AddClass("negative")
		}
	})
	out, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}
	return template.HTML(out), nil
}

func isRecommendation(s string) bool {
	switch strings.ToUpper(s) {
	case "STRONG BUY", "BUY", "ACCUMULATE", "HOLD", "REDUCE", "SELL", "STRONG SELL", "AVOID":
		return true
	}
	return false
}

// scenarioBars prefers the CIO's scenario returns and falls back to the
// growth analyst's cases.
func scenarioBars(res *models.AnalysisResult) []BarItem {
	d, g := res.CIO.Decision, res.Growth.Summary
	bull, base, bear := d.BullReturn, d.BaseReturn, d.BearReturn
	if bull == nil && base == nil && bear == nil {
		bull, base, bear = g.BullCase, g.BaseCase, g.BearCase
	}
	var items []BarItem
	for _, s := range []struct {
		label string
		v     *float64
	}{{"Bull case", bull}, {"Base case", base}, {"Bear case", bear}} {
		if s.v != nil {
			items = append(items, BarItem{Label: s.label, Value: *s.v, Unit: "%"})
		}
	}
	return items
}

func entryRange(d models.Decision) string {
	switch {
	case d.EntryLow != nil && d.EntryHigh != nil:
		return fmt.Sprintf("$%.2f - $%.2f", *d.EntryLow, *d.EntryHigh)
	case d.EntryLow != nil:
		return fmt.Sprintf("$%.2f", *d.EntryLow)
	case d.EntryHigh != nil:
		return fmt.Sprintf("$%.2f", *d.EntryHigh)
	}
	return "N/A"
}

// recommendationClass maps a recommendation to its CSS class.
func recommendationClass(rec string) string {
	r := strings.ToUpper(rec)
	switch {
	case strings.Contains(r, "STRONG BUY"):
		return "strong-buy"
	case strings.Contains(r, "STRONG SELL"), strings.Contains(r, "AVOID"):
		return "strong-sell"
	}
	switch models.Direction(r) {
	case 1:
		return "buy"
	case -1:
		return "sell"
	}
	return "hold"
}
