package report

import (
	"fmt"
	"math"
	"strings"
)

// ════════════════════════════════════════════════════════════════════
// SVG Charts
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width      int
	Height     int
	LabelWidth int // space reserved left of the bars
	Margin     int
	BgColor    string
	TextColor  string
	FontSize   int
	Title      string
}

// DefaultChartConfig returns the defaults used in HTML reports.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      640,
		Height:     220,
		LabelWidth: 130,
		Margin:     30,
		BgColor:    "#ffffff",
		TextColor:  "#333333",
		FontSize:   12,
	}
}

// BarItem is one bar of a horizontal bar chart.
type BarItem struct {
	Label string
	Value float64
	Unit  string // appended to the value label, e.g. "%"
	Color string // optional; green/red by sign when empty
}

// HorizontalBarChart draws labelled bars around a zero line. Used for
// scenario returns and analyst scores.
func HorizontalBarChart(items []BarItem, cfg ChartConfig) string {
	if len(items) == 0 {
		return emptySVG(cfg, "No data")
	}
	if cfg.Width == 0 {
		title := cfg.Title
		cfg = DefaultChartConfig()
		cfg.Title = title
	}

	left := cfg.LabelWidth
	top := cfg.Margin
	plotW := cfg.Width - left - cfg.Margin*2
	plotH := cfg.Height - top - cfg.Margin/2

	lo, hi := 0.0, 0.0
	for _, it := range items {
		lo = math.Min(lo, it.Value)
		hi = math.Max(hi, it.Value)
	}
	span := hi - lo
	if span < 0.001 {
		span = 1
	}
	zeroX := float64(left) + (-lo/span)*float64(plotW)

	barH := math.Min(float64(plotH)/float64(len(items))*0.7, 28)
	gap := (float64(plotH) - barH*float64(len(items))) / float64(len(items)+1)

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	fmt.Fprintf(&sb, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`, cfg.Width, cfg.Height, cfg.BgColor)
	if cfg.Title != "" {
		fmt.Fprintf(&sb, `<text x="%d" y="18" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
			cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title))
	}
	if lo < 0 {
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="#999" stroke-width="1"/>`,
			zeroX, top, zeroX, top+plotH)
	}

	for i, it := range items {
		y := float64(top) + gap + float64(i)*(barH+gap)
		w := math.Abs(it.Value) / span * float64(plotW)
		x := zeroX
		if it.Value < 0 {
			x = zeroX - w
		}
		color := it.Color
		if color == "" {
			color = "#4caf50"
			if it.Value < 0 {
				color = "#ef5350"
			}
		}
		fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="2"/>`, x, y, w, barH, color)
		fmt.Fprintf(&sb, `<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			left-8, y+barH/2+4, cfg.FontSize, cfg.TextColor, escapeXML(it.Label))
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="%d" fill="%s">%+.1f%s</text>`,
			math.Max(x+w, zeroX)+5, y+barH/2+4, cfg.FontSize, cfg.TextColor, it.Value, escapeXML(it.Unit))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// GaugeChart draws a semicircular 0-100 gauge, used for the composite
// score.
func GaugeChart(value float64, label string, width int) string {
	if width == 0 {
		width = 200
	}
	height := width/2 + 30
	value = math.Max(0, math.Min(100, value))

	cx := float64(width) / 2
	cy := float64(width)/2 - 10
	r := float64(width)/2 - 20

	// 0 maps to the left end of the arc, 100 to the right end.
	angle := math.Pi - value/100*math.Pi
	endX, endY := cx+r*math.Cos(angle), cy-r*math.Sin(angle)
	needleX, needleY := cx+r*0.85*math.Cos(angle), cy-r*0.85*math.Sin(angle)

	color := gaugeColor(value)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, height, width, height)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="white"/>`, width, height)
	fmt.Fprintf(&sb, `<path d="M%.1f,%.1f A%.1f,%.1f 0 0,1 %.1f,%.1f" fill="none" stroke="#e0e0e0" stroke-width="12" stroke-linecap="round"/>`,
		cx-r, cy, r, r, cx+r, cy)
	if value > 0 {
		fmt.Fprintf(&sb, `<path d="M%.1f,%.1f A%.1f,%.1f 0 0,1 %.1f,%.1f" fill="none" stroke="%s" stroke-width="12" stroke-linecap="round"/>`,
			cx-r, cy, r, r, endX, endY, color)
	}
	fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333" stroke-width="2"/>`, cx, cy, needleX, needleY)
	fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="5" fill="#333"/>`, cx, cy)
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="22" font-weight="bold" fill="%s" text-anchor="middle">%.0f</text>`,
		cx, cy+25, color, value)
	fmt.Fprintf(&sb, `<text x="%.1f" y="%d" font-size="11" fill="#666" text-anchor="middle">%s</text>`,
		cx, height-5, escapeXML(label))
	sb.WriteString("</svg>")
	return sb.String()
}

func gaugeColor(v float64) string {
	switch {
	case v < 30:
		return "#ef5350"
	case v < 50:
		return "#ff9800"
	case v < 70:
		return "#ffc107"
	default:
		return "#4caf50"
	}
}

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escapeXML(s string) string { return xmlEscaper.Replace(s) }
