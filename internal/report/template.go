package report

// htmlTemplate is the page layout for HTML reports.
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { font: 15px/1.55 system-ui, "Helvetica Neue", Arial, sans-serif; color: #1f2433; max-width: 940px; margin: 0 auto; padding: 24px 18px; }
h1 { font-size: 22px; margin: 0 0 2px; }
h2 { font-size: 17px; margin: 28px 0 10px; padding-bottom: 4px; border-bottom: 1px solid #c7d2fe; color: #1e3a8a; }
h3, h4 { font-size: 15px; margin: 14px 0 6px; }
ul, ol { padding-left: 22px; }
.muted { color: #707a8a; font-size: 13px; margin: 2px 0; }
.positive { color: #15803d; }
.negative { color: #b91c1c; }

.header { display: flex; justify-content: space-between; gap: 12px; padding-bottom: 10px; border-bottom: 4px solid #1e3a8a; }
.header-right { text-align: right; }
.ticker-badge { background: #1e3a8a; color: #fff; padding: 1px 10px; border-radius: 3px; margin-right: 6px; }

.quote-bar, .trade-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(130px, 1fr)); gap: 6px; margin: 14px 0; }
.quote-item, .trade-item { background: #f4f6fb; border-radius: 4px; padding: 8px; text-align: center; }
.label { font-size: 11px; letter-spacing: .04em; color: #707a8a; text-transform: uppercase; }
.value { font-weight: 600; }

.rec-box { display: flex; justify-content: space-between; align-items: center; padding: 14px 16px; border-left: 6px solid #94a3b8; background: #f8fafc; }
.rec-box.strong-buy { border-color: #15803d; background: #e7f8ee; }
.rec-box.buy { border-color: #4ade80; background: #f0fdf4; }
.rec-box.hold { border-color: #ca8a04; background: #fefbe8; }
.rec-box.sell { border-color: #ea580c; background: #fff4ed; }
.rec-box.strong-sell { border-color: #b91c1c; background: #fdeeee; }
.rec-label { font-size: 24px; font-weight: 700; }

table { width: 100%; border-collapse: collapse; font-size: 14px; margin: 6px 0 14px; }
th, td { padding: 6px 8px; text-align: left; border-bottom: 1px solid #e3e7ef; }
th { background: #f4f6fb; }

.chart-container { overflow-x: auto; margin: 10px 0; }
.chart-container svg { max-width: 100%; height: auto; }

.section-body { background: #fafbfd; border: 1px solid #e3e7ef; border-radius: 4px; padding: 10px 14px; }
.section-body.failed { border-left: 4px solid #b91c1c; }
.warnings li { color: #a16207; }
.footer { margin-top: 32px; border-top: 1px solid #e3e7ef; padding-top: 10px; font-size: 12px; color: #707a8a; text-align: center; }

@media print { body { max-width: none; padding: 0; } .section { break-inside: avoid; } }
</style>
</head>
<body>

<div class="header">
  <div>
    <h1><span class="ticker-badge">{{.Ticker}}</span> {{.CompanyName}}</h1>
    <p class="muted">{{.Sector}} · {{.Industry}}</p>
  </div>
  <div class="header-right">
    <p class="muted">{{.GeneratedAt}}</p>
    <p class="muted">Model: {{.Model}} · {{.Duration}}</p>
  </div>
</div>

<div class="quote-bar">
  <div class="quote-item"><div class="label">Price</div><div class="value">{{.Price}}</div></div>
  <div class="quote-item"><div class="label">Market Cap</div><div class="value">{{.MarketCap}}</div></div>
  <div class="quote-item"><div class="label">P/E</div><div class="value">{{.PE}}</div></div>
  <div class="quote-item"><div class="label">DCF Value</div><div class="value">{{.FairValue}}</div></div>
  <div class="quote-item"><div class="label">Margin of Safety</div><div class="value">{{.MarginOfSafety}}</div></div>
</div>

<div class="section">
  <h2>Decision</h2>
  <div class="rec-box {{.RecClass}}">
    <div>
      <div class="rec-label">{{.Recommendation}}</div>
      <div class="muted">Conviction: {{.Conviction}}/10 · Position: {{.PositionSize}} · Analyst agreement: {{.Agreement}}/3</div>
      <div class="muted">Expected 3-year return: {{.ExpectedReturn}}</div>
    </div>
    {{if .Gauge}}<div>{{.Gauge}}</div>{{end}}
  </div>
  <div class="trade-grid">
    <div class="trade-item"><div class="label">Entry</div><div class="value">{{.EntryRange}}</div></div>
    <div class="trade-item"><div class="label">Target</div><div class="value positive">{{.TargetPrice}}</div></div>
    <div class="trade-item"><div class="label">Stop Loss</div><div class="value negative">{{.StopLoss}}</div></div>
    <div class="trade-item"><div class="label">Upside/Downside</div><div class="value">{{.UpDown}}</div></div>
  </div>
  {{if .ScenarioChart}}<div class="chart-container">{{.ScenarioChart}}</div>{{end}}
  {{if .Warnings}}
  <ul class="warnings">{{range .Warnings}}<li>{{.}}</li>{{end}}</ul>
  {{end}}
</div>

{{range .Sections}}
<div class="section" id="{{.ID}}">
  <h2>{{.Title}}</h2>
  <div class="section-body{{if .Failed}} failed{{end}}">{{.Body}}</div>
</div>
{{end}}

<div class="footer">
  Generated for research purposes only. Not investment advice.
</div>

</body>
</html>
`
