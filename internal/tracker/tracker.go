// Package tracker keeps a durable log of investment decisions so they can
// be reviewed later. Each decision is appended to a JSON array file and a
// CSV file in the log directory.
package tracker

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/seenimoa/researchdesk/pkg/models"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

const (
	jsonLogName = "decisions_log.json"
	csvLogName  = "decisions_log.csv"
)

// ErrNoEntries is returned when an operation needs logged decisions and
// there are none.
var ErrNoEntries = errors.New("tracker: no decisions logged")

// Entry is one logged decision.
type Entry struct {
	ID               string    `json:"id"`
	RunID            string    `json:"run_id,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
	Date             string    `json:"date"`
	Ticker           string    `json:"ticker"`
	CompanyName      string    `json:"company_name"`
	Sector           string    `json:"sector"`
	Model            string    `json:"model"`
	Recommendation   string    `json:"recommendation"`
	Conviction       *int      `json:"conviction"`
	PositionSize     *float64  `json:"position_size"`
	CurrentPrice     *float64  `json:"current_price"`
	FairValue        *float64  `json:"fair_value"`
	UpsidePercent    *float64  `json:"upside_percent"`
	MarginOfSafety   *float64  `json:"margin_of_safety"`
	QualityScore     *int      `json:"quality_score"`
	MoatRating       string    `json:"moat_rating"`
	RiskScore        *float64  `json:"risk_score"`
	RiskRating       string    `json:"risk_rating"`
	ExpectedReturn3Y *float64  `json:"expected_return_3y"`
	CompositeScore   *float64  `json:"composite_score"`
	ValueRec         string    `json:"value_rec"`
	GrowthRec        string    `json:"growth_rec"`
	RiskRec          string    `json:"risk_rec"`
	AnalystAgreement string    `json:"analyst_agreement"`
	StopLoss         *float64  `json:"stop_loss"`
	OutputFile       string    `json:"output_file"`
	Notes            string    `json:"notes"`
}

var csvHeader = []string{
	"id", "run_id", "timestamp", "date", "ticker", "company_name", "sector",
	"model", "recommendation", "conviction", "position_size",
	"current_price", "fair_value", "upside_percent", "margin_of_safety",
	"quality_score", "moat_rating", "risk_score", "risk_rating",
	"expected_return_3y", "composite_score",
	"value_rec", "growth_rec", "risk_rec",
	"analyst_agreement", "stop_loss", "output_file", "notes",
}

func (e Entry) record() []string {
	return []string{
		e.ID, e.RunID, e.Timestamp.Format(time.RFC3339), e.Date, e.Ticker, e.CompanyName, e.Sector,
		e.Model, e.Recommendation, intField(e.Conviction), floatField(e.PositionSize),
		floatField(e.CurrentPrice), floatField(e.FairValue), floatField(e.UpsidePercent), floatField(e.MarginOfSafety),
		intField(e.QualityScore), e.MoatRating, floatField(e.RiskScore), e.RiskRating,
		floatField(e.ExpectedReturn3Y), floatField(e.CompositeScore),
		e.ValueRec, e.GrowthRec, e.RiskRec,
		e.AnalystAgreement, floatField(e.StopLoss), e.OutputFile, e.Notes,
	}
}

// FromResult builds an entry from a finished analysis. Fields the reports
// did not yield stay nil or empty.
func FromResult(res *models.AnalysisResult) Entry {
	d := res.CIO.Decision
	e := Entry{
		RunID:            res.RunID,
		Ticker:           res.Ticker,
		CompanyName:      res.Company.Name,
		Sector:           res.Company.Sector,
		Model:            res.Model,
		Recommendation:   d.Recommendation,
		Conviction:       d.Conviction,
		PositionSize:     d.PositionSize,
		FairValue:        d.FairValue,
		UpsidePercent:    d.Upside,
		MarginOfSafety:   res.Value.Summary.MarginOfSafety,
		QualityScore:     res.Value.Summary.QualityScore,
		MoatRating:       deref(res.Value.Summary.Moat),
		RiskScore:        res.Risk.Summary.OverallRiskScore,
		RiskRating:       deref(res.Risk.Summary.RiskRating),
		ExpectedReturn3Y: d.ExpectedReturn3Y,
		CompositeScore:   d.CompositeScore,
		ValueRec:         deref(res.Value.Summary.Recommendation),
		GrowthRec:        deref(res.Growth.Summary.Recommendation),
		RiskRec:          deref(res.Risk.Summary.Recommendation),
		AnalystAgreement: fmt.Sprintf("%d/3", res.AnalystAgreement()),
		StopLoss:         d.StopLoss,
		OutputFile:       res.OutputFile,
	}
	if e.Recommendation == "" {
		e.Recommendation = models.NoRecommendation
	}
	if p := res.Market.CurrentPrice; p > 0 {
		e.CurrentPrice = &p
	}
	if v := res.Valuation; v != nil {
		if e.FairValue == nil {
			e.FairValue = v.DCFPerShare
		}
		if e.MarginOfSafety == nil {
			e.MarginOfSafety = v.MarginOfSafety
		}
	}
	if e.UpsidePercent == nil && e.FairValue != nil && e.CurrentPrice != nil {
		up := utils.Round2((*e.FairValue - *e.CurrentPrice) / *e.CurrentPrice * 100)
		e.UpsidePercent = &up
	}
	return e
}

// ════════════════════════════════════════════════════════════════════
// Tracker
// ════════════════════════════════════════════════════════════════════

// Tracker appends decisions to the JSON and CSV logs in its directory.
type Tracker struct {
	mu       sync.Mutex
	dir      string
	jsonPath string
	csvPath  string
	now      func() time.Time
}

// New opens the log directory, creating it and empty log files as needed.
func New(dir string) (*Tracker, error) {
	if dir == "" {
		dir = "performance_logs"
	}
	t := &Tracker{
		dir:      dir,
		jsonPath: filepath.Join(dir, jsonLogName),
		csvPath:  filepath.Join(dir, csvLogName),
		now:      time.Now,
	}
	if err := t.init(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tracker) init() error {
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	if _, err := os.Stat(t.jsonPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(t.jsonPath, []byte("[]"), 0o644); err != nil {
			return fmt.Errorf("create json log: %w", err)
		}
	}
	if _, err := os.Stat(t.csvPath); errors.Is(err, os.ErrNotExist) {
		f, err := os.Create(t.csvPath)
		if err != nil {
			return fmt.Errorf("create csv log: %w", err)
		}
		w := csv.NewWriter(f)
		_ = w.Write(csvHeader)
		w.Flush()
		if err := errors.Join(w.Error(), f.Close()); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	return nil
}

// JSONPath returns the path of the JSON log.
func (t *Tracker) JSONPath() string { return t.jsonPath }

// CSVPath returns the path of the CSV log.
func (t *Tracker) CSVPath() string { return t.csvPath }

// Log records a decision. The ID, timestamp and date are filled in when
// missing. The stored entry is returned.
func (t *Tracker) Log(e Entry) (Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = t.now()
	}
	if e.Date == "" {
		e.Date = e.Timestamp.Format("2006-01-02")
	}
	if e.Ticker == "" {
		e.Ticker = "UNKNOWN"
	}

	entries, err := t.load()
	if err != nil {
		return Entry{}, err
	}
	entries = append(entries, e)
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return Entry{}, fmt.Errorf("encode json log: %w", err)
	}
	if err := os.WriteFile(t.jsonPath, b, 0o644); err != nil {
		return Entry{}, fmt.Errorf("write json log: %w", err)
	}
	if err := t.appendCSV(e); err != nil {
		return Entry{}, err
	}

	log.Info().Str("ticker", e.Ticker).Str("recommendation", e.Recommendation).Str("log", t.jsonPath).Msg("decision logged")
	return e, nil
}

func (t *Tracker) appendCSV(e Entry) error {
	f, err := os.OpenFile(t.csvPath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open csv log: %w", err)
	}
	w := csv.NewWriter(f)
	_ = w.Write(e.record())
	w.Flush()
	if err := errors.Join(w.Error(), f.Close()); err != nil {
		return fmt.Errorf("append csv log: %w", err)
	}
	return nil
}

// load reads the JSON log. The caller holds t.mu.
func (t *Tracker) load() ([]Entry, error) {
	b, err := os.ReadFile(t.jsonPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read json log: %w", err)
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("decode json log: %w", err)
	}
	return entries, nil
}

// ════════════════════════════════════════════════════════════════════
// Queries
// ════════════════════════════════════════════════════════════════════

// All returns every logged decision, oldest first.
func (t *Tracker) All() ([]Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load()
}

// ByTicker returns the decisions for one ticker.
func (t *Tracker) ByTicker(ticker string) ([]Entry, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	return t.filter(func(e Entry) bool { return strings.ToUpper(e.Ticker) == ticker })
}

// ByRecommendation returns the decisions with the given recommendation.
func (t *Tracker) ByRecommendation(rec string) ([]Entry, error) {
	return t.filter(func(e Entry) bool { return strings.EqualFold(e.Recommendation, strings.TrimSpace(rec)) })
}

// ByModel returns the decisions made with one model.
func (t *Tracker) ByModel(model string) ([]Entry, error) {
	return t.filter(func(e Entry) bool { return e.Model == model })
}

// Recent returns the decisions logged in the last n days.
func (t *Tracker) Recent(days int) ([]Entry, error) {
	cutoff := t.now().AddDate(0, 0, -days)
	return t.filter(func(e Entry) bool { return !e.Timestamp.Before(cutoff) })
}

func (t *Tracker) filter(keep func(Entry) bool) ([]Entry, error) {
	all, err := t.All()
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, e := range all {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ════════════════════════════════════════════════════════════════════
// Summary & Export
// ════════════════════════════════════════════════════════════════════

// Stats aggregates the decision log.
type Stats struct {
	Total             int
	FirstDate         string
	LastDate          string
	ByRecommendation  map[string]int
	AverageConviction float64
	Tickers           []string
	Models            []string
	Recent            []Entry // last ten, oldest first
}

// Summarize computes Stats over entries.
func Summarize(entries []Entry) Stats {
	s := Stats{Total: len(entries), ByRecommendation: make(map[string]int)}
	if len(entries) == 0 {
		return s
	}
	s.FirstDate, s.LastDate = entries[0].Date, entries[len(entries)-1].Date

	tickers, modelSet := map[string]bool{}, map[string]bool{}
	var convSum, convN int
	for _, e := range entries {
		s.ByRecommendation[e.Recommendation]++
		tickers[e.Ticker] = true
		modelSet[e.Model] = true
		if e.Conviction != nil {
			convSum += *e.Conviction
			convN++
		}
	}
	if convN > 0 {
		s.AverageConviction = utils.Round2(float64(convSum) / float64(convN))
	}
	s.Tickers = sortedKeys(tickers)
	s.Models = sortedKeys(modelSet)

	start := max(len(entries)-10, 0)
	s.Recent = append([]Entry(nil), entries[start:]...)
	return s
}

// Summary renders the decision log summary report.
func (t *Tracker) Summary() (string, error) {
	entries, err := t.All()
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "No decisions logged yet.", nil
	}
	return SummaryReport(Summarize(entries)), nil
}

// SummaryReport formats Stats as plain text.
func SummaryReport(s Stats) string {
	line := strings.Repeat("=", 80)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nINVESTMENT DECISION SUMMARY REPORT\n%s\n\n", line, line)
	fmt.Fprintf(&b, "Total Decisions: %d\n", s.Total)
	fmt.Fprintf(&b, "Date Range: %s to %s\n\n", s.FirstDate, s.LastDate)

	b.WriteString("RECOMMENDATIONS:\n")
	for _, rec := range recommendationOrder(s.ByRecommendation) {
		n := s.ByRecommendation[rec]
		fmt.Fprintf(&b, "- %-12s %d (%.1f%%)\n", rec+":", n, float64(n)/float64(s.Total)*100)
	}
	fmt.Fprintf(&b, "\nAVERAGE CONVICTION: %.1f/10\n\n", s.AverageConviction)
	fmt.Fprintf(&b, "UNIQUE TICKERS ANALYZED: %d\n%s\n\n", len(s.Tickers), strings.Join(s.Tickers, ", "))
	fmt.Fprintf(&b, "MODELS USED: %d\n%s\n\n", len(s.Models), strings.Join(s.Models, ", "))

	fmt.Fprintf(&b, "%s\nRECENT DECISIONS (Last %d):\n%s\n", line, len(s.Recent), line)
	for _, e := range s.Recent {
		fmt.Fprintf(&b, "\n%s | %-6s | %-10s |\n", e.Date, e.Ticker, e.Recommendation)
		fmt.Fprintf(&b, "  Price: %s | Fair Value: %s |\n", money(e.CurrentPrice), money(e.FairValue))
		fmt.Fprintf(&b, "  Conviction: %s/10 | Model: %s\n", intText(e.Conviction), e.Model)
	}
	return b.String()
}

// Export writes every decision to path as JSON. An empty path means
// export_TIMESTAMP.json in the log directory.
func (t *Tracker) Export(path string) (string, error) {
	entries, err := t.All()
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", ErrNoEntries
	}
	if path == "" {
		path = filepath.Join(t.dir, "export_"+utils.FileTimestamp(t.now())+".json")
	}
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	log.Info().Int("decisions", len(entries)).Str("path", path).Msg("decisions exported")
	return path, nil
}

// --- helpers ---

var recommendationRank = map[string]int{
	"STRONG BUY": 0, "BUY": 1, "ACCUMULATE": 2, "HOLD": 3, "REDUCE": 4, "SELL": 5, "STRONG SELL": 6, "AVOID": 7,
}

// recommendationOrder lists known labels from most to least bullish, then
// any others alphabetically.
func recommendationOrder(counts map[string]int) []string {
	recs := make([]string, 0, len(counts))
	for rec := range counts {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		ri, iok := recommendationRank[strings.ToUpper(recs[i])]
		rj, jok := recommendationRank[strings.ToUpper(recs[j])]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return recs[i] < recs[j]
		}
	})
	return recs
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func intField(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func floatField(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func intText(p *int) string {
	if p == nil {
		return "N/A"
	}
	return strconv.Itoa(*p)
}

func money(p *float64) string {
	if p == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", *p)
}
