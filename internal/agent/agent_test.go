package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/seenimoa/researchdesk/internal/agent/prompts"
	"github.com/seenimoa/researchdesk/internal/briefing"
	"github.com/seenimoa/researchdesk/internal/llm"
	"github.com/seenimoa/researchdesk/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Mock LLM Provider
// ════════════════════════════════════════════════════════════════════

// mockProvider answers each request with the canned text for the stage
// whose persona is in the system instructions.
type mockProvider struct {
	mu       sync.Mutex
	replies  map[models.Stage]string
	fail     map[models.Stage]error
	requests []llm.Request
	stages   []models.Stage
}

func newMockProvider(replies map[models.Stage]string) *mockProvider {
	return &mockProvider{replies: replies, fail: map[models.Stage]error{}}
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	stage := stageFor(req.System)
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.stages = append(m.stages, stage)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.fail[stage]; err != nil {
		return nil, err
	}
	return &llm.Response{
		Content:  m.replies[stage],
		Usage:    llm.Usage{TotalTokens: 100},
		Provider: "mock",
	}, nil
}

func (m *mockProvider) calls() []models.Stage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Stage(nil), m.stages...)
}

func (m *mockProvider) request(stage models.Stage) (llm.Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.stages {
		if s == stage {
			return m.requests[i], true
		}
	}
	return llm.Request{}, false
}

func stageFor(system string) models.Stage {
	for _, s := range append(models.Stages(), models.StageEvents) {
		if prompts.System(s) == system {
			return s
		}
	}
	return ""
}

const (
	businessReply = "BUSINESS-REPORT: Acme sells widgets."
	eventsReply   = "**[2024-10-01] Earnings: record quarter → POSITIVE**"
	valueReply    = "VALUE-REPORT\n| Financial Quality Score | 8/10 | Good |\n| Recommendation | BUY | Conviction: 7/10 |"
	growthReply   = "GROWTH-REPORT\n| Market Space Score | 7/10 | Strong |"
	riskReply     = "RISK-REPORT\n**OVERALL RISK SCORE: 4.5/10**"
	cioReply      = "## SECTION 1: EXECUTIVE SUMMARY\n" +
		"- **Final Recommendation**: 🟢 BUY\n" +
		"- **Conviction Level**: 7/10\n" +
		"## SECTION 2: SYNTHESIS\nDone."
)

func cannedReplies() map[models.Stage]string {
	return map[models.Stage]string{
		models.StageBusiness: businessReply,
		models.StageEvents:   eventsReply,
		models.StageValue:    valueReply,
		models.StageGrowth:   growthReply,
		models.StageRisk:     riskReply,
		models.StageCIO:      cioReply,
	}
}

// ════════════════════════════════════════════════════════════════════
// Fake collector
// ════════════════════════════════════════════════════════════════════

type fakeCollector struct {
	news bool
	fail map[string]error
}

func (f fakeCollector) Collect(_ context.Context, ticker string) (*models.CompanyData, error) {
	if err := f.fail[ticker]; err != nil {
		return nil, err
	}
	d := &models.CompanyData{
		Ticker:  ticker,
		Profile: models.CompanyProfile{Name: "Acme Corp", Sector: "Industrials"},
		Market:  models.MarketData{CurrentPrice: 50, SharesOutstanding: 1e9, MarketCap: 50e9, Beta: 1.1},
		Statements: models.Statements{
			CashFlow: []models.CashFlowRecord{{Year: "2024", FreeCashFlow: 3e9}},
		},
		Warnings: []string{"P/E ratio not reported"},
	}
	if f.news {
		d.News = []models.NewsArticle{{Title: "Acme posts record quarter", Source: "Reuters"}}
	}
	return d, nil
}

func temps(stage models.Stage) float64 {
	switch stage {
	case models.StageValue:
		return 0.4
	case models.StageRisk:
		return 0.3
	default:
		return 0.7
	}
}

func newTestPipeline(p *mockProvider, c Collector, opts ...Option) *Pipeline {
	agents := NewRegistry(p, DefaultSettings("mock-model"), temps)
	opts = append([]Option{
		WithRunID(func() string { return "run-1" }),
		WithClock(func() time.Time { return time.Date(2024, 11, 1, 9, 30, 0, 0, time.UTC) }),
	}, opts...)
	return NewPipeline(c, agents, "mock-model", opts...)
}

// ════════════════════════════════════════════════════════════════════
// Analyst
// ════════════════════════════════════════════════════════════════════

func TestAnalystRun(t *testing.T) {
	p := newMockProvider(cannedReplies())
	a := NewAnalyst(models.StageValue, p, DefaultSettings("gemini-2.5-flash"), 0.4)

	rep := a.Run(context.Background(), "prompt")
	if rep.Failed {
		t.Fatalf("unexpected failure: %s", rep.Content)
	}
	if rep.Content != valueReply {
		t.Errorf("content: got %q", rep.Content)
	}
	if rep.Stage != models.StageValue || rep.Model != "gemini-2.5-flash" || rep.Temperature != 0.4 || rep.Tokens != 100 {
		t.Errorf("report metadata: %+v", rep)
	}

	req, ok := p.request(models.StageValue)
	if !ok {
		t.Fatal("no request recorded")
	}
	if req.Prompt != "prompt" || req.TopP != 0.95 || req.TopK != 40 || req.MaxTokens != 8192 {
		t.Errorf("request: %+v", req)
	}
}

func TestAnalystRunError(t *testing.T) {
	p := newMockProvider(cannedReplies())
	p.fail[models.StageValue] = llm.ErrRateLimit
	a := NewAnalyst(models.StageValue, p, DefaultSettings("m"), 0.4)

	rep := a.Run(context.Background(), "prompt")
	if !rep.Failed {
		t.Fatal("expected failed report")
	}
	want := "❌ Error during Value Analyst's analysis: llm: rate limit exceeded"
	if rep.Content != want {
		t.Errorf("content: got %q, want %q", rep.Content, want)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(newMockProvider(nil), DefaultSettings("m"), temps)
	if r.Count() != 6 {
		t.Fatalf("expected 6 agents, got %d", r.Count())
	}
	a, ok := r.Get(models.StageRisk)
	if !ok {
		t.Fatal("risk agent missing")
	}
	if got := a.(*Analyst).Temperature(); got != 0.3 {
		t.Errorf("risk temperature: got %v", got)
	}
	if _, ok := r.Get(models.Stage("trader")); ok {
		t.Error("unexpected agent for unknown stage")
	}
}

func TestPromptWrapsFramework(t *testing.T) {
	got := Prompt(models.StageGrowth, "Acme Corp", "ACME", "CONTEXT")
	if !strings.HasPrefix(got, "# GROWTH ANALYZER ANALYSIS: Acme Corp (ACME)") {
		t.Errorf("prompt should start with the growth framework, got %q", got[:40])
	}
	if !strings.Contains(got, "DATA FOR YOUR ANALYSIS:\n=====\n\nCONTEXT\n\n=====\nBEGIN YOUR ANALYSIS:") {
		t.Error("prompt should wrap the context")
	}
}

// ════════════════════════════════════════════════════════════════════
// Pipeline
// ════════════════════════════════════════════════════════════════════

func TestPipelineAnalyze(t *testing.T) {
	p := newMockProvider(cannedReplies())
	pipe := newTestPipeline(p, fakeCollector{news: true})

	res, err := pipe.Analyze(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	wantOrder := []models.Stage{
		models.StageBusiness, models.StageEvents, models.StageValue,
		models.StageGrowth, models.StageRisk, models.StageCIO,
	}
	got := p.calls()
	if len(got) != len(wantOrder) {
		t.Fatalf("calls: got %v", got)
	}
	for i := range wantOrder {
		if got[i] != wantOrder[i] {
			t.Errorf("call %d: got %s, want %s", i, got[i], wantOrder[i])
		}
	}

	if res.RunID != "run-1" || res.Ticker != "ACME" || res.Model != "mock-model" {
		t.Errorf("result metadata: %+v", res)
	}
	if res.Company.Name != "Acme Corp" || res.Market.CurrentPrice != 50 {
		t.Error("company and market data not copied")
	}
	if res.Valuation == nil {
		t.Error("valuation snapshot missing")
	}
	if len(res.Warnings) != 1 {
		t.Errorf("warnings: %v", res.Warnings)
	}
	if res.Business.Content != businessReply || res.KeyEvents != eventsReply {
		t.Error("business analysis or key events not stored verbatim")
	}

	if r := res.Value.Summary.Recommendation; r == nil || *r != "BUY" {
		t.Errorf("value recommendation: %v", r)
	}
	if q := res.Value.Summary.QualityScore; q == nil || *q != 8 {
		t.Errorf("value quality: %v", q)
	}
	if s := res.Growth.Summary.MarketSpace; s == nil || *s != 7 {
		t.Errorf("growth market space: %v", s)
	}
	if s := res.Risk.Summary.OverallRiskScore; s == nil || *s != 4.5 {
		t.Errorf("overall risk: %v", s)
	}
	if res.CIO.Decision.Recommendation != "BUY" {
		t.Errorf("decision: %q", res.CIO.Decision.Recommendation)
	}
	if c := res.CIO.Decision.Conviction; c == nil || *c != 7 {
		t.Errorf("conviction: %v", c)
	}
	if len(res.FailedStages()) != 0 {
		t.Errorf("failed stages: %v", res.FailedStages())
	}
}

func TestPipelineForwardsPriorReports(t *testing.T) {
	p := newMockProvider(cannedReplies())
	if _, err := newTestPipeline(p, fakeCollector{news: true}).Analyze(context.Background(), "ACME"); err != nil {
		t.Fatal(err)
	}

	value, _ := p.request(models.StageValue)
	for _, want := range []string{businessReply, eventsReply, "DETERMINISTIC VALUATION CROSS-CHECK"} {
		if !strings.Contains(value.Prompt, want) {
			t.Errorf("value prompt missing %q", want)
		}
	}
	risk, _ := p.request(models.StageRisk)
	for _, want := range []string{"VALUE-REPORT", "GROWTH-REPORT", "Acme posts record quarter"} {
		if !strings.Contains(risk.Prompt, want) {
			t.Errorf("risk prompt missing %q", want)
		}
	}
	cio, _ := p.request(models.StageCIO)
	for _, want := range []string{"VALUE-REPORT", "GROWTH-REPORT", "RISK-REPORT", "Quality Score: 8/10"} {
		if !strings.Contains(cio.Prompt, want) {
			t.Errorf("CIO prompt missing %q", want)
		}
	}
	if cio.Temperature != 0.7 || risk.Temperature != 0.3 {
		t.Errorf("temperatures: cio %v risk %v", cio.Temperature, risk.Temperature)
	}
}

func TestPipelineNoNewsSkipsEvents(t *testing.T) {
	p := newMockProvider(cannedReplies())
	res, err := newTestPipeline(p, fakeCollector{}).Analyze(context.Background(), "ACME")
	if err != nil {
		t.Fatal(err)
	}
	if n := len(p.calls()); n != 5 {
		t.Errorf("expected 5 provider calls, got %d", n)
	}
	if res.KeyEvents != briefing.NoNews {
		t.Errorf("key events: %q", res.KeyEvents)
	}
}

func TestPipelineStageFailureContinues(t *testing.T) {
	p := newMockProvider(cannedReplies())
	p.fail[models.StageGrowth] = llm.ErrProviderDown

	res, err := newTestPipeline(p, fakeCollector{}).Analyze(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("stage failure must not fail the run: %v", err)
	}
	failed := res.FailedStages()
	if len(failed) != 1 || failed[0] != models.StageGrowth {
		t.Errorf("failed stages: %v", failed)
	}
	if !strings.HasPrefix(res.Growth.Content, "❌ Error during Growth Analyst's analysis:") {
		t.Errorf("growth content: %q", res.Growth.Content)
	}
	if res.Growth.Summary.MarketSpace != nil {
		t.Error("failed stage should have an empty summary")
	}
	risk, _ := p.request(models.StageRisk)
	if !strings.Contains(risk.Prompt, "❌ Error during Growth Analyst's analysis") {
		t.Error("the inline error should be forwarded to later stages")
	}
	if res.CIO.Decision.Recommendation != "BUY" {
		t.Errorf("CIO should still run, got %q", res.CIO.Decision.Recommendation)
	}
}

func TestPipelineCIOFailure(t *testing.T) {
	p := newMockProvider(cannedReplies())
	p.fail[models.StageCIO] = errors.New("boom")

	res, err := newTestPipeline(p, fakeCollector{}).Analyze(context.Background(), "ACME")
	if err != nil {
		t.Fatal(err)
	}
	if res.CIO.Decision.Recommendation != models.NoRecommendation {
		t.Errorf("decision: %q", res.CIO.Decision.Recommendation)
	}
}

func TestPipelineCollectError(t *testing.T) {
	notFound := errors.New("ticker not found")
	p := newMockProvider(cannedReplies())
	_, err := newTestPipeline(p, fakeCollector{fail: map[string]error{"NOPE": notFound}}).Analyze(context.Background(), "NOPE")
	if !errors.Is(err, notFound) {
		t.Fatalf("expected wrapped collector error, got %v", err)
	}
	if len(p.calls()) != 0 {
		t.Error("no stage should run without data")
	}
}

func TestPipelineCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newMockProvider(cannedReplies())
	res, err := newTestPipeline(p, fakeCollector{}).Analyze(ctx, "ACME")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res == nil {
		t.Fatal("partial result should be returned")
	}
	if n := len(p.calls()); n != 1 {
		t.Errorf("only the first stage should reach the provider, got %d calls", n)
	}
	if len(res.FailedStages()) != 5 {
		t.Errorf("all stages should be marked failed, got %v", res.FailedStages())
	}
}

func TestPipelineStageDelay(t *testing.T) {
	p := newMockProvider(cannedReplies())
	pipe := newTestPipeline(p, fakeCollector{}, WithStageDelay(10*time.Millisecond))

	start := time.Now()
	if _, err := pipe.Analyze(context.Background(), "ACME"); err != nil {
		t.Fatal(err)
	}
	// Four pauses between five stages.
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("stage delay not applied: %v", elapsed)
	}
}

func TestAnalyzeManyIsolatesFailures(t *testing.T) {
	p := newMockProvider(cannedReplies())
	c := fakeCollector{fail: map[string]error{"BAD": errors.New("no data")}}
	pipe := newTestPipeline(p, c, WithConcurrency(2))

	results := pipe.AnalyzeMany(context.Background(), []string{"ACME", "BAD", "WIDG"})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []string{"ACME", "BAD", "WIDG"} {
		if results[i].Ticker != want {
			t.Errorf("result %d: got %s, want %s", i, results[i].Ticker, want)
		}
	}
	if results[1].Error == "" || !strings.Contains(results[1].Error, "no data") {
		t.Errorf("BAD should carry its error, got %q", results[1].Error)
	}
	if results[0].Error != "" || results[2].Error != "" {
		t.Error("healthy tickers should not carry errors")
	}
	if results[2].CIO.Decision.Recommendation != "BUY" {
		t.Error("later tickers should still be analyzed")
	}
}
