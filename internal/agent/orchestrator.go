package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/researchdesk/internal/agent/prompts"
	"github.com/seenimoa/researchdesk/internal/analysis/fundamental"
	"github.com/seenimoa/researchdesk/internal/briefing"
	"github.com/seenimoa/researchdesk/internal/config"
	"github.com/seenimoa/researchdesk/internal/datasource"
	"github.com/seenimoa/researchdesk/internal/extract"
	"github.com/seenimoa/researchdesk/internal/llm"
	"github.com/seenimoa/researchdesk/pkg/models"
)

// ErrMissingAgent is returned when the registry has no agent for a stage.
var ErrMissingAgent = errors.New("agent: no agent registered for stage")

// Collector gathers the company data a run works from.
type Collector interface {
	Collect(ctx context.Context, ticker string) (*models.CompanyData, error)
}

// Pipeline runs the research stages for one ticker at a time, or for many
// tickers with bounded concurrency.
type Pipeline struct {
	collector   Collector
	agents      *Registry
	model       string
	delay       time.Duration
	concurrency int
	now         func() time.Time
	newID       func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStageDelay pauses for d between consecutive stages.
func WithStageDelay(d time.Duration) Option {
	return func(p *Pipeline) { p.delay = d }
}

// WithConcurrency sets how many tickers AnalyzeMany runs at once.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithClock overrides the time source used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRunID overrides the run identifier generator.
func WithRunID(newID func() string) Option {
	return func(p *Pipeline) { p.newID = newID }
}

// NewPipeline creates a pipeline over a collector and a stage registry.
func NewPipeline(collector Collector, agents *Registry, model string, opts ...Option) *Pipeline {
	p := &Pipeline{
		collector:   collector,
		agents:      agents,
		model:       model,
		concurrency: 1,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewPipelineFromConfig wires the Yahoo and Google News collector, the
// provider router and the stage analysts from configuration.
func NewPipelineFromConfig(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	router, err := llm.NewRouterFromConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	settings := Settings{
		Model:     cfg.LLM.Model,
		TopP:      cfg.LLM.TopP,
		TopK:      cfg.LLM.TopK,
		MaxTokens: cfg.LLM.MaxTokens,
	}
	agents := NewRegistry(router, settings, cfg.LLM.Temperatures.For)
	return NewPipeline(datasource.NewCollectorFromConfig(cfg.Data), agents, cfg.LLM.Model,
		WithStageDelay(cfg.Pipeline.StageDelay()),
		WithConcurrency(cfg.Pipeline.Concurrency),
	), nil
}

// Model returns the model name recorded on results.
func (p *Pipeline) Model() string { return p.model }

// Analyze runs the full pipeline for one ticker. An error is returned only
// when the company data could not be collected or the context was
// cancelled; stage failures are recorded inline in the result.
func (p *Pipeline) Analyze(ctx context.Context, ticker string) (*models.AnalysisResult, error) {
	start := time.Now()
	data, err := p.collector.Collect(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", ticker, err)
	}

	valuation := fundamental.Value(data)
	snapshot := valuation.Snapshot()
	res := &models.AnalysisResult{
		RunID:     p.newID(),
		Ticker:    data.Ticker,
		Timestamp: p.now(),
		Model:     p.model,
		Company:   data.Profile,
		Market:    data.Market,
		Valuation: &snapshot,
		Warnings:  append([]string(nil), data.Warnings...),
	}
	log.Info().Str("ticker", data.Ticker).Str("run_id", res.RunID).Msg("analysis started")

	r := &run{p: p, ctx: ctx, data: data}

	// Business understanding and key events together form the shared
	// context for every later stage.
	res.Business = r.stage(models.StageBusiness, briefing.BusinessInput(data))
	res.KeyEvents = r.events()
	business := briefing.Business(data, res.Business.Content, res.KeyEvents)

	res.Value.StageReport = r.stage(models.StageValue, briefing.Value(data, business, valuation.Report()))
	if !res.Value.Failed {
		res.Value.Summary = extract.Value(res.Value.Content)
		logMissing(models.StageValue, res.Value.Summary)
	}

	res.Growth.StageReport = r.stage(models.StageGrowth, briefing.Growth(data, business))
	if !res.Growth.Failed {
		res.Growth.Summary = extract.Growth(res.Growth.Content)
		logMissing(models.StageGrowth, res.Growth.Summary)
	}

	res.Risk.StageReport = r.stage(models.StageRisk, briefing.Risk(data, business, res.Value.Content, res.Growth.Content))
	if !res.Risk.Failed {
		res.Risk.Summary = extract.Risk(res.Risk.Content)
		logMissing(models.StageRisk, res.Risk.Summary)
	}

	res.CIO.StageReport = r.stage(models.StageCIO, briefing.CIO(data, res.Business.Content, briefing.Analyses{
		Value:  res.Value,
		Growth: res.Growth,
		Risk:   res.Risk,
	}))
	res.CIO.Decision = models.Decision{Recommendation: models.NoRecommendation}
	if !res.CIO.Failed {
		res.CIO.Decision = extract.Decision(res.CIO.Content)
		logMissing(models.StageCIO, res.CIO.Decision)
	}

	res.Duration = time.Since(start)
	if r.err != nil {
		return res, r.err
	}
	log.Info().
		Str("ticker", res.Ticker).
		Str("recommendation", res.CIO.Decision.Recommendation).
		Int("failed_stages", len(res.FailedStages())).
		Dur("elapsed", res.Duration).
		Msg("analysis finished")
	return res, nil
}

// AnalyzeMany analyzes each ticker and returns results in input order. A
// ticker that fails is returned as a result carrying only its error; it
// does not stop the others.
func (p *Pipeline) AnalyzeMany(ctx context.Context, tickers []string) []*models.AnalysisResult {
	results := make([]*models.AnalysisResult, len(tickers))
	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, t := range tickers {
		g.Go(func() error {
			res, err := p.Analyze(ctx, t)
			if err != nil {
				log.Error().Err(err).Str("ticker", t).Msg("analysis failed")
				if res == nil {
					res = &models.AnalysisResult{Ticker: t, Timestamp: p.now(), Model: p.model}
				}
				res.Error = err.Error()
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// run carries the state of one ticker's pass through the stages.
type run struct {
	p      *Pipeline
	ctx    context.Context
	data   *models.CompanyData
	stages int
	err    error
}

// stage waits out the configured delay, then runs one stage. Once the
// context is done every remaining stage is reported as failed without
// calling the provider.
func (r *run) stage(stage models.Stage, input string) models.StageReport {
	if r.stages > 0 {
		r.pause()
	}
	r.stages++
	if r.err != nil {
		return failed(stage, r.p.model, r.err)
	}
	a, ok := r.p.agents.Get(stage)
	if !ok {
		return failed(stage, r.p.model, fmt.Errorf("%w: %s", ErrMissingAgent, stage))
	}
	return a.Run(r.ctx, Prompt(stage, r.data.DisplayName(), r.data.Ticker, input))
}

// events extracts the material events from the collected news. With no
// news there is nothing to extract and no call is made.
func (r *run) events() string {
	if len(r.data.News) == 0 {
		return briefing.NoNews
	}
	r.pause()
	if r.err != nil {
		return ErrorReport(models.StageEvents, r.err)
	}
	a, ok := r.p.agents.Get(models.StageEvents)
	if !ok {
		return ErrorReport(models.StageEvents, fmt.Errorf("%w: %s", ErrMissingAgent, models.StageEvents))
	}
	instructions := prompts.Events(r.data.DisplayName(), r.data.Ticker, len(r.data.News))
	rep := a.Run(r.ctx, briefing.StagePrompt(instructions, briefing.EventsInput(r.data)))
	return rep.Content
}

func (r *run) pause() {
	if r.err != nil {
		return
	}
	if err := r.ctx.Err(); err != nil {
		r.err = err
		return
	}
	if r.p.delay <= 0 {
		return
	}
	t := time.NewTimer(r.p.delay)
	defer t.Stop()
	select {
	case <-r.ctx.Done():
		r.err = r.ctx.Err()
	case <-t.C:
	}
}

func failed(stage models.Stage, model string, err error) models.StageReport {
	return models.StageReport{
		Stage:   stage,
		Model:   model,
		Content: ErrorReport(stage, err),
		Failed:  true,
	}
}

func logMissing(stage models.Stage, summary any) {
	if missing := extract.MissingFields(summary); len(missing) > 0 {
		log.Debug().Str("stage", string(stage)).Strs("missing", missing).Msg("fields not found in report")
	}
}
