package agent

import (
	"context"
	"time"

	"github.com/phuslu/log"

	"github.com/seenimoa/researchdesk/internal/agent/prompts"
	"github.com/seenimoa/researchdesk/internal/llm"
	"github.com/seenimoa/researchdesk/pkg/models"
)

// Analyst executes one stage: its persona as the system instructions and
// the stage prompt as the single user turn.
type Analyst struct {
	stage       models.Stage
	system      string
	provider    llm.Provider
	settings    Settings
	temperature float64
}

// NewAnalyst creates the analyst for a stage.
func NewAnalyst(stage models.Stage, provider llm.Provider, settings Settings, temperature float64) *Analyst {
	return &Analyst{
		stage:       stage,
		system:      prompts.System(stage),
		provider:    provider,
		settings:    settings,
		temperature: temperature,
	}
}

// Stage returns the stage this analyst runs.
func (a *Analyst) Stage() models.Stage { return a.stage }

// Temperature returns the sampling temperature used for the stage.
func (a *Analyst) Temperature() float64 { return a.temperature }

// Run sends the prompt to the provider. A failed call yields a report whose
// content is the inline error text and whose Failed flag is set.
func (a *Analyst) Run(ctx context.Context, prompt string) models.StageReport {
	start := time.Now()
	rep := models.StageReport{
		Stage:       a.stage,
		Model:       a.settings.Model,
		Temperature: a.temperature,
	}

	log.Info().Str("stage", string(a.stage)).Int("prompt_chars", len(prompt)).Msg("stage started")

	resp, err := a.provider.Generate(ctx, llm.Request{
		Model:       a.settings.Model,
		System:      a.system,
		Prompt:      prompt,
		Temperature: a.temperature,
		TopP:        a.settings.TopP,
		TopK:        a.settings.TopK,
		MaxTokens:   a.settings.MaxTokens,
	})
	rep.Duration = time.Since(start)
	if err != nil {
		log.Error().Err(err).Str("stage", string(a.stage)).Dur("elapsed", rep.Duration).Msg("stage failed")
		rep.Content = ErrorReport(a.stage, err)
		rep.Failed = true
		return rep
	}

	rep.Content = resp.Content
	rep.Tokens = resp.Usage.TotalTokens
	if resp.Model != "" {
		rep.Model = resp.Model
	}
	log.Info().
		Str("stage", string(a.stage)).
		Int("chars", len(resp.Content)).
		Int("tokens", rep.Tokens).
		Dur("elapsed", rep.Duration).
		Msg("stage finished")
	return rep
}
