// Package agent runs the research pipeline: it collects company data, runs
// the business, events, value, growth, risk and CIO stages in order against
// a text-generation provider, and assembles the parsed results.
package agent

import (
	"context"
	"fmt"

	"github.com/seenimoa/researchdesk/internal/agent/prompts"
	"github.com/seenimoa/researchdesk/internal/briefing"
	"github.com/seenimoa/researchdesk/internal/llm"
	"github.com/seenimoa/researchdesk/pkg/models"
)

// ── Agent Interface ──

// Agent is one prompted stage of the pipeline.
type Agent interface {
	// Stage returns the pipeline stage the agent runs.
	Stage() models.Stage

	// Run sends the prompt and returns the stage report. Provider failures
	// are reported inline in the returned text and never as an error.
	Run(ctx context.Context, prompt string) models.StageReport
}

// Settings are the generation parameters shared by every stage.
type Settings struct {
	Model     string
	TopP      float64
	TopK      int
	MaxTokens int
}

// DefaultSettings returns the generation parameters used when none are
// configured.
func DefaultSettings(model string) Settings {
	return Settings{Model: model, TopP: 0.95, TopK: 40, MaxTokens: 8192}
}

// ErrorReport is the inline text that replaces a stage's analysis when the
// provider call fails.
func ErrorReport(stage models.Stage, err error) string {
	return fmt.Sprintf("❌ Error during %s's analysis: %v", stage.Title(), err)
}

// Prompt builds the full user prompt for a stage: its framework followed by
// the data context.
func Prompt(stage models.Stage, company, ticker, context string) string {
	return briefing.StagePrompt(prompts.Framework(stage, company, ticker), context)
}

// ── Registry ──

// Registry maps stages to their agents.
type Registry struct {
	agents map[models.Stage]Agent
}

// NewRegistry builds a registry of analysts for the five reported stages and
// the events step, all sharing one provider.
func NewRegistry(provider llm.Provider, settings Settings, temperature func(models.Stage) float64) *Registry {
	r := &Registry{agents: make(map[models.Stage]Agent)}
	for _, stage := range append(models.Stages(), models.StageEvents) {
		r.Register(NewAnalyst(stage, provider, settings, temperature(stage)))
	}
	return r
}

// Register adds or replaces the agent for its stage.
func (r *Registry) Register(a Agent) {
	if r.agents == nil {
		r.agents = make(map[models.Stage]Agent)
	}
	r.agents[a.Stage()] = a
}

// Get returns the agent for a stage.
func (r *Registry) Get(stage models.Stage) (Agent, bool) {
	a, ok := r.agents[stage]
	return a, ok
}

// Count returns the number of registered agents.
func (r *Registry) Count() int { return len(r.agents) }
