package config

import "sort"

// Provider names a text-generation back-end.
type Provider string

const (
	ProviderGemini   Provider = "gemini"
	ProviderDeepSeek Provider = "deepseek"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ModelInfo describes a supported model and its request quota.
// Zero RPM or RPD means the provider publishes no limit.
type ModelInfo struct {
	Name        string   `json:"name"`
	Provider    Provider `json:"provider"`
	Description string   `json:"description"`
	RPM         int      `json:"rpm"`
	RPD         int      `json:"rpd"`
}

var modelRegistry = map[string]ModelInfo{
	"gemini-2.5-flash": {
		Name:        "gemini-2.5-flash",
		Provider:    ProviderGemini,
		Description: "Gemini 2.5 Flash - Fast and efficient (Default)",
		RPM:         10,
		RPD:         250,
	},
	"gemini-2.5-flash-lite": {
		Name:        "gemini-2.5-flash-lite",
		Provider:    ProviderGemini,
		Description: "Gemini 2.5 Flash Lite - Lighter, faster",
		RPM:         15,
		RPD:         1500,
	},
	"gemini-3-flash-preview": {
		Name:        "gemini-3-flash-preview",
		Provider:    ProviderGemini,
		Description: "Gemini 3 Flash Preview - Experimental latest version",
		RPM:         15,
		RPD:         1500,
	},
	"deepseek-chat": {
		Name:        "deepseek-chat",
		Provider:    ProviderDeepSeek,
		Description: "DeepSeek V3 Chat - OpenAI-compatible API",
		RPM:         60,
	},
	"deepseek-reasoner": {
		Name:        "deepseek-reasoner",
		Provider:    ProviderDeepSeek,
		Description: "DeepSeek R1 Reasoner - Slower, step-by-step reasoning",
		RPM:         60,
	},
}

// LookupModel returns the registry entry for a model name.
func LookupModel(name string) (ModelInfo, bool) {
	m, ok := modelRegistry[name]
	return m, ok
}

// Models returns every registered model, default first, then by name.
func Models() []ModelInfo {
	out := make([]ModelInfo, 0, len(modelRegistry))
	for _, m := range modelRegistry {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if (out[i].Name == DefaultModel) != (out[j].Name == DefaultModel) {
			return out[i].Name == DefaultModel
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ModelNames returns the names of all registered models in Models order.
func ModelNames() []string {
	ms := Models()
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name
	}
	return names
}
