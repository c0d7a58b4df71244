package config

import "os"

// Conventional provider key variables, read when the prefixed
// RESEARCHDESK_LLM_* variables are unset.
const (
	EnvGeminiKey   = "GEMINI_API_KEY"
	EnvDeepSeekKey = "DEEPSEEK_API_KEY"
)

// KeySource says where a configured key was found.
type KeySource string

const (
	KeySourceEnv    KeySource = "env"
	KeySourceConfig KeySource = "config"
	KeySourceNone   KeySource = "none"
)

// KeyStatus is one row of the status command's key table.
type KeyStatus struct {
	Name     string    `json:"name"`
	Provider Provider  `json:"provider"`
	Source   KeySource `json:"source"`
	IsSet    bool      `json:"is_set"`
	Masked   string    `json:"masked,omitempty"`
}

type providerKey struct {
	label    string
	provider Provider
	value    func(*LLMConfig) string
	env      []string
}

var providerKeys = []providerKey{
	{
		label:    "Gemini API Key",
		provider: ProviderGemini,
		value:    func(c *LLMConfig) string { return c.GeminiKey },
		env:      []string{"RESEARCHDESK_LLM_GEMINI_KEY", EnvGeminiKey},
	},
	{
		label:    "DeepSeek API Key",
		provider: ProviderDeepSeek,
		value:    func(c *LLMConfig) string { return c.DeepSeekKey },
		env:      []string{"RESEARCHDESK_LLM_DEEPSEEK_KEY", EnvDeepSeekKey},
	},
}

// CheckAPIKeys reports, per provider, whether a key is configured and
// whether it came from the environment or a config file.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	out := make([]KeyStatus, 0, len(providerKeys))
	for _, pk := range providerKeys {
		out = append(out, pk.status(pk.value(&cfg.LLM)))
	}
	return out
}

func (pk providerKey) status(value string) KeyStatus {
	s := KeyStatus{Name: pk.label, Provider: pk.provider, Source: KeySourceNone}
	if value == "" {
		return s
	}
	s.IsSet = true
	s.Masked = maskKey(value)
	s.Source = KeySourceConfig
	for _, name := range pk.env {
		if os.Getenv(name) == value {
			s.Source = KeySourceEnv
			break
		}
	}
	return s
}

// envVarFor names the conventional variable a user should export for p.
func envVarFor(p Provider) string {
	for _, pk := range providerKeys {
		if pk.provider == p {
			return pk.env[len(pk.env)-1]
		}
	}
	return EnvGeminiKey
}

// maskKey keeps the first and last three characters of keys long enough
// to survive it.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
