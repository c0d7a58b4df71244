// Package config handles configuration loading for researchdesk.
// It supports YAML config files and a .env file, with environment variable
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/seenimoa/researchdesk/pkg/models"
)

// Sentinel errors raised before any network call is made.
var (
	ErrMissingAPIKey = errors.New("config: missing API key")
	ErrUnknownModel  = errors.New("config: unknown model")
	ErrInvalid       = errors.New("config: invalid value")
)

// Config represents the complete application configuration.
// It is loaded once and treated as read-only afterwards.
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm"      yaml:"llm"`
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`
	Data     DataConfig     `mapstructure:"data"     yaml:"data"`
	Output   OutputConfig   `mapstructure:"output"   yaml:"output"`
	Tracker  TrackerConfig  `mapstructure:"tracker"  yaml:"tracker"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// LLMConfig holds text-generation provider configuration.
type LLMConfig struct {
	Model           string            `mapstructure:"model"             yaml:"model"             validate:"required"`
	GeminiKey       string            `mapstructure:"gemini_key"        yaml:"gemini_key"`
	DeepSeekKey     string            `mapstructure:"deepseek_key"      yaml:"deepseek_key"`
	GeminiBaseURL   string            `mapstructure:"gemini_base_url"   yaml:"gemini_base_url"   validate:"omitempty,url"`
	DeepSeekBaseURL string            `mapstructure:"deepseek_base_url" yaml:"deepseek_base_url" validate:"omitempty,url"`
	TopP            float64           `mapstructure:"top_p"             yaml:"top_p"             validate:"gte=0,lte=1"`
	TopK            int               `mapstructure:"top_k"             yaml:"top_k"             validate:"gte=0"`
	MaxTokens       int               `mapstructure:"max_tokens"        yaml:"max_tokens"        validate:"gt=0"`
	TimeoutSec      int               `mapstructure:"timeout_sec"       yaml:"timeout_sec"       validate:"gt=0"`
	Temperatures    StageTemperatures `mapstructure:"temperatures"      yaml:"temperatures"`
}

// StageTemperatures holds the sampling temperature for each stage.
type StageTemperatures struct {
	Business float64 `mapstructure:"business" yaml:"business" validate:"gte=0,lte=2"`
	Value    float64 `mapstructure:"value"    yaml:"value"    validate:"gte=0,lte=2"`
	Growth   float64 `mapstructure:"growth"   yaml:"growth"   validate:"gte=0,lte=2"`
	Risk     float64 `mapstructure:"risk"     yaml:"risk"     validate:"gte=0,lte=2"`
	CIO      float64 `mapstructure:"cio"      yaml:"cio"      validate:"gte=0,lte=2"`
}

// For returns the temperature configured for a stage.
func (t StageTemperatures) For(stage models.Stage) float64 {
	switch stage {
	case models.StageBusiness:
		return t.Business
	case models.StageValue:
		return t.Value
	case models.StageGrowth:
		return t.Growth
	case models.StageRisk:
		return t.Risk
	case models.StageCIO:
		return t.CIO
	default:
		return t.Business
	}
}

// PipelineConfig holds orchestration settings.
type PipelineConfig struct {
	StageDelaySec int `mapstructure:"stage_delay_sec" yaml:"stage_delay_sec" validate:"gte=0"`
	Concurrency   int `mapstructure:"concurrency"     yaml:"concurrency"     validate:"gte=1"`
}

// StageDelay returns the fixed pause between stages.
func (p PipelineConfig) StageDelay() time.Duration {
	return time.Duration(p.StageDelaySec) * time.Second
}

// DataConfig holds market data and news collection settings.
type DataConfig struct {
	CacheTTL       int     `mapstructure:"cache_ttl"        yaml:"cache_ttl"        validate:"gte=0"` // seconds
	TimeoutSec     int     `mapstructure:"timeout_sec"      yaml:"timeout_sec"      validate:"gt=0"`
	RateLimit      float64 `mapstructure:"rate_limit"       yaml:"rate_limit"       validate:"gt=0"` // requests per second
	NewsPerQuery   int     `mapstructure:"news_per_query"   yaml:"news_per_query"   validate:"gte=0"`
	MaxNews        int     `mapstructure:"max_news"         yaml:"max_news"         validate:"gte=0"`
	YahooBaseURL   string  `mapstructure:"yahoo_base_url"   yaml:"yahoo_base_url"   validate:"omitempty,url"`
	NewsSearchURL  string  `mapstructure:"news_search_url"  yaml:"news_search_url"  validate:"omitempty,url"`
	DedupThreshold float64 `mapstructure:"dedup_threshold"  yaml:"dedup_threshold"  validate:"gt=0,lte=1"`
}

// OutputConfig holds report file settings.
type OutputConfig struct {
	Dir    string `mapstructure:"dir"    yaml:"dir"    validate:"required"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json txt html"`
}

// TrackerConfig holds decision log settings.
type TrackerConfig struct {
	Dir     string `mapstructure:"dir"     yaml:"dir"     validate:"required"`
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
	File   string `mapstructure:"file"   yaml:"file"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.researchdesk/config.yaml (home directory)
//  3. /etc/researchdesk/config.yaml (system)
//
// A .env file in the working directory is loaded first; variables already
// set in the environment win. Environment variables override config file
// values. Format: RESEARCHDESK_<SECTION>_<KEY>, e.g., RESEARCHDESK_LLM_MODEL
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".researchdesk"))
	v.AddConfigPath("/etc/researchdesk")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("RESEARCHDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// LLM defaults
	v.SetDefault("llm.model", DefaultModel)
	v.SetDefault("llm.gemini_key", "")
	v.SetDefault("llm.deepseek_key", "")
	v.SetDefault("llm.gemini_base_url", "")
	v.SetDefault("llm.deepseek_base_url", "https://api.deepseek.com")
	v.SetDefault("llm.top_p", 0.95)
	v.SetDefault("llm.top_k", 40)
	v.SetDefault("llm.max_tokens", 8192)
	v.SetDefault("llm.timeout_sec", 180)
	v.SetDefault("llm.temperatures.business", 0.7)
	v.SetDefault("llm.temperatures.value", 0.4)
	v.SetDefault("llm.temperatures.growth", 0.5)
	v.SetDefault("llm.temperatures.risk", 0.3)
	v.SetDefault("llm.temperatures.cio", 0.4)

	// Pipeline defaults
	v.SetDefault("pipeline.stage_delay_sec", 0)
	v.SetDefault("pipeline.concurrency", 1)

	// Data defaults
	v.SetDefault("data.cache_ttl", 300) // 5 minutes
	v.SetDefault("data.timeout_sec", 30)
	v.SetDefault("data.rate_limit", 2.0)
	v.SetDefault("data.news_per_query", 5)
	v.SetDefault("data.max_news", 30)
	v.SetDefault("data.yahoo_base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("data.news_search_url", "https://news.google.com/rss/search")
	v.SetDefault("data.dedup_threshold", 0.8)

	// Output defaults
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.format", "json")

	// Tracker defaults
	v.SetDefault("tracker.dir", "performance_logs")
	v.SetDefault("tracker.enabled", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
}

// overrideFromEnv reads provider keys from their conventional variables when
// the prefixed ones are not set.
func overrideFromEnv(cfg *Config) {
	if cfg.LLM.GeminiKey == "" {
		cfg.LLM.GeminiKey = os.Getenv(EnvGeminiKey)
	}
	if cfg.LLM.DeepSeekKey == "" {
		cfg.LLM.DeepSeekKey = os.Getenv(EnvDeepSeekKey)
	}
}

// loadDotEnv loads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks value ranges, the selected model and the presence of the
// API key its provider needs. It is meant to run before any network call.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%w: %s failed %q (got %v)", ErrInvalid, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	info, ok := LookupModel(c.LLM.Model)
	if !ok {
		return fmt.Errorf("%w: %q (available: %s)", ErrUnknownModel, c.LLM.Model, strings.Join(ModelNames(), ", "))
	}
	if c.APIKey(info.Provider) == "" {
		return fmt.Errorf("%w: %s requires %s", ErrMissingAPIKey, info.Name, envVarFor(info.Provider))
	}
	return nil
}

// APIKey returns the configured key for a provider.
func (c *Config) APIKey(p Provider) string {
	switch p {
	case ProviderGemini:
		return c.LLM.GeminiKey
	case ProviderDeepSeek:
		return c.LLM.DeepSeekKey
	default:
		return ""
	}
}

// WithModel returns a copy of the config using a different model.
func (c *Config) WithModel(model string) *Config {
	cp := *c
	cp.LLM.Model = model
	return &cp
}

// WithPipeline returns a copy with different concurrency and stage delay.
func (c *Config) WithPipeline(concurrency, stageDelaySec int) *Config {
	cp := *c
	cp.Pipeline.Concurrency = concurrency
	cp.Pipeline.StageDelaySec = stageDelaySec
	return &cp
}

// WithOutputFormat returns a copy that writes reports in format.
func (c *Config) WithOutputFormat(format string) *Config {
	cp := *c
	cp.Output.Format = format
	return &cp
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
