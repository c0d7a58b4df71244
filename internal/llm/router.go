package llm

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"

	"github.com/seenimoa/researchdesk/internal/config"
)

// Router resolves a model name to its provider and paces calls to the
// model's published quota: a token bucket for requests per minute and a
// per-day counter for requests per day.
type Router struct {
	mu        sync.Mutex
	providers map[config.Provider]Provider
	limits    map[string]*modelLimit
	model     string
	now       func() time.Time
}

type modelLimit struct {
	limiter *rate.Limiter
	rpd     int
	day     string
	used    int
}

// RouterOption configures the router.
type RouterOption func(*Router)

// WithDefaultModel sets the model used when a request names none.
func WithDefaultModel(model string) RouterOption {
	return func(r *Router) { r.model = model }
}

// WithLimit overrides the quota for one model. Zero means unlimited.
func WithLimit(model string, rpm, rpd int) RouterOption {
	return func(r *Router) { r.limits[model] = newModelLimit(rpm, rpd) }
}

// WithClock replaces the clock used for the daily counter.
func WithClock(now func() time.Time) RouterOption {
	return func(r *Router) { r.now = now }
}

// NewRouter creates a router with no providers registered.
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{
		providers: make(map[config.Provider]Provider),
		limits:    make(map[string]*modelLimit),
		model:     config.DefaultModel,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func newModelLimit(rpm, rpd int) *modelLimit {
	limit := rate.Inf
	if rpm > 0 {
		limit = rate.Every(time.Minute / time.Duration(rpm))
	}
	return &modelLimit{limiter: rate.NewLimiter(limit, 1), rpd: rpd}
}

// Register attaches a provider for a back-end.
func (r *Router) Register(p config.Provider, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p] = provider
}

// Name satisfies Provider.
func (r *Router) Name() string { return "router/" + r.model }

// Model returns the default model.
func (r *Router) Model() string { return r.model }

// Generate routes the request to the provider that serves req.Model,
// waiting for the model's rate limiter first.
func (r *Router) Generate(ctx context.Context, req Request) (*Response, error) {
	if req.Model == "" {
		req.Model = r.model
	}
	info, ok := config.LookupModel(req.Model)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidModel, req.Model)
	}

	r.mu.Lock()
	provider, ok := r.providers[info.Provider]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: no %s provider for %s", ErrNoProviders, info.Provider, req.Model)
	}

	if err := r.acquire(ctx, info); err != nil {
		return nil, err
	}

	log.Debug().Str("model", req.Model).Str("provider", provider.Name()).Msg("llm request")
	resp, err := provider.Generate(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("model", req.Model).Msg("llm request failed")
		return nil, err
	}
	log.Debug().Str("model", req.Model).Int("tokens", resp.Usage.TotalTokens).Dur("latency", resp.Latency).Msg("llm response")
	return resp, nil
}

// acquire blocks until the model's RPM bucket has a token and counts the
// request against its daily quota.
func (r *Router) acquire(ctx context.Context, info config.ModelInfo) error {
	r.mu.Lock()
	ml, ok := r.limits[info.Name]
	if !ok {
		ml = newModelLimit(info.RPM, info.RPD)
		r.limits[info.Name] = ml
	}
	day := r.now().Format("2006-01-02")
	if ml.day != day {
		ml.day = day
		ml.used = 0
	}
	if ml.rpd > 0 && ml.used >= ml.rpd {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s daily quota of %d requests used", ErrRateLimit, info.Name, ml.rpd)
	}
	ml.used++
	r.mu.Unlock()

	if err := ml.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("llm/router: waiting for %s: %w", info.Name, err)
	}
	return nil
}

// Used returns how many requests were sent to a model today.
func (r *Router) Used(model string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ml, ok := r.limits[model]; ok && ml.day == r.now().Format("2006-01-02") {
		return ml.used
	}
	return 0
}

// NewRouterFromConfig registers a provider for every back-end with a
// configured key. The selected model's back-end must be among them.
func NewRouterFromConfig(ctx context.Context, cfg *config.Config) (*Router, error) {
	info, ok := config.LookupModel(cfg.LLM.Model)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidModel, cfg.LLM.Model)
	}

	router := NewRouter(WithDefaultModel(info.Name))
	timeout := time.Duration(cfg.LLM.TimeoutSec) * time.Second

	if cfg.LLM.GeminiKey != "" {
		opts := []GeminiOption{
			WithGeminiHTTPClient(&http.Client{Timeout: timeout}),
		}
		if info.Provider == config.ProviderGemini {
			opts = append(opts, WithGeminiModel(info.Name))
		}
		if cfg.LLM.GeminiBaseURL != "" {
			opts = append(opts, WithGeminiBaseURL(cfg.LLM.GeminiBaseURL))
		}
		p, err := NewGeminiProvider(ctx, cfg.LLM.GeminiKey, opts...)
		if err != nil {
			return nil, err
		}
		router.Register(config.ProviderGemini, p)
	}

	if cfg.LLM.DeepSeekKey != "" {
		opts := []DeepSeekOption{WithDeepSeekTimeout(timeout)}
		if info.Provider == config.ProviderDeepSeek {
			opts = append(opts, WithDeepSeekModel(info.Name))
		}
		if cfg.LLM.DeepSeekBaseURL != "" {
			opts = append(opts, WithDeepSeekBaseURL(cfg.LLM.DeepSeekBaseURL))
		}
		p, err := NewDeepSeekProvider(cfg.LLM.DeepSeekKey, opts...)
		if err != nil {
			return nil, err
		}
		router.Register(config.ProviderDeepSeek, p)
	}

	router.mu.Lock()
	_, ok = router.providers[info.Provider]
	router.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s requires a %s API key", ErrNoAPIKey, info.Name, info.Provider)
	}
	return router, nil
}
