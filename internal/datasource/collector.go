package datasource

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/researchdesk/internal/analysis/fundamental"
	"github.com/seenimoa/researchdesk/internal/config"
	"github.com/seenimoa/researchdesk/pkg/models"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

// ErrInvalidTicker is returned for symbols that cannot be a Yahoo ticker.
var ErrInvalidTicker = errors.New("invalid ticker")

// P/E sanity bounds for the data-quality warnings.
const (
	minSanePE        = 3.0
	maxSanePE        = 200.0
	peMismatchMargin = 1.0
)

// MarketSource supplies company fundamentals.
type MarketSource interface {
	Company(ctx context.Context, ticker string) (*models.CompanyData, error)
}

// NewsSource supplies recent company news.
type NewsSource interface {
	ForTicker(ctx context.Context, ticker string) ([]models.NewsArticle, error)
}

// Collector gathers everything the pipeline needs for one ticker.
type Collector struct {
	market MarketSource
	news   NewsSource
}

// NewCollector creates a collector. news may be nil.
func NewCollector(market MarketSource, news NewsSource) *Collector {
	return &Collector{market: market, news: news}
}

// NewCollectorFromConfig wires the Yahoo and Google News sources.
func NewCollectorFromConfig(cfg config.DataConfig) *Collector {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	ttl := time.Duration(cfg.CacheTTL) * time.Second
	client := NewHTTPClient(timeout)

	yahooOpts := []YahooOption{
		WithYahooClient(client),
		WithYahooCacheTTL(ttl),
		WithYahooRate(cfg.RateLimit),
	}
	if cfg.YahooBaseURL != "" {
		yahooOpts = append(yahooOpts, WithYahooBaseURL(cfg.YahooBaseURL))
	}

	newsOpts := []NewsOption{
		WithNewsClient(client),
		WithNewsCacheTTL(ttl),
		WithNewsRate(cfg.RateLimit),
		WithNewsLimits(cfg.NewsPerQuery, cfg.MaxNews),
		WithDedupThreshold(cfg.DedupThreshold),
	}
	if cfg.NewsSearchURL != "" {
		newsOpts = append(newsOpts, WithNewsSearchURL(cfg.NewsSearchURL))
	}

	return NewCollector(NewYahoo(yahooOpts...), NewGoogleNews(newsOpts...))
}

// Collect fetches fundamentals and news concurrently, then derives metrics,
// red flags and data-quality warnings. Only a market data failure is fatal;
// news problems become a warning.
func (c *Collector) Collect(ctx context.Context, ticker string) (*models.CompanyData, error) {
	symbol := utils.NormalizeTicker(ticker)
	if !utils.ValidTicker(symbol) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTicker, ticker)
	}

	start := time.Now()
	var (
		data    *models.CompanyData
		news    []models.NewsArticle
		newsErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := c.market.Company(gctx, symbol)
		if err != nil {
			return fmt.Errorf("collect %s: %w", symbol, err)
		}
		data = d
		return nil
	})
	if c.news != nil {
		g.Go(func() error {
			news, newsErr = c.news.ForTicker(gctx, symbol)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The cached value is shared; work on a copy.
	out := *data
	out.Warnings = append([]string(nil), data.Warnings...)
	out.News = news

	if newsErr != nil {
		log.Warn().Err(newsErr).Str("ticker", symbol).Msg("news unavailable")
		out.Warnings = append(out.Warnings, fmt.Sprintf("News unavailable: %v", newsErr))
	}

	out.Metrics = fundamental.ComputeMetrics(out.Statements)
	out.RedFlags = fundamental.DetectRedFlags(out.Statements)
	out.Warnings = append(out.Warnings, QualityWarnings(&out)...)

	log.Info().
		Str("ticker", symbol).
		Str("company", out.DisplayName()).
		Int("income_years", len(out.Statements.Income)).
		Int("news", len(out.News)).
		Int("warnings", len(out.Warnings)).
		Dur("elapsed", time.Since(start)).
		Msg("data collected")
	return &out, nil
}

// QualityWarnings checks the collected data for values that usually mean
// the upstream figures are stale or wrong.
func QualityWarnings(d *models.CompanyData) []string {
	var w []string

	price := d.Market.CurrentPrice
	if price <= 0 {
		w = append(w, "Current price unavailable")
	}

	pe := d.Valuation.TrailingPE
	switch {
	case pe == 0:
		w = append(w, "P/E ratio not reported")
	case pe < minSanePE:
		w = append(w, fmt.Sprintf("Unusually low P/E (%.1f), verify earnings data", pe))
	case pe > maxSanePE:
		w = append(w, fmt.Sprintf("Unusually high P/E (%.1f), earnings may be depressed", pe))
	}

	if eps := d.Valuation.TrailingEPS; pe > 0 && eps > 0 && price > 0 {
		if implied := price / eps; math.Abs(implied-pe) > peMismatchMargin {
			w = append(w, fmt.Sprintf("P/E mismatch: reported %.1f vs price/EPS %.1f", pe, implied))
		}
	}

	if d.Statements.Empty() {
		w = append(w, "No financial statements available")
	} else {
		if len(d.Statements.Income) == 0 {
			w = append(w, "Income statement unavailable")
		}
		if len(d.Statements.Balance) == 0 {
			w = append(w, "Balance sheet unavailable")
		}
		if len(d.Statements.CashFlow) == 0 {
			w = append(w, "Cash flow statement unavailable")
		}
	}
	return w
}
