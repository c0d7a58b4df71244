package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/seenimoa/researchdesk/pkg/models"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

// DefaultNewsSearchURL is the Google News RSS search endpoint.
const DefaultNewsSearchURL = "https://news.google.com/rss/search"

// newsWindow restricts searches to recent coverage.
const newsWindow = "when:90d"

// newsQueries are the per-ticker search suffixes, in result order.
var newsQueries = []string{
	"earnings",
	"quarterly results",
	"guidance",
	"CEO CFO",
	"acquisition merger",
	"new product",
	"competition",
	"SEC filing",
}

// GoogleNews searches Google News RSS for company coverage.
type GoogleNews struct {
	searchURL string
	perQuery  int
	maxNews   int
	threshold float64
	parallel  int
	cache     *Cache[[]models.NewsArticle]
	limiter   *rate.Limiter
	parser    *gofeed.Parser
}

// NewsOption configures GoogleNews.
type NewsOption func(*GoogleNews)

// WithNewsSearchURL points searches at a different RSS endpoint.
func WithNewsSearchURL(u string) NewsOption {
	return func(n *GoogleNews) { n.searchURL = u }
}

// WithNewsClient sets the HTTP client used by the feed parser.
func WithNewsClient(c *http.Client) NewsOption {
	return func(n *GoogleNews) { n.parser.Client = c }
}

// WithNewsLimits sets results kept per query and in total.
func WithNewsLimits(perQuery, maxNews int) NewsOption {
	return func(n *GoogleNews) {
		if perQuery > 0 {
			n.perQuery = perQuery
		}
		if maxNews > 0 {
			n.maxNews = maxNews
		}
	}
}

// WithDedupThreshold sets the title similarity above which two articles
// count as the same story.
func WithDedupThreshold(t float64) NewsOption {
	return func(n *GoogleNews) {
		if t > 0 && t <= 1 {
			n.threshold = t
		}
	}
}

// WithNewsRate limits feed requests per second.
func WithNewsRate(perSecond float64) NewsOption {
	return func(n *GoogleNews) { n.limiter = newLimiter(perSecond) }
}

// WithNewsCacheTTL sets how long a ticker's news is cached.
func WithNewsCacheTTL(ttl time.Duration) NewsOption {
	return func(n *GoogleNews) { n.cache = NewCache[[]models.NewsArticle](ttl) }
}

// NewGoogleNews creates a Google News RSS source.
func NewGoogleNews(opts ...NewsOption) *GoogleNews {
	p := gofeed.NewParser()
	p.UserAgent = DefaultUserAgent
	p.Client = NewHTTPClient(20 * time.Second)

	n := &GoogleNews{
		searchURL: DefaultNewsSearchURL,
		perQuery:  5,
		maxNews:   20,
		threshold: DefaultDedupThreshold,
		parallel:  4,
		cache:     NewCache[[]models.NewsArticle](10 * time.Minute),
		limiter:   newLimiter(2),
		parser:    p,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name returns the data source name.
func (n *GoogleNews) Name() string { return "Google News" }

// --- Public methods ---

// ForTicker runs every company query, drops near-duplicate headlines and
// returns at most the configured number of articles. A failing query is
// logged and skipped; only a total failure is returned as an error.
func (n *GoogleNews) ForTicker(ctx context.Context, ticker string) ([]models.NewsArticle, error) {
	symbol := utils.NormalizeTicker(ticker)

	cacheKey := "news:" + symbol
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached, nil
	}

	results := make([][]models.NewsArticle, len(newsQueries))
	errs := make([]error, len(newsQueries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.parallel)
	for i, suffix := range newsQueries {
		q := symbol + " " + suffix
		g.Go(func() error {
			articles, err := n.Search(gctx, q, n.perQuery)
			if err != nil {
				log.Warn().Err(err).Str("query", q).Msg("news query failed")
				errs[i] = err
				return nil
			}
			results[i] = articles
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []models.NewsArticle
	failed := 0
	for i := range results {
		if errs[i] != nil {
			failed++
			continue
		}
		all = append(all, results[i]...)
	}
	if failed == len(newsQueries) {
		return nil, fmt.Errorf("news for %s: all %d queries failed: %w", symbol, failed, errs[0])
	}

	unique := Dedup(all, n.threshold)
	if len(unique) > n.maxNews {
		unique = unique[:n.maxNews]
	}

	log.Debug().Str("ticker", symbol).Int("raw", len(all)).Int("kept", len(unique)).Msg("news collected")
	n.cache.Set(cacheKey, unique)
	return unique, nil
}

// Search returns up to limit articles for one query.
func (n *GoogleNews) Search(ctx context.Context, query string, limit int) ([]models.NewsArticle, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := n.parser.ParseURLWithContext(n.searchEndpoint(query), ctx)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	articles := make([]models.NewsArticle, 0, min(limit, len(feed.Items)))
	for _, item := range feed.Items {
		if limit > 0 && len(articles) >= limit {
			break
		}
		title, source := splitSource(item.Title)
		a := models.NewsArticle{
			Title:   title,
			URL:     item.Link,
			Source:  coalesce(source, "Unknown"),
			Snippet: cleanHTML(item.Description),
			Query:   query,
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// --- Internal helpers ---

func (n *GoogleNews) searchEndpoint(query string) string {
	v := url.Values{}
	v.Set("q", query+" "+newsWindow)
	v.Set("hl", "en-US")
	v.Set("gl", "US")
	v.Set("ceid", "US:en")
	return n.searchURL + "?" + v.Encode()
}

// splitSource separates Google's " - Publisher" title suffix.
func splitSource(title string) (string, string) {
	i := strings.LastIndex(title, " - ")
	if i <= 0 {
		return strings.TrimSpace(title), ""
	}
	return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+3:])
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
