package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/seenimoa/researchdesk/pkg/models"
)

// fakeClock is a settable time source for cache expiry.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestCache[V any](ttl time.Duration) (*Cache[V], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewCache[V](ttl)
	c.now = clock.now
	return c, clock
}

func TestCacheHitAndMiss(t *testing.T) {
	c, _ := newTestCache[[]models.NewsArticle](time.Minute)
	c.Set("news:AAPL", []models.NewsArticle{{Title: "Apple beats"}})

	got, ok := c.Get("news:AAPL")
	if !ok || len(got) != 1 || got[0].Title != "Apple beats" {
		t.Fatalf("Get(news:AAPL) = %v, %v", got, ok)
	}
	if _, ok := c.Get("news:MSFT"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestCacheExpiry(t *testing.T) {
	c, clock := newTestCache[int](time.Minute)
	c.Set("a", 1)

	clock.t = clock.t.Add(59 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("entry expired early")
	}
	clock.t = clock.t.Add(time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatal("entry outlived its TTL")
	}
}

func TestCacheSetDropsExpired(t *testing.T) {
	c, clock := newTestCache[int](time.Minute)
	c.Set("old", 1)
	clock.t = clock.t.Add(2 * time.Minute)
	c.Set("new", 2)

	if len(c.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(c.entries))
	}
	if v, ok := c.Get("new"); !ok || v != 2 {
		t.Fatalf("Get(new) = %d, %v", v, ok)
	}
}

func TestCacheZeroTTLDisables(t *testing.T) {
	c, _ := newTestCache[string](0)
	c.Set("key", "val")
	if _, ok := c.Get("key"); ok {
		t.Fatal("expected zero TTL to disable caching")
	}
}

func TestLimiterCancelledContext(t *testing.T) {
	rl := newLimiter(0.001) // one token, very slow refill.
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait() failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestLimiterDisabled(t *testing.T) {
	rl := newLimiter(0)
	for i := 0; i < 100; i++ {
		if !rl.Allow() {
			t.Fatalf("request %d was limited", i)
		}
	}
}

func TestFetchJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != DefaultUserAgent {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(`{"symbol":"AAPL","price":185.5}`))
	}))
	defer srv.Close()

	var out struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	if err := fetchJSON(context.Background(), srv.Client(), newLimiter(0), srv.URL, &out); err != nil {
		t.Fatalf("fetchJSON: %v", err)
	}
	if out.Symbol != "AAPL" || out.Price != 185.5 {
		t.Fatalf("decoded %+v", out)
	}
}

func TestFetchJSONStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusNotFound, ErrTickerNotFound},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tt.status)
		}))

		var out map[string]any
		err := fetchJSON(context.Background(), srv.Client(), newLimiter(0), srv.URL, &out)
		srv.Close()

		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: err = %v, want %v", tt.status, err, tt.want)
		}
		var httpErr *ErrHTTP
		if !errors.As(err, &httpErr) || httpErr.StatusCode != tt.status {
			t.Errorf("status %d: expected *ErrHTTP, got %v", tt.status, err)
		}
	}
}

func TestErrHTTPOtherStatusHasNoSentinel(t *testing.T) {
	err := &ErrHTTP{URL: "https://example.test", StatusCode: 500, Body: "boom"}
	if errors.Is(err, ErrTickerNotFound) || errors.Is(err, ErrRateLimited) {
		t.Error("500 should not unwrap to a sentinel")
	}
	if err.Error() != "https://example.test: status 500: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestCoalesce(t *testing.T) {
	tests := []struct {
		input []string
		want  string
	}{
		{[]string{"", "", "hello"}, "hello"},
		{[]string{"first", "second"}, "first"},
		{[]string{"", ""}, ""},
		{[]string{"  ", "actual"}, "actual"},
	}
	for _, tt := range tests {
		got := coalesce(tt.input...)
		if got != tt.want {
			t.Errorf("coalesce(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("Apple beats earnings", "apple beats earnings"); got != 1 {
		t.Errorf("identical titles (case-insensitive) = %v, want 1", got)
	}
	if got := Similarity("", ""); got != 1 {
		t.Errorf("two empty titles = %v, want 1", got)
	}
	if got := Similarity("abcd", "wxyz"); got != 0 {
		t.Errorf("disjoint titles = %v, want 0", got)
	}
	// 2*M/T: "abcd" vs "abce" shares 3 of 8 characters.
	if got := Similarity("abcd", "abce"); got != 0.75 {
		t.Errorf("Similarity(abcd, abce) = %v, want 0.75", got)
	}
}

func TestDedup(t *testing.T) {
	articles := []models.NewsArticle{
		{Title: "Apple reports record quarterly revenue", Source: "A"},
		{Title: "Apple reports record quarterly revenues", Source: "B"},
		{Title: "Apple unveils new iPhone lineup", Source: "C"},
		{Title: "APPLE REPORTS RECORD QUARTERLY REVENUE", Source: "D"},
	}
	got := Dedup(articles, DefaultDedupThreshold)
	if len(got) != 2 {
		t.Fatalf("Dedup kept %d articles, want 2: %+v", len(got), got)
	}
	if got[0].Source != "A" || got[1].Source != "C" {
		t.Errorf("Dedup should keep first occurrences in order, got %s, %s", got[0].Source, got[1].Source)
	}
}

func TestDedupThresholdIsStrict(t *testing.T) {
	// Ratio is exactly 0.75, which is not above a 0.75 threshold.
	articles := []models.NewsArticle{{Title: "abcd"}, {Title: "abce"}}
	if got := Dedup(articles, 0.75); len(got) != 2 {
		t.Fatalf("ratio equal to threshold should keep both, got %d", len(got))
	}
	if got := Dedup(articles, 0.7); len(got) != 1 {
		t.Fatalf("ratio above threshold should drop one, got %d", len(got))
	}
}

func TestSplitSource(t *testing.T) {
	tests := []struct {
		in, title, source string
	}{
		{"Apple beats estimates - Reuters", "Apple beats estimates", "Reuters"},
		{"Q3 - the quiet quarter - Bloomberg", "Q3 - the quiet quarter", "Bloomberg"},
		{"No publisher here", "No publisher here", ""},
	}
	for _, tt := range tests {
		title, source := splitSource(tt.in)
		if title != tt.title || source != tt.source {
			t.Errorf("splitSource(%q) = (%q, %q), want (%q, %q)", tt.in, title, source, tt.title, tt.source)
		}
	}
}

func TestCleanHTML(t *testing.T) {
	got := cleanHTML(`<a href="https://x">Apple   beats</a>&nbsp;<font color="#6f6f6f">Reuters</font>`)
	if got != "Apple beats Reuters" {
		t.Fatalf("cleanHTML = %q", got)
	}
	if cleanHTML("") != "" {
		t.Fatal("empty input should stay empty")
	}
}
