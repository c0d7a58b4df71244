package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func rssFeed(items ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>News</title>`)
	for _, it := range items {
		b.WriteString(it)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func rssItem(title, link string) string {
	return fmt.Sprintf(`<item><title>%s</title><link>%s</link><pubDate>Mon, 07 Oct 2024 14:00:00 GMT</pubDate><description>&lt;a href="%s"&gt;%s&lt;/a&gt;</description></item>`,
		title, link, link, title)
}

func TestGoogleNewsSearch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		if r.URL.Query().Get("ceid") != "US:en" {
			t.Errorf("missing locale params: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssFeed(
			rssItem("Apple beats estimates - Reuters", "https://r/1"),
			rssItem("Apple guidance lifted - CNBC", "https://c/2"),
			rssItem("Third story - WSJ", "https://w/3"),
		)))
	}))
	defer srv.Close()

	n := NewGoogleNews(WithNewsSearchURL(srv.URL), WithNewsRate(0))
	articles, err := n.Search(context.Background(), "AAPL earnings", 2)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if gotQuery != "AAPL earnings when:90d" {
		t.Errorf("q = %q", gotQuery)
	}
	if len(articles) != 2 {
		t.Fatalf("got %d articles, want limit 2", len(articles))
	}
	a := articles[0]
	if a.Title != "Apple beats estimates" || a.Source != "Reuters" || a.URL != "https://r/1" {
		t.Errorf("article = %+v", a)
	}
	if a.Snippet != "Apple beats estimates - Reuters" {
		t.Errorf("Snippet = %q", a.Snippet)
	}
	if a.DateString() != "2024-10-07" {
		t.Errorf("date = %s", a.DateString())
	}
	if a.Query != "AAPL earnings" {
		t.Errorf("Query = %q", a.Query)
	}
}

func TestGoogleNewsForTicker(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		mu.Lock()
		seen[q] = true
		mu.Unlock()

		if strings.Contains(q, "SEC filing") {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		// Every query returns the same lead story plus one of its own.
		topic := strings.TrimSuffix(strings.TrimPrefix(q, "MSFT "), " when:90d")
		w.Write([]byte(rssFeed(
			rssItem("Microsoft posts record cloud revenue - Reuters", "https://r/lead"),
			rssItem("Coverage about "+topic+" - Bloomberg", "https://b/"+topic),
		)))
	}))
	defer srv.Close()

	n := NewGoogleNews(WithNewsSearchURL(srv.URL), WithNewsRate(0), WithNewsLimits(5, 100))
	articles, err := n.ForTicker(context.Background(), "msft")
	if err != nil {
		t.Fatalf("ForTicker() error: %v", err)
	}

	if len(seen) != len(newsQueries) {
		t.Errorf("issued %d distinct queries, want %d", len(seen), len(newsQueries))
	}
	if !seen["MSFT earnings when:90d"] {
		t.Errorf("earnings query missing: %v", seen)
	}

	leads := 0
	for _, a := range articles {
		if a.URL == "https://r/lead" {
			leads++
		}
	}
	if leads != 1 {
		t.Errorf("lead story kept %d times, want 1", leads)
	}
	if articles[0].URL != "https://r/lead" {
		t.Errorf("first article = %s, want the earnings lead", articles[0].URL)
	}
}

func TestGoogleNewsForTickerCap(t *testing.T) {
	// Titles made of one repeated letter never resemble each other.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		k := 0
		for i, suffix := range newsQueries {
			if strings.Contains(q, suffix) {
				k = i
			}
		}
		w.Write([]byte(rssFeed(
			rssItem(strings.Repeat(string(rune('a'+2*k)), 12), "https://x/1"),
			rssItem(strings.Repeat(string(rune('b'+2*k)), 12), "https://x/2"),
		)))
	}))
	defer srv.Close()

	n := NewGoogleNews(WithNewsSearchURL(srv.URL), WithNewsRate(0), WithNewsLimits(5, 3))
	articles, err := n.ForTicker(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("ForTicker() error: %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("got %d articles, want cap of 3", len(articles))
	}
	if articles[0].Title != "aaaaaaaaaaaa" || articles[2].Title != "cccccccccccc" {
		t.Errorf("articles out of query order: %s, %s", articles[0].Title, articles[2].Title)
	}
}

func TestGoogleNewsAllQueriesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewGoogleNews(WithNewsSearchURL(srv.URL), WithNewsRate(0))
	if _, err := n.ForTicker(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected error when every query fails")
	}
}
