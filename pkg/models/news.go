package models

import "time"

// NewsArticle is a single search result from the news provider.
type NewsArticle struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Snippet     string    `json:"snippet"`
	Query       string    `json:"query,omitempty"` // the search that surfaced it
	PublishedAt time.Time `json:"published_at"`
}

// DateString returns the publication date as YYYY-MM-DD, or "N/A".
func (a NewsArticle) DateString() string {
	if a.PublishedAt.IsZero() {
		return "N/A"
	}
	return a.PublishedAt.Format("2006-01-02")
}
