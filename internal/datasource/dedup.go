package datasource

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/seenimoa/researchdesk/pkg/models"
)

// DefaultDedupThreshold is the title similarity above which two articles
// are treated as the same story.
const DefaultDedupThreshold = 0.8

// Similarity returns the matching-blocks ratio of two strings compared
// character by character, case-insensitively. 1 means identical.
func Similarity(a, b string) float64 {
	ar := splitRunes(strings.ToLower(a))
	br := splitRunes(strings.ToLower(b))
	if len(ar) == 0 && len(br) == 0 {
		return 1
	}
	return difflib.NewMatcher(ar, br).Ratio()
}

// Dedup keeps the first of every group of articles whose titles are more
// similar than threshold. Order is preserved.
func Dedup(articles []models.NewsArticle, threshold float64) []models.NewsArticle {
	out := make([]models.NewsArticle, 0, len(articles))
	for _, a := range articles {
		dup := false
		for _, kept := range out {
			if Similarity(a.Title, kept.Title) > threshold {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, a)
		}
	}
	return out
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
