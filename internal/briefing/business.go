package briefing

import (
	"fmt"
	"strings"

	"github.com/seenimoa/researchdesk/pkg/models"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

const eventSummaryLen = 300

// NoNews is the key-events text used when no articles were collected.
const NoNews = "No recent news available for analysis."

// KeyEvents renders the articles as numbered blocks for the events analyst.
func KeyEvents(news []models.NewsArticle) string {
	if len(news) == 0 {
		return NoNews
	}
	var b strings.Builder
	for i, a := range news {
		fmt.Fprintf(&b, "\n[Article %d]\n", i+1)
		fmt.Fprintf(&b, "Title: %s\n", a.Title)
		fmt.Fprintf(&b, "Date: %s\n", a.DateString())
		fmt.Fprintf(&b, "Source: %s\n", orNA(a.Source))
		fmt.Fprintf(&b, "Summary: %s...\n", utils.Truncate(a.Snippet, eventSummaryLen))
	}
	return b.String()
}

// EventsInput is the context for the events analyst.
func EventsInput(d *models.CompanyData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s (%s)\n\n", d.DisplayName(), d.Ticker)
	fmt.Fprintf(&b, "NEWS ARTICLES (%d articles):\n%s\n", len(d.News), lightRule)
	b.WriteString(KeyEvents(d.News))
	b.WriteString("\n\nExtract the material events following the framework provided.")
	return b.String()
}

// BusinessInput is the context for the business analyst.
func BusinessInput(d *models.CompanyData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s (%s)\n", d.DisplayName(), d.Ticker)
	fmt.Fprintf(&b, "Sector: %s\n", orNA(d.Profile.Sector))
	fmt.Fprintf(&b, "Industry: %s\n\n", orNA(d.Profile.Industry))
	b.WriteString(FormatForLLM(d))
	b.WriteString("\n\nBased on this comprehensive 5-year financial data, provide your business analysis.")
	return b.String()
}

// Business combines the business analysis and the extracted key events
// into the shared context handed to every later stage.
func Business(d *models.CompanyData, understanding, events string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nBUSINESS CONTEXT & KEY EVENTS\n%s\n\n", heavyRule, heavyRule)
	fmt.Fprintf(&b, "The following describes how %s (%s) operates and what has recently changed. "+
		"Use it to ground your analysis.\n\n", d.DisplayName(), d.Ticker)
	fmt.Fprintf(&b, "## BUSINESS UNDERSTANDING\n\n%s\n\n%s\n\n", understanding, heavyRule)
	fmt.Fprintf(&b, "## KEY RECENT EVENTS\n\n%s\n\n%s", events, heavyRule)
	return b.String()
}
