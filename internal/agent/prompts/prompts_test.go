package prompts

import (
	"strings"
	"testing"

	"github.com/seenimoa/researchdesk/pkg/models"
)

// ── System Prompts ──

func TestSystemPromptsNonEmpty(t *testing.T) {
	for _, stage := range append(models.Stages(), models.StageEvents) {
		prompt := System(stage)
		if prompt == "" {
			t.Errorf("%s: system prompt should not be empty", stage)
		}
		if len(prompt) < 200 {
			t.Errorf("%s: system prompt is too short (%d chars)", stage, len(prompt))
		}
	}
}

func TestSystemUnknownStage(t *testing.T) {
	if got := System(models.Stage("portfolio_manager")); got != "" {
		t.Errorf("unknown stage: got %q", got)
	}
}

func TestSystemPromptsContainKeywords(t *testing.T) {
	tests := []struct {
		stage    models.Stage
		keywords []string
	}{
		{models.StageBusiness, []string{"Business Analyst", "competitive", "Never fabricate"}},
		{models.StageValue, []string{"Value Hunter", "margin of safety", "moat"}},
		{models.StageGrowth, []string{"Growth Analyzer", "organic", "scenarios"}},
		{models.StageRisk, []string{"Risk Examiner", "red flag", "protect capital"}},
		{models.StageCIO, []string{"Chief Investment Officer", "Composite", "stop loss"}},
	}
	for _, tc := range tests {
		prompt := strings.ToLower(System(tc.stage))
		for _, kw := range tc.keywords {
			if !strings.Contains(prompt, strings.ToLower(kw)) {
				t.Errorf("%s prompt should contain %q", tc.stage, kw)
			}
		}
	}
}

// ── Frameworks ──

func TestFrameworkSubstitutesCompany(t *testing.T) {
	for _, stage := range models.Stages() {
		got := Framework(stage, "Apple Inc.", "AAPL")
		if !strings.Contains(got, "Apple Inc. (AAPL)") {
			t.Errorf("%s: company and ticker not substituted", stage)
		}
		if strings.Contains(got, "{COMPANY}") || strings.Contains(got, "{TICKER}") {
			t.Errorf("%s: placeholder left in framework", stage)
		}
	}
}

func TestFrameworkFallsBackToTicker(t *testing.T) {
	got := Framework(models.StageValue, "", "MSFT")
	if !strings.Contains(got, "MSFT (MSFT)") {
		t.Errorf("empty company should fall back to ticker, got header %q", strings.SplitN(got, "\n", 2)[0])
	}
}

func TestFrameworkUnknownStage(t *testing.T) {
	if got := Framework(models.Stage("nope"), "X", "X"); got != "" {
		t.Errorf("unknown stage: got %q", got)
	}
}

// The output templates are read back by the extract package, so the
// row labels have to stay in the forms it recognises.
func TestFrameworkOutputTemplates(t *testing.T) {
	tests := []struct {
		stage models.Stage
		rows  []string
	}{
		{models.StageValue, []string{
			"| Financial Quality Score | X/10 |",
			"| Moat Rating |",
			"| Intrinsic Value | $X.XX |",
			"| Margin of Safety | X% |",
			"**CONVICTION LEVEL**: X/10",
			"**RECOMMENDATION**:",
		}},
		{models.StageGrowth, []string{
			"| Historical Growth Quality | X/10 |",
			"| Market Space Score | X/10 |",
			"| Growth Sustainability | X/10 |",
			"| Expected 5Y Return | X% |",
			"| Bull Case Return | +X% |",
			"**Conviction Level**: X/10",
		}},
		{models.StageRisk, []string{
			"**TOTAL FINANCIAL RED FLAGS: X**",
			"**TOTAL BUSINESS MODEL RISK SCORE: X/50**",
			"**OVERALL RISK SCORE: X.X/10**",
			"**Upside/Downside Ratio**: X.X:1",
			"| Max Position Size | X% |",
		}},
		{models.StageCIO, []string{
			"## SECTION 1: EXECUTIVE SUMMARY",
			"**Final Recommendation**:",
			"**Recommended Position Size**: X.X%",
			"**Expected 3-Year Return**: +X% to +Y%",
			"**COMPOSITE SCORE**: X.XX/10",
			"**Target Entry Price Range**: $X.XX - $Y.YY",
			"**Stop Loss**: $X.XX",
		}},
	}
	for _, tc := range tests {
		got := Framework(tc.stage, "Acme", "ACME")
		for _, row := range tc.rows {
			if !strings.Contains(got, row) {
				t.Errorf("%s framework missing %q", tc.stage, row)
			}
		}
	}
}

func TestEventsArticleCount(t *testing.T) {
	got := Events("Acme Corp", "ACME", 12)
	if !strings.Contains(got, "Review the 12 news articles about Acme Corp (ACME)") {
		t.Errorf("article count not substituted: %q", strings.SplitN(got, "\n", 2)[0])
	}
	if strings.Contains(Events("Acme Corp", "ACME", 0), "{NEWS_COUNT}") {
		t.Error("placeholder left when count is zero")
	}
	if Framework(models.StageEvents, "Acme Corp", "ACME") != Events("Acme Corp", "ACME", 0) {
		t.Error("Framework(StageEvents) should match Events with no count")
	}
}
