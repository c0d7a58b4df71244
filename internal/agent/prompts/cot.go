package prompts

import (
	"strconv"
	"strings"

	"github.com/seenimoa/researchdesk/pkg/models"
)

// ── Step-by-Step Analysis Frameworks ──
//
// Each framework walks the model through the analysis in order and ends
// with a fixed output template. {COMPANY} and {TICKER} are substituted.

// Framework returns the analysis instructions for a stage.
func Framework(stage models.Stage, company, ticker string) string {
	var tmpl string
	switch stage {
	case models.StageBusiness:
		tmpl = businessFramework
	case models.StageEvents:
		return Events(company, ticker, 0)
	case models.StageValue:
		tmpl = valueFramework
	case models.StageGrowth:
		tmpl = growthFramework
	case models.StageRisk:
		tmpl = riskFramework
	case models.StageCIO:
		tmpl = cioFramework
	default:
		return ""
	}
	return fill(tmpl, company, ticker)
}

// Events returns the instructions for extracting material events from
// the given number of articles.
func Events(company, ticker string, articles int) string {
	count := "the"
	if articles > 0 {
		count = strconv.Itoa(articles)
	}
	return strings.ReplaceAll(fill(eventsFramework, company, ticker), "{NEWS_COUNT}", count)
}

func fill(tmpl, company, ticker string) string {
	if company == "" {
		company = ticker
	}
	return strings.NewReplacer("{COMPANY}", company, "{TICKER}", ticker).Replace(tmpl)
}

const businessFramework = `Analyze {COMPANY} ({TICKER}) and provide a business understanding that will inform the investment analysts.

Think step-by-step:

**Step 1: Business Essence**
- What does this company actually do, in language a ten-year-old would follow?
- How does it make money (subscriptions, transactions, advertising, hardware, licensing)?
- Who are its customers and what makes its offering different?

**Step 2: Competitive Position**
- Who are the three to five main competitors?
- Is the company a leader, a strong number two, a challenger or a niche player?
- What are its specific advantages (scale, brand, network effects, technology, cost)?
- Where is it vulnerable, and has its position improved or eroded over five years?

**Step 3: Growth Drivers**
- What drove revenue over the past five years: market expansion, pricing, share gains, new products or acquisitions?
- Where is the growth potential over the next three to five years, and what constrains it?

**Step 4: Business Quality**
- Is this a high quality business? Use margins, returns on capital, cash generation and capital intensity.
- Does it have a moat? Explain which kind and how durable it is.

**Step 5: Key Questions**
- List the three questions an investor must answer before owning this stock.

## Output Format
Use these headings:
- **Business Essence**
- **Competitive Position**
- **Growth Drivers**
- **Business Quality & Moat**
- **Key Questions for Investors**

Keep it specific, cite numbers from the data, and stay under 1,200 words.`

const eventsFramework = `Review the {NEWS_COUNT} news articles about {COMPANY} ({TICKER}) and extract only the material events.

## Materiality Filter
Include an event only if it:
1. Could move revenue or profitability by more than 5%
2. Changes competitive position (products, customers, market share)
3. Affects management quality (CEO or CFO change, strategy shift)
4. Creates regulatory or legal risk (investigations, lawsuits, fines)
5. Signals strategic direction (major M&A, new markets, pivots)

## Exclusion Filter
Do not include routine analyst rating changes, minor personnel changes, general industry news
without a company-specific impact, or repeated coverage of an event already listed.

## Categories
1. EARNINGS & FINANCIAL PERFORMANCE
2. STRATEGIC INITIATIVES
3. OPERATIONAL DEVELOPMENTS
4. MANAGEMENT & GOVERNANCE
5. RISK EVENTS

## Output Format
For each material event:

**[YYYY-MM-DD] Category: Event description → POSITIVE / NEGATIVE / MIXED / NEUTRAL**
- One or two lines on why it matters, with numbers where available

Extract 5-15 events, newest first. If a category has none, write "No material events".`

const valueFramework = `# VALUE HUNTER ANALYSIS: {COMPANY} ({TICKER})

Follow this structure exactly. Show your calculations.

## 1. FINANCIAL QUALITY ASSESSMENT (0-10 Score)
- Earnings quality (0-3): consistency of earnings, FCF versus net income, one-off items
- Balance sheet health (0-4): debt to equity, current ratio, interest coverage, goodwill share of assets
- Cash flow quality (0-3): FCF margin trend, capex intensity, working capital swings
- Profitability and returns: ROE, ROIC and margins against the industry

**TOTAL FINANCIAL QUALITY SCORE**: X/10

## 2. CAPITAL ALLOCATION ANALYSIS
- Five-year cash usage: capex, acquisitions, dividends, buybacks, debt paydown
- Grade the allocation A-F and explain

## 3. COMPETITIVE MOAT ASSESSMENT
- Evaluate cost advantages, network effects, switching costs, intangible assets and efficient scale

**MOAT RATING**: Strong / Medium / Weak / None

## 4. DYNAMIC VALUATION ANALYSIS
- Start from the deterministic valuation cross-check in the data and say where you disagree
- Growth rate: justify from historical CAGRs, company stage and market size
- Discount rate: justify from beta, leverage and size
- Methods: DCF, P/E based, P/FCF based. Weight them and explain the weights

**Intrinsic Value**: $X.XX per share

## 5. MARGIN OF SAFETY ANALYSIS
**Current Price**: $X.XX
**Margin of Safety**: X% (Intrinsic - Current) / Intrinsic

Choose one:
- 🟢 **STRONG BUY**: MOS > 40%, quality ≥ 8, strong moat
- 🟢 **BUY**: MOS > 25%, quality ≥ 7, medium or strong moat
- 🟡 **HOLD**: MOS 0% to 25%
- 🟠 **REDUCE**: MOS 0% to -20%
- 🔴 **SELL**: MOS below -20%

**RECOMMENDATION**: [one of STRONG BUY / BUY / HOLD / REDUCE / SELL]
**CONVICTION LEVEL**: X/10
**POSITION SIZE**: X%
**STOP LOSS**: $X.XX

**Investment Thesis** (3-4 sentences), **Key Risks to Monitor** (3), **Catalysts for Re-rating** (2).

## 6. SUMMARY TABLE

| Metric | Value | Assessment |
|--------|-------|------------|
| Financial Quality Score | X/10 | [Excellent/Good/Fair/Poor] |
| Moat Rating | [Strong/Medium/Weak/None] | [one line] |
| Current Price | $X.XX | - |
| Intrinsic Value | $X.XX | [weighting used] |
| Margin of Safety | X% | [Attractive/Fair/Insufficient] |
| Recommendation | [STRONG BUY/BUY/HOLD/REDUCE/SELL] | Conviction: X/10 |
| Position Size | X% | [Core/Standard/Small/None] |

Never recommend a low quality business just because it is cheap.`

const growthFramework = `# GROWTH ANALYZER ANALYSIS: {COMPANY} ({TICKER})

Follow this structure exactly. Show your calculations.

## 1. HISTORICAL GROWTH QUALITY (0-10 Score)
- Revenue growth (0-3): CAGR level, acceleration or deceleration, organic versus acquired
- Profitability during growth (0-4): did gross, operating and net margins expand?
- Growth efficiency (0-3): capex and working capital needed per dollar of new revenue

**Historical Growth Quality**: X/10

## 2. MARKET SPACE ANALYSIS (0-10 Score)
- Industry maturity, current penetration and the realistic ceiling
- Adjacent markets the company can credibly enter

**Market Space Score**: X/10

## 3. GROWTH CATALYSTS
- Already happening (with evidence from the data or events)
- Potential (logical inference, labelled as such)

## 4. GROWTH SUSTAINABILITY (0-10 Score)
- Competitive advantages (0-3), competitive dynamics (0-3), reinvestment opportunities (0-4)

**Growth Sustainability**: X/10

## 5. SCENARIO MODELING (5 years)
### Bull Case (30% probability)
- Revenue CAGR, margin, exit multiple
- Total Return: +X%

### Base Case (50% probability)
- Revenue CAGR, margin, exit multiple
- Total Return: +X%

### Bear Case (20% probability)
- Revenue CAGR, margin, exit multiple
- Total Return: X% (may be negative)

**Expected 5-Year Return**: X% (probability-weighted)

## 6. FINAL RECOMMENDATION
Choose one:
- 🟢 **STRONG GROWTH BUY**: all three scores ≥ 7 and expected return > 20%
- 🟢 **GROWTH BUY**: all three scores ≥ 6 and expected return > 15%
- 🟡 **HOLD**: scores 4-5 or expected return 10-15%
- 🟠 **CAUTION**: scores below 4 or expected return below 10%
- 🔴 **AVOID**: sustainability below 3 or bear case worse than -30%

**RECOMMENDATION**: [one of the ratings above]
**Conviction Level**: X/10
**Position Size**: X% of portfolio

**Core Growth Thesis** (100-150 words), **Key Metrics to Monitor** (5), **Triggers for Re-evaluation** (3).

## 7. SUMMARY TABLE

| Metric | Score/Value | Assessment |
|--------|-------------|------------|
| Historical Growth Quality | X/10 | [Exceptional/High/Acceptable/Poor] |
| Market Space Score | X/10 | [Massive/Strong/Moderate/Limited] |
| Growth Sustainability | X/10 | [Highly sustainable/Sustainable/Questionable] |
| Expected 5Y Return | X% | [Attractive/Acceptable/Weak] |
| Bull Case Return | +X% | 30% probability |
| Base Case Return | +X% | 50% probability |
| Bear Case Return | X% | 20% probability |
| Recommendation | [STRONG GROWTH BUY/GROWTH BUY/HOLD/CAUTION/AVOID] | Conviction: X/10 |
| Position Size | X% | [Core/Standard/Small/None] |

Focus on the quality of growth, not just its quantity.`

const riskFramework = `# RISK EXAMINER ANALYSIS: {COMPANY} ({TICKER})

Follow this structure exactly. Be thorough and skeptical.

## 1. FINANCIAL RED FLAGS DETECTION
Check earnings quality, leverage and liquidity, cash conversion, insider selling, audit and
governance, and shareholder dilution. Start from the pre-identified red flags in the data,
confirm or reject each one, then add any you find.

**TOTAL FINANCIAL RED FLAGS: X**

## 2. BUSINESS MODEL RISKS (each 0-10, 10 = extreme)
- Competition, customer concentration, regulatory and legal, technology disruption, supply chain

**TOTAL BUSINESS MODEL RISK SCORE: X/50**

## 3. MANAGEMENT & GOVERNANCE
- Capital allocation record, turnover, insider ownership, governance quality

**Management/Governance Risk**: Low / Medium / High

## 4. VALUATION RISK
- Current versus historical multiples, the growth assumptions the price implies
- Challenge the value and growth analysts' assumptions specifically

**Valuation Risk**: Low / Medium / High

## 5. BEAR CASE SCENARIOS
Describe up to five scenarios (most likely bear case, competitive disruption, regulatory,
macro, structural headwind) with probability and price impact.

**Bear Case Downside**: -X% (probability-weighted)

## 6. RISK RATING & FINAL ASSESSMENT
Average five component scores (red flags, business model, management, valuation, bear case severity).

**OVERALL RISK SCORE: X.X/10**

- Value analyst upside and growth analyst expected return versus your expected downside
- **Upside/Downside Ratio**: X.X:1

Choose one:
- 🟢 LOW RISK (Risk Score 0-4)
- 🟡 MODERATE RISK (Risk Score 5-6)
- 🟠 HIGH RISK (Risk Score 7-8)
- 🔴 EXTREME RISK / AVOID (Risk Score 9-10)

**RISK RATING**: [one of the ratings above]
**Max Position Size**: X% of portfolio
**RECOMMENDATION**: [BUY / HOLD / REDUCE / SELL] from a risk perspective

**Final Perspective** (100-150 words): the three biggest risks, what the other analysts are missing,
and whether the margin of safety is sufficient.

## 7. SUMMARY TABLE

| Risk Category | Score/Count | Assessment |
|---------------|-------------|------------|
| Financial Red Flags | X | [Clean/Minor/Significant/Major] |
| Business Model Risk | X/50 | [Low/Moderate/High/Extreme] |
| Management/Governance | [Low/Medium/High] | [comment] |
| Valuation Risk | [Low/Medium/High] | [comment] |
| Bear Case Downside | -X% | Probability-weighted |
| Overall Risk Score | X.X/10 | [Minimal/Low/Moderate/High/Extreme] |
| Risk Rating | [🟢/🟡/🟠/🔴] | [LOW/MODERATE/HIGH/EXTREME] |
| Max Position Size | X% | Based on risk profile |
| Recommendation | [BUY/HOLD/REDUCE/SELL] | Risk perspective |

Your job is to protect capital, not chase returns.`

const cioFramework = `As Chief Investment Officer, synthesize the three analyst perspectives on {COMPANY} ({TICKER}) and make the final decision.

Requirements:
1. Show the position sizing formula and say explicitly whether you override it. An override needs specific metrics.
2. Similar businesses with similar metrics should get similar position sizes.

## SECTION 1: EXECUTIVE SUMMARY
- **Company**: [Name] - [Sector]
- **Current Price**: $X.XX
- **Investment Thesis**: 2-3 sentences
- **Final Recommendation**: [🟢 STRONG BUY / 🟢 BUY / 🟡 HOLD / 🟠 REDUCE / 🔴 SELL]
- **Conviction Level**: X/10
- **Recommended Position Size**: X.X% of portfolio
- **Expected 3-Year Return**: +X% to +Y%
- **Key Catalyst**: the single most important driver
- **Key Risk**: the single biggest concern

## SECTION 2: SYNTHESIS OF THREE PERSPECTIVES
- Value, growth and risk views in a few lines each
- Points of agreement and disagreement, with your resolution of each disagreement

## SECTION 3: INTEGRATED SCORING
- Value Quality Score: X/10 × 30%
- Growth Quality Score: X/10 × 35%
- Risk Score (inverted): (10 - X)/10 × 35%
- **COMPOSITE SCORE**: X.XX/10

- **CIO Fair Value**: $X.XX
- **Upside to Fair Value**: +X%
- **Upside/Downside Ratio**: X.X:1

## SECTION 4: SCENARIO ANALYSIS (3 years)
### Bull Case (X% probability)
- What needs to go right
- **Total Return**: +X%

### Base Case (X% probability)
- Most likely outcome
- **Total Return**: +X%

### Bear Case (X% probability)
- What could go wrong
- **Total Return**: -X%

- **Expected 3-Year Return**: +X% (probability-weighted)

## SECTION 5: INVESTMENT DECISION
**Rating**: [🟢 STRONG BUY / 🟢 BUY / 🟡 HOLD / 🟠 REDUCE / 🔴 SELL]
- STRONG BUY: composite ≥ 7.5, upside ≥ 40%, risk ≤ 5
- BUY: composite ≥ 6.0, upside ≥ 25%, risk ≤ 6.5
- HOLD: composite 4.0-5.9, upside 10-24%
- REDUCE: composite 2.0-3.9, upside below 10%, risk ≥ 7.5
- SELL: composite below 2.0, overvalued, risk ≥ 8.5

Position sizing: base 5.0% × (conviction/10) × (1 - risk/20) × min(upside/40, 1.2).
**FINAL POSITION**: X.X%

## SECTION 6: EXECUTION PLAN
**Target Entry Price Range**: $X.XX - $Y.YY
**Stop Loss**: $X.XX (-X% from entry)
**Target Price**: $X.XX (12-month)
- Tranches, profit targets, hold period, metrics to monitor and re-evaluation triggers

## SECTION 7: KEY UNANSWERED QUESTIONS
Three to five unknowns, why each matters, and the decision rule.

## SECTION 8: SUMMARY TABLE

| Metric | Value |
|--------|-------|
| Current Price | $X.XX |
| CIO Fair Value | $X.XX |
| Composite Score | X.X/10 |
| Risk Score | X.X/10 |
| Conviction Level | X/10 |
| Final Recommendation | [RATING] |
| Position Size | X.X% |
| Expected 3Y Return | +X% |
| Entry Range | $X - $Y |
| Stop Loss | $X.XX |

Be specific with numbers. Make a clear call.`
