package agents

import (
	"encoding/json"
	"fmt"
	"strings"
)

// System roles for each stage of the analysis.
const (
	roleIndustryExpert   = "You are an industry classification expert with deep knowledge of market segments."
	roleCompetitiveIntel = "You are a competitive intelligence analyst with expertise in market mapping."
	roleFinancialAnalyst = "You are a financial analyst specializing in competitive benchmarking."
	roleStrategicAnalyst = "You are a strategic business analyst with expertise in SWOT methodology."
	roleStrategyConsult  = "You are a strategy consultant specializing in competitive positioning."
	roleMarketResearcher = "You are a market research analyst specializing in trend analysis and forecasting."
	roleSeniorConsultant = "You are a senior management consultant creating executive-level deliverables."
)

func industryPrompt(company string) string {
	return fmt.Sprintf(`Analyze the company %q and identify:
1. Primary industry classification (NAICS/SIC codes if possible)
2. Market segment and sub-segments
3. Business model type
4. Key value propositions
5. Target customer segments

Respond with a single JSON object:
{
  "primary_industry": "...",
  "sub_segments": ["..."],
  "business_model": "...",
  "naics_code": "...",
  "value_proposition": "...",
  "customer_segments": ["..."]
}`, company)
}

func competitorsPrompt(company, industry string) string {
	return fmt.Sprintf(`For %s in the %s industry, identify:

DIRECT COMPETITORS (5-7 companies): similar products/services, target markets and business models.
INDIRECT COMPETITORS (3-5 companies): companies solving similar customer problems differently, adjacent market players.
EMERGING THREATS (2-3 companies): startups, new entrants, companies expanding from adjacent industries.

Respond with a single JSON object:
{
  "competitors": [
    {"name": "...", "type": "direct|indirect|emerging", "threat_level": "High|Medium|Low", "differentiator": "..."}
  ]
}`, company, industry)
}

func financialsPrompt(s State) string {
	return fmt.Sprintf(`Analyze the financial performance comparison:

Target company: %s
Data: %s

Competitors: %s

Provide analysis on revenue comparison and growth rates, profitability metrics,
market valuation multiples, financial health indicators, and investment in R&D
and growth. Identify financial strengths and weaknesses relative to competitors.

Respond with a single JSON object:
{
  "revenue_growth": "...",
  "profitability": "...",
  "valuation": "...",
  "strengths": ["..."],
  "weaknesses": ["..."],
  "summary": "..."
}`, s.TargetCompany, compactJSON(s.TargetData), strings.Join(s.CompetitorNames(3), ", "))
}

func swotPrompt(s State) string {
	return fmt.Sprintf(`Conduct a detailed SWOT analysis for %s.

Context:
- Industry: %s
- Competitors: %s
- Financial position: %s

Cover internal capabilities and advantages, internal limitations, market trends
and growth areas, and competitive/regulatory/economic threats. Provide specific,
actionable insights for each category.

Respond with a single JSON object:
{
  "strengths": ["..."],
  "weaknesses": ["..."],
  "opportunities": ["..."],
  "threats": ["..."]
}`, s.TargetCompany, s.Industry, strings.Join(s.CompetitorNames(5), ", "), compactJSON(s.FinancialComparison))
}

func positionPrompt(s State) string {
	return fmt.Sprintf(`Assess %s's market position.

Based on:
- Competitor landscape: %d identified competitors
- Financial performance: %s
- SWOT analysis: %s

Determine the market share position (Leader/Challenger/Follower/Niche), the
competitive positioning quadrant, barriers to entry, threat of substitutes and
bargaining power of suppliers and customers. Include a Porter's Five Forces
summary and strategic recommendations.

Respond with a single JSON object:
{
  "position": "Leader|Challenger|Follower|Niche",
  "market_share": "...",
  "five_forces": {"rivalry": "...", "new_entrants": "...", "substitutes": "...", "supplier_power": "...", "buyer_power": "..."},
  "summary": "..."
}`, s.TargetCompany, len(s.Competitors), compactJSON(s.FinancialComparison), compactJSON(s.SWOT))
}

func trendsPrompt(s State) string {
	return fmt.Sprintf(`Identify key market trends affecting %s in %s.

Analyze technology trends, consumer behavior changes, regulatory developments,
economic factors, competitive dynamics evolution and market growth projections.

Respond with a single JSON object:
{
  "trends": [
    {"trend": "...", "impact": "High|Medium|Low", "timeline": "Short-term|Medium-term|Long-term", "implication": "..."}
  ]
}`, s.TargetCompany, s.Industry)
}

func reportPrompt(s State) string {
	return fmt.Sprintf(`Create an executive summary report in Markdown for the %s market analysis.

EXECUTIVE SUMMARY: company overview, market position, key findings, strategic recommendations.
COMPETITIVE LANDSCAPE: industry overview (%s), %d competitors identified, market positioning: %s.
FINANCIAL PERFORMANCE: competitive benchmarking results, key metrics comparison: %s.
STRATEGIC ANALYSIS: SWOT summary with priority items (%s), market trends impact assessment.
RECOMMENDATIONS: top 3 strategic priorities, risk mitigation strategies, market expansion opportunities.

End the report with a line of the form "Confidence Score: N/10" assessing your
confidence in this analysis on a 1-10 scale.`,
		s.TargetCompany, s.Industry, len(s.Competitors), compactJSON(s.MarketPosition),
		compactJSON(s.FinancialComparison), compactJSON(s.SWOT))
}

// compactJSON renders a value for prompt interpolation. Nil values become "unknown".
func compactJSON(v any) string {
	if v == nil {
		return "unknown"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "unknown"
	}
	s := string(data)
	if s == "null" {
		return "unknown"
	}
	return s
}
