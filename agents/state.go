package agents

import (
	"time"

	"langagent/webdata"
)

// IndustryInfo is the structured industry classification for the target company.
type IndustryInfo struct {
	PrimaryIndustry  string   `json:"primary_industry"`
	SubSegments      []string `json:"sub_segments,omitempty"`
	BusinessModel    string   `json:"business_model,omitempty"`
	NAICSCode        string   `json:"naics_code,omitempty"`
	ValueProposition string   `json:"value_proposition,omitempty"`
	CustomerSegments []string `json:"customer_segments,omitempty"`
}

// Competitor is one identified competitor of the target company.
type Competitor struct {
	Name           string                   `json:"name"`
	Type           string                   `json:"type"` // direct, indirect or emerging
	ThreatLevel    string                   `json:"threat_level"`
	Differentiator string                   `json:"differentiator,omitempty"`
	Data           *webdata.CompanySnapshot `json:"financial_data,omitempty"`
}

// FinancialComparison benchmarks the target against its competitors.
type FinancialComparison struct {
	RevenueGrowth string   `json:"revenue_growth,omitempty"`
	Profitability string   `json:"profitability,omitempty"`
	Valuation     string   `json:"valuation,omitempty"`
	Strengths     []string `json:"strengths,omitempty"`
	Weaknesses    []string `json:"weaknesses,omitempty"`
	Summary       string   `json:"summary,omitempty"`
}

// SWOT is the strengths/weaknesses/opportunities/threats analysis.
type SWOT struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

// MarketPosition describes the company's competitive standing.
type MarketPosition struct {
	Position    string            `json:"position"` // Leader, Challenger, Follower or Niche
	MarketShare string            `json:"market_share,omitempty"`
	FiveForces  map[string]string `json:"five_forces,omitempty"`
	Summary     string            `json:"summary,omitempty"`
}

// MarketTrend is one identified market trend.
type MarketTrend struct {
	Trend       string `json:"trend"`
	Impact      string `json:"impact"`   // High, Medium or Low
	Timeline    string `json:"timeline"` // Short, Medium or Long term
	Implication string `json:"implication,omitempty"`
}

// State is the workflow state threaded through the analysis graph.
// Nodes receive it by value and return an updated copy.
type State struct {
	TargetCompany       string                   `json:"target_company"`
	Industry            string                   `json:"industry,omitempty"`
	IndustryInfo        *IndustryInfo            `json:"industry_info,omitempty"`
	Competitors         []Competitor             `json:"competitors,omitempty"`
	TargetData          *webdata.CompanySnapshot `json:"company_data,omitempty"`
	FinancialComparison *FinancialComparison     `json:"financial_comparison,omitempty"`
	SWOT                *SWOT                    `json:"swot_analysis,omitempty"`
	MarketPosition      *MarketPosition          `json:"market_position,omitempty"`
	MarketTrends        []MarketTrend            `json:"market_trends,omitempty"`
	FinalReport         string                   `json:"final_report,omitempty"`
	ConfidenceScore     float64                  `json:"confidence_score,omitempty"`
	Model               string                   `json:"model,omitempty"`
	AnalyzedAt          time.Time                `json:"analyzed_at,omitempty"`
}

// CompetitorNames returns up to n competitor names, for use in prompts.
func (s State) CompetitorNames(n int) []string {
	if n > len(s.Competitors) {
		n = len(s.Competitors)
	}
	names := make([]string, 0, n)
	for _, c := range s.Competitors[:n] {
		names = append(names, c.Name)
	}
	return names
}
