// Package agents implements the market analysis workflow: an eight-stage
// state graph that classifies a company's industry, maps its competitors,
// gathers public data and produces an executive report.
package agents

import (
	"context"
	"fmt"
	"time"

	"langagent/graph"
	"langagent/llm"
	"langagent/log"
	"langagent/store"
	"langagent/webdata"
)

// Workflow node names.
const (
	nodeIdentifyIndustry  = "identify_industry"
	nodeFindCompetitors   = "find_competitors"
	nodeCollectData       = "collect_data"
	nodeAnalyzeFinancials = "analyze_financials"
	nodePerformSWOT       = "perform_swot"
	nodeIdentifyTrends    = "identify_trends"
	nodeAssessPosition    = "assess_position"
	nodeGenerateReport    = "generate_report"
)

// defaultMaxCompetitors bounds how many competitors are analyzed in depth.
const defaultMaxCompetitors = 5

// fallbackConfidence is used when the report omits an explicit score.
const fallbackConfidence = 5.0

// Analyzer runs the market analysis workflow for a company.
type Analyzer struct {
	model          llm.Model
	collector      *webdata.Collector
	maxCompetitors int
	retryPolicy    *graph.RetryPolicy
	checkpoints    store.CheckpointStore

	runnable *graph.StateRunnable
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithCollector sets the data collector. A default one is used otherwise.
func WithCollector(c *webdata.Collector) AnalyzerOption {
	return func(a *Analyzer) {
		a.collector = c
	}
}

// WithMaxCompetitors caps how many competitors are kept for deep analysis.
func WithMaxCompetitors(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxCompetitors = n
		}
	}
}

// WithRetryPolicy sets the retry policy applied to every workflow node.
func WithRetryPolicy(p *graph.RetryPolicy) AnalyzerOption {
	return func(a *Analyzer) {
		a.retryPolicy = p
	}
}

// WithCheckpointStore enables checkpointing of the workflow state after each stage.
func WithCheckpointStore(cs store.CheckpointStore) AnalyzerOption {
	return func(a *Analyzer) {
		a.checkpoints = cs
	}
}

// NewAnalyzer creates an Analyzer and compiles its workflow graph.
func NewAnalyzer(model llm.Model, opts ...AnalyzerOption) (*Analyzer, error) {
	if model == nil {
		return nil, fmt.Errorf("model is required")
	}

	a := &Analyzer{
		model:          model,
		maxCompetitors: defaultMaxCompetitors,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.collector == nil {
		a.collector = webdata.NewCollector()
	}

	runnable, err := a.buildWorkflow()
	if err != nil {
		return nil, fmt.Errorf("failed to build workflow: %w", err)
	}
	a.runnable = runnable

	return a, nil
}

// buildWorkflow wires the analysis stages into a state graph.
// perform_swot and identify_trends have independent inputs and run as a
// parallel step; their updates are merged before assess_position.
func (a *Analyzer) buildWorkflow() (*graph.StateRunnable, error) {
	workflow := graph.NewStateGraph()

	workflow.AddNode(nodeIdentifyIndustry, "Identify the industry and market segment", a.identifyIndustry)
	workflow.AddNode(nodeFindCompetitors, "Identify and categorize competitors", a.findCompetitors)
	workflow.AddNode(nodeCollectData, "Collect data on target company and competitors", a.collectData)
	workflow.AddNode(nodeAnalyzeFinancials, "Perform financial comparison and analysis", a.analyzeFinancials)
	workflow.AddNode(nodePerformSWOT, "Conduct SWOT analysis", a.performSWOT)
	workflow.AddNode(nodeIdentifyTrends, "Identify key market trends", a.identifyTrends)
	workflow.AddNode(nodeAssessPosition, "Assess market position and competitive standing", a.assessPosition)
	workflow.AddNode(nodeGenerateReport, "Generate the final report", a.generateReport)

	workflow.SetEntryPoint(nodeIdentifyIndustry)
	workflow.AddEdge(nodeIdentifyIndustry, nodeFindCompetitors)
	workflow.AddEdge(nodeFindCompetitors, nodeCollectData)
	workflow.AddEdge(nodeCollectData, nodeAnalyzeFinancials)
	workflow.AddEdge(nodeAnalyzeFinancials, nodePerformSWOT)
	workflow.AddEdge(nodeAnalyzeFinancials, nodeIdentifyTrends)
	workflow.AddEdge(nodePerformSWOT, nodeAssessPosition)
	workflow.AddEdge(nodeIdentifyTrends, nodeAssessPosition)
	workflow.AddEdge(nodeAssessPosition, nodeGenerateReport)
	workflow.AddEdge(nodeGenerateReport, graph.END)

	workflow.SetStateMerger(mergeStates)
	if a.retryPolicy != nil {
		workflow.SetRetryPolicy(a.retryPolicy)
	}
	if a.checkpoints != nil {
		workflow.SetCheckpointStore(a.checkpoints)
	}

	return workflow.Compile()
}

// Analyze runs the full workflow for a company.
func (a *Analyzer) Analyze(ctx context.Context, company string) (*State, error) {
	if company == "" {
		return nil, fmt.Errorf("company name is required")
	}

	initial := State{
		TargetCompany: company,
		Model:         a.model.Name(),
		AnalyzedAt:    time.Now(),
	}

	log.Info("starting market analysis for %s", company)
	result, err := a.runnable.Invoke(ctx, initial)
	if err != nil {
		return nil, fmt.Errorf("analysis failed for %s: %w", company, err)
	}

	state, ok := result.(State)
	if !ok {
		return nil, fmt.Errorf("unexpected workflow result type %T", result)
	}
	return &state, nil
}

func (a *Analyzer) identifyIndustry(ctx context.Context, s any) (any, error) {
	state := s.(State)

	resp, err := a.model.Complete(ctx, roleIndustryExpert, industryPrompt(state.TargetCompany))
	if err != nil {
		return nil, err
	}

	var info IndustryInfo
	if err := extractJSON(resp, &info); err != nil {
		return nil, fmt.Errorf("industry classification: %w", err)
	}

	state.IndustryInfo = &info
	state.Industry = info.PrimaryIndustry
	log.Debug("industry for %s: %s", state.TargetCompany, state.Industry)
	return state, nil
}

func (a *Analyzer) findCompetitors(ctx context.Context, s any) (any, error) {
	state := s.(State)

	resp, err := a.model.Complete(ctx, roleCompetitiveIntel, competitorsPrompt(state.TargetCompany, state.Industry))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Competitors []Competitor `json:"competitors"`
	}
	if err := extractJSON(resp, &parsed); err != nil {
		return nil, fmt.Errorf("competitor mapping: %w", err)
	}

	state.Competitors = parsed.Competitors
	log.Debug("found %d competitors for %s", len(state.Competitors), state.TargetCompany)
	return state, nil
}

func (a *Analyzer) collectData(ctx context.Context, s any) (any, error) {
	state := s.(State)

	state.TargetData = a.collector.CollectCompanyInfo(ctx, state.TargetCompany)

	limit := a.maxCompetitors
	if limit > len(state.Competitors) {
		limit = len(state.Competitors)
	}
	for i := 0; i < limit; i++ {
		state.Competitors[i].Data = a.collector.CollectCompanyInfo(ctx, state.Competitors[i].Name)
	}

	return state, nil
}

func (a *Analyzer) analyzeFinancials(ctx context.Context, s any) (any, error) {
	state := s.(State)

	// Without any collected data a benchmarking prompt would only produce
	// hallucinated figures, so record the gap and move on.
	if state.TargetData == nil || state.TargetData.Empty() {
		log.Warn("no financial data collected for %s, skipping benchmark", state.TargetCompany)
		state.FinancialComparison = &FinancialComparison{
			Summary: "Insufficient public financial data for benchmarking.",
		}
		return state, nil
	}

	resp, err := a.model.Complete(ctx, roleFinancialAnalyst, financialsPrompt(state))
	if err != nil {
		return nil, err
	}

	var cmp FinancialComparison
	if err := extractJSON(resp, &cmp); err != nil {
		return nil, fmt.Errorf("financial benchmarking: %w", err)
	}

	state.FinancialComparison = &cmp
	return state, nil
}

func (a *Analyzer) performSWOT(ctx context.Context, s any) (any, error) {
	state := s.(State)

	resp, err := a.model.Complete(ctx, roleStrategicAnalyst, swotPrompt(state))
	if err != nil {
		return nil, err
	}

	var swot SWOT
	if err := extractJSON(resp, &swot); err != nil {
		return nil, fmt.Errorf("SWOT analysis: %w", err)
	}

	state.SWOT = &swot
	return state, nil
}

func (a *Analyzer) identifyTrends(ctx context.Context, s any) (any, error) {
	state := s.(State)

	resp, err := a.model.Complete(ctx, roleMarketResearcher, trendsPrompt(state))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Trends []MarketTrend `json:"trends"`
	}
	if err := extractJSON(resp, &parsed); err != nil {
		return nil, fmt.Errorf("trend identification: %w", err)
	}

	state.MarketTrends = parsed.Trends
	return state, nil
}

func (a *Analyzer) assessPosition(ctx context.Context, s any) (any, error) {
	state := s.(State)

	resp, err := a.model.Complete(ctx, roleStrategyConsult, positionPrompt(state))
	if err != nil {
		return nil, err
	}

	var pos MarketPosition
	if err := extractJSON(resp, &pos); err != nil {
		return nil, fmt.Errorf("market positioning: %w", err)
	}

	state.MarketPosition = &pos
	return state, nil
}

func (a *Analyzer) generateReport(ctx context.Context, s any) (any, error) {
	state := s.(State)

	resp, err := a.model.Complete(ctx, roleSeniorConsultant, reportPrompt(state))
	if err != nil {
		return nil, err
	}

	state.FinalReport = resp
	if score, ok := parseConfidence(resp); ok {
		state.ConfidenceScore = score
	} else {
		log.Warn("report for %s has no confidence score", state.TargetCompany)
		state.ConfidenceScore = fallbackConfidence
	}

	return state, nil
}

// mergeStates combines the state updates of a parallel step. Later results
// only overwrite fields they actually set.
func mergeStates(_ context.Context, current any, results []any) (any, error) {
	state, ok := current.(State)
	if !ok {
		return nil, fmt.Errorf("unexpected state type %T", current)
	}

	for _, r := range results {
		update, ok := r.(State)
		if !ok {
			return nil, fmt.Errorf("unexpected node result type %T", r)
		}
		state = adoptUpdate(state, update)
	}
	return state, nil
}

// adoptUpdate copies every non-zero field of update onto state.
func adoptUpdate(state, update State) State {
	if update.Industry != "" {
		state.Industry = update.Industry
	}
	if update.IndustryInfo != nil {
		state.IndustryInfo = update.IndustryInfo
	}
	if len(update.Competitors) > 0 {
		state.Competitors = update.Competitors
	}
	if update.TargetData != nil {
		state.TargetData = update.TargetData
	}
	if update.FinancialComparison != nil {
		state.FinancialComparison = update.FinancialComparison
	}
	if update.SWOT != nil {
		state.SWOT = update.SWOT
	}
	if update.MarketPosition != nil {
		state.MarketPosition = update.MarketPosition
	}
	if len(update.MarketTrends) > 0 {
		state.MarketTrends = update.MarketTrends
	}
	if update.FinalReport != "" {
		state.FinalReport = update.FinalReport
	}
	if update.ConfidenceScore != 0 {
		state.ConfidenceScore = update.ConfidenceScore
	}
	return state
}
