// Package webdata gathers public company data used by the analysis workflow:
// financials and stock history from Yahoo Finance, company profiles scraped
// from the web, and recent news from a search API. Every source is optional
// and failures degrade to warnings on the returned snapshot.
package webdata

import (
	"context"
	"fmt"
	"time"

	"langagent/log"
)

// FinancialData holds the key financial figures for a company.
type FinancialData struct {
	Ticker        string  `json:"ticker"`
	Sector        string  `json:"sector,omitempty"`
	Industry      string  `json:"industry,omitempty"`
	Website       string  `json:"website,omitempty"`
	MarketCap     float64 `json:"market_cap,omitempty"`
	Revenue       float64 `json:"revenue,omitempty"`
	Employees     int     `json:"employees,omitempty"`
	PERatio       float64 `json:"pe_ratio,omitempty"`
	ProfitMargin  float64 `json:"profit_margin,omitempty"`
	RevenueGrowth float64 `json:"revenue_growth,omitempty"`
}

// StockPerformance summarizes one year of price history.
type StockPerformance struct {
	High52Week float64 `json:"high_52_week"`
	Low52Week  float64 `json:"low_52_week"`
	LastClose  float64 `json:"last_close"`
	YTDReturn  float64 `json:"ytd_return"` // percent
}

// CompanyProfile holds descriptive information about a company.
type CompanyProfile struct {
	Description  string `json:"description,omitempty"`
	Headquarters string `json:"headquarters,omitempty"`
	Website      string `json:"website,omitempty"`
}

// NewsItem is one recent news result about a company.
type NewsItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// CompanySnapshot is everything the collector could gather about a company.
type CompanySnapshot struct {
	CompanyName string            `json:"company_name"`
	Ticker      string            `json:"ticker,omitempty"`
	Financials  *FinancialData    `json:"financial_data,omitempty"`
	Profile     *CompanyProfile   `json:"company_profile,omitempty"`
	News        []NewsItem        `json:"recent_news,omitempty"`
	Stock       *StockPerformance `json:"stock_performance,omitempty"`
	Warnings    []string          `json:"warnings,omitempty"`
	FetchedAt   time.Time         `json:"fetched_at"`
}

// Empty reports whether no source produced any data.
func (s *CompanySnapshot) Empty() bool {
	return s.Financials == nil && s.Profile == nil && s.Stock == nil && len(s.News) == 0
}

// SearchClient finds recent web results for a query.
type SearchClient interface {
	Search(ctx context.Context, query string, maxResults int) ([]NewsItem, error)
}

// SnapshotCache caches collected snapshots between runs.
type SnapshotCache interface {
	Get(ctx context.Context, company string) (*CompanySnapshot, error)
	Set(ctx context.Context, company string, snapshot *CompanySnapshot) error
}

// Collector gathers company data from the configured sources.
type Collector struct {
	finance  *YahooClient
	search   SearchClient
	cache    SnapshotCache
	maxNews  int
	profiles *ProfileFetcher
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithSearch enables news collection through the given search client.
func WithSearch(client SearchClient) CollectorOption {
	return func(c *Collector) {
		c.search = client
	}
}

// WithCache enables snapshot caching.
func WithCache(cache SnapshotCache) CollectorOption {
	return func(c *Collector) {
		c.cache = cache
	}
}

// WithFinanceClient overrides the Yahoo Finance client, mainly for tests.
func WithFinanceClient(client *YahooClient) CollectorOption {
	return func(c *Collector) {
		c.finance = client
	}
}

// WithProfileFetcher overrides the profile fetcher, mainly for tests.
func WithProfileFetcher(fetcher *ProfileFetcher) CollectorOption {
	return func(c *Collector) {
		c.profiles = fetcher
	}
}

// WithMaxNews caps the number of news results per company.
func WithMaxNews(n int) CollectorOption {
	return func(c *Collector) {
		if n > 0 {
			c.maxNews = n
		}
	}
}

// NewCollector creates a Collector with default clients.
func NewCollector(opts ...CollectorOption) *Collector {
	c := &Collector{
		finance:  NewYahooClient(""),
		profiles: NewProfileFetcher(),
		maxNews:  5,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CollectCompanyInfo gathers all available data about a company. It never
// fails; sources that error contribute a warning instead.
func (c *Collector) CollectCompanyInfo(ctx context.Context, company string) *CompanySnapshot {
	if c.cache != nil {
		if snap, err := c.cache.Get(ctx, company); err == nil && snap != nil {
			log.Debug("snapshot cache hit for %s", company)
			return snap
		}
	}

	snap := &CompanySnapshot{
		CompanyName: company,
		FetchedAt:   time.Now(),
	}

	ticker := FindTicker(company)
	if ticker == "" {
		snap.warn("ticker symbol not found for %q", company)
	} else {
		snap.Ticker = ticker
		c.collectFinance(ctx, snap, ticker)
	}

	c.collectProfile(ctx, snap)
	c.collectNews(ctx, snap, company)

	if c.cache != nil && !snap.Empty() {
		if err := c.cache.Set(ctx, company, snap); err != nil {
			log.Warn("failed to cache snapshot for %s: %v", company, err)
		}
	}

	return snap
}

func (c *Collector) collectFinance(ctx context.Context, snap *CompanySnapshot, ticker string) {
	fin, err := c.finance.FetchFinancials(ctx, ticker)
	if err != nil {
		snap.warn("failed to get financial data: %v", err)
	} else {
		snap.Financials = fin
	}

	stock, err := c.finance.FetchStockPerformance(ctx, ticker)
	if err != nil {
		snap.warn("failed to get stock performance: %v", err)
	} else {
		snap.Stock = stock
	}
}

func (c *Collector) collectProfile(ctx context.Context, snap *CompanySnapshot) {
	if snap.Financials == nil || snap.Financials.Website == "" {
		return
	}

	profile, err := c.profiles.Fetch(ctx, snap.Financials.Website)
	if err != nil {
		snap.warn("failed to get company profile: %v", err)
		return
	}
	snap.Profile = profile
}

func (c *Collector) collectNews(ctx context.Context, snap *CompanySnapshot, company string) {
	if c.search == nil {
		return
	}

	items, err := c.search.Search(ctx, company+" company news", c.maxNews)
	if err != nil {
		snap.warn("failed to get recent news: %v", err)
		return
	}
	snap.News = items
}

func (s *CompanySnapshot) warn(format string, v ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, v...))
}
