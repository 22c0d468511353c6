package webdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// userAgent mirrors a desktop browser; the finance endpoints reject the Go default.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// YahooClient fetches quotes and key statistics from the Yahoo Finance API.
type YahooClient struct {
	baseURL string
	client  *http.Client
}

// NewYahooClient creates a client. baseURL may be empty for the public API;
// tests pass an httptest server URL.
func NewYahooClient(baseURL string) *YahooClient {
	if baseURL == "" {
		baseURL = defaultYahooBaseURL
	}
	return &YahooClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

// yahooValue is Yahoo's number wrapper: {"raw": 123.4, "fmt": "123.40"}.
type yahooValue struct {
	Raw float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile *struct {
				Sector            string `json:"sector"`
				Industry          string `json:"industry"`
				Website           string `json:"website"`
				FullTimeEmployees int    `json:"fullTimeEmployees"`
			} `json:"assetProfile"`
			SummaryDetail *struct {
				MarketCap  yahooValue `json:"marketCap"`
				TrailingPE yahooValue `json:"trailingPE"`
			} `json:"summaryDetail"`
			FinancialData *struct {
				TotalRevenue  yahooValue `json:"totalRevenue"`
				ProfitMargins yahooValue `json:"profitMargins"`
				RevenueGrowth yahooValue `json:"revenueGrowth"`
			} `json:"financialData"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					High  []float64 `json:"high"`
					Low   []float64 `json:"low"`
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchFinancials retrieves key statistics and the company profile basics.
func (y *YahooClient) FetchFinancials(ctx context.Context, ticker string) (*FinancialData, error) {
	url := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=assetProfile,summaryDetail,financialData", y.baseURL, ticker)

	var resp quoteSummaryResponse
	if err := y.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("quote summary for %s: %s", ticker, resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("quote summary for %s: empty result", ticker)
	}

	r := resp.QuoteSummary.Result[0]
	fin := &FinancialData{Ticker: ticker}
	if r.AssetProfile != nil {
		fin.Sector = r.AssetProfile.Sector
		fin.Industry = r.AssetProfile.Industry
		fin.Website = r.AssetProfile.Website
		fin.Employees = r.AssetProfile.FullTimeEmployees
	}
	if r.SummaryDetail != nil {
		fin.MarketCap = r.SummaryDetail.MarketCap.Raw
		fin.PERatio = r.SummaryDetail.TrailingPE.Raw
	}
	if r.FinancialData != nil {
		fin.Revenue = r.FinancialData.TotalRevenue.Raw
		fin.ProfitMargin = r.FinancialData.ProfitMargins.Raw
		fin.RevenueGrowth = r.FinancialData.RevenueGrowth.Raw
	}

	return fin, nil
}

// FetchStockPerformance retrieves one year of price history and summarizes it.
func (y *YahooClient) FetchStockPerformance(ctx context.Context, ticker string) (*StockPerformance, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=1y&interval=1d", y.baseURL, ticker)

	var resp chartResponse
	if err := y.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart for %s: %s", ticker, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart for %s: empty result", ticker)
	}

	q := resp.Chart.Result[0].Indicators.Quote[0]
	if len(q.Close) == 0 {
		return nil, fmt.Errorf("chart for %s: no price data", ticker)
	}

	perf := &StockPerformance{
		High52Week: maxOf(q.High),
		Low52Week:  minOf(q.Low),
		LastClose:  q.Close[len(q.Close)-1],
	}
	if first := q.Close[0]; first != 0 {
		perf.YTDReturn = (perf.LastClose/first - 1) * 100
	}

	return perf, nil
}

func (y *YahooClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := y.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("finance api returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func maxOf(vals []float64) float64 {
	var m float64
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vals []float64) float64 {
	var m float64
	for i, v := range vals {
		if v == 0 {
			continue
		}
		if i == 0 || m == 0 || v < m {
			m = v
		}
	}
	return m
}
