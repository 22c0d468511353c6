package webdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindTicker(t *testing.T) {
	assert.Equal(t, "AAPL", FindTicker("Apple"))
	assert.Equal(t, "AAPL", FindTicker("apple inc."))
	assert.Equal(t, "MSFT", FindTicker("Microsoft Corporation"))
	assert.Equal(t, "GOOGL", FindTicker("Alphabet"))
	assert.Equal(t, "", FindTicker("Joe's Corner Bakery"))
}

func TestFetchFinancials(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		assert.Equal(t, "/v10/finance/quoteSummary/AAPL", r.URL.Path)
		assert.Equal(t, "assetProfile,summaryDetail,financialData", r.URL.Query().Get("modules"))

		fmt.Fprint(w, `{"quoteSummary":{"result":[{
			"assetProfile":{"sector":"Technology","industry":"Consumer Electronics","website":"https://www.apple.com","fullTimeEmployees":161000},
			"summaryDetail":{"marketCap":{"raw":3000000000000,"fmt":"3T"},"trailingPE":{"raw":31.2}},
			"financialData":{"totalRevenue":{"raw":383000000000},"profitMargins":{"raw":0.25},"revenueGrowth":{"raw":0.02}}
		}]}}`)
	}))
	defer server.Close()

	client := NewYahooClient(server.URL)
	fin, err := client.FetchFinancials(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", fin.Ticker)
	assert.Equal(t, "Technology", fin.Sector)
	assert.Equal(t, "https://www.apple.com", fin.Website)
	assert.Equal(t, 161000, fin.Employees)
	assert.Equal(t, 3e12, fin.MarketCap)
	assert.Equal(t, 31.2, fin.PERatio)
	assert.Equal(t, 0.25, fin.ProfitMargin)

	// Yahoo rejects the default Go client agent.
	assert.Contains(t, gotUA, "Mozilla/5.0")
}

func TestFetchFinancialsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary":{"result":[],"error":{"description":"Quote not found"}}}`)
	}))
	defer server.Close()

	client := NewYahooClient(server.URL)
	_, err := client.FetchFinancials(context.Background(), "NOPE")
	assert.ErrorContains(t, err, "Quote not found")
}

func TestFetchFinancialsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewYahooClient(server.URL)
	_, err := client.FetchFinancials(context.Background(), "AAPL")
	assert.ErrorContains(t, err, "status 429")
}

func TestFetchStockPerformance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1y", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))

		fmt.Fprint(w, `{"chart":{"result":[{"indicators":{"quote":[{
			"high":[150,210,190],
			"low":[120,0,135],
			"close":[160,200,184]
		}]}}]}}`)
	}))
	defer server.Close()

	client := NewYahooClient(server.URL)
	perf, err := client.FetchStockPerformance(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, 210.0, perf.High52Week)
	// Zero entries are data gaps, not prices.
	assert.Equal(t, 120.0, perf.Low52Week)
	assert.Equal(t, 184.0, perf.LastClose)
	assert.InDelta(t, 15.0, perf.YTDReturn, 0.001)
}

func TestFetchStockPerformanceEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[]}}`)
	}))
	defer server.Close()

	client := NewYahooClient(server.URL)
	_, err := client.FetchStockPerformance(context.Background(), "AAPL")
	assert.ErrorContains(t, err, "empty result")
}
