package webdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultSearchBaseURL = "https://api.tavily.com/search"

// TavilySearch implements SearchClient against the Tavily search API.
type TavilySearch struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewTavilySearch creates a search client. baseURL may be empty for the
// public endpoint.
func NewTavilySearch(apiKey, baseURL string) (*TavilySearch, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("search API key not set")
	}
	if baseURL == "" {
		baseURL = defaultSearchBaseURL
	}
	return &TavilySearch{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type tavilyResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

// Search runs a web search and maps results to news items.
func (t *TavilySearch) Search(ctx context.Context, query string, maxResults int) ([]NewsItem, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	body, err := json.Marshal(map[string]any{
		"api_key":      t.apiKey,
		"query":        query,
		"search_depth": "basic",
		"max_results":  maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search api returned status %d", resp.StatusCode)
	}

	var result tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	items := make([]NewsItem, 0, len(result.Results))
	for _, r := range result.Results {
		items = append(items, NewsItem{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
		})
	}
	return items, nil
}
