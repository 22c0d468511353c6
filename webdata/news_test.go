package webdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilySearchRequiresKey(t *testing.T) {
	_, err := NewTavilySearch("", "")
	assert.ErrorContains(t, err, "API key not set")
}

func TestTavilySearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "secret", req["api_key"])
		assert.Equal(t, "Acme Robotics company news", req["query"])
		assert.Equal(t, "basic", req["search_depth"])
		assert.Equal(t, float64(3), req["max_results"])

		fmt.Fprint(w, `{"results":[
			{"title":"Acme raises Series C","url":"https://example.com/a","content":"Funding news."},
			{"title":"Acme opens new plant","url":"https://example.com/b","content":"Expansion."}
		]}`)
	}))
	defer server.Close()

	search, err := NewTavilySearch("secret", server.URL)
	require.NoError(t, err)

	items, err := search.Search(context.Background(), "Acme Robotics company news", 3)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "Acme raises Series C", items[0].Title)
	assert.Equal(t, "https://example.com/a", items[0].URL)
	assert.Equal(t, "Funding news.", items[0].Snippet)
}

func TestTavilySearchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	search, err := NewTavilySearch("wrong", server.URL)
	require.NoError(t, err)

	_, err = search.Search(context.Background(), "query", 5)
	assert.ErrorContains(t, err, "status 401")
}
