// Package websearch provides thin HTTP clients for external search services
// used by the ReAct agent when local retrieval comes up empty.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	ai "github.com/bistrograph/bistrograph"
)

// NoResults is returned as content when a search yields nothing, so agents
// can show the model an explicit miss instead of an empty string.
const NoResults = "관련 정보를 찾을 수 없습니다"

const tavilyEndpoint = "https://api.tavily.com/search"

// Result is a single web search hit.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// TavilyClient searches the web through the Tavily API.
type TavilyClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// TavilyOption configures a TavilyClient.
type TavilyOption func(*TavilyClient)

// WithTavilyHTTPClient overrides the HTTP client, mainly for tests.
func WithTavilyHTTPClient(hc *http.Client) TavilyOption {
	return func(c *TavilyClient) {
		c.httpClient = hc
	}
}

// WithTavilyEndpoint overrides the API endpoint, mainly for tests.
func WithTavilyEndpoint(url string) TavilyOption {
	return func(c *TavilyClient) {
		c.endpoint = url
	}
}

// NewTavilyClient creates a Tavily search client.
func NewTavilyClient(apiKey string, opts ...TavilyOption) *TavilyClient {
	c := &TavilyClient{
		apiKey:     apiKey,
		endpoint:   tavilyEndpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []Result `json:"results"`
}

// Search runs a web search and returns up to maxResults hits.
func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = 3
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:     c.apiKey,
		Query:      query,
		MaxResults: maxResults,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ai.NewTransientError(fmt.Sprintf("websearch: tavily request failed: %v", err), 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("websearch: tavily returned status %d", resp.StatusCode)
		if resp.StatusCode == 429 || resp.StatusCode >= 500 {
			return nil, ai.NewTransientError(msg, resp.StatusCode, nil)
		}
		return nil, ai.NewPermanentError(msg, resp.StatusCode, nil)
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("websearch: decode tavily response: %w", err)
	}
	return parsed.Results, nil
}

// SearchFormatted runs a search and formats the hits as plain text suitable
// for a tool result. Returns NoResults when nothing was found.
func (c *TavilyClient) SearchFormatted(ctx context.Context, query string, maxResults int) (string, error) {
	results, err := c.Search(ctx, query, maxResults)
	if err != nil {
		return "", err
	}
	return FormatResults(results), nil
}

// FormatResults renders search hits as numbered plain text.
func FormatResults(results []Result) string {
	if len(results) == 0 {
		return NoResults
	}

	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n%s\n(%s)\n", i+1, r.Title, r.Content, r.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}
