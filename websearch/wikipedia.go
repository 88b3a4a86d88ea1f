package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	ai "github.com/bistrograph/bistrograph"
)

const wikipediaEndpoint = "https://ko.wikipedia.org/api/rest_v1/page/summary"

// WikipediaClient fetches article summaries from the Wikipedia REST API.
type WikipediaClient struct {
	endpoint   string
	httpClient *http.Client
}

// WikipediaOption configures a WikipediaClient.
type WikipediaOption func(*WikipediaClient)

// WithWikipediaHTTPClient overrides the HTTP client, mainly for tests.
func WithWikipediaHTTPClient(hc *http.Client) WikipediaOption {
	return func(c *WikipediaClient) {
		c.httpClient = hc
	}
}

// WithWikipediaEndpoint overrides the API endpoint, mainly for tests.
func WithWikipediaEndpoint(url string) WikipediaOption {
	return func(c *WikipediaClient) {
		c.endpoint = url
	}
}

// NewWikipediaClient creates a Wikipedia summary client.
func NewWikipediaClient(opts ...WikipediaOption) *WikipediaClient {
	c := &WikipediaClient{
		endpoint:   wikipediaEndpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type wikipediaSummary struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
}

// Summary fetches the summary of the named article. A missing article is
// not an error: NoResults is returned as the text.
func (c *WikipediaClient) Summary(ctx context.Context, title string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint+"/"+url.PathEscape(title), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", ai.NewTransientError(fmt.Sprintf("websearch: wikipedia request failed: %v", err), 0, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return NoResults, nil
	case resp.StatusCode != http.StatusOK:
		msg := fmt.Sprintf("websearch: wikipedia returned status %d", resp.StatusCode)
		if resp.StatusCode == 429 || resp.StatusCode >= 500 {
			return "", ai.NewTransientError(msg, resp.StatusCode, nil)
		}
		return "", ai.NewPermanentError(msg, resp.StatusCode, nil)
	}

	var parsed wikipediaSummary
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("websearch: decode wikipedia response: %w", err)
	}
	if parsed.Extract == "" {
		return NoResults, nil
	}
	return parsed.Extract, nil
}
