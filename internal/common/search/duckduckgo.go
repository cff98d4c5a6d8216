package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chat-agent/internal/models"
)

// DuckDuckGoClient calls a DuckDuckGo-compatible JSON search endpoint
// (a self-hosted proxy exposing /search?q=...&max_results=N).
type DuckDuckGoClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewDuckDuckGoClient(baseURL string, timeout time.Duration) *DuckDuckGoClient {
	return &DuckDuckGoClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *DuckDuckGoClient) Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	u, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	params := url.Values{}
	params.Add("q", query)
	params.Add("max_results", fmt.Sprintf("%d", maxResults))
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded ||
			errors.Is(err, context.DeadlineExceeded) ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return nil, ErrSearchTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: search API returned %d", ErrSearchFailed, resp.StatusCode)
	}

	var apiResponse struct {
		Results []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
			Link    string `json:"link"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrSearchFailed, err)
	}

	seen := make(map[string]bool)
	results := make([]models.SearchResult, 0, len(apiResponse.Results))
	for _, item := range apiResponse.Results {
		if item.Link == "" || seen[item.Link] {
			continue
		}
		seen[item.Link] = true
		results = append(results, models.SearchResult{
			Title:   item.Title,
			Snippet: item.Snippet,
			URL:     item.Link,
		})
		if len(results) >= maxResults {
			break
		}
	}

	return results, nil
}
