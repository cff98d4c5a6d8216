package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"chat-agent/internal/models"
)

// ElasticClient searches a curated internal knowledge index. It satisfies
// the same Provider contract as the DuckDuckGo client so the two are
// interchangeable behind search.provider config.
type ElasticClient struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticClient(client *elasticsearch.Client, index string) (*ElasticClient, error) {
	if index == "" {
		return nil, errors.New("index name is required")
	}
	return &ElasticClient{client: client, index: index}, nil
}

func (c *ElasticClient) Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^3", "snippet^2", "content"},
				"type":   "best_fields",
			},
		},
	}

	body, _ := json.Marshal(queryBody)

	size := maxResults
	req := esapi.SearchRequest{
		Index: []string{c.index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %v", ErrSearchTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: elasticsearch returned status %s", ErrSearchFailed, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source struct {
					Title   string `json:"title"`
					Snippet string `json:"snippet"`
					URL     string `json:"url"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrSearchFailed, err)
	}

	results := make([]models.SearchResult, 0, len(parsed.Hits.Hits))
	seen := make(map[string]bool)
	for _, hit := range parsed.Hits.Hits {
		if hit.Source.URL != "" && seen[hit.Source.URL] {
			continue
		}
		seen[hit.Source.URL] = true
		results = append(results, models.SearchResult{
			Title:   hit.Source.Title,
			Snippet: hit.Source.Snippet,
			URL:     hit.Source.URL,
		})
	}
	return results, nil
}
