// Package websearch implements the search-and-summarize pipeline: optimize
// the query, retrieve candidates, rank them, and synthesize one grounded
// answer.
package websearch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"chat-agent/internal/common/genai"
	"chat-agent/internal/common/logger"
	"chat-agent/internal/common/metrics"
	"chat-agent/internal/common/search"
	"chat-agent/internal/models"
)

const Stage = "web_analysis"

const (
	msgNoResults            = "No relevant webpages found."
	msgNotEnoughInformation = "Not enough information in the search results."
)

const summarizePrompt = `Answer the question using only the numbered search results below.
If the results do not contain the answer, reply exactly: %s
Keep the answer under 200 words. Plain text only: no numbering, no bullet points, no URLs, no source references.

Question: %s

Search results:
%s`

type Summarizer struct {
	config    *Config
	provider  search.Provider
	generator genai.Generator
	optimizer *Optimizer
	cache     *redis.Client
	logger    logger.Logger
}

// NewSummarizer wires the pipeline. cache may be nil, in which case every
// call runs the full pipeline.
func NewSummarizer(config *Config, provider search.Provider, generator genai.Generator, optimizer *Optimizer, cache *redis.Client, log logger.Logger) *Summarizer {
	return &Summarizer{
		config:    config,
		provider:  provider,
		generator: generator,
		optimizer: optimizer,
		cache:     cache,
		logger: log.WithFields(map[string]interface{}{
			"stage": Stage,
		}),
	}
}

// Summarize produces one answer string for the query. Search-provider and
// generation failures are recovered locally into fixed messages; the returned
// error is reserved for failures outside that contract.
func (s *Summarizer) Summarize(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	if cached, ok := s.cacheGet(ctx, query); ok {
		return cached, nil
	}

	optimized := s.optimizer.Optimize(ctx, query)
	combined := query + " " + optimized

	results, err := s.provider.Search(ctx, combined, s.config.MaxResults)
	if err != nil || len(results) == 0 {
		if err != nil {
			s.logger.Warn("search provider failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return msgNoResults, nil
	}

	top := Filter(query, results, s.config.TopK)

	answer, err := s.generator.Generate(ctx, fmt.Sprintf(summarizePrompt, msgNotEnoughInformation, query, buildContextBlock(top)))
	if err != nil {
		s.logger.Error("answer synthesis failed", map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Sprintf("LLM analysis failed: %s", err.Error()), nil
	}

	answer = strings.TrimSpace(answer)
	s.cacheSet(ctx, query, answer)
	return answer, nil
}

func buildContextBlock(results []models.SearchResult) string {
	var b strings.Builder
	for i, result := range results {
		fmt.Fprintf(&b, "%d. %s\n%s\n%s\n\n", i+1, result.Title, result.Snippet, result.URL)
	}
	return b.String()
}

func (s *Summarizer) cacheGet(ctx context.Context, query string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	cached, err := s.cache.Get(ctx, cacheKey(query)).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("cache lookup failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		metrics.SearchCacheHits.WithLabelValues("miss").Inc()
		return "", false
	}
	metrics.SearchCacheHits.WithLabelValues("hit").Inc()
	return cached, true
}

func (s *Summarizer) cacheSet(ctx context.Context, query, answer string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(query), answer, s.config.CacheTTL).Err(); err != nil {
		s.logger.Warn("cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(query)))
	return "websearch:summary:" + hex.EncodeToString(sum[:])
}
