package websearch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-agent/internal/common/logger"
	"chat-agent/internal/models"
)

type scriptedResponse struct {
	text string
	err  error
}

type scriptedGenerator struct {
	responses []scriptedResponse
	prompts   []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if len(g.responses) == 0 {
		return "", errors.New("script exhausted")
	}
	next := g.responses[0]
	g.responses = g.responses[1:]
	return next.text, next.err
}

type fakeProvider struct {
	results    []models.SearchResult
	err        error
	calls      int
	lastQuery  string
	lastMaxRes int
}

func (p *fakeProvider) Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	p.calls++
	p.lastQuery = query
	p.lastMaxRes = maxResults
	return p.results, p.err
}

func testConfig() *Config {
	return &Config{
		MaxResults: 10,
		TopK:       5,
		CacheTTL:   time.Minute,
		Timeout:    5 * time.Second,
	}
}

func sampleResults() []models.SearchResult {
	return []models.SearchResult{
		{Title: "History of pizza", Snippet: "Pizza originated in Naples.", URL: "https://example.com/pizza"},
		{Title: "Italian food", Snippet: "Naples is famous for pizza.", URL: "https://example.com/italy"},
	}
}

func newSummarizer(t *testing.T, provider *fakeProvider, gen *scriptedGenerator, cache *redis.Client) *Summarizer {
	t.Helper()
	optimizer := NewOptimizer(gen, logger.NewTestLogger(t))
	return NewSummarizer(testConfig(), provider, gen, optimizer, cache, logger.NewTestLogger(t))
}

func TestSummarizer_Summarize_Success(t *testing.T) {
	provider := &fakeProvider{results: sampleResults()}
	gen := &scriptedGenerator{responses: []scriptedResponse{
		{text: "pizza origin naples"},
		{text: "  Pizza comes from Naples.  "},
	}}
	summarizer := newSummarizer(t, provider, gen, nil)

	answer, err := summarizer.Summarize(context.Background(), "where does pizza come from?")

	require.NoError(t, err)
	assert.Equal(t, "Pizza comes from Naples.", answer)
	assert.Equal(t, "where does pizza come from? pizza origin naples", provider.lastQuery,
		"retrieval must use the combined original plus optimized query")
	assert.Equal(t, 10, provider.lastMaxRes)
	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[1], "1. History of pizza", "context block must be numbered")
	assert.Contains(t, gen.prompts[1], "https://example.com/pizza")
	assert.Contains(t, gen.prompts[1], "Not enough information in the search results.")
}

func TestSummarizer_Summarize_ProviderFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	gen := &scriptedGenerator{responses: []scriptedResponse{
		{text: "pizza origin"},
	}}
	summarizer := newSummarizer(t, provider, gen, nil)

	answer, err := summarizer.Summarize(context.Background(), "where does pizza come from?")

	require.NoError(t, err)
	assert.Equal(t, "No relevant webpages found.", answer)
	assert.Len(t, gen.prompts, 1, "summarization must not run after a failed search")
}

func TestSummarizer_Summarize_EmptyResults(t *testing.T) {
	provider := &fakeProvider{}
	gen := &scriptedGenerator{responses: []scriptedResponse{
		{text: "pizza origin"},
	}}
	summarizer := newSummarizer(t, provider, gen, nil)

	answer, err := summarizer.Summarize(context.Background(), "where does pizza come from?")

	require.NoError(t, err)
	assert.Equal(t, "No relevant webpages found.", answer)
}

func TestSummarizer_Summarize_GenerationFailure(t *testing.T) {
	provider := &fakeProvider{results: sampleResults()}
	gen := &scriptedGenerator{responses: []scriptedResponse{
		{text: "pizza origin"},
		{err: errors.New("model unavailable")},
	}}
	summarizer := newSummarizer(t, provider, gen, nil)

	answer, err := summarizer.Summarize(context.Background(), "where does pizza come from?")

	require.NoError(t, err)
	assert.Equal(t, "LLM analysis failed: model unavailable", answer)
}

func TestSummarizer_Summarize_NotEnoughInformationSentinel(t *testing.T) {
	provider := &fakeProvider{results: sampleResults()}
	gen := &scriptedGenerator{responses: []scriptedResponse{
		{text: "quantum computing"},
		{text: "Not enough information in the search results."},
	}}
	summarizer := newSummarizer(t, provider, gen, nil)

	answer, err := summarizer.Summarize(context.Background(), "explain quantum error correction")

	require.NoError(t, err)
	assert.Equal(t, "Not enough information in the search results.", answer)
}

func TestSummarizer_Summarize_CacheFailureFallsThrough(t *testing.T) {
	cache, mock := redismock.NewClientMock()
	key := cacheKey("where does pizza come from?")
	mock.ExpectGet(key).SetErr(errors.New("redis down"))
	mock.ExpectSet(key, "Pizza comes from Naples.", time.Minute).SetErr(errors.New("redis down"))

	provider := &fakeProvider{results: sampleResults()}
	gen := &scriptedGenerator{responses: []scriptedResponse{
		{text: "pizza origin naples"},
		{text: "Pizza comes from Naples."},
	}}
	summarizer := newSummarizer(t, provider, gen, cache)

	answer, err := summarizer.Summarize(context.Background(), "where does pizza come from?")

	require.NoError(t, err)
	assert.Equal(t, "Pizza comes from Naples.", answer, "a broken cache must not break the pipeline")
	assert.Equal(t, 1, provider.calls)
}

func TestSummarizer_Summarize_CacheHit(t *testing.T) {
	srv := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: srv.Addr()})

	provider := &fakeProvider{results: sampleResults()}
	gen := &scriptedGenerator{responses: []scriptedResponse{
		{text: "pizza origin naples"},
		{text: "Pizza comes from Naples."},
	}}
	summarizer := newSummarizer(t, provider, gen, cache)

	first, err := summarizer.Summarize(context.Background(), "where does pizza come from?")
	require.NoError(t, err)

	second, err := summarizer.Summarize(context.Background(), "where does pizza come from?")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.calls, "second call must be served from cache")
	assert.Len(t, gen.prompts, 2)
}
