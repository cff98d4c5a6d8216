package websearch

import (
	"regexp"
	"sort"
	"strings"

	"chat-agent/internal/models"
)

// snippetScoreLimit bounds how much of a snippet counts toward the score, so
// very long snippets cannot drown out titles.
const snippetScoreLimit = 200

var wordToken = regexp.MustCompile(`\w+`)

// extractKeywords returns the distinct lowercased word tokens of a query, in
// first-seen order.
func extractKeywords(query string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, token := range wordToken.FindAllString(strings.ToLower(query), -1) {
		if !seen[token] {
			seen[token] = true
			keywords = append(keywords, token)
		}
	}
	return keywords
}

// Score rates one result against the query keywords: total occurrence count
// across title and truncated snippet, plus twice the fraction of distinct
// keywords present. The coverage weight makes a result touching many distinct
// terms outrank one repeating a single term.
func Score(result models.SearchResult, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}

	snippet := result.Snippet
	if runes := []rune(snippet); len(runes) > snippetScoreLimit {
		snippet = string(runes[:snippetScoreLimit])
	}
	text := strings.ToLower(result.Title + " " + snippet)

	occurrences := 0
	covered := 0
	for _, keyword := range keywords {
		count := strings.Count(text, keyword)
		occurrences += count
		if count > 0 {
			covered++
		}
	}

	coverage := float64(covered) / float64(len(keywords))
	return float64(occurrences) + 2*coverage
}

// Filter orders results by descending score and returns the first topK. The
// sort is stable, so ties keep the provider's original order.
func Filter(query string, results []models.SearchResult, topK int) []models.SearchResult {
	keywords := extractKeywords(query)

	scored := make([]models.ScoredResult, len(results))
	for i, result := range results {
		scored[i] = models.ScoredResult{SearchResult: result, Score: Score(result, keywords)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK > len(scored) {
		topK = len(scored)
	}
	selected := make([]models.SearchResult, topK)
	for i := 0; i < topK; i++ {
		selected[i] = scored[i].SearchResult
	}
	return selected
}
