// Package search holds the external search-provider clients. Both providers
// satisfy the same contract so the summarizer never knows which one is wired.
package search

import (
	"context"
	"errors"

	"chat-agent/internal/models"
)

var (
	ErrSearchFailed  = errors.New("WEB_SEARCH_FAILED")
	ErrSearchTimeout = errors.New("WEB_SEARCH_TIMEOUT")
)

// Provider returns up to maxResults candidates for query.
type Provider interface {
	Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error)
}
