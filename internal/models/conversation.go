package models

// Route is the single tool-path decision made once per workflow run.
type Route string

const (
	RouteUnset           Route = ""
	RouteStructuredQuery Route = "sql_query"
	RouteWebAnalysis     Route = "web_analysis"
	RouteTerminal        Route = "terminal"
)

// Valid reports whether r is one of the known route values.
func (r Route) Valid() bool {
	switch r {
	case RouteUnset, RouteStructuredQuery, RouteWebAnalysis, RouteTerminal:
		return true
	}
	return false
}

// ConversationState is the unit of data threaded through a workflow run.
// Stages return a new state built from the prior one; no stage mutates a
// shared instance visible to other concurrent runs.
type ConversationState struct {
	RunID         string `json:"runId"`
	RawInput      string `json:"rawInput"`
	ResolvedQuery string `json:"resolvedQuery"`
	Summary       string `json:"summary"`
	Route         Route  `json:"route"`
	ReplyBody     string `json:"replyBody,omitempty"`
	ReplyTo       string `json:"replyTo,omitempty"`
}

// SearchResult is one item returned by the external search provider.
// Ephemeral: it exists only for the duration of one summarizer call.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// ScoredResult pairs a SearchResult with its relevance score. Used only to
// establish a total order for top-k truncation.
type ScoredResult struct {
	SearchResult
	Score float64 `json:"score"`
}
