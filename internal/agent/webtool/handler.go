// Package webtool is the non-throwing boundary around the search-and-
// summarize pipeline.
package webtool

import (
	"context"
	"errors"
	"strings"

	apperrors "chat-agent/internal/common/errors"
	"chat-agent/internal/common/logger"
)

const Stage = "web_tool"

const msgEmptyQuery = "Please provide webpage content or keywords to analyze or search."

// Summarizer produces one answer string for a query.
type Summarizer interface {
	Summarize(ctx context.Context, query string) (string, error)
}

type Handler struct {
	summarizer Summarizer
	logger     logger.Logger
}

func NewHandler(summarizer Summarizer, log logger.Logger) *Handler {
	return &Handler{
		summarizer: summarizer,
		logger: log.WithFields(map[string]interface{}{
			"stage": Stage,
		}),
	}
}

// Invoke always returns a summary string; pipeline errors are rendered as an
// error-description summary instead of propagating.
func (h *Handler) Invoke(ctx context.Context, query string) string {
	if strings.TrimSpace(query) == "" {
		return msgEmptyQuery
	}

	summary, err := h.summarizer.Summarize(ctx, query)
	if err != nil {
		h.logger.Error("web analysis failed", map[string]interface{}{
			"errorCode": string(apperrors.Code(err)),
			"error":     err.Error(),
		})
		return "Error occurred during web analysis: " + errorDetails(err)
	}
	return summary
}

func errorDetails(err error) string {
	var std *apperrors.StandardError
	if errors.As(err, &std) && std.Details != "" {
		return std.Details
	}
	return err.Error()
}
