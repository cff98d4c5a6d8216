// Package router makes the single tool-path decision of a workflow run.
package router

import (
	"context"
	"fmt"
	"strings"

	apperrors "chat-agent/internal/common/errors"
	"chat-agent/internal/common/genai"
	"chat-agent/internal/common/logger"
	"chat-agent/internal/models"
)

const Stage = "select_tool"

const decisionPrompt = `You are a tool selector. Given the user query below, choose the single best tool.
Answer with exactly one of these labels and nothing else:
sql_query - the query asks about structured internal data (counts, lists, records, reports)
web_analysis - the query asks about external information, webpages, or general knowledge

Query: %s`

type Handler struct {
	config    *Config
	generator genai.Generator
	logger    logger.Logger
}

func NewHandler(config *Config, generator genai.Generator, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		generator: generator,
		logger: log.WithFields(map[string]interface{}{
			"stage": Stage,
		}),
	}
}

// Execute is total: it returns a route for every input and never an error.
// Generation failures and unrecognized labels both fall through to the
// terminal route, so a run always completes.
func (h *Handler) Execute(ctx context.Context, query string) models.Route {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	response, err := h.generator.Generate(ctx, fmt.Sprintf(decisionPrompt, query))
	if err != nil {
		h.logger.Warn("tool selection call failed, falling through to terminal", map[string]interface{}{
			"error": err.Error(),
		})
		return models.RouteTerminal
	}

	label := strings.ToLower(strings.TrimSpace(response))
	switch label {
	case string(models.RouteStructuredQuery):
		return models.RouteStructuredQuery
	case string(models.RouteWebAnalysis):
		return models.RouteWebAnalysis
	default:
		routeErr := apperrors.NewRouteUnrecognizedError(label)
		h.logger.Warn("unrecognized tool label, falling through to terminal", map[string]interface{}{
			"label": label,
			"error": routeErr.Error(),
		})
		return models.RouteTerminal
	}
}
