package websearch

import (
	"context"
	"fmt"
	"strings"

	"chat-agent/internal/common/genai"
	"chat-agent/internal/common/logger"
)

const optimizePrompt = `Rewrite the following question as compact web search keywords.
Reply with the keywords only, on a single line, no explanation.

Question: %s`

// Optimizer rewrites a free-text query into search keywords. It never blocks
// the pipeline: any failure falls back to the original query.
type Optimizer struct {
	generator genai.Generator
	logger    logger.Logger
}

func NewOptimizer(generator genai.Generator, log logger.Logger) *Optimizer {
	return &Optimizer{generator: generator, logger: log}
}

func (o *Optimizer) Optimize(ctx context.Context, query string) string {
	response, err := o.generator.Generate(ctx, fmt.Sprintf(optimizePrompt, query))
	if err != nil {
		o.logger.Warn("query optimization failed, using original query", map[string]interface{}{
			"error": err.Error(),
		})
		return query
	}

	// Models sometimes emit several candidate lines; keep the first.
	line := strings.TrimSpace(response)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	if line == "" {
		return query
	}
	return line
}
