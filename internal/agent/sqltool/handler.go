// Package sqltool is the non-throwing boundary around the SQL agent. Every
// failure below it becomes a readable summary string; callers never see an
// error value.
package sqltool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chat-agent/internal/agent/sqlagent"
	apperrors "chat-agent/internal/common/errors"
	"chat-agent/internal/common/logger"
)

const Stage = "sql_tool"

const msgEmptyQuery = "Please provide a clear query content."

// Agent runs a natural-language question against the structured store.
type Agent interface {
	Run(ctx context.Context, question string) (sqlagent.AgentResult, error)
}

type Handler struct {
	agent  Agent
	logger logger.Logger
}

func NewHandler(agent Agent, log logger.Logger) *Handler {
	return &Handler{
		agent: agent,
		logger: log.WithFields(map[string]interface{}{
			"stage": Stage,
		}),
	}
}

// Invoke always returns a summary string. Blank input is rejected locally
// without touching the agent; agent failures are rendered through the
// user-message layer.
func (h *Handler) Invoke(ctx context.Context, query string) string {
	if strings.TrimSpace(query) == "" {
		return msgEmptyQuery
	}

	result, err := h.agent.Run(ctx, query)
	if err != nil {
		var std *apperrors.StandardError
		if !errors.As(err, &std) {
			err = apperrors.NewQueryExecutionFailedError(err)
		}
		h.logger.Error("structured query failed", map[string]interface{}{
			"errorCode": string(apperrors.Code(err)),
			"error":     err.Error(),
		})
		return apperrors.UserMessage(err)
	}

	return normalizeResult(result)
}

// normalizeResult collapses the agent's three result shapes into one summary
// string. The switch is exhaustive over the sealed AgentResult set.
func normalizeResult(result sqlagent.AgentResult) string {
	switch r := result.(type) {
	case sqlagent.TerminalResult:
		return r.Output
	case sqlagent.MappingResult:
		if output, ok := r.Output["output"].(string); ok {
			return output
		}
		return fmt.Sprintf("%v", r.Output)
	case sqlagent.OpaqueResult:
		return r.Text
	default:
		return fmt.Sprintf("%v", result)
	}
}
