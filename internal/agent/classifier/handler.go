// Package classifier decides whether raw input reads as an email or a direct
// query, and resolves it into the query text the rest of the workflow runs on.
package classifier

import (
	"context"
	"fmt"
	"strings"

	apperrors "chat-agent/internal/common/errors"
	"chat-agent/internal/common/genai"
	"chat-agent/internal/common/logger"
)

const Stage = "parse_email"

// emailMarkers are matched case-insensitively anywhere in the input. An input
// containing any of them, or spanning more than maxQueryLines lines, is
// treated as email-shaped.
var emailMarkers = []string{
	"subject:",
	"dear",
	"hi ",
	"hello",
	"regards",
	"sincerely",
	"best regards",
	"thanks",
	"from:",
}

const maxQueryLines = 5

const intentPrompt = `The following text is an email from a client. Extract the query intention from it.
Reply with the extracted query only, no explanation.

Email:
%s`

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

// Execute resolves raw input into a query. Query-shaped input is returned
// trimmed and verbatim with no external call; email-shaped input costs one
// generation call. Generation failures are not recovered here and surface to
// the workflow boundary.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	trimmed := strings.TrimSpace(input.RawInput)

	if !isEmailShaped(input.RawInput) {
		return &Output{ResolvedQuery: trimmed}, nil
	}

	h.logger.Info("input is email-shaped, extracting intent", map[string]interface{}{
		"inputLength": len(input.RawInput),
	})

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	response, err := h.generator.Generate(ctx, fmt.Sprintf(intentPrompt, input.RawInput))
	if err != nil {
		return nil, apperrors.NewIntentParsingFailedError(err)
	}

	return &Output{
		ResolvedQuery: strings.TrimSpace(response),
		EmailShaped:   true,
	}, nil
}

func isEmailShaped(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range emailMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return strings.Count(strings.TrimSpace(text), "\n")+1 > maxQueryLines
}
