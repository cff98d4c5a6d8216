package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"chat-agent/internal/common/logger"
	"chat-agent/internal/models"
)

type fakeGenerator struct {
	response string
	err      error
	calls    int
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func TestHandler_Execute_Routes(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		expected models.Route
	}{
		{
			name:     "sql label",
			response: "sql_query",
			expected: models.RouteStructuredQuery,
		},
		{
			name:     "web label",
			response: "web_analysis",
			expected: models.RouteWebAnalysis,
		},
		{
			name:     "label normalized from case and whitespace",
			response: "  SQL_Query \n",
			expected: models.RouteStructuredQuery,
		},
		{
			name:     "unrecognized label falls through to terminal",
			response: "i think you should use the sql tool",
			expected: models.RouteTerminal,
		},
		{
			name:     "empty response falls through to terminal",
			response: "",
			expected: models.RouteTerminal,
		},
		{
			name:     "generation failure falls through to terminal",
			err:      errors.New("model unavailable"),
			expected: models.RouteTerminal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{response: tt.response, err: tt.err}
			handler := NewHandler(createTestConfig(), gen, logger.NewTestLogger(t))

			route := handler.Execute(context.Background(), "some query")

			assert.Equal(t, tt.expected, route)
			assert.True(t, route.Valid())
		})
	}
}

func TestHandler_Execute_TotalOverArbitraryInput(t *testing.T) {
	inputs := []string{"", "   ", "こんにちは、世界", "SELECT * FROM users;", "\x00\x01"}

	gen := &fakeGenerator{response: "no idea"}
	handler := NewHandler(createTestConfig(), gen, logger.NewTestLogger(t))

	for _, input := range inputs {
		route := handler.Execute(context.Background(), input)
		assert.Equal(t, models.RouteTerminal, route)
	}
}

func TestHandler_Execute_Idempotent(t *testing.T) {
	gen := &fakeGenerator{response: "web_analysis"}
	handler := NewHandler(createTestConfig(), gen, logger.NewTestLogger(t))

	first := handler.Execute(context.Background(), "what is the capital of France?")
	second := handler.Execute(context.Background(), "what is the capital of France?")

	assert.Equal(t, first, second)
	assert.Equal(t, 2, gen.calls)
}
