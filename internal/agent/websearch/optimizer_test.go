package websearch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"chat-agent/internal/common/logger"
)

type fakeGenerator struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func TestOptimizer_Optimize(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		expected string
	}{
		{
			name:     "keywords returned trimmed",
			response: "  naples pizza history  ",
			expected: "naples pizza history",
		},
		{
			name:     "only first line kept",
			response: "naples pizza history\nor maybe: pizza origin naples",
			expected: "naples pizza history",
		},
		{
			name:     "generation failure falls back to original",
			err:      errors.New("model unavailable"),
			expected: "where does pizza come from?",
		},
		{
			name:     "blank response falls back to original",
			response: "   \n  ",
			expected: "where does pizza come from?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{response: tt.response, err: tt.err}
			optimizer := NewOptimizer(gen, logger.NewTestLogger(t))

			assert.Equal(t, tt.expected, optimizer.Optimize(context.Background(), "where does pizza come from?"))
		})
	}
}
