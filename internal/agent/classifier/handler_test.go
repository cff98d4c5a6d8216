package classifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "chat-agent/internal/common/errors"
	"chat-agent/internal/common/logger"
)

// fakeGenerator returns a scripted response and records calls.
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

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func TestHandler_Execute_QueryShaped(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "direct question returned verbatim",
			input:    "show me all servers with 64GB RAM",
			expected: "show me all servers with 64GB RAM",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  what is the total revenue?  \n",
			expected: "what is the total revenue?",
		},
		{
			name:     "empty input stays empty",
			input:    "",
			expected: "",
		},
		{
			name:     "five lines without markers is still a query",
			input:    "one\ntwo\nthree\nfour\nfive",
			expected: "one\ntwo\nthree\nfour\nfive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{}
			handler := NewHandler(createTestConfig(), gen, logger.NewTestLogger(t))

			output, err := handler.Execute(context.Background(), &Input{RawInput: tt.input})

			require.NoError(t, err)
			assert.Equal(t, tt.expected, output.ResolvedQuery)
			assert.False(t, output.EmailShaped)
			assert.Equal(t, 0, gen.calls, "query-shaped input must not call the generator")
		})
	}
}

func TestHandler_Execute_EmailShaped(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "greeting and sign-off markers",
			input: "Dear Sir,\nRegards,\nA",
		},
		{
			name:  "subject line marker",
			input: "Subject: inventory question",
		},
		{
			name:  "marker match is case-insensitive",
			input: "BEST REGARDS, someone",
		},
		{
			name:  "six lines without any marker",
			input: "one\ntwo\nthree\nfour\nfive\nsix",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{response: "  list all open orders  "}
			handler := NewHandler(createTestConfig(), gen, logger.NewTestLogger(t))

			output, err := handler.Execute(context.Background(), &Input{RawInput: tt.input})

			require.NoError(t, err)
			assert.Equal(t, 1, gen.calls, "email-shaped input must take the generation branch")
			assert.Equal(t, "list all open orders", output.ResolvedQuery)
			assert.True(t, output.EmailShaped)
			assert.Contains(t, gen.prompts[0], tt.input, "prompt must carry the original email body")
		})
	}
}

func TestHandler_Execute_GenerationFailurePropagates(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection refused")}
	handler := NewHandler(createTestConfig(), gen, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{RawInput: "Dear team,\nplease check the report"})

	require.Error(t, err)
	assert.Nil(t, output)
	assert.Equal(t, apperrors.ErrCodeIntentParsingFailed, apperrors.Code(err))
}

func TestHandler_Execute_Idempotent(t *testing.T) {
	gen := &fakeGenerator{response: "count active users"}
	handler := NewHandler(createTestConfig(), gen, logger.NewTestLogger(t))
	input := &Input{RawInput: "Hello,\ncould you tell me how many active users we have?\nThanks"}

	first, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	second, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
