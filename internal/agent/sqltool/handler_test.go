package sqltool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"chat-agent/internal/agent/sqlagent"
	apperrors "chat-agent/internal/common/errors"
	"chat-agent/internal/common/logger"
)

type fakeAgent struct {
	result sqlagent.AgentResult
	err    error
	calls  int
}

func (a *fakeAgent) Run(ctx context.Context, question string) (sqlagent.AgentResult, error) {
	a.calls++
	return a.result, a.err
}

func TestHandler_Invoke_BlankInputGuard(t *testing.T) {
	agent := &fakeAgent{}
	handler := NewHandler(agent, logger.NewTestLogger(t))

	for _, input := range []string{"", "   ", "\n\t"} {
		summary := handler.Invoke(context.Background(), input)
		assert.Equal(t, "Please provide a clear query content.", summary)
	}
	assert.Equal(t, 0, agent.calls, "blank input must not reach the agent")
}

func TestHandler_Invoke_ResultShapes(t *testing.T) {
	tests := []struct {
		name     string
		result   sqlagent.AgentResult
		expected string
	}{
		{
			name:     "terminal result",
			result:   sqlagent.TerminalResult{Output: "There are 12 servers."},
			expected: "There are 12 servers.",
		},
		{
			name:     "mapping result with output key",
			result:   sqlagent.MappingResult{Output: map[string]interface{}{"output": "count\n12\n"}},
			expected: "count\n12\n",
		},
		{
			name:     "mapping result without string output stringifies",
			result:   sqlagent.MappingResult{Output: map[string]interface{}{"rows": 12}},
			expected: "map[rows:12]",
		},
		{
			name:     "opaque result",
			result:   sqlagent.OpaqueResult{Text: "The query returned no rows."},
			expected: "The query returned no rows.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(&fakeAgent{result: tt.result}, logger.NewTestLogger(t))
			assert.Equal(t, tt.expected, handler.Invoke(context.Background(), "how many servers?"))
		})
	}
}

func TestHandler_Invoke_ErrorContainment(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "structured execution error",
			err:      apperrors.NewQueryExecutionFailedError(errors.New("relation does not exist")),
			expected: "Error occurred during SQL query: relation does not exist",
		},
		{
			name:     "rejected query",
			err:      apperrors.NewQueryRejectedError("forbidden keyword \"drop\""),
			expected: "Error occurred during SQL query: forbidden keyword \"drop\"",
		},
		{
			name:     "plain error wrapped before rendering",
			err:      errors.New("driver: bad connection"),
			expected: "Error occurred during SQL query: driver: bad connection",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(&fakeAgent{err: tt.err}, logger.NewTestLogger(t))

			summary := handler.Invoke(context.Background(), "how many servers?")

			assert.Equal(t, tt.expected, summary)
		})
	}
}
