package errors

import (
	stderrors "errors"
	"fmt"
)

// The user-facing contract is "always get a readable reply": workflow-internal
// failures are rendered as natural-language summary text, never surfaced as
// raw errors or non-200 responses. UserMessage is the single place where a
// structured error collapses into that text.

// UserMessage renders err as the summary string shown to the caller.
func UserMessage(err error) string {
	var std *StandardError
	if !stderrors.As(err, &std) {
		return fmt.Sprintf("Exception: %s", err.Error())
	}

	switch std.Code {
	case ErrCodeQueryRejected, ErrCodeSQLGenerationFailed, ErrCodeQueryExecutionFailed, ErrCodeQueryTimeout:
		return fmt.Sprintf("Error occurred during SQL query: %s", std.Details)
	case ErrCodeWebSearchFailed, ErrCodeWebSearchTimeout:
		return "No relevant webpages found."
	case ErrCodeLLMSynthesisFailed, ErrCodeLLMTimeout:
		return fmt.Sprintf("LLM analysis failed: %s", std.Details)
	default:
		return fmt.Sprintf("Exception: %s", std.Details)
	}
}

// Code extracts the structured error code, or WORKFLOW_FATAL for plain errors.
func Code(err error) ErrorCode {
	var std *StandardError
	if stderrors.As(err, &std) {
		return std.Code
	}
	return ErrCodeWorkflowFatal
}
