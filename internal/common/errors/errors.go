// Package errors provides standardized error handling for the agent workflow.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeIntentParsingFailed ErrorCode = "INTENT_PARSING_FAILED"
	ErrCodeIntentAPITimeout    ErrorCode = "INTENT_API_TIMEOUT"

	ErrCodeRouteUnrecognized ErrorCode = "ROUTE_UNRECOGNIZED"

	ErrCodeSQLGenerationFailed  ErrorCode = "SQL_GENERATION_FAILED"
	ErrCodeQueryExecutionFailed ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout         ErrorCode = "QUERY_TIMEOUT"
	ErrCodeQueryRejected        ErrorCode = "QUERY_REJECTED"

	ErrCodeWebSearchFailed  ErrorCode = "WEB_SEARCH_FAILED"
	ErrCodeWebSearchTimeout ErrorCode = "WEB_SEARCH_TIMEOUT"

	ErrCodeLLMTimeout         ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMSynthesisFailed ErrorCode = "LLM_SYNTHESIS_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeWorkflowFatal ErrorCode = "WORKFLOW_FATAL"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewIntentParsingFailedError creates a retryable intent extraction error.
func NewIntentParsingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIntentParsingFailed,
		Message:   "Intent extraction call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRouteUnrecognizedError creates a non-retryable routing error. The
// workflow recovers from this locally by falling through to the terminal
// state, so it is recorded for logging only.
func NewRouteUnrecognizedError(label string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRouteUnrecognized,
		Message:   "Router produced an unknown tool label",
		Details:   fmt.Sprintf("label: %q", label),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSQLGenerationFailedError creates a retryable query generation error.
func NewSQLGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSQLGenerationFailed,
		Message:   "SQL generation call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable error for a query that exceeded
// its deadline.
func NewQueryTimeoutError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timed out",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryRejectedError creates a non-retryable error for generated SQL that
// failed safety validation.
func NewQueryRejectedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryRejected,
		Message:   "Generated query rejected by validator",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewWebSearchFailedError creates a retryable search provider error.
func NewWebSearchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWebSearchFailed,
		Message:   "Web search provider error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMSynthesisFailedError creates a retryable LLM synthesis error.
func NewLLMSynthesisFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMSynthesisFailed,
		Message:   "LLM synthesis API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWorkflowFatalError wraps an error that escaped every stage-local
// recovery layer. It is the last line of defense before the terminal reply.
func NewWorkflowFatalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWorkflowFatal,
		Message:   "Uncaught workflow error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
