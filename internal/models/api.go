package models

// AgentChatRequest is the payload for the email-style workflow entry point.
type AgentChatRequest struct {
	EmailContent string `json:"email_content"`
	ReplyTo      string `json:"reply_to,omitempty"`
}

// ChatRequest is the payload for the direct-query workflow entry point.
type ChatRequest struct {
	Query string `json:"query"`
}

// SearchAndSummarizeRequest is the payload for the standalone search endpoint.
type SearchAndSummarizeRequest struct {
	Query string `json:"query"`
}

// AgentChatResponse carries the summary plus the full terminal state.
type AgentChatResponse struct {
	Summary    string            `json:"summary"`
	FullResult ConversationState `json:"full_result"`
}

// ChatResponse carries only the summary text.
type ChatResponse struct {
	Summary string `json:"summary"`
}
