package sqlagent

// AgentResult is the closed set of shapes the agent returns. Callers
// pattern-match on the concrete type instead of probing attributes at
// runtime.
type AgentResult interface {
	agentResult()
}

// TerminalResult carries a finished natural-language answer.
type TerminalResult struct {
	Output string
}

// MappingResult carries a raw result rendering under the "output" key. It is
// produced when rows were fetched but the answer synthesis call failed.
type MappingResult struct {
	Output map[string]interface{}
}

// OpaqueResult carries plain text with no further structure, such as the
// empty-result notice.
type OpaqueResult struct {
	Text string
}

func (TerminalResult) agentResult() {}
func (MappingResult) agentResult()  {}
func (OpaqueResult) agentResult()   {}
