package workflow

// State names of the run state machine. Data flows strictly forward; the only
// branch is the router's decision, and terminal always runs last.
const (
	StateParseEmail  = "parse_email"
	StateSelectTool  = "select_tool"
	StateSQLAgent    = "sql_agent"
	StateWebAnalysis = "web_analysis"
	StateTerminal    = "terminal"
)
