package workflow

import (
	"fmt"
	"strings"
)

const replySubject = "Re: your request"

// formatReply wraps the final summary in the client-facing reply body.
func formatReply(summary, signature string) string {
	var b strings.Builder
	b.WriteString("Dear Client,\n\n")
	b.WriteString(strings.TrimSpace(summary))
	b.WriteString("\n\nBest regards,\n")
	b.WriteString(signature)
	b.WriteString("\n")
	return b.String()
}

// alertMessage renders the operator notification for a contained fatal error.
func alertMessage(runID, errorCode, details string) string {
	return fmt.Sprintf("workflow run %s hit the containment path\nerror code: %s\ndetails: %s", runID, errorCode, details)
}
