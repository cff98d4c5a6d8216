package sqlagent

import (
	"fmt"
	"regexp"
	"strings"
)

var forbiddenKeyword = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|alter|create|truncate|grant|revoke|copy|merge|call|do|execute)\b`)

// ValidateSelect enforces the read-only contract on generated SQL: a single
// SELECT (or WITH ... SELECT) statement, no data-modifying keywords, no
// comments. Generated statements never run unvalidated.
func ValidateSelect(query string) error {
	q := strings.TrimSpace(query)
	q = strings.TrimSuffix(q, ";")
	if q == "" {
		return fmt.Errorf("empty statement")
	}
	if strings.Contains(q, ";") {
		return fmt.Errorf("multiple statements are not allowed")
	}
	if strings.Contains(q, "--") || strings.Contains(q, "/*") {
		return fmt.Errorf("comments are not allowed")
	}
	upper := strings.ToUpper(q)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return fmt.Errorf("only SELECT statements are allowed")
	}
	if match := forbiddenKeyword.FindString(q); match != "" {
		return fmt.Errorf("forbidden keyword %q", strings.ToLower(match))
	}
	return nil
}
