// Package sqlagent translates a natural-language question into a validated
// read-only SQL query, executes it, and synthesizes an answer from the rows.
package sqlagent

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	apperrors "chat-agent/internal/common/errors"
	"chat-agent/internal/common/genai"
	"chat-agent/internal/common/logger"
)

const Stage = "sql_agent"

const generatePrompt = `You are a PostgreSQL expert. Write one SQL query answering the question below.

Schema:
%s
Rules:
- Output a single SELECT statement only. No explanation, no markdown.
- Never modify data.
%s
Question: %s`

const castRepairHint = `- When comparing a text column with a number, cast the column explicitly, e.g. (column)::integer.
- The previous attempt failed with this error, fix it`

const summaryPrompt = `Answer the user's question from the query result below. Reply in plain natural language, no markdown.

Question: %s

Result:
%s`

type Handler struct {
	config    *Config
	db        *sql.DB
	generator genai.Generator
	logger    logger.Logger
}

func NewHandler(config *Config, db *sql.DB, generator genai.Generator, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		db:        db,
		generator: generator,
		logger: log.WithFields(map[string]interface{}{
			"stage": Stage,
		}),
	}
}

// Run resolves a question end to end: introspect, generate, validate,
// execute, synthesize. Generation gets one bounded repair pass after a
// validation reject and one after the known text/number comparison failure;
// there is no open-ended retry loop and generated text is never executed
// without passing the validator.
func (h *Handler) Run(ctx context.Context, question string) (AgentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	schema, err := h.introspectSchema(ctx)
	if err != nil {
		h.logger.Warn("schema introspection incomplete", map[string]interface{}{
			"error": err.Error(),
		})
	}

	sqlText, err := h.generateSQL(ctx, question, schema, "")
	if err != nil {
		return nil, apperrors.NewSQLGenerationFailedError(err)
	}
	if verr := ValidateSelect(sqlText); verr != nil {
		h.logger.Warn("generated query rejected, regenerating once", map[string]interface{}{
			"reason": verr.Error(),
			"query":  sqlText,
		})
		sqlText, err = h.generateSQL(ctx, question, schema, "- The previous attempt was rejected: "+verr.Error())
		if err != nil {
			return nil, apperrors.NewSQLGenerationFailedError(err)
		}
		if verr = ValidateSelect(sqlText); verr != nil {
			return nil, apperrors.NewQueryRejectedError(verr.Error())
		}
	}

	columns, records, err := h.executeQuery(ctx, sqlText)
	if err != nil && isCastError(err) {
		h.logger.Warn("query failed on type comparison, repairing once", map[string]interface{}{
			"error": err.Error(),
		})
		repaired, genErr := h.generateSQL(ctx, question, schema, castRepairHint+": "+err.Error())
		if genErr == nil && ValidateSelect(repaired) == nil {
			columns, records, err = h.executeQuery(ctx, repaired)
		}
	}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperrors.NewQueryTimeoutError(err)
		}
		return nil, apperrors.NewQueryExecutionFailedError(err)
	}

	if len(records) == 0 {
		return OpaqueResult{Text: "The query returned no rows."}, nil
	}

	rendered := renderRows(columns, records)
	answer, err := h.generator.Generate(ctx, fmt.Sprintf(summaryPrompt, question, rendered))
	if err != nil {
		h.logger.Warn("answer synthesis failed, returning raw result", map[string]interface{}{
			"error": err.Error(),
		})
		return MappingResult{Output: map[string]interface{}{"output": rendered}}, nil
	}
	return TerminalResult{Output: strings.TrimSpace(answer)}, nil
}

func (h *Handler) generateSQL(ctx context.Context, question, schema, feedback string) (string, error) {
	response, err := h.generator.Generate(ctx, fmt.Sprintf(generatePrompt, schema, feedback, question))
	if err != nil {
		return "", err
	}
	return extractSQL(response), nil
}

// extractSQL strips markdown fences and trailing semicolons that models
// commonly wrap around the statement.
func extractSQL(response string) string {
	text := strings.TrimSpace(response)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```sql")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.Index(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	text = strings.TrimSpace(text)
	return strings.TrimSuffix(text, ";")
}

func (h *Handler) executeQuery(ctx context.Context, sqlText string) ([]string, [][]string, error) {
	rows, err := h.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var records [][]string
	values := make([]interface{}, len(columns))
	pointers := make([]interface{}, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	for rows.Next() && len(records) < h.config.MaxRows {
		if err := rows.Scan(pointers...); err != nil {
			return nil, nil, err
		}
		record := make([]string, len(columns))
		for i, v := range values {
			record[i] = formatValue(v)
		}
		records = append(records, record)
	}
	return columns, records, rows.Err()
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func renderRows(columns []string, records [][]string) string {
	var b strings.Builder
	b.WriteString(strings.Join(columns, " | "))
	b.WriteString("\n")
	for _, record := range records {
		b.WriteString(strings.Join(record, " | "))
		b.WriteString("\n")
	}
	return b.String()
}

// isCastError recognizes the text/number comparison failures the repair pass
// can fix.
func isCastError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "operator does not exist") ||
		strings.Contains(msg, "invalid input syntax")
}
