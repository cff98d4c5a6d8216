package sqlagent

import (
	"context"
	"fmt"
	"strings"
)

const columnsQuery = `SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = $1
ORDER BY table_name, ordinal_position`

const foreignKeysQuery = `SELECT tc.table_name, kcu.column_name, ccu.table_name, ccu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name
JOIN information_schema.constraint_column_usage ccu ON tc.constraint_name = ccu.constraint_name
WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = $1
ORDER BY tc.table_name, kcu.column_name`

// introspectSchema renders the live schema as a prompt block: one line per
// table, foreign-key lines, then the curated join hints from config.
func (h *Handler) introspectSchema(ctx context.Context) (string, error) {
	rows, err := h.db.QueryContext(ctx, columnsQuery, h.config.SchemaName)
	if err != nil {
		return "", fmt.Errorf("introspect columns: %w", err)
	}
	defer rows.Close()

	tables := make(map[string][]string)
	var order []string
	for rows.Next() {
		var table, column, dataType string
		if err := rows.Scan(&table, &column, &dataType); err != nil {
			return "", fmt.Errorf("scan column row: %w", err)
		}
		if _, seen := tables[table]; !seen {
			order = append(order, table)
		}
		tables[table] = append(tables[table], fmt.Sprintf("%s %s", column, dataType))
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate column rows: %w", err)
	}

	var b strings.Builder
	for _, table := range order {
		fmt.Fprintf(&b, "%s(%s)\n", table, strings.Join(tables[table], ", "))
	}

	fkLines, err := h.introspectForeignKeys(ctx)
	if err != nil {
		// Schema lines alone are still usable; the caller logs the miss.
		return b.String(), err
	}
	if len(fkLines) > 0 {
		b.WriteString("\nForeign keys:\n")
		b.WriteString(strings.Join(fkLines, "\n"))
		b.WriteString("\n")
	}
	if h.config.JoinHints != "" {
		b.WriteString("\nJoin hints:\n")
		b.WriteString(h.config.JoinHints)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (h *Handler) introspectForeignKeys(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, foreignKeysQuery, h.config.SchemaName)
	if err != nil {
		return nil, fmt.Errorf("introspect foreign keys: %w", err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var table, column, refTable, refColumn string
		if err := rows.Scan(&table, &column, &refTable, &refColumn); err != nil {
			return nil, fmt.Errorf("scan foreign key row: %w", err)
		}
		lines = append(lines, fmt.Sprintf("%s.%s references %s.%s", table, column, refTable, refColumn))
	}
	return lines, rows.Err()
}
