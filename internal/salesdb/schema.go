package salesdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// DimTablePrefix marks dimension tables whose textual columns get their
// distinct values sampled into the schema description.
const DimTablePrefix = "DIM_"

// maxSampledValues caps the distinct values listed per dimension column.
const maxSampledValues = 50

// Schema is the introspected catalog: a textual description for the SQL
// prompt plus the lowercased identifier set for statement validation.
type Schema struct {
	Description string
	Identifiers map[string]bool
}

// Introspect builds the schema description from the live catalog. Tables are
// listed in name order and distinct values lexicographically, so the output
// is deterministic. An empty catalog yields an empty description.
func Introspect(ctx context.Context, db *sql.DB) (*Schema, error) {
	tables, err := listTables(ctx, db)
	if err != nil {
		return nil, err
	}

	idents := make(map[string]bool)
	blocks := make([]string, 0, len(tables))
	for _, table := range tables {
		idents[strings.ToLower(table)] = true
		cols, err := tableColumns(ctx, db, table)
		if err != nil {
			return nil, err
		}
		descriptions := make([]string, 0, len(cols))
		for _, col := range cols {
			idents[strings.ToLower(col.name)] = true
			desc := fmt.Sprintf("%s (%s)", col.name, col.typ)
			if strings.HasPrefix(table, DimTablePrefix) && isTextualType(col.typ) {
				values, err := sampleDistinct(ctx, db, table, col.name)
				if err != nil {
					return nil, err
				}
				if len(values) > 0 {
					desc += fmt.Sprintf(" (Values: %s)", strings.Join(values, ", "))
				}
			}
			descriptions = append(descriptions, desc)
		}
		blocks = append(blocks, fmt.Sprintf("Table: %s\nColumns: %s", table, strings.Join(descriptions, ", ")))
	}

	return &Schema{
		Description: strings.Join(blocks, "\n\n"),
		Identifiers: idents,
	}, nil
}

func listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

type columnInfo struct {
	name string
	typ  string
}

func tableColumns(ctx context.Context, db *sql.DB, table string) ([]columnInfo, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("describe table %s: %w", table, err)
	}
	defer rows.Close()

	var cols []columnInfo
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, columnInfo{name: name, typ: typ})
	}
	return cols, rows.Err()
}

func sampleDistinct(ctx context.Context, db *sql.DB, table, column string) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL ORDER BY %s LIMIT %d",
		quoteIdent(column), quoteIdent(table), quoteIdent(column), quoteIdent(column), maxSampledValues)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sample values of %s.%s: %w", table, column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func isTextualType(typ string) bool {
	t := strings.ToUpper(typ)
	return strings.Contains(t, "CHAR") || strings.Contains(t, "TEXT") || strings.Contains(t, "STRING") || strings.Contains(t, "CLOB")
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
