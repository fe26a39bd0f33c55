package salesdb

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ImportCSVDir loads every *.csv file under dataDir into the sales database,
// one table per file named after the file. Each table is dropped and
// recreated, so re-running leaves identical state.
func ImportCSVDir(ctx context.Context, dbPath, dataDir string, logger *zap.Logger) error {
	paths, err := filepath.Glob(filepath.Join(dataDir, "*.csv"))
	if err != nil {
		return fmt.Errorf("list CSV files in %s: %w", dataDir, err)
	}
	sort.Strings(paths)

	db, err := OpenReadWrite(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, path := range paths {
		table := tableNameFromFile(path)
		n, err := importCSV(ctx, db, table, path)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		logger.Info("loaded table",
			zap.String("table", table),
			zap.String("file", path),
			zap.Int("rows", n))
	}
	return nil
}

// importCSV replaces table with the contents of the CSV at path. Column
// types are inferred from the data: INTEGER, then REAL, falling back to TEXT.
func importCSV(ctx context.Context, db *sql.DB, table, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return 0, fmt.Errorf("parse CSV: %w", err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("empty CSV file")
	}

	header := records[0]
	data := records[1:]
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = sanitizeIdent(h)
	}
	types := inferColumnTypes(columns, data)

	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = fmt.Sprintf("%s %s", quoteIdent(col), types[i])
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(table))); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", "))); err != nil {
		return 0, err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",")
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteIdent(col)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoted, ", "), placeholders))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, record := range data {
		args := make([]any, len(columns))
		for i := range columns {
			var field string
			if i < len(record) {
				field = record[i]
			}
			args[i] = convertField(field, types[i])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(data), nil
}

// inferColumnTypes scans all values of each column. Empty fields are treated
// as NULL and do not influence the inferred type.
func inferColumnTypes(columns []string, data [][]string) []string {
	types := make([]string, len(columns))
	for i := range columns {
		isInt, isReal, seen := true, true, false
		for _, record := range data {
			if i >= len(record) || record[i] == "" {
				continue
			}
			seen = true
			if _, err := strconv.ParseInt(record[i], 10, 64); err != nil {
				isInt = false
			}
			if _, err := strconv.ParseFloat(record[i], 64); err != nil {
				isReal = false
			}
		}
		switch {
		case seen && isInt:
			types[i] = "INTEGER"
		case seen && isReal:
			types[i] = "REAL"
		default:
			types[i] = "TEXT"
		}
	}
	return types
}

func convertField(field, typ string) any {
	if field == "" {
		return nil
	}
	switch typ {
	case "INTEGER":
		if v, err := strconv.ParseInt(field, 10, 64); err == nil {
			return v
		}
	case "REAL":
		if v, err := strconv.ParseFloat(field, 64); err == nil {
			return v
		}
	}
	return field
}

func tableNameFromFile(path string) string {
	base := filepath.Base(path)
	return sanitizeIdent(strings.TrimSuffix(base, filepath.Ext(base)))
}

// sanitizeIdent keeps identifiers to letters, digits and underscores so
// generated DDL never needs escaping tricks.
func sanitizeIdent(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	s := b.String()
	if s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}
	return s
}
