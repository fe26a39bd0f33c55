package salesdb

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func openTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.db")
	db, err := OpenReadWrite(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	stmts := []string{
		`CREATE TABLE FACT_SALES (model TEXT, year INTEGER, units INTEGER)`,
		`CREATE TABLE DIM_MODEL (model TEXT, powertrain TEXT)`,
		`INSERT INTO FACT_SALES VALUES ('Corolla', 2023, 100), ('RAV4', 2023, 80)`,
		`INSERT INTO DIM_MODEL VALUES ('RAV4', 'Hybrid'), ('Corolla', 'Gasoline'), ('Corolla', 'Hybrid')`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	db.Close()
	return path
}

func TestIntrospect(t *testing.T) {
	path := openTestDB(t)
	db, err := OpenReadOnly(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	schema, err := Introspect(context.Background(), db)
	if err != nil {
		t.Fatal(err)
	}

	// tables listed in name order
	dimPos := strings.Index(schema.Description, "Table: DIM_MODEL")
	factPos := strings.Index(schema.Description, "Table: FACT_SALES")
	if dimPos < 0 || factPos < 0 {
		t.Fatalf("missing table blocks:\n%s", schema.Description)
	}
	if dimPos > factPos {
		t.Errorf("tables not in name order:\n%s", schema.Description)
	}

	// textual DIM_ columns carry sampled distinct values, lexicographically
	if !strings.Contains(schema.Description, "(Values: Corolla, RAV4)") {
		t.Errorf("DIM_MODEL.model values missing or unordered:\n%s", schema.Description)
	}
	if !strings.Contains(schema.Description, "(Values: Gasoline, Hybrid)") {
		t.Errorf("DIM_MODEL.powertrain values missing:\n%s", schema.Description)
	}

	// fact table columns do not get value sampling
	if strings.Contains(schema.Description, "(Values: 2023") {
		t.Errorf("numeric or fact columns must not be sampled:\n%s", schema.Description)
	}

	for _, ident := range []string{"fact_sales", "dim_model", "model", "year", "units", "powertrain"} {
		if !schema.Identifiers[ident] {
			t.Errorf("identifier %q missing from catalog", ident)
		}
	}
}

func TestIntrospectEmptyCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	db, err := OpenReadWrite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	schema, err := Introspect(context.Background(), db)
	if err != nil {
		t.Fatal(err)
	}
	if schema.Description != "" {
		t.Errorf("Description = %q, want empty", schema.Description)
	}
	if len(schema.Identifiers) != 0 {
		t.Errorf("Identifiers = %v, want empty", schema.Identifiers)
	}
}

func TestQueryRows(t *testing.T) {
	path := openTestDB(t)
	db, err := OpenReadOnly(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	cols, rows, err := QueryRows(context.Background(), db, "SELECT model, units FROM FACT_SALES ORDER BY model")
	if err != nil {
		t.Fatal(err)
	}
	if len(cols) != 2 || cols[0] != "model" || cols[1] != "units" {
		t.Fatalf("cols = %v", cols)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0]["model"] != "Corolla" {
		t.Errorf("rows[0][model] = %v", rows[0]["model"])
	}
	if rows[1]["units"] != int64(80) {
		t.Errorf("rows[1][units] = %v (%T)", rows[1]["units"], rows[1]["units"])
	}
}

func TestOpenReadOnlyRejectsWrites(t *testing.T) {
	path := openTestDB(t)
	db, err := OpenReadOnly(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := db.ExecContext(context.Background(), "DELETE FROM FACT_SALES"); err == nil {
		t.Fatal("expected write on read-only connection to fail")
	}
}
