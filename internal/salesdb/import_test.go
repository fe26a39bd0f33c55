package salesdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestImportCSVDir(t *testing.T) {
	dataDir := t.TempDir()
	writeCSV(t, dataDir, "FACT_SALES.csv",
		"model,year,units,price\nCorolla,2023,100,21.5\nRAV4,2023,80,28.0\nYaris,2022,,19.9\n")
	writeCSV(t, dataDir, "DIM_MODEL.csv",
		"model,powertrain\nCorolla,Gasoline\nRAV4,Hybrid\n")

	dbPath := filepath.Join(t.TempDir(), "sales.db")
	ctx := context.Background()
	if err := ImportCSVDir(ctx, dbPath, dataDir, zap.NewNop()); err != nil {
		t.Fatal(err)
	}

	db, err := OpenReadOnly(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	_, rows, err := QueryRows(ctx, db, "SELECT model, year, units, price FROM FACT_SALES ORDER BY model")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0]["year"] != int64(2023) {
		t.Errorf("year = %v (%T), want INTEGER", rows[0]["year"], rows[0]["year"])
	}
	if rows[0]["price"] != 21.5 {
		t.Errorf("price = %v (%T), want REAL", rows[0]["price"], rows[0]["price"])
	}
	// empty field imports as NULL
	if rows[2]["units"] != nil {
		t.Errorf("empty units = %v, want NULL", rows[2]["units"])
	}

	_, dims, err := QueryRows(ctx, db, "SELECT model FROM DIM_MODEL")
	if err != nil {
		t.Fatal(err)
	}
	if len(dims) != 2 {
		t.Fatalf("DIM_MODEL has %d rows, want 2", len(dims))
	}
}

func TestImportCSVDirIdempotent(t *testing.T) {
	dataDir := t.TempDir()
	writeCSV(t, dataDir, "FACT_SALES.csv", "model,units\nCorolla,100\n")

	dbPath := filepath.Join(t.TempDir(), "sales.db")
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := ImportCSVDir(ctx, dbPath, dataDir, zap.NewNop()); err != nil {
			t.Fatal(err)
		}
	}

	db, err := OpenReadOnly(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	_, rows, err := QueryRows(ctx, db, "SELECT COUNT(*) AS n FROM FACT_SALES")
	if err != nil {
		t.Fatal(err)
	}
	if rows[0]["n"] != int64(1) {
		t.Errorf("row count after re-import = %v, want 1", rows[0]["n"])
	}
}

func TestSanitizeIdent(t *testing.T) {
	cases := []struct{ in, want string }{
		{"model name", "model_name"},
		{"2023_sales", "_2023_sales"},
		{"units", "units"},
		{"", "_"},
		{"price-usd", "price_usd"},
	}
	for _, tc := range cases {
		if got := sanitizeIdent(tc.in); got != tc.want {
			t.Errorf("sanitizeIdent(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTableNameFromFile(t *testing.T) {
	if got := tableNameFromFile("/data/FACT_SALES.csv"); got != "FACT_SALES" {
		t.Errorf("tableNameFromFile = %q", got)
	}
}
