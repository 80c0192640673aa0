package db

import (
	"database/sql"
	"strings"
	"testing"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open(DriverName, ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestDSN(t *testing.T) {
	got := DSN("/tmp/x.db", 5000)
	for _, want := range []string{"file:/tmp/x.db?", "_txlock=immediate", "_busy_timeout=5000", "_foreign_keys=on"} {
		if !strings.Contains(got, want) {
			t.Errorf("DSN = %q, missing %q", got, want)
		}
	}
}

func TestInitSchema_Fresh(t *testing.T) {
	conn := openMemory(t)

	if err := InitSchema(conn); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}
	// Second run takes the migration path and finds nothing to do.
	if err := InitSchema(conn); err != nil {
		t.Fatalf("second InitSchema failed: %v", err)
	}

	var version int
	if err := conn.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		t.Fatalf("failed to read version: %v", err)
	}
	if version != migrations[len(migrations)-1].Version {
		t.Errorf("version = %d, want %d", version, migrations[len(migrations)-1].Version)
	}
}

func TestInitSchema_UpgradesUnversionedDatabase(t *testing.T) {
	conn := openMemory(t)

	// An older install without bill-of-lading or tracking columns.
	if _, err := conn.Exec(`
		CREATE TABLE shipment_details (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			shipment_id INTEGER NOT NULL,
			input_method TEXT,
			input_id INTEGER,
			shipment_number TEXT NOT NULL,
			truck_number TEXT,
			trailer_number TEXT,
			miles INTEGER,
			notes TEXT,
			ticket_number TEXT,
			net_lbs INTEGER,
			tons REAL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE import_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			payload_json TEXT,
			shipment_number TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`); err != nil {
		t.Fatalf("failed to create legacy tables: %v", err)
	}

	if err := InitSchema(conn); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}

	if _, err := conn.Exec("UPDATE shipment_details SET bol_path = 'x', review_date = 'y'"); err != nil {
		t.Errorf("bol/review columns missing after upgrade: %v", err)
	}
	if _, err := conn.Exec("UPDATE import_records SET is_processed = 1, processed_at = 'now'"); err != nil {
		t.Errorf("tracking columns missing after upgrade: %v", err)
	}
}

func TestSoundexFunction(t *testing.T) {
	conn := openMemory(t)

	var got string
	if err := conn.QueryRow("SELECT soundex('Robert')").Scan(&got); err != nil {
		t.Fatalf("soundex query failed: %v", err)
	}
	if got != "R163" {
		t.Errorf("soundex('Robert') = %q, want R163", got)
	}
}

func TestSeedDemo(t *testing.T) {
	conn := openMemory(t)
	if err := InitSchema(conn); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}

	if err := SeedDemo(conn); err != nil {
		t.Fatalf("SeedDemo failed: %v", err)
	}
	var joins int
	if err := conn.QueryRow("SELECT COUNT(*) FROM route_joins").Scan(&joins); err != nil {
		t.Fatal(err)
	}
	if joins != 4 {
		t.Errorf("route_joins = %d, want 4", joins)
	}

	if err := SeedDemo(conn); err == nil {
		t.Error("expected second SeedDemo to refuse")
	}
}
