package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order. Each one is written to
// be a no-op on a database that already has what it adds.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "add_bol_and_review_columns",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_import_tracking_columns",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_lookup_indexes",
		Up:      migrationV3,
	},
}

func createVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// RunMigrations executes all pending migrations
func RunMigrations(db *sql.DB) error {
	if err := createVersionTable(db); err != nil {
		return err
	}

	var currentVersion int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// columnExists reports whether table has column.
func columnExists(tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

func addColumns(tx *sql.Tx, table string, columns [][2]string) error {
	for _, c := range columns {
		exists, err := columnExists(tx, table, c[0])
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w", table, err)
		}
		if exists {
			continue
		}
		if _, err := tx.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, c[0], c[1])); err != nil {
			return fmt.Errorf("failed to add %s.%s: %w", table, c[0], err)
		}
	}
	return nil
}

// migrationV1 adds the bill-of-lading and review columns to shipment details.
func migrationV1(tx *sql.Tx) error {
	return addColumns(tx, "shipment_details", [][2]string{
		{"bol_path", "TEXT"},
		{"bol_type", "TEXT"},
		{"review_date", "TEXT"},
	})
}

// migrationV2 adds the tracking sub-record to import records.
func migrationV2(tx *sql.Tx) error {
	return addColumns(tx, "import_records", [][2]string{
		{"is_processed", "INTEGER NOT NULL DEFAULT 0"},
		{"shipment_id", "INTEGER"},
		{"shipment_detail_id", "INTEGER"},
		{"processed_at", "TEXT"},
	})
}

// migrationV3 adds the indexes used by group and back-reference lookups.
func migrationV3(tx *sql.Tx) error {
	stmts := []string{
		"CREATE INDEX IF NOT EXISTS idx_shipment_details_number ON shipment_details(shipment_number)",
		"CREATE INDEX IF NOT EXISTS idx_shipment_details_input ON shipment_details(input_method, input_id)",
		"CREATE INDEX IF NOT EXISTS idx_import_records_number ON import_records(shipment_number)",
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
