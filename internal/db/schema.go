package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh loadmatch installs.
// This schema reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// this schema via GetSchemaSQL(), so a repository that references a column
// missing here fails immediately with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
//  3. Add the column to capability.All if it is optional
//
// Reference tables (carriers through route_joins) are maintained upstream and
// only read. Dates the engine writes are stored as TEXT so they round-trip
// exactly as written.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS carriers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS contacts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name TEXT,
	last_name TEXT
);

CREATE TABLE IF NOT EXISTS vehicles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	vehicle_number TEXT,
	vehicle_name TEXT
);

CREATE TABLE IF NOT EXISTS drivers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	contact_id INTEGER NOT NULL,
	vehicle_id INTEGER,
	carrier_id INTEGER,
	FOREIGN KEY (contact_id) REFERENCES contacts(id),
	FOREIGN KEY (vehicle_id) REFERENCES vehicles(id),
	FOREIGN KEY (carrier_id) REFERENCES carriers(id)
);

CREATE INDEX IF NOT EXISTS idx_drivers_contact ON drivers(contact_id);
CREATE INDEX IF NOT EXISTS idx_drivers_vehicle ON drivers(vehicle_id);

CREATE TABLE IF NOT EXISTS pull_points (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	is_deleted INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS pad_locations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	is_deleted INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS route_joins (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	pull_point_id INTEGER NOT NULL,
	pad_location_id INTEGER NOT NULL,
	miles INTEGER,
	is_deleted INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (pull_point_id) REFERENCES pull_points(id),
	FOREIGN KEY (pad_location_id) REFERENCES pad_locations(id)
);

CREATE INDEX IF NOT EXISTS idx_route_joins_pair ON route_joins(pull_point_id, pad_location_id);

CREATE TABLE IF NOT EXISTS shipments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	carrier_id INTEGER NOT NULL,
	route_join_id INTEGER NOT NULL,
	contact_id INTEGER NOT NULL,
	vehicle_id INTEGER,
	load_date TEXT,
	is_deleted INTEGER NOT NULL DEFAULT 0,
	is_finished INTEGER NOT NULL DEFAULT 0,
	delivery_date TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (route_join_id) REFERENCES route_joins(id)
);

CREATE TABLE IF NOT EXISTS shipment_details (
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
	bol_path TEXT,
	bol_type TEXT,
	review_date TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (shipment_id) REFERENCES shipments(id)
);

CREATE INDEX IF NOT EXISTS idx_shipment_details_number ON shipment_details(shipment_number);
CREATE INDEX IF NOT EXISTS idx_shipment_details_input ON shipment_details(input_method, input_id);

CREATE TABLE IF NOT EXISTS import_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	payload_json TEXT,
	payload_original TEXT,
	payload_path TEXT,
	image_path TEXT,
	image_original TEXT,
	jobname TEXT,
	terminal TEXT,
	status TEXT,
	carrier TEXT,
	truck TEXT,
	delivery_time TEXT,
	shipment_number TEXT,
	ticket_number TEXT,
	is_processed INTEGER NOT NULL DEFAULT 0,
	shipment_id INTEGER,
	shipment_detail_id INTEGER,
	processed_at TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_import_records_number ON import_records(shipment_number);
`

// InitSchema creates the schema on a fresh database, or runs pending
// migrations on one created by an earlier version.
func InitSchema(db *sql.DB) error {
	var tableCount int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(db)
	}

	var existing int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('shipments', 'import_records')").Scan(&existing)
	if err != nil {
		return err
	}
	if existing > 0 {
		// Unversioned database from an earlier install; let migrations fill gaps.
		if _, err := db.Exec(SchemaSQL); err != nil {
			return fmt.Errorf("failed to create missing tables: %w", err)
		}
		return RunMigrations(db)
	}

	if _, err := db.Exec(SchemaSQL); err != nil {
		return err
	}
	if err := createVersionTable(db); err != nil {
		return err
	}
	// Mark all migrations as applied for fresh installs
	for _, m := range migrations {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
