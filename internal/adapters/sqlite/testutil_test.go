// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() so tests run against the
// authoritative schema. Do not hardcode CREATE TABLE statements in test
// files; use setupTestDB() and the seed* helpers instead. Tests that need an
// older schema drop columns from the capability set rather than the table.
package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/loadmatch/internal/adapters/sqlite"
	"github.com/example/loadmatch/internal/core/capability"
	"github.com/example/loadmatch/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// One connection keeps every statement on the same in-memory database, so a
// test must not call a non-transactional repository method while a
// transaction is open.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open(db.DriverName, ":memory:")
	require.NoError(t, err, "failed to open test db")
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	require.NoError(t, err, "failed to create schema")

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// loadCaps snapshots the capabilities of the test schema.
func loadCaps(t *testing.T, testDB *sql.DB) capability.Set {
	t.Helper()
	caps, err := sqlite.LoadCapabilities(context.Background(), testDB)
	require.NoError(t, err, "failed to load capabilities")
	return caps
}

func insert(t *testing.T, testDB *sql.DB, query string, args ...any) int64 {
	t.Helper()
	res, err := testDB.Exec(query, args...)
	require.NoError(t, err, "seed failed: %s", query)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// seedCarrier inserts a carrier and returns its ID.
func seedCarrier(t *testing.T, testDB *sql.DB, name string) int64 {
	t.Helper()
	return insert(t, testDB, "INSERT INTO carriers (name) VALUES (?)", name)
}

// seedContact inserts a contact and returns its ID.
func seedContact(t *testing.T, testDB *sql.DB, first, last string) int64 {
	t.Helper()
	return insert(t, testDB, "INSERT INTO contacts (first_name, last_name) VALUES (?, ?)", first, last)
}

// seedVehicle inserts a vehicle and returns its ID.
func seedVehicle(t *testing.T, testDB *sql.DB, number, name string) int64 {
	t.Helper()
	return insert(t, testDB, "INSERT INTO vehicles (vehicle_number, vehicle_name) VALUES (?, ?)", number, name)
}

// seedDriver inserts a driver row. A zero vehicleID stores NULL.
func seedDriver(t *testing.T, testDB *sql.DB, contactID, vehicleID, carrierID int64) int64 {
	t.Helper()
	var vehicle any
	if vehicleID != 0 {
		vehicle = vehicleID
	}
	return insert(t, testDB, "INSERT INTO drivers (contact_id, vehicle_id, carrier_id) VALUES (?, ?, ?)", contactID, vehicle, carrierID)
}

// seedPullPoint inserts a pull point and returns its ID.
func seedPullPoint(t *testing.T, testDB *sql.DB, name string) int64 {
	t.Helper()
	return insert(t, testDB, "INSERT INTO pull_points (name) VALUES (?)", name)
}

// seedPad inserts a pad location and returns its ID.
func seedPad(t *testing.T, testDB *sql.DB, name string) int64 {
	t.Helper()
	return insert(t, testDB, "INSERT INTO pad_locations (name) VALUES (?)", name)
}

// seedJoin inserts a route join and returns its ID.
func seedJoin(t *testing.T, testDB *sql.DB, pullPointID, padID int64, miles int64) int64 {
	t.Helper()
	return insert(t, testDB, "INSERT INTO route_joins (pull_point_id, pad_location_id, miles) VALUES (?, ?, ?)", pullPointID, padID, miles)
}

// seedImport inserts an import record with a payload and shipment number.
func seedImport(t *testing.T, testDB *sql.DB, payload, shipmentNumber string) int64 {
	t.Helper()
	return insert(t, testDB, "INSERT INTO import_records (payload_json, shipment_number) VALUES (?, ?)", payload, shipmentNumber)
}
