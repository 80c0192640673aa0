package app

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/example/loadmatch/internal/adapters/payload"
	"github.com/example/loadmatch/internal/adapters/sqlite"
	"github.com/example/loadmatch/internal/core/capability"
	"github.com/example/loadmatch/internal/db"
	"github.com/example/loadmatch/internal/ports/primary"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// setupTestDB creates an in-memory database with the authoritative schema.
// A single connection keeps every statement on the same database.
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

func insert(t *testing.T, testDB *sql.DB, query string, args ...any) int64 {
	t.Helper()
	res, err := testDB.Exec(query, args...)
	require.NoError(t, err, "seed failed: %s", query)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// nullable stores zero ids as NULL.
func nullable(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

// directory holds the ids of the reference rows seeded for every test.
type directory struct {
	carrier    int64
	johnDriver int64
	johnTruck  int64
	mariaTruck int64
	yardA      int64
	site9      int64
	join       int64
}

// seedDirectory seeds John Smith on truck 2512 and Maria Gonzalez on truck
// 3307, both hauling for one carrier, plus the Yard A to Site 9 leg (42 mi).
// Yard B North and South exist without joins so "Yard B" is ambiguous.
func seedDirectory(t *testing.T, testDB *sql.DB) directory {
	t.Helper()
	var d directory
	d.carrier = insert(t, testDB, "INSERT INTO carriers (name) VALUES ('Prairie Haulers')")

	john := insert(t, testDB, "INSERT INTO contacts (first_name, last_name) VALUES ('John', 'Smith')")
	maria := insert(t, testDB, "INSERT INTO contacts (first_name, last_name) VALUES ('Maria', 'Gonzalez')")
	d.johnTruck = insert(t, testDB, "INSERT INTO vehicles (vehicle_number, vehicle_name) VALUES ('2512', 'T-2512')")
	d.mariaTruck = insert(t, testDB, "INSERT INTO vehicles (vehicle_number, vehicle_name) VALUES ('3307', 'T-3307')")
	d.johnDriver = seedDriver(t, testDB, john, d.johnTruck, d.carrier)
	seedDriver(t, testDB, maria, d.mariaTruck, d.carrier)

	d.yardA = insert(t, testDB, "INSERT INTO pull_points (name) VALUES ('Yard A')")
	insert(t, testDB, "INSERT INTO pull_points (name) VALUES ('Yard B - North')")
	insert(t, testDB, "INSERT INTO pull_points (name) VALUES ('Yard B - South')")
	d.site9 = insert(t, testDB, "INSERT INTO pad_locations (name) VALUES ('Site 9')")
	d.join = insert(t, testDB, "INSERT INTO route_joins (pull_point_id, pad_location_id, miles) VALUES (?, ?, 42)", d.yardA, d.site9)
	return d
}

func seedDriver(t *testing.T, testDB *sql.DB, contactID, vehicleID, carrierID int64) int64 {
	t.Helper()
	return insert(t, testDB, "INSERT INTO drivers (contact_id, vehicle_id, carrier_id) VALUES (?, ?, ?)",
		contactID, nullable(vehicleID), nullable(carrierID))
}

// fixture wires the services against one test database.
type fixture struct {
	db       *sql.DB
	dir      directory
	caps     capability.Set
	imports  *sqlite.ImportRepository
	locker   *GroupLocker
	inbound  *InboundServiceImpl
	intake   *IntakeServiceImpl
	resolver *DriverResolver
}

func newFixture(t *testing.T, opts InboundOptions) *fixture {
	t.Helper()
	return newFixtureWithout(t, opts)
}

// newFixtureWithout wires the services as if the schema lacked the given
// optional columns.
func newFixtureWithout(t *testing.T, opts InboundOptions, missing ...capability.Field) *fixture {
	t.Helper()

	testDB := setupTestDB(t)
	dir := seedDirectory(t, testDB)
	caps, err := sqlite.LoadCapabilities(context.Background(), testDB)
	require.NoError(t, err)

	f := wireFixture(testDB, caps.Without(missing...), opts)
	f.dir = dir
	return f
}

// wireFixture builds every service over conn with its own group locker.
func wireFixture(conn *sql.DB, caps capability.Set, opts InboundOptions) *fixture {
	logger := zap.NewNop()
	imports := sqlite.NewImportRepository(conn, caps)
	shipments := sqlite.NewShipmentRepository(conn, caps)
	tx := sqlite.NewTransactor(conn)
	normalizer := payload.NewNormalizer()
	drivers := NewDriverResolver(sqlite.NewDirectoryRepository(conn))
	routes := NewRouteResolver(sqlite.NewLocationRepository(conn))
	locker := NewGroupLocker()

	inbound := NewInboundService(
		imports, shipments, tx,
		NewMatchEngine(normalizer, drivers, routes),
		NewShipmentWriter(caps, shipments, imports, logger),
		locker, opts, logger,
	)
	inbound.newRunID = func() string { return "run-test" }

	return &fixture{
		db:       conn,
		caps:     caps,
		imports:  imports,
		locker:   locker,
		inbound:  inbound,
		intake:   NewIntakeService(imports, normalizer, tx, logger),
		resolver: drivers,
	}
}

// ingest stores one vendor payload as if it was dropped into /inbox.
func (f *fixture) ingest(t *testing.T, payloadJSON string) int64 {
	t.Helper()
	resp, err := f.intake.Ingest(context.Background(), primary.IngestRequest{
		Source: "/inbox/drop.json",
		Data:   []byte(payloadJSON),
	})
	require.NoError(t, err)
	require.Len(t, resp.ImportIDs, 1)
	return resp.ImportIDs[0]
}

func (f *fixture) process(t *testing.T, importID int64) *primary.ProcessResult {
	t.Helper()
	res, err := f.inbound.ProcessImport(context.Background(), importID)
	require.NoError(t, err)
	return res
}

func (f *fixture) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.QueryRow(query, args...).Scan(&n))
	return n
}

func (f *fixture) text(t *testing.T, query string, args ...any) string {
	t.Helper()
	var s sql.NullString
	require.NoError(t, f.db.QueryRow(query, args...).Scan(&s))
	return s.String
}
