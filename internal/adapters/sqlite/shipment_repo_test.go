package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/loadmatch/internal/adapters/sqlite"
	"github.com/example/loadmatch/internal/core/capability"
	"github.com/example/loadmatch/internal/ports/secondary"
)

type shipmentFixture struct {
	db      *sql.DB
	repo    *sqlite.ShipmentRepository
	carrier int64
	contact int64
	vehicle int64
	joinID  int64
}

func setupShipmentFixture(t *testing.T) *shipmentFixture {
	t.Helper()
	testDB := setupTestDB(t)
	f := &shipmentFixture{db: testDB}
	f.carrier = seedCarrier(t, testDB, "Prairie Haulers")
	f.contact = seedContact(t, testDB, "John", "Smith")
	f.vehicle = seedVehicle(t, testDB, "2512", "T-2512")
	seedDriver(t, testDB, f.contact, f.vehicle, f.carrier)
	f.joinID = seedJoin(t, testDB, seedPullPoint(t, testDB, "Yard A"), seedPad(t, testDB, "Site 9"), 42)
	f.repo = sqlite.NewShipmentRepository(testDB, loadCaps(t, testDB))
	return f
}

func (f *shipmentFixture) create(t *testing.T, importID int64, number, notes string) *secondary.GroupRecord {
	t.Helper()
	miles := int64(42)
	group, err := f.repo.Create(context.Background(),
		&secondary.ShipmentRecord{
			CarrierID:   f.carrier,
			RouteJoinID: f.joinID,
			ContactID:   f.contact,
			VehicleID:   f.vehicle,
			LoadDate:    "2025-01-15",
		},
		&secondary.ShipmentDetailRecord{
			ImportID:       importID,
			ShipmentNumber: number,
			TruckNumber:    "2512",
			Miles:          &miles,
			Notes:          notes,
		},
	)
	require.NoError(t, err)
	return group
}

func TestShipmentRepository_CreateAndFind(t *testing.T) {
	f := setupShipmentFixture(t)
	ctx := context.Background()

	group := f.create(t, 7, "741", "BOXES:1,2")
	assert.NotZero(t, group.ShipmentID)
	assert.NotZero(t, group.DetailID)

	var method, loadDate string
	var inputID, miles int64
	err := f.db.QueryRow(`SELECT d.input_method, d.input_id, d.miles, s.load_date
		FROM shipment_details d JOIN shipments s ON s.id = d.shipment_id WHERE d.id = ?`, group.DetailID).
		Scan(&method, &inputID, &miles, &loadDate)
	require.NoError(t, err)
	assert.Equal(t, sqlite.InputMethodImport, method)
	assert.Equal(t, int64(7), inputID)
	assert.Equal(t, int64(42), miles)
	assert.Equal(t, "2025-01-15", loadDate)

	byImport, err := f.repo.FindByImport(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, byImport)
	assert.Equal(t, group.DetailID, byImport.DetailID)
	assert.Equal(t, "BOXES:1,2", byImport.Notes)

	none, err := f.repo.FindByImport(ctx, 8)
	require.NoError(t, err)
	assert.Nil(t, none)

	found, err := f.repo.FindGroup(ctx, f.joinID, "741")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, group.ShipmentID, found.ShipmentID)

	otherNumber, err := f.repo.FindGroup(ctx, f.joinID, "742")
	require.NoError(t, err)
	assert.Nil(t, otherNumber)

	otherJoin, err := f.repo.FindGroup(ctx, f.joinID+1, "741")
	require.NoError(t, err)
	assert.Nil(t, otherJoin)
}

func TestShipmentRepository_FindGroupPrefersNewestAndSkipsDeleted(t *testing.T) {
	f := setupShipmentFixture(t)
	ctx := context.Background()

	older := f.create(t, 1, "741", "")
	newer := f.create(t, 2, "741", "")

	got, err := f.repo.FindGroup(ctx, f.joinID, "741")
	require.NoError(t, err)
	assert.Equal(t, newer.ShipmentID, got.ShipmentID)

	_, err = f.db.Exec("UPDATE shipments SET is_deleted = 1 WHERE id = ?", newer.ShipmentID)
	require.NoError(t, err)

	got, err = f.repo.FindGroup(ctx, f.joinID, "741")
	require.NoError(t, err)
	assert.Equal(t, older.ShipmentID, got.ShipmentID)
}

func TestShipmentRepository_FindByImports(t *testing.T) {
	f := setupShipmentFixture(t)

	a := f.create(t, 10, "741", "")
	b := f.create(t, 11, "742", "")

	got, err := f.repo.FindByImports(context.Background(), []int64{10, 11, 12})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.DetailID, got[10].DetailID)
	assert.Equal(t, b.DetailID, got[11].DetailID)

	empty, err := f.repo.FindByImports(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestShipmentRepository_Snapshot(t *testing.T) {
	f := setupShipmentFixture(t)
	ctx := context.Background()

	snap, err := f.repo.Snapshot(ctx, f.joinID, "741")
	require.NoError(t, err)
	assert.False(t, snap.Exists)

	group := f.create(t, 1, "741", "")
	snap, err = f.repo.Snapshot(ctx, f.joinID, "741")
	require.NoError(t, err)
	assert.True(t, snap.Exists)
	assert.Empty(t, snap.Weights)
	assert.False(t, snap.DeliverySet)

	require.NoError(t, f.repo.UpdateDetail(ctx, group.DetailID, []secondary.FieldValue{
		{Field: capability.DetailNetLbs, Value: int64(42780)},
		{Field: capability.DetailTons, Value: 21.39},
	}))
	require.NoError(t, f.repo.UpdateShipment(ctx, group.ShipmentID, []secondary.FieldValue{
		{Field: capability.ShipmentDeliveryDate, Value: "2025-01-16 09:30:00"},
		{Field: capability.ShipmentIsFinished, Value: 1},
	}))
	require.NoError(t, f.repo.UpdateDetail(ctx, group.DetailID, []secondary.FieldValue{
		{Field: capability.DetailReviewDate, Value: "2025-01-17 08:00:00"},
	}))

	snap, err = f.repo.Snapshot(ctx, f.joinID, "741")
	require.NoError(t, err)
	assert.Equal(t, []float64{42780, 21.39}, snap.Weights)
	assert.True(t, snap.DeliverySet)
	assert.True(t, snap.Finished)
	assert.True(t, snap.ReviewDateSet)
}

func TestShipmentRepository_SnapshotIgnoresMissingColumns(t *testing.T) {
	f := setupShipmentFixture(t)
	ctx := context.Background()

	group := f.create(t, 1, "741", "")
	require.NoError(t, f.repo.UpdateDetail(ctx, group.DetailID, []secondary.FieldValue{
		{Field: capability.DetailReviewDate, Value: "2025-01-17 08:00:00"},
	}))

	caps := loadCaps(t, f.db).Without(capability.DetailReviewDate)
	narrow := sqlite.NewShipmentRepository(f.db, caps)

	snap, err := narrow.Snapshot(ctx, f.joinID, "741")
	require.NoError(t, err)
	assert.True(t, snap.Exists)
	assert.False(t, snap.ReviewDateSet)
}

func TestShipmentRepository_CreateWithoutNotesColumn(t *testing.T) {
	f := setupShipmentFixture(t)
	caps := loadCaps(t, f.db).Without(capability.DetailNotes)
	narrow := sqlite.NewShipmentRepository(f.db, caps)

	group, err := narrow.Create(context.Background(),
		&secondary.ShipmentRecord{CarrierID: f.carrier, RouteJoinID: f.joinID, ContactID: f.contact},
		&secondary.ShipmentDetailRecord{ImportID: 3, ShipmentNumber: "741", Notes: "BOXES:1"},
	)
	require.NoError(t, err)

	var notes sql.NullString
	require.NoError(t, f.db.QueryRow("SELECT notes FROM shipment_details WHERE id = ?", group.DetailID).Scan(&notes))
	assert.False(t, notes.Valid)
}

func TestShipmentRepository_UpdateRejectsForeignField(t *testing.T) {
	f := setupShipmentFixture(t)
	group := f.create(t, 1, "741", "")

	err := f.repo.UpdateShipment(context.Background(), group.ShipmentID, []secondary.FieldValue{
		{Field: capability.DetailTons, Value: 1.0},
	})
	assert.Error(t, err)
}
