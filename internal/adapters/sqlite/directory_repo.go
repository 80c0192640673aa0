package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/loadmatch/internal/ports/secondary"
)

const fullNameExpr = "LOWER(TRIM(TRIM(COALESCE(first_name, '')) || ' ' || TRIM(COALESCE(last_name, ''))))"

// DirectoryRepository implements secondary.DirectoryRepository with SQLite.
type DirectoryRepository struct {
	db *sql.DB
}

// NewDirectoryRepository creates a new SQLite directory repository.
func NewDirectoryRepository(db *sql.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// FindContactByFullName returns the first contact whose normalized full name equals normFull.
func (r *DirectoryRepository) FindContactByFullName(ctx context.Context, normFull string) (*secondary.ContactRecord, error) {
	contacts, err := r.queryContacts(ctx, "SELECT id, first_name, last_name FROM contacts WHERE "+fullNameExpr+" = ? ORDER BY id LIMIT 1", normFull)
	if err != nil {
		return nil, fmt.Errorf("failed to find contact by name: %w", err)
	}
	if len(contacts) == 0 {
		return nil, nil
	}
	return contacts[0], nil
}

// FindContactsLike returns contacts whose full name contains normFull.
func (r *DirectoryRepository) FindContactsLike(ctx context.Context, normFull string, limit int) ([]*secondary.ContactRecord, error) {
	contacts, err := r.queryContacts(ctx,
		"SELECT id, first_name, last_name FROM contacts WHERE "+fullNameExpr+" LIKE ? ORDER BY id LIMIT ?",
		"%"+normFull+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find contacts by partial name: %w", err)
	}
	return contacts, nil
}

// FindContactsByLastNameSoundex returns contacts whose last name sounds like lastName.
func (r *DirectoryRepository) FindContactsByLastNameSoundex(ctx context.Context, lastName string, limit int) ([]*secondary.ContactRecord, error) {
	contacts, err := r.queryContacts(ctx,
		"SELECT id, first_name, last_name FROM contacts WHERE soundex(TRIM(COALESCE(last_name, ''))) = soundex(?) ORDER BY id LIMIT ?",
		lastName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find contacts by last name sound: %w", err)
	}
	return contacts, nil
}

// FindContactsByFirstNameSoundex returns contacts whose first name sounds like firstName.
func (r *DirectoryRepository) FindContactsByFirstNameSoundex(ctx context.Context, firstName string, limit int) ([]*secondary.ContactRecord, error) {
	contacts, err := r.queryContacts(ctx,
		"SELECT id, first_name, last_name FROM contacts WHERE soundex(TRIM(COALESCE(first_name, ''))) = soundex(?) ORDER BY id LIMIT ?",
		firstName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find contacts by first name sound: %w", err)
	}
	return contacts, nil
}

// FindContactsByFirstNamePrefix returns contacts whose first name starts with prefix.
func (r *DirectoryRepository) FindContactsByFirstNamePrefix(ctx context.Context, prefix string, limit int) ([]*secondary.ContactRecord, error) {
	contacts, err := r.queryContacts(ctx,
		"SELECT id, first_name, last_name FROM contacts WHERE LOWER(TRIM(COALESCE(first_name, ''))) LIKE ? ORDER BY id LIMIT ?",
		prefix+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find contacts by first name prefix: %w", err)
	}
	return contacts, nil
}

// GetDriverByContact returns the driver row for a contact, or nil.
func (r *DirectoryRepository) GetDriverByContact(ctx context.Context, contactID int64) (*secondary.DriverRecord, error) {
	return r.getDriver(ctx, "contact_id", contactID)
}

// GetDriverByVehicle returns the driver row for a vehicle, or nil.
func (r *DirectoryRepository) GetDriverByVehicle(ctx context.Context, vehicleID int64) (*secondary.DriverRecord, error) {
	return r.getDriver(ctx, "vehicle_id", vehicleID)
}

// FindVehicleByNumber returns the vehicle whose number or name equals truckNorm, or nil.
func (r *DirectoryRepository) FindVehicleByNumber(ctx context.Context, truckNorm string) (*secondary.VehicleRecord, error) {
	var number, name sql.NullString
	record := &secondary.VehicleRecord{}
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, vehicle_number, vehicle_name FROM vehicles
		WHERE LOWER(TRIM(vehicle_number)) = ? OR LOWER(TRIM(vehicle_name)) = ?
		ORDER BY id LIMIT 1`,
		truckNorm, truckNorm,
	).Scan(&record.ID, &number, &name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find vehicle: %w", err)
	}
	record.Number = number.String
	record.Name = name.String
	return record, nil
}

func (r *DirectoryRepository) getDriver(ctx context.Context, column string, id int64) (*secondary.DriverRecord, error) {
	var vehicleID, carrierID sql.NullInt64
	record := &secondary.DriverRecord{}
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT id, contact_id, vehicle_id, carrier_id FROM drivers WHERE "+column+" = ? ORDER BY id LIMIT 1",
		id,
	).Scan(&record.ID, &record.ContactID, &vehicleID, &carrierID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get driver by %s: %w", column, err)
	}
	record.VehicleID = vehicleID.Int64
	record.CarrierID = carrierID.Int64
	return record, nil
}

func (r *DirectoryRepository) queryContacts(ctx context.Context, query string, args ...any) ([]*secondary.ContactRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*secondary.ContactRecord
	for rows.Next() {
		var first, last sql.NullString
		record := &secondary.ContactRecord{}
		if err := rows.Scan(&record.ID, &first, &last); err != nil {
			return nil, err
		}
		record.FirstName = first.String
		record.LastName = last.String
		contacts = append(contacts, record)
	}
	return contacts, rows.Err()
}
