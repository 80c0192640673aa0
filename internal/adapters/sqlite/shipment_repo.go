package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/loadmatch/internal/core/capability"
	"github.com/example/loadmatch/internal/core/stage"
	"github.com/example/loadmatch/internal/ports/secondary"
)

// InputMethodImport marks a shipment detail created from an import record.
const InputMethodImport = "IMPORT"

// ShipmentRepository implements secondary.ShipmentRepository with SQLite.
type ShipmentRepository struct {
	db   *sql.DB
	caps secondary.SchemaCapability
}

// NewShipmentRepository creates a new SQLite shipment repository.
func NewShipmentRepository(db *sql.DB, caps secondary.SchemaCapability) *ShipmentRepository {
	return &ShipmentRepository{db: db, caps: caps}
}

func (r *ShipmentRepository) notesExpr() string {
	if r.caps.Has(capability.DetailNotes) {
		return "d.notes"
	}
	return "NULL"
}

// FindByImport returns the group back-referencing importID, or nil.
func (r *ShipmentRepository) FindByImport(ctx context.Context, importID int64) (*secondary.GroupRecord, error) {
	var notes sql.NullString
	record := &secondary.GroupRecord{}
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT d.shipment_id, d.id, "+r.notesExpr()+" FROM shipment_details d WHERE d.input_method = ? AND d.input_id = ? ORDER BY d.id LIMIT 1",
		InputMethodImport, importID,
	).Scan(&record.ShipmentID, &record.DetailID, &notes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find shipment by import: %w", err)
	}
	record.Notes = notes.String
	return record, nil
}

// FindByImports maps each back-referenced import id to its group.
func (r *ShipmentRepository) FindByImports(ctx context.Context, importIDs []int64) (map[int64]*secondary.GroupRecord, error) {
	found := make(map[int64]*secondary.GroupRecord, len(importIDs))
	if len(importIDs) == 0 {
		return found, nil
	}

	placeholders, args := inList(importIDs)
	query := "SELECT d.input_id, d.shipment_id, d.id FROM shipment_details d WHERE d.input_method = ? AND d.input_id IN (" +
		placeholders + ") ORDER BY d.id"
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, append([]any{InputMethodImport}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to find shipments by imports: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var importID int64
		record := &secondary.GroupRecord{}
		if err := rows.Scan(&importID, &record.ShipmentID, &record.DetailID); err != nil {
			return nil, fmt.Errorf("failed to scan back-reference: %w", err)
		}
		if _, ok := found[importID]; !ok {
			found[importID] = record
		}
	}
	return found, rows.Err()
}

// FindGroup returns the most recent active group for the pair, or nil.
func (r *ShipmentRepository) FindGroup(ctx context.Context, joinID int64, shipmentNumber string) (*secondary.GroupRecord, error) {
	var notes sql.NullString
	record := &secondary.GroupRecord{}
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT s.id, d.id, `+r.notesExpr()+`
		FROM shipments s
		JOIN shipment_details d ON d.shipment_id = s.id
		WHERE s.is_deleted = 0 AND s.route_join_id = ? AND d.shipment_number = ?
		ORDER BY s.id DESC, d.id DESC LIMIT 1`,
		joinID, shipmentNumber,
	).Scan(&record.ShipmentID, &record.DetailID, &notes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find shipment group: %w", err)
	}
	record.Notes = notes.String
	return record, nil
}

// Snapshot reads the live state used to infer the group's rank. Only the
// columns present in the capability snapshot are read.
func (r *ShipmentRepository) Snapshot(ctx context.Context, joinID int64, shipmentNumber string) (stage.GroupSnapshot, error) {
	hasReview := r.caps.Has(capability.DetailReviewDate)
	hasFinished := r.caps.Has(capability.ShipmentIsFinished)
	delivery := r.caps.Present(capability.DeliveryFields)
	weights := r.caps.Present(capability.WeightFields)

	cols := []string{"s.id"}
	if hasReview {
		cols = append(cols, "d.review_date")
	}
	if hasFinished {
		cols = append(cols, "s.is_finished")
	}
	for _, f := range delivery {
		cols = append(cols, qualified(f))
	}
	for _, f := range weights {
		cols = append(cols, qualified(f))
	}

	var (
		shipmentID int64
		review     sql.NullString
		finished   sql.NullInt64
	)
	deliveryVals := make([]sql.NullString, len(delivery))
	weightVals := make([]sql.NullFloat64, len(weights))

	dest := []any{&shipmentID}
	if hasReview {
		dest = append(dest, &review)
	}
	if hasFinished {
		dest = append(dest, &finished)
	}
	for i := range deliveryVals {
		dest = append(dest, &deliveryVals[i])
	}
	for i := range weightVals {
		dest = append(dest, &weightVals[i])
	}

	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+strings.Join(cols, ", ")+`
		FROM shipments s
		JOIN shipment_details d ON d.shipment_id = s.id
		WHERE s.is_deleted = 0 AND s.route_join_id = ? AND d.shipment_number = ?
		ORDER BY s.id DESC, d.id DESC LIMIT 1`,
		joinID, shipmentNumber,
	).Scan(dest...)
	if err == sql.ErrNoRows {
		return stage.GroupSnapshot{}, nil
	}
	if err != nil {
		return stage.GroupSnapshot{}, fmt.Errorf("failed to read shipment group state: %w", err)
	}

	snap := stage.GroupSnapshot{
		Exists:        true,
		ReviewDateSet: review.Valid && strings.TrimSpace(review.String) != "",
		Finished:      finished.Valid && finished.Int64 == 1,
	}
	for _, v := range deliveryVals {
		if v.Valid && strings.TrimSpace(v.String) != "" {
			snap.DeliverySet = true
		}
	}
	for _, v := range weightVals {
		if v.Valid {
			snap.Weights = append(snap.Weights, v.Float64)
		}
	}
	return snap, nil
}

// Create inserts a shipment and its detail and returns both ids.
func (r *ShipmentRepository) Create(ctx context.Context, shipment *secondary.ShipmentRecord, detail *secondary.ShipmentDetailRecord) (*secondary.GroupRecord, error) {
	q := conn(ctx, r.db)

	res, err := q.ExecContext(ctx,
		"INSERT INTO shipments (carrier_id, route_join_id, contact_id, vehicle_id, load_date, is_deleted) VALUES (?, ?, ?, ?, ?, 0)",
		shipment.CarrierID, shipment.RouteJoinID, shipment.ContactID, nullInt(shipment.VehicleID), nullString(shipment.LoadDate),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create shipment: %w", err)
	}
	shipmentID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read shipment id: %w", err)
	}

	cols := []string{"shipment_id", "input_method", "input_id", "shipment_number", "truck_number", "trailer_number", "miles"}
	args := []any{shipmentID, InputMethodImport, detail.ImportID, detail.ShipmentNumber,
		nullString(detail.TruckNumber), nullString(detail.TrailerNumber), detail.Miles}
	if detail.Notes != "" && r.caps.Has(capability.DetailNotes) {
		cols = append(cols, "notes")
		args = append(args, detail.Notes)
	}

	res, err = q.ExecContext(ctx,
		"INSERT INTO shipment_details ("+strings.Join(cols, ", ")+") VALUES ("+placeholders(len(cols))+")",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create shipment detail: %w", err)
	}
	detailID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read shipment detail id: %w", err)
	}

	return &secondary.GroupRecord{ShipmentID: shipmentID, DetailID: detailID, Notes: detail.Notes}, nil
}

// UpdateShipment writes the given fields on a shipment row.
func (r *ShipmentRepository) UpdateShipment(ctx context.Context, shipmentID int64, fields []secondary.FieldValue) error {
	if err := r.update(ctx, capability.TableShipments, shipmentID, fields); err != nil {
		return fmt.Errorf("failed to update shipment: %w", err)
	}
	return nil
}

// UpdateDetail writes the given fields on a shipment detail row.
func (r *ShipmentRepository) UpdateDetail(ctx context.Context, detailID int64, fields []secondary.FieldValue) error {
	if err := r.update(ctx, capability.TableShipmentDetails, detailID, fields); err != nil {
		return fmt.Errorf("failed to update shipment detail: %w", err)
	}
	return nil
}

func (r *ShipmentRepository) update(ctx context.Context, table string, id int64, fields []secondary.FieldValue) error {
	if len(fields) == 0 {
		return nil
	}
	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for _, fv := range fields {
		if fv.Field.Table != table {
			return fmt.Errorf("field %s does not belong to %s", fv.Field, table)
		}
		sets = append(sets, fv.Field.Column+" = ?")
		args = append(args, fv.Value)
	}
	args = append(args, id)
	_, err := conn(ctx, r.db).ExecContext(ctx, "UPDATE "+table+" SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	return err
}

func qualified(f capability.Field) string {
	if f.Table == capability.TableShipments {
		return "s." + f.Column
	}
	return "d." + f.Column
}
