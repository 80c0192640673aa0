package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/loadmatch/internal/core/capability"
	"github.com/example/loadmatch/internal/ports/secondary"
)

const processedAtLayout = "2006-01-02 15:04:05"

// importText maps an optional text column to its record field.
type importText struct {
	field capability.Field
	ref   func(*secondary.ImportRecord) *string
}

var importTextColumns = []importText{
	{capability.ImportPayloadJSON, func(r *secondary.ImportRecord) *string { return &r.PayloadJSON }},
	{capability.ImportPayloadOriginal, func(r *secondary.ImportRecord) *string { return &r.PayloadOriginal }},
	{capability.ImportPayloadPath, func(r *secondary.ImportRecord) *string { return &r.PayloadPath }},
	{capability.ImportImagePath, func(r *secondary.ImportRecord) *string { return &r.ImagePath }},
	{capability.ImportImageOriginal, func(r *secondary.ImportRecord) *string { return &r.ImageOriginal }},
	{capability.ImportJobName, func(r *secondary.ImportRecord) *string { return &r.JobName }},
	{capability.ImportTerminal, func(r *secondary.ImportRecord) *string { return &r.Terminal }},
	{capability.ImportStatus, func(r *secondary.ImportRecord) *string { return &r.Status }},
	{capability.ImportCarrier, func(r *secondary.ImportRecord) *string { return &r.Carrier }},
	{capability.ImportTruck, func(r *secondary.ImportRecord) *string { return &r.Truck }},
	{capability.ImportDeliveryTime, func(r *secondary.ImportRecord) *string { return &r.DeliveryTime }},
	{capability.ImportShipmentNumber, func(r *secondary.ImportRecord) *string { return &r.ShipmentNumber }},
	{capability.ImportTicketNumber, func(r *secondary.ImportRecord) *string { return &r.TicketNumber }},
	{capability.ImportProcessedAt, func(r *secondary.ImportRecord) *string { return &r.ProcessedAt }},
}

// ImportRepository implements secondary.ImportRepository with SQLite.
// Optional columns missing from the schema read as empty and are never written.
type ImportRepository struct {
	db   *sql.DB
	caps secondary.SchemaCapability
	now  func() time.Time
}

// NewImportRepository creates a new SQLite import record repository.
func NewImportRepository(db *sql.DB, caps secondary.SchemaCapability) *ImportRepository {
	return &ImportRepository{db: db, caps: caps, now: time.Now}
}

func (r *ImportRepository) column(f capability.Field, fallback string) string {
	if r.caps.Has(f) {
		return f.Column
	}
	return fallback
}

func (r *ImportRepository) selectList() string {
	cols := []string{"id", "created_at"}
	for _, c := range importTextColumns {
		cols = append(cols, r.column(c.field, "NULL"))
	}
	cols = append(cols,
		r.column(capability.ImportIsProcessed, "0"),
		r.column(capability.ImportShipmentID, "NULL"),
		r.column(capability.ImportShipmentDetailID, "NULL"),
	)
	return strings.Join(cols, ", ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImport(row rowScanner) (*secondary.ImportRecord, error) {
	var (
		created    sql.NullString
		processed  sql.NullInt64
		shipmentID sql.NullInt64
		detailID   sql.NullInt64
	)
	texts := make([]sql.NullString, len(importTextColumns))

	record := &secondary.ImportRecord{}
	dest := []any{&record.ID, &created}
	for i := range texts {
		dest = append(dest, &texts[i])
	}
	dest = append(dest, &processed, &shipmentID, &detailID)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	record.CreatedAt = created.String
	for i, c := range importTextColumns {
		*c.ref(record) = texts[i].String
	}
	record.IsProcessed = processed.Valid && processed.Int64 == 1
	record.ShipmentID = shipmentID.Int64
	record.ShipmentDetailID = detailID.Int64
	return record, nil
}

// Create stores a new import record and returns its id. Empty fields and
// columns the schema lacks are left out of the insert.
func (r *ImportRepository) Create(ctx context.Context, rec *secondary.ImportRecord) (int64, error) {
	var cols []string
	var args []any
	for _, c := range importTextColumns {
		v := *c.ref(rec)
		if v == "" || !r.caps.Has(c.field) {
			continue
		}
		cols = append(cols, c.field.Column)
		args = append(args, v)
	}
	if rec.CreatedAt != "" {
		cols = append(cols, "created_at")
		args = append(args, rec.CreatedAt)
	}

	query := "INSERT INTO import_records DEFAULT VALUES"
	if len(cols) > 0 {
		query = "INSERT INTO import_records (" + strings.Join(cols, ", ") + ") VALUES (" + placeholders(len(cols)) + ")"
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to create import record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read import record id: %w", err)
	}
	return id, nil
}

// GetByID retrieves an import record by id.
func (r *ImportRepository) GetByID(ctx context.Context, id int64) (*secondary.ImportRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, "SELECT "+r.selectList()+" FROM import_records WHERE id = ?", id)
	record, err := scanImport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("import record %d: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import record: %w", err)
	}
	return record, nil
}

// GetByIDs retrieves the records that exist among ids, ordered by id.
func (r *ImportRepository) GetByIDs(ctx context.Context, ids []int64) ([]*secondary.ImportRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	in, args := inList(ids)
	records, err := r.query(ctx, "SELECT "+r.selectList()+" FROM import_records WHERE id IN ("+in+") ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get import records: %w", err)
	}
	return records, nil
}

// List retrieves records newest first.
func (r *ImportRepository) List(ctx context.Context, filters secondary.ImportFilters) ([]*secondary.ImportRecord, error) {
	query := "SELECT " + r.selectList() + " FROM import_records ORDER BY id DESC"
	var args []any
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}
	records, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list import records: %w", err)
	}
	return records, nil
}

// UpdateTracking overwrites the tracking fields of a record.
func (r *ImportRepository) UpdateTracking(ctx context.Context, importID, shipmentID, detailID int64) error {
	var sets []string
	var args []any
	if r.caps.Has(capability.ImportIsProcessed) {
		sets = append(sets, "is_processed = 1")
	}
	if r.caps.Has(capability.ImportShipmentID) {
		sets = append(sets, "shipment_id = ?")
		args = append(args, shipmentID)
	}
	if r.caps.Has(capability.ImportShipmentDetailID) {
		sets = append(sets, "shipment_detail_id = ?")
		args = append(args, detailID)
	}
	if r.caps.Has(capability.ImportProcessedAt) {
		sets = append(sets, "processed_at = ?")
		args = append(args, r.now().Format(processedAtLayout))
	}
	if err := r.updateTracking(ctx, importID, sets, args); err != nil {
		return fmt.Errorf("failed to update import tracking: %w", err)
	}
	return nil
}

// BackfillTracking fills only the tracking fields that are still unset.
func (r *ImportRepository) BackfillTracking(ctx context.Context, importID, shipmentID, detailID int64) error {
	var sets []string
	var args []any
	if r.caps.Has(capability.ImportIsProcessed) {
		sets = append(sets, "is_processed = 1")
	}
	if r.caps.Has(capability.ImportShipmentID) {
		sets = append(sets, "shipment_id = COALESCE(shipment_id, ?)")
		args = append(args, shipmentID)
	}
	if r.caps.Has(capability.ImportShipmentDetailID) {
		sets = append(sets, "shipment_detail_id = COALESCE(shipment_detail_id, ?)")
		args = append(args, detailID)
	}
	if r.caps.Has(capability.ImportProcessedAt) {
		sets = append(sets, "processed_at = COALESCE(NULLIF(TRIM(processed_at), ''), ?)")
		args = append(args, r.now().Format(processedAtLayout))
	}
	if err := r.updateTracking(ctx, importID, sets, args); err != nil {
		return fmt.Errorf("failed to backfill import tracking: %w", err)
	}
	return nil
}

func (r *ImportRepository) updateTracking(ctx context.Context, importID int64, sets []string, args []any) error {
	if len(sets) == 0 {
		return nil
	}
	args = append(args, importID)
	_, err := conn(ctx, r.db).ExecContext(ctx, "UPDATE import_records SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	return err
}

// keyClause matches a column when the schema has it, else a payload key.
// It returns "" when neither can be matched.
func (r *ImportRepository) keyClause(f capability.Field, jsonPaths []string, value string) (string, []any) {
	if r.caps.Has(f) {
		return "TRIM(" + f.Column + ") = ?", []any{value}
	}
	if !r.caps.Has(capability.ImportPayloadJSON) {
		return "", nil
	}
	var ors []string
	var args []any
	for _, p := range jsonPaths {
		ors = append(ors, "TRIM(json_extract(payload_json, '"+p+"')) = ?")
		args = append(args, value)
	}
	return "(" + strings.Join(ors, " OR ") + ")", args
}

func (r *ImportRepository) truckClause(truck string) (string, []any) {
	if r.caps.Has(capability.ImportTruck) {
		return "TRIM(truck) = ?", []any{truck}
	}
	if !r.caps.Has(capability.ImportPayloadJSON) {
		return "", nil
	}
	return "(TRIM(json_extract(payload_json, '$.truck_number')) = ? OR TRIM(json_extract(payload_json, '$.truck_trailer')) LIKE ?)",
		[]any{truck, "%" + truck + "%"}
}

// FindSupersedable returns the attachment references of every other record
// matching the key. The shipment number must be matchable; the other keys
// narrow the match when they are set and matchable.
func (r *ImportRepository) FindSupersedable(ctx context.Context, key secondary.SupersessionKey, excludeID int64) ([]*secondary.AttachmentRecord, error) {
	hasPath := r.caps.Has(capability.ImportImagePath)
	hasOriginal := r.caps.Has(capability.ImportImageOriginal)
	number := strings.TrimSpace(key.ShipmentNumber)
	if (!hasPath && !hasOriginal) || number == "" {
		return nil, nil
	}

	where := []string{"id <> ?"}
	args := []any{excludeID}

	clause, clauseArgs := r.keyClause(capability.ImportShipmentNumber, []string{"$.loadnumber", "$.load_number", "$.shipment_number"}, number)
	if clause == "" {
		return nil, nil
	}
	where = append(where, clause)
	args = append(args, clauseArgs...)

	narrow := func(clause string, clauseArgs []any) {
		if clause != "" {
			where = append(where, clause)
			args = append(args, clauseArgs...)
		}
	}
	if v := strings.TrimSpace(key.JobName); v != "" {
		narrow(r.keyClause(capability.ImportJobName, []string{"$.jobname"}, v))
	}
	if v := strings.TrimSpace(key.Truck); v != "" {
		narrow(r.truckClause(v))
	}
	if v := strings.TrimSpace(key.Terminal); v != "" {
		narrow(r.keyClause(capability.ImportTerminal, []string{"$.terminal"}, v))
	}

	query := "SELECT id, " + r.column(capability.ImportImagePath, "NULL") + ", " + r.column(capability.ImportImageOriginal, "NULL") +
		" FROM import_records WHERE " + strings.Join(where, " AND ") + " ORDER BY id"
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find supersedable import records: %w", err)
	}
	defer rows.Close()

	var records []*secondary.AttachmentRecord
	for rows.Next() {
		var path, original sql.NullString
		record := &secondary.AttachmentRecord{}
		if err := rows.Scan(&record.ImportID, &path, &original); err != nil {
			return nil, fmt.Errorf("failed to scan attachment record: %w", err)
		}
		record.ImagePath = path.String
		record.ImageOriginal = original.String
		records = append(records, record)
	}
	return records, rows.Err()
}

// UpdateAttachments writes the non-empty attachment references of one record.
func (r *ImportRepository) UpdateAttachments(ctx context.Context, rec *secondary.AttachmentRecord) error {
	var sets []string
	var args []any
	if rec.ImagePath != "" && r.caps.Has(capability.ImportImagePath) {
		sets = append(sets, "image_path = ?")
		args = append(args, rec.ImagePath)
	}
	if rec.ImageOriginal != "" && r.caps.Has(capability.ImportImageOriginal) {
		sets = append(sets, "image_original = ?")
		args = append(args, rec.ImageOriginal)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, rec.ImportID)
	if _, err := conn(ctx, r.db).ExecContext(ctx, "UPDATE import_records SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
		return fmt.Errorf("failed to update import attachments: %w", err)
	}
	return nil
}

func (r *ImportRepository) query(ctx context.Context, query string, args ...any) ([]*secondary.ImportRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*secondary.ImportRecord
	for rows.Next() {
		record, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
