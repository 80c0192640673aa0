package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/loadmatch/internal/ports/secondary"
)

// LocationRepository implements secondary.LocationRepository with SQLite.
type LocationRepository struct {
	db *sql.DB
}

// NewLocationRepository creates a new SQLite location repository.
func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// ListPullPoints returns active pull points ordered by id.
func (r *LocationRepository) ListPullPoints(ctx context.Context) ([]*secondary.LocationRecord, error) {
	locations, err := r.list(ctx, "pull_points")
	if err != nil {
		return nil, fmt.Errorf("failed to list pull points: %w", err)
	}
	return locations, nil
}

// ListPadLocations returns active pad locations ordered by id.
func (r *LocationRepository) ListPadLocations(ctx context.Context) ([]*secondary.LocationRecord, error) {
	locations, err := r.list(ctx, "pad_locations")
	if err != nil {
		return nil, fmt.Errorf("failed to list pad locations: %w", err)
	}
	return locations, nil
}

// FindJoin returns the active join for the exact pair, or nil.
func (r *LocationRepository) FindJoin(ctx context.Context, pullPointID, padLocationID int64) (*secondary.JoinRecord, error) {
	var miles sql.NullInt64
	record := &secondary.JoinRecord{}
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, miles FROM route_joins
		WHERE is_deleted = 0 AND pull_point_id = ? AND pad_location_id = ?
		ORDER BY id LIMIT 1`,
		pullPointID, padLocationID,
	).Scan(&record.ID, &miles)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find route join: %w", err)
	}
	if miles.Valid {
		m := miles.Int64
		record.Miles = &m
	}
	return record, nil
}

func (r *LocationRepository) list(ctx context.Context, table string) ([]*secondary.LocationRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, "SELECT id, name FROM "+table+" WHERE is_deleted = 0 ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*secondary.LocationRecord
	for rows.Next() {
		record := &secondary.LocationRecord{}
		if err := rows.Scan(&record.ID, &record.Name); err != nil {
			return nil, err
		}
		locations = append(locations, record)
	}
	return locations, rows.Err()
}
