package db

import (
	"database/sql"
	"fmt"
)

// SeedDemo populates the reference tables with a small demo directory: one
// carrier, three drivers with trucks, three pull points, three pads and the
// route joins between them. It refuses to run on a database that already
// has carriers.
func SeedDemo(database *sql.DB) error {
	var n int
	if err := database.QueryRow("SELECT COUNT(*) FROM carriers").Scan(&n); err != nil {
		return fmt.Errorf("seed check: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("reference data already present (%d carriers)", n)
	}

	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	stmts := []struct {
		what string
		sql  string
		args []any
	}{
		{"carriers", "INSERT INTO carriers (id, name) VALUES (?, ?)", []any{1, "Prairie Haulers"}},
		{"contacts", "INSERT INTO contacts (id, first_name, last_name) VALUES (?, ?, ?)", []any{1, "John", "Smith"}},
		{"contacts", "INSERT INTO contacts (id, first_name, last_name) VALUES (?, ?, ?)", []any{2, "Maria", "Gonzalez"}},
		{"contacts", "INSERT INTO contacts (id, first_name, last_name) VALUES (?, ?, ?)", []any{3, "Dale", "Okafor"}},
		{"vehicles", "INSERT INTO vehicles (id, vehicle_number, vehicle_name) VALUES (?, ?, ?)", []any{1, "2512", "T-2512"}},
		{"vehicles", "INSERT INTO vehicles (id, vehicle_number, vehicle_name) VALUES (?, ?, ?)", []any{2, "3307", "T-3307"}},
		{"vehicles", "INSERT INTO vehicles (id, vehicle_number, vehicle_name) VALUES (?, ?, ?)", []any{3, "4410", "T-4410"}},
		{"drivers", "INSERT INTO drivers (id, contact_id, vehicle_id, carrier_id) VALUES (?, ?, ?, ?)", []any{1, 1, 1, 1}},
		{"drivers", "INSERT INTO drivers (id, contact_id, vehicle_id, carrier_id) VALUES (?, ?, ?, ?)", []any{2, 2, 2, 1}},
		{"drivers", "INSERT INTO drivers (id, contact_id, vehicle_id, carrier_id) VALUES (?, ?, ?, ?)", []any{3, 3, 3, 1}},
		{"pull_points", "INSERT INTO pull_points (id, name) VALUES (?, ?)", []any{1, "Yard A"}},
		{"pull_points", "INSERT INTO pull_points (id, name) VALUES (?, ?)", []any{2, "Yard B - North"}},
		{"pull_points", "INSERT INTO pull_points (id, name) VALUES (?, ?)", []any{3, "Yard B - South"}},
		{"pad_locations", "INSERT INTO pad_locations (id, name) VALUES (?, ?)", []any{1, "Site 9"}},
		{"pad_locations", "INSERT INTO pad_locations (id, name) VALUES (?, ?)", []any{2, "Hilltop East"}},
		{"pad_locations", "INSERT INTO pad_locations (id, name) VALUES (?, ?)", []any{3, "Riverbend 4/Pad C"}},
		{"route_joins", "INSERT INTO route_joins (pull_point_id, pad_location_id, miles) VALUES (?, ?, ?)", []any{1, 1, 42}},
		{"route_joins", "INSERT INTO route_joins (pull_point_id, pad_location_id, miles) VALUES (?, ?, ?)", []any{1, 2, 57}},
		{"route_joins", "INSERT INTO route_joins (pull_point_id, pad_location_id, miles) VALUES (?, ?, ?)", []any{2, 1, 38}},
		{"route_joins", "INSERT INTO route_joins (pull_point_id, pad_location_id, miles) VALUES (?, ?, ?)", []any{3, 3, 71}},
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s.sql, s.args...); err != nil {
			return fmt.Errorf("seed %s: %w", s.what, err)
		}
	}

	return tx.Commit()
}
