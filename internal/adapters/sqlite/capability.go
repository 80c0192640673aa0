package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/loadmatch/internal/core/capability"
)

// LoadCapabilities snapshots which known tables and optional columns exist.
// It is called once at startup; the returned Set never changes.
func LoadCapabilities(ctx context.Context, db *sql.DB) (capability.Set, error) {
	tables := []string{capability.TableShipments, capability.TableShipmentDetails, capability.TableImportRecords}

	var present []string
	var fields []capability.Field
	for _, table := range tables {
		columns, err := tableColumns(ctx, db, table)
		if err != nil {
			return capability.Set{}, err
		}
		if len(columns) == 0 {
			continue
		}
		present = append(present, table)
		for _, f := range capability.All {
			if f.Table == table && columns[f.Column] {
				fields = append(fields, f)
			}
		}
	}

	return capability.NewSet(present, fields), nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
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
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		columns[name] = true
	}
	return columns, rows.Err()
}
