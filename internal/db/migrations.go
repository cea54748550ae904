package db

import (
	"context"
	"fmt"
)

// migrations are applied in order; the index+1 of the last applied entry is
// stored in PRAGMA user_version.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS kpi_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		recorded_at TEXT NOT NULL,
		occupancy_rate REAL NOT NULL DEFAULT 0,
		occupied_beds INTEGER NOT NULL DEFAULT 0,
		total_beds INTEGER NOT NULL DEFAULT 0,
		active_admissions INTEGER NOT NULL DEFAULT 0,
		avg_los_days REAL NOT NULL DEFAULT 0,
		doctors_present INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_kpi_snapshots_recorded_at ON kpi_snapshots(recorded_at);`,

	`ALTER TABLE kpi_snapshots ADD COLUMN status TEXT NOT NULL DEFAULT 'all';`,
}

// SchemaVersion returns the number of applied migrations.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (db *DB) migrate(ctx context.Context) error {
	version, err := db.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for i := version; i < len(migrations); i++ {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		// PRAGMA does not accept bound parameters.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}

	return nil
}
