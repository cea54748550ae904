package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/j-veylop/hospital-dashboard-tui/internal/logger"
	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
)

// InsertSnapshot stores a KPI sample and sets its ID.
func (db *DB) InsertSnapshot(ctx context.Context, snap *models.KPISnapshot) error {
	query := `
		INSERT INTO kpi_snapshots (
			recorded_at, occupancy_rate, occupied_beds, total_beds,
			active_admissions, avg_los_days, doctors_present, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	recordedAt := snap.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	status := snap.Status
	if status == "" {
		status = models.StatusAll
	}

	result, err := db.ExecContext(ctx, query,
		recordedAt.UTC().Format(timeLayout),
		snap.OccupancyRate,
		snap.OccupiedBeds,
		snap.TotalBeds,
		snap.ActiveAdmissions,
		snap.AvgLengthOfStayDays,
		snap.DoctorsPresent,
		string(status),
	)
	if err != nil {
		return fmt.Errorf("failed to insert KPI snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		snap.ID = id
	}

	return nil
}

// RecentSnapshots returns up to limit snapshots, oldest first.
func (db *DB) RecentSnapshots(ctx context.Context, limit int) ([]models.KPISnapshot, error) {
	query := `
		SELECT id, recorded_at, occupancy_rate, occupied_beds, total_beds,
			   active_admissions, avg_los_days, doctors_present, status
		FROM (
			SELECT * FROM kpi_snapshots
			ORDER BY recorded_at DESC, id DESC
			LIMIT ?
		)
		ORDER BY recorded_at ASC, id ASC
	`

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query KPI snapshots: %w", err)
	}
	return scanSnapshots(rows)
}

// SnapshotsSince returns every snapshot recorded at or after since, oldest first.
func (db *DB) SnapshotsSince(ctx context.Context, since time.Time) ([]models.KPISnapshot, error) {
	query := `
		SELECT id, recorded_at, occupancy_rate, occupied_beds, total_beds,
			   active_admissions, avg_los_days, doctors_present, status
		FROM kpi_snapshots
		WHERE recorded_at >= ?
		ORDER BY recorded_at ASC, id ASC
	`

	rows, err := db.QueryContext(ctx, query, since.UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query KPI snapshots: %w", err)
	}
	return scanSnapshots(rows)
}

// PruneSnapshots deletes snapshots recorded before cutoff and returns how
// many were removed.
func (db *DB) PruneSnapshots(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.ExecContext(ctx,
		"DELETE FROM kpi_snapshots WHERE recorded_at < ?",
		cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune KPI snapshots: %w", err)
	}
	return result.RowsAffected()
}

// CountSnapshots returns the number of stored snapshots.
func (db *DB) CountSnapshots(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM kpi_snapshots").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count KPI snapshots: %w", err)
	}
	return n, nil
}

func scanSnapshots(rows *sql.Rows) ([]models.KPISnapshot, error) {
	defer func() { _ = rows.Close() }()

	var snaps []models.KPISnapshot
	for rows.Next() {
		var (
			snap       models.KPISnapshot
			recordedAt string
			status     string
		)
		if err := rows.Scan(
			&snap.ID,
			&recordedAt,
			&snap.OccupancyRate,
			&snap.OccupiedBeds,
			&snap.TotalBeds,
			&snap.ActiveAdmissions,
			&snap.AvgLengthOfStayDays,
			&snap.DoctorsPresent,
			&status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan KPI snapshot: %w", err)
		}

		t, err := time.ParseInLocation(timeLayout, recordedAt, time.UTC)
		if err != nil {
			logger.Warn("skipping snapshot with bad timestamp", "id", snap.ID, "recorded_at", recordedAt)
			continue
		}
		snap.RecordedAt = t
		snap.Status = models.Status(status)
		snaps = append(snaps, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate KPI snapshots: %w", err)
	}
	return snaps, nil
}
