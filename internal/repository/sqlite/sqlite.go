// Package sqlite stores the line catalog and ridership observations in an
// embedded SQLite database, for single-node deployments and local analysis.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // CGo-based SQLite driver

	"github.com/smartcity/transit-optimizer/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS lines (
	id                    INTEGER PRIMARY KEY,
	name                  TEXT NOT NULL,
	origin                TEXT NOT NULL DEFAULT '',
	destination           TEXT NOT NULL DEFAULT '',
	distance_km           REAL NOT NULL DEFAULT 0,
	trip_duration_min     INTEGER NOT NULL DEFAULT 0,
	current_frequency_min INTEGER NOT NULL,
	status                TEXT NOT NULL DEFAULT 'active'
);

CREATE TABLE IF NOT EXISTS ridership (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	line_id      INTEGER NOT NULL,
	stop_id      INTEGER NOT NULL,
	service_date TEXT NOT NULL,
	hour         INTEGER NOT NULL,
	boardings    INTEGER NOT NULL,
	alightings   INTEGER NOT NULL,
	occupancy    INTEGER NOT NULL,
	capacity     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS ridership_service_date_idx ON ridership (service_date);

CREATE TABLE IF NOT EXISTS analysis_runs (
	id                       INTEGER PRIMARY KEY AUTOINCREMENT,
	window_from              TEXT NOT NULL,
	window_to                TEXT NOT NULL,
	lines_analyzed           INTEGER NOT NULL,
	records_accepted         INTEGER NOT NULL,
	records_rejected         INTEGER NOT NULL,
	recommendations          INTEGER NOT NULL,
	lines_changed            INTEGER NOT NULL,
	critical_lines           INTEGER NOT NULL,
	total_wait_reduction_min REAL NOT NULL,
	created_at               TEXT NOT NULL
);
`

// Repository implements domain.RidershipRepository on SQLite
type Repository struct {
	DB *sql.DB
}

// New opens (or creates) the database at path and ensures the schema exists.
// Use ":memory:" for a throwaway database.
func New(ctx context.Context, path string) (*Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: failed to create schema: %w", err)
	}
	return &Repository{DB: db}, nil
}

// Close closes the underlying database
func (r *Repository) Close() error {
	return r.DB.Close()
}

// ListLines returns the line catalog ordered by id
func (r *Repository) ListLines(ctx context.Context) ([]domain.Line, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, origin, destination, distance_km,
			   trip_duration_min, current_frequency_min, status
		FROM lines
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query lines: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Line
	for rows.Next() {
		var l domain.Line
		if err := rows.Scan(
			&l.ID, &l.Name, &l.Origin, &l.Destination, &l.DistanceKm,
			&l.TripDurationMin, &l.CurrentFrequencyMin, &l.Status,
		); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan line row: %w", err)
		}
		results = append(results, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to read lines: %w", err)
	}
	return results, nil
}

// ListRidership returns observations whose service date is within [from, to]
func (r *Repository) ListRidership(ctx context.Context, from, to time.Time) ([]domain.RidershipRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT line_id, stop_id, service_date, hour,
			   boardings, alightings, occupancy, capacity
		FROM ridership
		WHERE service_date BETWEEN ? AND ?
		ORDER BY service_date, hour, line_id, stop_id`,
		domain.ServiceDate(from).Format(domain.DateLayout), domain.ServiceDate(to).Format(domain.DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query ridership: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []domain.RidershipRecord
	for rows.Next() {
		var (
			rec  domain.RidershipRecord
			date string
		)
		if err := rows.Scan(
			&rec.LineID, &rec.StopID, &date, &rec.Hour,
			&rec.Boardings, &rec.Alightings, &rec.Occupancy, &rec.Capacity,
		); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan ridership row: %w", err)
		}
		if rec.Date, err = time.Parse(domain.DateLayout, date); err != nil {
			return nil, fmt.Errorf("sqlite: invalid service date %q: %w", date, err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to read ridership: %w", err)
	}
	return results, nil
}

// SaveAnalysisRun persists a run summary
func (r *Repository) SaveAnalysisRun(ctx context.Context, run domain.AnalysisRun) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO analysis_runs (
			window_from, window_to, lines_analyzed, records_accepted, records_rejected,
			recommendations, lines_changed, critical_lines, total_wait_reduction_min, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.From.Format(time.RFC3339), run.To.Format(time.RFC3339),
		run.LinesAnalyzed, run.RecordsAccepted, run.RecordsRejected,
		run.Recommendations, run.LinesChanged, run.CriticalLines,
		run.TotalWaitReductionMin, run.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("sqlite: failed to save analysis run: %w", err)
	}
	return nil
}

// CountAnalysisRuns returns how many run summaries are stored
func (r *Repository) CountAnalysisRuns(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM analysis_runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: failed to count analysis runs: %w", err)
	}
	return n, nil
}

// Health checks database connectivity
func (r *Repository) Health(ctx context.Context) error {
	if err := r.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: health check failed: %w", err)
	}
	return nil
}

// UpsertLines inserts or replaces catalog lines in one transaction
func (r *Repository) UpsertLines(ctx context.Context, lines []domain.Line) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO lines (
				id, name, origin, destination, distance_km,
				trip_duration_min, current_frequency_min, status
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, l := range lines {
			if _, err := stmt.ExecContext(ctx,
				l.ID, l.Name, l.Origin, l.Destination, l.DistanceKm,
				l.TripDurationMin, l.CurrentFrequencyMin, l.Status,
			); err != nil {
				return fmt.Errorf("line %d: %w", l.ID, err)
			}
		}
		return nil
	})
}

// InsertRidership appends observations in one transaction
func (r *Repository) InsertRidership(ctx context.Context, records []domain.RidershipRecord) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO ridership (
				line_id, stop_id, service_date, hour,
				boardings, alightings, occupancy, capacity
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, rec := range records {
			if _, err := stmt.ExecContext(ctx,
				rec.LineID, rec.StopID, domain.ServiceDate(rec.Date).Format(domain.DateLayout), rec.Hour,
				rec.Boardings, rec.Alightings, rec.Occupancy, rec.Capacity,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: failed to write batch: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: failed to commit: %w", err)
	}
	return nil
}
