package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartcity/transit-optimizer/internal/domain"
)

// Schema creates the tables read and written by PostgresRepository
const Schema = `
CREATE TABLE IF NOT EXISTS lines (
	id                    INTEGER PRIMARY KEY,
	name                  TEXT NOT NULL,
	origin                TEXT NOT NULL DEFAULT '',
	destination           TEXT NOT NULL DEFAULT '',
	distance_km           DOUBLE PRECISION NOT NULL DEFAULT 0,
	trip_duration_min     INTEGER NOT NULL DEFAULT 0,
	current_frequency_min INTEGER NOT NULL,
	status                TEXT NOT NULL DEFAULT 'active'
);

CREATE TABLE IF NOT EXISTS ridership (
	id           BIGSERIAL PRIMARY KEY,
	line_id      INTEGER NOT NULL,
	stop_id      INTEGER NOT NULL,
	service_date DATE NOT NULL,
	hour         SMALLINT NOT NULL,
	boardings    INTEGER NOT NULL,
	alightings   INTEGER NOT NULL,
	occupancy    INTEGER NOT NULL,
	capacity     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS ridership_service_date_idx ON ridership (service_date);

CREATE TABLE IF NOT EXISTS analysis_runs (
	id                       BIGSERIAL PRIMARY KEY,
	window_from              TIMESTAMPTZ NOT NULL,
	window_to                TIMESTAMPTZ NOT NULL,
	lines_analyzed           INTEGER NOT NULL,
	records_accepted         INTEGER NOT NULL,
	records_rejected         INTEGER NOT NULL,
	recommendations          INTEGER NOT NULL,
	lines_changed            INTEGER NOT NULL,
	critical_lines           INTEGER NOT NULL,
	total_wait_reduction_min DOUBLE PRECISION NOT NULL,
	created_at               TIMESTAMPTZ NOT NULL
);
`

// PostgresRepository implements domain.RidershipRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates missing tables
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("postgres: failed to create schema: %w", err)
	}
	return nil
}

// ListLines retrieves the line catalog from PostgreSQL
func (r *PostgresRepository) ListLines(ctx context.Context) ([]domain.Line, error) {
	query := `
		SELECT id, name, origin, destination, distance_km,
			   trip_duration_min, current_frequency_min, status
		FROM lines
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query lines: %w", err)
	}
	defer rows.Close()

	var results []domain.Line
	for rows.Next() {
		var l domain.Line
		err := rows.Scan(
			&l.ID, &l.Name, &l.Origin, &l.Destination, &l.DistanceKm,
			&l.TripDurationMin, &l.CurrentFrequencyMin, &l.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan line row: %w", err)
		}
		results = append(results, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read lines: %w", err)
	}

	return results, nil
}

// ListRidership retrieves ridership observations between two service dates
func (r *PostgresRepository) ListRidership(ctx context.Context, from, to time.Time) ([]domain.RidershipRecord, error) {
	query := `
		SELECT line_id, stop_id, service_date, hour,
			   boardings, alightings, occupancy, capacity
		FROM ridership
		WHERE service_date BETWEEN $1::date AND $2::date
		ORDER BY service_date, hour, line_id, stop_id
	`

	rows, err := r.pool.Query(ctx, query,
		domain.ServiceDate(from).Format(domain.DateLayout),
		domain.ServiceDate(to).Format(domain.DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query ridership: %w", err)
	}
	defer rows.Close()

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RidershipRecord, error) {
		var rec domain.RidershipRecord
		err := row.Scan(
			&rec.LineID, &rec.StopID, &rec.Date, &rec.Hour,
			&rec.Boardings, &rec.Alightings, &rec.Occupancy, &rec.Capacity,
		)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to scan ridership row: %w", err)
	}

	return results, nil
}

// SaveAnalysisRun persists a run summary to PostgreSQL
func (r *PostgresRepository) SaveAnalysisRun(ctx context.Context, run domain.AnalysisRun) error {
	query := `
		INSERT INTO analysis_runs (
			window_from, window_to, lines_analyzed, records_accepted, records_rejected,
			recommendations, lines_changed, critical_lines, total_wait_reduction_min, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		run.From, run.To, run.LinesAnalyzed, run.RecordsAccepted, run.RecordsRejected,
		run.Recommendations, run.LinesChanged, run.CriticalLines, run.TotalWaitReductionMin, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save analysis run: %w", err)
	}

	return nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
