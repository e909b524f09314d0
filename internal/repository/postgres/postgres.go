package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/weatherlookup/backend/internal/domain"
)

// Schema creates the lookup log table when missing
const Schema = `
	CREATE TABLE IF NOT EXISTS lookup_log (
		id          BIGSERIAL PRIMARY KEY,
		query       TEXT        NOT NULL,
		state       TEXT        NOT NULL,
		condition   TEXT,
		description TEXT,
		temperature INTEGER,
		humidity    INTEGER,
		wind_speed  DOUBLE PRECISION,
		city        TEXT,
		country     TEXT,
		timestamp   TIMESTAMPTZ NOT NULL
	)
`

// PostgresRepository implements domain.LookupRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate applies Schema
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("postgres: failed to migrate: %w", err)
	}
	return nil
}

// SaveLookup persists a lookup to PostgreSQL
func (r *PostgresRepository) SaveLookup(ctx context.Context, rec domain.LookupRecord) error {
	query := `
		INSERT INTO lookup_log (
			query, state, condition, description, temperature,
			humidity, wind_speed, city, country, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		rec.Query, string(rec.State), nullable(string(rec.Condition)), nullable(rec.Description), rec.Temp,
		rec.Humidity, rec.WindSpeed, nullable(rec.City), nullable(rec.Country), rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save lookup: %w", err)
	}

	return nil
}

// RecentLookups retrieves the newest lookups from PostgreSQL
func (r *PostgresRepository) RecentLookups(ctx context.Context, limit int) ([]domain.LookupRecord, error) {
	query := `
		SELECT query, state, COALESCE(condition, ''), COALESCE(description, ''), temperature,
			   humidity, wind_speed, COALESCE(city, ''), COALESCE(country, ''), timestamp
		FROM lookup_log
		ORDER BY timestamp DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query lookups: %w", err)
	}
	defer rows.Close()

	var results []domain.LookupRecord
	for rows.Next() {
		var (
			rec       domain.LookupRecord
			state     string
			condition string
		)
		err := rows.Scan(
			&rec.Query, &state, &condition, &rec.Description, &rec.Temp,
			&rec.Humidity, &rec.WindSpeed, &rec.City, &rec.Country, &rec.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan lookup row: %w", err)
		}
		rec.State = domain.OutcomeState(state)
		rec.Condition = domain.Condition(condition)
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate lookups: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

// nullable maps empty strings to SQL NULL
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
