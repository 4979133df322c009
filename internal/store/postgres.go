package store

import (
	"context"
	_ "embed"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/planora/event-sync-service/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore is the durable persistence layer for synchronized events:
// the authoritative store the merge engine writes to and the change feed
// and integration queue read from.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  zerolog.Logger

	// markTouchesUpdatedAt selects whether MarkConsumed bumps updated_at,
	// making the mark itself visible through the change feed.
	markTouchesUpdatedAt bool
}

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(dbURL string, log zerolog.Logger, markTouchesUpdatedAt bool) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool:                 pool,
		log:                  log,
		markTouchesUpdatedAt: markTouchesUpdatedAt,
	}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema() error {
	_, err := p.pool.Exec(context.Background(), schemaSQL)
	return err
}

// Ping is used by readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// selectEventColumns is the canonical read column list, shared by the change
// feed and the integration queue so every read path scans identically.
const selectEventColumns = `
	id, title, notes, event_date, event_type, difficulty, duration_minutes,
	start_at, end_at, color, status, provider, account_id, google_id,
	outlook_id, ics_uid, created_at, updated_at, integration_date`

// scanEvents drains a query over selectEventColumns into wire events.
func scanEvents(rows pgx.Rows) ([]models.Event, error) {
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(
			&e.ID,
			&e.Title,
			&e.Notes,
			&e.Date,
			&e.Type,
			&e.Difficulty,
			&e.Duration,
			&e.Start,
			&e.End,
			&e.Color,
			&e.Status,
			&e.Provider,
			&e.AccountID,
			&e.GoogleID,
			&e.OutlookID,
			&e.ICSUID,
			&e.CreatedAt,
			&e.UpdatedAt,
			&e.IntegrationDate,
		); err != nil {
			return nil, err
		}
		e.CreatedAt = e.CreatedAt.UTC()
		e.UpdatedAt = e.UpdatedAt.UTC()
		if e.IntegrationDate != nil {
			t := e.IntegrationDate.UTC()
			e.IntegrationDate = &t
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
