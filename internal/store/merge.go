package store

import (
	"context"

	"github.com/planora/event-sync-service/internal/models"
)

// upsertEventSQL merges one sanitized row.
//
// Insert path: the row is stored as given (defaults already applied).
//
// Update path: every field except integration_date is gated by a single
// whole-row condition, excluded.updated_at > events.updated_at. A stale push
// therefore never partially clobbers a newer row, and updated_at never moves
// backward. integration_date follows its own rule: when the caller explicitly
// provided the field ($20), the incoming value wins regardless of timestamps,
// including an explicit NULL; otherwise the stored marker is preserved even
// when the rest of the row is replaced. When neither condition holds, the
// WHERE clause skips the row entirely.
const upsertEventSQL = `
	INSERT INTO events (
		tenant_id, id, title, notes, event_date, event_type, difficulty,
		duration_minutes, start_at, end_at, color, status, provider,
		account_id, google_id, outlook_id, ics_uid,
		created_at, updated_at, integration_date
	)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$21)
	ON CONFLICT (tenant_id, id) DO UPDATE SET
		title            = CASE WHEN excluded.updated_at > events.updated_at THEN excluded.title            ELSE events.title            END,
		notes            = CASE WHEN excluded.updated_at > events.updated_at THEN excluded.notes            ELSE events.notes            END,
		event_date       = CASE WHEN excluded.updated_at > events.updated_at THEN excluded.event_date       ELSE events.event_date       END,
		event_type       = CASE WHEN excluded.updated_at > events.updated_at THEN excluded.event_type       ELSE events.event_type       END,
		difficulty       = CASE WHEN excluded.updated_at > events.updated_at THEN excluded.difficulty       ELSE events.difficulty       END,
		duration_minutes = CASE WHEN excluded.updated_at > events.updated_at THEN excluded.duration_minutes ELSE events.duration_minutes END,
		start_at         = CASE WHEN excluded.updated_at > events.updated_at THEN excluded.start_at         ELSE events.start_at         END,
		end_at           = CASE WHEN excluded.updated_at > events.updated_at THEN excluded.end_at           ELSE events.end_at           END,
		color            = CASE WHEN excluded.updated_at > events.updated_at THEN excluded.color            ELSE events.color            END,
		status           = CASE WHEN excluded.updated_at > events.updated_at THEN excluded.status           ELSE events.status           END,
		provider         = CASE WHEN excluded.updated_at > events.updated_at THEN excluded.provider         ELSE events.provider         END,
		account_id       = CASE WHEN excluded.updated_at > events.updated_at THEN excluded.account_id       ELSE events.account_id       END,
		google_id        = CASE WHEN excluded.updated_at > events.updated_at THEN excluded.google_id        ELSE events.google_id        END,
		outlook_id       = CASE WHEN excluded.updated_at > events.updated_at THEN excluded.outlook_id       ELSE events.outlook_id       END,
		ics_uid          = CASE WHEN excluded.updated_at > events.updated_at THEN excluded.ics_uid          ELSE events.ics_uid          END,
		created_at       = CASE WHEN excluded.updated_at > events.updated_at THEN excluded.created_at       ELSE events.created_at       END,
		integration_date = CASE WHEN $20::boolean THEN excluded.integration_date ELSE events.integration_date END,
		updated_at       = CASE WHEN excluded.updated_at > events.updated_at THEN excluded.updated_at       ELSE events.updated_at       END
	WHERE excluded.updated_at > events.updated_at OR $20::boolean
`

// ApplyBatch merges a sanitized push batch into the store. The whole batch is
// one transaction: a failure partway rolls everything back and the caller
// retries the identical batch, which is safe because merges are timestamp
// gated. Per-row mutual exclusion comes from the upsert itself; concurrent
// batches touching the same id serialize on the row and the losing write's
// fields are discarded by the gate, never interleaved.
func (p *PostgresStore) ApplyBatch(ctx context.Context, tenantID string, batch []models.EventUpsert) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, e := range batch {
		_, err := tx.Exec(ctx, upsertEventSQL,
			tenantID,
			e.ID,
			e.Title,
			e.Notes,
			e.Date,
			e.Type,
			e.Difficulty,
			e.Duration,
			e.Start,
			e.End,
			e.Color,
			e.Status,
			e.Provider,
			e.AccountID,
			e.GoogleID,
			e.OutlookID,
			e.ICSUID,
			e.CreatedAt,
			e.UpdatedAt,
			e.IntegrationDateProvided,
			e.IntegrationDate,
		)
		if err != nil {
			p.log.Error().Err(err).
				Str("tenant_id", tenantID).
				Str("event_id", e.ID).
				Msg("merge upsert failed")
			return err
		}
	}

	return tx.Commit(ctx)
}
