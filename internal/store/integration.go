package store

import (
	"context"
	"time"

	"github.com/planora/event-sync-service/internal/models"
)

// ListPending returns one page of rows still awaiting integration export
// (integration_date IS NULL), in stable updated_at order so page-by-page
// iteration yields each pending row exactly once.
func (p *PostgresStore) ListPending(ctx context.Context, tenantID string, limit, offset int) ([]models.Event, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+selectEventColumns+`
		FROM events
		WHERE tenant_id = $1
		  AND integration_date IS NULL
		ORDER BY updated_at ASC, id ASC
		LIMIT $2 OFFSET $3
	`, tenantID, limit, offset)
	if err != nil {
		p.log.Error().Err(err).Str("tenant_id", tenantID).Msg("pending integration query failed")
		return nil, err
	}

	return scanEvents(rows)
}

// CountPending returns the number of rows awaiting integration export.
func (p *PostgresStore) CountPending(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM events
		WHERE tenant_id = $1
		  AND integration_date IS NULL
	`, tenantID).Scan(&count)
	if err != nil {
		p.log.Error().Err(err).Str("tenant_id", tenantID).Msg("pending integration count failed")
		return 0, err
	}
	return count, nil
}

// MarkConsumed stamps (or, with a nil date, clears) the integration marker on
// the given ids. The operation is idempotent: re-marking an already-consumed
// id is counted as updated, never an error, and unknown ids are silently
// ignored; the returned count reflects only ids that actually exist.
//
// When the store was configured with markTouchesUpdatedAt, the mark also
// bumps updated_at (kept monotonic via GREATEST) so the export becomes
// visible to other sync participants through the change feed.
func (p *PostgresStore) MarkConsumed(ctx context.Context, tenantID string, ids []string, integrationDate *time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `
		UPDATE events
		SET integration_date = $3
		WHERE tenant_id = $1 AND id = ANY($2)
	`
	if p.markTouchesUpdatedAt {
		query = `
			UPDATE events
			SET integration_date = $3,
			    updated_at = GREATEST(updated_at, now())
			WHERE tenant_id = $1 AND id = ANY($2)
		`
	}

	tag, err := p.pool.Exec(ctx, query, tenantID, ids, integrationDate)
	if err != nil {
		p.log.Error().Err(err).
			Str("tenant_id", tenantID).
			Int("ids", len(ids)).
			Msg("mark consumed failed")
		return 0, err
	}

	return tag.RowsAffected(), nil
}
