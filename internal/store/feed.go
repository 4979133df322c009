package store

import (
	"context"
	"time"

	"github.com/planora/event-sync-service/internal/models"
)

// ChangesSince returns the rows a client does not yet have. A nil cursor
// means initial sync and returns every row. Rows are ordered by updated_at
// ascending (with id as tiebreaker for a stable order), so clients applying
// the feed in sequence converge.
func (p *PostgresStore) ChangesSince(ctx context.Context, tenantID string, since *time.Time) ([]models.Event, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+selectEventColumns+`
		FROM events
		WHERE tenant_id = $1
		  AND ($2::timestamptz IS NULL OR updated_at > $2)
		ORDER BY updated_at ASC, id ASC
	`, tenantID, since)
	if err != nil {
		p.log.Error().Err(err).Str("tenant_id", tenantID).Msg("change feed query failed")
		return nil, err
	}

	return scanEvents(rows)
}

// FilterEcho suppresses rows the caller pushed in the same request. A row is
// dropped only when the caller's pushed timestamp is not older than the
// stored updated_at; if the stored row is newer, another writer won the
// merge and the caller still needs to see it.
func FilterEcho(rows []models.Event, pushed map[string]time.Time) []models.Event {
	if len(pushed) == 0 {
		return rows
	}

	out := make([]models.Event, 0, len(rows))
	for _, r := range rows {
		if ts, ok := pushed[r.ID]; ok && !ts.Before(r.UpdatedAt) {
			continue
		}
		out = append(out, r)
	}
	return out
}
