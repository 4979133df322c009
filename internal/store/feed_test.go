package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/planora/event-sync-service/internal/models"
)

func feedRow(id string, updatedAt time.Time) models.Event {
	return models.Event{ID: id, UpdatedAt: updatedAt}
}

func TestFilterEcho(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	rows := []models.Event{
		feedRow("mine-current", t0),  // caller pushed exactly this version
		feedRow("mine-beaten", t1),   // another writer advanced it past the push
		feedRow("someone-elses", t0), // caller never pushed this id
	}

	pushed := map[string]time.Time{
		"mine-current": t0,
		"mine-beaten":  t0,
	}

	out := FilterEcho(rows, pushed)

	ids := make([]string, 0, len(out))
	for _, e := range out {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"mine-beaten", "someone-elses"}, ids)
}

func TestFilterEcho_PushedNewerThanStored(t *testing.T) {
	// A push carrying a newer timestamp than what ended up stored (it lost
	// the merge elsewhere, or clocks drifted) is still suppressed: the caller
	// has at least this version.
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	out := FilterEcho(
		[]models.Event{feedRow("e1", t0)},
		map[string]time.Time{"e1": t0.Add(time.Minute)},
	)
	assert.Empty(t, out)
}

func TestFilterEcho_NoPushesPassesThrough(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.Event{feedRow("a", t0), feedRow("b", t0)}

	assert.Equal(t, rows, FilterEcho(rows, nil))
}
