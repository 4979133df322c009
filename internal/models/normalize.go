package models

import (
	"math"
	"strings"
	"time"
)

// Server-side defaults applied when a pushed row omits or blanks the field.
const (
	DefaultTitle      = "Evento"
	DefaultType       = "Tarefa"
	DefaultDifficulty = "Media"

	DefaultDurationMinutes = 15
	MinDurationMinutes     = 1
	// duration_minutes is an INTEGER column; anything above int32 would fail
	// at encode time and abort the whole batch, so sanitation clamps first.
	MaxDurationMinutes = math.MaxInt32
)

// ParseInstant parses an ISO-8601 timestamp and normalizes it to UTC.
func ParseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// trimOrNil collapses blank and whitespace-only input to "absent".
func trimOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// trimOrDefault trims the input and substitutes the default when blank.
func trimOrDefault(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

// coerceDuration applies the duration rules: missing or non-finite input
// defaults to 15 minutes, values are rounded, floored at 1 and capped at the
// column maximum. Comparisons happen in float space so an oversized value
// never overflows the int conversion.
func coerceDuration(d *float64) int {
	if d == nil || math.IsNaN(*d) || math.IsInf(*d, 0) {
		return DefaultDurationMinutes
	}
	v := math.Round(*d)
	if v < MinDurationMinutes {
		return MinDurationMinutes
	}
	if v > MaxDurationMinutes {
		return MaxDurationMinutes
	}
	return int(v)
}

// Normalize sanitizes one pushed row into a merge-ready upsert. It returns
// ok=false when the row has no usable id, which the merge engine skips
// without failing the batch.
//
// Timestamp rules: an invalid or missing updatedAt falls back to now (the
// server clock reading for the request); an invalid or missing createdAt
// falls back to updatedAt.
func Normalize(in EventInput, now time.Time) (EventUpsert, bool) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return EventUpsert{}, false
	}

	updatedAt, err := ParseInstant(in.UpdatedAt)
	if err != nil {
		updatedAt = now.UTC()
	}
	createdAt, err := ParseInstant(in.CreatedAt)
	if err != nil {
		createdAt = updatedAt
	}

	up := EventUpsert{
		Event: Event{
			ID:         id,
			Title:      trimOrDefault(in.Title, DefaultTitle),
			Notes:      trimOrNil(in.Notes),
			Date:       trimOrNil(in.Date),
			Type:       trimOrDefault(in.Type, DefaultType),
			Difficulty: trimOrDefault(in.Difficulty, DefaultDifficulty),
			Duration:   coerceDuration(in.Duration),
			Start:      trimOrNil(in.Start),
			End:        trimOrNil(in.End),
			Color:      trimOrNil(in.Color),
			Status:     trimOrNil(in.Status),
			Provider:   trimOrNil(in.Provider),
			AccountID:  trimOrNil(in.AccountID),
			GoogleID:   trimOrNil(in.GoogleID),
			OutlookID:  trimOrNil(in.OutlookID),
			ICSUID:     trimOrNil(in.ICSUID),
			CreatedAt:  createdAt,
			UpdatedAt:  updatedAt,
		},
		IntegrationDateProvided: in.IntegrationDate.Provided,
	}

	if in.IntegrationDate.Provided && in.IntegrationDate.Valid {
		t := in.IntegrationDate.Time
		up.IntegrationDate = &t
	}

	return up, true
}

// NormalizeBatch sanitizes a pushed batch, dropping rows without an id.
func NormalizeBatch(in []EventInput, now time.Time) []EventUpsert {
	out := make([]EventUpsert, 0, len(in))
	for _, e := range in {
		if up, ok := Normalize(e, now); ok {
			out = append(out, up)
		}
	}
	return out
}
