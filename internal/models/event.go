package models

import (
	"encoding/json"
	"time"
)

// Event is the canonical synchronized row, as stored and as returned by the
// change feed and the integration queue. Optional columns use pointers so
// "absent" serializes as JSON null rather than a fake zero value.
type Event struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Notes           *string    `json:"notes,omitempty"`
	Date            *string    `json:"date,omitempty"`
	Type            string     `json:"type"`
	Difficulty      string     `json:"difficulty"`
	Duration        int        `json:"duration"`
	Start           *string    `json:"start,omitempty"`
	End             *string    `json:"end,omitempty"`
	Color           *string    `json:"color,omitempty"`
	Status          *string    `json:"status,omitempty"`
	Provider        *string    `json:"provider,omitempty"`
	AccountID       *string    `json:"accountId,omitempty"`
	GoogleID        *string    `json:"googleId,omitempty"`
	OutlookID       *string    `json:"outlookId,omitempty"`
	ICSUID          *string    `json:"icsUid,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	IntegrationDate *time.Time `json:"integrationDate"`
}

// EventInput is the lenient client payload accepted on push. Every field is
// optional except id; sanitation and defaulting happen in Normalize, not
// during decoding, so a partial or sloppy client row never fails the batch.
type EventInput struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Notes           string       `json:"notes"`
	Date            string       `json:"date"`
	Type            string       `json:"type"`
	Difficulty      string       `json:"difficulty"`
	Duration        *float64     `json:"duration"`
	Start           string       `json:"start"`
	End             string       `json:"end"`
	Color           string       `json:"color"`
	Status          string       `json:"status"`
	Provider        string       `json:"provider"`
	AccountID       string       `json:"accountId"`
	GoogleID        string       `json:"googleId"`
	OutlookID       string       `json:"outlookId"`
	ICSUID          string       `json:"icsUid"`
	CreatedAt       string       `json:"createdAt"`
	UpdatedAt       string       `json:"updatedAt"`
	IntegrationDate OptionalTime `json:"integrationDate"`
}

// EventUpsert is a sanitized row ready for the merge engine. The provided
// flag travels next to the event because "integrationDate absent" and
// "integrationDate explicitly null" are different merge operations.
type EventUpsert struct {
	Event
	IntegrationDateProvided bool
}

// OptionalTime is a three-state timestamp: absent (key missing), explicit
// null, or an explicit instant. UnmarshalJSON only runs when the key is
// present, which is exactly the absent/provided distinction we need.
// An unparseable value is demoted back to absent rather than erroring,
// matching the lenient sanitation rules of the push path.
type OptionalTime struct {
	Provided bool
	Valid    bool
	Time     time.Time
}

func (o *OptionalTime) UnmarshalJSON(b []byte) error {
	o.Provided = true
	o.Valid = false
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		o.Provided = false
		return nil
	}
	t, err := ParseInstant(s)
	if err != nil {
		o.Provided = false
		return nil
	}
	o.Valid = true
	o.Time = t
	return nil
}

// SyncRequest is the POST /sync payload: an optional pull cursor plus an
// optional batch of local mutations to push.
type SyncRequest struct {
	Since  string       `json:"since,omitempty"`
	Events []EventInput `json:"events,omitempty"`
}

// SyncResponse carries the pull delta and the server clock reading the
// client must store as its next cursor (never its own wall clock).
type SyncResponse struct {
	Events     []Event `json:"events"`
	ServerTime string  `json:"serverTime"`
}

// Pagination describes one page of the integration queue.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	TotalItems int  `json:"totalItems"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}

// IntegrationListResponse is returned by GET /integration/events.
type IntegrationListResponse struct {
	Events     []Event    `json:"events"`
	Pagination Pagination `json:"pagination"`
}

// IntegrationMarkRequest is the POST /integration/mark payload.
// integrationDate is kept raw so the handler can tell apart omitted
// (default to now), explicit null (clear the marker) and a dated string,
// and can reject malformed strings instead of silently defaulting, unlike
// the lenient push path.
type IntegrationMarkRequest struct {
	IDs             []string        `json:"ids"`
	IntegrationDate json.RawMessage `json:"integrationDate,omitempty"`
}

// IntegrationMarkResponse reports how many rows actually changed and which
// marker value was applied.
type IntegrationMarkResponse struct {
	Updated         int        `json:"updated"`
	IntegrationDate *time.Time `json:"integrationDate"`
}
