// Package model defines the domain types used across the application.
package model

import "time"

// MatchStatus is the canonical lifecycle state of a match.
type MatchStatus string

// Canonical match statuses. Upstream vocabularies are mapped onto these
// four values; anything unrecognized becomes StatusUnknown.
const (
	StatusScheduled MatchStatus = "scheduled"
	StatusLive      MatchStatus = "live"
	StatusFinished  MatchStatus = "finished"
	StatusUnknown   MatchStatus = "unknown"
)

// MatchRecord is the canonical, persisted representation of one match.
// MatchID is derived from the identifying fields, never from upstream
// opaque ids, so the same logical match keeps the same id across
// captures and payload shape changes.
type MatchRecord struct {
	MatchID         string
	Competition     string
	HomeParticipant string
	AwayParticipant string
	ScheduledStart  *time.Time
	Status          MatchStatus
	RawFields       string
	Odds            []Odd
	FirstSeenAt     time.Time
	LastSeenAt      time.Time
}

// Odd is a single priced selection within a market, e.g. ("1X2", "1", 2.35).
type Odd struct {
	Market    string
	Selection string
	Price     float64
}

// RawEvent is one captured network response, stored append-only for
// provenance. It has no identity beyond insertion order and is never
// mutated or deleted.
type RawEvent struct {
	ID         int64
	SourceURL  string
	CapturedAt time.Time
	Payload    string
	HTTPStatus int
}

// UpsertOutcome reports what an upsert did to the stored row.
type UpsertOutcome string

// Upsert outcomes. Unchanged still advances the last-seen watermark.
const (
	OutcomeInserted  UpsertOutcome = "inserted"
	OutcomeUpdated   UpsertOutcome = "updated"
	OutcomeUnchanged UpsertOutcome = "unchanged"
)
