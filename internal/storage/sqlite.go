package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"tippmix_scraper/internal/model"
	"tippmix_scraper/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=OFF"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("disable foreign keys: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// UpsertMatch performs the read-compare-write inside a transaction so two
// pollers hitting the same match_id cannot lose updates or duplicate
// rows. first_seen_at is set once and never touched again; last_seen_at
// only moves forward.
func (s *SQLite) UpsertMatch(ctx context.Context, rec *model.MatchRecord) (model.UpsertOutcome, error) {
	now := time.Now().UTC().Truncate(time.Second)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := getMatch(ctx, tx, rec.MatchID)
	if err != nil && err != sql.ErrNoRows {
		return "", fmt.Errorf("lookup match: %w", err)
	}

	var outcome model.UpsertOutcome
	switch {
	case existing == nil:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO matches (match_id, competition, home_participant, away_participant,
			                      scheduled_start, status, raw_fields, first_seen_at, last_seen_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.MatchID, rec.Competition, rec.HomeParticipant, rec.AwayParticipant,
			formatTimePtr(rec.ScheduledStart), string(rec.Status), rec.RawFields,
			now.Format(timeLayout), now.Format(timeLayout),
		)
		if err != nil {
			return "", fmt.Errorf("insert match: %w", err)
		}
		rec.FirstSeenAt = now
		rec.LastSeenAt = now
		outcome = model.OutcomeInserted

	case matchChanged(existing, rec):
		lastSeen := laterOf(existing.LastSeenAt, now)
		_, err = tx.ExecContext(ctx,
			`UPDATE matches
			 SET competition = ?, home_participant = ?, away_participant = ?,
			     scheduled_start = ?, status = ?, raw_fields = ?, last_seen_at = ?
			 WHERE match_id = ?`,
			rec.Competition, rec.HomeParticipant, rec.AwayParticipant,
			formatTimePtr(rec.ScheduledStart), string(rec.Status), rec.RawFields,
			lastSeen.Format(timeLayout), rec.MatchID,
		)
		if err != nil {
			return "", fmt.Errorf("update match: %w", err)
		}
		rec.FirstSeenAt = existing.FirstSeenAt
		rec.LastSeenAt = lastSeen
		outcome = model.OutcomeUpdated

	default:
		lastSeen := laterOf(existing.LastSeenAt, now)
		_, err = tx.ExecContext(ctx,
			`UPDATE matches SET last_seen_at = ? WHERE match_id = ?`,
			lastSeen.Format(timeLayout), rec.MatchID,
		)
		if err != nil {
			return "", fmt.Errorf("bump last seen: %w", err)
		}
		rec.FirstSeenAt = existing.FirstSeenAt
		rec.LastSeenAt = lastSeen
		outcome = model.OutcomeUnchanged
	}

	for _, o := range rec.Odds {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO odds (match_id, market, selection, price, updated_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (match_id, market, selection) DO UPDATE SET
			     price = excluded.price,
			     updated_at = excluded.updated_at`,
			rec.MatchID, o.Market, o.Selection, o.Price, now.Format(timeLayout),
		)
		if err != nil {
			return "", fmt.Errorf("upsert odd: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return outcome, nil
}

// GetMatch returns a single match with its odds by stable id.
func (s *SQLite) GetMatch(ctx context.Context, matchID string) (*model.MatchRecord, error) {
	rec, err := getMatch(ctx, s.db, matchID)
	if err != nil {
		return nil, fmt.Errorf("get match: %w", err)
	}
	odds, err := s.ListOdds(ctx, matchID)
	if err != nil {
		return nil, err
	}
	rec.Odds = odds
	return rec, nil
}

// ListMatches returns all matches ordered by first sighting. Odds are not
// loaded; use ListOdds for a specific match.
func (s *SQLite) ListMatches(ctx context.Context) ([]model.MatchRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT match_id, competition, home_participant, away_participant,
		        scheduled_start, status, raw_fields, first_seen_at, last_seen_at
		 FROM matches ORDER BY first_seen_at, match_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []model.MatchRecord
	for rows.Next() {
		rec, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *rec)
	}
	return matches, rows.Err()
}

// ListOdds returns all priced selections stored for a match.
func (s *SQLite) ListOdds(ctx context.Context, matchID string) ([]model.Odd, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT market, selection, price FROM odds
		 WHERE match_id = ? ORDER BY market, selection`, matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("query odds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var odds []model.Odd
	for rows.Next() {
		var o model.Odd
		if err := rows.Scan(&o.Market, &o.Selection, &o.Price); err != nil {
			return nil, fmt.Errorf("scan odd: %w", err)
		}
		odds = append(odds, o)
	}
	return odds, rows.Err()
}

// RecordRaw appends a captured response to the raw_events table and
// populates the event's ID.
func (s *SQLite) RecordRaw(ctx context.Context, ev *model.RawEvent) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO raw_events (source_url, captured_at, payload, http_status)
		 VALUES (?, ?, ?, ?)`,
		ev.SourceURL, ev.CapturedAt.UTC().Format(timeLayout), ev.Payload, ev.HTTPStatus,
	)
	if err != nil {
		return fmt.Errorf("insert raw event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	ev.ID = id
	return nil
}

// ListRawEvents returns the most recent raw captures, newest first.
func (s *SQLite) ListRawEvents(ctx context.Context, limit int) ([]model.RawEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_url, captured_at, payload, http_status
		 FROM raw_events ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query raw events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.RawEvent
	for rows.Next() {
		var ev model.RawEvent
		var captured string
		if err := rows.Scan(&ev.ID, &ev.SourceURL, &captured, &ev.Payload, &ev.HTTPStatus); err != nil {
			return nil, fmt.Errorf("scan raw event: %w", err)
		}
		ev.CapturedAt, _ = time.Parse(timeLayout, captured)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// matchChanged compares every mutable field, i.e. everything except
// match_id and first_seen_at.
func matchChanged(existing, incoming *model.MatchRecord) bool {
	return existing.Competition != incoming.Competition ||
		existing.HomeParticipant != incoming.HomeParticipant ||
		existing.AwayParticipant != incoming.AwayParticipant ||
		existing.Status != incoming.Status ||
		existing.RawFields != incoming.RawFields ||
		!equalTimePtr(existing.ScheduledStart, incoming.ScheduledStart)
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.UTC().Truncate(time.Second).Format(timeLayout)
	return &v
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getMatch(ctx context.Context, q querier, matchID string) (*model.MatchRecord, error) {
	row := q.QueryRowContext(ctx,
		`SELECT match_id, competition, home_participant, away_participant,
		        scheduled_start, status, raw_fields, first_seen_at, last_seen_at
		 FROM matches WHERE match_id = ?`, matchID,
	)
	return scanMatch(row)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanMatch(row scannable) (*model.MatchRecord, error) {
	var rec model.MatchRecord
	var status string
	var start, firstSeen, lastSeen sql.NullString
	err := row.Scan(&rec.MatchID, &rec.Competition, &rec.HomeParticipant, &rec.AwayParticipant,
		&start, &status, &rec.RawFields, &firstSeen, &lastSeen)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan match: %w", err)
	}
	rec.Status = model.MatchStatus(status)
	if start.Valid {
		t, _ := time.Parse(timeLayout, start.String)
		rec.ScheduledStart = &t
	}
	if firstSeen.Valid {
		rec.FirstSeenAt, _ = time.Parse(timeLayout, firstSeen.String)
	}
	if lastSeen.Valid {
		rec.LastSeenAt, _ = time.Parse(timeLayout, lastSeen.String)
	}
	return &rec, nil
}
