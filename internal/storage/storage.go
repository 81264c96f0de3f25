// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"

	"tippmix_scraper/internal/model"
)

// Storage is the interface for all persistence operations.
type Storage interface {
	// UpsertMatch merges a normalized record into the match table keyed
	// by its stable id, reporting whether the row was inserted, updated,
	// or merely re-seen. Safe to retry: repeated calls with the same
	// record never create duplicate rows.
	UpsertMatch(ctx context.Context, rec *model.MatchRecord) (model.UpsertOutcome, error)
	GetMatch(ctx context.Context, matchID string) (*model.MatchRecord, error)
	ListMatches(ctx context.Context) ([]model.MatchRecord, error)
	ListOdds(ctx context.Context, matchID string) ([]model.Odd, error)

	// RecordRaw appends a captured response to the provenance table.
	RecordRaw(ctx context.Context, ev *model.RawEvent) error
	ListRawEvents(ctx context.Context, limit int) ([]model.RawEvent, error)

	Close() error
}
