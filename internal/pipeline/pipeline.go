// Package pipeline runs the per-payload flow: raw capture, candidate
// extraction, normalization, and the deduplicated upsert. Each call is a
// bounded synchronous transformation; all cross-call state lives in the
// store.
package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"tippmix_scraper/internal/fetcher"
	"tippmix_scraper/internal/model"
	"tippmix_scraper/internal/parser"
	"tippmix_scraper/internal/storage"
)

// Stats summarizes what one payload produced.
type Stats struct {
	Candidates int
	Inserted   int
	Updated    int
	Reseen     int
	Dropped    int
	Failed     int
}

// Add accumulates another payload's stats.
func (s Stats) Add(other Stats) Stats {
	s.Candidates += other.Candidates
	s.Inserted += other.Inserted
	s.Updated += other.Updated
	s.Reseen += other.Reseen
	s.Dropped += other.Dropped
	s.Failed += other.Failed
	return s
}

// Pipeline processes captured payloads into the persistent store.
type Pipeline struct {
	store storage.Storage
	p     *parser.Parser
	log   *slog.Logger
}

// New creates a Pipeline.
func New(store storage.Storage, p *parser.Parser, log *slog.Logger) *Pipeline {
	return &Pipeline{store: store, p: p, log: log}
}

// Process records the capture in the raw sink and merges every match
// found in it into the store. Raw capture failures and bad candidates are
// logged, never fatal: one broken record must not abort the rest of the
// payload. Upsert failures are counted in Stats.Failed so the caller can
// see data loss.
func (pl *Pipeline) Process(ctx context.Context, capture *fetcher.Capture) Stats {
	ev := &model.RawEvent{
		SourceURL:  capture.SourceURL,
		CapturedAt: capture.CapturedAt,
		Payload:    string(capture.Body),
		HTTPStatus: capture.HTTPStatus,
	}
	if err := pl.store.RecordRaw(ctx, ev); err != nil {
		// Best-effort provenance, the cycle goes on.
		pl.log.Error("record raw event", "url", capture.SourceURL, "error", err)
	}

	var stats Stats
	for _, cand := range pl.p.ExtractJSON(capture.Body) {
		stats.Candidates++

		rec, err := pl.p.Normalize(cand)
		if err != nil {
			stats.Dropped++
			if errors.Is(err, parser.ErrNoParticipants) {
				pl.log.Warn("drop candidate", "url", capture.SourceURL, "reason", err)
			} else {
				pl.log.Debug("drop candidate", "url", capture.SourceURL, "reason", err)
			}
			continue
		}

		outcome, err := pl.store.UpsertMatch(ctx, rec)
		if err != nil {
			stats.Failed++
			pl.log.Error("upsert match", "match_id", rec.MatchID, "error", err)
			continue
		}
		switch outcome {
		case model.OutcomeInserted:
			stats.Inserted++
		case model.OutcomeUpdated:
			stats.Updated++
		case model.OutcomeUnchanged:
			stats.Reseen++
		}
	}
	return stats
}
