// Package scheduler drives the polling cadence: one capture cycle at a
// time over the configured endpoints.
package scheduler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"tippmix_scraper/internal/fetcher"
	"tippmix_scraper/internal/pipeline"
)

// Scheduler periodically fetches the configured endpoints and feeds the
// payloads through the pipeline.
type Scheduler struct {
	pipe      *pipeline.Pipeline
	fetcher   *fetcher.Fetcher
	endpoints []string
	log       *slog.Logger
	tick      time.Duration
}

// New creates a Scheduler with the default HTTP client.
func New(pipe *pipeline.Pipeline, endpoints []string, log *slog.Logger) *Scheduler {
	return NewWithFetcher(pipe, fetcher.New(http.DefaultClient), endpoints, log)
}

// NewWithFetcher creates a Scheduler with a custom fetcher (useful for testing).
func NewWithFetcher(pipe *pipeline.Pipeline, f *fetcher.Fetcher, endpoints []string, log *slog.Logger) *Scheduler {
	return &Scheduler{
		pipe:      pipe,
		fetcher:   f,
		endpoints: endpoints,
		log:       log,
		tick:      20 * time.Second,
	}
}

// SetTickInterval overrides the default 20-second polling interval.
func (s *Scheduler) SetTickInterval(d time.Duration) {
	s.tick = d
}

// Run starts the polling loop, blocking until ctx is cancelled. The first
// cycle runs immediately.
func (s *Scheduler) Run(ctx context.Context) {
	s.runCycle(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	var total pipeline.Stats
	for _, url := range s.endpoints {
		if ctx.Err() != nil {
			return
		}

		capture, err := s.fetcher.Fetch(ctx, url)
		if err != nil {
			s.log.Error("fetch endpoint", "url", url, "error", err)
			continue
		}
		total = total.Add(s.pipe.Process(ctx, capture))
	}

	s.log.Info("cycle complete",
		"candidates", total.Candidates,
		"new", total.Inserted,
		"changed", total.Updated,
		"reseen", total.Reseen,
		"dropped", total.Dropped,
		"failed", total.Failed,
	)
}
