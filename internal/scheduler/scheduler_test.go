package scheduler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tippmix_scraper/internal/fetcher"
	"tippmix_scraper/internal/model"
	"tippmix_scraper/internal/parser"
	"tippmix_scraper/internal/pipeline"
	"tippmix_scraper/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestScheduler(t *testing.T, endpoints []string) (*Scheduler, *storage.SQLite) {
	t.Helper()
	store, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	tables := parser.DefaultTables()
	tables.Keywords = nil
	pipe := pipeline.New(store, parser.NewWithTables(tables), discardLogger())

	s := NewWithFetcher(pipe, fetcher.New(http.DefaultClient), endpoints, discardLogger())
	return s, store
}

func TestRunCycle(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"events":[{"home":"Team A","away":"Team B","competition":"Liga X","status":"NS"}]}`))
	}))
	defer upstream.Close()

	s, store := newTestScheduler(t, []string{upstream.URL + "/api/events"})

	ctx := context.Background()
	s.runCycle(ctx)

	matches, err := store.ListMatches(ctx)
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Status != model.StatusScheduled {
		t.Errorf("expected scheduled status, got %s", matches[0].Status)
	}

	raws, err := store.ListRawEvents(ctx, 10)
	if err != nil {
		t.Fatalf("list raw events: %v", err)
	}
	if len(raws) != 1 {
		t.Fatalf("expected 1 raw event, got %d", len(raws))
	}

	// A second cycle re-sees the same match without duplicating it.
	s.runCycle(ctx)
	matches, err = store.ListMatches(ctx)
	if err != nil {
		t.Fatalf("list matches after second cycle: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match after second cycle, got %d", len(matches))
	}
}

func TestRunCycleUnreachableEndpoint(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"events":[{"home":"Team C","away":"Team D","status":"live"}]}`))
	}))
	defer upstream.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	// A broken endpoint must not stop the rest of the cycle.
	s, store := newTestScheduler(t, []string{deadURL, upstream.URL})
	s.runCycle(context.Background())

	matches, err := store.ListMatches(context.Background())
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match from the healthy endpoint, got %d", len(matches))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s, _ := newTestScheduler(t, nil)
	s.SetTickInterval(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
}
