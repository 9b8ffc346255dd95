package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func fakeCollector(t *testing.T, failFirst int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32

	mux := http.NewServeMux()
	respond := func(w http.ResponseWriter, rec Record) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rec)
	}

	mux.HandleFunc("POST /api/sessions", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= failFirst {
			http.Error(w, `{"error":"temporarily unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		var req StartRequest
		json.NewDecoder(r.Body).Decode(&req)
		respond(w, Record{ID: "s-1", UserID: req.UserID, BookID: req.BookID, CurrentPage: 1, Active: true})
	})
	mux.HandleFunc("PATCH /api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req TickRequest
		json.NewDecoder(r.Body).Decode(&req)
		respond(w, Record{
			ID: r.PathValue("id"), ReadSeconds: req.Seconds,
			CurrentPage: req.Page, Progress: req.Progress, Active: true,
		})
	})
	mux.HandleFunc("POST /api/sessions/{id}/end", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		respond(w, Record{ID: r.PathValue("id"), Active: false})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestHTTPRecorderLifecycle(t *testing.T) {
	srv, _ := fakeCollector(t, 0)
	rec := NewHTTPRecorder(srv.URL)
	ctx := context.Background()

	started, err := rec.Start(ctx, "user-1", "book-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if started.ID != "s-1" || started.UserID != "user-1" || !started.Active {
		t.Errorf("started = %+v", started)
	}

	ticked, err := rec.Tick(ctx, started.ID, 30, 4, 16.0)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if ticked.ReadSeconds != 30 || ticked.CurrentPage != 4 {
		t.Errorf("ticked = %+v", ticked)
	}

	ended, err := rec.End(ctx, started.ID)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if ended.Active {
		t.Errorf("ended record still active")
	}
}

func TestHTTPRecorderRetriesTransientFailures(t *testing.T) {
	srv, calls := fakeCollector(t, 2)
	rec := NewHTTPRecorder(srv.URL)
	rec.delay = 0

	started, err := rec.Start(context.Background(), "user-1", "book-1")
	if err != nil {
		t.Fatalf("Start after retries: %v", err)
	}
	if started.ID != "s-1" {
		t.Errorf("started = %+v", started)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d attempts, want 3", got)
	}
}

func TestHTTPRecorderGivesUp(t *testing.T) {
	srv, calls := fakeCollector(t, 100)
	rec := NewHTTPRecorder(srv.URL)
	rec.delay = 0

	if _, err := rec.Start(context.Background(), "user-1", "book-1"); err == nil {
		t.Fatalf("Start succeeded against a dead collector")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d attempts, want capped at 3", got)
	}
}
