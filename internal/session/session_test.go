package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// memRecorder is an in-memory Recorder for tracker tests.
type memRecorder struct {
	mu    sync.Mutex
	recs  map[string]*Record
	ticks int
}

func newMemRecorder() *memRecorder {
	return &memRecorder{recs: make(map[string]*Record)}
}

func (m *memRecorder) Start(_ context.Context, userID, bookID string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := Record{ID: uuid.New().String(), UserID: userID, BookID: bookID, CurrentPage: 1, Active: true}
	m.recs[rec.ID] = &rec
	return rec, nil
}

func (m *memRecorder) Tick(_ context.Context, id string, seconds, page int, progress float64) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.recs[id]
	rec.ReadSeconds += seconds
	rec.CurrentPage = page
	rec.Progress = progress
	m.ticks++
	return *rec, nil
}

func (m *memRecorder) End(_ context.Context, id string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.recs[id]
	rec.Active = false
	return *rec, nil
}

func (m *memRecorder) tickCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ticks
}

func TestTrackerTicksAndEnds(t *testing.T) {
	rec := newMemRecorder()
	tracker := NewTracker(rec, 20*time.Millisecond, nil)

	s, err := tracker.Begin(context.Background(), "user-1", "book-1")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	s.UpdateProgress(7, 35.0)

	deadline := time.Now().Add(2 * time.Second)
	for rec.tickCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("tracker never ticked")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := s.End(); err != nil {
		t.Fatalf("End: %v", err)
	}

	final := s.Record()
	if final.Active {
		t.Errorf("final record still active")
	}
	if final.CurrentPage != 7 || final.Progress != 35.0 {
		t.Errorf("final record = %+v, want page 7 at 35%%", final)
	}
	if final.ReadSeconds == 0 {
		t.Errorf("no read time accumulated")
	}

	// Idempotent.
	if err := s.End(); err != nil {
		t.Errorf("second End: %v", err)
	}
}

func TestTrackerEndsOnContextCancel(t *testing.T) {
	rec := newMemRecorder()
	tracker := NewTracker(rec, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	s, err := tracker.Begin(ctx, "user-1", "book-1")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for s.Record().Active {
		if time.Now().After(deadline) {
			t.Fatalf("session never ended after context cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
