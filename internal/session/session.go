// Package session tracks reading sessions: who read which book, for how
// long, and how far they got. Records are written through a Recorder, which
// is either the embedded SQLite store or a remote collector over HTTP.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultTickInterval is how often an active session flushes accumulated
// reading time when no interval is configured.
const DefaultTickInterval = 30 * time.Second

// Record is one reading session.
type Record struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	BookID      string    `json:"book_id"`
	CurrentPage int       `json:"current_page"`
	Progress    float64   `json:"progress"`
	ReadSeconds int       `json:"read_seconds"`
	StartedAt   time.Time `json:"started_at"`
	LastReadAt  time.Time `json:"last_read_at"`
	Active      bool      `json:"active"`
}

// Recorder persists reading sessions.
type Recorder interface {
	// Start opens a new active session for the user/book pair.
	Start(ctx context.Context, userID, bookID string) (Record, error)

	// Tick adds read time to an active session and updates its position.
	Tick(ctx context.Context, id string, seconds, page int, progress float64) (Record, error)

	// End marks the session inactive and returns the final record.
	End(ctx context.Context, id string) (Record, error)
}

// Tracker runs the periodic-tick loop over a Recorder. One Tracker serves
// many concurrent sessions.
type Tracker struct {
	rec      Recorder
	interval time.Duration
	log      *slog.Logger
}

// NewTracker builds a tracker. A non-positive interval falls back to
// DefaultTickInterval; a nil logger falls back to slog.Default.
func NewTracker(rec Recorder, interval time.Duration, log *slog.Logger) *Tracker {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{rec: rec, interval: interval, log: log}
}

// Begin starts a session and its tick loop. The loop stops when ctx is
// cancelled or Session.End is called, whichever comes first.
func (t *Tracker) Begin(ctx context.Context, userID, bookID string) (*Session, error) {
	rec, err := t.rec.Start(ctx, userID, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &Session{
		tracker: t,
		record:  rec,
		page:    1,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go s.loop(loopCtx)

	// Tie the session to the caller's context without keeping its values
	// out of the tick loop above.
	go func() {
		select {
		case <-ctx.Done():
			_ = s.End()
		case <-s.done:
		}
	}()

	t.log.Info("reading session started", "session", rec.ID, "user", userID, "book", bookID)
	return s, nil
}

// Session is one live reading session.
type Session struct {
	tracker *Tracker
	cancel  context.CancelFunc
	done    chan struct{}

	mu       sync.Mutex
	record   Record
	page     int
	progress float64
	ended    bool
}

// ID returns the session identifier.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.ID
}

// Record returns the latest known state of the session record.
func (s *Session) Record() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// UpdateProgress stores the reader position to be flushed on the next tick.
func (s *Session) UpdateProgress(page int, progress float64) {
	s.mu.Lock()
	s.page = page
	s.progress = progress
	s.mu.Unlock()
}

func (s *Session) loop(ctx context.Context) {
	ticker := time.NewTicker(s.tracker.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Session) tick(ctx context.Context) {
	s.mu.Lock()
	id := s.record.ID
	page := s.page
	progress := s.progress
	s.mu.Unlock()

	seconds := int(s.tracker.interval.Seconds())
	rec, err := s.tracker.rec.Tick(ctx, id, seconds, page, progress)
	if err != nil {
		// Ticks are lossy on purpose: the next one carries fresh totals.
		s.tracker.log.Warn("session tick failed", "session", id, "error", err)
		return
	}

	s.mu.Lock()
	s.record = rec
	s.mu.Unlock()
}

// End stops the tick loop, flushes the final position, and closes the
// record. Idempotent.
func (s *Session) End() error {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return nil
	}
	s.ended = true
	id := s.record.ID
	page := s.page
	progress := s.progress
	s.mu.Unlock()

	s.cancel()
	close(s.done)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.tracker.rec.Tick(ctx, id, 0, page, progress); err != nil {
		s.tracker.log.Warn("final session tick failed", "session", id, "error", err)
	}
	rec, err := s.tracker.rec.End(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	s.mu.Lock()
	s.record = rec
	s.mu.Unlock()

	s.tracker.log.Info("reading session ended",
		"session", id, "read_seconds", rec.ReadSeconds, "progress", rec.Progress)
	return nil
}
