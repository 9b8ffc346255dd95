package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a session id has no record.
var ErrNotFound = errors.New("session: not found")

const storeSchema = `
CREATE TABLE IF NOT EXISTS reading_sessions (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL,
    book_id      TEXT NOT NULL,
    current_page INTEGER NOT NULL DEFAULT 1,
    progress     REAL NOT NULL DEFAULT 0,
    read_seconds INTEGER NOT NULL DEFAULT 0,
    started_at   INTEGER NOT NULL,
    last_read_at INTEGER NOT NULL,
    active       INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_sessions_user ON reading_sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_sessions_book ON reading_sessions(book_id);
`

// Store is the embedded SQLite reading-session store.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the session database at dbPath.
func OpenStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dsn := dbPath +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Start implements Recorder.
func (s *Store) Start(ctx context.Context, userID, bookID string) (Record, error) {
	now := time.Now().UTC().Truncate(time.Second)
	rec := Record{
		ID:          uuid.New().String(),
		UserID:      userID,
		BookID:      bookID,
		CurrentPage: 1,
		StartedAt:   now,
		LastReadAt:  now,
		Active:      true,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reading_sessions
		    (id, user_id, book_id, current_page, progress, read_seconds, started_at, last_read_at, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		rec.ID, rec.UserID, rec.BookID, rec.CurrentPage, rec.Progress, rec.ReadSeconds,
		rec.StartedAt.Unix(), rec.LastReadAt.Unix())
	if err != nil {
		return Record{}, fmt.Errorf("failed to insert session: %w", err)
	}
	return rec, nil
}

// Tick implements Recorder. Ticks against an ended session are rejected.
func (s *Store) Tick(ctx context.Context, id string, seconds, page int, progress float64) (Record, error) {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx, `
		UPDATE reading_sessions
		SET read_seconds = read_seconds + ?,
		    current_page = ?,
		    progress = ?,
		    last_read_at = ?
		WHERE id = ? AND active = 1`,
		seconds, page, progress, now.Unix(), id)
	if err != nil {
		return Record{}, fmt.Errorf("failed to update session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Record{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return s.Get(ctx, id)
}

// End implements Recorder. Ending an already-ended session is a no-op that
// returns the final record.
func (s *Store) End(ctx context.Context, id string) (Record, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE reading_sessions SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return Record{}, fmt.Errorf("failed to end session: %w", err)
	}
	return s.Get(ctx, id)
}

// Get returns one session by id.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, book_id, current_page, progress, read_seconds,
		       started_at, last_read_at, active
		FROM reading_sessions WHERE id = ?`, id)
	return scanRecord(row)
}

// ListByBook returns all sessions for a book, newest first.
func (s *Store) ListByBook(ctx context.Context, bookID string) ([]Record, error) {
	return s.list(ctx, `
		SELECT id, user_id, book_id, current_page, progress, read_seconds,
		       started_at, last_read_at, active
		FROM reading_sessions WHERE book_id = ? ORDER BY started_at DESC`, bookID)
}

// ListByUser returns all sessions for a user, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	return s.list(ctx, `
		SELECT id, user_id, book_id, current_page, progress, read_seconds,
		       started_at, last_read_at, active
		FROM reading_sessions WHERE user_id = ? ORDER BY started_at DESC`, userID)
}

func (s *Store) list(ctx context.Context, query string, arg any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var started, lastRead int64
	var active int
	err := row.Scan(&rec.ID, &rec.UserID, &rec.BookID, &rec.CurrentPage, &rec.Progress,
		&rec.ReadSeconds, &started, &lastRead, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to scan session: %w", err)
	}
	rec.StartedAt = time.Unix(started, 0).UTC()
	rec.LastReadAt = time.Unix(lastRead, 0).UTC()
	rec.Active = active == 1
	return rec, nil
}
