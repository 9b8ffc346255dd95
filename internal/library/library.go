// Package library is the registry of open documents. It owns the mapping
// from document id to reader, persists uploaded payloads under the home
// directory, and ties each open document to a reading session.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/byte-squad-abac/bookreader/internal/document"
	"github.com/byte-squad-abac/bookreader/internal/home"
	"github.com/byte-squad-abac/bookreader/internal/reader"
	"github.com/byte-squad-abac/bookreader/internal/session"
)

// ErrNotFound is returned when a document id has no open handle.
var ErrNotFound = errors.New("library: document not found")

// Config wires a Library's collaborators. ReaderConfig and DocumentOptions
// are funcs so hot-reloaded config applies to documents opened later.
type Config struct {
	Home            *home.Dir
	Tracker         *session.Tracker
	ReaderConfig    func() reader.Config
	DocumentOptions func() document.Options
	Logger          *slog.Logger
}

// Library holds all open documents for one server instance.
type Library struct {
	cfg Config
	log *slog.Logger

	mu      sync.RWMutex
	handles map[string]*Handle
}

// Handle is one open document with its reader and session.
type Handle struct {
	ID       string
	Name     string
	Format   document.Format
	Size     int64
	OpenedAt time.Time
	Reader   *reader.Reader
	Session  *session.Session
}

// Info is the JSON-facing snapshot of a handle.
type Info struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Format    document.Format `json:"format"`
	Size      int64           `json:"size"`
	Pages     int             `json:"pages"`
	OpenedAt  time.Time       `json:"opened_at"`
	SessionID string          `json:"session_id,omitempty"`
}

// New creates an empty library.
func New(cfg Config) *Library {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ReaderConfig == nil {
		cfg.ReaderConfig = func() reader.Config { return reader.Config{} }
	}
	if cfg.DocumentOptions == nil {
		cfg.DocumentOptions = func() document.Options { return document.Options{} }
	}
	return &Library{
		cfg:     cfg,
		log:     cfg.Logger,
		handles: make(map[string]*Handle),
	}
}

// Open detects the payload's format, persists it, builds a reader over it,
// and starts a reading session. The returned handle stays open until Close.
func (l *Library) Open(ctx context.Context, name, userID string, data []byte) (*Handle, error) {
	format, err := document.DetectFormat(data)
	if err != nil {
		return nil, fmt.Errorf("failed to detect format of %q: %w", name, err)
	}

	id := uuid.New().String()
	if l.cfg.Home != nil {
		if err := l.cfg.Home.EnsureExists(); err != nil {
			return nil, err
		}
		path := l.cfg.Home.DocumentPath(id, string(format))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to persist document: %w", err)
		}
	}

	rcfg := l.cfg.ReaderConfig()
	rcfg.Logger = l.log
	r, err := reader.Open(data, format, l.cfg.DocumentOptions(), rcfg)
	if err != nil {
		l.removePayload(id, format)
		return nil, err
	}

	h := &Handle{
		ID:       id,
		Name:     name,
		Format:   format,
		Size:     int64(len(data)),
		OpenedAt: time.Now().UTC(),
		Reader:   r,
	}

	if l.cfg.Tracker != nil {
		if userID == "" {
			userID = "local"
		}
		sess, err := l.cfg.Tracker.Begin(ctx, userID, id)
		if err != nil {
			r.Close()
			l.removePayload(id, format)
			return nil, err
		}
		h.Session = sess
	}

	l.mu.Lock()
	l.handles[id] = h
	l.mu.Unlock()

	l.log.Info("document opened",
		"id", id, "name", name, "format", format, "pages", r.Geometry().TotalPages())
	return h, nil
}

// Get returns the handle for a document id.
func (l *Library) Get(id string) (*Handle, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	h, ok := l.handles[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return h, nil
}

// List returns snapshots of all open documents, ordered by open time.
func (l *Library) List() []Info {
	l.mu.RLock()
	handles := make([]*Handle, 0, len(l.handles))
	for _, h := range l.handles {
		handles = append(handles, h)
	}
	l.mu.RUnlock()

	infos := make([]Info, 0, len(handles))
	for _, h := range handles {
		infos = append(infos, h.Snapshot())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].OpenedAt.Before(infos[j].OpenedAt)
	})
	return infos
}

// Snapshot returns the JSON-facing view of a handle.
func (h *Handle) Snapshot() Info {
	info := Info{
		ID:       h.ID,
		Name:     h.Name,
		Format:   h.Format,
		Size:     h.Size,
		Pages:    h.Reader.Geometry().TotalPages(),
		OpenedAt: h.OpenedAt,
	}
	if h.Session != nil {
		info.SessionID = h.Session.ID()
	}
	return info
}

// Close ends the document's session, releases its reader, and removes the
// persisted payload.
func (l *Library) Close(id string) error {
	l.mu.Lock()
	h, ok := l.handles[id]
	if ok {
		delete(l.handles, id)
	}
	l.mu.Unlock()
	if !ok {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}

	if h.Session != nil {
		if err := h.Session.End(); err != nil {
			l.log.Warn("failed to end session", "document", id, "error", err)
		}
	}
	if err := h.Reader.Close(); err != nil {
		return err
	}
	l.removePayload(id, h.Format)

	l.log.Info("document closed", "id", id, "name", h.Name)
	return nil
}

// CloseAll closes every open document. Used on server shutdown.
func (l *Library) CloseAll() {
	l.mu.Lock()
	handles := l.handles
	l.handles = make(map[string]*Handle)
	l.mu.Unlock()

	for id, h := range handles {
		if h.Session != nil {
			if err := h.Session.End(); err != nil {
				l.log.Warn("failed to end session", "document", id, "error", err)
			}
		}
		if err := h.Reader.Close(); err != nil {
			l.log.Warn("failed to close reader", "document", id, "error", err)
		}
		l.removePayload(id, h.Format)
	}
}

func (l *Library) removePayload(id string, format document.Format) {
	if l.cfg.Home == nil {
		return
	}
	path := l.cfg.Home.DocumentPath(id, string(format))
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		l.log.Warn("failed to remove document payload", "path", path, "error", err)
	}
}
