package reader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/byte-squad-abac/bookreader/internal/document"
	"github.com/byte-squad-abac/bookreader/internal/geometry"
	"github.com/byte-squad-abac/bookreader/internal/gesture"
)

// Defaults used when Config fields are left zero.
const (
	// DefaultSettleDelay is how long after a discrete jump the engine
	// assumes the host's smooth scroll is still in flight.
	DefaultSettleDelay = time.Second

	// DefaultPreloadThreshold is the page count above which a dimension
	// preload pass is worth running.
	DefaultPreloadThreshold = 50

	// DefaultZoom is the baseline zoom percentage.
	DefaultZoom = 100.0
)

// ErrClosed is returned when an operation hits a closed reader.
var ErrClosed = errors.New("reader: closed")

// ErrPreloadActive is returned when a preload pass is already running.
var ErrPreloadActive = errors.New("reader: preload already running")

// Config tunes a Reader.
type Config struct {
	Geometry         geometry.Config
	SettleDelay      time.Duration
	PreloadThreshold int
	// Zoom is a percentage; 100 is baseline.
	Zoom float64
	// OnState receives partial state updates. May be nil.
	OnState StateFunc
	Logger  *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.SettleDelay <= 0 {
		c.SettleDelay = DefaultSettleDelay
	}
	if c.PreloadThreshold <= 0 {
		c.PreloadThreshold = DefaultPreloadThreshold
	}
	if c.Zoom <= 0 {
		c.Zoom = DefaultZoom
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Reader drives one open document. It owns the document handle exclusively
// and releases it on Close; a Reader is never reused across documents
// because its geometry would leak stale heights into the new document.
type Reader struct {
	mu  sync.Mutex
	doc document.Document
	geo *geometry.Manager
	cfg Config
	log *slog.Logger

	// ticking is the single-flight scroll guard: at most one scroll
	// recomputation runs at a time, extra ticks are dropped.
	ticking atomic.Bool

	viewport    Viewport
	currentPage int
	lastEmitted int
	visible     Range
	navigating  bool
	navTimer    *time.Timer

	preloading    bool
	preloadCancel context.CancelFunc
	closed        bool
}

// Open parses the payload and builds a reader over it. The loading state is
// emitted before parsing starts; a parse failure emits a terminal load error
// and returns it. There is no automatic retry - re-opening is a host action.
func Open(data []byte, format document.Format, opts document.Options, cfg Config) (*Reader, error) {
	cfg = cfg.withDefaults()
	emit(cfg.OnState, Update{IsLoading: bptr(true)})

	doc, err := document.Open(data, format, opts)
	if err != nil {
		msg := loadErrorMessage(format)
		cfg.Logger.Error("document load failed", "format", format, "error", err)
		emit(cfg.OnState, Update{IsLoading: bptr(false), Error: sptr(msg)})
		return nil, err
	}
	return New(doc, cfg)
}

// New builds a reader over an already-open document and emits the ready
// state. The reader takes ownership of the handle.
func New(doc document.Document, cfg Config) (*Reader, error) {
	if doc == nil {
		return nil, errors.New("reader: nil document")
	}
	cfg = cfg.withDefaults()

	total := doc.PageCount()
	geo := geometry.NewManager(total, cfg.Geometry)
	start, end := geo.VisiblePageRange(0, 0, false)

	r := &Reader{
		doc:         doc,
		geo:         geo,
		cfg:         cfg,
		log:         cfg.Logger,
		currentPage: 1,
		lastEmitted: 1,
		visible:     Range{Start: start, End: end},
	}

	r.log.Info("reader ready", "format", doc.Format(), "pages", total)
	emit(cfg.OnState, Update{
		TotalPages:  iptr(total),
		CurrentPage: iptr(1),
		Progress:    fptr(0),
		IsLoading:   bptr(false),
		Error:       sptr(""),
	})
	return r, nil
}

func loadErrorMessage(format document.Format) string {
	name := strings.ToUpper(string(format))
	if format == "" {
		name = "the"
	}
	return fmt.Sprintf("Failed to load %s document", name)
}

func emit(fn StateFunc, u Update) {
	if fn != nil {
		fn(u)
	}
}

// Document returns the underlying handle. The reader keeps ownership.
func (r *Reader) Document() document.Document {
	return r.doc
}

// Geometry returns the reader's geometry manager.
func (r *Reader) Geometry() *geometry.Manager {
	return r.geo
}

// State returns a snapshot of the full reader state.
func (r *Reader) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return State{
		CurrentPage:  r.currentPage,
		TotalPages:   r.geo.TotalPages(),
		Progress:     r.geo.Progress(r.viewport.ScrollTop, r.viewport.ClientHeight),
		IsNavigating: r.navigating,
		VisibleRange: r.visible,
	}
}

// VisibleRange returns the currently mounted page window.
func (r *Reader) VisibleRange() Range {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visible
}

// HandleScroll recomputes the visible window and current page for new
// viewport metrics. Calls arriving while a recomputation is in flight are
// dropped (the next tick sees the settled offset anyway), and the state
// callback only fires when the computed page actually changes.
func (r *Reader) HandleScroll(vp Viewport) {
	if !r.ticking.CompareAndSwap(false, true) {
		return
	}
	defer r.ticking.Store(false)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.viewport = vp

	start, end := r.geo.VisiblePageRange(vp.ScrollTop, vp.ClientHeight, r.navigating)
	r.visible = Range{Start: start, End: end}

	page := r.geo.PageForOffset(vp.ScrollTop)
	r.currentPage = page

	changed := page != r.lastEmitted
	var progress float64
	if changed {
		r.lastEmitted = page
		progress = r.geo.Progress(vp.ScrollTop, vp.ClientHeight)
	}
	cb := r.cfg.OnState
	r.mu.Unlock()

	if changed {
		emit(cb, Update{CurrentPage: iptr(page), Progress: fptr(progress)})
	}
}

// RecordPageHeight feeds a measured page height back into the geometry.
// Called by the host once a page's real rendered height is known.
func (r *Reader) RecordPageHeight(page int, height float64) {
	r.geo.RecordPageHeight(page, height)
}

// PageRenderFailed records the fallback height for a page that failed to
// render, so layout stays consistent and the page is simply skipped.
func (r *Reader) PageRenderFailed(page int) {
	r.log.Warn("page render failed", "page", page)
	r.geo.RecordPageHeight(page, r.geo.EstimatedHeight())
}

// KeyCommand translates a navigation key into a scroll command for the
// current viewport.
func (r *Reader) KeyCommand(key gesture.Key) gesture.ScrollCommand {
	r.mu.Lock()
	h := r.viewport.ClientHeight
	r.mu.Unlock()
	return gesture.MapKey(key, h)
}

// SwipeCommand translates a swipe direction into a synthetic page scroll:
// up/left advance, down/right go back.
func (r *Reader) SwipeCommand(dir gesture.Direction) gesture.ScrollCommand {
	r.mu.Lock()
	step := r.viewport.ClientHeight * gesture.KeyScrollFraction
	r.mu.Unlock()

	switch dir {
	case gesture.DirectionUp, gesture.DirectionLeft:
		return gesture.ScrollCommand{Kind: gesture.ScrollBy, Delta: step}
	case gesture.DirectionDown, gesture.DirectionRight:
		return gesture.ScrollCommand{Kind: gesture.ScrollBy, Delta: -step}
	}
	return gesture.ScrollCommand{Kind: gesture.ScrollNone}
}

// Preload measures every page's true dimensions if the document is large
// enough to need it and the format supports measurement. No-op otherwise.
// At most one pass runs at a time; a second call while one is in flight
// returns ErrPreloadActive. Cancelled automatically when the reader closes.
func (r *Reader) Preload(ctx context.Context, onProgress geometry.ProgressFunc) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if r.preloading {
		r.mu.Unlock()
		return ErrPreloadActive
	}
	meas, ok := r.doc.(geometry.Measurer)
	if !ok || r.geo.TotalPages() < r.cfg.PreloadThreshold {
		r.mu.Unlock()
		return nil
	}
	pctx, cancel := context.WithCancel(ctx)
	r.preloading = true
	r.preloadCancel = cancel
	geo := r.geo
	scale := r.cfg.Zoom / 100
	r.mu.Unlock()

	defer func() {
		cancel()
		r.mu.Lock()
		r.preloading = false
		r.preloadCancel = nil
		r.mu.Unlock()
	}()
	return geo.PreloadDimensions(pctx, meas, scale, onProgress)
}

// Close releases the document handle, stops the settle timer, and cancels
// any in-flight preload. Idempotent; no state is emitted after Close.
func (r *Reader) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	if r.navTimer != nil {
		r.navTimer.Stop()
	}
	if r.preloadCancel != nil {
		r.preloadCancel()
	}
	doc := r.doc
	r.mu.Unlock()

	r.log.Debug("reader closed", "format", doc.Format())
	return doc.Close()
}
